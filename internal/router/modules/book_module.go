package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/noorfaiz5/Book-worm-hub/internal/interface/http"
)

type BookModule struct {
	Handler *handlers.BookHandler
	Guard   Guard
}

func NewBookModule(h *handlers.BookHandler, g Guard) *BookModule {
	return &BookModule{Handler: h, Guard: g}
}

func (m *BookModule) Register(rg *gin.RouterGroup) {
	auth := m.Guard.protected(rg, 240)
	books := auth.Group("/books")
	{
		books.GET("", m.Handler.List)
		books.POST("", m.Handler.Create)
		books.GET("/search", m.Handler.Search)
		books.GET("/:id", m.Handler.Get)
		books.PUT("/:id", m.Handler.Update)
		books.DELETE("/:id", m.Handler.Delete)
		books.POST("/:id/start", m.Handler.Start)
		books.POST("/:id/progress", m.Handler.Progress)
		books.POST("/:id/finish", m.Handler.Finish)
	}
}
