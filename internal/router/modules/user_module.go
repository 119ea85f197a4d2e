package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	handlers "github.com/noorfaiz5/Book-worm-hub/internal/interface/http"
	"github.com/noorfaiz5/Book-worm-hub/internal/interface/middleware"
)

// UserModule wires profile routes: GET/PUT /api/profile, POST /api/profile/photo.
type UserModule struct {
	Handler *handlers.UserHandler
	Guard   Guard
}

func NewUserModule(h *handlers.UserHandler, g Guard) *UserModule {
	return &UserModule{Handler: h, Guard: g}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	auth := m.Guard.protected(rg, 120)
	auth.GET("/profile", m.Handler.GetProfile)
	auth.PUT("/profile", m.Handler.UpdateProfile)
	auth.POST("/profile/photo",
		middleware.RateLimit(m.Guard.RDB, 10, time.Hour, middleware.KeyByUserID(), nil),
		m.Handler.UploadPhoto)
}
