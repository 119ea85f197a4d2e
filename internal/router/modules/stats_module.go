package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/noorfaiz5/Book-worm-hub/internal/interface/http"
)

type StatsModule struct {
	Handler *handlers.StatsHandler
	Guard   Guard
}

func NewStatsModule(h *handlers.StatsHandler, g Guard) *StatsModule {
	return &StatsModule{Handler: h, Guard: g}
}

func (m *StatsModule) Register(rg *gin.RouterGroup) {
	auth := m.Guard.protected(rg, 120)
	stats := auth.Group("/stats")
	{
		stats.GET("/dashboard", m.Handler.Dashboard)
		stats.GET("/monthly", m.Handler.Monthly)
		stats.GET("/yearly", m.Handler.Yearly)
		stats.GET("/genres", m.Handler.Genres)
	}
}
