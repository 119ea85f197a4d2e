package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/noorfaiz5/Book-worm-hub/internal/interface/http"
)

type ChallengeModule struct {
	Handler *handlers.ChallengeHandler
	Guard   Guard
}

func NewChallengeModule(h *handlers.ChallengeHandler, g Guard) *ChallengeModule {
	return &ChallengeModule{Handler: h, Guard: g}
}

func (m *ChallengeModule) Register(rg *gin.RouterGroup) {
	auth := m.Guard.protected(rg, 120)
	ch := auth.Group("/challenges")
	{
		ch.POST("", m.Handler.Create)
		ch.GET("/:year", m.Handler.Get)
		ch.PUT("/:year", m.Handler.UpdateGoal)
		ch.POST("/:year/reconcile", m.Handler.Reconcile)
	}
}
