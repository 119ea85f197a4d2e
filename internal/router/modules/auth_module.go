package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	handlers "github.com/noorfaiz5/Book-worm-hub/internal/interface/http"
	"github.com/noorfaiz5/Book-worm-hub/internal/interface/middleware"
)

// AuthModule wires session routes.
// Public: POST /api/auth/session, POST /api/refresh
// Protected: POST /api/logout
type AuthModule struct {
	Handler *handlers.AuthHandler
	Guard   Guard
}

func NewAuthModule(h *handlers.AuthHandler, g Guard) *AuthModule {
	return &AuthModule{Handler: h, Guard: g}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	signInLimiter := middleware.RateLimit(m.Guard.RDB, 10, time.Minute, middleware.KeyByIP(), nil)
	refreshLimiter := middleware.RateLimit(m.Guard.RDB, 60, time.Minute, middleware.KeyByIP(), nil)

	rg.POST("/auth/session", signInLimiter, m.Handler.SignIn)
	rg.POST("/refresh", refreshLimiter, m.Handler.Refresh)

	auth := m.Guard.protected(rg, 60)
	auth.POST("/logout", m.Handler.Logout)
}
