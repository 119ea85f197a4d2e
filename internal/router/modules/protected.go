package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/noorfaiz5/Book-worm-hub/internal/interface/middleware"
)

// Guard is the middleware shared by authenticated routes.
type Guard struct {
	Auth gin.HandlerFunc
	RDB  *redis.Client
}

// protected returns a group behind auth plus per-IP and per-user limits.
func (g Guard) protected(rg *gin.RouterGroup, perUser int) *gin.RouterGroup {
	grp := rg.Group("/")
	grp.Use(g.Auth)
	grp.Use(
		middleware.RateLimit(g.RDB, 300, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP()),
		middleware.RateLimit(g.RDB, perUser, time.Minute, middleware.KeyByUserID(), nil),
	)
	return grp
}
