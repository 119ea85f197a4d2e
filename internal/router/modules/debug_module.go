package modules

import (
	"expvar"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/noorfaiz5/Book-worm-hub/internal/interface/middleware"
)

// DebugModule exposes expvar counters at GET /api/debug/vars, rate-limited per IP.
type DebugModule struct {
	RDB *redis.Client
}

func NewDebugModule(rdb *redis.Client) *DebugModule { return &DebugModule{RDB: rdb} }

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	rl := middleware.RateLimit(m.RDB, 120, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())
	rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
}
