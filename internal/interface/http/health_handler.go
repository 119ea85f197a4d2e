package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noorfaiz5/Book-worm-hub/pkg/response"
)

// Check probes one dependency.
type Check func(ctx context.Context) error

type HealthHandler struct {
	Checks  map[string]Check
	Timeout time.Duration
}

func NewHealthHandler(checks map[string]Check) *HealthHandler {
	return &HealthHandler{Checks: checks, Timeout: 2 * time.Second}
}

// Health GET /api/health reports 200 when every check passes, 503 otherwise.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	results := make(map[string]string, len(h.Checks))
	healthy := true
	for name, check := range h.Checks {
		if check == nil {
			continue
		}
		if err := check(ctx); err != nil {
			results[name] = "down"
			healthy = false
			continue
		}
		results[name] = "up"
	}
	if !healthy {
		response.Error[any](c, http.StatusServiceUnavailable, "unhealthy", results)
		return
	}
	response.Success(c, http.StatusOK, results, "ok", nil)
}
