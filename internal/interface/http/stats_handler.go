package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noorfaiz5/Book-worm-hub/internal/application"
	"github.com/noorfaiz5/Book-worm-hub/pkg/response"
)

// StatsHandler serves read-only aggregates. Omitted year/month/top parameters select
// the current period and the default list length.
type StatsHandler struct {
	Svc *application.StatsService
}

func NewStatsHandler(svc *application.StatsService) *StatsHandler {
	return &StatsHandler{Svc: svc}
}

func (h *StatsHandler) Dashboard(c *gin.Context) {
	d, err := h.Svc.Dashboard(c.Request.Context(), currentUser(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toDashboard(d), "dashboard", nil)
}

// Monthly GET /api/stats/monthly?year=&month=
func (h *StatsHandler) Monthly(c *gin.Context) {
	year, err := queryInt(c, "year")
	if err != nil {
		response.FromError(c, err)
		return
	}
	month, err := queryInt(c, "month")
	if err != nil {
		response.FromError(c, err)
		return
	}
	m, err := h.Svc.Monthly(c.Request.Context(), currentUser(c), year, time.Month(month))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toMonthly(*m), "monthly stats", nil)
}

// Yearly GET /api/stats/yearly?year=
func (h *StatsHandler) Yearly(c *gin.Context) {
	year, err := queryInt(c, "year")
	if err != nil {
		response.FromError(c, err)
		return
	}
	y, err := h.Svc.Yearly(c.Request.Context(), currentUser(c), year)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toYearly(*y), "yearly stats", nil)
}

// Genres GET /api/stats/genres?top=
func (h *StatsHandler) Genres(c *gin.Context) {
	top, err := queryInt(c, "top")
	if err != nil {
		response.FromError(c, err)
		return
	}
	g, err := h.Svc.Genres(c.Request.Context(), currentUser(c), top)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toGenres(*g), "genres", nil)
}
