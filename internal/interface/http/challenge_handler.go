package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noorfaiz5/Book-worm-hub/internal/application"
	"github.com/noorfaiz5/Book-worm-hub/pkg/response"
)

type ChallengeHandler struct {
	Svc *application.ChallengeService
}

func NewChallengeHandler(svc *application.ChallengeService) *ChallengeHandler {
	return &ChallengeHandler{Svc: svc}
}

type createChallengeRequest struct {
	Year int `json:"year" binding:"required,min=1900,max=9999"`
	Goal int `json:"goal" binding:"required,goal"`
}

type updateChallengeRequest struct {
	Goal int `json:"goal" binding:"required,goal"`
}

// Get GET /api/challenges/:year. A missing challenge is a 404 with code NOT_FOUND.
func (h *ChallengeHandler) Get(c *gin.Context) {
	year, err := yearParam(c)
	if err != nil {
		response.FromError(c, err)
		return
	}
	v, err := h.Svc.Get(c.Request.Context(), currentUser(c), year)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toChallenge(v), "challenge", nil)
}

func (h *ChallengeHandler) Create(c *gin.Context) {
	var req createChallengeRequest
	if !bindJSON(c, &req) {
		return
	}
	v, err := h.Svc.Create(c.Request.Context(), currentUser(c), req.Year, req.Goal)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, toChallenge(v), "challenge created", nil)
}

func (h *ChallengeHandler) UpdateGoal(c *gin.Context) {
	year, err := yearParam(c)
	if err != nil {
		response.FromError(c, err)
		return
	}
	var req updateChallengeRequest
	if !bindJSON(c, &req) {
		return
	}
	v, err := h.Svc.UpdateGoal(c.Request.Context(), currentUser(c), year, req.Goal)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toChallenge(v), "challenge updated", nil)
}

// Reconcile POST /api/challenges/:year/reconcile stores the live completed count.
func (h *ChallengeHandler) Reconcile(c *gin.Context) {
	year, err := yearParam(c)
	if err != nil {
		response.FromError(c, err)
		return
	}
	v, err := h.Svc.Reconcile(c.Request.Context(), currentUser(c), year)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toChallenge(v), "challenge reconciled", nil)
}
