package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/noorfaiz5/Book-worm-hub/internal/application"
	"github.com/noorfaiz5/Book-worm-hub/pkg/helpers"
	"github.com/noorfaiz5/Book-worm-hub/pkg/response"
)

// AuthHandler exchanges identity provider tokens for session cookies.
type AuthHandler struct {
	Svc     *application.UserService
	Cookies *helpers.Manager
	Logger  logrus.FieldLogger
}

func NewAuthHandler(svc *application.UserService, logger logrus.FieldLogger, cookieDomain string, cookieSecure bool) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger, Cookies: helpers.NewCookie(cookieDomain, cookieSecure)}
}

type signInRequest struct {
	IDToken string `json:"id_token" binding:"required,notblank"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func tokenMeta(p application.TokenPair) map[string]any {
	return map[string]any{"access_expires_at": p.AccessTokenExpiry, "refresh_expires_at": p.RefreshTokenExpiry}
}

// SignIn POST /api/auth/session
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req signInRequest
	if !bindJSON(c, &req) {
		return
	}
	u, pair, created, err := h.Svc.SignIn(c.Request.Context(), req.IDToken)
	if err != nil {
		response.FromError(c, err)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)

	status, msg := http.StatusOK, "signed in"
	if created {
		status, msg = http.StatusCreated, "account created"
	}
	response.Success(c, status, toUser(u), msg, tokenMeta(pair))
}

// Refresh POST /api/refresh. The refresh token comes from its cookie, or the body for non-browser clients.
func (h *AuthHandler) Refresh(c *gin.Context) {
	token, _ := c.Cookie(helpers.RefreshCookie)
	if token == "" {
		var req refreshRequest
		_ = c.ShouldBindJSON(&req)
		token = req.RefreshToken
	}
	if token == "" {
		response.FromError(c, application.ErrInvalidSession)
		return
	}
	pair, _, err := h.Svc.Refresh(c.Request.Context(), token)
	if err != nil {
		h.Cookies.Clear(c)
		response.FromError(c, err)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success[any](c, http.StatusOK, map[string]any{"refreshed": true}, "token refreshed", tokenMeta(pair))
}

// Logout POST /api/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	uid := currentUser(c)
	if err := h.Svc.Logout(c.Request.Context(), uid); err != nil {
		helpers.LogError(h.Logger, "session delete failed", err, logrus.Fields{"user_id": uid})
	}
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, map[string]any{"logged_out": true}, "logged out", nil)
}
