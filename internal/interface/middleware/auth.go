package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noorfaiz5/Book-worm-hub/pkg/helpers"
	"github.com/noorfaiz5/Book-worm-hub/pkg/response"
)

// CtxUserIDKey holds the authenticated user's id in the Gin context.
const CtxUserIDKey = "userID"

func bearer(c *gin.Context) string {
	if token, err := c.Cookie(helpers.AccessCookie); err == nil && token != "" {
		return token
	}
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// Auth validates the access token and, when sessions are enabled, checks that its
// sid matches the session stored for the user. On success it sets userID in the context.
func Auth(jwt *helpers.JWTManager, sessions *helpers.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearer(c)
		if token == "" {
			response.Error[any](c, http.StatusUnauthorized, "missing access token", nil)
			c.Abort()
			return
		}
		claims, err := jwt.ParseAccessToken(token)
		if err != nil {
			response.Error[any](c, http.StatusUnauthorized, "invalid access token", nil)
			c.Abort()
			return
		}

		if sessions.Enabled() {
			sess, err := sessions.Get(c.Request.Context(), claims.UserID)
			if err != nil || sess == nil || sess.SessionID != claims.SessionID {
				response.Error[any](c, http.StatusUnauthorized, "session not found", nil)
				c.Abort()
				return
			}
			c.Set("userEmail", sess.Email)
		}

		c.Set(CtxUserIDKey, claims.UserID)
		c.Next()
	}
}
