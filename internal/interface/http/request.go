package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noorfaiz5/Book-worm-hub/internal/interface/middleware"
	"github.com/noorfaiz5/Book-worm-hub/pkg/apperror"
	"github.com/noorfaiz5/Book-worm-hub/pkg/response"
	"github.com/noorfaiz5/Book-worm-hub/pkg/validation"
)

const dateLayout = "2006-01-02"

func currentUser(c *gin.Context) string {
	return c.GetString(middleware.CtxUserIDKey)
}

// bindJSON decodes the body into req and writes a 400 envelope on failure.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.FromError(c, apperror.Validation("invalid payload", validation.ToDetails(err)))
		return false
	}
	return true
}

// parseDate accepts a calendar date, read in loc, or an RFC 3339 timestamp.
func parseDate(field string, v *string, loc *time.Location) (*time.Time, error) {
	if v == nil {
		return nil, nil
	}
	s := strings.TrimSpace(*v)
	if t, err := time.ParseInLocation(dateLayout, s, loc); err == nil {
		return &t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	return nil, apperror.Field(field, "must be a date (YYYY-MM-DD) or RFC 3339 timestamp")
}

// queryInt reads an optional integer query parameter; absent means 0.
func queryInt(c *gin.Context, name string) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.Field(name, "must be a number")
	}
	return n, nil
}

func yearParam(c *gin.Context) (int, error) {
	n, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		return 0, apperror.Field("year", "must be a number")
	}
	return n, nil
}
