package response

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noorfaiz5/Book-worm-hub/pkg/apperror"
)

type APIResponse[T any] struct {
	Status    int         `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"request_id"`
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      T           `json:"data,omitempty"`
	Meta      interface{} `json:"meta,omitempty"`
	Error     interface{} `json:"error,omitempty"`
}

// ErrorBody is the error member of a failed response.
type ErrorBody struct {
	Code    apperror.Code `json:"code"`
	Details any           `json:"details,omitempty"`
}

// Success writes a success envelope and returns it.
func Success[T any](ctx *gin.Context, status int, data T, message string, meta interface{}) APIResponse[T] {
	if status == 0 {
		status = http.StatusOK
	}
	res := APIResponse[T]{
		Status:    status,
		Timestamp: time.Now(),
		RequestID: ctx.GetString("request_id"),
		Success:   true,
		Message:   message,
		Data:      data,
		Meta:      meta,
	}
	ctx.JSON(status, res)
	return res
}

// Error writes a failure envelope and returns it. Middleware should Abort after calling it.
func Error[T any](ctx *gin.Context, status int, message string, err interface{}) APIResponse[T] {
	if status == 0 {
		status = http.StatusBadRequest
	}
	res := APIResponse[T]{
		Status:    status,
		Timestamp: time.Now(),
		RequestID: ctx.GetString("request_id"),
		Success:   false,
		Message:   message,
		Error:     err,
	}
	ctx.JSON(status, res)
	return res
}

// FromError maps err onto an error envelope. Non-apperror values become a 500 with a
// generic message; their text never reaches the client.
func FromError(ctx *gin.Context, err error) {
	var ae *apperror.Error
	if !errors.As(err, &ae) {
		ae = apperror.Internal("internal server error", err)
	}
	msg := ae.Message
	if ae.Code == apperror.CodeInternal {
		msg = "internal server error"
		_ = ctx.Error(err)
	}
	Error[any](ctx, ae.HTTPStatus(), msg, ErrorBody{Code: ae.Code, Details: ae.Details})
}
