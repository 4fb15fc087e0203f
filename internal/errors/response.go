package errors

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the only error body clients ever see
type ErrorResponse struct {
	Message string `json:"message"`
}

// StatusCode maps a failure kind to its HTTP status
func StatusCode(err error) int {
	switch KindOf(err) {
	case KindValidation, KindStateConflict:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindBusy:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the client facing text for err
func Message(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return "Server error"
}

// Respond writes err as a JSON error response
func Respond(c *gin.Context, err error) {
	c.JSON(StatusCode(err), ErrorResponse{Message: Message(err)})
}

// RespondWithMessage writes a bare status + message, for failures raised in handlers
func RespondWithMessage(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, ErrorResponse{Message: message})
}

func BadRequest(c *gin.Context, message string) {
	RespondWithMessage(c, http.StatusBadRequest, message)
}

func Unauthenticated(c *gin.Context, message string) {
	if message == "" {
		message = "Not authorized, no token"
	}
	RespondWithMessage(c, http.StatusUnauthorized, message)
}

func Denied(c *gin.Context, message string) {
	if message == "" {
		message = "Not authorized as an admin"
	}
	RespondWithMessage(c, http.StatusForbidden, message)
}
