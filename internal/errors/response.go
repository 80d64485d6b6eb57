package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the standard error payload
type ErrorResponse struct {
	Error   string `json:"error"`   // error code for client-side mapping
	Message string `json:"message"` // human-readable description
}

// RespondWithError writes a standard error response
func RespondWithError(c *gin.Context, statusCode int, errorCode string, message string) {
	c.JSON(statusCode, ErrorResponse{
		Error:   errorCode,
		Message: message,
	})
}

// Shorthand helpers for the common cases

func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Authentication required"
	}
	RespondWithError(c, http.StatusUnauthorized, AuthUnauthorized, message)
}

func Forbidden(c *gin.Context, message string) {
	if message == "" {
		message = "Access denied"
	}
	RespondWithError(c, http.StatusForbidden, AuthzForbidden, message)
}

func BadRequest(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusBadRequest, errorCode, message)
}

func NotFound(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusNotFound, errorCode, message)
}

func Conflict(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusConflict, errorCode, message)
}

func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "An internal error occurred. Please try again later"
	}
	RespondWithError(c, http.StatusInternalServerError, InternalServerError, message)
}

// HandleError parses an unexpected error and writes the matching
// response. The context string steers the not-found message.
func HandleError(c *gin.Context, err error, context string) {
	info := ParseError(err, context)

	status := http.StatusInternalServerError
	switch info.Code {
	case ResourceNotFound:
		status = http.StatusNotFound
	case AuthEmailAlreadyExists, ResourceAlreadyExists, ResourceConflict:
		status = http.StatusConflict
	case ValidationRequired:
		status = http.StatusBadRequest
	case InternalDatabaseError:
		status = http.StatusServiceUnavailable
	}
	RespondWithError(c, status, info.Code, info.Message)
}
