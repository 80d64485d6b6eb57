package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo carries a parsed error code and client-safe message
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError maps storage-layer failures to opaque client-facing codes.
// Backend details (constraint names, SQL state) never reach the caller.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "An internal error occurred",
		}
	}

	errStr := strings.ToLower(err.Error())

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: notFoundMessage(context),
		}
	}

	// Unique constraint violation (Postgres 23505, SQLite "UNIQUE constraint failed")
	if strings.Contains(errStr, "duplicate key") || strings.Contains(errStr, "unique constraint") {
		if strings.Contains(errStr, "email") {
			return ErrorInfo{Code: AuthEmailAlreadyExists, Message: "Email is already registered"}
		}
		return ErrorInfo{Code: ResourceAlreadyExists, Message: "The record already exists"}
	}

	// Foreign key constraint violation
	if strings.Contains(errStr, "foreign key constraint") {
		return ErrorInfo{
			Code:    ResourceConflict,
			Message: "The referenced record does not exist or is still in use",
		}
	}

	// Not-null constraint violation
	if strings.Contains(errStr, "not-null constraint") || strings.Contains(errStr, "not null constraint") {
		return ErrorInfo{
			Code:    ValidationRequired,
			Message: "A required field is missing",
		}
	}

	// Connection-level failures
	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "timeout") {
		return ErrorInfo{
			Code:    InternalDatabaseError,
			Message: "The storage backend is unavailable. Please try again later",
		}
	}

	return ErrorInfo{
		Code:    InternalServerError,
		Message: "An internal error occurred. Please try again later",
	}
}

func notFoundMessage(context string) string {
	contextLower := strings.ToLower(context)

	switch {
	case strings.Contains(contextLower, "product"):
		return "Product not found"
	case strings.Contains(contextLower, "cart"):
		return "Cart item not found"
	case strings.Contains(contextLower, "order"):
		return "Order not found"
	case strings.Contains(contextLower, "user"):
		return "User not found"
	}
	return "Requested record not found"
}
