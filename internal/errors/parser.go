package errors

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ErrorInfo pairs an error code with a user-facing message.
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError maps a storage-layer error to an actionable response without
// leaking driver internals. context names the resource being operated on
// ("submission", "document", "user") so not-found messages stay specific.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "An internal error occurred",
		}
	}

	errStrLower := strings.ToLower(err.Error())

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: notFoundMessage(context),
		}
	}

	// PostgreSQL unique constraint violation (23505)
	if strings.Contains(errStrLower, "duplicate key") || strings.Contains(errStrLower, "unique constraint") {
		return ErrorInfo{
			Code:    ResourceAlreadyExists,
			Message: duplicateMessage(context),
		}
	}

	// PostgreSQL foreign key constraint violation (23503)
	if strings.Contains(errStrLower, "foreign key constraint") {
		return ErrorInfo{
			Code:    ResourceConflict,
			Message: "The referenced record does not exist",
		}
	}

	return ErrorInfo{
		Code:    InternalDatabaseError,
		Message: "A database error occurred. Please try again later",
	}
}

// ParseAndRespond maps a storage-layer error and writes the response. The
// fallback status is used unless the parsed code implies a better one.
func ParseAndRespond(c *gin.Context, fallbackStatus int, err error, context string) {
	info := ParseError(err, context)

	status := fallbackStatus
	switch info.Code {
	case ResourceNotFound:
		status = http.StatusNotFound
	case ResourceAlreadyExists, ResourceConflict:
		status = http.StatusConflict
	}

	RespondWithError(c, status, info.Code, info.Message)
}

func notFoundMessage(context string) string {
	switch context {
	case "submission":
		return "No KYC submission found for this seller"
	case "document":
		return "The requested document has not been uploaded"
	case "user":
		return "User not found"
	default:
		return "The requested resource was not found"
	}
}

func duplicateMessage(context string) string {
	switch context {
	case "submission":
		return "A KYC submission already exists for this seller"
	case "user":
		return "An account with this email already exists"
	default:
		return "The resource already exists"
	}
}
