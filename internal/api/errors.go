package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/inkwell/inkwell/internal/blog"
)

// Error codes returned in the error envelope
const (
	CodeAuthenticationRequired = "authentication_required"
	CodeForbidden              = "forbidden"
	CodeNotFound               = "not_found"
	CodeValidationFailed       = "validation_failed"
	CodeConflict               = "conflict"
	CodeInvalidCredentials     = "invalid_credentials"
	CodeRateLimited            = "rate_limited"
	CodeInternal               = "internal_error"
)

// Error represents an API error
type Error struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewError creates a new API error
func NewError(status int, code, message string) *Error {
	return &Error{
		Status:  status,
		Code:    code,
		Message: message,
	}
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("API error %d: %s", e.Status, e.Message)
}

var errInternal = NewError(http.StatusInternalServerError, CodeInternal, "internal server error")

// errorFor maps a domain error onto its HTTP form. Unknown errors become a
// generic 500 so storage details never reach the client.
func errorFor(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}

	switch {
	case errors.Is(err, blog.ErrUnauthenticated):
		return NewError(http.StatusUnauthorized, CodeAuthenticationRequired, "authentication required")
	case errors.Is(err, blog.ErrInvalidCredentials):
		return NewError(http.StatusUnauthorized, CodeInvalidCredentials, "invalid username or password")
	case errors.Is(err, blog.ErrForbidden):
		return NewError(http.StatusForbidden, CodeForbidden, detail(err, blog.ErrForbidden))
	case errors.Is(err, blog.ErrNotFound):
		return NewError(http.StatusNotFound, CodeNotFound, detail(err, blog.ErrNotFound))
	case errors.Is(err, blog.ErrValidation):
		return NewError(http.StatusBadRequest, CodeValidationFailed, detail(err, blog.ErrValidation))
	case errors.Is(err, blog.ErrConflict):
		return NewError(http.StatusConflict, CodeConflict, detail(err, blog.ErrConflict))
	default:
		return errInternal
	}
}

// detail strips the sentinel prefix from a wrapped domain error, leaving
// the human readable part.
func detail(err, sentinel error) string {
	msg := err.Error()
	if rest := strings.TrimPrefix(msg, sentinel.Error()+": "); rest != msg {
		return rest
	}
	return msg
}

// abortWithError writes the error envelope and stops the handler chain.
// Internal errors are logged with the request's logger.
func abortWithError(c *gin.Context, err error) {
	apiErr := errorFor(err)
	if apiErr.Status >= http.StatusInternalServerError {
		requestLogger(c).Error("Request failed",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(apiErr.Status, gin.H{"error": apiErr})
}

func respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"data": data})
}

func respondMessage(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, gin.H{"data": data, "message": message})
}
