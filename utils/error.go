package utils

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorKind classifies failures surfaced to API callers.
type ErrorKind string

const (
	KindValidation      ErrorKind = "VALIDATION"
	KindNotFound        ErrorKind = "NOT_FOUND"
	KindConflict        ErrorKind = "CONFLICT"
	KindForbidden       ErrorKind = "FORBIDDEN"
	KindUpstreamFailure ErrorKind = "UPSTREAM_FAILURE"
	KindInvalidState    ErrorKind = "INVALID_STATE"
)

// AppError is a classified failure. Details carries the offending dates or
// fields so callers get an actionable answer.
type AppError struct {
	Kind    ErrorKind
	Message string
	Details []string
	Err     error // underlying cause, logged but never sent to clients
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

func NewAppError(kind ErrorKind, message string, details ...string) *AppError {
	return &AppError{Kind: kind, Message: message, Details: details}
}

func Validation(message string, details ...string) *AppError {
	return NewAppError(KindValidation, message, details...)
}

func NotFound(message string) *AppError {
	return NewAppError(KindNotFound, message)
}

func Conflict(message string, details ...string) *AppError {
	return NewAppError(KindConflict, message, details...)
}

func Forbidden(message string) *AppError {
	return NewAppError(KindForbidden, message)
}

func InvalidState(message string, details ...string) *AppError {
	return NewAppError(KindInvalidState, message, details...)
}

// Upstream wraps a provider failure; the provider's own message stays in Err.
func Upstream(message string, err error) *AppError {
	return &AppError{Kind: KindUpstreamFailure, Message: message, Err: err}
}

// KindOf returns the kind of err, or "" if err is not an AppError.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// StatusFor maps an error kind onto an HTTP status.
func StatusFor(kind ErrorKind) int {
	switch kind {
	case KindValidation, KindInvalidState:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindForbidden:
		return http.StatusForbidden
	case KindUpstreamFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ErrorResponse defines the structure of error responses
type ErrorResponse struct {
	Code    string   `json:"code,omitempty"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

// HandleErrors is a middleware to catch panics and return structured errors
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				Logger := GetLogger()
				Logger.Error("Unhandled panic", zap.Any("error", err))

				c.JSON(http.StatusInternalServerError, ErrorResponse{
					Message: "Internal Server Error",
					Details: []string{"An unexpected error occurred. Please try again later."},
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// RespondError writes err as a JSON error. Unclassified errors and upstream
// failures never leak their internal message.
func RespondError(c *gin.Context, err error) {
	logger := GetLogger()
	var appErr *AppError
	if !errors.As(err, &appErr) {
		logger.Error("Unhandled error", zap.String("path", c.FullPath()), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Message: "Internal Server Error"})
		return
	}

	status := StatusFor(appErr.Kind)
	if appErr.Kind == KindUpstreamFailure {
		logger.Error(appErr.Message, zap.String("path", c.FullPath()), zap.Error(appErr.Err))
	} else {
		logger.Warn(appErr.Message, zap.String("kind", string(appErr.Kind)), zap.Strings("details", appErr.Details))
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		Code:    string(appErr.Kind),
		Message: appErr.Message,
		Details: appErr.Details,
	})
}

// JSONError sends a standardized JSON error response
func JSONError(c *gin.Context, status int, message string, details ...string) {
	Logger := GetLogger()
	Logger.Warn(message, zap.Strings("details", details))
	c.AbortWithStatusJSON(status, ErrorResponse{Message: message, Details: details})
}
