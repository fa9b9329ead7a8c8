package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/profrate/internal/pkg/apperrors"
	"github.com/yigit/profrate/internal/pkg/logger"
)

// ErrorCodeHeader carries the machine readable error code
const ErrorCodeHeader = "X-Error-Code"

// StatusFor maps an error category to its HTTP status
func StatusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrBadMethod):
		return http.StatusMethodNotAllowed
	case errors.Is(err, apperrors.ErrNotAuthenticated),
		errors.Is(err, apperrors.ErrAuthenticationFailed):
		return http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrAlreadyAuthenticated),
		errors.Is(err, apperrors.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrRelationViolation):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// HandleAPIError writes err as a plain text response
func HandleAPIError(c *gin.Context, err error) {
	status := StatusFor(err)
	message := err.Error()

	if status == http.StatusInternalServerError {
		logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Unhandled error")
		message = "internal server error"
	}

	c.Header(ErrorCodeHeader, apperrors.CodeOf(err))
	c.String(status, message)
}

// MethodNotAllowed answers requests whose method a known path does not accept
func MethodNotAllowed() gin.HandlerFunc {
	return func(c *gin.Context) {
		HandleAPIError(c, apperrors.ErrInvalidMethod)
	}
}

// RouteNotFound answers requests for unknown paths
func RouteNotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		HandleAPIError(c, apperrors.NewNotFoundError("no such endpoint"))
	}
}
