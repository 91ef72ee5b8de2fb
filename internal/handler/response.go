package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"transit/internal/repository"
	"transit/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidClientID),
		errors.Is(err, service.ErrInvalidDriverID),
		errors.Is(err, service.ErrInvalidTransitID),
		errors.Is(err, service.ErrInvalidAddress),
		errors.Is(err, service.ErrInvalidCarClass),
		errors.Is(err, service.ErrInvalidPosition):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, service.ErrInvalidTransitStatus),
		errors.Is(err, service.ErrTransitAlreadyAccepted),
		errors.Is(err, service.ErrDriverAlreadyProposed),
		errors.Is(err, service.ErrDriverAlreadyLoggedIn):
		return http.StatusConflict

	// Forbidden/Business rule errors
	case errors.Is(err, service.ErrDriverNotProposed),
		errors.Is(err, service.ErrDriverNotAssigned):
		return http.StatusForbidden

	// Service unavailable
	case errors.Is(err, service.ErrProviderUnavailable):
		return http.StatusServiceUnavailable

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
