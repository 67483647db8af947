package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"rideshare/internal/repository"
	"rideshare/internal/service"
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
	case errors.Is(err, service.ErrInvalidRiderID),
		errors.Is(err, service.ErrInvalidDriverID),
		errors.Is(err, service.ErrInvalidTripID),
		errors.Is(err, service.ErrInvalidUserID),
		errors.Is(err, service.ErrInvalidPayoutID),
		errors.Is(err, service.ErrInvalidOwner),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInvalidFare),
		errors.Is(err, service.ErrInvalidPickup),
		errors.Is(err, service.ErrInvalidDropoff),
		errors.Is(err, service.ErrInvalidTripMetrics),
		errors.Is(err, service.ErrInvalidPaymentMethod),
		errors.Is(err, service.ErrInvalidRating),
		errors.Is(err, service.ErrInvalidAudience),
		errors.Is(err, service.ErrInvalidAnnouncement):
		return http.StatusBadRequest

	// The rider's wallet cannot cover the fare or adjustment
	case errors.Is(err, service.ErrInsufficientFunds):
		return http.StatusPaymentRequired

	// Conflict errors
	case errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrTripBusy),
		errors.Is(err, service.ErrPayoutAlreadySent),
		errors.Is(err, service.ErrTripNotCompleted),
		errors.Is(err, service.ErrTripAlreadyRated):
		return http.StatusConflict

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
