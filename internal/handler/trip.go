package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"rideshare/internal/domain"
	"rideshare/internal/service"
)

// TripHandler handles HTTP requests for trips.
type TripHandler struct {
	tripService    *service.TripService
	receiptService *service.ReceiptService
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(tripService *service.TripService, receiptService *service.ReceiptService) *TripHandler {
	return &TripHandler{
		tripService:    tripService,
		receiptService: receiptService,
	}
}

// RequestTripRequest is the HTTP request body for requesting a trip.
type RequestTripRequest struct {
	RiderID         string  `json:"rider_id"`
	Pickup          string  `json:"pickup"`
	Dropoff         string  `json:"dropoff"`
	DistanceKm      float64 `json:"distance_km"`
	DurationSeconds int64   `json:"duration_seconds"`
	Fare            float64 `json:"fare"`
	PaymentMethod   string  `json:"payment_method,omitempty"` // WALLET, CASH, CARD
}

// AssignDriverRequest is the HTTP request body for assigning a driver.
type AssignDriverRequest struct {
	DriverID     string `json:"driver_id"`
	DriverName   string `json:"driver_name,omitempty"`
	VehiclePlate string `json:"vehicle_plate,omitempty"`
}

// CancelTripRequest is the HTTP request body for cancelling a trip.
type CancelTripRequest struct {
	Reason string `json:"reason,omitempty"`
}

// RateTripRequest is the HTTP request body for rating a trip.
type RateTripRequest struct {
	Stars   int    `json:"stars"`
	Comment string `json:"comment,omitempty"`
}

// PaymentStateResponse reflects the settlement flags of a trip.
type PaymentStateResponse struct {
	RiderPaid          bool    `json:"rider_paid"`
	DriverPaid         bool    `json:"driver_paid"`
	PlatformCommission float64 `json:"platform_commission"`
	EscrowHeld         bool    `json:"escrow_held"`
}

// TripResponse is the HTTP response for trip operations.
type TripResponse struct {
	ID              string               `json:"id"`
	RiderID         string               `json:"rider_id"`
	Pickup          string               `json:"pickup"`
	Dropoff         string               `json:"dropoff"`
	DistanceKm      float64              `json:"distance_km"`
	DurationSeconds int64                `json:"duration_seconds"`
	Fare            float64              `json:"fare"`
	Status          string               `json:"status"`
	DriverID        string               `json:"driver_id,omitempty"`
	DriverName      string               `json:"driver_name,omitempty"`
	VehiclePlate    string               `json:"vehicle_plate,omitempty"`
	PaymentMethod   string               `json:"payment_method"`
	Payment         PaymentStateResponse `json:"payment"`
	Rating          int                  `json:"rating,omitempty"`
	CreatedAt       string               `json:"created_at"`
	CompletedAt     string               `json:"completed_at,omitempty"`
	CancelledAt     string               `json:"cancelled_at,omitempty"`
	CancelReason    string               `json:"cancel_reason,omitempty"`
}

// toTripResponse converts a domain trip to its HTTP response form.
func toTripResponse(trip *domain.Trip) TripResponse {
	response := TripResponse{
		ID:              trip.ID,
		RiderID:         trip.RiderID,
		Pickup:          trip.Pickup,
		Dropoff:         trip.Dropoff,
		DistanceKm:      trip.DistanceKm,
		DurationSeconds: int64(trip.Duration.Seconds()),
		Fare:            trip.Fare,
		Status:          string(trip.Status),
		DriverID:        trip.DriverID,
		DriverName:      trip.DriverName,
		VehiclePlate:    trip.VehiclePlate,
		PaymentMethod:   string(trip.Method),
		Payment: PaymentStateResponse{
			RiderPaid:          trip.Payment.RiderPaid,
			DriverPaid:         trip.Payment.DriverPaid,
			PlatformCommission: trip.Payment.PlatformCommission,
			EscrowHeld:         trip.Payment.EscrowHeld,
		},
		Rating:    trip.Rating,
		CreatedAt: trip.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}

	if !trip.CompletedAt.IsZero() {
		response.CompletedAt = trip.CompletedAt.Format("2006-01-02T15:04:05Z07:00")
	}

	if !trip.CancelledAt.IsZero() {
		response.CancelledAt = trip.CancelledAt.Format("2006-01-02T15:04:05Z07:00")
		response.CancelReason = trip.CancelReason
	}

	return response
}

// Request handles POST /v1/trips
func (h *TripHandler) Request(c *gin.Context) {
	var req RequestTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	trip, err := h.tripService.RequestTrip(c.Request.Context(), service.RequestTripRequest{
		RiderID:    req.RiderID,
		Pickup:     req.Pickup,
		Dropoff:    req.Dropoff,
		DistanceKm: req.DistanceKm,
		Duration:   time.Duration(req.DurationSeconds) * time.Second,
		Fare:       req.Fare,
		Method:     domain.PaymentMethod(req.PaymentMethod),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toTripResponse(trip))
}

// Confirm handles POST /v1/trips/:id/confirm
func (h *TripHandler) Confirm(c *gin.Context) {
	trip, err := h.tripService.ConfirmTrip(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toTripResponse(trip))
}

// Assign handles POST /v1/trips/:id/assign
func (h *TripHandler) Assign(c *gin.Context) {
	var req AssignDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	trip, err := h.tripService.AssignDriver(c.Request.Context(), service.AssignDriverRequest{
		TripID:       c.Param("id"),
		DriverID:     req.DriverID,
		DriverName:   req.DriverName,
		VehiclePlate: req.VehiclePlate,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toTripResponse(trip))
}

// Cancel handles POST /v1/trips/:id/cancel
func (h *TripHandler) Cancel(c *gin.Context) {
	var req CancelTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	trip, err := h.tripService.CancelTrip(c.Request.Context(), service.CancelTripRequest{
		TripID: c.Param("id"),
		Reason: req.Reason,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toTripResponse(trip))
}

// Complete handles POST /v1/trips/:id/complete
func (h *TripHandler) Complete(c *gin.Context) {
	trip, err := h.tripService.CompleteTrip(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toTripResponse(trip))
}

// Rate handles POST /v1/trips/:id/rate
func (h *TripHandler) Rate(c *gin.Context) {
	var req RateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	trip, err := h.tripService.RateTrip(c.Request.Context(), service.RateTripRequest{
		TripID:  c.Param("id"),
		Stars:   req.Stars,
		Comment: req.Comment,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toTripResponse(trip))
}

// GetTrip handles GET /v1/trips/:id
func (h *TripHandler) GetTrip(c *gin.Context) {
	trip, err := h.tripService.GetTrip(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toTripResponse(trip))
}

// GetAll handles GET /v1/trips
func (h *TripHandler) GetAll(c *gin.Context) {
	trips, err := h.tripService.GetAllTrips(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	var response []TripResponse
	for _, trip := range trips {
		response = append(response, toTripResponse(trip))
	}

	c.JSON(http.StatusOK, response)
}

// RiderTrips handles GET /v1/riders/:id/trips
func (h *TripHandler) RiderTrips(c *gin.Context) {
	trips, err := h.tripService.GetRiderTrips(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	var response []TripResponse
	for _, trip := range trips {
		response = append(response, toTripResponse(trip))
	}

	c.JSON(http.StatusOK, response)
}

// ActiveTrip handles GET /v1/riders/:id/active-trip
func (h *TripHandler) ActiveTrip(c *gin.Context) {
	trip, ok := h.tripService.ActiveTrip(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "no active trip"})
		return
	}

	respondJSON(c, http.StatusOK, toTripResponse(trip))
}

// ReceiptResponse is the HTTP response for a trip receipt.
type ReceiptResponse struct {
	ID              string  `json:"id"`
	TripID          string  `json:"trip_id"`
	RiderID         string  `json:"rider_id"`
	DriverID        string  `json:"driver_id"`
	DriverName      string  `json:"driver_name,omitempty"`
	Pickup          string  `json:"pickup"`
	Dropoff         string  `json:"dropoff"`
	DistanceKm      float64 `json:"distance_km"`
	DurationSeconds int64   `json:"duration_seconds"`
	Fare            float64 `json:"fare"`
	Commission      float64 `json:"commission"`
	DriverShare     float64 `json:"driver_share"`
	PaymentMethod   string  `json:"payment_method"`
	CompletedAt     string  `json:"completed_at"`
	Formatted       string  `json:"formatted"`
}

// Receipt handles GET /v1/trips/:id/receipt
func (h *TripHandler) Receipt(c *gin.Context) {
	receipt, err := h.receiptService.GenerateReceipt(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, ReceiptResponse{
		ID:              receipt.ID,
		TripID:          receipt.TripID,
		RiderID:         receipt.RiderID,
		DriverID:        receipt.DriverID,
		DriverName:      receipt.DriverName,
		Pickup:          receipt.Pickup,
		Dropoff:         receipt.Dropoff,
		DistanceKm:      receipt.DistanceKm,
		DurationSeconds: int64(receipt.Duration.Seconds()),
		Fare:            receipt.Fare,
		Commission:      receipt.Commission,
		DriverShare:     receipt.DriverShare,
		PaymentMethod:   string(receipt.Method),
		CompletedAt:     receipt.CompletedAt.Format("2006-01-02T15:04:05Z07:00"),
		Formatted:       h.receiptService.FormatReceipt(receipt),
	})
}
