package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rideshare/internal/domain"
	"rideshare/internal/service"
)

// PayoutHandler handles HTTP requests for driver payouts.
type PayoutHandler struct {
	settlementService *service.SettlementService
}

// NewPayoutHandler creates a new PayoutHandler.
func NewPayoutHandler(settlementService *service.SettlementService) *PayoutHandler {
	return &PayoutHandler{settlementService: settlementService}
}

// PayoutResponse is the HTTP response for payout data.
type PayoutResponse struct {
	ID         string  `json:"id"`
	DriverID   string  `json:"driver_id"`
	TripID     string  `json:"trip_id"`
	Amount     float64 `json:"amount"`
	Status     string  `json:"status"`
	HeldAt     string  `json:"held_at"`
	ReleasedAt string  `json:"released_at,omitempty"`
}

func toPayoutResponse(payout *domain.Payout) PayoutResponse {
	response := PayoutResponse{
		ID:       payout.ID,
		DriverID: payout.DriverID,
		TripID:   payout.TripID,
		Amount:   payout.Amount,
		Status:   string(payout.Status),
		HeldAt:   payout.HeldAt.Format("2006-01-02T15:04:05Z07:00"),
	}

	if !payout.ReleasedAt.IsZero() {
		response.ReleasedAt = payout.ReleasedAt.Format("2006-01-02T15:04:05Z07:00")
	}

	return response
}

// Release handles POST /v1/payouts/:id/release
//
// The admin path for ending a review early; the worker releases held payouts
// automatically when the window elapses.
func (h *PayoutHandler) Release(c *gin.Context) {
	payout, err := h.settlementService.ReleasePayout(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toPayoutResponse(payout))
}

// DriverPayouts handles GET /v1/drivers/:id/payouts
func (h *PayoutHandler) DriverPayouts(c *gin.Context) {
	payouts, err := h.settlementService.ListDriverPayouts(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	var response []PayoutResponse
	for _, payout := range payouts {
		response = append(response, toPayoutResponse(payout))
	}

	c.JSON(http.StatusOK, response)
}
