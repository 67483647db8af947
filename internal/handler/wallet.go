package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"rideshare/internal/domain"
	"rideshare/internal/service"
)

// WalletHandler handles HTTP requests for wallets.
type WalletHandler struct {
	walletService *service.WalletService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletService *service.WalletService) *WalletHandler {
	return &WalletHandler{walletService: walletService}
}

// AdjustBalanceRequest is the HTTP request body for a manual balance change.
type AdjustBalanceRequest struct {
	OwnerID   string  `json:"owner_id"`
	OwnerType string  `json:"owner_type"` // rider, driver, platform
	Delta     float64 `json:"delta"`
	Reason    string  `json:"reason,omitempty"`
}

// WalletResponse is the HTTP response for wallet data.
type WalletResponse struct {
	OwnerID   string  `json:"owner_id"`
	OwnerType string  `json:"owner_type"`
	Balance   float64 `json:"balance"`
	UpdatedAt string  `json:"updated_at,omitempty"`
}

// AffordResponse is the HTTP response for an affordability check.
type AffordResponse struct {
	RiderID   string  `json:"rider_id"`
	Amount    float64 `json:"amount"`
	CanAfford bool    `json:"can_afford"`
}

func toWalletResponse(wallet *domain.Wallet) WalletResponse {
	response := WalletResponse{
		OwnerID:   wallet.OwnerID,
		OwnerType: string(wallet.OwnerType),
		Balance:   wallet.Balance,
	}

	if !wallet.UpdatedAt.IsZero() {
		response.UpdatedAt = wallet.UpdatedAt.Format("2006-01-02T15:04:05Z07:00")
	}

	return response
}

// GetWallet handles GET /v1/wallets/:ownerType/:ownerId
func (h *WalletHandler) GetWallet(c *gin.Context) {
	wallet, err := h.walletService.GetWallet(c.Request.Context(), c.Param("ownerId"), domain.OwnerType(c.Param("ownerType")))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toWalletResponse(wallet))
}

// Adjust handles POST /v1/wallets/adjust
func (h *WalletHandler) Adjust(c *gin.Context) {
	var req AdjustBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	balance, err := h.walletService.AdjustBalance(c.Request.Context(), service.AdjustBalanceRequest{
		OwnerID:   req.OwnerID,
		OwnerType: domain.OwnerType(req.OwnerType),
		Delta:     req.Delta,
		Reason:    req.Reason,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, WalletResponse{
		OwnerID:   req.OwnerID,
		OwnerType: req.OwnerType,
		Balance:   balance,
	})
}

// Afford handles GET /v1/wallets/:ownerType/:ownerId/afford?amount=F
//
// Affordability is a rider concept; other owner types get a 400. The answer
// is advisory: the authoritative check is the conditional debit at capture.
func (h *WalletHandler) Afford(c *gin.Context) {
	if domain.OwnerType(c.Param("ownerType")) != domain.OwnerTypeRider {
		respondError(c, service.ErrInvalidOwner)
		return
	}

	amount, err := strconv.ParseFloat(c.Query("amount"), 64)
	if err != nil || amount < 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid amount"})
		return
	}

	riderID := c.Param("ownerId")
	ok, err := h.walletService.CanAfford(c.Request.Context(), riderID, amount)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, AffordResponse{
		RiderID:   riderID,
		Amount:    amount,
		CanAfford: ok,
	})
}
