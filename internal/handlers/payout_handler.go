package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/caseeracademy/sky-agent-platform-sub002/internal/models"
	"github.com/caseeracademy/sky-agent-platform-sub002/internal/services/wallet"
)

// PayoutHandler handles agent payout requests
type PayoutHandler struct {
	db        *gorm.DB
	walletSvc *wallet.WalletService
}

// NewPayoutHandler creates a new payout handler
func NewPayoutHandler(db *gorm.DB, walletSvc *wallet.WalletService) *PayoutHandler {
	return &PayoutHandler{db: db, walletSvc: walletSvc}
}

// RequestPayout creates a pending payout request against the agent's balance
func (h *PayoutHandler) RequestPayout(c *gin.Context) {
	agentID, ok := callerID(c)
	if !ok {
		return
	}

	var input struct {
		Amount float64 `json:"amount" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payout, err := h.walletSvc.RequestPayout(agentID, input.Amount)
	if err != nil {
		if errors.Is(err, wallet.ErrInsufficientBalance) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "insufficient balance"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to request payout"})
		return
	}

	c.JSON(http.StatusCreated, payout)
}

// ListPayouts lists the agent's own payouts, optionally filtered by status
func (h *PayoutHandler) ListPayouts(c *gin.Context) {
	agentID, ok := callerID(c)
	if !ok {
		return
	}

	status := models.PayoutStatus(c.Query("status"))
	payouts, err := h.walletSvc.ListPayouts(&agentID, status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list payouts"})
		return
	}

	c.JSON(http.StatusOK, payouts)
}

// AdminPayoutHandler handles back-office payout decisions
type AdminPayoutHandler struct {
	db        *gorm.DB
	walletSvc *wallet.WalletService
}

// NewAdminPayoutHandler creates a new admin payout handler
func NewAdminPayoutHandler(db *gorm.DB, walletSvc *wallet.WalletService) *AdminPayoutHandler {
	return &AdminPayoutHandler{db: db, walletSvc: walletSvc}
}

// ListPayouts lists all payouts, optionally filtered by status
func (h *AdminPayoutHandler) ListPayouts(c *gin.Context) {
	status := models.PayoutStatus(c.Query("status"))
	payouts, err := h.walletSvc.ListPayouts(nil, status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list payouts"})
		return
	}

	c.JSON(http.StatusOK, payouts)
}

// ApprovePayout approves a pending payout and debits the agent's wallet
func (h *AdminPayoutHandler) ApprovePayout(c *gin.Context) {
	adminID, ok := callerID(c)
	if !ok {
		return
	}

	payoutID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payout ID"})
		return
	}

	payout, err := h.walletSvc.ApprovePayout(payoutID, adminID)
	if err != nil {
		respondPayoutError(c, err)
		return
	}

	c.JSON(http.StatusOK, payout)
}

// RejectPayout rejects a pending payout with a reason; the balance is unchanged
func (h *AdminPayoutHandler) RejectPayout(c *gin.Context) {
	adminID, ok := callerID(c)
	if !ok {
		return
	}

	payoutID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payout ID"})
		return
	}

	var input struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payout, err := h.walletSvc.RejectPayout(payoutID, adminID, input.Reason)
	if err != nil {
		respondPayoutError(c, err)
		return
	}

	c.JSON(http.StatusOK, payout)
}

// respondPayoutError maps payout errors to HTTP responses
func respondPayoutError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, wallet.ErrInsufficientBalance):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "insufficient balance"})
	case errors.Is(err, wallet.ErrInvalidPayoutStatus):
		c.JSON(http.StatusConflict, gin.H{"error": "payout is not pending"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
