package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/caseeracademy/sky-agent-platform-sub002/internal/services/wallet"
)

// WalletHandler handles agent wallet requests
type WalletHandler struct {
	db        *gorm.DB
	walletSvc *wallet.WalletService
}

// NewWalletHandler creates a new wallet handler
func NewWalletHandler(db *gorm.DB, walletSvc *wallet.WalletService) *WalletHandler {
	return &WalletHandler{db: db, walletSvc: walletSvc}
}

// GetWallet gets the agent's wallet with its current balance
func (h *WalletHandler) GetWallet(c *gin.Context) {
	agentID, ok := callerID(c)
	if !ok {
		return
	}

	w, err := h.walletSvc.GetOrCreateWallet(agentID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get wallet"})
		return
	}

	c.JSON(http.StatusOK, w)
}

// GetTransactions gets the agent's paginated wallet transaction history
func (h *WalletHandler) GetTransactions(c *gin.Context) {
	agentID, ok := callerID(c)
	if !ok {
		return
	}

	w, err := h.walletSvc.GetOrCreateWallet(agentID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get wallet"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	transactions, total, err := h.walletSvc.GetTransactionHistory(w.ID, page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get transactions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"transactions": transactions,
		"total":        total,
		"page":         page,
		"page_size":    pageSize,
	})
}
