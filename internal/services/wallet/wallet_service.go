package wallet

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/caseeracademy/sky-agent-platform-sub002/internal/models"
	"github.com/caseeracademy/sky-agent-platform-sub002/internal/utils"
)

var (
	// ErrInsufficientBalance is returned when a payout exceeds the wallet balance
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrInvalidPayoutStatus is returned when a decision targets a non-pending payout
	ErrInvalidPayoutStatus = errors.New("payout is not pending")
)

// WalletService maintains agent wallet balances and services payout requests.
// Every balance mutation runs inside a DB transaction and leaves a
// WalletTransaction audit row, so the balance always equals the sum of
// commission credits minus the sum of paid payouts.
type WalletService struct {
	db *gorm.DB
}

// NewWalletService creates a new wallet service
func NewWalletService(db *gorm.DB) *WalletService {
	return &WalletService{db: db}
}

// GetOrCreateWallet gets an agent's wallet or creates one if it doesn't exist
func (s *WalletService) GetOrCreateWallet(agentID uuid.UUID) (*models.Wallet, error) {
	return s.getOrCreateWallet(s.db, agentID)
}

func (s *WalletService) getOrCreateWallet(tx *gorm.DB, agentID uuid.UUID) (*models.Wallet, error) {
	var wallet models.Wallet

	err := tx.Where("agent_id = ?", agentID).First(&wallet).Error
	if err == nil {
		return &wallet, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("error finding wallet: %w", err)
	}

	wallet = models.Wallet{
		ID:       uuid.New(),
		AgentID:  agentID,
		Currency: "USD",
		Balance:  0,
	}

	if err := tx.Create(&wallet).Error; err != nil {
		return nil, fmt.Errorf("error creating wallet: %w", err)
	}

	return &wallet, nil
}

// CreditCommissionWithTx credits a commission amount to the agent's wallet
// inside an existing transaction and records the audit row
func (s *WalletService) CreditCommissionWithTx(tx *gorm.DB, agentID uuid.UUID, amount float64, reference, description string, metadata map[string]interface{}) error {
	wallet, err := s.getOrCreateWallet(tx, agentID)
	if err != nil {
		return err
	}

	balanceBefore := wallet.Balance

	result := tx.Model(&models.Wallet{}).
		Where("id = ?", wallet.ID).
		Update("balance", gorm.Expr("balance + ?", amount))
	if result.Error != nil {
		return fmt.Errorf("error updating wallet balance: %w", result.Error)
	}

	transaction := models.WalletTransaction{
		ID:            uuid.New(),
		WalletID:      wallet.ID,
		Type:          models.WalletTxTypeCommission,
		Amount:        amount,
		Currency:      wallet.Currency,
		Reference:     reference,
		Description:   description,
		MetaData:      metadata,
		BalanceBefore: balanceBefore,
		BalanceAfter:  balanceBefore + amount,
	}

	if err := tx.Create(&transaction).Error; err != nil {
		return fmt.Errorf("error creating transaction record: %w", err)
	}

	return nil
}

// Balance returns the agent's current wallet balance
func (s *WalletService) Balance(agentID uuid.UUID) (float64, error) {
	wallet, err := s.GetOrCreateWallet(agentID)
	if err != nil {
		return 0, err
	}
	return wallet.Balance, nil
}

// RequestPayout creates a pending payout for the agent. The amount is checked
// against the current balance but no funds are held; the balance is re-checked
// under the wallet guard when an admin approves the payout.
func (s *WalletService) RequestPayout(agentID uuid.UUID, amount float64) (*models.Payout, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("payout amount must be positive")
	}

	wallet, err := s.GetOrCreateWallet(agentID)
	if err != nil {
		return nil, err
	}

	if amount > wallet.Balance {
		return nil, ErrInsufficientBalance
	}

	payout := models.Payout{
		ID:          uuid.New(),
		Reference:   utils.GenerateReference("PAYOUT"),
		AgentID:     agentID,
		WalletID:    wallet.ID,
		Amount:      amount,
		Currency:    wallet.Currency,
		Status:      models.PayoutStatusPending,
		RequestedAt: time.Now(),
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&payout).Error; err != nil {
			return fmt.Errorf("error creating payout: %w", err)
		}
		return s.recordHistory(tx, payout.ID, models.PayoutStatusPending, "payout requested", agentID)
	})
	if err != nil {
		return nil, err
	}

	return &payout, nil
}

// ApprovePayout marks a pending payout as paid and debits the agent's wallet.
// The debit is a guarded atomic update so two concurrent approvals can never
// overdraw the wallet: the second one fails with ErrInsufficientBalance.
func (s *WalletService) ApprovePayout(payoutID, adminID uuid.UUID) (*models.Payout, error) {
	var payout models.Payout

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&payout, "id = ?", payoutID).Error; err != nil {
			return fmt.Errorf("error finding payout: %w", err)
		}

		if payout.Status != models.PayoutStatusPending {
			return ErrInvalidPayoutStatus
		}

		var wallet models.Wallet
		if err := tx.First(&wallet, "id = ?", payout.WalletID).Error; err != nil {
			return fmt.Errorf("error finding wallet: %w", err)
		}

		balanceBefore := wallet.Balance

		result := tx.Model(&models.Wallet{}).
			Where("id = ? AND balance >= ?", payout.WalletID, payout.Amount).
			Update("balance", gorm.Expr("balance - ?", payout.Amount))
		if result.Error != nil {
			return fmt.Errorf("error debiting wallet: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrInsufficientBalance
		}

		transaction := models.WalletTransaction{
			ID:            uuid.New(),
			WalletID:      payout.WalletID,
			Type:          models.WalletTxTypePayout,
			Amount:        -payout.Amount,
			Currency:      payout.Currency,
			Reference:     payout.Reference,
			Description:   "payout approved",
			BalanceBefore: balanceBefore,
			BalanceAfter:  balanceBefore - payout.Amount,
		}
		if err := tx.Create(&transaction).Error; err != nil {
			return fmt.Errorf("error creating transaction record: %w", err)
		}

		now := time.Now()
		payout.Status = models.PayoutStatusPaid
		payout.DecidedByID = &adminID
		payout.ProcessedAt = &now
		if err := tx.Save(&payout).Error; err != nil {
			return fmt.Errorf("error updating payout: %w", err)
		}

		return s.recordHistory(tx, payout.ID, models.PayoutStatusPaid, "payout approved", adminID)
	})
	if err != nil {
		return nil, err
	}

	return &payout, nil
}

// RejectPayout marks a pending payout as rejected with the supplied reason.
// The wallet balance is unaffected.
func (s *WalletService) RejectPayout(payoutID, adminID uuid.UUID, reason string) (*models.Payout, error) {
	var payout models.Payout

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&payout, "id = ?", payoutID).Error; err != nil {
			return fmt.Errorf("error finding payout: %w", err)
		}

		if payout.Status != models.PayoutStatusPending {
			return ErrInvalidPayoutStatus
		}

		now := time.Now()
		payout.Status = models.PayoutStatusRejected
		payout.AdminNotes = reason
		payout.DecidedByID = &adminID
		payout.ProcessedAt = &now
		if err := tx.Save(&payout).Error; err != nil {
			return fmt.Errorf("error updating payout: %w", err)
		}

		return s.recordHistory(tx, payout.ID, models.PayoutStatusRejected, reason, adminID)
	})
	if err != nil {
		return nil, err
	}

	return &payout, nil
}

// GetPayout gets a payout by ID
func (s *WalletService) GetPayout(payoutID uuid.UUID) (*models.Payout, error) {
	var payout models.Payout
	if err := s.db.First(&payout, "id = ?", payoutID).Error; err != nil {
		return nil, fmt.Errorf("error finding payout: %w", err)
	}
	return &payout, nil
}

// ListPayouts lists payouts, optionally filtered by agent and status
func (s *WalletService) ListPayouts(agentID *uuid.UUID, status models.PayoutStatus) ([]models.Payout, error) {
	query := s.db.Order("created_at DESC")
	if agentID != nil {
		query = query.Where("agent_id = ?", *agentID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var payouts []models.Payout
	if err := query.Find(&payouts).Error; err != nil {
		return nil, fmt.Errorf("error listing payouts: %w", err)
	}
	return payouts, nil
}

// GetTransactionHistory gets paginated transaction history for a wallet
func (s *WalletService) GetTransactionHistory(walletID uuid.UUID, page, pageSize int) ([]models.WalletTransaction, int64, error) {
	var transactions []models.WalletTransaction
	var total int64

	if err := s.db.Model(&models.WalletTransaction{}).Where("wallet_id = ?", walletID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("error counting transactions: %w", err)
	}

	offset := (page - 1) * pageSize
	if err := s.db.Where("wallet_id = ?", walletID).Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&transactions).Error; err != nil {
		return nil, 0, fmt.Errorf("error finding transactions: %w", err)
	}

	return transactions, total, nil
}

func (s *WalletService) recordHistory(tx *gorm.DB, payoutID uuid.UUID, status models.PayoutStatus, notes string, changedBy uuid.UUID) error {
	history := models.PayoutHistory{
		ID:        uuid.New(),
		PayoutID:  payoutID,
		Status:    status,
		Notes:     notes,
		ChangedBy: changedBy,
	}
	if err := tx.Create(&history).Error; err != nil {
		return fmt.Errorf("error recording payout history: %w", err)
	}
	return nil
}
