package wallet

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/caseeracademy/sky-agent-platform-sub002/internal/database"
	"github.com/caseeracademy/sky-agent-platform-sub002/internal/models"
	"github.com/caseeracademy/sky-agent-platform-sub002/internal/utils"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func createAgent(t *testing.T, db *gorm.DB) *models.Agent {
	agent := models.Agent{
		ID:           uuid.New(),
		Email:        uuid.NewString() + "@example.com",
		AgentCode:    utils.GenerateAgentCode(8),
		PasswordHash: "x",
		Role:         models.RoleAgent,
		IsActive:     true,
	}
	require.NoError(t, db.Create(&agent).Error)
	return &agent
}

func creditAgent(t *testing.T, db *gorm.DB, svc *WalletService, agentID uuid.UUID, amount float64) {
	err := db.Transaction(func(tx *gorm.DB) error {
		return svc.CreditCommissionWithTx(tx, agentID, amount, "TEST_REF", "test credit", nil)
	})
	require.NoError(t, err)
}

func TestGetOrCreateWallet(t *testing.T) {
	db := setupTestDB(t)
	svc := NewWalletService(db)
	agent := createAgent(t, db)

	wallet, err := svc.GetOrCreateWallet(agent.ID)
	require.NoError(t, err)
	assert.Equal(t, agent.ID, wallet.AgentID)
	assert.Equal(t, 0.0, wallet.Balance)
	assert.Equal(t, "USD", wallet.Currency)

	again, err := svc.GetOrCreateWallet(agent.ID)
	require.NoError(t, err)
	assert.Equal(t, wallet.ID, again.ID)
}

func TestCreditCommissionRecordsAuditRow(t *testing.T) {
	db := setupTestDB(t)
	svc := NewWalletService(db)
	agent := createAgent(t, db)

	creditAgent(t, db, svc, agent.ID, 250)
	creditAgent(t, db, svc, agent.ID, 150)

	balance, err := svc.Balance(agent.ID)
	require.NoError(t, err)
	assert.Equal(t, 400.0, balance)

	wallet, err := svc.GetOrCreateWallet(agent.ID)
	require.NoError(t, err)

	var transactions []models.WalletTransaction
	require.NoError(t, db.Where("wallet_id = ?", wallet.ID).Order("created_at asc").Find(&transactions).Error)
	require.Len(t, transactions, 2)
	assert.Equal(t, models.WalletTxTypeCommission, transactions[0].Type)
	assert.Equal(t, 0.0, transactions[0].BalanceBefore)
	assert.Equal(t, 250.0, transactions[0].BalanceAfter)
	assert.Equal(t, 250.0, transactions[1].BalanceBefore)
	assert.Equal(t, 400.0, transactions[1].BalanceAfter)
}

func TestRequestPayoutChecksBalance(t *testing.T) {
	db := setupTestDB(t)
	svc := NewWalletService(db)
	agent := createAgent(t, db)

	creditAgent(t, db, svc, agent.ID, 100)

	_, err := svc.RequestPayout(agent.ID, 150)
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	payout, err := svc.RequestPayout(agent.ID, 80)
	require.NoError(t, err)
	assert.Equal(t, models.PayoutStatusPending, payout.Status)
	assert.Equal(t, 80.0, payout.Amount)

	// no funds are held at request time
	balance, err := svc.Balance(agent.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, balance)

	var history []models.PayoutHistory
	require.NoError(t, db.Where("payout_id = ?", payout.ID).Find(&history).Error)
	require.Len(t, history, 1)
	assert.Equal(t, models.PayoutStatusPending, history[0].Status)
}

func TestRequestPayoutRejectsNonPositiveAmount(t *testing.T) {
	db := setupTestDB(t)
	svc := NewWalletService(db)
	agent := createAgent(t, db)

	_, err := svc.RequestPayout(agent.ID, 0)
	assert.Error(t, err)
	_, err = svc.RequestPayout(agent.ID, -10)
	assert.Error(t, err)
}

func TestApprovePayoutDebitsWallet(t *testing.T) {
	db := setupTestDB(t)
	svc := NewWalletService(db)
	agent := createAgent(t, db)
	admin := createAgent(t, db)

	creditAgent(t, db, svc, agent.ID, 100)

	payout, err := svc.RequestPayout(agent.ID, 80)
	require.NoError(t, err)

	approved, err := svc.ApprovePayout(payout.ID, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PayoutStatusPaid, approved.Status)
	assert.NotNil(t, approved.ProcessedAt)
	require.NotNil(t, approved.DecidedByID)
	assert.Equal(t, admin.ID, *approved.DecidedByID)

	balance, err := svc.Balance(agent.ID)
	require.NoError(t, err)
	assert.Equal(t, 20.0, balance)

	wallet, err := svc.GetOrCreateWallet(agent.ID)
	require.NoError(t, err)

	var debit models.WalletTransaction
	require.NoError(t, db.Where("wallet_id = ? AND type = ?", wallet.ID, models.WalletTxTypePayout).First(&debit).Error)
	assert.Equal(t, -80.0, debit.Amount)
	assert.Equal(t, 100.0, debit.BalanceBefore)
	assert.Equal(t, 20.0, debit.BalanceAfter)
}

func TestConcurrentPayoutsCannotOverdraw(t *testing.T) {
	db := setupTestDB(t)
	svc := NewWalletService(db)
	agent := createAgent(t, db)
	admin := createAgent(t, db)

	creditAgent(t, db, svc, agent.ID, 100)

	// Both requests pass the optimistic check against the 100 balance
	first, err := svc.RequestPayout(agent.ID, 80)
	require.NoError(t, err)
	second, err := svc.RequestPayout(agent.ID, 80)
	require.NoError(t, err)

	_, err = svc.ApprovePayout(first.ID, admin.ID)
	require.NoError(t, err)

	// The guarded debit catches the second approval
	_, err = svc.ApprovePayout(second.ID, admin.ID)
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	balance, err := svc.Balance(agent.ID)
	require.NoError(t, err)
	assert.Equal(t, 20.0, balance)

	// the failed approval left the payout pending
	reloaded, err := svc.GetPayout(second.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PayoutStatusPending, reloaded.Status)
}

func TestRejectPayoutLeavesBalance(t *testing.T) {
	db := setupTestDB(t)
	svc := NewWalletService(db)
	agent := createAgent(t, db)
	admin := createAgent(t, db)

	creditAgent(t, db, svc, agent.ID, 100)

	payout, err := svc.RequestPayout(agent.ID, 50)
	require.NoError(t, err)

	rejected, err := svc.RejectPayout(payout.ID, admin.ID, "bank details missing")
	require.NoError(t, err)
	assert.Equal(t, models.PayoutStatusRejected, rejected.Status)
	assert.Equal(t, "bank details missing", rejected.AdminNotes)

	balance, err := svc.Balance(agent.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, balance)

	// decided payouts cannot be decided again
	_, err = svc.ApprovePayout(payout.ID, admin.ID)
	assert.ErrorIs(t, err, ErrInvalidPayoutStatus)
	_, err = svc.RejectPayout(payout.ID, admin.ID, "again")
	assert.ErrorIs(t, err, ErrInvalidPayoutStatus)
}

func TestListPayoutsFilters(t *testing.T) {
	db := setupTestDB(t)
	svc := NewWalletService(db)
	agent := createAgent(t, db)
	other := createAgent(t, db)
	admin := createAgent(t, db)

	creditAgent(t, db, svc, agent.ID, 200)
	creditAgent(t, db, svc, other.ID, 200)

	first, err := svc.RequestPayout(agent.ID, 50)
	require.NoError(t, err)
	_, err = svc.RequestPayout(other.ID, 60)
	require.NoError(t, err)
	_, err = svc.ApprovePayout(first.ID, admin.ID)
	require.NoError(t, err)

	all, err := svc.ListPayouts(nil, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := svc.ListPayouts(&agent.ID, "")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, first.ID, mine[0].ID)

	pending, err := svc.ListPayouts(nil, models.PayoutStatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, other.ID, pending[0].AgentID)
}

func TestTransactionHistoryPagination(t *testing.T) {
	db := setupTestDB(t)
	svc := NewWalletService(db)
	agent := createAgent(t, db)

	for i := 0; i < 5; i++ {
		creditAgent(t, db, svc, agent.ID, 10)
	}

	wallet, err := svc.GetOrCreateWallet(agent.ID)
	require.NoError(t, err)

	page, total, err := svc.GetTransactionHistory(wallet.ID, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, page, 3)

	page, _, err = svc.GetTransactionHistory(wallet.ID, 2, 3)
	require.NoError(t, err)
	assert.Len(t, page, 2)
}
