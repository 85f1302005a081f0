package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Wallet holds an agent's running commission balance available for payout.
// Invariant: Balance == sum of commission credits - sum of paid payouts.
type Wallet struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	AgentID   uuid.UUID      `gorm:"type:uuid;uniqueIndex;not null" json:"agent_id"`
	Agent     Agent          `gorm:"foreignKey:AgentID" json:"-"`
	Currency  string         `gorm:"type:varchar(3);not null;default:'USD'" json:"currency"`
	Balance   float64        `gorm:"type:decimal(20,2);default:0" json:"balance"`
	CreatedAt time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Wallet transaction types
const (
	WalletTxTypeCommission = "commission"
	WalletTxTypePayout     = "payout"
)

// WalletTransaction is an audit row recorded for every wallet mutation
type WalletTransaction struct {
	ID            uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	WalletID      uuid.UUID      `gorm:"type:uuid;index;not null" json:"wallet_id"`
	Wallet        Wallet         `gorm:"foreignKey:WalletID" json:"-"`
	Type          string         `gorm:"type:varchar(50);not null" json:"type"`
	Amount        float64        `gorm:"type:decimal(20,2);not null" json:"amount"`
	Currency      string         `gorm:"type:varchar(3);not null" json:"currency"`
	Reference     string         `gorm:"type:varchar(100)" json:"reference"`
	Description   string         `gorm:"type:text" json:"description"`
	MetaData      JSON           `gorm:"type:jsonb" json:"metadata"`
	BalanceBefore float64        `gorm:"type:decimal(20,2)" json:"balance_before"`
	BalanceAfter  float64        `gorm:"type:decimal(20,2)" json:"balance_after"`
	CreatedAt     time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}
