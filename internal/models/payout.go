package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PayoutStatus represents the status of a payout request
type PayoutStatus string

const (
	PayoutStatusPending  PayoutStatus = "pending"
	PayoutStatusPaid     PayoutStatus = "paid"
	PayoutStatusRejected PayoutStatus = "rejected"
)

// Payout represents a withdrawal request against an agent's wallet balance.
// A pending payout reserves no funds; the balance is re-checked under a wallet
// lock when an admin approves it.
type Payout struct {
	ID          uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Reference   string         `gorm:"type:varchar(100);uniqueIndex;not null" json:"reference"`
	AgentID     uuid.UUID      `gorm:"type:uuid;index;not null" json:"agent_id"`
	Agent       Agent          `gorm:"foreignKey:AgentID" json:"-"`
	WalletID    uuid.UUID      `gorm:"type:uuid;index;not null" json:"wallet_id"`
	Wallet      Wallet         `gorm:"foreignKey:WalletID" json:"-"`
	Amount      float64        `gorm:"type:decimal(20,2);not null" json:"amount"`
	Currency    string         `gorm:"type:varchar(3);not null" json:"currency"`
	Status      PayoutStatus   `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	AdminNotes  string         `gorm:"type:text" json:"admin_notes"`
	DecidedByID *uuid.UUID     `gorm:"type:uuid" json:"decided_by_id"`
	RequestedAt time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"requested_at"`
	ProcessedAt *time.Time     `json:"processed_at"`
	CreatedAt   time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// PayoutHistory records every status change on a payout
type PayoutHistory struct {
	ID        uuid.UUID    `gorm:"type:uuid;primary_key" json:"id"`
	PayoutID  uuid.UUID    `gorm:"type:uuid;index;not null" json:"payout_id"`
	Payout    Payout       `gorm:"foreignKey:PayoutID" json:"-"`
	Status    PayoutStatus `gorm:"type:varchar(20);not null" json:"status"`
	Notes     string       `gorm:"type:text" json:"notes"`
	ChangedBy uuid.UUID    `gorm:"type:uuid" json:"changed_by"`
	CreatedAt time.Time    `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}
