package schema

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bonesdao/onboarding/internal/domain"
)

// PendingTransferStatus is the resolution state of a dispatched but unconfirmed transfer
type PendingTransferStatus string

const (
	PendingTransferStatusPending PendingTransferStatus = "pending"
	PendingTransferStatusFailed  PendingTransferStatus = "failed"
)

// PendingTransfer represents the pending_transfers table - transfers whose caller
// stopped waiting before the ledger confirmed them
type PendingTransfer struct {
	ID               uint64                `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	TxHash           string                `gorm:"column:tx_hash;not null;uniqueIndex;type:varchar(66)" json:"tx_hash"`
	ChainID          domain.Chain          `gorm:"column:chain_id;not null;type:varchar(64)" json:"chain_id"`
	ReviewerAddress  string                `gorm:"column:reviewer_address;not null;type:varchar(42)" json:"reviewer_address"`
	RecipientAddress string                `gorm:"column:recipient_address;not null;type:varchar(42)" json:"recipient_address"`
	RecipientForum   string                `gorm:"column:recipient_forum;not null;default:'';type:text" json:"recipient_forum"`
	AssetKind        domain.AssetKind      `gorm:"column:asset_kind;not null;type:varchar(16)" json:"asset_kind"`
	Amount           decimal.Decimal       `gorm:"column:amount;not null;type:numeric" json:"amount"`
	Status           PendingTransferStatus `gorm:"column:status;not null;default:'pending';type:varchar(16)" json:"status"`
	LastCheckedAt    *time.Time            `gorm:"column:last_checked_at;type:timestamptz" json:"last_checked_at,omitempty"`
	CreatedAt        time.Time             `gorm:"column:created_at;not null;default:now();type:timestamptz" json:"created_at"`
}

func (PendingTransfer) TableName() string {
	return "pending_transfers"
}
