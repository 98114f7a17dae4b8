package schema

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bonesdao/onboarding/internal/domain"
)

// TransactionRecord represents the transaction_records table - the immutable
// ledger of confirmed disbursements
type TransactionRecord struct {
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	// ReviewerAddress is the signer that paid out
	ReviewerAddress  string           `gorm:"column:reviewer_address;not null;type:varchar(42)" json:"reviewer_address"`
	RecipientAddress string           `gorm:"column:recipient_address;not null;index;type:varchar(42)" json:"recipient_address"`
	RecipientForum   string           `gorm:"column:recipient_forum;not null;default:'';type:text" json:"recipient_forum"`
	AssetKind        domain.AssetKind `gorm:"column:asset_kind;not null;type:varchar(16)" json:"asset_kind"`
	// Amount is in human units of the asset, arbitrary precision
	Amount decimal.Decimal `gorm:"column:amount;not null;type:numeric" json:"amount"`
	// TxHash is unique so the same transfer can never be recorded twice
	TxHash  *string      `gorm:"column:tx_hash;uniqueIndex;type:varchar(66)" json:"tx_hash,omitempty"`
	ChainID domain.Chain `gorm:"column:chain_id;not null;default:'';type:varchar(64)" json:"chain_id"`
	// TransferredAt is assigned by the database at insert time
	TransferredAt time.Time `gorm:"column:transferred_at;not null;default:now();type:timestamptz;<-:false" json:"transferred_at"`
}

// TableName specifies the table name for the TransactionRecord model
func (TransactionRecord) TableName() string {
	return "transaction_records"
}

// Validate checks a row decoded from the store
func (r TransactionRecord) Validate() error {
	if !r.AssetKind.Valid() {
		return errInvalidRow("transaction record", "unknown asset kind "+string(r.AssetKind))
	}
	if !r.Amount.IsPositive() {
		return errInvalidRow("transaction record", "non-positive amount")
	}
	return nil
}
