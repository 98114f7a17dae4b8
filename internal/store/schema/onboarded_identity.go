package schema

import (
	"time"

	"gorm.io/datatypes"
)

// OnboardedIdentity represents the onboarded_identities table - the append-only
// archive of approved submissions
type OnboardedIdentity struct {
	ID            uint64 `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	SubmissionID  uint64 `gorm:"column:submission_id;not null" json:"submission_id"`
	WalletAddress string `gorm:"column:wallet_address;not null;uniqueIndex;type:varchar(42)" json:"wallet_address"`
	Discord       string `gorm:"column:discord;not null;default:'';type:text" json:"discord"`
	WeChat        string `gorm:"column:wechat;not null;default:'';type:text" json:"wechat"`
	Telegram      string `gorm:"column:telegram;not null;default:'';type:text" json:"telegram"`
	Forum         string `gorm:"column:forum;not null;default:'';type:text" json:"forum"`
	Referrer      string `gorm:"column:referrer;not null;type:text" json:"referrer"`
	ApprovedBy    string `gorm:"column:approved_by;not null;type:text" json:"approved_by"`
	// Snapshot is the full submission row as it was at approval time
	Snapshot   datatypes.JSON `gorm:"column:snapshot;not null;type:jsonb" json:"snapshot"`
	ApprovedAt time.Time      `gorm:"column:approved_at;not null;default:now();type:timestamptz" json:"approved_at"`
}

// TableName specifies the table name for the OnboardedIdentity model
func (OnboardedIdentity) TableName() string {
	return "onboarded_identities"
}
