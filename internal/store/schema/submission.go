package schema

import (
	"time"

	"github.com/bonesdao/onboarding/internal/domain"
)

// Submission represents the submissions table - the active onboarding requests,
// one row per wallet address
type Submission struct {
	// ID is an auto-incrementing sequence number
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	// WalletAddress is the lowercase hex address the submission is tied to
	WalletAddress string `gorm:"column:wallet_address;not null;uniqueIndex;type:varchar(42)" json:"wallet_address"`
	Discord       string `gorm:"column:discord;not null;default:'';type:text" json:"discord"`
	WeChat        string `gorm:"column:wechat;not null;default:'';type:text" json:"wechat"`
	Telegram      string `gorm:"column:telegram;not null;default:'';type:text" json:"telegram"`
	Forum         string `gorm:"column:forum;not null;default:'';type:text" json:"forum"`
	Referrer      string `gorm:"column:referrer;not null;type:text" json:"referrer"`
	// Status is one of pending, approved, rejected
	Status domain.SubmissionStatus `gorm:"column:status;not null;default:'pending';type:varchar(16)" json:"status"`
	// ReviewedBy is the credential subject of the last reviewer
	ReviewedBy *string    `gorm:"column:reviewed_by;type:text" json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time `gorm:"column:reviewed_at;type:timestamptz" json:"reviewed_at,omitempty"`
	CreatedAt  time.Time  `gorm:"column:created_at;not null;default:now();type:timestamptz;<-:create" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;not null;default:now();type:timestamptz" json:"updated_at"`
}

// TableName specifies the table name for the Submission model
func (Submission) TableName() string {
	return "submissions"
}

// Contacts returns the social handles of the submission
func (s Submission) Contacts() domain.Contacts {
	return domain.Contacts{
		Discord:  s.Discord,
		WeChat:   s.WeChat,
		Telegram: s.Telegram,
		Forum:    s.Forum,
	}
}

// Validate checks a row decoded from the store before it crosses the store boundary
func (s Submission) Validate() error {
	if s.ID == 0 {
		return errInvalidRow("submission", "missing id")
	}
	if !domain.IsValidAddress(s.WalletAddress) {
		return errInvalidRow("submission", "malformed wallet address")
	}
	if !s.Status.Valid() {
		return errInvalidRow("submission", "unknown status "+string(s.Status))
	}
	return nil
}
