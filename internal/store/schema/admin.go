package schema

import "time"

// Admin represents the admins table - reviewers allowed to obtain credentials
type Admin struct {
	ID       uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	Username string `gorm:"column:username;not null;uniqueIndex;type:varchar(64)"`
	// PasswordHash is a bcrypt hash
	PasswordHash string `gorm:"column:password_hash;not null;type:text"`
	// WalletAddress enables signature login when set
	WalletAddress *string   `gorm:"column:wallet_address;uniqueIndex;type:varchar(42)"`
	CreatedAt     time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

func (Admin) TableName() string {
	return "admins"
}
