package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name  string    `gorm:"not null;column:name" json:"name"`
	Email string    `gorm:"index;column:email" json:"email,omitempty"`

	// WalletAddress, when set, receives certificates minted for this user.
	WalletAddress *string `gorm:"column:wallet_address" json:"walletAddress,omitempty"`

	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Wallet returns the trimmed wallet address or "".
func (u *User) Wallet() string {
	if u == nil || u.WalletAddress == nil {
		return ""
	}
	return strings.TrimSpace(*u.WalletAddress)
}
