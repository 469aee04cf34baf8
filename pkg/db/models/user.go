package models

import (
	"time"

	"github.com/orderhub/orderhub-backend/pkg/enums"
)

// User represents the canonical identity entity. Accounts stay inactive
// until the email confirmation token is redeemed.
type User struct {
	ID           int64          `gorm:"column:id;primaryKey;autoIncrement"`
	Email        string         `gorm:"column:email;type:text;not null;uniqueIndex"`
	PasswordHash string         `gorm:"column:password_hash;not null"`
	FirstName    string         `gorm:"column:first_name;not null"`
	LastName     string         `gorm:"column:last_name;not null"`
	Company      string         `gorm:"column:company"`
	Position     string         `gorm:"column:position"`
	Role         enums.UserRole `gorm:"column:role;type:text;not null;default:'buyer'"`
	IsActive     bool           `gorm:"column:is_active;not null;default:false"`
	LastLoginAt  *time.Time     `gorm:"column:last_login_at"`
	Contacts     []Contact      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
