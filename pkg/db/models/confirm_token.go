package models

import "time"

// ConfirmToken is the single-use email confirmation key issued at
// registration and consumed on account activation.
type ConfirmToken struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	UserID    int64     `gorm:"column:user_id;not null;uniqueIndex"`
	Key       string    `gorm:"column:key;not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
