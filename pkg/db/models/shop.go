package models

import "time"

// Shop is a supplier storefront. One user owns at most one shop, and
// State gates whether its listings are visible and orderable.
type Shop struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Name      string    `gorm:"column:name;not null;uniqueIndex"`
	UserID    int64     `gorm:"column:user_id;not null;uniqueIndex"`
	State     bool      `gorm:"column:state;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
