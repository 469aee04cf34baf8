package models

import "time"

// Category is a feed-assigned grouping of products. The id comes from the
// supplier feed, so it is not auto-generated. The shop link set only grows:
// imports union, never remove.
type Category struct {
	ID        int64     `gorm:"column:id;primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	Shops     []Shop    `gorm:"many2many:shop_categories"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
