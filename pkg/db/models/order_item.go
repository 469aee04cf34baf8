package models

import "time"

// OrderItem links an order to a listing with a positive quantity. The
// (order, listing) pair is unique, so adding the same listing twice
// surfaces as a per-item conflict rather than a second row.
type OrderItem struct {
	ID            int64        `gorm:"column:id;primaryKey;autoIncrement"`
	OrderID       int64        `gorm:"column:order_id;not null;uniqueIndex:idx_order_items_listing"`
	ProductInfoID int64        `gorm:"column:product_info_id;not null;uniqueIndex:idx_order_items_listing"`
	Quantity      int          `gorm:"column:quantity;not null"`
	ProductInfo   *ProductInfo `gorm:"foreignKey:ProductInfoID"`
	CreatedAt     time.Time    `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time    `gorm:"column:updated_at;autoUpdateTime"`
}
