package models

import "time"

// Product is the catalog-wide article shared across shops. Suppliers list
// it with their own pricing through ProductInfo rows.
type Product struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Name       string    `gorm:"column:name;not null;uniqueIndex:idx_products_name_category"`
	CategoryID int64     `gorm:"column:category_id;not null;uniqueIndex:idx_products_name_category"`
	Category   *Category `gorm:"foreignKey:CategoryID"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
