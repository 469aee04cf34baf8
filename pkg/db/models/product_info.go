package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductInfo is one supplier's listing of a product: their external id,
// model label, price and available quantity. The whole set for a shop is
// replaced atomically on every feed import.
type ProductInfo struct {
	ID         int64              `gorm:"column:id;primaryKey;autoIncrement"`
	ProductID  int64              `gorm:"column:product_id;not null;uniqueIndex:idx_product_infos_listing"`
	ShopID     int64              `gorm:"column:shop_id;not null;uniqueIndex:idx_product_infos_listing"`
	ExternalID int64              `gorm:"column:external_id;not null;uniqueIndex:idx_product_infos_listing"`
	Model      string             `gorm:"column:model;not null"`
	Price      decimal.Decimal    `gorm:"column:price;type:numeric(12,2);not null"`
	PriceRRC   decimal.Decimal    `gorm:"column:price_rrc;type:numeric(12,2);not null"`
	Quantity   int                `gorm:"column:quantity;not null"`
	Product    *Product           `gorm:"foreignKey:ProductID"`
	Shop       *Shop              `gorm:"foreignKey:ShopID"`
	Parameters []ProductParameter `gorm:"foreignKey:ProductInfoID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
