package basket

import (
	"context"

	"github.com/orderhub/orderhub-backend/pkg/db/models"
	"github.com/orderhub/orderhub-backend/pkg/enums"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository exposes basket persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindBasket loads the user's basket order, if one exists.
func (r *Repository) FindBasket(ctx context.Context, userID int64) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND state = ?", userID, enums.OrderStateBasket).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// CreateBasket inserts a new basket order for the user. The partial unique
// index on orders(user_id) WHERE state='basket' makes concurrent creates
// collide instead of duplicating.
func (r *Repository) CreateBasket(ctx context.Context, userID int64) (*models.Order, error) {
	order := &models.Order{UserID: userID, State: enums.OrderStateBasket}
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// AddItem appends a listing to the basket. A listing already present hits
// the (order_id, product_info_id) unique index and is skipped, which keeps
// the surrounding transaction usable for the remaining items. The returned
// count is zero for a skipped duplicate.
func (r *Repository) AddItem(ctx context.Context, orderID, productInfoID int64, quantity int) (int64, error) {
	item := &models.OrderItem{
		OrderID:       orderID,
		ProductInfoID: productInfoID,
		Quantity:      quantity,
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}, {Name: "product_info_id"}},
			DoNothing: true,
		}).
		Create(item)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// ListingExists reports whether the listing id is present in the catalog.
func (r *Repository) ListingExists(ctx context.Context, productInfoID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ProductInfo{}).
		Where("id = ?", productInfoID).
		Count(&count).Error
	return count > 0, err
}

// UpdateItemQuantity changes one line's quantity, scoped to the basket so a
// caller can never move another order's rows.
func (r *Repository) UpdateItemQuantity(ctx context.Context, orderID, itemID int64, quantity int) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Where("order_id = ? AND id = ?", orderID, itemID).
		UpdateColumn("quantity", quantity)
	return result.RowsAffected, result.Error
}

// DeleteItems removes the listed lines from the basket, again scoped by
// order id.
func (r *Repository) DeleteItems(ctx context.Context, orderID int64, itemIDs []int64) (int64, error) {
	if len(itemIDs) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Where("order_id = ? AND id IN ?", orderID, itemIDs).
		Delete(&models.OrderItem{})
	return result.RowsAffected, result.Error
}

// Items loads the basket lines with their listing snapshots.
func (r *Repository) Items(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := r.db.WithContext(ctx).
		Preload("ProductInfo").
		Preload("ProductInfo.Product").
		Preload("ProductInfo.Product.Category").
		Preload("ProductInfo.Shop").
		Where("order_id = ?", orderID).
		Order("id ASC").
		Find(&items).Error
	return items, err
}

// Total computes the basket total as one aggregate query.
func (r *Repository) Total(ctx context.Context, orderID int64) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).Raw(`
SELECT COALESCE(SUM(order_items.quantity * product_infos.price), 0)
FROM order_items
JOIN product_infos ON product_infos.id = order_items.product_info_id
WHERE order_items.order_id = ?`, orderID).Scan(&total).Error
	return total, err
}
