package orders

import (
	"context"

	"github.com/orderhub/orderhub-backend/pkg/db/models"
	"github.com/orderhub/orderhub-backend/pkg/enums"
	"gorm.io/gorm"
)

// Repository exposes order persistence operations.
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

// FindOrderForUser loads one order, scoped to its owner.
func (r *Repository) FindOrderForUser(ctx context.Context, orderID, userID int64) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// CountItems returns the number of lines in an order.
func (r *Repository) CountItems(ctx context.Context, orderID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Where("order_id = ?", orderID).
		Count(&count).Error
	return count, err
}

// ContactBelongsToUser reports whether the contact exists under that owner.
func (r *Repository) ContactBelongsToUser(ctx context.Context, contactID, userID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Contact{}).
		Where("id = ? AND user_id = ?", contactID, userID).
		Count(&count).Error
	return count > 0, err
}

// Place flips a basket into a new order and pins the delivery contact. The
// state guard in the WHERE clause makes a double place match zero rows.
func (r *Repository) Place(ctx context.Context, orderID, contactID int64) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND state = ?", orderID, enums.OrderStateBasket).
		Updates(map[string]any{
			"state":      enums.OrderStateNew,
			"contact_id": contactID,
		})
	return result.RowsAffected, result.Error
}

// UpdateState moves a placed order to a new lifecycle state. Baskets are
// excluded so this can never un-place or re-place an order.
func (r *Repository) UpdateState(ctx context.Context, orderID int64, state enums.OrderState) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND state <> ?", orderID, enums.OrderStateBasket).
		Update("state", state)
	return result.RowsAffected, result.Error
}

// ListForBuyer returns the user's placed orders, newest first, with items,
// listing data and the delivery contact preloaded.
func (r *Repository) ListForBuyer(ctx context.Context, userID int64) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND state <> ?", userID, enums.OrderStateBasket).
		Preload("Contact").
		Preload("Items").
		Preload("Items.ProductInfo").
		Preload("Items.ProductInfo.Product").
		Preload("Items.ProductInfo.Product.Category").
		Preload("Items.ProductInfo.Shop").
		Order("id DESC").
		Find(&orders).Error
	return orders, err
}

// ListForShop returns placed orders that contain at least one of the
// shop's listings, newest first. Items are preloaded unfiltered; callers
// narrow them to the shop's own lines.
func (r *Repository) ListForShop(ctx context.Context, shopID int64) ([]models.Order, error) {
	subquery := r.db.
		Model(&models.OrderItem{}).
		Select("order_items.order_id").
		Joins("JOIN product_infos ON product_infos.id = order_items.product_info_id").
		Where("product_infos.shop_id = ?", shopID)

	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("id IN (?) AND state <> ?", subquery, enums.OrderStateBasket).
		Preload("Contact").
		Preload("Items").
		Preload("Items.ProductInfo").
		Preload("Items.ProductInfo.Product").
		Preload("Items.ProductInfo.Product.Category").
		Preload("Items.ProductInfo.Shop").
		Order("id DESC").
		Find(&orders).Error
	return orders, err
}

// ShopHasLines reports whether the shop supplies at least one line of the
// order.
func (r *Repository) ShopHasLines(ctx context.Context, orderID, shopID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Joins("JOIN product_infos ON product_infos.id = order_items.product_info_id").
		Where("order_items.order_id = ? AND product_infos.shop_id = ?", orderID, shopID).
		Count(&count).Error
	return count > 0, err
}

// FindShopByUser loads the shop owned by the user.
func (r *Repository) FindShopByUser(ctx context.Context, userID int64) (*models.Shop, error) {
	var shop models.Shop
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&shop).Error
	if err != nil {
		return nil, err
	}
	return &shop, nil
}

// OrderOwnerEmail returns the email of the user who placed the order.
func (r *Repository) OrderOwnerEmail(ctx context.Context, orderID int64) (string, error) {
	var email string
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("users.email").
		Joins("JOIN orders ON orders.user_id = users.id").
		Where("orders.id = ?", orderID).
		Scan(&email).Error
	return email, err
}
