package catalog

import (
	"context"
	"errors"

	"github.com/orderhub/orderhub-backend/pkg/db/models"
	"github.com/orderhub/orderhub-backend/pkg/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository wires together catalog persistence helpers.
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

// FindShopByName loads a shop by its globally unique name.
func (r *Repository) FindShopByName(ctx context.Context, name string) (*models.Shop, error) {
	var shop models.Shop
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&shop).Error; err != nil {
		return nil, err
	}
	return &shop, nil
}

// FindShopByUser loads the shop owned by the provided user.
func (r *Repository) FindShopByUser(ctx context.Context, userID int64) (*models.Shop, error) {
	var shop models.Shop
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&shop).Error; err != nil {
		return nil, err
	}
	return &shop, nil
}

// CreateShop inserts a new shop row.
func (r *Repository) CreateShop(ctx context.Context, shop *models.Shop) (*models.Shop, error) {
	if err := r.db.WithContext(ctx).Create(shop).Error; err != nil {
		return nil, err
	}
	return shop, nil
}

// UpdateShopState flips the shop's accepting-orders flag.
func (r *Repository) UpdateShopState(ctx context.Context, shopID int64, state bool) error {
	result := r.db.WithContext(ctx).
		Model(&models.Shop{}).
		Where("id = ?", shopID).
		UpdateColumn("state", state)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpsertCategory creates the category if it is new. An existing row keeps
// its name; the first feed to introduce an id wins.
func (r *Repository) UpsertCategory(ctx context.Context, id int64, name string) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error
	if err == nil {
		return &category, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	category = models.Category{ID: id, Name: name}
	if err := r.db.WithContext(ctx).Create(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// LinkShopCategory records that the shop sells in the category. The link
// set only grows; re-linking is a no-op.
func (r *Repository) LinkShopCategory(ctx context.Context, shopID, categoryID int64) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Table("shop_categories").
		Create(map[string]any{
			"shop_id":     shopID,
			"category_id": categoryID,
		}).Error
}

// GetOrCreateProduct finds the catalog-wide product by (name, category) or
// inserts it.
func (r *Repository) GetOrCreateProduct(ctx context.Context, name string, categoryID int64) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("name = ? AND category_id = ?", name, categoryID).
		First(&product).Error
	if err == nil {
		return &product, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	product = models.Product{Name: name, CategoryID: categoryID}
	if err := r.db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// GetOrCreateParameter finds the attribute name or inserts it.
func (r *Repository) GetOrCreateParameter(ctx context.Context, name string) (*models.Parameter, error) {
	var parameter models.Parameter
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&parameter).Error
	if err == nil {
		return &parameter, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	parameter = models.Parameter{Name: name}
	if err := r.db.WithContext(ctx).Create(&parameter).Error; err != nil {
		return nil, err
	}
	return &parameter, nil
}

// CreateListing inserts a supplier listing with its parameter values.
func (r *Repository) CreateListing(ctx context.Context, listing *models.ProductInfo) (*models.ProductInfo, error) {
	if err := r.db.WithContext(ctx).Create(listing).Error; err != nil {
		return nil, err
	}
	return listing, nil
}

// ListListingIDsByShop returns the ids of all listings the shop currently has.
func (r *Repository) ListListingIDsByShop(ctx context.Context, shopID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&models.ProductInfo{}).
		Where("shop_id = ?", shopID).
		Pluck("id", &ids).Error
	return ids, err
}

// CountPlacedItemsForListings counts order items on non-basket orders that
// reference any of the provided listings.
func (r *Repository) CountPlacedItemsForListings(ctx context.Context, listingIDs []int64) (int64, error) {
	if len(listingIDs) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("order_items.product_info_id IN ?", listingIDs).
		Where("orders.state <> ?", "basket").
		Count(&count).Error
	return count, err
}

// DeleteBasketItemsForListings removes basket lines that reference the
// provided listings. Runs inside the import transaction so a re-imported
// feed never leaves dangling basket rows.
func (r *Repository) DeleteBasketItemsForListings(ctx context.Context, listingIDs []int64) (int64, error) {
	if len(listingIDs) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Where("product_info_id IN ?", listingIDs).
		Where("order_id IN (?)", r.db.Model(&models.Order{}).Select("id").Where("state = ?", "basket")).
		Delete(&models.OrderItem{})
	return result.RowsAffected, result.Error
}

// DeleteListingsByShop removes the shop's listings and their parameters.
func (r *Repository) DeleteListingsByShop(ctx context.Context, shopID int64) error {
	tx := r.db.WithContext(ctx)
	err := tx.
		Where("product_info_id IN (?)", tx.Model(&models.ProductInfo{}).Select("id").Where("shop_id = ?", shopID)).
		Delete(&models.ProductParameter{}).Error
	if err != nil {
		return err
	}
	return tx.Where("shop_id = ?", shopID).Delete(&models.ProductInfo{}).Error
}

// ListingFilters narrows the public listing query.
type ListingFilters struct {
	ShopID     *int64
	CategoryID *int64
}

type listingQuery struct {
	Pagination pagination.Params
	Filters    ListingFilters
}

// ListListings returns orderable listings from active shops, newest first,
// with product, shop, and parameter associations loaded.
func (r *Repository) ListListings(ctx context.Context, query listingQuery) ([]models.ProductInfo, string, error) {
	pageSize := pagination.NormalizeLimit(query.Pagination.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(query.Pagination.Limit)

	cursor, err := pagination.ParseCursor(query.Pagination.Cursor)
	if err != nil {
		return nil, "", err
	}

	qb := r.db.WithContext(ctx).
		Model(&models.ProductInfo{}).
		Joins("JOIN shops ON shops.id = product_infos.shop_id").
		Joins("JOIN products ON products.id = product_infos.product_id").
		Where("shops.state = ?", true)

	if query.Filters.ShopID != nil {
		qb = qb.Where("product_infos.shop_id = ?", *query.Filters.ShopID)
	}
	if query.Filters.CategoryID != nil {
		qb = qb.Where("products.category_id = ?", *query.Filters.CategoryID)
	}
	if cursor != nil {
		qb = qb.Where(
			"(product_infos.created_at < ?) OR (product_infos.created_at = ? AND product_infos.id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.ProductInfo
	err = qb.
		Preload("Product").
		Preload("Product.Category").
		Preload("Shop").
		Preload("Parameters").
		Preload("Parameters.Parameter").
		Order("product_infos.created_at DESC").
		Order("product_infos.id DESC").
		Limit(limitWithBuffer).
		Find(&rows).Error
	if err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return rows, nextCursor, nil
}

// ListCategories returns all known categories ordered by id.
func (r *Repository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var rows []models.Category
	err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error
	return rows, err
}

// ListActiveShops returns shops currently accepting orders.
func (r *Repository) ListActiveShops(ctx context.Context) ([]models.Shop, error) {
	var rows []models.Shop
	err := r.db.WithContext(ctx).Where("state = ?", true).Order("name ASC").Find(&rows).Error
	return rows, err
}
