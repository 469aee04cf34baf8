package catalog

import (
	"context"
	"io"
	"testing"

	"github.com/orderhub/orderhub-backend/pkg/config"
	"github.com/orderhub/orderhub-backend/pkg/db"
	"github.com/orderhub/orderhub-backend/pkg/db/models"
	"github.com/orderhub/orderhub-backend/pkg/enums"
	pkgerrors "github.com/orderhub/orderhub-backend/pkg/errors"
	"github.com/orderhub/orderhub-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestImporter(t *testing.T, conn *gorm.DB) Importer {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "catalog-test", Output: io.Discard})
	imp, err := NewImporter(ImporterParams{
		DB:      db.NewWithConn(conn),
		Fetcher: NewFetcher(config.ImportConfig{MaxFeedBytes: 1 << 20}),
		Logger:  logg,
	})
	require.NoError(t, err)
	return imp
}

func TestImportCreatesShopAndCatalog(t *testing.T) {
	conn := setupCatalogTestDB(t)
	imp := newTestImporter(t, conn)
	supplier := mustCreateTestUser(t, conn, "supplier@example.com", enums.UserRoleShop)

	result, err := imp.Import(context.Background(), supplier.ID, []byte(sampleFeed))
	require.NoError(t, err)
	require.Equal(t, "Svyaznoy", result.Shop)
	require.Equal(t, 2, result.Categories)
	require.Equal(t, 2, result.Listings)

	var shop models.Shop
	require.NoError(t, conn.First(&shop, "name = ?", "Svyaznoy").Error)
	require.Equal(t, supplier.ID, shop.UserID)
	require.True(t, shop.State)

	var listingCount int64
	require.NoError(t, conn.Model(&models.ProductInfo{}).Where("shop_id = ?", shop.ID).Count(&listingCount).Error)
	require.EqualValues(t, 2, listingCount)

	var phone models.ProductInfo
	require.NoError(t, conn.Preload("Parameters").First(&phone, "external_id = ?", 4216292).Error)
	require.True(t, phone.Price.Equal(decimal.NewFromInt(110000)))
	require.Len(t, phone.Parameters, 3)

	var linkCount int64
	require.NoError(t, conn.Table("shop_categories").Where("shop_id = ?", shop.ID).Count(&linkCount).Error)
	require.EqualValues(t, 2, linkCount)
}

func TestImportReplacesListings(t *testing.T) {
	conn := setupCatalogTestDB(t)
	imp := newTestImporter(t, conn)
	supplier := mustCreateTestUser(t, conn, "supplier@example.com", enums.UserRoleShop)
	ctx := context.Background()

	_, err := imp.Import(ctx, supplier.ID, []byte(sampleFeed))
	require.NoError(t, err)

	smaller := `
shop: Svyaznoy
categories:
  - id: 224
    name: Smartphones
goods:
  - id: 4216292
    category: 224
    model: apple/iphone/xs-max
    name: Apple iPhone XS Max 512GB (gold)
    price: 99000
    price_rrc: 105000
    quantity: 5
`
	result, err := imp.Import(ctx, supplier.ID, []byte(smaller))
	require.NoError(t, err)
	require.Equal(t, 1, result.Listings)

	var listings []models.ProductInfo
	require.NoError(t, conn.Find(&listings).Error)
	require.Len(t, listings, 1)
	require.True(t, listings[0].Price.Equal(decimal.NewFromInt(99000)))
	require.Equal(t, 5, listings[0].Quantity)

	// Orphaned parameter values must not survive the replacement.
	var paramCount int64
	require.NoError(t, conn.Model(&models.ProductParameter{}).
		Where("product_info_id <> ?", listings[0].ID).Count(&paramCount).Error)
	require.Zero(t, paramCount)

	// Category links only grow.
	var linkCount int64
	require.NoError(t, conn.Table("shop_categories").Count(&linkCount).Error)
	require.EqualValues(t, 2, linkCount)
}

func TestImportKeepsFirstCategoryName(t *testing.T) {
	conn := setupCatalogTestDB(t)
	imp := newTestImporter(t, conn)
	first := mustCreateTestUser(t, conn, "first@example.com", enums.UserRoleShop)
	second := mustCreateTestUser(t, conn, "second@example.com", enums.UserRoleShop)
	ctx := context.Background()

	_, err := imp.Import(ctx, first.ID, []byte(sampleFeed))
	require.NoError(t, err)

	renamed := `
shop: Another Shop
categories:
  - id: 224
    name: Phones Renamed
goods: []
`
	_, err = imp.Import(ctx, second.ID, []byte(renamed))
	require.NoError(t, err)

	var category models.Category
	require.NoError(t, conn.First(&category, "id = ?", 224).Error)
	require.Equal(t, "Smartphones", category.Name)
}

func TestImportRejectsForeignShopName(t *testing.T) {
	conn := setupCatalogTestDB(t)
	imp := newTestImporter(t, conn)
	owner := mustCreateTestUser(t, conn, "owner@example.com", enums.UserRoleShop)
	intruder := mustCreateTestUser(t, conn, "intruder@example.com", enums.UserRoleShop)
	ctx := context.Background()

	_, err := imp.Import(ctx, owner.ID, []byte(sampleFeed))
	require.NoError(t, err)

	_, err = imp.Import(ctx, intruder.ID, []byte(sampleFeed))
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected coded error, got %v", err)
	require.Equal(t, pkgerrors.CodeConflict, typed.Code())
}

func TestImportPurgesBasketItems(t *testing.T) {
	conn := setupCatalogTestDB(t)
	imp := newTestImporter(t, conn)
	supplier := mustCreateTestUser(t, conn, "supplier@example.com", enums.UserRoleShop)
	buyer := mustCreateTestUser(t, conn, "buyer@example.com", enums.UserRoleBuyer)
	ctx := context.Background()

	_, err := imp.Import(ctx, supplier.ID, []byte(sampleFeed))
	require.NoError(t, err)

	var listing models.ProductInfo
	require.NoError(t, conn.First(&listing, "external_id = ?", 4216292).Error)

	basket := &models.Order{UserID: buyer.ID, State: enums.OrderStateBasket}
	require.NoError(t, conn.Create(basket).Error)
	require.NoError(t, conn.Create(&models.OrderItem{
		OrderID:       basket.ID,
		ProductInfoID: listing.ID,
		Quantity:      2,
	}).Error)

	result, err := imp.Import(ctx, supplier.ID, []byte(sampleFeed))
	require.NoError(t, err)
	require.EqualValues(t, 1, result.RemovedBasketItems)

	var itemCount int64
	require.NoError(t, conn.Model(&models.OrderItem{}).Count(&itemCount).Error)
	require.Zero(t, itemCount)
}

func TestImportBlockedByPlacedOrder(t *testing.T) {
	conn := setupCatalogTestDB(t)
	imp := newTestImporter(t, conn)
	supplier := mustCreateTestUser(t, conn, "supplier@example.com", enums.UserRoleShop)
	buyer := mustCreateTestUser(t, conn, "buyer@example.com", enums.UserRoleBuyer)
	ctx := context.Background()

	_, err := imp.Import(ctx, supplier.ID, []byte(sampleFeed))
	require.NoError(t, err)

	var listing models.ProductInfo
	require.NoError(t, conn.First(&listing, "external_id = ?", 4216292).Error)

	order := &models.Order{UserID: buyer.ID, State: enums.OrderStateNew}
	require.NoError(t, conn.Create(order).Error)
	require.NoError(t, conn.Create(&models.OrderItem{
		OrderID:       order.ID,
		ProductInfoID: listing.ID,
		Quantity:      1,
	}).Error)

	_, err = imp.Import(ctx, supplier.ID, []byte(sampleFeed))
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected coded error, got %v", err)
	require.Equal(t, pkgerrors.CodeStateConflict, typed.Code())

	// The failed import must not have touched the catalog.
	var listingCount int64
	require.NoError(t, conn.Model(&models.ProductInfo{}).Count(&listingCount).Error)
	require.EqualValues(t, 2, listingCount)
	var itemCount int64
	require.NoError(t, conn.Model(&models.OrderItem{}).Count(&itemCount).Error)
	require.EqualValues(t, 1, itemCount)
}

func TestImportInvalidFeedLeavesNoTrace(t *testing.T) {
	conn := setupCatalogTestDB(t)
	imp := newTestImporter(t, conn)
	supplier := mustCreateTestUser(t, conn, "supplier@example.com", enums.UserRoleShop)

	bad := `
shop: Svyaznoy
categories:
  - id: 224
    name: Smartphones
goods:
  - id: 1
    category: 999
    name: Ghost
    price: 1
    price_rrc: 1
    quantity: 1
`
	_, err := imp.Import(context.Background(), supplier.ID, []byte(bad))
	requireValidation(t, err)

	var shopCount int64
	require.NoError(t, conn.Model(&models.Shop{}).Count(&shopCount).Error)
	require.Zero(t, shopCount)
}

func TestImportRenamesOwnShop(t *testing.T) {
	conn := setupCatalogTestDB(t)
	imp := newTestImporter(t, conn)
	supplier := mustCreateTestUser(t, conn, "supplier@example.com", enums.UserRoleShop)
	ctx := context.Background()

	_, err := imp.Import(ctx, supplier.ID, []byte(sampleFeed))
	require.NoError(t, err)

	renamed := `
shop: Svyaznoy Retail
categories:
  - id: 224
    name: Smartphones
goods: []
`
	result, err := imp.Import(ctx, supplier.ID, []byte(renamed))
	require.NoError(t, err)

	var shop models.Shop
	require.NoError(t, conn.First(&shop, "id = ?", result.ShopID).Error)
	require.Equal(t, "Svyaznoy Retail", shop.Name)

	var shopCount int64
	require.NoError(t, conn.Model(&models.Shop{}).Count(&shopCount).Error)
	require.EqualValues(t, 1, shopCount)
}

func TestImportFailureRestoresPreviousCatalog(t *testing.T) {
	conn := setupCatalogTestDB(t)
	imp := newTestImporter(t, conn)
	supplier := mustCreateTestUser(t, conn, "supplier@example.com", enums.UserRoleShop)
	ctx := context.Background()

	_, err := imp.Import(ctx, supplier.ID, []byte(sampleFeed))
	require.NoError(t, err)

	// Make every listing insert fail, so the re-import dies after it has
	// already deleted the previous listing set inside the transaction.
	require.NoError(t, conn.Exec(`CREATE TRIGGER block_listing_writes
BEFORE INSERT ON product_infos
BEGIN SELECT RAISE(ABORT, 'listing writes disabled'); END`).Error)

	_, err = imp.Import(ctx, supplier.ID, []byte(sampleFeed))
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected coded error, got %v", err)
	require.Equal(t, pkgerrors.CodeDependency, typed.Code())

	require.NoError(t, conn.Exec(`DROP TRIGGER block_listing_writes`).Error)

	// The rollback must leave the pre-import catalog untouched.
	var listings []models.ProductInfo
	require.NoError(t, conn.Preload("Parameters").Order("external_id ASC").Find(&listings).Error)
	require.Len(t, listings, 2)
	require.EqualValues(t, 4216292, listings[0].ExternalID)
	require.True(t, listings[0].Price.Equal(decimal.NewFromInt(110000)))
	require.Len(t, listings[0].Parameters, 3)
}
