package basket

import (
	"context"
	"io"
	"testing"

	"github.com/orderhub/orderhub-backend/pkg/db"
	"github.com/orderhub/orderhub-backend/pkg/db/models"
	pkgerrors "github.com/orderhub/orderhub-backend/pkg/errors"
	"github.com/orderhub/orderhub-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "basket-test", Output: io.Discard})
	svc, err := NewService(ServiceParams{DB: db.NewWithConn(conn), Logger: logg})
	require.NoError(t, err)
	return svc
}

func TestGetWithoutBasket(t *testing.T) {
	conn := setupBasketTestDB(t)
	svc := newTestService(t, conn)
	buyer := mustCreateBasketTestUser(t, conn, "buyer@example.com")

	basket, err := svc.Get(context.Background(), buyer.ID)
	require.NoError(t, err)
	require.Zero(t, basket.ID)
	require.Empty(t, basket.Items)
	require.True(t, basket.Total.IsZero())
}

func TestAddItemsCreatesBasket(t *testing.T) {
	conn := setupBasketTestDB(t)
	svc := newTestService(t, conn)
	buyer := mustCreateBasketTestUser(t, conn, "buyer@example.com")
	phone := mustCreateListing(t, conn, "Svyaznoy", "iPhone XR", "110000.00")
	caseID := mustCreateListing(t, conn, "Svyaznoy", "Silicone Case", "1150.50")

	result, err := svc.AddItems(context.Background(), buyer.ID, []AddItemInput{
		{ProductInfoID: phone, Quantity: 2},
		{ProductInfoID: caseID, Quantity: 3},
	})
	require.NoError(t, err)
	require.Equal(t, 2, result.Applied)
	require.Empty(t, result.Errors)

	basket, err := svc.Get(context.Background(), buyer.ID)
	require.NoError(t, err)
	require.NotZero(t, basket.ID)
	require.Len(t, basket.Items, 2)

	// 2 * 110000.00 + 3 * 1150.50
	want := decimal.RequireFromString("223451.50")
	require.True(t, basket.Total.Equal(want), "total %s, want %s", basket.Total, want)

	first := basket.Items[0]
	require.Equal(t, "iPhone XR", first.Listing.Product)
	require.Equal(t, "Svyaznoy", first.Listing.Shop)
	require.Equal(t, "Smartphones", first.Listing.Category)
	require.True(t, first.LineTotal.Equal(decimal.RequireFromString("220000.00")))
}

func TestAddItemsPartialFailures(t *testing.T) {
	conn := setupBasketTestDB(t)
	svc := newTestService(t, conn)
	buyer := mustCreateBasketTestUser(t, conn, "buyer@example.com")
	phone := mustCreateListing(t, conn, "Svyaznoy", "iPhone XR", "110000.00")
	charger := mustCreateListing(t, conn, "Svyaznoy", "Charger", "2990.00")

	_, err := svc.AddItems(context.Background(), buyer.ID, []AddItemInput{
		{ProductInfoID: phone, Quantity: 1},
	})
	require.NoError(t, err)

	result, err := svc.AddItems(context.Background(), buyer.ID, []AddItemInput{
		{ProductInfoID: phone, Quantity: 1},    // already in basket
		{ProductInfoID: 99999, Quantity: 1},    // unknown listing
		{ProductInfoID: charger, Quantity: 0},  // bad quantity
		{ProductInfoID: charger, Quantity: 2},  // fine
	})
	require.NoError(t, err)
	require.Equal(t, 1, result.Applied)
	require.Len(t, result.Errors, 3)
	require.Equal(t, []int{0, 1, 2}, []int{result.Errors[0].Index, result.Errors[1].Index, result.Errors[2].Index})

	basket, err := svc.Get(context.Background(), buyer.ID)
	require.NoError(t, err)
	require.Len(t, basket.Items, 2)
}

func TestAddItemsEmptyInput(t *testing.T) {
	conn := setupBasketTestDB(t)
	svc := newTestService(t, conn)
	buyer := mustCreateBasketTestUser(t, conn, "buyer@example.com")

	_, err := svc.AddItems(context.Background(), buyer.ID, nil)
	requireBasketCode(t, err, pkgerrors.CodeValidation)
}

func TestBasketIsSingletonPerUser(t *testing.T) {
	conn := setupBasketTestDB(t)
	svc := newTestService(t, conn)
	buyer := mustCreateBasketTestUser(t, conn, "buyer@example.com")
	phone := mustCreateListing(t, conn, "Svyaznoy", "iPhone XR", "110000.00")
	charger := mustCreateListing(t, conn, "Svyaznoy", "Charger", "2990.00")

	_, err := svc.AddItems(context.Background(), buyer.ID, []AddItemInput{{ProductInfoID: phone, Quantity: 1}})
	require.NoError(t, err)
	_, err = svc.AddItems(context.Background(), buyer.ID, []AddItemInput{{ProductInfoID: charger, Quantity: 1}})
	require.NoError(t, err)

	var basketCount int64
	require.NoError(t, conn.Model(&models.Order{}).Where("user_id = ? AND state = 'basket'", buyer.ID).Count(&basketCount).Error)
	require.EqualValues(t, 1, basketCount)
}

func TestUpdateQuantities(t *testing.T) {
	conn := setupBasketTestDB(t)
	svc := newTestService(t, conn)
	buyer := mustCreateBasketTestUser(t, conn, "buyer@example.com")
	phone := mustCreateListing(t, conn, "Svyaznoy", "iPhone XR", "110000.00")

	_, err := svc.AddItems(context.Background(), buyer.ID, []AddItemInput{{ProductInfoID: phone, Quantity: 1}})
	require.NoError(t, err)

	basket, err := svc.Get(context.Background(), buyer.ID)
	require.NoError(t, err)
	itemID := basket.Items[0].ID

	result, err := svc.UpdateQuantities(context.Background(), buyer.ID, []UpdateItemInput{
		{ID: itemID, Quantity: 5},
		{ID: 99999, Quantity: 2},
	})
	require.NoError(t, err)
	require.Equal(t, 1, result.Applied)
	require.Len(t, result.Errors, 1)
	require.Equal(t, 1, result.Errors[0].Index)

	basket, err = svc.Get(context.Background(), buyer.ID)
	require.NoError(t, err)
	require.Equal(t, 5, basket.Items[0].Quantity)
	require.True(t, basket.Total.Equal(decimal.RequireFromString("550000.00")))
}

func TestGetReflectsPriceChanges(t *testing.T) {
	conn := setupBasketTestDB(t)
	svc := newTestService(t, conn)
	buyer := mustCreateBasketTestUser(t, conn, "buyer@example.com")
	phone := mustCreateListing(t, conn, "Svyaznoy", "iPhone XR", "110000.00")

	_, err := svc.AddItems(context.Background(), buyer.ID, []AddItemInput{{ProductInfoID: phone, Quantity: 3}})
	require.NoError(t, err)

	// A supplier re-import changes the listing price under the basket.
	require.NoError(t, conn.Model(&models.ProductInfo{}).
		Where("id = ?", phone).
		Update("price", decimal.RequireFromString("99000.00")).Error)

	basket, err := svc.Get(context.Background(), buyer.ID)
	require.NoError(t, err)
	require.True(t, basket.Items[0].LineTotal.Equal(decimal.RequireFromString("297000.00")))
	require.True(t, basket.Total.Equal(decimal.RequireFromString("297000.00")))
}

func TestUpdateQuantitiesWithoutBasket(t *testing.T) {
	conn := setupBasketTestDB(t)
	svc := newTestService(t, conn)
	buyer := mustCreateBasketTestUser(t, conn, "buyer@example.com")

	_, err := svc.UpdateQuantities(context.Background(), buyer.ID, []UpdateItemInput{{ID: 1, Quantity: 2}})
	requireBasketCode(t, err, pkgerrors.CodeNotFound)
}

func TestMutationsScopedToOwnBasket(t *testing.T) {
	conn := setupBasketTestDB(t)
	svc := newTestService(t, conn)
	alice := mustCreateBasketTestUser(t, conn, "alice@example.com")
	mallory := mustCreateBasketTestUser(t, conn, "mallory@example.com")
	phone := mustCreateListing(t, conn, "Svyaznoy", "iPhone XR", "110000.00")
	charger := mustCreateListing(t, conn, "Svyaznoy", "Charger", "2990.00")

	_, err := svc.AddItems(context.Background(), alice.ID, []AddItemInput{{ProductInfoID: phone, Quantity: 1}})
	require.NoError(t, err)
	_, err = svc.AddItems(context.Background(), mallory.ID, []AddItemInput{{ProductInfoID: charger, Quantity: 1}})
	require.NoError(t, err)

	aliceBasket, err := svc.Get(context.Background(), alice.ID)
	require.NoError(t, err)
	aliceItem := aliceBasket.Items[0].ID

	result, err := svc.UpdateQuantities(context.Background(), mallory.ID, []UpdateItemInput{{ID: aliceItem, Quantity: 99}})
	require.NoError(t, err)
	require.Zero(t, result.Applied)
	require.Len(t, result.Errors, 1)

	removed, err := svc.RemoveItems(context.Background(), mallory.ID, []int64{aliceItem})
	require.NoError(t, err)
	require.Zero(t, removed.Applied)

	aliceBasket, err = svc.Get(context.Background(), alice.ID)
	require.NoError(t, err)
	require.Equal(t, 1, aliceBasket.Items[0].Quantity)
}

func TestRemoveItems(t *testing.T) {
	conn := setupBasketTestDB(t)
	svc := newTestService(t, conn)
	buyer := mustCreateBasketTestUser(t, conn, "buyer@example.com")
	phone := mustCreateListing(t, conn, "Svyaznoy", "iPhone XR", "110000.00")
	charger := mustCreateListing(t, conn, "Svyaznoy", "Charger", "2990.00")

	_, err := svc.AddItems(context.Background(), buyer.ID, []AddItemInput{
		{ProductInfoID: phone, Quantity: 1},
		{ProductInfoID: charger, Quantity: 1},
	})
	require.NoError(t, err)

	basket, err := svc.Get(context.Background(), buyer.ID)
	require.NoError(t, err)
	require.Len(t, basket.Items, 2)

	result, err := svc.RemoveItems(context.Background(), buyer.ID, []int64{basket.Items[0].ID, 99999})
	require.NoError(t, err)
	require.Equal(t, 1, result.Applied)

	basket, err = svc.Get(context.Background(), buyer.ID)
	require.NoError(t, err)
	require.Len(t, basket.Items, 1)
	require.True(t, basket.Total.Equal(decimal.RequireFromString("2990.00")))
}

func requireBasketCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	require.Equal(t, code, coded.Code())
}
