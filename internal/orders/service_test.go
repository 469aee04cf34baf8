package orders

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/orderhub/orderhub-backend/pkg/db"
	"github.com/orderhub/orderhub-backend/pkg/db/models"
	"github.com/orderhub/orderhub-backend/pkg/enums"
	pkgerrors "github.com/orderhub/orderhub-backend/pkg/errors"
	"github.com/orderhub/orderhub-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type sentNotification struct {
	kind    string
	email   string
	orderID int64
	state   string
}

type captureSender struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (s *captureSender) RegistrationConfirm(_ context.Context, email string, userID int64, _ string) error {
	s.record(sentNotification{kind: "registration", email: email, orderID: userID})
	return nil
}

func (s *captureSender) OrderPlaced(_ context.Context, email string, orderID int64) error {
	s.record(sentNotification{kind: "placed", email: email, orderID: orderID})
	return nil
}

func (s *captureSender) OrderStateChanged(_ context.Context, email string, orderID int64, state string) error {
	s.record(sentNotification{kind: "state", email: email, orderID: orderID, state: state})
	return nil
}

func (s *captureSender) record(n sentNotification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, n)
}

func newTestOrderService(t *testing.T, conn *gorm.DB) (Service, *captureSender) {
	t.Helper()
	sender := &captureSender{}
	logg := logger.New(logger.Options{ServiceName: "orders-test", Output: io.Discard})
	svc, err := NewService(ServiceParams{DB: db.NewWithConn(conn), Sender: sender, Logger: logg})
	require.NoError(t, err)
	return svc, sender
}

func TestPlaceOrder(t *testing.T) {
	conn := setupOrdersTestDB(t)
	svc, sender := newTestOrderService(t, conn)

	buyer := mustCreateOrdersTestUser(t, conn, "buyer@example.com", enums.UserRoleBuyer)
	supplier := mustCreateOrdersTestUser(t, conn, "supplier@example.com", enums.UserRoleShop)
	shop := mustCreateShop(t, conn, "Svyaznoy", supplier.ID)
	phone := mustCreateOrdersListing(t, conn, shop.ID, "iPhone XR", "110000.00")
	contact := mustCreateContact(t, conn, buyer.ID)
	basket := mustCreateBasket(t, conn, buyer.ID, map[int64]int{phone: 2})

	placed, err := svc.Place(context.Background(), buyer.ID, PlaceInput{OrderID: basket.ID, ContactID: contact.ID})
	require.NoError(t, err)
	require.Equal(t, enums.OrderStateNew.String(), placed.State)
	require.NotNil(t, placed.Contact)
	require.Equal(t, "Moscow", placed.Contact.City)
	require.True(t, placed.Total.Equal(decimal.RequireFromString("220000.00")))

	require.Len(t, sender.sent, 1)
	require.Equal(t, "placed", sender.sent[0].kind)
	require.Equal(t, "buyer@example.com", sender.sent[0].email)
	require.Equal(t, basket.ID, sender.sent[0].orderID)
}

func TestPlaceEmptyBasket(t *testing.T) {
	conn := setupOrdersTestDB(t)
	svc, sender := newTestOrderService(t, conn)

	buyer := mustCreateOrdersTestUser(t, conn, "buyer@example.com", enums.UserRoleBuyer)
	contact := mustCreateContact(t, conn, buyer.ID)
	basket := mustCreateBasket(t, conn, buyer.ID, nil)

	_, err := svc.Place(context.Background(), buyer.ID, PlaceInput{OrderID: basket.ID, ContactID: contact.ID})
	requireOrderCode(t, err, pkgerrors.CodeValidation)
	require.Empty(t, sender.sent)
}

func TestPlaceForeignOrder(t *testing.T) {
	conn := setupOrdersTestDB(t)
	svc, _ := newTestOrderService(t, conn)

	alice := mustCreateOrdersTestUser(t, conn, "alice@example.com", enums.UserRoleBuyer)
	mallory := mustCreateOrdersTestUser(t, conn, "mallory@example.com", enums.UserRoleBuyer)
	supplier := mustCreateOrdersTestUser(t, conn, "supplier@example.com", enums.UserRoleShop)
	shop := mustCreateShop(t, conn, "Svyaznoy", supplier.ID)
	phone := mustCreateOrdersListing(t, conn, shop.ID, "iPhone XR", "110000.00")
	basket := mustCreateBasket(t, conn, alice.ID, map[int64]int{phone: 1})
	contact := mustCreateContact(t, conn, mallory.ID)

	_, err := svc.Place(context.Background(), mallory.ID, PlaceInput{OrderID: basket.ID, ContactID: contact.ID})
	requireOrderCode(t, err, pkgerrors.CodeNotFound)

	var state string
	require.NoError(t, conn.Model(&models.Order{}).Where("id = ?", basket.ID).Select("state").Scan(&state).Error)
	require.Equal(t, "basket", state)
}

func TestPlaceForeignContact(t *testing.T) {
	conn := setupOrdersTestDB(t)
	svc, _ := newTestOrderService(t, conn)

	buyer := mustCreateOrdersTestUser(t, conn, "buyer@example.com", enums.UserRoleBuyer)
	other := mustCreateOrdersTestUser(t, conn, "other@example.com", enums.UserRoleBuyer)
	supplier := mustCreateOrdersTestUser(t, conn, "supplier@example.com", enums.UserRoleShop)
	shop := mustCreateShop(t, conn, "Svyaznoy", supplier.ID)
	phone := mustCreateOrdersListing(t, conn, shop.ID, "iPhone XR", "110000.00")
	basket := mustCreateBasket(t, conn, buyer.ID, map[int64]int{phone: 1})
	foreignContact := mustCreateContact(t, conn, other.ID)

	_, err := svc.Place(context.Background(), buyer.ID, PlaceInput{OrderID: basket.ID, ContactID: foreignContact.ID})
	requireOrderCode(t, err, pkgerrors.CodeNotFound)
}

func TestPlaceTwice(t *testing.T) {
	conn := setupOrdersTestDB(t)
	svc, _ := newTestOrderService(t, conn)

	buyer := mustCreateOrdersTestUser(t, conn, "buyer@example.com", enums.UserRoleBuyer)
	supplier := mustCreateOrdersTestUser(t, conn, "supplier@example.com", enums.UserRoleShop)
	shop := mustCreateShop(t, conn, "Svyaznoy", supplier.ID)
	phone := mustCreateOrdersListing(t, conn, shop.ID, "iPhone XR", "110000.00")
	contact := mustCreateContact(t, conn, buyer.ID)
	basket := mustCreateBasket(t, conn, buyer.ID, map[int64]int{phone: 1})

	_, err := svc.Place(context.Background(), buyer.ID, PlaceInput{OrderID: basket.ID, ContactID: contact.ID})
	require.NoError(t, err)

	_, err = svc.Place(context.Background(), buyer.ID, PlaceInput{OrderID: basket.ID, ContactID: contact.ID})
	requireOrderCode(t, err, pkgerrors.CodeStateConflict)
}

func TestListForBuyerExcludesBasket(t *testing.T) {
	conn := setupOrdersTestDB(t)
	svc, _ := newTestOrderService(t, conn)

	buyer := mustCreateOrdersTestUser(t, conn, "buyer@example.com", enums.UserRoleBuyer)
	supplier := mustCreateOrdersTestUser(t, conn, "supplier@example.com", enums.UserRoleShop)
	shop := mustCreateShop(t, conn, "Svyaznoy", supplier.ID)
	phone := mustCreateOrdersListing(t, conn, shop.ID, "iPhone XR", "110000.00")
	contact := mustCreateContact(t, conn, buyer.ID)
	basket := mustCreateBasket(t, conn, buyer.ID, map[int64]int{phone: 1})

	orders, err := svc.ListForBuyer(context.Background(), buyer.ID)
	require.NoError(t, err)
	require.Empty(t, orders)

	_, err = svc.Place(context.Background(), buyer.ID, PlaceInput{OrderID: basket.ID, ContactID: contact.ID})
	require.NoError(t, err)

	orders, err = svc.ListForBuyer(context.Background(), buyer.ID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Equal(t, basket.ID, orders[0].ID)
	require.Len(t, orders[0].Items, 1)
	require.Equal(t, "iPhone XR", orders[0].Items[0].Listing.Product)
	require.True(t, orders[0].Total.Equal(decimal.RequireFromString("110000.00")))
}

func TestListForSupplierOwnShare(t *testing.T) {
	conn := setupOrdersTestDB(t)
	svc, _ := newTestOrderService(t, conn)

	buyer := mustCreateOrdersTestUser(t, conn, "buyer@example.com", enums.UserRoleBuyer)
	svyaznoyOwner := mustCreateOrdersTestUser(t, conn, "svyaznoy@example.com", enums.UserRoleShop)
	technoOwner := mustCreateOrdersTestUser(t, conn, "techno@example.com", enums.UserRoleShop)
	svyaznoy := mustCreateShop(t, conn, "Svyaznoy", svyaznoyOwner.ID)
	techno := mustCreateShop(t, conn, "TechnoPoint", technoOwner.ID)

	phone := mustCreateOrdersListing(t, conn, svyaznoy.ID, "iPhone XR", "110000.00")
	charger := mustCreateOrdersListing(t, conn, techno.ID, "Charger", "2990.00")

	contact := mustCreateContact(t, conn, buyer.ID)
	basket := mustCreateBasket(t, conn, buyer.ID, map[int64]int{phone: 1, charger: 2})

	_, err := svc.Place(context.Background(), buyer.ID, PlaceInput{OrderID: basket.ID, ContactID: contact.ID})
	require.NoError(t, err)

	orders, err := svc.ListForSupplier(context.Background(), technoOwner.ID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Len(t, orders[0].Items, 1)
	require.Equal(t, "Charger", orders[0].Items[0].Listing.Product)
	require.True(t, orders[0].Total.Equal(decimal.RequireFromString("5980.00")))
}

func TestListForSupplierWithoutShop(t *testing.T) {
	conn := setupOrdersTestDB(t)
	svc, _ := newTestOrderService(t, conn)
	shopless := mustCreateOrdersTestUser(t, conn, "shopless@example.com", enums.UserRoleShop)

	_, err := svc.ListForSupplier(context.Background(), shopless.ID)
	requireOrderCode(t, err, pkgerrors.CodeNotFound)
}

func TestSupplierSkipsUnplacedBaskets(t *testing.T) {
	conn := setupOrdersTestDB(t)
	svc, _ := newTestOrderService(t, conn)

	buyer := mustCreateOrdersTestUser(t, conn, "buyer@example.com", enums.UserRoleBuyer)
	supplier := mustCreateOrdersTestUser(t, conn, "supplier@example.com", enums.UserRoleShop)
	shop := mustCreateShop(t, conn, "Svyaznoy", supplier.ID)
	phone := mustCreateOrdersListing(t, conn, shop.ID, "iPhone XR", "110000.00")
	mustCreateBasket(t, conn, buyer.ID, map[int64]int{phone: 1})

	orders, err := svc.ListForSupplier(context.Background(), supplier.ID)
	require.NoError(t, err)
	require.Empty(t, orders)
}

func TestChangeState(t *testing.T) {
	conn := setupOrdersTestDB(t)
	svc, sender := newTestOrderService(t, conn)

	buyer := mustCreateOrdersTestUser(t, conn, "buyer@example.com", enums.UserRoleBuyer)
	supplier := mustCreateOrdersTestUser(t, conn, "supplier@example.com", enums.UserRoleShop)
	shop := mustCreateShop(t, conn, "Svyaznoy", supplier.ID)
	phone := mustCreateOrdersListing(t, conn, shop.ID, "iPhone XR", "110000.00")
	contact := mustCreateContact(t, conn, buyer.ID)
	basket := mustCreateBasket(t, conn, buyer.ID, map[int64]int{phone: 1})

	_, err := svc.Place(context.Background(), buyer.ID, PlaceInput{OrderID: basket.ID, ContactID: contact.ID})
	require.NoError(t, err)

	require.NoError(t, svc.ChangeState(context.Background(), supplier.ID, basket.ID, "confirmed"))

	var state string
	require.NoError(t, conn.Model(&models.Order{}).Where("id = ?", basket.ID).Select("state").Scan(&state).Error)
	require.Equal(t, "confirmed", state)

	last := sender.sent[len(sender.sent)-1]
	require.Equal(t, "state", last.kind)
	require.Equal(t, "buyer@example.com", last.email)
	require.Equal(t, "confirmed", last.state)
}

func TestChangeStateRejectsInvalid(t *testing.T) {
	conn := setupOrdersTestDB(t)
	svc, _ := newTestOrderService(t, conn)
	supplier := mustCreateOrdersTestUser(t, conn, "supplier@example.com", enums.UserRoleShop)
	mustCreateShop(t, conn, "Svyaznoy", supplier.ID)

	err := svc.ChangeState(context.Background(), supplier.ID, 1, "shipped-ish")
	requireOrderCode(t, err, pkgerrors.CodeValidation)

	err = svc.ChangeState(context.Background(), supplier.ID, 1, "basket")
	requireOrderCode(t, err, pkgerrors.CodeValidation)
}

func TestChangeStateForeignSupplier(t *testing.T) {
	conn := setupOrdersTestDB(t)
	svc, _ := newTestOrderService(t, conn)

	buyer := mustCreateOrdersTestUser(t, conn, "buyer@example.com", enums.UserRoleBuyer)
	supplier := mustCreateOrdersTestUser(t, conn, "supplier@example.com", enums.UserRoleShop)
	outsider := mustCreateOrdersTestUser(t, conn, "outsider@example.com", enums.UserRoleShop)
	shop := mustCreateShop(t, conn, "Svyaznoy", supplier.ID)
	mustCreateShop(t, conn, "TechnoPoint", outsider.ID)
	phone := mustCreateOrdersListing(t, conn, shop.ID, "iPhone XR", "110000.00")
	contact := mustCreateContact(t, conn, buyer.ID)
	basket := mustCreateBasket(t, conn, buyer.ID, map[int64]int{phone: 1})

	_, err := svc.Place(context.Background(), buyer.ID, PlaceInput{OrderID: basket.ID, ContactID: contact.ID})
	require.NoError(t, err)

	err = svc.ChangeState(context.Background(), outsider.ID, basket.ID, "confirmed")
	requireOrderCode(t, err, pkgerrors.CodeNotFound)
}

func requireOrderCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	require.Equal(t, code, coded.Code())
}
