package orders

import (
	"testing"

	"github.com/orderhub/orderhub-backend/pkg/db/models"
	"github.com/orderhub/orderhub-backend/pkg/enums"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  first_name TEXT NOT NULL DEFAULT '',
  last_name TEXT NOT NULL DEFAULT '',
  company TEXT,
  position TEXT,
  role TEXT NOT NULL DEFAULT 'buyer',
  is_active INTEGER NOT NULL DEFAULT 0,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS shops (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL UNIQUE,
  user_id INTEGER NOT NULL UNIQUE,
  state INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS categories (
  id INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS products (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  category_id INTEGER NOT NULL,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (name, category_id)
);`,
		`CREATE TABLE IF NOT EXISTS product_infos (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  product_id INTEGER NOT NULL,
  shop_id INTEGER NOT NULL,
  external_id INTEGER NOT NULL,
  model TEXT NOT NULL DEFAULT '',
  price NUMERIC NOT NULL,
  price_rrc NUMERIC NOT NULL,
  quantity INTEGER NOT NULL,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (product_id, shop_id, external_id)
);`,
		`CREATE TABLE IF NOT EXISTS contacts (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id INTEGER NOT NULL,
  city TEXT NOT NULL,
  street TEXT NOT NULL,
  house TEXT,
  structure TEXT,
  building TEXT,
  apartment TEXT,
  phone TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS orders (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id INTEGER NOT NULL,
  state TEXT NOT NULL DEFAULT 'basket',
  contact_id INTEGER,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_user_basket ON orders (user_id) WHERE state = 'basket';`,
		`CREATE TABLE IF NOT EXISTS order_items (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  order_id INTEGER NOT NULL,
  product_info_id INTEGER NOT NULL,
  quantity INTEGER NOT NULL,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (order_id, product_info_id)
);`,
	}
	for _, stmt := range statements {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

func mustCreateOrdersTestUser(t *testing.T, conn *gorm.DB, email string, role enums.UserRole) *models.User {
	t.Helper()
	user := &models.User{
		Email:        email,
		PasswordHash: "hash",
		FirstName:    "Orders",
		LastName:     "Tester",
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, conn.Create(user).Error)
	return user
}

func mustCreateShop(t *testing.T, conn *gorm.DB, name string, ownerID int64) *models.Shop {
	t.Helper()
	shop := &models.Shop{Name: name, UserID: ownerID, State: true}
	require.NoError(t, conn.Create(shop).Error)
	return shop
}

func mustCreateOrdersListing(t *testing.T, conn *gorm.DB, shopID int64, productName, price string) int64 {
	t.Helper()

	category := &models.Category{ID: 1, Name: "Smartphones"}
	require.NoError(t, conn.Where("id = ?", category.ID).FirstOrCreate(category).Error)

	product := &models.Product{Name: productName, CategoryID: category.ID}
	require.NoError(t, conn.Where("name = ? AND category_id = ?", productName, category.ID).FirstOrCreate(product).Error)

	listing := &models.ProductInfo{
		ProductID:  product.ID,
		ShopID:     shopID,
		ExternalID: product.ID*1000 + shopID,
		Model:      productName + " base",
		Price:      decimal.RequireFromString(price),
		PriceRRC:   decimal.RequireFromString(price),
		Quantity:   10,
	}
	require.NoError(t, conn.Create(listing).Error)
	return listing.ID
}

func mustCreateContact(t *testing.T, conn *gorm.DB, userID int64) *models.Contact {
	t.Helper()
	contact := &models.Contact{
		UserID: userID,
		City:   "Moscow",
		Street: "Tverskaya",
		House:  "7",
		Phone:  "+7 900 000-00-00",
	}
	require.NoError(t, conn.Create(contact).Error)
	return contact
}

func mustCreateBasket(t *testing.T, conn *gorm.DB, userID int64, lines map[int64]int) *models.Order {
	t.Helper()
	order := &models.Order{UserID: userID, State: enums.OrderStateBasket}
	require.NoError(t, conn.Create(order).Error)
	for listingID, quantity := range lines {
		item := &models.OrderItem{OrderID: order.ID, ProductInfoID: listingID, Quantity: quantity}
		require.NoError(t, conn.Create(item).Error)
	}
	return order
}
