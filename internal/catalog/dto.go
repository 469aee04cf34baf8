package catalog

import (
	"github.com/orderhub/orderhub-backend/pkg/db/models"
	"github.com/shopspring/decimal"
)

// ListingDTO is the public read shape for one supplier listing.
type ListingDTO struct {
	ID         int64             `json:"id"`
	Model      string            `json:"model"`
	Product    ListingProductDTO `json:"product"`
	Shop       ListingShopDTO    `json:"shop"`
	Quantity   int               `json:"quantity"`
	Price      decimal.Decimal   `json:"price"`
	PriceRRC   decimal.Decimal   `json:"price_rrc"`
	Parameters map[string]string `json:"parameters"`
}

// ListingProductDTO carries the catalog-wide product and category names.
type ListingProductDTO struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	CategoryID int64  `json:"category_id"`
	Category   string `json:"category"`
}

// ListingShopDTO identifies the supplier behind a listing.
type ListingShopDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CategoryDTO is the read shape for a feed category.
type CategoryDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ShopDTO is the public read shape for an active shop.
type ShopDTO struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	State bool   `json:"state"`
}

// ListingsPage wraps a page of listings with the cursor for the next one.
type ListingsPage struct {
	Items  []ListingDTO `json:"items"`
	Cursor string       `json:"cursor"`
}

func listingFromModel(info models.ProductInfo) ListingDTO {
	dto := ListingDTO{
		ID:         info.ID,
		Model:      info.Model,
		Quantity:   info.Quantity,
		Price:      info.Price,
		PriceRRC:   info.PriceRRC,
		Parameters: map[string]string{},
	}
	if info.Product != nil {
		dto.Product = ListingProductDTO{
			ID:         info.Product.ID,
			Name:       info.Product.Name,
			CategoryID: info.Product.CategoryID,
		}
		if info.Product.Category != nil {
			dto.Product.Category = info.Product.Category.Name
		}
	}
	if info.Shop != nil {
		dto.Shop = ListingShopDTO{ID: info.Shop.ID, Name: info.Shop.Name}
	}
	for _, pp := range info.Parameters {
		if pp.Parameter != nil {
			dto.Parameters[pp.Parameter.Name] = pp.Value
		}
	}
	return dto
}

func categoryFromModel(c models.Category) CategoryDTO {
	return CategoryDTO{ID: c.ID, Name: c.Name}
}

func shopFromModel(s models.Shop) ShopDTO {
	return ShopDTO{ID: s.ID, Name: s.Name, State: s.State}
}
