package basket

import (
	"github.com/orderhub/orderhub-backend/pkg/db/models"
	"github.com/shopspring/decimal"
)

// BasketDTO is the read shape for a user's basket with its computed total.
type BasketDTO struct {
	ID    int64           `json:"id"`
	Items []BasketItemDTO `json:"items"`
	Total decimal.Decimal `json:"total_sum"`
}

// BasketItemDTO is one basket line with its listing snapshot and line total.
type BasketItemDTO struct {
	ID        int64           `json:"id"`
	Listing   ListingRef      `json:"listing"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// ListingRef identifies the listing a basket line points at.
type ListingRef struct {
	ID       int64           `json:"id"`
	Product  string          `json:"product"`
	Category string          `json:"category"`
	Shop     string          `json:"shop"`
	Model    string          `json:"model"`
	Price    decimal.Decimal `json:"price"`
}

// AddItemInput adds one listing to the basket.
type AddItemInput struct {
	ProductInfoID int64 `json:"product_info" validate:"required,gt=0"`
	Quantity      int   `json:"quantity" validate:"required,gt=0"`
}

// UpdateItemInput changes the quantity of an existing basket line.
type UpdateItemInput struct {
	ID       int64 `json:"id" validate:"required,gt=0"`
	Quantity int   `json:"quantity" validate:"required,gt=0"`
}

// ItemError reports a per-item failure inside a partially applied request.
type ItemError struct {
	Index   int    `json:"index"`
	Message string `json:"message"`
}

// MutationResult summarizes a basket write that may partially succeed.
type MutationResult struct {
	Applied int         `json:"applied"`
	Errors  []ItemError `json:"errors,omitempty"`
}

func itemFromModel(item models.OrderItem) BasketItemDTO {
	dto := BasketItemDTO{
		ID:       item.ID,
		Quantity: item.Quantity,
	}
	if item.ProductInfo != nil {
		dto.Listing = ListingRef{
			ID:    item.ProductInfo.ID,
			Model: item.ProductInfo.Model,
			Price: item.ProductInfo.Price,
		}
		if item.ProductInfo.Product != nil {
			dto.Listing.Product = item.ProductInfo.Product.Name
			if item.ProductInfo.Product.Category != nil {
				dto.Listing.Category = item.ProductInfo.Product.Category.Name
			}
		}
		if item.ProductInfo.Shop != nil {
			dto.Listing.Shop = item.ProductInfo.Shop.Name
		}
		dto.LineTotal = item.ProductInfo.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
	}
	return dto
}
