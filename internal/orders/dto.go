package orders

import (
	"time"

	"github.com/orderhub/orderhub-backend/internal/contacts"
	"github.com/orderhub/orderhub-backend/pkg/db/models"
	"github.com/shopspring/decimal"
)

// OrderDTO is the read shape for a placed order with its computed total.
type OrderDTO struct {
	ID        int64                `json:"id"`
	State     string               `json:"state"`
	CreatedAt time.Time            `json:"created_at"`
	Contact   *contacts.ContactDTO `json:"contact,omitempty"`
	Items     []OrderItemDTO       `json:"items"`
	Total     decimal.Decimal      `json:"total_sum"`
}

// OrderItemDTO is one order line with its listing snapshot.
type OrderItemDTO struct {
	ID        int64           `json:"id"`
	Listing   ListingRef      `json:"listing"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// ListingRef identifies the listing an order line points at.
type ListingRef struct {
	ID       int64           `json:"id"`
	Product  string          `json:"product"`
	Category string          `json:"category"`
	Shop     string          `json:"shop"`
	Model    string          `json:"model"`
	Price    decimal.Decimal `json:"price"`
}

// PlaceInput identifies the basket to place and the delivery contact.
type PlaceInput struct {
	OrderID   int64 `json:"id" validate:"required,gt=0"`
	ContactID int64 `json:"contact" validate:"required,gt=0"`
}

func itemFromModel(item models.OrderItem) OrderItemDTO {
	dto := OrderItemDTO{
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

func orderFromModel(order models.Order, items []models.OrderItem) OrderDTO {
	dto := OrderDTO{
		ID:        order.ID,
		State:     order.State.String(),
		CreatedAt: order.CreatedAt,
		Items:     make([]OrderItemDTO, 0, len(items)),
		Total:     decimal.Zero,
	}
	if order.Contact != nil {
		contact := contacts.FromModel(*order.Contact)
		dto.Contact = &contact
	}
	for _, item := range items {
		line := itemFromModel(item)
		dto.Items = append(dto.Items, line)
		dto.Total = dto.Total.Add(line.LineTotal)
	}
	return dto
}
