package basket

import (
	"context"
	"errors"
	"fmt"

	"github.com/orderhub/orderhub-backend/pkg/db"
	"github.com/orderhub/orderhub-backend/pkg/db/models"
	pkgerrors "github.com/orderhub/orderhub-backend/pkg/errors"
	"github.com/orderhub/orderhub-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service exposes the basket operations available to buyers.
type Service interface {
	Get(ctx context.Context, userID int64) (*BasketDTO, error)
	AddItems(ctx context.Context, userID int64, items []AddItemInput) (*MutationResult, error)
	UpdateQuantities(ctx context.Context, userID int64, items []UpdateItemInput) (*MutationResult, error)
	RemoveItems(ctx context.Context, userID int64, itemIDs []int64) (*MutationResult, error)
}

// ServiceParams bundles basket service dependencies.
type ServiceParams struct {
	DB     *db.Client
	Logger *logger.Logger
}

type service struct {
	db   *db.Client
	logg *logger.Logger
}

// NewService builds the basket service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &service{db: params.DB, logg: params.Logger}, nil
}

func (s *service) Get(ctx context.Context, userID int64) (*BasketDTO, error) {
	repo := NewRepository(s.db.DB())

	order, err := repo.FindBasket(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &BasketDTO{Items: []BasketItemDTO{}, Total: decimal.Zero}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load basket")
	}

	items, err := repo.Items(ctx, order.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load basket items")
	}
	total, err := repo.Total(ctx, order.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "compute basket total")
	}

	dto := &BasketDTO{ID: order.ID, Items: make([]BasketItemDTO, 0, len(items)), Total: total}
	for _, item := range items {
		dto.Items = append(dto.Items, itemFromModel(item))
	}
	return dto, nil
}

func (s *service) AddItems(ctx context.Context, userID int64, items []AddItemInput) (*MutationResult, error) {
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item is required")
	}

	result := &MutationResult{}
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)

		order, err := s.ensureBasket(ctx, repo, userID)
		if err != nil {
			return err
		}

		for i, input := range items {
			if input.Quantity <= 0 {
				result.Errors = append(result.Errors, ItemError{Index: i, Message: "quantity must be positive"})
				continue
			}
			if input.ProductInfoID <= 0 {
				result.Errors = append(result.Errors, ItemError{Index: i, Message: "product_info must be positive"})
				continue
			}

			exists, err := repo.ListingExists(ctx, input.ProductInfoID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check listing")
			}
			if !exists {
				result.Errors = append(result.Errors, ItemError{
					Index:   i,
					Message: fmt.Sprintf("listing %d not found", input.ProductInfoID),
				})
				continue
			}

			inserted, err := repo.AddItem(ctx, order.ID, input.ProductInfoID, input.Quantity)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add basket item")
			}
			if inserted == 0 {
				result.Errors = append(result.Errors, ItemError{
					Index:   i,
					Message: fmt.Sprintf("listing %d is already in the basket", input.ProductInfoID),
				})
				continue
			}
			result.Applied++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) UpdateQuantities(ctx context.Context, userID int64, items []UpdateItemInput) (*MutationResult, error) {
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item is required")
	}

	result := &MutationResult{}
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)

		order, err := repo.FindBasket(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "basket is empty")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load basket")
		}

		for i, input := range items {
			if input.Quantity <= 0 {
				result.Errors = append(result.Errors, ItemError{Index: i, Message: "quantity must be positive"})
				continue
			}
			affected, err := repo.UpdateItemQuantity(ctx, order.ID, input.ID, input.Quantity)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update basket item")
			}
			if affected == 0 {
				result.Errors = append(result.Errors, ItemError{
					Index:   i,
					Message: fmt.Sprintf("item %d is not in the basket", input.ID),
				})
				continue
			}
			result.Applied++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) RemoveItems(ctx context.Context, userID int64, itemIDs []int64) (*MutationResult, error) {
	if len(itemIDs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item id is required")
	}

	repo := NewRepository(s.db.DB())
	order, err := repo.FindBasket(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "basket is empty")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load basket")
	}

	deleted, err := repo.DeleteItems(ctx, order.ID, itemIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete basket items")
	}
	return &MutationResult{Applied: int(deleted)}, nil
}

// ensureBasket returns the user's basket, creating it on first use. A
// concurrent create loses the race on the partial unique index and falls
// back to reading the winner's row.
func (s *service) ensureBasket(ctx context.Context, repo *Repository, userID int64) (*models.Order, error) {
	existing, err := repo.FindBasket(ctx, userID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load basket")
	}

	created, err := repo.CreateBasket(ctx, userID)
	if err != nil {
		if db.IsUniqueViolation(err, "idx_orders_user_basket") {
			winner, findErr := repo.FindBasket(ctx, userID)
			if findErr != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, findErr, "load basket after race")
			}
			return winner, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create basket")
	}
	return created, nil
}
