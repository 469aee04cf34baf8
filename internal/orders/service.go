package orders

import (
	"context"
	"errors"

	"github.com/orderhub/orderhub-backend/internal/notifications"
	"github.com/orderhub/orderhub-backend/pkg/db"
	"github.com/orderhub/orderhub-backend/pkg/db/models"
	"github.com/orderhub/orderhub-backend/pkg/enums"
	pkgerrors "github.com/orderhub/orderhub-backend/pkg/errors"
	"github.com/orderhub/orderhub-backend/pkg/logger"
	"gorm.io/gorm"
)

// Service exposes order placement and both read surfaces: the buyer's
// order history and the supplier's incoming orders.
type Service interface {
	Place(ctx context.Context, userID int64, input PlaceInput) (*OrderDTO, error)
	ListForBuyer(ctx context.Context, userID int64) ([]OrderDTO, error)
	ListForSupplier(ctx context.Context, ownerID int64) ([]OrderDTO, error)
	ChangeState(ctx context.Context, ownerID, orderID int64, state string) error
}

// ServiceParams bundles order service dependencies.
type ServiceParams struct {
	DB     *db.Client
	Sender notifications.Sender
	Logger *logger.Logger
}

type service struct {
	db     *db.Client
	sender notifications.Sender
	logg   *logger.Logger
}

// NewService builds the order service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	if params.Sender == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "notification sender required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &service{db: params.DB, sender: params.Sender, logg: params.Logger}, nil
}

func (s *service) Place(ctx context.Context, userID int64, input PlaceInput) (*OrderDTO, error) {
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)

		order, err := repo.FindOrderForUser(ctx, input.OrderID, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.State != enums.OrderStateBasket {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order has already been placed")
		}

		items, err := repo.CountItems(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count order items")
		}
		if items == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "basket is empty")
		}

		owned, err := repo.ContactBelongsToUser(ctx, input.ContactID, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check contact")
		}
		if !owned {
			return pkgerrors.New(pkgerrors.CodeNotFound, "contact not found")
		}

		affected, err := repo.Place(ctx, order.ID, input.ContactID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "place order")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order has already been placed")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyPlaced(ctx, input.OrderID)

	placed, err := s.loadBuyerOrder(ctx, userID, input.OrderID)
	if err != nil {
		return nil, err
	}
	return placed, nil
}

func (s *service) ListForBuyer(ctx context.Context, userID int64) ([]OrderDTO, error) {
	repo := NewRepository(s.db.DB())
	rows, err := repo.ListForBuyer(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	dtos := make([]OrderDTO, 0, len(rows))
	for _, order := range rows {
		dtos = append(dtos, orderFromModel(order, order.Items))
	}
	return dtos, nil
}

// ListForSupplier narrows every order down to the lines supplied by the
// owner's shop, so totals reflect the supplier's share, not the whole
// order.
func (s *service) ListForSupplier(ctx context.Context, ownerID int64) ([]OrderDTO, error) {
	repo := NewRepository(s.db.DB())

	shop, err := repo.FindShopByUser(ctx, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "supplier has no shop yet")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shop")
	}

	orders, err := repo.ListForShop(ctx, shop.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shop orders")
	}

	dtos := make([]OrderDTO, 0, len(orders))
	for _, order := range orders {
		own := make([]models.OrderItem, 0, len(order.Items))
		for _, item := range order.Items {
			if item.ProductInfo != nil && item.ProductInfo.ShopID == shop.ID {
				own = append(own, item)
			}
		}
		dtos = append(dtos, orderFromModel(order, own))
	}
	return dtos, nil
}

func (s *service) ChangeState(ctx context.Context, ownerID, orderID int64, state string) error {
	next, err := enums.ParseOrderState(state)
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid order state")
	}
	if next == enums.OrderStateBasket {
		return pkgerrors.New(pkgerrors.CodeValidation, "orders cannot return to the basket state")
	}

	repo := NewRepository(s.db.DB())

	shop, err := repo.FindShopByUser(ctx, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "supplier has no shop yet")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shop")
	}

	supplies, err := repo.ShopHasLines(ctx, orderID, shop.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check order lines")
	}
	if !supplies {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}

	affected, err := repo.UpdateState(ctx, orderID, next)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order state")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}

	s.notifyStateChanged(ctx, orderID, next)
	return nil
}

func (s *service) loadBuyerOrder(ctx context.Context, userID, orderID int64) (*OrderDTO, error) {
	repo := NewRepository(s.db.DB())
	orders, err := repo.ListForBuyer(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load placed order")
	}
	for _, order := range orders {
		if order.ID == orderID {
			dto := orderFromModel(order, order.Items)
			return &dto, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
}

// Notification failures are logged and swallowed. The order is already
// committed, so delivery problems must not surface as a placement error.
func (s *service) notifyPlaced(ctx context.Context, orderID int64) {
	email, err := NewRepository(s.db.DB()).OrderOwnerEmail(ctx, orderID)
	if err != nil || email == "" {
		s.logg.Error(ctx, "order notification skipped, owner email unavailable", err)
		return
	}
	if err := s.sender.OrderPlaced(ctx, email, orderID); err != nil {
		s.logg.Error(ctx, "order placed notification failed", err)
	}
}

func (s *service) notifyStateChanged(ctx context.Context, orderID int64, state enums.OrderState) {
	email, err := NewRepository(s.db.DB()).OrderOwnerEmail(ctx, orderID)
	if err != nil || email == "" {
		s.logg.Error(ctx, "order notification skipped, owner email unavailable", err)
		return
	}
	if err := s.sender.OrderStateChanged(ctx, email, orderID, state.String()); err != nil {
		s.logg.Error(ctx, "order state notification failed", err)
	}
}
