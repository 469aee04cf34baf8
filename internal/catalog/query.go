package catalog

import (
	"context"
	"errors"

	pkgerrors "github.com/orderhub/orderhub-backend/pkg/errors"
	"github.com/orderhub/orderhub-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Query exposes the public catalog read surface.
type Query interface {
	ListListings(ctx context.Context, params ListListingsParams) (*ListingsPage, error)
	ListCategories(ctx context.Context) ([]CategoryDTO, error)
	ListShops(ctx context.Context) ([]ShopDTO, error)
	ShopState(ctx context.Context, userID int64) (*ShopDTO, error)
	SetShopState(ctx context.Context, userID int64, state bool) (*ShopDTO, error)
}

// ListListingsParams filters and paginates the listings query.
type ListListingsParams struct {
	ShopID     *int64
	CategoryID *int64
	Pagination pagination.Params
}

type query struct {
	repo *Repository
}

// NewQuery builds the catalog read service.
func NewQuery(repo *Repository) (Query, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "catalog repository required")
	}
	return &query{repo: repo}, nil
}

func (q *query) ListListings(ctx context.Context, params ListListingsParams) (*ListingsPage, error) {
	if params.ShopID != nil && *params.ShopID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop_id must be positive")
	}
	if params.CategoryID != nil && *params.CategoryID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category_id must be positive")
	}

	if params.Pagination.Cursor != "" {
		if _, err := pagination.ParseCursor(params.Pagination.Cursor); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
	}

	rows, cursor, err := q.repo.ListListings(ctx, listingQuery{
		Pagination: params.Pagination,
		Filters: ListingFilters{
			ShopID:     params.ShopID,
			CategoryID: params.CategoryID,
		},
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list listings")
	}

	items := make([]ListingDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, listingFromModel(row))
	}
	return &ListingsPage{Items: items, Cursor: cursor}, nil
}

func (q *query) ListCategories(ctx context.Context) ([]CategoryDTO, error) {
	rows, err := q.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	items := make([]CategoryDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, categoryFromModel(row))
	}
	return items, nil
}

func (q *query) ListShops(ctx context.Context) ([]ShopDTO, error) {
	rows, err := q.repo.ListActiveShops(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shops")
	}
	items := make([]ShopDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, shopFromModel(row))
	}
	return items, nil
}

func (q *query) ShopState(ctx context.Context, userID int64) (*ShopDTO, error) {
	shop, err := q.repo.FindShopByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "supplier has no shop yet")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup shop")
	}
	dto := shopFromModel(*shop)
	return &dto, nil
}

func (q *query) SetShopState(ctx context.Context, userID int64, state bool) (*ShopDTO, error) {
	shop, err := q.repo.FindShopByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "supplier has no shop yet")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup shop")
	}
	if err := q.repo.UpdateShopState(ctx, shop.ID, state); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update shop state")
	}
	shop.State = state
	dto := shopFromModel(*shop)
	return &dto, nil
}
