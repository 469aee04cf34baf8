package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/orderhub/orderhub-backend/pkg/db"
	"github.com/orderhub/orderhub-backend/pkg/db/models"
	pkgerrors "github.com/orderhub/orderhub-backend/pkg/errors"
	"github.com/orderhub/orderhub-backend/pkg/logger"
	"github.com/orderhub/orderhub-backend/pkg/metrics"
	"gorm.io/gorm"
)

// Importer replaces a supplier's catalog from a YAML price list. The whole
// import runs in one transaction: readers either see the previous catalog
// or the new one, never a mix.
type Importer interface {
	Import(ctx context.Context, userID int64, data []byte) (*ImportResult, error)
	ImportFromURL(ctx context.Context, userID int64, feedURL string) (*ImportResult, error)
}

// ImportResult summarizes what an accepted feed changed.
type ImportResult struct {
	ShopID             int64  `json:"shop_id"`
	Shop               string `json:"shop"`
	Categories         int    `json:"categories"`
	Listings           int    `json:"listings"`
	RemovedBasketItems int64  `json:"removed_basket_items"`
}

// ImporterParams bundles importer dependencies.
type ImporterParams struct {
	DB      *db.Client
	Fetcher *Fetcher
	Metrics *metrics.ImportMetrics
	Logger  *logger.Logger
}

type importer struct {
	db      *db.Client
	fetcher *Fetcher
	metrics *metrics.ImportMetrics
	logg    *logger.Logger
}

// NewImporter builds the feed import service.
func NewImporter(params ImporterParams) (Importer, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	if params.Fetcher == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "feed fetcher required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &importer{
		db:      params.DB,
		fetcher: params.Fetcher,
		metrics: params.Metrics,
		logg:    params.Logger,
	}, nil
}

func (s *importer) ImportFromURL(ctx context.Context, userID int64, feedURL string) (*ImportResult, error) {
	data, err := s.fetcher.Fetch(ctx, feedURL)
	if err != nil {
		return nil, err
	}
	return s.Import(ctx, userID, data)
}

func (s *importer) Import(ctx context.Context, userID int64, data []byte) (*ImportResult, error) {
	feed, err := ParseFeed(data)
	if err != nil {
		return nil, err
	}

	shopName := strings.TrimSpace(feed.Shop)
	ctx = s.logg.WithFields(ctx, map[string]any{
		"shop":     shopName,
		"user_id":  userID,
		"goods":    len(feed.Goods),
		"sections": len(feed.Categories),
	})

	started := time.Now()
	result := &ImportResult{Shop: shopName, Categories: len(feed.Categories)}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)

		shop, err := s.resolveShop(ctx, repo, shopName, userID)
		if err != nil {
			return err
		}
		result.ShopID = shop.ID

		// Drop the previous listing set before writing the new one.
		oldIDs, err := repo.ListListingIDsByShop(ctx, shop.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list current listings")
		}
		placed, err := repo.CountPlacedItemsForListings(ctx, oldIDs)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check placed orders")
		}
		if placed > 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				"placed orders still reference the current catalog")
		}
		removed, err := repo.DeleteBasketItemsForListings(ctx, oldIDs)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "purge basket items")
		}
		result.RemovedBasketItems = removed
		if err := repo.DeleteListingsByShop(ctx, shop.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete listings")
		}

		for _, category := range feed.Categories {
			if _, err := repo.UpsertCategory(ctx, category.ID, strings.TrimSpace(category.Name)); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert category")
			}
			if err := repo.LinkShopCategory(ctx, shop.ID, category.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "link shop category")
			}
		}

		for _, good := range feed.Goods {
			product, err := repo.GetOrCreateProduct(ctx, strings.TrimSpace(good.Name), good.Category)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "get or create product")
			}

			listing := &models.ProductInfo{
				ProductID:  product.ID,
				ShopID:     shop.ID,
				ExternalID: good.ID,
				Model:      strings.TrimSpace(good.Model),
				Price:      good.Price.Decimal,
				PriceRRC:   good.PriceRRC.Decimal,
				Quantity:   good.Quantity,
			}
			for name, value := range good.Parameters {
				parameter, err := repo.GetOrCreateParameter(ctx, strings.TrimSpace(name))
				if err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "get or create parameter")
				}
				listing.Parameters = append(listing.Parameters, models.ProductParameter{
					ParameterID: parameter.ID,
					Value:       string(value),
				})
			}

			if _, err := repo.CreateListing(ctx, listing); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create listing")
			}
			result.Listings++
		}

		return nil
	})

	s.metrics.ObserveDuration(shopName, time.Since(started))
	if err != nil {
		s.metrics.IncFailure(shopName)
		s.logg.Error(ctx, "feed import failed", err)
		return nil, err
	}

	s.metrics.IncSuccess(shopName)
	s.metrics.AddListings(shopName, result.Listings)
	s.logg.Info(ctx, "feed import completed")
	return result, nil
}

// resolveShop finds or creates the supplier's shop. The feed's shop name is
// authoritative for its owner, so an existing shop owned by the same user
// is renamed when the feed changes it. A name held by another user is
// rejected.
func (s *importer) resolveShop(ctx context.Context, repo *Repository, name string, userID int64) (*models.Shop, error) {
	byName, err := repo.FindShopByName(ctx, name)
	if err == nil {
		if byName.UserID != userID {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "shop name belongs to another supplier")
		}
		return byName, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup shop by name")
	}

	byUser, err := repo.FindShopByUser(ctx, userID)
	if err == nil {
		byUser.Name = name
		if err := repo.db.WithContext(ctx).Model(byUser).UpdateColumn("name", name).Error; err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rename shop")
		}
		return byUser, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup shop by owner")
	}

	shop, err := repo.CreateShop(ctx, &models.Shop{Name: name, UserID: userID, State: true})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create shop")
	}
	return shop, nil
}
