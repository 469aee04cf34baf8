package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/orderhub/orderhub-backend/api/responses"
	"github.com/orderhub/orderhub-backend/api/validators"
	"github.com/orderhub/orderhub-backend/internal/catalog"
	"github.com/orderhub/orderhub-backend/pkg/logger"
	"github.com/orderhub/orderhub-backend/pkg/pagination"
)

// CatalogListings serves the public product search with optional shop and
// category filters plus cursor pagination.
func CatalogListings(query catalog.Query, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shopID, err := validators.OptionalID(r, "shop_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		categoryID, err := validators.OptionalID(r, "category_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		page, err := query.ListListings(r.Context(), catalog.ListListingsParams{
			ShopID:     shopID,
			CategoryID: categoryID,
			Pagination: pagination.Params{
				Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
				Limit:  limit,
			},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, page)
	}
}

func CatalogCategories(query catalog.Query, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := query.ListCategories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, categories)
	}
}

func CatalogShops(query catalog.Query, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shops, err := query.ListShops(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, shops)
	}
}
