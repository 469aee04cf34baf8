package controllers

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/orderhub/orderhub-backend/api/middleware"
	"github.com/orderhub/orderhub-backend/api/responses"
	"github.com/orderhub/orderhub-backend/api/validators"
	"github.com/orderhub/orderhub-backend/internal/catalog"
	"github.com/orderhub/orderhub-backend/internal/orders"
	"github.com/orderhub/orderhub-backend/pkg/config"
	pkgerrors "github.com/orderhub/orderhub-backend/pkg/errors"
	"github.com/orderhub/orderhub-backend/pkg/logger"
)

type partnerUpdateRequest struct {
	URL string `json:"url" validate:"omitempty,url"`
}

type partnerStateRequest struct {
	State string `json:"state" validate:"required"`
}

type partnerOrderStateRequest struct {
	State string `json:"state" validate:"required"`
}

// PartnerUpdate imports a supplier feed. The feed arrives either as a URL
// in a JSON body or as a raw YAML upload, distinguished by Content-Type.
func PartnerUpdate(importer catalog.Importer, importCfg config.ImportConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())

		contentType := strings.ToLower(r.Header.Get("Content-Type"))
		if strings.Contains(contentType, "yaml") || strings.Contains(contentType, "text/plain") {
			data, err := io.ReadAll(io.LimitReader(r.Body, importCfg.MaxFeedBytes+1))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read feed upload"))
				return
			}
			if int64(len(data)) > importCfg.MaxFeedBytes {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "feed exceeds the size limit"))
				return
			}
			result, err := importer.Import(r.Context(), userID, data)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteOK(w, map[string]any{"import": result})
			return
		}

		var req partnerUpdateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if strings.TrimSpace(req.URL) == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "url is required"))
			return
		}

		result, err := importer.ImportFromURL(r.Context(), userID, req.URL)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteOK(w, map[string]any{"import": result})
	}
}

func PartnerStateGet(query catalog.Query, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		shop, err := query.ShopState(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, shop)
	}
}

func PartnerStateSet(query catalog.Query, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())

		var req partnerStateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		state, err := validators.BoolString(req.State)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		shop, err := query.SetShopState(r.Context(), userID, state)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteOK(w, map[string]any{"shop": shop})
	}
}

func PartnerOrders(service orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		list, err := service.ListForSupplier(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, list)
	}
}

// PartnerOrderState lets a supplier advance the lifecycle state of an
// order that contains their listings.
func PartnerOrderState(service orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())

		orderID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil || orderID <= 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "order id must be a positive integer"))
			return
		}

		var req partnerOrderStateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := service.ChangeState(r.Context(), userID, orderID, req.State); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteOK(w, nil)
	}
}
