package controllers

import (
	"net/http"

	"github.com/orderhub/orderhub-backend/api/middleware"
	"github.com/orderhub/orderhub-backend/api/responses"
	"github.com/orderhub/orderhub-backend/api/validators"
	"github.com/orderhub/orderhub-backend/internal/basket"
	"github.com/orderhub/orderhub-backend/pkg/logger"
)

type basketAddRequest struct {
	Items []basket.AddItemInput `json:"items" validate:"required,min=1,dive"`
}

type basketUpdateRequest struct {
	Items []basket.UpdateItemInput `json:"items" validate:"required,min=1,dive"`
}

type basketDeleteRequest struct {
	Items string `json:"items" validate:"required"`
}

func BasketGet(service basket.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		dto, err := service.Get(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, dto)
	}
}

func BasketAdd(service basket.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())

		var req basketAddRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := service.AddItems(r.Context(), userID, req.Items)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteOK(w, map[string]any{
			"created": result.Applied,
			"errors":  result.Errors,
		})
	}
}

func BasketUpdate(service basket.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())

		var req basketUpdateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := service.UpdateQuantities(r.Context(), userID, req.Items)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteOK(w, map[string]any{
			"updated": result.Applied,
			"errors":  result.Errors,
		})
	}
}

// BasketDelete keeps the comma-separated item id list of the original
// wire contract; junk entries are skipped.
func BasketDelete(service basket.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())

		var req basketDeleteRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ids, err := validators.IDList(req.Items)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := service.RemoveItems(r.Context(), userID, ids)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteOK(w, map[string]any{"deleted": result.Applied})
	}
}
