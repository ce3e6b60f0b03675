package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/shopyardhq/shopyard-backend/api/responses"
	"github.com/shopyardhq/shopyard-backend/api/validators"
	"github.com/shopyardhq/shopyard-backend/internal/cascade"
	"github.com/shopyardhq/shopyard-backend/internal/inventory"
	pkgerrors "github.com/shopyardhq/shopyard-backend/pkg/errors"
	"github.com/shopyardhq/shopyard-backend/pkg/logger"
)

type createItemPayload struct {
	Name        string          `json:"name" validate:"required,min=1,max=200"`
	Description string          `json:"description" validate:"max=2000"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock" validate:"gte=0"`
	ImageURL    string          `json:"image_url" validate:"max=500"`
}

type setStockPayload struct {
	Stock int `json:"stock" validate:"gte=0"`
}

type takedownResponse struct {
	ItemID         int64 `json:"item_id"`
	CanceledOrders int   `json:"canceled_orders"`
	RestoredUnits  int   `json:"restored_units"`
}

// ItemsList returns every active item in the catalog.
func ItemsList(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		items, err := svc.ListActive(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// ItemDetail returns a single active item.
func ItemDetail(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		itemID, err := pathID(r, "itemId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		item, err := svc.Get(ctx, itemID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// AdminCreateItem adds an item to the catalog.
func AdminCreateItem(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		var payload createItemPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		item, err := svc.Create(ctx, inventory.CreateInput{
			Name:        payload.Name,
			Description: payload.Description,
			Price:       payload.Price,
			Stock:       payload.Stock,
			ImageURL:    payload.ImageURL,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

// AdminSetStock overrides an item's stock level.
func AdminSetStock(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		itemID, err := pathID(r, "itemId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload setStockPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		item, err := svc.SetStock(ctx, itemID, payload.Stock)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil {
			logg.Info(logg.WithItemID(ctx, itemID), "item.stock_set")
		}
		responses.WriteSuccess(w, item)
	}
}

// AdminTakedownItem deactivates an item and cancels its open orders.
func AdminTakedownItem(coord cascade.Coordinator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if coord == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cascade coordinator unavailable"))
			return
		}

		itemID, err := pathID(r, "itemId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := coord.TakedownItem(ctx, itemID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil {
			fields := map[string]any{
				"canceled_orders": result.CanceledOrders,
				"restored_units":  result.RestoredUnits,
			}
			logg.Info(logg.WithFields(logg.WithItemID(ctx, itemID), fields), "item.takedown")
		}

		responses.WriteSuccess(w, takedownResponse{
			ItemID:         result.Item.ID,
			CanceledOrders: result.CanceledOrders,
			RestoredUnits:  result.RestoredUnits,
		})
	}
}

func pathID(r *http.Request, param string) (int64, error) {
	raw := strings.TrimSpace(chi.URLParam(r, param))
	if raw == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, param+" is required")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, param+" must be a positive integer")
	}
	return id, nil
}
