package controllers

import (
	"net/http"
	"time"

	"github.com/shopyardhq/shopyard-backend/api/middleware"
	"github.com/shopyardhq/shopyard-backend/api/responses"
	"github.com/shopyardhq/shopyard-backend/api/validators"
	"github.com/shopyardhq/shopyard-backend/internal/authz"
	"github.com/shopyardhq/shopyard-backend/internal/orders"
	pkgerrors "github.com/shopyardhq/shopyard-backend/pkg/errors"
	"github.com/shopyardhq/shopyard-backend/pkg/logger"
	"github.com/shopyardhq/shopyard-backend/pkg/models"
)

type placeOrderPayload struct {
	ItemID    int64  `json:"item_id" validate:"required,gt=0"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
	GuestName string `json:"guest_name" validate:"max=128"`
}

type cancelOrderPayload struct {
	Username    string `json:"username" validate:"max=64"`
	Password    string `json:"password" validate:"max=128"`
	CancelToken string `json:"cancel_token" validate:"max=64"`
}

type arrivalPayload struct {
	// RFC 3339. Null clears the schedule and returns the order to
	// processing.
	ArrivalDate *time.Time `json:"arrival_date"`
}

type placeOrderResponse struct {
	Order       models.Order `json:"order"`
	CancelToken string       `json:"cancel_token,omitempty"`
}

// OrdersPlace places an order. Authenticated callers buy under their
// account; anonymous callers place a guest order and receive a cancel
// token in the response, their only handle on the order.
func OrdersPlace(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		var payload placeOrderPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.Place(ctx, orders.PlaceInput{
			ItemID:        payload.ItemID,
			Quantity:      payload.Quantity,
			Username:      middleware.UsernameFromContext(ctx),
			GuestFullName: payload.GuestName,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil {
			logg.Info(logg.WithOrderID(ctx, result.Order.ID), "order.placed")
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, placeOrderResponse{
			Order:       result.Order,
			CancelToken: result.CancelToken,
		})
	}
}

// OrdersCancel cancels an order. The caller proves their right via a
// bearer token, inline credentials in the body, or a guest cancel token.
func OrdersCancel(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := pathID(r, "orderId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload cancelOrderPayload
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
		}

		req := authz.Request{
			Principal: payload.Username,
			Secret:    payload.Password,
			Token:     payload.CancelToken,
		}
		if username := middleware.UsernameFromContext(ctx); username != "" {
			req.Principal = username
			req.Secret = ""
			req.SecretVerified = true
		}

		order, err := svc.Cancel(ctx, orderID, req)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil {
			logg.Info(logg.WithOrderID(ctx, orderID), "order.canceled")
		}
		responses.WriteSuccess(w, order)
	}
}

// OrdersListMine returns the authenticated account's orders.
func OrdersListMine(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		list, err := svc.ListForUser(ctx, middleware.UsernameFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// AdminOrdersList returns every order.
func AdminOrdersList(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		list, err := svc.List(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// AdminSetArrival schedules or clears an order's arrival date.
func AdminSetArrival(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := pathID(r, "orderId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload arrivalPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		order, err := svc.SetArrival(ctx, orderID, payload.ArrivalDate)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil {
			logg.Info(logg.WithOrderID(ctx, orderID), "order.arrival_set")
		}
		responses.WriteSuccess(w, order)
	}
}
