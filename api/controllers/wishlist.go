package controllers

import (
	"net/http"

	"github.com/shopyardhq/shopyard-backend/api/middleware"
	"github.com/shopyardhq/shopyard-backend/api/responses"
	"github.com/shopyardhq/shopyard-backend/api/validators"
	"github.com/shopyardhq/shopyard-backend/internal/accounts"
	pkgerrors "github.com/shopyardhq/shopyard-backend/pkg/errors"
	"github.com/shopyardhq/shopyard-backend/pkg/logger"
)

type setWishlistPayload struct {
	ItemIDs []int64 `json:"item_ids" validate:"dive,gt=0"`
}

type wishlistResponse struct {
	ItemIDs []int64 `json:"item_ids"`
}

// WishlistGet returns the caller's wishlist.
func WishlistGet(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "accounts service unavailable"))
			return
		}

		itemIDs, err := svc.GetWishlist(ctx, middleware.UsernameFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, wishlistResponse{ItemIDs: emptyToSlice(itemIDs)})
	}
}

// WishlistSet replaces the caller's wishlist.
func WishlistSet(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "accounts service unavailable"))
			return
		}

		var payload setWishlistPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		itemIDs, err := svc.SetWishlist(ctx, middleware.UsernameFromContext(ctx), payload.ItemIDs)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, wishlistResponse{ItemIDs: emptyToSlice(itemIDs)})
	}
}

func emptyToSlice(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
