// Package authz decides who may cancel an order. Three tiers are
// recognized: the admin account, the order's owner, and the holder of
// the order's guest cancel token.
package authz

import (
	"github.com/shopyardhq/shopyard-backend/internal/accounts"
	"github.com/shopyardhq/shopyard-backend/internal/snapshot"
	pkgerrors "github.com/shopyardhq/shopyard-backend/pkg/errors"
	"github.com/shopyardhq/shopyard-backend/pkg/models"
	"github.com/shopyardhq/shopyard-backend/pkg/security"
)

// Tier names the authorization path that permitted an action.
type Tier string

const (
	TierAdmin Tier = "admin"
	TierOwner Tier = "owner"
	TierGuest Tier = "guest"
)

// Request carries the caller's proof of identity. Principal and Secret
// describe an account login; SecretVerified marks credentials the
// transport layer has already checked, so the secret is not re-verified.
// Token is a guest cancel token.
type Request struct {
	Principal      string
	Secret         string
	SecretVerified bool
	Token          string
}

// ResolveCancelIn evaluates req against order inside snap and returns the
// tier that permits the cancellation. The account tiers (admin, then
// owner) are tried first; a matching cancel token permits on its own
// even when the account tiers fail, so a token holder is never locked
// out by also presenting an account. Credential failures return
// UNAUTHORIZED; a valid identity without rights over the order returns
// FORBIDDEN. Token comparison is constant-time.
func ResolveCancelIn(snap *snapshot.Snapshot, order *models.Order, req Request) (Tier, error) {
	principal := models.NormalizeUsername(req.Principal)

	var accountErr error
	if principal != "" && principal != models.GuestUsername {
		tier, err := resolveAccountTier(snap, order, principal, req)
		if err == nil {
			return tier, nil
		}
		accountErr = err
	}

	if req.Token != "" && security.TokensEqual(req.Token, order.CancelToken) {
		return TierGuest, nil
	}

	if accountErr != nil {
		return "", accountErr
	}
	if req.Token != "" {
		return "", pkgerrors.New(pkgerrors.CodeForbidden, "cancel token does not match")
	}
	return "", pkgerrors.New(pkgerrors.CodeForbidden, "cancellation requires credentials or a cancel token")
}

func resolveAccountTier(snap *snapshot.Snapshot, order *models.Order, principal string, req Request) (Tier, error) {
	verified := req.SecretVerified
	if !verified {
		ok, err := accounts.VerifyIn(snap, principal, req.Secret)
		if err != nil {
			return "", err
		}
		verified = ok
	}
	if !verified {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid username or password")
	}

	account, exists := snap.Accounts[principal]
	if !exists {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "unknown account")
	}
	if account.IsAdmin {
		return TierAdmin, nil
	}
	if !order.IsGuestOrder() && order.Username == principal {
		return TierOwner, nil
	}
	return "", pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another account")
}
