package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopyardhq/shopyard-backend/internal/snapshot"
	"github.com/shopyardhq/shopyard-backend/pkg/config"
	pkgerrors "github.com/shopyardhq/shopyard-backend/pkg/errors"
	"github.com/shopyardhq/shopyard-backend/pkg/models"
	"github.com/shopyardhq/shopyard-backend/pkg/security"
)

func mustHash(t *testing.T, password string) string {
	t.Helper()

	hash, err := security.HashPassword(password, config.PasswordConfig{
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     8,
		ArgonKeyLen:      16,
	})
	require.NoError(t, err)
	return hash
}

func seedSnapshot(t *testing.T) *snapshot.Snapshot {
	t.Helper()

	snap := snapshot.New()
	snap.Accounts["admin"] = &models.Account{Username: "admin", IsAdmin: true, CredentialHash: mustHash(t, "admin-pw")}
	snap.Accounts["ann"] = &models.Account{Username: "ann", CredentialHash: mustHash(t, "ann-pw")}
	snap.Accounts["bob"] = &models.Account{Username: "bob", CredentialHash: mustHash(t, "bob-pw")}
	return snap
}

func TestResolveCancelAdmin(t *testing.T) {
	t.Parallel()

	snap := seedSnapshot(t)
	order := &models.Order{ID: 1, Username: "ann"}

	tier, err := ResolveCancelIn(snap, order, Request{Principal: "Admin", Secret: "admin-pw"})
	require.NoError(t, err)
	assert.Equal(t, TierAdmin, tier, "admin may cancel any order")

	_, err = ResolveCancelIn(snap, order, Request{Principal: "admin", Secret: "wrong"})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeUnauthorized))
}

func TestResolveCancelOwner(t *testing.T) {
	t.Parallel()

	snap := seedSnapshot(t)
	order := &models.Order{ID: 1, Username: "ann"}

	tier, err := ResolveCancelIn(snap, order, Request{Principal: "ann", Secret: "ann-pw"})
	require.NoError(t, err)
	assert.Equal(t, TierOwner, tier)

	// Pre-verified identity, e.g. from a bearer token.
	tier, err = ResolveCancelIn(snap, order, Request{Principal: "ann", SecretVerified: true})
	require.NoError(t, err)
	assert.Equal(t, TierOwner, tier)

	_, err = ResolveCancelIn(snap, order, Request{Principal: "bob", Secret: "bob-pw"})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeForbidden), "other accounts may not cancel")

	_, err = ResolveCancelIn(snap, order, Request{Principal: "ann", Secret: "bob-pw"})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeUnauthorized))
}

func TestResolveCancelGuestToken(t *testing.T) {
	t.Parallel()

	snap := seedSnapshot(t)
	order := &models.Order{ID: 1, Username: models.GuestUsername, CancelToken: "C8Q2M4N6P8R0T2V4W6X8Y0Z2"}

	tier, err := ResolveCancelIn(snap, order, Request{Token: "C8Q2M4N6P8R0T2V4W6X8Y0Z2"})
	require.NoError(t, err)
	assert.Equal(t, TierGuest, tier)

	_, err = ResolveCancelIn(snap, order, Request{Token: "WRONGWRONGWRONGWRONGWRON"})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeForbidden))

	_, err = ResolveCancelIn(snap, order, Request{})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeForbidden))
}

func TestResolveTokenPermitsWhenAccountTiersFail(t *testing.T) {
	t.Parallel()

	snap := seedSnapshot(t)
	order := &models.Order{ID: 1, Username: models.GuestUsername, CancelToken: "C8Q2M4N6P8R0T2V4W6X8Y0Z2"}

	// A verified account that has no rights over the order still gets
	// through on the token it holds.
	tier, err := ResolveCancelIn(snap, order, Request{Principal: "bob", Secret: "bob-pw", Token: "C8Q2M4N6P8R0T2V4W6X8Y0Z2"})
	require.NoError(t, err)
	assert.Equal(t, TierGuest, tier)

	// Bad credentials do not poison a valid token either.
	tier, err = ResolveCancelIn(snap, order, Request{Principal: "admin", Secret: "wrong", Token: "C8Q2M4N6P8R0T2V4W6X8Y0Z2"})
	require.NoError(t, err)
	assert.Equal(t, TierGuest, tier)

	// With a wrong token the account tier's own error is reported.
	_, err = ResolveCancelIn(snap, order, Request{Principal: "admin", Secret: "wrong", Token: "WRONGWRONGWRONGWRONGWRON"})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeUnauthorized))
	_, err = ResolveCancelIn(snap, order, Request{Principal: "bob", Secret: "bob-pw", Token: "WRONGWRONGWRONGWRONGWRON"})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeForbidden))

	// Valid account tiers still win over the token.
	tier, err = ResolveCancelIn(snap, order, Request{Principal: "admin", Secret: "admin-pw", Token: "C8Q2M4N6P8R0T2V4W6X8Y0Z2"})
	require.NoError(t, err)
	assert.Equal(t, TierAdmin, tier)
}

func TestResolveOwnerCannotUseGuestTier(t *testing.T) {
	t.Parallel()

	snap := seedSnapshot(t)
	order := &models.Order{ID: 1, Username: "ann", CancelToken: ""}

	// An account order carries no cancel token, so the token path never
	// matches even with an empty submission.
	_, err := ResolveCancelIn(snap, order, Request{Token: ""})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeForbidden))
}
