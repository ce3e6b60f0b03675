package accounts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopyardhq/shopyard-backend/internal/snapshot"
	"github.com/shopyardhq/shopyard-backend/pkg/config"
	pkgerrors "github.com/shopyardhq/shopyard-backend/pkg/errors"
	"github.com/shopyardhq/shopyard-backend/pkg/models"
)

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     8,
		ArgonKeyLen:      16,
	}
}

func newAccountsService(t *testing.T) (Service, snapshot.Store) {
	t.Helper()

	store := snapshot.NewMemoryStore()
	svc, err := NewService(ServiceParams{Store: store, PasswordConfig: testPasswordConfig()})
	require.NoError(t, err)
	return svc, store
}

func TestRegisterNormalizesAndFlagsAdmin(t *testing.T) {
	t.Parallel()

	svc, _ := newAccountsService(t)
	ctx := context.Background()

	account, err := svc.Register(ctx, RegisterInput{Username: " Ann ", FullName: "Ann Lee", Password: "pw-secret"})
	require.NoError(t, err)
	assert.Equal(t, "ann", account.Username)
	assert.False(t, account.IsAdmin)

	admin, err := svc.Register(ctx, RegisterInput{Username: "ADMIN", Password: "pw-secret"})
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin)
	assert.Equal(t, "admin", admin.FullName, "full name falls back to username")
}

func TestRegisterRejectsDuplicatesAndGuest(t *testing.T) {
	t.Parallel()

	svc, _ := newAccountsService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Username: "ann", Password: "pw-secret"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{Username: "Ann", Password: "other"})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeConflict))

	_, err = svc.Register(ctx, RegisterInput{Username: "guest", Password: "pw"})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))

	_, err = svc.Register(ctx, RegisterInput{Username: "bob", Password: "  "})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	svc, _ := newAccountsService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Username: "ann", FullName: "Ann Lee", Password: "pw-secret"})
	require.NoError(t, err)

	account, err := svc.Authenticate(ctx, "Ann", "pw-secret")
	require.NoError(t, err)
	assert.Equal(t, "Ann Lee", account.FullName)

	_, err = svc.Authenticate(ctx, "ann", "wrong")
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeUnauthorized))

	_, err = svc.Authenticate(ctx, "nobody", "pw-secret")
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeUnauthorized))
}

func TestEnsureAdmin(t *testing.T) {
	t.Parallel()

	svc, store := newAccountsService(t)
	ctx := context.Background()

	require.NoError(t, svc.EnsureAdmin(ctx, "root-pw", "Administrator"))
	require.NoError(t, svc.EnsureAdmin(ctx, "other-pw", "Administrator"), "second seed is a no-op")
	require.NoError(t, svc.EnsureAdmin(ctx, "", "Administrator"), "empty password skips seeding")

	require.NoError(t, store.View(ctx, func(snap *snapshot.Snapshot) error {
		account := snap.Accounts[models.AdminUsername]
		require.NotNil(t, account)
		assert.True(t, account.IsAdmin)
		return nil
	}))

	if _, err := svc.Authenticate(ctx, "admin", "root-pw"); err != nil {
		t.Fatalf("seeded admin should authenticate with the first password: %v", err)
	}
}

func TestWishlistDedupesAndValidatesItems(t *testing.T) {
	t.Parallel()

	svc, store := newAccountsService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Username: "ann", Password: "pw-secret"})
	require.NoError(t, err)
	require.NoError(t, store.Update(ctx, func(snap *snapshot.Snapshot) error {
		snap.Items[1] = &models.Item{ID: 1, Name: "Widget", Active: true}
		snap.Items[2] = &models.Item{ID: 2, Name: "Gadget", Active: true}
		return nil
	}))

	got, err := svc.SetWishlist(ctx, "ann", []int64{2, 1, 2, 1})
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 1}, got, "dedupe preserves first-seen order")

	got, err = svc.GetWishlist(ctx, "ann")
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 1}, got)

	_, err = svc.SetWishlist(ctx, "ann", []int64{1, 99})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))

	_, err = svc.GetWishlist(ctx, "guest")
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeForbidden))

	_, err = svc.GetWishlist(ctx, "nobody")
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))
}

func TestVerifyIn(t *testing.T) {
	t.Parallel()

	svc, store := newAccountsService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Username: "ann", Password: "pw-secret"})
	require.NoError(t, err)

	require.NoError(t, store.View(ctx, func(snap *snapshot.Snapshot) error {
		ok, err := VerifyIn(snap, "Ann", "pw-secret")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = VerifyIn(snap, "ann", "wrong")
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = VerifyIn(snap, "guest", "anything")
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = VerifyIn(snap, "missing", "pw-secret")
		require.NoError(t, err)
		assert.False(t, ok)
		return nil
	}))
}
