package inventory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopyardhq/shopyard-backend/internal/snapshot"
	pkgerrors "github.com/shopyardhq/shopyard-backend/pkg/errors"
	"github.com/shopyardhq/shopyard-backend/pkg/models"
)

func newService(t *testing.T, seed func(snap *snapshot.Snapshot)) Service {
	t.Helper()

	store := snapshot.NewMemoryStore()
	if seed != nil {
		require.NoError(t, store.Update(context.Background(), func(snap *snapshot.Snapshot) error {
			seed(snap)
			return nil
		}))
	}

	svc, err := NewService(ServiceParams{Store: store})
	require.NoError(t, err)
	return svc
}

func seedWidget(stock int) func(snap *snapshot.Snapshot) {
	return func(snap *snapshot.Snapshot) {
		snap.Items[1] = &models.Item{
			ID:     1,
			Name:   "Widget",
			Price:  decimal.RequireFromString("10.00"),
			Stock:  stock,
			Active: true,
		}
	}
}

func TestReserveDecrementsStock(t *testing.T) {
	t.Parallel()

	svc := newService(t, seedWidget(5))
	item, err := svc.Reserve(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, item.Stock)
}

func TestReserveInsufficientStockLeavesStockUnchanged(t *testing.T) {
	t.Parallel()

	svc := newService(t, seedWidget(5))
	ctx := context.Background()

	_, err := svc.Reserve(ctx, 1, 6)
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeInsufficientStock))

	item, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 5, item.Stock)
}

func TestReserveRejectsBadQuantity(t *testing.T) {
	t.Parallel()

	svc := newService(t, seedWidget(5))
	for _, qty := range []int{0, -3} {
		_, err := svc.Reserve(context.Background(), 1, qty)
		require.Error(t, err)
		assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
	}
}

func TestReserveUnknownOrInactiveItem(t *testing.T) {
	t.Parallel()

	svc := newService(t, func(snap *snapshot.Snapshot) {
		snap.Items[2] = &models.Item{ID: 2, Name: "Retired", Stock: 9, Active: false}
	})

	_, err := svc.Reserve(context.Background(), 1, 1)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))

	_, err = svc.Reserve(context.Background(), 2, 1)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound), "inactive items accept no reservations")
}

func TestRestoreIncrementsEvenWhenInactive(t *testing.T) {
	t.Parallel()

	svc := newService(t, func(snap *snapshot.Snapshot) {
		snap.Items[1] = &models.Item{ID: 1, Name: "Retired", Stock: 2, Active: false}
	})
	ctx := context.Background()

	require.NoError(t, svc.Restore(ctx, 1, 3))

	// Get filters inactive items, so check via SetStock round trip.
	item, err := svc.SetStock(ctx, 1, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, item.Stock)
}

func TestRestoreMissingItemIsNoop(t *testing.T) {
	t.Parallel()

	svc := newService(t, nil)
	require.NoError(t, svc.Restore(context.Background(), 42, 3))
}

func TestSetStockOverridesUnconditionally(t *testing.T) {
	t.Parallel()

	svc := newService(t, seedWidget(5))
	item, err := svc.SetStock(context.Background(), 1, 100)
	require.NoError(t, err)
	assert.Equal(t, 100, item.Stock)

	_, err = svc.SetStock(context.Background(), 1, -1)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))

	_, err = svc.SetStock(context.Background(), 9, 1)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))
}

func TestDeactivateIsIdempotent(t *testing.T) {
	t.Parallel()

	svc := newService(t, seedWidget(5))
	ctx := context.Background()

	item, err := svc.Deactivate(ctx, 1)
	require.NoError(t, err)
	assert.False(t, item.Active)

	item, err = svc.Deactivate(ctx, 1)
	require.NoError(t, err)
	assert.False(t, item.Active)
}

func TestCreateAssignsSequentialIDs(t *testing.T) {
	t.Parallel()

	svc := newService(t, nil)
	ctx := context.Background()

	first, err := svc.Create(ctx, CreateInput{Name: "Widget", Price: decimal.RequireFromString("10.005"), Stock: 5})
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, "10.01", first.Price.StringFixed(2), "price rounds to two decimals")

	second, err := svc.Create(ctx, CreateInput{Name: "Gadget"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.ID)
	assert.Equal(t, 0, second.Stock)

	_, err = svc.Create(ctx, CreateInput{})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))

	_, err = svc.Create(ctx, CreateInput{Name: "Bad", Price: decimal.RequireFromString("-1")})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
}

func TestListActiveFiltersAndSorts(t *testing.T) {
	t.Parallel()

	svc := newService(t, func(snap *snapshot.Snapshot) {
		snap.Items[3] = &models.Item{ID: 3, Name: "C", Active: true}
		snap.Items[1] = &models.Item{ID: 1, Name: "A", Active: true}
		snap.Items[2] = &models.Item{ID: 2, Name: "B", Active: false}
	})

	items, err := svc.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, int64(1), items[0].ID)
	assert.Equal(t, int64(3), items[1].ID)
}
