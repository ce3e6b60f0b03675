package orders

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopyardhq/shopyard-backend/internal/authz"
	"github.com/shopyardhq/shopyard-backend/internal/snapshot"
	"github.com/shopyardhq/shopyard-backend/pkg/config"
	"github.com/shopyardhq/shopyard-backend/pkg/enums"
	pkgerrors "github.com/shopyardhq/shopyard-backend/pkg/errors"
	"github.com/shopyardhq/shopyard-backend/pkg/models"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newOrdersService(t *testing.T) (Service, snapshot.Store) {
	t.Helper()

	store := snapshot.NewMemoryStore()
	require.NoError(t, store.Update(context.Background(), func(snap *snapshot.Snapshot) error {
		snap.Accounts["admin"] = &models.Account{Username: "admin", IsAdmin: true}
		snap.Accounts["ann"] = &models.Account{Username: "ann", FullName: "Ann Lee"}
		snap.Items[1] = &models.Item{ID: 1, Name: "Widget", Price: decimal.RequireFromString("19.99"), Stock: 10, Active: true}
		snap.Items[2] = &models.Item{ID: 2, Name: "Gadget", Price: decimal.RequireFromString("5.00"), Stock: 1, Active: true}
		return nil
	}))

	svc, err := NewService(ServiceParams{
		Store:  store,
		Orders: config.OrdersConfig{CancelTokenLength: 24},
		Now:    func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	return svc, store
}

func stockOf(t *testing.T, store snapshot.Store, itemID int64) int {
	t.Helper()

	var stock int
	require.NoError(t, store.View(context.Background(), func(snap *snapshot.Snapshot) error {
		item := snap.Items[itemID]
		require.NotNil(t, item)
		stock = item.Stock
		return nil
	}))
	return stock
}

func TestPlaceAccountOrder(t *testing.T) {
	t.Parallel()

	svc, store := newOrdersService(t)
	ctx := context.Background()

	result, err := svc.Place(ctx, PlaceInput{ItemID: 1, Quantity: 3, Username: " Ann "})
	require.NoError(t, err)

	order := result.Order
	assert.Equal(t, int64(1), order.ID)
	assert.Equal(t, "ann", order.Username)
	assert.Equal(t, "Ann Lee", order.BuyerName)
	assert.Equal(t, "Widget", order.ItemName)
	assert.Equal(t, enums.OrderStatusProcessing, order.Status)
	assert.True(t, order.Amount.Equal(decimal.RequireFromString("59.97")), "amount is price times quantity: %s", order.Amount)
	assert.Empty(t, result.CancelToken, "account orders carry no cancel token")
	assert.Equal(t, 7, stockOf(t, store, 1))
}

func TestPlaceGuestOrder(t *testing.T) {
	t.Parallel()

	svc, store := newOrdersService(t)
	ctx := context.Background()

	result, err := svc.Place(ctx, PlaceInput{ItemID: 2, Quantity: 1, GuestFullName: "Walk-in Buyer"})
	require.NoError(t, err)

	assert.Equal(t, models.GuestUsername, result.Order.Username)
	assert.Equal(t, "Walk-in Buyer", result.Order.BuyerName)
	assert.Len(t, result.CancelToken, 24, "tokens use the configured default length")
	assert.Equal(t, 0, stockOf(t, store, 2))

	_, err = svc.Place(ctx, PlaceInput{ItemID: 1, Quantity: 1, GuestFullName: " x "})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation), "guest name must be at least two characters")
}

func TestPlaceRejectsInvalidOrders(t *testing.T) {
	t.Parallel()

	svc, store := newOrdersService(t)
	ctx := context.Background()

	_, err := svc.Place(ctx, PlaceInput{ItemID: 2, Quantity: 5, Username: "ann"})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeInsufficientStock))
	assert.Equal(t, 1, stockOf(t, store, 2), "failed placement must not consume stock")

	_, err = svc.Place(ctx, PlaceInput{ItemID: 1, Quantity: 0, Username: "ann"})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))

	_, err = svc.Place(ctx, PlaceInput{ItemID: 99, Quantity: 1, Username: "ann"})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))

	_, err = svc.Place(ctx, PlaceInput{ItemID: 1, Quantity: 1, Username: "nobody"})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))
}

func TestPlaceSequentialUntilStockRunsOut(t *testing.T) {
	t.Parallel()

	svc, store := newOrdersService(t)
	ctx := context.Background()

	require.NoError(t, store.Update(ctx, func(snap *snapshot.Snapshot) error {
		snap.Items[1].Stock = 5
		return nil
	}))

	_, err := svc.Place(ctx, PlaceInput{ItemID: 1, Quantity: 3, Username: "ann"})
	require.NoError(t, err)

	_, err = svc.Place(ctx, PlaceInput{ItemID: 1, Quantity: 3, Username: "ann"})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeInsufficientStock))
	assert.Equal(t, 2, stockOf(t, store, 1), "the failed second order leaves the remainder intact")
}

func TestPlaceConcurrentNeverOversells(t *testing.T) {
	t.Parallel()

	svc, store := newOrdersService(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	succeeded := make(chan struct{}, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Place(ctx, PlaceInput{ItemID: 1, Quantity: 1, Username: "ann"}); err == nil {
				succeeded <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(succeeded)

	assert.Equal(t, 10, len(succeeded), "exactly the available stock is sold")
	assert.Equal(t, 0, stockOf(t, store, 1))
}

func TestCancelRestoresStock(t *testing.T) {
	t.Parallel()

	svc, store := newOrdersService(t)
	ctx := context.Background()

	placed, err := svc.Place(ctx, PlaceInput{ItemID: 1, Quantity: 4, Username: "ann"})
	require.NoError(t, err)
	require.Equal(t, 6, stockOf(t, store, 1))

	canceled, err := svc.Cancel(ctx, placed.Order.ID, authz.Request{Principal: "ann", SecretVerified: true})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCanceled, canceled.Status)
	require.NotNil(t, canceled.CanceledAt)
	assert.Equal(t, fixedNow, *canceled.CanceledAt)
	assert.Equal(t, 10, stockOf(t, store, 1))

	_, err = svc.Cancel(ctx, placed.Order.ID, authz.Request{Principal: "ann", SecretVerified: true})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeAlreadyCanceled))
	assert.Equal(t, 10, stockOf(t, store, 1), "double cancel must not restore twice")
}

func TestCancelGuestOrderWithToken(t *testing.T) {
	t.Parallel()

	svc, store := newOrdersService(t)
	ctx := context.Background()

	placed, err := svc.Place(ctx, PlaceInput{ItemID: 2, Quantity: 1, GuestFullName: "Walk-in Buyer"})
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, placed.Order.ID, authz.Request{Token: "NOTTHERIGHTTOKENATALL00"})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeForbidden))
	assert.Equal(t, 0, stockOf(t, store, 2), "denied cancel must not restore stock")

	canceled, err := svc.Cancel(ctx, placed.Order.ID, authz.Request{Token: placed.CancelToken})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCanceled, canceled.Status)
	assert.Equal(t, 1, stockOf(t, store, 2))
}

func TestCancelAuthorization(t *testing.T) {
	t.Parallel()

	svc, _ := newOrdersService(t)
	ctx := context.Background()

	placed, err := svc.Place(ctx, PlaceInput{ItemID: 1, Quantity: 1, Username: "ann"})
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, placed.Order.ID, authz.Request{})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeForbidden))

	_, err = svc.Cancel(ctx, 999, authz.Request{Principal: "admin", SecretVerified: true})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))

	canceled, err := svc.Cancel(ctx, placed.Order.ID, authz.Request{Principal: "admin", SecretVerified: true})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCanceled, canceled.Status)
}

func TestCancelSurvivesItemTakedown(t *testing.T) {
	t.Parallel()

	svc, store := newOrdersService(t)
	ctx := context.Background()

	placed, err := svc.Place(ctx, PlaceInput{ItemID: 1, Quantity: 2, Username: "ann"})
	require.NoError(t, err)

	require.NoError(t, store.Update(ctx, func(snap *snapshot.Snapshot) error {
		delete(snap.Items, 1)
		return nil
	}))

	canceled, err := svc.Cancel(ctx, placed.Order.ID, authz.Request{Principal: "ann", SecretVerified: true})
	require.NoError(t, err, "cancel succeeds even when the item record is gone")
	assert.Equal(t, enums.OrderStatusCanceled, canceled.Status)
}

func TestSetArrival(t *testing.T) {
	t.Parallel()

	svc, _ := newOrdersService(t)
	ctx := context.Background()

	placed, err := svc.Place(ctx, PlaceInput{ItemID: 1, Quantity: 1, Username: "ann"})
	require.NoError(t, err)

	arrival := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	updated, err := svc.SetArrival(ctx, placed.Order.ID, &arrival)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusScheduled, updated.Status)
	require.NotNil(t, updated.ArrivalDate)
	assert.Equal(t, arrival, *updated.ArrivalDate)

	updated, err = svc.SetArrival(ctx, placed.Order.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusProcessing, updated.Status)
	assert.Nil(t, updated.ArrivalDate)

	_, err = svc.SetArrival(ctx, 999, &arrival)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))

	_, err = svc.Cancel(ctx, placed.Order.ID, authz.Request{Principal: "admin", SecretVerified: true})
	require.NoError(t, err)
	_, err = svc.SetArrival(ctx, placed.Order.ID, &arrival)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeAlreadyCanceled))
}

func TestListOrders(t *testing.T) {
	t.Parallel()

	svc, _ := newOrdersService(t)
	ctx := context.Background()

	_, err := svc.Place(ctx, PlaceInput{ItemID: 1, Quantity: 1, Username: "ann"})
	require.NoError(t, err)
	_, err = svc.Place(ctx, PlaceInput{ItemID: 2, Quantity: 1, GuestFullName: "Walk-in Buyer"})
	require.NoError(t, err)
	_, err = svc.Place(ctx, PlaceInput{ItemID: 1, Quantity: 2, Username: "ann"})
	require.NoError(t, err)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{all[0].ID, all[1].ID, all[2].ID})

	mine, err := svc.ListForUser(ctx, "Ann")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, int64(1), mine[0].ID)
	assert.Equal(t, int64(3), mine[1].ID)

	_, err = svc.ListForUser(ctx, "guest")
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeForbidden))
}
