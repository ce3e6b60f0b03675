// Package cascade coordinates item takedowns. Deactivating an item and
// canceling its open orders happens in one snapshot update so no order
// can slip in between the two steps.
package cascade

import (
	"context"
	"time"

	"github.com/shopyardhq/shopyard-backend/internal/inventory"
	"github.com/shopyardhq/shopyard-backend/internal/snapshot"
	"github.com/shopyardhq/shopyard-backend/pkg/enums"
	pkgerrors "github.com/shopyardhq/shopyard-backend/pkg/errors"
	"github.com/shopyardhq/shopyard-backend/pkg/metrics"
	"github.com/shopyardhq/shopyard-backend/pkg/models"
)

// TakedownResult reports what a takedown touched. RestoredUnits is the
// sum of quantities returned by the canceled orders.
type TakedownResult struct {
	Item           models.Item
	CanceledOrders int
	RestoredUnits  int
}

type Coordinator interface {
	TakedownItem(ctx context.Context, itemID int64) (TakedownResult, error)
}

type coordinator struct {
	store   snapshot.Store
	metrics *metrics.OrderMetrics
	now     func() time.Time
}

type CoordinatorParams struct {
	Store   snapshot.Store
	Metrics *metrics.OrderMetrics
	Now     func() time.Time
}

func NewCoordinator(params CoordinatorParams) (Coordinator, error) {
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cascade coordinator requires a snapshot store")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &coordinator{store: params.Store, metrics: params.Metrics, now: now}, nil
}

// TakedownItem deactivates the item and cancels every order for it that
// is not already canceled, returning each order's quantity to stock.
// Canceled orders are left untouched. Idempotent apart from the orders
// it cancels: a second takedown finds nothing left to cancel.
func (c *coordinator) TakedownItem(ctx context.Context, itemID int64) (TakedownResult, error) {
	var result TakedownResult

	err := c.store.Update(ctx, func(snap *snapshot.Snapshot) error {
		item, err := inventory.DeactivateIn(snap, itemID)
		if err != nil {
			return err
		}

		now := c.now().UTC()
		for _, order := range snap.Orders {
			if order.ItemID != itemID || order.Status == enums.OrderStatusCanceled {
				continue
			}
			inventory.RestoreIn(snap, order.ItemID, order.Quantity)
			canceledAt := now
			order.Status = enums.OrderStatusCanceled
			order.CanceledAt = &canceledAt
			result.CanceledOrders++
			result.RestoredUnits += order.Quantity
		}

		result.Item = *item
		return nil
	})
	if err != nil {
		return TakedownResult{}, err
	}

	for i := 0; i < result.CanceledOrders; i++ {
		c.metrics.IncCanceled("cascade")
	}
	c.metrics.AddStockRestored(result.RestoredUnits)
	return result, nil
}
