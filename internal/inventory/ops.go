package inventory

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/shopyardhq/shopyard-backend/internal/snapshot"
	pkgerrors "github.com/shopyardhq/shopyard-backend/pkg/errors"
	"github.com/shopyardhq/shopyard-backend/pkg/models"
)

// The pure snapshot operations below are the reservation arithmetic. They run
// inside a store critical section owned by the caller, so a reservation and
// the order that depends on it commit or fail together.

// ReserveIn decrements stock for an active item, failing before any mutation
// when the item is missing, inactive, or short on stock.
func ReserveIn(snap *snapshot.Snapshot, itemID int64, quantity int) (*models.Item, error) {
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be a positive integer")
	}
	item, ok := snap.Items[itemID]
	if !ok || !item.Active {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("item %d not found", itemID))
	}
	if item.Stock < quantity {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientStock,
			fmt.Sprintf("item %d has %d in stock, %d requested", itemID, item.Stock, quantity)).
			WithDetails(map[string]any{"available": item.Stock, "requested": quantity})
	}
	item.Stock -= quantity
	return item, nil
}

// RestoreIn returns reserved stock to an item. A missing item is a no-op so
// cancellations keep working after a record disappears; deactivated items
// still accept restores because the record survives takedown.
func RestoreIn(snap *snapshot.Snapshot, itemID int64, quantity int) {
	if quantity <= 0 {
		return
	}
	if item, ok := snap.Items[itemID]; ok {
		item.Stock += quantity
	}
}

// SetStockIn replaces stock unconditionally. Administrative escape hatch: it
// may break the reservation accounting on purpose.
func SetStockIn(snap *snapshot.Snapshot, itemID int64, stock int) (*models.Item, error) {
	if stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}
	item, ok := snap.Items[itemID]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("item %d not found", itemID))
	}
	item.Stock = stock
	return item, nil
}

// DeactivateIn soft-deletes an item. Idempotent.
func DeactivateIn(snap *snapshot.Snapshot, itemID int64) (*models.Item, error) {
	item, ok := snap.Items[itemID]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("item %d not found", itemID))
	}
	item.Active = false
	return item, nil
}

// CreateInput carries the admin item form.
type CreateInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	ImageURL    string
}

// CreateIn validates the input and appends a new active item.
func CreateIn(snap *snapshot.Snapshot, input CreateInput, now time.Time) (*models.Item, error) {
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item name is required")
	}
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	if input.Stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}

	item := &models.Item{
		ID:          snap.NextItemID(),
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price.Round(2),
		Stock:       input.Stock,
		Active:      true,
		ImageURL:    input.ImageURL,
		CreatedAt:   now,
	}
	snap.Items[item.ID] = item
	return item, nil
}

// ListActiveIn returns the active items ordered by id.
func ListActiveIn(snap *snapshot.Snapshot) []models.Item {
	items := make([]models.Item, 0, len(snap.Items))
	for _, item := range snap.Items {
		if item.Active {
			items = append(items, *item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items
}
