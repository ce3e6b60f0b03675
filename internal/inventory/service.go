package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/shopyardhq/shopyard-backend/internal/snapshot"
	pkgerrors "github.com/shopyardhq/shopyard-backend/pkg/errors"
	"github.com/shopyardhq/shopyard-backend/pkg/models"
)

// Service exposes inventory management as one store operation per call.
type Service interface {
	Reserve(ctx context.Context, itemID int64, quantity int) (models.Item, error)
	Restore(ctx context.Context, itemID int64, quantity int) error
	SetStock(ctx context.Context, itemID int64, stock int) (models.Item, error)
	Deactivate(ctx context.Context, itemID int64) (models.Item, error)
	Create(ctx context.Context, input CreateInput) (models.Item, error)
	ListActive(ctx context.Context) ([]models.Item, error)
	Get(ctx context.Context, itemID int64) (models.Item, error)
}

type service struct {
	store snapshot.Store
	now   func() time.Time
}

// ServiceParams groups dependencies for the inventory service.
type ServiceParams struct {
	Store snapshot.Store
	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

// NewService builds an inventory service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("snapshot store required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{store: params.Store, now: now}, nil
}

func (s *service) Reserve(ctx context.Context, itemID int64, quantity int) (models.Item, error) {
	var out models.Item
	err := s.store.Update(ctx, func(snap *snapshot.Snapshot) error {
		item, err := ReserveIn(snap, itemID, quantity)
		if err != nil {
			return err
		}
		out = *item
		return nil
	})
	return out, err
}

func (s *service) Restore(ctx context.Context, itemID int64, quantity int) error {
	return s.store.Update(ctx, func(snap *snapshot.Snapshot) error {
		RestoreIn(snap, itemID, quantity)
		return nil
	})
}

func (s *service) SetStock(ctx context.Context, itemID int64, stock int) (models.Item, error) {
	var out models.Item
	err := s.store.Update(ctx, func(snap *snapshot.Snapshot) error {
		item, err := SetStockIn(snap, itemID, stock)
		if err != nil {
			return err
		}
		out = *item
		return nil
	})
	return out, err
}

func (s *service) Deactivate(ctx context.Context, itemID int64) (models.Item, error) {
	var out models.Item
	err := s.store.Update(ctx, func(snap *snapshot.Snapshot) error {
		item, err := DeactivateIn(snap, itemID)
		if err != nil {
			return err
		}
		out = *item
		return nil
	})
	return out, err
}

func (s *service) Create(ctx context.Context, input CreateInput) (models.Item, error) {
	var out models.Item
	err := s.store.Update(ctx, func(snap *snapshot.Snapshot) error {
		item, err := CreateIn(snap, input, s.now().UTC())
		if err != nil {
			return err
		}
		out = *item
		return nil
	})
	return out, err
}

func (s *service) ListActive(ctx context.Context) ([]models.Item, error) {
	var out []models.Item
	err := s.store.View(ctx, func(snap *snapshot.Snapshot) error {
		out = ListActiveIn(snap)
		return nil
	})
	return out, err
}

func (s *service) Get(ctx context.Context, itemID int64) (models.Item, error) {
	var out models.Item
	err := s.store.View(ctx, func(snap *snapshot.Snapshot) error {
		item, ok := snap.Items[itemID]
		if !ok || !item.Active {
			return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("item %d not found", itemID))
		}
		out = *item
		return nil
	})
	return out, err
}
