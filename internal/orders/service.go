// Package orders owns the order lifecycle: placement with stock
// reservation, arrival scheduling, and cancellation with stock
// restoration. Status moves processing -> scheduled and either may
// end in canceled; canceled is terminal.
package orders

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shopyardhq/shopyard-backend/internal/authz"
	"github.com/shopyardhq/shopyard-backend/internal/inventory"
	"github.com/shopyardhq/shopyard-backend/internal/snapshot"
	"github.com/shopyardhq/shopyard-backend/pkg/config"
	"github.com/shopyardhq/shopyard-backend/pkg/enums"
	pkgerrors "github.com/shopyardhq/shopyard-backend/pkg/errors"
	"github.com/shopyardhq/shopyard-backend/pkg/metrics"
	"github.com/shopyardhq/shopyard-backend/pkg/models"
	"github.com/shopyardhq/shopyard-backend/pkg/security"
)

const minGuestNameLength = 2

// PlaceInput describes a new order. Username empty (or "guest") places a
// guest order, which requires GuestFullName and yields a cancel token.
type PlaceInput struct {
	ItemID        int64
	Quantity      int
	Username      string
	GuestFullName string
}

// PlaceResult is the created order plus, for guest orders, the one-time
// cancel token. The token is not stored anywhere the buyer can fetch it
// again.
type PlaceResult struct {
	Order       models.Order
	CancelToken string
}

type Service interface {
	Place(ctx context.Context, input PlaceInput) (PlaceResult, error)
	Cancel(ctx context.Context, orderID int64, req authz.Request) (models.Order, error)
	SetArrival(ctx context.Context, orderID int64, arrival *time.Time) (models.Order, error)
	List(ctx context.Context) ([]models.Order, error)
	ListForUser(ctx context.Context, username string) ([]models.Order, error)
}

type service struct {
	store   snapshot.Store
	orders  config.OrdersConfig
	metrics *metrics.OrderMetrics
	now     func() time.Time
}

type ServiceParams struct {
	Store   snapshot.Store
	Orders  config.OrdersConfig
	Metrics *metrics.OrderMetrics
	Now     func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders service requires a snapshot store")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	tokenLength := params.Orders.CancelTokenLength
	if tokenLength < security.MinCancelTokenLength {
		tokenLength = security.MinCancelTokenLength
	}
	params.Orders.CancelTokenLength = tokenLength
	return &service{
		store:   params.Store,
		orders:  params.Orders,
		metrics: params.Metrics,
		now:     now,
	}, nil
}

func (s *service) Place(ctx context.Context, input PlaceInput) (PlaceResult, error) {
	var result PlaceResult

	err := s.store.Update(ctx, func(snap *snapshot.Snapshot) error {
		buyerName, username, err := resolveBuyer(snap, input)
		if err != nil {
			return err
		}

		item, err := inventory.ReserveIn(snap, input.ItemID, input.Quantity)
		if err != nil {
			return err
		}

		order := models.Order{
			ID:        snap.NextOrderID(),
			ItemID:    item.ID,
			ItemName:  item.Name,
			Username:  username,
			BuyerName: buyerName,
			Quantity:  input.Quantity,
			Amount:    item.Price.Mul(decimal.NewFromInt(int64(input.Quantity))).Round(2),
			Status:    enums.OrderStatusProcessing,
			CreatedAt: s.now().UTC(),
		}

		if order.IsGuestOrder() {
			token, err := mintCancelToken(snap, s.orders.CancelTokenLength)
			if err != nil {
				return err
			}
			order.CancelToken = token
			result.CancelToken = token
		}

		snap.Orders[order.ID] = &order
		result.Order = order
		return nil
	})
	if err != nil {
		return PlaceResult{}, err
	}

	s.metrics.IncPlaced()
	return result, nil
}

func (s *service) Cancel(ctx context.Context, orderID int64, req authz.Request) (models.Order, error) {
	var (
		canceled models.Order
		restored int
	)

	err := s.store.Update(ctx, func(snap *snapshot.Snapshot) error {
		order, exists := snap.Orders[orderID]
		if !exists {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		if order.Status == enums.OrderStatusCanceled {
			return pkgerrors.New(pkgerrors.CodeAlreadyCanceled, "order is already canceled")
		}

		if _, err := authz.ResolveCancelIn(snap, order, req); err != nil {
			return err
		}

		inventory.RestoreIn(snap, order.ItemID, order.Quantity)
		restored = order.Quantity

		now := s.now().UTC()
		order.Status = enums.OrderStatusCanceled
		order.CanceledAt = &now
		canceled = *order
		return nil
	})
	if err != nil {
		return models.Order{}, err
	}

	s.metrics.IncCanceled("request")
	s.metrics.AddStockRestored(restored)
	return canceled, nil
}

func (s *service) SetArrival(ctx context.Context, orderID int64, arrival *time.Time) (models.Order, error) {
	var updated models.Order

	err := s.store.Update(ctx, func(snap *snapshot.Snapshot) error {
		order, exists := snap.Orders[orderID]
		if !exists {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		if order.Status == enums.OrderStatusCanceled {
			return pkgerrors.New(pkgerrors.CodeAlreadyCanceled, "order is already canceled")
		}

		if arrival == nil {
			order.ArrivalDate = nil
			order.Status = enums.OrderStatusProcessing
		} else {
			date := arrival.UTC()
			order.ArrivalDate = &date
			order.Status = enums.OrderStatusScheduled
		}
		updated = *order
		return nil
	})
	if err != nil {
		return models.Order{}, err
	}
	return updated, nil
}

func (s *service) List(ctx context.Context) ([]models.Order, error) {
	return s.list(ctx, func(*models.Order) bool { return true })
}

func (s *service) ListForUser(ctx context.Context, username string) ([]models.Order, error) {
	principal := models.NormalizeUsername(username)
	if principal == "" || principal == models.GuestUsername {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order history requires an account")
	}
	return s.list(ctx, func(order *models.Order) bool {
		return order.Username == principal
	})
}

func (s *service) list(ctx context.Context, keep func(*models.Order) bool) ([]models.Order, error) {
	var out []models.Order
	err := s.store.View(ctx, func(snap *snapshot.Snapshot) error {
		for _, order := range snap.Orders {
			if keep(order) {
				out = append(out, *order)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func resolveBuyer(snap *snapshot.Snapshot, input PlaceInput) (buyerName, username string, err error) {
	username = models.NormalizeUsername(input.Username)

	if username == "" || username == models.GuestUsername {
		name := strings.TrimSpace(input.GuestFullName)
		if len(name) < minGuestNameLength {
			return "", "", pkgerrors.New(pkgerrors.CodeValidation, "guest orders require a buyer name")
		}
		return name, models.GuestUsername, nil
	}

	account, exists := snap.Accounts[username]
	if !exists {
		return "", "", pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
	}
	buyerName = account.FullName
	if buyerName == "" {
		buyerName = account.Username
	}
	return buyerName, username, nil
}

// mintCancelToken draws tokens until one is unused. Collisions are
// vanishingly rare at the default length, so the loop almost always
// runs once.
func mintCancelToken(snap *snapshot.Snapshot, length int) (string, error) {
	for {
		token, err := security.GenerateCancelToken(length)
		if err != nil {
			return "", err
		}
		if !snap.CancelTokenInUse(token) {
			return token, nil
		}
	}
}
