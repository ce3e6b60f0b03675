package snapshot

import (
	"github.com/shopyardhq/shopyard-backend/pkg/models"
)

// Snapshot is the full in-memory copy of the marketplace state. Components
// borrow it for the duration of one store operation and must not retain it
// across operations.
type Snapshot struct {
	Accounts map[string]*models.Account
	Items    map[int64]*models.Item
	Orders   map[int64]*models.Order
}

// New returns an empty snapshot with initialized maps.
func New() *Snapshot {
	return &Snapshot{
		Accounts: make(map[string]*models.Account),
		Items:    make(map[int64]*models.Item),
		Orders:   make(map[int64]*models.Order),
	}
}

// Clone deep-copies the snapshot so callers can never alias store-owned state.
func (s *Snapshot) Clone() *Snapshot {
	out := New()
	for username, account := range s.Accounts {
		copied := *account
		copied.Wishlist = append([]int64(nil), account.Wishlist...)
		out.Accounts[username] = &copied
	}
	for id, item := range s.Items {
		copied := *item
		out.Items[id] = &copied
	}
	for id, order := range s.Orders {
		copied := *order
		if order.ArrivalDate != nil {
			arrival := *order.ArrivalDate
			copied.ArrivalDate = &arrival
		}
		if order.CanceledAt != nil {
			canceled := *order.CanceledAt
			copied.CanceledAt = &canceled
		}
		out.Orders[id] = &copied
	}
	return out
}

// NextItemID returns the next positive item identifier.
func (s *Snapshot) NextItemID() int64 {
	return nextID(mapKeys(s.Items))
}

// NextOrderID returns the next positive order identifier.
func (s *Snapshot) NextOrderID() int64 {
	return nextID(mapKeys(s.Orders))
}

// CancelTokenInUse reports whether any order already carries the token.
func (s *Snapshot) CancelTokenInUse(token string) bool {
	if token == "" {
		return false
	}
	for _, order := range s.Orders {
		if order.CancelToken == token {
			return true
		}
	}
	return false
}

func nextID(ids []int64) int64 {
	var max int64
	for _, id := range ids {
		if id > max {
			max = id
		}
	}
	return max + 1
}

func mapKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
