package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/shopyardhq/shopyard-backend/pkg/enums"
)

// Order records a stock reservation against an item. ItemName and Amount are
// snapshots taken at creation time and never recomputed, even if the item is
// renamed or repriced later. CancelToken is present iff the order was placed
// by a guest; it is the only credential that can cancel such an order.
type Order struct {
	ID          int64             `gorm:"column:id;primaryKey" json:"id"`
	ItemID      int64             `gorm:"column:item_id;not null;index" json:"item_id"`
	ItemName    string            `gorm:"column:item_name;not null" json:"item_name"`
	Username    string            `gorm:"column:username;not null;index" json:"username"`
	BuyerName   string            `gorm:"column:buyer_name;not null" json:"buyer_name"`
	Quantity    int               `gorm:"column:quantity;not null" json:"quantity"`
	Amount      decimal.Decimal   `gorm:"column:amount;type:numeric(12,2);not null" json:"amount"`
	Status      enums.OrderStatus `gorm:"column:status;not null" json:"status"`
	ArrivalDate *time.Time        `gorm:"column:arrival_date" json:"arrival_date,omitempty"`
	CancelToken string            `gorm:"column:cancel_token" json:"-"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	CanceledAt  *time.Time        `gorm:"column:canceled_at" json:"canceled_at,omitempty"`
}

// IsGuestOrder reports whether the order was placed without an account.
func (o Order) IsGuestOrder() bool {
	return IsGuest(o.Username)
}
