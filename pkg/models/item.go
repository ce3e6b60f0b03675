package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item is a sellable catalog entry. Stock only changes through
// reserve/restore or an explicit admin override and never goes negative.
// Active=false is a terminal soft delete: the record survives so historical
// orders keep a valid reference, but no new orders are accepted.
type Item struct {
	ID          int64           `gorm:"column:id;primaryKey" json:"id"`
	Name        string          `gorm:"column:name;not null" json:"name"`
	Description string          `gorm:"column:description" json:"description"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null" json:"price"`
	Stock       int             `gorm:"column:stock;not null;default:0" json:"stock"`
	Active      bool            `gorm:"column:active;not null;default:true" json:"active"`
	ImageURL    string          `gorm:"column:image_url" json:"image_url"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
