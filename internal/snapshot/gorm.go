package snapshot

import (
	"context"
	"fmt"

	"github.com/shopyardhq/shopyard-backend/pkg/db"
	"github.com/shopyardhq/shopyard-backend/pkg/models"
	"gorm.io/gorm"
)

// GormBackend persists snapshots in the accounts/items/orders tables. Save
// overwrites all three inside one transaction, preserving the document-store
// semantics (the snapshot is the unit of atomicity, not the row).
type GormBackend struct {
	client *db.Client
}

// NewGormBackend wraps a db client as a snapshot backend.
func NewGormBackend(client *db.Client) (*GormBackend, error) {
	if client == nil {
		return nil, fmt.Errorf("db client is required")
	}
	return &GormBackend{client: client}, nil
}

// AutoMigrate ensures the three snapshot tables exist.
func (g *GormBackend) AutoMigrate() error {
	return g.client.DB().AutoMigrate(&models.Account{}, &models.Item{}, &models.Order{})
}

// Load reads the full snapshot.
func (g *GormBackend) Load(ctx context.Context) (*Snapshot, error) {
	snap := New()
	conn := g.client.DB().WithContext(ctx)

	var accounts []models.Account
	if err := conn.Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("loading accounts: %w", err)
	}
	for i := range accounts {
		account := accounts[i]
		snap.Accounts[account.Username] = &account
	}

	var items []models.Item
	if err := conn.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("loading items: %w", err)
	}
	for i := range items {
		item := items[i]
		snap.Items[item.ID] = &item
	}

	var orders []models.Order
	if err := conn.Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("loading orders: %w", err)
	}
	for i := range orders {
		order := orders[i]
		snap.Orders[order.ID] = &order
	}

	return snap, nil
}

// Save replaces the persisted snapshot in one transaction.
func (g *GormBackend) Save(ctx context.Context, snap *Snapshot) error {
	return g.client.WithTx(ctx, func(tx *gorm.DB) error {
		session := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		for _, model := range []any{&models.Order{}, &models.Item{}, &models.Account{}} {
			if err := session.Delete(model).Error; err != nil {
				return fmt.Errorf("clearing table: %w", err)
			}
		}

		for _, account := range snap.Accounts {
			if err := tx.Create(account).Error; err != nil {
				return fmt.Errorf("saving account %s: %w", account.Username, err)
			}
		}
		for _, item := range snap.Items {
			if err := tx.Create(item).Error; err != nil {
				return fmt.Errorf("saving item %d: %w", item.ID, err)
			}
		}
		for _, order := range snap.Orders {
			if err := tx.Create(order).Error; err != nil {
				return fmt.Errorf("saving order %d: %w", order.ID, err)
			}
		}
		return nil
	})
}
