package snapshot

import (
	"context"
	"sync"

	pkgerrors "github.com/shopyardhq/shopyard-backend/pkg/errors"
)

// Backend persists whole snapshots. Load must return a copy the caller may
// mutate freely; Save must atomically replace the previous snapshot.
type Backend interface {
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snap *Snapshot) error
}

// Store is the surface the engine components use. Update runs fn inside a
// single load-mutate-save critical section; when fn returns an error nothing
// is saved, so failed operations never leave partial writes.
type Store interface {
	View(ctx context.Context, fn func(snap *Snapshot) error) error
	Update(ctx context.Context, fn func(snap *Snapshot) error) error
}

type locked struct {
	mu      sync.RWMutex
	backend Backend
}

// NewLocked serializes all mutating operations on the backend behind one
// process-wide lock. Two concurrent placements against the same item see each
// other's stock decrement instead of both reading the same snapshot.
func NewLocked(backend Backend) Store {
	return &locked{backend: backend}
}

func (l *locked) View(ctx context.Context, fn func(snap *Snapshot) error) error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	snap, err := l.backend.Load(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load snapshot")
	}
	return fn(snap)
}

func (l *locked) Update(ctx context.Context, fn func(snap *Snapshot) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	snap, err := l.backend.Load(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load snapshot")
	}
	if err := fn(snap); err != nil {
		return err
	}
	if err := l.backend.Save(ctx, snap); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save snapshot")
	}
	return nil
}
