// Package firmdir caches the firm directory in memory. The firm tree changes
// rarely but is consulted on every visibility and assignment decision, so the
// service keeps one snapshot and reloads it only after a mutation.
package firmdir

import (
	"context"
	"fmt"
	"sync"

	"silas.org/internal/policy"
)

// Source loads the full firm directory from persistent storage.
type Source interface {
	ListFirms(ctx context.Context) ([]policy.Firm, error)
}

// Directory is a read-through cache over a Source. Safe for concurrent use.
type Directory struct {
	source Source

	mu    sync.RWMutex
	firms []policy.Firm
	ready bool
}

// New returns a Directory backed by the given source.
func New(source Source) *Directory {
	return &Directory{source: source}
}

// All returns the cached firm list, loading it from the source on first use
// or after an Invalidate.
func (d *Directory) All(ctx context.Context) ([]policy.Firm, error) {
	d.mu.RLock()
	if d.ready {
		firms := d.firms
		d.mu.RUnlock()
		return firms, nil
	}
	d.mu.RUnlock()

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ready {
		return d.firms, nil
	}
	firms, err := d.source.ListFirms(ctx)
	if err != nil {
		return nil, fmt.Errorf("load firm directory: %w", err)
	}
	d.firms = firms
	d.ready = true
	return d.firms, nil
}

// Invalidate drops the cached snapshot so the next All reloads from the source.
func (d *Directory) Invalidate() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.firms = nil
	d.ready = false
}
