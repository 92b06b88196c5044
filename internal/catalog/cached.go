package catalog

import (
	"context"
	"sync"

	"QueChoisir/internal/domain"
	"QueChoisir/internal/ports"
)

// Cached keeps the first successful load of a source so product identities
// stay stable for the lifetime of the process.
type Cached struct {
	source ports.CatalogSource

	mu       sync.Mutex
	products []domain.Product
	loaded   bool
}

var _ ports.CatalogSource = (*Cached)(nil)

// NewCached wraps source.
func NewCached(source ports.CatalogSource) *Cached {
	return &Cached{source: source}
}

// Products loads once; failed loads are retried on the next call.
func (c *Cached) Products(ctx context.Context) ([]domain.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.loaded {
		products, err := c.source.Products(ctx)
		if err != nil {
			return nil, err
		}
		c.products = products
		c.loaded = true
	}

	out := make([]domain.Product, len(c.products))
	copy(out, c.products)
	return out, nil
}
