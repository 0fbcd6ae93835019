package catalog

import (
	"context"
	"sync"

	"cafe-kiosk/internal/model"
)

// StaticGateway is an in-memory Gateway for tests and local development.
type StaticGateway struct {
	mu       sync.RWMutex
	products map[string]model.Product
}

// NewStaticGateway creates a gateway seeded with the given products.
func NewStaticGateway(products ...model.Product) *StaticGateway {
	m := make(map[string]model.Product, len(products))
	for _, p := range products {
		m[p.ID] = p
	}
	return &StaticGateway{products: m}
}

// GetProduct retrieves a product from the in-memory map.
func (g *StaticGateway) GetProduct(_ context.Context, id string) (*model.Product, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	p, ok := g.products[id]
	if !ok {
		return nil, model.ErrProductNotFound
	}
	return &p, nil
}

// Put adds or replaces a product.
func (g *StaticGateway) Put(p model.Product) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.products[p.ID] = p
}

// Remove deletes a product, simulating a catalog entry that disappeared.
func (g *StaticGateway) Remove(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.products, id)
}
