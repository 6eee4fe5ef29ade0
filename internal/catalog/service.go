package catalog

import (
	"context"
	"errors"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noah-isme/kasir-api/internal/pricing"
)

// Product is a catalog entry as the order-entry form consumes it. The list is
// served fully loaded; the form never pages or searches it.
type Product struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Price         pricing.Money `json:"price"`
	StockQuantity int           `json:"stockQuantity"`
	SKU           *string       `json:"sku,omitempty"`
}

// Querier loads the product list from storage.
type Querier interface {
	ListProducts(ctx context.Context) ([]Product, error)
}

// PGQuerier implements Querier against Postgres.
type PGQuerier struct {
	Pool *pgxpool.Pool
}

// ListProducts returns every product ordered by name.
func (q PGQuerier) ListProducts(ctx context.Context) ([]Product, error) {
	if q.Pool == nil {
		return nil, errors.New("catalog querier not configured")
	}
	rows, err := q.Pool.Query(ctx, `
		SELECT id::text, name, price, stock_quantity, sku
		FROM products
		ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.StockQuantity, &p.SKU); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

const productsCacheKey = "catalog:products"

// Service serves the product catalog, caching the full list in Redis.
type Service struct {
	Q     Querier
	Cache *Cache
}

// List returns all products, from cache when fresh.
func (s *Service) List(ctx context.Context) ([]Product, error) {
	if s == nil || s.Q == nil {
		return nil, errors.New("catalog service not configured")
	}
	var cached []Product
	if hit, err := s.Cache.GetJSON(ctx, productsCacheKey, &cached); err == nil && hit {
		return cached, nil
	}
	products, err := s.Q.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	_ = s.Cache.SetJSON(ctx, productsCacheKey, products)
	return products, nil
}

// Snapshot is the in-memory product index the composer reads for price
// snapshots and stock warnings. It is replaced wholesale on refresh, never
// mutated in place.
type Snapshot struct {
	mu   sync.RWMutex
	byID map[string]Product
}

// Update swaps in a new product set.
func (s *Snapshot) Update(products []Product) {
	byID := make(map[string]Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	s.mu.Lock()
	s.byID = byID
	s.mu.Unlock()
}

// Product looks up a product by id.
func (s *Snapshot) Product(id string) (Product, bool) {
	if s == nil {
		return Product{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byID[id]
	return p, ok
}
