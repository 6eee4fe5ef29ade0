package order

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noah-isme/kasir-api/internal/pricing"
)

// ErrNotFound indicates the requested order does not exist.
var ErrNotFound = errors.New("order not found")

// Order is a persisted order row.
type Order struct {
	ID            string
	CustomerID    *string
	TotalAmount   pricing.Money
	Status        string
	PaymentMethod *string
	Notes         *string
	CreatedAt     time.Time
}

// Item is a persisted order line.
type Item struct {
	ID         string
	ProductID  string
	Quantity   int
	UnitPrice  pricing.Money
	TotalPrice pricing.Money
}

// Querier loads persisted orders for the detail and list views.
type Querier interface {
	GetOrder(ctx context.Context, id string) (Order, error)
	ListOrderItems(ctx context.Context, orderID string) ([]Item, error)
	ListOrders(ctx context.Context, limit, offset int32) ([]Order, error)
	CountOrders(ctx context.Context) (int64, error)
}

// PGQuerier implements Querier against Postgres.
type PGQuerier struct {
	Pool *pgxpool.Pool
}

// GetOrder returns a single order by id.
func (q PGQuerier) GetOrder(ctx context.Context, id string) (Order, error) {
	if q.Pool == nil {
		return Order{}, errors.New("order querier not configured")
	}
	row := q.Pool.QueryRow(ctx, `
		SELECT id::text, customer_id::text, total_amount, status, payment_method, notes, created_at
		FROM orders
		WHERE id = $1`, id)
	var o Order
	err := row.Scan(&o.ID, &o.CustomerID, &o.TotalAmount, &o.Status, &o.PaymentMethod, &o.Notes, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	return o, err
}

// ListOrderItems returns the lines belonging to an order in insertion order.
func (q PGQuerier) ListOrderItems(ctx context.Context, orderID string) ([]Item, error) {
	if q.Pool == nil {
		return nil, errors.New("order querier not configured")
	}
	rows, err := q.Pool.Query(ctx, `
		SELECT id::text, product_id::text, quantity, unit_price, total_price
		FROM order_items
		WHERE order_id = $1
		ORDER BY created_at, id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.TotalPrice); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// ListOrders returns a page of orders, newest first.
func (q PGQuerier) ListOrders(ctx context.Context, limit, offset int32) ([]Order, error) {
	if q.Pool == nil {
		return nil, errors.New("order querier not configured")
	}
	rows, err := q.Pool.Query(ctx, `
		SELECT id::text, customer_id::text, total_amount, status, payment_method, notes, created_at
		FROM orders
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.CustomerID, &o.TotalAmount, &o.Status, &o.PaymentMethod, &o.Notes, &o.CreatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// CountOrders returns the total number of orders.
func (q PGQuerier) CountOrders(ctx context.Context) (int64, error) {
	if q.Pool == nil {
		return 0, errors.New("order querier not configured")
	}
	var total int64
	err := q.Pool.QueryRow(ctx, `SELECT count(*) FROM orders`).Scan(&total)
	return total, err
}
