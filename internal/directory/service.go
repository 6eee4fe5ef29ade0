package directory

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Customer is a directory entry offered in the order form's customer picker.
type Customer struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Email *string `json:"email,omitempty"`
}

// Querier loads the customer directory from storage.
type Querier interface {
	ListCustomers(ctx context.Context) ([]Customer, error)
}

// PGQuerier implements Querier against Postgres.
type PGQuerier struct {
	Pool *pgxpool.Pool
}

// ListCustomers returns every customer ordered by name. The picker receives
// the full directory; there is no paging or search.
func (q PGQuerier) ListCustomers(ctx context.Context) ([]Customer, error) {
	if q.Pool == nil {
		return nil, errors.New("directory querier not configured")
	}
	rows, err := q.Pool.Query(ctx, `
		SELECT id::text, name, email
		FROM customers
		ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Email); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}
