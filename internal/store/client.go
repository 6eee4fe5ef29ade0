package store

import "context"

// Record is a single row expressed as column name to value.
type Record = map[string]any

// Client provides generic row insertion against a named table. Implementations
// return the created rows, including database-generated columns, so callers
// can read back generated identifiers.
type Client interface {
	Insert(ctx context.Context, table string, records []Record) ([]Record, error)
}
