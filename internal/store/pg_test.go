package store

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildInsertSingleRecord(t *testing.T) {
	records := []Record{{"status": "pending", "total_amount": int64(25), "customer_id": nil}}
	columns := sortedColumns(records[0])
	require.Equal(t, []string{"customer_id", "status", "total_amount"}, columns)

	sql, args, err := buildInsert("orders", columns, records)
	require.NoError(t, err)
	require.Equal(t, "INSERT INTO orders (customer_id, status, total_amount) VALUES ($1, $2, $3) RETURNING *", sql)
	require.Equal(t, []any{nil, "pending", int64(25)}, args)
}

func TestBuildInsertBatch(t *testing.T) {
	records := []Record{
		{"order_id": "o1", "quantity": 2},
		{"order_id": "o1", "quantity": 1},
	}
	columns := sortedColumns(records[0])
	sql, args, err := buildInsert("order_items", columns, records)
	require.NoError(t, err)
	require.Equal(t, "INSERT INTO order_items (order_id, quantity) VALUES ($1, $2), ($3, $4) RETURNING *", sql)
	require.Equal(t, []any{"o1", 2, "o1", 1}, args)
}

func TestBuildInsertRejectsMismatchedRecords(t *testing.T) {
	records := []Record{
		{"order_id": "o1", "quantity": 2},
		{"order_id": "o1"},
	}
	_, _, err := buildInsert("order_items", sortedColumns(records[0]), records)
	require.Error(t, err)
}

func TestBuildInsertRejectsBadIdentifiers(t *testing.T) {
	records := []Record{{"qty; DROP TABLE orders": 1}}
	_, _, err := buildInsert("order_items", sortedColumns(records[0]), records)
	require.Error(t, err)

	require.False(t, identPattern.MatchString("order_items; --"))
	require.True(t, identPattern.MatchString("order_items"))
}
