package store

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noah-isme/kasir-api/internal/common"
)

// ErrNoRecords is returned when Insert is called with nothing to insert.
var ErrNoRecords = errors.New("store: no records to insert")

var identPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// PG implements Client on top of a pgx connection pool.
type PG struct {
	Pool *pgxpool.Pool
}

// Insert writes all records into table as a single multi-row statement and
// returns the created rows. Column order is taken from the first record's
// sorted keys; every record must carry the same columns.
func (p PG) Insert(ctx context.Context, table string, records []Record) ([]Record, error) {
	if p.Pool == nil {
		return nil, errors.New("store: pool not configured")
	}
	if len(records) == 0 {
		return nil, ErrNoRecords
	}
	if !identPattern.MatchString(table) {
		return nil, fmt.Errorf("store: invalid table name %q", table)
	}
	columns := sortedColumns(records[0])
	sql, args, err := buildInsert(table, columns, records)
	if err != nil {
		return nil, err
	}
	rows, err := p.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, wrapStoreError(table, err)
	}
	defer rows.Close()

	created := make([]Record, 0, len(records))
	fields := rows.FieldDescriptions()
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, wrapStoreError(table, err)
		}
		row := make(Record, len(fields))
		for i, fd := range fields {
			row[string(fd.Name)] = values[i]
		}
		created = append(created, row)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStoreError(table, err)
	}
	return created, nil
}

func sortedColumns(record Record) []string {
	columns := make([]string, 0, len(record))
	for column := range record {
		columns = append(columns, column)
	}
	sort.Strings(columns)
	return columns
}

func buildInsert(table string, columns []string, records []Record) (string, []any, error) {
	if len(columns) == 0 {
		return "", nil, fmt.Errorf("store: record for %s has no columns", table)
	}
	for _, column := range columns {
		if !identPattern.MatchString(column) {
			return "", nil, fmt.Errorf("store: invalid column name %q", column)
		}
	}
	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(table)
	sb.WriteString(" (")
	sb.WriteString(strings.Join(columns, ", "))
	sb.WriteString(") VALUES ")

	args := make([]any, 0, len(records)*len(columns))
	placeholder := 1
	for i, record := range records {
		if len(record) != len(columns) {
			return "", nil, fmt.Errorf("store: record %d has mismatched columns", i)
		}
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(")
		for j, column := range columns {
			value, ok := record[column]
			if !ok {
				return "", nil, fmt.Errorf("store: record %d missing column %q", i, column)
			}
			if j > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "$%d", placeholder)
			args = append(args, value)
			placeholder++
		}
		sb.WriteString(")")
	}
	sb.WriteString(" RETURNING *")
	return sb.String(), args, nil
}

func wrapStoreError(table string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		message := strings.TrimSpace(pgErr.Message)
		if message == "" {
			message = "database rejected the write"
		}
		return common.NewAppError("STORE_ERROR", message, http.StatusBadGateway, err)
	}
	return common.NewAppError("STORE_ERROR", fmt.Sprintf("insert into %s failed", table), http.StatusBadGateway, err)
}
