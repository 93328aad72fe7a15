/*
warehouse.go - SQL warehouse fetch

PURPOSE:
  Implements Source over database/sql. The warehouse holding the loan
  applications speaks the Postgres wire protocol, so the pgx stdlib
  driver is registered; any database/sql driver name works via Open.

QUERY SHAPE:
  SELECT * FROM <table> LIMIT n

  The row-set schema is discovered from the result, not assumed: whatever
  columns come back become the dataset's columns, and the analytics views
  tolerate absent ones. Table names are validated against a strict
  identifier pattern because they travel into the SQL text.

SEE ALSO:
  - source.go: Source interface
  - ../dataset/dataset.go: Value materialization
*/
package source

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/meridian/loan-analytics/dataset"
)

// DefaultRowLimit caps fetches when the caller does not set one,
// mirroring the dashboard's own preview cap.
const DefaultRowLimit = 1000

var identPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_.]*$`)

// Warehouse is a Source backed by a SQL database.
type Warehouse struct {
	db *sql.DB
}

// Open connects to the warehouse and verifies the connection with a
// bounded ping. driver is a registered database/sql driver name,
// normally "pgx".
func Open(driver, dsn string) (*Warehouse, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open warehouse: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping warehouse: %w", err)
	}

	return &Warehouse{db: db}, nil
}

// Close releases the underlying connection pool.
func (w *Warehouse) Close() error {
	return w.db.Close()
}

// FetchDataset materializes up to limit rows of the named table.
func (w *Warehouse) FetchDataset(ctx context.Context, table string, limit int) (*dataset.Dataset, error) {
	if err := validIdent(table); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultRowLimit
	}

	rows, err := w.db.QueryContext(ctx, fmt.Sprintf(`SELECT * FROM %s LIMIT %d`, table, limit))
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns of %s: %w", table, err)
	}

	ds := dataset.New(columns)
	cells := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range cells {
		ptrs[i] = &cells[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		row := make(dataset.Row, len(columns))
		for i, cell := range cells {
			row[i] = dataset.NewValue(cell)
		}
		ds.Append(row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", table, err)
	}

	return ds, nil
}

// FetchReference materializes an id -> name mapping from a two-column
// reference table (id, name).
func (w *Warehouse) FetchReference(ctx context.Context, table, entity string) (dataset.ReferenceTable, error) {
	if err := validIdent(table); err != nil {
		return dataset.ReferenceTable{}, err
	}

	rows, err := w.db.QueryContext(ctx, fmt.Sprintf(`SELECT id, name FROM %s`, table))
	if err != nil {
		return dataset.ReferenceTable{}, fmt.Errorf("%w: query %s: %v", dataset.ErrReferenceUnavailable, table, err)
	}
	defer rows.Close()

	names := make(map[int64]string)
	for rows.Next() {
		var id int64
		var name sql.NullString
		if err := rows.Scan(&id, &name); err != nil {
			return dataset.ReferenceTable{}, fmt.Errorf("scan %s: %w", table, err)
		}
		if name.Valid {
			names[id] = name.String
		}
	}
	if err := rows.Err(); err != nil {
		return dataset.ReferenceTable{}, fmt.Errorf("iterate %s: %w", table, err)
	}

	return dataset.NewReferenceTable(entity, names), nil
}

func validIdent(table string) error {
	if !identPattern.MatchString(table) {
		return fmt.Errorf("invalid table name: %q", table)
	}
	return nil
}
