/*
Package source fetches application row-sets from a remote tabular source.

PURPOSE:
  The analytics core operates on in-memory datasets; this package is the
  collaborator that produces them. The Source interface abstracts over
  the SQL warehouse (production) and the in-memory implementation (tests,
  demo mode), so the API layer never knows which one it is talking to.

SEE ALSO:
  - warehouse.go: SQL warehouse implementation (pgx driver)
  - memory.go: In-memory implementation and sample data
*/
package source

import (
	"context"

	"github.com/meridian/loan-analytics/dataset"
)

// Source produces datasets and reference tables from a tabular backend.
type Source interface {
	// FetchDataset materializes up to limit rows of the named table.
	// limit <= 0 means the backend's default cap.
	FetchDataset(ctx context.Context, table string, limit int) (*dataset.Dataset, error)

	// FetchReference materializes an id -> name reference table for the
	// given entity kind.
	FetchReference(ctx context.Context, table, entity string) (dataset.ReferenceTable, error)
}
