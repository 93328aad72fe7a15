/*
errors.go - Centralized error types for the tabular core

PURPOSE:
  All sentinel errors in one place for consistency and discoverability.
  The storage and source layers wrap these with additional context.

ERROR CATEGORIES:
  1. Shape errors  - Column-less row-sets that no view could serve
  2. Cache errors  - Snapshot freshness at the storage boundary
  3. Lookup errors - Reference table availability

NOTE:
  Anomalies inside the view transforms themselves (a filtered-out stage,
  an empty tally) are NOT errors; they surface as reason strings on the
  view result so independent views degrade without affecting each other.

USAGE:
  if errors.Is(err, dataset.ErrNoSnapshot) {
      // fetch from the warehouse and re-cache
  }

SEE ALSO:
  - ../store/sqlite/sqlite.go: Returns the cache errors
  - ../source/warehouse.go: Wraps shape errors from fetches
*/
package dataset

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrEmptyDataset is returned when an operation needs a dataset with at
	// least one column, such as caching a snapshot. A zero-row dataset is
	// fine; a zero-column one could never serve a view.
	ErrEmptyDataset = errors.New("dataset has no columns")

	// ErrNoSnapshot is returned when no cached snapshot exists for a table.
	ErrNoSnapshot = errors.New("no cached snapshot")

	// ErrSnapshotStale is returned when the cached snapshot is older than
	// the caller's freshness window. Callers refetch and re-cache.
	ErrSnapshotStale = errors.New("cached snapshot is stale")

	// ErrReferenceUnavailable is returned when a reference table cannot be
	// loaded. The joiner degrades to placeholder names instead.
	ErrReferenceUnavailable = errors.New("reference table unavailable")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// StaleSnapshotError carries the age details of a rejected snapshot.
type StaleSnapshotError struct {
	Table  string
	AgeSec int64
	MaxSec int64
}

func (e *StaleSnapshotError) Error() string {
	return fmt.Sprintf("snapshot for %q is %ds old (max %ds)", e.Table, e.AgeSec, e.MaxSec)
}

func (e *StaleSnapshotError) Unwrap() error {
	return ErrSnapshotStale
}

// IsCacheMiss reports whether an error means the cache cannot serve and the
// caller should fall through to the warehouse.
func IsCacheMiss(err error) bool {
	return errors.Is(err, ErrNoSnapshot) || errors.Is(err, ErrSnapshotStale)
}
