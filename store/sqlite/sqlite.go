/*
Package sqlite provides the local SQLite cache behind the analytics views.

PURPOSE:
  The warehouse is remote and metered; the dashboard re-renders often.
  This store caches fetched row-sets as snapshots with a freshness window
  (the original deployment cached for 10 minutes) and holds the small
  reference tables (religion, district) locally.

KEY TABLES:
  snapshots:       One row per cached fetch (uuid id, table, fetched_at)
  snapshot_rows:   Materialized rows of a snapshot, JSON per row
  reference_names: id -> name entries per entity kind

FRESHNESS:
  LatestSnapshot(ctx, table, maxAge) returns dataset.ErrNoSnapshot when
  nothing is cached and dataset.ErrSnapshotStale (wrapped with age
  details) when the newest snapshot is older than maxAge. Callers fall
  through to the warehouse and re-cache.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency.

USAGE:
  store, err := sqlite.New("./data/loanlens.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - ../../dataset/errors.go: Cache sentinel errors
  - ../../api/handlers.go: Cache-then-fetch flow
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/meridian/loan-analytics/dataset"
)

// Store implements the snapshot cache and reference storage using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// SnapshotInfo describes a cached snapshot.
type SnapshotInfo struct {
	ID        string
	Table     string
	FetchedAt time.Time
	RowCount  int
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Cached warehouse fetches
	CREATE TABLE IF NOT EXISTS snapshots (
		id TEXT PRIMARY KEY,
		table_name TEXT NOT NULL,
		columns_json TEXT NOT NULL,
		row_count INTEGER NOT NULL,
		fetched_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_table_fetched
		ON snapshots(table_name, fetched_at DESC);

	-- Materialized rows, one JSON array of cells per row
	CREATE TABLE IF NOT EXISTS snapshot_rows (
		snapshot_id TEXT NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
		idx INTEGER NOT NULL,
		row_json TEXT NOT NULL,
		PRIMARY KEY (snapshot_id, idx)
	);

	-- Reference tables (religion, district)
	CREATE TABLE IF NOT EXISTS reference_names (
		entity TEXT NOT NULL,
		ref_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		PRIMARY KEY (entity, ref_id)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// SNAPSHOTS
// =============================================================================

// SaveSnapshot caches a fetched dataset and returns the snapshot id.
// Older snapshots of the same table are dropped; the cache keeps exactly
// the latest fetch per table. A column-less dataset is rejected with
// dataset.ErrEmptyDataset rather than cached as a snapshot no view
// could serve.
func (s *Store) SaveSnapshot(ctx context.Context, table string, ds *dataset.Dataset) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(ds.Columns()) == 0 {
		return "", fmt.Errorf("snapshot %s: %w", table, dataset.ErrEmptyDataset)
	}

	columnsJSON, err := json.Marshal(ds.Columns())
	if err != nil {
		return "", fmt.Errorf("encode columns: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM snapshots WHERE table_name = ?`, table); err != nil {
		return "", fmt.Errorf("drop old snapshots: %w", err)
	}

	id := uuid.New().String()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO snapshots (id, table_name, columns_json, row_count, fetched_at)
		VALUES (?, ?, ?, ?, ?)`,
		id, table, string(columnsJSON), ds.NumRows(), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("insert snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO snapshot_rows (snapshot_id, idx, row_json) VALUES (?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer stmt.Close()

	cols := ds.Columns()
	for i := 0; i < ds.NumRows(); i++ {
		row := make(dataset.Row, len(cols))
		for c := range cols {
			row[c] = ds.At(i, c)
		}
		rowJSON, err := json.Marshal(row)
		if err != nil {
			return "", fmt.Errorf("encode row %d: %w", i, err)
		}
		if _, err := stmt.ExecContext(ctx, id, i, string(rowJSON)); err != nil {
			return "", fmt.Errorf("insert row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// LatestSnapshot loads the newest cached snapshot of a table, rejecting
// it when older than maxAge. maxAge <= 0 accepts any age.
func (s *Store) LatestSnapshot(ctx context.Context, table string, maxAge time.Duration) (*dataset.Dataset, SnapshotInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var info SnapshotInfo
	var columnsJSON, fetchedAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, columns_json, row_count, fetched_at
		FROM snapshots WHERE table_name = ?
		ORDER BY fetched_at DESC LIMIT 1`, table,
	).Scan(&info.ID, &columnsJSON, &info.RowCount, &fetchedAt)
	if err == sql.ErrNoRows {
		return nil, SnapshotInfo{}, dataset.ErrNoSnapshot
	}
	if err != nil {
		return nil, SnapshotInfo{}, fmt.Errorf("load snapshot: %w", err)
	}

	info.Table = table
	info.FetchedAt, err = time.Parse(time.RFC3339, fetchedAt)
	if err != nil {
		return nil, SnapshotInfo{}, fmt.Errorf("parse fetched_at: %w", err)
	}

	if maxAge > 0 {
		age := time.Since(info.FetchedAt)
		if age > maxAge {
			return nil, SnapshotInfo{}, &dataset.StaleSnapshotError{
				Table:  table,
				AgeSec: int64(age.Seconds()),
				MaxSec: int64(maxAge.Seconds()),
			}
		}
	}

	var columns []string
	if err := json.Unmarshal([]byte(columnsJSON), &columns); err != nil {
		return nil, SnapshotInfo{}, fmt.Errorf("decode columns: %w", err)
	}

	ds := dataset.New(columns)
	rows, err := s.db.QueryContext(ctx, `
		SELECT row_json FROM snapshot_rows WHERE snapshot_id = ? ORDER BY idx`, info.ID)
	if err != nil {
		return nil, SnapshotInfo{}, fmt.Errorf("load rows: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rowJSON string
		if err := rows.Scan(&rowJSON); err != nil {
			return nil, SnapshotInfo{}, err
		}
		var row dataset.Row
		if err := json.Unmarshal([]byte(rowJSON), &row); err != nil {
			return nil, SnapshotInfo{}, fmt.Errorf("decode row: %w", err)
		}
		ds.Append(row)
	}
	if err := rows.Err(); err != nil {
		return nil, SnapshotInfo{}, err
	}

	return ds, info, nil
}

// DropSnapshots removes every cached snapshot of a table. Used by the
// refresh endpoint to force the next view through the warehouse.
func (s *Store) DropSnapshots(ctx context.Context, table string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE table_name = ?`, table)
	return err
}

// =============================================================================
// REFERENCE TABLES
// =============================================================================

// SaveReference replaces the stored entries for an entity kind.
func (s *Store) SaveReference(ctx context.Context, entity string, names map[int64]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM reference_names WHERE entity = ?`, entity); err != nil {
		return err
	}
	for id, name := range names {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO reference_names (entity, ref_id, name) VALUES (?, ?, ?)`,
			entity, id, name); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Reference loads the stored entries for an entity kind. A missing
// entity yields an empty (not nil) table; the joiner degrades on its own.
func (s *Store) Reference(ctx context.Context, entity string) (dataset.ReferenceTable, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT ref_id, name FROM reference_names WHERE entity = ?`, entity)
	if err != nil {
		return dataset.ReferenceTable{}, fmt.Errorf("%w: %v", dataset.ErrReferenceUnavailable, err)
	}
	defer rows.Close()

	names := make(map[int64]string)
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return dataset.ReferenceTable{}, err
		}
		names[id] = name
	}
	if err := rows.Err(); err != nil {
		return dataset.ReferenceTable{}, err
	}

	return dataset.NewReferenceTable(entity, names), nil
}

// SeedReferenceDefaults inserts the shipped religion and district tables
// when the store holds no entries for them. Existing entries win.
func (s *Store) SeedReferenceDefaults(ctx context.Context) error {
	for entity, names := range map[string]map[int64]string{
		"Religion": {
			1: "Islam", 2: "Hinduism", 3: "Buddhism", 4: "Christianity", 5: "Other",
		},
		"District": {
			1: "Dhaka", 2: "Chattogram", 3: "Khulna", 4: "Rajshahi",
			5: "Sylhet", 6: "Barishal", 7: "Rangpur", 8: "Mymensingh",
		},
	} {
		existing, err := s.Reference(ctx, entity)
		if err != nil {
			return err
		}
		if !existing.IsEmpty() {
			continue
		}
		if err := s.SaveReference(ctx, entity, names); err != nil {
			return err
		}
	}
	return nil
}
