/*
memory.go - In-memory Source (for testing/demo)

PURPOSE:
  A Source backed by maps. Tests seed it with exactly the rows a scenario
  needs; demo mode serves the canned sample so the dashboard works with
  no warehouse credentials at all.

SEE ALSO:
  - warehouse.go: Production implementation
  - source.go: Source interface
*/
package source

import (
	"context"
	"fmt"
	"sync"

	"github.com/meridian/loan-analytics/dataset"
)

// =============================================================================
// MEMORY SOURCE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu       sync.RWMutex
	datasets map[string]*dataset.Dataset
	refs     map[string]dataset.ReferenceTable
}

func NewMemory() *Memory {
	return &Memory{
		datasets: make(map[string]*dataset.Dataset),
		refs:     make(map[string]dataset.ReferenceTable),
	}
}

// AddDataset registers a dataset under a table name.
func (m *Memory) AddDataset(table string, ds *dataset.Dataset) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.datasets[table] = ds
}

// AddReference registers a reference table under a table name.
func (m *Memory) AddReference(table string, ref dataset.ReferenceTable) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refs[table] = ref
}

// FetchDataset returns the registered dataset, truncated to limit.
func (m *Memory) FetchDataset(_ context.Context, table string, limit int) (*dataset.Dataset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ds, ok := m.datasets[table]
	if !ok {
		return nil, fmt.Errorf("no such table: %s", table)
	}
	if limit > 0 && limit < ds.NumRows() {
		return ds.Head(limit), nil
	}
	return ds, nil
}

// FetchReference returns the registered reference table.
func (m *Memory) FetchReference(_ context.Context, table, entity string) (dataset.ReferenceTable, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ref, ok := m.refs[table]
	if !ok {
		return dataset.ReferenceTable{}, fmt.Errorf("%w: no such table: %s", dataset.ErrReferenceUnavailable, table)
	}
	return dataset.NewReferenceTable(entity, ref.Names), nil
}

// =============================================================================
// SAMPLE DATA - Demo mode
// =============================================================================

// ApplicationColumns is the full column set of the application row-set.
func ApplicationColumns() []string {
	return []string{
		"es_approval_status", "da_approval_status", "osd_approval_status",
		"mngr_approval_status", "gm_approval_status", "md_approval_status",
		"gender", "dob", "religion_id", "present_district_id",
	}
}

// Sample returns a Memory source seeded with a small but representative
// application table, including the messy inputs the normalizer exists
// for: mixed case, stray whitespace, nulls, and off-taxonomy strings.
func Sample(table string) *Memory {
	m := NewMemory()

	ds := dataset.New(ApplicationColumns())
	for _, r := range [][]any{
		{"Approved", "approved ", "ACCEPTED", "complete", "Approved", "pending", "M", "1988-04-12", int64(1), int64(1)},
		{"approved", "In Progress", "review", nil, "", "awaiting review", "F", "1995-11-30", int64(2), int64(2)},
		{"REJECTED", "denied", "Rejected", "rejected", "rejected ", "denied", "M", "1972-01-05", int64(1), int64(3)},
		{"pending", "pending", "null", "none", nil, nil, "F", "2001-07-19", int64(3), int64(4)},
		{"Approved", "approved", "approved", "approved", "approved", "approved", "M", "1959-09-02", int64(4), int64(1)},
		{"on hold", "escalated", "approved", "pending", "review", "", "F", nil, nil, int64(7)},
		{"approved", "APPROVED", "Approved", "in progress", "In Progress", "pending", nil, "1924-02-29", int64(1), int64(5)},
		{"rejected", "denied", "DENIED", "Rejected", "rejected", "rejected", "M", "not-a-date", int64(2), nil},
	} {
		row := make(dataset.Row, len(r))
		for i, cell := range r {
			row[i] = dataset.NewValue(cell)
		}
		ds.Append(row)
	}
	m.AddDataset(table, ds)

	m.AddReference("religions", dataset.NewReferenceTable("Religion", map[int64]string{
		1: "Islam", 2: "Hinduism", 3: "Buddhism", 4: "Christianity",
	}))
	m.AddReference("districts", dataset.NewReferenceTable("District", map[int64]string{
		1: "Dhaka", 2: "Chattogram", 3: "Khulna", 4: "Rajshahi", 5: "Sylhet",
	}))

	return m
}
