/*
Package dataset provides the generic tabular core of the analytics engine.

PURPOSE:
  This package contains domain-agnostic types for working with row-sets
  fetched from a tabular source. Whether the rows describe loan
  applications, customers, or anything else, the same types handle nullable
  values, column lookup, and reference-table resolution.

KEY CONCEPTS IN THIS FILE (dataset.go):
  - Value: A nullable cell value (string, number, or timestamp)
  - Row: One record, positionally aligned with the dataset's columns
  - Dataset: An ordered, immutable row-set with named columns

DESIGN PRINCIPLES:
  1. Immutability: A Dataset is built once and never mutated; transforms
     produce derived views, never in-place edits
  2. Tolerance: Missing columns and null cells are ordinary states, not
     errors; callers probe with Column() and Value accessors
  3. No ambient state: Datasets are caller-owned values passed explicitly,
     never reached through globals

USAGE:
  ds := dataset.New([]string{"dob", "gender"})
  ds.Append(dataset.Row{dataset.NewValue("1992-03-14"), dataset.NewValue("F")})

  if idx, ok := ds.Column("dob"); ok {
      v := ds.At(0, idx)
      t, _ := v.Time()
  }

SEE ALSO:
  - reference.go: Reference table resolution
  - errors.go: Sentinel errors shared with the storage layer
*/
package dataset

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// VALUE - Nullable cell value
// =============================================================================

// Value is a single nullable cell. The zero Value is null.
type Value struct {
	raw   any
	valid bool
}

// NewValue wraps a raw cell value. A nil raw value yields the null Value.
func NewValue(raw any) Value {
	if raw == nil {
		return Value{}
	}
	if b, ok := raw.([]byte); ok {
		raw = string(b)
	}
	return Value{raw: raw, valid: true}
}

// NullValue returns the null Value.
func NullValue() Value {
	return Value{}
}

// IsNull reports whether the cell held no value.
func (v Value) IsNull() bool {
	return !v.valid
}

// String returns the cell rendered as a string. Null renders as "".
func (v Value) String() string {
	if !v.valid {
		return ""
	}
	switch raw := v.raw.(type) {
	case string:
		return raw
	case time.Time:
		return raw.Format("2006-01-02")
	case float64:
		return strconv.FormatFloat(raw, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", raw)
	}
}

// Int64 returns the cell as an integer, reporting whether the conversion
// succeeded. Whole floats (common after JSON round-trips) convert cleanly.
func (v Value) Int64() (int64, bool) {
	if !v.valid {
		return 0, false
	}
	switch raw := v.raw.(type) {
	case int64:
		return raw, true
	case int:
		return int64(raw), true
	case float64:
		if raw == float64(int64(raw)) {
			return int64(raw), true
		}
		return 0, false
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// timeLayouts are tried in order when a date arrives as a string.
var timeLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"01/02/2006",
}

// Time returns the cell as a calendar date, reporting whether parsing
// succeeded. String cells are parsed against the supported layouts.
func (v Value) Time() (time.Time, bool) {
	if !v.valid {
		return time.Time{}, false
	}
	switch raw := v.raw.(type) {
	case time.Time:
		return raw, true
	case string:
		s := strings.TrimSpace(raw)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

// MarshalJSON renders the cell for snapshot storage and API previews.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.valid {
		return []byte("null"), nil
	}
	if t, ok := v.raw.(time.Time); ok {
		return json.Marshal(t.Format(time.RFC3339))
	}
	return json.Marshal(v.raw)
}

// UnmarshalJSON restores a cell from its snapshot form. Numbers come back
// as float64 and timestamps as strings; the accessors handle both.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = NewValue(raw)
	return nil
}

// =============================================================================
// DATASET - Ordered row-set with named columns
// =============================================================================

// Row is one record. Cells align positionally with the dataset's columns.
type Row []Value

// Dataset is an ordered row-set. Build with New and Append; transforms
// treat a finished Dataset as read-only.
type Dataset struct {
	columns []string
	index   map[string]int
	rows    []Row
}

// New creates an empty dataset with the given column names. Column lookup
// is case-insensitive; duplicate names keep the first position.
func New(columns []string) *Dataset {
	ds := &Dataset{
		columns: append([]string(nil), columns...),
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		key := normalizeColumn(c)
		if _, exists := ds.index[key]; !exists {
			ds.index[key] = i
		}
	}
	return ds
}

func normalizeColumn(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Append adds a row. Short rows are padded with nulls; long rows are
// truncated to the column count.
func (d *Dataset) Append(row Row) {
	switch {
	case len(row) < len(d.columns):
		padded := make(Row, len(d.columns))
		copy(padded, row)
		row = padded
	case len(row) > len(d.columns):
		row = row[:len(d.columns)]
	}
	d.rows = append(d.rows, row)
}

// Columns returns the column names in order.
func (d *Dataset) Columns() []string {
	return append([]string(nil), d.columns...)
}

// Column returns the position of a named column and whether it exists.
func (d *Dataset) Column(name string) (int, bool) {
	idx, ok := d.index[normalizeColumn(name)]
	return idx, ok
}

// NumRows returns the row count.
func (d *Dataset) NumRows() int {
	if d == nil {
		return 0
	}
	return len(d.rows)
}

// At returns the cell at (row, column position). Out-of-range access
// returns the null Value rather than panicking.
func (d *Dataset) At(row, col int) Value {
	if row < 0 || row >= len(d.rows) || col < 0 || col >= len(d.columns) {
		return NullValue()
	}
	r := d.rows[row]
	if col >= len(r) {
		return NullValue()
	}
	return r[col]
}

// Field returns the named cell of a row. Absent columns yield null.
func (d *Dataset) Field(row int, name string) Value {
	idx, ok := d.Column(name)
	if !ok {
		return NullValue()
	}
	return d.At(row, idx)
}

// Head returns a dataset holding at most n leading rows. The rows are
// shared, not copied; both views stay read-only.
func (d *Dataset) Head(n int) *Dataset {
	if n < 0 || n > len(d.rows) {
		n = len(d.rows)
	}
	head := New(d.columns)
	head.rows = d.rows[:n]
	return head
}
