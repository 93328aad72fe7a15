/*
reference.go - Reference table resolution

PURPOSE:
  A ReferenceTable is a small id -> display-name mapping used to enrich
  foreign-key columns (religion, district). Resolution never fails: an
  unmatched or null id resolves to the table's placeholder name so that
  downstream tallies stay total over the input.

SEE ALSO:
  - dataset.go: Value accessors used to read id cells
  - ../loan/lookup.go: The joiner that consumes reference tables
*/
package dataset

// ReferenceTable maps integer ids to display names for one entity kind.
type ReferenceTable struct {
	Entity string
	Names  map[int64]string
}

// NewReferenceTable creates a reference table for the given entity kind.
func NewReferenceTable(entity string, names map[int64]string) ReferenceTable {
	if names == nil {
		names = map[int64]string{}
	}
	return ReferenceTable{Entity: entity, Names: names}
}

// Placeholder is the name unresolved ids map to, e.g. "Unknown Religion".
func (r ReferenceTable) Placeholder() string {
	return "Unknown " + r.Entity
}

// Resolve maps an id cell to a display name. Null cells, non-integer
// cells, and ids absent from the table all resolve to the placeholder.
func (r ReferenceTable) Resolve(v Value) string {
	id, ok := v.Int64()
	if !ok {
		return r.Placeholder()
	}
	name, ok := r.Names[id]
	if !ok || name == "" {
		return r.Placeholder()
	}
	return name
}

// IsEmpty reports whether the table has no entries.
func (r ReferenceTable) IsEmpty() bool {
	return len(r.Names) == 0
}
