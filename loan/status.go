/*
status.go - Status normalization taxonomy

PURPOSE:
  Maps raw free-text status strings to the closed canonical set. The
  mapping itself is data, not code: a Taxonomy value carries the alias
  table and any display-label overrides, so deployments that label the
  pending/review cluster "Pending" instead of "In Progress" are a
  configuration, not a fork.

ALGORITHM:
  lower-case + trim the input (null reads as ""), probe the alias table,
  fall through to StatusOther. Pure and total; never fails.

SEE ALSO:
  - taxonomies.go: Built-in taxonomy definitions (JSON)
  - ../factory/taxonomy.go: JSON -> Taxonomy conversion
*/
package loan

import (
	"strings"

	"github.com/meridian/loan-analytics/dataset"
)

// Taxonomy is a configurable raw-string -> canonical-status mapping plus
// optional display-label overrides. Construct via the factory package.
type Taxonomy struct {
	Name    string
	Aliases map[string]CanonicalStatus
	Labels  map[CanonicalStatus]string
}

// NormalizeString maps a raw status string to its canonical status.
// Matching is case-insensitive and whitespace-trimmed; anything not in
// the alias table is StatusOther. The empty string always normalizes to
// StatusUnknown regardless of taxonomy.
func (t Taxonomy) NormalizeString(raw string) CanonicalStatus {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" {
		return StatusUnknown
	}
	if status, ok := t.Aliases[key]; ok {
		return status
	}
	return StatusOther
}

// Normalize maps a status cell to its canonical status. Null cells read
// as the empty string.
func (t Taxonomy) Normalize(v dataset.Value) CanonicalStatus {
	return t.NormalizeString(v.String())
}

// Label returns the display label for a canonical status under this
// taxonomy, e.g. "Pending" for StatusInProgress in the pending-label
// variant. Statuses without an override display their canonical name.
func (t Taxonomy) Label(s CanonicalStatus) string {
	if label, ok := t.Labels[s]; ok && label != "" {
		return label
	}
	return string(s)
}

// ParseStatus resolves a view-parameter string under this taxonomy,
// accepting both canonical names and the taxonomy's display labels.
// Whatever the vocabulary endpoints advertise parses back here.
func (t Taxonomy) ParseStatus(s string) (CanonicalStatus, bool) {
	if status, ok := ParseStatus(s); ok {
		return status, true
	}
	needle := strings.TrimSpace(s)
	for _, status := range CanonicalOrder() {
		if strings.EqualFold(needle, t.Label(status)) {
			return status, true
		}
	}
	return "", false
}
