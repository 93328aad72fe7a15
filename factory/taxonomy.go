/*
Package factory provides JSON to Go taxonomy conversion.

PURPOSE:
  Converts JSON taxonomy definitions into loan.Taxonomy values. This
  enables status-mapping changes without code changes - operations can
  adjust which raw strings fold into which canonical status, and how the
  pending/review cluster is labeled, in configuration.

WHY JSON?
  - Non-developers can adjust the alias table
  - Version control for taxonomy definitions
  - The two production labelings ("In Progress" vs "Pending") become
    selectable variants instead of competing forks

JSON SCHEMA:
  {
    "name": "standard",
    "labels": {"In Progress": "Pending"},          // optional overrides
    "statuses": {
      "Approved":        ["approved", "accepted", "complete"],
      "Rejected":        ["rejected", "denied"],
      "In Progress":     ["in progress", "pending", "review"],
      "Unknown/Missing": ["null", "none", ""]
    }
  }

VALIDATION:
  - Every key of "statuses" and "labels" must name a canonical status;
    the canonical set is closed and never grows from configuration
  - Aliases are lowercased and trimmed on load
  - StatusOther never takes aliases; it is the explicit default branch

USAGE:
  tax, err := factory.ParseTaxonomy(loan.StandardTaxonomyJSON())
  tax, err := factory.Builtin("pending-label")
  tax, err := factory.LoadFile("/etc/loanlens/taxonomy.json")

SEE ALSO:
  - loan/taxonomies.go: Built-in definitions
  - loan/status.go: Taxonomy type and normalization
*/
package factory

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/meridian/loan-analytics/loan"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// TaxonomyJSON is the JSON representation of a status taxonomy.
type TaxonomyJSON struct {
	Name     string              `json:"name"`
	Labels   map[string]string   `json:"labels,omitempty"`
	Statuses map[string][]string `json:"statuses"`
}

// =============================================================================
// PARSING
// =============================================================================

// ParseTaxonomy converts a JSON taxonomy definition into a Taxonomy.
func ParseTaxonomy(jsonStr string) (loan.Taxonomy, error) {
	var def TaxonomyJSON
	if err := json.Unmarshal([]byte(jsonStr), &def); err != nil {
		return loan.Taxonomy{}, fmt.Errorf("invalid taxonomy JSON: %w", err)
	}
	if def.Name == "" {
		return loan.Taxonomy{}, fmt.Errorf("taxonomy name is required")
	}
	if len(def.Statuses) == 0 {
		return loan.Taxonomy{}, fmt.Errorf("taxonomy %q defines no statuses", def.Name)
	}

	tax := loan.Taxonomy{
		Name:    def.Name,
		Aliases: make(map[string]loan.CanonicalStatus),
		Labels:  make(map[loan.CanonicalStatus]string),
	}

	for name, aliases := range def.Statuses {
		status, ok := loan.ParseStatus(name)
		if !ok {
			return loan.Taxonomy{}, fmt.Errorf("taxonomy %q: unknown canonical status %q", def.Name, name)
		}
		if status == loan.StatusOther {
			return loan.Taxonomy{}, fmt.Errorf("taxonomy %q: %q is the default branch and takes no aliases", def.Name, name)
		}
		for _, alias := range aliases {
			key := strings.ToLower(strings.TrimSpace(alias))
			if prev, dup := tax.Aliases[key]; dup && prev != status {
				return loan.Taxonomy{}, fmt.Errorf("taxonomy %q: alias %q mapped to both %q and %q", def.Name, key, prev, status)
			}
			tax.Aliases[key] = status
		}
	}

	for name, label := range def.Labels {
		status, ok := loan.ParseStatus(name)
		if !ok {
			return loan.Taxonomy{}, fmt.Errorf("taxonomy %q: label for unknown status %q", def.Name, name)
		}
		tax.Labels[status] = label
	}

	return tax, nil
}

// LoadFile reads and parses a taxonomy definition from disk.
func LoadFile(path string) (loan.Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return loan.Taxonomy{}, fmt.Errorf("read taxonomy file: %w", err)
	}
	return ParseTaxonomy(string(data))
}

// =============================================================================
// BUILT-INS
// =============================================================================

// Builtin resolves a built-in taxonomy by name.
func Builtin(name string) (loan.Taxonomy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "standard":
		return ParseTaxonomy(loan.StandardTaxonomyJSON())
	case "pending-label":
		return ParseTaxonomy(loan.PendingLabelTaxonomyJSON())
	default:
		return loan.Taxonomy{}, fmt.Errorf("unknown built-in taxonomy %q", name)
	}
}

// MustBuiltin is Builtin for callers with a compile-time-known name.
// It panics on error, so only use with the shipped names.
func MustBuiltin(name string) loan.Taxonomy {
	tax, err := Builtin(name)
	if err != nil {
		panic(err)
	}
	return tax
}
