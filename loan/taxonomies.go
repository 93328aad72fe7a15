/*
taxonomies.go - Pre-built status taxonomy definitions

PURPOSE:
  Ships the two taxonomy variants seen in production deployments as JSON
  documents. The factory package parses these into Taxonomy values; custom
  deployments supply their own JSON instead of forking the alias table.

AVAILABLE TAXONOMIES:
  StandardTaxonomyJSON:     pending/review cluster labeled "In Progress"
  PendingLabelTaxonomyJSON: same alias table, cluster labeled "Pending"

WHY TWO?
  Upstream systems disagree on what to call applications that are neither
  approved nor rejected. Both labelings are in active use, so the choice
  is a deployment parameter rather than a contract.

SEE ALSO:
  - ../factory/taxonomy.go: ParseTaxonomy, Builtin
  - status.go: Taxonomy type and normalization
*/
package loan

// =============================================================================
// BUILT-IN TAXONOMY DEFINITIONS
// =============================================================================

// StandardTaxonomyJSON returns the default taxonomy definition.
func StandardTaxonomyJSON() string {
	return `{
		"name": "standard",
		"statuses": {
			"Approved":        ["approved", "accepted", "complete"],
			"Rejected":        ["rejected", "denied"],
			"In Progress":     ["in progress", "pending", "review", "awaiting review"],
			"Unknown/Missing": ["null", "none", ""]
		}
	}`
}

// PendingLabelTaxonomyJSON returns the variant that displays the
// pending/review cluster as "Pending".
func PendingLabelTaxonomyJSON() string {
	return `{
		"name": "pending-label",
		"labels": {"In Progress": "Pending"},
		"statuses": {
			"Approved":        ["approved", "accepted", "complete"],
			"Rejected":        ["rejected", "denied"],
			"In Progress":     ["in progress", "pending", "review", "awaiting review"],
			"Unknown/Missing": ["null", "none", ""]
		}
	}`
}
