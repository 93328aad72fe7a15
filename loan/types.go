/*
Package loan contains the loan-application analytics domain.

PURPOSE:
  The four read-only transforms that turn a raw application row-set into
  chart-ready aggregate views:
  - Status Normalizer: raw free-text status -> canonical status (status.go)
  - Stage Aggregator:  per-stage tallies, pooled or single-stage (aggregate.go)
  - Age Bucketizer:    date of birth -> fixed 10-year age buckets (age.go)
  - Lookup Joiner:     foreign keys -> reference names with counts (lookup.go)

KEY CONCEPTS IN THIS FILE (types.go):
  - Stage: one approval checkpoint (ES, DA, OSD, MNGR, GM, MD)
  - CanonicalStatus: one of the closed set of normalized outcomes
  - ViewResult: the ordered (category, count, share) table every view emits

DESIGN PRINCIPLES:
  1. Purity: every transform is a function over a caller-owned Dataset;
     no globals, no I/O, no mutation of the input
  2. Closed sets: the canonical status set and age buckets never grow
     implicitly; "Other" and "Unknown" are explicit cases
  3. Explicit ordering: display order is an ordered slice, not a property
     of any container

USAGE:
  tax := factory.MustBuiltin("standard")
  view := loan.StatusBreakdown(ds, loan.StatusBreakdownInput{
      Taxonomy: tax,
      Stage:    loan.StageAggregated,
  })

SEE ALSO:
  - status.go: Taxonomy and normalization
  - aggregate.go: Stage aggregation
  - age.go: Age bucketing
  - lookup.go: Reference joins
*/
package loan

import (
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// STAGES - Approval checkpoints in workflow order
// =============================================================================

// Stage is one approval checkpoint in the workflow.
type Stage string

const (
	StageES   Stage = "ES"
	StageDA   Stage = "DA"
	StageOSD  Stage = "OSD"
	StageMNGR Stage = "MNGR"
	StageGM   Stage = "GM"
	StageMD   Stage = "MD"
)

// StageAggregated selects the pooled view across every stage column.
const StageAggregated = "Aggregated"

// Stages returns the configured approval stages in workflow order.
func Stages() []Stage {
	return []Stage{StageES, StageDA, StageOSD, StageMNGR, StageGM, StageMD}
}

// Column returns the dataset column carrying this stage's status,
// e.g. "es_approval_status".
func (s Stage) Column() string {
	return strings.ToLower(string(s)) + "_approval_status"
}

// ParseStage resolves a view parameter to a stage, case-insensitive.
func ParseStage(s string) (Stage, bool) {
	for _, stage := range Stages() {
		if strings.EqualFold(strings.TrimSpace(s), string(stage)) {
			return stage, true
		}
	}
	return "", false
}

// Well-known non-stage columns of the application row-set.
const (
	ColumnGender     = "gender"
	ColumnDOB        = "dob"
	ColumnReligionID = "religion_id"
	ColumnDistrictID = "present_district_id"
)

// =============================================================================
// CANONICAL STATUS - Closed set of normalized outcomes
// =============================================================================

// CanonicalStatus is one of the fixed normalized approval outcomes. The
// set is closed: normalization maps every input to exactly one member,
// with StatusOther as the explicit catch-all.
type CanonicalStatus string

const (
	StatusApproved   CanonicalStatus = "Approved"
	StatusRejected   CanonicalStatus = "Rejected"
	StatusInProgress CanonicalStatus = "In Progress"
	StatusUnknown    CanonicalStatus = "Unknown/Missing"
	StatusOther      CanonicalStatus = "Other"
)

// CanonicalOrder returns the fixed display order for status views.
func CanonicalOrder() []CanonicalStatus {
	return []CanonicalStatus{
		StatusApproved,
		StatusRejected,
		StatusInProgress,
		StatusUnknown,
		StatusOther,
	}
}

// ParseStatus resolves a view-parameter string to a canonical status,
// matching either the canonical name or the active taxonomy-independent
// form, case-insensitive.
func ParseStatus(s string) (CanonicalStatus, bool) {
	needle := strings.TrimSpace(s)
	for _, cs := range CanonicalOrder() {
		if strings.EqualFold(needle, string(cs)) {
			return cs, true
		}
	}
	return "", false
}

// =============================================================================
// VIEW RESULT - Ordered (category, count, share) output table
// =============================================================================

// CategoryCount is one row of a view: a display category, its tally, and
// its share of the view total. Shares use decimals so that chart labels
// do not accumulate float drift.
type CategoryCount struct {
	Category string
	Count    int
	Share    decimal.Decimal
}

// ViewResult is the output of every view transform. Rows are ordered for
// display. Reason is non-empty when the view degraded (empty input,
// missing column, empty reference table); a degraded view is still a
// valid, renderable result, never an error.
type ViewResult struct {
	Title  string
	Rows   []CategoryCount
	Total  int
	Reason string
}

// IsEmpty reports whether the view produced no rows.
func (v ViewResult) IsEmpty() bool {
	return len(v.Rows) == 0
}

// shareOf computes count/total rounded to four places. A zero total
// yields a zero share.
func shareOf(count, total int) decimal.Decimal {
	if total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(count)).
		Div(decimal.NewFromInt(int64(total))).
		Round(4)
}

// Degraded reason strings shared by the view transforms.
const (
	ReasonNoData          = "No Data"
	ReasonNoStatusColumns = "No relevant status columns"
	ReasonNoReferenceData = "No reference data"
	ReasonNoDOBColumn     = "No date of birth column"
)
