/*
aggregate.go - Stage aggregation over application rows

PURPOSE:
  Tallies normalized statuses either across every stage column (pooled)
  or for one selected stage, with optional category filtering. This is
  the workhorse view of the dashboard.

OBSERVATION MODEL:
  Pooled mode:       one observation per (row, present stage column);
                     a row with all six columns contributes six
  Single-stage mode: one observation per row

DEGRADATION:
  Empty input               -> empty result, reason "No Data"
  No stage columns present  -> empty result, reason "No relevant status columns"
  Selected column absent    -> empty result, reason "No relevant status columns"
  Neither case is an error; other views keep working.

SEE ALSO:
  - status.go: Normalization
  - types.go: ViewResult and ordering
*/
package loan

import (
	"fmt"

	"github.com/meridian/loan-analytics/dataset"
)

// =============================================================================
// STAGE AGGREGATOR
// =============================================================================

// StatusBreakdownInput selects what the aggregator tallies.
type StatusBreakdownInput struct {
	// Taxonomy performs the normalization.
	Taxonomy Taxonomy

	// Stage is StageAggregated or one stage name.
	Stage string

	// Filter, when non-empty, restricts observations and output categories
	// to the listed statuses.
	Filter []CanonicalStatus
}

// StatusBreakdown tallies canonical statuses for the selected stage view.
// The result rows follow the fixed canonical order (restricted to the
// filter when one is active) and omit zero-count categories.
func StatusBreakdown(ds *dataset.Dataset, in StatusBreakdownInput) ViewResult {
	title := statusTitle(in.Stage)

	if ds.NumRows() == 0 {
		return ViewResult{Title: title, Reason: ReasonNoData}
	}

	cols, ok := stageColumns(ds, in.Stage)
	if !ok {
		return ViewResult{Title: title, Reason: ReasonNoStatusColumns}
	}

	include := filterSet(in.Filter)

	tally := make(map[CanonicalStatus]int, len(CanonicalOrder()))
	for row := 0; row < ds.NumRows(); row++ {
		for _, col := range cols {
			status := in.Taxonomy.Normalize(ds.At(row, col))
			if include != nil && !include[status] {
				continue
			}
			tally[status]++
		}
	}

	order := CanonicalOrder()
	if include != nil {
		restricted := order[:0:0]
		for _, s := range order {
			if include[s] {
				restricted = append(restricted, s)
			}
		}
		order = restricted
	}

	total := 0
	for _, s := range order {
		total += tally[s]
	}

	result := ViewResult{Title: title, Total: total}
	for _, s := range order {
		count := tally[s]
		if count == 0 {
			continue
		}
		result.Rows = append(result.Rows, CategoryCount{
			Category: in.Taxonomy.Label(s),
			Count:    count,
			Share:    shareOf(count, total),
		})
	}
	if result.IsEmpty() && result.Reason == "" {
		result.Reason = ReasonNoData
	}
	return result
}

// stageColumns resolves the selected stage mode to column positions.
// Pooled mode keeps every stage column the dataset actually has.
func stageColumns(ds *dataset.Dataset, stage string) ([]int, bool) {
	if stage == "" || stage == StageAggregated {
		var cols []int
		for _, s := range Stages() {
			if idx, ok := ds.Column(s.Column()); ok {
				cols = append(cols, idx)
			}
		}
		return cols, len(cols) > 0
	}

	s, ok := ParseStage(stage)
	if !ok {
		return nil, false
	}
	idx, ok := ds.Column(s.Column())
	if !ok {
		return nil, false
	}
	return []int{idx}, true
}

func statusTitle(stage string) string {
	if stage == "" || stage == StageAggregated {
		return "Status Distribution: All Stages"
	}
	if s, ok := ParseStage(stage); ok {
		return fmt.Sprintf("Status Distribution: %s", s)
	}
	return fmt.Sprintf("Status Distribution: %s", stage)
}

func filterSet(filter []CanonicalStatus) map[CanonicalStatus]bool {
	if len(filter) == 0 {
		return nil
	}
	set := make(map[CanonicalStatus]bool, len(filter))
	for _, s := range filter {
		set[s] = true
	}
	return set
}
