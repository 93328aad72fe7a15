package loan_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian/loan-analytics/dataset"
	"github.com/meridian/loan-analytics/loan"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// applicationDataset builds a dataset with the six stage columns from
// per-row status slices in stage order (ES, DA, OSD, MNGR, GM, MD).
func applicationDataset(rows ...[]any) *dataset.Dataset {
	columns := make([]string, 0, 6)
	for _, s := range loan.Stages() {
		columns = append(columns, s.Column())
	}
	ds := dataset.New(columns)
	for _, r := range rows {
		row := make(dataset.Row, len(r))
		for i, cell := range r {
			row[i] = dataset.NewValue(cell)
		}
		ds.Append(row)
	}
	return ds
}

func viewCounts(v loan.ViewResult) map[string]int {
	counts := make(map[string]int, len(v.Rows))
	for _, row := range v.Rows {
		counts[row.Category] = row.Count
	}
	return counts
}

// =============================================================================
// SINGLE-STAGE TESTS
// =============================================================================

func TestStatusBreakdown_SingleStage_Scenario(t *testing.T) {
	// GIVEN: Four applications with messy ES statuses
	// WHEN: Aggregating the ES stage only
	// THEN: Approved 2, Rejected 1, Unknown/Missing 1, in canonical order

	ds := applicationDataset(
		[]any{"Approved", nil, nil, nil, nil, nil},
		[]any{"approved ", nil, nil, nil, nil, nil},
		[]any{"REJECTED", nil, nil, nil, nil, nil},
		[]any{"", nil, nil, nil, nil, nil},
	)

	view := loan.StatusBreakdown(ds, loan.StatusBreakdownInput{
		Taxonomy: standardTaxonomy(t),
		Stage:    "ES",
	})

	require.Empty(t, view.Reason)
	require.Len(t, view.Rows, 3)
	assert.Equal(t, "Approved", view.Rows[0].Category)
	assert.Equal(t, 2, view.Rows[0].Count)
	assert.Equal(t, "Rejected", view.Rows[1].Category)
	assert.Equal(t, 1, view.Rows[1].Count)
	assert.Equal(t, "Unknown/Missing", view.Rows[2].Category)
	assert.Equal(t, 1, view.Rows[2].Count)
	assert.Equal(t, 4, view.Total)
}

func TestStatusBreakdown_SingleStage_OneObservationPerRow(t *testing.T) {
	ds := applicationDataset(
		[]any{"approved", "rejected", "pending", "weird", nil, "approved"},
		[]any{"rejected", "approved", "approved", "approved", "approved", "approved"},
	)

	view := loan.StatusBreakdown(ds, loan.StatusBreakdownInput{
		Taxonomy: standardTaxonomy(t),
		Stage:    "ES",
	})

	assert.Equal(t, ds.NumRows(), view.Total, "single stage tallies one observation per row")
}

func TestStatusBreakdown_StageNameIsCaseInsensitive(t *testing.T) {
	ds := applicationDataset([]any{"approved", nil, nil, nil, nil, nil})

	view := loan.StatusBreakdown(ds, loan.StatusBreakdownInput{
		Taxonomy: standardTaxonomy(t),
		Stage:    "es",
	})

	assert.Equal(t, 1, view.Total)
}

// =============================================================================
// POOLED (AGGREGATED) TESTS
// =============================================================================

func TestStatusBreakdown_Aggregated_OneObservationPerRowPerStage(t *testing.T) {
	// GIVEN: 3 rows, all 6 stage columns present
	// WHEN: Aggregating across stages
	// THEN: Total observations = rows * stages

	ds := applicationDataset(
		[]any{"approved", "approved", "pending", "review", nil, "odd"},
		[]any{"rejected", "denied", "", "none", "null", "approved"},
		[]any{"complete", "accepted", "approved", "approved", "approved", "approved"},
	)

	view := loan.StatusBreakdown(ds, loan.StatusBreakdownInput{
		Taxonomy: standardTaxonomy(t),
		Stage:    loan.StageAggregated,
	})

	assert.Equal(t, 3*len(loan.Stages()), view.Total)
}

func TestStatusBreakdown_Aggregated_SkipsAbsentStageColumns(t *testing.T) {
	// Dataset carries only two of the six stage columns.
	ds := dataset.New([]string{"es_approval_status", "md_approval_status", "gender"})
	ds.Append(dataset.Row{dataset.NewValue("approved"), dataset.NewValue("rejected"), dataset.NewValue("F")})
	ds.Append(dataset.Row{dataset.NewValue("approved"), dataset.NewValue("approved"), dataset.NewValue("M")})

	view := loan.StatusBreakdown(ds, loan.StatusBreakdownInput{
		Taxonomy: standardTaxonomy(t),
		Stage:    loan.StageAggregated,
	})

	assert.Equal(t, 4, view.Total, "two rows times two present stage columns")
}

// =============================================================================
// FILTER TESTS
// =============================================================================

func TestStatusBreakdown_FilterRestrictsCategories(t *testing.T) {
	ds := applicationDataset(
		[]any{"approved", "rejected", "pending", "approved", "odd", ""},
	)

	unfiltered := loan.StatusBreakdown(ds, loan.StatusBreakdownInput{
		Taxonomy: standardTaxonomy(t),
		Stage:    loan.StageAggregated,
	})
	filtered := loan.StatusBreakdown(ds, loan.StatusBreakdownInput{
		Taxonomy: standardTaxonomy(t),
		Stage:    loan.StageAggregated,
		Filter:   []loan.CanonicalStatus{loan.StatusApproved, loan.StatusRejected},
	})

	// The filter never introduces categories outside itself.
	for _, row := range filtered.Rows {
		assert.Contains(t, []string{"Approved", "Rejected"}, row.Category)
	}

	// Filtered totals never exceed unfiltered.
	assert.LessOrEqual(t, filtered.Total, unfiltered.Total)
	assert.Equal(t, 3, filtered.Total)
}

func TestStatusBreakdown_FilterWithNoMatches(t *testing.T) {
	ds := applicationDataset([]any{"approved", "approved", "approved", "approved", "approved", "approved"})

	view := loan.StatusBreakdown(ds, loan.StatusBreakdownInput{
		Taxonomy: standardTaxonomy(t),
		Stage:    loan.StageAggregated,
		Filter:   []loan.CanonicalStatus{loan.StatusRejected},
	})

	assert.True(t, view.IsEmpty())
	assert.Equal(t, loan.ReasonNoData, view.Reason)
}

// =============================================================================
// DEGRADATION TESTS
// =============================================================================

func TestStatusBreakdown_EmptyInput(t *testing.T) {
	view := loan.StatusBreakdown(applicationDataset(), loan.StatusBreakdownInput{
		Taxonomy: standardTaxonomy(t),
		Stage:    loan.StageAggregated,
	})

	assert.True(t, view.IsEmpty())
	assert.Equal(t, loan.ReasonNoData, view.Reason)
}

func TestStatusBreakdown_NoStatusColumns(t *testing.T) {
	ds := dataset.New([]string{"gender", "dob"})
	ds.Append(dataset.Row{dataset.NewValue("F"), dataset.NewValue("1990-01-01")})

	view := loan.StatusBreakdown(ds, loan.StatusBreakdownInput{
		Taxonomy: standardTaxonomy(t),
		Stage:    loan.StageAggregated,
	})

	assert.True(t, view.IsEmpty())
	assert.Equal(t, loan.ReasonNoStatusColumns, view.Reason)
}

func TestStatusBreakdown_SelectedStageColumnAbsent(t *testing.T) {
	ds := dataset.New([]string{"es_approval_status"})
	ds.Append(dataset.Row{dataset.NewValue("approved")})

	view := loan.StatusBreakdown(ds, loan.StatusBreakdownInput{
		Taxonomy: standardTaxonomy(t),
		Stage:    "GM",
	})

	assert.True(t, view.IsEmpty())
	assert.Equal(t, loan.ReasonNoStatusColumns, view.Reason)
}

// =============================================================================
// SHARE TESTS
// =============================================================================

func TestStatusBreakdown_SharesSumToOne(t *testing.T) {
	ds := applicationDataset(
		[]any{"approved", "approved", "rejected", "rejected", "pending", "pending"},
	)

	view := loan.StatusBreakdown(ds, loan.StatusBreakdownInput{
		Taxonomy: standardTaxonomy(t),
		Stage:    loan.StageAggregated,
	})

	counts := viewCounts(view)
	assert.Equal(t, 2, counts["Approved"])
	assert.Equal(t, 2, counts["Rejected"])
	assert.Equal(t, 2, counts["In Progress"])
	for _, row := range view.Rows {
		assert.Equal(t, "0.3333", row.Share.String())
	}
}
