/*
lookup.go - Reference joins and categorical tallies

PURPOSE:
  Resolves foreign-key id columns (religion, district) against reference
  tables into display names and tallies counts per name. Unresolved and
  null ids land on the table's placeholder ("Unknown Religion") so every
  row is counted exactly once.

ORDERING:
  Count descending, name ascending as the deterministic tiebreak.

SEE ALSO:
  - ../dataset/reference.go: ReferenceTable resolution
  - types.go: ViewResult
*/
package loan

import (
	"fmt"
	"sort"

	"github.com/meridian/loan-analytics/dataset"
)

// =============================================================================
// LOOKUP JOINER
// =============================================================================

// NameBreakdown resolves each row's id cell through the reference table
// and tallies counts per resolved name. The sum of counts always equals
// the row count; an empty reference table still tallies (everything on
// the placeholder) but flags the view with a reason so the UI can note
// the missing reference data.
func NameBreakdown(ds *dataset.Dataset, ref dataset.ReferenceTable, idColumn string) ViewResult {
	title := fmt.Sprintf("Applications by %s", ref.Entity)

	if ds.NumRows() == 0 {
		return ViewResult{Title: title, Reason: ReasonNoData}
	}
	col, ok := ds.Column(idColumn)
	if !ok {
		return ViewResult{Title: title, Reason: ReasonNoReferenceData}
	}

	tally := make(map[string]int)
	for row := 0; row < ds.NumRows(); row++ {
		tally[ref.Resolve(ds.At(row, col))]++
	}

	result := ViewResult{Title: title, Total: ds.NumRows()}
	if ref.IsEmpty() {
		result.Reason = ReasonNoReferenceData
	}
	result.Rows = sortedCounts(tally, ds.NumRows())
	return result
}

// =============================================================================
// GENDER BREAKDOWN - Direct categorical tally
// =============================================================================

// GenderBreakdown tallies rows by their raw gender value. Null and empty
// cells land on "Unknown". No reference table is involved; the column is
// already categorical.
func GenderBreakdown(ds *dataset.Dataset) ViewResult {
	title := "Applicants by Gender"

	if ds.NumRows() == 0 {
		return ViewResult{Title: title, Reason: ReasonNoData}
	}
	col, ok := ds.Column(ColumnGender)
	if !ok {
		return ViewResult{Title: title, Reason: ReasonNoReferenceData}
	}

	tally := make(map[string]int)
	for row := 0; row < ds.NumRows(); row++ {
		value := ds.At(row, col).String()
		if value == "" {
			value = "Unknown"
		}
		tally[value]++
	}

	result := ViewResult{Title: title, Total: ds.NumRows()}
	result.Rows = sortedCounts(tally, ds.NumRows())
	return result
}

// sortedCounts flattens a tally into rows ordered by count descending,
// then name ascending.
func sortedCounts(tally map[string]int, total int) []CategoryCount {
	rows := make([]CategoryCount, 0, len(tally))
	for name, count := range tally {
		rows = append(rows, CategoryCount{
			Category: name,
			Count:    count,
			Share:    shareOf(count, total),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Category < rows[j].Category
	})
	return rows
}
