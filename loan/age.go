/*
age.go - Age derivation and 10-year bucketing

PURPOSE:
  Turns date-of-birth cells into integer ages as of a caller-supplied
  reference date, then classifies them into fixed 10-year buckets for
  histogram views.

SENTINEL:
  Unparsable or null dates become age -1, which buckets as Unknown. The
  sentinel keeps bucketing total over every input without threading a
  nullable age through the tally.

SEE ALSO:
  - types.go: ViewResult
  - ../dataset/dataset.go: Value.Time parsing
*/
package loan

import (
	"fmt"
	"time"

	"github.com/meridian/loan-analytics/dataset"
)

// =============================================================================
// AGE GROUPS - Fixed bucket vocabulary
// =============================================================================

// AgeGroup is one fixed 10-year age range, plus the Unknown and 100+
// edge buckets.
type AgeGroup string

// AgeGroupUnknown holds rows whose date of birth is null or unparsable.
const AgeGroupUnknown AgeGroup = "Unknown"

// AgeGroupCentenarian holds ages of 100 and above.
const AgeGroupCentenarian AgeGroup = "100+"

// AgeGroups returns the fixed display order: Unknown first, 10-year
// buckets ascending, 100+ last.
func AgeGroups() []AgeGroup {
	groups := []AgeGroup{AgeGroupUnknown}
	for k := 0; k < 10; k++ {
		groups = append(groups, AgeGroup(fmt.Sprintf("%d-%d", k*10, k*10+9)))
	}
	return append(groups, AgeGroupCentenarian)
}

// =============================================================================
// AGE DERIVATION
// =============================================================================

// AgeSentinel marks an unknown age.
const AgeSentinel = -1

// AgeOn computes the integer age at asOf for a date-of-birth cell.
// Null or unparsable cells yield AgeSentinel.
func AgeOn(dob dataset.Value, asOf time.Time) int {
	birth, ok := dob.Time()
	if !ok {
		return AgeSentinel
	}
	age := asOf.Year() - birth.Year()
	// Birthday not yet reached this year.
	if asOf.Month() < birth.Month() ||
		(asOf.Month() == birth.Month() && asOf.Day() < birth.Day()) {
		age--
	}
	if age < 0 {
		return AgeSentinel
	}
	return age
}

// BucketAge classifies an integer age into its group. Total over all
// inputs: negatives are Unknown, 100 and above are 100+.
func BucketAge(age int) AgeGroup {
	switch {
	case age < 0:
		return AgeGroupUnknown
	case age >= 100:
		return AgeGroupCentenarian
	default:
		k := age / 10
		return AgeGroup(fmt.Sprintf("%d-%d", k*10, k*10+9))
	}
}

// =============================================================================
// AGE BREAKDOWN VIEW
// =============================================================================

// AgeBreakdown tallies rows into age groups as of the given date.
// Output follows the fixed group order; empty groups are omitted.
func AgeBreakdown(ds *dataset.Dataset, asOf time.Time) ViewResult {
	title := "Applicants by Age Group"

	if ds.NumRows() == 0 {
		return ViewResult{Title: title, Reason: ReasonNoData}
	}
	dobCol, ok := ds.Column(ColumnDOB)
	if !ok {
		return ViewResult{Title: title, Reason: ReasonNoDOBColumn}
	}

	tally := make(map[AgeGroup]int)
	for row := 0; row < ds.NumRows(); row++ {
		group := BucketAge(AgeOn(ds.At(row, dobCol), asOf))
		tally[group]++
	}

	total := ds.NumRows()
	result := ViewResult{Title: title, Total: total}
	for _, group := range AgeGroups() {
		count := tally[group]
		if count == 0 {
			continue
		}
		result.Rows = append(result.Rows, CategoryCount{
			Category: string(group),
			Count:    count,
			Share:    shareOf(count, total),
		})
	}
	return result
}
