package dataset_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/meridian/loan-analytics/dataset"
)

// =============================================================================
// VALUE TESTS
// =============================================================================

func TestValue_NullHandling(t *testing.T) {
	v := dataset.NewValue(nil)
	if !v.IsNull() {
		t.Fatal("nil raw value should be null")
	}
	if v.String() != "" {
		t.Errorf("null should render as empty string, got %q", v.String())
	}
	if _, ok := v.Int64(); ok {
		t.Error("null should not convert to int64")
	}
	if _, ok := v.Time(); ok {
		t.Error("null should not convert to time")
	}
}

func TestValue_Int64Conversions(t *testing.T) {
	cases := []struct {
		name string
		raw  any
		want int64
		ok   bool
	}{
		{"int64", int64(7), 7, true},
		{"int", 12, 12, true},
		{"whole float", float64(4), 4, true},
		{"fractional float", 4.5, 0, false},
		{"numeric string", " 42 ", 42, true},
		{"non-numeric string", "seven", 0, false},
	}
	for _, tc := range cases {
		got, ok := dataset.NewValue(tc.raw).Int64()
		if ok != tc.ok || got != tc.want {
			t.Errorf("%s: got (%d, %v), want (%d, %v)", tc.name, got, ok, tc.want, tc.ok)
		}
	}
}

func TestValue_TimeParsesCommonLayouts(t *testing.T) {
	for _, raw := range []string{"1992-03-14", "1992/03/14", "1992-03-14T00:00:00Z"} {
		parsed, ok := dataset.NewValue(raw).Time()
		if !ok {
			t.Fatalf("expected %q to parse", raw)
		}
		if parsed.Year() != 1992 || parsed.Month() != time.March || parsed.Day() != 14 {
			t.Errorf("%q parsed to %v", raw, parsed)
		}
	}

	if _, ok := dataset.NewValue("not-a-date").Time(); ok {
		t.Error("garbage date should not parse")
	}
}

func TestValue_JSONRoundTrip(t *testing.T) {
	row := dataset.Row{
		dataset.NewValue("Approved"),
		dataset.NewValue(int64(7)),
		dataset.NullValue(),
		dataset.NewValue(time.Date(1990, time.June, 1, 0, 0, 0, 0, time.UTC)),
	}
	data, err := json.Marshal(row)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var restored dataset.Row
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if restored[0].String() != "Approved" {
		t.Errorf("string cell lost: %q", restored[0].String())
	}
	if n, ok := restored[1].Int64(); !ok || n != 7 {
		t.Errorf("int cell lost: (%d, %v)", n, ok)
	}
	if !restored[2].IsNull() {
		t.Error("null cell lost")
	}
	if ts, ok := restored[3].Time(); !ok || ts.Year() != 1990 {
		t.Errorf("time cell lost: (%v, %v)", ts, ok)
	}
}

// =============================================================================
// DATASET TESTS
// =============================================================================

func TestDataset_ColumnLookupIsCaseInsensitive(t *testing.T) {
	ds := dataset.New([]string{"ES_Approval_Status", "dob"})
	if _, ok := ds.Column("es_approval_status"); !ok {
		t.Error("expected case-insensitive column match")
	}
	if _, ok := ds.Column("missing"); ok {
		t.Error("absent column should not match")
	}
}

func TestDataset_MissingColumnsYieldNull(t *testing.T) {
	ds := dataset.New([]string{"gender"})
	ds.Append(dataset.Row{dataset.NewValue("F")})

	if v := ds.Field(0, "dob"); !v.IsNull() {
		t.Error("absent column should read as null, not crash")
	}
	if v := ds.At(5, 0); !v.IsNull() {
		t.Error("out-of-range row should read as null")
	}
}

func TestDataset_AppendPadsShortRows(t *testing.T) {
	ds := dataset.New([]string{"a", "b", "c"})
	ds.Append(dataset.Row{dataset.NewValue("x")})

	if got := ds.Field(0, "a").String(); got != "x" {
		t.Errorf("first cell: %q", got)
	}
	if !ds.Field(0, "c").IsNull() {
		t.Error("padded cell should be null")
	}
}

func TestDataset_HeadSharesRows(t *testing.T) {
	ds := dataset.New([]string{"a"})
	for i := 0; i < 5; i++ {
		ds.Append(dataset.Row{dataset.NewValue(int64(i))})
	}

	head := ds.Head(2)
	if head.NumRows() != 2 {
		t.Fatalf("head rows: %d", head.NumRows())
	}
	if ds.NumRows() != 5 {
		t.Errorf("source mutated: %d rows", ds.NumRows())
	}
	if head.Head(100).NumRows() != 2 {
		t.Error("oversized head should clamp")
	}
}
