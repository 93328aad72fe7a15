package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian/loan-analytics/dataset"
	"github.com/meridian/loan-analytics/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func applicationSnapshot() *dataset.Dataset {
	ds := dataset.New([]string{"es_approval_status", "dob", "religion_id"})
	ds.Append(dataset.Row{dataset.NewValue("Approved"), dataset.NewValue("1990-05-01"), dataset.NewValue(int64(1))})
	ds.Append(dataset.Row{dataset.NewValue("rejected"), dataset.NullValue(), dataset.NullValue()})
	return ds
}

// =============================================================================
// SNAPSHOT TESTS
// =============================================================================

func TestSnapshot_RoundTrip(t *testing.T) {
	// GIVEN: A cached dataset with strings, ints, and nulls
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.SaveSnapshot(ctx, "loan_applications", applicationSnapshot())
	require.NoError(t, err)
	require.NotEmpty(t, id)

	// WHEN: Loading it back within the freshness window
	ds, info, err := store.LatestSnapshot(ctx, "loan_applications", time.Hour)
	require.NoError(t, err)

	// THEN: Shape and cells survive, nulls included
	assert.Equal(t, id, info.ID)
	assert.Equal(t, 2, info.RowCount)
	assert.Equal(t, []string{"es_approval_status", "dob", "religion_id"}, ds.Columns())
	assert.Equal(t, "Approved", ds.Field(0, "es_approval_status").String())
	rid, ok := ds.Field(0, "religion_id").Int64()
	assert.True(t, ok)
	assert.Equal(t, int64(1), rid)
	assert.True(t, ds.Field(1, "dob").IsNull())
}

func TestSnapshot_MissAndStale(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Nothing cached yet.
	_, _, err := store.LatestSnapshot(ctx, "loan_applications", time.Hour)
	assert.ErrorIs(t, err, dataset.ErrNoSnapshot)
	assert.True(t, dataset.IsCacheMiss(err))

	// A 1ns freshness window rejects anything actually stored.
	_, err = store.SaveSnapshot(ctx, "loan_applications", applicationSnapshot())
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	_, _, err = store.LatestSnapshot(ctx, "loan_applications", time.Nanosecond)
	assert.ErrorIs(t, err, dataset.ErrSnapshotStale)
	assert.True(t, dataset.IsCacheMiss(err))

	// maxAge <= 0 accepts any age.
	_, _, err = store.LatestSnapshot(ctx, "loan_applications", 0)
	assert.NoError(t, err)
}

func TestSnapshot_RejectsColumnlessDataset(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Zero rows with a real schema is cacheable.
	_, err := store.SaveSnapshot(ctx, "loan_applications", dataset.New([]string{"es_approval_status"}))
	require.NoError(t, err)

	// Zero columns could never serve a view.
	_, err = store.SaveSnapshot(ctx, "loan_applications", dataset.New(nil))
	assert.ErrorIs(t, err, dataset.ErrEmptyDataset)

	// The rejected save leaves the previous snapshot in place.
	_, _, err = store.LatestSnapshot(ctx, "loan_applications", time.Hour)
	assert.NoError(t, err)
}

func TestSnapshot_ReplacePerTable(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.SaveSnapshot(ctx, "loan_applications", applicationSnapshot())
	require.NoError(t, err)

	bigger := applicationSnapshot()
	bigger.Append(dataset.Row{dataset.NewValue("pending"), dataset.NewValue("2000-01-01"), dataset.NewValue(int64(2))})
	second, err := store.SaveSnapshot(ctx, "loan_applications", bigger)
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	ds, info, err := store.LatestSnapshot(ctx, "loan_applications", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, second, info.ID)
	assert.Equal(t, 3, ds.NumRows())
}

func TestSnapshot_Drop(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.SaveSnapshot(ctx, "loan_applications", applicationSnapshot())
	require.NoError(t, err)

	require.NoError(t, store.DropSnapshots(ctx, "loan_applications"))

	_, _, err = store.LatestSnapshot(ctx, "loan_applications", time.Hour)
	assert.ErrorIs(t, err, dataset.ErrNoSnapshot)
}

// =============================================================================
// REFERENCE TABLE TESTS
// =============================================================================

func TestReference_SaveAndLoad(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveReference(ctx, "Religion", map[int64]string{
		1: "Islam", 2: "Hinduism",
	}))

	ref, err := store.Reference(ctx, "Religion")
	require.NoError(t, err)
	assert.Equal(t, "Islam", ref.Resolve(dataset.NewValue(int64(1))))
	assert.Equal(t, "Unknown Religion", ref.Resolve(dataset.NewValue(int64(999))))
	assert.Equal(t, "Unknown Religion", ref.Resolve(dataset.NullValue()))
}

func TestReference_MissingEntityIsEmptyNotError(t *testing.T) {
	store := newTestStore(t)

	ref, err := store.Reference(context.Background(), "District")
	require.NoError(t, err)
	assert.True(t, ref.IsEmpty())
	assert.Equal(t, "Unknown District", ref.Resolve(dataset.NewValue(int64(1))))
}

func TestSeedReferenceDefaults(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SeedReferenceDefaults(ctx))

	religion, err := store.Reference(ctx, "Religion")
	require.NoError(t, err)
	assert.False(t, religion.IsEmpty())

	district, err := store.Reference(ctx, "District")
	require.NoError(t, err)
	assert.Equal(t, "Dhaka", district.Resolve(dataset.NewValue(int64(1))))

	// Existing entries win over re-seeding.
	require.NoError(t, store.SaveReference(ctx, "Religion", map[int64]string{9: "Custom"}))
	require.NoError(t, store.SeedReferenceDefaults(ctx))
	religion, err = store.Reference(ctx, "Religion")
	require.NoError(t, err)
	assert.Equal(t, "Custom", religion.Resolve(dataset.NewValue(int64(9))))
	assert.Equal(t, "Unknown Religion", religion.Resolve(dataset.NewValue(int64(1))))
}
