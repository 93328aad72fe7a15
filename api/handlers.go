/*
handlers.go - HTTP API handlers for the analytics views

PURPOSE:
  Exposes the analytics pipeline via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to the loan
  package's pure transforms.

ENDPOINTS:
  Views:
    GET  /api/views/status       Status counts (stage + statuses params)
    GET  /api/views/age-groups   Age histogram
    GET  /api/views/religion     Religion breakdown
    GET  /api/views/district     District breakdown
    GET  /api/views/gender       Gender breakdown

  Dataset:
    GET  /api/preview            Raw rows preview
    POST /api/refresh            Drop the cached snapshot, re-sync references

  Vocabulary:
    GET  /api/stages             Legal stage parameter values
    GET  /api/statuses           Legal status parameter values

  GET /api/health                Liveness

REQUEST FLOW:
  1. Parse view parameters
  2. Load the dataset: fresh cache snapshot, else fetch from the
     warehouse and re-cache (the views never talk to the warehouse
     directly)
  3. Run the pure transform
  4. Serialize the ViewResult

ERROR HANDLING:
  Degraded views (empty input, missing columns, empty reference tables)
  are 200s with a reason field - each view degrades independently.
  Errors are reserved for the infrastructure boundary:
  - 400: Unknown stage or status parameter
  - 502: Warehouse fetch failed and no cached snapshot can serve
  - 500: Storage failures

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/meridian/loan-analytics/dataset"
	"github.com/meridian/loan-analytics/loan"
	"github.com/meridian/loan-analytics/source"
	"github.com/meridian/loan-analytics/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Source   source.Source
	Store    *sqlite.Store
	Taxonomy loan.Taxonomy

	table      string
	cacheTTL   time.Duration
	fetchLimit int

	// now is swappable for deterministic age tests.
	now func() time.Time
}

// NewHandler creates a handler serving views over the given application
// table, using store as the snapshot cache and src as the warehouse.
// src may be nil; then only cached snapshots can serve.
func NewHandler(src source.Source, store *sqlite.Store, tax loan.Taxonomy, table string, cacheTTL time.Duration, fetchLimit int) *Handler {
	return &Handler{
		Source:     src,
		Store:      store,
		Taxonomy:   tax,
		table:      table,
		cacheTTL:   cacheTTL,
		fetchLimit: fetchLimit,
		now:        time.Now,
	}
}

// currentDataset serves the view's row-set: fresh cache snapshot first,
// warehouse fetch + re-cache on a miss. With no warehouse configured a
// stale snapshot is better than nothing.
func (h *Handler) currentDataset(ctx context.Context) (*dataset.Dataset, sqlite.SnapshotInfo, error) {
	ds, info, err := h.Store.LatestSnapshot(ctx, h.table, h.cacheTTL)
	if err == nil {
		return ds, info, nil
	}
	if !dataset.IsCacheMiss(err) {
		return nil, sqlite.SnapshotInfo{}, err
	}

	if h.Source == nil {
		ds, info, fallbackErr := h.Store.LatestSnapshot(ctx, h.table, 0)
		if fallbackErr == nil {
			return ds, info, nil
		}
		return nil, sqlite.SnapshotInfo{}, err
	}

	ds, err = h.Source.FetchDataset(ctx, h.table, h.fetchLimit)
	if err != nil {
		return nil, sqlite.SnapshotInfo{}, err
	}
	id, err := h.Store.SaveSnapshot(ctx, h.table, ds)
	if err != nil {
		return nil, sqlite.SnapshotInfo{}, err
	}
	return ds, sqlite.SnapshotInfo{
		ID:        id,
		Table:     h.table,
		FetchedAt: h.now(),
		RowCount:  ds.NumRows(),
	}, nil
}

// =============================================================================
// VIEW HANDLERS
// =============================================================================

// StatusView returns status counts for one stage or the pooled view.
// GET /api/views/status?stage=Aggregated&statuses=Approved,Rejected
func (h *Handler) StatusView(w http.ResponseWriter, r *http.Request) {
	stage := strings.TrimSpace(r.URL.Query().Get("stage"))
	if stage == "" || strings.EqualFold(stage, loan.StageAggregated) {
		stage = loan.StageAggregated
	} else if _, ok := loan.ParseStage(stage); !ok {
		writeError(w, http.StatusBadRequest, "Unknown stage", nil)
		return
	}

	var filter []loan.CanonicalStatus
	if raw := r.URL.Query().Get("statuses"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			status, ok := h.Taxonomy.ParseStatus(part)
			if !ok {
				writeError(w, http.StatusBadRequest, "Unknown status: "+part, nil)
				return
			}
			filter = append(filter, status)
		}
	}

	ds, _, err := h.currentDataset(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "Failed to load dataset", err)
		return
	}

	view := loan.StatusBreakdown(ds, loan.StatusBreakdownInput{
		Taxonomy: h.Taxonomy,
		Stage:    stage,
		Filter:   filter,
	})
	writeJSON(w, http.StatusOK, toViewDTO(view))
}

// AgeGroupsView returns the age-group histogram.
// GET /api/views/age-groups
func (h *Handler) AgeGroupsView(w http.ResponseWriter, r *http.Request) {
	ds, _, err := h.currentDataset(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "Failed to load dataset", err)
		return
	}
	writeJSON(w, http.StatusOK, toViewDTO(loan.AgeBreakdown(ds, h.now())))
}

// ReligionView returns application counts per religion.
// GET /api/views/religion
func (h *Handler) ReligionView(w http.ResponseWriter, r *http.Request) {
	h.lookupView(w, r, "Religion", loan.ColumnReligionID)
}

// DistrictView returns application counts per present district.
// GET /api/views/district
func (h *Handler) DistrictView(w http.ResponseWriter, r *http.Request) {
	h.lookupView(w, r, "District", loan.ColumnDistrictID)
}

func (h *Handler) lookupView(w http.ResponseWriter, r *http.Request, entity, idColumn string) {
	ds, _, err := h.currentDataset(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "Failed to load dataset", err)
		return
	}

	ref, err := h.Store.Reference(r.Context(), entity)
	if err != nil {
		// Degrade to placeholder names; the join itself never fails.
		ref = dataset.NewReferenceTable(entity, nil)
	}

	writeJSON(w, http.StatusOK, toViewDTO(loan.NameBreakdown(ds, ref, idColumn)))
}

// GenderView returns applicant counts per gender.
// GET /api/views/gender
func (h *Handler) GenderView(w http.ResponseWriter, r *http.Request) {
	ds, _, err := h.currentDataset(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "Failed to load dataset", err)
		return
	}
	writeJSON(w, http.StatusOK, toViewDTO(loan.GenderBreakdown(ds)))
}

// =============================================================================
// DATASET HANDLERS
// =============================================================================

// Preview returns the leading raw rows of the cached dataset.
// GET /api/preview?limit=50
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		limit = n
	}

	ds, info, err := h.currentDataset(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "Failed to load dataset", err)
		return
	}

	head := ds.Head(limit)
	cols := head.Columns()
	dto := PreviewDTO{
		Columns:  cols,
		Rows:     make([][]any, head.NumRows()),
		RowCount: ds.NumRows(),
	}
	if !info.FetchedAt.IsZero() {
		dto.FetchedAt = info.FetchedAt.Format(time.RFC3339)
	}
	for i := 0; i < head.NumRows(); i++ {
		row := make([]any, len(cols))
		for c := range cols {
			v := head.At(i, c)
			if v.IsNull() {
				row[c] = nil
			} else {
				row[c] = v.String()
			}
		}
		dto.Rows[i] = row
	}

	writeJSON(w, http.StatusOK, dto)
}

// Refresh drops the cached snapshot so the next view re-fetches, and
// re-syncs the reference tables from the warehouse.
// POST /api/refresh
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DropSnapshots(r.Context(), h.table); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to drop snapshot", err)
		return
	}
	writeJSON(w, http.StatusOK, RefreshDTO{
		Table:            h.table,
		Dropped:          true,
		ReferencesSynced: h.syncReferences(r.Context()),
	})
}

// referenceSources maps warehouse reference tables to the entity kinds
// they feed.
var referenceSources = []struct {
	Table  string
	Entity string
}{
	{"religions", "Religion"},
	{"districts", "District"},
}

// syncReferences pulls the reference tables from the source into the
// store. An unavailable or empty table is skipped; the stored entries
// keep serving until a sync succeeds.
func (h *Handler) syncReferences(ctx context.Context) []string {
	if h.Source == nil {
		return nil
	}
	var synced []string
	for _, src := range referenceSources {
		ref, err := h.Source.FetchReference(ctx, src.Table, src.Entity)
		if err != nil || ref.IsEmpty() {
			continue
		}
		if err := h.Store.SaveReference(ctx, src.Entity, ref.Names); err != nil {
			continue
		}
		synced = append(synced, src.Entity)
	}
	return synced
}

// =============================================================================
// VOCABULARY HANDLERS
// =============================================================================

// ListStages returns the legal stage parameter values.
// GET /api/stages
func (h *Handler) ListStages(w http.ResponseWriter, _ *http.Request) {
	values := []string{loan.StageAggregated}
	for _, s := range loan.Stages() {
		values = append(values, string(s))
	}
	writeJSON(w, http.StatusOK, VocabularyDTO{Values: values})
}

// ListStatuses returns the canonical statuses in display order, using
// the active taxonomy's labels.
// GET /api/statuses
func (h *Handler) ListStatuses(w http.ResponseWriter, _ *http.Request) {
	var values []string
	for _, s := range loan.CanonicalOrder() {
		values = append(values, h.Taxonomy.Label(s))
	}
	writeJSON(w, http.StatusOK, VocabularyDTO{Values: values})
}

// Health is the liveness probe.
// GET /api/health
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
