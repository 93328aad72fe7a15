/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific shaping (decimal shares rendered as strings)
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Response: Complex response wrappers

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - ../loan/types.go: ViewResult, the domain-side shape
*/
package api

import (
	"github.com/meridian/loan-analytics/loan"
)

// =============================================================================
// VIEW RESPONSES
// =============================================================================

// CategoryCountDTO is one row of a rendered view.
type CategoryCountDTO struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
	Share    string `json:"share"`
}

// ViewDTO is an ordered (category, count) table plus its title. Reason is
// set when the view degraded; the frontend shows it as an info banner.
type ViewDTO struct {
	Title  string             `json:"title"`
	Rows   []CategoryCountDTO `json:"rows"`
	Total  int                `json:"total"`
	Reason string             `json:"reason,omitempty"`
}

func toViewDTO(v loan.ViewResult) ViewDTO {
	dto := ViewDTO{
		Title:  v.Title,
		Rows:   make([]CategoryCountDTO, len(v.Rows)),
		Total:  v.Total,
		Reason: v.Reason,
	}
	for i, row := range v.Rows {
		dto.Rows[i] = CategoryCountDTO{
			Category: row.Category,
			Count:    row.Count,
			Share:    row.Share.String(),
		}
	}
	return dto
}

// =============================================================================
// DATASET RESPONSES
// =============================================================================

// PreviewDTO carries a raw-rows preview of the cached dataset.
type PreviewDTO struct {
	Columns   []string `json:"columns"`
	Rows      [][]any  `json:"rows"`
	RowCount  int      `json:"row_count"`
	FetchedAt string   `json:"fetched_at,omitempty"`
}

// VocabularyDTO lists the legal values of one view parameter.
type VocabularyDTO struct {
	Values []string `json:"values"`
}

// RefreshDTO acknowledges a cache drop and lists which reference tables
// were re-synced from the source.
type RefreshDTO struct {
	Table            string   `json:"table"`
	Dropped          bool     `json:"dropped"`
	ReferencesSynced []string `json:"references_synced,omitempty"`
}

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
