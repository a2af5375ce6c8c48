// Package queries holds the read-side scheduling use cases.
package queries

import (
	"context"
	"strings"
	"time"

	"github.com/felixgeelhaar/clinicflow/internal/scheduling/domain"
)

// ManualEntryDTO is a manual entry prepared for display.
type ManualEntryDTO struct {
	ID         int64
	PatientID  string
	Procedures string
	Staff      string
	Date       string
	Time       string
	Notes      string
	CreatedAt  time.Time
}

// ListManualEntriesHandler lists stored manual entries.
type ListManualEntriesHandler struct {
	repo domain.ManualEntryRepository
}

// NewListManualEntriesHandler creates a ListManualEntriesHandler.
func NewListManualEntriesHandler(repo domain.ManualEntryRepository) *ListManualEntriesHandler {
	return &ListManualEntriesHandler{repo: repo}
}

// Handle returns entries newest first. A non-empty patientID filters by patient.
func (h *ListManualEntriesHandler) Handle(ctx context.Context, patientID string) ([]ManualEntryDTO, error) {
	entries, err := h.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	patientID = strings.TrimSpace(patientID)

	dtos := make([]ManualEntryDTO, 0, len(entries))
	for _, e := range entries {
		if patientID != "" && !strings.EqualFold(e.PatientID, patientID) {
			continue
		}
		dtos = append(dtos, ManualEntryDTO{
			ID:         e.ID,
			PatientID:  e.PatientID,
			Procedures: strings.Join(e.Procedures, "-"),
			Staff:      strings.Join(e.Staff, "-"),
			Date:       e.Date.Format(domain.DateLayout),
			Time:       e.Time.String(),
			Notes:      e.Notes,
			CreatedAt:  e.CreatedAt,
		})
	}
	return dtos, nil
}
