package commands

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/felixgeelhaar/clinicflow/internal/scheduling/domain"
	sharedApplication "github.com/felixgeelhaar/clinicflow/internal/shared/application"
	staffing "github.com/felixgeelhaar/clinicflow/internal/staffing/domain"
)

// AddManualEntryCommand records an operator-entered appointment.
type AddManualEntryCommand struct {
	PatientID  string
	Procedures []string
	Staff      []string
	Date       time.Time
	Time       domain.Clock
	Notes      string
}

// ManualEntryHandler adds and removes manual entries.
type ManualEntryHandler struct {
	engines EngineProvider
	repo    domain.ManualEntryRepository
	uow     sharedApplication.UnitOfWork
	events  sharedApplication.EventRecorder
	logger  *slog.Logger
}

// NewManualEntryHandler creates a ManualEntryHandler.
func NewManualEntryHandler(
	engines EngineProvider,
	repo domain.ManualEntryRepository,
	uow sharedApplication.UnitOfWork,
	events sharedApplication.EventRecorder,
	logger *slog.Logger,
) *ManualEntryHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ManualEntryHandler{
		engines: engines,
		repo:    repo,
		uow:     uow,
		events:  sharedApplication.RecorderOrNoop(events),
		logger:  logger,
	}
}

// Add validates the entry against the current roster and catalog, then stores it.
func (h *ManualEntryHandler) Add(ctx context.Context, cmd AddManualEntryCommand) (domain.ManualEntry, error) {
	sc, err := h.engines.Context(ctx)
	if err != nil {
		return domain.ManualEntry{}, err
	}
	lineup := make(domain.Lineup, 0, len(cmd.Staff))
	for _, s := range cmd.Staff {
		if key := staffing.NormalizeKey(s); key != "" {
			lineup = append(lineup, key)
		}
	}

	entry, err := domain.NewManualEntry(sc, cmd.PatientID, cmd.Procedures, lineup, cmd.Date, cmd.Time, cmd.Notes)
	if err != nil {
		return domain.ManualEntry{}, err
	}
	entry.CreatedAt = time.Now().UTC()
	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		if entry.ID, err = h.repo.Save(txCtx, entry); err != nil {
			return err
		}
		return h.events.Record(txCtx, domain.RoutingKeyManualEntryAdded, domain.NewManualEntryAdded(entry))
	})
	if err != nil {
		return domain.ManualEntry{}, err
	}
	h.logger.Info("manual entry added", "id", entry.ID, "patient_id", entry.PatientID)
	return entry, nil
}

// Remove deletes an entry by id.
func (h *ManualEntryHandler) Remove(ctx context.Context, id int64) error {
	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		if err := h.repo.Delete(txCtx, id); err != nil {
			return err
		}
		return h.events.Record(txCtx, domain.RoutingKeyManualEntryRemoved, domain.ManualEntryRemoved{ID: id})
	})
	if err != nil {
		return err
	}
	h.logger.Info("manual entry removed", "id", id)
	return nil
}

// ManualRecords expands every stored entry into a record.
func ManualRecords(ctx context.Context, repo domain.ManualEntryRepository, sc *domain.SchedulingContext) ([]domain.AppointmentRecord, error) {
	entries, err := repo.List(ctx)
	if err != nil {
		return nil, err
	}
	records := make([]domain.AppointmentRecord, 0, len(entries))
	for _, e := range entries {
		rec, err := e.Record(sc)
		if err != nil {
			return nil, fmt.Errorf("manual entry %d: %w", e.ID, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// MergeRecords appends manual records to a dataset and orders the result by
// date, keeping the input order within a day.
func MergeRecords(records, manual []domain.AppointmentRecord) []domain.AppointmentRecord {
	out := make([]domain.AppointmentRecord, 0, len(records)+len(manual))
	out = append(out, records...)
	out = append(out, manual...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}
