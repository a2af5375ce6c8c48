package commands

import (
	"context"
	"io"
	"log/slog"

	"github.com/felixgeelhaar/clinicflow/internal/scheduling/application/services"
	"github.com/felixgeelhaar/clinicflow/internal/scheduling/domain"
	"github.com/felixgeelhaar/clinicflow/internal/scheduling/infrastructure/export"
	sharedApplication "github.com/felixgeelhaar/clinicflow/internal/shared/application"
	"github.com/felixgeelhaar/clinicflow/pkg/observability"
)

// ValidateDatasetCommand checks a CSV dataset, optionally together with the
// stored manual entries.
type ValidateDatasetCommand struct {
	Source        io.Reader
	IncludeManual bool
}

// ValidationReport is the outcome of a standalone validation.
type ValidationReport struct {
	Records   []domain.AppointmentRecord
	Conflicts []domain.Conflict
	Context   *domain.SchedulingContext
}

// Valid reports whether no conflicts were found.
func (r *ValidationReport) Valid() bool { return len(r.Conflicts) == 0 }

// ValidateDatasetHandler parses and validates a dataset.
type ValidateDatasetHandler struct {
	engines EngineProvider
	manual  domain.ManualEntryRepository
	events  sharedApplication.EventRecorder
	logger  *slog.Logger
	metrics observability.Metrics
}

// NewValidateDatasetHandler creates a ValidateDatasetHandler. manual may be
// nil when manual entries are never merged.
func NewValidateDatasetHandler(
	engines EngineProvider,
	manual domain.ManualEntryRepository,
	events sharedApplication.EventRecorder,
	logger *slog.Logger,
	metrics observability.Metrics,
) *ValidateDatasetHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &ValidateDatasetHandler{
		engines: engines,
		manual:  manual,
		events:  sharedApplication.RecorderOrNoop(events),
		logger:  logger,
		metrics: metrics,
	}
}

// Handle parses the dataset and returns every conflict. Structural errors in
// the dataset are returned as errors.
func (h *ValidateDatasetHandler) Handle(ctx context.Context, cmd ValidateDatasetCommand) (*ValidationReport, error) {
	sc, err := h.engines.Context(ctx)
	if err != nil {
		return nil, err
	}

	var records []domain.AppointmentRecord
	if cmd.Source != nil {
		if records, err = export.ReadCSV(cmd.Source, sc); err != nil {
			return nil, err
		}
	}
	if cmd.IncludeManual && h.manual != nil {
		manual, err := ManualRecords(ctx, h.manual, sc)
		if err != nil {
			return nil, err
		}
		records = MergeRecords(records, manual)
	}

	conflicts := services.NewValidator(sc).Validate(records)
	if len(conflicts) > 0 {
		h.metrics.Counter(observability.MetricConflictsDetected, int64(len(conflicts)))
	}
	h.logger.Info("dataset validated", "records", len(records), "conflicts", len(conflicts))
	event := domain.ScheduleValidated{Records: len(records), Conflicts: len(conflicts), Valid: len(conflicts) == 0}
	if err := h.events.Record(ctx, domain.RoutingKeyScheduleValidated, event); err != nil {
		h.logger.Warn("failed to record validation event", "error", err)
	}
	return &ValidationReport{Records: records, Conflicts: conflicts, Context: sc}, nil
}
