// Package commands holds the scheduling use cases driven by the CLI.
package commands

import (
	"context"
	"log/slog"

	"github.com/felixgeelhaar/clinicflow/internal/scheduling/application/services"
	"github.com/felixgeelhaar/clinicflow/internal/scheduling/domain"
	sharedApplication "github.com/felixgeelhaar/clinicflow/internal/shared/application"
	"github.com/felixgeelhaar/clinicflow/pkg/observability"
)

// OperationRun names the timed scheduling operation.
const OperationRun = "scheduling.run"

// EngineProvider builds the per-run scheduling context and engine.
type EngineProvider interface {
	Context(ctx context.Context) (*domain.SchedulingContext, error)
	Engine(ctx context.Context) (*services.AssignmentEngine, error)
}

// GenerateScheduleCommand asks for the appointments of one patient.
type GenerateScheduleCommand struct {
	PatientID  string
	Procedures []string
	Options    services.RunOptions
}

// GenerateBatchCommand asks for the appointments of several patients.
type GenerateBatchCommand struct {
	Patients          []services.BatchPatient
	DefaultProcedures []string
	Options           services.RunOptions
}

// GenerateResult is a validated dataset and the context it was built from.
type GenerateResult struct {
	RunID   string
	Records []domain.AppointmentRecord
	Context *domain.SchedulingContext
}

// GenerateHandler runs single and batch scheduling.
type GenerateHandler struct {
	engines EngineProvider
	events  sharedApplication.EventRecorder
	logger  *slog.Logger
	metrics observability.Metrics
}

// NewGenerateHandler creates a GenerateHandler.
func NewGenerateHandler(engines EngineProvider, events sharedApplication.EventRecorder, logger *slog.Logger, metrics observability.Metrics) *GenerateHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &GenerateHandler{
		engines: engines,
		events:  sharedApplication.RecorderOrNoop(events),
		logger:  logger,
		metrics: metrics,
	}
}

// Handle schedules one patient.
func (h *GenerateHandler) Handle(ctx context.Context, cmd GenerateScheduleCommand) (*GenerateResult, error) {
	return h.run(ctx, func(ctx context.Context, engine *services.AssignmentEngine) ([]domain.AppointmentRecord, error) {
		return engine.GenerateSchedule(ctx, services.ScheduleRequest{
			RunOptions: cmd.Options,
			PatientID:  cmd.PatientID,
			Procedures: cmd.Procedures,
		})
	})
}

// HandleBatch schedules every patient of the batch in one run.
func (h *GenerateHandler) HandleBatch(ctx context.Context, cmd GenerateBatchCommand) (*GenerateResult, error) {
	return h.run(ctx, func(ctx context.Context, engine *services.AssignmentEngine) ([]domain.AppointmentRecord, error) {
		return engine.GenerateScheduleBatch(ctx, services.BatchRequest{
			RunOptions:        cmd.Options,
			Patients:          cmd.Patients,
			DefaultProcedures: cmd.DefaultProcedures,
		})
	})
}

func (h *GenerateHandler) run(ctx context.Context, fn func(context.Context, *services.AssignmentEngine) ([]domain.AppointmentRecord, error)) (*GenerateResult, error) {
	ctx = observability.WithRunID(ctx, "")
	engine, err := h.engines.Engine(ctx)
	if err != nil {
		return nil, err
	}

	records, err := observability.TimeOperationResult(ctx, h.logger, h.metrics, OperationRun, func() ([]domain.AppointmentRecord, error) {
		return fn(ctx, engine)
	})
	if err != nil {
		return nil, err
	}

	runID := observability.RunIDFromContext(ctx)
	if err := h.events.Record(ctx, domain.RoutingKeyScheduleGenerated, domain.NewScheduleGenerated(runID, records)); err != nil {
		h.logger.Warn("failed to record schedule event", "run_id", runID, "error", err)
	}
	return &GenerateResult{
		RunID:   runID,
		Records: records,
		Context: engine.Context(),
	}, nil
}
