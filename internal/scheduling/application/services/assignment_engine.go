package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/felixgeelhaar/clinicflow/internal/scheduling/domain"
	"github.com/felixgeelhaar/clinicflow/pkg/observability"
	"github.com/sony/gobreaker/v2"
)

// DefaultMaxAttempts bounds staff redraws for one slot.
const DefaultMaxAttempts = 50

// EngineConfig contains configuration for the assignment engine.
type EngineConfig struct {
	MaxAttempts int
}

// DefaultEngineConfig returns the default configuration.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{MaxAttempts: DefaultMaxAttempts}
}

// RunOptions are the date and slot settings shared by single and batch runs.
type RunOptions struct {
	// StartDate and EndDate bound the run. Both may be zero for a by-date
	// slot source, which then supplies its own range.
	StartDate    time.Time
	EndDate      time.Time
	Slots        domain.SlotSource
	SlotKind     domain.SlotKind
	UseAllSlots  bool
	ShuffleSlots bool
	Seed         uint64
}

// ScheduleRequest asks for the appointments of one patient.
type ScheduleRequest struct {
	RunOptions
	PatientID  string
	Procedures []string
}

// Run holds the mutable state of one scheduling run. A batch uses a single
// Run for all patients.
type Run struct {
	rng    *rand.Rand
	ledger *BookingLedger
	oracle *AvailabilityOracle
}

// Ledger exposes the run's booking ledger.
func (r *Run) Ledger() *BookingLedger { return r.ledger }

// runPlan is the resolved date range and slot resolver of a run.
type runPlan struct {
	dates    []time.Time
	resolver *SlotResolver
	kind     domain.SlotKind
	useAll   bool
}

// AssignmentEngine assigns staff to appointment slots without double-booking
// group A staff.
type AssignmentEngine struct {
	sc        *domain.SchedulingContext
	lookup    LeaveLookup
	breaker   *gobreaker.CircuitBreaker[bool]
	validator *Validator
	config    EngineConfig
	logger    *slog.Logger
	metrics   observability.Metrics
}

// NewAssignmentEngine creates an engine over an immutable scheduling context.
func NewAssignmentEngine(
	sc *domain.SchedulingContext,
	lookup LeaveLookup,
	breaker *gobreaker.CircuitBreaker[bool],
	config EngineConfig,
	logger *slog.Logger,
	metrics observability.Metrics,
) *AssignmentEngine {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = DefaultMaxAttempts
	}
	return &AssignmentEngine{
		sc:        sc,
		lookup:    lookup,
		breaker:   breaker,
		validator: NewValidator(sc),
		config:    config,
		logger:    logger,
		metrics:   metrics,
	}
}

// Context returns the engine's scheduling context.
func (e *AssignmentEngine) Context() *domain.SchedulingContext { return e.sc }

// NewRun starts a run with a deterministic RNG, an empty ledger and an empty
// availability cache.
func (e *AssignmentEngine) NewRun(seed uint64) *Run {
	return &Run{
		rng:    rand.New(rand.NewPCG(seed, seed)),
		ledger: NewBookingLedger(),
		oracle: NewAvailabilityOracle(e.lookup, e.breaker, e.logger, e.metrics),
	}
}

// GenerateSchedule produces validated appointments for one patient.
func (e *AssignmentEngine) GenerateSchedule(ctx context.Context, req ScheduleRequest) ([]domain.AppointmentRecord, error) {
	procs, err := e.sc.Catalog().NormalizeProcedures(req.Procedures)
	if err != nil {
		return nil, err
	}
	plan, err := e.plan(req.RunOptions)
	if err != nil {
		return nil, err
	}

	run := e.NewRun(req.Seed)
	records, err := e.schedulePatient(ctx, run, plan, req.PatientID, procs)
	if err != nil {
		return nil, err
	}
	return e.finish(records)
}

// finish sorts records, marks first visits and runs the validation gate.
func (e *AssignmentEngine) finish(records []domain.AppointmentRecord) ([]domain.AppointmentRecord, error) {
	domain.SortRecords(records)
	if conflicts := e.validator.Validate(records); len(conflicts) > 0 {
		e.metrics.Counter(observability.MetricConflictsDetected, int64(len(conflicts)))
		return nil, &domain.ValidationError{Conflicts: conflicts}
	}
	e.metrics.Counter(observability.MetricRecordsGenerated, int64(len(records)))
	return records, nil
}

func (e *AssignmentEngine) plan(opts RunOptions) (runPlan, error) {
	kind := opts.SlotKind
	if kind == "" {
		kind = domain.SlotKindDiagnosis
	}
	start, end := opts.StartDate, opts.EndDate
	if opts.Slots.Kind == domain.SlotSourceByDate && (start.IsZero() || end.IsZero()) {
		first, last, err := opts.Slots.DateBounds()
		if err != nil {
			return runPlan{}, err
		}
		start, end = first, last
	}
	if start.IsZero() || end.IsZero() {
		return runPlan{}, fmt.Errorf("%w: start and end dates are required", domain.ErrConfiguration)
	}
	dates, err := domain.DateRange(start, end)
	if err != nil {
		return runPlan{}, err
	}
	return runPlan{
		dates:    dates,
		resolver: NewSlotResolver(opts.Slots, opts.ShuffleSlots),
		kind:     kind,
		useAll:   opts.UseAllSlots,
	}, nil
}

// schedulePatient generates the unsorted, unvalidated records of one patient
// and commits them to the run ledger.
func (e *AssignmentEngine) schedulePatient(ctx context.Context, run *Run, plan runPlan, patientID string, procs []string) ([]domain.AppointmentRecord, error) {
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return nil, fmt.Errorf("%w: patient id is required", domain.ErrConfiguration)
	}
	logger := observability.LogOperation(e.logger, "schedule_patient", "patient_id", patientID)

	var records []domain.AppointmentRecord
	for i, date := range plan.dates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		slots, err := plan.resolver.Resolve(date, i, procs[0], run.rng)
		if err != nil {
			return nil, err
		}

		if plan.useAll {
			for _, slot := range slots {
				rec, err := e.buildRecord(ctx, run, patientID, procs, date, plan.kind.StartFor(slot))
				if err != nil {
					if !isSlotFailure(err) {
						return nil, err
					}
					e.metrics.Counter(observability.MetricSlotFailures, 1)
					return nil, fmt.Errorf("could not find non-conflicting staff for %s %s: %w",
						date.Format(domain.DateLayout), slot, err)
				}
				records = append(records, rec)
			}
			continue
		}

		rec, err := e.firstFit(ctx, run, patientID, procs, date, slots, plan.kind)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	logger.Debug("patient scheduled", "records", len(records))
	return records, nil
}

// firstFit tries slots in order and keeps the first one that can be staffed.
func (e *AssignmentEngine) firstFit(ctx context.Context, run *Run, patientID string, procs []string, date time.Time, slots []domain.Clock, kind domain.SlotKind) (domain.AppointmentRecord, error) {
	var lastErr error
	for _, slot := range slots {
		rec, err := e.buildRecord(ctx, run, patientID, procs, date, kind.StartFor(slot))
		if err == nil {
			return rec, nil
		}
		if !isSlotFailure(err) {
			return domain.AppointmentRecord{}, err
		}
		e.metrics.Counter(observability.MetricSlotFailures, 1)
		lastErr = err
	}

	labels := make([]string, len(slots))
	for i, s := range slots {
		labels[i] = s.String()
	}
	return domain.AppointmentRecord{}, fmt.Errorf("could not find non-conflicting staff for %s with any slot in %s: %w",
		date.Format(domain.DateLayout), strings.Join(labels, ", "), lastErr)
}

// isSlotFailure separates "this slot cannot be staffed" from errors that
// must abort the run.
func isSlotFailure(err error) bool {
	return err != nil && errors.Is(err, domain.ErrResourceExhausted)
}

// buildRecord draws staff for the slot until the record fits the ledger,
// then commits it.
func (e *AssignmentEngine) buildRecord(ctx context.Context, run *Run, patientID string, procs []string, date time.Time, start domain.Clock) (domain.AppointmentRecord, error) {
	for attempt := 0; attempt < e.config.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return domain.AppointmentRecord{}, err
		}
		lineup, err := e.pickStaff(ctx, run, date, start)
		if err != nil {
			return domain.AppointmentRecord{}, err
		}
		rec, err := e.sc.BuildAppointment(patientID, date, start, procs, lineup)
		if err != nil {
			return domain.AppointmentRecord{}, err
		}
		if e.collides(run.ledger, rec) {
			e.metrics.Counter(observability.MetricAssignmentRetries, 1)
			continue
		}
		e.commit(run.ledger, rec, date, start, lineup)
		return rec, nil
	}
	return domain.AppointmentRecord{}, fmt.Errorf("%w: no conflict-free staff after %d attempts",
		domain.ErrResourceExhausted, e.config.MaxAttempts)
}

// pickStaff draws positions 1, 2 and 3 for a slot. Pools are walked in key
// order so draws depend only on the RNG.
func (e *AssignmentEngine) pickStaff(ctx context.Context, run *Run, date time.Time, start domain.Clock) (domain.Lineup, error) {
	var groupA, groupB []string
	for _, k := range e.sc.EnabledGroupA() {
		if run.oracle.IsAvailable(ctx, k, date, start) && !run.ledger.IsBooked(date, k, start) {
			groupA = append(groupA, k)
		}
	}
	for _, k := range e.sc.EnabledGroupB() {
		if run.oracle.IsAvailable(ctx, k, date, start) {
			groupB = append(groupB, k)
		}
	}
	if len(groupA) == 0 {
		return nil, fmt.Errorf("%w: no available group A staff for %s %s",
			domain.ErrResourceExhausted, date.Format(domain.DateLayout), start)
	}
	if len(groupB) == 0 {
		return nil, fmt.Errorf("%w: no available group B staff for %s %s",
			domain.ErrResourceExhausted, date.Format(domain.DateLayout), start)
	}

	candidates := groupA
	if used := run.ledger.UsedAtSlot(date, start); len(used) > 0 {
		fresh := make([]string, 0, len(groupA))
		for _, k := range groupA {
			if _, taken := used[k]; !taken {
				fresh = append(fresh, k)
			}
		}
		if len(fresh) > 0 {
			candidates = fresh
		}
	}

	p1 := candidates[run.rng.IntN(len(candidates))]
	rest := make([]string, 0, len(candidates))
	for _, k := range candidates {
		if k != p1 {
			rest = append(rest, k)
		}
	}
	if len(rest) == 0 {
		rest = []string{p1}
	}
	p3 := rest[run.rng.IntN(len(rest))]
	p2 := groupB[run.rng.IntN(len(groupB))]

	return domain.Lineup{p1, p2, p3}, nil
}

func (e *AssignmentEngine) collides(ledger *BookingLedger, rec domain.AppointmentRecord) bool {
	for _, p := range rec.Procedures {
		key, ok := e.sc.CheckedStaff(p)
		if !ok {
			continue
		}
		if ledger.Collides(key, domain.TimeRange{Start: p.Start, End: p.End}) {
			return true
		}
	}
	return false
}

func (e *AssignmentEngine) commit(ledger *BookingLedger, rec domain.AppointmentRecord, date time.Time, start domain.Clock, lineup domain.Lineup) {
	for _, p := range rec.Procedures {
		if key, ok := e.sc.CheckedStaff(p); ok {
			ledger.Book(key, domain.TimeRange{Start: p.Start, End: p.End})
		}
	}
	ledger.MarkUsedAtSlot(date, start, lineup[0], lineup[2])
}
