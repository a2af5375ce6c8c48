package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sony/gobreaker/v2"

	"github.com/felixgeelhaar/clinicflow/internal/scheduling/domain"
	staffing "github.com/felixgeelhaar/clinicflow/internal/staffing/domain"
	"github.com/felixgeelhaar/clinicflow/pkg/observability"
)

// RosterSource supplies the staff roster and the disabled set.
type RosterSource interface {
	Roster(ctx context.Context) (*staffing.Roster, error)
	Disabled(ctx context.Context) (staffing.DisabledSet, error)
}

// EngineFactory builds an engine per run from the current roster and
// disabled staff. The breaker is shared by every engine it builds.
type EngineFactory struct {
	catalog *domain.Catalog
	doctors domain.WeekdayDoctors
	roster  RosterSource
	lookup  LeaveLookup
	breaker *gobreaker.CircuitBreaker[bool]
	config  EngineConfig
	logger  *slog.Logger
	metrics observability.Metrics
}

// NewEngineFactory creates a factory.
func NewEngineFactory(
	catalog *domain.Catalog,
	doctors domain.WeekdayDoctors,
	roster RosterSource,
	lookup LeaveLookup,
	breaker *gobreaker.CircuitBreaker[bool],
	config EngineConfig,
	logger *slog.Logger,
	metrics observability.Metrics,
) *EngineFactory {
	if logger == nil {
		logger = slog.Default()
	}
	return &EngineFactory{
		catalog: catalog,
		doctors: doctors,
		roster:  roster,
		lookup:  lookup,
		breaker: breaker,
		config:  config,
		logger:  logger,
		metrics: metrics,
	}
}

// Context snapshots the roster and disabled staff. A failure to read the
// disabled set is logged and treated as nobody disabled.
func (f *EngineFactory) Context(ctx context.Context) (*domain.SchedulingContext, error) {
	roster, err := f.roster.Roster(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConfiguration, err)
	}
	disabled, err := f.roster.Disabled(ctx)
	if err != nil {
		f.logger.Warn("disabled staff unavailable, scheduling with everyone enabled", "error", err)
		disabled = nil
	}
	return domain.NewSchedulingContext(f.catalog, roster, f.doctors, disabled)
}

// Engine returns an engine over a fresh scheduling context.
func (f *EngineFactory) Engine(ctx context.Context) (*AssignmentEngine, error) {
	sc, err := f.Context(ctx)
	if err != nil {
		return nil, err
	}
	return NewAssignmentEngine(sc, f.lookup, f.breaker, f.config, f.logger, f.metrics), nil
}
