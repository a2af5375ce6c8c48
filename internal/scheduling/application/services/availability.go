package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/clinicflow/internal/scheduling/domain"
	"github.com/felixgeelhaar/clinicflow/pkg/observability"
	"github.com/sony/gobreaker/v2"
)

// LeaveLookup answers whether a staff member is free at a time on a date.
// reason explains an unavailable answer.
type LeaveLookup interface {
	CheckStaffAvailable(ctx context.Context, staffKey string, date time.Time, at domain.Clock) (available bool, reason string, err error)
}

// LeaveLookupFunc adapts a function to LeaveLookup.
type LeaveLookupFunc func(ctx context.Context, staffKey string, date time.Time, at domain.Clock) (bool, string, error)

func (f LeaveLookupFunc) CheckStaffAvailable(ctx context.Context, staffKey string, date time.Time, at domain.Clock) (bool, string, error) {
	return f(ctx, staffKey, date, at)
}

// BreakerConfig configures the circuit breaker around the leave lookup.
type BreakerConfig struct {
	Enabled          bool
	FailureThreshold uint32
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
}

// DefaultBreakerConfig returns the breaker settings used by the CLI.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Enabled:          true,
		FailureThreshold: 5,
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
	}
}

type availabilityKey struct {
	staff string
	date  string
	at    domain.Clock
}

// AvailabilityOracle answers staff availability for one run. Answers are
// memoized per (staff, date, time). Lookup failures count as available.
type AvailabilityOracle struct {
	lookup  LeaveLookup
	breaker *gobreaker.CircuitBreaker[bool]
	cache   map[availabilityKey]bool
	logger  *slog.Logger
	metrics observability.Metrics
}

// NewAvailabilityOracle creates an oracle with an empty cache. A nil lookup
// treats everyone as available.
func NewAvailabilityOracle(lookup LeaveLookup, breaker *gobreaker.CircuitBreaker[bool], logger *slog.Logger, metrics observability.Metrics) *AvailabilityOracle {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &AvailabilityOracle{
		lookup:  lookup,
		breaker: breaker,
		cache:   make(map[availabilityKey]bool),
		logger:  logger,
		metrics: metrics,
	}
}

// NewLeaveBreaker builds the circuit breaker shared by oracles of one process.
// It returns nil when disabled.
func NewLeaveBreaker(cfg BreakerConfig, logger *slog.Logger) *gobreaker.CircuitBreaker[bool] {
	if !cfg.Enabled {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	return gobreaker.NewCircuitBreaker[bool](gobreaker.Settings{
		Name:        "leave-lookup",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})
}

// IsAvailable reports whether staffKey may be assigned at the given time.
func (o *AvailabilityOracle) IsAvailable(ctx context.Context, staffKey string, date time.Time, at domain.Clock) bool {
	key := availabilityKey{staff: staffKey, date: date.Format(domain.StoreDateLayout), at: at}
	if ok, hit := o.cache[key]; hit {
		o.metrics.Counter(observability.MetricAvailabilityCacheHits, 1)
		return ok
	}
	ok := o.check(ctx, staffKey, date, at)
	o.cache[key] = ok
	return ok
}

func (o *AvailabilityOracle) check(ctx context.Context, staffKey string, date time.Time, at domain.Clock) bool {
	if o.lookup == nil {
		return true
	}

	call := func() (bool, error) {
		ok, reason, err := o.lookup.CheckStaffAvailable(ctx, staffKey, date, at)
		if err == nil && !ok {
			o.logger.Debug("staff on leave",
				"staff", staffKey,
				"date", date.Format(domain.DateLayout),
				"time", at.String(),
				"reason", reason,
			)
		}
		return ok, err
	}

	var (
		ok  bool
		err error
	)
	if o.breaker != nil {
		ok, err = o.breaker.Execute(call)
	} else {
		ok, err = call()
	}
	if err != nil {
		o.metrics.Counter(observability.MetricAvailabilityLookupFailures, 1)
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			o.logger.Debug("leave lookup skipped, breaker open", "staff", staffKey)
		} else {
			o.logger.Warn("leave lookup failed, treating staff as available",
				"staff", staffKey,
				"date", date.Format(domain.DateLayout),
				"error", err,
			)
		}
		return true
	}
	return ok
}

// CacheSize returns the number of memoized answers.
func (o *AvailabilityOracle) CacheSize() int {
	return len(o.cache)
}
