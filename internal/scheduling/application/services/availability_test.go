package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/felixgeelhaar/clinicflow/internal/scheduling/domain"
	"github.com/felixgeelhaar/clinicflow/pkg/observability"
)

func TestAvailabilityOracle_Memoizes(t *testing.T) {
	ctx := context.Background()
	lookup := &countingLookup{answer: func(staffKey string, _ time.Time, _ domain.Clock) (bool, string, error) {
		return staffKey != "duy", "on leave (full day)", nil
	}}
	metrics := observability.NewInMemoryMetrics()
	o := NewAvailabilityOracle(lookup, nil, quietLogger(), metrics)
	d := day(2025, time.March, 10)

	assert.False(t, o.IsAvailable(ctx, "duy", d, domain.NewClock(8, 5)))
	assert.False(t, o.IsAvailable(ctx, "duy", d, domain.NewClock(8, 5)))
	assert.True(t, o.IsAvailable(ctx, "lya", d, domain.NewClock(8, 5)))

	assert.Equal(t, 2, lookup.calls)
	assert.Equal(t, 2, o.CacheSize())
	assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricAvailabilityCacheHits))
}

func TestAvailabilityOracle_FailsOpen(t *testing.T) {
	lookup := &countingLookup{answer: func(string, time.Time, domain.Clock) (bool, string, error) {
		return false, "", errors.New("leave store unreachable")
	}}
	metrics := observability.NewInMemoryMetrics()
	o := NewAvailabilityOracle(lookup, nil, quietLogger(), metrics)

	assert.True(t, o.IsAvailable(context.Background(), "duy", day(2025, time.March, 10), domain.NewClock(8, 5)))
	assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricAvailabilityLookupFailures))
}

func TestAvailabilityOracle_NilLookup(t *testing.T) {
	o := NewAvailabilityOracle(nil, nil, nil, nil)
	assert.True(t, o.IsAvailable(context.Background(), "duy", day(2025, time.March, 10), domain.NewClock(8, 5)))
}

func TestAvailabilityOracle_BreakerStopsLookups(t *testing.T) {
	lookup := &countingLookup{answer: func(string, time.Time, domain.Clock) (bool, string, error) {
		return false, "", errors.New("timeout")
	}}
	cfg := DefaultBreakerConfig()
	cfg.FailureThreshold = 2
	breaker := NewLeaveBreaker(cfg, quietLogger())
	o := NewAvailabilityOracle(lookup, breaker, quietLogger(), nil)

	for _, key := range []string{"duy", "lya", "quân", "hưng", "an"} {
		assert.True(t, o.IsAvailable(context.Background(), key, day(2025, time.March, 10), domain.NewClock(8, 5)))
	}
	assert.Equal(t, 2, lookup.calls)
	assert.Equal(t, "open", breaker.State().String())
}

func TestNewLeaveBreaker_Disabled(t *testing.T) {
	cfg := DefaultBreakerConfig()
	cfg.Enabled = false
	assert.Nil(t, NewLeaveBreaker(cfg, nil))
}
