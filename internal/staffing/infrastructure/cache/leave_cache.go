// Package cache keeps leave lookups in Redis in front of the leave store.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/felixgeelhaar/clinicflow/internal/staffing/domain"
	"github.com/felixgeelhaar/clinicflow/pkg/observability"
)

// DefaultTTL bounds how long a cached lookup lives.
const DefaultTTL = 5 * time.Minute

const (
	keyPrefix     = "clinicflow:leave:"
	generationKey = keyPrefix + "gen"
)

// LeaveRepository caches FindForDate and FindWeekly. Every write bumps a
// generation counter that is part of each cache key, so one INCR drops all
// cached lookups. Redis failures fall through to the store.
type LeaveRepository struct {
	next    domain.LeaveRepository
	client  redis.Cmdable
	ttl     time.Duration
	logger  *slog.Logger
	metrics observability.Metrics
}

// NewLeaveRepository wraps next with a Redis cache.
func NewLeaveRepository(next domain.LeaveRepository, client redis.Cmdable, ttl time.Duration, logger *slog.Logger, metrics observability.Metrics) *LeaveRepository {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &LeaveRepository{next: next, client: client, ttl: ttl, logger: logger, metrics: metrics}
}

// Ping checks the Redis connection.
func (r *LeaveRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *LeaveRepository) Add(ctx context.Context, leave domain.LeaveRecord) (int64, error) {
	id, err := r.next.Add(ctx, leave)
	if err == nil {
		r.invalidate(ctx)
	}
	return id, err
}

func (r *LeaveRepository) Delete(ctx context.Context, id int64) error {
	err := r.next.Delete(ctx, id)
	if err == nil {
		r.invalidate(ctx)
	}
	return err
}

func (r *LeaveRepository) List(ctx context.Context) ([]domain.LeaveRecord, error) {
	return r.next.List(ctx)
}

// FindForDate returns the dated leaves of staffKey, from the cache when present.
func (r *LeaveRepository) FindForDate(ctx context.Context, staffKey string, date time.Time) ([]domain.LeaveRecord, error) {
	suffix := fmt.Sprintf("date:%s:%s", domain.NormalizeKey(staffKey), date.Format("2006-01-02"))
	return cached(ctx, r, suffix, func() ([]domain.LeaveRecord, error) {
		return r.next.FindForDate(ctx, staffKey, date)
	})
}

func (r *LeaveRepository) AddWeekly(ctx context.Context, leave domain.WeeklyLeave) (int64, error) {
	id, err := r.next.AddWeekly(ctx, leave)
	if err == nil {
		r.invalidate(ctx)
	}
	return id, err
}

func (r *LeaveRepository) DeleteWeekly(ctx context.Context, id int64) error {
	err := r.next.DeleteWeekly(ctx, id)
	if err == nil {
		r.invalidate(ctx)
	}
	return err
}

func (r *LeaveRepository) ListWeekly(ctx context.Context) ([]domain.WeeklyLeave, error) {
	return r.next.ListWeekly(ctx)
}

// FindWeekly returns the weekly leaves of staffKey on weekday, from the cache
// when present.
func (r *LeaveRepository) FindWeekly(ctx context.Context, staffKey string, weekday int) ([]domain.WeeklyLeave, error) {
	suffix := fmt.Sprintf("weekly:%s:%d", domain.NormalizeKey(staffKey), weekday)
	return cached(ctx, r, suffix, func() ([]domain.WeeklyLeave, error) {
		return r.next.FindWeekly(ctx, staffKey, weekday)
	})
}

func cached[T any](ctx context.Context, r *LeaveRepository, suffix string, load func() ([]T, error)) ([]T, error) {
	gen, err := r.generation(ctx)
	if err != nil {
		r.fail(err, "read generation")
		return load()
	}
	key := keyPrefix + "g" + strconv.FormatInt(gen, 10) + ":" + suffix

	data, err := r.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var out []T
		if err := json.Unmarshal(data, &out); err == nil {
			r.metrics.Counter(observability.MetricLeaveCacheHits, 1)
			return out, nil
		}
		r.logger.Warn("dropping undecodable leave cache entry", "key", key)
	case !errors.Is(err, redis.Nil):
		r.fail(err, "get")
		return load()
	}

	r.metrics.Counter(observability.MetricLeaveCacheMisses, 1)
	out, err := load()
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(out); err == nil {
		if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
			r.fail(err, "set")
		}
	}
	return out, nil
}

func (r *LeaveRepository) generation(ctx context.Context) (int64, error) {
	gen, err := r.client.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// invalidate starts a new generation. Entries of older generations expire
// with their TTL.
func (r *LeaveRepository) invalidate(ctx context.Context) {
	if err := r.client.Incr(ctx, generationKey).Err(); err != nil {
		r.fail(err, "invalidate")
	}
}

func (r *LeaveRepository) fail(err error, op string) {
	r.metrics.Counter(observability.MetricLeaveCacheErrors, 1, observability.T("op", op))
	r.logger.Warn("leave cache unavailable, using store", "op", op, "error", err)
}

var _ domain.LeaveRepository = (*LeaveRepository)(nil)
