package cache

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/clinicflow/internal/staffing/domain"
	"github.com/felixgeelhaar/clinicflow/pkg/observability"
)

// countingStore is an in-memory leave store that counts lookups.
type countingStore struct {
	leaves      []domain.LeaveRecord
	weekly      []domain.WeeklyLeave
	dateLookups int
	weekLookups int
}

func (s *countingStore) Add(_ context.Context, l domain.LeaveRecord) (int64, error) {
	l.ID = int64(len(s.leaves) + 1)
	s.leaves = append(s.leaves, l)
	return l.ID, nil
}

func (s *countingStore) Delete(_ context.Context, id int64) error {
	for i, l := range s.leaves {
		if l.ID == id {
			s.leaves = append(s.leaves[:i], s.leaves[i+1:]...)
			return nil
		}
	}
	return domain.ErrLeaveNotFound
}

func (s *countingStore) List(context.Context) ([]domain.LeaveRecord, error) { return s.leaves, nil }

func (s *countingStore) FindForDate(_ context.Context, key string, date time.Time) ([]domain.LeaveRecord, error) {
	s.dateLookups++
	var out []domain.LeaveRecord
	for _, l := range s.leaves {
		if l.StaffKey == key && l.Date.Equal(date) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *countingStore) AddWeekly(_ context.Context, l domain.WeeklyLeave) (int64, error) {
	l.ID = int64(len(s.weekly) + 1)
	s.weekly = append(s.weekly, l)
	return l.ID, nil
}

func (s *countingStore) DeleteWeekly(_ context.Context, id int64) error {
	for i, l := range s.weekly {
		if l.ID == id {
			s.weekly = append(s.weekly[:i], s.weekly[i+1:]...)
			return nil
		}
	}
	return domain.ErrLeaveNotFound
}

func (s *countingStore) ListWeekly(context.Context) ([]domain.WeeklyLeave, error) { return s.weekly, nil }

func (s *countingStore) FindWeekly(_ context.Context, key string, weekday int) ([]domain.WeeklyLeave, error) {
	s.weekLookups++
	var out []domain.WeeklyLeave
	for _, l := range s.weekly {
		if l.StaffKey == key && l.Weekday == weekday {
			out = append(out, l)
		}
	}
	return out, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newCached(t *testing.T) (*LeaveRepository, *countingStore, *miniredis.Miniredis, *observability.InMemoryMetrics) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	store := &countingStore{}
	metrics := observability.NewInMemoryMetrics()
	return NewLeaveRepository(store, client, time.Minute, quietLogger(), metrics), store, mr, metrics
}

func TestLeaveRepository_CachesDatedLookups(t *testing.T) {
	ctx := context.Background()
	repo, store, _, metrics := newCached(t)
	day := time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)

	leave, err := domain.NewLeaveRecord("duy", day, domain.SessionAfternoon, "training")
	require.NoError(t, err)
	_, err = repo.Add(ctx, leave)
	require.NoError(t, err)

	for range 3 {
		got, err := repo.FindForDate(ctx, "duy", day)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, domain.SessionAfternoon, got[0].Session)
		assert.Equal(t, "training", got[0].Reason)
	}
	assert.Equal(t, 1, store.dateLookups)
	assert.Equal(t, int64(2), metrics.GetCounter(observability.MetricLeaveCacheHits))
	assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricLeaveCacheMisses))

	require.NoError(t, repo.Delete(ctx, 1))
	got, err := repo.FindForDate(ctx, "duy", day)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 2, store.dateLookups)
}

func TestLeaveRepository_WeeklyWritesInvalidate(t *testing.T) {
	ctx := context.Background()
	repo, store, mr, _ := newCached(t)

	got, err := repo.FindWeekly(ctx, "quân", 5)
	require.NoError(t, err)
	assert.Empty(t, got)
	_, err = repo.FindWeekly(ctx, "quân", 5)
	require.NoError(t, err)
	assert.Equal(t, 1, store.weekLookups)

	weekly, err := domain.NewWeeklyLeave("quân", 5, domain.SessionFullDay, "")
	require.NoError(t, err)
	_, err = repo.AddWeekly(ctx, weekly)
	require.NoError(t, err)

	got, err = repo.FindWeekly(ctx, "quân", 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 2, store.weekLookups)

	gen, err := mr.Get(generationKey)
	require.NoError(t, err)
	assert.Equal(t, "1", gen)
}

func TestLeaveRepository_EntriesExpire(t *testing.T) {
	ctx := context.Background()
	repo, store, mr, _ := newCached(t)

	_, err := repo.FindWeekly(ctx, "lya", 0)
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)
	_, err = repo.FindWeekly(ctx, "lya", 0)
	require.NoError(t, err)

	assert.Equal(t, 2, store.weekLookups)
}

func TestLeaveRepository_FallsBackWhenRedisIsDown(t *testing.T) {
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 50 * time.Millisecond,
	})
	t.Cleanup(func() { client.Close() })

	store := &countingStore{}
	metrics := observability.NewInMemoryMetrics()
	repo := NewLeaveRepository(store, client, 0, quietLogger(), metrics)

	weekly, err := domain.NewWeeklyLeave("hiền", 2, domain.SessionMorning, "")
	require.NoError(t, err)
	_, err = repo.AddWeekly(ctx, weekly)
	require.NoError(t, err)

	got, err := repo.FindWeekly(ctx, "hiền", 2)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Error(t, repo.Ping(ctx))
	assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricLeaveCacheErrors, observability.T("op", "invalidate")))
	assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricLeaveCacheErrors, observability.T("op", "read generation")))
}
