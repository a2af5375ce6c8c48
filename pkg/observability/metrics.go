package observability

import (
	"sort"
	"sync"
	"time"
)

// Metrics records run counters and timings.
type Metrics interface {
	// Counter increments a counter metric.
	Counter(name string, value int64, tags ...Tag)

	// Timing records a duration.
	Timing(name string, duration time.Duration, tags ...Tag)
}

// Tag is a key-value pair for metric labeling.
type Tag struct {
	Key   string
	Value string
}

// T creates a new Tag.
func T(key, value string) Tag {
	return Tag{Key: key, Value: value}
}

// NoopMetrics discards everything.
type NoopMetrics struct{}

func (NoopMetrics) Counter(string, int64, ...Tag)         {}
func (NoopMetrics) Timing(string, time.Duration, ...Tag) {}

// InMemoryMetrics keeps metrics in process. The CLI uses it to print a run
// summary and tests use it to assert on engine behavior.
type InMemoryMetrics struct {
	mu       sync.RWMutex
	counters map[string]int64
	timings  map[string][]time.Duration
}

// NewInMemoryMetrics creates an empty collector.
func NewInMemoryMetrics() *InMemoryMetrics {
	return &InMemoryMetrics{
		counters: make(map[string]int64),
		timings:  make(map[string][]time.Duration),
	}
}

func (m *InMemoryMetrics) Counter(name string, value int64, tags ...Tag) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[formatKey(name, tags)] += value
}

func (m *InMemoryMetrics) Timing(name string, duration time.Duration, tags ...Tag) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := formatKey(name, tags)
	m.timings[key] = append(m.timings[key], duration)
}

// GetCounter returns the current value of a counter.
func (m *InMemoryMetrics) GetCounter(name string, tags ...Tag) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.counters[formatKey(name, tags)]
}

// GetTimings returns all recorded timings.
func (m *InMemoryMetrics) GetTimings(name string, tags ...Tag) []time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.timings[formatKey(name, tags)]
}

// CounterSample is one counter in a snapshot.
type CounterSample struct {
	Name  string
	Value int64
}

// Counters returns all counters sorted by key.
func (m *InMemoryMetrics) Counters() []CounterSample {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]CounterSample, 0, len(m.counters))
	for k, v := range m.counters {
		out = append(out, CounterSample{Name: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func formatKey(name string, tags []Tag) string {
	key := name
	for _, t := range tags {
		key += ":" + t.Key + "=" + t.Value
	}
	return key
}

// Metric names recorded by clinicflow.
const (
	// Operation metrics
	MetricOperationTotal    = "clinicflow.operation.total"
	MetricOperationDuration = "clinicflow.operation.duration"
	MetricOperationErrors   = "clinicflow.operation.errors"

	// Scheduling metrics
	MetricRecordsGenerated  = "clinicflow.scheduling.records_generated"
	MetricAssignmentRetries = "clinicflow.scheduling.retries"
	MetricSlotFailures      = "clinicflow.scheduling.slot_failures"
	MetricConflictsDetected = "clinicflow.scheduling.conflicts"

	// Availability metrics
	MetricAvailabilityCacheHits      = "clinicflow.availability.cache_hits"
	MetricAvailabilityLookupFailures = "clinicflow.availability.lookup_failures"

	// Export metrics
	MetricRecordsExported = "clinicflow.export.records"

	// Event metrics
	MetricEventsRecorded     = "clinicflow.events.recorded"
	MetricEventsPublished    = "clinicflow.events.published"
	MetricEventsFailed       = "clinicflow.events.failed"
	MetricEventsDeadLettered = "clinicflow.events.dead_lettered"
	MetricEventsDelivered    = "clinicflow.events.delivered"

	// Leave cache metrics
	MetricLeaveCacheHits   = "clinicflow.leave_cache.hits"
	MetricLeaveCacheMisses = "clinicflow.leave_cache.misses"
	MetricLeaveCacheErrors = "clinicflow.leave_cache.errors"
)
