package observability

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"
)

// HealthStatus represents the health state of a component.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthCheckResult is the result of a health check.
type HealthCheckResult struct {
	Name      string         `json:"name"`
	Status    HealthStatus   `json:"status"`
	Message   string         `json:"message,omitempty"`
	Duration  time.Duration  `json:"duration_ns"`
	Timestamp time.Time      `json:"timestamp"`
	Details   map[string]any `json:"details,omitempty"`
}

// HealthChecker performs one health check.
type HealthChecker func(ctx context.Context) HealthCheckResult

// HealthRegistry runs named checks concurrently.
type HealthRegistry struct {
	mu       sync.RWMutex
	checkers map[string]HealthChecker
}

// NewHealthRegistry creates an empty registry.
func NewHealthRegistry() *HealthRegistry {
	return &HealthRegistry{checkers: make(map[string]HealthChecker)}
}

// Register adds or replaces a checker.
func (r *HealthRegistry) Register(name string, checker HealthChecker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkers[name] = checker
}

// OverallHealth summarizes all checks.
type OverallHealth struct {
	Status    HealthStatus        `json:"status"`
	Timestamp time.Time           `json:"timestamp"`
	Checks    []HealthCheckResult `json:"checks"`
}

// Check runs every checker and returns results sorted by name.
func (r *HealthRegistry) Check(ctx context.Context) OverallHealth {
	r.mu.RLock()
	checkers := make(map[string]HealthChecker, len(r.checkers))
	for k, v := range r.checkers {
		checkers[k] = v
	}
	r.mu.RUnlock()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results = make([]HealthCheckResult, 0, len(checkers))
	)
	for name, checker := range checkers {
		wg.Add(1)
		go func(name string, checker HealthChecker) {
			defer wg.Done()
			start := time.Now()
			result := checker(ctx)
			result.Name = name
			result.Duration = time.Since(start)
			result.Timestamp = time.Now()
			mu.Lock()
			results = append(results, result)
			mu.Unlock()
		}(name, checker)
	}
	wg.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })
	return OverallHealth{
		Status:    overallStatus(results),
		Timestamp: time.Now(),
		Checks:    results,
	}
}

func overallStatus(results []HealthCheckResult) HealthStatus {
	status := HealthStatusHealthy
	for _, r := range results {
		switch r.Status {
		case HealthStatusUnhealthy:
			return HealthStatusUnhealthy
		case HealthStatusDegraded:
			status = HealthStatusDegraded
		}
	}
	return status
}

// ToJSON serializes the overall health to JSON.
func (h OverallHealth) ToJSON() ([]byte, error) {
	return json.MarshalIndent(h, "", "  ")
}

// DatabaseHealthChecker reports the store as unhealthy when ping fails.
func DatabaseHealthChecker(ping func(ctx context.Context) error) HealthChecker {
	return PingHealthChecker("database", HealthStatusUnhealthy, ping)
}

// PingHealthChecker reports component with status failed when ping fails.
// Optional components such as a cache use HealthStatusDegraded.
func PingHealthChecker(component string, failed HealthStatus, ping func(ctx context.Context) error) HealthChecker {
	return func(ctx context.Context) HealthCheckResult {
		if err := ping(ctx); err != nil {
			return HealthCheckResult{
				Status:  failed,
				Message: component + " connection failed: " + err.Error(),
			}
		}
		return HealthCheckResult{Status: HealthStatusHealthy, Message: component + " connection healthy"}
	}
}

// BacklogHealthChecker reports a degraded state while dead returns a
// positive count of messages that will never be delivered.
func BacklogHealthChecker(dead func(ctx context.Context) (int64, error)) HealthChecker {
	return func(ctx context.Context) HealthCheckResult {
		n, err := dead(ctx)
		if err != nil {
			return HealthCheckResult{Status: HealthStatusDegraded, Message: "backlog unavailable: " + err.Error()}
		}
		if n > 0 {
			return HealthCheckResult{
				Status:  HealthStatusDegraded,
				Message: "dead-lettered events pending review",
				Details: map[string]any{"dead": n},
			}
		}
		return HealthCheckResult{Status: HealthStatusHealthy, Details: map[string]any{"dead": n}}
	}
}

// BreakerHealthChecker reports a degraded state while a circuit breaker is
// not closed. Scheduling still works then, treating staff as available.
func BreakerHealthChecker(state func() string) HealthChecker {
	return func(ctx context.Context) HealthCheckResult {
		s := state()
		if s != "closed" {
			return HealthCheckResult{
				Status:  HealthStatusDegraded,
				Message: "leave lookups bypassed",
				Details: map[string]any{"state": s},
			}
		}
		return HealthCheckResult{Status: HealthStatusHealthy, Details: map[string]any{"state": s}}
	}
}
