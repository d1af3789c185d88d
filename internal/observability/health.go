package observability

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

// HealthStatus represents the health status of a component
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusDegraded  HealthStatus = "degraded"
	StatusUnhealthy HealthStatus = "unhealthy"
)

// HealthCheck represents a health check function
type HealthCheck func(ctx context.Context) (HealthStatus, string, error)

// HealthConfig holds configuration for health check endpoints
type HealthConfig struct {
	// Logger for structured logging
	Logger *slog.Logger

	// Checks run concurrently on every request, keyed by component name
	Checks map[string]HealthCheck

	// Timeout for the whole set of checks
	CheckTimeout time.Duration

	// Include system info in response
	IncludeSystemInfo bool

	// Version reported in the response
	Version string
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    HealthStatus           `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Uptime    string                 `json:"uptime,omitempty"`
	Version   string                 `json:"version,omitempty"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
	System    *SystemInfo            `json:"system,omitempty"`
}

// CheckResult represents the result of a single health check
type CheckResult struct {
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
	Error   string       `json:"error,omitempty"`
	Latency string       `json:"latency,omitempty"`
}

// SystemInfo contains system-level information
type SystemInfo struct {
	Goroutines  int    `json:"goroutines"`
	MemoryAlloc uint64 `json:"memory_alloc_mb"`
	MemorySys   uint64 `json:"memory_sys_mb"`
	NumCPU      int    `json:"num_cpu"`
	NumGC       uint32 `json:"num_gc"`
}

var startTime = time.Now()

// DefaultHealthConfig returns a default health configuration
func DefaultHealthConfig() *HealthConfig {
	return &HealthConfig{
		Checks:            make(map[string]HealthCheck),
		CheckTimeout:      5 * time.Second,
		IncludeSystemInfo: true,
	}
}

// HealthHandler returns an HTTP handler for comprehensive health checks.
// Any unhealthy check turns the response into a 503; degraded stays 200.
// Endpoint: GET /health
func HealthHandler(config *HealthConfig) http.HandlerFunc {
	if config == nil {
		config = DefaultHealthConfig()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if config.CheckTimeout <= 0 {
		config.CheckTimeout = 5 * time.Second
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), config.CheckTimeout)
		defer cancel()

		response := &HealthResponse{
			Status:    StatusHealthy,
			Timestamp: time.Now().Format(time.RFC3339),
			Uptime:    time.Since(startTime).String(),
			Version:   config.Version,
			Checks:    RunChecks(ctx, config.Checks),
		}
		if config.IncludeSystemInfo {
			response.System = getSystemInfo()
		}

		for _, result := range response.Checks {
			if result.Status == StatusUnhealthy {
				response.Status = StatusUnhealthy
			} else if result.Status == StatusDegraded && response.Status == StatusHealthy {
				response.Status = StatusDegraded
			}
		}

		statusCode := http.StatusOK
		if response.Status == StatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
			logger.Warn("health check failed", "checks", response.Checks)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		_ = json.NewEncoder(w).Encode(response)
	}
}

// RunChecks executes every check concurrently and collects the results.
func RunChecks(ctx context.Context, checks map[string]HealthCheck) map[string]CheckResult {
	results := make(map[string]CheckResult, len(checks))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for name, check := range checks {
		g.Go(func() error {
			result := runHealthCheck(gctx, check)
			mu.Lock()
			results[name] = result
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// runHealthCheck executes a custom health check with timeout
func runHealthCheck(ctx context.Context, check HealthCheck) CheckResult {
	start := time.Now()

	resultChan := make(chan CheckResult, 1)
	go func() {
		status, message, err := check(ctx)
		result := CheckResult{
			Status:  status,
			Message: message,
			Latency: time.Since(start).String(),
		}
		if err != nil {
			result.Error = err.Error()
			if result.Status == StatusHealthy {
				result.Status = StatusUnhealthy
			}
		}
		resultChan <- result
	}()

	select {
	case result := <-resultChan:
		return result
	case <-ctx.Done():
		return CheckResult{
			Status:  StatusUnhealthy,
			Message: "Health check timed out",
			Error:   ctx.Err().Error(),
			Latency: time.Since(start).String(),
		}
	}
}

func getSystemInfo() *SystemInfo {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return &SystemInfo{
		Goroutines:  runtime.NumGoroutine(),
		MemoryAlloc: m.Alloc / 1024 / 1024,
		MemorySys:   m.Sys / 1024 / 1024,
		NumCPU:      runtime.NumCPU(),
		NumGC:       m.NumGC,
	}
}

// DatabaseHealthCheck pings the pool and reports its connection counts.
func DatabaseHealthCheck(pool *pgxpool.Pool) HealthCheck {
	return func(ctx context.Context) (HealthStatus, string, error) {
		if err := pool.Ping(ctx); err != nil {
			return StatusUnhealthy, "Database connection failed", err
		}
		stat := pool.Stat()
		return StatusHealthy, fmt.Sprintf("Database is healthy (conns: total=%d, idle=%d, acquired=%d)",
			stat.TotalConns(), stat.IdleConns(), stat.AcquiredConns()), nil
	}
}

// PingHealthCheck wraps a ping function. When degradeOnly is set a failed
// ping is reported as degraded, for dependencies the panel can run without.
func PingHealthCheck(component string, ping func(context.Context) error, degradeOnly bool) HealthCheck {
	return func(ctx context.Context) (HealthStatus, string, error) {
		if err := ping(ctx); err != nil {
			if degradeOnly {
				return StatusDegraded, component + " unreachable", nil
			}
			return StatusUnhealthy, component + " unreachable", err
		}
		return StatusHealthy, component + " is healthy", nil
	}
}
