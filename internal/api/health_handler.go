package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/opportunity-analyst/internal/pkg/httputil"
)

// HealthStatus represents the overall health of the service.
type HealthStatus struct {
	Status        string                    `json:"status"` // "healthy", "degraded", "unhealthy"
	Version       string                    `json:"version"`
	Uptime        string                    `json:"uptime"`
	PipelineReady bool                      `json:"pipeline_ready"`
	DataLoaded    bool                      `json:"data_loaded"`
	PipelineType  string                    `json:"pipeline_type"`
	Source        string                    `json:"source"`
	Rows          int                       `json:"rows"`
	Customers     int                       `json:"customers"`
	LoadedAt      *time.Time                `json:"loaded_at,omitempty"`
	Checks        map[string]ComponentCheck `json:"checks"`
}

// ComponentCheck represents the health of a single component.
type ComponentCheck struct {
	Status  string `json:"status"` // "up", "down", "degraded"
	Latency string `json:"latency,omitempty"`
	Message string `json:"message,omitempty"`
}

// HealthChecker reports on the loaded transaction table and the optional
// report cache.
type HealthChecker struct {
	svc         AnalysisService
	redisClient *redis.Client
	startTime   time.Time
}

// NewHealthChecker creates a new HealthChecker. redisClient may be nil; the
// cache check then reports "not configured".
func NewHealthChecker(svc AnalysisService, redisClient *redis.Client) *HealthChecker {
	return &HealthChecker{
		svc:         svc,
		redisClient: redisClient,
		startTime:   time.Now(),
	}
}

const healthVersion = "1.0.0"

// HandleHealth returns the health of every component. Always 200; the status
// field carries the verdict. Use /health/ready for probes that need a 503.
//
//	GET /health
func (hc *HealthChecker) HandleHealth(w http.ResponseWriter, r *http.Request) {
	st := hc.svc.Status()
	checks := hc.runAllChecks(r.Context())

	status := HealthStatus{
		Status:        determineOverallStatus(checks),
		Version:       healthVersion,
		Uptime:        formatUptime(time.Since(hc.startTime)),
		PipelineReady: st.Ready,
		DataLoaded:    st.Ready && st.Rows > 0,
		PipelineType:  pipelineType(st),
		Source:        st.Source,
		Rows:          st.Rows,
		Customers:     st.Customers,
		Checks:        checks,
	}
	if !st.LoadedAt.IsZero() {
		loadedAt := st.LoadedAt
		status.LoadedAt = &loadedAt
	}

	httputil.OK(w, status)
}

// HandleLiveness always returns 200 while the process is running.
//
//	GET /health/live
func (hc *HealthChecker) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]interface{}{
		"status": "alive",
		"uptime": formatUptime(time.Since(hc.startTime)),
	})
}

// HandleReadiness returns 200 only once a transaction table is loaded.
//
//	GET /health/ready
func (hc *HealthChecker) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	checks := hc.runAllChecks(r.Context())
	overall := determineOverallStatus(checks)

	ready := overall != "unhealthy"
	httpStatus := http.StatusOK
	if !ready {
		httpStatus = http.StatusServiceUnavailable
	}

	httputil.JSON(w, httpStatus, map[string]interface{}{
		"ready":  ready,
		"status": overall,
		"checks": checks,
	})
}

// ---------------------------------------------------------------------------
// Individual component checks
// ---------------------------------------------------------------------------

func (hc *HealthChecker) runAllChecks(ctx context.Context) map[string]ComponentCheck {
	return map[string]ComponentCheck{
		"dataset": hc.checkDataset(),
		"redis":   hc.checkRedis(ctx),
	}
}

func (hc *HealthChecker) checkDataset() ComponentCheck {
	st := hc.svc.Status()
	if !st.Ready {
		msg := "no transaction table loaded"
		if st.LastError != "" {
			msg = "load failed"
		}
		return ComponentCheck{Status: "down", Message: msg}
	}
	if st.LastError != "" {
		// Serving the previous table.
		return ComponentCheck{
			Status:  "degraded",
			Message: fmt.Sprintf("last reload failed; serving table loaded %s", st.LoadedAt.Format(time.RFC3339)),
		}
	}
	return ComponentCheck{
		Status:  "up",
		Message: fmt.Sprintf("%d rows, %d customers", st.Rows, st.Customers),
	}
}

// checkRedis pings the report cache with a 2-second timeout.
func (hc *HealthChecker) checkRedis(ctx context.Context) ComponentCheck {
	if hc.redisClient == nil {
		return ComponentCheck{Status: "down", Message: "not configured"}
	}

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	err := hc.redisClient.Ping(pingCtx).Err()
	latency := time.Since(start)

	if err != nil {
		return ComponentCheck{
			Status:  "down",
			Latency: latency.String(),
			Message: "ping failed",
		}
	}

	status := "up"
	msg := "connected"
	if latency > 500*time.Millisecond {
		status = "degraded"
		msg = fmt.Sprintf("slow response (%s)", latency)
	}

	return ComponentCheck{
		Status:  status,
		Latency: latency.String(),
		Message: msg,
	}
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// determineOverallStatus derives the aggregate status from individual checks.
//
// Rules:
//   - "unhealthy" if the dataset is down (nothing can be analyzed)
//   - "degraded"  if any check is degraded or a configured cache is down
//   - "healthy"   otherwise
func determineOverallStatus(checks map[string]ComponentCheck) string {
	if ds, ok := checks["dataset"]; ok && ds.Status == "down" {
		return "unhealthy"
	}

	for _, c := range checks {
		if c.Status == "degraded" {
			return "degraded"
		}
		if c.Status == "down" && c.Message != "not configured" {
			return "degraded"
		}
	}

	return "healthy"
}

// formatUptime produces a human-readable uptime string like "3d 4h 12m 5s".
func formatUptime(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}
	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}
