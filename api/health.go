package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HealthState classifies a health check outcome.
type HealthState string

const (
	Healthy   HealthState = "healthy"
	Degraded  HealthState = "degraded"
	Unhealthy HealthState = "unhealthy"
)

// worseThan orders states: unhealthy > degraded > healthy.
func (s HealthState) worseThan(other HealthState) bool {
	return s.rank() > other.rank()
}

func (s HealthState) rank() int {
	switch s {
	case Unhealthy:
		return 2
	case Degraded:
		return 1
	default:
		return 0
	}
}

// CheckResult is the outcome of a single health check.
type CheckResult struct {
	State  HealthState `json:"status"`
	Detail string      `json:"detail,omitempty"`
}

// Check is a named health probe.
type Check struct {
	Name string
	Fn   func(ctx context.Context) CheckResult
}

// OK is a convenience healthy result.
func OK() CheckResult { return CheckResult{State: Healthy} }

// Fail marks the check unhealthy with a detail message.
func Fail(detail string) CheckResult {
	return CheckResult{State: Unhealthy, Detail: detail}
}

// Degrade marks the check degraded with a detail message.
func Degrade(detail string) CheckResult {
	return CheckResult{State: Degraded, Detail: detail}
}

// healthReport is the /health response body.
type healthReport struct {
	Status HealthState            `json:"status"`
	Checks map[string]CheckResult `json:"checks,omitempty"`
}

// healthStreamInterval is how often /health/stream re-evaluates checks.
const healthStreamInterval = 5 * time.Second

func (a *Application) runChecks(ctx context.Context) healthReport {
	report := healthReport{Status: Healthy}
	if len(a.checks) > 0 {
		report.Checks = make(map[string]CheckResult, len(a.checks))
	}
	for _, check := range a.checks {
		result := check.Fn(ctx)
		report.Checks[check.Name] = result
		if result.State.worseThan(report.Status) {
			report.Status = result.State
		}
	}
	return report
}

// handleHealth serves GET /health. Unhealthy aggregates report 503 so
// load balancers can act on the status code alone.
func (a *Application) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := a.runChecks(r.Context())
	w.Header().Set("Content-Type", "application/json")
	if report.Status == Unhealthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(report)
}

// handleHealthStream serves GET /health/stream as Server-Sent Events.
// The current report is sent immediately, then on a fixed interval until
// the client disconnects.
func (a *Application) handleHealthStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	send := func() {
		report := a.runChecks(r.Context())
		payload, err := json.Marshal(report)
		if err != nil {
			return
		}
		fmt.Fprintf(w, "event: health\ndata: %s\n\n", payload)
		flusher.Flush()
	}

	send()
	ticker := time.NewTicker(healthStreamInterval)
	defer ticker.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			send()
		}
	}
}

// databaseCheck probes connectivity of the service database. Registered
// automatically when persistence is enabled.
func databaseCheck(ping func(ctx context.Context) error) Check {
	return Check{
		Name: "database",
		Fn: func(ctx context.Context) CheckResult {
			ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				return Fail(err.Error())
			}
			return OK()
		},
	}
}
