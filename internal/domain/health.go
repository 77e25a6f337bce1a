package domain

import "time"

// HealthStatus classifies the overall system health from the stuck rate.
type HealthStatus string

const (
	HealthHealthy  HealthStatus = "healthy"  // stuck rate below 5%
	HealthWarning  HealthStatus = "warning"  // stuck rate 5-20%
	HealthCritical HealthStatus = "critical" // stuck rate above 20%
)

// ClassifyHealth maps a stuck rate (0.0-1.0) to a health status.
func ClassifyHealth(stuckRate float64) HealthStatus {
	switch {
	case stuckRate < 0.05:
		return HealthHealthy
	case stuckRate <= 0.20:
		return HealthWarning
	default:
		return HealthCritical
	}
}

// HealthSnapshot is a point-in-time read-only aggregate over the state store.
// It is computed on demand and never persisted.
type HealthSnapshot struct {
	Status      HealthStatus `json:"status"`
	ActiveCount int          `json:"active_count"`
	StuckCount  int          `json:"stuck_count"`
	StuckRate   float64      `json:"stuck_rate"`
	SuccessRate float64      `json:"success_rate"`
}

// StuckTask describes one task that exhausted its iteration budget,
// with enough context to diagnose it.
type StuckTask struct {
	TaskID        string        `json:"task_id"`
	Title         string        `json:"title,omitempty"`
	LastNote      string        `json:"last_note,omitempty"`
	Iteration     int           `json:"iteration"`
	MaxIterations int           `json:"max_iterations"`
	SinceProgress time.Duration `json:"since_progress"`
}
