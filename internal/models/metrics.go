package models

import "time"

// MetricsSnapshot is a point-in-time summary of process metrics.
type MetricsSnapshot struct {
	RequestsTotal             uint64    `json:"requests_total"`
	AverageRequestDurationMs  float64   `json:"average_request_duration_ms"`
	BackendRequestsTotal      uint64    `json:"backend_requests_total"`
	BackendErrorsTotal        uint64    `json:"backend_errors_total"`
	AverageBackendDurationMs  float64   `json:"average_backend_duration_ms"`
	SessionStoreFailuresTotal uint64    `json:"session_store_failures_total"`
	Goroutines                int       `json:"goroutines"`
	GeneratedAt               time.Time `json:"generated_at"`
}
