package model

import "time"

// VersionInfo describes the running build, the schema it expects and the
// optional features switched on by configuration.
type VersionInfo struct {
	AppVersion       string          `json:"app_version"`
	DbVersion        string          `json:"db_version"`
	Features         map[string]bool `json:"features"`
	MigrationNeeded  bool            `json:"migration_needed"`
	MigrationMessage *string         `json:"migration_message"`
	StartedAt        time.Time       `json:"started_at"`
	UptimeSeconds    int64           `json:"uptime_seconds"`
}

// HealthStatus is the liveness report served by the health endpoint.
type HealthStatus struct {
	Status    string    `json:"status"`   // healthy or unhealthy
	Database  string    `json:"database"` // connected or disconnected
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// Healthy reports whether every dependency answered.
func (h HealthStatus) Healthy() bool {
	return h.Status == "healthy"
}
