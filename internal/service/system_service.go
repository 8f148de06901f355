package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/ndewijer/psx-portfolio-tracker/internal/database"
	"github.com/ndewijer/psx-portfolio-tracker/internal/model"
	"github.com/ndewijer/psx-portfolio-tracker/internal/version"
)

// SystemService handles system-related operations
type SystemService struct {
	db        *sql.DB
	features  map[string]bool
	startedAt time.Time
	now       func() time.Time
}

// NewSystemService creates a new SystemService.
// features is reported as is by GetVersionInfo.
func NewSystemService(db *sql.DB, features map[string]bool) *SystemService {
	if features == nil {
		features = map[string]bool{}
	}
	return &SystemService{
		db:        db,
		features:  features,
		startedAt: time.Now().UTC(),
		now:       time.Now,
	}
}

// CheckHealth checks the health of the system
func (s *SystemService) CheckHealth(ctx context.Context) error {
	return database.HealthCheck(ctx, s.db)
}

// HealthStatus pings the database and reports the outcome.
func (s *SystemService) HealthStatus(ctx context.Context) model.HealthStatus {
	status := model.HealthStatus{
		Status:    "healthy",
		Database:  "connected",
		CheckedAt: s.now().UTC(),
	}
	if err := s.CheckHealth(ctx); err != nil {
		status.Status = "unhealthy"
		status.Database = "disconnected"
		status.Error = err.Error()
	}
	return status
}

func (s *SystemService) CheckVersion() string {
	return version.Version
}

// GetVersionInfo reports the application version, the schema version and
// whether migrations are pending.
func (s *SystemService) GetVersionInfo(ctx context.Context) (model.VersionInfo, error) {
	status, err := database.SchemaStatus(ctx, s.db)
	if err != nil {
		return model.VersionInfo{}, err
	}

	info := model.VersionInfo{
		AppVersion:      version.Version,
		DbVersion:       status.Version,
		Features:        s.features,
		MigrationNeeded: status.Pending,
		StartedAt:       s.startedAt,
		UptimeSeconds:   int64(s.now().Sub(s.startedAt) / time.Second),
	}
	if status.Pending {
		msg := "Database schema is behind the application; restart to apply migrations"
		info.MigrationMessage = &msg
	}
	return info, nil
}
