package service

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/ndewijer/ETF-Dashboard-Backend/internal/apperrors"
	"github.com/ndewijer/ETF-Dashboard-Backend/internal/database"
	"github.com/ndewijer/ETF-Dashboard-Backend/internal/model"
	"github.com/ndewijer/ETF-Dashboard-Backend/internal/version"
)

// RefreshRunLister lists recorded orchestrator runs.
type RefreshRunLister interface {
	ListRefreshRuns(ctx context.Context, limit int) ([]model.RefreshRun, error)
}

// Features reports which optional components are enabled.
type Features struct {
	RedisCache       bool
	ScheduledRefresh bool
	Relay            bool
}

// SystemService handles system-related operations
type SystemService struct {
	db       *sql.DB
	runs     RefreshRunLister
	features Features
}

// NewSystemService creates a new SystemService
func NewSystemService(db *sql.DB, runs RefreshRunLister, features Features) *SystemService {
	return &SystemService{
		db:       db,
		runs:     runs,
		features: features,
	}
}

// CheckHealth checks the health of the system
func (s *SystemService) CheckHealth(ctx context.Context) error {
	return database.HealthCheck(ctx, s.db)
}

// CheckVersion returns the application version, the applied schema version and
// the enabled features.
func (s *SystemService) CheckVersion(ctx context.Context) (model.VersionInfo, error) {
	dbVersion, err := database.SchemaVersion(ctx, s.db)
	if err != nil {
		return model.VersionInfo{}, err
	}
	return model.VersionInfo{
		AppVersion: version.Version,
		DbVersion:  strconv.FormatInt(dbVersion, 10),
		Features: map[string]bool{
			"redis_cache":       s.features.RedisCache,
			"scheduled_refresh": s.features.ScheduledRefresh,
			"relay":             s.features.Relay,
		},
	}, nil
}

// RefreshRuns returns the most recent orchestrator runs, newest first.
func (s *SystemService) RefreshRuns(ctx context.Context, limit int) ([]model.RefreshRun, error) {
	runs, err := s.runs.ListRefreshRuns(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrFailedToRetrieveRefreshRuns, err)
	}
	return runs, nil
}
