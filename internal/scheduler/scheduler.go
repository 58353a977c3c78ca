package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ndewijer/ETF-Dashboard-Backend/internal/apperrors"
	"github.com/ndewijer/ETF-Dashboard-Backend/internal/model"
)

// Syncer brings the dashboard dataset up to date.
type Syncer interface {
	Sync(ctx context.Context) (model.DatasetSnapshot, error)
}

// Scheduler runs the dataset refresh on a cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	syncer  Syncer
	timeout time.Duration
	logger  *slog.Logger
	ctx     context.Context
}

// New creates a Scheduler. Runs are bound to ctx and each is limited to timeout.
func New(ctx context.Context, syncer Syncer, timeout time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cron:    cron.New(),
		syncer:  syncer,
		timeout: timeout,
		logger:  logger,
		ctx:     ctx,
	}
}

// Register adds the refresh job for a standard five-field cron spec.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.RunNow); err != nil {
		return fmt.Errorf("register refresh task %q: %w", spec, err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	for _, e := range s.cron.Entries() {
		s.logger.Info("scheduler started", "nextRun", e.Next)
	}
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// RunNow executes one refresh immediately.
func (s *Scheduler) RunNow() {
	ctx := s.ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	snap, err := s.syncer.Sync(ctx)
	if err != nil {
		if errors.Is(err, apperrors.ErrRefreshSuperseded) {
			s.logger.Info("scheduled refresh superseded", "error", err)
			return
		}
		s.logger.Error("scheduled refresh failed", "error", err)
		return
	}
	s.logger.Info("scheduled refresh finished",
		"symbols", len(snap.Data),
		"errors", len(snap.Errors),
		"lastUpdated", snap.LastUpdated,
		"duration", time.Since(start),
	)
}
