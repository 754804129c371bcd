package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// WindowScheduler reconciles the grading window against wall-clock time.
// It runs one tick at startup and then on a fixed interval; each tick
// performs at most one transition and is idempotent from persisted state.
type WindowScheduler struct {
	repo          periodStore
	cache         *CacheService
	metrics       *MetricsService
	institutionID string
	interval      time.Duration
	location      *time.Location
	logger        *zap.Logger
}

// NewWindowScheduler constructs the scheduler.
func NewWindowScheduler(repo periodStore, cache *CacheService, metrics *MetricsService, institutionID string, interval time.Duration, timezone string, logger *zap.Logger) *WindowScheduler {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	location, err := time.LoadLocation(timezone)
	if err != nil {
		logger.Warn("unknown scheduler timezone, falling back to UTC", zap.String("timezone", timezone))
		location = time.UTC
	}
	return &WindowScheduler{
		repo:          repo,
		cache:         cache,
		metrics:       metrics,
		institutionID: institutionID,
		interval:      interval,
		location:      location,
		logger:        logger,
	}
}

// Run ticks immediately and then repeatedly until ctx is cancelled.
// Tick errors are logged and dropped; the next tick retries from storage.
func (s *WindowScheduler) Run(ctx context.Context) {
	s.tickAndLog(ctx)

	timer := time.NewTimer(s.untilNextTick(time.Now()))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("window scheduler stopped")
			return
		case <-timer.C:
			s.tickAndLog(ctx)
			timer.Reset(s.untilNextTick(time.Now()))
		}
	}
}

// untilNextTick returns the wait before the next tick. A daily interval is
// anchored to midnight in the configured timezone so transitions land on
// the local calendar day; any other interval repeats as-is.
func (s *WindowScheduler) untilNextTick(now time.Time) time.Duration {
	if s.interval != 24*time.Hour {
		return s.interval
	}
	local := now.In(s.location)
	midnight := time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, s.location)
	return midnight.Sub(now)
}

func (s *WindowScheduler) tickAndLog(ctx context.Context) {
	if err := s.Tick(ctx, time.Now()); err != nil {
		s.logger.Warn("window tick failed", zap.Error(err))
	}
}

// Tick evaluates the window against now and applies at most one of the
// open/close transitions. No transition means no write.
func (s *WindowScheduler) Tick(ctx context.Context, now time.Time) error {
	period, err := s.repo.Get(ctx, s.institutionID)
	if err != nil {
		return fmt.Errorf("load grading period: %w", err)
	}

	if period.StartAt == nil && period.EndAt == nil {
		return nil
	}

	tickAt := now.UTC()
	transition := ""
	switch {
	case !period.WindowActive && period.StartAt != nil && !tickAt.Before(*period.StartAt):
		period.WindowActive = true
		period.WindowPending = false
		period.LastTickAt = &tickAt
		transition = "open"
		s.logger.Info("grading window opened",
			zap.String("academic_year", period.AcademicYear),
			zap.String("term", string(period.Term)))

	case period.WindowActive && period.EndAt != nil && !tickAt.Before(*period.EndAt):
		period.WindowActive = false
		period.WindowPending = false
		period.MarkTermDone(period.Term)
		period.StartAt = nil
		period.EndAt = nil
		period.LastTickAt = &tickAt
		transition = "close"
		s.logger.Info("grading window closed",
			zap.String("academic_year", period.AcademicYear),
			zap.String("term", string(period.Term)))

	default:
		return nil
	}

	if err := s.repo.Replace(ctx, period); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Concurrent registrar update; the next tick re-evaluates.
			s.logger.Warn("window tick lost version race")
			return nil
		}
		return fmt.Errorf("persist window transition: %w", err)
	}

	s.metrics.RecordWindowTransition(transition)

	if s.cache.Enabled() {
		if err := s.cache.Delete(ctx, periodCacheKey(s.institutionID)); err != nil {
			s.logger.Warn("failed to invalidate grading period cache", zap.Error(err))
		}
	}
	return nil
}
