package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gradekeeper/registrar-api/internal/models"
)

type fakePeriodStore struct {
	period       *models.GradingPeriod
	getErr       error
	replaceErr   error
	replaceCalls int
}

func (f *fakePeriodStore) Get(ctx context.Context, institutionID string) (*models.GradingPeriod, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	clone := *f.period
	return &clone, nil
}

func (f *fakePeriodStore) Replace(ctx context.Context, period *models.GradingPeriod) error {
	f.replaceCalls++
	if f.replaceErr != nil {
		return f.replaceErr
	}
	period.Version++
	f.period = period
	return nil
}

func newTestScheduler(store *fakePeriodStore) *WindowScheduler {
	return NewWindowScheduler(store, nil, nil, "main", time.Hour, "UTC", nil)
}

func TestWindowSchedulerDailyTickAlignsToLocalMidnight(t *testing.T) {
	store := &fakePeriodStore{period: &models.GradingPeriod{InstitutionID: "main"}}
	scheduler := NewWindowScheduler(store, nil, nil, "main", 24*time.Hour, "Asia/Manila", nil)

	// 10:00 UTC is 18:00 in Manila; the next Manila midnight is 6h away.
	now := time.Date(2026, time.March, 10, 10, 0, 0, 0, time.UTC)
	require.Equal(t, 6*time.Hour, scheduler.untilNextTick(now))
}

func TestWindowSchedulerShortIntervalIsNotAligned(t *testing.T) {
	store := &fakePeriodStore{period: &models.GradingPeriod{InstitutionID: "main"}}
	scheduler := newTestScheduler(store)

	require.Equal(t, time.Hour, scheduler.untilNextTick(time.Now()))
}

func TestWindowSchedulerTickWithoutWindow(t *testing.T) {
	store := &fakePeriodStore{period: &models.GradingPeriod{
		InstitutionID: "main",
		Term:          models.TermPrelim,
	}}
	scheduler := newTestScheduler(store)

	require.NoError(t, scheduler.Tick(context.Background(), time.Now()))
	require.Zero(t, store.replaceCalls)
}

func TestWindowSchedulerTickBeforeStart(t *testing.T) {
	start := time.Now().UTC().Add(time.Hour)
	end := start.Add(24 * time.Hour)
	store := &fakePeriodStore{period: &models.GradingPeriod{
		InstitutionID: "main",
		Term:          models.TermPrelim,
		WindowPending: true,
		StartAt:       &start,
		EndAt:         &end,
	}}
	scheduler := newTestScheduler(store)

	require.NoError(t, scheduler.Tick(context.Background(), time.Now()))
	require.Zero(t, store.replaceCalls)
	require.False(t, store.period.WindowActive)
}

func TestWindowSchedulerTickOpensWindowOnce(t *testing.T) {
	start := time.Now().UTC().Add(-time.Hour)
	end := start.Add(48 * time.Hour)
	store := &fakePeriodStore{period: &models.GradingPeriod{
		InstitutionID: "main",
		Term:          models.TermPrelim,
		WindowPending: true,
		StartAt:       &start,
		EndAt:         &end,
	}}
	scheduler := newTestScheduler(store)

	require.NoError(t, scheduler.Tick(context.Background(), time.Now()))
	require.Equal(t, 1, store.replaceCalls)
	require.True(t, store.period.WindowActive)
	require.False(t, store.period.WindowPending)
	require.NotNil(t, store.period.LastTickAt)

	// A second tick inside the window is a no-op.
	require.NoError(t, scheduler.Tick(context.Background(), time.Now()))
	require.Equal(t, 1, store.replaceCalls)
}

func TestWindowSchedulerTickClosesWindowAndMarksTermDone(t *testing.T) {
	start := time.Now().UTC().Add(-48 * time.Hour)
	end := time.Now().UTC().Add(-time.Hour)
	store := &fakePeriodStore{period: &models.GradingPeriod{
		InstitutionID: "main",
		Term:          models.TermMidterm,
		WindowActive:  true,
		StartAt:       &start,
		EndAt:         &end,
	}}
	scheduler := newTestScheduler(store)

	require.NoError(t, scheduler.Tick(context.Background(), time.Now()))
	require.Equal(t, 1, store.replaceCalls)
	require.False(t, store.period.WindowActive)
	require.True(t, store.period.MidtermDone)
	require.Nil(t, store.period.StartAt)
	require.Nil(t, store.period.EndAt)
}

func TestWindowSchedulerTickLostVersionRace(t *testing.T) {
	start := time.Now().UTC().Add(-time.Hour)
	end := start.Add(48 * time.Hour)
	store := &fakePeriodStore{
		period: &models.GradingPeriod{
			InstitutionID: "main",
			Term:          models.TermPrelim,
			WindowPending: true,
			StartAt:       &start,
			EndAt:         &end,
		},
		replaceErr: sql.ErrNoRows,
	}
	scheduler := newTestScheduler(store)

	// The race is dropped; the next tick re-evaluates from storage.
	require.NoError(t, scheduler.Tick(context.Background(), time.Now()))
	require.Equal(t, 1, store.replaceCalls)
}
