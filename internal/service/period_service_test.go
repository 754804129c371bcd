package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradekeeper/registrar-api/internal/models"
	appErrors "github.com/gradekeeper/registrar-api/pkg/errors"
)

func basePeriod() *models.GradingPeriod {
	return &models.GradingPeriod{
		InstitutionID: "main",
		AcademicYear:  "2025 - 2026",
		Semester:      models.SemesterFirst,
		Term:          models.TermPrelim,
		Version:       4,
	}
}

func windowTimes() (time.Time, time.Time) {
	start := time.Now().Add(time.Hour)
	return start, start.Add(14 * 24 * time.Hour)
}

func TestPeriodServiceRolloverAcademicYear(t *testing.T) {
	period := basePeriod()
	period.Term = models.TermFinal
	period.PrelimDone = true
	period.MidtermDone = true
	period.FinalDone = true
	store := &fakePeriodStore{period: period}
	svc := NewPeriodService(store, nil, "main", nil, nil)

	start, end := windowTimes()
	updated, err := svc.RolloverAcademicYear(context.Background(), RolloverAcademicYearRequest{
		AcademicYear: "2026 - 2027",
		StartAt:      start,
		EndAt:        end,
		Version:      4,
	})
	require.NoError(t, err)
	assert.Equal(t, "2026 - 2027", updated.AcademicYear)
	assert.Equal(t, models.SemesterFirst, updated.Semester)
	assert.Equal(t, models.TermPrelim, updated.Term)
	assert.False(t, updated.PrelimDone)
	assert.False(t, updated.FinalDone)
	assert.True(t, updated.WindowPending)
	assert.False(t, updated.WindowActive)
	assert.Equal(t, 5, updated.Version)
}

func TestPeriodServiceRolloverRejectsMalformedYear(t *testing.T) {
	svc := NewPeriodService(&fakePeriodStore{period: basePeriod()}, nil, "main", nil, nil)

	start, end := windowTimes()
	for _, year := range []string{"2026-2027", "2026 - 2026", "2026 - 2029", "next year"} {
		_, err := svc.RolloverAcademicYear(context.Background(), RolloverAcademicYearRequest{
			AcademicYear: year,
			StartAt:      start,
			EndAt:        end,
		})
		require.Error(t, err, year)
		appErr := appErrors.FromError(err)
		assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code, year)
	}
}

func TestPeriodServiceAdvanceTermRequiresCompletedTerm(t *testing.T) {
	svc := NewPeriodService(&fakePeriodStore{period: basePeriod()}, nil, "main", nil, nil)

	start, end := windowTimes()
	_, err := svc.AdvanceTerm(context.Background(), AdvanceTermRequest{
		Term:    models.TermMidterm,
		StartAt: start,
		EndAt:   end,
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestPeriodServiceAdvanceTermRejectsSkips(t *testing.T) {
	period := basePeriod()
	period.PrelimDone = true
	svc := NewPeriodService(&fakePeriodStore{period: period}, nil, "main", nil, nil)

	start, end := windowTimes()
	_, err := svc.AdvanceTerm(context.Background(), AdvanceTermRequest{
		Term:    models.TermFinal,
		StartAt: start,
		EndAt:   end,
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestPeriodServiceAdvanceTerm(t *testing.T) {
	period := basePeriod()
	period.PrelimDone = true
	store := &fakePeriodStore{period: period}
	svc := NewPeriodService(store, nil, "main", nil, nil)

	start, end := windowTimes()
	updated, err := svc.AdvanceTerm(context.Background(), AdvanceTermRequest{
		Term:    models.TermMidterm,
		StartAt: start,
		EndAt:   end,
		Version: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, models.TermMidterm, updated.Term)
	assert.True(t, updated.WindowPending)
	assert.Nil(t, updated.LastTickAt)
}

func TestPeriodServiceStaleVersionConflicts(t *testing.T) {
	store := &fakePeriodStore{period: basePeriod(), replaceErr: sql.ErrNoRows}
	svc := NewPeriodService(store, nil, "main", nil, nil)

	_, err := svc.CompleteTerm(context.Background(), CompleteTermRequest{Version: 3})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrStaleVersion.Code, appErr.Code)
}

func TestPeriodServiceCompleteTerm(t *testing.T) {
	start, end := windowTimes()
	period := basePeriod()
	period.WindowActive = true
	period.StartAt = &start
	period.EndAt = &end
	store := &fakePeriodStore{period: period}
	svc := NewPeriodService(store, nil, "main", nil, nil)

	updated, err := svc.CompleteTerm(context.Background(), CompleteTermRequest{Version: 4})
	require.NoError(t, err)
	assert.True(t, updated.PrelimDone)
	assert.False(t, updated.WindowActive)
	assert.Nil(t, updated.StartAt)
	assert.Nil(t, updated.EndAt)

	// Completing the same term again conflicts.
	_, err = svc.CompleteTerm(context.Background(), CompleteTermRequest{Version: 5})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestPeriodServiceSwitchSemesterResetsFlags(t *testing.T) {
	period := basePeriod()
	period.Term = models.TermFinal
	period.PrelimDone = true
	period.MidtermDone = true
	period.FinalDone = true
	store := &fakePeriodStore{period: period}
	svc := NewPeriodService(store, nil, "main", nil, nil)

	start, end := windowTimes()
	updated, err := svc.SwitchSemester(context.Background(), SwitchSemesterRequest{
		Semester: models.SemesterSecond,
		StartAt:  start,
		EndAt:    end,
		Version:  4,
	})
	require.NoError(t, err)
	assert.Equal(t, models.SemesterSecond, updated.Semester)
	assert.Equal(t, models.TermPrelim, updated.Term)
	assert.False(t, updated.PrelimDone)

	// Switching to the semester already current is rejected.
	_, err = svc.SwitchSemester(context.Background(), SwitchSemesterRequest{
		Semester: models.SemesterSecond,
		StartAt:  start,
		EndAt:    end,
		Version:  5,
	})
	require.Error(t, err)
}
