package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gradekeeper/registrar-api/internal/models"
)

type fakeRevisionCounter struct {
	count     int
	lastScope models.RevisionScope
}

func (f *fakeRevisionCounter) CountActiveByScope(ctx context.Context, scope models.RevisionScope) (int, error) {
	f.lastScope = scope
	return f.count, nil
}

func currentPeriod() *models.GradingPeriod {
	return &models.GradingPeriod{
		InstitutionID: "main",
		AcademicYear:  "2025 - 2026",
		Semester:      models.SemesterFirst,
		Term:          models.TermMidterm,
		PrelimDone:    true,
	}
}

func gateCell(term models.Term) models.GradeCell {
	return models.GradeCell{
		InstructorID: "ins-1",
		SubjectID:    "sub-1",
		Department:   "CS",
		Section:      "A",
		AcademicYear: "2025 - 2026",
		Semester:     models.SemesterFirst,
		Term:         term,
	}
}

func TestEditGateAllowsCurrentTerm(t *testing.T) {
	gate := NewEditGate(&fakePeriodStore{period: currentPeriod()}, &fakeRevisionCounter{}, "main")

	allowed, err := gate.Allow(context.Background(), gateCell(models.TermMidterm))
	require.NoError(t, err)
	require.True(t, allowed)
}

func TestEditGateBlocksCompletedTerm(t *testing.T) {
	counter := &fakeRevisionCounter{}
	gate := NewEditGate(&fakePeriodStore{period: currentPeriod()}, counter, "main")

	// Prelim is done, so the write falls through to the revision check.
	allowed, err := gate.Allow(context.Background(), gateCell(models.TermPrelim))
	require.NoError(t, err)
	require.False(t, allowed)
	require.Equal(t, models.TermPrelim, counter.lastScope.Term)
}

func TestEditGateBlocksFutureTerm(t *testing.T) {
	gate := NewEditGate(&fakePeriodStore{period: currentPeriod()}, &fakeRevisionCounter{}, "main")

	allowed, err := gate.Allow(context.Background(), gateCell(models.TermFinal))
	require.NoError(t, err)
	require.False(t, allowed)
}

func TestEditGateBlocksOtherSemester(t *testing.T) {
	gate := NewEditGate(&fakePeriodStore{period: currentPeriod()}, &fakeRevisionCounter{}, "main")

	cell := gateCell(models.TermMidterm)
	cell.Semester = models.SemesterSecond
	allowed, err := gate.Allow(context.Background(), cell)
	require.NoError(t, err)
	require.False(t, allowed)
}

func TestEditGateActiveRevisionOverrides(t *testing.T) {
	gate := NewEditGate(&fakePeriodStore{period: currentPeriod()}, &fakeRevisionCounter{count: 1}, "main")

	// Prelim is completed but an active revision request covers the scope.
	allowed, err := gate.Allow(context.Background(), gateCell(models.TermPrelim))
	require.NoError(t, err)
	require.True(t, allowed)
}
