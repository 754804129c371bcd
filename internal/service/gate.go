package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/gradekeeper/registrar-api/internal/models"
)

type gateRevisionReader interface {
	CountActiveByScope(ctx context.Context, scope models.RevisionScope) (int, error)
}

// EditGate decides whether a grade cell may be written. It is evaluated
// on the server before every grade write; any client-side check is
// advisory only.
type EditGate struct {
	periods       periodStore
	revisions     gateRevisionReader
	institutionID string
}

// NewEditGate constructs the gate.
func NewEditGate(periods periodStore, revisions gateRevisionReader, institutionID string) *EditGate {
	return &EditGate{periods: periods, revisions: revisions, institutionID: institutionID}
}

// Allow reports whether the cell is editable: either the cell falls inside
// the current grading period and its term is not closed out, or an active
// revision request matches the full scope exactly.
func (g *EditGate) Allow(ctx context.Context, cell models.GradeCell) (bool, error) {
	period, err := g.periods.Get(ctx, g.institutionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("gate: load grading period: %w", err)
	}

	if cell.AcademicYear == period.AcademicYear &&
		cell.Semester == period.Semester &&
		cell.Term.Index() >= 0 &&
		cell.Term.Index() <= period.Term.Index() &&
		!period.TermDone(cell.Term) {
		return true, nil
	}

	count, err := g.revisions.CountActiveByScope(ctx, models.RevisionScope{
		InstructorID: cell.InstructorID,
		SubjectID:    cell.SubjectID,
		AcademicYear: cell.AcademicYear,
		Semester:     cell.Semester,
		Department:   cell.Department,
		Section:      cell.Section,
		Term:         cell.Term,
	})
	if err != nil {
		return false, fmt.Errorf("gate: check revision requests: %w", err)
	}
	return count > 0, nil
}
