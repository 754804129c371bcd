package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/gradekeeper/registrar-api/internal/models"
)

// GradeRepository persists per-term grade rows.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository creates a new grade repository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

// UpsertValue writes a grade value for an enrollment and term. The returned
// flag reports whether the stored value actually changed, so callers can
// distinguish matched from modified rows.
func (r *GradeRepository) UpsertValue(ctx context.Context, enrollmentID, subjectID string, term models.Term, value float64) (bool, error) {
	now := time.Now().UTC()
	const query = `INSERT INTO grades (id, enrollment_id, subject_id, term, grade_value, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $6)
        ON CONFLICT (enrollment_id, subject_id, term)
        DO UPDATE SET grade_value = EXCLUDED.grade_value, updated_at = EXCLUDED.updated_at
        WHERE grades.grade_value IS DISTINCT FROM EXCLUDED.grade_value`
	result, err := r.db.ExecContext(ctx, query, uuid.NewString(), enrollmentID, subjectID, term, value, now)
	if err != nil {
		return false, fmt.Errorf("upsert grade: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("upsert grade rows: %w", err)
	}
	return affected > 0, nil
}

// SetRemark writes a withdrawal or incomplete remark for an enrollment and term.
func (r *GradeRepository) SetRemark(ctx context.Context, enrollmentID, subjectID string, term models.Term, remark models.Remark) error {
	now := time.Now().UTC()
	const query = `INSERT INTO grades (id, enrollment_id, subject_id, term, remark, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $6)
        ON CONFLICT (enrollment_id, subject_id, term)
        DO UPDATE SET remark = EXCLUDED.remark, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, uuid.NewString(), enrollmentID, subjectID, term, remark, now); err != nil {
		return fmt.Errorf("set remark: %w", err)
	}
	return nil
}

// HasLaterRemark reports whether any term after the given one carries a
// remark for the enrollment. A later remark freezes earlier terms.
func (r *GradeRepository) HasLaterRemark(ctx context.Context, enrollmentID, subjectID string, term models.Term) (bool, error) {
	laterTerms := laterThan(term)
	if len(laterTerms) == 0 {
		return false, nil
	}

	placeholders := make([]string, len(laterTerms))
	args := []interface{}{enrollmentID, subjectID}
	for i, t := range laterTerms {
		placeholders[i] = fmt.Sprintf("$%d", len(args)+1)
		args = append(args, t)
	}
	query := fmt.Sprintf(`SELECT EXISTS (
        SELECT 1 FROM grades
        WHERE enrollment_id = $1 AND subject_id = $2 AND remark IS NOT NULL AND term IN (%s))`,
		strings.Join(placeholders, ","))

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, args...); err != nil {
		return false, fmt.Errorf("check later remark: %w", err)
	}
	return exists, nil
}

// ListBySubject returns the grade sheet for a subject offering, joined with
// enrollment identity for display.
func (r *GradeRepository) ListBySubject(ctx context.Context, filter models.GradeFilter) ([]models.Grade, error) {
	query := `SELECT g.id, g.enrollment_id, g.subject_id, g.term, g.grade_value, g.remark,
        g.created_at, g.updated_at, e.student_id, e.student_name
        FROM grades g
        JOIN enrollments e ON e.id = g.enrollment_id
        WHERE g.subject_id = $1 AND e.academic_year = $2 AND e.semester = $3`
	args := []interface{}{filter.SubjectID, filter.AcademicYear, filter.Semester}
	if filter.Section != "" {
		query += fmt.Sprintf(" AND e.section = $%d", len(args)+1)
		args = append(args, filter.Section)
	}
	if filter.Term != "" {
		query += fmt.Sprintf(" AND g.term = $%d", len(args)+1)
		args = append(args, filter.Term)
	}
	query += " ORDER BY e.student_name ASC, g.term ASC"

	var grades []models.Grade
	if err := r.db.SelectContext(ctx, &grades, query, args...); err != nil {
		return nil, fmt.Errorf("list grades: %w", err)
	}
	return grades, nil
}

func laterThan(term models.Term) []models.Term {
	switch term {
	case models.TermPrelim:
		return []models.Term{models.TermMidterm, models.TermFinal}
	case models.TermMidterm:
		return []models.Term{models.TermFinal}
	default:
		return nil
	}
}
