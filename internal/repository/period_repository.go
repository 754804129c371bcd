package repository

import (
	"context"
	"fmt"
	"time"

	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/gradekeeper/registrar-api/internal/models"
)

// PeriodRepository persists the per-institution grading period record.
type PeriodRepository struct {
	db *sqlx.DB
}

// NewPeriodRepository creates a new period repository.
func NewPeriodRepository(db *sqlx.DB) *PeriodRepository {
	return &PeriodRepository{db: db}
}

// Get loads the grading period for an institution.
func (r *PeriodRepository) Get(ctx context.Context, institutionID string) (*models.GradingPeriod, error) {
	const query = `SELECT institution_id, academic_year, semester, term,
        prelim_done, midterm_done, final_done,
        window_pending, window_active, start_at, end_at, last_tick_at,
        version, created_at, updated_at
        FROM grading_periods WHERE institution_id = $1 LIMIT 1`
	var period models.GradingPeriod
	if err := r.db.GetContext(ctx, &period, query, institutionID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get grading period: %w", err)
	}
	return &period, nil
}

// Replace writes the full period record guarded by the version the caller
// read. Zero rows matched means the row changed underneath the caller and
// is surfaced as sql.ErrNoRows. On success the in-memory version advances.
func (r *PeriodRepository) Replace(ctx context.Context, period *models.GradingPeriod) error {
	period.UpdatedAt = time.Now().UTC()
	const query = `UPDATE grading_periods SET
        academic_year = :academic_year,
        semester = :semester,
        term = :term,
        prelim_done = :prelim_done,
        midterm_done = :midterm_done,
        final_done = :final_done,
        window_pending = :window_pending,
        window_active = :window_active,
        start_at = :start_at,
        end_at = :end_at,
        last_tick_at = :last_tick_at,
        version = :version + 1,
        updated_at = :updated_at
        WHERE institution_id = :institution_id AND version = :version`
	result, err := r.db.NamedExecContext(ctx, query, period)
	if err != nil {
		return fmt.Errorf("replace grading period: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("replace grading period rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	period.Version++
	return nil
}
