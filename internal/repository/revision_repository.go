package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/gradekeeper/registrar-api/internal/models"
)

// RevisionRepository persists revision requests.
type RevisionRepository struct {
	db *sqlx.DB
}

// NewRevisionRepository creates a new revision repository.
func NewRevisionRepository(db *sqlx.DB) *RevisionRepository {
	return &RevisionRepository{db: db}
}

const revisionColumns = `id, request_code, instructor_id, instructor_name, subject_id,
    academic_year, semester, department, section, term, is_active, created_at, closed_at`

// Create inserts a new revision request.
func (r *RevisionRepository) Create(ctx context.Context, req *models.RevisionRequest) error {
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO revision_requests (id, request_code, instructor_id, instructor_name,
        subject_id, academic_year, semester, department, section, term, is_active, created_at)
        VALUES (:id, :request_code, :instructor_id, :instructor_name,
        :subject_id, :academic_year, :semester, :department, :section, :term, :is_active, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, req); err != nil {
		return fmt.Errorf("create revision request: %w", err)
	}
	return nil
}

// FindByID returns a revision request by identifier.
func (r *RevisionRepository) FindByID(ctx context.Context, id string) (*models.RevisionRequest, error) {
	query := `SELECT ` + revisionColumns + ` FROM revision_requests WHERE id = $1 LIMIT 1`
	var req models.RevisionRequest
	if err := r.db.GetContext(ctx, &req, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find revision request: %w", err)
	}
	return &req, nil
}

// CountActiveByScope counts active requests over the full scope tuple.
// Every active match blocks, not just the first one fetched.
func (r *RevisionRepository) CountActiveByScope(ctx context.Context, scope models.RevisionScope) (int, error) {
	const query = `SELECT COUNT(*) FROM revision_requests
        WHERE instructor_id = $1 AND subject_id = $2 AND academic_year = $3
        AND semester = $4 AND department = $5 AND section = $6 AND term = $7
        AND is_active = TRUE`
	var count int
	if err := r.db.GetContext(ctx, &count, query,
		scope.InstructorID, scope.SubjectID, scope.AcademicYear,
		scope.Semester, scope.Department, scope.Section, scope.Term); err != nil {
		return 0, fmt.Errorf("count active revision requests: %w", err)
	}
	return count, nil
}

// Close deactivates a revision request. Returns the number of rows touched;
// closing an already-closed request touches zero rows.
func (r *RevisionRepository) Close(ctx context.Context, id string, closedAt time.Time) (int64, error) {
	const query = `UPDATE revision_requests SET is_active = FALSE, closed_at = $2
        WHERE id = $1 AND is_active = TRUE`
	result, err := r.db.ExecContext(ctx, query, id, closedAt)
	if err != nil {
		return 0, fmt.Errorf("close revision request: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("close revision request rows: %w", err)
	}
	return affected, nil
}

// List returns revision requests matching the filter with a total count.
func (r *RevisionRepository) List(ctx context.Context, filter models.RevisionFilter) ([]models.RevisionRequest, int, error) {
	baseQuery := `FROM revision_requests WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.InstructorID != "" {
		conditions = append(conditions, fmt.Sprintf("instructor_id = $%d", len(args)+1))
		args = append(args, filter.InstructorID)
	}
	if filter.SubjectID != "" {
		conditions = append(conditions, fmt.Sprintf("subject_id = $%d", len(args)+1))
		args = append(args, filter.SubjectID)
	}
	if filter.AcademicYear != "" {
		conditions = append(conditions, fmt.Sprintf("academic_year = $%d", len(args)+1))
		args = append(args, filter.AcademicYear)
	}
	if filter.Semester != "" {
		conditions = append(conditions, fmt.Sprintf("semester = $%d", len(args)+1))
		args = append(args, filter.Semester)
	}
	if filter.Term != "" {
		conditions = append(conditions, fmt.Sprintf("term = $%d", len(args)+1))
		args = append(args, filter.Term)
	}
	if filter.ActiveOnly {
		conditions = append(conditions, "is_active = TRUE")
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+baseQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count revision requests: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}

	query := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		revisionColumns, baseQuery, len(args)+1, len(args)+2)
	args = append(args, size, (page-1)*size)

	var requests []models.RevisionRequest
	if err := r.db.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list revision requests: %w", err)
	}
	return requests, total, nil
}
