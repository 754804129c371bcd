package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/gradekeeper/registrar-api/internal/models"
)

func newRevisionRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func testScope() models.RevisionScope {
	return models.RevisionScope{
		InstructorID: "ins-1",
		SubjectID:    "sub-1",
		AcademicYear: "2025 - 2026",
		Semester:     models.SemesterFirst,
		Department:   "CS",
		Section:      "A",
		Term:         models.TermMidterm,
	}
}

func TestRevisionRepositoryCountActiveByScope(t *testing.T) {
	db, mock, cleanup := newRevisionRepoMock(t)
	defer cleanup()
	repo := NewRevisionRepository(db)

	scope := testScope()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM revision_requests")).
		WithArgs(scope.InstructorID, scope.SubjectID, scope.AcademicYear,
			scope.Semester, scope.Department, scope.Section, scope.Term).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := repo.CountActiveByScope(context.Background(), scope)
	require.NoError(t, err)
	require.Equal(t, 2, count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRevisionRepositoryCloseOnlyTouchesActiveRows(t *testing.T) {
	db, mock, cleanup := newRevisionRepoMock(t)
	defer cleanup()
	repo := NewRevisionRepository(db)

	closedAt := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE revision_requests SET is_active = FALSE")).
		WithArgs("req-1", closedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	affected, err := repo.Close(context.Background(), "req-1", closedAt)
	require.NoError(t, err)
	require.EqualValues(t, 1, affected)

	// Second close matches no rows.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE revision_requests SET is_active = FALSE")).
		WithArgs("req-1", closedAt).
		WillReturnResult(sqlmock.NewResult(0, 0))

	affected, err = repo.Close(context.Background(), "req-1", closedAt)
	require.NoError(t, err)
	require.EqualValues(t, 0, affected)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRevisionRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRevisionRepoMock(t)
	defer cleanup()
	repo := NewRevisionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO revision_requests")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	req := &models.RevisionRequest{
		ID:             "req-1",
		RequestCode:    "abc123",
		InstructorName: "Jane Cruz",
		RevisionScope:  testScope(),
		IsActive:       true,
	}
	require.NoError(t, repo.Create(context.Background(), req))
	require.False(t, req.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}
