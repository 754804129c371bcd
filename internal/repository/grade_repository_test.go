package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/gradekeeper/registrar-api/internal/models"
)

func newGradeRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestGradeRepositoryUpsertValueReportsModified(t *testing.T) {
	db, mock, cleanup := newGradeRepoMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO grades")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	modified, err := repo.UpsertValue(context.Background(), "enr-1", "sub-1", models.TermPrelim, 88.5)
	require.NoError(t, err)
	require.True(t, modified)

	// Writing the same value again matches zero rows.
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO grades")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	modified, err = repo.UpsertValue(context.Background(), "enr-1", "sub-1", models.TermPrelim, 88.5)
	require.NoError(t, err)
	require.False(t, modified)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryHasLaterRemark(t *testing.T) {
	db, mock, cleanup := newGradeRepoMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("enr-1", "sub-1", models.TermMidterm, models.TermFinal).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	locked, err := repo.HasLaterRemark(context.Background(), "enr-1", "sub-1", models.TermPrelim)
	require.NoError(t, err)
	require.True(t, locked)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryHasLaterRemarkFinalTerm(t *testing.T) {
	db, mock, cleanup := newGradeRepoMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	// FINAL has no later terms, so no query runs.
	locked, err := repo.HasLaterRemark(context.Background(), "enr-1", "sub-1", models.TermFinal)
	require.NoError(t, err)
	require.False(t, locked)
	require.NoError(t, mock.ExpectationsWereMet())
}
