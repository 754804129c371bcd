package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/gradekeeper/registrar-api/internal/models"
)

func newPeriodRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestPeriodRepositoryGet(t *testing.T) {
	db, mock, cleanup := newPeriodRepoMock(t)
	defer cleanup()
	repo := NewPeriodRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"institution_id", "academic_year", "semester", "term",
		"prelim_done", "midterm_done", "final_done",
		"window_pending", "window_active", "start_at", "end_at", "last_tick_at",
		"version", "created_at", "updated_at",
	}).AddRow("main", "2025 - 2026", models.SemesterFirst, models.TermMidterm,
		true, false, false, false, true, now, now.Add(time.Hour), nil, 7, now, now)

	mock.ExpectQuery("SELECT institution_id, academic_year").
		WithArgs("main").
		WillReturnRows(rows)

	period, err := repo.Get(context.Background(), "main")
	require.NoError(t, err)
	require.Equal(t, models.TermMidterm, period.Term)
	require.True(t, period.PrelimDone)
	require.Equal(t, 7, period.Version)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPeriodRepositoryReplaceBumpsVersion(t *testing.T) {
	db, mock, cleanup := newPeriodRepoMock(t)
	defer cleanup()
	repo := NewPeriodRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE grading_periods SET")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	period := &models.GradingPeriod{InstitutionID: "main", AcademicYear: "2025 - 2026", Version: 3}
	err := repo.Replace(context.Background(), period)
	require.NoError(t, err)
	require.Equal(t, 4, period.Version)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPeriodRepositoryReplaceStaleVersion(t *testing.T) {
	db, mock, cleanup := newPeriodRepoMock(t)
	defer cleanup()
	repo := NewPeriodRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE grading_periods SET")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	period := &models.GradingPeriod{InstitutionID: "main", Version: 3}
	err := repo.Replace(context.Background(), period)
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.Equal(t, 3, period.Version)
	require.NoError(t, mock.ExpectationsWereMet())
}
