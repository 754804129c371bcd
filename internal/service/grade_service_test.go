package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradekeeper/registrar-api/internal/models"
	appErrors "github.com/gradekeeper/registrar-api/pkg/errors"
)

type fakeGradeStore struct {
	values  map[string]float64
	remarks map[string]models.Remark
	locked  map[string]bool
}

func newFakeGradeStore() *fakeGradeStore {
	return &fakeGradeStore{
		values:  make(map[string]float64),
		remarks: make(map[string]models.Remark),
		locked:  make(map[string]bool),
	}
}

func gradeKey(enrollmentID string, term models.Term) string {
	return enrollmentID + "/" + string(term)
}

func (f *fakeGradeStore) UpsertValue(ctx context.Context, enrollmentID, subjectID string, term models.Term, value float64) (bool, error) {
	key := gradeKey(enrollmentID, term)
	prev, ok := f.values[key]
	f.values[key] = value
	return !ok || prev != value, nil
}

func (f *fakeGradeStore) SetRemark(ctx context.Context, enrollmentID, subjectID string, term models.Term, remark models.Remark) error {
	f.remarks[gradeKey(enrollmentID, term)] = remark
	return nil
}

func (f *fakeGradeStore) HasLaterRemark(ctx context.Context, enrollmentID, subjectID string, term models.Term) (bool, error) {
	return f.locked[enrollmentID], nil
}

func (f *fakeGradeStore) ListBySubject(ctx context.Context, filter models.GradeFilter) ([]models.Grade, error) {
	return nil, nil
}

type fakeEnrollmentResolver struct {
	byStudent map[string]*models.Enrollment
}

func (f *fakeEnrollmentResolver) FindByStudentSubject(ctx context.Context, studentID, subjectID, academicYear string, semester models.Semester) (*models.Enrollment, error) {
	if e, ok := f.byStudent[studentID]; ok {
		return e, nil
	}
	return nil, sql.ErrNoRows
}

type fakeGate struct {
	allowed  bool
	lastCell models.GradeCell
}

func (f *fakeGate) Allow(ctx context.Context, cell models.GradeCell) (bool, error) {
	f.lastCell = cell
	return f.allowed, nil
}

func bulkRequest(entries ...BulkGradeEntry) BulkUpdateGradesRequest {
	return BulkUpdateGradesRequest{
		SubjectID:    "sub-1",
		AcademicYear: "2025 - 2026",
		Semester:     models.SemesterFirst,
		Department:   "CS",
		Section:      "A",
		Term:         models.TermPrelim,
		Entries:      entries,
	}
}

func newGradeFixture(allowed bool) (*GradeService, *fakeGradeStore, *fakeGate) {
	grades := newFakeGradeStore()
	enrollments := &fakeEnrollmentResolver{byStudent: map[string]*models.Enrollment{
		"stu-1": {ID: "enr-1", StudentID: "stu-1"},
		"stu-2": {ID: "enr-2", StudentID: "stu-2"},
	}}
	gate := &fakeGate{allowed: allowed}
	svc := NewGradeService(grades, enrollments, gate, nil, nil)
	return svc, grades, gate
}

func testActor() *models.JWTClaims {
	return &models.JWTClaims{UserID: "ins-1", Role: models.RoleInstructor}
}

func TestGradeServiceBulkUpdate(t *testing.T) {
	svc, grades, gate := newGradeFixture(true)

	result, err := svc.BulkUpdate(context.Background(), bulkRequest(
		BulkGradeEntry{StudentID: "stu-1", Value: 88},
		BulkGradeEntry{StudentID: "stu-2", Value: 91.5},
	), testActor())
	require.NoError(t, err)
	assert.Equal(t, 2, result.MatchedCount)
	assert.Equal(t, 2, result.ModifiedCount)
	assert.Empty(t, result.Missing)
	assert.Equal(t, 88.0, grades.values["enr-1/PRELIM"])
	assert.Equal(t, "ins-1", gate.lastCell.InstructorID)
}

func TestGradeServiceBulkUpdateUnchangedValueNotModified(t *testing.T) {
	svc, _, _ := newGradeFixture(true)

	req := bulkRequest(BulkGradeEntry{StudentID: "stu-1", Value: 88})
	_, err := svc.BulkUpdate(context.Background(), req, testActor())
	require.NoError(t, err)

	result, err := svc.BulkUpdate(context.Background(), req, testActor())
	require.NoError(t, err)
	assert.Equal(t, 1, result.MatchedCount)
	assert.Equal(t, 0, result.ModifiedCount)
}

func TestGradeServiceBulkUpdatePartialWrite(t *testing.T) {
	svc, grades, _ := newGradeFixture(true)

	result, err := svc.BulkUpdate(context.Background(), bulkRequest(
		BulkGradeEntry{StudentID: "stu-1", Value: 75},
		BulkGradeEntry{StudentID: "ghost", Value: 80},
	), testActor())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrPartialWrite.Code, appErr.Code)

	// The resolvable row persisted anyway.
	require.NotNil(t, result)
	assert.Equal(t, 1, result.MatchedCount)
	assert.Equal(t, []string{"ghost"}, result.Missing)
	assert.Equal(t, 75.0, grades.values["enr-1/PRELIM"])
}

func TestGradeServiceBulkUpdateWindowClosed(t *testing.T) {
	svc, grades, _ := newGradeFixture(false)

	_, err := svc.BulkUpdate(context.Background(), bulkRequest(
		BulkGradeEntry{StudentID: "stu-1", Value: 88},
	), testActor())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrWindowClosed.Code, appErr.Code)
	assert.Empty(t, grades.values)
}

func TestGradeServiceBulkUpdateLockedStudentSkipped(t *testing.T) {
	svc, grades, _ := newGradeFixture(true)
	grades.locked["enr-2"] = true

	result, err := svc.BulkUpdate(context.Background(), bulkRequest(
		BulkGradeEntry{StudentID: "stu-1", Value: 88},
		BulkGradeEntry{StudentID: "stu-2", Value: 90},
	), testActor())
	require.NoError(t, err)
	assert.Equal(t, 1, result.MatchedCount)
	assert.Equal(t, []string{"stu-2"}, result.Locked)
	assert.NotContains(t, grades.values, "enr-2/PRELIM")
}

func remarkRequest() SetRemarkRequest {
	return SetRemarkRequest{
		StudentID:    "stu-1",
		SubjectID:    "sub-1",
		AcademicYear: "2025 - 2026",
		Semester:     models.SemesterFirst,
		Department:   "CS",
		Section:      "A",
		Term:         models.TermPrelim,
		Remark:       models.RemarkWithdrawn,
	}
}

func TestGradeServiceSetRemark(t *testing.T) {
	svc, grades, _ := newGradeFixture(true)

	require.NoError(t, svc.SetRemark(context.Background(), remarkRequest(), testActor()))
	assert.Equal(t, models.RemarkWithdrawn, grades.remarks["enr-1/PRELIM"])
}

func TestGradeServiceSetRemarkBlockedByLaterRemark(t *testing.T) {
	svc, grades, _ := newGradeFixture(true)
	grades.locked["enr-1"] = true

	err := svc.SetRemark(context.Background(), remarkRequest(), testActor())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}
