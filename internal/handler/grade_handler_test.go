package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradekeeper/registrar-api/internal/middleware"
	"github.com/gradekeeper/registrar-api/internal/models"
	"github.com/gradekeeper/registrar-api/internal/service"
)

type gradeStoreMock struct {
	values map[string]float64
}

func (m *gradeStoreMock) UpsertValue(ctx context.Context, enrollmentID, subjectID string, term models.Term, value float64) (bool, error) {
	if m.values == nil {
		m.values = make(map[string]float64)
	}
	m.values[enrollmentID] = value
	return true, nil
}

func (m *gradeStoreMock) SetRemark(ctx context.Context, enrollmentID, subjectID string, term models.Term, remark models.Remark) error {
	return nil
}

func (m *gradeStoreMock) HasLaterRemark(ctx context.Context, enrollmentID, subjectID string, term models.Term) (bool, error) {
	return false, nil
}

func (m *gradeStoreMock) ListBySubject(ctx context.Context, filter models.GradeFilter) ([]models.Grade, error) {
	return nil, nil
}

type enrollmentResolverMock struct {
	known map[string]string
}

func (m *enrollmentResolverMock) FindByStudentSubject(ctx context.Context, studentID, subjectID, academicYear string, semester models.Semester) (*models.Enrollment, error) {
	if id, ok := m.known[studentID]; ok {
		return &models.Enrollment{ID: id, StudentID: studentID}, nil
	}
	return nil, sql.ErrNoRows
}

type gateMock struct {
	allowed bool
}

func (m *gateMock) Allow(ctx context.Context, cell models.GradeCell) (bool, error) {
	return m.allowed, nil
}

func newGradeHandlerTest(allowed bool) *GradeHandler {
	svc := service.NewGradeService(
		&gradeStoreMock{},
		&enrollmentResolverMock{known: map[string]string{"stu-1": "enr-1"}},
		&gateMock{allowed: allowed},
		nil, nil)
	return NewGradeHandler(svc)
}

func bulkBody(t *testing.T, students ...string) *bytes.Reader {
	entries := make([]service.BulkGradeEntry, len(students))
	for i, s := range students {
		entries[i] = service.BulkGradeEntry{StudentID: s, Value: 85}
	}
	body, err := json.Marshal(service.BulkUpdateGradesRequest{
		SubjectID:    "sub-1",
		AcademicYear: "2025 - 2026",
		Semester:     models.SemesterFirst,
		Department:   "CS",
		Section:      "A",
		Term:         models.TermPrelim,
		Entries:      entries,
	})
	require.NoError(t, err)
	return bytes.NewReader(body)
}

func performBulk(t *testing.T, handler *GradeHandler, body *bytes.Reader) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(http.MethodPut, "/grades/bulk", body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "ins-1", Role: models.RoleInstructor})
	handler.BulkUpdate(c)
	return w
}

func TestGradeHandlerBulkUpdate(t *testing.T) {
	w := performBulk(t, newGradeHandlerTest(true), bulkBody(t, "stu-1"))
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data models.BulkGradeResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, 1, envelope.Data.MatchedCount)
}

func TestGradeHandlerBulkUpdatePartialWriteCarriesResult(t *testing.T) {
	w := performBulk(t, newGradeHandlerTest(true), bulkBody(t, "stu-1", "ghost"))
	require.Equal(t, http.StatusNotFound, w.Code)

	var envelope struct {
		Data *models.BulkGradeResult `json:"data"`
		Error *struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "PARTIAL_WRITE", envelope.Error.Code)
	require.NotNil(t, envelope.Data)
	assert.Equal(t, 1, envelope.Data.MatchedCount)
	assert.Equal(t, []string{"ghost"}, envelope.Data.Missing)
}

func TestGradeHandlerBulkUpdateWindowClosed(t *testing.T) {
	w := performBulk(t, newGradeHandlerTest(false), bulkBody(t, "stu-1"))
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestGradeHandlerBulkUpdateInvalidBody(t *testing.T) {
	w := performBulk(t, newGradeHandlerTest(true), bytes.NewReader([]byte(`invalid`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
