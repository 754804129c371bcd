package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradekeeper/registrar-api/internal/models"
	appErrors "github.com/gradekeeper/registrar-api/pkg/errors"
)

type fakeRevisionStore struct {
	requests   map[string]*models.RevisionRequest
	activeHits int
}

func newFakeRevisionStore() *fakeRevisionStore {
	return &fakeRevisionStore{requests: make(map[string]*models.RevisionRequest)}
}

func (f *fakeRevisionStore) Create(ctx context.Context, req *models.RevisionRequest) error {
	f.requests[req.ID] = req
	return nil
}

func (f *fakeRevisionStore) FindByID(ctx context.Context, id string) (*models.RevisionRequest, error) {
	req, ok := f.requests[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *req
	return &clone, nil
}

func (f *fakeRevisionStore) CountActiveByScope(ctx context.Context, scope models.RevisionScope) (int, error) {
	count := 0
	for _, req := range f.requests {
		if req.IsActive && req.RevisionScope == scope {
			count++
		}
	}
	f.activeHits++
	return count, nil
}

func (f *fakeRevisionStore) Close(ctx context.Context, id string, closedAt time.Time) (int64, error) {
	req, ok := f.requests[id]
	if !ok || !req.IsActive {
		return 0, nil
	}
	req.IsActive = false
	req.ClosedAt = &closedAt
	return 1, nil
}

func (f *fakeRevisionStore) List(ctx context.Context, filter models.RevisionFilter) ([]models.RevisionRequest, int, error) {
	var result []models.RevisionRequest
	for _, req := range f.requests {
		if filter.ActiveOnly && !req.IsActive {
			continue
		}
		if filter.InstructorID != "" && req.InstructorID != filter.InstructorID {
			continue
		}
		result = append(result, *req)
	}
	return result, len(result), nil
}

func openRequest() OpenRevisionRequest {
	return OpenRevisionRequest{
		InstructorID:   "ins-1",
		InstructorName: "Jane Cruz",
		SubjectID:      "sub-1",
		AcademicYear:   "2025 - 2026",
		Semester:       models.SemesterFirst,
		Department:     "CS",
		Section:        "A",
		Term:           models.TermPrelim,
	}
}

func TestRevisionServiceOpen(t *testing.T) {
	store := newFakeRevisionStore()
	svc := NewRevisionService(store, nil, nil)

	request, err := svc.Open(context.Background(), openRequest())
	require.NoError(t, err)
	assert.True(t, request.IsActive)
	assert.NotEmpty(t, request.ID)
	assert.NotEmpty(t, request.RequestCode)
	assert.Equal(t, "ins-1", request.InstructorID)
}

func TestRevisionServiceOpenDuplicateScopeConflicts(t *testing.T) {
	store := newFakeRevisionStore()
	svc := NewRevisionService(store, nil, nil)

	_, err := svc.Open(context.Background(), openRequest())
	require.NoError(t, err)

	_, err = svc.Open(context.Background(), openRequest())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestRevisionServiceOpenDifferentTermAllowed(t *testing.T) {
	store := newFakeRevisionStore()
	svc := NewRevisionService(store, nil, nil)

	_, err := svc.Open(context.Background(), openRequest())
	require.NoError(t, err)

	other := openRequest()
	other.Term = models.TermMidterm
	_, err = svc.Open(context.Background(), other)
	require.NoError(t, err)
}

func TestRevisionServiceListByInstructor(t *testing.T) {
	store := newFakeRevisionStore()
	svc := NewRevisionService(store, nil, nil)

	_, err := svc.Open(context.Background(), openRequest())
	require.NoError(t, err)

	other := openRequest()
	other.InstructorID = "ins-2"
	other.Section = "B"
	_, err = svc.Open(context.Background(), other)
	require.NoError(t, err)

	requests, pagination, err := svc.ListByInstructor(context.Background(), "ins-1", models.RevisionFilter{})
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, "ins-1", requests[0].InstructorID)
	assert.Equal(t, 1, pagination.TotalCount)
}

func TestRevisionServiceListByInstructorRequiresID(t *testing.T) {
	svc := NewRevisionService(newFakeRevisionStore(), nil, nil)

	_, _, err := svc.ListByInstructor(context.Background(), "", models.RevisionFilter{})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestNewRequestCodeDrawsFromFullAlphabet(t *testing.T) {
	seen := make(map[byte]bool)
	for i := 0; i < 2000; i++ {
		code := newRequestCode()
		require.Len(t, code, 6)
		for j := 0; j < len(code); j++ {
			require.Contains(t, requestCodeAlphabet, string(code[j]))
			seen[code[j]] = true
		}
	}
	// 12000 uniform draws leave no symbol unseen.
	assert.Len(t, seen, len(requestCodeAlphabet))
}

func TestRevisionServiceCloseUnknownID(t *testing.T) {
	svc := NewRevisionService(newFakeRevisionStore(), nil, nil)

	_, err := svc.Close(context.Background(), "missing")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestRevisionServiceCloseTwiceIsNoOp(t *testing.T) {
	store := newFakeRevisionStore()
	svc := NewRevisionService(store, nil, nil)

	request, err := svc.Open(context.Background(), openRequest())
	require.NoError(t, err)

	closed, err := svc.Close(context.Background(), request.ID)
	require.NoError(t, err)
	assert.False(t, closed.IsActive)
	assert.NotNil(t, closed.ClosedAt)

	// A second close still succeeds and reports the closed state.
	again, err := svc.Close(context.Background(), request.ID)
	require.NoError(t, err)
	assert.False(t, again.IsActive)
}
