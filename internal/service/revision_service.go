package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"math/big"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gradekeeper/registrar-api/internal/models"
	appErrors "github.com/gradekeeper/registrar-api/pkg/errors"
)

type revisionStore interface {
	Create(ctx context.Context, req *models.RevisionRequest) error
	FindByID(ctx context.Context, id string) (*models.RevisionRequest, error)
	CountActiveByScope(ctx context.Context, scope models.RevisionScope) (int, error)
	Close(ctx context.Context, id string, closedAt time.Time) (int64, error)
	List(ctx context.Context, filter models.RevisionFilter) ([]models.RevisionRequest, int, error)
}

// OpenRevisionRequest describes the scope a registrar wants to reopen.
type OpenRevisionRequest struct {
	InstructorID   string          `json:"instructor_id" validate:"required"`
	InstructorName string          `json:"instructor_name" validate:"required"`
	SubjectID      string          `json:"subject_id" validate:"required"`
	AcademicYear   string          `json:"academic_year" validate:"required"`
	Semester       models.Semester `json:"semester" validate:"required"`
	Department     string          `json:"department" validate:"required"`
	Section        string          `json:"section" validate:"required"`
	Term           models.Term     `json:"term" validate:"required"`
}

// RevisionService manages the revision request lifecycle.
type RevisionService struct {
	repo      revisionStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRevisionService creates a new revision service instance.
func NewRevisionService(repo revisionStore, validate *validator.Validate, logger *zap.Logger) *RevisionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RevisionService{repo: repo, validator: validate, logger: logger}
}

// Open grants a revision window for the given scope. Any existing active
// request over the same scope blocks creation.
func (s *RevisionService) Open(ctx context.Context, req OpenRevisionRequest) (*models.RevisionRequest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid revision request payload")
	}
	if !req.Semester.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown semester")
	}
	if !req.Term.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown term")
	}

	scope := models.RevisionScope{
		InstructorID: req.InstructorID,
		SubjectID:    req.SubjectID,
		AcademicYear: req.AcademicYear,
		Semester:     req.Semester,
		Department:   req.Department,
		Section:      req.Section,
		Term:         req.Term,
	}

	count, err := s.repo.CountActiveByScope(ctx, scope)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing revision requests")
	}
	if count > 0 {
		return nil, appErrors.Clone(appErrors.ErrConflict, "an active revision request already covers this scope")
	}

	request := &models.RevisionRequest{
		ID:             uuid.NewString(),
		RequestCode:    newRequestCode(),
		InstructorName: req.InstructorName,
		RevisionScope:  scope,
		IsActive:       true,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create revision request")
	}

	s.logger.Info("revision request opened",
		zap.String("request_id", request.ID),
		zap.String("instructor_id", request.InstructorID),
		zap.String("subject_id", request.SubjectID),
		zap.String("term", string(request.Term)))
	return request, nil
}

// Close deactivates a revision request. Closing an already-closed request
// is a no-op that still succeeds; an unknown id is a not-found error.
func (s *RevisionService) Close(ctx context.Context, id string) (*models.RevisionRequest, error) {
	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "revision request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load revision request")
	}

	closedAt := time.Now().UTC()
	affected, err := s.repo.Close(ctx, id, closedAt)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to close revision request")
	}
	if affected > 0 {
		request.IsActive = false
		request.ClosedAt = &closedAt
	}
	return request, nil
}

// List returns revision requests with pagination.
func (s *RevisionService) List(ctx context.Context, filter models.RevisionFilter) ([]models.RevisionRequest, *models.Pagination, error) {
	requests, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list revision requests")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}

	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return requests, pagination, nil
}

// ListByInstructor returns the requests granted to a single instructor,
// ignoring any instructor filter supplied by the caller.
func (s *RevisionService) ListByInstructor(ctx context.Context, instructorID string, filter models.RevisionFilter) ([]models.RevisionRequest, *models.Pagination, error) {
	if instructorID == "" {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "instructor id is required")
	}
	filter.InstructorID = instructorID
	return s.List(ctx, filter)
}

const requestCodeAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// newRequestCode generates a short base-36 display code. Uniqueness is not
// guaranteed; the uuid primary key is the real identity.
func newRequestCode() string {
	buf := make([]byte, 6)
	max := big.NewInt(int64(len(requestCodeAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return uuid.NewString()[:6]
		}
		buf[i] = requestCodeAlphabet[n.Int64()]
	}
	return string(buf)
}
