package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/gradekeeper/registrar-api/internal/models"
	appErrors "github.com/gradekeeper/registrar-api/pkg/errors"
)

type enrollmentStore interface {
	Create(ctx context.Context, enrollment *models.Enrollment) error
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
	FindByStudentSubject(ctx context.Context, studentID, subjectID, academicYear string, semester models.Semester) (*models.Enrollment, error)
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.Enrollment, int, error)
	Delete(ctx context.Context, id string) (int64, error)
}

// CreateEnrollmentRequest enrolls a student into a subject offering.
type CreateEnrollmentRequest struct {
	StudentID    string          `json:"student_id" validate:"required"`
	StudentName  string          `json:"student_name" validate:"required"`
	SubjectID    string          `json:"subject_id" validate:"required"`
	AcademicYear string          `json:"academic_year" validate:"required"`
	Semester     models.Semester `json:"semester" validate:"required"`
	Department   string          `json:"department" validate:"required"`
	Section      string          `json:"section" validate:"required"`
}

// EnrollmentService manages enrollment records.
type EnrollmentService struct {
	repo      enrollmentStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService creates a new enrollment service instance.
func NewEnrollmentService(repo enrollmentStore, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{repo: repo, validator: validate, logger: logger}
}

// Create enrolls a student, rejecting duplicates for the same offering.
func (s *EnrollmentService) Create(ctx context.Context, req CreateEnrollmentRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}
	if !req.Semester.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown semester")
	}

	existing, err := s.repo.FindByStudentSubject(ctx, req.StudentID, req.SubjectID, req.AcademicYear, req.Semester)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing enrollment")
	}
	if existing != nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "student is already enrolled in this subject")
	}

	enrollment := &models.Enrollment{
		StudentID:    req.StudentID,
		StudentName:  req.StudentName,
		SubjectID:    req.SubjectID,
		AcademicYear: req.AcademicYear,
		Semester:     req.Semester,
		Department:   req.Department,
		Section:      req.Section,
	}

	if err := s.repo.Create(ctx, enrollment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create enrollment")
	}
	return enrollment, nil
}

// List returns enrollments with pagination.
func (s *EnrollmentService) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.Enrollment, *models.Pagination, error) {
	enrollments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
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
	return enrollments, pagination, nil
}

// Delete removes an enrollment record.
func (s *EnrollmentService) Delete(ctx context.Context, id string) error {
	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete enrollment")
	}
	if affected == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
	}
	return nil
}
