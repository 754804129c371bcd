package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/gradekeeper/registrar-api/internal/models"
	appErrors "github.com/gradekeeper/registrar-api/pkg/errors"
)

type gradeStore interface {
	UpsertValue(ctx context.Context, enrollmentID, subjectID string, term models.Term, value float64) (bool, error)
	SetRemark(ctx context.Context, enrollmentID, subjectID string, term models.Term, remark models.Remark) error
	HasLaterRemark(ctx context.Context, enrollmentID, subjectID string, term models.Term) (bool, error)
	ListBySubject(ctx context.Context, filter models.GradeFilter) ([]models.Grade, error)
}

type enrollmentResolver interface {
	FindByStudentSubject(ctx context.Context, studentID, subjectID, academicYear string, semester models.Semester) (*models.Enrollment, error)
}

type editGate interface {
	Allow(ctx context.Context, cell models.GradeCell) (bool, error)
}

// BulkGradeEntry is one student row inside a bulk grade write.
type BulkGradeEntry struct {
	StudentID string  `json:"student_id" validate:"required"`
	Value     float64 `json:"value" validate:"gte=0,lte=100"`
}

// BulkUpdateGradesRequest writes grades for many students of one subject
// offering in a single call.
type BulkUpdateGradesRequest struct {
	SubjectID    string           `json:"subject_id" validate:"required"`
	AcademicYear string           `json:"academic_year" validate:"required"`
	Semester     models.Semester  `json:"semester" validate:"required"`
	Department   string           `json:"department" validate:"required"`
	Section      string           `json:"section" validate:"required"`
	Term         models.Term      `json:"term" validate:"required"`
	Entries      []BulkGradeEntry `json:"entries" validate:"required,min=1,dive"`
}

// SetRemarkRequest records a withdrawal or incomplete remark.
type SetRemarkRequest struct {
	StudentID    string          `json:"student_id" validate:"required"`
	SubjectID    string          `json:"subject_id" validate:"required"`
	AcademicYear string          `json:"academic_year" validate:"required"`
	Semester     models.Semester `json:"semester" validate:"required"`
	Department   string          `json:"department" validate:"required"`
	Section      string          `json:"section" validate:"required"`
	Term         models.Term     `json:"term" validate:"required"`
	Remark       models.Remark   `json:"remark" validate:"required"`
}

// GradeService applies grade writes behind the edit gate.
type GradeService struct {
	grades      gradeStore
	enrollments enrollmentResolver
	gate        editGate
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewGradeService creates a new grade service instance.
func NewGradeService(grades gradeStore, enrollments enrollmentResolver, gate editGate, validate *validator.Validate, logger *zap.Logger) *GradeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{grades: grades, enrollments: enrollments, gate: gate, validator: validate, logger: logger}
}

// BulkUpdate writes grade values row by row. Rows are independent: valid
// rows persist even when others fail to resolve, and the result carries
// matched/modified counts plus the students that were skipped.
func (s *GradeService) BulkUpdate(ctx context.Context, req BulkUpdateGradesRequest, actor *models.JWTClaims) (*models.BulkGradeResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk grade payload")
	}
	if !req.Semester.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown semester")
	}
	if !req.Term.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown term")
	}

	if err := s.checkGate(ctx, req.SubjectID, req.Department, req.Section, req.AcademicYear, req.Semester, req.Term, actor); err != nil {
		return nil, err
	}

	result := &models.BulkGradeResult{}
	for _, entry := range req.Entries {
		enrollment, err := s.enrollments.FindByStudentSubject(ctx, entry.StudentID, req.SubjectID, req.AcademicYear, req.Semester)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				result.Missing = append(result.Missing, entry.StudentID)
				continue
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve enrollment")
		}

		locked, err := s.grades.HasLaterRemark(ctx, enrollment.ID, req.SubjectID, req.Term)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check remark lock")
		}
		if locked {
			result.Locked = append(result.Locked, entry.StudentID)
			continue
		}

		modified, err := s.grades.UpsertValue(ctx, enrollment.ID, req.SubjectID, req.Term, entry.Value)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to write grade")
		}
		result.MatchedCount++
		if modified {
			result.ModifiedCount++
		}
	}

	if len(result.Missing) > 0 {
		msg := fmt.Sprintf("%d of %d grade targets were not found", len(result.Missing), len(req.Entries))
		return result, appErrors.Clone(appErrors.ErrPartialWrite, msg)
	}
	return result, nil
}

// SetRemark records a remark for one student, subject to the same gate.
// A remark already present on a later term freezes the earlier term.
func (s *GradeService) SetRemark(ctx context.Context, req SetRemarkRequest, actor *models.JWTClaims) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid remark payload")
	}
	if !req.Semester.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "unknown semester")
	}
	if !req.Term.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "unknown term")
	}
	if !req.Remark.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "unknown remark")
	}

	if err := s.checkGate(ctx, req.SubjectID, req.Department, req.Section, req.AcademicYear, req.Semester, req.Term, actor); err != nil {
		return err
	}

	enrollment, err := s.enrollments.FindByStudentSubject(ctx, req.StudentID, req.SubjectID, req.AcademicYear, req.Semester)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve enrollment")
	}

	locked, err := s.grades.HasLaterRemark(ctx, enrollment.ID, req.SubjectID, req.Term)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check remark lock")
	}
	if locked {
		return appErrors.Clone(appErrors.ErrConflict, "a later term already carries a remark for this student")
	}

	if err := s.grades.SetRemark(ctx, enrollment.ID, req.SubjectID, req.Term, req.Remark); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to write remark")
	}
	return nil
}

// ListBySubject returns a subject's grade sheet.
func (s *GradeService) ListBySubject(ctx context.Context, filter models.GradeFilter) ([]models.Grade, error) {
	if filter.SubjectID == "" || filter.AcademicYear == "" || !filter.Semester.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "subject_id, academic_year and semester are required")
	}
	if filter.Term != "" && !filter.Term.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown term")
	}

	grades, err := s.grades.ListBySubject(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grades")
	}
	return grades, nil
}

func (s *GradeService) checkGate(ctx context.Context, subjectID, department, section, academicYear string, semester models.Semester, term models.Term, actor *models.JWTClaims) error {
	instructorID := ""
	if actor != nil {
		instructorID = actor.UserID
	}

	allowed, err := s.gate.Allow(ctx, models.GradeCell{
		InstructorID: instructorID,
		SubjectID:    subjectID,
		Department:   department,
		Section:      section,
		AcademicYear: academicYear,
		Semester:     semester,
		Term:         term,
	})
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to evaluate edit gate")
	}
	if !allowed {
		return appErrors.Clone(appErrors.ErrWindowClosed, "")
	}
	return nil
}
