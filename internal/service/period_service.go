package service

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/gradekeeper/registrar-api/internal/models"
	appErrors "github.com/gradekeeper/registrar-api/pkg/errors"
)

type periodStore interface {
	Get(ctx context.Context, institutionID string) (*models.GradingPeriod, error)
	Replace(ctx context.Context, period *models.GradingPeriod) error
}

var academicYearPattern = regexp.MustCompile(`^\d{4} - \d{4}$`)

// RolloverAcademicYearRequest starts a fresh academic year.
type RolloverAcademicYearRequest struct {
	AcademicYear string    `json:"academic_year" validate:"required"`
	StartAt      time.Time `json:"start_at" validate:"required"`
	EndAt        time.Time `json:"end_at" validate:"required"`
	Version      int       `json:"version"`
}

// AdvanceTermRequest moves to the next term within the current semester.
type AdvanceTermRequest struct {
	Term    models.Term `json:"term" validate:"required"`
	StartAt time.Time   `json:"start_at" validate:"required"`
	EndAt   time.Time   `json:"end_at" validate:"required"`
	Version int         `json:"version"`
}

// SwitchSemesterRequest flips to the other semester of the current year.
type SwitchSemesterRequest struct {
	Semester models.Semester `json:"semester" validate:"required"`
	StartAt  time.Time       `json:"start_at" validate:"required"`
	EndAt    time.Time       `json:"end_at" validate:"required"`
	Version  int             `json:"version"`
}

// CompleteTermRequest closes out the currently active term.
type CompleteTermRequest struct {
	Version int `json:"version"`
}

// PeriodService orchestrates grading-period transitions.
type PeriodService struct {
	repo          periodStore
	cache         *CacheService
	institutionID string
	validator     *validator.Validate
	logger        *zap.Logger
}

// NewPeriodService creates a new period service instance.
func NewPeriodService(repo periodStore, cache *CacheService, institutionID string, validate *validator.Validate, logger *zap.Logger) *PeriodService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PeriodService{repo: repo, cache: cache, institutionID: institutionID, validator: validate, logger: logger}
}

func periodCacheKey(institutionID string) string {
	return "grading_period:" + institutionID
}

// Current returns the grading period, served from cache when possible.
func (s *PeriodService) Current(ctx context.Context) (*models.GradingPeriod, error) {
	key := periodCacheKey(s.institutionID)
	if s.cache.Enabled() {
		var cached models.GradingPeriod
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	period, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache.Enabled() {
		if err := s.cache.Set(ctx, key, period); err != nil {
			s.logger.Warn("failed to cache grading period", zap.Error(err))
		}
	}
	return period, nil
}

// WindowStatus returns the scheduling projection of the current period.
func (s *PeriodService) WindowStatus(ctx context.Context) (*models.WindowStatus, error) {
	period, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	window := period.Window()
	return &window, nil
}

// RolloverAcademicYear starts a new academic year: first semester, prelim
// term, all completion flags cleared, fresh window.
func (s *PeriodService) RolloverAcademicYear(ctx context.Context, req RolloverAcademicYearRequest) (*models.GradingPeriod, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid academic year payload")
	}
	if err := validateAcademicYear(req.AcademicYear); err != nil {
		return nil, err
	}
	if !req.StartAt.Before(req.EndAt) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start_at must be before end_at")
	}

	period, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if period.AcademicYear == req.AcademicYear {
		return nil, appErrors.Clone(appErrors.ErrValidation, "academic year is already current")
	}

	period.AcademicYear = req.AcademicYear
	period.Semester = models.SemesterFirst
	period.Term = models.TermPrelim
	period.ResetTermFlags()
	s.scheduleWindow(period, req.StartAt, req.EndAt)

	return s.persist(ctx, period, req.Version)
}

// AdvanceTerm moves the period to the successor term within the same
// semester. The current term must already be completed.
func (s *PeriodService) AdvanceTerm(ctx context.Context, req AdvanceTermRequest) (*models.GradingPeriod, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid term payload")
	}
	if !req.Term.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown term")
	}
	if !req.StartAt.Before(req.EndAt) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start_at must be before end_at")
	}

	period, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	next, ok := period.Term.Next()
	if !ok || req.Term != next {
		return nil, appErrors.Clone(appErrors.ErrValidation, "requested term is not the successor of the current term")
	}
	if !period.TermDone(period.Term) {
		return nil, appErrors.Clone(appErrors.ErrConflict, "current term is not yet completed")
	}

	period.Term = req.Term
	s.scheduleWindow(period, req.StartAt, req.EndAt)

	return s.persist(ctx, period, req.Version)
}

// SwitchSemester flips to the other semester: prelim term, completion
// flags cleared, fresh window.
func (s *PeriodService) SwitchSemester(ctx context.Context, req SwitchSemesterRequest) (*models.GradingPeriod, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid semester payload")
	}
	if !req.Semester.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown semester")
	}
	if !req.StartAt.Before(req.EndAt) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start_at must be before end_at")
	}

	period, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if period.Semester == req.Semester {
		return nil, appErrors.Clone(appErrors.ErrValidation, "semester is already current")
	}

	period.Semester = req.Semester
	period.Term = models.TermPrelim
	period.ResetTermFlags()
	s.scheduleWindow(period, req.StartAt, req.EndAt)

	return s.persist(ctx, period, req.Version)
}

// CompleteTerm marks the active term done and closes the window immediately.
func (s *PeriodService) CompleteTerm(ctx context.Context, req CompleteTermRequest) (*models.GradingPeriod, error) {
	period, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if period.TermDone(period.Term) {
		return nil, appErrors.Clone(appErrors.ErrConflict, "term is already completed")
	}

	period.MarkTermDone(period.Term)
	period.WindowActive = false
	period.WindowPending = false
	period.StartAt = nil
	period.EndAt = nil

	return s.persist(ctx, period, req.Version)
}

func (s *PeriodService) load(ctx context.Context) (*models.GradingPeriod, error) {
	period, err := s.repo.Get(ctx, s.institutionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grading period not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grading period")
	}
	return period, nil
}

func (s *PeriodService) persist(ctx context.Context, period *models.GradingPeriod, version int) (*models.GradingPeriod, error) {
	period.Version = version
	if err := s.repo.Replace(ctx, period); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrStaleVersion, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update grading period")
	}

	if s.cache.Enabled() {
		if err := s.cache.Delete(ctx, periodCacheKey(s.institutionID)); err != nil {
			s.logger.Warn("failed to invalidate grading period cache", zap.Error(err))
		}
	}
	return period, nil
}

func (s *PeriodService) scheduleWindow(period *models.GradingPeriod, startAt, endAt time.Time) {
	start := startAt.UTC()
	end := endAt.UTC()
	period.WindowPending = true
	period.WindowActive = false
	period.StartAt = &start
	period.EndAt = &end
	period.LastTickAt = nil
}

func validateAcademicYear(raw string) error {
	if !academicYearPattern.MatchString(raw) {
		return appErrors.Clone(appErrors.ErrValidation, `academic_year must use the format "YYYY - YYYY"`)
	}
	parts := strings.Split(raw, " - ")
	from, _ := strconv.Atoi(parts[0])
	to, _ := strconv.Atoi(parts[1])
	if to != from+1 {
		return appErrors.Clone(appErrors.ErrValidation, "academic_year must span consecutive years")
	}
	return nil
}
