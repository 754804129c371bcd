package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gradekeeper/registrar-api/internal/models"
	"github.com/gradekeeper/registrar-api/internal/service"
	appErrors "github.com/gradekeeper/registrar-api/pkg/errors"
	"github.com/gradekeeper/registrar-api/pkg/response"
)

// GradeHandler exposes grade write and listing endpoints.
type GradeHandler struct {
	service *service.GradeService
}

// NewGradeHandler constructs a grade handler.
func NewGradeHandler(svc *service.GradeService) *GradeHandler {
	return &GradeHandler{service: svc}
}

// BulkUpdate godoc
// @Summary Write grades for many students of one subject section
// @Description Rows are independent; valid rows persist even when some students cannot be resolved
// @Tags Grades
// @Accept json
// @Produce json
// @Param payload body service.BulkUpdateGradesRequest true "Bulk grade payload"
// @Success 200 {object} response.Envelope
// @Router /grades/bulk [put]
func (h *GradeHandler) BulkUpdate(c *gin.Context) {
	var req service.BulkUpdateGradesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	result, err := h.service.BulkUpdate(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) && appErr.Code == appErrors.ErrPartialWrite.Code && result != nil {
			response.ErrorWithData(c, err, result)
			return
		}
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// SetRemark godoc
// @Summary Record a withdrawal or incomplete remark for a student
// @Tags Grades
// @Accept json
// @Produce json
// @Param payload body service.SetRemarkRequest true "Remark payload"
// @Success 204
// @Router /grades/remarks [post]
func (h *GradeHandler) SetRemark(c *gin.Context) {
	var req service.SetRemarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.service.SetRemark(c.Request.Context(), req, claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListBySubject godoc
// @Summary List the grade sheet of a subject offering
// @Tags Grades
// @Produce json
// @Param subjectId query string true "Subject"
// @Param academicYear query string true "Academic year"
// @Param semester query string true "Semester"
// @Param section query string false "Section"
// @Param term query string false "Term"
// @Success 200 {object} response.Envelope
// @Router /grades [get]
func (h *GradeHandler) ListBySubject(c *gin.Context) {
	filter := models.GradeFilter{
		SubjectID:    c.Query("subjectId"),
		AcademicYear: c.Query("academicYear"),
		Semester:     models.Semester(c.Query("semester")),
		Section:      c.Query("section"),
		Term:         models.Term(c.Query("term")),
	}

	grades, err := h.service.ListBySubject(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grades, nil)
}
