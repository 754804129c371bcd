package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gradekeeper/registrar-api/internal/service"
	appErrors "github.com/gradekeeper/registrar-api/pkg/errors"
	"github.com/gradekeeper/registrar-api/pkg/response"
)

// PeriodHandler exposes grading-period endpoints.
type PeriodHandler struct {
	service *service.PeriodService
}

// NewPeriodHandler constructs a period handler.
func NewPeriodHandler(svc *service.PeriodService) *PeriodHandler {
	return &PeriodHandler{service: svc}
}

// Current godoc
// @Summary Get the current grading period
// @Tags Periods
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /periods/current [get]
func (h *PeriodHandler) Current(c *gin.Context) {
	period, err := h.service.Current(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, period, nil)
}

// WindowStatus godoc
// @Summary Get the grading-window status of the current period
// @Tags Periods
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /periods/current/window [get]
func (h *PeriodHandler) WindowStatus(c *gin.Context) {
	status, err := h.service.WindowStatus(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}

// Rollover godoc
// @Summary Start a new academic year
// @Tags Periods
// @Accept json
// @Produce json
// @Param payload body service.RolloverAcademicYearRequest true "Rollover payload"
// @Success 200 {object} response.Envelope
// @Router /periods/rollover [post]
func (h *PeriodHandler) Rollover(c *gin.Context) {
	var req service.RolloverAcademicYearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	period, err := h.service.RolloverAcademicYear(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, period, nil)
}

// AdvanceTerm godoc
// @Summary Advance to the next term within the current semester
// @Tags Periods
// @Accept json
// @Produce json
// @Param payload body service.AdvanceTermRequest true "Term payload"
// @Success 200 {object} response.Envelope
// @Router /periods/advance-term [post]
func (h *PeriodHandler) AdvanceTerm(c *gin.Context) {
	var req service.AdvanceTermRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	period, err := h.service.AdvanceTerm(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, period, nil)
}

// SwitchSemester godoc
// @Summary Switch to the other semester of the current academic year
// @Tags Periods
// @Accept json
// @Produce json
// @Param payload body service.SwitchSemesterRequest true "Semester payload"
// @Success 200 {object} response.Envelope
// @Router /periods/switch-semester [post]
func (h *PeriodHandler) SwitchSemester(c *gin.Context) {
	var req service.SwitchSemesterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	period, err := h.service.SwitchSemester(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, period, nil)
}

// CompleteTerm godoc
// @Summary Mark the current term completed and close its window
// @Tags Periods
// @Accept json
// @Produce json
// @Param payload body service.CompleteTermRequest true "Complete payload"
// @Success 200 {object} response.Envelope
// @Router /periods/complete-term [post]
func (h *PeriodHandler) CompleteTerm(c *gin.Context) {
	var req service.CompleteTermRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	period, err := h.service.CompleteTerm(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, period, nil)
}
