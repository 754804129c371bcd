package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/gradekeeper/registrar-api/internal/models"
	"github.com/gradekeeper/registrar-api/internal/service"
	appErrors "github.com/gradekeeper/registrar-api/pkg/errors"
	"github.com/gradekeeper/registrar-api/pkg/response"
)

// RevisionHandler exposes revision request endpoints.
type RevisionHandler struct {
	service *service.RevisionService
}

// NewRevisionHandler constructs a revision handler.
func NewRevisionHandler(svc *service.RevisionService) *RevisionHandler {
	return &RevisionHandler{service: svc}
}

// Open godoc
// @Summary Open a revision request
// @Description Grants an instructor editing rights over a closed term for one subject section
// @Tags Revisions
// @Accept json
// @Produce json
// @Param payload body service.OpenRevisionRequest true "Revision scope"
// @Success 201 {object} response.Envelope
// @Router /revision-requests [post]
func (h *RevisionHandler) Open(c *gin.Context) {
	var req service.OpenRevisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	request, err := h.service.Open(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, request)
}

// Close godoc
// @Summary Close a revision request
// @Tags Revisions
// @Produce json
// @Param id path string true "Revision request ID"
// @Success 200 {object} response.Envelope
// @Router /revision-requests/{id}/close [post]
func (h *RevisionHandler) Close(c *gin.Context) {
	request, err := h.service.Close(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// ListMine godoc
// @Summary List the caller's revision requests
// @Tags Revisions
// @Produce json
// @Param activeOnly query bool false "Only active requests"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /revision-requests/mine [get]
func (h *RevisionHandler) ListMine(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	filter := revisionFilterFromQuery(c)
	requests, pagination, err := h.service.ListByInstructor(c.Request.Context(), claims.UserID, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, pagination)
}

func revisionFilterFromQuery(c *gin.Context) models.RevisionFilter {
	var filter models.RevisionFilter
	filter.SubjectID = c.Query("subjectId")
	filter.AcademicYear = c.Query("academicYear")
	if semester := c.Query("semester"); semester != "" {
		filter.Semester = models.Semester(semester)
	}
	if term := c.Query("term"); term != "" {
		filter.Term = models.Term(term)
	}
	if activeOnly := c.Query("activeOnly"); activeOnly != "" {
		if val, err := strconv.ParseBool(activeOnly); err == nil {
			filter.ActiveOnly = val
		}
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	return filter
}

// List godoc
// @Summary List revision requests
// @Tags Revisions
// @Produce json
// @Param instructorId query string false "Filter by instructor"
// @Param subjectId query string false "Filter by subject"
// @Param academicYear query string false "Filter by academic year"
// @Param semester query string false "Filter by semester"
// @Param term query string false "Filter by term"
// @Param activeOnly query bool false "Only active requests"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /revision-requests [get]
func (h *RevisionHandler) List(c *gin.Context) {
	filter := revisionFilterFromQuery(c)
	filter.InstructorID = c.Query("instructorId")

	requests, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, pagination)
}
