package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Ahmadayed22/University-Project/internal/service"
	appErrors "github.com/Ahmadayed22/University-Project/pkg/errors"
	"github.com/Ahmadayed22/University-Project/pkg/response"
)

// ApplicationHandler exposes institution and submission endpoints.
type ApplicationHandler struct {
	workflow *service.WorkflowService
	metrics  *service.MetricsService
}

// NewApplicationHandler constructs ApplicationHandler.
func NewApplicationHandler(workflow *service.WorkflowService, metrics *service.MetricsService) *ApplicationHandler {
	return &ApplicationHandler{workflow: workflow, metrics: metrics}
}

func parseInsID(c *gin.Context) (int64, bool) {
	insID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid institution id"))
		return 0, false
	}
	return insID, true
}

// Create godoc
// @Summary Register an institution
// @Tags Institutions
// @Accept json
// @Produce json
// @Param payload body service.CreateInstitutionRequest true "Institution payload"
// @Success 201 {object} response.Envelope
// @Router /institutions [post]
func (h *ApplicationHandler) Create(c *gin.Context) {
	var req service.CreateInstitutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	institution, err := h.workflow.CreateInstitution(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, institution)
}

// List godoc
// @Summary List institutions
// @Tags Institutions
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /institutions [get]
func (h *ApplicationHandler) List(c *gin.Context) {
	institutions, err := h.workflow.ListInstitutions(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, institutions)
}

// Get godoc
// @Summary Get institution detail
// @Tags Institutions
// @Produce json
// @Param id path int true "Institution ID"
// @Success 200 {object} response.Envelope
// @Router /institutions/{id} [get]
func (h *ApplicationHandler) Get(c *gin.Context) {
	insID, ok := parseInsID(c)
	if !ok {
		return
	}
	institution, err := h.workflow.GetInstitution(c.Request.Context(), insID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, institution)
}

// Submit godoc
// @Summary Submit an application for review
// @Tags Applications
// @Produce json
// @Param id path int true "Institution ID"
// @Success 201 {object} response.Envelope
// @Router /institutions/{id}/submit [post]
func (h *ApplicationHandler) Submit(c *gin.Context) {
	insID, ok := parseInsID(c)
	if !ok {
		return
	}
	entry, err := h.workflow.Submit(c.Request.Context(), insID)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordWorkflowEvent(service.EventApplicationSubmitted)
	response.Created(c, entry)
}
