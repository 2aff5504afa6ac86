package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Ahmadayed22/University-Project/internal/service"
	appErrors "github.com/Ahmadayed22/University-Project/pkg/errors"
	"github.com/Ahmadayed22/University-Project/pkg/response"
)

// SupervisorHandler exposes supervisor management and decision endpoints.
type SupervisorHandler struct {
	assignments *service.AssignmentService
	workflow    *service.WorkflowService
	decisions   *service.DecisionService
	metrics     *service.MetricsService
}

// NewSupervisorHandler constructs SupervisorHandler.
func NewSupervisorHandler(
	assignments *service.AssignmentService,
	workflow *service.WorkflowService,
	decisions *service.DecisionService,
	metrics *service.MetricsService,
) *SupervisorHandler {
	return &SupervisorHandler{
		assignments: assignments,
		workflow:    workflow,
		decisions:   decisions,
		metrics:     metrics,
	}
}

func parseSupervisorID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid supervisor id"))
		return 0, false
	}
	return id, true
}

// Create godoc
// @Summary Register a supervisor
// @Tags Supervisors
// @Accept json
// @Produce json
// @Param payload body service.CreateSupervisorRequest true "Supervisor payload"
// @Success 201 {object} response.Envelope
// @Router /supervisors [post]
func (h *SupervisorHandler) Create(c *gin.Context) {
	var req service.CreateSupervisorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	supervisor, err := h.assignments.CreateSupervisor(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, supervisor)
}

// List godoc
// @Summary List supervisors with workloads
// @Tags Supervisors
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /supervisors [get]
func (h *SupervisorHandler) List(c *gin.Context) {
	supervisors, err := h.assignments.ListSupervisors(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, supervisors)
}

// Get godoc
// @Summary Get supervisor detail
// @Tags Supervisors
// @Produce json
// @Param id path int true "Supervisor ID"
// @Success 200 {object} response.Envelope
// @Router /supervisors/{id} [get]
func (h *SupervisorHandler) Get(c *gin.Context) {
	id, ok := parseSupervisorID(c)
	if !ok {
		return
	}
	supervisor, err := h.assignments.GetSupervisor(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, supervisor)
}

// Delete godoc
// @Summary Delete a supervisor, redistributing their institutions
// @Tags Supervisors
// @Produce json
// @Param id path int true "Supervisor ID"
// @Success 204
// @Router /supervisors/{id} [delete]
func (h *SupervisorHandler) Delete(c *gin.Context) {
	id, ok := parseSupervisorID(c)
	if !ok {
		return
	}
	if err := h.assignments.DeleteSupervisor(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Institutions godoc
// @Summary List institutions assigned to a supervisor
// @Tags Supervisors
// @Produce json
// @Param id path int true "Supervisor ID"
// @Success 200 {object} response.Envelope
// @Router /supervisors/{id}/institutions [get]
func (h *SupervisorHandler) Institutions(c *gin.Context) {
	id, ok := parseSupervisorID(c)
	if !ok {
		return
	}
	institutions, err := h.workflow.ListBySupervisor(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, institutions)
}

// AppendDecision godoc
// @Summary Record a committee decision
// @Tags Decisions
// @Accept json
// @Produce json
// @Param payload body service.AppendDecisionRequest true "Decision payload"
// @Success 201 {object} response.Envelope
// @Router /decisions [post]
func (h *SupervisorHandler) AppendDecision(c *gin.Context) {
	var req service.AppendDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	record, err := h.decisions.Append(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordWorkflowEvent(service.EventDecisionAppended)
	response.Created(c, record)
}

// DecisionHistory godoc
// @Summary Full decision log for an institution
// @Tags Decisions
// @Produce json
// @Param id path int true "Institution ID"
// @Success 200 {object} response.Envelope
// @Router /institutions/{id}/decisions [get]
func (h *SupervisorHandler) DecisionHistory(c *gin.Context) {
	insID, ok := parseInsID(c)
	if !ok {
		return
	}
	records, err := h.decisions.History(c.Request.Context(), insID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records)
}
