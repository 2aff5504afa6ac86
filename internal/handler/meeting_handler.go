package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Ahmadayed22/University-Project/internal/service"
	appErrors "github.com/Ahmadayed22/University-Project/pkg/errors"
	"github.com/Ahmadayed22/University-Project/pkg/response"
)

// MeetingHandler exposes the ministry's meeting and finalization endpoints.
type MeetingHandler struct {
	meetings    *service.MeetingService
	decisions   *service.DecisionService
	assignments *service.AssignmentService
	metrics     *service.MetricsService
}

// NewMeetingHandler constructs MeetingHandler.
func NewMeetingHandler(
	meetings *service.MeetingService,
	decisions *service.DecisionService,
	assignments *service.AssignmentService,
	metrics *service.MetricsService,
) *MeetingHandler {
	return &MeetingHandler{
		meetings:    meetings,
		decisions:   decisions,
		assignments: assignments,
		metrics:     metrics,
	}
}

// Pending godoc
// @Summary List applications awaiting the next meeting
// @Tags Meetings
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /applications/pending [get]
func (h *MeetingHandler) Pending(c *gin.Context) {
	pending, err := h.meetings.PendingApplications(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pending)
}

// Create godoc
// @Summary Batch pending applications into a new meeting
// @Tags Meetings
// @Produce json
// @Success 201 {object} response.Envelope
// @Router /meetings [post]
func (h *MeetingHandler) Create(c *gin.Context) {
	number, entries, err := h.meetings.CreateMeeting(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordWorkflowEvent(service.EventMeetingCreated)
	response.Created(c, gin.H{"meeting_number": number, "entries": entries})
}

// List godoc
// @Summary List meetings
// @Tags Meetings
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /meetings [get]
func (h *MeetingHandler) List(c *gin.Context) {
	meetings, err := h.meetings.ListMeetings(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, meetings)
}

// Entries godoc
// @Summary List meeting entries
// @Tags Meetings
// @Produce json
// @Param number query string false "Meeting number, e.g. 3/2026; omit for all entries"
// @Success 200 {object} response.Envelope
// @Router /meetings/entries [get]
func (h *MeetingHandler) Entries(c *gin.Context) {
	// Meeting numbers carry a slash, so they travel as a query parameter.
	number := strings.TrimSpace(c.Query("number"))
	if number == "" {
		entries, err := h.meetings.AllEntries(c.Request.Context())
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, entries)
		return
	}

	entries, err := h.meetings.MeetingEntries(c.Request.Context(), number)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries)
}

// ReturnRequest routes a batched application back to the supervisor on
// its latest meeting snapshot.
type ReturnRequest struct {
	InsID int64 `json:"ins_id" binding:"required"`
}

// Return godoc
// @Summary Return an application to a supervisor for another review
// @Tags Meetings
// @Accept json
// @Produce json
// @Param payload body ReturnRequest true "Return payload"
// @Success 200 {object} response.Envelope
// @Router /applications/return [post]
func (h *MeetingHandler) Return(c *gin.Context) {
	var req ReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	hadDecision, err := h.meetings.ReturnToSupervisor(c.Request.Context(), req.InsID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"returned": true, "had_decision": hadDecision})
}

// Finalize godoc
// @Summary Finalize an institution's latest decision in a meeting
// @Tags Decisions
// @Accept json
// @Produce json
// @Param payload body service.FinalizeRequest true "Finalize payload"
// @Success 200 {object} response.Envelope
// @Router /decisions/finalize [post]
func (h *MeetingHandler) Finalize(c *gin.Context) {
	var req service.FinalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	record, err := h.decisions.Finalize(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordWorkflowEvent(service.EventDecisionFinalized)
	response.JSON(c, http.StatusOK, record)
}

// ChangeSupervisorRequest reassigns an institution.
type ChangeSupervisorRequest struct {
	SupervisorID int64 `json:"supervisor_id" binding:"required"`
}

// ChangeSupervisor godoc
// @Summary Reassign an institution to another supervisor
// @Tags Supervisors
// @Accept json
// @Produce json
// @Param id path int true "Institution ID"
// @Param payload body ChangeSupervisorRequest true "Reassignment payload"
// @Success 200 {object} response.Envelope
// @Router /institutions/{id}/supervisor [put]
func (h *MeetingHandler) ChangeSupervisor(c *gin.Context) {
	insID, ok := parseInsID(c)
	if !ok {
		return
	}
	var req ChangeSupervisorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.assignments.ChangeSupervisor(c.Request.Context(), insID, req.SupervisorID); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"reassigned": true})
}
