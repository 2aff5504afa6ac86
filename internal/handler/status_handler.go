package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Ahmadayed22/University-Project/internal/service"
	"github.com/Ahmadayed22/University-Project/pkg/response"
)

// StatusHandler exposes interpreted status and letter endpoints.
type StatusHandler struct {
	statuses  *service.StatusService
	decisions *service.DecisionService
}

// NewStatusHandler constructs StatusHandler.
func NewStatusHandler(statuses *service.StatusService, decisions *service.DecisionService) *StatusHandler {
	return &StatusHandler{statuses: statuses, decisions: decisions}
}

// Dashboard godoc
// @Summary Aggregate recognition status for every institution
// @Tags Statuses
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /statuses [get]
func (h *StatusHandler) Dashboard(c *gin.Context) {
	statuses, err := h.statuses.InstitutionStatuses(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, statuses)
}

// History godoc
// @Summary Finalized decision history with meeting dates
// @Tags Statuses
// @Produce json
// @Param id path int true "Institution ID"
// @Success 200 {object} response.Envelope
// @Router /institutions/{id}/history [get]
func (h *StatusHandler) History(c *gin.Context) {
	insID, ok := parseInsID(c)
	if !ok {
		return
	}
	history, err := h.decisions.FinalizedHistory(c.Request.Context(), insID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, history)
}

// Letter godoc
// @Summary Recommendation letter payload for the latest finalized decision
// @Tags Statuses
// @Produce json
// @Param id path int true "Institution ID"
// @Param lang query string false "Letter language: en or ar" default(en)
// @Success 200 {object} response.Envelope
// @Router /institutions/{id}/letter [get]
func (h *StatusHandler) Letter(c *gin.Context) {
	insID, ok := parseInsID(c)
	if !ok {
		return
	}
	letter, err := h.statuses.Letter(c.Request.Context(), insID, c.DefaultQuery("lang", "en"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, letter)
}
