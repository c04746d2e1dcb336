package handler

import (
	"github.com/gin-gonic/gin"

	apprecon "github.com/stockpilot/backend/internal/application/reconciliation"
)

// ReconciliationHandler handles channel reconciliation endpoints
type ReconciliationHandler struct {
	BaseHandler
	service *apprecon.Service
}

// NewReconciliationHandler creates a new ReconciliationHandler
func NewReconciliationHandler(service *apprecon.Service) *ReconciliationHandler {
	return &ReconciliationHandler{service: service}
}

// Run starts a reconciliation run against a sales channel
func (h *ReconciliationHandler) Run(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req apprecon.RunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	run, err := h.service.Run(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, run)
}

// GetRun retrieves a run with its lines
func (h *ReconciliationHandler) GetRun(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	runID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid run ID format")
		return
	}

	run, err := h.service.GetRun(c.Request.Context(), tenantID, runID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, run)
}

// ListRecent lists the most recent runs
func (h *ReconciliationHandler) ListRecent(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	filter, ok := h.bindListFilter(c)
	if !ok {
		return
	}

	runs, err := h.service.ListRecent(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, runs)
}

// ResolveLine marks a discrepancy line resolved with an operator note
func (h *ReconciliationHandler) ResolveLine(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	lineID, err := parseUUIDParam(c, "lineId")
	if err != nil {
		h.BadRequest(c, "Invalid line ID format")
		return
	}

	var req apprecon.ResolveLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	line, err := h.service.ResolveLine(c.Request.Context(), tenantID, lineID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, line)
}
