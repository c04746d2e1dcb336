package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appplanning "github.com/stockpilot/backend/internal/application/planning"
)

// PlanningHandler handles demand forecasting, production planning and
// purchase suggestion endpoints
type PlanningHandler struct {
	BaseHandler
	forecasts   *appplanning.ForecastService
	plans       *appplanning.PlanService
	suggestions *appplanning.SuggestionService
}

// NewPlanningHandler creates a new PlanningHandler
func NewPlanningHandler(
	forecasts *appplanning.ForecastService,
	plans *appplanning.PlanService,
	suggestions *appplanning.SuggestionService,
) *PlanningHandler {
	return &PlanningHandler{
		forecasts:   forecasts,
		plans:       plans,
		suggestions: suggestions,
	}
}

// GenerateForecasts produces demand forecasts for the given products
func (h *PlanningHandler) GenerateForecasts(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req appplanning.GenerateForecastsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	forecasts, err := h.forecasts.GenerateForecasts(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, forecasts)
}

// GetForecast retrieves a forecast by ID
func (h *PlanningHandler) GetForecast(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	forecastID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid forecast ID format")
		return
	}

	forecast, err := h.forecasts.GetForecast(c.Request.Context(), tenantID, forecastID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, forecast)
}

// ListForecasts lists recent forecasts
func (h *PlanningHandler) ListForecasts(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	filter, ok := h.bindListFilter(c)
	if !ok {
		return
	}

	forecasts, err := h.forecasts.ListRecent(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, forecasts)
}

// GeneratePlan derives a production plan from a forecast, expanding material
// requirements through the product's BOM
func (h *PlanningHandler) GeneratePlan(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req appplanning.GeneratePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	plan, err := h.plans.GenerateProductionPlan(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, plan)
}

// GetPlan retrieves a plan with its requirements
func (h *PlanningHandler) GetPlan(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	planID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid plan ID format")
		return
	}

	plan, err := h.plans.GetPlan(c.Request.Context(), tenantID, planID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, plan)
}

// ListPlans lists recent plans
func (h *PlanningHandler) ListPlans(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	filter, ok := h.bindListFilter(c)
	if !ok {
		return
	}

	plans, err := h.plans.ListRecent(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, plans)
}

// ConfirmPlan moves a draft plan to confirmed
func (h *PlanningHandler) ConfirmPlan(c *gin.Context) {
	h.transitionPlan(c, h.plans.ConfirmPlan)
}

// CancelPlan abandons a draft plan
func (h *PlanningHandler) CancelPlan(c *gin.Context) {
	h.transitionPlan(c, h.plans.CancelPlan)
}

func (h *PlanningHandler) transitionPlan(
	c *gin.Context,
	fn func(ctx context.Context, tenantID, planID uuid.UUID) (*appplanning.PlanResponse, error),
) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	planID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid plan ID format")
		return
	}

	plan, err := fn(c.Request.Context(), tenantID, planID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, plan)
}

// GenerateSuggestions groups a plan's shortages by vendor into suggested
// purchase orders
func (h *PlanningHandler) GenerateSuggestions(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	planID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid plan ID format")
		return
	}

	result, err := h.suggestions.GenerateSuggestedPOs(c.Request.Context(), tenantID, planID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, result)
}

// GetSuggestion retrieves a suggestion by ID
func (h *PlanningHandler) GetSuggestion(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	suggestionID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid suggestion ID format")
		return
	}

	suggestion, err := h.suggestions.GetSuggestion(c.Request.Context(), tenantID, suggestionID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, suggestion)
}

// ListPendingSuggestions lists pending suggestions, highest priority first
func (h *PlanningHandler) ListPendingSuggestions(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	filter, ok := h.bindListFilter(c)
	if !ok {
		return
	}

	suggestions, err := h.suggestions.ListPending(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, suggestions)
}

// ApproveSuggestion converts a pending suggestion into a draft purchase order
func (h *PlanningHandler) ApproveSuggestion(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	suggestionID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid suggestion ID format")
		return
	}

	result, err := h.suggestions.Approve(c.Request.Context(), tenantID, suggestionID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, result)
}

// RejectSuggestion rejects a pending suggestion with a reason
func (h *PlanningHandler) RejectSuggestion(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	suggestionID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid suggestion ID format")
		return
	}

	var req appplanning.RejectSuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	suggestion, err := h.suggestions.Reject(c.Request.Context(), tenantID, suggestionID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, suggestion)
}
