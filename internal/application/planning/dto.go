package planning

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockpilot/backend/internal/domain/planning"
)

// GenerateForecastsRequest asks for fresh demand forecasts for a set of
// products. Zero months fall back to the service defaults.
type GenerateForecastsRequest struct {
	ProductIDs     []uuid.UUID `json:"product_ids" binding:"required,min=1"`
	ForecastMonths int         `json:"forecast_months" binding:"omitempty,min=1,max=12"`
	HistoryMonths  int         `json:"history_months" binding:"omitempty,min=1,max=36"`
}

// ForecastResponse represents a demand forecast in API responses.
type ForecastResponse struct {
	ID                 uuid.UUID       `json:"id"`
	ProductID          uuid.UUID       `json:"product_id"`
	PeriodStart        time.Time       `json:"period_start"`
	PeriodEnd          time.Time       `json:"period_end"`
	ForecastedQuantity decimal.Decimal `json:"forecasted_quantity"`
	ConfidenceLevel    int             `json:"confidence_level"`
	Trend              string          `json:"trend"`
	Method             string          `json:"method"`
	DataPoints         int             `json:"data_points"`
	Analysis           string          `json:"analysis,omitempty"`
	Status             string          `json:"status"`
}

// ToForecastResponse converts a domain forecast to a response DTO.
func ToForecastResponse(f *planning.DemandForecast) ForecastResponse {
	return ForecastResponse{
		ID:                 f.ID,
		ProductID:          f.ProductID,
		PeriodStart:        f.PeriodStart,
		PeriodEnd:          f.PeriodEnd,
		ForecastedQuantity: f.ForecastedQuantity,
		ConfidenceLevel:    f.ConfidenceLevel,
		Trend:              string(f.Trend),
		Method:             string(f.Method),
		DataPoints:         f.DataPoints,
		Analysis:           f.Analysis,
		Status:             string(f.Status),
	}
}

// GeneratePlanRequest derives a production plan from a forecast.
type GeneratePlanRequest struct {
	ForecastID         uuid.UUID       `json:"forecast_id" binding:"required"`
	SafetyStockPercent decimal.Decimal `json:"safety_stock_percent"`
	RequiredByDate     *time.Time      `json:"required_by_date"` // Defaults to the forecast period end
}

// RequirementResponse is one material-requirement row of a plan.
type RequirementResponse struct {
	ID                uuid.UUID       `json:"id"`
	RawMaterialID     uuid.UUID       `json:"raw_material_id"`
	RequiredQuantity  decimal.Decimal `json:"required_quantity"`
	CurrentInventory  decimal.Decimal `json:"current_inventory"`
	OnOrderQuantity   decimal.Decimal `json:"on_order_quantity"`
	ShortageQuantity  decimal.Decimal `json:"shortage_quantity"`
	SuggestedOrderQty decimal.Decimal `json:"suggested_order_qty"`
	Unit              string          `json:"unit"`
	PreferredVendorID *uuid.UUID      `json:"preferred_vendor_id,omitempty"`
	EstimatedUnitCost decimal.Decimal `json:"estimated_unit_cost"`
	EstimatedCost     decimal.Decimal `json:"estimated_cost"`
	LeadTimeDays      int             `json:"lead_time_days"`
	RequiredByDate    time.Time       `json:"required_by_date"`
	IsUrgent          bool            `json:"is_urgent"`
	LatestOrderDate   *time.Time      `json:"latest_order_date,omitempty"`
}

// ToRequirementResponse converts a domain requirement to a response DTO.
func ToRequirementResponse(r *planning.MaterialRequirement) RequirementResponse {
	return RequirementResponse{
		ID:                r.ID,
		RawMaterialID:     r.RawMaterialID,
		RequiredQuantity:  r.RequiredQuantity,
		CurrentInventory:  r.CurrentInventory,
		OnOrderQuantity:   r.OnOrderQuantity,
		ShortageQuantity:  r.ShortageQuantity,
		SuggestedOrderQty: r.SuggestedOrderQty,
		Unit:              r.Unit,
		PreferredVendorID: r.PreferredVendorID,
		EstimatedUnitCost: r.EstimatedUnitCost,
		EstimatedCost:     r.EstimatedCost,
		LeadTimeDays:      r.LeadTimeDays,
		RequiredByDate:    r.RequiredByDate,
		IsUrgent:          r.IsUrgent,
		LatestOrderDate:   r.LatestOrderDate,
	}
}

// PlanResponse represents a production plan in API responses.
type PlanResponse struct {
	ID                 uuid.UUID             `json:"id"`
	ForecastID         uuid.UUID             `json:"forecast_id"`
	ProductID          uuid.UUID             `json:"product_id"`
	BOMID              *uuid.UUID            `json:"bom_id,omitempty"`
	PlannedQuantity    decimal.Decimal       `json:"planned_quantity"`
	CurrentInventory   decimal.Decimal       `json:"current_inventory"`
	SafetyStock        decimal.Decimal       `json:"safety_stock"`
	SafetyStockPercent decimal.Decimal       `json:"safety_stock_percent"`
	RequiredByDate     time.Time             `json:"required_by_date"`
	Status             string                `json:"status"`
	Requirements       []RequirementResponse `json:"requirements"`
}

// ToPlanResponse converts a domain plan to a response DTO.
func ToPlanResponse(p *planning.ProductionPlan) PlanResponse {
	requirements := make([]RequirementResponse, 0, len(p.Requirements))
	for i := range p.Requirements {
		requirements = append(requirements, ToRequirementResponse(&p.Requirements[i]))
	}
	return PlanResponse{
		ID:                 p.ID,
		ForecastID:         p.ForecastID,
		ProductID:          p.ProductID,
		BOMID:              p.BOMID,
		PlannedQuantity:    p.PlannedQuantity,
		CurrentInventory:   p.CurrentInventory,
		SafetyStock:        p.SafetyStock,
		SafetyStockPercent: p.SafetyStockPercent,
		RequiredByDate:     p.RequiredByDate,
		Status:             string(p.Status),
		Requirements:       requirements,
	}
}

// SuggestionItemResponse is one material line of a suggested purchase order.
type SuggestionItemResponse struct {
	ID            uuid.UUID       `json:"id"`
	RequirementID uuid.UUID       `json:"requirement_id"`
	RawMaterialID uuid.UUID       `json:"raw_material_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	Unit          string          `json:"unit"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Amount        decimal.Decimal `json:"amount"`
}

// SuggestionResponse represents a suggested purchase order in API responses.
type SuggestionResponse struct {
	ID                    uuid.UUID                `json:"id"`
	PlanID                uuid.UUID                `json:"plan_id"`
	VendorID              uuid.UUID                `json:"vendor_id"`
	TotalAmount           decimal.Decimal          `json:"total_amount"`
	SuggestedOrderDate    time.Time                `json:"suggested_order_date"`
	RequiredByDate        time.Time                `json:"required_by_date"`
	EstimatedDeliveryDate time.Time                `json:"estimated_delivery_date"`
	LeadTimeDays          int                      `json:"lead_time_days"`
	IsUrgent              bool                     `json:"is_urgent"`
	PriorityScore         int                      `json:"priority_score"`
	Rationale             string                   `json:"rationale,omitempty"`
	Status                string                   `json:"status"`
	ConvertedOrderID      *uuid.UUID               `json:"converted_order_id,omitempty"`
	RejectionReason       string                   `json:"rejection_reason,omitempty"`
	Items                 []SuggestionItemResponse `json:"items"`
}

// ToSuggestionResponse converts a domain suggestion to a response DTO.
func ToSuggestionResponse(s *planning.SuggestedPurchaseOrder) SuggestionResponse {
	items := make([]SuggestionItemResponse, 0, len(s.Items))
	for i := range s.Items {
		item := &s.Items[i]
		items = append(items, SuggestionItemResponse{
			ID:            item.ID,
			RequirementID: item.RequirementID,
			RawMaterialID: item.RawMaterialID,
			Quantity:      item.Quantity,
			Unit:          item.Unit,
			UnitPrice:     item.UnitPrice,
			Amount:        item.Amount,
		})
	}
	return SuggestionResponse{
		ID:                    s.ID,
		PlanID:                s.PlanID,
		VendorID:              s.VendorID,
		TotalAmount:           s.TotalAmount,
		SuggestedOrderDate:    s.SuggestedOrderDate,
		RequiredByDate:        s.RequiredByDate,
		EstimatedDeliveryDate: s.EstimatedDeliveryDate,
		LeadTimeDays:          s.LeadTimeDays,
		IsUrgent:              s.IsUrgent,
		PriorityScore:         s.PriorityScore,
		Rationale:             s.Rationale,
		Status:                string(s.Status),
		ConvertedOrderID:      s.ConvertedOrderID,
		RejectionReason:       s.RejectionReason,
		Items:                 items,
	}
}

// GenerateSuggestionsResponse carries the vendor-grouped suggestions plus the
// shortage requirements that have no preferred vendor and therefore need
// manual sourcing.
type GenerateSuggestionsResponse struct {
	Suggestions []SuggestionResponse  `json:"suggestions"`
	Unassigned  []RequirementResponse `json:"unassigned"`
}

// RejectSuggestionRequest closes a suggestion with a reason.
type RejectSuggestionRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ApproveSuggestionResponse returns the suggestion and the purchase order it
// was converted into.
type ApproveSuggestionResponse struct {
	Suggestion  SuggestionResponse `json:"suggestion"`
	OrderID     uuid.UUID          `json:"order_id"`
	OrderNumber string             `json:"order_number"`
}
