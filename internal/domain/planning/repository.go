package planning

import (
	"context"

	"github.com/google/uuid"
	"github.com/stockpilot/backend/internal/domain/shared"
)

// ForecastRepository defines persistence for demand forecasts
type ForecastRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*DemandForecast, error)
	FindActiveByProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]DemandForecast, error)
	FindRecent(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]DemandForecast, error)
	Save(ctx context.Context, forecast *DemandForecast) error
}

// PlanRepository defines persistence for production plans and requirements
type PlanRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*ProductionPlan, error)
	FindRecent(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]ProductionPlan, error)
	Save(ctx context.Context, plan *ProductionPlan) error
	SaveRequirement(ctx context.Context, requirement *MaterialRequirement) error
	FindRequirements(ctx context.Context, tenantID, planID uuid.UUID) ([]MaterialRequirement, error)
}

// SuggestionRepository defines persistence for suggested purchase orders
type SuggestionRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*SuggestedPurchaseOrder, error)
	FindByPlan(ctx context.Context, tenantID, planID uuid.UUID) ([]SuggestedPurchaseOrder, error)
	FindPending(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]SuggestedPurchaseOrder, error)
	Save(ctx context.Context, suggestion *SuggestedPurchaseOrder) error
	// ConvertPending atomically flips a pending suggestion to converted and
	// records the resulting order. It fails with ErrAlreadyConverted when the
	// suggestion is no longer pending, which arbitrates concurrent approvals.
	ConvertPending(ctx context.Context, tenantID, id, orderID uuid.UUID) error
}
