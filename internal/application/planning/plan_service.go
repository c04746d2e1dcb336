package planning

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/stockpilot/backend/internal/domain/catalog"
	"github.com/stockpilot/backend/internal/domain/inventory"
	"github.com/stockpilot/backend/internal/domain/planning"
	"github.com/stockpilot/backend/internal/domain/shared"
	"github.com/stockpilot/backend/internal/domain/trade"
)

// PlanService turns a demand forecast into a production plan with material
// requirements expanded from the product's active BOM. Vendor, cost and lead
// time are snapshotted onto the requirement rows at generation time.
type PlanService struct {
	planRepo            planning.PlanRepository
	forecastRepo        planning.ForecastRepository
	bomRepo             catalog.BOMRepository
	materialRepo        catalog.RawMaterialRepository
	balanceRepo         inventory.InventoryBalanceRepository
	materialBalanceRepo inventory.MaterialBalanceRepository
	orderRepo           trade.PurchaseOrderRepository
	logger              *zap.Logger
}

// NewPlanService creates a PlanService.
func NewPlanService(
	planRepo planning.PlanRepository,
	forecastRepo planning.ForecastRepository,
	bomRepo catalog.BOMRepository,
	materialRepo catalog.RawMaterialRepository,
	balanceRepo inventory.InventoryBalanceRepository,
	materialBalanceRepo inventory.MaterialBalanceRepository,
	orderRepo trade.PurchaseOrderRepository,
	logger *zap.Logger,
) *PlanService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlanService{
		planRepo:            planRepo,
		forecastRepo:        forecastRepo,
		bomRepo:             bomRepo,
		materialRepo:        materialRepo,
		balanceRepo:         balanceRepo,
		materialBalanceRepo: materialBalanceRepo,
		orderRepo:           orderRepo,
		logger:              logger,
	}
}

// GenerateProductionPlan derives a draft plan from a forecast.
//
// planned = max(0, forecast + safetyStock - currentInventory). The plan row
// is written before its requirement rows: a failure mid-expansion leaves a
// consistent plan whose requirements can be regenerated, never requirement
// rows without a plan.
func (s *PlanService) GenerateProductionPlan(ctx context.Context, tenantID uuid.UUID, req GeneratePlanRequest) (*PlanResponse, error) {
	forecast, err := s.forecastRepo.FindByID(ctx, tenantID, req.ForecastID)
	if err != nil {
		return nil, err
	}

	currentInventory, err := s.balanceRepo.SumAvailableByProduct(ctx, tenantID, forecast.ProductID)
	if err != nil {
		return nil, err
	}

	requiredBy := forecast.PeriodEnd
	if req.RequiredByDate != nil {
		requiredBy = *req.RequiredByDate
	}

	plan, err := planning.NewProductionPlan(
		tenantID, forecast.ID, forecast.ProductID,
		forecast.ForecastedQuantity, currentInventory, req.SafetyStockPercent,
		requiredBy,
	)
	if err != nil {
		return nil, err
	}

	bom, err := s.bomRepo.FindActiveByProduct(ctx, tenantID, forecast.ProductID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if bom != nil {
		plan.SetBOM(bom.ID)
	}

	if err := s.planRepo.Save(ctx, plan); err != nil {
		return nil, err
	}

	if bom != nil && plan.PlannedQuantity.GreaterThan(decimal.Zero) {
		if err := s.expandRequirements(ctx, tenantID, plan, bom); err != nil {
			return nil, err
		}
	}

	forecast.MarkConsumed()
	if err := s.forecastRepo.Save(ctx, forecast); err != nil {
		return nil, err
	}

	s.logger.Info("production plan generated",
		zap.String("plan_id", plan.ID.String()),
		zap.String("product_id", plan.ProductID.String()),
		zap.String("planned_quantity", plan.PlannedQuantity.String()),
		zap.Int("requirements", len(plan.Requirements)))

	resp := ToPlanResponse(plan)
	return &resp, nil
}

func (s *PlanService) expandRequirements(ctx context.Context, tenantID uuid.UUID, plan *planning.ProductionPlan, bom *catalog.BOM) error {
	components, err := s.bomRepo.FindComponents(ctx, bom.ID)
	if err != nil {
		return err
	}

	onOrder, err := s.orderRepo.SumOpenOrderedQuantityByMaterial(ctx, tenantID)
	if err != nil {
		return err
	}

	for i := range components {
		component := &components[i]

		material, err := s.materialRepo.FindByID(ctx, tenantID, component.RawMaterialID)
		if err != nil {
			return err
		}

		currentQty, err := s.materialBalanceRepo.SumAvailableByMaterial(ctx, tenantID, material.ID)
		if err != nil {
			return err
		}

		requiredQty := plan.PlannedQuantity.Mul(component.QuantityPerUnit).Round(4)
		requirement, err := planning.NewMaterialRequirement(
			tenantID, plan.ID, material.ID,
			requiredQty, currentQty, onOrder[material.ID],
			component.Unit,
			material.PreferredVendorID,
			material.UnitCost,
			material.LeadTimeDays,
			plan.RequiredByDate,
		)
		if err != nil {
			return err
		}
		if err := s.planRepo.SaveRequirement(ctx, requirement); err != nil {
			return err
		}
		plan.Requirements = append(plan.Requirements, *requirement)
	}
	return nil
}

// GetPlan returns a plan with its requirement rows.
func (s *PlanService) GetPlan(ctx context.Context, tenantID, planID uuid.UUID) (*PlanResponse, error) {
	plan, err := s.planRepo.FindByID(ctx, tenantID, planID)
	if err != nil {
		return nil, err
	}
	if len(plan.Requirements) == 0 {
		requirements, err := s.planRepo.FindRequirements(ctx, tenantID, planID)
		if err != nil {
			return nil, err
		}
		plan.Requirements = requirements
	}
	resp := ToPlanResponse(plan)
	return &resp, nil
}

// ListRecent returns recent plans, newest first.
func (s *PlanService) ListRecent(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]PlanResponse, error) {
	plans, err := s.planRepo.FindRecent(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	result := make([]PlanResponse, 0, len(plans))
	for i := range plans {
		result = append(result, ToPlanResponse(&plans[i]))
	}
	return result, nil
}

// ConfirmPlan moves a draft plan to CONFIRMED.
func (s *PlanService) ConfirmPlan(ctx context.Context, tenantID, planID uuid.UUID) (*PlanResponse, error) {
	return s.transition(ctx, tenantID, planID, (*planning.ProductionPlan).Confirm)
}

// CancelPlan abandons a draft plan.
func (s *PlanService) CancelPlan(ctx context.Context, tenantID, planID uuid.UUID) (*PlanResponse, error) {
	return s.transition(ctx, tenantID, planID, (*planning.ProductionPlan).Cancel)
}

func (s *PlanService) transition(ctx context.Context, tenantID, planID uuid.UUID, fn func(*planning.ProductionPlan) error) (*PlanResponse, error) {
	plan, err := s.planRepo.FindByID(ctx, tenantID, planID)
	if err != nil {
		return nil, err
	}
	if err := fn(plan); err != nil {
		return nil, err
	}
	if err := s.planRepo.Save(ctx, plan); err != nil {
		return nil, err
	}
	resp := ToPlanResponse(plan)
	return &resp, nil
}
