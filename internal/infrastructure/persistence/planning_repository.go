package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	appplanning "github.com/stockpilot/backend/internal/application/planning"
	"github.com/stockpilot/backend/internal/domain/planning"
	"github.com/stockpilot/backend/internal/domain/shared"
	"github.com/stockpilot/backend/internal/domain/trade"
)

// GormForecastRepository implements ForecastRepository using GORM
type GormForecastRepository struct {
	db *gorm.DB
}

// NewGormForecastRepository creates a new GormForecastRepository
func NewGormForecastRepository(db *gorm.DB) *GormForecastRepository {
	return &GormForecastRepository{db: db}
}

// FindByID finds a forecast by its ID within a tenant
func (r *GormForecastRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*planning.DemandForecast, error) {
	var forecast planning.DemandForecast
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&forecast).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &forecast, nil
}

// FindActiveByProduct lists active forecasts for a product
func (r *GormForecastRepository) FindActiveByProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]planning.DemandForecast, error) {
	var forecasts []planning.DemandForecast
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ? AND status = ?", tenantID, productID, planning.ForecastStatusActive).
		Order("created_at ASC").
		Find(&forecasts).Error; err != nil {
		return nil, err
	}
	return forecasts, nil
}

// FindRecent lists forecasts for a tenant, newest first by default
func (r *GormForecastRepository) FindRecent(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]planning.DemandForecast, error) {
	var forecasts []planning.DemandForecast
	query := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID)

	sortField := ValidateSortField(filter.OrderBy, ForecastSortFields, "created_at")
	query = query.Order(fmt.Sprintf("%s %s", sortField, ValidateSortOrder(filter.OrderDir)))

	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.Limit())
	}

	if err := query.Find(&forecasts).Error; err != nil {
		return nil, err
	}
	return forecasts, nil
}

// Save persists a forecast
func (r *GormForecastRepository) Save(ctx context.Context, forecast *planning.DemandForecast) error {
	return r.db.WithContext(ctx).Save(forecast).Error
}

// GormPlanRepository implements PlanRepository using GORM
type GormPlanRepository struct {
	db *gorm.DB
}

// NewGormPlanRepository creates a new GormPlanRepository
func NewGormPlanRepository(db *gorm.DB) *GormPlanRepository {
	return &GormPlanRepository{db: db}
}

// FindByID finds a production plan by its ID within a tenant. Requirement
// rows are loaded separately through FindRequirements.
func (r *GormPlanRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*planning.ProductionPlan, error) {
	var plan planning.ProductionPlan
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// FindRecent lists plans for a tenant, newest first by default
func (r *GormPlanRepository) FindRecent(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]planning.ProductionPlan, error) {
	var plans []planning.ProductionPlan
	query := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID)

	sortField := ValidateSortField(filter.OrderBy, PlanSortFields, "created_at")
	query = query.Order(fmt.Sprintf("%s %s", sortField, ValidateSortOrder(filter.OrderDir)))

	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.Limit())
	}

	if err := query.Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

// Save persists a plan header. Requirements are saved row by row through
// SaveRequirement so a partial expansion failure leaves a resumable plan.
func (r *GormPlanRepository) Save(ctx context.Context, plan *planning.ProductionPlan) error {
	return r.db.WithContext(ctx).Omit("Requirements").Save(plan).Error
}

// SaveRequirement persists one material requirement row
func (r *GormPlanRepository) SaveRequirement(ctx context.Context, requirement *planning.MaterialRequirement) error {
	return r.db.WithContext(ctx).Save(requirement).Error
}

// FindRequirements lists the requirement rows of a plan
func (r *GormPlanRepository) FindRequirements(ctx context.Context, tenantID, planID uuid.UUID) ([]planning.MaterialRequirement, error) {
	var requirements []planning.MaterialRequirement
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND plan_id = ?", tenantID, planID).
		Order("created_at ASC").
		Find(&requirements).Error; err != nil {
		return nil, err
	}
	return requirements, nil
}

// GormSuggestionRepository implements SuggestionRepository using GORM
type GormSuggestionRepository struct {
	db *gorm.DB
}

// NewGormSuggestionRepository creates a new GormSuggestionRepository
func NewGormSuggestionRepository(db *gorm.DB) *GormSuggestionRepository {
	return &GormSuggestionRepository{db: db}
}

// FindByID finds a suggestion with its items by ID within a tenant
func (r *GormSuggestionRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*planning.SuggestedPurchaseOrder, error) {
	var suggestion planning.SuggestedPurchaseOrder
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&suggestion).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &suggestion, nil
}

// FindByPlan lists suggestions generated from one plan
func (r *GormSuggestionRepository) FindByPlan(ctx context.Context, tenantID, planID uuid.UUID) ([]planning.SuggestedPurchaseOrder, error) {
	var suggestions []planning.SuggestedPurchaseOrder
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND plan_id = ?", tenantID, planID).
		Order("created_at ASC").
		Find(&suggestions).Error; err != nil {
		return nil, err
	}
	return suggestions, nil
}

// FindPending lists pending suggestions, highest priority first by default
func (r *GormSuggestionRepository) FindPending(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]planning.SuggestedPurchaseOrder, error) {
	var suggestions []planning.SuggestedPurchaseOrder
	query := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND status = ?", tenantID, planning.SuggestionStatusPending)

	sortField := ValidateSortField(filter.OrderBy, SuggestionSortFields, "priority_score")
	query = query.Order(fmt.Sprintf("%s %s", sortField, ValidateSortOrder(filter.OrderDir)))

	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.Limit())
	}

	if err := query.Find(&suggestions).Error; err != nil {
		return nil, err
	}
	return suggestions, nil
}

// Save persists a suggestion with its items
func (r *GormSuggestionRepository) Save(ctx context.Context, suggestion *planning.SuggestedPurchaseOrder) error {
	return r.db.WithContext(ctx).Save(suggestion).Error
}

// ConvertPending flips a pending suggestion to converted with a guarded
// update. The status predicate makes concurrent approvals race on the same
// row: whichever transaction commits first wins, the loser affects zero rows
// and gets ErrAlreadyConverted, rolling back its purchase order.
func (r *GormSuggestionRepository) ConvertPending(ctx context.Context, tenantID, id, orderID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&planning.SuggestedPurchaseOrder{}).
		Where("tenant_id = ? AND id = ? AND status = ?", tenantID, id, planning.SuggestionStatusPending).
		Updates(map[string]interface{}{
			"status":             planning.SuggestionStatusConverted,
			"converted_order_id": orderID,
			"version":            gorm.Expr("version + 1"),
			"updated_at":         time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrAlreadyConverted
	}
	return nil
}

// GormConversionScope implements the suggestion-approval ConversionScope
// using GORM transactions: suggestion status change and purchase order
// creation commit or roll back together.
type GormConversionScope struct {
	db *gorm.DB
}

// NewGormConversionScope creates a new GormConversionScope
func NewGormConversionScope(db *gorm.DB) *GormConversionScope {
	return &GormConversionScope{db: db}
}

// Execute runs the given function within a database transaction
func (s *GormConversionScope) Execute(ctx context.Context, fn func(repos appplanning.ConversionRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormConversionRepositories{tx: tx})
	})
}

type gormConversionRepositories struct {
	tx *gorm.DB
}

func (r *gormConversionRepositories) SuggestionRepo() planning.SuggestionRepository {
	return NewGormSuggestionRepository(r.tx)
}

func (r *gormConversionRepositories) OrderRepo() trade.PurchaseOrderRepository {
	return NewGormPurchaseOrderRepository(r.tx)
}

var (
	_ planning.ForecastRepository        = (*GormForecastRepository)(nil)
	_ planning.PlanRepository            = (*GormPlanRepository)(nil)
	_ planning.SuggestionRepository      = (*GormSuggestionRepository)(nil)
	_ appplanning.ConversionScope        = (*GormConversionScope)(nil)
	_ appplanning.ConversionRepositories = (*gormConversionRepositories)(nil)
)
