package planning

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockpilot/backend/internal/domain/shared"
)

// PlanStatus is the lifecycle status of a production plan
type PlanStatus string

const (
	PlanStatusDraft     PlanStatus = "DRAFT"
	PlanStatusConfirmed PlanStatus = "CONFIRMED"
	PlanStatusCancelled PlanStatus = "CANCELLED"
)

// OrderQuantityBuffer is the multiplier applied to shortages when suggesting
// an order quantity, covering yield loss and demand variance.
var OrderQuantityBuffer = decimal.NewFromFloat(1.1)

// ProductionPlan converts a demand forecast into a planned production
// quantity, net of current inventory and a safety-stock buffer.
type ProductionPlan struct {
	shared.TenantAggregateRoot
	ForecastID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	BOMID              *uuid.UUID      `gorm:"type:uuid"`
	PlannedQuantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CurrentInventory   decimal.Decimal `gorm:"type:decimal(18,4);not null"` // Snapshot at plan time
	SafetyStock        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	SafetyStockPercent decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	RequiredByDate     time.Time       `gorm:"type:timestamptz;not null"`
	Status             PlanStatus      `gorm:"type:varchar(20);not null;default:'DRAFT'"`

	Requirements []MaterialRequirement `gorm:"foreignKey:PlanID;references:ID"`
}

// TableName returns the table name for GORM
func (ProductionPlan) TableName() string {
	return "production_plans"
}

// NewProductionPlan derives a draft plan from a forecast. The planned
// quantity is never negative: a surplus of current inventory produces a
// zero-quantity plan.
func NewProductionPlan(
	tenantID, forecastID, productID uuid.UUID,
	forecastedQty, currentInventory, safetyStockPercent decimal.Decimal,
	requiredBy time.Time,
) (*ProductionPlan, error) {
	if forecastID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_FORECAST", "Forecast ID cannot be empty")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if safetyStockPercent.IsNegative() {
		return nil, shared.NewDomainError("INVALID_SAFETY_STOCK", "Safety stock percent cannot be negative")
	}

	safetyStock := forecastedQty.Mul(safetyStockPercent).Div(decimal.NewFromInt(100)).Round(4)
	planned := forecastedQty.Add(safetyStock).Sub(currentInventory)
	if planned.IsNegative() {
		planned = decimal.Zero
	}

	return &ProductionPlan{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ForecastID:          forecastID,
		ProductID:           productID,
		PlannedQuantity:     planned,
		CurrentInventory:    currentInventory,
		SafetyStock:         safetyStock,
		SafetyStockPercent:  safetyStockPercent,
		RequiredByDate:      requiredBy,
		Status:              PlanStatusDraft,
		Requirements:        make([]MaterialRequirement, 0),
	}, nil
}

// SetBOM links the BOM the plan was expanded against
func (p *ProductionPlan) SetBOM(bomID uuid.UUID) {
	p.BOMID = &bomID
}

// Confirm moves the plan out of draft
func (p *ProductionPlan) Confirm() error {
	if p.Status != PlanStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Only draft plans can be confirmed")
	}
	p.Status = PlanStatusConfirmed
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// Cancel abandons a draft plan
func (p *ProductionPlan) Cancel() error {
	if p.Status != PlanStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Only draft plans can be cancelled")
	}
	p.Status = PlanStatusCancelled
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// MaterialRequirement is one BOM-component row of a production plan. Vendor,
// cost and lead time are captured at plan-generation time, not looked up
// live later.
type MaterialRequirement struct {
	shared.BaseEntity
	TenantID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	PlanID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	RawMaterialID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	RequiredQuantity  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CurrentInventory  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	OnOrderQuantity   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ShortageQuantity  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	SuggestedOrderQty decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Unit              string          `gorm:"type:varchar(20);not null"`
	PreferredVendorID *uuid.UUID      `gorm:"type:uuid;index"`
	EstimatedUnitCost decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	EstimatedCost     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	LeadTimeDays      int             `gorm:"not null;default:0"`
	RequiredByDate    time.Time       `gorm:"type:timestamptz;not null"`
	IsUrgent          bool            `gorm:"not null;default:false"`
	LatestOrderDate   *time.Time      `gorm:"type:timestamptz"`
}

// TableName returns the table name for GORM
func (MaterialRequirement) TableName() string {
	return "material_requirements"
}

// NewMaterialRequirement computes one requirement row.
// shortage = max(0, required - current - onOrder);
// suggested order quantity = shortage * OrderQuantityBuffer.
func NewMaterialRequirement(
	tenantID, planID, materialID uuid.UUID,
	requiredQty, currentQty, onOrderQty decimal.Decimal,
	unit string,
	preferredVendorID *uuid.UUID,
	estimatedUnitCost decimal.Decimal,
	leadTimeDays int,
	requiredBy time.Time,
) (*MaterialRequirement, error) {
	if materialID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_MATERIAL", "Material ID cannot be empty")
	}
	if requiredQty.IsNegative() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Required quantity cannot be negative")
	}

	shortage := requiredQty.Sub(currentQty).Sub(onOrderQty)
	if shortage.IsNegative() {
		shortage = decimal.Zero
	}
	suggested := shortage.Mul(OrderQuantityBuffer).Round(4)

	return &MaterialRequirement{
		BaseEntity:        shared.NewBaseEntity(),
		TenantID:          tenantID,
		PlanID:            planID,
		RawMaterialID:     materialID,
		RequiredQuantity:  requiredQty,
		CurrentInventory:  currentQty,
		OnOrderQuantity:   onOrderQty,
		ShortageQuantity:  shortage,
		SuggestedOrderQty: suggested,
		Unit:              unit,
		PreferredVendorID: preferredVendorID,
		EstimatedUnitCost: estimatedUnitCost,
		EstimatedCost:     suggested.Mul(estimatedUnitCost).Round(2),
		LeadTimeDays:      leadTimeDays,
		RequiredByDate:    requiredBy,
	}, nil
}

// HasShortage returns true if the requirement cannot be covered by current
// plus on-order supply
func (r *MaterialRequirement) HasShortage() bool {
	return r.ShortageQuantity.GreaterThan(decimal.Zero)
}

// ShortageRatio returns shortage/required, zero when nothing is required
func (r *MaterialRequirement) ShortageRatio() decimal.Decimal {
	if r.RequiredQuantity.IsZero() {
		return decimal.Zero
	}
	return r.ShortageQuantity.Div(r.RequiredQuantity)
}

// ApplyLeadTime back-fills vendor lead-time derived fields after the
// suggestion pass has resolved the vendor
func (r *MaterialRequirement) ApplyLeadTime(leadTimeDays int, isUrgent bool, latestOrderDate time.Time) {
	r.LeadTimeDays = leadTimeDays
	r.IsUrgent = isUrgent
	r.LatestOrderDate = &latestOrderDate
	r.UpdatedAt = time.Now()
}
