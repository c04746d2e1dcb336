package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockpilot/backend/internal/domain/shared"
)

// MaterialBalance is the lot-less balance for raw-material inventory, keyed
// only by material and warehouse. Raw materials do not carry lot semantics;
// production consumption and ad-hoc corrections act on a single bucket.
type MaterialBalance struct {
	shared.TenantAggregateRoot
	RawMaterialID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_material_balance,priority:2"`
	WarehouseID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_material_balance,priority:3"`
	Available     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (MaterialBalance) TableName() string {
	return "material_balances"
}

// NewMaterialBalance creates an empty material balance
func NewMaterialBalance(tenantID, materialID, warehouseID uuid.UUID) (*MaterialBalance, error) {
	if materialID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_MATERIAL", "Material ID cannot be empty")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse ID cannot be empty")
	}
	return &MaterialBalance{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		RawMaterialID:       materialID,
		WarehouseID:         warehouseID,
		Available:           decimal.Zero,
	}, nil
}

// Receive adds received material quantity
func (b *MaterialBalance) Receive(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Receipt quantity must be positive")
	}
	b.Available = b.Available.Add(quantity)
	b.touch()
	return nil
}

// Consume removes material quantity used by production
func (b *MaterialBalance) Consume(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Consumption quantity must be positive")
	}
	if b.Available.LessThan(quantity) {
		return shared.ErrInsufficientStock
	}
	b.Available = b.Available.Sub(quantity)
	b.touch()
	return nil
}

// Adjust applies a manual correction, positive or negative
func (b *MaterialBalance) Adjust(delta decimal.Decimal) error {
	if delta.IsZero() {
		return shared.NewDomainError("INVALID_QUANTITY", "Adjustment delta cannot be zero")
	}
	if delta.IsNegative() && b.Available.LessThan(delta.Neg()) {
		return shared.ErrInsufficientStock
	}
	b.Available = b.Available.Add(delta)
	b.touch()
	return nil
}

func (b *MaterialBalance) touch() {
	b.UpdatedAt = time.Now()
	b.IncrementVersion()
}
