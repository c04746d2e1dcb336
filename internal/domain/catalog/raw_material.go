package catalog

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockpilot/backend/internal/domain/shared"
)

// RawMaterial represents a purchasable raw material consumed by production.
// Cost and lead time here are reference data; planning snapshots them onto
// requirement rows at plan-generation time.
type RawMaterial struct {
	shared.TenantAggregateRoot
	Code              string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_material_tenant_code,priority:2"`
	Name              string          `gorm:"type:varchar(200);not null"`
	Unit              string          `gorm:"type:varchar(20);not null"`
	PreferredVendorID *uuid.UUID      `gorm:"type:uuid;index"`
	UnitCost          decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	LeadTimeDays      int             `gorm:"not null;default:0"`
	Active            bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (RawMaterial) TableName() string {
	return "raw_materials"
}

// NewRawMaterial creates a new raw material
func NewRawMaterial(tenantID uuid.UUID, code, name, unit string) (*RawMaterial, error) {
	if strings.TrimSpace(code) == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Material code cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Material name cannot be empty")
	}
	if strings.TrimSpace(unit) == "" {
		return nil, shared.NewDomainError("INVALID_UNIT", "Material unit cannot be empty")
	}
	return &RawMaterial{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                strings.ToUpper(code),
		Name:                name,
		Unit:                unit,
		UnitCost:            decimal.Zero,
		Active:              true,
	}, nil
}

// SetSourcing sets the preferred vendor, cost and lead time reference data
func (m *RawMaterial) SetSourcing(vendorID *uuid.UUID, unitCost decimal.Decimal, leadTimeDays int) error {
	if unitCost.IsNegative() {
		return shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}
	if leadTimeDays < 0 {
		return shared.NewDomainError("INVALID_LEAD_TIME", "Lead time cannot be negative")
	}
	m.PreferredVendorID = vendorID
	m.UnitCost = unitCost
	m.LeadTimeDays = leadTimeDays
	m.IncrementVersion()
	return nil
}
