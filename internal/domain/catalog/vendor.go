package catalog

import (
	"strings"

	"github.com/google/uuid"
	"github.com/stockpilot/backend/internal/domain/shared"
)

// DefaultVendorLeadTimeDays is used when a vendor has no configured lead time
const DefaultVendorLeadTimeDays = 14

// Vendor represents a supplier of raw materials
type Vendor struct {
	shared.TenantAggregateRoot
	Code         string `gorm:"type:varchar(50);not null;uniqueIndex:idx_vendor_tenant_code,priority:2"`
	Name         string `gorm:"type:varchar(200);not null"`
	ContactEmail string `gorm:"type:varchar(200)"`
	LeadTimeDays int    `gorm:"not null;default:0"` // 0 means not configured
	Active       bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Vendor) TableName() string {
	return "vendors"
}

// NewVendor creates a new vendor
func NewVendor(tenantID uuid.UUID, code, name string) (*Vendor, error) {
	if strings.TrimSpace(code) == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Vendor code cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Vendor name cannot be empty")
	}
	return &Vendor{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                strings.ToUpper(code),
		Name:                name,
		Active:              true,
	}, nil
}

// EffectiveLeadTimeDays returns the configured lead time, falling back to the default
func (v *Vendor) EffectiveLeadTimeDays() int {
	if v.LeadTimeDays > 0 {
		return v.LeadTimeDays
	}
	return DefaultVendorLeadTimeDays
}
