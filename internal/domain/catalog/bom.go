package catalog

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockpilot/backend/internal/domain/shared"
)

// BOM represents a bill of materials: the recipe of raw-material components
// needed to produce one unit of a finished product.
type BOM struct {
	shared.TenantAggregateRoot
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	Revision  int       `gorm:"not null;default:1"`
	Active    bool      `gorm:"not null;default:true"`

	Components []BOMComponent `gorm:"foreignKey:BOMID;references:ID"`
}

// TableName returns the table name for GORM
func (BOM) TableName() string {
	return "boms"
}

// BOMComponent is one raw-material line of a BOM
type BOMComponent struct {
	shared.BaseEntity
	BOMID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	RawMaterialID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	QuantityPerUnit decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Unit            string          `gorm:"type:varchar(20);not null"`
}

// TableName returns the table name for GORM
func (BOMComponent) TableName() string {
	return "bom_components"
}

// NewBOM creates a new active BOM for a product
func NewBOM(tenantID, productID uuid.UUID) (*BOM, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	return &BOM{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ProductID:           productID,
		Revision:            1,
		Active:              true,
		Components:          make([]BOMComponent, 0),
	}, nil
}

// AddComponent appends a raw-material component to the BOM
func (b *BOM) AddComponent(materialID uuid.UUID, quantityPerUnit decimal.Decimal, unit string) error {
	if materialID == uuid.Nil {
		return shared.NewDomainError("INVALID_MATERIAL", "Material ID cannot be empty")
	}
	if quantityPerUnit.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Component quantity must be positive")
	}
	b.Components = append(b.Components, BOMComponent{
		BaseEntity:      shared.NewBaseEntity(),
		BOMID:           b.ID,
		RawMaterialID:   materialID,
		QuantityPerUnit: quantityPerUnit,
		Unit:            unit,
	})
	return nil
}
