package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ProductRepository defines persistence for products
type ProductRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Product, error)
	FindActive(ctx context.Context, tenantID uuid.UUID) ([]Product, error)
	Save(ctx context.Context, product *Product) error
}

// RawMaterialRepository defines persistence for raw materials
type RawMaterialRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*RawMaterial, error)
	Save(ctx context.Context, material *RawMaterial) error
}

// VendorRepository defines persistence for vendors
type VendorRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Vendor, error)
	Save(ctx context.Context, vendor *Vendor) error
}

// BOMRepository defines persistence for bills of materials
type BOMRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*BOM, error)
	// FindActiveByProduct returns the active BOM for a product, or ErrNotFound
	FindActiveByProduct(ctx context.Context, tenantID, productID uuid.UUID) (*BOM, error)
	FindComponents(ctx context.Context, bomID uuid.UUID) ([]BOMComponent, error)
	Save(ctx context.Context, bom *BOM) error
}
