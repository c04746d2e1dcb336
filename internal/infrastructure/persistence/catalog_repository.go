package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stockpilot/backend/internal/domain/catalog"
	"github.com/stockpilot/backend/internal/domain/shared"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID within a tenant
func (r *GormProductRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindActive lists active products for a tenant
func (r *GormProductRepository) FindActive(ctx context.Context, tenantID uuid.UUID) ([]catalog.Product, error) {
	var products []catalog.Product
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND status = ?", tenantID, catalog.ProductStatusActive).
		Order("code ASC").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// Save persists a product
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

// GormRawMaterialRepository implements RawMaterialRepository using GORM
type GormRawMaterialRepository struct {
	db *gorm.DB
}

// NewGormRawMaterialRepository creates a new GormRawMaterialRepository
func NewGormRawMaterialRepository(db *gorm.DB) *GormRawMaterialRepository {
	return &GormRawMaterialRepository{db: db}
}

// FindByID finds a raw material by its ID within a tenant
func (r *GormRawMaterialRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*catalog.RawMaterial, error) {
	var material catalog.RawMaterial
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&material).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &material, nil
}

// Save persists a raw material
func (r *GormRawMaterialRepository) Save(ctx context.Context, material *catalog.RawMaterial) error {
	return r.db.WithContext(ctx).Save(material).Error
}

// GormVendorRepository implements VendorRepository using GORM
type GormVendorRepository struct {
	db *gorm.DB
}

// NewGormVendorRepository creates a new GormVendorRepository
func NewGormVendorRepository(db *gorm.DB) *GormVendorRepository {
	return &GormVendorRepository{db: db}
}

// FindByID finds a vendor by its ID within a tenant
func (r *GormVendorRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Vendor, error) {
	var vendor catalog.Vendor
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&vendor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &vendor, nil
}

// Save persists a vendor
func (r *GormVendorRepository) Save(ctx context.Context, vendor *catalog.Vendor) error {
	return r.db.WithContext(ctx).Save(vendor).Error
}

// GormBOMRepository implements BOMRepository using GORM
type GormBOMRepository struct {
	db *gorm.DB
}

// NewGormBOMRepository creates a new GormBOMRepository
func NewGormBOMRepository(db *gorm.DB) *GormBOMRepository {
	return &GormBOMRepository{db: db}
}

// FindByID finds a BOM with its components by ID within a tenant
func (r *GormBOMRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*catalog.BOM, error) {
	var bom catalog.BOM
	if err := r.db.WithContext(ctx).
		Preload("Components").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&bom).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &bom, nil
}

// FindActiveByProduct returns the active BOM for a product, or ErrNotFound
func (r *GormBOMRepository) FindActiveByProduct(ctx context.Context, tenantID, productID uuid.UUID) (*catalog.BOM, error) {
	var bom catalog.BOM
	if err := r.db.WithContext(ctx).
		Preload("Components").
		Where("tenant_id = ? AND product_id = ? AND active = ?", tenantID, productID, true).
		Order("created_at DESC").
		First(&bom).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &bom, nil
}

// FindComponents lists the components of a BOM
func (r *GormBOMRepository) FindComponents(ctx context.Context, bomID uuid.UUID) ([]catalog.BOMComponent, error) {
	var components []catalog.BOMComponent
	if err := r.db.WithContext(ctx).
		Where("bom_id = ?", bomID).
		Order("created_at ASC").
		Find(&components).Error; err != nil {
		return nil, err
	}
	return components, nil
}

// Save persists a BOM with its components
func (r *GormBOMRepository) Save(ctx context.Context, bom *catalog.BOM) error {
	return r.db.WithContext(ctx).Save(bom).Error
}

var (
	_ catalog.ProductRepository     = (*GormProductRepository)(nil)
	_ catalog.RawMaterialRepository = (*GormRawMaterialRepository)(nil)
	_ catalog.VendorRepository      = (*GormVendorRepository)(nil)
	_ catalog.BOMRepository         = (*GormBOMRepository)(nil)
)
