package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/stockpilot/backend/internal/domain/inventory"
	"github.com/stockpilot/backend/internal/domain/shared"
)

// GormLotRepository implements LotRepository using GORM
type GormLotRepository struct {
	db *gorm.DB
}

// NewGormLotRepository creates a new GormLotRepository
func NewGormLotRepository(db *gorm.DB) *GormLotRepository {
	return &GormLotRepository{db: db}
}

// FindByID finds a lot by its ID within a tenant
func (r *GormLotRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*inventory.Lot, error) {
	var lot inventory.Lot
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&lot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &lot, nil
}

// FindByCode finds a lot by its code within a tenant
func (r *GormLotRepository) FindByCode(ctx context.Context, tenantID uuid.UUID, lotCode string) (*inventory.Lot, error) {
	var lot inventory.Lot
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND lot_code = ?", tenantID, lotCode).
		First(&lot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &lot, nil
}

// FindByProduct lists lots for a product, newest receipt first by default
func (r *GormLotRepository) FindByProduct(ctx context.Context, tenantID, productID uuid.UUID, filter shared.Filter) ([]inventory.Lot, error) {
	var lots []inventory.Lot
	query := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ?", tenantID, productID)

	sortField := ValidateSortField(filter.OrderBy, LotSortFields, "received_at")
	query = query.Order(fmt.Sprintf("%s %s", sortField, ValidateSortOrder(filter.OrderDir)))

	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.Limit())
	}

	if err := query.Find(&lots).Error; err != nil {
		return nil, err
	}
	return lots, nil
}

// Save persists a lot
func (r *GormLotRepository) Save(ctx context.Context, lot *inventory.Lot) error {
	return r.db.WithContext(ctx).Save(lot).Error
}

// GormInventoryBalanceRepository implements InventoryBalanceRepository using GORM
type GormInventoryBalanceRepository struct {
	db *gorm.DB
}

// NewGormInventoryBalanceRepository creates a new GormInventoryBalanceRepository
func NewGormInventoryBalanceRepository(db *gorm.DB) *GormInventoryBalanceRepository {
	return &GormInventoryBalanceRepository{db: db}
}

// FindByID finds a balance row by its ID within a tenant
func (r *GormInventoryBalanceRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*inventory.InventoryBalance, error) {
	var balance inventory.InventoryBalance
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&balance).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &balance, nil
}

// FindByLotAndWarehouse finds the balance row for a lot-warehouse pair
func (r *GormInventoryBalanceRepository) FindByLotAndWarehouse(ctx context.Context, tenantID, lotID, warehouseID uuid.UUID) (*inventory.InventoryBalance, error) {
	return r.findByLotAndWarehouse(ctx, r.db, tenantID, lotID, warehouseID)
}

// FindByLotAndWarehouseForUpdate locks the balance row for the duration of the
// surrounding transaction
func (r *GormInventoryBalanceRepository) FindByLotAndWarehouseForUpdate(ctx context.Context, tenantID, lotID, warehouseID uuid.UUID) (*inventory.InventoryBalance, error) {
	locked := forUpdate(r.db)
	return r.findByLotAndWarehouse(ctx, locked, tenantID, lotID, warehouseID)
}

func (r *GormInventoryBalanceRepository) findByLotAndWarehouse(ctx context.Context, db *gorm.DB, tenantID, lotID, warehouseID uuid.UUID) (*inventory.InventoryBalance, error) {
	var balance inventory.InventoryBalance
	if err := db.WithContext(ctx).
		Where("tenant_id = ? AND lot_id = ? AND warehouse_id = ?", tenantID, lotID, warehouseID).
		First(&balance).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &balance, nil
}

// FindByProduct lists balance rows for a product across lots and warehouses
func (r *GormInventoryBalanceRepository) FindByProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]inventory.InventoryBalance, error) {
	var balances []inventory.InventoryBalance
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ?", tenantID, productID).
		Order("created_at ASC").
		Find(&balances).Error; err != nil {
		return nil, err
	}
	return balances, nil
}

// SumAvailableByProduct sums the available bucket for a product across warehouses
func (r *GormInventoryBalanceRepository) SumAvailableByProduct(ctx context.Context, tenantID, productID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&inventory.InventoryBalance{}).
		Select("COALESCE(SUM(available), 0) as total").
		Where("tenant_id = ? AND product_id = ?", tenantID, productID).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// SumAvailableByProductAndWarehouse sums the available bucket for a product in one warehouse
func (r *GormInventoryBalanceRepository) SumAvailableByProductAndWarehouse(ctx context.Context, tenantID, productID, warehouseID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&inventory.InventoryBalance{}).
		Select("COALESCE(SUM(available), 0) as total").
		Where("tenant_id = ? AND product_id = ? AND warehouse_id = ?", tenantID, productID, warehouseID).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// ListTrackedPairs returns the distinct product/warehouse pairs with balance rows
func (r *GormInventoryBalanceRepository) ListTrackedPairs(ctx context.Context, tenantID uuid.UUID) ([]inventory.TrackedPair, error) {
	var pairs []inventory.TrackedPair
	if err := r.db.WithContext(ctx).
		Model(&inventory.InventoryBalance{}).
		Select("DISTINCT product_id, warehouse_id").
		Where("tenant_id = ?", tenantID).
		Order("product_id, warehouse_id").
		Scan(&pairs).Error; err != nil {
		return nil, err
	}
	return pairs, nil
}

// Save persists a balance row
func (r *GormInventoryBalanceRepository) Save(ctx context.Context, balance *inventory.InventoryBalance) error {
	return r.db.WithContext(ctx).Save(balance).Error
}

// GormReservationRepository implements ReservationRepository using GORM
type GormReservationRepository struct {
	db *gorm.DB
}

// NewGormReservationRepository creates a new GormReservationRepository
func NewGormReservationRepository(db *gorm.DB) *GormReservationRepository {
	return &GormReservationRepository{db: db}
}

// FindByID finds a reservation by its ID within a tenant
func (r *GormReservationRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*inventory.Reservation, error) {
	var reservation inventory.Reservation
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&reservation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &reservation, nil
}

// FindActiveByReference returns active reservations for a lot/warehouse and
// reference, oldest first. Release and consume draw these down in FIFO order.
func (r *GormReservationRepository) FindActiveByReference(ctx context.Context, tenantID, lotID, warehouseID uuid.UUID, referenceType, referenceID string) ([]inventory.Reservation, error) {
	var reservations []inventory.Reservation
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND lot_id = ? AND warehouse_id = ?", tenantID, lotID, warehouseID).
		Where("reference_type = ? AND reference_id = ?", referenceType, referenceID).
		Where("released = ? AND consumed = ? AND quantity > 0", false, false).
		Order("created_at ASC").
		Find(&reservations).Error; err != nil {
		return nil, err
	}
	return reservations, nil
}

// SumActiveByLotAndWarehouse sums active reservation quantity for a pair
func (r *GormReservationRepository) SumActiveByLotAndWarehouse(ctx context.Context, tenantID, lotID, warehouseID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&inventory.Reservation{}).
		Select("COALESCE(SUM(quantity), 0) as total").
		Where("tenant_id = ? AND lot_id = ? AND warehouse_id = ?", tenantID, lotID, warehouseID).
		Where("released = ? AND consumed = ?", false, false).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// Save persists a reservation
func (r *GormReservationRepository) Save(ctx context.Context, reservation *inventory.Reservation) error {
	return r.db.WithContext(ctx).Save(reservation).Error
}

// GormInventoryTransactionRepository implements the append-only transaction log
type GormInventoryTransactionRepository struct {
	db *gorm.DB
}

// NewGormInventoryTransactionRepository creates a new GormInventoryTransactionRepository
func NewGormInventoryTransactionRepository(db *gorm.DB) *GormInventoryTransactionRepository {
	return &GormInventoryTransactionRepository{db: db}
}

// Append inserts a transaction record. Records are never updated or deleted.
func (r *GormInventoryTransactionRepository) Append(ctx context.Context, tx *inventory.InventoryTransaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

// FindByBalance lists transactions for one balance row
func (r *GormInventoryTransactionRepository) FindByBalance(ctx context.Context, tenantID, balanceID uuid.UUID, filter shared.Filter) ([]inventory.InventoryTransaction, error) {
	query := r.db.WithContext(ctx).
		Where("tenant_id = ? AND balance_id = ?", tenantID, balanceID)
	return r.list(query, filter)
}

// FindByProduct lists transactions for a product or raw material
func (r *GormInventoryTransactionRepository) FindByProduct(ctx context.Context, tenantID, productID uuid.UUID, filter shared.Filter) ([]inventory.InventoryTransaction, error) {
	query := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ?", tenantID, productID)
	return r.list(query, filter)
}

func (r *GormInventoryTransactionRepository) list(query *gorm.DB, filter shared.Filter) ([]inventory.InventoryTransaction, error) {
	var transactions []inventory.InventoryTransaction

	sortField := ValidateSortField(filter.OrderBy, TransactionSortFields, "transaction_date")
	query = query.Order(fmt.Sprintf("%s %s", sortField, ValidateSortOrder(filter.OrderDir)))

	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.Limit())
	}

	if err := query.Find(&transactions).Error; err != nil {
		return nil, err
	}
	return transactions, nil
}

// CountByBalance counts transactions for one balance row
func (r *GormInventoryTransactionRepository) CountByBalance(ctx context.Context, tenantID, balanceID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&inventory.InventoryTransaction{}).
		Where("tenant_id = ? AND balance_id = ?", tenantID, balanceID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GormMaterialBalanceRepository implements MaterialBalanceRepository using GORM
type GormMaterialBalanceRepository struct {
	db *gorm.DB
}

// NewGormMaterialBalanceRepository creates a new GormMaterialBalanceRepository
func NewGormMaterialBalanceRepository(db *gorm.DB) *GormMaterialBalanceRepository {
	return &GormMaterialBalanceRepository{db: db}
}

// FindByMaterialAndWarehouse finds the balance row for a material-warehouse pair
func (r *GormMaterialBalanceRepository) FindByMaterialAndWarehouse(ctx context.Context, tenantID, materialID, warehouseID uuid.UUID) (*inventory.MaterialBalance, error) {
	return r.find(ctx, r.db, tenantID, materialID, warehouseID)
}

// FindByMaterialAndWarehouseForUpdate locks the balance row for the duration
// of the surrounding transaction
func (r *GormMaterialBalanceRepository) FindByMaterialAndWarehouseForUpdate(ctx context.Context, tenantID, materialID, warehouseID uuid.UUID) (*inventory.MaterialBalance, error) {
	locked := forUpdate(r.db)
	return r.find(ctx, locked, tenantID, materialID, warehouseID)
}

func (r *GormMaterialBalanceRepository) find(ctx context.Context, db *gorm.DB, tenantID, materialID, warehouseID uuid.UUID) (*inventory.MaterialBalance, error) {
	var balance inventory.MaterialBalance
	if err := db.WithContext(ctx).
		Where("tenant_id = ? AND raw_material_id = ? AND warehouse_id = ?", tenantID, materialID, warehouseID).
		First(&balance).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &balance, nil
}

// SumAvailableByMaterial sums the available quantity for a material across warehouses
func (r *GormMaterialBalanceRepository) SumAvailableByMaterial(ctx context.Context, tenantID, materialID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&inventory.MaterialBalance{}).
		Select("COALESCE(SUM(available), 0) as total").
		Where("tenant_id = ? AND raw_material_id = ?", tenantID, materialID).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// Save persists a material balance row
func (r *GormMaterialBalanceRepository) Save(ctx context.Context, balance *inventory.MaterialBalance) error {
	return r.db.WithContext(ctx).Save(balance).Error
}

var (
	_ inventory.LotRepository                  = (*GormLotRepository)(nil)
	_ inventory.InventoryBalanceRepository     = (*GormInventoryBalanceRepository)(nil)
	_ inventory.ReservationRepository          = (*GormReservationRepository)(nil)
	_ inventory.InventoryTransactionRepository = (*GormInventoryTransactionRepository)(nil)
	_ inventory.MaterialBalanceRepository      = (*GormMaterialBalanceRepository)(nil)
)
