package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockpilot/backend/internal/domain/shared"
)

// LotRepository defines persistence for inventory lots
type LotRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Lot, error)
	FindByCode(ctx context.Context, tenantID uuid.UUID, lotCode string) (*Lot, error)
	FindByProduct(ctx context.Context, tenantID, productID uuid.UUID, filter shared.Filter) ([]Lot, error)
	Save(ctx context.Context, lot *Lot) error
}

// InventoryBalanceRepository defines persistence for lot balances
type InventoryBalanceRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*InventoryBalance, error)
	// FindByLotAndWarehouse finds the balance row for a lot-warehouse pair
	FindByLotAndWarehouse(ctx context.Context, tenantID, lotID, warehouseID uuid.UUID) (*InventoryBalance, error)
	// FindByLotAndWarehouseForUpdate locks the balance row for the duration of
	// the surrounding transaction. Reserve/release must use this variant.
	FindByLotAndWarehouseForUpdate(ctx context.Context, tenantID, lotID, warehouseID uuid.UUID) (*InventoryBalance, error)
	FindByProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]InventoryBalance, error)
	// SumAvailableByProduct sums the available bucket for a product across warehouses
	SumAvailableByProduct(ctx context.Context, tenantID, productID uuid.UUID) (decimal.Decimal, error)
	// SumAvailableByProductAndWarehouse sums the available bucket for a product in one warehouse
	SumAvailableByProductAndWarehouse(ctx context.Context, tenantID, productID, warehouseID uuid.UUID) (decimal.Decimal, error)
	// ListTrackedPairs returns the distinct product/warehouse pairs with any balance rows
	ListTrackedPairs(ctx context.Context, tenantID uuid.UUID) ([]TrackedPair, error)
	Save(ctx context.Context, balance *InventoryBalance) error
}

// TrackedPair is a product/warehouse combination tracked by the ledger
type TrackedPair struct {
	ProductID   uuid.UUID
	WarehouseID uuid.UUID
}

// ReservationRepository defines persistence for reservations
type ReservationRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Reservation, error)
	// FindActiveByReference returns active reservations for a lot/warehouse and
	// reference, oldest first
	FindActiveByReference(ctx context.Context, tenantID, lotID, warehouseID uuid.UUID, referenceType, referenceID string) ([]Reservation, error)
	// SumActiveByLotAndWarehouse sums active reservation quantity for a pair
	SumActiveByLotAndWarehouse(ctx context.Context, tenantID, lotID, warehouseID uuid.UUID) (decimal.Decimal, error)
	Save(ctx context.Context, reservation *Reservation) error
}

// InventoryTransactionRepository is the append-only transaction log
type InventoryTransactionRepository interface {
	Append(ctx context.Context, tx *InventoryTransaction) error
	FindByBalance(ctx context.Context, tenantID, balanceID uuid.UUID, filter shared.Filter) ([]InventoryTransaction, error)
	FindByProduct(ctx context.Context, tenantID, productID uuid.UUID, filter shared.Filter) ([]InventoryTransaction, error)
	CountByBalance(ctx context.Context, tenantID, balanceID uuid.UUID) (int64, error)
}

// MaterialBalanceRepository defines persistence for lot-less material balances
type MaterialBalanceRepository interface {
	FindByMaterialAndWarehouse(ctx context.Context, tenantID, materialID, warehouseID uuid.UUID) (*MaterialBalance, error)
	FindByMaterialAndWarehouseForUpdate(ctx context.Context, tenantID, materialID, warehouseID uuid.UUID) (*MaterialBalance, error)
	SumAvailableByMaterial(ctx context.Context, tenantID, materialID uuid.UUID) (decimal.Decimal, error)
	Save(ctx context.Context, balance *MaterialBalance) error
}
