package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockpilot/backend/internal/domain/shared"
)

// InventoryBalance is the mutable quantity record for a (lot, warehouse) pair.
// It is the aggregate root for all quantity mutations. Quantity is split into
// four buckets; at all times the buckets sum to TotalReceived - TotalConsumed
// and no bucket is negative.
type InventoryBalance struct {
	shared.TenantAggregateRoot
	LotID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_balance_lot_warehouse,priority:2"`
	WarehouseID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_balance_lot_warehouse,priority:3"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null;index"`

	Available decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // Free for reservation/consumption
	Reserved  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // Claimed by active reservations
	Hold      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // Quarantined, pending QA
	Damaged   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // Unsellable

	TotalReceived decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalConsumed decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (InventoryBalance) TableName() string {
	return "inventory_balances"
}

// NewInventoryBalance creates an empty balance for a lot-warehouse pair
func NewInventoryBalance(tenantID, lotID, warehouseID, productID uuid.UUID) (*InventoryBalance, error) {
	if lotID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_LOT", "Lot ID cannot be empty")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse ID cannot be empty")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	return &InventoryBalance{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		LotID:               lotID,
		WarehouseID:         warehouseID,
		ProductID:           productID,
		Available:           decimal.Zero,
		Reserved:            decimal.Zero,
		Hold:                decimal.Zero,
		Damaged:             decimal.Zero,
		TotalReceived:       decimal.Zero,
		TotalConsumed:       decimal.Zero,
	}, nil
}

// OnHandQuantity returns the sum of all four buckets
func (b *InventoryBalance) OnHandQuantity() decimal.Decimal {
	return b.Available.Add(b.Reserved).Add(b.Hold).Add(b.Damaged)
}

// CheckInvariant verifies the bucket-sum invariant. It returns an error when
// the buckets have diverged from the receipt/consumption totals.
func (b *InventoryBalance) CheckInvariant() error {
	if b.Available.IsNegative() || b.Reserved.IsNegative() || b.Hold.IsNegative() || b.Damaged.IsNegative() {
		return shared.NewDomainError("NEGATIVE_BUCKET", "Balance bucket is negative")
	}
	expected := b.TotalReceived.Sub(b.TotalConsumed)
	if !b.OnHandQuantity().Equal(expected) {
		return shared.NewDomainError("BALANCE_DIVERGED", "Bucket sum does not match receipt/consumption totals")
	}
	return nil
}

// Receive adds received quantity to the available bucket
func (b *InventoryBalance) Receive(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Receipt quantity must be positive")
	}
	b.Available = b.Available.Add(quantity)
	b.TotalReceived = b.TotalReceived.Add(quantity)
	b.touch()
	b.AddDomainEvent(NewStockReceivedEvent(b, quantity))
	return nil
}

// Reserve moves quantity from available to reserved and returns the
// reservation claim. Fails with ErrInsufficientStock when the available
// bucket cannot cover the request; the balance is left unmodified.
func (b *InventoryBalance) Reserve(quantity decimal.Decimal, referenceType, referenceID string) (*Reservation, error) {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Reservation quantity must be positive")
	}
	if referenceType == "" || referenceID == "" {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Reference type and ID are required")
	}
	if b.Available.LessThan(quantity) {
		return nil, shared.ErrInsufficientStock
	}

	b.Available = b.Available.Sub(quantity)
	b.Reserved = b.Reserved.Add(quantity)
	b.touch()

	reservation := NewReservation(b.TenantID, b.LotID, b.WarehouseID, b.ProductID, quantity, referenceType, referenceID)
	b.AddDomainEvent(NewStockReservedEvent(b, quantity, referenceType, referenceID))
	return reservation, nil
}

// Release moves quantity from reserved back to available. The caller is
// responsible for matching the quantity against active reservation rows.
func (b *InventoryBalance) Release(quantity decimal.Decimal, referenceType, referenceID string) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Release quantity must be positive")
	}
	if b.Reserved.LessThan(quantity) {
		return shared.NewDomainError("INVALID_STATE", "Release exceeds reserved quantity")
	}
	b.Reserved = b.Reserved.Sub(quantity)
	b.Available = b.Available.Add(quantity)
	b.touch()
	b.AddDomainEvent(NewStockReleasedEvent(b, quantity, referenceType, referenceID))
	return nil
}

// ConsumeReserved removes reserved quantity permanently (shipment or
// production consumption against an active reservation).
func (b *InventoryBalance) ConsumeReserved(quantity decimal.Decimal, referenceType, referenceID string) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Consumption quantity must be positive")
	}
	if b.Reserved.LessThan(quantity) {
		return shared.NewDomainError("INVALID_STATE", "Consumption exceeds reserved quantity")
	}
	b.Reserved = b.Reserved.Sub(quantity)
	b.TotalConsumed = b.TotalConsumed.Add(quantity)
	b.touch()
	b.AddDomainEvent(NewStockConsumedEvent(b, quantity, referenceType, referenceID))
	return nil
}

// MoveToHold quarantines available quantity
func (b *InventoryBalance) MoveToHold(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Hold quantity must be positive")
	}
	if b.Available.LessThan(quantity) {
		return shared.ErrInsufficientStock
	}
	b.Available = b.Available.Sub(quantity)
	b.Hold = b.Hold.Add(quantity)
	b.touch()
	return nil
}

// ReleaseHold returns quarantined quantity to available
func (b *InventoryBalance) ReleaseHold(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Hold release quantity must be positive")
	}
	if b.Hold.LessThan(quantity) {
		return shared.NewDomainError("INVALID_STATE", "Hold release exceeds held quantity")
	}
	b.Hold = b.Hold.Sub(quantity)
	b.Available = b.Available.Add(quantity)
	b.touch()
	return nil
}

// MarkDamaged moves available quantity to the damaged bucket
func (b *InventoryBalance) MarkDamaged(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Damaged quantity must be positive")
	}
	if b.Available.LessThan(quantity) {
		return shared.ErrInsufficientStock
	}
	b.Available = b.Available.Sub(quantity)
	b.Damaged = b.Damaged.Add(quantity)
	b.touch()
	return nil
}

// Adjust applies a manual correction to the available bucket. Positive deltas
// count as additional receipts, negative deltas as consumption, so the
// bucket-sum invariant holds across adjustments.
func (b *InventoryBalance) Adjust(delta decimal.Decimal) error {
	if delta.IsZero() {
		return shared.NewDomainError("INVALID_QUANTITY", "Adjustment delta cannot be zero")
	}
	if delta.IsNegative() && b.Available.LessThan(delta.Neg()) {
		return shared.ErrInsufficientStock
	}
	b.Available = b.Available.Add(delta)
	if delta.IsPositive() {
		b.TotalReceived = b.TotalReceived.Add(delta)
	} else {
		b.TotalConsumed = b.TotalConsumed.Add(delta.Neg())
	}
	b.touch()
	b.AddDomainEvent(NewStockAdjustedEvent(b, delta))
	return nil
}

// IsDepleted returns true when no quantity remains in any bucket
func (b *InventoryBalance) IsDepleted() bool {
	return b.OnHandQuantity().IsZero()
}

func (b *InventoryBalance) touch() {
	b.UpdatedAt = time.Now()
	b.IncrementVersion()
}
