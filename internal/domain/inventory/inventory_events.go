package inventory

import (
	"github.com/shopspring/decimal"
	"github.com/stockpilot/backend/internal/domain/shared"
)

// Event types emitted by the inventory ledger
const (
	EventTypeStockReceived = "inventory.stock_received"
	EventTypeStockReserved = "inventory.stock_reserved"
	EventTypeStockReleased = "inventory.stock_released"
	EventTypeStockConsumed = "inventory.stock_consumed"
	EventTypeStockAdjusted = "inventory.stock_adjusted"
)

const aggregateTypeBalance = "InventoryBalance"

// StockMovedEvent is the common payload for quantity-movement events
type StockMovedEvent struct {
	shared.BaseDomainEvent
	LotID         string          `json:"lot_id"`
	WarehouseID   string          `json:"warehouse_id"`
	ProductID     string          `json:"product_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	ReferenceType string          `json:"reference_type,omitempty"`
	ReferenceID   string          `json:"reference_id,omitempty"`
	Available     decimal.Decimal `json:"available"`
	Reserved      decimal.Decimal `json:"reserved"`
}

func newStockMovedEvent(eventType string, b *InventoryBalance, quantity decimal.Decimal, refType, refID string) *StockMovedEvent {
	return &StockMovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, aggregateTypeBalance, b.ID, b.TenantID),
		LotID:           b.LotID.String(),
		WarehouseID:     b.WarehouseID.String(),
		ProductID:       b.ProductID.String(),
		Quantity:        quantity,
		ReferenceType:   refType,
		ReferenceID:     refID,
		Available:       b.Available,
		Reserved:        b.Reserved,
	}
}

// NewStockReceivedEvent creates an event for a goods receipt
func NewStockReceivedEvent(b *InventoryBalance, quantity decimal.Decimal) *StockMovedEvent {
	return newStockMovedEvent(EventTypeStockReceived, b, quantity, "", "")
}

// NewStockReservedEvent creates an event for a reservation
func NewStockReservedEvent(b *InventoryBalance, quantity decimal.Decimal, refType, refID string) *StockMovedEvent {
	return newStockMovedEvent(EventTypeStockReserved, b, quantity, refType, refID)
}

// NewStockReleasedEvent creates an event for a reservation release
func NewStockReleasedEvent(b *InventoryBalance, quantity decimal.Decimal, refType, refID string) *StockMovedEvent {
	return newStockMovedEvent(EventTypeStockReleased, b, quantity, refType, refID)
}

// NewStockConsumedEvent creates an event for reserved-stock consumption
func NewStockConsumedEvent(b *InventoryBalance, quantity decimal.Decimal, refType, refID string) *StockMovedEvent {
	return newStockMovedEvent(EventTypeStockConsumed, b, quantity, refType, refID)
}

// NewStockAdjustedEvent creates an event for a manual adjustment
func NewStockAdjustedEvent(b *InventoryBalance, delta decimal.Decimal) *StockMovedEvent {
	return newStockMovedEvent(EventTypeStockAdjusted, b, delta, "", "")
}
