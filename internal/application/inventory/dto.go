package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockpilot/backend/internal/domain/inventory"
)

// ReceiveGoodsRequest records a receipt of finished goods into a new lot.
type ReceiveGoodsRequest struct {
	ProductID     uuid.UUID       `json:"product_id" binding:"required"`
	WarehouseID   uuid.UUID       `json:"warehouse_id" binding:"required"`
	LotCode       string          `json:"lot_code"` // Generated when empty
	Quantity      decimal.Decimal `json:"quantity" binding:"required,dgt0"`
	ReceivedAt    *time.Time      `json:"received_at"` // Defaults to now
	ExpiryDate    *time.Time      `json:"expiry_date"`
	ReferenceType string          `json:"reference_type"`
	ReferenceID   string          `json:"reference_id"`
	OperatorID    *uuid.UUID      `json:"operator_id"`
}

// ReserveStockRequest claims stock from a specific lot for an external document.
type ReserveStockRequest struct {
	LotID         uuid.UUID       `json:"lot_id" binding:"required"`
	WarehouseID   uuid.UUID       `json:"warehouse_id" binding:"required"`
	Quantity      decimal.Decimal `json:"quantity" binding:"required,dgt0"`
	ReferenceType string          `json:"reference_type" binding:"required"`
	ReferenceID   string          `json:"reference_id" binding:"required"`
	OperatorID    *uuid.UUID      `json:"operator_id"`
}

// ReleaseStockRequest returns reserved stock to available. Quantity may cover
// several reservation rows for the same reference; they are drawn down oldest
// first.
type ReleaseStockRequest struct {
	LotID         uuid.UUID       `json:"lot_id" binding:"required"`
	WarehouseID   uuid.UUID       `json:"warehouse_id" binding:"required"`
	Quantity      decimal.Decimal `json:"quantity" binding:"required,dgt0"`
	ReferenceType string          `json:"reference_type" binding:"required"`
	ReferenceID   string          `json:"reference_id" binding:"required"`
	OperatorID    *uuid.UUID      `json:"operator_id"`
}

// ConsumeStockRequest permanently removes reserved stock (shipment or
// production consumption).
type ConsumeStockRequest struct {
	LotID         uuid.UUID       `json:"lot_id" binding:"required"`
	WarehouseID   uuid.UUID       `json:"warehouse_id" binding:"required"`
	Quantity      decimal.Decimal `json:"quantity" binding:"required,dgt0"`
	ReferenceType string          `json:"reference_type" binding:"required"`
	ReferenceID   string          `json:"reference_id" binding:"required"`
	OperatorID    *uuid.UUID      `json:"operator_id"`
}

// AdjustStockRequest applies a manual correction to a lot balance.
type AdjustStockRequest struct {
	LotID       uuid.UUID       `json:"lot_id" binding:"required"`
	WarehouseID uuid.UUID       `json:"warehouse_id" binding:"required"`
	Delta       decimal.Decimal `json:"delta" binding:"required"`
	Reason      string          `json:"reason" binding:"required"`
	OperatorID  *uuid.UUID      `json:"operator_id"`
}

// ReceiveMaterialRequest records a raw-material receipt (no lot tracking).
type ReceiveMaterialRequest struct {
	RawMaterialID uuid.UUID       `json:"raw_material_id" binding:"required"`
	WarehouseID   uuid.UUID       `json:"warehouse_id" binding:"required"`
	Quantity      decimal.Decimal `json:"quantity" binding:"required,dgt0"`
	ReferenceType string          `json:"reference_type"`
	ReferenceID   string          `json:"reference_id"`
	OperatorID    *uuid.UUID      `json:"operator_id"`
}

// ConsumeMaterialRequest records raw material used by production.
type ConsumeMaterialRequest struct {
	RawMaterialID uuid.UUID       `json:"raw_material_id" binding:"required"`
	WarehouseID   uuid.UUID       `json:"warehouse_id" binding:"required"`
	Quantity      decimal.Decimal `json:"quantity" binding:"required,dgt0"`
	ReferenceType string          `json:"reference_type"`
	ReferenceID   string          `json:"reference_id"`
	OperatorID    *uuid.UUID      `json:"operator_id"`
}

// AdjustMaterialRequest applies a manual correction to a material balance.
type AdjustMaterialRequest struct {
	RawMaterialID uuid.UUID       `json:"raw_material_id" binding:"required"`
	WarehouseID   uuid.UUID       `json:"warehouse_id" binding:"required"`
	Delta         decimal.Decimal `json:"delta" binding:"required"`
	Reason        string          `json:"reason" binding:"required"`
	OperatorID    *uuid.UUID      `json:"operator_id"`
}

// BalanceResponse represents a lot balance in API responses.
type BalanceResponse struct {
	ID            uuid.UUID       `json:"id"`
	LotID         uuid.UUID       `json:"lot_id"`
	WarehouseID   uuid.UUID       `json:"warehouse_id"`
	ProductID     uuid.UUID       `json:"product_id"`
	Available     decimal.Decimal `json:"available"`
	Reserved      decimal.Decimal `json:"reserved"`
	Hold          decimal.Decimal `json:"hold"`
	Damaged       decimal.Decimal `json:"damaged"`
	OnHand        decimal.Decimal `json:"on_hand"`
	TotalReceived decimal.Decimal `json:"total_received"`
	TotalConsumed decimal.Decimal `json:"total_consumed"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Version       int             `json:"version"`
}

// ToBalanceResponse converts a domain balance to a response DTO.
func ToBalanceResponse(b *inventory.InventoryBalance) BalanceResponse {
	return BalanceResponse{
		ID:            b.ID,
		LotID:         b.LotID,
		WarehouseID:   b.WarehouseID,
		ProductID:     b.ProductID,
		Available:     b.Available,
		Reserved:      b.Reserved,
		Hold:          b.Hold,
		Damaged:       b.Damaged,
		OnHand:        b.OnHandQuantity(),
		TotalReceived: b.TotalReceived,
		TotalConsumed: b.TotalConsumed,
		UpdatedAt:     b.UpdatedAt,
		Version:       b.Version,
	}
}

// ReceiveGoodsResponse returns the created lot and its opening balance.
type ReceiveGoodsResponse struct {
	LotID   uuid.UUID       `json:"lot_id"`
	LotCode string          `json:"lot_code"`
	Balance BalanceResponse `json:"balance"`
}

// ReservationResponse represents a reservation claim in API responses.
type ReservationResponse struct {
	ID            uuid.UUID       `json:"id"`
	LotID         uuid.UUID       `json:"lot_id"`
	WarehouseID   uuid.UUID       `json:"warehouse_id"`
	ProductID     uuid.UUID       `json:"product_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	ReferenceType string          `json:"reference_type"`
	ReferenceID   string          `json:"reference_id"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ToReservationResponse converts a domain reservation to a response DTO.
func ToReservationResponse(r *inventory.Reservation) ReservationResponse {
	return ReservationResponse{
		ID:            r.ID,
		LotID:         r.LotID,
		WarehouseID:   r.WarehouseID,
		ProductID:     r.ProductID,
		Quantity:      r.Quantity,
		ReferenceType: r.ReferenceType,
		ReferenceID:   r.ReferenceID,
		CreatedAt:     r.CreatedAt,
	}
}

// TransactionResponse represents an audit-log row in API responses.
type TransactionResponse struct {
	ID              uuid.UUID       `json:"id"`
	BalanceID       *uuid.UUID      `json:"balance_id,omitempty"`
	LotID           *uuid.UUID      `json:"lot_id,omitempty"`
	WarehouseID     uuid.UUID       `json:"warehouse_id"`
	ProductID       uuid.UUID       `json:"product_id"`
	TransactionType string          `json:"transaction_type"`
	Quantity        decimal.Decimal `json:"quantity"`
	BalanceBefore   decimal.Decimal `json:"balance_before"`
	BalanceAfter    decimal.Decimal `json:"balance_after"`
	ReferenceType   string          `json:"reference_type,omitempty"`
	ReferenceID     string          `json:"reference_id,omitempty"`
	Reason          string          `json:"reason,omitempty"`
	TransactionDate time.Time       `json:"transaction_date"`
}

// ToTransactionResponse converts a domain transaction to a response DTO.
func ToTransactionResponse(tx *inventory.InventoryTransaction) TransactionResponse {
	return TransactionResponse{
		ID:              tx.ID,
		BalanceID:       tx.BalanceID,
		LotID:           tx.LotID,
		WarehouseID:     tx.WarehouseID,
		ProductID:       tx.ProductID,
		TransactionType: tx.TransactionType.String(),
		Quantity:        tx.Quantity,
		BalanceBefore:   tx.BalanceBefore,
		BalanceAfter:    tx.BalanceAfter,
		ReferenceType:   tx.ReferenceType,
		ReferenceID:     tx.ReferenceID,
		Reason:          tx.Reason,
		TransactionDate: tx.TransactionDate,
	}
}
