package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockpilot/backend/internal/domain/shared"
)

// TransactionType represents the type of inventory transaction
type TransactionType string

const (
	// TransactionTypeReceipt represents stock entering inventory (PO receipt, work-order completion)
	TransactionTypeReceipt TransactionType = "RECEIPT"
	// TransactionTypeReservation represents quantity moved from available to reserved
	TransactionTypeReservation TransactionType = "RESERVATION"
	// TransactionTypeRelease represents quantity returned from reserved to available
	TransactionTypeRelease TransactionType = "RELEASE"
	// TransactionTypeConsumption represents reserved quantity leaving inventory
	TransactionTypeConsumption TransactionType = "CONSUMPTION"
	// TransactionTypeAdjustment represents a manual correction
	TransactionTypeAdjustment TransactionType = "ADJUSTMENT"
	// TransactionTypeTransfer represents stock moved between warehouses
	TransactionTypeTransfer TransactionType = "TRANSFER"
)

// String returns the string representation of TransactionType
func (t TransactionType) String() string {
	return string(t)
}

// IsValid returns true if the transaction type is valid
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeReceipt,
		TransactionTypeReservation,
		TransactionTypeRelease,
		TransactionTypeConsumption,
		TransactionTypeAdjustment,
		TransactionTypeTransfer:
		return true
	}
	return false
}

// InventoryTransaction is an immutable record of a balance mutation. Once
// created, transactions cannot be modified - corrections are made with new
// transactions. The log is the audit trail and the source of truth for
// historical quantity at any point in time.
type InventoryTransaction struct {
	shared.BaseEntity
	TenantID        uuid.UUID       `gorm:"type:uuid;not null;index:idx_inv_tx_tenant_time,priority:1"`
	BalanceID       *uuid.UUID      `gorm:"type:uuid;index"` // Nil for lot-less material transactions
	LotID           *uuid.UUID      `gorm:"type:uuid;index"`
	WarehouseID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID       uuid.UUID       `gorm:"type:uuid;not null;index"` // Product or raw-material ID
	TransactionType TransactionType `gorm:"type:varchar(20);not null;index"`
	Quantity        decimal.Decimal `gorm:"type:decimal(18,4);not null"` // Always positive, direction from type
	BalanceBefore   decimal.Decimal `gorm:"type:decimal(18,4);not null"` // Available bucket before
	BalanceAfter    decimal.Decimal `gorm:"type:decimal(18,4);not null"` // Available bucket after
	ReferenceType   string          `gorm:"type:varchar(50);index:idx_inv_tx_ref"`
	ReferenceID     string          `gorm:"type:varchar(100);index:idx_inv_tx_ref"`
	Reason          string          `gorm:"type:varchar(255)"`
	OperatorID      *uuid.UUID      `gorm:"type:uuid"`
	TransactionDate time.Time       `gorm:"type:timestamptz;not null;index:idx_inv_tx_tenant_time,priority:2"`
}

// TableName returns the table name for GORM
func (InventoryTransaction) TableName() string {
	return "inventory_transactions"
}

// NewInventoryTransaction creates a new transaction record
func NewInventoryTransaction(
	tenantID, warehouseID, productID uuid.UUID,
	txType TransactionType,
	quantity, balanceBefore, balanceAfter decimal.Decimal,
	referenceType, referenceID string,
) (*InventoryTransaction, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse ID cannot be empty")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if !txType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TRANSACTION_TYPE", "Invalid transaction type")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	return &InventoryTransaction{
		BaseEntity:      shared.NewBaseEntity(),
		TenantID:        tenantID,
		WarehouseID:     warehouseID,
		ProductID:       productID,
		TransactionType: txType,
		Quantity:        quantity,
		BalanceBefore:   balanceBefore,
		BalanceAfter:    balanceAfter,
		ReferenceType:   referenceType,
		ReferenceID:     referenceID,
		TransactionDate: time.Now(),
	}, nil
}

// WithBalance links the transaction to a lot balance
func (t *InventoryTransaction) WithBalance(balanceID, lotID uuid.UUID) *InventoryTransaction {
	t.BalanceID = &balanceID
	t.LotID = &lotID
	return t
}

// WithReason sets the reason for the transaction
func (t *InventoryTransaction) WithReason(reason string) *InventoryTransaction {
	t.Reason = reason
	return t
}

// WithOperator sets the user who performed the operation
func (t *InventoryTransaction) WithOperator(operatorID uuid.UUID) *InventoryTransaction {
	t.OperatorID = &operatorID
	return t
}
