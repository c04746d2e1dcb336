package trade

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockpilot/backend/internal/domain/shared"
)

// PurchaseOrderStatus is the lifecycle state of a purchase order.
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusDraft           PurchaseOrderStatus = "DRAFT"
	PurchaseOrderStatusConfirmed       PurchaseOrderStatus = "CONFIRMED"
	PurchaseOrderStatusPartialReceived PurchaseOrderStatus = "PARTIAL_RECEIVED"
	PurchaseOrderStatusCompleted       PurchaseOrderStatus = "COMPLETED"
	PurchaseOrderStatusCancelled       PurchaseOrderStatus = "CANCELLED"
)

// PurchaseOrder is a supplier order for raw materials. Orders created from an
// approved purchase suggestion carry the suggestion ID as a back-reference.
type PurchaseOrder struct {
	shared.TenantAggregateRoot
	OrderNumber          string              `gorm:"type:varchar(50);not null;uniqueIndex:idx_purchase_order_tenant_number,priority:2"`
	VendorID             uuid.UUID           `gorm:"type:uuid;not null;index"`
	VendorName           string              `gorm:"type:varchar(200);not null"`
	WarehouseID          *uuid.UUID          `gorm:"type:uuid;index"`
	SourceSuggestionID   *uuid.UUID          `gorm:"type:uuid;index"`
	Items                []PurchaseOrderItem `gorm:"foreignKey:OrderID;references:ID"`
	TotalAmount          decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0"`
	ExpectedDeliveryDate *time.Time
	Status               PurchaseOrderStatus `gorm:"type:varchar(20);not null;default:'DRAFT'"`
	Remark               string              `gorm:"type:text"`
	ConfirmedAt          *time.Time          `gorm:"index"`
	CompletedAt          *time.Time
	CancelledAt          *time.Time
	CancelReason         string `gorm:"type:varchar(500)"`
}

func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

// GeneratePurchaseOrderNumber builds a human-readable order number from the
// creation time and a short unique suffix, e.g. PO-20260115-4F2A91C3.
func GeneratePurchaseOrderNumber(createdAt time.Time, id uuid.UUID) string {
	raw := id.String()
	return fmt.Sprintf("PO-%s-%s", createdAt.Format("20060102"), raw[len(raw)-8:])
}

// NewPurchaseOrder creates a draft order for a vendor.
func NewPurchaseOrder(tenantID, vendorID uuid.UUID, vendorName string) (*PurchaseOrder, error) {
	if vendorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_VENDOR", "Vendor ID cannot be empty")
	}
	if vendorName == "" {
		return nil, shared.NewDomainError("INVALID_VENDOR_NAME", "Vendor name cannot be empty")
	}

	order := &PurchaseOrder{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		VendorID:            vendorID,
		VendorName:          vendorName,
		Items:               make([]PurchaseOrderItem, 0),
		TotalAmount:         decimal.Zero,
		Status:              PurchaseOrderStatusDraft,
	}
	order.OrderNumber = GeneratePurchaseOrderNumber(order.CreatedAt, order.ID)

	return order, nil
}

// SetSourceSuggestion records which purchase suggestion this order was
// converted from.
func (o *PurchaseOrder) SetSourceSuggestion(suggestionID uuid.UUID) {
	if suggestionID == uuid.Nil {
		return
	}
	o.SourceSuggestionID = &suggestionID
}

// AddItem appends a line item. Only allowed while the order is a draft.
func (o *PurchaseOrder) AddItem(materialID uuid.UUID, materialName, materialCode, unit string, quantity, unitPrice decimal.Decimal) (*PurchaseOrderItem, error) {
	if o.Status != PurchaseOrderStatusDraft {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add items to a non-draft order")
	}
	for _, item := range o.Items {
		if item.RawMaterialID == materialID {
			return nil, shared.NewDomainError("DUPLICATE_MATERIAL", "Material already exists in order, update quantity instead")
		}
	}

	item, err := NewPurchaseOrderItem(o.ID, materialID, materialName, materialCode, unit, quantity, unitPrice)
	if err != nil {
		return nil, err
	}

	o.Items = append(o.Items, *item)
	o.recalculateTotal()
	o.touch()

	return item, nil
}

// UpdateItemQuantity changes the ordered quantity of an existing line.
// Only allowed while the order is a draft.
func (o *PurchaseOrder) UpdateItemQuantity(itemID uuid.UUID, quantity decimal.Decimal) error {
	if o.Status != PurchaseOrderStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Cannot update items in a non-draft order")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	for i := range o.Items {
		if o.Items[i].ID == itemID {
			o.Items[i].OrderedQuantity = quantity
			o.Items[i].Amount = quantity.Mul(o.Items[i].UnitPrice).Round(2)
			o.recalculateTotal()
			o.touch()
			return nil
		}
	}
	return shared.ErrNotFound
}

// RemoveItem deletes a line from a draft order.
func (o *PurchaseOrder) RemoveItem(itemID uuid.UUID) error {
	if o.Status != PurchaseOrderStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Cannot remove items from a non-draft order")
	}
	for i := range o.Items {
		if o.Items[i].ID == itemID {
			o.Items = append(o.Items[:i], o.Items[i+1:]...)
			o.recalculateTotal()
			o.touch()
			return nil
		}
	}
	return shared.ErrNotFound
}

// SetExpectedDelivery records when the vendor is expected to deliver.
func (o *PurchaseOrder) SetExpectedDelivery(date time.Time) error {
	if o.Status != PurchaseOrderStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Cannot change delivery date on a non-draft order")
	}
	o.ExpectedDeliveryDate = &date
	o.touch()
	return nil
}

// Confirm moves the order from DRAFT to CONFIRMED. Requires at least one item.
func (o *PurchaseOrder) Confirm() error {
	if o.Status != PurchaseOrderStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Only draft orders can be confirmed")
	}
	if len(o.Items) == 0 {
		return shared.NewDomainError("EMPTY_ORDER", "Cannot confirm an order without items")
	}

	now := time.Now()
	o.Status = PurchaseOrderStatusConfirmed
	o.ConfirmedAt = &now
	o.touch()
	return nil
}

// CanReceive reports whether goods may still be received against this order.
func (o *PurchaseOrder) CanReceive() bool {
	return o.Status == PurchaseOrderStatusConfirmed || o.Status == PurchaseOrderStatusPartialReceived
}

// RecordReceipt registers received quantity against a line. The order moves to
// PARTIAL_RECEIVED on the first receipt and to COMPLETED once every line is
// fully received.
func (o *PurchaseOrder) RecordReceipt(itemID uuid.UUID, quantity decimal.Decimal) error {
	if !o.CanReceive() {
		return shared.NewDomainError("INVALID_STATE", "Order is not open for receiving")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Received quantity must be positive")
	}

	var line *PurchaseOrderItem
	for i := range o.Items {
		if o.Items[i].ID == itemID {
			line = &o.Items[i]
			break
		}
	}
	if line == nil {
		return shared.ErrNotFound
	}

	remaining := line.OrderedQuantity.Sub(line.ReceivedQuantity)
	if quantity.GreaterThan(remaining) {
		return shared.NewDomainError("OVER_RECEIPT", "Received quantity exceeds remaining ordered quantity")
	}
	line.ReceivedQuantity = line.ReceivedQuantity.Add(quantity)

	if o.fullyReceived() {
		now := time.Now()
		o.Status = PurchaseOrderStatusCompleted
		o.CompletedAt = &now
	} else {
		o.Status = PurchaseOrderStatusPartialReceived
	}
	o.touch()
	return nil
}

// Cancel aborts an order that has not received any goods yet.
func (o *PurchaseOrder) Cancel(reason string) error {
	switch o.Status {
	case PurchaseOrderStatusDraft, PurchaseOrderStatusConfirmed:
	default:
		return shared.NewDomainError("INVALID_STATE", "Only draft or confirmed orders can be cancelled")
	}

	now := time.Now()
	o.Status = PurchaseOrderStatusCancelled
	o.CancelledAt = &now
	o.CancelReason = reason
	o.touch()
	return nil
}

// IsOpen reports whether the order still contributes to on-order quantity.
func (o *PurchaseOrder) IsOpen() bool {
	switch o.Status {
	case PurchaseOrderStatusConfirmed, PurchaseOrderStatusPartialReceived:
		return true
	}
	return false
}

func (o *PurchaseOrder) fullyReceived() bool {
	for i := range o.Items {
		if o.Items[i].ReceivedQuantity.LessThan(o.Items[i].OrderedQuantity) {
			return false
		}
	}
	return true
}

func (o *PurchaseOrder) recalculateTotal() {
	total := decimal.Zero
	for i := range o.Items {
		total = total.Add(o.Items[i].Amount)
	}
	o.TotalAmount = total
}

func (o *PurchaseOrder) touch() {
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
}

// PurchaseOrderItem is a single material line on a purchase order.
type PurchaseOrderItem struct {
	shared.BaseEntity
	OrderID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	RawMaterialID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	MaterialName     string          `gorm:"type:varchar(200);not null"`
	MaterialCode     string          `gorm:"type:varchar(100);not null"`
	Unit             string          `gorm:"type:varchar(20);not null"`
	OrderedQuantity  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ReceivedQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Amount           decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

func (PurchaseOrderItem) TableName() string {
	return "purchase_order_items"
}

// NewPurchaseOrderItem creates a line item with the amount precomputed.
func NewPurchaseOrderItem(orderID, materialID uuid.UUID, materialName, materialCode, unit string, quantity, unitPrice decimal.Decimal) (*PurchaseOrderItem, error) {
	if materialID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_MATERIAL", "Material ID cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	return &PurchaseOrderItem{
		BaseEntity:       shared.NewBaseEntity(),
		OrderID:          orderID,
		RawMaterialID:    materialID,
		MaterialName:     materialName,
		MaterialCode:     materialCode,
		Unit:             unit,
		OrderedQuantity:  quantity,
		ReceivedQuantity: decimal.Zero,
		UnitPrice:        unitPrice,
		Amount:           quantity.Mul(unitPrice).Round(2),
	}, nil
}
