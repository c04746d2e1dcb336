package planning

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockpilot/backend/internal/domain/shared"
)

// SuggestionStatus is the status of a suggested purchase order
type SuggestionStatus string

const (
	SuggestionStatusPending   SuggestionStatus = "PENDING"
	SuggestionStatusConverted SuggestionStatus = "CONVERTED"
	SuggestionStatusRejected  SuggestionStatus = "REJECTED"
)

// IsTerminal returns true for states that allow no further transitions
func (s SuggestionStatus) IsTerminal() bool {
	return s == SuggestionStatusConverted || s == SuggestionStatusRejected
}

// SuggestedPurchaseOrder is a system-generated, human-approvable draft
// purchase order grouping one production plan's material shortages by
// vendor. Approval converts it 1:1 into a real purchase order; the link is
// non-reversible and an approved or rejected suggestion is immutable.
type SuggestedPurchaseOrder struct {
	shared.TenantAggregateRoot
	PlanID                uuid.UUID        `gorm:"type:uuid;not null;index"`
	VendorID              uuid.UUID        `gorm:"type:uuid;not null;index"`
	TotalAmount           decimal.Decimal  `gorm:"type:decimal(18,2);not null"`
	SuggestedOrderDate    time.Time        `gorm:"type:timestamptz;not null"`
	RequiredByDate        time.Time        `gorm:"type:timestamptz;not null"`
	EstimatedDeliveryDate time.Time        `gorm:"type:timestamptz;not null"`
	LeadTimeDays          int              `gorm:"not null"`
	IsUrgent              bool             `gorm:"not null;default:false"`
	PriorityScore         int              `gorm:"not null"`
	Rationale             string           `gorm:"type:text"`
	Status                SuggestionStatus `gorm:"type:varchar(20);not null;default:'PENDING'"`
	ConvertedOrderID      *uuid.UUID       `gorm:"type:uuid"`
	RejectionReason       string           `gorm:"type:varchar(255)"`

	Items []SuggestedPurchaseOrderItem `gorm:"foreignKey:SuggestionID;references:ID"`
}

// TableName returns the table name for GORM
func (SuggestedPurchaseOrder) TableName() string {
	return "suggested_purchase_orders"
}

// SuggestedPurchaseOrderItem is one material line of a suggestion
type SuggestedPurchaseOrderItem struct {
	shared.BaseEntity
	SuggestionID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	RequirementID uuid.UUID       `gorm:"type:uuid;not null"`
	RawMaterialID uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Unit          string          `gorm:"type:varchar(20);not null"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (SuggestedPurchaseOrderItem) TableName() string {
	return "suggested_purchase_order_items"
}

// NewSuggestedPurchaseOrder assembles a pending suggestion for one vendor
// group of shortage requirements.
func NewSuggestedPurchaseOrder(
	tenantID, planID, vendorID uuid.UUID,
	requirements []MaterialRequirement,
	leadTimeDays int,
	now time.Time,
	requiredBy time.Time,
) (*SuggestedPurchaseOrder, error) {
	if vendorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_VENDOR", "Vendor ID cannot be empty")
	}
	if len(requirements) == 0 {
		return nil, shared.NewDomainError("INVALID_REQUIREMENTS", "At least one requirement is needed")
	}

	daysUntil := DaysUntilRequired(now, requiredBy)
	urgent := IsUrgent(leadTimeDays, daysUntil)
	nearUrgent := IsNearUrgent(leadTimeDays, daysUntil)
	score := PriorityScore(AverageShortageRatio(requirements), urgent, nearUrgent)

	suggestion := &SuggestedPurchaseOrder{
		TenantAggregateRoot:   shared.NewTenantAggregateRoot(tenantID),
		PlanID:                planID,
		VendorID:              vendorID,
		SuggestedOrderDate:    LatestOrderDate(now, requiredBy, leadTimeDays),
		RequiredByDate:        requiredBy,
		EstimatedDeliveryDate: EstimatedDelivery(now, leadTimeDays),
		LeadTimeDays:          leadTimeDays,
		IsUrgent:              urgent,
		PriorityScore:         score,
		Status:                SuggestionStatusPending,
		Items:                 make([]SuggestedPurchaseOrderItem, 0, len(requirements)),
	}

	total := decimal.Zero
	for i := range requirements {
		req := &requirements[i]
		amount := req.SuggestedOrderQty.Mul(req.EstimatedUnitCost).Round(2)
		suggestion.Items = append(suggestion.Items, SuggestedPurchaseOrderItem{
			BaseEntity:    shared.NewBaseEntity(),
			SuggestionID:  suggestion.ID,
			RequirementID: req.ID,
			RawMaterialID: req.RawMaterialID,
			Quantity:      req.SuggestedOrderQty,
			Unit:          req.Unit,
			UnitPrice:     req.EstimatedUnitCost,
			Amount:        amount,
		})
		total = total.Add(amount)
	}
	suggestion.TotalAmount = total

	return suggestion, nil
}

// SetRationale attaches the human-readable explanation for the suggestion
func (s *SuggestedPurchaseOrder) SetRationale(rationale string) {
	s.Rationale = rationale
}

// MarkConverted records the conversion into a real purchase order.
// A second conversion attempt fails with ErrAlreadyConverted; converting a
// rejected suggestion fails with an invalid-state error.
func (s *SuggestedPurchaseOrder) MarkConverted(orderID uuid.UUID) error {
	switch s.Status {
	case SuggestionStatusConverted:
		return shared.ErrAlreadyConverted
	case SuggestionStatusRejected:
		return shared.NewDomainError("INVALID_STATE", "Cannot convert a rejected suggestion")
	}
	if orderID == uuid.Nil {
		return shared.NewDomainError("INVALID_ORDER", "Converted order ID cannot be empty")
	}
	s.Status = SuggestionStatusConverted
	s.ConvertedOrderID = &orderID
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return nil
}

// Reject closes the suggestion with a reason
func (s *SuggestedPurchaseOrder) Reject(reason string) error {
	if s.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot reject suggestion in %s status", s.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Rejection reason is required")
	}
	s.Status = SuggestionStatusRejected
	s.RejectionReason = reason
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return nil
}
