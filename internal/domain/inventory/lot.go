package inventory

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stockpilot/backend/internal/domain/shared"
)

// LotStatus represents the lifecycle status of an inventory lot
type LotStatus string

const (
	LotStatusActive   LotStatus = "ACTIVE"
	LotStatusHold     LotStatus = "HOLD"
	LotStatusExpired  LotStatus = "EXPIRED"
	LotStatusDepleted LotStatus = "DEPLETED"
)

// IsValid checks if the status is a valid LotStatus
func (s LotStatus) IsValid() bool {
	switch s {
	case LotStatusActive, LotStatusHold, LotStatusExpired, LotStatusDepleted:
		return true
	}
	return false
}

// String returns the string representation of LotStatus
func (s LotStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s LotStatus) CanTransitionTo(target LotStatus) bool {
	switch s {
	case LotStatusActive:
		return target == LotStatusHold || target == LotStatusExpired || target == LotStatusDepleted
	case LotStatusHold:
		return target == LotStatusActive || target == LotStatusExpired || target == LotStatusDepleted
	case LotStatusExpired, LotStatusDepleted:
		return false // Terminal states
	}
	return false
}

// Lot represents a discrete received batch of a product, the unit of
// inventory traceability. A lot is immutable once created except for
// status transitions; it is never physically deleted.
type Lot struct {
	shared.TenantAggregateRoot
	ProductID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	LotCode    string     `gorm:"type:varchar(50);not null;uniqueIndex:idx_lot_tenant_code,priority:2"`
	Status     LotStatus  `gorm:"type:varchar(20);not null;default:'ACTIVE'"`
	ReceivedAt time.Time  `gorm:"type:timestamptz;not null"`
	ExpiryDate *time.Time `gorm:"type:timestamptz"`
}

// TableName returns the table name for GORM
func (Lot) TableName() string {
	return "inventory_lots"
}

// NewLot creates a new active lot for goods received at receivedAt.
// If lotCode is empty a code is generated from the receipt date.
func NewLot(tenantID, productID uuid.UUID, lotCode string, receivedAt time.Time, expiryDate *time.Time) (*Lot, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if expiryDate != nil && !expiryDate.After(receivedAt) {
		return nil, shared.NewDomainError("INVALID_EXPIRY", "Expiry date must be after receipt date")
	}
	lot := &Lot{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ProductID:           productID,
		LotCode:             strings.ToUpper(strings.TrimSpace(lotCode)),
		Status:              LotStatusActive,
		ReceivedAt:          receivedAt,
		ExpiryDate:          expiryDate,
	}
	if lot.LotCode == "" {
		lot.LotCode = GenerateLotCode(receivedAt, lot.ID)
	}
	return lot, nil
}

// GenerateLotCode builds a unique lot code from the receipt date and lot ID
func GenerateLotCode(receivedAt time.Time, id uuid.UUID) string {
	suffix := strings.ToUpper(strings.ReplaceAll(id.String(), "-", ""))[:8]
	return fmt.Sprintf("LOT-%s-%s", receivedAt.Format("20060102"), suffix)
}

// TransitionTo moves the lot to the target status, enforcing the transition table
func (l *Lot) TransitionTo(target LotStatus) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Invalid lot status")
	}
	if !l.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot transition lot from %s to %s", l.Status, target))
	}
	l.Status = target
	l.UpdatedAt = time.Now()
	l.IncrementVersion()
	return nil
}

// IsExpired returns true if the lot has passed its expiry date
func (l *Lot) IsExpired() bool {
	if l.ExpiryDate == nil {
		return false
	}
	return l.ExpiryDate.Before(time.Now())
}

// IsUsable returns true if stock in this lot may be reserved or consumed
func (l *Lot) IsUsable() bool {
	return l.Status == LotStatusActive && !l.IsExpired()
}
