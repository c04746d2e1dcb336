package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockpilot/backend/internal/domain/shared"
)

// Reservation represents a claim of quantity against a specific lot and
// warehouse, tagged with an external reference (e.g. sales_order:123).
// The sum of active reservations for a lot/warehouse never exceeds that
// pair's reserved bucket.
type Reservation struct {
	shared.BaseEntity
	TenantID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	LotID         uuid.UUID       `gorm:"type:uuid;not null;index:idx_reservation_lot_warehouse,priority:1"`
	WarehouseID   uuid.UUID       `gorm:"type:uuid;not null;index:idx_reservation_lot_warehouse,priority:2"`
	ProductID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity      decimal.Decimal `gorm:"type:decimal(18,4);not null"` // Remaining claimed quantity
	ReferenceType string          `gorm:"type:varchar(50);not null;index:idx_reservation_ref"`
	ReferenceID   string          `gorm:"type:varchar(100);not null;index:idx_reservation_ref"`
	Released      bool            `gorm:"not null;default:false"`
	Consumed      bool            `gorm:"not null;default:false"`
	ClosedAt      *time.Time      `gorm:"type:timestamptz"`
}

// TableName returns the table name for GORM
func (Reservation) TableName() string {
	return "inventory_reservations"
}

// NewReservation creates a new active reservation
func NewReservation(tenantID, lotID, warehouseID, productID uuid.UUID, quantity decimal.Decimal, referenceType, referenceID string) *Reservation {
	return &Reservation{
		BaseEntity:    shared.NewBaseEntity(),
		TenantID:      tenantID,
		LotID:         lotID,
		WarehouseID:   warehouseID,
		ProductID:     productID,
		Quantity:      quantity,
		ReferenceType: referenceType,
		ReferenceID:   referenceID,
	}
}

// IsActive returns true if the reservation still claims quantity
func (r *Reservation) IsActive() bool {
	return !r.Released && !r.Consumed && r.Quantity.GreaterThan(decimal.Zero)
}

// Reduce removes quantity from the claim, closing it when fully covered.
// Returns the quantity actually taken from this reservation.
func (r *Reservation) Reduce(quantity decimal.Decimal, consumed bool) decimal.Decimal {
	taken := quantity
	if taken.GreaterThan(r.Quantity) {
		taken = r.Quantity
	}
	r.Quantity = r.Quantity.Sub(taken)
	if r.Quantity.IsZero() {
		now := time.Now()
		r.ClosedAt = &now
		if consumed {
			r.Consumed = true
		} else {
			r.Released = true
		}
	}
	r.UpdatedAt = time.Now()
	return taken
}
