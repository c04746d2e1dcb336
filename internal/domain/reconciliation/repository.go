package reconciliation

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockpilot/backend/internal/domain/shared"
)

// RunRepository defines persistence for reconciliation runs
type RunRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*ReconciliationRun, error)
	FindRecent(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]ReconciliationRun, error)
	Save(ctx context.Context, run *ReconciliationRun) error
	SaveLine(ctx context.Context, line *ReconciliationLine) error
	FindLineByID(ctx context.Context, tenantID, lineID uuid.UUID) (*ReconciliationLine, error)
}

// ChannelQuantitySource reports a sales channel's available quantity for a
// product at a location. Implementations wrap external channel APIs; a failed
// call is surfaced, never papered over.
type ChannelQuantitySource interface {
	ReportedQuantity(ctx context.Context, tenantID, productID, warehouseID uuid.UUID, storeID string) (decimal.Decimal, error)
}
