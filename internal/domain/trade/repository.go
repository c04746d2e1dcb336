package trade

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockpilot/backend/internal/domain/shared"
)

// PurchaseOrderRepository persists purchase orders and their items.
type PurchaseOrderRepository interface {
	Save(ctx context.Context, order *PurchaseOrder) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*PurchaseOrder, error)
	FindByOrderNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (*PurchaseOrder, error)
	List(ctx context.Context, tenantID uuid.UUID, status PurchaseOrderStatus, filter shared.Filter) (shared.Paginated[PurchaseOrder], error)

	// SumOpenOrderedQuantityByMaterial returns, per raw material, the total
	// quantity still outstanding (ordered minus received) across CONFIRMED
	// and PARTIAL_RECEIVED orders. Materials with no open orders are absent.
	SumOpenOrderedQuantityByMaterial(ctx context.Context, tenantID uuid.UUID) (map[uuid.UUID]decimal.Decimal, error)
}
