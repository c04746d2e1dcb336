package event

import (
	"context"

	"go.uber.org/zap"

	"github.com/stockpilot/backend/internal/domain/inventory"
	"github.com/stockpilot/backend/internal/domain/shared"
)

// StockAuditHandler writes a structured audit line for every stock movement
// the ledger emits. It is the default subscriber wired at startup.
type StockAuditHandler struct {
	logger *zap.Logger
}

// NewStockAuditHandler creates the handler.
func NewStockAuditHandler(logger *zap.Logger) *StockAuditHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockAuditHandler{logger: logger}
}

// EventTypes lists the stock-movement events this handler consumes.
func (h *StockAuditHandler) EventTypes() []string {
	return []string{
		inventory.EventTypeStockReceived,
		inventory.EventTypeStockReserved,
		inventory.EventTypeStockReleased,
		inventory.EventTypeStockConsumed,
		inventory.EventTypeStockAdjusted,
	}
}

// Handle logs the movement with its resulting balance position.
func (h *StockAuditHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	moved, ok := event.(*inventory.StockMovedEvent)
	if !ok {
		return nil
	}
	h.logger.Info("stock moved",
		zap.String("event_type", moved.EventType()),
		zap.String("tenant_id", moved.TenantID().String()),
		zap.String("product_id", moved.ProductID),
		zap.String("warehouse_id", moved.WarehouseID),
		zap.String("lot_id", moved.LotID),
		zap.String("quantity", moved.Quantity.String()),
		zap.String("available", moved.Available.String()),
		zap.String("reserved", moved.Reserved.String()),
		zap.String("reference_type", moved.ReferenceType),
		zap.String("reference_id", moved.ReferenceID),
	)
	return nil
}

var _ Handler = (*StockAuditHandler)(nil)
