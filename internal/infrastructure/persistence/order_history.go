package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stockpilot/backend/internal/domain/inventory"
	"github.com/stockpilot/backend/internal/domain/planning"
)

// GormOrderHistorySource derives historical demand from the inventory
// transaction log: every CONSUMPTION row is stock that left inventory for a
// sale or production order, which is the demand signal forecasting needs.
type GormOrderHistorySource struct {
	db *gorm.DB
}

// NewGormOrderHistorySource creates an order history source backed by the
// transaction log
func NewGormOrderHistorySource(db *gorm.DB) *GormOrderHistorySource {
	return &GormOrderHistorySource{db: db}
}

// OrderLines returns consumption quantities for the given products since the
// cutoff, oldest first
func (s *GormOrderHistorySource) OrderLines(ctx context.Context, tenantID uuid.UUID, productIDs []uuid.UUID, since time.Time) ([]planning.OrderLine, error) {
	var rows []inventory.InventoryTransaction
	if err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id IN ? AND transaction_type = ? AND transaction_date >= ?",
			tenantID, productIDs, inventory.TransactionTypeConsumption, since).
		Order("transaction_date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	lines := make([]planning.OrderLine, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, planning.OrderLine{
			ProductID: row.ProductID,
			Quantity:  row.Quantity,
			OrderDate: row.TransactionDate,
		})
	}
	return lines, nil
}

var _ planning.OrderHistorySource = (*GormOrderHistorySource)(nil)
