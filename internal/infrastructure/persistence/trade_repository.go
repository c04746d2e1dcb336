package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/stockpilot/backend/internal/domain/shared"
	"github.com/stockpilot/backend/internal/domain/trade"
)

// GormPurchaseOrderRepository implements PurchaseOrderRepository using GORM
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

// Save persists an order with its items
func (r *GormPurchaseOrderRepository) Save(ctx context.Context, order *trade.PurchaseOrder) error {
	return r.db.WithContext(ctx).Save(order).Error
}

// FindByID finds an order with its items by ID within a tenant
func (r *GormPurchaseOrderRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*trade.PurchaseOrder, error) {
	var order trade.PurchaseOrder
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByOrderNumber finds an order by its order number within a tenant
func (r *GormPurchaseOrderRepository) FindByOrderNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (*trade.PurchaseOrder, error) {
	var order trade.PurchaseOrder
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND order_number = ?", tenantID, orderNumber).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// List returns orders for a tenant, optionally filtered by status
func (r *GormPurchaseOrderRepository) List(ctx context.Context, tenantID uuid.UUID, status trade.PurchaseOrderStatus, filter shared.Filter) (shared.Paginated[trade.PurchaseOrder], error) {
	query := r.db.WithContext(ctx).
		Model(&trade.PurchaseOrder{}).
		Where("tenant_id = ?", tenantID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return shared.Paginated[trade.PurchaseOrder]{}, err
	}

	sortField := ValidateSortField(filter.OrderBy, OrderSortFields, "created_at")
	query = query.Order(fmt.Sprintf("%s %s", sortField, ValidateSortOrder(filter.OrderDir)))

	var orders []trade.PurchaseOrder
	if err := query.
		Preload("Items").
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&orders).Error; err != nil {
		return shared.Paginated[trade.PurchaseOrder]{}, err
	}

	return shared.NewPaginated(orders, total, filter.Page, filter.PageSize), nil
}

// SumOpenOrderedQuantityByMaterial sums outstanding quantity (ordered minus
// received) per material across open orders. This feeds the planner's
// on-order figure.
func (r *GormPurchaseOrderRepository) SumOpenOrderedQuantityByMaterial(ctx context.Context, tenantID uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	var rows []struct {
		RawMaterialID uuid.UUID
		Total         decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&trade.PurchaseOrderItem{}).
		Select("purchase_order_items.raw_material_id, COALESCE(SUM(purchase_order_items.ordered_quantity - purchase_order_items.received_quantity), 0) as total").
		Joins("JOIN purchase_orders ON purchase_orders.id = purchase_order_items.order_id").
		Where("purchase_orders.tenant_id = ? AND purchase_orders.status IN ?", tenantID,
			[]trade.PurchaseOrderStatus{trade.PurchaseOrderStatusConfirmed, trade.PurchaseOrderStatusPartialReceived}).
		Group("purchase_order_items.raw_material_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	sums := make(map[uuid.UUID]decimal.Decimal, len(rows))
	for _, row := range rows {
		sums[row.RawMaterialID] = row.Total
	}
	return sums, nil
}

var _ trade.PurchaseOrderRepository = (*GormPurchaseOrderRepository)(nil)
