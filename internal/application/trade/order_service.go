package trade

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	appinventory "github.com/stockpilot/backend/internal/application/inventory"
	"github.com/stockpilot/backend/internal/domain/shared"
	"github.com/stockpilot/backend/internal/domain/trade"
)

// MaterialReceiver posts received purchase-order goods into the inventory
// ledger.
type MaterialReceiver interface {
	ReceiveMaterial(ctx context.Context, tenantID uuid.UUID, req appinventory.ReceiveMaterialRequest) error
}

// OrderService manages the purchase-order lifecycle. Receiving goods against
// a confirmed order both advances the order and posts a material receipt into
// the ledger.
type OrderService struct {
	orderRepo trade.PurchaseOrderRepository
	receiver  MaterialReceiver
	logger    *zap.Logger
}

// NewOrderService creates an OrderService.
func NewOrderService(orderRepo trade.PurchaseOrderRepository, receiver MaterialReceiver, logger *zap.Logger) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{orderRepo: orderRepo, receiver: receiver, logger: logger}
}

// ConfirmOrder moves a draft order to CONFIRMED.
func (s *OrderService) ConfirmOrder(ctx context.Context, tenantID, orderID uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if err := order.Confirm(); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// CancelOrder aborts a draft or confirmed order.
func (s *OrderService) CancelOrder(ctx context.Context, tenantID, orderID uuid.UUID, reason string) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if err := order.Cancel(reason); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// ReceiveOrderItem records delivered quantity against an order line and posts
// the same quantity into the material ledger at the given warehouse. The
// order must be open for receiving.
func (s *OrderService) ReceiveOrderItem(ctx context.Context, tenantID uuid.UUID, req ReceiveOrderItemRequest) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, tenantID, req.OrderID)
	if err != nil {
		return nil, err
	}
	if !order.CanReceive() {
		return nil, shared.NewDomainError("INVALID_STATE", "Order is not open for receiving")
	}

	var materialID uuid.UUID
	for i := range order.Items {
		if order.Items[i].ID == req.ItemID {
			materialID = order.Items[i].RawMaterialID
			break
		}
	}
	if materialID == uuid.Nil {
		return nil, shared.ErrNotFound
	}

	if err := order.RecordReceipt(req.ItemID, req.Quantity); err != nil {
		return nil, err
	}

	if err := s.receiver.ReceiveMaterial(ctx, tenantID, appinventory.ReceiveMaterialRequest{
		RawMaterialID: materialID,
		WarehouseID:   req.WarehouseID,
		Quantity:      req.Quantity,
		ReferenceType: "purchase_order",
		ReferenceID:   order.OrderNumber,
		OperatorID:    req.OperatorID,
	}); err != nil {
		return nil, err
	}

	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("purchase order receipt recorded",
		zap.String("order_number", order.OrderNumber),
		zap.String("quantity", req.Quantity.String()),
		zap.String("status", string(order.Status)))

	resp := ToOrderResponse(order)
	return &resp, nil
}

// GetOrder returns one order with its items.
func (s *OrderService) GetOrder(ctx context.Context, tenantID, orderID uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// ListOrders returns orders filtered by status ("" for all), newest first.
func (s *OrderService) ListOrders(ctx context.Context, tenantID uuid.UUID, status trade.PurchaseOrderStatus, filter shared.Filter) (shared.Paginated[OrderResponse], error) {
	page, err := s.orderRepo.List(ctx, tenantID, status, filter)
	if err != nil {
		return shared.Paginated[OrderResponse]{}, err
	}
	items := make([]OrderResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, ToOrderResponse(&page.Items[i]))
	}
	return shared.Paginated[OrderResponse]{
		Items:      items,
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	}, nil
}

// ReceiveOrderItemRequest records a delivery against one order line.
type ReceiveOrderItemRequest struct {
	OrderID     uuid.UUID       `json:"-"` // Taken from the URL path
	ItemID      uuid.UUID       `json:"item_id" binding:"required"`
	WarehouseID uuid.UUID       `json:"warehouse_id" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required,dgt0"`
	OperatorID  *uuid.UUID      `json:"operator_id"`
}

// OrderItemResponse is one line of a purchase order.
type OrderItemResponse struct {
	ID               uuid.UUID       `json:"id"`
	RawMaterialID    uuid.UUID       `json:"raw_material_id"`
	MaterialName     string          `json:"material_name"`
	MaterialCode     string          `json:"material_code"`
	Unit             string          `json:"unit"`
	OrderedQuantity  decimal.Decimal `json:"ordered_quantity"`
	ReceivedQuantity decimal.Decimal `json:"received_quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	Amount           decimal.Decimal `json:"amount"`
}

// OrderResponse represents a purchase order in API responses.
type OrderResponse struct {
	ID                   uuid.UUID           `json:"id"`
	OrderNumber          string              `json:"order_number"`
	VendorID             uuid.UUID           `json:"vendor_id"`
	VendorName           string              `json:"vendor_name"`
	SourceSuggestionID   *uuid.UUID          `json:"source_suggestion_id,omitempty"`
	TotalAmount          decimal.Decimal     `json:"total_amount"`
	ExpectedDeliveryDate *time.Time          `json:"expected_delivery_date,omitempty"`
	Status               string              `json:"status"`
	Remark               string              `json:"remark,omitempty"`
	Items                []OrderItemResponse `json:"items"`
}

// ToOrderResponse converts a domain order to a response DTO.
func ToOrderResponse(o *trade.PurchaseOrder) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for i := range o.Items {
		item := &o.Items[i]
		items = append(items, OrderItemResponse{
			ID:               item.ID,
			RawMaterialID:    item.RawMaterialID,
			MaterialName:     item.MaterialName,
			MaterialCode:     item.MaterialCode,
			Unit:             item.Unit,
			OrderedQuantity:  item.OrderedQuantity,
			ReceivedQuantity: item.ReceivedQuantity,
			UnitPrice:        item.UnitPrice,
			Amount:           item.Amount,
		})
	}
	return OrderResponse{
		ID:                   o.ID,
		OrderNumber:          o.OrderNumber,
		VendorID:             o.VendorID,
		VendorName:           o.VendorName,
		SourceSuggestionID:   o.SourceSuggestionID,
		TotalAmount:          o.TotalAmount,
		ExpectedDeliveryDate: o.ExpectedDeliveryDate,
		Status:               string(o.Status),
		Remark:               o.Remark,
		Items:                items,
	}
}
