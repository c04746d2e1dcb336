package handler

import (
	"github.com/gin-gonic/gin"

	apptrade "github.com/stockpilot/backend/internal/application/trade"
	"github.com/stockpilot/backend/internal/domain/trade"
)

// TradeHandler handles purchase order endpoints
type TradeHandler struct {
	BaseHandler
	orders *apptrade.OrderService
}

// NewTradeHandler creates a new TradeHandler
func NewTradeHandler(orders *apptrade.OrderService) *TradeHandler {
	return &TradeHandler{orders: orders}
}

// CancelOrderRequest carries the optional cancellation reason
type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

// GetOrder retrieves a purchase order with its items
func (h *TradeHandler) GetOrder(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	orderID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	order, err := h.orders.GetOrder(c.Request.Context(), tenantID, orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}

// ListOrders lists purchase orders, optionally filtered by status
func (h *TradeHandler) ListOrders(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	filter, ok := h.bindListFilter(c)
	if !ok {
		return
	}

	status := trade.PurchaseOrderStatus(c.Query("status"))

	page, err := h.orders.ListOrders(c.Request.Context(), tenantID, status, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// ConfirmOrder moves a draft order to confirmed
func (h *TradeHandler) ConfirmOrder(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	orderID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	order, err := h.orders.ConfirmOrder(c.Request.Context(), tenantID, orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}

// CancelOrder cancels an order that has not started receiving
func (h *TradeHandler) CancelOrder(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	orderID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		h.BadRequest(c, err.Error())
		return
	}

	order, err := h.orders.CancelOrder(c.Request.Context(), tenantID, orderID, req.Reason)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}

// ReceiveItem records a delivery against one order item and posts the
// received material to the inventory ledger
func (h *TradeHandler) ReceiveItem(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	orderID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req apptrade.ReceiveOrderItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.OrderID = orderID

	order, err := h.orders.ReceiveOrderItem(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}
