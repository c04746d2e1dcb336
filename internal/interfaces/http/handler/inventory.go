package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appinventory "github.com/stockpilot/backend/internal/application/inventory"
)

// InventoryHandler handles inventory ledger and query endpoints
type InventoryHandler struct {
	BaseHandler
	ledger *appinventory.LedgerService
	query  *appinventory.QueryService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(ledger *appinventory.LedgerService, query *appinventory.QueryService) *InventoryHandler {
	return &InventoryHandler{
		ledger: ledger,
		query:  query,
	}
}

// ReceiveGoods records a receipt of finished goods into a new or existing lot
func (h *InventoryHandler) ReceiveGoods(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req appinventory.ReceiveGoodsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.ledger.ReceiveGoods(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, result)
}

// Reserve claims stock from a lot for an external document
func (h *InventoryHandler) Reserve(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req appinventory.ReserveStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	reservation, err := h.ledger.Reserve(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, reservation)
}

// Release returns reserved stock to available
func (h *InventoryHandler) Release(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req appinventory.ReleaseStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	balance, err := h.ledger.Release(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, balance)
}

// Consume permanently removes reserved stock
func (h *InventoryHandler) Consume(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req appinventory.ConsumeStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	balance, err := h.ledger.Consume(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, balance)
}

// Adjust applies a manual correction to a lot balance
func (h *InventoryHandler) Adjust(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req appinventory.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	balance, err := h.ledger.Adjust(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, balance)
}

// ReceiveMaterial records a raw-material receipt
func (h *InventoryHandler) ReceiveMaterial(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req appinventory.ReceiveMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.ledger.ReceiveMaterial(c.Request.Context(), tenantID, req); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// ConsumeMaterial records raw material used by production
func (h *InventoryHandler) ConsumeMaterial(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req appinventory.ConsumeMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.ledger.ConsumeMaterial(c.Request.Context(), tenantID, req); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// AdjustMaterial applies a manual correction to a material balance
func (h *InventoryHandler) AdjustMaterial(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req appinventory.AdjustMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.ledger.AdjustMaterial(c.Request.Context(), tenantID, req); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// ListBalances lists all lot balances for a product
func (h *InventoryHandler) ListBalances(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	productID, err := parseUUIDParam(c, "productId")
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	balances, err := h.query.ListBalancesByProduct(c.Request.Context(), tenantID, productID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, balances)
}

// Availability returns total available quantity for a product, optionally
// scoped to one warehouse via the warehouse_id query parameter
func (h *InventoryHandler) Availability(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	productID, err := parseUUIDParam(c, "productId")
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	var warehouseID *uuid.UUID
	if raw := c.Query("warehouse_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid warehouse ID format")
			return
		}
		warehouseID = &parsed
	}

	available, err := h.query.ProductAvailability(c.Request.Context(), tenantID, productID, warehouseID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, gin.H{"product_id": productID, "available": available})
}

// ListLots lists lots for a product
func (h *InventoryHandler) ListLots(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	productID, err := parseUUIDParam(c, "productId")
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	filter, ok := h.bindListFilter(c)
	if !ok {
		return
	}

	lots, err := h.query.ListLots(c.Request.Context(), tenantID, productID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, lots)
}

// ListTransactions lists the audit log for a product
func (h *InventoryHandler) ListTransactions(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	productID, err := parseUUIDParam(c, "productId")
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	filter, ok := h.bindListFilter(c)
	if !ok {
		return
	}

	transactions, err := h.query.ListTransactionsByProduct(c.Request.Context(), tenantID, productID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, transactions)
}
