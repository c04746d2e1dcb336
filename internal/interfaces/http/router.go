package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stockpilot/backend/internal/infrastructure/logger"
	"github.com/stockpilot/backend/internal/interfaces/http/handler"
	"github.com/stockpilot/backend/internal/interfaces/http/middleware"
)

// Handlers bundles the handler set mounted by the router
type Handlers struct {
	Inventory      *handler.InventoryHandler
	Reconciliation *handler.ReconciliationHandler
	Planning       *handler.PlanningHandler
	Trade          *handler.TradeHandler
}

// NewRouter builds the gin engine with the full route table and the
// request-id, tenant, logging and recovery middleware stack.
func NewRouter(log *zap.Logger, h Handlers) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	registerValidations()
	engine := gin.New()

	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.Tenant(),
	)

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := engine.Group("/api/v1")

	inventory := v1.Group("/inventory")
	{
		inventory.POST("/receipts", h.Inventory.ReceiveGoods)
		inventory.POST("/reservations", h.Inventory.Reserve)
		inventory.POST("/releases", h.Inventory.Release)
		inventory.POST("/consumptions", h.Inventory.Consume)
		inventory.POST("/adjustments", h.Inventory.Adjust)
		inventory.POST("/materials/receipts", h.Inventory.ReceiveMaterial)
		inventory.POST("/materials/consumptions", h.Inventory.ConsumeMaterial)
		inventory.POST("/materials/adjustments", h.Inventory.AdjustMaterial)
		inventory.GET("/products/:productId/balances", h.Inventory.ListBalances)
		inventory.GET("/products/:productId/availability", h.Inventory.Availability)
		inventory.GET("/products/:productId/lots", h.Inventory.ListLots)
		inventory.GET("/products/:productId/transactions", h.Inventory.ListTransactions)
	}

	reconciliation := v1.Group("/reconciliation")
	{
		reconciliation.POST("/runs", h.Reconciliation.Run)
		reconciliation.GET("/runs", h.Reconciliation.ListRecent)
		reconciliation.GET("/runs/:id", h.Reconciliation.GetRun)
		reconciliation.POST("/lines/:lineId/resolve", h.Reconciliation.ResolveLine)
	}

	planning := v1.Group("/planning")
	{
		planning.POST("/forecasts", h.Planning.GenerateForecasts)
		planning.GET("/forecasts", h.Planning.ListForecasts)
		planning.GET("/forecasts/:id", h.Planning.GetForecast)
		planning.POST("/plans", h.Planning.GeneratePlan)
		planning.GET("/plans", h.Planning.ListPlans)
		planning.GET("/plans/:id", h.Planning.GetPlan)
		planning.POST("/plans/:id/confirm", h.Planning.ConfirmPlan)
		planning.POST("/plans/:id/cancel", h.Planning.CancelPlan)
		planning.POST("/plans/:id/suggestions", h.Planning.GenerateSuggestions)
		planning.GET("/suggestions", h.Planning.ListPendingSuggestions)
		planning.GET("/suggestions/:id", h.Planning.GetSuggestion)
		planning.POST("/suggestions/:id/approve", h.Planning.ApproveSuggestion)
		planning.POST("/suggestions/:id/reject", h.Planning.RejectSuggestion)
	}

	trade := v1.Group("/trade")
	{
		trade.GET("/orders", h.Trade.ListOrders)
		trade.GET("/orders/:id", h.Trade.GetOrder)
		trade.POST("/orders/:id/confirm", h.Trade.ConfirmOrder)
		trade.POST("/orders/:id/cancel", h.Trade.CancelOrder)
		trade.POST("/orders/:id/receipts", h.Trade.ReceiveItem)
	}

	return engine
}
