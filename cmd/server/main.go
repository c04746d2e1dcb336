package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"

	appinventory "github.com/stockpilot/backend/internal/application/inventory"
	appplanning "github.com/stockpilot/backend/internal/application/planning"
	apprecon "github.com/stockpilot/backend/internal/application/reconciliation"
	apptrade "github.com/stockpilot/backend/internal/application/trade"
	"github.com/stockpilot/backend/internal/domain/planning"
	"github.com/stockpilot/backend/internal/infrastructure/ai"
	"github.com/stockpilot/backend/internal/infrastructure/channel"
	"github.com/stockpilot/backend/internal/infrastructure/config"
	"github.com/stockpilot/backend/internal/infrastructure/event"
	"github.com/stockpilot/backend/internal/infrastructure/logger"
	"github.com/stockpilot/backend/internal/infrastructure/persistence"
	httpiface "github.com/stockpilot/backend/internal/interfaces/http"
	"github.com/stockpilot/backend/internal/interfaces/http/handler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync(log)

	log.Info("starting server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLog := logger.NewGormLogger(log, gormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("database migration failed", zap.Error(err))
	}

	// Repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	materialRepo := persistence.NewGormRawMaterialRepository(db.DB)
	vendorRepo := persistence.NewGormVendorRepository(db.DB)
	bomRepo := persistence.NewGormBOMRepository(db.DB)
	lotRepo := persistence.NewGormLotRepository(db.DB)
	balanceRepo := persistence.NewGormInventoryBalanceRepository(db.DB)
	transactionRepo := persistence.NewGormInventoryTransactionRepository(db.DB)
	materialBalanceRepo := persistence.NewGormMaterialBalanceRepository(db.DB)
	runRepo := persistence.NewGormRunRepository(db.DB)
	forecastRepo := persistence.NewGormForecastRepository(db.DB)
	planRepo := persistence.NewGormPlanRepository(db.DB)
	suggestionRepo := persistence.NewGormSuggestionRepository(db.DB)
	orderRepo := persistence.NewGormPurchaseOrderRepository(db.DB)

	txScope := persistence.NewGormTransactionScope(db.DB)
	convScope := persistence.NewGormConversionScope(db.DB)
	historySource := persistence.NewGormOrderHistorySource(db.DB)

	// External collaborators. Without an API key the reasoner stays nil and
	// planning services use their deterministic fallbacks.
	var reasoner planning.ReasoningService
	if client := ai.NewOpenAIClient(cfg.AI, log); client != nil {
		reasoner = client
		log.Info("reasoning service enabled", zap.String("model", cfg.AI.Model))
	} else {
		log.Info("reasoning service disabled, using deterministic estimates")
	}

	channelSource := channel.NewHTTPQuantitySource(
		cfg.Channel.BaseURL, cfg.Channel.APIKey, cfg.Channel.Timeout, log)

	eventBus := event.NewInMemoryBus(log)
	eventBus.Subscribe(event.NewStockAuditHandler(log))

	// Application services
	ledgerService := appinventory.NewLedgerService(txScope)
	ledgerService.SetEventPublisher(eventBus)
	queryService := appinventory.NewQueryService(lotRepo, balanceRepo, transactionRepo)
	reconService := apprecon.NewService(runRepo, balanceRepo, channelSource, log)
	forecastService := appplanning.NewForecastService(
		forecastRepo, productRepo, balanceRepo, historySource, reasoner, log)
	planService := appplanning.NewPlanService(
		planRepo, forecastRepo, bomRepo, materialRepo, balanceRepo, materialBalanceRepo, orderRepo, log)
	suggestionService := appplanning.NewSuggestionService(
		suggestionRepo, planRepo, vendorRepo, materialRepo, convScope, reasoner, log)
	orderService := apptrade.NewOrderService(orderRepo, ledgerService, log)

	router := httpiface.NewRouter(log, httpiface.Handlers{
		Inventory:      handler.NewInventoryHandler(ledgerService, queryService),
		Reconciliation: handler.NewReconciliationHandler(reconService),
		Planning:       handler.NewPlanningHandler(forecastService, planService, suggestionService),
		Trade:          handler.NewTradeHandler(orderService),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        router,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
	log.Info("server stopped")
}

// gormLogLevel maps the application log level onto GORM's coarser scale.
// Query logging only kicks in at debug; otherwise only slow queries and
// errors surface.
func gormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "debug":
		return gormlogger.Info
	case "info", "warn":
		return gormlogger.Warn
	default:
		return gormlogger.Error
	}
}
