package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinv "github.com/stockpilot/backend/internal/application/inventory"
	"github.com/stockpilot/backend/internal/domain/catalog"
	"github.com/stockpilot/backend/internal/domain/inventory"
	"github.com/stockpilot/backend/internal/domain/planning"
	"github.com/stockpilot/backend/internal/domain/reconciliation"
	"github.com/stockpilot/backend/internal/domain/shared"
	"github.com/stockpilot/backend/internal/domain/trade"
)

func newTestDB(t *testing.T) *Database {
	t.Helper()
	db, err := NewTestDatabase()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func mustLot(t *testing.T, tenantID, productID uuid.UUID, code string) *inventory.Lot {
	t.Helper()
	lot, err := inventory.NewLot(tenantID, productID, code, time.Now(), nil)
	require.NoError(t, err)
	return lot
}

func TestGormLotRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormLotRepository(db.DB)
	ctx := context.Background()
	tenantID := uuid.New()
	productID := uuid.New()

	lot := mustLot(t, tenantID, productID, "LOT-A")
	require.NoError(t, repo.Save(ctx, lot))

	t.Run("find by id", func(t *testing.T) {
		found, err := repo.FindByID(ctx, tenantID, lot.ID)
		require.NoError(t, err)
		assert.Equal(t, "LOT-A", found.LotCode)
	})

	t.Run("find by code", func(t *testing.T) {
		found, err := repo.FindByCode(ctx, tenantID, "LOT-A")
		require.NoError(t, err)
		assert.Equal(t, lot.ID, found.ID)
	})

	t.Run("tenant isolation", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New(), lot.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("list by product", func(t *testing.T) {
		other := mustLot(t, tenantID, productID, "LOT-B")
		require.NoError(t, repo.Save(ctx, other))

		lots, err := repo.FindByProduct(ctx, tenantID, productID, shared.Filter{Page: 1, PageSize: 10})
		require.NoError(t, err)
		assert.Len(t, lots, 2)
	})
}

func TestGormInventoryBalanceRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormInventoryBalanceRepository(db.DB)
	ctx := context.Background()
	tenantID := uuid.New()
	productID := uuid.New()
	warehouseA := uuid.New()
	warehouseB := uuid.New()

	lotA := uuid.New()
	lotB := uuid.New()
	seed := func(lotID, warehouseID uuid.UUID, available int64) *inventory.InventoryBalance {
		balance, err := inventory.NewInventoryBalance(tenantID, lotID, warehouseID, productID)
		require.NoError(t, err)
		require.NoError(t, balance.Receive(decimal.NewFromInt(available)))
		require.NoError(t, repo.Save(ctx, balance))
		return balance
	}
	balanceA := seed(lotA, warehouseA, 100)
	seed(lotB, warehouseB, 40)

	t.Run("find by lot and warehouse", func(t *testing.T) {
		found, err := repo.FindByLotAndWarehouse(ctx, tenantID, lotA, warehouseA)
		require.NoError(t, err)
		assert.Equal(t, balanceA.ID, found.ID)
		assert.Equal(t, "100", found.Available.String())
	})

	t.Run("missing pair", func(t *testing.T) {
		_, err := repo.FindByLotAndWarehouse(ctx, tenantID, lotA, warehouseB)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("sum available by product", func(t *testing.T) {
		total, err := repo.SumAvailableByProduct(ctx, tenantID, productID)
		require.NoError(t, err)
		assert.True(t, total.Equal(decimal.NewFromInt(140)), total.String())
	})

	t.Run("sum available by product and warehouse", func(t *testing.T) {
		total, err := repo.SumAvailableByProductAndWarehouse(ctx, tenantID, productID, warehouseB)
		require.NoError(t, err)
		assert.True(t, total.Equal(decimal.NewFromInt(40)), total.String())
	})

	t.Run("tracked pairs", func(t *testing.T) {
		pairs, err := repo.ListTrackedPairs(ctx, tenantID)
		require.NoError(t, err)
		assert.Len(t, pairs, 2)
	})

	t.Run("locked read", func(t *testing.T) {
		found, err := repo.FindByLotAndWarehouseForUpdate(ctx, tenantID, lotA, warehouseA)
		require.NoError(t, err)
		assert.Equal(t, balanceA.ID, found.ID)
	})
}

func TestGormReservationRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormReservationRepository(db.DB)
	ctx := context.Background()
	tenantID := uuid.New()
	lotID := uuid.New()
	warehouseID := uuid.New()
	productID := uuid.New()

	first := inventory.NewReservation(tenantID, lotID, warehouseID, productID, decimal.NewFromInt(20), "sales_order", "SO-1")
	first.CreatedAt = time.Now().Add(-time.Hour)
	second := inventory.NewReservation(tenantID, lotID, warehouseID, productID, decimal.NewFromInt(30), "sales_order", "SO-1")
	other := inventory.NewReservation(tenantID, lotID, warehouseID, productID, decimal.NewFromInt(5), "sales_order", "SO-2")
	for _, res := range []*inventory.Reservation{second, first, other} {
		require.NoError(t, repo.Save(ctx, res))
	}

	t.Run("active by reference oldest first", func(t *testing.T) {
		active, err := repo.FindActiveByReference(ctx, tenantID, lotID, warehouseID, "sales_order", "SO-1")
		require.NoError(t, err)
		require.Len(t, active, 2)
		assert.Equal(t, first.ID, active[0].ID)
		assert.Equal(t, second.ID, active[1].ID)
	})

	t.Run("released excluded", func(t *testing.T) {
		first.Reduce(decimal.NewFromInt(20), false)
		require.NoError(t, repo.Save(ctx, first))

		active, err := repo.FindActiveByReference(ctx, tenantID, lotID, warehouseID, "sales_order", "SO-1")
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, second.ID, active[0].ID)
	})

	t.Run("sum active", func(t *testing.T) {
		total, err := repo.SumActiveByLotAndWarehouse(ctx, tenantID, lotID, warehouseID)
		require.NoError(t, err)
		assert.True(t, total.Equal(decimal.NewFromInt(35)), total.String())
	})
}

func TestGormInventoryTransactionRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormInventoryTransactionRepository(db.DB)
	ctx := context.Background()
	tenantID := uuid.New()
	productID := uuid.New()
	warehouseID := uuid.New()
	balanceID := uuid.New()

	record := func(txType inventory.TransactionType, qty int64, at time.Time) {
		tx, err := inventory.NewInventoryTransaction(tenantID, warehouseID, productID, txType,
			decimal.NewFromInt(qty), decimal.Zero, decimal.NewFromInt(qty), "sales_order", "SO-1")
		require.NoError(t, err)
		tx.BalanceID = &balanceID
		tx.TransactionDate = at
		require.NoError(t, repo.Append(ctx, tx))
	}
	record(inventory.TransactionTypeReceipt, 100, time.Now().Add(-2*time.Hour))
	record(inventory.TransactionTypeReservation, 30, time.Now().Add(-time.Hour))
	record(inventory.TransactionTypeRelease, 30, time.Now())

	t.Run("by product newest first", func(t *testing.T) {
		txs, err := repo.FindByProduct(ctx, tenantID, productID, shared.Filter{Page: 1, PageSize: 10})
		require.NoError(t, err)
		require.Len(t, txs, 3)
		assert.Equal(t, inventory.TransactionTypeRelease, txs[0].TransactionType)
		assert.Equal(t, inventory.TransactionTypeReceipt, txs[2].TransactionType)
	})

	t.Run("by balance", func(t *testing.T) {
		txs, err := repo.FindByBalance(ctx, tenantID, balanceID, shared.Filter{Page: 1, PageSize: 10})
		require.NoError(t, err)
		assert.Len(t, txs, 3)
	})

	t.Run("count", func(t *testing.T) {
		count, err := repo.CountByBalance(ctx, tenantID, balanceID)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})
}

func TestGormOrderHistorySource(t *testing.T) {
	db := newTestDB(t)
	txRepo := NewGormInventoryTransactionRepository(db.DB)
	source := NewGormOrderHistorySource(db.DB)
	ctx := context.Background()
	tenantID := uuid.New()
	productID := uuid.New()
	warehouseID := uuid.New()

	record := func(txType inventory.TransactionType, qty int64, at time.Time) {
		tx, err := inventory.NewInventoryTransaction(tenantID, warehouseID, productID, txType,
			decimal.NewFromInt(qty), decimal.Zero, decimal.NewFromInt(qty), "sales_order", "SO-9")
		require.NoError(t, err)
		tx.TransactionDate = at
		require.NoError(t, txRepo.Append(ctx, tx))
	}
	record(inventory.TransactionTypeConsumption, 12, time.Now().AddDate(0, -2, 0))
	record(inventory.TransactionTypeConsumption, 8, time.Now().AddDate(0, -1, 0))
	record(inventory.TransactionTypeReceipt, 100, time.Now().AddDate(0, -1, 0))
	record(inventory.TransactionTypeConsumption, 30, time.Now().AddDate(0, -8, 0))

	lines, err := source.OrderLines(ctx, tenantID, []uuid.UUID{productID}, time.Now().AddDate(0, -6, 0))
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "12", lines[0].Quantity.String())
	assert.Equal(t, "8", lines[1].Quantity.String())
}

func TestGormMaterialBalanceRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormMaterialBalanceRepository(db.DB)
	ctx := context.Background()
	tenantID := uuid.New()
	materialID := uuid.New()
	warehouseA := uuid.New()
	warehouseB := uuid.New()

	seed := func(warehouseID uuid.UUID, available int64) {
		balance, err := inventory.NewMaterialBalance(tenantID, materialID, warehouseID)
		require.NoError(t, err)
		require.NoError(t, balance.Receive(decimal.NewFromInt(available)))
		require.NoError(t, repo.Save(ctx, balance))
	}
	seed(warehouseA, 500)
	seed(warehouseB, 120)

	found, err := repo.FindByMaterialAndWarehouse(ctx, tenantID, materialID, warehouseA)
	require.NoError(t, err)
	assert.Equal(t, "500", found.Available.String())

	total, err := repo.SumAvailableByMaterial(ctx, tenantID, materialID)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(620)), total.String())
}

func TestGormBOMRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormBOMRepository(db.DB)
	ctx := context.Background()
	tenantID := uuid.New()
	productID := uuid.New()
	materialID := uuid.New()

	bom, err := catalog.NewBOM(tenantID, productID)
	require.NoError(t, err)
	require.NoError(t, bom.AddComponent(materialID, decimal.NewFromInt(2), "kg"))
	require.NoError(t, repo.Save(ctx, bom))

	t.Run("active by product with components", func(t *testing.T) {
		found, err := repo.FindActiveByProduct(ctx, tenantID, productID)
		require.NoError(t, err)
		require.Len(t, found.Components, 1)
		assert.Equal(t, materialID, found.Components[0].RawMaterialID)
	})

	t.Run("components listed", func(t *testing.T) {
		components, err := repo.FindComponents(ctx, bom.ID)
		require.NoError(t, err)
		assert.Len(t, components, 1)
	})

	t.Run("no active bom", func(t *testing.T) {
		_, err := repo.FindActiveByProduct(ctx, tenantID, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormRunRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormRunRepository(db.DB)
	ctx := context.Background()
	tenantID := uuid.New()

	run, err := reconciliation.NewReconciliationRun(tenantID, "shopify", "store-1")
	require.NoError(t, err)
	require.NoError(t, run.AddLine(uuid.New(), uuid.New(), decimal.NewFromInt(10), decimal.NewFromInt(7)))
	require.NoError(t, run.Complete())
	require.NoError(t, repo.Save(ctx, run))

	t.Run("find with lines", func(t *testing.T) {
		found, err := repo.FindByID(ctx, tenantID, run.ID)
		require.NoError(t, err)
		require.Len(t, found.Lines, 1)
		assert.Equal(t, reconciliation.ActionInvestigateShortage, found.Lines[0].SuggestedAction)
	})

	t.Run("line lookup scoped by run tenant", func(t *testing.T) {
		lineID := run.Lines[0].ID

		line, err := repo.FindLineByID(ctx, tenantID, lineID)
		require.NoError(t, err)
		assert.Equal(t, run.ID, line.RunID)

		_, err = repo.FindLineByID(ctx, uuid.New(), lineID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("resolved line persists", func(t *testing.T) {
		line, err := repo.FindLineByID(ctx, tenantID, run.Lines[0].ID)
		require.NoError(t, err)
		require.NoError(t, line.Resolve("counted shelf stock"))
		require.NoError(t, repo.SaveLine(ctx, line))

		again, err := repo.FindLineByID(ctx, tenantID, line.ID)
		require.NoError(t, err)
		assert.True(t, again.Resolved)
		assert.Equal(t, "counted shelf stock", again.ResolutionNote)
	})

	t.Run("recent runs", func(t *testing.T) {
		runs, err := repo.FindRecent(ctx, tenantID, shared.Filter{Page: 1, PageSize: 10})
		require.NoError(t, err)
		assert.Len(t, runs, 1)
	})
}

func TestGormForecastRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormForecastRepository(db.DB)
	ctx := context.Background()
	tenantID := uuid.New()
	productID := uuid.New()

	forecast, err := planning.NewDemandForecast(tenantID, productID,
		time.Now(), time.Now().AddDate(0, 3, 0),
		decimal.NewFromInt(300), 80, planning.TrendUp, planning.ForecastMethodAITrend, 3, "steady growth")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, forecast))

	t.Run("active by product", func(t *testing.T) {
		active, err := repo.FindActiveByProduct(ctx, tenantID, productID)
		require.NoError(t, err)
		assert.Len(t, active, 1)
	})

	t.Run("superseded excluded", func(t *testing.T) {
		forecast.Supersede()
		require.NoError(t, repo.Save(ctx, forecast))

		active, err := repo.FindActiveByProduct(ctx, tenantID, productID)
		require.NoError(t, err)
		assert.Empty(t, active)
	})
}

func TestGormPlanRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormPlanRepository(db.DB)
	ctx := context.Background()
	tenantID := uuid.New()

	plan, err := planning.NewProductionPlan(tenantID, uuid.New(), uuid.New(),
		decimal.NewFromInt(300), decimal.NewFromInt(50), decimal.NewFromInt(20),
		time.Now().AddDate(0, 0, 30))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, plan))

	requirement, err := planning.NewMaterialRequirement(tenantID, plan.ID, uuid.New(),
		decimal.NewFromInt(620), decimal.NewFromInt(150), decimal.Zero, "kg",
		nil, decimal.NewFromInt(4), 10, plan.RequiredByDate)
	require.NoError(t, err)
	require.NoError(t, repo.SaveRequirement(ctx, requirement))

	t.Run("requirements stored separately", func(t *testing.T) {
		found, err := repo.FindByID(ctx, tenantID, plan.ID)
		require.NoError(t, err)
		assert.Equal(t, "310", found.PlannedQuantity.String())

		requirements, err := repo.FindRequirements(ctx, tenantID, plan.ID)
		require.NoError(t, err)
		require.Len(t, requirements, 1)
		assert.Equal(t, "470", requirements[0].ShortageQuantity.String())
	})

	t.Run("recent", func(t *testing.T) {
		plans, err := repo.FindRecent(ctx, tenantID, shared.Filter{Page: 1, PageSize: 10})
		require.NoError(t, err)
		assert.Len(t, plans, 1)
	})
}

func TestGormSuggestionRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormSuggestionRepository(db.DB)
	ctx := context.Background()
	tenantID := uuid.New()
	planID := uuid.New()

	requirement, err := planning.NewMaterialRequirement(tenantID, planID, uuid.New(),
		decimal.NewFromInt(620), decimal.NewFromInt(150), decimal.Zero, "kg",
		nil, decimal.NewFromInt(4), 10, time.Now().AddDate(0, 0, 30))
	require.NoError(t, err)

	suggestion, err := planning.NewSuggestedPurchaseOrder(tenantID, planID, uuid.New(),
		[]planning.MaterialRequirement{*requirement}, 10, time.Now(), time.Now().AddDate(0, 0, 30))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, suggestion))

	t.Run("pending with items", func(t *testing.T) {
		pending, err := repo.FindPending(ctx, tenantID, shared.Filter{Page: 1, PageSize: 10})
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Len(t, pending[0].Items, 1)
	})

	t.Run("by plan", func(t *testing.T) {
		suggestions, err := repo.FindByPlan(ctx, tenantID, planID)
		require.NoError(t, err)
		assert.Len(t, suggestions, 1)
	})

	t.Run("converted excluded from pending", func(t *testing.T) {
		require.NoError(t, suggestion.MarkConverted(uuid.New()))
		require.NoError(t, repo.Save(ctx, suggestion))

		pending, err := repo.FindPending(ctx, tenantID, shared.Filter{Page: 1, PageSize: 10})
		require.NoError(t, err)
		assert.Empty(t, pending)
	})
}

func TestGormSuggestionConvertPending(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormSuggestionRepository(db.DB)
	ctx := context.Background()
	tenantID := uuid.New()
	planID := uuid.New()

	requirement, err := planning.NewMaterialRequirement(tenantID, planID, uuid.New(),
		decimal.NewFromInt(620), decimal.NewFromInt(150), decimal.Zero, "kg",
		nil, decimal.NewFromInt(4), 10, time.Now().AddDate(0, 0, 30))
	require.NoError(t, err)

	suggestion, err := planning.NewSuggestedPurchaseOrder(tenantID, planID, uuid.New(),
		[]planning.MaterialRequirement{*requirement}, 10, time.Now(), time.Now().AddDate(0, 0, 30))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, suggestion))

	// Two approvals read the suggestion before either converted it, so both
	// observe it pending.
	firstView, err := repo.FindByID(ctx, tenantID, suggestion.ID)
	require.NoError(t, err)
	secondView, err := repo.FindByID(ctx, tenantID, suggestion.ID)
	require.NoError(t, err)
	assert.Equal(t, planning.SuggestionStatusPending, firstView.Status)
	assert.Equal(t, planning.SuggestionStatusPending, secondView.Status)

	firstOrderID := uuid.New()
	require.NoError(t, repo.ConvertPending(ctx, tenantID, firstView.ID, firstOrderID))

	// The guarded update matches zero rows for the loser.
	err = repo.ConvertPending(ctx, tenantID, secondView.ID, uuid.New())
	require.ErrorIs(t, err, shared.ErrAlreadyConverted)

	stored, err := repo.FindByID(ctx, tenantID, suggestion.ID)
	require.NoError(t, err)
	assert.Equal(t, planning.SuggestionStatusConverted, stored.Status)
	require.NotNil(t, stored.ConvertedOrderID)
	assert.Equal(t, firstOrderID, *stored.ConvertedOrderID)
}

func TestGormPurchaseOrderRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormPurchaseOrderRepository(db.DB)
	ctx := context.Background()
	tenantID := uuid.New()
	materialID := uuid.New()

	newOrder := func(qty int64) *trade.PurchaseOrder {
		order, err := trade.NewPurchaseOrder(tenantID, uuid.New(), "Acme Flour Co.")
		require.NoError(t, err)
		_, err = order.AddItem(materialID, "Bread flour", "RM-001", "kg",
			decimal.NewFromInt(qty), decimal.NewFromInt(4))
		require.NoError(t, err)
		return order
	}

	draft := newOrder(50)
	require.NoError(t, repo.Save(ctx, draft))

	confirmed := newOrder(100)
	require.NoError(t, confirmed.Confirm())
	require.NoError(t, repo.Save(ctx, confirmed))

	partial := newOrder(200)
	require.NoError(t, partial.Confirm())
	require.NoError(t, partial.RecordReceipt(partial.Items[0].ID, decimal.NewFromInt(80)))
	require.NoError(t, repo.Save(ctx, partial))

	t.Run("find by order number", func(t *testing.T) {
		found, err := repo.FindByOrderNumber(ctx, tenantID, confirmed.OrderNumber)
		require.NoError(t, err)
		assert.Equal(t, confirmed.ID, found.ID)
		assert.Len(t, found.Items, 1)
	})

	t.Run("list by status", func(t *testing.T) {
		page, err := repo.List(ctx, tenantID, trade.PurchaseOrderStatusDraft, shared.Filter{Page: 1, PageSize: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(1), page.Total)
	})

	t.Run("open on-order sums exclude drafts and received quantity", func(t *testing.T) {
		sums, err := repo.SumOpenOrderedQuantityByMaterial(ctx, tenantID)
		require.NoError(t, err)
		// confirmed 100 + partial outstanding 120; draft not counted
		assert.True(t, sums[materialID].Equal(decimal.NewFromInt(220)), sums[materialID].String())
	})
}

func TestGormTransactionScopeRollback(t *testing.T) {
	db := newTestDB(t)
	scope := NewGormTransactionScope(db.DB)
	ctx := context.Background()
	tenantID := uuid.New()

	lot := mustLot(t, tenantID, uuid.New(), "LOT-TX")
	err := scope.Execute(ctx, func(repos appinv.TransactionalRepositories) error {
		if err := repos.LotRepo().Save(ctx, lot); err != nil {
			return err
		}
		return shared.ErrInvalidState
	})
	require.Error(t, err)

	_, err = NewGormLotRepository(db.DB).FindByID(ctx, tenantID, lot.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
