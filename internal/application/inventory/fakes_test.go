package inventory

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockpilot/backend/internal/domain/inventory"
	"github.com/stockpilot/backend/internal/domain/shared"
)

// In-memory repositories backing the service tests. They store aggregates by
// value so that mutations only persist through Save, mirroring a real store.

type fakeLotRepo struct {
	lots map[uuid.UUID]inventory.Lot
}

func newFakeLotRepo() *fakeLotRepo {
	return &fakeLotRepo{lots: make(map[uuid.UUID]inventory.Lot)}
}

func (r *fakeLotRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*inventory.Lot, error) {
	lot, ok := r.lots[id]
	if !ok || lot.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	copied := lot
	return &copied, nil
}

func (r *fakeLotRepo) FindByCode(_ context.Context, tenantID uuid.UUID, lotCode string) (*inventory.Lot, error) {
	for _, lot := range r.lots {
		if lot.TenantID == tenantID && lot.LotCode == lotCode {
			copied := lot
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeLotRepo) FindByProduct(_ context.Context, tenantID, productID uuid.UUID, _ shared.Filter) ([]inventory.Lot, error) {
	var result []inventory.Lot
	for _, lot := range r.lots {
		if lot.TenantID == tenantID && lot.ProductID == productID {
			result = append(result, lot)
		}
	}
	return result, nil
}

func (r *fakeLotRepo) Save(_ context.Context, lot *inventory.Lot) error {
	r.lots[lot.ID] = *lot
	return nil
}

type fakeBalanceRepo struct {
	balances map[uuid.UUID]inventory.InventoryBalance
}

func newFakeBalanceRepo() *fakeBalanceRepo {
	return &fakeBalanceRepo{balances: make(map[uuid.UUID]inventory.InventoryBalance)}
}

func (r *fakeBalanceRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*inventory.InventoryBalance, error) {
	b, ok := r.balances[id]
	if !ok || b.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	copied := b
	return &copied, nil
}

func (r *fakeBalanceRepo) FindByLotAndWarehouse(_ context.Context, tenantID, lotID, warehouseID uuid.UUID) (*inventory.InventoryBalance, error) {
	for _, b := range r.balances {
		if b.TenantID == tenantID && b.LotID == lotID && b.WarehouseID == warehouseID {
			copied := b
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeBalanceRepo) FindByLotAndWarehouseForUpdate(ctx context.Context, tenantID, lotID, warehouseID uuid.UUID) (*inventory.InventoryBalance, error) {
	return r.FindByLotAndWarehouse(ctx, tenantID, lotID, warehouseID)
}

func (r *fakeBalanceRepo) FindByProduct(_ context.Context, tenantID, productID uuid.UUID) ([]inventory.InventoryBalance, error) {
	var result []inventory.InventoryBalance
	for _, b := range r.balances {
		if b.TenantID == tenantID && b.ProductID == productID {
			result = append(result, b)
		}
	}
	return result, nil
}

func (r *fakeBalanceRepo) SumAvailableByProduct(_ context.Context, tenantID, productID uuid.UUID) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, b := range r.balances {
		if b.TenantID == tenantID && b.ProductID == productID {
			total = total.Add(b.Available)
		}
	}
	return total, nil
}

func (r *fakeBalanceRepo) SumAvailableByProductAndWarehouse(_ context.Context, tenantID, productID, warehouseID uuid.UUID) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, b := range r.balances {
		if b.TenantID == tenantID && b.ProductID == productID && b.WarehouseID == warehouseID {
			total = total.Add(b.Available)
		}
	}
	return total, nil
}

func (r *fakeBalanceRepo) ListTrackedPairs(_ context.Context, tenantID uuid.UUID) ([]inventory.TrackedPair, error) {
	seen := make(map[inventory.TrackedPair]bool)
	var result []inventory.TrackedPair
	for _, b := range r.balances {
		if b.TenantID != tenantID {
			continue
		}
		pair := inventory.TrackedPair{ProductID: b.ProductID, WarehouseID: b.WarehouseID}
		if !seen[pair] {
			seen[pair] = true
			result = append(result, pair)
		}
	}
	return result, nil
}

func (r *fakeBalanceRepo) Save(_ context.Context, balance *inventory.InventoryBalance) error {
	r.balances[balance.ID] = *balance
	return nil
}

type fakeReservationRepo struct {
	reservations map[uuid.UUID]inventory.Reservation
	order        []uuid.UUID // Insertion order stands in for created_at ordering
}

func newFakeReservationRepo() *fakeReservationRepo {
	return &fakeReservationRepo{reservations: make(map[uuid.UUID]inventory.Reservation)}
}

func (r *fakeReservationRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*inventory.Reservation, error) {
	res, ok := r.reservations[id]
	if !ok || res.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	copied := res
	return &copied, nil
}

func (r *fakeReservationRepo) FindActiveByReference(_ context.Context, tenantID, lotID, warehouseID uuid.UUID, referenceType, referenceID string) ([]inventory.Reservation, error) {
	var result []inventory.Reservation
	for _, id := range r.order {
		res := r.reservations[id]
		if res.TenantID == tenantID && res.LotID == lotID && res.WarehouseID == warehouseID &&
			res.ReferenceType == referenceType && res.ReferenceID == referenceID && res.IsActive() {
			result = append(result, res)
		}
	}
	return result, nil
}

func (r *fakeReservationRepo) SumActiveByLotAndWarehouse(_ context.Context, tenantID, lotID, warehouseID uuid.UUID) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, res := range r.reservations {
		if res.TenantID == tenantID && res.LotID == lotID && res.WarehouseID == warehouseID && res.IsActive() {
			total = total.Add(res.Quantity)
		}
	}
	return total, nil
}

func (r *fakeReservationRepo) Save(_ context.Context, reservation *inventory.Reservation) error {
	if _, ok := r.reservations[reservation.ID]; !ok {
		r.order = append(r.order, reservation.ID)
	}
	r.reservations[reservation.ID] = *reservation
	return nil
}

type fakeTransactionRepo struct {
	transactions []inventory.InventoryTransaction
}

func newFakeTransactionRepo() *fakeTransactionRepo {
	return &fakeTransactionRepo{}
}

func (r *fakeTransactionRepo) Append(_ context.Context, tx *inventory.InventoryTransaction) error {
	r.transactions = append(r.transactions, *tx)
	return nil
}

func (r *fakeTransactionRepo) FindByBalance(_ context.Context, tenantID, balanceID uuid.UUID, _ shared.Filter) ([]inventory.InventoryTransaction, error) {
	var result []inventory.InventoryTransaction
	for _, tx := range r.transactions {
		if tx.TenantID == tenantID && tx.BalanceID != nil && *tx.BalanceID == balanceID {
			result = append(result, tx)
		}
	}
	return result, nil
}

func (r *fakeTransactionRepo) FindByProduct(_ context.Context, tenantID, productID uuid.UUID, _ shared.Filter) ([]inventory.InventoryTransaction, error) {
	var result []inventory.InventoryTransaction
	for _, tx := range r.transactions {
		if tx.TenantID == tenantID && tx.ProductID == productID {
			result = append(result, tx)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].TransactionDate.Before(result[j].TransactionDate)
	})
	return result, nil
}

func (r *fakeTransactionRepo) CountByBalance(_ context.Context, tenantID, balanceID uuid.UUID) (int64, error) {
	var count int64
	for _, tx := range r.transactions {
		if tx.TenantID == tenantID && tx.BalanceID != nil && *tx.BalanceID == balanceID {
			count++
		}
	}
	return count, nil
}

type fakeMaterialBalanceRepo struct {
	balances map[uuid.UUID]inventory.MaterialBalance
}

func newFakeMaterialBalanceRepo() *fakeMaterialBalanceRepo {
	return &fakeMaterialBalanceRepo{balances: make(map[uuid.UUID]inventory.MaterialBalance)}
}

func (r *fakeMaterialBalanceRepo) FindByMaterialAndWarehouse(_ context.Context, tenantID, materialID, warehouseID uuid.UUID) (*inventory.MaterialBalance, error) {
	for _, b := range r.balances {
		if b.TenantID == tenantID && b.RawMaterialID == materialID && b.WarehouseID == warehouseID {
			copied := b
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeMaterialBalanceRepo) FindByMaterialAndWarehouseForUpdate(ctx context.Context, tenantID, materialID, warehouseID uuid.UUID) (*inventory.MaterialBalance, error) {
	return r.FindByMaterialAndWarehouse(ctx, tenantID, materialID, warehouseID)
}

func (r *fakeMaterialBalanceRepo) SumAvailableByMaterial(_ context.Context, tenantID, materialID uuid.UUID) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, b := range r.balances {
		if b.TenantID == tenantID && b.RawMaterialID == materialID {
			total = total.Add(b.Available)
		}
	}
	return total, nil
}

func (r *fakeMaterialBalanceRepo) Save(_ context.Context, balance *inventory.MaterialBalance) error {
	r.balances[balance.ID] = *balance
	return nil
}

type ledgerFixture struct {
	lots         *fakeLotRepo
	balances     *fakeBalanceRepo
	reservations *fakeReservationRepo
	transactions *fakeTransactionRepo
	materials    *fakeMaterialBalanceRepo
	service      *LedgerService
}

func newLedgerFixture() *ledgerFixture {
	f := &ledgerFixture{
		lots:         newFakeLotRepo(),
		balances:     newFakeBalanceRepo(),
		reservations: newFakeReservationRepo(),
		transactions: newFakeTransactionRepo(),
		materials:    newFakeMaterialBalanceRepo(),
	}
	scope := NewNoOpTransactionScope(f.lots, f.balances, f.reservations, f.transactions, f.materials)
	f.service = NewLedgerService(scope)
	return f
}

type recordingPublisher struct {
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

// commitFailScope runs the transactional function but fails the surrounding
// transaction, the way a commit error would.
type commitFailScope struct {
	*NoOpTransactionScope
	err error
}

func (s *commitFailScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	if err := fn(s.NoOpTransactionScope); err != nil {
		return err
	}
	return s.err
}
