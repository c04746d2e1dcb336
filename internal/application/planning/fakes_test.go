package planning

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockpilot/backend/internal/domain/catalog"
	"github.com/stockpilot/backend/internal/domain/inventory"
	"github.com/stockpilot/backend/internal/domain/planning"
	"github.com/stockpilot/backend/internal/domain/shared"
	"github.com/stockpilot/backend/internal/domain/trade"
)

type fakeForecastRepo struct {
	forecasts map[uuid.UUID]planning.DemandForecast
}

func newFakeForecastRepo() *fakeForecastRepo {
	return &fakeForecastRepo{forecasts: make(map[uuid.UUID]planning.DemandForecast)}
}

func (r *fakeForecastRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*planning.DemandForecast, error) {
	f, ok := r.forecasts[id]
	if !ok || f.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	copied := f
	return &copied, nil
}

func (r *fakeForecastRepo) FindActiveByProduct(_ context.Context, tenantID, productID uuid.UUID) ([]planning.DemandForecast, error) {
	var result []planning.DemandForecast
	for _, f := range r.forecasts {
		if f.TenantID == tenantID && f.ProductID == productID && f.Status == planning.ForecastStatusActive {
			result = append(result, f)
		}
	}
	return result, nil
}

func (r *fakeForecastRepo) FindRecent(_ context.Context, tenantID uuid.UUID, _ shared.Filter) ([]planning.DemandForecast, error) {
	var result []planning.DemandForecast
	for _, f := range r.forecasts {
		if f.TenantID == tenantID {
			result = append(result, f)
		}
	}
	return result, nil
}

func (r *fakeForecastRepo) Save(_ context.Context, forecast *planning.DemandForecast) error {
	r.forecasts[forecast.ID] = *forecast
	return nil
}

type fakePlanRepo struct {
	plans        map[uuid.UUID]planning.ProductionPlan
	requirements map[uuid.UUID]planning.MaterialRequirement
}

func newFakePlanRepo() *fakePlanRepo {
	return &fakePlanRepo{
		plans:        make(map[uuid.UUID]planning.ProductionPlan),
		requirements: make(map[uuid.UUID]planning.MaterialRequirement),
	}
}

func (r *fakePlanRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*planning.ProductionPlan, error) {
	p, ok := r.plans[id]
	if !ok || p.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	copied := p
	copied.Requirements = nil
	return &copied, nil
}

func (r *fakePlanRepo) FindRecent(_ context.Context, tenantID uuid.UUID, _ shared.Filter) ([]planning.ProductionPlan, error) {
	var result []planning.ProductionPlan
	for _, p := range r.plans {
		if p.TenantID == tenantID {
			result = append(result, p)
		}
	}
	return result, nil
}

func (r *fakePlanRepo) Save(_ context.Context, plan *planning.ProductionPlan) error {
	r.plans[plan.ID] = *plan
	return nil
}

func (r *fakePlanRepo) SaveRequirement(_ context.Context, requirement *planning.MaterialRequirement) error {
	r.requirements[requirement.ID] = *requirement
	return nil
}

func (r *fakePlanRepo) FindRequirements(_ context.Context, tenantID, planID uuid.UUID) ([]planning.MaterialRequirement, error) {
	var result []planning.MaterialRequirement
	for _, req := range r.requirements {
		if req.TenantID == tenantID && req.PlanID == planID {
			result = append(result, req)
		}
	}
	return result, nil
}

type fakeSuggestionRepo struct {
	suggestions map[uuid.UUID]planning.SuggestedPurchaseOrder
}

func newFakeSuggestionRepo() *fakeSuggestionRepo {
	return &fakeSuggestionRepo{suggestions: make(map[uuid.UUID]planning.SuggestedPurchaseOrder)}
}

func (r *fakeSuggestionRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*planning.SuggestedPurchaseOrder, error) {
	s, ok := r.suggestions[id]
	if !ok || s.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	copied := s
	return &copied, nil
}

func (r *fakeSuggestionRepo) FindByPlan(_ context.Context, tenantID, planID uuid.UUID) ([]planning.SuggestedPurchaseOrder, error) {
	var result []planning.SuggestedPurchaseOrder
	for _, s := range r.suggestions {
		if s.TenantID == tenantID && s.PlanID == planID {
			result = append(result, s)
		}
	}
	return result, nil
}

func (r *fakeSuggestionRepo) FindPending(_ context.Context, tenantID uuid.UUID, _ shared.Filter) ([]planning.SuggestedPurchaseOrder, error) {
	var result []planning.SuggestedPurchaseOrder
	for _, s := range r.suggestions {
		if s.TenantID == tenantID && s.Status == planning.SuggestionStatusPending {
			result = append(result, s)
		}
	}
	return result, nil
}

func (r *fakeSuggestionRepo) Save(_ context.Context, suggestion *planning.SuggestedPurchaseOrder) error {
	r.suggestions[suggestion.ID] = *suggestion
	return nil
}

func (r *fakeSuggestionRepo) ConvertPending(_ context.Context, tenantID, id, orderID uuid.UUID) error {
	s, ok := r.suggestions[id]
	if !ok || s.TenantID != tenantID || s.Status != planning.SuggestionStatusPending {
		return shared.ErrAlreadyConverted
	}
	s.Status = planning.SuggestionStatusConverted
	s.ConvertedOrderID = &orderID
	s.Version++
	r.suggestions[id] = s
	return nil
}

// staleSuggestionRepo serves reads from a snapshot taken before another actor
// converted the suggestion, while writes still hit the live store. It models
// two approvals racing on the same row.
type staleSuggestionRepo struct {
	*fakeSuggestionRepo
	snapshot planning.SuggestedPurchaseOrder
}

func (r *staleSuggestionRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*planning.SuggestedPurchaseOrder, error) {
	if id == r.snapshot.ID && tenantID == r.snapshot.TenantID {
		copied := r.snapshot
		return &copied, nil
	}
	return r.fakeSuggestionRepo.FindByID(ctx, tenantID, id)
}

// rollbackConversionScope undoes order writes when the conversion function
// fails, the way a real database transaction would.
type rollbackConversionScope struct {
	suggestions planning.SuggestionRepository
	orders      *fakeOrderRepo
}

func (s *rollbackConversionScope) Execute(_ context.Context, fn func(repos ConversionRepositories) error) error {
	before := make(map[uuid.UUID]trade.PurchaseOrder, len(s.orders.orders))
	for id, order := range s.orders.orders {
		before[id] = order
	}
	if err := fn(s); err != nil {
		s.orders.orders = before
		return err
	}
	return nil
}

func (s *rollbackConversionScope) SuggestionRepo() planning.SuggestionRepository { return s.suggestions }

func (s *rollbackConversionScope) OrderRepo() trade.PurchaseOrderRepository { return s.orders }

type fakeProductRepo struct {
	products map[uuid.UUID]catalog.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[uuid.UUID]catalog.Product)}
}

func (r *fakeProductRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*catalog.Product, error) {
	p, ok := r.products[id]
	if !ok || p.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	copied := p
	return &copied, nil
}

func (r *fakeProductRepo) FindActive(_ context.Context, tenantID uuid.UUID) ([]catalog.Product, error) {
	var result []catalog.Product
	for _, p := range r.products {
		if p.TenantID == tenantID && p.IsActive() {
			result = append(result, p)
		}
	}
	return result, nil
}

func (r *fakeProductRepo) Save(_ context.Context, product *catalog.Product) error {
	r.products[product.ID] = *product
	return nil
}

type fakeMaterialRepo struct {
	materials map[uuid.UUID]catalog.RawMaterial
}

func newFakeMaterialRepo() *fakeMaterialRepo {
	return &fakeMaterialRepo{materials: make(map[uuid.UUID]catalog.RawMaterial)}
}

func (r *fakeMaterialRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*catalog.RawMaterial, error) {
	m, ok := r.materials[id]
	if !ok || m.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	copied := m
	return &copied, nil
}

func (r *fakeMaterialRepo) Save(_ context.Context, material *catalog.RawMaterial) error {
	r.materials[material.ID] = *material
	return nil
}

type fakeVendorRepo struct {
	vendors map[uuid.UUID]catalog.Vendor
}

func newFakeVendorRepo() *fakeVendorRepo {
	return &fakeVendorRepo{vendors: make(map[uuid.UUID]catalog.Vendor)}
}

func (r *fakeVendorRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*catalog.Vendor, error) {
	v, ok := r.vendors[id]
	if !ok || v.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	copied := v
	return &copied, nil
}

func (r *fakeVendorRepo) Save(_ context.Context, vendor *catalog.Vendor) error {
	r.vendors[vendor.ID] = *vendor
	return nil
}

type fakeBOMRepo struct {
	boms       map[uuid.UUID]catalog.BOM
	components map[uuid.UUID][]catalog.BOMComponent
}

func newFakeBOMRepo() *fakeBOMRepo {
	return &fakeBOMRepo{
		boms:       make(map[uuid.UUID]catalog.BOM),
		components: make(map[uuid.UUID][]catalog.BOMComponent),
	}
}

func (r *fakeBOMRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*catalog.BOM, error) {
	b, ok := r.boms[id]
	if !ok || b.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	copied := b
	return &copied, nil
}

func (r *fakeBOMRepo) FindActiveByProduct(_ context.Context, tenantID, productID uuid.UUID) (*catalog.BOM, error) {
	for _, b := range r.boms {
		if b.TenantID == tenantID && b.ProductID == productID {
			copied := b
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeBOMRepo) FindComponents(_ context.Context, bomID uuid.UUID) ([]catalog.BOMComponent, error) {
	return r.components[bomID], nil
}

func (r *fakeBOMRepo) Save(_ context.Context, bom *catalog.BOM) error {
	r.boms[bom.ID] = *bom
	r.components[bom.ID] = bom.Components
	return nil
}

// stubProductBalances serves per-product available sums; only the sum methods
// are exercised by the planning services.
type stubProductBalances struct {
	available map[uuid.UUID]decimal.Decimal
}

func (r *stubProductBalances) FindByID(context.Context, uuid.UUID, uuid.UUID) (*inventory.InventoryBalance, error) {
	return nil, shared.ErrNotFound
}

func (r *stubProductBalances) FindByLotAndWarehouse(context.Context, uuid.UUID, uuid.UUID, uuid.UUID) (*inventory.InventoryBalance, error) {
	return nil, shared.ErrNotFound
}

func (r *stubProductBalances) FindByLotAndWarehouseForUpdate(context.Context, uuid.UUID, uuid.UUID, uuid.UUID) (*inventory.InventoryBalance, error) {
	return nil, shared.ErrNotFound
}

func (r *stubProductBalances) FindByProduct(context.Context, uuid.UUID, uuid.UUID) ([]inventory.InventoryBalance, error) {
	return nil, nil
}

func (r *stubProductBalances) SumAvailableByProduct(_ context.Context, _, productID uuid.UUID) (decimal.Decimal, error) {
	return r.available[productID], nil
}

func (r *stubProductBalances) SumAvailableByProductAndWarehouse(_ context.Context, _, productID, _ uuid.UUID) (decimal.Decimal, error) {
	return r.available[productID], nil
}

func (r *stubProductBalances) ListTrackedPairs(context.Context, uuid.UUID) ([]inventory.TrackedPair, error) {
	return nil, nil
}

func (r *stubProductBalances) Save(context.Context, *inventory.InventoryBalance) error {
	return nil
}

type stubMaterialBalances struct {
	available map[uuid.UUID]decimal.Decimal
}

func (r *stubMaterialBalances) FindByMaterialAndWarehouse(context.Context, uuid.UUID, uuid.UUID, uuid.UUID) (*inventory.MaterialBalance, error) {
	return nil, shared.ErrNotFound
}

func (r *stubMaterialBalances) FindByMaterialAndWarehouseForUpdate(context.Context, uuid.UUID, uuid.UUID, uuid.UUID) (*inventory.MaterialBalance, error) {
	return nil, shared.ErrNotFound
}

func (r *stubMaterialBalances) SumAvailableByMaterial(_ context.Context, _, materialID uuid.UUID) (decimal.Decimal, error) {
	return r.available[materialID], nil
}

func (r *stubMaterialBalances) Save(context.Context, *inventory.MaterialBalance) error {
	return nil
}

type fakeOrderRepo struct {
	orders  map[uuid.UUID]trade.PurchaseOrder
	onOrder map[uuid.UUID]decimal.Decimal
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		orders:  make(map[uuid.UUID]trade.PurchaseOrder),
		onOrder: make(map[uuid.UUID]decimal.Decimal),
	}
}

func (r *fakeOrderRepo) Save(_ context.Context, order *trade.PurchaseOrder) error {
	r.orders[order.ID] = *order
	return nil
}

func (r *fakeOrderRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*trade.PurchaseOrder, error) {
	o, ok := r.orders[id]
	if !ok || o.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	copied := o
	return &copied, nil
}

func (r *fakeOrderRepo) FindByOrderNumber(_ context.Context, tenantID uuid.UUID, orderNumber string) (*trade.PurchaseOrder, error) {
	for _, o := range r.orders {
		if o.TenantID == tenantID && o.OrderNumber == orderNumber {
			copied := o
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeOrderRepo) List(_ context.Context, tenantID uuid.UUID, status trade.PurchaseOrderStatus, filter shared.Filter) (shared.Paginated[trade.PurchaseOrder], error) {
	var items []trade.PurchaseOrder
	for _, o := range r.orders {
		if o.TenantID == tenantID && (status == "" || o.Status == status) {
			items = append(items, o)
		}
	}
	return shared.NewPaginated(items, int64(len(items)), filter.Page, filter.Limit()), nil
}

func (r *fakeOrderRepo) SumOpenOrderedQuantityByMaterial(context.Context, uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	return r.onOrder, nil
}

type stubHistory struct {
	lines []planning.OrderLine
	err   error
}

func (s *stubHistory) OrderLines(context.Context, uuid.UUID, []uuid.UUID, time.Time) ([]planning.OrderLine, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.lines, nil
}

type stubReasoner struct {
	reply string
	err   error
	calls int
}

func (s *stubReasoner) Generate(context.Context, string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}
