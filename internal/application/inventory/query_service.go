package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockpilot/backend/internal/domain/inventory"
	"github.com/stockpilot/backend/internal/domain/shared"
)

// QueryService serves the read side of the inventory ledger. Queries run
// outside the transaction scope; they never mutate state.
type QueryService struct {
	lotRepo         inventory.LotRepository
	balanceRepo     inventory.InventoryBalanceRepository
	transactionRepo inventory.InventoryTransactionRepository
}

// NewQueryService creates a new QueryService.
func NewQueryService(
	lotRepo inventory.LotRepository,
	balanceRepo inventory.InventoryBalanceRepository,
	transactionRepo inventory.InventoryTransactionRepository,
) *QueryService {
	return &QueryService{
		lotRepo:         lotRepo,
		balanceRepo:     balanceRepo,
		transactionRepo: transactionRepo,
	}
}

// GetBalance returns the balance for a lot-warehouse pair.
func (s *QueryService) GetBalance(ctx context.Context, tenantID, lotID, warehouseID uuid.UUID) (*BalanceResponse, error) {
	balance, err := s.balanceRepo.FindByLotAndWarehouse(ctx, tenantID, lotID, warehouseID)
	if err != nil {
		return nil, err
	}
	resp := ToBalanceResponse(balance)
	return &resp, nil
}

// ListBalancesByProduct returns all balance rows for a product.
func (s *QueryService) ListBalancesByProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]BalanceResponse, error) {
	balances, err := s.balanceRepo.FindByProduct(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	result := make([]BalanceResponse, 0, len(balances))
	for i := range balances {
		result = append(result, ToBalanceResponse(&balances[i]))
	}
	return result, nil
}

// ProductAvailability returns the total available quantity for a product,
// optionally limited to one warehouse.
func (s *QueryService) ProductAvailability(ctx context.Context, tenantID, productID uuid.UUID, warehouseID *uuid.UUID) (decimal.Decimal, error) {
	if warehouseID != nil {
		return s.balanceRepo.SumAvailableByProductAndWarehouse(ctx, tenantID, productID, *warehouseID)
	}
	return s.balanceRepo.SumAvailableByProduct(ctx, tenantID, productID)
}

// ListLots returns lots for a product, newest receipts first.
func (s *QueryService) ListLots(ctx context.Context, tenantID, productID uuid.UUID, filter shared.Filter) ([]inventory.Lot, error) {
	return s.lotRepo.FindByProduct(ctx, tenantID, productID, filter)
}

// ListTransactionsByProduct returns the audit log for a product.
func (s *QueryService) ListTransactionsByProduct(ctx context.Context, tenantID, productID uuid.UUID, filter shared.Filter) ([]TransactionResponse, error) {
	txs, err := s.transactionRepo.FindByProduct(ctx, tenantID, productID, filter)
	if err != nil {
		return nil, err
	}
	result := make([]TransactionResponse, 0, len(txs))
	for i := range txs {
		result = append(result, ToTransactionResponse(&txs[i]))
	}
	return result, nil
}

// ListTransactionsByBalance returns the audit log for one balance row.
func (s *QueryService) ListTransactionsByBalance(ctx context.Context, tenantID, balanceID uuid.UUID, filter shared.Filter) ([]TransactionResponse, error) {
	txs, err := s.transactionRepo.FindByBalance(ctx, tenantID, balanceID, filter)
	if err != nil {
		return nil, err
	}
	result := make([]TransactionResponse, 0, len(txs))
	for i := range txs {
		result = append(result, ToTransactionResponse(&txs[i]))
	}
	return result, nil
}
