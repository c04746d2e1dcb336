package inventory

import (
	"context"

	"github.com/stockpilot/backend/internal/domain/inventory"
)

// TransactionScope provides transactional access to inventory repositories.
// When a function is executed within a transaction scope, all repository
// operations are part of the same database transaction and commit or roll
// back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all inventory repositories
// within a transaction. All repositories returned share the same underlying
// database transaction.
//
// Aggregate boundary notes:
//   - BalanceRepo: the InventoryBalance aggregate root; every quantity
//     mutation goes through a balance loaded via the ForUpdate variant.
//   - ReservationRepo: reservation rows are claims against a balance's
//     reserved bucket with separate storage for reference queries.
//   - TransactionRepo: append-only audit log; a row is written in the same
//     transaction as the balance mutation it records.
type TransactionalRepositories interface {
	LotRepo() inventory.LotRepository
	BalanceRepo() inventory.InventoryBalanceRepository
	ReservationRepo() inventory.ReservationRepository
	TransactionRepo() inventory.InventoryTransactionRepository
	MaterialBalanceRepo() inventory.MaterialBalanceRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually open
// transactions. Useful for tests with in-memory repositories.
type NoOpTransactionScope struct {
	lotRepo             inventory.LotRepository
	balanceRepo         inventory.InventoryBalanceRepository
	reservationRepo     inventory.ReservationRepository
	transactionRepo     inventory.InventoryTransactionRepository
	materialBalanceRepo inventory.MaterialBalanceRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given repositories.
func NewNoOpTransactionScope(
	lotRepo inventory.LotRepository,
	balanceRepo inventory.InventoryBalanceRepository,
	reservationRepo inventory.ReservationRepository,
	transactionRepo inventory.InventoryTransactionRepository,
	materialBalanceRepo inventory.MaterialBalanceRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		lotRepo:             lotRepo,
		balanceRepo:         balanceRepo,
		reservationRepo:     reservationRepo,
		transactionRepo:     transactionRepo,
		materialBalanceRepo: materialBalanceRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *NoOpTransactionScope) LotRepo() inventory.LotRepository { return s.lotRepo }

func (s *NoOpTransactionScope) BalanceRepo() inventory.InventoryBalanceRepository {
	return s.balanceRepo
}

func (s *NoOpTransactionScope) ReservationRepo() inventory.ReservationRepository {
	return s.reservationRepo
}

func (s *NoOpTransactionScope) TransactionRepo() inventory.InventoryTransactionRepository {
	return s.transactionRepo
}

func (s *NoOpTransactionScope) MaterialBalanceRepo() inventory.MaterialBalanceRepository {
	return s.materialBalanceRepo
}
