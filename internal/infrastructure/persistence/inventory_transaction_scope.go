package persistence

import (
	"context"

	"gorm.io/gorm"

	appinv "github.com/stockpilot/backend/internal/application/inventory"
	"github.com/stockpilot/backend/internal/domain/inventory"
)

// GormTransactionScope implements the ledger's TransactionScope using GORM
// transactions. All repository operations inside Execute share one
// database transaction; any error rolls the whole unit back.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appinv.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories provides repositories scoped to one transaction
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) LotRepo() inventory.LotRepository {
	return NewGormLotRepository(r.tx)
}

func (r *gormTransactionalRepositories) BalanceRepo() inventory.InventoryBalanceRepository {
	return NewGormInventoryBalanceRepository(r.tx)
}

func (r *gormTransactionalRepositories) ReservationRepo() inventory.ReservationRepository {
	return NewGormReservationRepository(r.tx)
}

func (r *gormTransactionalRepositories) TransactionRepo() inventory.InventoryTransactionRepository {
	return NewGormInventoryTransactionRepository(r.tx)
}

func (r *gormTransactionalRepositories) MaterialBalanceRepo() inventory.MaterialBalanceRepository {
	return NewGormMaterialBalanceRepository(r.tx)
}

var (
	_ appinv.TransactionScope          = (*GormTransactionScope)(nil)
	_ appinv.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
)
