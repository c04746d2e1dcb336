package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockpilot/backend/internal/domain/inventory"
	"github.com/stockpilot/backend/internal/domain/shared"
)

// LedgerService handles all inventory quantity mutations. Every operation runs
// inside a transaction scope: the balance change, the reservation rows it
// touches and the audit-log entry commit or roll back together.
type LedgerService struct {
	scope          TransactionScope
	eventPublisher shared.EventPublisher
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(scope TransactionScope) *LedgerService {
	return &LedgerService{scope: scope}
}

// SetEventPublisher sets the publisher for domain events raised by balances.
func (s *LedgerService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// ReceiveGoods records a receipt of finished goods. When the lot code is new
// (or empty) a lot is created; receipts with a known code add to the existing
// lot's balance. The opening balance row and the RECEIPT audit entry are
// written in the same transaction.
func (s *LedgerService) ReceiveGoods(ctx context.Context, tenantID uuid.UUID, req ReceiveGoodsRequest) (*ReceiveGoodsResponse, error) {
	var resp *ReceiveGoodsResponse
	var mutated *inventory.InventoryBalance

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		lot, err := s.resolveLot(ctx, repos, tenantID, req)
		if err != nil {
			return err
		}

		balance, err := repos.BalanceRepo().FindByLotAndWarehouseForUpdate(ctx, tenantID, lot.ID, req.WarehouseID)
		if err != nil {
			if !errors.Is(err, shared.ErrNotFound) {
				return err
			}
			balance, err = inventory.NewInventoryBalance(tenantID, lot.ID, req.WarehouseID, req.ProductID)
			if err != nil {
				return err
			}
		}

		before := balance.Available
		if err := balance.Receive(req.Quantity); err != nil {
			return err
		}
		if err := repos.BalanceRepo().Save(ctx, balance); err != nil {
			return err
		}

		tx, err := inventory.NewInventoryTransaction(
			tenantID, req.WarehouseID, req.ProductID,
			inventory.TransactionTypeReceipt,
			req.Quantity, before, balance.Available,
			req.ReferenceType, req.ReferenceID,
		)
		if err != nil {
			return err
		}
		tx = tx.WithBalance(balance.ID, lot.ID)
		if req.OperatorID != nil {
			tx = tx.WithOperator(*req.OperatorID)
		}
		if err := repos.TransactionRepo().Append(ctx, tx); err != nil {
			return err
		}

		mutated = balance
		br := ToBalanceResponse(balance)
		resp = &ReceiveGoodsResponse{LotID: lot.ID, LotCode: lot.LotCode, Balance: br}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publishEvents(ctx, mutated)
	return resp, nil
}

func (s *LedgerService) resolveLot(ctx context.Context, repos TransactionalRepositories, tenantID uuid.UUID, req ReceiveGoodsRequest) (*inventory.Lot, error) {
	if req.LotCode != "" {
		lot, err := repos.LotRepo().FindByCode(ctx, tenantID, req.LotCode)
		if err == nil {
			if lot.ProductID != req.ProductID {
				return nil, shared.NewDomainError("LOT_PRODUCT_MISMATCH", "Lot belongs to a different product")
			}
			if !lot.IsUsable() {
				return nil, shared.NewDomainError("INVALID_STATE", "Cannot receive into an expired or depleted lot")
			}
			return lot, nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
	}

	receivedAt := time.Now()
	if req.ReceivedAt != nil {
		receivedAt = *req.ReceivedAt
	}
	lot, err := inventory.NewLot(tenantID, req.ProductID, req.LotCode, receivedAt, req.ExpiryDate)
	if err != nil {
		return nil, err
	}
	if err := repos.LotRepo().Save(ctx, lot); err != nil {
		return nil, err
	}
	return lot, nil
}

// Reserve claims stock from a lot for an external document. Fails with
// ErrInsufficientStock without touching the balance when available quantity
// cannot cover the request.
func (s *LedgerService) Reserve(ctx context.Context, tenantID uuid.UUID, req ReserveStockRequest) (*ReservationResponse, error) {
	var resp *ReservationResponse
	var mutated *inventory.InventoryBalance

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		lot, err := repos.LotRepo().FindByID(ctx, tenantID, req.LotID)
		if err != nil {
			return err
		}
		if !lot.IsUsable() {
			return shared.NewDomainError("INVALID_STATE", "Lot is not available for reservation")
		}

		balance, err := repos.BalanceRepo().FindByLotAndWarehouseForUpdate(ctx, tenantID, req.LotID, req.WarehouseID)
		if err != nil {
			return err
		}

		before := balance.Available
		reservation, err := balance.Reserve(req.Quantity, req.ReferenceType, req.ReferenceID)
		if err != nil {
			return err
		}

		if err := repos.BalanceRepo().Save(ctx, balance); err != nil {
			return err
		}
		if err := repos.ReservationRepo().Save(ctx, reservation); err != nil {
			return err
		}
		if err := s.appendTx(ctx, repos, balance, inventory.TransactionTypeReservation,
			req.Quantity, before, req.ReferenceType, req.ReferenceID, "", req.OperatorID); err != nil {
			return err
		}

		mutated = balance
		rr := ToReservationResponse(reservation)
		resp = &rr
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publishEvents(ctx, mutated)
	return resp, nil
}

// Release returns reserved stock to available. The quantity is drawn from the
// reference's active reservations oldest first; partial releases leave the
// remainder claimed. Releasing more than the reference currently holds fails
// with ErrNotFound: no matching reservation covers the quantity.
func (s *LedgerService) Release(ctx context.Context, tenantID uuid.UUID, req ReleaseStockRequest) (*BalanceResponse, error) {
	return s.drawDown(ctx, tenantID, drawDownRequest{
		LotID:         req.LotID,
		WarehouseID:   req.WarehouseID,
		Quantity:      req.Quantity,
		ReferenceType: req.ReferenceType,
		ReferenceID:   req.ReferenceID,
		OperatorID:    req.OperatorID,
		consume:       false,
	})
}

// Consume permanently removes reserved stock, drawing down the reference's
// reservations oldest first.
func (s *LedgerService) Consume(ctx context.Context, tenantID uuid.UUID, req ConsumeStockRequest) (*BalanceResponse, error) {
	return s.drawDown(ctx, tenantID, drawDownRequest{
		LotID:         req.LotID,
		WarehouseID:   req.WarehouseID,
		Quantity:      req.Quantity,
		ReferenceType: req.ReferenceType,
		ReferenceID:   req.ReferenceID,
		OperatorID:    req.OperatorID,
		consume:       true,
	})
}

type drawDownRequest struct {
	LotID         uuid.UUID
	WarehouseID   uuid.UUID
	Quantity      decimal.Decimal
	ReferenceType string
	ReferenceID   string
	OperatorID    *uuid.UUID
	consume       bool
}

func (s *LedgerService) drawDown(ctx context.Context, tenantID uuid.UUID, req drawDownRequest) (*BalanceResponse, error) {
	var resp *BalanceResponse
	var mutated *inventory.InventoryBalance

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		balance, err := repos.BalanceRepo().FindByLotAndWarehouseForUpdate(ctx, tenantID, req.LotID, req.WarehouseID)
		if err != nil {
			return err
		}

		reservations, err := repos.ReservationRepo().FindActiveByReference(
			ctx, tenantID, req.LotID, req.WarehouseID, req.ReferenceType, req.ReferenceID)
		if err != nil {
			return err
		}

		held := decimal.Zero
		for i := range reservations {
			held = held.Add(reservations[i].Quantity)
		}
		// No (or not enough) active reservations for the reference means
		// there is nothing matching to draw down.
		if held.LessThan(req.Quantity) {
			return shared.ErrNotFound
		}

		before := balance.Available
		if req.consume {
			err = balance.ConsumeReserved(req.Quantity, req.ReferenceType, req.ReferenceID)
		} else {
			err = balance.Release(req.Quantity, req.ReferenceType, req.ReferenceID)
		}
		if err != nil {
			return err
		}

		remaining := req.Quantity
		for i := range reservations {
			if remaining.IsZero() {
				break
			}
			taken := reservations[i].Reduce(remaining, req.consume)
			remaining = remaining.Sub(taken)
			if err := repos.ReservationRepo().Save(ctx, &reservations[i]); err != nil {
				return err
			}
		}

		if err := repos.BalanceRepo().Save(ctx, balance); err != nil {
			return err
		}

		txType := inventory.TransactionTypeRelease
		if req.consume {
			txType = inventory.TransactionTypeConsumption
		}
		if err := s.appendTx(ctx, repos, balance, txType,
			req.Quantity, before, req.ReferenceType, req.ReferenceID, "", req.OperatorID); err != nil {
			return err
		}

		mutated = balance
		br := ToBalanceResponse(balance)
		resp = &br
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publishEvents(ctx, mutated)
	return resp, nil
}

// Adjust applies a manual correction to a lot balance. A reason is mandatory
// and lands in the audit log.
func (s *LedgerService) Adjust(ctx context.Context, tenantID uuid.UUID, req AdjustStockRequest) (*BalanceResponse, error) {
	if req.Reason == "" {
		return nil, shared.NewDomainError("INVALID_REASON", "Adjustment reason is required")
	}

	var resp *BalanceResponse
	var mutated *inventory.InventoryBalance
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		balance, err := repos.BalanceRepo().FindByLotAndWarehouseForUpdate(ctx, tenantID, req.LotID, req.WarehouseID)
		if err != nil {
			return err
		}

		before := balance.Available
		if err := balance.Adjust(req.Delta); err != nil {
			return err
		}
		if err := repos.BalanceRepo().Save(ctx, balance); err != nil {
			return err
		}

		if err := s.appendTx(ctx, repos, balance, inventory.TransactionTypeAdjustment,
			req.Delta.Abs(), before, "", "", req.Reason, req.OperatorID); err != nil {
			return err
		}

		mutated = balance
		br := ToBalanceResponse(balance)
		resp = &br
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publishEvents(ctx, mutated)
	return resp, nil
}

// ReceiveMaterial records a raw-material receipt, creating the balance row on
// first receipt into a warehouse.
func (s *LedgerService) ReceiveMaterial(ctx context.Context, tenantID uuid.UUID, req ReceiveMaterialRequest) error {
	return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		balance, err := s.materialForUpdate(ctx, repos, tenantID, req.RawMaterialID, req.WarehouseID, true)
		if err != nil {
			return err
		}

		before := balance.Available
		if err := balance.Receive(req.Quantity); err != nil {
			return err
		}
		if err := repos.MaterialBalanceRepo().Save(ctx, balance); err != nil {
			return err
		}
		return s.appendMaterialTx(ctx, repos, tenantID, req.WarehouseID, req.RawMaterialID,
			inventory.TransactionTypeReceipt, req.Quantity, before, balance.Available,
			req.ReferenceType, req.ReferenceID, "", req.OperatorID)
	})
}

// ConsumeMaterial records raw material used by production. Material stock is
// consumed directly from available; materials carry no reservation step.
func (s *LedgerService) ConsumeMaterial(ctx context.Context, tenantID uuid.UUID, req ConsumeMaterialRequest) error {
	return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		balance, err := s.materialForUpdate(ctx, repos, tenantID, req.RawMaterialID, req.WarehouseID, false)
		if err != nil {
			return err
		}

		before := balance.Available
		if err := balance.Consume(req.Quantity); err != nil {
			return err
		}
		if err := repos.MaterialBalanceRepo().Save(ctx, balance); err != nil {
			return err
		}
		return s.appendMaterialTx(ctx, repos, tenantID, req.WarehouseID, req.RawMaterialID,
			inventory.TransactionTypeConsumption, req.Quantity, before, balance.Available,
			req.ReferenceType, req.ReferenceID, "", req.OperatorID)
	})
}

// AdjustMaterial applies a manual correction to a material balance.
func (s *LedgerService) AdjustMaterial(ctx context.Context, tenantID uuid.UUID, req AdjustMaterialRequest) error {
	if req.Reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Adjustment reason is required")
	}

	return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		balance, err := s.materialForUpdate(ctx, repos, tenantID, req.RawMaterialID, req.WarehouseID, req.Delta.IsPositive())
		if err != nil {
			return err
		}

		before := balance.Available
		if err := balance.Adjust(req.Delta); err != nil {
			return err
		}
		if err := repos.MaterialBalanceRepo().Save(ctx, balance); err != nil {
			return err
		}
		return s.appendMaterialTx(ctx, repos, tenantID, req.WarehouseID, req.RawMaterialID,
			inventory.TransactionTypeAdjustment, req.Delta.Abs(), before, balance.Available,
			"", "", req.Reason, req.OperatorID)
	})
}

func (s *LedgerService) materialForUpdate(ctx context.Context, repos TransactionalRepositories, tenantID, materialID, warehouseID uuid.UUID, createMissing bool) (*inventory.MaterialBalance, error) {
	balance, err := repos.MaterialBalanceRepo().FindByMaterialAndWarehouseForUpdate(ctx, tenantID, materialID, warehouseID)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, shared.ErrNotFound) || !createMissing {
		return nil, err
	}
	return inventory.NewMaterialBalance(tenantID, materialID, warehouseID)
}

func (s *LedgerService) appendTx(
	ctx context.Context, repos TransactionalRepositories,
	balance *inventory.InventoryBalance, txType inventory.TransactionType,
	quantity, before decimal.Decimal,
	referenceType, referenceID, reason string,
	operatorID *uuid.UUID,
) error {
	tx, err := inventory.NewInventoryTransaction(
		balance.TenantID, balance.WarehouseID, balance.ProductID,
		txType, quantity, before, balance.Available,
		referenceType, referenceID,
	)
	if err != nil {
		return err
	}
	tx = tx.WithBalance(balance.ID, balance.LotID)
	if reason != "" {
		tx = tx.WithReason(reason)
	}
	if operatorID != nil {
		tx = tx.WithOperator(*operatorID)
	}
	return repos.TransactionRepo().Append(ctx, tx)
}

func (s *LedgerService) appendMaterialTx(
	ctx context.Context, repos TransactionalRepositories,
	tenantID, warehouseID, materialID uuid.UUID,
	txType inventory.TransactionType,
	quantity, before, after decimal.Decimal,
	referenceType, referenceID, reason string,
	operatorID *uuid.UUID,
) error {
	tx, err := inventory.NewInventoryTransaction(
		tenantID, warehouseID, materialID,
		txType, quantity, before, after,
		referenceType, referenceID,
	)
	if err != nil {
		return err
	}
	if reason != "" {
		tx = tx.WithReason(reason)
	}
	if operatorID != nil {
		tx = tx.WithOperator(*operatorID)
	}
	return repos.TransactionRepo().Append(ctx, tx)
}

// publishEvents runs after the transaction scope committed, so audit events
// are never emitted for a mutation that rolled back.
func (s *LedgerService) publishEvents(ctx context.Context, balance *inventory.InventoryBalance) {
	if s.eventPublisher == nil {
		balance.ClearDomainEvents()
		return
	}
	// Publish failures must not roll back the committed mutation.
	_ = s.eventPublisher.Publish(ctx, balance.GetDomainEvents()...)
	balance.ClearDomainEvents()
}
