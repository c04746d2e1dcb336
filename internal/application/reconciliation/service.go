package reconciliation

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stockpilot/backend/internal/domain/inventory"
	"github.com/stockpilot/backend/internal/domain/reconciliation"
	"github.com/stockpilot/backend/internal/domain/shared"
)

// Service compares internally tracked quantities against a sales channel's
// reported quantities and records the discrepancies. It never corrects stock
// automatically; lines carry a suggested action for an operator.
type Service struct {
	runRepo     reconciliation.RunRepository
	balanceRepo inventory.InventoryBalanceRepository
	source      reconciliation.ChannelQuantitySource
	logger      *zap.Logger
}

// NewService creates a reconciliation service.
func NewService(
	runRepo reconciliation.RunRepository,
	balanceRepo inventory.InventoryBalanceRepository,
	source reconciliation.ChannelQuantitySource,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		runRepo:     runRepo,
		balanceRepo: balanceRepo,
		source:      source,
		logger:      logger,
	}
}

// Run executes a reconciliation pass over every tracked product/warehouse
// pair. A channel lookup failure marks the run FAILED, keeping the lines
// computed so far, and returns the error.
func (s *Service) Run(ctx context.Context, tenantID uuid.UUID, req RunRequest) (*RunResponse, error) {
	run, err := reconciliation.NewReconciliationRun(tenantID, req.Channel, req.StoreID)
	if err != nil {
		return nil, err
	}
	if err := s.runRepo.Save(ctx, run); err != nil {
		return nil, err
	}

	pairs, err := s.balanceRepo.ListTrackedPairs(ctx, tenantID)
	if err != nil {
		return nil, s.failRun(ctx, run, fmt.Sprintf("listing tracked pairs: %v", err), err)
	}

	for _, pair := range pairs {
		internal, err := s.balanceRepo.SumAvailableByProductAndWarehouse(ctx, tenantID, pair.ProductID, pair.WarehouseID)
		if err != nil {
			return nil, s.failRun(ctx, run, fmt.Sprintf("summing internal quantity: %v", err), err)
		}

		channelQty, err := s.source.ReportedQuantity(ctx, tenantID, pair.ProductID, pair.WarehouseID, req.StoreID)
		if err != nil {
			s.logger.Warn("channel quantity lookup failed",
				zap.String("channel", req.Channel),
				zap.String("product_id", pair.ProductID.String()),
				zap.Error(err))
			return nil, s.failRun(ctx, run, fmt.Sprintf("channel lookup for product %s: %v", pair.ProductID, err), shared.ErrExternalService)
		}

		if err := run.AddLine(pair.ProductID, pair.WarehouseID, internal, channelQty); err != nil {
			return nil, err
		}
	}

	if err := run.Complete(); err != nil {
		return nil, err
	}
	if err := s.runRepo.Save(ctx, run); err != nil {
		return nil, err
	}

	s.logger.Info("reconciliation run completed",
		zap.String("channel", req.Channel),
		zap.Int("lines", len(run.Lines)),
		zap.Int("discrepancies", run.DiscrepancyCount()))

	resp := ToRunResponse(run)
	return &resp, nil
}

// failRun marks the run failed and persists it, then returns cause. The lines
// computed before the failure stay on the run for inspection.
func (s *Service) failRun(ctx context.Context, run *reconciliation.ReconciliationRun, note string, cause error) error {
	if err := run.Fail(note); err != nil {
		return err
	}
	if err := s.runRepo.Save(ctx, run); err != nil {
		s.logger.Error("saving failed reconciliation run", zap.Error(err))
	}
	return cause
}

// GetRun returns a run with its lines.
func (s *Service) GetRun(ctx context.Context, tenantID, runID uuid.UUID) (*RunResponse, error) {
	run, err := s.runRepo.FindByID(ctx, tenantID, runID)
	if err != nil {
		return nil, err
	}
	resp := ToRunResponse(run)
	return &resp, nil
}

// ListRecent returns recent runs, newest first.
func (s *Service) ListRecent(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]RunResponse, error) {
	runs, err := s.runRepo.FindRecent(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	result := make([]RunResponse, 0, len(runs))
	for i := range runs {
		result = append(result, ToRunResponse(&runs[i]))
	}
	return result, nil
}

// ResolveLine marks a discrepancy line as handled.
func (s *Service) ResolveLine(ctx context.Context, tenantID, lineID uuid.UUID, req ResolveLineRequest) (*LineResponse, error) {
	line, err := s.runRepo.FindLineByID(ctx, tenantID, lineID)
	if err != nil {
		return nil, err
	}
	if err := line.Resolve(req.Note); err != nil {
		return nil, err
	}
	if err := s.runRepo.SaveLine(ctx, line); err != nil {
		return nil, err
	}
	resp := ToLineResponse(line)
	return &resp, nil
}
