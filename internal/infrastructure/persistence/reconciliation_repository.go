package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stockpilot/backend/internal/domain/reconciliation"
	"github.com/stockpilot/backend/internal/domain/shared"
)

// GormRunRepository implements RunRepository using GORM
type GormRunRepository struct {
	db *gorm.DB
}

// NewGormRunRepository creates a new GormRunRepository
func NewGormRunRepository(db *gorm.DB) *GormRunRepository {
	return &GormRunRepository{db: db}
}

// FindByID finds a reconciliation run with its lines by ID within a tenant
func (r *GormRunRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*reconciliation.ReconciliationRun, error) {
	var run reconciliation.ReconciliationRun
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&run).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &run, nil
}

// FindRecent lists runs for a tenant, newest first by default
func (r *GormRunRepository) FindRecent(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]reconciliation.ReconciliationRun, error) {
	var runs []reconciliation.ReconciliationRun
	query := r.db.WithContext(ctx).
		Preload("Lines").
		Where("tenant_id = ?", tenantID)

	sortField := ValidateSortField(filter.OrderBy, RunSortFields, "created_at")
	query = query.Order(fmt.Sprintf("%s %s", sortField, ValidateSortOrder(filter.OrderDir)))

	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.Limit())
	}

	if err := query.Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

// Save persists a run with its lines
func (r *GormRunRepository) Save(ctx context.Context, run *reconciliation.ReconciliationRun) error {
	return r.db.WithContext(ctx).Save(run).Error
}

// SaveLine persists a single reconciliation line
func (r *GormRunRepository) SaveLine(ctx context.Context, line *reconciliation.ReconciliationLine) error {
	return r.db.WithContext(ctx).Save(line).Error
}

// FindLineByID finds one line by ID within a tenant
func (r *GormRunRepository) FindLineByID(ctx context.Context, tenantID, lineID uuid.UUID) (*reconciliation.ReconciliationLine, error) {
	// Lines carry no tenant column of their own; tenancy comes from the run.
	var line reconciliation.ReconciliationLine
	if err := r.db.WithContext(ctx).
		Joins("JOIN reconciliation_runs ON reconciliation_runs.id = reconciliation_lines.run_id").
		Where("reconciliation_runs.tenant_id = ? AND reconciliation_lines.id = ?", tenantID, lineID).
		First(&line).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &line, nil
}

var _ reconciliation.RunRepository = (*GormRunRepository)(nil)
