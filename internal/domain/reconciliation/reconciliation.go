package reconciliation

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockpilot/backend/internal/domain/shared"
)

// RunStatus represents the status of a reconciliation run
type RunStatus string

const (
	RunStatusRunning   RunStatus = "RUNNING"
	RunStatusCompleted RunStatus = "COMPLETED"
	RunStatusFailed    RunStatus = "FAILED"
)

// SuggestedAction indicates how an operator might resolve a discrepancy line.
// Reconciliation never applies corrections automatically; masking a real
// discrepancy (theft, sync lag, order races) would be worse than surfacing it.
type SuggestedAction string

const (
	ActionNone                SuggestedAction = "NONE"
	ActionInvestigateShortage SuggestedAction = "INVESTIGATE_SHORTAGE"
	ActionSyncChannel         SuggestedAction = "SYNC_CHANNEL"
)

// ReconciliationRun is a point-in-time comparison between internally tracked
// quantities and a sales channel's reported quantities. Immutable once
// completed except for per-line resolution notes.
type ReconciliationRun struct {
	shared.TenantAggregateRoot
	Channel     string     `gorm:"type:varchar(50);not null;index"`
	StoreID     string     `gorm:"type:varchar(100)"`
	Status      RunStatus  `gorm:"type:varchar(20);not null;default:'RUNNING'"`
	StartedAt   time.Time  `gorm:"type:timestamptz;not null"`
	CompletedAt *time.Time `gorm:"type:timestamptz"`
	FailureNote string     `gorm:"type:varchar(255)"`

	Lines []ReconciliationLine `gorm:"foreignKey:RunID;references:ID"`
}

// TableName returns the table name for GORM
func (ReconciliationRun) TableName() string {
	return "reconciliation_runs"
}

// ReconciliationLine is one product/warehouse discrepancy row of a run
type ReconciliationLine struct {
	shared.BaseEntity
	RunID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	WarehouseID     uuid.UUID       `gorm:"type:uuid;not null"`
	InternalQty     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ChannelQty      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Delta           decimal.Decimal `gorm:"type:decimal(18,4);not null"` // ChannelQty - InternalQty
	SuggestedAction SuggestedAction `gorm:"type:varchar(30);not null"`
	Resolved        bool            `gorm:"not null;default:false"`
	ResolutionNote  string          `gorm:"type:varchar(255)"`
	ResolvedAt      *time.Time      `gorm:"type:timestamptz"`
}

// TableName returns the table name for GORM
func (ReconciliationLine) TableName() string {
	return "reconciliation_lines"
}

// NewReconciliationRun starts a run for a channel
func NewReconciliationRun(tenantID uuid.UUID, channel, storeID string) (*ReconciliationRun, error) {
	if channel == "" {
		return nil, shared.NewDomainError("INVALID_CHANNEL", "Channel cannot be empty")
	}
	return &ReconciliationRun{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Channel:             channel,
		StoreID:             storeID,
		Status:              RunStatusRunning,
		StartedAt:           time.Now(),
		Lines:               make([]ReconciliationLine, 0),
	}, nil
}

// AddLine records the comparison for one product/warehouse pair
func (r *ReconciliationRun) AddLine(productID, warehouseID uuid.UUID, internalQty, channelQty decimal.Decimal) error {
	if r.Status != RunStatusRunning {
		return shared.NewDomainError("INVALID_STATE", "Cannot add lines to a finished run")
	}
	delta := channelQty.Sub(internalQty)
	r.Lines = append(r.Lines, ReconciliationLine{
		BaseEntity:      shared.NewBaseEntity(),
		RunID:           r.ID,
		ProductID:       productID,
		WarehouseID:     warehouseID,
		InternalQty:     internalQty,
		ChannelQty:      channelQty,
		Delta:           delta,
		SuggestedAction: suggestAction(delta),
	})
	return nil
}

func suggestAction(delta decimal.Decimal) SuggestedAction {
	switch {
	case delta.IsZero():
		return ActionNone
	case delta.IsNegative():
		// The channel reports less than we track: likely shrinkage or an
		// unrecorded outbound movement.
		return ActionInvestigateShortage
	default:
		return ActionSyncChannel
	}
}

// Complete marks the run as finished with all lines computed
func (r *ReconciliationRun) Complete() error {
	if r.Status != RunStatusRunning {
		return shared.NewDomainError("INVALID_STATE", "Run is already finished")
	}
	now := time.Now()
	r.Status = RunStatusCompleted
	r.CompletedAt = &now
	r.UpdatedAt = now
	r.IncrementVersion()
	return nil
}

// Fail marks the run as failed, keeping the lines computed so far
func (r *ReconciliationRun) Fail(note string) error {
	if r.Status != RunStatusRunning {
		return shared.NewDomainError("INVALID_STATE", "Run is already finished")
	}
	now := time.Now()
	r.Status = RunStatusFailed
	r.CompletedAt = &now
	r.FailureNote = note
	r.UpdatedAt = now
	r.IncrementVersion()
	return nil
}

// DiscrepancyCount returns the number of lines with a non-zero delta
func (r *ReconciliationRun) DiscrepancyCount() int {
	count := 0
	for _, line := range r.Lines {
		if !line.Delta.IsZero() {
			count++
		}
	}
	return count
}

// Resolve marks the line resolved with an operator note
func (l *ReconciliationLine) Resolve(note string) error {
	if l.Resolved {
		return shared.NewDomainError("INVALID_STATE", "Line is already resolved")
	}
	if note == "" {
		return shared.NewDomainError("INVALID_NOTE", "Resolution note is required")
	}
	now := time.Now()
	l.Resolved = true
	l.ResolutionNote = note
	l.ResolvedAt = &now
	l.UpdatedAt = now
	return nil
}
