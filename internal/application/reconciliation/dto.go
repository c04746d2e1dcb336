package reconciliation

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockpilot/backend/internal/domain/reconciliation"
)

// RunRequest starts a reconciliation run against one sales channel.
type RunRequest struct {
	Channel string `json:"channel" binding:"required"`
	StoreID string `json:"store_id"`
}

// ResolveLineRequest marks a discrepancy line as handled by an operator.
type ResolveLineRequest struct {
	Note string `json:"note" binding:"required"`
}

// LineResponse is one discrepancy row of a run.
type LineResponse struct {
	ID              uuid.UUID       `json:"id"`
	ProductID       uuid.UUID       `json:"product_id"`
	WarehouseID     uuid.UUID       `json:"warehouse_id"`
	InternalQty     decimal.Decimal `json:"internal_qty"`
	ChannelQty      decimal.Decimal `json:"channel_qty"`
	Delta           decimal.Decimal `json:"delta"`
	SuggestedAction string          `json:"suggested_action"`
	Resolved        bool            `json:"resolved"`
	ResolutionNote  string          `json:"resolution_note,omitempty"`
	ResolvedAt      *time.Time      `json:"resolved_at,omitempty"`
}

// RunResponse represents a reconciliation run in API responses.
type RunResponse struct {
	ID               uuid.UUID      `json:"id"`
	Channel          string         `json:"channel"`
	StoreID          string         `json:"store_id,omitempty"`
	Status           string         `json:"status"`
	StartedAt        time.Time      `json:"started_at"`
	CompletedAt      *time.Time     `json:"completed_at,omitempty"`
	FailureNote      string         `json:"failure_note,omitempty"`
	DiscrepancyCount int            `json:"discrepancy_count"`
	Lines            []LineResponse `json:"lines"`
}

// ToLineResponse converts a domain line to a response DTO.
func ToLineResponse(l *reconciliation.ReconciliationLine) LineResponse {
	return LineResponse{
		ID:              l.ID,
		ProductID:       l.ProductID,
		WarehouseID:     l.WarehouseID,
		InternalQty:     l.InternalQty,
		ChannelQty:      l.ChannelQty,
		Delta:           l.Delta,
		SuggestedAction: string(l.SuggestedAction),
		Resolved:        l.Resolved,
		ResolutionNote:  l.ResolutionNote,
		ResolvedAt:      l.ResolvedAt,
	}
}

// ToRunResponse converts a domain run to a response DTO.
func ToRunResponse(r *reconciliation.ReconciliationRun) RunResponse {
	lines := make([]LineResponse, 0, len(r.Lines))
	for i := range r.Lines {
		lines = append(lines, ToLineResponse(&r.Lines[i]))
	}
	return RunResponse{
		ID:               r.ID,
		Channel:          r.Channel,
		StoreID:          r.StoreID,
		Status:           string(r.Status),
		StartedAt:        r.StartedAt,
		CompletedAt:      r.CompletedAt,
		FailureNote:      r.FailureNote,
		DiscrepancyCount: r.DiscrepancyCount(),
		Lines:            lines,
	}
}
