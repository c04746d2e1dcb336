package planning

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderLine is one historical sale of a product
type OrderLine struct {
	ProductID uuid.UUID
	Quantity  decimal.Decimal
	OrderDate time.Time
}

// OrderHistorySource supplies historical order lines for forecasting
type OrderHistorySource interface {
	// OrderLines returns order lines for the given products since the cutoff
	OrderLines(ctx context.Context, tenantID uuid.UUID, productIDs []uuid.UUID, since time.Time) ([]OrderLine, error)
}

// ReasoningService is the external estimation/text-generation capability.
// Calls carry a hard timeout and failure is a normal, handled code path:
// the caller composes "try service, else deterministic fallback" explicitly.
type ReasoningService interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// BusinessSnapshot is the read-only context passed into reasoning calls.
// It is constructed fresh per invocation; nothing in the planning core reads
// shared mutable state for prompt building.
type BusinessSnapshot struct {
	ProductName      string
	ProductCode      string
	Unit             string
	CurrentInventory decimal.Decimal
	MonthlySales     []MonthlySales
}
