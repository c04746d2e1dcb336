package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed
// fields. Returns the defaultField if the input is empty or not whitelisted.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// LotSortFields contains allowed sort fields for inventory lots
var LotSortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"received_at": true,
	"lot_code":    true,
	"status":      true,
}

// TransactionSortFields contains allowed sort fields for inventory transactions
var TransactionSortFields = map[string]bool{
	"id":               true,
	"transaction_date": true,
	"created_at":       true,
	"transaction_type": true,
}

// RunSortFields contains allowed sort fields for reconciliation runs
var RunSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"started_at": true,
	"status":     true,
}

// ForecastSortFields contains allowed sort fields for demand forecasts
var ForecastSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"status":     true,
}

// PlanSortFields contains allowed sort fields for production plans
var PlanSortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"status":      true,
	"required_by": true,
}

// SuggestionSortFields contains allowed sort fields for suggested purchase orders
var SuggestionSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"status":         true,
	"priority_score": true,
}

// OrderSortFields contains allowed sort fields for purchase orders
var OrderSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"order_number": true,
	"status":       true,
	"total_amount": true,
}
