package planning

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// Priority scoring weights. Shortage depth contributes up to 70 points,
// urgency adds a fixed boost, and the total is capped at 100 so operators
// can triage on a stable scale.
const (
	priorityShortageWeight = 70
	priorityUrgentBoost    = 30
	priorityNearBoost      = 15
	priorityMax            = 100

	// nearUrgentWindowDays is the slack below which a vendor group counts as
	// near-urgent: deliverable in time, but with less than a week to spare.
	nearUrgentWindowDays = 7
)

// DaysUntilRequired returns the whole days remaining before requiredBy,
// rounding partial days up. Past dates yield negative values.
func DaysUntilRequired(now, requiredBy time.Time) int {
	return int(math.Ceil(requiredBy.Sub(now).Hours() / 24))
}

// IsUrgent reports whether a vendor cannot deliver in time even if ordered
// today.
func IsUrgent(leadTimeDays, daysUntilRequired int) bool {
	return leadTimeDays > daysUntilRequired
}

// IsNearUrgent reports whether the order window is open but closing within
// the near-urgent slack.
func IsNearUrgent(leadTimeDays, daysUntilRequired int) bool {
	slack := daysUntilRequired - leadTimeDays
	return slack >= 0 && slack < nearUrgentWindowDays
}

// LatestOrderDate returns the last date an order can be placed and still
// arrive by requiredBy, clamped to not-before-now.
func LatestOrderDate(now, requiredBy time.Time, leadTimeDays int) time.Time {
	latest := requiredBy.AddDate(0, 0, -leadTimeDays)
	if latest.Before(now) {
		return now
	}
	return latest
}

// EstimatedDelivery returns the expected arrival date for an order placed now
func EstimatedDelivery(now time.Time, leadTimeDays int) time.Time {
	return now.AddDate(0, 0, leadTimeDays)
}

// PriorityScore computes the 0-100 triage score for a vendor group.
// avgShortageRatio is the mean of shortage/required across the group's items.
func PriorityScore(avgShortageRatio decimal.Decimal, urgent, nearUrgent bool) int {
	base := avgShortageRatio.Mul(decimal.NewFromInt(priorityShortageWeight)).Round(0).IntPart()
	score := int(base)
	if urgent {
		score += priorityUrgentBoost
	} else if nearUrgent {
		score += priorityNearBoost
	}
	if score > priorityMax {
		score = priorityMax
	}
	if score < 0 {
		score = 0
	}
	return score
}

// AverageShortageRatio computes the mean shortage/required ratio across
// requirements. Rows with zero required quantity contribute zero.
func AverageShortageRatio(requirements []MaterialRequirement) decimal.Decimal {
	if len(requirements) == 0 {
		return decimal.Zero
	}
	total := decimal.Zero
	for i := range requirements {
		total = total.Add(requirements[i].ShortageRatio())
	}
	return total.Div(decimal.NewFromInt(int64(len(requirements))))
}
