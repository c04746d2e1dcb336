package planning

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockpilot/backend/internal/domain/shared"
)

// ForecastMethod identifies how a forecast quantity was produced
type ForecastMethod string

const (
	// ForecastMethodAITrend means the quantity came from the reasoning service
	ForecastMethodAITrend ForecastMethod = "AI_TREND"
	// ForecastMethodHistoricalAvg is the deterministic fallback
	ForecastMethodHistoricalAvg ForecastMethod = "HISTORICAL_AVG"
)

// TrendDirection labels the sales trend underlying a forecast
type TrendDirection string

const (
	TrendUp     TrendDirection = "UP"
	TrendDown   TrendDirection = "DOWN"
	TrendStable TrendDirection = "STABLE"
)

// IsValid returns true for a known trend label
func (d TrendDirection) IsValid() bool {
	switch d {
	case TrendUp, TrendDown, TrendStable:
		return true
	}
	return false
}

// ForecastStatus is the lifecycle status of a demand forecast
type ForecastStatus string

const (
	ForecastStatusActive     ForecastStatus = "ACTIVE"
	ForecastStatusSuperseded ForecastStatus = "SUPERSEDED"
	ForecastStatusConsumed   ForecastStatus = "CONSUMED"
)

// FallbackConfidence is the confidence assigned to historical-average forecasts
const FallbackConfidence = 50

// DemandForecast is a forward-looking quantity estimate for one product
type DemandForecast struct {
	shared.TenantAggregateRoot
	ProductID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	PeriodStart        time.Time       `gorm:"type:timestamptz;not null"`
	PeriodEnd          time.Time       `gorm:"type:timestamptz;not null"`
	ForecastedQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ConfidenceLevel    int             `gorm:"not null"` // 0-100
	Trend              TrendDirection  `gorm:"type:varchar(10);not null"`
	Method             ForecastMethod  `gorm:"type:varchar(20);not null"`
	DataPoints         int             `gorm:"not null"` // Historical months used
	Analysis           string          `gorm:"type:text"`
	Status             ForecastStatus  `gorm:"type:varchar(20);not null;default:'ACTIVE'"`
}

// TableName returns the table name for GORM
func (DemandForecast) TableName() string {
	return "demand_forecasts"
}

// NewDemandForecast creates an active forecast for a product and period
func NewDemandForecast(
	tenantID, productID uuid.UUID,
	periodStart, periodEnd time.Time,
	quantity decimal.Decimal,
	confidence int,
	trend TrendDirection,
	method ForecastMethod,
	dataPoints int,
	analysis string,
) (*DemandForecast, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if !periodEnd.After(periodStart) {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Forecast period end must be after start")
	}
	if quantity.IsNegative() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Forecast quantity cannot be negative")
	}
	if confidence < 0 || confidence > 100 {
		return nil, shared.NewDomainError("INVALID_CONFIDENCE", "Confidence must be between 0 and 100")
	}
	if !trend.IsValid() {
		return nil, shared.NewDomainError("INVALID_TREND", "Unknown trend direction")
	}
	return &DemandForecast{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ProductID:           productID,
		PeriodStart:         periodStart,
		PeriodEnd:           periodEnd,
		ForecastedQuantity:  quantity,
		ConfidenceLevel:     confidence,
		Trend:               trend,
		Method:              method,
		DataPoints:          dataPoints,
		Analysis:            analysis,
		Status:              ForecastStatusActive,
	}, nil
}

// Supersede marks the forecast as replaced by a newer one
func (f *DemandForecast) Supersede() {
	if f.Status == ForecastStatusActive {
		f.Status = ForecastStatusSuperseded
		f.UpdatedAt = time.Now()
		f.IncrementVersion()
	}
}

// MarkConsumed records that a production plan was derived from this forecast
func (f *DemandForecast) MarkConsumed() {
	f.Status = ForecastStatusConsumed
	f.UpdatedAt = time.Now()
	f.IncrementVersion()
}

// MonthlySales is one month of aggregated historical sales for a product
type MonthlySales struct {
	Month    string // YYYY-MM
	Quantity decimal.Decimal
}

// HistoricalAverageForecast is the deterministic fallback estimate: the mean
// of the monthly series multiplied by the number of forecast months, rounded
// to a whole quantity. It never fails; an empty series yields zero.
func HistoricalAverageForecast(series []MonthlySales, forecastMonths int) decimal.Decimal {
	if len(series) == 0 || forecastMonths <= 0 {
		return decimal.Zero
	}
	total := decimal.Zero
	for _, m := range series {
		total = total.Add(m.Quantity)
	}
	mean := total.Div(decimal.NewFromInt(int64(len(series))))
	return mean.Mul(decimal.NewFromInt(int64(forecastMonths))).Round(0)
}
