package planning

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/stockpilot/backend/internal/domain/catalog"
	"github.com/stockpilot/backend/internal/domain/inventory"
	"github.com/stockpilot/backend/internal/domain/planning"
	"github.com/stockpilot/backend/internal/domain/shared"
)

const (
	// DefaultForecastMonths is the horizon used when a request leaves it unset.
	DefaultForecastMonths = 3
	// DefaultHistoryMonths is how far back order history is aggregated.
	DefaultHistoryMonths = 12
)

// ForecastService produces demand forecasts. For each product it first asks
// the reasoning service for a trend-aware estimate; if the call fails, times
// out or returns an unusable payload, it falls back to the deterministic
// historical average. The fallback path cannot fail, so a forecast is always
// produced for every requested product.
type ForecastService struct {
	forecastRepo planning.ForecastRepository
	productRepo  catalog.ProductRepository
	balanceRepo  inventory.InventoryBalanceRepository
	history      planning.OrderHistorySource
	reasoner     planning.ReasoningService
	logger       *zap.Logger
}

// NewForecastService creates a ForecastService. reasoner may be nil, in which
// case every forecast uses the historical-average method.
func NewForecastService(
	forecastRepo planning.ForecastRepository,
	productRepo catalog.ProductRepository,
	balanceRepo inventory.InventoryBalanceRepository,
	history planning.OrderHistorySource,
	reasoner planning.ReasoningService,
	logger *zap.Logger,
) *ForecastService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ForecastService{
		forecastRepo: forecastRepo,
		productRepo:  productRepo,
		balanceRepo:  balanceRepo,
		history:      history,
		reasoner:     reasoner,
		logger:       logger,
	}
}

// GenerateForecasts produces one new active forecast per requested product,
// superseding any prior active forecasts for that product.
func (s *ForecastService) GenerateForecasts(ctx context.Context, tenantID uuid.UUID, req GenerateForecastsRequest) ([]ForecastResponse, error) {
	forecastMonths := req.ForecastMonths
	if forecastMonths <= 0 {
		forecastMonths = DefaultForecastMonths
	}
	historyMonths := req.HistoryMonths
	if historyMonths <= 0 {
		historyMonths = DefaultHistoryMonths
	}

	now := time.Now()
	since := now.AddDate(0, -historyMonths, 0)

	lines, err := s.history.OrderLines(ctx, tenantID, req.ProductIDs, since)
	if err != nil {
		return nil, err
	}
	seriesByProduct := bucketByMonth(lines)

	result := make([]ForecastResponse, 0, len(req.ProductIDs))
	for _, productID := range req.ProductIDs {
		product, err := s.productRepo.FindByID(ctx, tenantID, productID)
		if err != nil {
			return nil, err
		}

		currentInventory, err := s.balanceRepo.SumAvailableByProduct(ctx, tenantID, productID)
		if err != nil {
			return nil, err
		}

		series := seriesByProduct[productID]
		snapshot := planning.BusinessSnapshot{
			ProductName:      product.Name,
			ProductCode:      product.Code,
			Unit:             product.Unit,
			CurrentInventory: currentInventory,
			MonthlySales:     series,
		}

		forecast, err := s.buildForecast(ctx, tenantID, productID, snapshot, forecastMonths, now)
		if err != nil {
			return nil, err
		}

		if err := s.supersedePrior(ctx, tenantID, productID); err != nil {
			return nil, err
		}
		if err := s.forecastRepo.Save(ctx, forecast); err != nil {
			return nil, err
		}
		result = append(result, ToForecastResponse(forecast))
	}
	return result, nil
}

// forecastPeriod returns the forecast horizon: the first day of the calendar
// month after now through forecastMonths months later.
func forecastPeriod(now time.Time, forecastMonths int) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, 1, 0)
	return start, start.AddDate(0, forecastMonths, 0)
}

// aiEstimate is the structured payload expected back from the reasoning
// service.
type aiEstimate struct {
	ForecastedQuantity string `json:"forecasted_quantity"`
	ConfidenceLevel    int    `json:"confidence_level"`
	Trend              string `json:"trend"`
	Analysis           string `json:"analysis"`
}

func (s *ForecastService) buildForecast(
	ctx context.Context,
	tenantID, productID uuid.UUID,
	snapshot planning.BusinessSnapshot,
	forecastMonths int,
	now time.Time,
) (*planning.DemandForecast, error) {
	periodStart, periodEnd := forecastPeriod(now, forecastMonths)
	dataPoints := len(snapshot.MonthlySales)

	if s.reasoner != nil {
		forecast, err := s.aiForecast(ctx, tenantID, productID, snapshot, forecastMonths, periodStart, periodEnd)
		if err == nil {
			return forecast, nil
		}
		s.logger.Warn("ai forecast unavailable, using historical average",
			zap.String("product_id", productID.String()),
			zap.Error(err))
	}

	quantity := planning.HistoricalAverageForecast(snapshot.MonthlySales, forecastMonths)
	analysis := fmt.Sprintf("Historical average of %d month(s), projected over %d month(s).",
		dataPoints, forecastMonths)
	return planning.NewDemandForecast(
		tenantID, productID, periodStart, periodEnd,
		quantity, planning.FallbackConfidence, planning.TrendStable,
		planning.ForecastMethodHistoricalAvg, dataPoints, analysis,
	)
}

func (s *ForecastService) aiForecast(
	ctx context.Context,
	tenantID, productID uuid.UUID,
	snapshot planning.BusinessSnapshot,
	forecastMonths int,
	periodStart, periodEnd time.Time,
) (*planning.DemandForecast, error) {
	raw, err := s.reasoner.Generate(ctx, forecastPrompt(snapshot, forecastMonths))
	if err != nil {
		return nil, err
	}

	estimate, err := parseEstimate(raw)
	if err != nil {
		return nil, err
	}

	quantity, err := decimal.NewFromString(estimate.ForecastedQuantity)
	if err != nil || quantity.IsNegative() {
		return nil, shared.NewDomainError("INVALID_ESTIMATE", "Estimate quantity is not a non-negative number")
	}
	trend := planning.TrendDirection(strings.ToUpper(estimate.Trend))
	if !trend.IsValid() {
		return nil, shared.NewDomainError("INVALID_ESTIMATE", "Estimate trend label is unknown")
	}
	if estimate.ConfidenceLevel < 0 || estimate.ConfidenceLevel > 100 {
		return nil, shared.NewDomainError("INVALID_ESTIMATE", "Estimate confidence is out of range")
	}

	return planning.NewDemandForecast(
		tenantID, productID, periodStart, periodEnd,
		quantity, estimate.ConfidenceLevel, trend,
		planning.ForecastMethodAITrend, len(snapshot.MonthlySales), estimate.Analysis,
	)
}

// parseEstimate extracts the JSON object from the model reply, tolerating
// surrounding prose or code fences.
func parseEstimate(raw string) (*aiEstimate, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil, shared.NewDomainError("INVALID_ESTIMATE", "Reply contains no JSON object")
	}
	var estimate aiEstimate
	if err := json.Unmarshal([]byte(raw[start:end+1]), &estimate); err != nil {
		return nil, shared.NewDomainError("INVALID_ESTIMATE", "Reply is not valid JSON")
	}
	return &estimate, nil
}

func forecastPrompt(snapshot planning.BusinessSnapshot, forecastMonths int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a demand planner. Forecast total sales of product %q (code %s, unit %s) for the next %d month(s).\n",
		snapshot.ProductName, snapshot.ProductCode, snapshot.Unit, forecastMonths)
	fmt.Fprintf(&b, "Current inventory: %s %s.\n", snapshot.CurrentInventory, snapshot.Unit)
	if len(snapshot.MonthlySales) == 0 {
		b.WriteString("No historical sales are available.\n")
	} else {
		b.WriteString("Monthly sales history:\n")
		for _, m := range snapshot.MonthlySales {
			fmt.Fprintf(&b, "  %s: %s\n", m.Month, m.Quantity)
		}
	}
	b.WriteString(`Reply with a single JSON object, no other text: {"forecasted_quantity": "<number as string>", "confidence_level": <0-100>, "trend": "UP|DOWN|STABLE", "analysis": "<one or two sentences>"}`)
	return b.String()
}

func (s *ForecastService) supersedePrior(ctx context.Context, tenantID, productID uuid.UUID) error {
	active, err := s.forecastRepo.FindActiveByProduct(ctx, tenantID, productID)
	if err != nil {
		return err
	}
	for i := range active {
		active[i].Supersede()
		if err := s.forecastRepo.Save(ctx, &active[i]); err != nil {
			return err
		}
	}
	return nil
}

// bucketByMonth aggregates order lines into per-product monthly series,
// sorted by month ascending.
func bucketByMonth(lines []planning.OrderLine) map[uuid.UUID][]planning.MonthlySales {
	totals := make(map[uuid.UUID]map[string]decimal.Decimal)
	for _, line := range lines {
		month := line.OrderDate.Format("2006-01")
		if totals[line.ProductID] == nil {
			totals[line.ProductID] = make(map[string]decimal.Decimal)
		}
		totals[line.ProductID][month] = totals[line.ProductID][month].Add(line.Quantity)
	}

	result := make(map[uuid.UUID][]planning.MonthlySales, len(totals))
	for productID, byMonth := range totals {
		series := make([]planning.MonthlySales, 0, len(byMonth))
		for month, quantity := range byMonth {
			series = append(series, planning.MonthlySales{Month: month, Quantity: quantity})
		}
		sort.Slice(series, func(i, j int) bool { return series[i].Month < series[j].Month })
		result[productID] = series
	}
	return result
}

// GetForecast returns one forecast.
func (s *ForecastService) GetForecast(ctx context.Context, tenantID, forecastID uuid.UUID) (*ForecastResponse, error) {
	forecast, err := s.forecastRepo.FindByID(ctx, tenantID, forecastID)
	if err != nil {
		return nil, err
	}
	resp := ToForecastResponse(forecast)
	return &resp, nil
}

// ListRecent returns recent forecasts, newest first.
func (s *ForecastService) ListRecent(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]ForecastResponse, error) {
	forecasts, err := s.forecastRepo.FindRecent(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	result := make([]ForecastResponse, 0, len(forecasts))
	for i := range forecasts {
		result = append(result, ToForecastResponse(&forecasts[i]))
	}
	return result, nil
}
