package planning

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoricalAverageForecast(t *testing.T) {
	t.Run("mean of series times forecast months, rounded", func(t *testing.T) {
		series := []MonthlySales{
			{Month: "2026-01", Quantity: decimal.NewFromInt(90)},
			{Month: "2026-02", Quantity: decimal.NewFromInt(110)},
			{Month: "2026-03", Quantity: decimal.NewFromInt(100)},
		}

		qty := HistoricalAverageForecast(series, 3)

		assert.Equal(t, "300", qty.String())
	})

	t.Run("rounds fractional means", func(t *testing.T) {
		series := []MonthlySales{
			{Month: "2026-01", Quantity: decimal.NewFromInt(10)},
			{Month: "2026-02", Quantity: decimal.NewFromInt(11)},
		}

		qty := HistoricalAverageForecast(series, 1)

		// mean 10.5, rounded to 11
		assert.Equal(t, "11", qty.String())
	})

	t.Run("empty series yields zero", func(t *testing.T) {
		assert.True(t, HistoricalAverageForecast(nil, 3).IsZero())
	})

	t.Run("non-positive horizon yields zero", func(t *testing.T) {
		series := []MonthlySales{{Month: "2026-01", Quantity: decimal.NewFromInt(5)}}
		assert.True(t, HistoricalAverageForecast(series, 0).IsZero())
	})
}

func TestNewDemandForecast(t *testing.T) {
	tenantID := uuid.New()
	productID := uuid.New()
	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 3, 0)

	t.Run("creates active forecast", func(t *testing.T) {
		f, err := NewDemandForecast(tenantID, productID, start, end,
			decimal.NewFromInt(300), 80, TrendUp, ForecastMethodAITrend, 6, "rising demand")

		require.NoError(t, err)
		assert.Equal(t, ForecastStatusActive, f.Status)
		assert.Equal(t, 6, f.DataPoints)
	})

	t.Run("rejects confidence out of range", func(t *testing.T) {
		_, err := NewDemandForecast(tenantID, productID, start, end,
			decimal.NewFromInt(10), 101, TrendStable, ForecastMethodHistoricalAvg, 1, "")
		require.Error(t, err)
	})

	t.Run("rejects inverted period", func(t *testing.T) {
		_, err := NewDemandForecast(tenantID, productID, end, start,
			decimal.NewFromInt(10), 50, TrendStable, ForecastMethodHistoricalAvg, 1, "")
		require.Error(t, err)
	})

	t.Run("supersede and consume transitions", func(t *testing.T) {
		f, err := NewDemandForecast(tenantID, productID, start, end,
			decimal.NewFromInt(10), 50, TrendStable, ForecastMethodHistoricalAvg, 1, "")
		require.NoError(t, err)

		f.Supersede()
		assert.Equal(t, ForecastStatusSuperseded, f.Status)

		// superseding again is a no-op
		f.Supersede()
		assert.Equal(t, ForecastStatusSuperseded, f.Status)

		f.MarkConsumed()
		assert.Equal(t, ForecastStatusConsumed, f.Status)
	})
}
