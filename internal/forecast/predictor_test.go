package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stockpilot/backend-go/internal/domain"
)

var asOf = time.Date(2026, 3, 10, 15, 4, 5, 0, time.UTC)

// genHistory builds n daily-aggregated sale events ending the day before
// asOf, with quantities produced by f.
func genHistory(n int, f func(i int) float64) []domain.SaleEvent {
	events := make([]domain.SaleEvent, n)
	start := Day(asOf).AddDate(0, 0, -n)
	for i := range events {
		events[i] = domain.SaleEvent{
			Date:         start.AddDate(0, 0, i),
			QuantitySold: f(i),
			UnitPrice:    4.99,
		}
	}
	return events
}

func TestPredictEmptyHistory(t *testing.T) {
	got := Predict(10, nil, asOf)

	require.Zero(t, got.SalesVelocity)
	require.Nil(t, got.PredictedRunOutDate)
	require.Zero(t, got.ConfidenceScore)
	require.Equal(t, 1.0, got.SeasonalFactor)
	require.Zero(t, got.DataPoints)
}

func TestPredictSteadyDemand(t *testing.T) {
	// 30 days of constant demand: all estimators collapse to the plain
	// moving average and confidence saturates.
	history := genHistory(30, func(int) float64 { return 2 })

	got := Predict(60, history, asOf)

	require.Equal(t, 2.0, got.SalesVelocity)
	require.Equal(t, 1.0, got.SeasonalFactor)
	require.Equal(t, 1.0, got.ConfidenceScore)
	require.Equal(t, 30, got.DataPoints)
	require.NotNil(t, got.PredictedRunOutDate)
	require.Equal(t, time.Date(2026, 4, 9, 0, 0, 0, 0, time.UTC), *got.PredictedRunOutDate)
}

func TestPredictIdempotent(t *testing.T) {
	history := genHistory(45, func(i int) float64 { return float64(i%5) + 1 })

	first := Predict(120, history, asOf)
	second := Predict(120, history, asOf)

	require.Equal(t, first, second)
}

func TestPredictVelocityFloor(t *testing.T) {
	// Demand dried up entirely over the last week; the composite velocity
	// would go non-positive without the floor.
	history := genHistory(14, func(i int) float64 {
		if i < 7 {
			return 10
		}
		return 0
	})

	got := Predict(10, history, asOf)

	require.Equal(t, VelocityFloor, got.SalesVelocity)
	require.NotNil(t, got.PredictedRunOutDate)
	// 10 / 0.1 = 100 days out.
	require.Equal(t, Day(asOf).AddDate(0, 0, 100), *got.PredictedRunOutDate)
}

func TestPredictRunOutDateAbsent(t *testing.T) {
	flatWeek := func(i int) float64 {
		if i < 7 {
			return 10
		}
		return 0
	}

	tests := []struct {
		name         string
		currentStock int
		gen          func(i int) float64
	}{
		{"zero stock", 0, func(int) float64 { return 2 }},
		{"negative stock", -5, func(int) float64 { return 2 }},
		{"beyond one-year horizon", 37, flatWeek}, // 37 / 0.1 = 370 days
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Predict(tt.currentStock, genHistory(20, tt.gen), asOf)
			require.Nil(t, got.PredictedRunOutDate)
		})
	}
}

func TestPredictBounds(t *testing.T) {
	histories := [][]domain.SaleEvent{
		genHistory(1, func(int) float64 { return 50 }),
		genHistory(5, func(i int) float64 { return float64(i * 20) }),
		genHistory(14, func(i int) float64 { return float64((i * 37) % 11) }),
		genHistory(90, func(i int) float64 { return float64(i%13) * 3 }),
		genHistory(365, func(i int) float64 { return 1 + float64(i%2)*40 }),
	}

	for _, history := range histories {
		for _, stock := range []int{-10, 0, 3, 250, 100000} {
			got := Predict(stock, history, asOf)

			require.GreaterOrEqual(t, got.SalesVelocity, VelocityFloor)
			require.GreaterOrEqual(t, got.ConfidenceScore, 0.0)
			require.LessOrEqual(t, got.ConfidenceScore, 1.0)
			require.GreaterOrEqual(t, got.SeasonalFactor, SeasonalFactorMin)
			require.LessOrEqual(t, got.SeasonalFactor, SeasonalFactorMax)

			if got.PredictedRunOutDate != nil {
				require.True(t, got.PredictedRunOutDate.After(Day(asOf)))
				require.False(t, got.PredictedRunOutDate.After(Day(asOf).AddDate(0, 0, RunOutHorizonDays)))
			}
		}
	}
}

func TestPredictConfidencePenalizesVolatility(t *testing.T) {
	steady := Predict(100, genHistory(30, func(int) float64 { return 5 }), asOf)
	volatile := Predict(100, genHistory(30, func(i int) float64 { return float64(i%2) * 10 }), asOf)

	require.Greater(t, steady.ConfidenceScore, volatile.ConfidenceScore)
}
