// Package forecast implements the stock-depletion forecasting engine: a
// composite sales velocity (moving average, trend, seasonal correction), a
// projected run-out date, a confidence score, and the alert classification
// built on top of them. Every function is pure; "today" is always an
// explicit asOf argument so identical inputs produce identical results.
package forecast

import (
	"math"
	"time"

	"github.com/stockpilot/backend-go/internal/domain"
)

// Predict forecasts when currentStock depletes given the item's
// daily-aggregated sales history, ordered by date ascending.
//
// Degenerate input never fails: an empty history yields a zero-confidence
// result, and a non-positive or beyond-horizon projection yields a result
// without a run-out date.
func Predict(currentStock int, history []domain.SaleEvent, asOf time.Time) domain.Prediction {
	asOf = Day(asOf)

	if len(history) == 0 {
		return domain.Prediction{
			SalesVelocity:   0,
			ConfidenceScore: 0,
			SeasonalFactor:  1.0,
			GeneratedAt:     asOf,
		}
	}

	quantities := make([]float64, len(history))
	for i, ev := range history {
		quantities[i] = ev.QuantitySold
	}

	movingAvg := MovingAverage(quantities, VelocityPeriods)
	trend := TrendSlope(quantities)
	seasonal := SeasonalFactor(quantities)

	adjusted := (movingAvg + trend*TrendWeight) * seasonal
	velocity := math.Max(VelocityFloor, adjusted)

	var runOut *time.Time
	daysUntilRunOut := float64(currentStock) / velocity
	if daysUntilRunOut > 0 && daysUntilRunOut < RunOutHorizonDays {
		d := asOf.AddDate(0, 0, int(math.Ceil(daysUntilRunOut)))
		runOut = &d
	}

	baseConfidence := math.Min(float64(len(quantities))/ConfidenceDataTarget, 1.0)
	variabilityPenalty := math.Max(0, 1-StdDev(quantities)/VariabilityDivisor)

	return domain.Prediction{
		SalesVelocity:       roundFloat(velocity, 2),
		PredictedRunOutDate: runOut,
		ConfidenceScore:     roundFloat(baseConfidence*variabilityPenalty, 2),
		SeasonalFactor:      roundFloat(seasonal, 2),
		DataPoints:          len(quantities),
		GeneratedAt:         asOf,
	}
}

// Day truncates t to midnight UTC. All calendar arithmetic in this package
// operates on day-granular UTC timestamps.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
