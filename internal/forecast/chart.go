package forecast

import (
	"math"
	"time"

	"github.com/stockpilot/backend-go/internal/domain"
)

// DateKey formats a day-granular timestamp the way daily sales maps are
// keyed.
const DateKey = "2006-01-02"

// Project builds the chart series for one item over [-windowDays,
// +windowDays] around asOf, one point per calendar day.
//
// Past points carry a reconstructed stock level: starting from today's
// currentStock, each known day of sales is added back one day at a time, so
// the historical curve reflects the actual sales record. Future points carry
// the forecast line currentStock - velocity*offset, floored at zero. Today
// carries both, anchoring the forecast to the reconstruction. Every point
// carries the reorder point as a flat threshold line.
func Project(currentStock, reorderPoint int, velocity float64, dailySales map[string]float64, windowDays int, asOf time.Time) []domain.ChartPoint {
	if windowDays < 0 {
		windowDays = 0
	}
	asOf = Day(asOf)

	points := make([]domain.ChartPoint, 0, 2*windowDays+1)

	// Walk backward from today accumulating each day's sales, so
	// actuals[offset] holds the end-of-day stock level for that day.
	actuals := make(map[int]float64, windowDays+1)
	level := float64(currentStock)
	actuals[0] = level
	for offset := 0; offset > -windowDays; offset-- {
		day := asOf.AddDate(0, 0, offset)
		level += dailySales[day.Format(DateKey)]
		actuals[offset-1] = level
	}

	for offset := -windowDays; offset <= windowDays; offset++ {
		point := domain.ChartPoint{
			Date:      asOf.AddDate(0, 0, offset),
			Threshold: reorderPoint,
		}

		if offset <= 0 {
			actual := actuals[offset]
			point.Actual = &actual
		}
		if offset == 0 {
			predicted := float64(currentStock)
			point.Predicted = &predicted
		}
		if offset > 0 {
			predicted := math.Max(0, float64(currentStock)-velocity*float64(offset))
			point.Predicted = &predicted
		}

		points = append(points, point)
	}

	return points
}
