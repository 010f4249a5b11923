package forecast

import (
	"sort"
	"time"

	"github.com/stockpilot/backend-go/internal/domain"
)

const (
	// WarningHorizonDays marks items whose projected run-out falls within
	// this many days as warning even while stock sits above the reorder
	// point.
	WarningHorizonDays = 7
	// AlertWindowDays bounds which items are included in the alerts view.
	AlertWindowDays = 14
)

// Classify maps an item's stock position and latest run-out projection into
// an alert tier. Classification is stateless; every call evaluates the
// inputs from scratch.
func Classify(currentStock, reorderPoint int, runOut *time.Time, asOf time.Time) domain.AlertTier {
	asOf = Day(asOf)

	switch {
	case currentStock <= 0:
		return domain.TierCritical
	case currentStock <= reorderPoint:
		return domain.TierLow
	case runOut != nil && !runOut.After(asOf.AddDate(0, 0, WarningHorizonDays)):
		return domain.TierWarning
	default:
		return domain.TierSafe
	}
}

// InAlertWindow reports whether an item belongs in the alerts view: stock at
// or below the reorder point, or a run-out projected within AlertWindowDays.
func InAlertWindow(currentStock, reorderPoint int, runOut *time.Time, asOf time.Time) bool {
	if currentStock <= reorderPoint {
		return true
	}

	return runOut != nil && !runOut.After(Day(asOf).AddDate(0, 0, AlertWindowDays))
}

// SortAlerts orders alerts most urgent first: tier urgency, then ascending
// run-out date with absent dates last, then SKU for a stable display order.
func SortAlerts(alerts []domain.AlertItem) {
	sort.Slice(alerts, func(i, j int) bool {
		a, b := alerts[i], alerts[j]
		if a.Tier.Urgency() != b.Tier.Urgency() {
			return a.Tier.Urgency() < b.Tier.Urgency()
		}

		switch {
		case a.PredictedRunOutDate == nil && b.PredictedRunOutDate == nil:
			return a.SKU < b.SKU
		case a.PredictedRunOutDate == nil:
			return false
		case b.PredictedRunOutDate == nil:
			return true
		}

		if !a.PredictedRunOutDate.Equal(*b.PredictedRunOutDate) {
			return a.PredictedRunOutDate.Before(*b.PredictedRunOutDate)
		}

		return a.SKU < b.SKU
	})
}
