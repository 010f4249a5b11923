package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stockpilot/backend-go/internal/domain"
)

func datePtr(t time.Time) *time.Time { return &t }

func TestClassify(t *testing.T) {
	soon := datePtr(Day(asOf).AddDate(0, 0, 5))
	later := datePtr(Day(asOf).AddDate(0, 0, 45))

	tests := []struct {
		name         string
		currentStock int
		reorderPoint int
		runOut       *time.Time
		expected     domain.AlertTier
	}{
		{"zero stock is critical", 0, 20, later, domain.TierCritical},
		{"negative stock is critical", -3, 0, nil, domain.TierCritical},
		{"zero stock outranks imminent run-out", 0, 0, soon, domain.TierCritical},
		{"below reorder point is low", 15, 20, later, domain.TierLow},
		{"at reorder point is low", 20, 20, nil, domain.TierLow},
		{"run-out inside a week is warning", 100, 20, soon, domain.TierWarning},
		{"run-out on day seven is warning", 100, 20, datePtr(Day(asOf).AddDate(0, 0, 7)), domain.TierWarning},
		{"run-out on day eight is safe", 100, 20, datePtr(Day(asOf).AddDate(0, 0, 8)), domain.TierSafe},
		{"healthy stock is safe", 100, 20, later, domain.TierSafe},
		{"no projection is safe", 100, 20, nil, domain.TierSafe},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, Classify(tt.currentStock, tt.reorderPoint, tt.runOut, asOf))
		})
	}
}

func TestInAlertWindow(t *testing.T) {
	tests := []struct {
		name         string
		currentStock int
		reorderPoint int
		runOut       *time.Time
		expected     bool
	}{
		{"stock at reorder point", 20, 20, nil, true},
		{"stock below reorder point", 5, 20, nil, true},
		{"run-out within two weeks", 100, 20, datePtr(Day(asOf).AddDate(0, 0, 14)), true},
		{"run-out beyond two weeks", 100, 20, datePtr(Day(asOf).AddDate(0, 0, 15)), false},
		{"healthy with no projection", 100, 20, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, InAlertWindow(tt.currentStock, tt.reorderPoint, tt.runOut, asOf))
		})
	}
}

func TestSortAlerts(t *testing.T) {
	day := func(offset int) *time.Time { return datePtr(Day(asOf).AddDate(0, 0, offset)) }

	alerts := []domain.AlertItem{
		{SKU: "SKU-D", Tier: domain.TierLow, PredictedRunOutDate: nil},
		{SKU: "SKU-A", Tier: domain.TierWarning, PredictedRunOutDate: day(6)},
		{SKU: "SKU-B", Tier: domain.TierCritical, PredictedRunOutDate: day(2)},
		{SKU: "SKU-C", Tier: domain.TierLow, PredictedRunOutDate: day(9)},
		{SKU: "SKU-E", Tier: domain.TierLow, PredictedRunOutDate: day(4)},
		{SKU: "SKU-F", Tier: domain.TierCritical, PredictedRunOutDate: nil},
	}

	SortAlerts(alerts)

	ordered := make([]string, len(alerts))
	for i, a := range alerts {
		ordered[i] = a.SKU
	}

	require.Equal(t, []string{"SKU-B", "SKU-F", "SKU-E", "SKU-C", "SKU-D", "SKU-A"}, ordered)
}
