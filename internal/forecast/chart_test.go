package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestProjectWindowShape(t *testing.T) {
	points := Project(50, 20, 2.5, nil, 5, asOf)

	require.Len(t, points, 11)

	for i, p := range points {
		require.Equal(t, 20, p.Threshold)
		require.Equal(t, Day(asOf).AddDate(0, 0, i-5), p.Date)
		if i > 0 {
			require.True(t, points[i-1].Date.Before(p.Date))
		}
	}
}

func TestProjectFutureLine(t *testing.T) {
	points := Project(10, 3, 4, nil, 5, asOf)

	prev := float64(10)
	for _, p := range points[6:] {
		require.Nil(t, p.Actual)
		require.NotNil(t, p.Predicted)
		require.LessOrEqual(t, *p.Predicted, prev)
		require.GreaterOrEqual(t, *p.Predicted, 0.0)
		prev = *p.Predicted
	}

	// 10 - 4*3 < 0, so the line bottoms out at zero.
	require.Zero(t, *points[9].Predicted)
	require.Zero(t, *points[10].Predicted)
}

func TestProjectAnchorsTodayToCurrentStock(t *testing.T) {
	points := Project(42, 10, 1, nil, 3, asOf)

	today := points[3]
	require.Equal(t, Day(asOf), today.Date)
	require.NotNil(t, today.Actual)
	require.NotNil(t, today.Predicted)
	require.Equal(t, 42.0, *today.Actual)
	require.Equal(t, 42.0, *today.Predicted)
}

func TestProjectReconstructsHistoryFromDailySales(t *testing.T) {
	day := Day(asOf)
	sales := map[string]float64{
		day.Format(DateKey):                  2, // today
		day.AddDate(0, 0, -1).Format(DateKey): 3,
		day.AddDate(0, 0, -2).Format(DateKey): 5,
	}

	points := Project(50, 20, 2, sales, 3, asOf)

	// End-of-day stock walking backward: today 50, yesterday 52 (sold 2
	// today), then 55, then 60.
	expected := []float64{60, 55, 52, 50}
	for i, want := range expected {
		p := points[i]
		require.NotNil(t, p.Actual, "offset %d", i-3)
		require.Equal(t, want, *p.Actual, "offset %d", i-3)
		if !p.Date.Equal(day) {
			require.Nil(t, p.Predicted)
		}
	}
}

func TestProjectZeroWindow(t *testing.T) {
	points := Project(7, 2, 1, nil, 0, time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))

	require.Len(t, points, 1)
	require.Equal(t, 7.0, *points[0].Actual)
	require.Equal(t, 7.0, *points[0].Predicted)
}
