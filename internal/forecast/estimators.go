package forecast

import "math"

// Policy constants for the depletion forecast. Tests pin exact outputs
// against these values, so treat any change as breaking.
const (
	// VelocityPeriods is the moving-average window in days.
	VelocityPeriods = 7
	// TrendWindow caps how many recent daily totals feed the trend slope.
	TrendWindow = 14
	// SeasonalMinHistory is the minimum history before a seasonal
	// correction is applied; shorter histories stay neutral.
	SeasonalMinHistory = 14
	// SeasonalFactorMin and SeasonalFactorMax bound the multiplicative
	// seasonal correction.
	SeasonalFactorMin = 0.5
	SeasonalFactorMax = 2.0
	// TrendWeight dampens how much the trend slope contributes to the
	// composite velocity.
	TrendWeight = 0.5
	// VelocityFloor keeps the projected velocity strictly positive.
	VelocityFloor = 0.1
	// RunOutHorizonDays is the furthest out a run-out date is projected.
	RunOutHorizonDays = 365
	// ConfidenceDataTarget is the data-point count at which the volume
	// component of the confidence score saturates at 1.0.
	ConfidenceDataTarget = 30
	// VariabilityDivisor scales the std-dev penalty on confidence.
	VariabilityDivisor = 5.0
)

// MovingAverage returns the mean of the last periods values, or 0 when fewer
// than periods values are available. No partial-window average is computed.
func MovingAverage(quantities []float64, periods int) float64 {
	if periods <= 0 || len(quantities) < periods {
		return 0
	}

	var sum float64
	for _, q := range quantities[len(quantities)-periods:] {
		sum += q
	}

	return sum / float64(periods)
}

// TrendSlope fits an ordinary-least-squares line through the most recent
// TrendWindow daily totals, indexed 0..n-1, and returns its slope in
// units/day per day. Fewer than 2 points yields 0.
func TrendSlope(quantities []float64) float64 {
	if len(quantities) > TrendWindow {
		quantities = quantities[len(quantities)-TrendWindow:]
	}

	n := float64(len(quantities))
	if n < 2 {
		return 0
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, q := range quantities {
		x := float64(i)
		sumX += x
		sumY += q
		sumXY += x * q
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}

	return (n*sumXY - sumX*sumY) / denom
}

// SeasonalFactor compares the recent 7-day average against the mean of the
// full history and returns the ratio clamped to
// [SeasonalFactorMin, SeasonalFactorMax]. Histories shorter than
// SeasonalMinHistory, and histories with a zero overall mean, are neutral.
func SeasonalFactor(quantities []float64) float64 {
	if len(quantities) < SeasonalMinHistory {
		return 1.0
	}

	var total float64
	for _, q := range quantities {
		total += q
	}
	historicalAvg := total / float64(len(quantities))
	if historicalAvg == 0 {
		return 1.0
	}

	recentAvg := MovingAverage(quantities, VelocityPeriods)
	factor := recentAvg / historicalAvg

	return clamp(factor, SeasonalFactorMin, SeasonalFactorMax)
}

// StdDev returns the population standard deviation of the daily totals, or 0
// for fewer than 2 points.
func StdDev(quantities []float64) float64 {
	n := float64(len(quantities))
	if n < 2 {
		return 0
	}

	var sum float64
	for _, q := range quantities {
		sum += q
	}
	mean := sum / n

	var variance float64
	for _, q := range quantities {
		d := q - mean
		variance += d * d
	}

	return math.Sqrt(variance / n)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

// roundFloat rounds v to the given number of decimal places.
func roundFloat(v float64, decimals int) float64 {
	if decimals <= 0 {
		return math.Round(v)
	}

	factor := math.Pow(10, float64(decimals))
	return math.Round(v*factor) / factor
}
