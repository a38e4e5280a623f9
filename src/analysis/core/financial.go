package core

import "quote-board/src/models"

// -----------------------------------------------------------------------------
// Pure financial calculations over reconciled snapshots and bar series.
// -----------------------------------------------------------------------------

// VWAP is the volume-weighted average price over a bar series, using the
// typical price (high+low+close)/3 per bar. With zero total volume it falls
// back to the simple mean of closes; an empty series yields 0.
func VWAP(bars models.MBarSeries) float64 {
	if len(bars) == 0 {
		return 0
	}

	weighted := 0.0
	totalVol := 0.0
	sumClose := 0.0

	for _, b := range bars {
		typical := (b.High + b.Low + b.Close) / 3
		weighted += typical * b.Volume
		totalVol += b.Volume
		sumClose += b.Close
	}

	if totalVol == 0 {
		return sumClose / float64(len(bars))
	}
	return weighted / totalVol
}

// -----------------------------------------------------------------------------

// Turnover estimates traded value as VWAP times total volume, in raw currency
// units. No upstream reports exact turnover; scaling to human units is the
// presentation layer's job.
func Turnover(vwap, totalVolume float64) float64 {
	return vwap * totalVolume
}

// -----------------------------------------------------------------------------

// Amplitude is the intraday range as a percentage of the previous close.
// Returns 0 when the previous close is 0 (degenerate instruments).
func Amplitude(high, low, prevClose float64) float64 {
	if prevClose == 0 {
		return 0
	}
	return (high - low) / prevClose * 100
}

// -----------------------------------------------------------------------------

// ChangePercent is (current - previous) / previous * 100, 0 when previous is 0.
func ChangePercent(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return (current - previous) / previous * 100
}
