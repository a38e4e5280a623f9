package models

// -----------------------------------------------------------------------------
// Bar series
// -----------------------------------------------------------------------------

// MBar is a single OHLCV bar. Timestamp is unix seconds of the bar start.
type MBar struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

// MBarSeries is an ordered (timestamp ascending) sequence of bars for one
// instrument at one interval. It may be empty and is never mutated after fetch.
type MBarSeries []MBar

// -----------------------------------------------------------------------------

// Last returns the final bar of the series.
func (s MBarSeries) Last() (MBar, bool) {
	if len(s) == 0 {
		return MBar{}, false
	}
	return s[len(s)-1], true
}

// -----------------------------------------------------------------------------

// FilterBefore returns the bars strictly before cutoff (unix seconds).
// Bars at or after the cutoff are dropped. Used to exclude after-hours
// fixed-price auction trades from intraday aggregates.
func (s MBarSeries) FilterBefore(cutoff int64) MBarSeries {
	// Series is ascending, so find the first bar at/after the cutoff.
	for i, b := range s {
		if b.Timestamp >= cutoff {
			return s[:i]
		}
	}
	return s
}

// -----------------------------------------------------------------------------

// TotalVolume sums bar volumes.
func (s MBarSeries) TotalVolume() float64 {
	total := 0.0
	for _, b := range s {
		total += b.Volume
	}
	return total
}
