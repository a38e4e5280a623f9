package models

// -----------------------------------------------------------------------------
// Derived metrics
// -----------------------------------------------------------------------------

// MDerivedMetrics holds values recomputed every cycle from a snapshot and its
// intraday bar series. Turnover is in raw currency units; human-scale
// conversion (e.g. hundred-million) belongs to the presentation layer.
// RelativePct is nil when the benchmark snapshot was unavailable.
type MDerivedMetrics struct {
	VWAP         float64  `json:"vwap"`
	Turnover     float64  `json:"turnover"`
	AmplitudePct float64  `json:"amplitude_pct"`
	ChangePct    float64  `json:"change_pct"`
	RelativePct  *float64 `json:"relative_pct,omitempty"`
}
