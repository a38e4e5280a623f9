package analysis

import (
	"quote-board/src/analysis/core"
	"quote-board/src/models"
)

// -----------------------------------------------------------------------------

// Compute derives the per-cycle metrics from a reconciled snapshot and its
// cutoff-filtered intraday bars. benchmark may be nil (e.g. its own
// reconciliation failed); relative performance is then omitted, not zero.
func Compute(snap *models.MSnapshot, bars models.MBarSeries, benchmark *models.MSnapshot) *models.MDerivedMetrics {
	vwap := core.VWAP(bars)
	if vwap == 0 {
		// No usable bar series at all; anchor the estimate on the last price.
		vwap = snap.Current
	}

	m := &models.MDerivedMetrics{
		VWAP:         vwap,
		Turnover:     core.Turnover(vwap, snap.Volume),
		AmplitudePct: core.Amplitude(snap.High, snap.Low, snap.PrevClose),
		ChangePct:    snap.ChangePercent(),
	}

	if benchmark != nil {
		rel := snap.ChangePercent() - benchmark.ChangePercent()
		m.RelativePct = &rel
	}

	return m
}
