package models

// -----------------------------------------------------------------------------
// Reconciled snapshot
// -----------------------------------------------------------------------------

// FieldSource records which upstream satisfied a snapshot field.
type FieldSource string

const (
	SourceOfficial   FieldSource = "official"
	SourceQuote      FieldSource = "quote"
	SourceIntraday   FieldSource = "intraday"
	SourceDaily      FieldSource = "daily"
	SourceOpenPrice  FieldSource = "open_fallback"
	SourceDegenerate FieldSource = "degenerate"
)

// Snapshot field names used as provenance keys.
const (
	FieldCurrent   = "current"
	FieldPrevClose = "prev_close"
	FieldOpen      = "open"
	FieldHigh      = "high"
	FieldLow       = "low"
	FieldVolume    = "volume"
)

// MSnapshot is the product of reconciliation for one instrument at one refresh
// cycle. Volume is normalized to shares. Constructed fresh each cycle and
// never mutated; the next cycle replaces it wholesale.
type MSnapshot struct {
	Symbol     string                 `json:"symbol"`
	Market     string                 `json:"market"`
	TradingDay string                 `json:"trading_day"`
	Current    float64                `json:"current"`
	PrevClose  float64                `json:"prev_close"`
	Open       float64                `json:"open"`
	High       float64                `json:"high"`
	Low        float64                `json:"low"`
	Volume     float64                `json:"volume"`
	Currency   string                 `json:"currency"`
	Degraded   bool                   `json:"degraded"`
	Sources    map[string]FieldSource `json:"sources"`
	FetchedAt  int64                  `json:"fetched_at"`
}

// -----------------------------------------------------------------------------

// Change returns the absolute price change against the previous close.
func (s *MSnapshot) Change() float64 {
	return s.Current - s.PrevClose
}

// ChangePercent returns the percentage change against the previous close,
// 0 when the previous close is 0.
func (s *MSnapshot) ChangePercent() float64 {
	if s.PrevClose == 0 {
		return 0
	}
	return (s.Current - s.PrevClose) / s.PrevClose * 100
}
