package models

// -----------------------------------------------------------------------------
// Raw upstream records
// -----------------------------------------------------------------------------

// Volume units as reported by an upstream source. Lot-denominated volumes are
// converted to shares at the reconciler boundary, never mixed raw.
const (
	UnitShares = "shares"
	UnitLots   = "lots"
)

// MRawQuote is one upstream snapshot for an instrument. Pointer fields are
// absent when nil; absence is distinct from zero. A record is never mutated
// after the adapter returns it.
type MRawQuote struct {
	Symbol     string   `json:"symbol"`
	Last       *float64 `json:"last,omitempty"`
	PrevClose  *float64 `json:"prev_close,omitempty"`
	Open       *float64 `json:"open,omitempty"`
	High       *float64 `json:"high,omitempty"`
	Low        *float64 `json:"low,omitempty"`
	Volume     *float64 `json:"volume,omitempty"`
	VolumeUnit string   `json:"volume_unit,omitempty"`
	Timestamp  int64    `json:"timestamp,omitempty"`
	Currency   string   `json:"currency,omitempty"`
	Source     string   `json:"source"`
}

// Float is a convenience for building optional fields.
func Float(v float64) *float64 { return &v }
