package models

// -----------------------------------------------------------------------------
// Session state
// -----------------------------------------------------------------------------

// SessionPhase is the exchange session phase at a point in time.
type SessionPhase string

const (
	PhasePreOpen SessionPhase = "PRE_OPEN"
	PhaseOpen    SessionPhase = "OPEN"
	PhaseClosed  SessionPhase = "CLOSED"
)

// MSessionState is a pure function of wall-clock time and market; it is
// computed fresh on every access and never persisted. TradingDay is the date
// (YYYY-MM-DD, market local time) of the most recent or active session.
type MSessionState struct {
	Market     string       `json:"market"`
	Phase      SessionPhase `json:"phase"`
	TradingDay string       `json:"trading_day"`
}
