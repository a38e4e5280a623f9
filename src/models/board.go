package models

// -----------------------------------------------------------------------------
// Server State Structure
// -----------------------------------------------------------------------------

// MQuoteView is one instrument's reconciled state as served to the renderer.
type MQuoteView struct {
	Snapshot *MSnapshot       `json:"snapshot"`
	Metrics  *MDerivedMetrics `json:"metrics,omitempty"`
	Session  MSessionState    `json:"session"`
	Bars     MBarSeries       `json:"bars,omitempty"`
}

// MBoardUpdate is the payload pushed to dashboard clients.
type MBoardUpdate struct {
	Type      string                `json:"type"` // "INITIAL" or "UPDATE"
	Quotes    map[string]MQuoteView `json:"quotes"`
	Timestamp int64                 `json:"timestamp"`
}

// -----------------------------------------------------------------------------
// SubscribeCommand for client messages
// -----------------------------------------------------------------------------

type MSubscribeCommand struct {
	Command string   `json:"command"`
	Symbols []string `json:"symbols"`
}
