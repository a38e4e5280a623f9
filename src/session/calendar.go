package session

import (
	"time"

	"github.com/scmhub/calendar"
)

// -----------------------------------------------------------------------------

// TradingCalendar answers whether a date is a trading day for one market.
// When an exchange calendar is available for the market's MIC it also knows
// public holidays; otherwise it falls back to plain Mon-Fri.
type TradingCalendar struct {
	cal      *calendar.Calendar
	fallback bool
	loc      *time.Location
}

// -----------------------------------------------------------------------------

// NewTradingCalendar loads the exchange calendar for mic (ISO 10383).
// An empty or unknown MIC yields the weekday-only fallback in loc.
func NewTradingCalendar(mic string, loc *time.Location) *TradingCalendar {
	if mic != "" {
		if cal := calendar.GetCalendar(mic); cal != nil {
			return &TradingCalendar{cal: cal, loc: cal.Loc}
		}
	}
	return &TradingCalendar{fallback: true, loc: loc}
}

// -----------------------------------------------------------------------------

// IsTradingDay reports whether date falls on a trading day.
func (tc *TradingCalendar) IsTradingDay(date time.Time) bool {
	if tc.loc != nil {
		date = date.In(tc.loc)
	}

	if tc.fallback {
		weekday := date.Weekday()
		return weekday != time.Saturday && weekday != time.Sunday
	}
	return tc.cal.IsBusinessDay(date)
}
