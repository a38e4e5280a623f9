package session

import (
	"fmt"
	"time"

	"quote-board/src/models"
)

// -----------------------------------------------------------------------------
// Session Clock
//
// Pure functions of wall-clock time and a per-market trading-hours table.
// No I/O, no side effects; all state is derived from the instant passed in.
// -----------------------------------------------------------------------------

type marketHours struct {
	loc       *time.Location
	openMins  int // minutes after midnight, local
	closeMins int
	grace     time.Duration
	calendar  *TradingCalendar
}

// Clock resolves session phase, trading day and intraday cutoff per market.
type Clock struct {
	markets map[string]marketHours
}

// -----------------------------------------------------------------------------

// NewClock builds a Clock from the per-market configuration table.
func NewClock(markets map[string]models.MMarketConfig) (*Clock, error) {
	c := &Clock{markets: make(map[string]marketHours, len(markets))}

	for name, m := range markets {
		loc, err := time.LoadLocation(m.Timezone)
		if err != nil {
			return nil, fmt.Errorf("market %s: load timezone: %w", name, err)
		}
		open, err := parseClock(m.OpenTime)
		if err != nil {
			return nil, fmt.Errorf("market %s: open time: %w", name, err)
		}
		cl, err := parseClock(m.CloseTime)
		if err != nil {
			return nil, fmt.Errorf("market %s: close time: %w", name, err)
		}

		c.markets[name] = marketHours{
			loc:       loc,
			openMins:  open,
			closeMins: cl,
			grace:     time.Duration(m.CutoffGraceMinutes) * time.Minute,
			calendar:  NewTradingCalendar(m.MIC, loc),
		}
	}

	return c, nil
}

// -----------------------------------------------------------------------------

func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

// -----------------------------------------------------------------------------

// State returns the session phase and trading day for market at instant now.
// Weekends and known exchange holidays are always CLOSED.
func (c *Clock) State(market string, now time.Time) (models.MSessionState, error) {
	mh, ok := c.markets[market]
	if !ok {
		return models.MSessionState{}, fmt.Errorf("unknown market: %s", market)
	}

	local := now.In(mh.loc)
	state := models.MSessionState{
		Market:     market,
		TradingDay: c.tradingDay(mh, local),
	}

	if !mh.calendar.IsTradingDay(local) {
		state.Phase = models.PhaseClosed
		return state, nil
	}

	mins := local.Hour()*60 + local.Minute()
	switch {
	case mins < mh.openMins:
		state.Phase = models.PhasePreOpen
	case mins < mh.closeMins:
		state.Phase = models.PhaseOpen
	default:
		state.Phase = models.PhaseClosed
	}

	return state, nil
}

// -----------------------------------------------------------------------------

// tradingDay is the local date of the most recent or active session: today
// when today trades, otherwise the closest preceding trading day.
func (c *Clock) tradingDay(mh marketHours, local time.Time) string {
	day := local
	for i := 0; i < 10 && !mh.calendar.IsTradingDay(day); i++ {
		day = day.AddDate(0, 0, -1)
	}
	return day.Format("2006-01-02")
}

// -----------------------------------------------------------------------------

// IntradayCutoff returns the instant (regular close plus the configured grace
// window) after which intraday bars belong to the post-close fixed-price
// auction and must not contaminate that session's OHLC or volume. The cutoff
// is anchored to the session on t's local date: callers pass a timestamp from
// the series being filtered, not the wall clock, so a cached series from the
// previous session is still cut at that session's close.
func (c *Clock) IntradayCutoff(market string, t time.Time) (time.Time, error) {
	mh, ok := c.markets[market]
	if !ok {
		return time.Time{}, fmt.Errorf("unknown market: %s", market)
	}

	local := t.In(mh.loc)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, mh.loc)

	cutoff := day.Add(time.Duration(mh.closeMins) * time.Minute).Add(mh.grace)
	return cutoff, nil
}

// -----------------------------------------------------------------------------

// Markets lists the configured market identifiers.
func (c *Clock) Markets() []string {
	names := make([]string, 0, len(c.markets))
	for name := range c.markets {
		names = append(names, name)
	}
	return names
}
