package reconcile

import (
	"errors"
	"math"
	"time"

	"quote-board/src/models"
)

// -----------------------------------------------------------------------------
// Field reconciliation
//
// One canonical precedence list per snapshot field, expressed as data. Each
// selector either produces a value or passes; a source whose value is absent,
// a sentinel, or not a finite number is skipped and the chain moves on.
// -----------------------------------------------------------------------------

// ErrUnavailable is returned when both the current-price and previous-close
// chains are exhausted. The snapshot is never fabricated.
var ErrUnavailable = errors.New("quote unavailable: current price and previous close exhausted")

// Inputs are the cached raw records for one instrument at one refresh cycle.
// Intraday must already be cutoff-filtered; Daily is the raw history series.
type Inputs struct {
	Symbol     string
	Market     string
	TradingDay string // YYYY-MM-DD in market local time
	Official   *models.MRawQuote
	Quote      *models.MRawQuote
	Intraday   models.MBarSeries
	Daily      models.MBarSeries
	LotSize    float64
	Location   *time.Location
	Currency   string
}

// fieldSource is one step of a precedence chain.
type fieldSource struct {
	tag  models.FieldSource
	pick func(in *Inputs) *float64
}

// -----------------------------------------------------------------------------
// Selector helpers
// -----------------------------------------------------------------------------

// validPrice accepts finite, strictly positive values. Zero is the
// "no trade yet" sentinel on price fields and must degrade the chain.
func validPrice(p *float64) *float64 {
	if p == nil || math.IsNaN(*p) || math.IsInf(*p, 0) || *p <= 0 {
		return nil
	}
	return p
}

// validVolume accepts finite, non-negative values; zero volume is real data.
func validVolume(p *float64) *float64 {
	if p == nil || math.IsNaN(*p) || math.IsInf(*p, 0) || *p < 0 {
		return nil
	}
	return p
}

func officialField(get func(*models.MRawQuote) *float64) func(*Inputs) *float64 {
	return func(in *Inputs) *float64 {
		if in.Official == nil {
			return nil
		}
		return validPrice(get(in.Official))
	}
}

func quoteField(get func(*models.MRawQuote) *float64) func(*Inputs) *float64 {
	return func(in *Inputs) *float64 {
		if in.Quote == nil {
			return nil
		}
		return validPrice(get(in.Quote))
	}
}

// -----------------------------------------------------------------------------
// Chains
// -----------------------------------------------------------------------------

var currentChain = []fieldSource{
	{models.SourceOfficial, officialField(func(q *models.MRawQuote) *float64 { return q.Last })},
	{models.SourceQuote, quoteField(func(q *models.MRawQuote) *float64 { return q.Last })},
	{models.SourceIntraday, func(in *Inputs) *float64 {
		if bar, ok := in.Intraday.Last(); ok {
			return validPrice(&bar.Close)
		}
		return nil
	}},
	{models.SourceDaily, func(in *Inputs) *float64 {
		if bar, ok := in.Daily.Last(); ok {
			return validPrice(&bar.Close)
		}
		return nil
	}},
}

// prevCloseChain deliberately selects the daily bar by date comparison, never
// by position: once today's bar exists, "second to last" is only right by
// accident, and before it exists it is wrong.
var prevCloseChain = []fieldSource{
	{models.SourceOfficial, officialField(func(q *models.MRawQuote) *float64 { return q.PrevClose })},
	{models.SourceQuote, quoteField(func(q *models.MRawQuote) *float64 { return q.PrevClose })},
	{models.SourceDaily, func(in *Inputs) *float64 { return dailyCloseBefore(in) }},
}

func ohlChain(get func(*models.MRawQuote) *float64, fromBars func(models.MBarSeries) *float64) []fieldSource {
	return []fieldSource{
		{models.SourceOfficial, officialField(get)},
		{models.SourceIntraday, func(in *Inputs) *float64 {
			if len(in.Intraday) == 0 {
				return nil
			}
			return validPrice(fromBars(in.Intraday))
		}},
	}
}

var (
	openChain = ohlChain(
		func(q *models.MRawQuote) *float64 { return q.Open },
		func(s models.MBarSeries) *float64 { return &s[0].Open })
	highChain = ohlChain(
		func(q *models.MRawQuote) *float64 { return q.High },
		func(s models.MBarSeries) *float64 {
			high := s[0].High
			for _, b := range s[1:] {
				if b.High > high {
					high = b.High
				}
			}
			return &high
		})
	lowChain = ohlChain(
		func(q *models.MRawQuote) *float64 { return q.Low },
		func(s models.MBarSeries) *float64 {
			low := s[0].Low
			for _, b := range s[1:] {
				if b.Low < low {
					low = b.Low
				}
			}
			return &low
		})
)

var volumeChain = []fieldSource{
	{models.SourceOfficial, func(in *Inputs) *float64 { return normalizedVolume(in.Official, in.LotSize) }},
	{models.SourceQuote, func(in *Inputs) *float64 { return normalizedVolume(in.Quote, in.LotSize) }},
	{models.SourceIntraday, func(in *Inputs) *float64 {
		if len(in.Intraday) == 0 {
			return nil
		}
		total := in.Intraday.TotalVolume()
		return &total
	}},
}

// -----------------------------------------------------------------------------

// normalizedVolume converts a record's volume to shares before it is merged
// with share-denominated sources.
func normalizedVolume(q *models.MRawQuote, lotSize float64) *float64 {
	if q == nil {
		return nil
	}
	v := validVolume(q.Volume)
	if v == nil {
		return nil
	}
	if q.VolumeUnit == models.UnitLots {
		shares := *v * lotSize
		return &shares
	}
	return v
}

// -----------------------------------------------------------------------------

// dailyCloseBefore returns the close of the latest daily bar dated strictly
// before the current trading day, in market local time.
func dailyCloseBefore(in *Inputs) *float64 {
	loc := in.Location
	if loc == nil {
		loc = time.UTC
	}

	// Walk backwards: the series is ascending, the first qualifying bar from
	// the end is the most recent prior session.
	for i := len(in.Daily) - 1; i >= 0; i-- {
		date := time.Unix(in.Daily[i].Timestamp, 0).In(loc).Format("2006-01-02")
		if date < in.TradingDay {
			return validPrice(&in.Daily[i].Close)
		}
	}
	return nil
}

// -----------------------------------------------------------------------------

// firstOf runs a chain and reports the first producing source.
func firstOf(in *Inputs, chain []fieldSource) (float64, models.FieldSource, bool) {
	for _, fs := range chain {
		if v := fs.pick(in); v != nil {
			return *v, fs.tag, true
		}
	}
	return 0, "", false
}

// -----------------------------------------------------------------------------
// Build
// -----------------------------------------------------------------------------

// Build reconciles the raw inputs into a single snapshot, or fails with
// ErrUnavailable when neither a current price nor a previous close can be
// produced by any source.
func Build(in *Inputs) (*models.MSnapshot, error) {
	snap := &models.MSnapshot{
		Symbol:     in.Symbol,
		Market:     in.Market,
		TradingDay: in.TradingDay,
		Currency:   in.Currency,
		Sources:    make(map[string]models.FieldSource, 6),
	}

	current, curSrc, haveCurrent := firstOf(in, currentChain)
	prevClose, prevSrc, havePrev := firstOf(in, prevCloseChain)

	if !haveCurrent && !havePrev {
		return nil, ErrUnavailable
	}

	// OHLC before the cross-fallbacks below, since the previous-close chain's
	// last resort is the day's open.
	open, openSrc, haveOpen := firstOf(in, openChain)
	high, highSrc, haveHigh := firstOf(in, highChain)
	low, lowSrc, haveLow := firstOf(in, lowChain)

	if !haveCurrent {
		// Only the previous close survived; surface it rather than nothing.
		current, curSrc = prevClose, models.SourceDegenerate
		snap.Degraded = true
	}
	if !havePrev {
		// Last resort: the day's opening price, clearly marked degraded.
		if haveOpen {
			prevClose = open
		} else {
			prevClose = current
		}
		prevSrc = models.SourceOpenPrice
		snap.Degraded = true
	}

	// Degenerate single-point session, e.g. an instrument with no trades yet.
	if !haveOpen {
		open, openSrc = current, models.SourceDegenerate
	}
	if !haveHigh {
		high, highSrc = current, models.SourceDegenerate
	}
	if !haveLow {
		low, lowSrc = current, models.SourceDegenerate
	}

	volume, volSrc, haveVol := firstOf(in, volumeChain)
	if !haveVol {
		volume, volSrc = 0, models.SourceDegenerate
	}

	snap.Current = current
	snap.PrevClose = prevClose
	snap.Open = open
	snap.High = high
	snap.Low = low
	snap.Volume = volume

	snap.Sources[models.FieldCurrent] = curSrc
	snap.Sources[models.FieldPrevClose] = prevSrc
	snap.Sources[models.FieldOpen] = openSrc
	snap.Sources[models.FieldHigh] = highSrc
	snap.Sources[models.FieldLow] = lowSrc
	snap.Sources[models.FieldVolume] = volSrc

	return snap, nil
}
