package reconcile

import (
	"context"
	"strings"
	"time"

	"quote-board/src/analysis"
	"quote-board/src/cache"
	"quote-board/src/interfaces"
	"quote-board/src/logger"
	"quote-board/src/models"
	"quote-board/src/session"
)

// -----------------------------------------------------------------------------
// Engine
//
// Pull-based refresh: each call gathers the cached raw inputs for one
// instrument, reconciles them and derives metrics. Per-symbol refreshes are
// independent; the TTL cache is the only shared state.
// -----------------------------------------------------------------------------

const defaultDailyLookback = 30

type Engine struct {
	cfg       *models.MConfig
	log       *logger.Logger
	clock     *session.Clock
	store     *cache.Store
	official  interfaces.IQuoteSource
	secondary interfaces.IQuoteSource
	recorder  interfaces.IRecorder
	exchange  interfaces.IDataExchange
	locations map[string]*time.Location
	lookback  int

	now func() time.Time // swappable for tests
}

// -----------------------------------------------------------------------------

func NewEngine(
	cfg *models.MConfig,
	clock *session.Clock,
	store *cache.Store,
	official interfaces.IQuoteSource,
	secondary interfaces.IQuoteSource,
	recorder interfaces.IRecorder,
) *Engine {
	locations := make(map[string]*time.Location, len(cfg.Markets))
	for name, m := range cfg.Markets {
		// Config validation already proved these load.
		if loc, err := time.LoadLocation(m.Timezone); err == nil {
			locations[name] = loc
		}
	}

	return &Engine{
		cfg:       cfg,
		log:       logger.NewLogger("Engine"),
		clock:     clock,
		store:     store,
		official:  official,
		secondary: secondary,
		recorder:  recorder,
		locations: locations,
		lookback:  defaultDailyLookback,
		now:       time.Now,
	}
}

// -----------------------------------------------------------------------------

// SetExchange attaches the presentation push channel. Optional.
func (e *Engine) SetExchange(ex interfaces.IDataExchange) { e.exchange = ex }

// -----------------------------------------------------------------------------

// MarketOf maps a symbol to its configured market by listing suffix.
func (e *Engine) MarketOf(symbol string) string {
	if symbol == "^TWII" || strings.HasSuffix(symbol, ".TW") || strings.HasSuffix(symbol, ".TWO") {
		return "TW"
	}
	return "US"
}

// -----------------------------------------------------------------------------
// Cached raw input gathering
// -----------------------------------------------------------------------------

func (e *Engine) officialQuote(ctx context.Context, symbol string) *models.MRawQuote {
	key := cache.Key{Symbol: e.official.Name() + ":" + symbol, Class: cache.ClassQuote}
	q, err := cache.GetTyped(e.store, key, func() (*models.MRawQuote, error) {
		return e.official.FetchQuote(ctx, symbol)
	})
	if err != nil {
		e.log.Debug("official quote %s: %v", symbol, err)
		return nil
	}
	return q
}

func (e *Engine) lightQuote(ctx context.Context, symbol string) *models.MRawQuote {
	key := cache.Key{Symbol: e.secondary.Name() + ":" + symbol, Class: cache.ClassQuote}
	q, err := cache.GetTyped(e.store, key, func() (*models.MRawQuote, error) {
		return e.secondary.FetchQuote(ctx, symbol)
	})
	if err != nil {
		e.log.Debug("light quote %s: %v", symbol, err)
		return nil
	}
	return q
}

func (e *Engine) intradayBars(ctx context.Context, symbol string) models.MBarSeries {
	key := cache.Key{Symbol: symbol, Class: cache.ClassIntraday}
	bars, err := cache.GetTyped(e.store, key, func() (models.MBarSeries, error) {
		return e.secondary.FetchIntradayBars(ctx, symbol)
	})
	if err != nil {
		e.log.Debug("intraday bars %s: %v", symbol, err)
		return nil
	}
	return bars
}

func (e *Engine) dailyBars(ctx context.Context, symbol string) models.MBarSeries {
	key := cache.Key{Symbol: symbol, Class: cache.ClassDaily}
	bars, err := cache.GetTyped(e.store, key, func() (models.MBarSeries, error) {
		return e.secondary.FetchDailyBars(ctx, symbol, e.lookback)
	})
	if err != nil {
		e.log.Debug("daily bars %s: %v", symbol, err)
		return nil
	}
	return bars
}

// -----------------------------------------------------------------------------
// Operations
// -----------------------------------------------------------------------------

// Snapshot reconciles one instrument and returns the snapshot together with
// the cutoff-filtered intraday series the metrics are computed from.
func (e *Engine) Snapshot(ctx context.Context, symbol string) (*models.MSnapshot, models.MBarSeries, error) {
	now := e.now()
	market := e.MarketOf(symbol)
	mcfg := e.cfg.Markets[market]

	state, err := e.clock.State(market, now)
	if err != nil {
		return nil, nil, err
	}

	// The cutoff is anchored to the session the bars belong to, not the
	// current trading day: pre-open, the cached series is still the previous
	// session's, and its auction bars must be cut at that session's close.
	intraday := e.intradayBars(ctx, symbol)
	if last, ok := intraday.Last(); ok {
		cutoff, err := e.clock.IntradayCutoff(market, time.Unix(last.Timestamp, 0))
		if err != nil {
			return nil, nil, err
		}
		intraday = intraday.FilterBefore(cutoff.Unix())
	}

	in := &Inputs{
		Symbol:     symbol,
		Market:     market,
		TradingDay: state.TradingDay,
		Official:   e.officialQuote(ctx, symbol),
		Quote:      e.lightQuote(ctx, symbol),
		Intraday:   intraday,
		Daily:      e.dailyBars(ctx, symbol),
		LotSize:    mcfg.LotSize,
		Location:   e.locations[market],
		Currency:   mcfg.Currency,
	}

	snap, err := Build(in)
	if err != nil {
		return nil, nil, err
	}
	snap.FetchedAt = now.Unix()

	return snap, intraday, nil
}

// -----------------------------------------------------------------------------

// Quote produces the full renderer view for one instrument: snapshot, derived
// metrics (including performance relative to the market benchmark when that
// reconciles), and session state. A successful view is recorded and pushed to
// connected dashboards.
func (e *Engine) Quote(ctx context.Context, symbol string) (*models.MQuoteView, error) {
	snap, bars, err := e.Snapshot(ctx, symbol)
	if err != nil {
		return nil, err
	}

	market := e.MarketOf(symbol)
	var benchmark *models.MSnapshot
	if bench := e.cfg.Markets[market].Benchmark; bench != "" && bench != symbol {
		benchmark, _, err = e.Snapshot(ctx, bench)
		if err != nil {
			// Missing benchmark only omits the relative metric.
			e.log.Warning("benchmark %s unavailable: %v", bench, err)
			benchmark = nil
		}
	}

	metrics := analysis.Compute(snap, bars, benchmark)

	state, err := e.clock.State(market, e.now())
	if err != nil {
		return nil, err
	}

	view := &models.MQuoteView{
		Snapshot: snap,
		Metrics:  metrics,
		Session:  state,
		Bars:     bars,
	}

	if e.recorder != nil {
		if err := e.recorder.RecordSnapshot(snap, metrics); err != nil {
			e.log.Warning("record snapshot %s: %v", symbol, err)
		}
	}

	if e.exchange != nil {
		e.exchange.Broadcast(&models.MBoardUpdate{
			Type:      "UPDATE",
			Quotes:    map[string]models.MQuoteView{symbol: *view},
			Timestamp: e.now().Unix(),
		})
	}

	return view, nil
}

// -----------------------------------------------------------------------------

// SessionState exposes the session clock to the renderer.
func (e *Engine) SessionState(market string) (models.MSessionState, error) {
	return e.clock.State(market, e.now())
}

// -----------------------------------------------------------------------------

// ForceRefresh drops every cached entry; the next reads refetch upstream.
func (e *Engine) ForceRefresh() {
	e.store.InvalidateAll()
	e.log.Info("cache invalidated by forced refresh")
}

// -----------------------------------------------------------------------------

// CacheStats exposes cache counters for the status endpoint.
func (e *Engine) CacheStats() cache.Stats {
	return e.store.Snapshot()
}

// -----------------------------------------------------------------------------

// Markets lists configured markets.
func (e *Engine) Markets() []string {
	return e.clock.Markets()
}
