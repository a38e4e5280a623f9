package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"quote-board/src/helpers"
	"quote-board/src/interfaces"
	"quote-board/src/logger"
	"quote-board/src/models"
)

// -----------------------------------------------------------------------------
// Yahoo Finance chart source
//
// Serves the lightweight real-time quote (chart meta), the intraday
// minute-bar series and the daily history series. Prices are per share and
// volume is already in shares.
// -----------------------------------------------------------------------------

const chartURL = "https://query1.finance.yahoo.com/v8/finance/chart/%s"

type FinanceSource struct {
	Network interfaces.INetworkManager
	Logger  *logger.Logger
}

// -----------------------------------------------------------------------------

func NewFinanceSource(netMgr interfaces.INetworkManager) *FinanceSource {
	return &FinanceSource{
		Network: netMgr,
		Logger:  logger.NewLogger("YahooFinanceSource"),
	}
}

// -----------------------------------------------------------------------------

func (s *FinanceSource) Name() string { return "yahoo" }

// -----------------------------------------------------------------------------

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency           string  `json:"currency"`
				Symbol             string  `json:"symbol"`
				RegularMarketTime  int64   `json:"regularMarketTime"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				ChartPreviousClose float64 `json:"chartPreviousClose"`
				ExchangeTimezone   string  `json:"exchangeTimezoneName"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"` // pointers: entries can be null
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// -----------------------------------------------------------------------------

func (s *FinanceSource) fetchChart(ctx context.Context, symbol, interval, rng string) (*chartResponse, error) {
	params := map[string]string{
		"interval":       interval,
		"range":          rng,
		"includePrePost": "false",
	}

	body, err := s.Network.Get(ctx, fmt.Sprintf(chartURL, symbol), params)
	if err != nil {
		return nil, err
	}

	var resp chartResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, helpers.NewFetchError("yahoo decode", err)
	}
	if resp.Chart.Error != nil {
		return nil, helpers.NewFetchError(
			fmt.Sprintf("yahoo api error: %s - %s", resp.Chart.Error.Code, resp.Chart.Error.Description), nil)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, helpers.NewFieldAbsentError(symbol, "chart result")
	}

	return &resp, nil
}

// -----------------------------------------------------------------------------

// FetchQuote reads the chart meta block, which carries the last traded price
// and the previous close without needing a bar series.
func (s *FinanceSource) FetchQuote(ctx context.Context, symbol string) (*models.MRawQuote, error) {
	resp, err := s.fetchChart(ctx, symbol, "1d", "1d")
	if err != nil {
		return nil, err
	}

	meta := resp.Chart.Result[0].Meta
	quote := &models.MRawQuote{
		Symbol:     symbol,
		VolumeUnit: models.UnitShares,
		Currency:   meta.Currency,
		Timestamp:  meta.RegularMarketTime,
		Source:     s.Name(),
	}
	if meta.RegularMarketPrice > 0 {
		quote.Last = models.Float(meta.RegularMarketPrice)
	}
	if meta.ChartPreviousClose > 0 {
		quote.PrevClose = models.Float(meta.ChartPreviousClose)
	}

	return quote, nil
}

// -----------------------------------------------------------------------------

// FetchIntradayBars prefers today's 5-minute series; outside regular hours
// that can come back empty, so it falls back to a 5-day hourly series trimmed
// to its final trading day.
func (s *FinanceSource) FetchIntradayBars(ctx context.Context, symbol string) (models.MBarSeries, error) {
	bars, err := s.fetchBars(ctx, symbol, "5m", "1d")
	if err == nil && len(bars) > 0 {
		return bars, nil
	}

	fallback, fbErr := s.fetchBars(ctx, symbol, "60m", "5d")
	if fbErr != nil {
		if err != nil {
			return nil, err
		}
		return nil, fbErr
	}

	return lastDayOnly(fallback), nil
}

// lastDayOnly keeps only the bars sharing the UTC date of the final bar.
func lastDayOnly(bars models.MBarSeries) models.MBarSeries {
	last, ok := bars.Last()
	if !ok {
		return bars
	}
	lastDay := time.Unix(last.Timestamp, 0).UTC().Format("2006-01-02")

	trimmed := make(models.MBarSeries, 0, len(bars))
	for _, b := range bars {
		if time.Unix(b.Timestamp, 0).UTC().Format("2006-01-02") == lastDay {
			trimmed = append(trimmed, b)
		}
	}
	return trimmed
}

// -----------------------------------------------------------------------------

// FetchDailyBars retrieves up to lookback daily bars.
func (s *FinanceSource) FetchDailyBars(ctx context.Context, symbol string, lookback int) (models.MBarSeries, error) {
	rng := "2y"
	switch {
	case lookback <= 30:
		rng = "1mo"
	case lookback <= 90:
		rng = "3mo"
	case lookback <= 180:
		rng = "6mo"
	case lookback <= 365:
		rng = "1y"
	}

	bars, err := s.fetchBars(ctx, symbol, "1d", rng)
	if err != nil {
		return nil, err
	}
	if len(bars) > lookback {
		bars = bars[len(bars)-lookback:]
	}
	return bars, nil
}

// -----------------------------------------------------------------------------

func (s *FinanceSource) fetchBars(ctx context.Context, symbol, interval, rng string) (models.MBarSeries, error) {
	resp, err := s.fetchChart(ctx, symbol, interval, rng)
	if err != nil {
		return nil, err
	}

	result := resp.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, helpers.NewFieldAbsentError(symbol, "quote indicators")
	}
	quote := result.Indicators.Quote[0]

	n := len(result.Timestamp)
	if len(quote.Open) != n || len(quote.High) != n || len(quote.Low) != n ||
		len(quote.Close) != n || len(quote.Volume) != n {
		return nil, helpers.NewFetchError(fmt.Sprintf("data alignment error for %s", symbol), nil)
	}

	bars := make(models.MBarSeries, 0, n)
	for i := 0; i < n; i++ {
		// Null entries mark halts and holidays; skip the whole bar.
		if quote.Open[i] == nil || quote.High[i] == nil || quote.Low[i] == nil ||
			quote.Close[i] == nil || quote.Volume[i] == nil {
			continue
		}
		if *quote.Close[i] <= 0 || *quote.Volume[i] < 0 {
			continue
		}

		bars = append(bars, models.MBar{
			Timestamp: result.Timestamp[i],
			Open:      *quote.Open[i],
			High:      *quote.High[i],
			Low:       *quote.Low[i],
			Close:     *quote.Close[i],
			Volume:    *quote.Volume[i],
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Timestamp < bars[j].Timestamp })

	s.Logger.Debug("Fetched %s: %d bars (%s/%s)", symbol, len(bars), interval, rng)
	return bars, nil
}
