package twse

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"quote-board/src/helpers"
	"quote-board/src/interfaces"
	"quote-board/src/logger"
	"quote-board/src/models"
)

// -----------------------------------------------------------------------------
// TWSE MIS official snapshot source
//
// Wraps the exchange's getStockInfo endpoint. This is the authoritative
// source for current price, previous close, session OHLC and accumulated
// volume, but any field can be the "-" sentinel before the first trade of the
// day. Volume is reported in lots of 1000 shares; the reconciler converts.
// -----------------------------------------------------------------------------

const stockInfoURL = "https://mis.twse.com.tw/stock/api/getStockInfo.jsp"

type OfficialSource struct {
	Network interfaces.INetworkManager
	Logger  *logger.Logger
}

// -----------------------------------------------------------------------------

func NewOfficialSource(netMgr interfaces.INetworkManager) *OfficialSource {
	return &OfficialSource{
		Network: netMgr,
		Logger:  logger.NewLogger("TWSEOfficialSource"),
	}
}

// -----------------------------------------------------------------------------

func (s *OfficialSource) Name() string { return "twse" }

// -----------------------------------------------------------------------------

// stockInfoResponse is the getStockInfo payload. All numeric fields arrive as
// strings; "-" means no value yet.
type stockInfoResponse struct {
	MsgArray []struct {
		Code      string `json:"c"`
		Last      string `json:"z"`
		PrevClose string `json:"y"`
		Open      string `json:"o"`
		High      string `json:"h"`
		Low       string `json:"l"`
		Volume    string `json:"v"` // accumulated, in lots
		TimeMs    string `json:"tlong"`
	} `json:"msgArray"`
	RtMessage string `json:"rtmessage"`
}

// -----------------------------------------------------------------------------

// exChannel maps a dashboard symbol to the MIS ex_ch parameter.
// "2330.TW" -> "tse_2330.tw"; the TAIEX index "^TWII" -> "tse_t00.tw".
func exChannel(symbol string) (string, bool) {
	if symbol == "^TWII" {
		return "tse_t00.tw", true
	}
	if code, ok := strings.CutSuffix(symbol, ".TW"); ok {
		return "tse_" + code + ".tw", true
	}
	if code, ok := strings.CutSuffix(symbol, ".TWO"); ok {
		return "otc_" + code + ".tw", true
	}
	return "", false
}

// -----------------------------------------------------------------------------

func (s *OfficialSource) FetchQuote(ctx context.Context, symbol string) (*models.MRawQuote, error) {
	exCh, ok := exChannel(symbol)
	if !ok {
		// Not a Taiwan-listed instrument; the chain moves on.
		return nil, helpers.NewFieldAbsentError(symbol, "twse listing")
	}

	params := map[string]string{
		"ex_ch": exCh,
		"json":  "1",
		"delay": "0",
	}

	body, err := s.Network.Get(ctx, stockInfoURL, params)
	if err != nil {
		return nil, err
	}

	var resp stockInfoResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, helpers.NewFetchError("twse decode", err)
	}
	if len(resp.MsgArray) == 0 {
		return nil, helpers.NewFieldAbsentError(symbol, "msgArray")
	}

	msg := resp.MsgArray[0]
	quote := &models.MRawQuote{
		Symbol:     symbol,
		Last:       parseField(msg.Last),
		PrevClose:  parseField(msg.PrevClose),
		Open:       parseField(msg.Open),
		High:       parseField(msg.High),
		Low:        parseField(msg.Low),
		Volume:     parseField(msg.Volume),
		VolumeUnit: models.UnitLots,
		Currency:   "TWD",
		Source:     s.Name(),
	}
	if ms, err := strconv.ParseInt(msg.TimeMs, 10, 64); err == nil {
		quote.Timestamp = ms / 1000
	}

	return quote, nil
}

// -----------------------------------------------------------------------------

// parseField converts a MIS string field, mapping the "-" sentinel and
// anything non-numeric to absent.
func parseField(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "-" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

// -----------------------------------------------------------------------------

// FetchIntradayBars is unsupported: the MIS endpoint only serves snapshots.
func (s *OfficialSource) FetchIntradayBars(_ context.Context, symbol string) (models.MBarSeries, error) {
	return nil, helpers.NewFieldAbsentError(symbol, "intraday bars")
}

// FetchDailyBars is unsupported: the MIS endpoint only serves snapshots.
func (s *OfficialSource) FetchDailyBars(_ context.Context, symbol string, _ int) (models.MBarSeries, error) {
	return nil, helpers.NewFieldAbsentError(symbol, "daily bars")
}
