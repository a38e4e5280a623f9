package reconcile

import (
	"math"
	"testing"
	"time"

	"quote-board/src/models"
)

func taipei(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Taipei")
	if err != nil {
		t.Fatalf("LoadLocation: %v", err)
	}
	return loc
}

func baseInputs(t *testing.T) *Inputs {
	return &Inputs{
		Symbol:     "2330.TW",
		Market:     "TW",
		TradingDay: "2024-06-11",
		LotSize:    1000,
		Location:   taipei(t),
		Currency:   "TWD",
	}
}

func TestBuild_OfficialWinsEveryField(t *testing.T) {
	in := baseInputs(t)
	in.Official = &models.MRawQuote{
		Symbol:     "2330.TW",
		Last:       models.Float(905),
		PrevClose:  models.Float(900),
		Open:       models.Float(902),
		High:       models.Float(910),
		Low:        models.Float(898),
		Volume:     models.Float(25000), // lots
		VolumeUnit: models.UnitLots,
	}
	in.Quote = &models.MRawQuote{
		Last:      models.Float(904),
		PrevClose: models.Float(899),
	}

	snap, err := Build(in)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if snap.Current != 905 {
		t.Errorf("expected current 905, got %v", snap.Current)
	}
	if snap.PrevClose != 900 {
		t.Errorf("expected prev close 900, got %v", snap.PrevClose)
	}
	if snap.Change() != 5 {
		t.Errorf("expected change 5, got %v", snap.Change())
	}
	if snap.Volume != 25000*1000 {
		t.Errorf("expected lot volume converted to %v shares, got %v", 25000*1000, snap.Volume)
	}
	if snap.Degraded {
		t.Error("complete official record must not be degraded")
	}
	for _, field := range []string{models.FieldCurrent, models.FieldPrevClose, models.FieldOpen, models.FieldHigh, models.FieldLow, models.FieldVolume} {
		if src := snap.Sources[field]; src != models.SourceOfficial {
			t.Errorf("field %s: expected official source, got %s", field, src)
		}
	}
}

func TestBuild_SentinelFallsThrough(t *testing.T) {
	in := baseInputs(t)
	// "-" sentinels parse to nil; zero price is equally invalid.
	in.Official = &models.MRawQuote{
		Symbol:    "2330.TW",
		Last:      nil,
		PrevClose: models.Float(0),
	}
	in.Quote = &models.MRawQuote{
		Last:      models.Float(904),
		PrevClose: models.Float(899),
	}

	snap, err := Build(in)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if snap.Current != 904 || snap.Sources[models.FieldCurrent] != models.SourceQuote {
		t.Errorf("expected current from quote fallback, got %v from %s", snap.Current, snap.Sources[models.FieldCurrent])
	}
	if snap.PrevClose != 899 || snap.Sources[models.FieldPrevClose] != models.SourceQuote {
		t.Errorf("expected prev close from quote fallback, got %v from %s", snap.PrevClose, snap.Sources[models.FieldPrevClose])
	}
}

func TestBuild_NonFiniteRejected(t *testing.T) {
	in := baseInputs(t)
	in.Official = &models.MRawQuote{
		Last: models.Float(math.NaN()),
	}
	in.Quote = &models.MRawQuote{
		Last:      models.Float(math.Inf(1)),
		PrevClose: models.Float(100),
	}

	snap, err := Build(in)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	// Both quote sources invalid for current; previous close carries it.
	if snap.Sources[models.FieldCurrent] != models.SourceDegenerate {
		t.Errorf("expected degenerate current, got %s", snap.Sources[models.FieldCurrent])
	}
	if snap.Current != 100 {
		t.Errorf("expected current equal to prev close, got %v", snap.Current)
	}
	if !snap.Degraded {
		t.Error("expected degraded snapshot")
	}
}

func TestBuild_PrevCloseByDateNotPosition(t *testing.T) {
	loc, _ := time.LoadLocation("Asia/Taipei")
	yesterday := time.Date(2024, 6, 10, 0, 0, 0, 0, loc).Unix()
	today := time.Date(2024, 6, 11, 0, 0, 0, 0, loc).Unix()

	in := baseInputs(t)
	in.Quote = &models.MRawQuote{Last: models.Float(105)}
	// Daily history already contains today's partial bar. Prev close must be
	// the latest bar dated before the trading day, not "second to last".
	in.Daily = models.MBarSeries{
		{Timestamp: yesterday, Open: 99, High: 101, Low: 98, Close: 100, Volume: 1000},
		{Timestamp: today, Open: 101, High: 106, Low: 101, Close: 105, Volume: 500},
	}

	snap, err := Build(in)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if snap.PrevClose != 100 {
		t.Errorf("expected prev close 100 from yesterday's bar, got %v", snap.PrevClose)
	}
	if snap.Sources[models.FieldPrevClose] != models.SourceDaily {
		t.Errorf("expected daily source, got %s", snap.Sources[models.FieldPrevClose])
	}
}

func TestBuild_PrevCloseMissingWhenOnlyTodayExists(t *testing.T) {
	loc, _ := time.LoadLocation("Asia/Taipei")
	today := time.Date(2024, 6, 11, 0, 0, 0, 0, loc).Unix()

	in := baseInputs(t)
	in.Quote = &models.MRawQuote{Last: models.Float(105), Open: models.Float(101)}
	in.Intraday = models.MBarSeries{
		{Timestamp: today + 9*3600, Open: 101, High: 106, Low: 101, Close: 105, Volume: 500},
	}
	in.Daily = models.MBarSeries{
		{Timestamp: today, Open: 101, High: 106, Low: 101, Close: 105, Volume: 500},
	}

	snap, err := Build(in)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	// No bar dated before the trading day: last resort is the day's open.
	if snap.Sources[models.FieldPrevClose] != models.SourceOpenPrice {
		t.Errorf("expected open fallback, got %s", snap.Sources[models.FieldPrevClose])
	}
	if snap.PrevClose != 101 {
		t.Errorf("expected prev close 101 (open), got %v", snap.PrevClose)
	}
	if !snap.Degraded {
		t.Error("open fallback must mark the snapshot degraded")
	}
}

func TestBuild_IntradayAggregatesOHLV(t *testing.T) {
	in := baseInputs(t)
	in.Quote = &models.MRawQuote{Last: models.Float(106), PrevClose: models.Float(100)}
	in.Intraday = models.MBarSeries{
		{Timestamp: 1, Open: 101, High: 103, Low: 100.5, Close: 102, Volume: 300},
		{Timestamp: 2, Open: 102, High: 107, Low: 101, Close: 106, Volume: 200},
	}

	snap, err := Build(in)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if snap.Open != 101 {
		t.Errorf("expected open 101 (first bar), got %v", snap.Open)
	}
	if snap.High != 107 {
		t.Errorf("expected high 107 (max of bars), got %v", snap.High)
	}
	if snap.Low != 100.5 {
		t.Errorf("expected low 100.5 (min of bars), got %v", snap.Low)
	}
	if snap.Volume != 500 {
		t.Errorf("expected summed bar volume 500, got %v", snap.Volume)
	}
	if snap.Sources[models.FieldVolume] != models.SourceIntraday {
		t.Errorf("expected intraday volume source, got %s", snap.Sources[models.FieldVolume])
	}
}

func TestBuild_CutoffExcludesAuctionBar(t *testing.T) {
	loc, _ := time.LoadLocation("Asia/Taipei")
	day := time.Date(2024, 6, 11, 0, 0, 0, 0, loc)
	cutoff := day.Add(13*time.Hour + 35*time.Minute)

	series := models.MBarSeries{
		{Timestamp: day.Add(9 * time.Hour).Unix(), Open: 101, High: 103, Low: 100, Close: 102, Volume: 300},
		{Timestamp: day.Add(13*time.Hour + 25*time.Minute).Unix(), Open: 102, High: 104, Low: 102, Close: 104, Volume: 200},
		// Post-close fixed-price auction trade; spikes high to 120.
		{Timestamp: day.Add(14 * time.Hour).Unix(), Open: 120, High: 120, Low: 120, Close: 120, Volume: 50},
	}

	in := baseInputs(t)
	in.Quote = &models.MRawQuote{Last: models.Float(104), PrevClose: models.Float(100)}
	in.Intraday = series.FilterBefore(cutoff.Unix())

	snap, err := Build(in)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if snap.High != 104 {
		t.Errorf("auction bar leaked into high: expected 104, got %v", snap.High)
	}
	if snap.Volume != 500 {
		t.Errorf("auction bar leaked into volume: expected 500, got %v", snap.Volume)
	}
}

func TestBuild_ZeroVolumeIsRealData(t *testing.T) {
	in := baseInputs(t)
	in.Official = &models.MRawQuote{
		Last:       models.Float(50),
		PrevClose:  models.Float(50),
		Volume:     models.Float(0),
		VolumeUnit: models.UnitLots,
	}

	snap, err := Build(in)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if snap.Volume != 0 {
		t.Errorf("expected zero volume, got %v", snap.Volume)
	}
	if snap.Sources[models.FieldVolume] != models.SourceOfficial {
		t.Errorf("zero volume must come from official, got %s", snap.Sources[models.FieldVolume])
	}
}

func TestBuild_DegenerateSinglePoint(t *testing.T) {
	in := baseInputs(t)
	// Only a last price; no OHLC anywhere.
	in.Quote = &models.MRawQuote{Last: models.Float(77), PrevClose: models.Float(75)}

	snap, err := Build(in)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if snap.Open != 77 || snap.High != 77 || snap.Low != 77 {
		t.Errorf("expected degenerate OHLC collapsed to current, got O=%v H=%v L=%v", snap.Open, snap.High, snap.Low)
	}
	if snap.Sources[models.FieldHigh] != models.SourceDegenerate {
		t.Errorf("expected degenerate high source, got %s", snap.Sources[models.FieldHigh])
	}
	if snap.Volume != 0 || snap.Sources[models.FieldVolume] != models.SourceDegenerate {
		t.Errorf("expected degenerate zero volume, got %v from %s", snap.Volume, snap.Sources[models.FieldVolume])
	}
}

func TestBuild_TotalExhaustionFails(t *testing.T) {
	in := baseInputs(t)

	if _, err := Build(in); err != ErrUnavailable {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestBuild_ShareVolumeNotConverted(t *testing.T) {
	in := baseInputs(t)
	in.Quote = &models.MRawQuote{
		Last:       models.Float(250),
		PrevClose:  models.Float(245),
		Volume:     models.Float(1_000_000),
		VolumeUnit: models.UnitShares,
	}

	snap, err := Build(in)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if snap.Volume != 1_000_000 {
		t.Errorf("share-denominated volume must pass through unscaled, got %v", snap.Volume)
	}
}
