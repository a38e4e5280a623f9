package twse

import (
	"context"
	"testing"
)

func TestExChannel(t *testing.T) {
	tests := []struct {
		symbol string
		want   string
		ok     bool
	}{
		{"2330.TW", "tse_2330.tw", true},
		{"0050.TW", "tse_0050.tw", true},
		{"^TWII", "tse_t00.tw", true},
		{"6488.TWO", "otc_6488.tw", true},
		{"AAPL", "", false},
		{"^GSPC", "", false},
	}

	for _, tt := range tests {
		got, ok := exChannel(tt.symbol)
		if ok != tt.ok || got != tt.want {
			t.Errorf("exChannel(%q) = %q, %v; want %q, %v", tt.symbol, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseField(t *testing.T) {
	if v := parseField("905.0000"); v == nil || *v != 905 {
		t.Errorf("expected 905, got %v", v)
	}
	if v := parseField("-"); v != nil {
		t.Errorf("sentinel must parse to absent, got %v", *v)
	}
	if v := parseField(""); v != nil {
		t.Errorf("empty must parse to absent, got %v", *v)
	}
	if v := parseField("n/a"); v != nil {
		t.Errorf("garbage must parse to absent, got %v", *v)
	}
	if v := parseField(" 12.5 "); v == nil || *v != 12.5 {
		t.Errorf("expected trimmed 12.5, got %v", v)
	}
}

type fakeNetwork struct {
	body []byte
	err  error
	url  string
}

func (f *fakeNetwork) Get(_ context.Context, url string, _ map[string]string) ([]byte, error) {
	f.url = url
	return f.body, f.err
}

func TestFetchQuote_ParsesPayload(t *testing.T) {
	payload := `{
		"msgArray": [{
			"c": "2330",
			"z": "905.0000",
			"y": "900.0000",
			"o": "902.0000",
			"h": "910.0000",
			"l": "-",
			"v": "25123",
			"tlong": "1718080200000"
		}],
		"rtmessage": "OK"
	}`

	src := NewOfficialSource(&fakeNetwork{body: []byte(payload)})

	q, err := src.FetchQuote(context.Background(), "2330.TW")
	if err != nil {
		t.Fatalf("FetchQuote: %v", err)
	}

	if q.Last == nil || *q.Last != 905 {
		t.Errorf("expected last 905, got %v", q.Last)
	}
	if q.PrevClose == nil || *q.PrevClose != 900 {
		t.Errorf("expected prev close 900, got %v", q.PrevClose)
	}
	if q.Low != nil {
		t.Errorf("sentinel low must be absent, got %v", *q.Low)
	}
	if q.VolumeUnit != "lots" {
		t.Errorf("volume unit must be lots, got %q", q.VolumeUnit)
	}
	if q.Timestamp != 1718080200 {
		t.Errorf("expected unix seconds 1718080200, got %d", q.Timestamp)
	}
	if q.Currency != "TWD" {
		t.Errorf("expected TWD, got %q", q.Currency)
	}
}

func TestFetchQuote_RejectsForeignSymbol(t *testing.T) {
	src := NewOfficialSource(&fakeNetwork{})

	if _, err := src.FetchQuote(context.Background(), "AAPL"); err == nil {
		t.Fatal("expected error for non-Taiwan symbol")
	}
}

func TestFetchQuote_EmptyMsgArray(t *testing.T) {
	src := NewOfficialSource(&fakeNetwork{body: []byte(`{"msgArray": [], "rtmessage": "no data"}`)})

	if _, err := src.FetchQuote(context.Background(), "9999.TW"); err == nil {
		t.Fatal("expected error for empty msgArray")
	}
}
