package storage

import (
	"testing"

	"quote-board/src/logger"
	"quote-board/src/models"
)

func newMemoryRecorder(t *testing.T) *SQLiteRecorder {
	t.Helper()

	cfg := &models.MConfig{
		Storage: models.MStorageConfig{
			DBType: "sqlite",
			DBPath: ":memory:",
		},
	}
	rec, err := NewSQLiteRecorder(cfg, logger.NewLogger("test"))
	if err != nil {
		t.Fatalf("NewSQLiteRecorder: %v", err)
	}
	if err := rec.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	t.Cleanup(func() { rec.Close() })
	return rec
}

func TestSQLiteRecorder_RecordSnapshot(t *testing.T) {
	rec := newMemoryRecorder(t)

	snap := &models.MSnapshot{
		Symbol:     "2330.TW",
		Market:     "TW",
		TradingDay: "2024-06-11",
		Current:    905,
		PrevClose:  900,
		Open:       902,
		High:       910,
		Low:        898,
		Volume:     25_000_000,
		FetchedAt:  1718080200,
	}
	metrics := &models.MDerivedMetrics{
		VWAP:         904.2,
		Turnover:     904.2 * 25_000_000,
		AmplitudePct: 1.33,
		ChangePct:    0.56,
	}

	if err := rec.RecordSnapshot(snap, metrics); err != nil {
		t.Fatalf("RecordSnapshot: %v", err)
	}

	var count int
	row := rec.DB.QueryRow(`SELECT COUNT(*) FROM snapshots WHERE symbol = ? AND trading_day = ?`, "2330.TW", "2024-06-11")
	if err := row.Scan(&count); err != nil {
		t.Fatalf("count query: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 recorded snapshot, got %d", count)
	}

	// Rows append across cycles; nothing is rewritten.
	if err := rec.RecordSnapshot(snap, metrics); err != nil {
		t.Fatalf("second RecordSnapshot: %v", err)
	}
	row = rec.DB.QueryRow(`SELECT COUNT(*) FROM snapshots`)
	if err := row.Scan(&count); err != nil {
		t.Fatalf("count query: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 rows after second record, got %d", count)
	}
}

func TestSQLiteRecorder_NullableRelative(t *testing.T) {
	rec := newMemoryRecorder(t)

	snap := &models.MSnapshot{Symbol: "0050.TW", Market: "TW", TradingDay: "2024-06-11"}
	rel := 1.5
	with := &models.MDerivedMetrics{RelativePct: &rel}
	without := &models.MDerivedMetrics{}

	if err := rec.RecordSnapshot(snap, with); err != nil {
		t.Fatalf("RecordSnapshot with relative: %v", err)
	}
	if err := rec.RecordSnapshot(snap, without); err != nil {
		t.Fatalf("RecordSnapshot without relative: %v", err)
	}

	var nulls int
	row := rec.DB.QueryRow(`SELECT COUNT(*) FROM snapshots WHERE relative_pct IS NULL`)
	if err := row.Scan(&nulls); err != nil {
		t.Fatalf("null query: %v", err)
	}
	if nulls != 1 {
		t.Errorf("expected 1 NULL relative_pct row, got %d", nulls)
	}
}

func TestRecordSnapshot_NotInitialized(t *testing.T) {
	rec := &SQLiteRecorder{}
	if err := rec.RecordSnapshot(&models.MSnapshot{}, &models.MDerivedMetrics{}); err == nil {
		t.Fatal("expected error before Initialize")
	}
}
