package storage

import (
	"database/sql"
	"fmt"
	"time"

	"quote-board/src/helpers"
	"quote-board/src/logger"
	"quote-board/src/models"

	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------
// SQLiteRecorder
//
// Append-only history of reconciled snapshots. The table survives restarts;
// rows are never rewritten.
// -----------------------------------------------------------------------------

type SQLiteRecorder struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewSQLiteRecorder(cfg *models.MConfig, log *logger.Logger) (*SQLiteRecorder, error) {
	return &SQLiteRecorder{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteRecorder) Initialize() error {
	dsn := d.Config.Storage.DBPath

	// Open DB
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return helpers.NewDatabaseError("sqlite open", err)
	}

	if err := helpers.RetryWithBackoff(d.Logger, "sqlite ping", 3, 500*time.Millisecond, db.Ping); err != nil {
		return helpers.NewDatabaseError("sqlite ping", err)
	}

	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	return d.createTables()
}

// -----------------------------------------------------------------------------

func (d *SQLiteRecorder) createTables() error {
	// SQLite types: INTEGER for int64, REAL for float64, TEXT for string
	query := `
		CREATE TABLE IF NOT EXISTS snapshots (
			symbol TEXT NOT NULL,
			market TEXT NOT NULL,
			trading_day TEXT NOT NULL,
			current REAL,
			prev_close REAL,
			open REAL,
			high REAL,
			low REAL,
			volume REAL,
			vwap REAL,
			turnover REAL,
			amplitude_pct REAL,
			change_pct REAL,
			relative_pct REAL,
			degraded INTEGER NOT NULL DEFAULT 0,
			fetched_at INTEGER NOT NULL,
			created_at INTEGER NOT NULL
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create snapshots: %w", err)
	}

	if _, err := d.DB.Exec(`CREATE INDEX IF NOT EXISTS idx_snapshots_symbol_day ON snapshots (symbol, trading_day)`); err != nil {
		return fmt.Errorf("failed to create snapshots index: %w", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteRecorder) RecordSnapshot(snap *models.MSnapshot, metrics *models.MDerivedMetrics) error {
	if d.DB == nil {
		return fmt.Errorf("recorder not initialized")
	}

	_, err := d.DB.Exec(`
		INSERT INTO snapshots (
			symbol, market, trading_day,
			current, prev_close, open, high, low, volume,
			vwap, turnover, amplitude_pct, change_pct, relative_pct,
			degraded, fetched_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		snap.Symbol, snap.Market, snap.TradingDay,
		snap.Current, snap.PrevClose, snap.Open, snap.High, snap.Low, snap.Volume,
		metrics.VWAP, metrics.Turnover, metrics.AmplitudePct, metrics.ChangePct, metrics.RelativePct,
		snap.Degraded, snap.FetchedAt, time.Now().UTC().Unix(),
	)
	return err
}

// -----------------------------------------------------------------------------

func (d *SQLiteRecorder) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
