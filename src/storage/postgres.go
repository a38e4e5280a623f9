package storage

import (
	"database/sql"
	"fmt"
	"time"

	"quote-board/src/helpers"
	"quote-board/src/logger"
	"quote-board/src/models"

	_ "github.com/lib/pq"
)

// -----------------------------------------------------------------------------
// PostgresRecorder
// -----------------------------------------------------------------------------

type PostgresRecorder struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewPostgresRecorder(cfg *models.MConfig, log *logger.Logger) (*PostgresRecorder, error) {
	return &PostgresRecorder{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresRecorder) Initialize() error {
	dsn := d.Config.Storage.DBConnectionString
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return helpers.NewDatabaseError("postgres open", err)
	}

	if err := helpers.RetryWithBackoff(d.Logger, "postgres ping", 3, time.Second, db.Ping); err != nil {
		return helpers.NewDatabaseError("postgres ping", err)
	}

	d.DB = db

	if err := d.createTables(); err != nil {
		return err
	}

	d.Logger.Info("PostgresRecorder initialized successfully")
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresRecorder) createTables() error {
	query := `
		CREATE TABLE IF NOT EXISTS snapshots (
			symbol TEXT NOT NULL,
			market TEXT NOT NULL,
			trading_day TEXT NOT NULL,
			current DOUBLE PRECISION,
			prev_close DOUBLE PRECISION,
			open DOUBLE PRECISION,
			high DOUBLE PRECISION,
			low DOUBLE PRECISION,
			volume DOUBLE PRECISION,
			vwap DOUBLE PRECISION,
			turnover DOUBLE PRECISION,
			amplitude_pct DOUBLE PRECISION,
			change_pct DOUBLE PRECISION,
			relative_pct DOUBLE PRECISION,
			degraded BOOLEAN NOT NULL DEFAULT FALSE,
			fetched_at BIGINT NOT NULL,
			created_at BIGINT NOT NULL
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

func (d *PostgresRecorder) RecordSnapshot(snap *models.MSnapshot, metrics *models.MDerivedMetrics) error {
	if d.DB == nil {
		return fmt.Errorf("recorder not initialized")
	}

	_, err := d.DB.Exec(`
		INSERT INTO snapshots (
			symbol, market, trading_day,
			current, prev_close, open, high, low, volume,
			vwap, turnover, amplitude_pct, change_pct, relative_pct,
			degraded, fetched_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`,
		snap.Symbol, snap.Market, snap.TradingDay,
		snap.Current, snap.PrevClose, snap.Open, snap.High, snap.Low, snap.Volume,
		metrics.VWAP, metrics.Turnover, metrics.AmplitudePct, metrics.ChangePct, metrics.RelativePct,
		snap.Degraded, snap.FetchedAt, time.Now().UTC().Unix(),
	)
	return err
}

// -----------------------------------------------------------------------------

func (d *PostgresRecorder) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
