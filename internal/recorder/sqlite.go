package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"QuoteFolio/internal/model"
)

// SQLiteRecorder persists bars and simulation runs to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs
// migrations.
func NewSQLiteRecorder(dbPath string, log zerolog.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log.With().Str("component", "recorder").Logger()}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS bars (
			ticker   TEXT NOT NULL,
			date     INTEGER NOT NULL,
			source   TEXT,
			open     REAL,
			high     REAL,
			low      REAL,
			close    REAL,
			volume   REAL,
			PRIMARY KEY (ticker, date)
		)`,
		`CREATE TABLE IF NOT EXISTS simulations (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp    INTEGER NOT NULL,
			portfolio    TEXT NOT NULL,
			horizon_days INTEGER NOT NULL,
			path_count   INTEGER NOT NULL,
			anchor       REAL,
			drift        REAL,
			volatility   REAL,
			final_mean   REAL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// RecordBars upserts every row of the table, keyed by (ticker, date).
func (r *SQLiteRecorder) RecordBars(table *model.Table) error {
	if table == nil || table.IsEmpty() {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO bars (ticker, date, source, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(ticker, date) DO UPDATE SET
			source=excluded.source, open=excluded.open, high=excluded.high,
			low=excluded.low, close=excluded.close, volume=excluded.volume`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for i := 0; i < table.Len(); i++ {
		_, err := stmt.Exec(
			table.Ticker,
			table.Date(i).Unix(),
			table.Source,
			nullable(table.Value(model.ColOpen, i)),
			nullable(table.Value(model.ColHigh, i)),
			nullable(table.Value(model.ColLow, i)),
			nullable(table.Value(model.ColClose, i)),
			nullable(table.Value(model.ColVolume, i)),
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("insert bar: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	r.log.Debug().Str("ticker", table.Ticker).Int("rows", table.Len()).Msg("bars recorded")
	return nil
}

// RecordSimulation stores the run's scalar summary plus the mean terminal
// value across paths.
func (r *SQLiteRecorder) RecordSimulation(portfolio string, res *model.SimulationResult) error {
	if res == nil || len(res.Paths) == 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	final := res.Paths[len(res.Paths)-1]
	sum := 0.0
	for _, v := range final {
		sum += v
	}
	finalMean := sum / float64(len(final))

	_, err := r.db.Exec(`INSERT INTO simulations
		(timestamp, portfolio, horizon_days, path_count, anchor, drift, volatility, final_mean)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		time.Now().Unix(), portfolio, res.HorizonDays(), res.PathCount(),
		nullable(res.Anchor), nullable(res.Drift), nullable(res.Volatility), nullable(finalMean))
	if err != nil {
		return fmt.Errorf("insert simulation: %w", err)
	}
	return nil
}

// Close closes the database.
func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}

// nullable maps the missing sentinel to SQL NULL.
func nullable(v float64) any {
	if model.IsMissing(v) {
		return nil
	}
	return v
}
