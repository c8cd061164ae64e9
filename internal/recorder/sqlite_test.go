package recorder

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"QuoteFolio/internal/model"
)

func openTestRecorder(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "test.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func barTable(closePx float64) *model.Table {
	table := model.NewTable("AAPL", "alphavantage", model.OHLCVColumns...)
	table.Append(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), map[string]float64{
		model.ColOpen: 99.0, model.ColHigh: 101.0, model.ColLow: 98.5,
		model.ColClose: closePx, model.ColVolume: 82488700,
	})
	return table
}

func TestRecordBars_UpsertSameDate(t *testing.T) {
	r := openTestRecorder(t)

	require.NoError(t, r.RecordBars(barTable(100.0)))
	require.NoError(t, r.RecordBars(barTable(105.0)))

	var count int
	var closePx float64
	row := r.db.QueryRow(`SELECT COUNT(*), MAX(close) FROM bars WHERE ticker = 'AAPL'`)
	require.NoError(t, row.Scan(&count, &closePx))
	assert.Equal(t, 1, count, "re-recording the same (ticker, date) must not add a row")
	assert.InDelta(t, 105.0, closePx, 1e-9, "the newer close must win")
}

func TestRecordBars_MissingBecomesNull(t *testing.T) {
	r := openTestRecorder(t)

	table := model.NewTable("MSFT", "marketstack", model.OHLCVColumns...)
	table.Append(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), map[string]float64{
		model.ColOpen: 370.0,
	})
	require.NoError(t, r.RecordBars(table))

	var closePx sql.NullFloat64
	row := r.db.QueryRow(`SELECT close FROM bars WHERE ticker = 'MSFT'`)
	require.NoError(t, row.Scan(&closePx))
	assert.False(t, closePx.Valid, "missing sentinel must be stored as NULL")
}

func TestRecordBars_EmptyTableIsNoop(t *testing.T) {
	r := openTestRecorder(t)

	require.NoError(t, r.RecordBars(nil))
	require.NoError(t, r.RecordBars(model.NewTable("AAPL", "", model.OHLCVColumns...)))

	var count int
	require.NoError(t, r.db.QueryRow(`SELECT COUNT(*) FROM bars`).Scan(&count))
	assert.Equal(t, 0, count)
}

func TestRecordSimulation(t *testing.T) {
	r := openTestRecorder(t)

	res := &model.SimulationResult{
		Paths:      [][]float64{{100, 100}, {101, 99}},
		Anchor:     100,
		Drift:      0.001,
		Volatility: 0.02,
	}
	require.NoError(t, r.RecordSimulation("growth", res))

	var horizon, paths int
	var finalMean float64
	row := r.db.QueryRow(`SELECT horizon_days, path_count, final_mean FROM simulations WHERE portfolio = 'growth'`)
	require.NoError(t, row.Scan(&horizon, &paths, &finalMean))
	assert.Equal(t, 1, horizon)
	assert.Equal(t, 2, paths)
	assert.InDelta(t, 100.0, finalMean, 1e-9)
}

func TestRecordSimulation_EmptyResultIsNoop(t *testing.T) {
	r := openTestRecorder(t)

	require.NoError(t, r.RecordSimulation("growth", nil))
	require.NoError(t, r.RecordSimulation("growth", &model.SimulationResult{}))

	var count int
	require.NoError(t, r.db.QueryRow(`SELECT COUNT(*) FROM simulations`).Scan(&count))
	assert.Equal(t, 0, count)
}
