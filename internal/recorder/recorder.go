package recorder

import "QuoteFolio/internal/model"

// Recorder persists normalized bars and simulation summaries for later
// analysis.
type Recorder interface {
	// RecordBars upserts every row of a canonical OHLCV table.
	RecordBars(table *model.Table) error
	// RecordSimulation stores the scalar summary of a simulation run.
	RecordSimulation(portfolio string, res *model.SimulationResult) error
	Close() error
}
