package recorder

import "QuoteFolio/internal/model"

// NoopRecorder discards everything. Used when no database is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordBars(*model.Table) error                         { return nil }
func (n *NoopRecorder) RecordSimulation(string, *model.SimulationResult) error { return nil }
func (n *NoopRecorder) Close() error                                          { return nil }
