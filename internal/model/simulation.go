package model

// SimulationResult is the output of a Monte Carlo run: the simulated price
// matrix plus the scalar inputs downstream consumers need to draw
// mean/median/percentile bands without re-estimating them.
type SimulationResult struct {
	// Paths holds horizon+1 rows; row 0 is the anchor price repeated across
	// all paths, row t is the simulated price at day t for each path.
	Paths [][]float64

	Anchor     float64 // last observed price, shared by every path
	Drift      float64 // estimated mean daily log-return
	Volatility float64 // estimated daily log-return standard deviation
}

// HorizonDays returns the simulated horizon length (rows minus the anchor).
func (r *SimulationResult) HorizonDays() int {
	if len(r.Paths) == 0 {
		return 0
	}
	return len(r.Paths) - 1
}

// PathCount returns the number of simulated trajectories.
func (r *SimulationResult) PathCount() int {
	if len(r.Paths) == 0 {
		return 0
	}
	return len(r.Paths[0])
}
