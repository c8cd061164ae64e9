package series

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"QuoteFolio/internal/model"
)

// LogReturns computes ln(price[t]/price[t-1]) over the close column,
// skipping pairs where either side is missing or non-positive. The undefined
// first period is dropped.
func (s *Series) LogReturns() []float64 {
	col, ok := s.table.Column(model.ColClose)
	if !ok {
		return nil
	}
	out := make([]float64, 0, len(col))
	for i := 1; i < len(col); i++ {
		prev, cur := col[i-1], col[i]
		if model.IsMissing(prev) || model.IsMissing(cur) || prev <= 0 || cur <= 0 {
			continue
		}
		out = append(out, math.Log(cur/prev))
	}
	return out
}

// RunMonteCarlo simulates pathCount independent geometric Brownian motion
// trajectories of horizonDays steps, with drift and volatility estimated
// from the empirical log-returns of the close column. Every path starts at
// the last observed close. Step t multiplies the previous price by
// exp(mu - sigma^2/2 + sigma*Z) with an independent standard-normal Z per
// step per path.
func (s *Series) RunMonteCarlo(horizonDays, pathCount int) (*model.SimulationResult, error) {
	if horizonDays < 1 || pathCount < 1 {
		return nil, &DomainError{Ticker: s.Ticker(), Check: "horizon and path count must be positive"}
	}
	if s.table.IsEmpty() {
		return nil, &DomainError{Ticker: s.Ticker(), Check: "series is empty"}
	}
	if s.primary != model.ColClose {
		return nil, &DomainError{Ticker: s.Ticker(), Check: "primary column must be close"}
	}

	returns := s.LogReturns()
	if len(returns) < 2 {
		return nil, &DomainError{Ticker: s.Ticker(), Check: "not enough log-return observations"}
	}
	mu := stat.Mean(returns, nil)
	sigma := stat.StdDev(returns, nil)

	anchor := model.Missing()
	closes, _ := s.table.Column(model.ColClose)
	for i := len(closes) - 1; i >= 0; i-- {
		if !model.IsMissing(closes[i]) {
			anchor = closes[i]
			break
		}
	}

	paths := make([][]float64, horizonDays+1)
	for t := range paths {
		paths[t] = make([]float64, pathCount)
	}
	normal := distuv.Normal{Mu: 0, Sigma: 1}
	drift := mu - 0.5*sigma*sigma
	for p := 0; p < pathCount; p++ {
		price := anchor
		paths[0][p] = price
		for t := 1; t <= horizonDays; t++ {
			price *= math.Exp(drift + sigma*normal.Rand())
			paths[t][p] = price
		}
	}

	s.log.Debug().
		Int("horizon_days", horizonDays).
		Int("path_count", pathCount).
		Float64("drift", mu).
		Float64("volatility", sigma).
		Msg("monte carlo run complete")

	return &model.SimulationResult{
		Paths:      paths,
		Anchor:     anchor,
		Drift:      mu,
		Volatility: sigma,
	}, nil
}
