package portfolio

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"QuoteFolio/internal/model"
)

// ErrNotPositiveDefinite marks a covariance matrix that cannot be Cholesky
// factorized. This is a legitimate terminal condition, reached when the
// asset count exceeds the observation count or returns are perfectly
// collinear.
var ErrNotPositiveDefinite = errors.New("covariance matrix is not positive definite")

// jointCloses aligns all assets' close prices onto the union of their dates,
// forward-fills each column, and keeps only rows where every asset has an
// observation. Rows come back in ascending date order as (dates x assets).
func (p *Portfolio) jointCloses(tickers []string) ([]time.Time, [][]float64, error) {
	n := len(tickers)
	dateSet := make(map[time.Time]struct{})
	byDate := make([]map[time.Time]float64, n)
	starts := make([]time.Time, n)
	ends := make([]time.Time, n)
	for i, ticker := range tickers {
		s := p.assets[ticker]
		closes, ok := s.Table().Column(model.ColClose)
		if !ok || s.Len() == 0 {
			return nil, nil, &PreconditionError{Portfolio: p.name, Check: fmt.Sprintf("asset %s has no close prices", ticker)}
		}
		starts[i], _ = s.StartDate()
		ends[i], _ = s.EndDate()
		byDate[i] = make(map[time.Time]float64, len(closes))
		for j, d := range s.Table().Dates() {
			dateSet[d] = struct{}{}
			byDate[i][d] = closes[j]
		}
	}
	dates := make([]time.Time, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	// Forward fill, bounded to each asset's own observed range so a date is
	// only "covered" between an asset's first and last observation.
	cols := make([][]float64, n)
	for i := 0; i < n; i++ {
		col := make([]float64, len(dates))
		last := model.Missing()
		for j, d := range dates {
			if v, ok := byDate[i][d]; ok && !model.IsMissing(v) {
				last = v
			}
			if d.Before(starts[i]) || d.After(ends[i]) {
				col[j] = model.Missing()
			} else {
				col[j] = last
			}
		}
		cols[i] = col
	}

	// Inner restriction: only dates covered by every asset participate.
	var keptDates []time.Time
	var rows [][]float64
	for j := range dates {
		complete := true
		row := make([]float64, n)
		for i := 0; i < n; i++ {
			row[i] = cols[i][j]
			if model.IsMissing(row[i]) {
				complete = false
				break
			}
		}
		if complete {
			keptDates = append(keptDates, dates[j])
			rows = append(rows, row)
		}
	}
	return keptDates, rows, nil
}

// jointLogReturns converts an aligned price matrix into per-day log-returns,
// dropping any day where a ratio is not finite.
func jointLogReturns(rows [][]float64) [][]float64 {
	var out [][]float64
	for t := 1; t < len(rows); t++ {
		ret := make([]float64, len(rows[t]))
		finite := true
		for i := range ret {
			prev, cur := rows[t-1][i], rows[t][i]
			if prev <= 0 || cur <= 0 {
				finite = false
				break
			}
			ret[i] = math.Log(cur / prev)
		}
		if finite {
			out = append(out, ret)
		}
	}
	return out
}

// RunMonteCarlo simulates pathCount trajectories of the weighted portfolio
// value over horizonDays. Cross-asset correlation is injected by
// transforming independent standard-normal shock vectors with the Cholesky
// factor of the sample covariance of joint log-returns; each asset then
// follows the same drift-adjusted exponential step as the single-asset
// model. Weights are fixed for the whole horizon.
func (p *Portfolio) RunMonteCarlo(horizonDays, pathCount int) (*model.SimulationResult, error) {
	if horizonDays < 1 || pathCount < 1 {
		return nil, &PreconditionError{Portfolio: p.name, Check: "horizon and path count must be positive"}
	}
	tickers := p.Tickers()
	if len(tickers) == 0 {
		return nil, &PreconditionError{Portfolio: p.name, Check: "no assets"}
	}
	if p.weights == nil {
		return nil, &PreconditionError{Portfolio: p.name, Check: "no weights assigned"}
	}
	weights := make([]float64, len(tickers))
	for i, ticker := range tickers {
		w, ok := p.weights[ticker]
		if !ok {
			return nil, &PreconditionError{Portfolio: p.name, Check: fmt.Sprintf("missing weight for %s", ticker)}
		}
		weights[i] = w
	}

	_, joint, err := p.jointCloses(tickers)
	if err != nil {
		return nil, err
	}
	returns := jointLogReturns(joint)
	if len(returns) < 2 {
		return nil, &PreconditionError{Portfolio: p.name, Check: "not enough joint log-return observations"}
	}

	n := len(tickers)
	m := len(returns)
	flat := make([]float64, m*n)
	for t, row := range returns {
		copy(flat[t*n:], row)
	}
	obs := mat.NewDense(m, n, flat)

	mu := make([]float64, n)
	for i := 0; i < n; i++ {
		mu[i] = stat.Mean(mat.Col(nil, i, obs), nil)
	}
	cov := mat.NewSymDense(n, nil)
	stat.CovarianceMatrix(cov, obs, nil)

	var chol mat.Cholesky
	if ok := chol.Factorize(cov); !ok {
		return nil, fmt.Errorf("portfolio %s: %w", p.name, ErrNotPositiveDefinite)
	}
	var lower mat.TriDense
	chol.LTo(&lower)

	anchors := joint[len(joint)-1]

	paths := make([][]float64, horizonDays+1)
	for t := range paths {
		paths[t] = make([]float64, pathCount)
	}
	normal := distuv.Normal{Mu: 0, Sigma: 1}
	drift := make([]float64, n)
	for i := 0; i < n; i++ {
		drift[i] = mu[i] - 0.5*cov.At(i, i)
	}

	z := make([]float64, n)
	prices := make([]float64, n)
	for path := 0; path < pathCount; path++ {
		copy(prices, anchors)
		paths[0][path] = weightedSum(weights, prices)
		for t := 1; t <= horizonDays; t++ {
			for i := range z {
				z[i] = normal.Rand()
			}
			for i := 0; i < n; i++ {
				shock := 0.0
				for j := 0; j <= i; j++ {
					shock += lower.At(i, j) * z[j]
				}
				prices[i] *= math.Exp(drift[i] + shock)
			}
			paths[t][path] = weightedSum(weights, prices)
		}
	}

	portDrift := weightedSum(weights, mu)
	portVar := 0.0
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			portVar += weights[i] * weights[j] * cov.At(i, j)
		}
	}

	p.log.Debug().
		Int("assets", n).
		Int("observations", m).
		Int("horizon_days", horizonDays).
		Int("path_count", pathCount).
		Msg("correlated monte carlo run complete")

	return &model.SimulationResult{
		Paths:      paths,
		Anchor:     weightedSum(weights, anchors),
		Drift:      portDrift,
		Volatility: math.Sqrt(portVar),
	}, nil
}

func weightedSum(weights, values []float64) float64 {
	sum := 0.0
	for i := range weights {
		sum += weights[i] * values[i]
	}
	return sum
}
