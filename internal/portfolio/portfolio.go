// Package portfolio aggregates per-instrument series, aligns them onto a
// common time axis, and runs correlated multi-asset Monte Carlo simulation.
package portfolio

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"QuoteFolio/internal/series"
)

// weightTolerance is the absolute tolerance under which a raw weight sum is
// considered already normalized.
const weightTolerance = 1e-9

// PreconditionError reports an expected precondition failure for a named
// portfolio.
type PreconditionError struct {
	Portfolio string
	Check     string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("portfolio %s: %s", e.Portfolio, e.Check)
}

// Portfolio owns a mapping from ticker to Series plus an optional weight
// assignment. It is populated by repeated Add calls.
type Portfolio struct {
	name    string
	assets  map[string]*series.Series
	weights map[string]float64
	log     zerolog.Logger
}

// New creates an empty portfolio.
func New(name string, log zerolog.Logger) *Portfolio {
	return &Portfolio{
		name:   name,
		assets: make(map[string]*series.Series),
		log:    log.With().Str("component", "portfolio").Str("portfolio", name).Logger(),
	}
}

// Name returns the portfolio identity used in reports and errors.
func (p *Portfolio) Name() string { return p.name }

// Len returns the number of assets.
func (p *Portfolio) Len() int { return len(p.assets) }

// Tickers returns the asset tickers in sorted order.
func (p *Portfolio) Tickers() []string {
	out := make([]string, 0, len(p.assets))
	for t := range p.assets {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Asset returns the series stored under a ticker.
func (p *Portfolio) Asset(ticker string) (*series.Series, bool) {
	s, ok := p.assets[ticker]
	return s, ok
}

// Add inserts a series, overwriting any existing asset with the same ticker.
// A nil or ticker-less series is rejected with a diagnostic and no change.
func (p *Portfolio) Add(s *series.Series) {
	if s == nil || s.Ticker() == "" {
		p.log.Warn().Msg("rejected asset: not a well-formed series")
		return
	}
	p.assets[s.Ticker()] = s
	p.log.Info().Str("ticker", s.Ticker()).Int("rows", s.Len()).Msg("asset added")
}

// SetWeights assigns weights as given. Programmatic assignments are not
// re-normalized; RunMonteCarlo still requires a weight per asset.
func (p *Portfolio) SetWeights(w map[string]float64) {
	if w == nil {
		p.weights = nil
		return
	}
	p.weights = make(map[string]float64, len(w))
	for k, v := range w {
		p.weights[k] = v
	}
}

// Weights returns a copy of the current weight assignment, or nil.
func (p *Portfolio) Weights() map[string]float64 {
	if p.weights == nil {
		return nil
	}
	out := make(map[string]float64, len(p.weights))
	for k, v := range p.weights {
		out[k] = v
	}
	return out
}

// ParseWeights parses a comma-separated weight list for the given tickers.
// The count must match the ticker count; a parsed sum that is positive and
// not already ~1 is normalized to sum to 1. On any parse error or count
// mismatch the result falls back to equal weights.
func ParseWeights(input string, tickers []string, log zerolog.Logger) map[string]float64 {
	if len(tickers) == 0 {
		return map[string]float64{}
	}
	equal := func() map[string]float64 {
		out := make(map[string]float64, len(tickers))
		for _, t := range tickers {
			out[t] = 1.0 / float64(len(tickers))
		}
		return out
	}

	parts := strings.Split(input, ",")
	if len(parts) != len(tickers) {
		log.Warn().Int("want", len(tickers)).Int("got", len(parts)).Msg("weight count mismatch, using equal weights")
		return equal()
	}
	vals := make([]float64, len(parts))
	sum := 0.0
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			log.Warn().Str("value", part).Msg("unparseable weight, using equal weights")
			return equal()
		}
		vals[i] = v
		sum += v
	}
	if sum <= 0 {
		log.Warn().Float64("sum", sum).Msg("non-positive weight sum, using equal weights")
		return equal()
	}
	if math.Abs(sum-1) > weightTolerance {
		for i := range vals {
			vals[i] /= sum
		}
	}
	out := make(map[string]float64, len(tickers))
	for i, t := range tickers {
		out[t] = vals[i]
	}
	return out
}
