// Package series wraps one instrument's canonical table: derived statistics,
// cleaning transforms, and single-asset Monte Carlo simulation.
package series

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"QuoteFolio/internal/model"
)

// FillForward is the carry-last-observation-forward fill strategy. It is the
// default and the only supported strategy.
const FillForward = "ffill"

// DomainError reports an expected, caller-actionable precondition failure,
// identifying the instrument and the check that failed.
type DomainError struct {
	Ticker string
	Check  string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("series %s: %s", e.Ticker, e.Check)
}

// Extremes holds the minimum and maximum of the primary column together with
// the dates at which they first occur.
type Extremes struct {
	MinValue float64
	MinDate  time.Time
	MaxValue float64
	MaxDate  time.Time
}

// Series owns exactly one canonical table. Cleaning calls mutate the table in
// place and rebuild the derived attributes before returning, so callers never
// observe stale statistics.
type Series struct {
	table *model.Table
	log   zerolog.Logger

	start, end time.Time
	hasRange   bool
	primary    string
	mean       float64
	stdDev     float64
}

// New creates a Series over an already-normalized table.
func New(table *model.Table, log zerolog.Logger) *Series {
	s := &Series{
		table: table,
		log:   log.With().Str("component", "series").Str("ticker", table.Ticker).Logger(),
	}
	s.refresh()
	return s
}

func (s *Series) Ticker() string      { return s.table.Ticker }
func (s *Series) Source() string      { return s.table.Source }
func (s *Series) Len() int            { return s.table.Len() }
func (s *Series) Table() *model.Table { return s.table }

// Primary returns the primary value column: close when present, else the
// indicator column, else false.
func (s *Series) Primary() (string, bool) { return s.primary, s.primary != "" }

// Mean returns the mean of the primary column over observed values.
func (s *Series) Mean() float64 { return s.mean }

// StdDev returns the sample standard deviation of the primary column.
func (s *Series) StdDev() float64 { return s.stdDev }

// StartDate returns the earliest date, or false for an empty series.
func (s *Series) StartDate() (time.Time, bool) { return s.start, s.hasRange }

// EndDate returns the latest date, or false for an empty series.
func (s *Series) EndDate() (time.Time, bool) { return s.end, s.hasRange }

// refresh rebuilds every derived attribute from the current table contents.
// Each mutating operation calls it last, which keeps the derived state
// mechanically consistent with the table.
func (s *Series) refresh() {
	s.hasRange = false
	s.primary = ""
	s.mean = model.Missing()
	s.stdDev = model.Missing()
	if s.table.IsEmpty() {
		return
	}
	s.start, _ = s.table.Start()
	s.end, _ = s.table.End()
	s.hasRange = true

	// Explicit precedence: close wins over the indicator column.
	if s.table.HasColumn(model.ColClose) {
		s.primary = model.ColClose
	} else if s.table.HasColumn(model.ColRSI) {
		s.primary = model.ColRSI
	}
	if s.primary == "" {
		return
	}
	col, _ := s.table.Column(s.primary)
	observed := make([]float64, 0, len(col))
	for _, v := range col {
		if !model.IsMissing(v) {
			observed = append(observed, v)
		}
	}
	if len(observed) == 0 {
		return
	}
	s.mean = stat.Mean(observed, nil)
	s.stdDev = stat.StdDev(observed, nil)
}

// DailyReturns computes the period-over-period percentage change of a
// column. The first entry is always the missing sentinel. An absent column
// is a warning, not an error: the method returns nil.
func (s *Series) DailyReturns(column string) []float64 {
	col, ok := s.table.Column(column)
	if !ok {
		s.log.Warn().Str("column", column).Msg("column not found for daily returns")
		return nil
	}
	out := make([]float64, len(col))
	if len(out) == 0 {
		return out
	}
	out[0] = model.Missing()
	for i := 1; i < len(col); i++ {
		prev, cur := col[i-1], col[i]
		if model.IsMissing(prev) || model.IsMissing(cur) || prev == 0 {
			out[i] = model.Missing()
			continue
		}
		out[i] = (cur - prev) / prev
	}
	return out
}

// MovingAverage computes the trailing simple moving average of the primary
// column. Positions before the window fills hold the missing sentinel. When
// the table has fewer rows than the window, the operation declines and
// returns nil.
func (s *Series) MovingAverage(window int) []float64 {
	if window <= 0 {
		s.log.Warn().Int("window", window).Msg("moving average window must be positive")
		return nil
	}
	if s.primary == "" {
		s.log.Warn().Msg("no primary column for moving average")
		return nil
	}
	col, _ := s.table.Column(s.primary)
	if len(col) < window {
		s.log.Warn().Int("rows", len(col)).Int("window", window).Msg("not enough rows for moving average")
		return nil
	}
	out := make([]float64, len(col))
	for i := range out {
		if i < window-1 {
			out[i] = model.Missing()
			continue
		}
		sum := 0.0
		missing := false
		for j := i - window + 1; j <= i; j++ {
			if model.IsMissing(col[j]) {
				missing = true
				break
			}
			sum += col[j]
		}
		if missing {
			out[i] = model.Missing()
		} else {
			out[i] = sum / float64(window)
		}
	}
	return out
}

// MinMax returns the extremes of the primary column, ties resolved by first
// occurrence in ascending date order. Missing values are skipped; when no
// observed value exists it returns false.
func (s *Series) MinMax() (Extremes, bool) {
	if s.primary == "" {
		return Extremes{}, false
	}
	col, _ := s.table.Column(s.primary)
	var ext Extremes
	found := false
	for i, v := range col {
		if model.IsMissing(v) {
			continue
		}
		if !found {
			ext = Extremes{MinValue: v, MinDate: s.table.Date(i), MaxValue: v, MaxDate: s.table.Date(i)}
			found = true
			continue
		}
		if v < ext.MinValue {
			ext.MinValue = v
			ext.MinDate = s.table.Date(i)
		}
		if v > ext.MaxValue {
			ext.MaxValue = v
			ext.MaxDate = s.table.Date(i)
		}
	}
	return ext, found
}

// FillMissing forward-fills missing values across all columns in place.
func (s *Series) FillMissing(strategy string) error {
	if strategy == "" {
		strategy = FillForward
	}
	if strategy != FillForward {
		return fmt.Errorf("unsupported fill strategy %q", strategy)
	}
	for _, name := range s.table.Columns() {
		col, _ := s.table.Column(name)
		last := model.Missing()
		for i, v := range col {
			if model.IsMissing(v) {
				col[i] = last // leading gaps stay missing
			} else {
				last = v
			}
		}
	}
	s.refresh()
	return nil
}

// ResampleDaily reindexes the table onto every calendar day between its start
// and end, then forward-fills. This is the policy for weekends and holidays
// in calculations that assume a contiguous daily grid.
func (s *Series) ResampleDaily(strategy string) error {
	if strategy == "" {
		strategy = FillForward
	}
	if strategy != FillForward {
		return fmt.Errorf("unsupported fill strategy %q", strategy)
	}
	if s.table.IsEmpty() {
		return nil
	}
	old := s.table
	nt := model.NewTable(old.Ticker, old.Source, old.Columns()...)
	idx := 0
	for d := s.start; !d.After(s.end); d = d.AddDate(0, 0, 1) {
		if idx < old.Len() && old.Date(idx).Equal(d) {
			vals := make(map[string]float64, len(old.Columns()))
			for _, name := range old.Columns() {
				vals[name] = old.Value(name, idx)
			}
			nt.Append(d, vals)
			idx++
		} else {
			nt.Append(d, nil)
		}
	}
	s.table = nt
	return s.FillMissing(strategy)
}

// ClipNonPositivePrices replaces values <= 0 in the OHLC columns with the
// missing sentinel and returns the number of values clipped. Zero and
// negative prices are data errors, not valid quotes; volume may legally be
// zero and is left alone.
func (s *Series) ClipNonPositivePrices() int {
	clipped := 0
	for _, name := range []string{model.ColOpen, model.ColHigh, model.ColLow, model.ColClose} {
		col, ok := s.table.Column(name)
		if !ok {
			continue
		}
		for i, v := range col {
			if !model.IsMissing(v) && v <= 0 {
				col[i] = model.Missing()
				clipped++
			}
		}
	}
	s.refresh()
	if clipped > 0 {
		s.log.Warn().Int("clipped", clipped).Msg("non-positive prices replaced with missing")
	}
	return clipped
}

// Summary renders a one-line description of the series.
func (s *Series) Summary() string {
	if s.table.IsEmpty() {
		return fmt.Sprintf("Series %s (%s): empty", s.table.Ticker, s.table.Source)
	}
	out := fmt.Sprintf("Series %s (%s): %s to %s, %d rows",
		s.table.Ticker, s.table.Source,
		s.start.Format("2006-01-02"), s.end.Format("2006-01-02"), s.Len())
	if s.primary != "" {
		out += fmt.Sprintf(", %s mean %.2f std %.2f", s.primary, s.mean, s.stdDev)
	}
	return out
}
