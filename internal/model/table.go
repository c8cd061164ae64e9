package model

import (
	"math"
	"sort"
	"time"
)

// Canonical column names. OHLCV tables carry the five price/volume columns,
// indicator tables carry a single value column such as ColRSI.
const (
	ColOpen   = "open"
	ColHigh   = "high"
	ColLow    = "low"
	ColClose  = "close"
	ColVolume = "volume"
	ColRSI    = "rsi"
)

// OHLCVColumns is the column set of a daily-history table.
var OHLCVColumns = []string{ColOpen, ColHigh, ColLow, ColClose, ColVolume}

// Missing is the sentinel stored for absent or unparseable values.
func Missing() float64 { return math.NaN() }

// IsMissing reports whether v is the missing sentinel.
func IsMissing(v float64) bool { return math.IsNaN(v) }

// Day strips any time-of-day and timezone offset, keeping the wall-clock
// calendar date. All canonical dates are UTC midnights.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Table is a date-indexed columnar series for one instrument: unique dates in
// ascending order, one float64 slice per named column, NaN where a value is
// missing.
type Table struct {
	Ticker string
	Source string

	dates []time.Time
	order []string
	cols  map[string][]float64
}

// NewTable creates an empty table with the given column schema.
func NewTable(ticker, source string, columns ...string) *Table {
	t := &Table{
		Ticker: ticker,
		Source: source,
		order:  append([]string(nil), columns...),
		cols:   make(map[string][]float64, len(columns)),
	}
	for _, c := range columns {
		t.cols[c] = nil
	}
	return t
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.dates) }

// IsEmpty reports whether the table has no rows.
func (t *Table) IsEmpty() bool { return len(t.dates) == 0 }

// Columns returns the column names in schema order.
func (t *Table) Columns() []string { return append([]string(nil), t.order...) }

// HasColumn reports whether the table carries the named column.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.cols[name]
	return ok
}

// Column returns the backing slice of the named column. The slice is live:
// writing through it mutates the table.
func (t *Table) Column(name string) ([]float64, bool) {
	vals, ok := t.cols[name]
	return vals, ok
}

// Dates returns the backing date index. Callers must not reorder it.
func (t *Table) Dates() []time.Time { return t.dates }

// Date returns the date of row i.
func (t *Table) Date(i int) time.Time { return t.dates[i] }

// Start returns the earliest date, or false for an empty table.
func (t *Table) Start() (time.Time, bool) {
	if t.IsEmpty() {
		return time.Time{}, false
	}
	return t.dates[0], true
}

// End returns the latest date, or false for an empty table.
func (t *Table) End() (time.Time, bool) {
	if t.IsEmpty() {
		return time.Time{}, false
	}
	return t.dates[len(t.dates)-1], true
}

// Append inserts one row at the position that keeps dates ascending. Columns
// absent from values get the missing sentinel. A date that is already present
// is ignored: the first observation for a calendar day wins.
func (t *Table) Append(date time.Time, values map[string]float64) {
	date = Day(date)
	i := sort.Search(len(t.dates), func(i int) bool { return !t.dates[i].Before(date) })
	if i < len(t.dates) && t.dates[i].Equal(date) {
		return
	}
	t.dates = append(t.dates, time.Time{})
	copy(t.dates[i+1:], t.dates[i:])
	t.dates[i] = date
	for name, col := range t.cols {
		v := Missing()
		if val, ok := values[name]; ok {
			v = val
		}
		col = append(col, 0)
		copy(col[i+1:], col[i:])
		col[i] = v
		t.cols[name] = col
	}
}

// SetColumn adds or replaces a column. The value count must match the row
// count.
func (t *Table) SetColumn(name string, values []float64) bool {
	if len(values) != t.Len() {
		return false
	}
	if _, exists := t.cols[name]; !exists {
		t.order = append(t.order, name)
	}
	t.cols[name] = append([]float64(nil), values...)
	return true
}

// Value returns the cell at row i of the named column, or the missing
// sentinel if the column does not exist.
func (t *Table) Value(name string, i int) float64 {
	col, ok := t.cols[name]
	if !ok {
		return Missing()
	}
	return col[i]
}

// Clone returns a deep copy sharing no backing storage.
func (t *Table) Clone() *Table {
	c := NewTable(t.Ticker, t.Source, t.order...)
	c.dates = append([]time.Time(nil), t.dates...)
	for name, col := range t.cols {
		c.cols[name] = append([]float64(nil), col...)
	}
	return c
}
