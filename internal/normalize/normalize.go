// Package normalize converts raw provider payloads into canonical tables.
// One function per (provider, data-kind) pair. The functions are tolerant:
// unparseable numeric fields become the missing sentinel and a payload
// without a recognizable data block yields an empty table with the correct
// schema, never an error.
package normalize

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"QuoteFolio/internal/model"
)

// dateLayouts are tried in order when a provider date is not RFC3339.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05-0700", // marketstack writes offsets without a colon
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate parses a provider date string and strips any timezone offset,
// keeping the wall-clock calendar date.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if dt, err := time.Parse(layout, s); err == nil {
			return model.Day(dt), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// num coerces a JSON value to float64, returning the missing sentinel when
// the value is absent, null, or not numeric.
func num(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return model.Missing()
		}
		return f
	default:
		return model.Missing()
	}
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

// AlphaVantageDaily normalizes a TIME_SERIES_DAILY payload. The time-series
// block is located by key substring because Alpha Vantage varies the exact
// key ("Time Series (Daily)", "Weekly Time Series", ...).
func AlphaVantageDaily(raw map[string]any, ticker string) *model.Table {
	t := model.NewTable(ticker, "alphavantage", model.OHLCVColumns...)
	var block map[string]any
	for k, v := range raw {
		if strings.Contains(k, "Time Series") {
			block, _ = v.(map[string]any)
			break
		}
	}
	if block == nil {
		return t
	}
	for ds, v := range block {
		date, err := ParseDate(ds)
		if err != nil {
			continue
		}
		row, _ := v.(map[string]any)
		t.Append(date, map[string]float64{
			model.ColOpen:   num(row["1. open"]),
			model.ColHigh:   num(row["2. high"]),
			model.ColLow:    num(row["3. low"]),
			model.ColClose:  num(row["4. close"]),
			model.ColVolume: num(row["5. volume"]),
		})
	}
	return t
}

// AlphaVantageRSI normalizes a TECHNICAL indicator payload of the RSI
// endpoint into a single-column indicator table.
func AlphaVantageRSI(raw map[string]any, ticker string) *model.Table {
	t := model.NewTable(ticker, "alphavantage", model.ColRSI)
	block, _ := raw["Technical Analysis: RSI"].(map[string]any)
	if block == nil {
		return t
	}
	for ds, v := range block {
		date, err := ParseDate(ds)
		if err != nil {
			continue
		}
		row, _ := v.(map[string]any)
		t.Append(date, map[string]float64{model.ColRSI: num(row["RSI"])})
	}
	return t
}

// MarketStackEOD normalizes an end-of-day payload. The ticker is embedded in
// each row's "symbol" field.
func MarketStackEOD(raw map[string]any) *model.Table {
	t := model.NewTable("", "marketstack", model.OHLCVColumns...)
	data, _ := raw["data"].([]any)
	for _, v := range data {
		row, _ := v.(map[string]any)
		if row == nil {
			continue
		}
		date, err := ParseDate(str(row["date"]))
		if err != nil {
			continue
		}
		if t.Ticker == "" {
			t.Ticker = str(row["symbol"])
		}
		t.Append(date, map[string]float64{
			model.ColOpen:   num(row["open"]),
			model.ColHigh:   num(row["high"]),
			model.ColLow:    num(row["low"]),
			model.ColClose:  num(row["close"]),
			model.ColVolume: num(row["volume"]),
		})
	}
	return t
}

// TwelveDataSeries normalizes a time_series payload.
func TwelveDataSeries(raw map[string]any, ticker string) *model.Table {
	t := model.NewTable(ticker, "twelvedata", model.OHLCVColumns...)
	vals, _ := raw["values"].([]any)
	for _, v := range vals {
		row, _ := v.(map[string]any)
		if row == nil {
			continue
		}
		date, err := ParseDate(str(row["datetime"]))
		if err != nil {
			continue
		}
		t.Append(date, map[string]float64{
			model.ColOpen:   num(row["open"]),
			model.ColHigh:   num(row["high"]),
			model.ColLow:    num(row["low"]),
			model.ColClose:  num(row["close"]),
			model.ColVolume: num(row["volume"]),
		})
	}
	return t
}

// TwelveDataRSI normalizes an RSI indicator payload.
func TwelveDataRSI(raw map[string]any, ticker string) *model.Table {
	t := model.NewTable(ticker, "twelvedata", model.ColRSI)
	vals, _ := raw["values"].([]any)
	for _, v := range vals {
		row, _ := v.(map[string]any)
		if row == nil {
			continue
		}
		date, err := ParseDate(str(row["datetime"]))
		if err != nil {
			continue
		}
		t.Append(date, map[string]float64{model.ColRSI: num(row["rsi"])})
	}
	return t
}

// JoinIndicator merges an indicator table into a price table with a left
// outer join anchored on the price table's dates: price dates without an
// indicator observation get the missing sentinel, indicator dates outside
// the price index are dropped. The price table is not modified.
func JoinIndicator(price, indicator *model.Table) *model.Table {
	out := price.Clone()
	for _, name := range indicator.Columns() {
		if out.HasColumn(name) {
			continue
		}
		byDate := make(map[time.Time]float64, indicator.Len())
		col, _ := indicator.Column(name)
		for i, d := range indicator.Dates() {
			byDate[d] = col[i]
		}
		joined := make([]float64, out.Len())
		for i, d := range out.Dates() {
			if v, ok := byDate[d]; ok {
				joined[i] = v
			} else {
				joined[i] = model.Missing()
			}
		}
		out.SetColumn(name, joined)
	}
	return out
}
