package normalize

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"QuoteFolio/internal/model"
)

func avPayload() map[string]any {
	return map[string]any{
		"Meta Data": map[string]any{"2. Symbol": "AAPL"},
		"Time Series (Daily)": map[string]any{
			"2024-01-03": map[string]any{
				"1. open": "184.22", "2. high": "185.88", "3. low": "183.43",
				"4. close": "184.25", "5. volume": "58414460",
			},
			"2024-01-02": map[string]any{
				"1. open": "187.15", "2. high": "188.44", "3. low": "183.89",
				"4. close": "185.64", "5. volume": "82488700",
			},
			"2024-01-04": map[string]any{
				"1. open": "182.15", "2. high": "183.09", "3. low": "180.88",
				"4. close": "not-a-number", "5. volume": "71983600",
			},
		},
	}
}

func TestAlphaVantageDaily(t *testing.T) {
	table := AlphaVantageDaily(avPayload(), "AAPL")
	require.Equal(t, 3, table.Len())
	assert.Equal(t, "AAPL", table.Ticker)
	assert.Equal(t, "alphavantage", table.Source)

	// Sorted strictly ascending, no duplicates.
	dates := table.Dates()
	for i := 1; i < len(dates); i++ {
		assert.True(t, dates[i-1].Before(dates[i]), "dates must be strictly ascending")
	}
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), dates[0])

	// Unparseable close becomes the missing sentinel, the row is kept.
	assert.True(t, model.IsMissing(table.Value(model.ColClose, 2)))
	assert.InDelta(t, 182.15, table.Value(model.ColOpen, 2), 1e-9)
}

func TestAlphaVantageDaily_NoTimeSeriesBlock(t *testing.T) {
	table := AlphaVantageDaily(map[string]any{"Note": "rate limited"}, "AAPL")
	require.NotNil(t, table)
	assert.True(t, table.IsEmpty())
	assert.ElementsMatch(t, model.OHLCVColumns, table.Columns())
}

func TestMarketStackEOD(t *testing.T) {
	raw := map[string]any{
		"data": []any{
			map[string]any{
				"date": "2024-01-03T00:00:00+0000", "symbol": "MSFT",
				"open": 370.0, "high": 373.1, "low": 368.7, "close": 370.6, "volume": 21236200.0,
			},
			map[string]any{
				"date": "2024-01-02T00:00:00+0000", "symbol": "MSFT",
				"open": 373.9, "high": 375.9, "low": 370.0, "close": nil, "volume": 25258600.0,
			},
		},
	}
	table := MarketStackEOD(raw)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, "MSFT", table.Ticker)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), table.Date(0))
	assert.True(t, model.IsMissing(table.Value(model.ColClose, 0)))
	assert.InDelta(t, 370.6, table.Value(model.ColClose, 1), 1e-9)
}

func TestMarketStackEOD_Empty(t *testing.T) {
	table := MarketStackEOD(map[string]any{"error": map[string]any{"code": "invalid_access_key"}})
	require.NotNil(t, table)
	assert.True(t, table.IsEmpty())
}

func TestTwelveDataSeries(t *testing.T) {
	raw := map[string]any{
		"values": []any{
			map[string]any{"datetime": "2024-01-03", "open": "100", "high": "101", "low": "99", "close": "100.5", "volume": "1000"},
			map[string]any{"datetime": "2024-01-02", "open": "99", "high": "100", "low": "98", "close": "99.5", "volume": "900"},
			map[string]any{"datetime": "2024-01-02", "open": "0", "high": "0", "low": "0", "close": "0", "volume": "0"},
		},
	}
	table := TwelveDataSeries(raw, "GOOG")
	// Duplicate date dropped: first observation wins.
	require.Equal(t, 2, table.Len())
	assert.InDelta(t, 99.5, table.Value(model.ColClose, 0), 1e-9)
}

func TestTwelveDataRSI(t *testing.T) {
	raw := map[string]any{
		"values": []any{
			map[string]any{"datetime": "2024-01-02", "rsi": "55.3"},
			map[string]any{"datetime": "2024-01-03", "rsi": "bad"},
		},
	}
	table := TwelveDataRSI(raw, "GOOG")
	require.Equal(t, 2, table.Len())
	assert.InDelta(t, 55.3, table.Value(model.ColRSI, 0), 1e-9)
	assert.True(t, model.IsMissing(table.Value(model.ColRSI, 1)))
}

func TestAlphaVantageRSI(t *testing.T) {
	raw := map[string]any{
		"Technical Analysis: RSI": map[string]any{
			"2024-01-02": map[string]any{"RSI": "61.1"},
		},
	}
	table := AlphaVantageRSI(raw, "AAPL")
	require.Equal(t, 1, table.Len())
	assert.InDelta(t, 61.1, table.Value(model.ColRSI, 0), 1e-9)
}

func TestJoinIndicator(t *testing.T) {
	price := model.NewTable("AAPL", "alphavantage", model.OHLCVColumns...)
	for d := 2; d <= 5; d++ {
		price.Append(time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC), map[string]float64{model.ColClose: float64(100 + d)})
	}
	ind := model.NewTable("AAPL", "alphavantage", model.ColRSI)
	ind.Append(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), map[string]float64{model.ColRSI: 40}) // outside price range
	ind.Append(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), map[string]float64{model.ColRSI: 52})

	joined := JoinIndicator(price, ind)
	require.Equal(t, 4, joined.Len(), "join is anchored on the price index")
	assert.True(t, model.IsMissing(joined.Value(model.ColRSI, 0)))
	assert.InDelta(t, 52.0, joined.Value(model.ColRSI, 1), 1e-9)
	assert.True(t, model.IsMissing(joined.Value(model.ColRSI, 2)))

	// The input price table is untouched.
	assert.False(t, price.HasColumn(model.ColRSI))
}

func TestParseDate_StripsOffset(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-01-02", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		{"2024-01-02T18:30:00+05:00", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		{"2024-01-02 15:04:05", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := ParseDate(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
	_, err := ParseDate("not a date")
	assert.Error(t, err)
}

func TestNum(t *testing.T) {
	assert.InDelta(t, 1.5, num("1.5"), 1e-12)
	assert.InDelta(t, 2.0, num(2.0), 1e-12)
	assert.True(t, math.IsNaN(num(nil)))
	assert.True(t, math.IsNaN(num("n/a")))
}
