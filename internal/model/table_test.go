package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppend_KeepsOrderAndUniqueness(t *testing.T) {
	tb := NewTable("T", "mock", OHLCVColumns...)
	d := func(day int) time.Time { return time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC) }

	tb.Append(d(3), map[string]float64{ColClose: 3})
	tb.Append(d(1), map[string]float64{ColClose: 1})
	tb.Append(d(2), map[string]float64{ColClose: 2})
	tb.Append(d(2), map[string]float64{ColClose: 99}) // duplicate: first wins

	require.Equal(t, 3, tb.Len())
	closes, _ := tb.Column(ColClose)
	assert.Equal(t, []float64{1, 2, 3}, closes)

	start, ok := tb.Start()
	require.True(t, ok)
	assert.Equal(t, d(1), start)
	end, _ := tb.End()
	assert.Equal(t, d(3), end)
}

func TestAppend_MissingColumnsGetSentinel(t *testing.T) {
	tb := NewTable("T", "mock", OHLCVColumns...)
	tb.Append(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), map[string]float64{ColClose: 10})
	assert.True(t, IsMissing(tb.Value(ColOpen, 0)))
	assert.False(t, IsMissing(tb.Value(ColClose, 0)))
	assert.True(t, IsMissing(tb.Value("nonexistent", 0)))
}

func TestAppend_NormalizesToCalendarDay(t *testing.T) {
	tb := NewTable("T", "mock", ColClose)
	tb.Append(time.Date(2024, 3, 1, 15, 30, 12, 0, time.FixedZone("X", 3600)), map[string]float64{ColClose: 1})
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), tb.Date(0))
}

func TestClone_Independent(t *testing.T) {
	tb := NewTable("T", "mock", ColClose)
	tb.Append(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), map[string]float64{ColClose: 10})

	c := tb.Clone()
	col, _ := c.Column(ColClose)
	col[0] = 99
	assert.InDelta(t, 10.0, tb.Value(ColClose, 0), 1e-12)
}

func TestSetColumn(t *testing.T) {
	tb := NewTable("T", "mock", ColClose)
	tb.Append(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), map[string]float64{ColClose: 10})

	assert.False(t, tb.SetColumn(ColRSI, []float64{1, 2}), "length mismatch is rejected")
	require.True(t, tb.SetColumn(ColRSI, []float64{55}))
	assert.Contains(t, tb.Columns(), ColRSI)
	assert.InDelta(t, 55.0, tb.Value(ColRSI, 0), 1e-12)
}
