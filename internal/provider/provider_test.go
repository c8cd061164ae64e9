package provider

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlphaVantageHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "TIME_SERIES_DAILY", r.URL.Query().Get("function"))
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
		assert.Equal(t, "k", r.URL.Query().Get("apikey"))
		w.Write([]byte(`{"Time Series (Daily)": {}}`))
	}))
	defer srv.Close()

	c := NewAlphaVantage("k")
	c.BaseURL = srv.URL

	raw, err := c.History("AAPL")
	require.NoError(t, err)
	assert.Contains(t, raw, "Time Series (Daily)")
}

func TestGetJSON_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewMarketStack("k")
	c.BaseURL = srv.URL
	_, err := c.History("AAPL")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
}

func TestTwelveDataRSIQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rsi", r.URL.Path)
		assert.Equal(t, "14", r.URL.Query().Get("time_period"))
		w.Write([]byte(`{"values": []}`))
	}))
	defer srv.Close()

	c := NewTwelveData("k")
	c.BaseURL = srv.URL
	raw, err := c.RSI("GOOG")
	require.NoError(t, err)
	assert.Contains(t, raw, "values")
}
