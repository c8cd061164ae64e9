package provider

import (
	"fmt"
	"net/http"
	"net/url"
)

// TwelveData implements Client against the Twelve Data time-series API.
type TwelveData struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewTwelveData creates a client with the default endpoint.
func NewTwelveData(apiKey string) *TwelveData {
	return &TwelveData{
		BaseURL: "https://api.twelvedata.com",
		APIKey:  apiKey,
		Client:  newHTTPClient(),
	}
}

func (c *TwelveData) Name() string { return "twelvedata" }

// History fetches the daily time series for a symbol.
func (c *TwelveData) History(symbol string) (map[string]any, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", "1day")
	q.Set("outputsize", "5000")
	q.Set("apikey", c.APIKey)
	return getJSON(c.Client, fmt.Sprintf("%s/time_series?%s", c.BaseURL, q.Encode()))
}

// RSI fetches the daily RSI indicator series for a symbol.
func (c *TwelveData) RSI(symbol string) (map[string]any, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", "1day")
	q.Set("time_period", "14")
	q.Set("apikey", c.APIKey)
	return getJSON(c.Client, fmt.Sprintf("%s/rsi?%s", c.BaseURL, q.Encode()))
}
