package provider

import (
	"fmt"
	"net/http"
	"net/url"
)

// AlphaVantage implements Client against the Alpha Vantage query API.
type AlphaVantage struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewAlphaVantage creates a client with the default endpoint.
func NewAlphaVantage(apiKey string) *AlphaVantage {
	return &AlphaVantage{
		BaseURL: "https://www.alphavantage.co/query",
		APIKey:  apiKey,
		Client:  newHTTPClient(),
	}
}

func (c *AlphaVantage) Name() string { return "alphavantage" }

// History fetches the full daily time series for a symbol.
func (c *AlphaVantage) History(symbol string) (map[string]any, error) {
	q := url.Values{}
	q.Set("function", "TIME_SERIES_DAILY")
	q.Set("symbol", symbol)
	q.Set("apikey", c.APIKey)
	q.Set("outputsize", "full")
	return getJSON(c.Client, fmt.Sprintf("%s?%s", c.BaseURL, q.Encode()))
}

// RSI fetches the daily RSI indicator series for a symbol.
func (c *AlphaVantage) RSI(symbol string) (map[string]any, error) {
	q := url.Values{}
	q.Set("function", "RSI")
	q.Set("symbol", symbol)
	q.Set("interval", "daily")
	q.Set("time_period", "14")
	q.Set("series_type", "close")
	q.Set("apikey", c.APIKey)
	return getJSON(c.Client, fmt.Sprintf("%s?%s", c.BaseURL, q.Encode()))
}
