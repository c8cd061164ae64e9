package provider

import (
	"fmt"
	"net/http"
	"net/url"
)

// MarketStack implements Client against the marketstack end-of-day API.
type MarketStack struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewMarketStack creates a client with the default endpoint.
func NewMarketStack(apiKey string) *MarketStack {
	return &MarketStack{
		BaseURL: "http://api.marketstack.com/v1/eod",
		APIKey:  apiKey,
		Client:  newHTTPClient(),
	}
}

func (c *MarketStack) Name() string { return "marketstack" }

// History fetches up to 1000 end-of-day bars for a symbol.
func (c *MarketStack) History(symbol string) (map[string]any, error) {
	q := url.Values{}
	q.Set("access_key", c.APIKey)
	q.Set("symbols", symbol)
	q.Set("limit", "1000")
	return getJSON(c.Client, fmt.Sprintf("%s?%s", c.BaseURL, q.Encode()))
}
