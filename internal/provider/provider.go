// Package provider holds the thin HTTP clients for the supported quote
// providers. Each call is a single attempt with a bounded timeout; retry
// policy, if any, belongs to the caller.
package provider

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client fetches raw daily-history payloads for one symbol.
type Client interface {
	History(symbol string) (map[string]any, error)
	Name() string
}

// IndicatorClient is implemented by providers that also serve a daily RSI
// endpoint.
type IndicatorClient interface {
	RSI(symbol string) (map[string]any, error)
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}

// getJSON performs a GET and decodes the body into a generic mapping.
func getJSON(client *http.Client, url string) (map[string]any, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("fetch: status %d, body: %s", resp.StatusCode, string(body))
	}
	var raw map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return raw, nil
}

// Mock returns controllable fixed payloads for development and testing.
type Mock struct {
	Payload map[string]any
	RSIData map[string]any
	Err     error
}

func (m *Mock) Name() string { return "mock" }

func (m *Mock) History(_ string) (map[string]any, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Payload, nil
}

func (m *Mock) RSI(_ string) (map[string]any, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.RSIData, nil
}
