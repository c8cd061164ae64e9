// Package fetch fans out per-symbol fetch+normalize work across a bounded
// pool of workers. Each symbol's failure is isolated: a failed symbol yields
// an empty canonical table and a diagnostic, never an aborted batch.
package fetch

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"QuoteFolio/internal/model"
)

// FetchFunc fetches the raw payload for one symbol.
type FetchFunc func(symbol string) (map[string]any, error)

// NormalizeFunc converts a raw payload plus its symbol into a canonical
// table.
type NormalizeFunc func(raw map[string]any, symbol string) *model.Table

// Many fetches and normalizes every symbol using at most workers concurrent
// goroutines, returning one table per symbol. Results are keyed by symbol,
// so completion order does not affect the mapping.
func Many(symbols []string, fetchOne FetchFunc, normalizeOne NormalizeFunc, workers int, log zerolog.Logger) map[string]*model.Table {
	if workers <= 0 {
		workers = 8
	}
	log = log.With().Str("component", "fetch").Logger()

	results := make(map[string]*model.Table, len(symbols))
	var mu sync.Mutex
	var wg sync.WaitGroup
	jobs := make(chan string)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for symbol := range jobs {
				table, err := one(symbol, fetchOne, normalizeOne)
				if err != nil {
					log.Warn().Str("symbol", symbol).Err(err).Msg("fetch failed, recording empty table")
					table = model.NewTable(symbol, "", model.OHLCVColumns...)
				} else {
					log.Info().Str("symbol", symbol).Int("rows", table.Len()).Msg("fetched")
				}
				mu.Lock()
				results[symbol] = table
				mu.Unlock()
			}
		}()
	}
	for _, symbol := range symbols {
		jobs <- symbol
	}
	close(jobs)
	wg.Wait()
	return results
}

// one runs a single fetch+normalize, converting panics into errors so a
// misbehaving normalizer cannot take down sibling symbols.
func one(symbol string, fetchOne FetchFunc, normalizeOne NormalizeFunc) (table *model.Table, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	raw, err := fetchOne(symbol)
	if err != nil {
		return nil, err
	}
	return normalizeOne(raw, symbol), nil
}
