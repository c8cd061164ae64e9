// Package scheduler wires the periodic refresh and simulation tasks.
package scheduler

import (
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"QuoteFolio/internal/config"
	"QuoteFolio/internal/fetch"
	"QuoteFolio/internal/model"
	"QuoteFolio/internal/normalize"
	"QuoteFolio/internal/portfolio"
	"QuoteFolio/internal/provider"
	"QuoteFolio/internal/recorder"
	"QuoteFolio/internal/series"
)

// Scheduler manages the cron tasks: a refresh task that re-fetches and
// records all configured symbols, and a simulate task that runs the
// portfolio Monte Carlo over the latest refreshed data.
type Scheduler struct {
	Cron     *cron.Cron
	Client   provider.Client
	Recorder recorder.Recorder

	cfg *config.Config
	log zerolog.Logger

	mu     sync.Mutex
	latest map[string]*model.Table
}

// New creates a Scheduler.
func New(cfg *config.Config, client provider.Client, rec recorder.Recorder, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Client:   client,
		Recorder: rec,
		cfg:      cfg,
		log:      log.With().Str("component", "scheduler").Logger(),
		latest:   make(map[string]*model.Table),
	}
}

// RegisterAll registers the refresh and simulate tasks.
func (s *Scheduler) RegisterAll() error {
	if _, err := s.Cron.AddFunc(s.cfg.Schedule.RefreshCron, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	if _, err := s.Cron.AddFunc(s.cfg.Schedule.SimulateCron, s.simulateTask); err != nil {
		return fmt.Errorf("register simulate task: %w", err)
	}
	return nil
}

// Start launches the cron loop.
func (s *Scheduler) Start() { s.Cron.Start() }

// Stop halts the cron loop.
func (s *Scheduler) Stop() { s.Cron.Stop() }

// RunRefreshNow executes the refresh task immediately, then the simulation.
func (s *Scheduler) RunRefreshNow() {
	s.refreshTask()
	s.simulateTask()
}

// normalizeFunc selects the normalizer matching the active provider.
func (s *Scheduler) normalizeFunc() fetch.NormalizeFunc {
	switch s.Client.Name() {
	case "marketstack":
		return func(raw map[string]any, symbol string) *model.Table {
			t := normalize.MarketStackEOD(raw)
			if t.Ticker == "" {
				t.Ticker = symbol
			}
			return t
		}
	case "twelvedata":
		return normalize.TwelveDataSeries
	default:
		return normalize.AlphaVantageDaily
	}
}

// indicatorNormalizeFunc selects the RSI normalizer matching the active
// provider, or nil when it serves no indicator endpoint.
func (s *Scheduler) indicatorNormalizeFunc() fetch.NormalizeFunc {
	switch s.Client.Name() {
	case "marketstack":
		return nil
	case "twelvedata":
		return normalize.TwelveDataRSI
	default:
		return normalize.AlphaVantageRSI
	}
}

// enrichWithIndicator joins the provider's daily RSI into each fetched price
// table. An indicator failure degrades that symbol to prices only; it never
// discards the already-fetched bars.
func (s *Scheduler) enrichWithIndicator(results map[string]*model.Table) {
	ind, ok := s.Client.(provider.IndicatorClient)
	if !ok {
		return
	}
	normalizeRSI := s.indicatorNormalizeFunc()
	if normalizeRSI == nil {
		return
	}
	for symbol, table := range results {
		if table.IsEmpty() {
			continue
		}
		raw, err := ind.RSI(symbol)
		if err != nil {
			s.log.Warn().Str("symbol", symbol).Err(err).Msg("rsi fetch failed, keeping prices only")
			continue
		}
		results[symbol] = normalize.JoinIndicator(table, normalizeRSI(raw, symbol))
	}
}

func (s *Scheduler) refreshTask() {
	s.log.Info().Int("symbols", len(s.cfg.Portfolio.Symbols)).Msg("refresh started")
	results := fetch.Many(s.cfg.Portfolio.Symbols, s.Client.History, s.normalizeFunc(), s.cfg.Fetch.Workers, s.log)
	s.enrichWithIndicator(results)

	s.mu.Lock()
	for symbol, table := range results {
		s.latest[symbol] = table
	}
	s.mu.Unlock()

	for symbol, table := range results {
		if err := s.Recorder.RecordBars(table); err != nil {
			s.log.Warn().Str("symbol", symbol).Err(err).Msg("record bars failed")
		}
	}
	s.log.Info().Msg("refresh finished")
}

func (s *Scheduler) simulateTask() {
	s.mu.Lock()
	tables := make([]*model.Table, 0, len(s.latest))
	for _, table := range s.latest {
		tables = append(tables, table.Clone())
	}
	s.mu.Unlock()

	port := portfolio.New(s.cfg.Portfolio.Name, s.log)
	for _, table := range tables {
		if table.IsEmpty() {
			s.log.Warn().Str("ticker", table.Ticker).Msg("skipping empty series")
			continue
		}
		asset := series.New(table, s.log)
		asset.ClipNonPositivePrices()
		if err := asset.ResampleDaily(series.FillForward); err != nil {
			s.log.Warn().Str("ticker", asset.Ticker()).Err(err).Msg("resample failed")
			continue
		}
		port.Add(asset)
	}

	tickers := port.Tickers()
	if len(tickers) == 0 {
		s.log.Warn().Msg("no usable assets, simulation skipped")
		return
	}
	if s.cfg.Portfolio.Weights != "" {
		port.SetWeights(portfolio.ParseWeights(s.cfg.Portfolio.Weights, tickers, s.log))
	} else {
		equal := make(map[string]float64, len(tickers))
		for _, t := range tickers {
			equal[t] = 1.0 / float64(len(tickers))
		}
		port.SetWeights(equal)
	}

	res, err := port.RunMonteCarlo(s.cfg.Simulation.HorizonDays, s.cfg.Simulation.PathCount)
	if err != nil {
		s.log.Warn().Err(err).Msg("simulation skipped")
		return
	}
	if err := s.Recorder.RecordSimulation(port.Name(), res); err != nil {
		s.log.Warn().Err(err).Msg("record simulation failed")
	}
	s.log.Info().
		Float64("anchor", res.Anchor).
		Float64("drift", res.Drift).
		Float64("volatility", res.Volatility).
		Msg("simulation recorded")
	s.log.Info().Msg(port.Report())
}
