package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"QuoteFolio/internal/config"
	"QuoteFolio/internal/provider"
	"QuoteFolio/internal/recorder"
	"QuoteFolio/internal/scheduler"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("QF_CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}
	if level, err := zerolog.ParseLevel(cfg.Log.Level); err == nil {
		log = log.Level(level)
	}

	// Init provider client
	var client provider.Client
	switch cfg.Provider.Name {
	case "marketstack":
		client = provider.NewMarketStack(cfg.Provider.APIKey)
	case "twelvedata":
		client = provider.NewTwelveData(cfg.Provider.APIKey)
	default:
		client = provider.NewAlphaVantage(cfg.Provider.APIKey)
	}
	log.Info().Str("provider", client.Name()).Msg("data source selected")

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, log)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Init scheduler
	sched := scheduler.New(cfg, client, rec, log)
	if err := sched.RegisterAll(); err != nil {
		log.Fatal().Err(err).Msg("register cron tasks")
	}
	sched.Start()
	defer sched.Stop()

	// Optional: run immediately on start
	if os.Getenv("QF_RUN_ON_START") == "true" {
		log.Info().Msg("QF_RUN_ON_START enabled, refreshing now")
		go sched.RunRefreshNow()
	}

	log.Info().Msg("quotefolio running, press Ctrl+C to stop")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutdown signal received, stopping")
}
