package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Provider struct {
		Name   string `yaml:"name"` // alphavantage | marketstack | twelvedata
		APIKey string `yaml:"api_key"`
	} `yaml:"provider"`
	Portfolio struct {
		Name    string   `yaml:"name"`
		Symbols []string `yaml:"symbols"`
		Weights string   `yaml:"weights"` // comma-separated, empty means equal
	} `yaml:"portfolio"`
	Simulation struct {
		HorizonDays int `yaml:"horizon_days"`
		PathCount   int `yaml:"path_count"`
	} `yaml:"simulation"`
	Fetch struct {
		Workers int `yaml:"workers"`
	} `yaml:"fetch"`
	Schedule struct {
		RefreshCron  string `yaml:"refresh_cron"`
		SimulateCron string `yaml:"simulate_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("QF_PROVIDER"); v != "" {
		cfg.Provider.Name = v
	}
	if v := os.Getenv("QF_API_KEY"); v != "" {
		cfg.Provider.APIKey = v
	}
	if v := os.Getenv("QF_SYMBOLS"); v != "" {
		cfg.Portfolio.Symbols = splitList(v)
	}
	if v := os.Getenv("QF_WEIGHTS"); v != "" {
		cfg.Portfolio.Weights = v
	}
	if v := os.Getenv("QF_HORIZON_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Simulation.HorizonDays = n
		}
	}
	if v := os.Getenv("QF_PATH_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Simulation.PathCount = n
		}
	}
	if v := os.Getenv("QF_SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("QF_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	// Defaults
	if cfg.Provider.Name == "" {
		cfg.Provider.Name = "alphavantage"
	}
	if cfg.Portfolio.Name == "" {
		cfg.Portfolio.Name = "default"
	}
	if cfg.Simulation.HorizonDays == 0 {
		cfg.Simulation.HorizonDays = 252
	}
	if cfg.Simulation.PathCount == 0 {
		cfg.Simulation.PathCount = 1000
	}
	if cfg.Fetch.Workers == 0 {
		cfg.Fetch.Workers = 8
	}
	if cfg.Schedule.RefreshCron == "" {
		cfg.Schedule.RefreshCron = "0 0 22 * * 1-5"
	}
	if cfg.Schedule.SimulateCron == "" {
		cfg.Schedule.SimulateCron = "0 30 22 * * 1-5"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/quotefolio.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	switch c.Provider.Name {
	case "alphavantage", "marketstack", "twelvedata":
	default:
		return fmt.Errorf("provider.name %q is not supported", c.Provider.Name)
	}
	if c.Provider.APIKey == "" {
		return fmt.Errorf("provider.api_key is required")
	}
	if len(c.Portfolio.Symbols) == 0 {
		return fmt.Errorf("portfolio.symbols must not be empty")
	}
	if c.Simulation.HorizonDays <= 0 {
		return fmt.Errorf("simulation.horizon_days must be positive")
	}
	if c.Simulation.PathCount <= 0 {
		return fmt.Errorf("simulation.path_count must be positive")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
