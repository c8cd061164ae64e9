package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsAndFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
provider:
  name: twelvedata
  api_key: secret
portfolio:
  name: growth
  symbols: [AAPL, MSFT]
  weights: "0.6,0.4"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "twelvedata", cfg.Provider.Name)
	assert.Equal(t, []string{"AAPL", "MSFT"}, cfg.Portfolio.Symbols)
	assert.Equal(t, 252, cfg.Simulation.HorizonDays, "default horizon")
	assert.Equal(t, 1000, cfg.Simulation.PathCount, "default path count")
	assert.Equal(t, 8, cfg.Fetch.Workers)
	require.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("QF_PROVIDER", "marketstack")
	t.Setenv("QF_API_KEY", "k")
	t.Setenv("QF_SYMBOLS", "SPY, QQQ")
	t.Setenv("QF_HORIZON_DAYS", "30")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "marketstack", cfg.Provider.Name)
	assert.Equal(t, []string{"SPY", "QQQ"}, cfg.Portfolio.Symbols)
	assert.Equal(t, 30, cfg.Simulation.HorizonDays)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Error(t, cfg.Validate(), "api key and symbols are required")

	cfg.Provider.APIKey = "k"
	cfg.Portfolio.Symbols = []string{"AAPL"}
	assert.NoError(t, cfg.Validate())

	cfg.Provider.Name = "bloomberg"
	assert.Error(t, cfg.Validate())
}
