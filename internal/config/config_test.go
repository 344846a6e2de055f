package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), false)
	require.NoError(t, err)
	assert.Equal(t, "15m:60:60", cfg.Timeframe)
	assert.Equal(t, "upbit", cfg.Source.Provider)
	assert.Contains(t, cfg.Symbols, "KRW-BTC")
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), true)
	assert.Error(t, err)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
symbols:
  - KRW-BTC
update_interval: 5
timeframe: 1h:24:12
source:
  provider: binance
  timeout_sec: 3
`)
	cfg, err := Load(path, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"KRW-BTC"}, cfg.Symbols)
	assert.Equal(t, 5, cfg.UpdateInterval)
	assert.Equal(t, "1h:24:12", cfg.Timeframe)
	assert.Equal(t, "binance", cfg.Source.Provider)
	assert.Equal(t, 3, cfg.Source.TimeoutSec)

	// untouched keys keep their defaults
	assert.Equal(t, 1400, cfg.Chart.Width)
	assert.Contains(t, cfg.StockSymbols, "AAPL")
}

func TestLoadWeakTyping(t *testing.T) {
	path := writeConfig(t, `
update_interval: "30"
chart:
  png: "true"
`)
	cfg, err := Load(path, true)
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.UpdateInterval)
	assert.True(t, cfg.Chart.PNG)
}

func TestLoadRejectsBadTimeframe(t *testing.T) {
	path := writeConfig(t, "timeframe: 15x:60:60\n")
	_, err := Load(path, true)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"zero interval", func(c *Config) { c.UpdateInterval = 0 }, false},
		{"unknown provider", func(c *Config) { c.Source.Provider = "kraken" }, false},
		{"tiny chart", func(c *Config) { c.Chart.Width = 100 }, false},
		{"tiny chart height", func(c *Config) { c.Chart.Height = 50 }, false},
		{"sma window one", func(c *Config) { c.Chart.SMAWindow = 1 }, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
