package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/jonghae5/stock-cli/internal/logger"
	"github.com/jonghae5/stock-cli/internal/timeframe"
)

// DefaultPath is where Load looks when no --config flag is given.
const DefaultPath = "configs/config.yaml"

type Config struct {
	App             AppConfig    `mapstructure:"app"`
	Symbols         []string     `mapstructure:"symbols"`
	StockSymbols    []string     `mapstructure:"stock_symbols"`
	UpdateInterval  int          `mapstructure:"update_interval"`
	Timeframe       string       `mapstructure:"timeframe"`
	TableTitle      string       `mapstructure:"table_title"`
	StockTableTitle string       `mapstructure:"stock_table_title"`
	Source          SourceConfig `mapstructure:"source"`
	Chart           ChartConfig  `mapstructure:"chart"`
}

type AppConfig struct {
	LogLevel  string `mapstructure:"log_level"`
	LogPath   string `mapstructure:"log_path"`
	OutputDir string `mapstructure:"output_dir"`
	CacheDir  string `mapstructure:"cache_dir"`
}

type SourceConfig struct {
	Provider   string `mapstructure:"provider"`
	BaseURL    string `mapstructure:"base_url"`
	TimeoutSec int    `mapstructure:"timeout_sec"`
}

// Timeout returns the per-request deadline for market sources.
func (s SourceConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSec) * time.Second
}

type ChartConfig struct {
	Width     int  `mapstructure:"width"`
	Height    int  `mapstructure:"height"` // main kline panel
	PNG       bool `mapstructure:"png"`
	SMAWindow int  `mapstructure:"sma_window"`
}

func Default() *Config {
	return &Config{
		App: AppConfig{
			LogLevel:  "info",
			LogPath:   "",
			OutputDir: "output",
			CacheDir:  ".cache",
		},
		Symbols:         []string{"KRW-BTC", "KRW-ETH", "KRW-XRP", "KRW-SOL", "KRW-DOGE"},
		StockSymbols:    []string{"AAPL", "MSFT", "GOOGL", "AMZN", "NVDA"},
		UpdateInterval:  10,
		Timeframe:       "15m:60:60",
		TableTitle:      "Crypto Prices (Upbit)",
		StockTableTitle: "Stock Prices",
		Source: SourceConfig{
			Provider:   "upbit",
			BaseURL:    "https://api.upbit.com",
			TimeoutSec: 10,
		},
		Chart: ChartConfig{
			Width:     1400,
			Height:    560,
			PNG:       false,
			SMAWindow: 20,
		},
	}
}

// Load reads the YAML file at path on top of the defaults. A missing file is
// only an error when the caller named it explicitly; the default path is
// optional so the CLI works out of the box.
func Load(path string, explicit bool) (*Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := decode(v, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func decode(v *viper.Viper, out *Config) error {
	return v.Unmarshal(out, func(dc *mapstructure.DecoderConfig) {
		dc.WeaklyTypedInput = true
	})
}

func (c *Config) Validate() error {
	if c.UpdateInterval < 1 {
		return fmt.Errorf("update_interval must be >= 1, got %d", c.UpdateInterval)
	}
	if _, err := timeframe.Parse(c.Timeframe); err != nil {
		return fmt.Errorf("timeframe %q: %w", c.Timeframe, err)
	}
	switch strings.ToLower(c.Source.Provider) {
	case "upbit", "binance":
	default:
		return fmt.Errorf("unknown source provider %q", c.Source.Provider)
	}
	if c.Source.TimeoutSec < 1 {
		return fmt.Errorf("source timeout_sec must be >= 1, got %d", c.Source.TimeoutSec)
	}
	if c.Chart.Width < 320 {
		return fmt.Errorf("chart width too small: %d", c.Chart.Width)
	}
	if c.Chart.Height < 200 {
		return fmt.Errorf("chart height too small: %d", c.Chart.Height)
	}
	if c.Chart.SMAWindow < 2 {
		return fmt.Errorf("chart sma_window must be >= 2, got %d", c.Chart.SMAWindow)
	}
	return nil
}

// Watch reloads path on change and hands the fresh config to onChange.
// Reload failures keep the previous config and are logged, not fatal.
func Watch(path string, onChange func(*Config)) error {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("watch config %s: %w", path, err)
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		if e.Op&(fsnotify.Write|fsnotify.Create) == 0 {
			return
		}
		cfg := Default()
		if err := decode(v, cfg); err != nil {
			logger.Warnf("config reload skipped: %v", err)
			return
		}
		if err := cfg.Validate(); err != nil {
			logger.Warnf("config reload skipped: %v", err)
			return
		}
		logger.Infof("config reloaded from %s", e.Name)
		onChange(cfg)
	})
	v.WatchConfig()
	return nil
}
