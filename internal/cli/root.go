// Package cli defines the cobra command tree: graph renders candle
// charts, price and price_stock print live quote tables.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonghae5/stock-cli/internal/app"
	"github.com/jonghae5/stock-cli/internal/config"
	"github.com/jonghae5/stock-cli/internal/logger"
)

var (
	cfgPath  string
	logLevel string

	cfg     *config.Config
	runtime *app.App
	logFile *os.File

	rootCmd = &cobra.Command{
		Use:           "stock-cli",
		Short:         "candle charts and live price tables for crypto and stocks",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			explicit := cmd.Flags().Changed("config")
			var err error
			cfg, err = config.Load(cfgPath, explicit)
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.App.LogLevel = logLevel
			}
			logger.SetLevel(cfg.App.LogLevel)
			if cfg.App.LogPath != "" {
				logFile, err = logger.SetFile(cfg.App.LogPath)
				if err != nil {
					return fmt.Errorf("open log file: %w", err)
				}
			}
			runtime = app.New(cfg)
			if err := runtime.OpenCache(); err != nil {
				// the cache is an accelerator, never a prerequisite
				logger.Warnf("cache unavailable: %v", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if runtime != nil {
				runtime.Close()
			}
			if logFile != nil {
				logFile.Close()
			}
		},
	}
)

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", config.DefaultPath, "path to config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level (debug|info|warn|error)")
	rootCmd.AddCommand(graphCmd, priceCmd, stockPriceCmd)
}
