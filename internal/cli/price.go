package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonghae5/stock-cli/internal/config"
	"github.com/jonghae5/stock-cli/internal/logger"
)

var (
	priceWatch bool
	stockWatch bool

	priceCmd = &cobra.Command{
		Use:   "price",
		Short: "print spot prices for the configured crypto markets",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := watchContext(cmd.Context(), priceWatch)
			defer stop()
			watchConfig(priceWatch)
			return runtime.Price(ctx, priceWatch)
		},
	}

	stockPriceCmd = &cobra.Command{
		Use:   "price_stock",
		Short: "print quotes for the configured stock symbols",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := watchContext(cmd.Context(), stockWatch)
			defer stop()
			watchConfig(stockWatch)
			return runtime.StockPrice(ctx, stockWatch)
		},
	}
)

// watchContext hooks SIGINT/SIGTERM so ctrl-c exits a watch loop
// cleanly instead of through the default signal handler.
func watchContext(parent context.Context, watch bool) (context.Context, context.CancelFunc) {
	if !watch {
		return parent, func() {}
	}
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

// watchConfig reloads display settings live while a watch loop runs.
// No config file on disk just means nothing to watch.
func watchConfig(watch bool) {
	if !watch {
		return
	}
	if err := config.Watch(cfgPath, runtime.Reload); err != nil {
		logger.Debugf("config watch disabled: %v", err)
	}
}

func init() {
	priceCmd.Flags().BoolVarP(&priceWatch, "watch", "w", false, "refresh every update_interval seconds")
	stockPriceCmd.Flags().BoolVarP(&stockWatch, "watch", "w", false, "refresh every update_interval seconds")
}
