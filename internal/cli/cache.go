package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cacheSymbol    string
	cacheTimeframe string
	cacheTail      int

	cacheCmd = &cobra.Command{
		Use:   "cache",
		Short: "inspect the local candle cache for one symbol and timeframe",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cacheTimeframe == "" {
				cacheTimeframe = cfg.Timeframe
			}
			return runtime.CacheInfo(cmd.Context(), os.Stdout, cacheSymbol, cacheTimeframe, cacheTail)
		},
	}
)

func init() {
	cacheCmd.Flags().StringVarP(&cacheSymbol, "symbol", "s", "KRW-BTC", "market symbol")
	cacheCmd.Flags().StringVarP(&cacheTimeframe, "timeframe", "t", "", "timeframe spec, defaults to the configured one")
	cacheCmd.Flags().IntVar(&cacheTail, "tail", 5, "number of most recent cached candles to print")
	rootCmd.AddCommand(cacheCmd)
}
