package cli

import (
	"github.com/spf13/cobra"

	"github.com/jonghae5/stock-cli/internal/app"
)

var (
	graphSymbol    string
	graphTimeframe string
	graphOutDir    string
	graphSource    string
	graphPNG       bool
	graphTicks     bool

	graphCmd = &cobra.Command{
		Use:   "graph",
		Short: "render a candle chart for one symbol",
		Long: `Render a candle chart for one symbol over a timeframe spec of the
form <interval>:<count>:<count2>, e.g. 15m:60:60 for sixty 15-minute
candles plus a coarser secondary panel of sixty buckets.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			png := graphPNG
			if !cmd.Flags().Changed("png") {
				png = cfg.Chart.PNG
			}
			return runtime.Graph(cmd.Context(), app.GraphOptions{
				Symbol:    graphSymbol,
				Timeframe: graphTimeframe,
				OutputDir: graphOutDir,
				Source:    graphSource,
				PNG:       png,
				Ticks:     graphTicks,
			})
		},
	}
)

func init() {
	graphCmd.Flags().StringVarP(&graphSymbol, "symbol", "s", "KRW-BTC", "market symbol, e.g. KRW-BTC")
	graphCmd.Flags().StringVarP(&graphTimeframe, "timeframe", "t", "", "timeframe spec, defaults to the configured one")
	graphCmd.Flags().StringVarP(&graphOutDir, "output", "o", "", "output directory, defaults to the configured one")
	graphCmd.Flags().StringVar(&graphSource, "source", "", "candle source for this run (upbit|binance)")
	graphCmd.Flags().BoolVar(&graphPNG, "png", false, "also capture a PNG snapshot (needs a headless browser)")
	graphCmd.Flags().BoolVar(&graphTicks, "ticks", false, "aggregate the chart from raw trades instead of exchange candles")
}
