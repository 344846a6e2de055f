package app

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/jonghae5/stock-cli/internal/pkg/format"
	"github.com/jonghae5/stock-cli/internal/timeframe"
)

// CacheInfo prints what the local cache holds for one symbol and
// timeframe: the covered range plus the tail of the series.
func (a *App) CacheInfo(ctx context.Context, w io.Writer, symbol, tf string, tail int) error {
	if a.cache == nil {
		return fmt.Errorf("cache is not available")
	}
	spec, err := timeframe.Parse(tf)
	if err != nil {
		return err
	}

	m, err := a.cache.ManifestFor(ctx, symbol, spec.String())
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s %s: %d candles", m.Symbol, m.Timeframe, m.Rows)
	if m.Rows > 0 {
		fmt.Fprintf(w, ", %s .. %s UTC",
			time.UnixMilli(m.MinTime).UTC().Format("2006-01-02 15:04"),
			time.UnixMilli(m.MaxTime).UTC().Format("2006-01-02 15:04"))
	}
	fmt.Fprintln(w)
	if m.Rows == 0 || tail <= 0 {
		return nil
	}

	cs, err := a.cache.LoadCandles(ctx, symbol, spec.String(), tail)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tOPEN\tHIGH\tLOW\tCLOSE\tVOLUME")
	for _, c := range cs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			c.TimeString(),
			format.Price(c.Open, 2),
			format.Price(c.High, 2),
			format.Price(c.Low, 2),
			format.Price(c.Close, 2),
			format.Float(c.Volume, 4),
		)
	}
	return tw.Flush()
}
