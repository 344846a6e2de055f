package app

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/jonghae5/stock-cli/internal/logger"
	"github.com/jonghae5/stock-cli/internal/market"
	"github.com/jonghae5/stock-cli/internal/pkg/format"
)

const clearScreen = "\033[2J\033[H"

// Price prints the crypto quote table once, or keeps refreshing it
// every update_interval seconds until the context is cancelled.
func (a *App) Price(ctx context.Context, watch bool) error {
	if err := a.priceOnce(ctx, watch); err != nil {
		return err
	}
	if !watch {
		return nil
	}

	tick := time.NewTicker(time.Duration(a.config().UpdateInterval) * time.Second)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick.C:
			// a transient fetch failure should not kill the watch loop
			if err := a.priceOnce(ctx, true); err != nil {
				logger.Warnf("price refresh failed: %v", err)
			}
		}
	}
}

func (a *App) priceOnce(ctx context.Context, clear bool) error {
	cfg := a.config()
	quotes, err := a.ticker.Ticker(ctx, cfg.Symbols...)
	if err != nil {
		return err
	}
	if clear {
		fmt.Fprint(a.out, clearScreen)
	}
	a.printQuotes(cfg.TableTitle, quotes)
	return nil
}

func (a *App) printQuotes(title string, quotes []market.Quote) {
	fmt.Fprintf(a.out, "%s  %s\n", title, time.Now().Format("15:04:05"))
	w := tabwriter.NewWriter(a.out, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SYMBOL\tPRICE\tCHANGE\tVOLUME\tHIGH\tLOW")
	for _, q := range quotes {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			q.Symbol,
			format.Price(q.TradePrice, 2),
			format.Percent(q.ChangeRate),
			format.Float(q.Volume, 2),
			format.Price(q.High, 2),
			format.Price(q.Low, 2),
		)
	}
	w.Flush()
}
