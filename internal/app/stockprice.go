package app

import (
	"context"
	"fmt"
	"sync"
	"text/tabwriter"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonghae5/stock-cli/internal/logger"
	"github.com/jonghae5/stock-cli/internal/market"
	"github.com/jonghae5/stock-cli/internal/pkg/format"
)

// StockPrice prints the equity quote table, optionally refreshing it
// like Price does. Quotes come one symbol per request, so the fetch
// fans out and results keep the configured symbol order.
func (a *App) StockPrice(ctx context.Context, watch bool) error {
	if err := a.stockOnce(ctx, watch); err != nil {
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
			if err := a.stockOnce(ctx, true); err != nil {
				logger.Warnf("stock refresh failed: %v", err)
			}
		}
	}
}

func (a *App) stockOnce(ctx context.Context, clear bool) error {
	cfg := a.config()
	quotes, err := a.fetchStockQuotes(ctx, cfg.StockSymbols)
	if err != nil {
		return err
	}
	if clear {
		fmt.Fprint(a.out, clearScreen)
	}
	a.printStockQuotes(cfg.StockTableTitle, quotes)
	return nil
}

func (a *App) fetchStockQuotes(ctx context.Context, symbols []string) ([]market.StockQuote, error) {
	quotes := make([]market.StockQuote, len(symbols))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, sym := range symbols {
		g.Go(func() error {
			q, err := a.stocks.Quote(gctx, sym)
			if err != nil {
				return err
			}
			mu.Lock()
			quotes[i] = q
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return quotes, nil
}

func (a *App) printStockQuotes(title string, quotes []market.StockQuote) {
	fmt.Fprintf(a.out, "%s  %s\n", title, time.Now().Format("15:04:05"))
	w := tabwriter.NewWriter(a.out, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SYMBOL\tOPEN\tCLOSE\tCHANGE\tVOLUME\tHIGH\tLOW")
	for _, q := range quotes {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			q.Symbol,
			format.Price(q.Open, 2),
			format.Price(q.Close, 2),
			format.Percent(q.ChangeRate),
			format.Float(q.Volume, 0),
			format.Price(q.High, 2),
			format.Price(q.Low, 2),
		)
	}
	w.Flush()
}
