package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandTree(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"graph", "price", "price_stock", "cache"} {
		assert.True(t, names[want], "missing command %q", want)
	}
}

func TestGraphFlags(t *testing.T) {
	for _, name := range []string{"symbol", "timeframe", "output", "source", "png", "ticks"} {
		require.NotNil(t, graphCmd.Flags().Lookup(name), "missing flag %q", name)
	}
	assert.Equal(t, "KRW-BTC", graphCmd.Flags().Lookup("symbol").DefValue)
}

func TestWatchFlagShorthand(t *testing.T) {
	f := priceCmd.Flags().Lookup("watch")
	require.NotNil(t, f)
	assert.Equal(t, "w", f.Shorthand)
}
