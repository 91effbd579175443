package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newSymbolCmd(opts *rootOptions) *cobra.Command {
	var (
		symbol    string
		timeframe string
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "symbol",
		Short: "Render stored candles of a symbol with its logged trades",
		RunE: func(cmd *cobra.Command, args []string) error {
			if symbol == "" {
				return fmt.Errorf("missing --symbol (e.g. ETHUSDT)")
			}

			e, err := setup(opts, true)
			if err != nil {
				return err
			}
			defer e.Close()

			res, err := e.charts.GenerateFromSymbol(context.Background(), symbol, timeframe, limit)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%d candles, %d buys, %d sells, %d trades outside range)\n",
				res.Path, res.Candles, res.Buys, res.Sells, res.Dropped)
			return nil
		},
	}

	cmd.Flags().StringVarP(&symbol, "symbol", "s", "", "trading symbol, e.g. ETHUSDT")
	cmd.Flags().StringVarP(&timeframe, "timeframe", "t", "1m", "candle timeframe (1m, 5m, 1h, 1d, ...)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "render only the latest N candles (0 = all)")
	return cmd
}
