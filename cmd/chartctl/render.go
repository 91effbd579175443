package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newRenderCmd(opts *rootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "render [json|-]",
		Short: "Render a chart from a JSON payload argument, file or stdin",
		Long: `Render a chart from a payload of the form
  {"candles": [[ts_ms, open, high, low, close, volume], ...],
   "trades":  [{"timestamp": ..., "price": ..., "action": "buy"|"sell"}]}
Pass "-" or no argument to read the payload from stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := readPayload(cmd, file, args)
			if err != nil {
				return err
			}

			e, err := setup(opts, false)
			if err != nil {
				return err
			}
			defer e.Close()

			res, err := e.charts.GenerateFromPayload(context.Background(), payload)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%d candles, %d buys, %d sells)\n", res.Path, res.Candles, res.Buys, res.Sells)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "read the payload from a file")
	return cmd
}

func readPayload(cmd *cobra.Command, file string, args []string) ([]byte, error) {
	switch {
	case file != "" && len(args) > 0:
		return nil, fmt.Errorf("pass the payload either as an argument or with --file, not both")
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read payload file: %w", err)
		}
		return data, nil
	case len(args) == 0 || args[0] == "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read payload from stdin: %w", err)
		}
		return data, nil
	default:
		return []byte(args[0]), nil
	}
}
