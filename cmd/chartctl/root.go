package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"candleChart/config"
	"candleChart/internal/adapters/csvstore"
	"candleChart/internal/adapters/logger"
	"candleChart/internal/adapters/sqlite"
	"candleChart/internal/app"
	"candleChart/internal/chart"
	"candleChart/internal/ports"
)

// rootOptions are flags shared by every subcommand. Set flags override the environment.
type rootOptions struct {
	output   string
	styleArg string
	noDB     bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "chartctl",
		Short:         "Render candlestick charts with trade markers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "", "output PNG path (default CHART_OUTPUT_PATH or logs/chart.png)")
	cmd.PersistentFlags().StringVar(&opts.styleArg, "style", "", "YAML style overrides (default CHART_STYLE_FILE)")
	cmd.PersistentFlags().BoolVar(&opts.noDB, "no-db", false, "read candles and trades from CSV only")

	cmd.AddCommand(
		newRenderCmd(opts),
		newSymbolCmd(opts),
		newServeCmd(opts),
	)
	return cmd
}

// env is the wired application for one command run.
type env struct {
	cfg     *config.Config
	logger  ports.Logger
	charts  *app.ChartService
	closers []func() error
}

func (e *env) Close() {
	for _, c := range e.closers {
		if err := c(); err != nil {
			e.logger.Error(context.Background(), err, "Error closing resource")
		}
	}
}

// setup loads configuration and wires the chart service. withStores adds the
// CSV store and, unless --no-db is set, the SQLite repository as fallback.
func setup(opts *rootOptions, withStores bool) (*env, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if opts.output != "" {
		cfg.ChartOutputPath = opts.output
	}
	if opts.styleArg != "" {
		cfg.ChartStyleFile = opts.styleArg
	}

	appLogger := logger.New(cfg.LogFormat, cfg.LogLevel)
	e := &env{cfg: cfg, logger: appLogger}

	renderer, err := chart.NewRenderer(cfg.ChartConfig(), appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize chart renderer: %w", err)
	}

	var klineSources []ports.KlineRepository
	var tradeSources []ports.TradeRepository
	if withStores {
		csvStore, err := csvstore.New(csvstore.Config{
			CandlesDir: cfg.CandlesDir,
			TradesPath: cfg.TradesCSVPath,
			ParseTime:  chart.ParseTradeTime,
			Logger:     appLogger,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize CSV store: %w", err)
		}
		klineSources = append(klineSources, csvStore)
		tradeSources = append(tradeSources, csvStore)

		if !opts.noDB {
			repo, err := sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: appLogger})
			if err != nil {
				return nil, fmt.Errorf("failed to initialize database repository: %w", err)
			}
			e.closers = append(e.closers, repo.Close)
			klineSources = append(klineSources, repo)
			tradeSources = append(tradeSources, repo)
		}
	}

	e.charts, err = app.NewChartService(appLogger, renderer, cfg.ChartStyle, klineSources, tradeSources)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("failed to initialize chart service: %w", err)
	}
	return e, nil
}
