package main

import (
	"context"
	"fmt"
	"log" // Use standard log only for initial fatal errors before logger is set up
	"os"

	"candleChart/config"
	"candleChart/internal/adapters/logger"
	"candleChart/internal/app"
	"candleChart/internal/chart"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s '<json payload>'\n", os.Args[0])
		os.Exit(2)
	}

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	// 2. Initialize Logger
	appLogger := logger.New(cfg.LogFormat, cfg.LogLevel)
	ctx := context.Background()

	// 3. Initialize Renderer
	renderer, err := chart.NewRenderer(cfg.ChartConfig(), appLogger)
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize chart renderer")
		log.Fatalf("FATAL: Failed to initialize chart renderer: %v", err)
	}

	// 4. Initialize Chart Service (payload charts need no stores)
	chartService, err := app.NewChartService(appLogger, renderer, cfg.ChartStyle, nil, nil)
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize chart service")
		log.Fatalf("FATAL: Failed to initialize chart service: %v", err)
	}

	// 5. Render
	res, err := chartService.GenerateFromPayload(ctx, []byte(os.Args[1]))
	if err != nil {
		appLogger.Error(ctx, err, "Chart generation failed")
		log.Fatalf("FATAL: Chart generation failed: %v", err)
	}

	appLogger.Info(ctx, "Chart saved", map[string]interface{}{
		"path":    res.Path,
		"candles": res.Candles,
		"buys":    res.Buys,
		"sells":   res.Sells,
	})
}
