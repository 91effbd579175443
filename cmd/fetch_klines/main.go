package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"candleChart/config"
	"candleChart/internal/adapters/binanceclient"
	"candleChart/internal/adapters/csvstore"
	"candleChart/internal/adapters/logger"
	"candleChart/internal/adapters/sqlite"
	"candleChart/internal/app"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	// 2. Initialize Logger
	appLogger := logger.New(cfg.LogFormat, cfg.LogLevel)
	appLogger.Info(context.Background(), "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String()})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Initialize Exchange Client (Binance Adapter)
	binanceClient, err := binanceclient.New(binanceclient.Config{
		APIKey:     cfg.APIKey,
		SecretKey:  cfg.SecretKey,
		UseTestnet: cfg.IsTestnet,
		Logger:     appLogger,
		PageDelay:  cfg.FetchPageDelay,
	})
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize Binance client")
		log.Fatalf("FATAL: Failed to initialize Binance client: %v", err)
	}

	// 4. Initialize Stores (candle CSV and SQLite)
	csvStore, err := csvstore.New(csvstore.Config{
		CandlesDir: cfg.CandlesDir,
		TradesPath: cfg.TradesCSVPath,
		Logger:     appLogger,
	})
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize CSV store")
		log.Fatalf("FATAL: Failed to initialize CSV store: %v", err)
	}

	repo, err := sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: appLogger})
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize database repository")
		log.Fatalf("FATAL: Failed to initialize database repository: %v", err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			appLogger.Error(context.Background(), err, "Error closing database repository")
		}
	}()

	// 5. Fetch
	fetchService, err := app.NewFetchService(appLogger, binanceClient, csvStore, repo)
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize fetch service")
		log.Fatalf("FATAL: Failed to initialize fetch service: %v", err)
	}

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -cfg.FetchDays)
	count, err := fetchService.FetchAndStore(ctx, cfg.FetchSymbol, cfg.FetchInterval, start, end)
	if err != nil {
		appLogger.Error(ctx, err, "Error fetching klines")
		repo.Close()
		log.Fatalf("Error fetching klines: %v", err)
	}
	appLogger.Info(ctx, "Fetch complete", map[string]interface{}{"symbol": cfg.FetchSymbol, "interval": cfg.FetchInterval, "count": count})
}
