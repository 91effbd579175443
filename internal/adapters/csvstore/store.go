package csvstore

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"candleChart/internal/domain"
	"candleChart/internal/ports"
	"candleChart/internal/utils"
)

// Store implements ports.KlineRepository and ports.TradeRepository over the
// flat files a backtest leaves behind: one candle CSV per symbol/timeframe
// under CandlesDir and a single trade log at TradesPath.
type Store struct {
	candlesDir string
	tradesPath string
	parseTime  func(string) (time.Time, error)
	logger     ports.Logger
}

// Config holds configuration for the CSV store.
type Config struct {
	CandlesDir string
	TradesPath string
	// ParseTime parses trade log timestamps; defaults to RFC3339.
	ParseTime func(string) (time.Time, error)
	Logger    ports.Logger
}

// New creates a CSV store.
func New(cfg Config) (*Store, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for CSV store")
	}
	if cfg.CandlesDir == "" {
		cfg.CandlesDir = "logs/candles"
	}
	if cfg.TradesPath == "" {
		cfg.TradesPath = "logs/trades.csv"
	}
	if cfg.ParseTime == nil {
		cfg.ParseTime = func(s string) (time.Time, error) { return time.Parse(time.RFC3339, s) }
	}
	return &Store{
		candlesDir: cfg.CandlesDir,
		tradesPath: cfg.TradesPath,
		parseTime:  cfg.ParseTime,
		logger:     cfg.Logger,
	}, nil
}

func (s *Store) candlePath(symbol, interval string) string {
	return filepath.Join(s.candlesDir, utils.CandleFileName(symbol, interval))
}

// SaveKlines writes the klines of one symbol/interval to its file, replacing previous content.
func (s *Store) SaveKlines(ctx context.Context, klines []*domain.Kline) (int, error) {
	if len(klines) == 0 {
		return 0, nil
	}
	symbol, interval := klines[0].Symbol, klines[0].Interval
	for _, k := range klines {
		if k.Symbol != symbol || k.Interval != interval {
			return 0, fmt.Errorf("%w: mixed symbols/intervals in one CSV save", ports.ErrInvalidRequest)
		}
	}

	path := s.candlePath(symbol, interval)
	if err := utils.WriteKlinesToCSV(klines, path); err != nil {
		return 0, fmt.Errorf("%w: write %s: %w", ports.ErrUpdateFailed, path, err)
	}
	s.logger.Debug(ctx, "Candles saved to CSV", map[string]interface{}{"path": path, "count": len(klines)})
	return len(klines), nil
}

// FindKlines reads the candle file; a missing file yields an empty slice.
func (s *Store) FindKlines(ctx context.Context, symbol, interval string, limit int) ([]*domain.Kline, error) {
	path := s.candlePath(symbol, interval)
	klines, err := utils.ReadKlinesFromCSV(path, symbol, interval)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ports.ErrQueryFailed, path, err)
	}
	if limit > 0 && len(klines) > limit {
		klines = klines[len(klines)-limit:]
	}
	s.logger.Debug(ctx, "Candles loaded from CSV", map[string]interface{}{"path": path, "count": len(klines)})
	return klines, nil
}

// CreateTrade appends the trade to the trade log. CSV rows have no IDs, so 0 is returned.
func (s *Store) CreateTrade(ctx context.Context, trade *domain.Trade) (int64, error) {
	if err := utils.AppendTradeToCSV(s.tradesPath, trade); err != nil {
		return 0, fmt.Errorf("%w: append %s: %w", ports.ErrUpdateFailed, s.tradesPath, err)
	}
	return 0, nil
}

// FindBySymbol reads trades for symbol in file order.
func (s *Store) FindBySymbol(ctx context.Context, symbol string, limit int) ([]*domain.Trade, error) {
	trades, err := utils.ReadTradesFromCSV(s.tradesPath, symbol, s.parseTime)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ports.ErrQueryFailed, s.tradesPath, err)
	}
	if limit > 0 && len(trades) > limit {
		trades = trades[len(trades)-limit:]
	}
	s.logger.Debug(ctx, "Trades loaded from CSV", map[string]interface{}{"path": s.tradesPath, "symbol": symbol, "count": len(trades)})
	return trades, nil
}
