package app

import (
	"context"
	"fmt"
	"time"

	"candleChart/internal/domain"
	"candleChart/internal/ports"
)

// FetchService downloads klines from an exchange into local stores.
type FetchService struct {
	logger   ports.Logger
	provider ports.KlineProvider
	stores   []ports.KlineRepository
}

// NewFetchService creates a new fetch service.
func NewFetchService(logger ports.Logger, provider ports.KlineProvider, stores ...ports.KlineRepository) (*FetchService, error) {
	if logger == nil || provider == nil || len(stores) == 0 {
		return nil, fmt.Errorf("missing required dependencies for FetchService")
	}
	return &FetchService{logger: logger, provider: provider, stores: stores}, nil
}

// FetchAndStore downloads klines opened in [start, end] and saves them to every store.
// It returns the number of klines downloaded.
func (s *FetchService) FetchAndStore(ctx context.Context, symbol, interval string, start, end time.Time) (int, error) {
	if _, err := domain.TimeframeToDuration(interval); err != nil {
		return 0, fmt.Errorf("%w: %w", ports.ErrInvalidRequest, err)
	}
	if err := s.provider.Ping(ctx); err != nil {
		return 0, fmt.Errorf("exchange unreachable: %w", err)
	}

	s.logger.Info(ctx, "Fetching klines", map[string]interface{}{
		"symbol":   symbol,
		"interval": interval,
		"start":    start.Format(time.RFC3339),
		"end":      end.Format(time.RFC3339),
	})
	klines, err := s.provider.GetKlinesRange(ctx, symbol, interval, start, end)
	if err != nil {
		return 0, fmt.Errorf("fetch klines for %s %s: %w", symbol, interval, err)
	}
	if len(klines) == 0 {
		s.logger.Warn(ctx, "No klines returned", map[string]interface{}{"symbol": symbol, "interval": interval})
		return 0, nil
	}

	for i, store := range s.stores {
		n, err := store.SaveKlines(ctx, klines)
		if err != nil {
			return 0, fmt.Errorf("save klines to store %d: %w", i, err)
		}
		s.logger.Info(ctx, "Klines saved", map[string]interface{}{"store": i, "count": n})
	}
	return len(klines), nil
}
