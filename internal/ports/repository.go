package ports

import (
	"context"

	"candleChart/internal/domain"
)

// KlineRepository stores candles per symbol and interval.
type KlineRepository interface {
	// SaveKlines upserts klines keyed by (symbol, interval, open time) and returns how many were written.
	SaveKlines(ctx context.Context, klines []*domain.Kline) (int, error)
	// FindKlines returns up to limit of the most recent klines in ascending time order.
	// A limit <= 0 returns all of them. An unknown symbol yields an empty slice, not an error.
	FindKlines(ctx context.Context, symbol, interval string, limit int) ([]*domain.Kline, error)
}

// TradeRepository stores executed trades.
type TradeRepository interface {
	// CreateTrade saves a new trade record and returns its assigned ID.
	CreateTrade(ctx context.Context, trade *domain.Trade) (int64, error)
	// FindBySymbol returns trades for a symbol in the order they were executed (ties keep insertion order).
	// A limit <= 0 returns all of them.
	FindBySymbol(ctx context.Context, symbol string, limit int) ([]*domain.Trade, error)
}
