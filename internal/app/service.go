package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"candleChart/internal/chart"
	"candleChart/internal/domain"
	"candleChart/internal/ports"
)

// ChartRenderer draws candles and markers to the configured output file.
type ChartRenderer interface {
	Render(ctx context.Context, candles []*domain.Kline, markers *chart.Markers, style chart.Style) error
	OutputPath() string
}

// StyleProvider returns a fresh style for each render.
type StyleProvider func() (chart.Style, error)

// ChartResult summarizes a rendered chart.
type ChartResult struct {
	Path    string
	Candles int
	Buys    int
	Sells   int
	Skipped int // trades with an unknown action
	Dropped int // trades outside the candle range (symbol charts only)
}

// ChartService turns payloads or stored data into chart images.
type ChartService struct {
	logger       ports.Logger
	renderer     ChartRenderer
	style        StyleProvider
	klineSources []ports.KlineRepository
	tradeSources []ports.TradeRepository

	// Renders share one output path.
	mu sync.Mutex
}

// NewChartService creates a new chart service. Kline and trade sources are
// queried in order; the first one returning data wins.
func NewChartService(
	logger ports.Logger,
	renderer ChartRenderer,
	style StyleProvider,
	klineSources []ports.KlineRepository,
	tradeSources []ports.TradeRepository,
) (*ChartService, error) {
	if logger == nil || renderer == nil {
		return nil, fmt.Errorf("missing required dependencies for ChartService")
	}
	if style == nil {
		style = func() (chart.Style, error) { return chart.DefaultStyle(), nil }
	}
	return &ChartService{
		logger:       logger,
		renderer:     renderer,
		style:        style,
		klineSources: klineSources,
		tradeSources: tradeSources,
	}, nil
}

// OutputPath returns where charts are written.
func (s *ChartService) OutputPath() string {
	return s.renderer.OutputPath()
}

// GenerateFromPayload decodes a JSON chart payload and renders it.
func (s *ChartService) GenerateFromPayload(ctx context.Context, raw []byte) (*ChartResult, error) {
	payload, err := chart.DecodePayload(raw)
	if err != nil {
		return nil, err
	}
	return s.render(ctx, payload.Candles, payload.Trades)
}

// GenerateFromSymbol renders the stored candles of symbol/timeframe with the
// trades logged for symbol. limit caps the candle count (<= 0 means all).
func (s *ChartService) GenerateFromSymbol(ctx context.Context, symbol, timeframe string, limit int) (*ChartResult, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("%w: symbol is required", ports.ErrInvalidRequest)
	}
	tfDuration, err := domain.TimeframeToDuration(timeframe)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ports.ErrInvalidRequest, err)
	}

	candles, err := s.loadCandles(ctx, symbol, timeframe, limit)
	if err != nil {
		return nil, err
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("%w: no candles for %s %s", ports.ErrNotFound, symbol, timeframe)
	}

	trades, err := s.loadTrades(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if len(trades) == 0 {
		return nil, fmt.Errorf("%w: no trades for %s", ports.ErrNotFound, symbol)
	}

	// Trades outside the chart would otherwise be pinned to the first or last candle.
	first := candles[0].OpenTime
	end := candles[len(candles)-1].OpenTime.Add(tfDuration)
	inRange := make([]*domain.Trade, 0, len(trades))
	for _, t := range trades {
		ts := chart.NaiveTime(t.Timestamp)
		if ts.Before(first) || !ts.Before(end) {
			continue
		}
		inRange = append(inRange, t)
	}
	dropped := len(trades) - len(inRange)
	if dropped > 0 {
		s.logger.Debug(ctx, "Dropped trades outside the candle range", map[string]interface{}{"symbol": symbol, "dropped": dropped})
	}

	res, err := s.render(ctx, candles, inRange)
	if err != nil {
		return nil, err
	}
	res.Dropped = dropped
	return res, nil
}

func (s *ChartService) render(ctx context.Context, candles []*domain.Kline, trades []*domain.Trade) (*ChartResult, error) {
	markers, err := chart.AlignTrades(candles, trades)
	if err != nil {
		return nil, err
	}

	res := &ChartResult{Path: s.renderer.OutputPath(), Candles: len(candles)}
	if markers != nil {
		res.Buys, res.Sells = markers.Count()
		res.Skipped = markers.Skipped
		if markers.Skipped > 0 {
			s.logger.Debug(ctx, "Ignored trades with unknown action", map[string]interface{}{"count": markers.Skipped})
		}
	}

	style, err := s.style()
	if err != nil {
		return nil, fmt.Errorf("%w: chart style: %w", ports.ErrConfigurationError, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.renderer.Render(ctx, candles, markers, style); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *ChartService) loadCandles(ctx context.Context, symbol, timeframe string, limit int) ([]*domain.Kline, error) {
	var lastErr error
	for i, src := range s.klineSources {
		klines, err := src.FindKlines(ctx, symbol, timeframe, limit)
		if err != nil {
			s.logger.Warn(ctx, "Kline source failed, trying next", map[string]interface{}{"source": i, "symbol": symbol, "error": err.Error()})
			lastErr = err
			continue
		}
		if len(klines) > 0 {
			return klines, nil
		}
	}
	if lastErr != nil && !errors.Is(lastErr, ports.ErrNotFound) {
		return nil, fmt.Errorf("load candles for %s %s: %w", symbol, timeframe, lastErr)
	}
	return nil, nil
}

func (s *ChartService) loadTrades(ctx context.Context, symbol string) ([]*domain.Trade, error) {
	var lastErr error
	for i, src := range s.tradeSources {
		trades, err := src.FindBySymbol(ctx, symbol, 0)
		if err != nil {
			s.logger.Warn(ctx, "Trade source failed, trying next", map[string]interface{}{"source": i, "symbol": symbol, "error": err.Error()})
			lastErr = err
			continue
		}
		if len(trades) > 0 {
			return trades, nil
		}
	}
	if lastErr != nil && !errors.Is(lastErr, ports.ErrNotFound) {
		return nil, fmt.Errorf("load trades for %s: %w", symbol, lastErr)
	}
	return nil, nil
}
