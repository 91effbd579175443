package indicators

import (
	"context"
	"fmt"
	"math"
	"strings"

	"candleChart/internal/domain"
)

// MovingAverageType defines the type of moving average
type MovingAverageType string

const (
	// SimpleMovingAverage represents a simple moving average
	SimpleMovingAverage MovingAverageType = "SMA"
	// ExponentialMovingAverage represents an exponential moving average
	ExponentialMovingAverage MovingAverageType = "EMA"
)

// ParseMovingAverageType accepts "sma"/"ema" in any case.
func ParseMovingAverageType(s string) (MovingAverageType, error) {
	switch t := MovingAverageType(strings.ToUpper(strings.TrimSpace(s))); t {
	case SimpleMovingAverage, ExponentialMovingAverage:
		return t, nil
	default:
		return "", fmt.Errorf("unsupported moving average type: %s", s)
	}
}

// MovingAverageConfig holds configuration for moving average indicators
type MovingAverageConfig struct {
	IndicatorConfig
	Type MovingAverageType
}

// MovingAverage implements both SMA and EMA indicators over close prices
type MovingAverage struct {
	BaseIndicator
	config MovingAverageConfig
}

// NewMovingAverage creates a new moving average indicator instance
func NewMovingAverage(config MovingAverageConfig) *MovingAverage {
	return &MovingAverage{
		BaseIndicator: BaseIndicator{Config: config.IndicatorConfig},
		config:        config,
	}
}

// Name returns the indicator label, e.g. "SMA(20)".
func (m *MovingAverage) Name() string {
	return fmt.Sprintf("%s(%d)", m.config.Type, m.Config.Period)
}

// Calculate returns the moving average at the last kline.
func (m *MovingAverage) Calculate(ctx context.Context, klines []*domain.Kline) (float64, error) {
	values, err := m.Series(ctx, klines)
	if err != nil {
		return 0, err
	}
	return values[len(values)-1], nil
}

// Series returns the rolling moving average aligned to klines. The first
// Period-1 entries are NaN.
func (m *MovingAverage) Series(ctx context.Context, klines []*domain.Kline) ([]float64, error) {
	if m.Config.Period <= 0 {
		return nil, fmt.Errorf("moving average period must be positive, got %d", m.Config.Period)
	}
	if len(klines) < m.Config.Period {
		return nil, fmt.Errorf("not enough data (%d) to calculate %s for period %d", len(klines), m.config.Type, m.Config.Period)
	}

	switch m.config.Type {
	case SimpleMovingAverage:
		return m.smaSeries(klines), nil
	case ExponentialMovingAverage:
		return m.emaSeries(klines), nil
	default:
		return nil, fmt.Errorf("unsupported moving average type: %s", m.config.Type)
	}
}

func (m *MovingAverage) smaSeries(klines []*domain.Kline) []float64 {
	period := m.Config.Period
	out := make([]float64, len(klines))

	total := 0.0
	for i, k := range klines {
		total += k.Close
		if i >= period {
			total -= klines[i-period].Close
		}
		if i < period-1 {
			out[i] = math.NaN()
			continue
		}
		out[i] = total / float64(period)
	}
	return out
}

// emaSeries seeds with the SMA of the first Period klines.
func (m *MovingAverage) emaSeries(klines []*domain.Kline) []float64 {
	period := m.Config.Period
	multiplier := 2.0 / float64(period+1)
	out := make([]float64, len(klines))

	seed := 0.0
	for i := 0; i < period; i++ {
		seed += klines[i].Close
		out[i] = math.NaN()
	}
	ema := seed / float64(period)
	out[period-1] = ema

	for i := period; i < len(klines); i++ {
		ema = (klines[i].Close-ema)*multiplier + ema
		out[i] = ema
	}
	return out
}
