package chart

import (
	"fmt"
	"math"
	"sort"
	"time"

	"candleChart/internal/domain"
	"candleChart/internal/ports"
)

// Markers holds the sparse buy/sell overlays, one slot per candle. Empty slots are NaN.
type Markers struct {
	Buy  []float64
	Sell []float64
	// Skipped counts trades whose action was neither buy nor sell.
	Skipped int
}

func newMarkers(n int) *Markers {
	m := &Markers{Buy: make([]float64, n), Sell: make([]float64, n)}
	for i := 0; i < n; i++ {
		m.Buy[i] = math.NaN()
		m.Sell[i] = math.NaN()
	}
	return m
}

// Count returns how many buy and sell slots hold a price.
func (m *Markers) Count() (buys, sells int) {
	if m == nil {
		return 0, 0
	}
	for i := range m.Buy {
		if !math.IsNaN(m.Buy[i]) {
			buys++
		}
		if !math.IsNaN(m.Sell[i]) {
			sells++
		}
	}
	return buys, sells
}

// NearestIndex returns the index of the time in times closest to ts, or -1
// when times is empty. times must be sorted ascending. When ts is exactly
// halfway between two candles the later one wins.
func NearestIndex(times []time.Time, ts time.Time) int {
	n := len(times)
	if n == 0 {
		return -1
	}

	i := sort.Search(n, func(i int) bool { return !times[i].Before(ts) })
	switch {
	case i == 0:
		return 0
	case i == n:
		return n - 1
	}

	if ts.Sub(times[i-1]) < times[i].Sub(ts) {
		return i - 1
	}
	return i
}

// AlignTrades places each trade's price on the candle nearest to its
// timestamp. It returns nil markers when there are no trades. When several
// trades of the same action land on one candle the last one in input order wins.
func AlignTrades(candles []*domain.Kline, trades []*domain.Trade) (*Markers, error) {
	if len(trades) == 0 {
		return nil, nil
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("%w: cannot align %d trades", ports.ErrEmptySeries, len(trades))
	}

	times := make([]time.Time, len(candles))
	for i, k := range candles {
		times[i] = NaiveTime(k.OpenTime)
	}

	m := newMarkers(len(candles))
	for _, t := range trades {
		idx := NearestIndex(times, NaiveTime(t.Timestamp))
		switch t.Action {
		case domain.ActionBuy:
			m.Buy[idx] = t.Price
		case domain.ActionSell:
			m.Sell[idx] = t.Price
		default:
			m.Skipped++
		}
	}
	return m, nil
}
