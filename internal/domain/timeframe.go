package domain

import (
	"fmt"
	"math"
	"time"
)

var timeframes = map[string]time.Duration{
	"1m":  time.Minute,
	"3m":  3 * time.Minute,
	"5m":  5 * time.Minute,
	"15m": 15 * time.Minute,
	"30m": 30 * time.Minute,
	"1h":  time.Hour,
	"2h":  2 * time.Hour,
	"4h":  4 * time.Hour,
	"6h":  6 * time.Hour,
	"8h":  8 * time.Hour,
	"12h": 12 * time.Hour,
	"1d":  24 * time.Hour,
}

// TimeframeToDuration returns the bucket length of a kline interval.
func TimeframeToDuration(tf string) (time.Duration, error) {
	d, ok := timeframes[tf]
	if !ok {
		return 0, fmt.Errorf("unsupported timeframe: %s", tf)
	}
	return d, nil
}

// CalcLimitFromRange returns how many klines cover [from, to) plus warmupBars
// extra bars needed by indicators.
func CalcLimitFromRange(tf string, from, to time.Time, warmupBars int) (int, error) {
	d, err := TimeframeToDuration(tf)
	if err != nil {
		return 0, err
	}
	if !to.After(from) {
		return 0, fmt.Errorf("invalid range: from %s >= to %s", from.Format(time.RFC3339), to.Format(time.RFC3339))
	}
	bars := int(math.Ceil(float64(to.Sub(from)) / float64(d)))
	if warmupBars < 0 {
		warmupBars = 0
	}
	return bars + warmupBars, nil
}
