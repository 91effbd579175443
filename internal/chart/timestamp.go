package chart

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Layouts accepted for string trade timestamps. Fractional seconds are
// accepted after the seconds field even when the layout omits them.
var tradeTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05Z0700",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// NaiveTime drops the zone of t and keeps its wall clock, expressed in UTC.
// 10:00+03:00 becomes 10:00 UTC, not 07:00 UTC.
func NaiveTime(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// ParseTradeTime parses an ISO-8601 string or a millisecond epoch (number or
// digit string) and returns it timezone-naive.
func ParseTradeTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}

	if ms, err := strconv.ParseFloat(s, 64); err == nil {
		return epochMillis(ms)
	}

	for _, layout := range tradeTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return NaiveTime(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func parseTradeTimeJSON(raw json.RawMessage) (time.Time, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return ParseTradeTime(s)
	}
	var ms float64
	if isNull(raw) || json.Unmarshal(raw, &ms) != nil {
		return time.Time{}, fmt.Errorf("timestamp must be a string or number, got %s", raw)
	}
	return epochMillis(ms)
}

func epochMillis(ms float64) (time.Time, error) {
	if math.IsNaN(ms) || math.IsInf(ms, 0) {
		return time.Time{}, fmt.Errorf("timestamp %v is not finite", ms)
	}
	return time.UnixMilli(int64(ms)).UTC(), nil
}
