package chart

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"candleChart/internal/domain"
	"candleChart/internal/ports"
)

// candleFields is the column order of a candle row: timestamp, open, high, low, close, volume.
const candleFields = 6

// Payload is a decoded chart request.
type Payload struct {
	Candles []*domain.Kline
	Trades  []*domain.Trade
}

type rawPayload struct {
	Candles json.RawMessage   `json:"candles"`
	Trades  []json.RawMessage `json:"trades"`
}

// DecodePayload parses {"candles": [[ts_ms, o, h, l, c, v], ...], "trades": [...]}.
// Structural problems wrap ports.ErrDecode; unparseable trade timestamps or
// prices wrap ports.ErrTradeConversion. Candle order is preserved.
func DecodePayload(data []byte) (*Payload, error) {
	var raw rawPayload
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ports.ErrDecode, err)
	}
	if len(raw.Candles) == 0 || isNull(raw.Candles) {
		return nil, fmt.Errorf("%w: missing \"candles\" field", ports.ErrDecode)
	}

	var rows []json.RawMessage
	if err := json.Unmarshal(raw.Candles, &rows); err != nil {
		return nil, fmt.Errorf("%w: \"candles\" must be an array: %v", ports.ErrDecode, err)
	}

	p := &Payload{Candles: make([]*domain.Kline, 0, len(rows))}
	for i, row := range rows {
		k, err := decodeCandle(row)
		if err != nil {
			return nil, fmt.Errorf("%w: candle %d: %v", ports.ErrDecode, i, err)
		}
		p.Candles = append(p.Candles, k)
	}

	if len(raw.Trades) > 0 {
		p.Trades = make([]*domain.Trade, 0, len(raw.Trades))
	}
	for i, rt := range raw.Trades {
		t, err := decodeTrade(rt)
		if err != nil {
			return nil, fmt.Errorf("trade %d: %w", i, err)
		}
		p.Trades = append(p.Trades, t)
	}
	return p, nil
}

func decodeCandle(row json.RawMessage) (*domain.Kline, error) {
	var cells []json.RawMessage
	if err := json.Unmarshal(row, &cells); err != nil {
		return nil, fmt.Errorf("row must be an array: %v", err)
	}
	if len(cells) != candleFields {
		return nil, fmt.Errorf("expected %d fields, got %d", candleFields, len(cells))
	}

	var values [candleFields]float64
	for i, cell := range cells {
		v, err := parseNumber(cell)
		if err != nil {
			return nil, fmt.Errorf("field %d: %v", i, err)
		}
		values[i] = v
	}

	return &domain.Kline{
		OpenTime: time.UnixMilli(int64(values[0])).UTC(),
		Open:     values[1],
		High:     values[2],
		Low:      values[3],
		Close:    values[4],
		Volume:   values[5],
		IsFinal:  true,
	}, nil
}

func decodeTrade(raw json.RawMessage) (*domain.Trade, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return nil, fmt.Errorf("%w: trade must be an object", ports.ErrDecode)
	}
	for _, key := range []string{"timestamp", "price", "action"} {
		if v, ok := fields[key]; !ok || isNull(v) {
			return nil, fmt.Errorf("%w: missing %q", ports.ErrDecode, key)
		}
	}

	var action string
	if err := json.Unmarshal(fields["action"], &action); err != nil {
		return nil, fmt.Errorf("%w: \"action\" must be a string", ports.ErrDecode)
	}

	ts, err := parseTradeTimeJSON(fields["timestamp"])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ports.ErrTradeConversion, err)
	}
	price, err := parseNumber(fields["price"])
	if err != nil {
		return nil, fmt.Errorf("%w: price: %v", ports.ErrTradeConversion, err)
	}

	return &domain.Trade{
		Timestamp: ts,
		Price:     price,
		Action:    domain.ParseTradeAction(action),
	}, nil
}

// parseNumber accepts a JSON number or a numeric string and rejects NaN/Inf.
func parseNumber(raw json.RawMessage) (float64, error) {
	if isNull(raw) {
		return 0, fmt.Errorf("null is not a number")
	}

	var v float64
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		parsed, perr := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if perr != nil {
			return 0, fmt.Errorf("%q is not numeric", s)
		}
		v = parsed
	} else if err := json.Unmarshal(raw, &v); err != nil {
		return 0, fmt.Errorf("%s is not numeric", raw)
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s is not finite", raw)
	}
	return v, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
