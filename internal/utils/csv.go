package utils

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"candleChart/internal/domain"
)

// Candle files use this header; timestamps are millisecond epochs.
var klineHeader = []string{"timestamp", "open", "high", "low", "close", "volume"}

// Trade logs carry at least these columns; extra columns are ignored on read.
var tradeHeader = []string{"timestamp", "symbol", "action", "price", "amount"}

// CandleFileName returns "<SYMBOL>-<timeframe>.csv", with "/" in the symbol replaced by "-".
func CandleFileName(symbol, interval string) string {
	return fmt.Sprintf("%s-%s.csv", strings.ReplaceAll(symbol, "/", "-"), interval)
}

// WriteKlinesToCSV overwrites filename with klines, creating parent directories.
func WriteKlinesToCSV(klines []*domain.Kline, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return err
	}
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(klineHeader); err != nil {
		return err
	}

	for _, k := range klines {
		err := writer.Write([]string{
			strconv.FormatInt(k.OpenTime.UnixMilli(), 10),
			strconv.FormatFloat(k.Open, 'f', -1, 64),
			strconv.FormatFloat(k.High, 'f', -1, 64),
			strconv.FormatFloat(k.Low, 'f', -1, 64),
			strconv.FormatFloat(k.Close, 'f', -1, 64),
			strconv.FormatFloat(k.Volume, 'f', -1, 64),
		})
		if err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadKlinesFromCSV loads a candle file. A missing file yields no klines and no error.
// The time column may be "timestamp" (ms epoch) or "open_time" (RFC3339).
func ReadKlinesFromCSV(filename, symbol, interval string) ([]*domain.Kline, error) {
	file, err := os.Open(filename)
	if errors.Is(err, os.ErrNotExist) {
		return []*domain.Kline{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err == io.EOF {
		return []*domain.Kline{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", filename, err)
	}
	cols := columnIndex(header)

	timeCol, ok := cols["timestamp"]
	if !ok {
		timeCol, ok = cols["open_time"]
	}
	if !ok {
		return nil, fmt.Errorf("%s: no timestamp or open_time column", filename)
	}
	for _, name := range klineHeader[1:] {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%s: missing column %q", filename, name)
		}
	}

	klines := make([]*domain.Kline, 0)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", filename, line, err)
		}

		openTime, err := parseCSVTime(record[timeCol])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", filename, line, err)
		}
		var values [5]float64
		for i, name := range klineHeader[1:] {
			values[i], err = strconv.ParseFloat(strings.TrimSpace(record[cols[name]]), 64)
			if err != nil {
				return nil, fmt.Errorf("%s line %d: parsing %s: %w", filename, line, name, err)
			}
		}

		klines = append(klines, &domain.Kline{
			OpenTime: openTime,
			Symbol:   symbol,
			Interval: interval,
			Open:     values[0],
			High:     values[1],
			Low:      values[2],
			Close:    values[3],
			Volume:   values[4],
			IsFinal:  true,
		})
	}
	return klines, nil
}

// ReadTradesFromCSV returns trades for symbol in file order. A missing file yields no trades.
// Timestamps are parsed by parseTime so callers control zone handling.
func ReadTradesFromCSV(filename, symbol string, parseTime func(string) (time.Time, error)) ([]*domain.Trade, error) {
	file, err := os.Open(filename)
	if errors.Is(err, os.ErrNotExist) {
		return []*domain.Trade{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err == io.EOF {
		return []*domain.Trade{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", filename, err)
	}
	cols := columnIndex(header)
	for _, name := range []string{"timestamp", "symbol", "action", "price"} {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%s: missing column %q", filename, name)
		}
	}

	trades := make([]*domain.Trade, 0)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", filename, line, err)
		}
		if len(record) < len(header) || record[cols["symbol"]] != symbol {
			continue
		}

		ts, err := parseTime(record[cols["timestamp"]])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", filename, line, err)
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(record[cols["price"]]), 64)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: parsing price: %w", filename, line, err)
		}
		var amount float64
		if i, ok := cols["amount"]; ok && strings.TrimSpace(record[i]) != "" {
			if amount, err = strconv.ParseFloat(strings.TrimSpace(record[i]), 64); err != nil {
				return nil, fmt.Errorf("%s line %d: parsing amount: %w", filename, line, err)
			}
		}

		trades = append(trades, &domain.Trade{
			Symbol:    symbol,
			Timestamp: ts,
			Price:     price,
			Amount:    amount,
			Action:    domain.ParseTradeAction(record[cols["action"]]),
		})
	}
	return trades, nil
}

// AppendTradeToCSV appends one trade, writing the header first when the file is new.
func AppendTradeToCSV(filename string, trade *domain.Trade) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return err
	}
	_, statErr := os.Stat(filename)
	isNew := errors.Is(statErr, os.ErrNotExist)

	file, err := os.OpenFile(filename, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if isNew {
		if err := writer.Write(tradeHeader); err != nil {
			return err
		}
	}
	err = writer.Write([]string{
		trade.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z"),
		trade.Symbol,
		string(trade.Action),
		strconv.FormatFloat(trade.Price, 'f', -1, 64),
		strconv.FormatFloat(trade.Amount, 'f', -1, 64),
	})
	if err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}

func columnIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	return cols
}

func parseCSVTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized time %q", s)
	}
	return t.UTC(), nil
}
