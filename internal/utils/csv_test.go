package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"candleChart/internal/domain"
)

func TestCandleFileName(t *testing.T) {
	assert.Equal(t, "BNB-USDT-1h.csv", CandleFileName("BNB/USDT", "1h"))
	assert.Equal(t, "ETHUSDT-5m.csv", CandleFileName("ETHUSDT", "5m"))
}

func TestKlinesCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "candles", "ETHUSDT-1m.csv")
	base := time.Date(2025, 2, 7, 0, 0, 0, 0, time.UTC)
	in := []*domain.Kline{
		{OpenTime: base, Open: 10, High: 12, Low: 9, Close: 11, Volume: 100},
		{OpenTime: base.Add(time.Minute), Open: 11, High: 13.5, Low: 10, Close: 12.25, Volume: 150},
	}

	require.NoError(t, WriteKlinesToCSV(in, path))

	out, err := ReadKlinesFromCSV(path, "ETHUSDT", "1m")
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.True(t, out[1].OpenTime.Equal(base.Add(time.Minute)))
	assert.Equal(t, 13.5, out[1].High)
	assert.Equal(t, 12.25, out[1].Close)
	assert.Equal(t, "ETHUSDT", out[0].Symbol)
	assert.Equal(t, "1m", out[0].Interval)
}

func TestReadKlinesFromCSV_OpenTimeColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.csv")
	content := "open_time,close_time,symbol,interval,open,high,low,close,volume\n" +
		"2025-02-07T00:00:00Z,2025-02-07T00:00:59Z,ETHUSDT,1m,1,2,0.5,1.5,10\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	out, err := ReadKlinesFromCSV(path, "ETHUSDT", "1m")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 1.5, out[0].Close)
}

func TestReadKlinesFromCSV_MissingFile(t *testing.T) {
	out, err := ReadKlinesFromCSV(filepath.Join(t.TempDir(), "nope.csv"), "X", "1m")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestReadKlinesFromCSV_BadValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("timestamp,open,high,low,close,volume\n0,x,1,1,1,1\n"), 0644))

	_, err := ReadKlinesFromCSV(path, "X", "1m")
	assert.Error(t, err)
}

func TestTradesCSV_AppendAndFilter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "trades.csv")
	base := time.Date(2025, 2, 7, 10, 0, 0, 0, time.UTC)

	require.NoError(t, AppendTradeToCSV(path, &domain.Trade{Symbol: "BNB/USDT", Timestamp: base, Price: 600.5, Amount: 1, Action: domain.ActionBuy}))
	require.NoError(t, AppendTradeToCSV(path, &domain.Trade{Symbol: "ETH/USDT", Timestamp: base, Price: 3000, Action: domain.ActionBuy}))
	require.NoError(t, AppendTradeToCSV(path, &domain.Trade{Symbol: "BNB/USDT", Timestamp: base.Add(time.Hour), Price: 610, Action: domain.ActionSell}))

	parse := func(s string) (time.Time, error) { return time.Parse(time.RFC3339, s) }
	trades, err := ReadTradesFromCSV(path, "BNB/USDT", parse)
	require.NoError(t, err)
	require.Len(t, trades, 2)
	assert.Equal(t, domain.ActionBuy, trades[0].Action)
	assert.Equal(t, 600.5, trades[0].Price)
	assert.Equal(t, 1.0, trades[0].Amount)
	assert.Equal(t, domain.ActionSell, trades[1].Action)
	assert.True(t, trades[1].Timestamp.Equal(base.Add(time.Hour)))
}

func TestReadTradesFromCSV_BacktestLogColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trades.csv")
	content := "timestamp,symbol,action,price,amount,balanceUSD,balanceAsset,positionType,entryPrice,positionSize,pnl\n" +
		"2025-02-07T10:00:00.000Z,BNB/USDT,BUY,600,1,400,1,long,600,1,0\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	parse := func(s string) (time.Time, error) { return time.Parse(time.RFC3339, s) }
	trades, err := ReadTradesFromCSV(path, "BNB/USDT", parse)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, domain.ActionBuy, trades[0].Action)
}
