package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"candleChart/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLogger implements ports.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

// setupTestDB creates a temporary database for testing
func setupTestDB(t *testing.T) (*Repository, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "candle-chart-test-*")
	require.NoError(t, err)

	repo, err := NewRepository(Config{
		DBPath: filepath.Join(tmpDir, "test.db"),
		Logger: &mockLogger{},
	})
	require.NoError(t, err)

	cleanup := func() {
		repo.Close()
		os.RemoveAll(tmpDir)
	}
	return repo, cleanup
}

func hourlyKlines(symbol string, n int, base time.Time) []*domain.Kline {
	out := make([]*domain.Kline, n)
	for i := range out {
		out[i] = &domain.Kline{
			Symbol:    symbol,
			Interval:  "1h",
			OpenTime:  base.Add(time.Duration(i) * time.Hour),
			CloseTime: base.Add(time.Duration(i+1)*time.Hour - time.Millisecond),
			Open:      100 + float64(i),
			High:      105 + float64(i),
			Low:       95 + float64(i),
			Close:     101 + float64(i),
			Volume:    10 * float64(i+1),
		}
	}
	return out
}

func TestRepository_NewRepositoryRequiresLogger(t *testing.T) {
	_, err := NewRepository(Config{DBPath: filepath.Join(t.TempDir(), "x.db")})
	assert.Error(t, err)
}

func TestRepository_SaveAndFindKlines(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	n, err := repo.SaveKlines(ctx, hourlyKlines("ETHUSDT", 5, base))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	_, err = repo.SaveKlines(ctx, hourlyKlines("BTCUSDT", 2, base))
	require.NoError(t, err)

	tests := []struct {
		name      string
		symbol    string
		limit     int
		wantLen   int
		wantFirst float64
	}{
		{name: "all", symbol: "ETHUSDT", limit: 0, wantLen: 5, wantFirst: 100},
		{name: "latest two ascending", symbol: "ETHUSDT", limit: 2, wantLen: 2, wantFirst: 103},
		{name: "other symbol", symbol: "BTCUSDT", limit: 0, wantLen: 2, wantFirst: 100},
		{name: "unknown symbol", symbol: "XRPUSDT", limit: 0, wantLen: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			klines, err := repo.FindKlines(ctx, tt.symbol, "1h", tt.limit)
			require.NoError(t, err)
			require.Len(t, klines, tt.wantLen)
			if tt.wantLen == 0 {
				return
			}
			assert.Equal(t, tt.wantFirst, klines[0].Open)
			for i := 1; i < len(klines); i++ {
				assert.True(t, klines[i].OpenTime.After(klines[i-1].OpenTime))
			}
		})
	}
}

func TestRepository_SaveKlinesUpserts(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	klines := hourlyKlines("ETHUSDT", 3, base)
	_, err := repo.SaveKlines(ctx, klines)
	require.NoError(t, err)

	klines[1].Close = 999
	_, err = repo.SaveKlines(ctx, klines[1:2])
	require.NoError(t, err)

	got, err := repo.FindKlines(ctx, "ETHUSDT", "1h", 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 999.0, got[1].Close)
	assert.True(t, got[1].OpenTime.Equal(base.Add(time.Hour)))
	assert.True(t, got[1].CloseTime.Equal(klines[1].CloseTime))
}

func TestRepository_CreateAndFindTrades(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	trades := []*domain.Trade{
		{Symbol: "ETHUSDT", Timestamp: base.Add(time.Hour), Price: 2010, Action: domain.ActionSell},
		{Symbol: "ETHUSDT", Timestamp: base, Price: 2000, Amount: 0.5, Action: domain.ActionBuy},
		{Symbol: "BTCUSDT", Timestamp: base, Price: 90000, Action: domain.ActionBuy},
		{Symbol: "ETHUSDT", Timestamp: base.Add(time.Hour), Price: 2011, Action: domain.ActionSell},
	}
	for _, tr := range trades {
		id, err := repo.CreateTrade(ctx, tr)
		require.NoError(t, err)
		assert.Equal(t, id, tr.ID)
	}

	got, err := repo.FindBySymbol(ctx, "ETHUSDT", 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 2000.0, got[0].Price)
	assert.Equal(t, 0.5, got[0].Amount)
	assert.Equal(t, domain.ActionBuy, got[0].Action)
	// Same timestamp keeps insertion order.
	assert.Equal(t, 2010.0, got[1].Price)
	assert.Equal(t, 2011.0, got[2].Price)
	assert.True(t, got[1].Timestamp.Equal(base.Add(time.Hour)))

	latest, err := repo.FindBySymbol(ctx, "ETHUSDT", 1)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, 2011.0, latest[0].Price)
}
