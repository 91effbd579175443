package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"candleChart/internal/domain"
	"candleChart/internal/ports"
)

type mockProvider struct {
	klines   []*domain.Kline
	pingErr  error
	rangeErr error
	gotStart time.Time
	gotEnd   time.Time
}

func (m *mockProvider) Ping(ctx context.Context) error { return m.pingErr }

func (m *mockProvider) GetServerTime(ctx context.Context) (time.Time, error) {
	return time.Now(), nil
}

func (m *mockProvider) GetKlines(ctx context.Context, symbol string, interval string, limit int) ([]*domain.Kline, error) {
	return m.klines, nil
}

func (m *mockProvider) GetKlinesRange(ctx context.Context, symbol, interval string, start, end time.Time) ([]*domain.Kline, error) {
	m.gotStart, m.gotEnd = start, end
	return m.klines, m.rangeErr
}

func TestNewFetchService_Validation(t *testing.T) {
	_, err := NewFetchService(&mockLogger{}, &mockProvider{})
	assert.Error(t, err, "at least one store is required")
	_, err = NewFetchService(nil, &mockProvider{}, &mockKlineRepo{})
	assert.Error(t, err)
}

func TestFetchAndStore(t *testing.T) {
	provider := &mockProvider{klines: hourly(4)}
	csv, db := &mockKlineRepo{}, &mockKlineRepo{}
	svc, err := NewFetchService(&mockLogger{}, provider, csv, db)
	require.NoError(t, err)

	end := base.Add(4 * time.Hour)
	n, err := svc.FetchAndStore(context.Background(), "ETHUSDT", "1h", base, end)
	require.NoError(t, err)

	assert.Equal(t, 4, n)
	assert.Len(t, csv.klines, 4)
	assert.Len(t, db.klines, 4)
	assert.Equal(t, base, provider.gotStart)
	assert.Equal(t, end, provider.gotEnd)
}

func TestFetchAndStore_Errors(t *testing.T) {
	tests := []struct {
		name     string
		interval string
		provider *mockProvider
		store    *mockKlineRepo
		wantErr  error
	}{
		{name: "bad interval", interval: "2m", provider: &mockProvider{}, store: &mockKlineRepo{}, wantErr: ports.ErrInvalidRequest},
		{name: "ping fails", interval: "1h", provider: &mockProvider{pingErr: ports.ErrConnectionFailed}, store: &mockKlineRepo{}, wantErr: ports.ErrConnectionFailed},
		{name: "range fails", interval: "1h", provider: &mockProvider{rangeErr: ports.ErrRateLimited}, store: &mockKlineRepo{}, wantErr: ports.ErrRateLimited},
		{name: "store fails", interval: "1h", provider: &mockProvider{klines: hourly(2)}, store: &mockKlineRepo{err: ports.ErrUpdateFailed}, wantErr: ports.ErrUpdateFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := NewFetchService(&mockLogger{}, tt.provider, tt.store)
			require.NoError(t, err)

			_, err = svc.FetchAndStore(context.Background(), "ETHUSDT", tt.interval, base, base.Add(time.Hour))
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestFetchAndStore_EmptyResult(t *testing.T) {
	store := &mockKlineRepo{}
	logger := &mockLogger{}
	svc, err := NewFetchService(logger, &mockProvider{}, store)
	require.NoError(t, err)

	n, err := svc.FetchAndStore(context.Background(), "ETHUSDT", "1h", base, base.Add(time.Hour))
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, store.klines)
	assert.Contains(t, logger.warnMsgs, "No klines returned")
}
