package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeframeToDuration(t *testing.T) {
	d, err := TimeframeToDuration("15m")
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, d)

	_, err = TimeframeToDuration("7m")
	assert.Error(t, err)
}

func TestCalcLimitFromRange(t *testing.T) {
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		tf      string
		to      time.Time
		warmup  int
		want    int
		wantErr bool
	}{
		{name: "exact hours", tf: "1h", to: from.Add(10 * time.Hour), warmup: 300, want: 310},
		{name: "partial bar rounds up", tf: "1h", to: from.Add(90 * time.Minute), warmup: 0, want: 2},
		{name: "negative warmup ignored", tf: "1d", to: from.Add(48 * time.Hour), warmup: -5, want: 2},
		{name: "empty range", tf: "1h", to: from, wantErr: true},
		{name: "unknown timeframe", tf: "1w", to: from.Add(time.Hour), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CalcLimitFromRange(tt.tf, from, tt.to, tt.warmup)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTradeAction(t *testing.T) {
	assert.Equal(t, ActionBuy, ParseTradeAction("BUY"))
	assert.Equal(t, ActionSell, ParseTradeAction(" Sell "))
	assert.False(t, ParseTradeAction("hold").IsKnown())
	assert.True(t, ParseTradeAction("buy").IsKnown())
}
