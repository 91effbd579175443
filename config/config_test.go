package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"candleChart/internal/adapters/logger"
	"candleChart/internal/chart"
	"candleChart/internal/indicators"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "logs/chart.png", cfg.ChartOutputPath)
	assert.Equal(t, 200.0, cfg.ChartDPI)
	assert.Equal(t, []int{20, 50}, cfg.ChartMAPeriods)
	assert.Equal(t, indicators.SimpleMovingAverage, cfg.ChartMAType)
	assert.Equal(t, 100000, cfg.ChartWarnTooMuchData)
	assert.Equal(t, "logs/candles", cfg.CandlesDir)
	assert.Equal(t, "logs/trades.csv", cfg.TradesCSVPath)
	assert.Equal(t, "ETHUSDT", cfg.FetchSymbol)
	assert.Equal(t, 250*time.Millisecond, cfg.FetchPageDelay)
	assert.Equal(t, logger.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)

	assert.Equal(t, chart.DefaultConfig(), cfg.ChartConfig())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("CHART_OUTPUT_PATH", "out/eth.png")
	t.Setenv("CHART_DPI", "96")
	t.Setenv("CHART_MA_PERIODS", "7, 25,99")
	t.Setenv("CHART_MA_TYPE", "ema")
	t.Setenv("FETCH_SYMBOL", "btcusdt")
	t.Setenv("FETCH_INTERVAL", "4h")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "JSON")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	cc := cfg.ChartConfig()
	assert.Equal(t, "out/eth.png", cc.OutputPath)
	assert.Equal(t, 96.0, cc.DPI)
	assert.Equal(t, []int{7, 25, 99}, cc.MovingAverages)
	assert.Equal(t, indicators.ExponentialMovingAverage, cc.MovingAverageType)
	assert.Equal(t, "BTCUSDT", cfg.FetchSymbol)
	assert.Equal(t, "4h", cfg.FetchInterval)
	assert.Equal(t, logger.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadConfig_DisableMovingAverages(t *testing.T) {
	t.Setenv("CHART_MA_PERIODS", "none")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Empty(t, cfg.ChartMAPeriods)
}

func TestLoadConfig_CollectsErrors(t *testing.T) {
	t.Setenv("CHART_DPI", "abc")
	t.Setenv("CHART_WIDTH", "-1")
	t.Setenv("CHART_MA_PERIODS", "20,0")
	t.Setenv("CHART_MA_TYPE", "wma")
	t.Setenv("FETCH_INTERVAL", "7m")
	t.Setenv("LOG_FORMAT", "xml")

	_, err := LoadConfig()
	require.Error(t, err)
	for _, want := range []string{"CHART_DPI", "CHART_WIDTH", "CHART_MA_PERIODS", "CHART_MA_TYPE", "FETCH_INTERVAL", "LOG_FORMAT"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestConfig_ChartStyle(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "style.yaml")
	require.NoError(t, os.WriteFile(path, []byte("background: \"#101010\"\nbold_title: false\nmarker_size: 14\n"), 0644))
	t.Setenv("CHART_STYLE_FILE", path)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	style, err := cfg.ChartStyle()
	require.NoError(t, err)
	bg, _ := chart.ParseHexColor("#101010")
	assert.Equal(t, bg, style.Background)
	assert.False(t, style.BoldTitle)
	assert.Equal(t, 14.0, style.MarkerSize)
	assert.Equal(t, chart.DefaultStyle().Up, style.Up)
}

func TestStyleFile_Apply(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
		check   func(t *testing.T, s chart.Style)
	}{
		{
			name: "empty keeps defaults",
			yaml: "",
			check: func(t *testing.T, s chart.Style) {
				assert.Equal(t, chart.DefaultStyle(), s)
			},
		},
		{
			name: "colours and sizes",
			yaml: "up: \"#26A69A\"\ndown: EF5350\nvolume_alpha: 90\nmoving_average_colors: [\"#FFFFFF\"]\nfont_size: 10\n",
			check: func(t *testing.T, s chart.Style) {
				up, _ := chart.ParseHexColor("#26A69A")
				assert.Equal(t, up, s.Up)
				assert.Equal(t, uint8(90), s.VolumeAlpha)
				assert.Len(t, s.MovingAverageColors, 1)
				assert.Equal(t, 10.0, s.FontSize)
			},
		},
		{name: "bad colour", yaml: "grid: \"#12345\"\n", wantErr: "style grid"},
		{name: "bad ma colour", yaml: "moving_average_colors: [\"#fff\", nope]\n", wantErr: "moving_average_colors[1]"},
		{name: "unknown key", yaml: "colour: red\n", wantErr: "parse style"},
		{name: "volume panel too large", yaml: "volume_panel: 0.95\n", wantErr: "volume panel"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sf, err := ParseStyle([]byte(tt.yaml))
			if err == nil {
				var s chart.Style
				s, err = sf.Apply(chart.DefaultStyle())
				if tt.check != nil && err == nil {
					tt.check(t, s)
				}
			}
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStyleFile_ApplyDoesNotMutateBase(t *testing.T) {
	base := chart.DefaultStyle()
	before := base.MovingAverageColors[0]

	sf, err := ParseStyle([]byte("moving_average_colors: [\"#000000\"]\n"))
	require.NoError(t, err)
	_, err = sf.Apply(base)
	require.NoError(t, err)
	assert.Equal(t, before, base.MovingAverageColors[0])
}
