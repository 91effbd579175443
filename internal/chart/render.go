package chart

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"

	"candleChart/internal/domain"
	"candleChart/internal/indicators"
	"candleChart/internal/ports"
)

// Config controls the output of a Renderer.
type Config struct {
	OutputPath        string
	Width             int     // pixels
	Height            int     // pixels
	DPI               float64 // font and marker scaling
	Title             string
	YLabel            string
	MovingAverages    []int
	MovingAverageType indicators.MovingAverageType
	// WarnTooMuchData logs a warning above this many candles; 0 disables the check.
	WarnTooMuchData int
}

// DefaultConfig writes logs/chart.png at 200 DPI with 20/50 period SMAs.
func DefaultConfig() Config {
	return Config{
		OutputPath:        "logs/chart.png",
		Width:             2000,
		Height:            1200,
		DPI:               200,
		Title:             "Backtest Chart",
		YLabel:            "Price, USDT",
		MovingAverages:    []int{20, 50},
		MovingAverageType: indicators.SimpleMovingAverage,
		WarnTooMuchData:   100000,
	}
}

// Renderer draws candle charts with go-chart and writes them as PNG.
type Renderer struct {
	cfg    Config
	logger ports.Logger
}

// NewRenderer validates cfg and creates a Renderer.
func NewRenderer(cfg Config, logger ports.Logger) (*Renderer, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required for chart renderer")
	}
	if cfg.OutputPath == "" {
		return nil, fmt.Errorf("%w: chart output path is empty", ports.ErrConfigurationError)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.DPI <= 0 {
		return nil, fmt.Errorf("%w: chart width, height and DPI must be positive", ports.ErrConfigurationError)
	}
	for _, p := range cfg.MovingAverages {
		if p <= 0 {
			return nil, fmt.Errorf("%w: moving average period must be positive, got %d", ports.ErrConfigurationError, p)
		}
	}
	if cfg.MovingAverageType == "" {
		cfg.MovingAverageType = indicators.SimpleMovingAverage
	}
	return &Renderer{cfg: cfg, logger: logger}, nil
}

// OutputPath returns where Render writes the image.
func (r *Renderer) OutputPath() string {
	return r.cfg.OutputPath
}

// Render draws the chart and writes it to the configured output path. The
// file is only created once the image has been fully rendered.
func (r *Renderer) Render(ctx context.Context, candles []*domain.Kline, markers *Markers, style Style) error {
	var buf bytes.Buffer
	if err := r.RenderPNG(ctx, &buf, candles, markers, style); err != nil {
		return err
	}

	path := r.cfg.OutputPath
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("%w: create output directory for %s: %w", ports.ErrRender, path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("%w: write %s: %w", ports.ErrRender, path, err)
	}

	r.logger.Info(ctx, "Chart written", map[string]interface{}{"path": path, "candles": len(candles), "bytes": buf.Len()})
	return nil
}

// RenderPNG draws the chart and encodes it as a tight-cropped PNG to w.
func (r *Renderer) RenderPNG(ctx context.Context, w io.Writer, candles []*domain.Kline, markers *Markers, style Style) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ports.ErrRender, err)
	}
	if len(candles) == 0 {
		return fmt.Errorf("%w: %w", ports.ErrRender, ports.ErrEmptySeries)
	}
	if err := style.Validate(); err != nil {
		return fmt.Errorf("%w: invalid style: %w", ports.ErrRender, err)
	}
	if markers != nil && (len(markers.Buy) != len(candles) || len(markers.Sell) != len(candles)) {
		return fmt.Errorf("%w: marker overlays have %d/%d slots for %d candles",
			ports.ErrRender, len(markers.Buy), len(markers.Sell), len(candles))
	}
	if r.cfg.WarnTooMuchData > 0 && len(candles) > r.cfg.WarnTooMuchData {
		r.logger.Warn(ctx, "Too much data for a readable chart, rendering anyway",
			map[string]interface{}{"candles": len(candles), "limit": r.cfg.WarnTooMuchData})
	}

	fonts, err := loadFonts()
	if err != nil {
		return fmt.Errorf("%w: %w", ports.ErrRender, err)
	}

	averages, err := r.movingAverages(ctx, candles, style)
	if err != nil {
		return fmt.Errorf("%w: %w", ports.ErrRender, err)
	}

	c := r.buildChart(candles, markers, averages, style, fonts)

	var raw bytes.Buffer
	if err := c.Render(gochart.PNG, &raw); err != nil {
		return fmt.Errorf("%w: %w", ports.ErrRender, err)
	}

	img, err := png.Decode(&raw)
	if err != nil {
		return fmt.Errorf("%w: decode rendered image: %w", ports.ErrRender, err)
	}
	margin := int(math.Round(r.cfg.DPI * 0.1))
	if err := png.Encode(w, cropTight(img, style.Background, margin)); err != nil {
		return fmt.Errorf("%w: encode png: %w", ports.ErrRender, err)
	}

	buys, sells := markers.Count()
	r.logger.Debug(ctx, "Chart rendered", map[string]interface{}{
		"candles": len(candles), "movingAverages": len(averages), "buyMarkers": buys, "sellMarkers": sells,
	})
	return nil
}

// movingAverages builds one line series per configured period. Periods longer
// than the series are skipped.
func (r *Renderer) movingAverages(ctx context.Context, candles []*domain.Kline, style Style) ([]gochart.Series, error) {
	series := make([]gochart.Series, 0, len(r.cfg.MovingAverages))
	for i, period := range r.cfg.MovingAverages {
		if period > len(candles) {
			r.logger.Debug(ctx, "Skipping moving average, not enough candles",
				map[string]interface{}{"period": period, "candles": len(candles)})
			continue
		}

		ma := indicators.NewMovingAverage(indicators.MovingAverageConfig{
			IndicatorConfig: indicators.IndicatorConfig{Period: period},
			Type:            r.cfg.MovingAverageType,
		})
		values, err := ma.Series(ctx, candles)
		if err != nil {
			return nil, err
		}

		xs := make([]float64, 0, len(values)-period+1)
		ys := make([]float64, 0, len(values)-period+1)
		for x, v := range values {
			if math.IsNaN(v) {
				continue
			}
			xs = append(xs, float64(x))
			ys = append(ys, v)
		}

		series = append(series, gochart.ContinuousSeries{
			Name: ma.Name(),
			Style: gochart.Style{
				StrokeColor: style.movingAverageColor(i),
				StrokeWidth: style.MovingAverageWidth,
			},
			XValues: xs,
			YValues: ys,
		})
	}
	return series, nil
}

func (r *Renderer) buildChart(candles []*domain.Kline, markers *Markers, averages []gochart.Series, style Style, fonts fontSet) gochart.Chart {
	pxPerPoint := r.cfg.DPI / 72
	markerPx := int(math.Round(style.MarkerSize * pxPerPoint))

	series := []gochart.Series{
		volumeSeries{candles: candles, up: withAlpha(style.Up, style.VolumeAlpha), down: withAlpha(style.Down, style.VolumeAlpha), fraction: style.VolumePanel},
		candlestickSeries{name: "Candles", candles: candles, up: style.Up, down: style.Down},
	}
	series = append(series, averages...)
	if markers != nil {
		series = append(series,
			markerSeries{name: "Buy", values: markers.Buy, color: style.BuyMarker, size: markerPx},
			markerSeries{name: "Sell", values: markers.Sell, color: style.SellMarker, size: markerPx, pointDown: true},
		)
	}

	lo, hi := priceBounds(candles, markers)
	lo, hi = withVolumeBand(lo, hi, style.VolumePanel)

	axisStyle := gochart.Style{
		StrokeColor: style.Text,
		StrokeWidth: 1,
		FontColor:   style.Text,
		FontSize:    style.FontSize,
	}
	gridStyle := gochart.Style{
		StrokeColor: style.Grid,
		StrokeWidth: 1,
	}
	pad := int(math.Round(style.TitleSize * pxPerPoint))

	return gochart.Chart{
		Title: r.cfg.Title,
		TitleStyle: gochart.Style{
			Font:      fonts.title(style.BoldTitle),
			FontSize:  style.TitleSize,
			FontColor: style.Text,
		},
		ColorPalette: palette{style: style},
		Width:        r.cfg.Width,
		Height:       r.cfg.Height,
		DPI:          r.cfg.DPI,
		Font:         fonts.regular,
		Background: gochart.Style{
			FillColor: style.Background,
			Padding:   gochart.Box{Top: 2 * pad, Left: pad, Right: pad, Bottom: pad},
		},
		Canvas: gochart.Style{
			FillColor:   style.Canvas,
			StrokeColor: style.Grid,
			StrokeWidth: 1,
		},
		XAxis: gochart.XAxis{
			Style:          axisStyle,
			ValueFormatter: indexTimeFormatter(candles),
			Range:          &gochart.ContinuousRange{Min: -1, Max: float64(len(candles))},
			GridMajorStyle: gridStyle,
		},
		YAxis: gochart.YAxis{
			Name: r.cfg.YLabel,
			NameStyle: gochart.Style{
				FontColor: style.Text,
				FontSize:  style.LabelSize,
			},
			Style:          axisStyle,
			ValueFormatter: priceFormatter(hi - lo),
			Range:          &gochart.ContinuousRange{Min: lo, Max: hi},
			GridMajorStyle: gridStyle,
		},
		Series: series,
	}
}

// priceBounds returns the low/high over candles and marker prices, padded by 5%.
func priceBounds(candles []*domain.Kline, markers *Markers) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, k := range candles {
		lo = math.Min(lo, k.Low)
		hi = math.Max(hi, k.High)
	}
	if markers != nil {
		for i := range markers.Buy {
			for _, v := range []float64{markers.Buy[i], markers.Sell[i]} {
				if !math.IsNaN(v) {
					lo = math.Min(lo, v)
					hi = math.Max(hi, v)
				}
			}
		}
	}

	span := hi - lo
	if span <= 0 {
		span = math.Max(math.Abs(hi)*0.01, 1)
	}
	return lo - span*0.05, hi + span*0.05
}

// withVolumeBand lowers the price floor so prices stay clear of the bottom
// band where volume bars are drawn.
func withVolumeBand(lo, hi, fraction float64) (float64, float64) {
	span := hi - lo
	return lo - span*fraction/(1-fraction), hi
}

func indexTimeFormatter(candles []*domain.Kline) gochart.ValueFormatter {
	layout := "2006-01-02"
	if n := len(candles); n > 1 {
		switch span := candles[n-1].OpenTime.Sub(candles[0].OpenTime); {
		case span <= 0:
		case span < 24*time.Hour:
			layout = "15:04"
		case span < 14*24*time.Hour:
			layout = "Jan 02 15:04"
		}
	}

	return func(v interface{}) string {
		f, ok := v.(float64)
		if !ok {
			return ""
		}
		i := int(math.Round(f))
		if i < 0 || i >= len(candles) {
			return ""
		}
		return candles[i].OpenTime.Format(layout)
	}
}

func priceFormatter(span float64) gochart.ValueFormatter {
	decimals := 2
	switch {
	case span < 0.1:
		decimals = 6
	case span < 10:
		decimals = 4
	case span > 10000:
		decimals = 0
	}
	return func(v interface{}) string {
		f, ok := v.(float64)
		if !ok {
			return ""
		}
		return fmt.Sprintf("%.*f", decimals, f)
	}
}
