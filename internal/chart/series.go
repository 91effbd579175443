package chart

import (
	"fmt"
	"math"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"candleChart/internal/domain"
)

// All series below plot candle i at x = i, so gaps in trading time do not
// leave holes in the chart.

// candleWidth returns the body width in pixels for one x unit, leaving a gap between candles.
func candleWidth(xrange gochart.Range) int {
	step := absInt(xrange.Translate(1) - xrange.Translate(0))
	w := int(float64(step) * 0.7)
	if w < 1 {
		w = 1
	}
	return w
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func fillRect(r gochart.Renderer, left, top, right, bottom int, c drawing.Color) {
	if bottom-top < 1 {
		bottom = top + 1
	}
	if right-left < 1 {
		right = left + 1
	}
	r.SetFillColor(c)
	r.SetStrokeColor(c)
	r.SetStrokeWidth(1)
	r.MoveTo(left, top)
	r.LineTo(right, top)
	r.LineTo(right, bottom)
	r.LineTo(left, bottom)
	r.Close()
	r.FillStroke()
}

// candlestickSeries draws OHLC candles.
type candlestickSeries struct {
	name    string
	candles []*domain.Kline
	up      drawing.Color
	down    drawing.Color
}

func (s candlestickSeries) GetName() string            { return s.name }
func (s candlestickSeries) GetStyle() gochart.Style    { return gochart.Style{} }
func (s candlestickSeries) GetYAxis() gochart.YAxisType { return gochart.YAxisPrimary }

func (s candlestickSeries) Validate() error {
	if len(s.candles) == 0 {
		return fmt.Errorf("candlestick series %q has no candles", s.name)
	}
	return nil
}

func (s candlestickSeries) Render(r gochart.Renderer, canvasBox gochart.Box, xrange, yrange gochart.Range, defaults gochart.Style) {
	half := candleWidth(xrange) / 2
	y := func(v float64) int { return canvasBox.Bottom - yrange.Translate(v) }

	for i, k := range s.candles {
		c := s.down
		if k.IsUp() {
			c = s.up
		}
		x := canvasBox.Left + xrange.Translate(float64(i))

		r.SetStrokeColor(c)
		r.SetStrokeWidth(1)
		r.MoveTo(x, y(k.High))
		r.LineTo(x, y(k.Low))
		r.Stroke()

		lo, hi := k.BodyBounds()
		fillRect(r, x-half, y(hi), x+half, y(lo), c)
	}
}

// volumeSeries draws volume bars in a band at the bottom of the canvas,
// scaled independently of the price axis.
type volumeSeries struct {
	candles  []*domain.Kline
	up       drawing.Color
	down     drawing.Color
	fraction float64
}

func (s volumeSeries) GetName() string            { return "Volume" }
func (s volumeSeries) GetStyle() gochart.Style    { return gochart.Style{} }
func (s volumeSeries) GetYAxis() gochart.YAxisType { return gochart.YAxisPrimary }

func (s volumeSeries) Validate() error {
	if s.fraction <= 0 || s.fraction >= 1 {
		return fmt.Errorf("volume panel fraction %v out of range", s.fraction)
	}
	return nil
}

func (s volumeSeries) Render(r gochart.Renderer, canvasBox gochart.Box, xrange, yrange gochart.Range, defaults gochart.Style) {
	maxVolume := 0.0
	for _, k := range s.candles {
		maxVolume = math.Max(maxVolume, k.Volume)
	}
	if maxVolume <= 0 {
		return
	}

	band := float64(canvasBox.Bottom-canvasBox.Top) * s.fraction
	half := candleWidth(xrange) / 2
	for i, k := range s.candles {
		if k.Volume <= 0 {
			continue
		}
		c := s.down
		if k.IsUp() {
			c = s.up
		}
		x := canvasBox.Left + xrange.Translate(float64(i))
		top := canvasBox.Bottom - int(band*k.Volume/maxVolume)
		fillRect(r, x-half, top, x+half, canvasBox.Bottom, c)
	}
}

// markerSeries draws a triangle at every non-NaN value.
type markerSeries struct {
	name   string
	values []float64
	color  drawing.Color
	// size is the triangle side in pixels.
	size int
	// pointDown flips the triangle for sell markers.
	pointDown bool
}

func (s markerSeries) GetName() string            { return s.name }
func (s markerSeries) GetStyle() gochart.Style    { return gochart.Style{} }
func (s markerSeries) GetYAxis() gochart.YAxisType { return gochart.YAxisPrimary }

func (s markerSeries) Validate() error {
	if s.size <= 0 {
		return fmt.Errorf("marker series %q has non-positive size", s.name)
	}
	return nil
}

func (s markerSeries) Render(r gochart.Renderer, canvasBox gochart.Box, xrange, yrange gochart.Range, defaults gochart.Style) {
	half := s.size / 2
	height := int(float64(s.size) * math.Sqrt(3) / 2)

	r.SetFillColor(s.color)
	r.SetStrokeColor(s.color)
	r.SetStrokeWidth(1)
	for i, v := range s.values {
		if math.IsNaN(v) {
			continue
		}
		x := canvasBox.Left + xrange.Translate(float64(i))
		y := canvasBox.Bottom - yrange.Translate(v)

		// Centre the triangle on (x, y).
		apex, base := y-height/2, y+height/2
		if s.pointDown {
			apex, base = base, apex
		}
		r.MoveTo(x, apex)
		r.LineTo(x+half, base)
		r.LineTo(x-half, base)
		r.Close()
		r.FillStroke()
	}
}
