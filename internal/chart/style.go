package chart

import (
	"fmt"
	"strings"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Style is the visual configuration of a chart. Build one per render with
// DefaultStyle and adjust fields as needed; nothing is shared between calls.
type Style struct {
	Background drawing.Color
	Canvas     drawing.Color
	Grid       drawing.Color
	Text       drawing.Color

	// Market colours; wicks, edges and volume bars inherit them.
	Up   drawing.Color
	Down drawing.Color
	// VolumeAlpha is applied to volume bars so they sit behind the price action.
	VolumeAlpha uint8

	BuyMarker  drawing.Color
	SellMarker drawing.Color
	// MarkerSize is the triangle side length in points.
	MarkerSize float64

	MovingAverageColors []drawing.Color
	MovingAverageWidth  float64

	FontSize  float64 // base font size in points
	LabelSize float64 // axis label size in points
	TitleSize float64
	BoldTitle bool

	// VolumePanel is the fraction of the plot height reserved for volume bars.
	VolumePanel float64
}

// DefaultStyle is a dark "nightclouds" theme with green/red market colours,
// bold title, 12pt base font and 14pt axis labels.
func DefaultStyle() Style {
	return Style{
		Background: mustHex("#0A0A23"),
		Canvas:     mustHex("#0A0A23"),
		Grid:       mustHex("#2B2B45"),
		Text:       mustHex("#FFFFFF"),

		Up:          mustHex("#00B050"),
		Down:        mustHex("#E02020"),
		VolumeAlpha: 160,

		BuyMarker:  mustHex("#00FF00"),
		SellMarker: mustHex("#FF0000"),
		MarkerSize: 10,

		MovingAverageColors: []drawing.Color{
			mustHex("#FFC201"),
			mustHex("#CED4DA"),
			mustHex("#FF7700"),
			mustHex("#7D5CCA"),
		},
		MovingAverageWidth: 2,

		FontSize:  12,
		LabelSize: 14,
		TitleSize: 16,
		BoldTitle: true,

		VolumePanel: 0.22,
	}
}

// Validate checks the numeric fields of the style.
func (s Style) Validate() error {
	switch {
	case s.FontSize <= 0 || s.LabelSize <= 0 || s.TitleSize <= 0:
		return fmt.Errorf("font sizes must be positive")
	case s.MarkerSize <= 0:
		return fmt.Errorf("marker size must be positive")
	case s.VolumePanel <= 0 || s.VolumePanel >= 0.9:
		return fmt.Errorf("volume panel fraction must be in (0, 0.9), got %v", s.VolumePanel)
	case len(s.MovingAverageColors) == 0:
		return fmt.Errorf("at least one moving average colour is required")
	}
	return nil
}

func (s Style) movingAverageColor(i int) drawing.Color {
	return s.MovingAverageColors[i%len(s.MovingAverageColors)]
}

// ParseHexColor parses "#RRGGBB" or "RRGGBB" (also the 3-digit forms).
func ParseHexColor(s string) (drawing.Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 3 && len(hex) != 6 {
		return drawing.Color{}, fmt.Errorf("invalid hex colour %q", s)
	}
	for _, r := range hex {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return drawing.Color{}, fmt.Errorf("invalid hex colour %q", s)
		}
	}
	return drawing.ColorFromHex(hex), nil
}

func mustHex(s string) drawing.Color {
	c, err := ParseHexColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

func withAlpha(c drawing.Color, a uint8) drawing.Color {
	return drawing.Color{R: c.R, G: c.G, B: c.B, A: a}
}

// palette adapts Style to go-chart's ColorPalette so library-drawn elements
// (axes, ticks, title) pick up the theme.
type palette struct {
	style Style
}

var _ gochart.ColorPalette = palette{}

func (p palette) BackgroundColor() drawing.Color       { return p.style.Background }
func (p palette) BackgroundStrokeColor() drawing.Color { return p.style.Background }
func (p palette) CanvasColor() drawing.Color           { return p.style.Canvas }
func (p palette) CanvasStrokeColor() drawing.Color     { return p.style.Grid }
func (p palette) AxisStrokeColor() drawing.Color       { return p.style.Text }
func (p palette) TextColor() drawing.Color             { return p.style.Text }
func (p palette) GetSeriesColor(index int) drawing.Color {
	return p.style.movingAverageColor(index)
}
