package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/wcharczuk/go-chart/v2/drawing"
	"gopkg.in/yaml.v3"

	"candleChart/internal/chart"
)

// StyleFile is the YAML form of chart style overrides. Unset fields keep
// the default theme.
//
//	background: "#101010"
//	up: "#26A69A"
//	moving_average_colors: ["#FFC201", "#CED4DA"]
//	bold_title: false
type StyleFile struct {
	Background          string   `yaml:"background"`
	Canvas              string   `yaml:"canvas"`
	Grid                string   `yaml:"grid"`
	Text                string   `yaml:"text"`
	Up                  string   `yaml:"up"`
	Down                string   `yaml:"down"`
	VolumeAlpha         *uint8   `yaml:"volume_alpha"`
	BuyMarker           string   `yaml:"buy_marker"`
	SellMarker          string   `yaml:"sell_marker"`
	MarkerSize          float64  `yaml:"marker_size"`
	MovingAverageColors []string `yaml:"moving_average_colors"`
	MovingAverageWidth  float64  `yaml:"moving_average_width"`
	FontSize            float64  `yaml:"font_size"`
	LabelSize           float64  `yaml:"label_size"`
	TitleSize           float64  `yaml:"title_size"`
	BoldTitle           *bool    `yaml:"bold_title"`
	VolumePanel         float64  `yaml:"volume_panel"`
}

// LoadStyleFile reads and parses a YAML style file.
func LoadStyleFile(path string) (*StyleFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read style file %s: %w", path, err)
	}
	return ParseStyle(data)
}

// ParseStyle parses YAML style overrides. Unknown keys are rejected.
func ParseStyle(data []byte) (*StyleFile, error) {
	var sf StyleFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&sf); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse style: %w", err)
	}
	return &sf, nil
}

// Apply returns base with the overrides set in sf, validated.
func (sf *StyleFile) Apply(base chart.Style) (chart.Style, error) {
	out := base
	out.MovingAverageColors = append([]drawing.Color(nil), base.MovingAverageColors...)

	colors := []struct {
		name string
		raw  string
		dst  *drawing.Color
	}{
		{"background", sf.Background, &out.Background},
		{"canvas", sf.Canvas, &out.Canvas},
		{"grid", sf.Grid, &out.Grid},
		{"text", sf.Text, &out.Text},
		{"up", sf.Up, &out.Up},
		{"down", sf.Down, &out.Down},
		{"buy_marker", sf.BuyMarker, &out.BuyMarker},
		{"sell_marker", sf.SellMarker, &out.SellMarker},
	}
	for _, c := range colors {
		if c.raw == "" {
			continue
		}
		parsed, err := chart.ParseHexColor(c.raw)
		if err != nil {
			return chart.Style{}, fmt.Errorf("style %s: %w", c.name, err)
		}
		*c.dst = parsed
	}

	if len(sf.MovingAverageColors) > 0 {
		out.MovingAverageColors = out.MovingAverageColors[:0]
		for i, raw := range sf.MovingAverageColors {
			parsed, err := chart.ParseHexColor(raw)
			if err != nil {
				return chart.Style{}, fmt.Errorf("style moving_average_colors[%d]: %w", i, err)
			}
			out.MovingAverageColors = append(out.MovingAverageColors, parsed)
		}
	}

	if sf.VolumeAlpha != nil {
		out.VolumeAlpha = *sf.VolumeAlpha
	}
	if sf.BoldTitle != nil {
		out.BoldTitle = *sf.BoldTitle
	}
	setIfPositive(&out.MarkerSize, sf.MarkerSize)
	setIfPositive(&out.MovingAverageWidth, sf.MovingAverageWidth)
	setIfPositive(&out.FontSize, sf.FontSize)
	setIfPositive(&out.LabelSize, sf.LabelSize)
	setIfPositive(&out.TitleSize, sf.TitleSize)
	setIfPositive(&out.VolumePanel, sf.VolumePanel)

	if err := out.Validate(); err != nil {
		return chart.Style{}, fmt.Errorf("style: %w", err)
	}
	return out, nil
}

func setIfPositive(dst *float64, v float64) {
	if v > 0 {
		*dst = v
	}
}
