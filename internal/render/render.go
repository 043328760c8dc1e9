// Package render turns dashboard figures into PNG images.
package render

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/vicanso/go-charts/v2"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"stockdash/internal/dashboard"
)

const (
	Width  = 640
	Height = 400
)

var errNoSeries = errors.New("no plottable series")

// PNG renders fig with the theme's palette. Empty figures render to nil.
func PNG(fig dashboard.Figure, theme dashboard.Theme) ([]byte, error) {
	if fig.Empty() {
		return nil, nil
	}
	switch fig.Kind {
	case dashboard.KindBar:
		return barPNG(fig, theme)
	case dashboard.KindScatter, dashboard.KindLine:
		return xyPNG(fig, theme)
	default:
		return nil, fmt.Errorf("unsupported figure kind %q", fig.Kind)
	}
}

// DataURI embeds a PNG for an <img> src. Nil images give an empty string.
func DataURI(img []byte) string {
	if len(img) == 0 {
		return ""
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(img)
}

// barPNG draws grouped bars with go-charts, one group per category.
func barPNG(fig dashboard.Figure, theme dashboard.Theme) ([]byte, error) {
	values := make([][]float64, 0, len(fig.Traces))
	names := make([]string, 0, len(fig.Traces))
	for _, t := range fig.Traces {
		values = append(values, t.Y)
		names = append(names, t.Name)
	}
	painter, err := charts.BarRender(values,
		charts.TitleTextOptionFunc(fig.Title),
		charts.XAxisDataOptionFunc(fig.Categories),
		charts.LegendLabelsOptionFunc(names, charts.PositionRight),
		charts.ThemeOptionFunc(barTheme(theme)),
		charts.WidthOptionFunc(Width),
		charts.HeightOptionFunc(Height),
		charts.PNGTypeOption(),
	)
	if err != nil {
		return nil, err
	}
	return painter.Bytes()
}

func init() {
	for _, name := range []string{"dark", "light"} {
		theme := dashboard.ThemeByName(name)
		charts.AddTheme(barTheme(theme), charts.ThemeOption{
			IsDarkMode:         theme.Dark(),
			AxisStrokeColor:    hexColor(theme.TextSub),
			AxisSplitLineColor: hexColor(theme.Border),
			BackgroundColor:    hexColor(theme.BgCard),
			TextColor:          hexColor(theme.TextMain),
			SeriesColors:       []charts.Color{hexColor(theme.Accent1), hexColor(theme.Accent2)},
		})
	}
}

// barTheme names the go-charts theme registered for a dashboard palette.
func barTheme(theme dashboard.Theme) string { return "stockdash-" + theme.Name }

// xyPNG draws scatter and line figures with go-chart, which places points by
// numeric x rather than by category.
func xyPNG(fig dashboard.Figure, theme dashboard.Theme) ([]byte, error) {
	var series []chart.Series
	var xs, ys []float64
	for _, t := range fig.Traces {
		if len(t.Y) == 0 || len(t.X) != len(t.Y) {
			continue
		}
		xs = append(xs, t.X...)
		ys = append(ys, t.Y...)
		c := hexColor(t.Color)
		style := chart.Style{StrokeColor: c, StrokeWidth: 2, DotColor: c, DotWidth: 3}
		if fig.Kind == dashboard.KindScatter {
			style = chart.Style{StrokeWidth: chart.Disabled, DotColor: c, DotWidth: 5}
		}
		if t.Fill {
			style.FillColor = c.WithAlpha(48)
		}
		series = append(series, chart.ContinuousSeries{Name: t.Name, Style: style, XValues: t.X, YValues: t.Y})
	}
	if len(series) == 0 {
		return nil, errNoSeries
	}

	text, sub := hexColor(theme.TextMain), hexColor(theme.TextSub)
	axis := chart.Style{FontColor: sub, StrokeColor: hexColor(theme.Border)}
	xMin, xMax := paddedRange(xs)
	yMin, yMax := paddedRange(ys)
	graph := chart.Chart{
		Title:      fig.Title,
		TitleStyle: chart.Style{FontColor: text},
		Width:      Width,
		Height:     Height,
		Background: chart.Style{FillColor: hexColor(theme.BgCard), Padding: chart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20}},
		Canvas:     chart.Style{FillColor: hexColor(theme.BgCard)},
		XAxis: chart.XAxis{
			Name:      fig.XTitle,
			NameStyle: chart.Style{FontColor: sub},
			Style:     axis,
			Range:     &chart.ContinuousRange{Min: xMin, Max: xMax},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok && fig.Kind == dashboard.KindLine {
					return fmt.Sprintf("%.0f", f)
				}
				return chart.FloatValueFormatter(v)
			},
		},
		YAxis: chart.YAxis{
			Name:      fig.YTitle,
			NameStyle: chart.Style{FontColor: sub},
			Style:     axis,
			Range:     &chart.ContinuousRange{Min: yMin, Max: yMax},
		},
		Series: series,
	}
	if len(series) > 1 {
		graph.Elements = []chart.Renderable{chart.Legend(&graph, chart.Style{FillColor: hexColor(theme.BgCard), FontColor: text, StrokeColor: hexColor(theme.Border)})}
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// paddedRange widens [min, max] by 5% so points do not sit on the frame. A
// flat series still gets a non-zero range.
func paddedRange(vs []float64) (float64, float64) {
	lo, hi := vs[0], vs[0]
	for _, v := range vs[1:] {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	pad := (hi - lo) * 0.05
	if floor := math.Abs(hi) * 0.002; pad < floor {
		pad = floor
	}
	if pad == 0 {
		pad = 1
	}
	return lo - pad, hi + pad
}

func hexColor(s string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(s, "#"))
}
