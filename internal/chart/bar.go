// Package chart renders pipeline chart data as images.
package chart

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/JonMunkholm/datasweeper/internal/core"
)

// maxTickLabels is the most row labels drawn on the x axis; the rest are
// left blank so the axis stays readable.
const maxTickLabels = 20

// Options controls the rendered image.
type Options struct {
	Width  int // points
	Height int // points
	Title  string
}

// DefaultOptions is a chart that fits the file card.
var DefaultOptions = Options{Width: 640, Height: 320}

// BarSVG draws data as a grouped bar chart, one bar per series per row, and
// writes it to w as SVG.
func BarSVG(w io.Writer, data *core.ChartData, opts Options) error {
	if data == nil || len(data.Series) == 0 {
		return errors.New("chart: no series")
	}
	if opts.Width <= 0 {
		opts.Width = DefaultOptions.Width
	}
	if opts.Height <= 0 {
		opts.Height = DefaultOptions.Height
	}

	p := plot.New()
	darkTheme(p)
	p.Title.Text = opts.Title
	p.Legend.Top = true

	n := len(data.Series)
	barWidth := vg.Length(math.Max(2, float64(opts.Width)*0.7/float64(max(1, len(data.Labels)*n))))

	for i, s := range data.Series {
		values := make(plotter.Values, len(s.Values))
		for j, v := range s.Values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				v = 0
			}
			values[j] = v
		}

		bars, err := plotter.NewBarChart(values, barWidth)
		if err != nil {
			return fmt.Errorf("chart: series %q: %w", s.Name, err)
		}
		bars.Color = plotutil.Color(i)
		bars.LineStyle.Width = 0
		bars.Offset = vg.Length(float64(i)-float64(n-1)/2) * barWidth

		p.Add(bars)
		p.Legend.Add(s.Name, bars)
	}

	p.NominalX(tickLabels(data.Labels)...)

	wt, err := p.WriterTo(vg.Points(float64(opts.Width)), vg.Points(float64(opts.Height)), "svg")
	if err != nil {
		return fmt.Errorf("chart: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("chart: write svg: %w", err)
	}
	return nil
}

// tickLabels blanks out all but every k-th label when there are too many.
func tickLabels(labels []string) []string {
	if len(labels) <= maxTickLabels {
		return labels
	}
	step := (len(labels) + maxTickLabels - 1) / maxTickLabels
	out := make([]string, len(labels))
	for i := 0; i < len(labels); i += step {
		out[i] = labels[i]
	}
	return out
}

func darkTheme(p *plot.Plot) {
	fg := color.White
	p.BackgroundColor = color.Black
	p.Title.TextStyle.Color = fg
	p.Legend.TextStyle.Color = fg
	for _, ax := range []*plot.Axis{&p.X, &p.Y} {
		ax.LineStyle.Color = fg
		ax.Label.TextStyle.Color = fg
		ax.Tick.LineStyle.Color = fg
		ax.Tick.Label.Color = fg
	}
}
