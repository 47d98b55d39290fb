package export

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"exodash/internal/config"
	"exodash/internal/engine"
	"exodash/internal/models"
)

// ErrNothingToDraw is returned for a nil or trace-less figure.
var ErrNothingToDraw = errors.New("export: figure has no data")

// Size is the pixel size of a rendered image.
type Size struct {
	Width  int
	Height int
}

func DefaultSize() Size { return Size{Width: 1024, Height: 600} }

// RenderPNG draws fig as a static PNG in the dashboard theme.
// Histograms and bar charts come out as grouped bars, scatter plots as dots
// and box plots as whisker outlines per X value.
func RenderPNG(w io.Writer, fig *models.Figure, th config.Theme, size Size) error {
	if fig == nil || len(fig.Data) == 0 {
		return ErrNothingToDraw
	}
	if size.Width <= 0 || size.Height <= 0 {
		size = DefaultSize()
	}
	p := painter{fig: fig, th: th, size: size}

	switch fig.Data[0].Type {
	case "histogram":
		return p.histogram(w)
	case "bar":
		return p.bar(w)
	case "scatter":
		return p.scatter(w)
	case "box":
		return p.box(w)
	}
	return fmt.Errorf("export: unsupported trace type %q", fig.Data[0].Type)
}

type painter struct {
	fig  *models.Figure
	th   config.Theme
	size Size
}

func color(hex string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}

func (p painter) titleStyle() chart.Style {
	return chart.Style{FontColor: color(p.th.Text), FontSize: float64(p.th.TitleFontSize)}
}

func (p painter) axisStyle() chart.Style {
	return chart.Style{FontColor: color(p.th.Text), StrokeColor: color(p.th.Border)}
}

func (p painter) background() chart.Style {
	m := p.th.Margin
	return chart.Style{
		FillColor: color(p.th.Card),
		Padding:   chart.Box{Top: m, Left: m, Right: m, Bottom: m},
	}
}

func (p painter) traceColor(i int) drawing.Color {
	if tr := p.fig.Data[i]; tr.Marker != nil && tr.Marker.Color != "" {
		return color(tr.Marker.Color)
	}
	return color(p.th.SeriesColor(i))
}

func (p painter) histogram(w io.Writer) error {
	all, numeric := collect(p.fig.Data, func(t models.Trace) []any { return t.X })
	if !numeric {
		return p.grouped(w, categoryCounts(p.fig.Data))
	}

	bins := engine.NewBins(all, binCount(len(all)))
	labels := make([]string, bins.N)
	for i := range labels {
		labels[i] = fmt.Sprintf("%.3g", bins.Lower(i))
	}
	counts := make([][]float64, len(p.fig.Data))
	for ti, t := range p.fig.Data {
		vals, _ := floats(t.X)
		c := bins.Count(vals)
		counts[ti] = make([]float64, len(c))
		for i, n := range c {
			counts[ti][i] = float64(n)
		}
	}
	return p.grouped(w, bars{labels: labels, values: counts})
}

func (p painter) bar(w io.Writer) error {
	s := bars{values: make([][]float64, len(p.fig.Data))}
	pos := make(map[string]int)
	for ti, t := range p.fig.Data {
		for i, x := range t.X {
			key := fmt.Sprint(x)
			j, ok := pos[key]
			if !ok {
				j = len(s.labels)
				pos[key] = j
				s.labels = append(s.labels, key)
			}
			v, _ := toFloat(t.Y[i])
			s.values[ti] = grow(s.values[ti], j+1)
			s.values[ti][j] += v
		}
	}
	for ti := range s.values {
		s.values[ti] = grow(s.values[ti], len(s.labels))
	}
	return p.grouped(w, s)
}

// bars is a label per X slot and, per trace, one value per slot.
type bars struct {
	labels []string
	values [][]float64
}

func categoryCounts(traces []models.Trace) bars {
	b := bars{values: make([][]float64, len(traces))}
	pos := make(map[string]int)
	for ti, t := range traces {
		for _, x := range t.X {
			key := fmt.Sprint(x)
			j, ok := pos[key]
			if !ok {
				j = len(b.labels)
				pos[key] = j
				b.labels = append(b.labels, key)
			}
			b.values[ti] = grow(b.values[ti], j+1)
			b.values[ti][j]++
		}
	}
	for ti := range b.values {
		b.values[ti] = grow(b.values[ti], len(b.labels))
	}
	return b
}

// grouped draws one filled rectangle per (slot, trace), traces side by side
// inside each slot. go-chart fills the area under a series down to the axis,
// so a closed rectangle over a zero-based range renders as a bar.
func (p painter) grouped(w io.Writer, b bars) error {
	if len(b.labels) == 0 {
		return ErrNothingToDraw
	}
	n := float64(len(p.fig.Data))
	slot := 0.8 / n

	var series []chart.Series
	lo, hi := 0.0, 0.0
	for ti := range p.fig.Data {
		c := p.traceColor(ti)
		st := chart.Style{StrokeColor: c, FillColor: c, StrokeWidth: 1}
		for j := range b.labels {
			v := b.values[ti][j]
			if v == 0 {
				continue
			}
			x0 := float64(j) - 0.4 + slot*float64(ti)
			x1 := x0 + slot*0.9
			series = append(series, chart.ContinuousSeries{
				XValues: []float64{x0, x0, x1, x1},
				YValues: []float64{0, v, v, 0},
				Style:   st,
			})
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
	}
	if len(series) == 0 {
		return ErrNothingToDraw
	}

	c := p.base(series, b.labels)
	c.YAxis.Range = &chart.ContinuousRange{Min: lo * 1.05, Max: hi * 1.05}
	return c.Render(chart.PNG, w)
}

// base is the themed chart shared by the bar-like and box images: categorical
// X ticks and a legend with one entry per trace.
func (p painter) base(series []chart.Series, labels []string) chart.Chart {
	ticks := make([]chart.Tick, len(labels))
	for j, l := range labels {
		ticks[j] = chart.Tick{Value: float64(j), Label: l}
	}
	c := chart.Chart{
		Title:      p.fig.Layout.Title.Text,
		TitleStyle: p.titleStyle(),
		Width:      p.size.Width,
		Height:     p.size.Height,
		Background: p.background(),
		Canvas:     chart.Style{FillColor: color(p.th.Card)},
		XAxis: chart.XAxis{
			Name:      p.fig.Layout.XAxis.Title.Text,
			NameStyle: p.axisStyle(),
			Style:     p.axisStyle(),
			Range:     &chart.ContinuousRange{Min: -0.5, Max: float64(len(labels)) - 0.5},
			Ticks:     ticks,
		},
		YAxis:  chart.YAxis{Name: p.fig.Layout.YAxis.Title.Text, NameStyle: p.axisStyle(), Style: p.axisStyle()},
		Series: series,
	}
	c.Elements = []chart.Renderable{p.legend()}
	return c
}

// legend lists traces only; the chart itself holds many unnamed shape series.
func (p painter) legend() chart.Renderable {
	keys := &chart.Chart{}
	for ti, t := range p.fig.Data {
		keys.Series = append(keys.Series, chart.ContinuousSeries{
			Name:  t.Name,
			Style: chart.Style{StrokeColor: p.traceColor(ti), StrokeWidth: 3},
		})
	}
	return chart.Legend(keys, chart.Style{
		FillColor:   color(p.th.Card),
		FontColor:   color(p.th.Text),
		StrokeColor: color(p.th.Border),
	})
}

func (p painter) scatter(w io.Writer) error {
	series := make([]chart.Series, 0, len(p.fig.Data))
	var xs, ys []float64
	for ti, t := range p.fig.Data {
		x, okX := floats(t.X)
		y, okY := floats(t.Y)
		if !okX || !okY {
			return fmt.Errorf("export: scatter image needs numeric axes")
		}
		st := chart.Style{StrokeWidth: chart.Disabled, DotWidth: 3, DotColor: p.traceColor(ti)}
		series = append(series, chart.ContinuousSeries{Name: t.Name, XValues: x, YValues: y, Style: st})
		xs = append(xs, x...)
		ys = append(ys, y...)
	}
	if len(xs) == 0 {
		return ErrNothingToDraw
	}

	c := chart.Chart{
		Title:      p.fig.Layout.Title.Text,
		TitleStyle: p.titleStyle(),
		Width:      p.size.Width,
		Height:     p.size.Height,
		Background: p.background(),
		Canvas:     chart.Style{FillColor: color(p.th.Card)},
		XAxis:      chart.XAxis{Name: p.fig.Layout.XAxis.Title.Text, NameStyle: p.axisStyle(), Style: p.axisStyle(), Range: padRange(xs)},
		YAxis:      chart.YAxis{Name: p.fig.Layout.YAxis.Title.Text, NameStyle: p.axisStyle(), Style: p.axisStyle(), Range: padRange(ys)},
		Series:     series,
	}
	c.Elements = []chart.Renderable{chart.Legend(&c, chart.Style{
		FillColor:   color(p.th.Card),
		FontColor:   color(p.th.Text),
		StrokeColor: color(p.th.Border),
	})}
	return c.Render(chart.PNG, w)
}

// box draws each trace's distribution per X value as line segments: whiskers,
// box outline and median, offset side by side like a grouped box plot.
func (p painter) box(w io.Writer) error {
	var cats []string
	pos := make(map[string]int)
	// per trace, per category
	groups := make([]map[int][]float64, len(p.fig.Data))
	for ti, t := range p.fig.Data {
		groups[ti] = make(map[int][]float64)
		for i, x := range t.X {
			key := fmt.Sprint(x)
			j, ok := pos[key]
			if !ok {
				j = len(cats)
				pos[key] = j
				cats = append(cats, key)
			}
			if v, ok := toFloat(t.Y[i]); ok {
				groups[ti][j] = append(groups[ti][j], v)
			}
		}
	}
	if len(cats) == 0 {
		return ErrNothingToDraw
	}

	n := float64(len(p.fig.Data))
	slot := 0.8 / n
	half := slot * 0.35
	var series []chart.Series
	var ys []float64
	for ti := range p.fig.Data {
		st := chart.Style{StrokeColor: p.traceColor(ti), StrokeWidth: 1.5}
		for j := range cats {
			vals := groups[ti][j]
			if len(vals) == 0 {
				continue
			}
			b := engine.Quartiles(vals)
			x := float64(j) - 0.4 + slot*(float64(ti)+0.5)
			segments := [][2][]float64{
				{{x, x}, {b.LowerWhisker, b.Q1}},
				{{x, x}, {b.Q3, b.UpperWhisker}},
				{{x - half, x + half, x + half, x - half, x - half}, {b.Q1, b.Q1, b.Q3, b.Q3, b.Q1}},
				{{x - half, x + half}, {b.Median, b.Median}},
			}
			for _, seg := range segments {
				series = append(series, chart.ContinuousSeries{XValues: seg[0], YValues: seg[1], Style: st})
			}
			ys = append(ys, b.Min, b.Max)
		}
	}
	if len(series) == 0 {
		return ErrNothingToDraw
	}

	c := p.base(series, cats)
	c.YAxis.Range = padRange(ys)
	return c.Render(chart.PNG, w)
}

func binCount(n int) int {
	b := int(math.Ceil(math.Sqrt(float64(n))))
	if b < 1 {
		return 1
	}
	if b > 30 {
		return 30
	}
	return b
}

// padRange widens a degenerate range so a single value still gets an axis.
func padRange(vals []float64) *chart.ContinuousRange {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range vals {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if math.IsInf(lo, 0) {
		return &chart.ContinuousRange{Min: 0, Max: 1}
	}
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = math.Max(math.Abs(lo)*0.1, 1)
	}
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

func collect(traces []models.Trace, get func(models.Trace) []any) ([]float64, bool) {
	var out []float64
	for _, t := range traces {
		vals, ok := floats(get(t))
		if !ok {
			return nil, false
		}
		out = append(out, vals...)
	}
	return out, true
}

func floats(vals []any) ([]float64, bool) {
	out := make([]float64, len(vals))
	for i, v := range vals {
		f, ok := toFloat(v)
		if !ok {
			return nil, false
		}
		out[i] = f
	}
	return out, true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}

func grow(s []float64, n int) []float64 {
	for len(s) < n {
		s = append(s, 0)
	}
	return s
}
