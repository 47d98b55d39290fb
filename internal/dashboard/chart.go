package dashboard

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"exodash/internal/config"
	"exodash/internal/engine"
	"exodash/internal/models"
)

// Selection is the state of the three input controls.
type Selection struct {
	Chart ChartType
	X     string
	Y     string
}

// Complete reports whether the selection has everything its chart type needs.
// Histograms ignore Y.
func (s Selection) Complete() bool {
	if s.X == "" {
		return false
	}
	return s.Chart == Histogram || s.Y != ""
}

// Renderer turns selections into plotly figures over a fixed table.
// It keeps no state between calls and is safe for concurrent use.
type Renderer struct {
	table *engine.Table
	cfg   config.Config
}

func NewRenderer(table *engine.Table, cfg config.Config) *Renderer {
	return &Renderer{table: table, cfg: cfg}
}

// Render builds the figure for sel. A nil figure with a nil error means there is
// nothing to draw yet. Unknown columns fail with engine.ErrColumnNotFound.
func (r *Renderer) Render(sel Selection) (*models.Figure, error) {
	if !sel.Complete() || !sel.Chart.Valid() {
		return nil, nil
	}

	color, err := r.table.Column(r.cfg.ColorColumn)
	if err != nil {
		return nil, err
	}
	x, err := r.table.Column(sel.X)
	if err != nil {
		return nil, err
	}
	var y engine.Column
	if sel.Chart != Histogram {
		if y, err = r.table.Column(sel.Y); err != nil {
			return nil, err
		}
	}

	groups := engine.GroupIndices(color)
	fig := &models.Figure{Data: make([]models.Trace, 0, len(groups))}

	switch sel.Chart {
	case Histogram:
		err = r.histogram(fig, groups, x)
	case Scatter:
		err = r.scatter(fig, groups, x, y)
	case Bar:
		err = r.bar(fig, groups, x, y)
	case Box:
		err = r.box(fig, groups, x, y)
	}
	if err != nil {
		return nil, err
	}

	fig.Layout.Title.Text = title(sel)
	fig.Layout.XAxis.Title.Text = sel.X
	fig.Layout.YAxis.Title.Text = sel.Y
	if sel.Chart == Histogram {
		fig.Layout.YAxis.Title.Text = "count"
	}
	fig.Layout.Legend.Title.Text = r.cfg.ColorColumn

	ApplyTheme(fig, r.cfg.Theme)
	return fig, nil
}

func (r *Renderer) histogram(fig *models.Figure, groups []engine.Group, x engine.Column) error {
	fig.Layout.BarMode = "relative"
	for _, g := range groups {
		xs := make([]any, 0, len(g.Rows))
		for _, i := range g.Rows {
			if !x.IsNull(i) {
				xs = append(xs, x.Value(i))
			}
		}
		r.addTrace(fig, models.Trace{Type: "histogram", X: xs}, g.Key)
	}
	return nil
}

func (r *Renderer) scatter(fig *models.Figure, groups []engine.Group, x, y engine.Column) error {
	hover, err := r.table.Column(r.cfg.HoverColumn)
	if err != nil {
		return err
	}
	for _, g := range groups {
		t := models.Trace{Type: "scatter", Mode: "markers", X: []any{}, Y: []any{}, HoverText: []string{}}
		for _, i := range g.Rows {
			if x.IsNull(i) || y.IsNull(i) {
				continue
			}
			t.X = append(t.X, x.Value(i))
			t.Y = append(t.Y, y.Value(i))
			t.HoverText = append(t.HoverText, hover.String(i))
		}
		r.addTrace(fig, t, g.Key)
	}
	return nil
}

// bar plots the sum of y for each x value, one bar group per category.
func (r *Renderer) bar(fig *models.Figure, groups []engine.Group, x, y engine.Column) error {
	fig.Layout.BarMode = "group"
	for _, g := range groups {
		sums, err := engine.SumBy(x, y, g.Rows)
		if err != nil {
			return err
		}
		t := models.Trace{Type: "bar", X: make([]any, len(sums)), Y: make([]any, len(sums))}
		for i, s := range sums {
			t.X[i] = s.X
			t.Y[i] = s.Total
		}
		r.addTrace(fig, t, g.Key)
	}
	return nil
}

func (r *Renderer) box(fig *models.Figure, groups []engine.Group, x, y engine.Column) error {
	if !y.Numeric() {
		return fmt.Errorf("%w: %q", engine.ErrNotNumeric, y.Name())
	}
	fig.Layout.BoxMode = "group"
	for _, g := range groups {
		t := models.Trace{Type: "box", X: []any{}, Y: []any{}}
		for _, i := range g.Rows {
			v, ok := y.Float(i)
			if !ok || x.IsNull(i) {
				continue
			}
			t.X = append(t.X, x.Value(i))
			t.Y = append(t.Y, v)
		}
		r.addTrace(fig, t, g.Key)
	}
	return nil
}

// addTrace names and colors t after its category. Empty traces are dropped.
func (r *Renderer) addTrace(fig *models.Figure, t models.Trace, category string) {
	if len(t.X) == 0 {
		return
	}
	t.Name = category
	t.LegendGroup = category
	t.OffsetGroup = category
	t.ShowLegend = true
	t.Marker = &models.Marker{Color: r.cfg.Theme.SeriesColor(len(fig.Data))}
	fig.Data = append(fig.Data, t)
}

func title(sel Selection) string {
	x, y := Label(sel.X), Label(sel.Y)
	switch sel.Chart {
	case Histogram:
		return "Distribution of " + x
	case Scatter:
		return y + " vs " + x
	case Bar:
		return "Total " + y + " by " + x
	case Box:
		return y + " Spread by " + x
	}
	return ""
}

// Label turns a column name into a heading, e.g. "stellar_magnitude" -> "Stellar Magnitude".
func Label(column string) string {
	// a Caser holds state, so one per call
	return cases.Title(language.English).String(strings.ReplaceAll(column, "_", " "))
}
