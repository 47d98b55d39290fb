package dashboard

import (
	"errors"
	"fmt"

	"exodash/internal/config"
	"exodash/internal/models"
)

// ErrUnknownChartType means a chart type outside the enumerated control reached the resolver.
// It is a wiring defect, not a user error.
var ErrUnknownChartType = errors.New("unknown chart type")

type ChartType string

const (
	Histogram ChartType = "histogram"
	Scatter   ChartType = "scatter"
	Bar       ChartType = "bar"
	Box       ChartType = "box"
)

func (c ChartType) Valid() bool {
	switch c {
	case Histogram, Scatter, Bar, Box:
		return true
	}
	return false
}

// ChartTypeOptions are the entries of the chart-type dropdown.
func ChartTypeOptions() []models.Option {
	return []models.Option{
		{Label: "Histogramm", Value: string(Histogram)},
		{Label: "Streudiagramm", Value: string(Scatter)},
		{Label: "Balkendiagramm", Value: string(Bar)},
		{Label: "Boxplot", Value: string(Box)},
	}
}

// ResolveAxisOptions maps a chart type onto the selectable X and Y columns and
// whether the Y control is disabled:
//
//	histogram  X = numeric ++ categorical, Y = none (disabled)
//	scatter    X = numeric,     Y = numeric
//	bar, box   X = categorical, Y = numeric
func ResolveAxisOptions(cols config.Columns, chart ChartType) (models.AxisOptions, error) {
	switch chart {
	case Histogram:
		return models.AxisOptions{
			X:         options(cols.All()),
			Y:         []models.Option{},
			YDisabled: true,
		}, nil
	case Scatter:
		return models.AxisOptions{
			X: options(cols.Numeric),
			Y: options(cols.Numeric),
		}, nil
	case Bar, Box:
		return models.AxisOptions{
			X: options(cols.Categorical),
			Y: options(cols.Numeric),
		}, nil
	}
	return models.AxisOptions{}, fmt.Errorf("%w: %q", ErrUnknownChartType, chart)
}

func options(names []string) []models.Option {
	out := make([]models.Option, len(names))
	for i, n := range names {
		out[i] = models.Option{Label: n, Value: n}
	}
	return out
}
