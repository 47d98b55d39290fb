package dashboard

import (
	"context"
	"fmt"

	"exodash/internal/config"
	"exodash/internal/reactive"
)

// Component ids of the page controls.
const (
	ChartTypeID = "chart-type"
	XAxisID     = "x-axis"
	YAxisID     = "y-axis"
	GraphID     = "main-graph"
)

var (
	ChartValue  = reactive.Prop{ID: ChartTypeID, Property: "value"}
	XValue      = reactive.Prop{ID: XAxisID, Property: "value"}
	YValue      = reactive.Prop{ID: YAxisID, Property: "value"}
	XOptions    = reactive.Prop{ID: XAxisID, Property: "options"}
	YOptions    = reactive.Prop{ID: YAxisID, Property: "options"}
	YDisabled   = reactive.Prop{ID: YAxisID, Property: "disabled"}
	GraphFigure = reactive.Prop{ID: GraphID, Property: "figure"}
	emptyFigure = map[string]any{}
)

// Wire registers the two dashboard callbacks:
// chart type -> axis options, and chart type + axes -> figure.
func Wire(g *reactive.Graph, cols config.Columns, r *Renderer) error {
	err := g.Register(reactive.Callback{
		Name:    "update_axis_dropdowns",
		Inputs:  []reactive.Prop{ChartValue},
		Outputs: []reactive.Prop{XOptions, YOptions, YDisabled},
		Func: func(_ context.Context, in []any) ([]any, error) {
			opts, err := ResolveAxisOptions(cols, ChartType(asString(in[0])))
			if err != nil {
				return nil, err
			}
			return []any{opts.X, opts.Y, opts.YDisabled}, nil
		},
	})
	if err != nil {
		return err
	}

	return g.Register(reactive.Callback{
		Name:    "update_graph",
		Inputs:  []reactive.Prop{ChartValue, XValue, YValue},
		Outputs: []reactive.Prop{GraphFigure},
		Func: func(_ context.Context, in []any) ([]any, error) {
			fig, err := r.Render(Selection{
				Chart: ChartType(asString(in[0])),
				X:     asString(in[1]),
				Y:     asString(in[2]),
			})
			if err != nil {
				return nil, err
			}
			if fig == nil {
				return []any{emptyFigure}, nil
			}
			return []any{fig}, nil
		},
	})
}

// asString reads a control value decoded from JSON; null is the empty string.
func asString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	}
	return fmt.Sprint(v)
}
