package dashboard

import (
	"errors"
	"testing"

	"exodash/internal/config"
	"exodash/internal/models"
)

func values(opts []models.Option) []string {
	out := make([]string, len(opts))
	for i, o := range opts {
		out[i] = o.Value
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestResolveAxisOptions(t *testing.T) {
	cols := config.DefaultColumns()
	tests := []struct {
		chart     ChartType
		x, y      []string
		yDisabled bool
	}{
		{Histogram, cols.All(), []string{}, true},
		{Scatter, cols.Numeric, cols.Numeric, false},
		{Bar, cols.Categorical, cols.Numeric, false},
		{Box, cols.Categorical, cols.Numeric, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.chart), func(t *testing.T) {
			got, err := ResolveAxisOptions(cols, tt.chart)
			if err != nil {
				t.Fatalf("ResolveAxisOptions: %v", err)
			}
			if !equal(values(got.X), tt.x) {
				t.Errorf("X = %v, want %v", values(got.X), tt.x)
			}
			if !equal(values(got.Y), tt.y) {
				t.Errorf("Y = %v, want %v", values(got.Y), tt.y)
			}
			if got.Y == nil {
				t.Error("Y options must be an empty list, not nil")
			}
			if got.YDisabled != tt.yDisabled {
				t.Errorf("YDisabled = %v, want %v", got.YDisabled, tt.yDisabled)
			}
			for _, o := range append(got.X, got.Y...) {
				if o.Label != o.Value {
					t.Errorf("label %q should equal value %q", o.Label, o.Value)
				}
			}
		})
	}
}

func TestResolveAxisOptionsHistogramOrder(t *testing.T) {
	got, err := ResolveAxisOptions(config.DefaultColumns(), Histogram)
	if err != nil {
		t.Fatal(err)
	}
	x := values(got.X)
	if x[0] != "distance" || x[6] != "eccentricity" || x[7] != "planet_type" || x[len(x)-1] != "detection_method" {
		t.Errorf("numeric columns must precede categorical ones: %v", x)
	}
}

func TestResolveAxisOptionsSubsets(t *testing.T) {
	cols := config.DefaultColumns()
	for _, opt := range ChartTypeOptions() {
		got, err := ResolveAxisOptions(cols, ChartType(opt.Value))
		if err != nil {
			t.Fatalf("%s: %v", opt.Value, err)
		}
		for _, o := range append(got.X, got.Y...) {
			if !cols.IsNumeric(o.Value) && !cols.IsCategorical(o.Value) {
				t.Errorf("%s: option %q is outside the declared columns", opt.Value, o.Value)
			}
		}
		for _, o := range got.Y {
			if !cols.IsNumeric(o.Value) {
				t.Errorf("%s: Y option %q is not numeric", opt.Value, o.Value)
			}
		}
	}
}

func TestResolveAxisOptionsUnknown(t *testing.T) {
	_, err := ResolveAxisOptions(config.DefaultColumns(), ChartType("pie"))
	if !errors.Is(err, ErrUnknownChartType) {
		t.Fatalf("expected ErrUnknownChartType, got %v", err)
	}
}
