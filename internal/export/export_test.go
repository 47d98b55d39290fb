package export

import (
	"bytes"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"

	"exodash/internal/config"
	"exodash/internal/dashboard"
	"exodash/internal/engine/enginetest"
	"exodash/internal/models"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func TestRenderPNG(t *testing.T) {
	cfg := config.Default()
	r := dashboard.NewRenderer(enginetest.Table(t), cfg)

	sels := []dashboard.Selection{
		{Chart: dashboard.Histogram, X: "distance"},
		{Chart: dashboard.Histogram, X: "detection_method"},
		{Chart: dashboard.Scatter, X: "distance", Y: "stellar_magnitude"},
		{Chart: dashboard.Bar, X: "mass_wrt", Y: "mass_multiplier"},
		{Chart: dashboard.Box, X: "detection_method", Y: "eccentricity"},
	}
	for _, sel := range sels {
		t.Run(string(sel.Chart)+"/"+sel.X, func(t *testing.T) {
			fig, err := r.Render(sel)
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			var buf bytes.Buffer
			if err := RenderPNG(&buf, fig, cfg.Theme, Size{Width: 640, Height: 400}); err != nil {
				t.Fatalf("RenderPNG: %v", err)
			}
			if !bytes.HasPrefix(buf.Bytes(), pngMagic) {
				t.Errorf("output is not a PNG (%d bytes)", buf.Len())
			}
		})
	}
}

func TestRenderPNGNothing(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderPNG(&buf, nil, config.DefaultTheme(), DefaultSize()); !errors.Is(err, ErrNothingToDraw) {
		t.Fatalf("expected ErrNothingToDraw, got %v", err)
	}
	if err := RenderPNG(&buf, &models.Figure{}, config.DefaultTheme(), DefaultSize()); !errors.Is(err, ErrNothingToDraw) {
		t.Fatalf("expected ErrNothingToDraw for empty figure, got %v", err)
	}
}

func TestRenderPNGUnsupported(t *testing.T) {
	fig := &models.Figure{Data: []models.Trace{{Type: "pie", X: []any{1.0}}}}
	if err := RenderPNG(&bytes.Buffer{}, fig, config.DefaultTheme(), DefaultSize()); err == nil {
		t.Fatal("expected error for unsupported trace type")
	}
}

func TestBinCount(t *testing.T) {
	if binCount(0) != 1 || binCount(16) != 4 || binCount(10000) != 30 {
		t.Errorf("binCount: %d %d %d", binCount(0), binCount(16), binCount(10000))
	}
}

func TestPadRange(t *testing.T) {
	r := padRange([]float64{5})
	if r.Min >= 5 || r.Max <= 5 {
		t.Errorf("single value range = %+v", r)
	}
	r = padRange(nil)
	if r.Min != 0 || r.Max != 1 {
		t.Errorf("empty range = %+v", r)
	}
}

func TestWriteXLSX(t *testing.T) {
	tbl := enginetest.Table(t)

	var buf bytes.Buffer
	if err := WriteXLSX(&buf, tbl, "exoplanets"); err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("exoplanets")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != tbl.NumRows()+1 {
		t.Fatalf("Expected %d rows, got %d", tbl.NumRows()+1, len(rows))
	}
	if rows[0][0] != "name" || rows[0][1] != "distance" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][0] != "11 Comae Berenices b" || rows[1][1] != "304" {
		t.Errorf("first record = %v", rows[1])
	}
	// Kepler-22 b: null distance
	if rows[5][0] != "Kepler-22 b" || rows[5][1] != "" {
		t.Errorf("null cell = %q in %v", rows[5][1], rows[5])
	}
	if rows[1][4] != "2007" {
		t.Errorf("discovery_year should be written as text, got %q", rows[1][4])
	}
}
