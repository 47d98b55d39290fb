package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/xuri/excelize/v2"

	"exodash/internal/config"
	"exodash/internal/engine/enginetest"
	"exodash/internal/models"
)

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	cfg := config.Default()
	cfg.PageSize = 4
	h, err := NewHandler(enginetest.Table(t), cfg)
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}
	return NewServer(h, cfg)
}

func newServerFor(t *testing.T, csv string) *echo.Echo {
	t.Helper()
	cfg := config.Default()
	h, err := NewHandler(enginetest.Parse(t, csv), cfg)
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}
	return NewServer(h, cfg)
}

func do(t *testing.T, e *echo.Echo, method, target string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func TestIndex(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"NASA Exoplanet Dashboard", "#1c1f21", "Diagrammtyp", "X-Achse", "Y-Achse", "Datenvorschau"} {
		if !strings.Contains(body, want) {
			t.Errorf("page is missing %q", want)
		}
	}
	// column names come from the data file and are set as text, never as markup
	if strings.Contains(body, "<th>${") {
		t.Error("preview header is built from markup")
	}
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/healthz", "")
	var h models.Health
	decode(t, rec, &h)
	if h.Status != "ok" || h.Rows != 6 || h.Columns != 13 {
		t.Errorf("health = %+v", h)
	}
}

func TestGetLayout(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/api/layout", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var l models.LayoutInfo
	decode(t, rec, &l)

	if len(l.Controls) != 3 {
		t.Fatalf("controls = %d", len(l.Controls))
	}
	if c := l.Controls[0]; c.Value != "histogram" || len(c.Options) != 4 {
		t.Errorf("chart control = %+v", c)
	}
	if c := l.Controls[2]; !c.Disabled || len(c.Options) != 0 {
		t.Errorf("y control under histogram = %+v", c)
	}
	if len(l.Callbacks) != 2 || l.Callbacks[0].Name != "update_axis_dropdowns" {
		t.Errorf("callbacks = %+v", l.Callbacks)
	}
	if l.PageSize != 4 {
		t.Errorf("page size = %d", l.PageSize)
	}
}

func TestUpdateChartType(t *testing.T) {
	body := `{"changed":[{"id":"chart-type","property":"value"}],
		"state":[{"id":"chart-type","property":"value","value":"scatter"},
		{"id":"x-axis","property":"value","value":"distance"},
		{"id":"y-axis","property":"value","value":"stellar_magnitude"}]}`
	rec := do(t, newTestServer(t), http.MethodPost, "/api/update", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var resp models.UpdateResponse
	decode(t, rec, &resp)

	got := []string{}
	for _, o := range resp.Outputs {
		got = append(got, o.ID+"."+o.Property)
	}
	want := "x-axis.options y-axis.options y-axis.disabled main-graph.figure"
	if strings.Join(got, " ") != want {
		t.Fatalf("outputs = %v", got)
	}
	if resp.Outputs[2].Value != false {
		t.Errorf("y disabled = %v", resp.Outputs[2].Value)
	}
	fig, ok := resp.Outputs[3].Value.(map[string]any)
	if !ok || fig["data"] == nil {
		t.Errorf("figure = %v", resp.Outputs[3].Value)
	}
}

func TestUpdateIncompleteSelection(t *testing.T) {
	body := `{"changed":[{"id":"x-axis","property":"value"}],
		"state":[{"id":"chart-type","property":"value","value":"bar"},
		{"id":"x-axis","property":"value","value":"planet_type"},
		{"id":"y-axis","property":"value","value":null}]}`
	rec := do(t, newTestServer(t), http.MethodPost, "/api/update", body)
	var resp models.UpdateResponse
	decode(t, rec, &resp)
	if len(resp.Outputs) != 1 {
		t.Fatalf("outputs = %+v", resp.Outputs)
	}
	if fig, ok := resp.Outputs[0].Value.(map[string]any); !ok || len(fig) != 0 {
		t.Errorf("figure = %v, want {}", resp.Outputs[0].Value)
	}
}

func TestUpdateBadRequest(t *testing.T) {
	e := newTestServer(t)
	if rec := do(t, e, http.MethodPost, "/api/update", `{"changed":[]}`); rec.Code != http.StatusBadRequest {
		t.Errorf("empty changed: status %d", rec.Code)
	}
	if rec := do(t, e, http.MethodPost, "/api/update", `{"changed":`); rec.Code != http.StatusBadRequest {
		t.Errorf("syntax error: status %d", rec.Code)
	}
}

func TestGetAxisOptions(t *testing.T) {
	e := newTestServer(t)

	rec := do(t, e, http.MethodGet, "/api/axis-options?chart=box", "")
	var opts models.AxisOptions
	decode(t, rec, &opts)
	if opts.YDisabled || len(opts.X) != 5 || len(opts.Y) != 7 {
		t.Errorf("box options: %d x, %d y, disabled %v", len(opts.X), len(opts.Y), opts.YDisabled)
	}

	if rec := do(t, e, http.MethodGet, "/api/axis-options?chart=pie", ""); rec.Code != http.StatusInternalServerError {
		t.Errorf("unknown chart: status %d", rec.Code)
	}
}

func TestGetFigure(t *testing.T) {
	e := newTestServer(t)

	rec := do(t, e, http.MethodGet, "/api/figure?chart=scatter&x=distance&y=stellar_magnitude", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var fig models.Figure
	decode(t, rec, &fig)
	if len(fig.Data) != 3 || fig.Data[0].Mode != "markers" {
		t.Errorf("figure = %+v", fig.Data)
	}

	etag := rec.Header().Get(headerETag)
	if etag == "" {
		t.Fatal("missing ETag")
	}
	req := httptest.NewRequest(http.MethodGet, "/api/figure?chart=scatter&x=distance&y=stellar_magnitude", nil)
	req.Header.Set(headerIfNoneMatch, etag)
	again := httptest.NewRecorder()
	e.ServeHTTP(again, req)
	if again.Code != http.StatusNotModified {
		t.Errorf("conditional request: status %d", again.Code)
	}
}

func TestGetFigureIncomplete(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/api/figure?chart=bar&x=planet_type", "")
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "{}" {
		t.Errorf("got %d %q", rec.Code, rec.Body.String())
	}
}

func TestGetFigureMissingColumn(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/api/figure?chart=scatter&x=nope&y=distance", "")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status %d", rec.Code)
	}
}

func TestGetChartPNG(t *testing.T) {
	e := newTestServer(t)

	rec := do(t, e, http.MethodGet, "/api/chart.png?chart=bar&x=planet_type&y=distance&width=400&height=300", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get(echo.HeaderContentType) != "image/png" {
		t.Errorf("content type %q", rec.Header().Get(echo.HeaderContentType))
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")) {
		t.Error("body is not a PNG")
	}

	if rec := do(t, e, http.MethodGet, "/api/chart.png?chart=scatter&x=distance", ""); rec.Code != http.StatusNoContent {
		t.Errorf("incomplete selection: status %d", rec.Code)
	}
}

func TestGetPreview(t *testing.T) {
	e := newTestServer(t)
	tests := []struct {
		target   string
		rows     int
		page     int
		firstCol any
	}{
		{"/api/preview", 4, 0, "11 Comae Berenices b"},
		{"/api/preview?page=1", 2, 1, "Kepler-22 b"},
		{"/api/preview?page=1&page_size=5", 1, 1, "GJ 1214 b"},
		{"/api/preview?limit=2&offset=2", 2, 1, "14 Andromedae b"},
		{"/api/preview?page=9", 0, 2, nil},
		{"/api/preview?page=2305843009213693952&page_size=4", 0, 2, nil},
		{"/api/preview?limit=9223372036854775807&offset=1", 5, 0, "11 Ursae Minoris b"},
		{"/api/preview?offset=9223372036854775807", 0, 2, nil},
		{"/api/preview?limit=-1&offset=-5", 4, 0, "11 Comae Berenices b"},
	}
	for _, tt := range tests {
		rec := do(t, e, http.MethodGet, tt.target, "")
		var p models.PreviewPage
		decode(t, rec, &p)
		if len(p.Rows) != tt.rows || p.Page != tt.page || p.Total != 6 {
			t.Errorf("%s: %d rows, page %d, total %d", tt.target, len(p.Rows), p.Page, p.Total)
			continue
		}
		if tt.rows > 0 && p.Rows[0][0] != tt.firstCol {
			t.Errorf("%s: first row starts with %v", tt.target, p.Rows[0][0])
		}
	}
}

func TestGetPreviewNulls(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/api/preview?limit=1&offset=4", "")
	var p models.PreviewPage
	decode(t, rec, &p)
	if len(p.Rows) != 1 || p.Rows[0][1] != nil {
		t.Errorf("missing distance should be null: %v", p.Rows)
	}
}

func TestGetPreviewXLSX(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/api/preview.xlsx", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if !strings.Contains(rec.Header().Get(echo.HeaderContentDisposition), "exoplanets.xlsx") {
		t.Errorf("disposition %q", rec.Header().Get(echo.HeaderContentDisposition))
	}
	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("exoplanets")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 7 {
		t.Errorf("sheet has %d rows, want header plus 6", len(rows))
	}
}

func TestNonFiniteCells(t *testing.T) {
	csv := strings.Replace(enginetest.SampleCSV, ",304.0,", ",NaN,", 1)
	e := newServerFor(t, csv)

	for _, target := range []string{
		"/api/figure?chart=histogram&x=distance",
		"/api/figure?chart=scatter&x=distance&y=stellar_magnitude",
		"/api/preview?page=0",
	} {
		if rec := do(t, e, http.MethodGet, target, ""); rec.Code != http.StatusOK {
			t.Errorf("%s: status %d: %s", target, rec.Code, rec.Body.String())
		}
	}

	rec := do(t, e, http.MethodGet, "/api/preview?limit=1", "")
	var p models.PreviewPage
	decode(t, rec, &p)
	if len(p.Rows) != 1 || p.Rows[0][1] != nil {
		t.Errorf("NaN distance should be null: %v", p.Rows)
	}
}
