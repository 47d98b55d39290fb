package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
	"github.com/zeebo/xxh3"

	"exodash/internal/config"
	"exodash/internal/dashboard"
	"exodash/internal/engine"
	"exodash/internal/export"
	"exodash/internal/models"
	"exodash/internal/reactive"
)

const (
	xlsxType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	// not declared by echo
	headerETag        = "ETag"
	headerIfNoneMatch = "If-None-Match"
)

type Handler struct {
	cfg      config.Config
	table    *engine.Table
	renderer *dashboard.Renderer
	graph    *reactive.Graph
	page     *pageRenderer

	// preview rows are materialized once at startup and only sliced afterwards
	columns []string
	rows    [][]any
}

// NewHandler wires the dashboard callbacks over a loaded table.
func NewHandler(table *engine.Table, cfg config.Config) (*Handler, error) {
	page, err := newPageRenderer()
	if err != nil {
		return nil, err
	}
	h := &Handler{
		cfg:      cfg,
		table:    table,
		renderer: dashboard.NewRenderer(table, cfg),
		graph:    reactive.New(),
		page:     page,
		columns:  table.Columns(),
		rows:     make([][]any, table.NumRows()),
	}
	if err := dashboard.Wire(h.graph, cfg.Columns, h.renderer); err != nil {
		return nil, fmt.Errorf("wire callbacks: %w", err)
	}
	for i := range h.rows {
		h.rows[i] = table.Row(i)
	}
	return h, nil
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Index)
	e.GET("/healthz", h.Health)

	api := e.Group("/api")
	api.GET("/layout", h.GetLayout)
	api.POST("/update", h.Update)
	api.GET("/axis-options", h.GetAxisOptions)
	api.GET("/figure", h.GetFigure)
	api.GET("/chart.png", h.GetChartPNG)
	api.GET("/preview", h.GetPreview)
	api.GET("/preview.xlsx", h.GetPreviewXLSX)
}

// --- HANDLERS ---
// getPaginationParams reads limit/offset or page/page_size and clamps both to
// the total row count, so any query value yields a valid slice.
func getPaginationParams(c echo.Context, defaultLimit, total int) (int, int) {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	offset, err := strconv.Atoi(c.QueryParam("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	// page/page_size take precedence, as used by the page's table
	if size, err := strconv.Atoi(c.QueryParam("page_size")); err == nil && size > 0 {
		limit = size
	}
	if limit > total {
		limit = max(total, 1)
	}
	if page, err := strconv.Atoi(c.QueryParam("page")); err == nil && page >= 0 {
		if page > total/limit {
			offset = total
		} else {
			offset = page * limit
		}
	}
	if offset > total {
		offset = total
	}
	return limit, offset
}

func selectionFrom(c echo.Context) dashboard.Selection {
	return dashboard.Selection{
		Chart: dashboard.ChartType(c.QueryParam("chart")),
		X:     c.QueryParam("x"),
		Y:     c.QueryParam("y"),
	}
}

// renderFailed surfaces a failed render. The chart area shows it as broken; nothing is retried.
func renderFailed(err error) error {
	log.WithError(err).Error("render failed")
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error()).SetInternal(err)
}

func (h *Handler) Index(c echo.Context) error {
	return c.Render(http.StatusOK, "index.html", pageData{
		Title: "NASA Exoplanet Dashboard",
		Theme: h.cfg.Theme,
	})
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, models.Health{
		Status:  "ok",
		Rows:    h.table.NumRows(),
		Columns: len(h.columns),
	})
}

func (h *Handler) GetLayout(c echo.Context) error {
	d := h.cfg.Defaults
	opts, err := dashboard.ResolveAxisOptions(h.cfg.Columns, dashboard.ChartType(d.Chart))
	if err != nil {
		return renderFailed(err)
	}

	info := models.LayoutInfo{
		Title:    "NASA Exoplanet Dashboard",
		PageSize: h.cfg.PageSize,
		Controls: []models.Control{
			{ID: dashboard.ChartTypeID, Label: "Diagrammtyp", Value: d.Chart, Options: dashboard.ChartTypeOptions()},
			{ID: dashboard.XAxisID, Label: "X-Achse", Value: d.X, Options: opts.X},
			{ID: dashboard.YAxisID, Label: "Y-Achse", Value: d.Y, Options: opts.Y, Disabled: opts.YDisabled},
		},
	}
	for _, cb := range h.graph.Callbacks() {
		info.Callbacks = append(info.Callbacks, models.CallbackInfo{
			Name:    cb.Name,
			Inputs:  propValues(cb.Inputs),
			Outputs: propValues(cb.Outputs),
		})
	}
	return c.JSON(http.StatusOK, info)
}

func propValues(props []reactive.Prop) []models.PropValue {
	out := make([]models.PropValue, len(props))
	for i, p := range props {
		out[i] = models.PropValue{ID: p.ID, Property: p.Property}
	}
	return out
}

// Update runs one reactive dispatch for the properties the page reports as changed.
func (h *Handler) Update(c echo.Context) error {
	var req models.UpdateRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if len(req.Changed) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "no changed properties")
	}

	rr := reactive.Request{State: make(map[reactive.Prop]any, len(req.State))}
	for _, p := range req.Changed {
		rr.Changed = append(rr.Changed, reactive.Prop{ID: p.ID, Property: p.Property})
	}
	for _, p := range req.State {
		rr.State[reactive.Prop{ID: p.ID, Property: p.Property}] = p.Value
	}

	resp, err := h.graph.Dispatch(c.Request().Context(), rr)
	if err != nil {
		return renderFailed(err)
	}

	out := models.UpdateResponse{Outputs: make([]models.PropValue, 0, len(resp.Order))}
	for _, p := range resp.Order {
		out.Outputs = append(out.Outputs, models.PropValue{ID: p.ID, Property: p.Property, Value: resp.Values[p]})
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) GetAxisOptions(c echo.Context) error {
	opts, err := dashboard.ResolveAxisOptions(h.cfg.Columns, dashboard.ChartType(c.QueryParam("chart")))
	if err != nil {
		return renderFailed(err)
	}
	return c.JSON(http.StatusOK, opts)
}

// GetFigure returns the plotly figure for the query selection, or {} when the
// selection is incomplete. Figures are deterministic, so the body hash is the ETag.
func (h *Handler) GetFigure(c echo.Context) error {
	fig, err := h.renderer.Render(selectionFrom(c))
	if err != nil {
		return renderFailed(err)
	}

	var body []byte
	if fig == nil {
		body = []byte("{}")
	} else if body, err = json.Marshal(fig); err != nil {
		return err
	}

	etag := fmt.Sprintf(`"%016x"`, xxh3.Hash(body))
	c.Response().Header().Set(headerETag, etag)
	if c.Request().Header.Get(headerIfNoneMatch) == etag {
		return c.NoContent(http.StatusNotModified)
	}
	return c.JSONBlob(http.StatusOK, body)
}

func (h *Handler) GetChartPNG(c echo.Context) error {
	fig, err := h.renderer.Render(selectionFrom(c))
	if err != nil {
		return renderFailed(err)
	}
	if fig == nil {
		return c.NoContent(http.StatusNoContent)
	}

	size := export.DefaultSize()
	if w, err := strconv.Atoi(c.QueryParam("width")); err == nil && w > 0 && w <= 4096 {
		size.Width = w
	}
	if ht, err := strconv.Atoi(c.QueryParam("height")); err == nil && ht > 0 && ht <= 4096 {
		size.Height = ht
	}

	var buf bytes.Buffer
	if err := export.RenderPNG(&buf, fig, h.cfg.Theme, size); errors.Is(err, export.ErrNothingToDraw) {
		return c.NoContent(http.StatusNoContent)
	} else if err != nil {
		return renderFailed(err)
	}
	return c.Blob(http.StatusOK, "image/png", buf.Bytes())
}

func (h *Handler) GetPreview(c echo.Context) error {
	total := len(h.rows)
	limit, offset := getPaginationParams(c, h.cfg.PageSize, total)

	page := models.PreviewPage{
		Columns:   h.columns,
		Rows:      [][]any{},
		Total:     total,
		Offset:    offset,
		Limit:     limit,
		PageCount: (total + limit - 1) / limit,
	}
	// past the end reports the page after the last one
	page.Page = page.PageCount
	if offset < total {
		page.Page = offset / limit
		end := offset + limit
		if end > total {
			end = total
		}
		page.Rows = h.rows[offset:end]
	}
	return c.JSON(http.StatusOK, page)
}

func (h *Handler) GetPreviewXLSX(c echo.Context) error {
	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, h.table, "exoplanets"); err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="exoplanets.xlsx"`)
	return c.Blob(http.StatusOK, xlsxType, buf.Bytes())
}
