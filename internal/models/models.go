package models

// Figure is a plotly.js figure: traces plus layout. The page hands it to Plotly.react as is.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

type Trace struct {
	Type        string   `json:"type"`
	Name        string   `json:"name"`
	Mode        string   `json:"mode,omitempty"`
	X           []any    `json:"x"`
	Y           []any    `json:"y,omitempty"`
	HoverText   []string `json:"hovertext,omitempty"`
	LegendGroup string   `json:"legendgroup,omitempty"`
	OffsetGroup string   `json:"offsetgroup,omitempty"`
	Marker      *Marker  `json:"marker,omitempty"`
	ShowLegend  bool     `json:"showlegend"`
}

type Marker struct {
	Color string `json:"color"`
}

type Layout struct {
	Title        Title       `json:"title"`
	XAxis        Axis        `json:"xaxis"`
	YAxis        Axis        `json:"yaxis"`
	Legend       Legend      `json:"legend"`
	BarMode      string      `json:"barmode,omitempty"`
	BoxMode      string      `json:"boxmode,omitempty"`
	PaperBgColor string      `json:"paper_bgcolor,omitempty"`
	PlotBgColor  string      `json:"plot_bgcolor,omitempty"`
	Font         *Font       `json:"font,omitempty"`
	Margin       *Margin     `json:"margin,omitempty"`
	HoverLabel   *HoverLabel `json:"hoverlabel,omitempty"`
}

type Title struct {
	Text string `json:"text"`
	Font *Font  `json:"font,omitempty"`
}

type Axis struct {
	Title Title `json:"title"`
}

type Legend struct {
	Title Title `json:"title"`
}

type Font struct {
	Color string `json:"color,omitempty"`
	Size  int    `json:"size,omitempty"`
}

type Margin struct {
	T int `json:"t"`
	L int `json:"l"`
	R int `json:"r"`
	B int `json:"b"`
}

type HoverLabel struct {
	BgColor string `json:"bgcolor"`
}

// Option is one dropdown entry.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// AxisOptions is what the chart-type control drives: both option lists and the Y-axis state.
type AxisOptions struct {
	X         []Option `json:"x_options"`
	Y         []Option `json:"y_options"`
	YDisabled bool     `json:"y_disabled"`
}

// PreviewPage is one page of the read-only data preview.
type PreviewPage struct {
	Columns   []string `json:"columns"`
	Rows      [][]any  `json:"rows"`
	Total     int      `json:"total"`
	Offset    int      `json:"offset"`
	Limit     int      `json:"limit"`
	Page      int      `json:"page"`
	PageCount int      `json:"page_count"`
}

type Health struct {
	Status  string `json:"status"`
	Rows    int    `json:"rows"`
	Columns int    `json:"columns"`
}

// PropValue addresses one component property, optionally carrying its value.
type PropValue struct {
	ID       string `json:"id"`
	Property string `json:"property"`
	Value    any    `json:"value"`
}

// UpdateRequest is the body of POST /api/update.
type UpdateRequest struct {
	Changed []PropValue `json:"changed"`
	State   []PropValue `json:"state"`
}

type UpdateResponse struct {
	Outputs []PropValue `json:"outputs"`
}

// Control describes one input control of the page.
type Control struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Value    string   `json:"value"`
	Options  []Option `json:"options,omitempty"`
	Disabled bool     `json:"disabled"`
}

// CallbackInfo lists the wiring of one reactive callback.
type CallbackInfo struct {
	Name    string      `json:"name"`
	Inputs  []PropValue `json:"inputs"`
	Outputs []PropValue `json:"outputs"`
}

type LayoutInfo struct {
	Title     string         `json:"title"`
	Controls  []Control      `json:"controls"`
	Callbacks []CallbackInfo `json:"callbacks"`
	PageSize  int            `json:"page_size"`
}
