package config

// Theme holds the dark palette shared by the page, the figures and the PNG export.
type Theme struct {
	Background    string   `mapstructure:"background"`
	Card          string   `mapstructure:"card"`
	Accent        string   `mapstructure:"accent"`
	Text          string   `mapstructure:"text"`
	Border        string   `mapstructure:"border"`
	Hover         string   `mapstructure:"hover"`
	Margin        int      `mapstructure:"margin"`
	TitleFontSize int      `mapstructure:"title_font_size"`
	Series        []string `mapstructure:"series"`
}

func DefaultTheme() Theme {
	return Theme{
		Background:    "#121416",
		Card:          "#1c1f21",
		Accent:        "#3a86ff",
		Text:          "#f0f0f0",
		Border:        "#2b2f33",
		Hover:         "#2a2e32",
		Margin:        40,
		TitleFontSize: 18,
		// plotly's default qualitative sequence
		Series: []string{
			"#636efa", "#ef553b", "#00cc96", "#ab63fa", "#ffa15a",
			"#19d3f3", "#ff6692", "#b6e880", "#ff97ff", "#fecb52",
		},
	}
}

// SeriesColor returns the palette color for the i-th series.
func (t Theme) SeriesColor(i int) string {
	if len(t.Series) == 0 {
		return t.Accent
	}
	return t.Series[i%len(t.Series)]
}
