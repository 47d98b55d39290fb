package dashboard

import (
	"exodash/internal/config"
	"exodash/internal/models"
)

// ApplyTheme sets the dark presentation attributes every rendered figure carries.
// It does not touch trace data.
func ApplyTheme(fig *models.Figure, th config.Theme) {
	if fig == nil {
		return
	}
	fig.Layout.PaperBgColor = th.Card
	fig.Layout.PlotBgColor = th.Card
	fig.Layout.Font = &models.Font{Color: th.Text}
	fig.Layout.Margin = &models.Margin{T: th.Margin, L: th.Margin, R: th.Margin, B: th.Margin}
	fig.Layout.HoverLabel = &models.HoverLabel{BgColor: th.Hover}
	fig.Layout.Title.Font = &models.Font{Size: th.TitleFontSize}
}
