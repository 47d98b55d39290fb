package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"exodash/internal/dashboard"
	"exodash/internal/export"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render one chart to a PNG or plotly JSON file.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		var (
			chart, _  = cmd.Flags().GetString("chart")
			x, _      = cmd.Flags().GetString("x")
			y, _      = cmd.Flags().GetString("y")
			out, _    = cmd.Flags().GetString("out")
			format, _ = cmd.Flags().GetString("format")
			width, _  = cmd.Flags().GetInt("width")
			height, _ = cmd.Flags().GetInt("height")
		)
		if format != "png" && format != "json" {
			return fmt.Errorf("unknown format %q", format)
		}

		cfg, table, err := setup(cmd)
		if err != nil {
			return err
		}
		defer table.Release()

		sel := dashboard.Selection{Chart: dashboard.ChartType(chart), X: x, Y: y}
		if !sel.Chart.Valid() {
			return fmt.Errorf("%w: %q", dashboard.ErrUnknownChartType, chart)
		}
		fig, err := dashboard.NewRenderer(table, cfg).Render(sel)
		if err != nil {
			return err
		}
		if fig == nil {
			return errors.New("selection is incomplete, nothing to render")
		}

		return writeFile(out, func(w io.Writer) error {
			if format == "json" {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(fig)
			}
			return export.RenderPNG(w, fig, cfg.Theme, export.Size{Width: width, Height: height})
		})
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the loaded table as an XLSX workbook.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		out, _ := cmd.Flags().GetString("out")
		_, table, err := setup(cmd)
		if err != nil {
			return err
		}
		defer table.Release()
		return writeFile(out, func(w io.Writer) error {
			return export.WriteXLSX(w, table, "exoplanets")
		})
	},
}

// writeFile creates path and removes it again when write fails.
func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.WithField("path", path).Info("written")
	return nil
}

func init() {
	size := export.DefaultSize()
	renderCmd.Flags().String("chart", "histogram", "chart type (histogram, scatter, bar, box)")
	renderCmd.Flags().String("x", "distance", "X column")
	renderCmd.Flags().String("y", "", "Y column")
	renderCmd.Flags().String("out", "chart.png", "output file")
	renderCmd.Flags().String("format", "png", "output format (png or json)")
	renderCmd.Flags().Int("width", size.Width, "image width in pixels")
	renderCmd.Flags().Int("height", size.Height, "image height in pixels")

	exportCmd.Flags().String("out", "exoplanets.xlsx", "output file")
}
