package api

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/labstack/echo/v4"

	"exodash/internal/config"
)

//go:embed templates/*.html
var templates embed.FS

type pageData struct {
	Title string
	Theme config.Theme
}

// pageRenderer serves the single dashboard page through echo's Renderer hook.
type pageRenderer struct {
	tmpl *template.Template
}

func newPageRenderer() (*pageRenderer, error) {
	tmpl, err := template.ParseFS(templates, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &pageRenderer{tmpl: tmpl}, nil
}

func (p *pageRenderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return p.tmpl.ExecuteTemplate(w, name, data)
}
