package document

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"regexp"
)

//go:embed templates/*.html
var templateFS embed.FS

var hexColour = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Renderer turns a View into HTML.
type Renderer struct {
	tmpl       *template.Template
	background string
}

// NewRenderer parses the embedded templates.
// PRE: background is a #rgb or #rrggbb colour, or empty for white
// POST: Returns a Renderer safe for concurrent use
func NewRenderer(background string) (*Renderer, error) {
	if background == "" {
		background = DefaultBackground
	}
	if !hexColour.MatchString(background) {
		return nil, fmt.Errorf("document background must be a hex colour, got %q", background)
	}
	tmpl, err := template.New("document").Funcs(template.FuncMap{
		"css": func(s string) template.CSS { return template.CSS(s) },
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse document templates: %w", err)
	}
	return &Renderer{tmpl: tmpl, background: background}, nil
}

// Background returns the colour painted behind the capture root.
func (r *Renderer) Background() string {
	return r.background
}

type renderData struct {
	View
	Background string
	WidthPx    int
}

// Standalone renders a complete HTML page holding only the capture root. This is
// what gets rasterized, so it carries no controls and no external resources.
func (r *Renderer) Standalone(v View) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "standalone", r.data(v)); err != nil {
		return nil, fmt.Errorf("render %s: %w", v.Kind, err)
	}
	return buf.Bytes(), nil
}

// Fragment renders the capture root alone, for embedding in a full page that
// places its action controls outside it.
func (r *Renderer) Fragment(v View) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "capture_root", r.data(v)); err != nil {
		return "", fmt.Errorf("render %s: %w", v.Kind, err)
	}
	return template.HTML(buf.String()), nil
}

func (r *Renderer) data(v View) renderData {
	return renderData{View: v, Background: r.background, WidthPx: WidthPx}
}
