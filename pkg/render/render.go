// Package render draws the server-side pages through echo's Renderer hook.
package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"

	"github.com/labstack/echo/v4"
)

//go:embed templates/*.html
var templateFS embed.FS

const layoutFile = "templates/layout.html"

// Renderer holds all page templates, keyed by page name.
type Renderer struct {
	pages map[string]*template.Template
}

// New parses the embedded templates. Each page gets its own clone of the
// layout so {{define "content"}} does not collide between pages.
func New(appName string) (*Renderer, error) {
	funcMap := template.FuncMap{
		"appName":    func() string { return appName },
		"capitalize": capitalize,
	}

	base, err := template.New("base").Funcs(funcMap).ParseFS(templateFS, layoutFile)
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}

	pageFiles, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to glob page templates: %w", err)
	}

	pages := map[string]*template.Template{}
	for _, f := range pageFiles {
		if f == layoutFile {
			continue
		}
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("failed to clone layout: %w", err)
		}
		if _, err := clone.ParseFS(templateFS, f); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", f, err)
		}
		pages[path.Base(f)] = clone
	}

	return &Renderer{pages: pages}, nil
}

// Render implements echo.Renderer.
func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}
	return tmpl.ExecuteTemplate(w, "layout", data)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	if r[0] >= 'a' && r[0] <= 'z' {
		r[0] -= 32
	}
	return string(r)
}
