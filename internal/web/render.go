package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

// views are the renderable pages. Each one pairs with the shared layout.
var views = []string{"home", "signup", "login", "members", "admin", "forbidden", "notfound"}

// Renderer renders HTML views from embedded templates.
type Renderer struct {
	templates map[string]*template.Template
}

// NewRenderer creates a new renderer and parses all views against the
// shared layout. A malformed template is a startup failure, not a
// request-time one.
func NewRenderer() (*Renderer, error) {
	funcMap := template.FuncMap{
		"title": titleCase,
		"upper": strings.ToUpper,
		"lower": strings.ToLower,
	}

	r := &Renderer{
		templates: make(map[string]*template.Template),
	}

	for _, view := range views {
		tmpl, err := template.New(view).Funcs(funcMap).ParseFS(templatesFS,
			"templates/layout.tmpl",
			fmt.Sprintf("templates/%s.tmpl", view),
		)
		if err != nil {
			return nil, fmt.Errorf("parse view %s: %w", view, err)
		}
		r.templates[view] = tmpl
	}

	return r, nil
}

// Render writes a view with the given status code. The template runs
// into a buffer first so a mid-render failure never leaks a half page
// behind a success status.
func (r *Renderer) Render(w http.ResponseWriter, statusCode int, view string, data interface{}) error {
	tmpl, ok := r.templates[view]
	if !ok {
		return fmt.Errorf("view not found: %s", view)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("execute view %s: %w", view, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("write view %s: %w", view, err)
	}
	return nil
}

var titleCaser = cases.Title(language.English)

func titleCase(s string) string {
	return titleCaser.String(s)
}
