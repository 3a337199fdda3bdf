// Package template renders the command line banners and listings from
// embedded text templates.
package template

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"

	"github.com/go-sprout/sprout"
	"github.com/go-sprout/sprout/registry/std"
	sproutstrings "github.com/go-sprout/sprout/registry/strings"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Engine renders the embedded templates with the sprout function set.
type Engine struct {
	tmpl *template.Template
}

// NewEngine parses every embedded template.
func NewEngine() (*Engine, error) {
	handler := sprout.New()
	if err := handler.AddRegistries(std.NewRegistry(), sproutstrings.NewRegistry()); err != nil {
		return nil, fmt.Errorf("registering template functions: %w", err)
	}

	tmpl, err := template.New("cursorrules").
		Funcs(template.FuncMap(handler.Build())).
		ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	return &Engine{tmpl: tmpl}, nil
}

// Render executes the named template (file name without extension).
func (e *Engine) Render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := e.tmpl.ExecuteTemplate(&buf, name+".tmpl", data); err != nil {
		return "", fmt.Errorf("rendering %s: %w", name, err)
	}

	return buf.String(), nil
}

// BannerData fills the banner template.
type BannerData struct {
	Name    string
	Version string
	Tagline string
}

// Banner renders the header shown above the help text.
func (e *Engine) Banner(data BannerData) (string, error) {
	return e.Render("banner", data)
}

// ListCategory is one group in the rule listing.
type ListCategory struct {
	Name  string
	Rules []string
}

// ListData fills the rule listing template.
type ListData struct {
	Categories []ListCategory
	Total      int
}

// List renders the rule catalog as printed by the list command.
func (e *Engine) List(data ListData) (string, error) {
	return e.Render("list", data)
}
