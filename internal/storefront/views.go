package storefront

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"Ubermelon/internal/cart"
	"Ubermelon/internal/catalog"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"homepage", "all_melons", "melon_details", "cart", "login", "error"}

// Page is the view model handed to every template.
type Page struct {
	Title   string
	Flashes []string

	Melons  []catalog.Melon
	Melon   catalog.Melon
	Summary cart.Summary

	Status  int
	Message string
}

type Views struct {
	pages map[string]*template.Template
}

// NewViews parses every page together with the shared layout once at startup.
func NewViews() (*Views, error) {
	v := &Views{pages: make(map[string]*template.Template, len(pageNames))}

	for _, name := range pageNames {
		t, err := template.New(name).
			Option("missingkey=error").
			ParseFS(templateFS, "templates/base.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		v.pages[name] = t
	}
	return v, nil
}

// Render executes into a buffer first so a template error never leaves a
// half-written page behind.
func (v *Views) Render(w http.ResponseWriter, status int, name string, p Page) error {
	t, ok := v.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", p); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
