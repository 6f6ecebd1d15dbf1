// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render provides HTML template rendering for the public
// storefront and the admin interface. Templates are embedded in the
// binary and parsed once at startup.
package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"ferrecms/internal/middleware"
	"ferrecms/internal/session"
)

//go:embed templates/admin/*.html templates/public/*.html
var templateFS embed.FS

// PageData holds all data passed to templates.
type PageData struct {
	Title     string         // Page title for <title> tag
	Section   string         // Active nav section (e.g., "products", "categories")
	Session   *session.Data  // Current user session (nil if unauthenticated)
	CSRFToken string         // CSRF token for forms
	Data      map[string]any // Page-specific data
	Flashes   []Flash        // One-time notification messages
}

// Flash represents a one-time notification message displayed to the user.
type Flash struct {
	Type    string // "success", "error", "warning", "info"
	Message string
}

// Renderer handles template parsing and execution.
type Renderer struct {
	templates map[string]*template.Template
	funcMap   template.FuncMap
}

// standaloneTemplates lists templates that render as full HTML pages
// without the base layout (they have their own <html>, <head>, etc.).
var standaloneTemplates = map[string]bool{
	"login":      true,
	"2fa_setup":  true,
	"2fa_verify": true,
}

// New creates a Renderer by parsing all templates from the embedded
// filesystem. Public and admin page templates are each paired with
// their section's base layout.
func New(devMode bool) (*Renderer, error) {
	r := &Renderer{
		templates: make(map[string]*template.Template),
		funcMap: template.FuncMap{
			"activeClass": func(current, target string) string {
				if current == target {
					return "active"
				}
				return ""
			},
			// deref safely dereferences a string pointer for use in templates.
			"deref": func(s *string) string {
				if s == nil {
					return ""
				}
				return *s
			},
			// isDev returns true when the app runs in development mode.
			"isDev": func() bool {
				return devMode
			},
			// catIndent returns a category name with non-breaking space indentation
			// based on depth. Used for hierarchical <select> dropdowns.
			"catIndent": func(depth int, name string) string {
				if depth == 0 {
					return name
				}
				return strings.Repeat("    ", depth) + name
			},
			// uuidEq compares a *uuid.UUID pointer with a uuid.UUID value.
			"uuidEq": func(ptr *uuid.UUID, val uuid.UUID) bool {
				return ptr != nil && *ptr == val
			},
			// price formats a decimal amount in Argentine style: 1.234,56.
			// Nil prices render as "Consultar".
			"price": func(d *decimal.Decimal) string {
				if d == nil {
					return "Consultar"
				}
				return FormatPrice(*d)
			},
		},
	}

	for _, section := range []string{"public", "admin"} {
		if err := r.parseSection(section); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// parseSection parses every page template in a section directory,
// pairing each with the section's base.html layout.
func (r *Renderer) parseSection(section string) error {
	dir := "templates/" + section
	entries, err := templateFS.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read embedded templates %s: %w", section, err)
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := filepath.Base(e.Name())
		if name == "base.html" {
			continue
		}

		tmplName := name[:len(name)-len(".html")]

		var tmpl *template.Template
		var parseErr error

		if standaloneTemplates[tmplName] {
			tmpl, parseErr = template.New(name).Funcs(r.funcMap).ParseFS(
				templateFS, dir+"/"+name,
			)
		} else {
			tmpl, parseErr = template.New("base.html").Funcs(r.funcMap).ParseFS(
				templateFS, dir+"/base.html", dir+"/"+name,
			)
		}

		if parseErr != nil {
			return fmt.Errorf("parse template %s/%s: %w", section, name, parseErr)
		}

		r.templates[tmplName] = tmpl
	}

	return nil
}

// Page renders a page template into the response. The session and CSRF
// token are injected from the request context when not already set.
func (rn *Renderer) Page(w http.ResponseWriter, r *http.Request, name string, data *PageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := rn.Render(w, r, name, data); err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

// Render executes a page template into an arbitrary writer. Public
// handlers use this to render into a buffer for the page cache.
func (rn *Renderer) Render(w io.Writer, r *http.Request, name string, data *PageData) error {
	tmpl, ok := rn.templates[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}

	if data.CSRFToken == "" {
		data.CSRFToken = middleware.GetCSRFToken(r)
	}
	if data.Session == nil {
		data.Session = middleware.SessionFromCtx(r.Context())
	}

	execName := "base.html"
	if standaloneTemplates[name] {
		execName = name + ".html"
	}

	return tmpl.ExecuteTemplate(w, execName, data)
}

// FormatPrice renders a decimal amount with a dot thousands separator
// and a comma decimal separator, two decimal places.
func FormatPrice(d decimal.Decimal) string {
	s := d.StringFixed(2)

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, c := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(c)
	}

	out := b.String() + "," + frac
	if neg {
		out = "-" + out
	}
	return out
}
