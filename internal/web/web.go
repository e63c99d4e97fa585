// Package web bundles the embedded page assets and renders the map page.
package web

import (
	"bytes"
	"fmt"
	"html/template"
	"io"

	"github.com/woozymasta/lakemap/assets"
	"github.com/woozymasta/lakemap/internal/view"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
	"github.com/tdewolff/minify/v2/svg"
)

// DefaultTitle of the page.
const DefaultTitle = "Lake Map"

// Page is the data of one rendered page.
type Page struct {
	Title  string
	View   view.MapView
	Search view.SearchInput
	Static bool // standalone export without the live search

	CSS template.CSS
	JS  template.JS
}

// Bundle holds the parsed page template and minified inline assets.
type Bundle struct {
	minifier *minify.M
	tmpl     *template.Template
	css      template.CSS
	js       template.JS
	favicon  []byte
}

// NewMinifier returns a minifier for the page media types.
func NewMinifier() *minify.M {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("text/html", html.Minify)
	m.AddFunc("text/javascript", js.Minify)
	m.AddFunc("image/svg+xml", svg.Minify)
	return m
}

// NewBundle minifies the embedded stylesheet, script and icon and parses
// the page template.
func NewBundle() (*Bundle, error) {
	m := NewMinifier()

	cssMin, err := m.String("text/css", assets.Style)
	if err != nil {
		return nil, fmt.Errorf("minify css: %w", err)
	}

	jsMin, err := m.String("text/javascript", assets.Script)
	if err != nil {
		return nil, fmt.Errorf("minify js: %w", err)
	}

	svgMin, err := m.Bytes("image/svg+xml", assets.Favicon)
	if err != nil {
		return nil, fmt.Errorf("minify svg: %w", err)
	}

	tmpl, err := template.New("index").Parse(assets.IndexTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}

	return &Bundle{
		minifier: m,
		tmpl:     tmpl,
		css:      template.CSS(cssMin),
		js:       template.JS(jsMin),
		favicon:  svgMin,
	}, nil
}

// Favicon returns the minified SVG icon.
func (b *Bundle) Favicon() []byte {
	return b.favicon
}

// Render executes the page template into w.
func (b *Bundle) Render(w io.Writer, p Page) error {
	if p.Title == "" {
		p.Title = DefaultTitle
	}
	if p.Search.Placeholder == "" {
		p.Search.Placeholder = "Search lakes or fish species"
	}
	p.CSS = b.css
	p.JS = b.js

	return b.tmpl.Execute(w, p)
}

// RenderMinified renders the page and minifies the resulting HTML.
func (b *Bundle) RenderMinified(w io.Writer, p Page) error {
	var buf bytes.Buffer
	if err := b.Render(&buf, p); err != nil {
		return err
	}

	return b.minifier.Minify("text/html", w, &buf)
}
