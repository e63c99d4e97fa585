// Package assets embeds the page sources bundled by internal/web.
package assets

import _ "embed"

// IndexTemplate is the html/template source of the map page.
//
//go:embed index.html.tpl
var IndexTemplate string

// Style is the page stylesheet.
//
//go:embed style.css
var Style string

// Script draws markers and re-queries the view on every search edit.
//
//go:embed script.js
var Script string

// Favicon is the site icon.
//
//go:embed favicon.svg
var Favicon []byte
