// Package assets embeds the dashboard's static files.
package assets

import _ "embed"

// Index is the minified dashboard page produced by cmd/minify.
//
//go:embed index.html
var Index []byte

// Favicon is the site icon.
//
//go:embed favicon.svg
var Favicon []byte
