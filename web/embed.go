// Package web holds the static assets served by the front door.
package web

import "embed"

// Templates contains the HTML pages rendered by the server.
//
//go:embed templates/*.html
var Templates embed.FS
