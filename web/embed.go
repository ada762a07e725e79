// Package web provides embedded static assets for the admin interface.
// In development, templates load TailwindCSS from its CDN; in production
// they use the stylesheet embedded here and served at /static/.
package web

import "embed"

// StaticFS embeds the web/static/ directory tree.
//
//go:embed all:static
var StaticFS embed.FS
