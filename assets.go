// Package trail provides embedded assets for production builds.
package trail

import "embed"

// In dev mode templates and static files are read from disk instead.

//go:embed all:web/static
var StaticFS embed.FS

//go:embed all:web/templates
var TemplateFS embed.FS
