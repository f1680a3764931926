package templates

import (
	"embed"
	"html/template"
)

//go:embed html/*.html
var files embed.FS

// Load parses the embedded page templates. Pages are named by their base
// file name (login.html, consent.html, error.html).
func Load() *template.Template {
	return template.Must(template.ParseFS(files, "html/*.html"))
}
