// Package web holds the dashboard's HTML templates.
package web

import (
	"embed"
	"html/template"
	"strings"
)

//go:embed templates/*.tmpl
var files embed.FS

var funcs = template.FuncMap{
	"initials": initials,
}

// Templates parses the embedded templates. It panics on a malformed template, which can
// only happen at build time.
func Templates() *template.Template {
	return template.Must(template.New("").Funcs(funcs).ParseFS(files, "templates/*.tmpl"))
}

func initials(name string) string {
	var out []rune
	for _, part := range strings.Fields(name) {
		out = append(out, []rune(part)[0])
		if len(out) == 2 {
			break
		}
	}
	return strings.ToUpper(string(out))
}
