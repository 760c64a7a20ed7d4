package api

import (
	"embed"
	"html/template"
)

//go:embed templates/*
var templateFS embed.FS

// newTemplates creates and parses the HTML templates with custom functions.
func newTemplates() *template.Template {
	funcs := template.FuncMap{
		"orDash": func(s string) string {
			if s == "" {
				return "---"
			}
			return s
		},
		"stateText": loadStateText,
	}
	return template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
}
