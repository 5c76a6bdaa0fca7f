package server

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

func pageTemplates() *template.Template {
	funcs := template.FuncMap{
		"add1": func(index int) int { return index + 1 },
	}
	return template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
}
