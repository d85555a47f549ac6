package web

import (
	"embed"
	"html/template"
)

// FinancialPage is the template behind /financial.
const FinancialPage = "financial.html"

//go:embed *.html
var pages embed.FS

// Parse loads the named embedded page with funcs available to it.
func Parse(name string, funcs template.FuncMap) (*template.Template, error) {
	return template.New(name).Funcs(funcs).ParseFS(pages, name)
}
