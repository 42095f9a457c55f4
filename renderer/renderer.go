// Package renderer renders the coinwatch views as markdown.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"
)

//go:embed templates/*.md
var templatesFS embed.FS

var templates, _ = fs.Sub(templatesFS, "templates")

// RenderDashboard renders the dashboard to a markdown string.
func RenderDashboard(d *Dashboard) string {
	partials := map[string]string{
		"dashboard_summary":   "dashboard_summary.md",
		"dashboard_breakdown": "dashboard_breakdown.md",
		"dashboard_table":     "dashboard_table.md",
	}
	if len(d.Rows) == 0 {
		partials["dashboard_breakdown"] = ""
		partials["dashboard_table"] = "dashboard_empty.md"
	}
	return renderTemplate("dashboard", "dashboard.md", partials, d)
}

// RenderCatalog renders the coin picker to a markdown string.
func RenderCatalog(v *CatalogView) string {
	partials := map[string]string{
		"catalog_status": "catalog_status.md",
		"catalog_table":  "catalog_table.md",
	}
	return renderTemplate("catalog", "catalog.md", partials, v)
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		var content []byte
		// An empty file name is a valid case, resulting in an empty template.
		if file != "" {
			content, err = fs.ReadFile(templates, file)
			if err != nil {
				return fmt.Sprintf("error reading partial template %q: %v", file, err)
			}
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
