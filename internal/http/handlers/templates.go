package handlers

import (
	"embed"
	"html/template"
	"strconv"
	"time"

	"github.com/yungbote/feedback-backend/internal/services"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses the embedded pages for gin's HTML renderer.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"stars": func(n int) string { return services.DisplayRating(strconv.Itoa(n)) },
		"stamp": func(t time.Time) string {
			if t.IsZero() {
				return "never"
			}
			return t.Format("02 Jan, 2006 15:04:05 MST")
		},
	}).ParseFS(templateFS, "templates/*.html")
}
