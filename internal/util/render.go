package util

import (
	"html/template"
	"net/http"
	"path/filepath"
)

func Render(w http.ResponseWriter, name string, data any) {
	files := []string{
		filepath.Join("web", "templates", "layout.html"),
		filepath.Join("web", "templates", name),
	}
	t := template.Must(template.ParseFiles(files...))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = t.ExecuteTemplate(w, "base", data)
}

// RenderError writes an error page with the given status code.
func RenderError(w http.ResponseWriter, code int, title string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	t, err := template.ParseFiles(
		filepath.Join("web", "templates", "layout.html"),
		filepath.Join("web", "templates", "error.html"),
	)
	if err != nil {
		http.Error(w, title, code)
		return
	}
	_ = t.ExecuteTemplate(w, "base", map[string]any{"Code": code, "Title": title})
}
