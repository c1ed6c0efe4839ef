package web

import (
	"embed"
	"html"
	"io/fs"
	"net/http"
	"strings"
)

//go:generate curl -fsSL -o static/vendor/plotly.min.js https://cdn.plot.ly/plotly-2.35.2.min.js

//go:embed static/*
var staticFS embed.FS

// StaticHandler returns an http.Handler that serves the embedded dashboard.
// It injects basePath and the page title into index.html.
func StaticHandler(basePath, title string) http.Handler {
	sub, _ := fs.Sub(staticFS, "static")
	fileServer := http.FileServer(http.FS(sub))

	// Read index.html once at startup for injection
	indexBytes, _ := fs.ReadFile(sub, "index.html")
	injected := strings.Replace(string(indexBytes),
		"<head>",
		"<head>\n<script>window.__BASE_PATH='"+basePath+"';</script>",
		1,
	)
	injected = strings.Replace(injected, "<title>Asterisk</title>", "<title>"+html.EscapeString(title)+"</title>", 1)

	// Rewrite static asset paths to include base_path prefix
	if basePath != "/" && basePath != "" {
		prefix := basePath + "/"
		injected = strings.ReplaceAll(injected, `href="/css/`, `href="`+prefix+`css/`)
		injected = strings.ReplaceAll(injected, `src="/vendor/`, `src="`+prefix+`vendor/`)
		injected = strings.ReplaceAll(injected, `src="/js/`, `src="`+prefix+`js/`)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" || r.URL.Path == "/index.html" {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write([]byte(injected))
			return
		}
		fileServer.ServeHTTP(w, r)
	})
}
