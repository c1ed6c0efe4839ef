// Package api serves a dashboard page, its layout and frames over HTTP and
// WebSocket.
package api

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/playok/astermon/internal/model"
	"github.com/playok/astermon/internal/store"
	"github.com/playok/astermon/web"
)

// NewRouter creates the HTTP router for one dashboard. db may be nil when
// history is disabled.
func NewRouter(layout model.Layout, hub *Hub, db *store.Store, basePath string) http.Handler {
	mux := http.NewServeMux()

	layout.History = db != nil
	fa := &frameAPI{layout: layout, hub: hub}
	ma := &metricsAPI{store: db}

	mux.HandleFunc("GET /api/v1/layout", fa.getLayout)
	mux.HandleFunc("GET /api/v1/frame", fa.getFrame)

	// History
	mux.HandleFunc("GET /api/v1/metrics/available", ma.available)
	mux.HandleFunc("GET /api/v1/metrics/query", ma.query)

	// WebSocket
	mux.HandleFunc("GET /api/v1/ws", hub.HandleWS)

	mux.HandleFunc("GET /healthz", healthz)

	// Static files (embedded), with base_path injected into index.html
	mux.Handle("/", web.StaticHandler(basePath, layout.Title))

	var handler http.Handler = mux

	// If base_path is set, strip the prefix so internal routing works unchanged
	if basePath != "/" && basePath != "" {
		inner := handler
		handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, basePath) {
				r.URL.Path = strings.TrimPrefix(r.URL.Path, basePath)
				if r.URL.Path == "" {
					r.URL.Path = "/"
				}
				r.URL.RawPath = strings.TrimPrefix(r.URL.RawPath, basePath)
			}
			inner.ServeHTTP(w, r)
		})
	}

	return withMiddleware(handler)
}

func withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Recovery
		defer func() {
			if err := recover(); err != nil {
				log.Printf("[http] panic: %v", err)
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()

		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)

		if !strings.HasSuffix(r.URL.Path, "/ws") {
			log.Printf("[http] %s %s %s", r.Method, r.URL.Path, time.Since(start))
		}
	})
}
