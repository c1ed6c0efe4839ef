package api

import (
	"net/http"

	"github.com/playok/astermon/internal/model"
)

type frameAPI struct {
	layout model.Layout
	hub    *Hub
}

func (a *frameAPI) getLayout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.layout)
}

func (a *frameAPI) getFrame(w http.ResponseWriter, r *http.Request) {
	frame, ok := a.hub.Latest()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, frame)
}

func healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}
