package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/playok/astermon/internal/model"
	"github.com/playok/astermon/internal/store"
)

type metricsAPI struct {
	store *store.Store
}

func (a *metricsAPI) query(w http.ResponseWriter, r *http.Request) {
	if a.store == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "history is disabled"})
		return
	}
	name := r.URL.Query().Get("name")
	if name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name parameter required"})
		return
	}

	now := time.Now().Unix()
	from := queryInt64(r, "from", now-3600) // default: last hour
	to := queryInt64(r, "to", now)
	step := int(queryInt64(r, "step", 0))

	// Support comma-separated names
	var names []string
	for _, n := range strings.Split(name, ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	samples, err := a.store.QueryMetrics(names, from, to, step)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if samples == nil {
		samples = []model.MetricSample{}
	}
	writeJSON(w, http.StatusOK, samples)
}

func (a *metricsAPI) available(w http.ResponseWriter, r *http.Request) {
	if a.store == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "history is disabled"})
		return
	}
	metas, err := a.store.GetDistinctMetrics()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if metas == nil {
		metas = []model.MetricMeta{}
	}
	writeJSON(w, http.StatusOK, metas)
}

func queryInt64(r *http.Request, key string, def int64) int64 {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return def
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
