package feed

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
)

type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Error   string      `json:"error,omitempty"`
}

func writeEnvelope(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

// Routes serves the cached readings with the backend envelope, so the dashboard can
// read them through its telemetry client. A missing reading is data=null, not an error.
func Routes(r *mux.Router, cache *Cache) {
	r.HandleFunc("/api/luz/ultima", func(w http.ResponseWriter, _ *http.Request) {
		if l, ok := cache.Light(); ok {
			writeEnvelope(w, http.StatusOK, envelope{Success: true, Data: l})
			return
		}
		writeEnvelope(w, http.StatusOK, envelope{Success: true, Data: nil})
	}).Methods(http.MethodGet)

	r.HandleFunc("/api/luminarias/{id}/ultima-medicion", func(w http.ResponseWriter, req *http.Request) {
		id := strings.TrimSpace(mux.Vars(req)["id"])
		if m, ok := cache.Latest(id); ok {
			writeEnvelope(w, http.StatusOK, envelope{Success: true, Data: m})
			return
		}
		writeEnvelope(w, http.StatusOK, envelope{Success: true, Data: nil})
	}).Methods(http.MethodGet)

	r.HandleFunc("/api/mediciones/ultimas", func(w http.ResponseWriter, _ *http.Request) {
		writeEnvelope(w, http.StatusOK, envelope{Success: true, Data: cache.All()})
	}).Methods(http.MethodGet)
}
