package status

import (
	"encoding/json"
	"net/http"

	"servr/internal/hostkey"

	CharmLog "github.com/charmbracelet/log"
	"github.com/gorilla/mux"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type Algorithm struct {
	Name        string `json:"name"`
	Slot        string `json:"slot"`
	Enabled     bool   `json:"enabled"`
	Fingerprint string `json:"fingerprint,omitempty"`
}

// NewRouter serves the resolved host key registry. keys must already be
// frozen; handlers only read it.
func NewRouter(keys *hostkey.HostKeys, logger *CharmLog.Logger) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: "OK"})
	}).Methods("GET")

	r.HandleFunc("/hostkeys", func(w http.ResponseWriter, r *http.Request) {
		logger.Info("Hostkeys requested", "remoteAddr", r.RemoteAddr)
		writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: algorithms(keys)})
	}).Methods("GET")

	r.HandleFunc("/hostkeys/{name}", func(w http.ResponseWriter, r *http.Request) {
		name := mux.Vars(r)["name"]
		for _, algo := range algorithms(keys) {
			if algo.Name == name {
				writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: algo})
				return
			}
		}
		writeJSON(w, http.StatusNotFound, APIResponse{Success: false, Error: "Algorithm not found"})
	}).Methods("GET")

	return r
}

func algorithms(keys *hostkey.HostKeys) []Algorithm {
	entries := keys.Snapshot().Entries()
	out := make([]Algorithm, 0, len(entries))
	for _, e := range entries {
		algo := Algorithm{Name: e.Name, Slot: e.Slot.String(), Enabled: e.Usable}
		if fp, ok := keys.Fingerprint(e.Slot); ok && e.Usable {
			algo.Fingerprint = fp
		}
		out = append(out, algo)
	}
	return out
}

func writeJSON(w http.ResponseWriter, code int, body APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}
