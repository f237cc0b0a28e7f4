package health

import (
	"encoding/json"
	"net/http"

	"DENAC/internal/frames"
)

type Response struct {
	Status   string       `json:"status"`
	Instance string       `json:"instance"`
	Frames   frames.Stats `json:"frames"`
}

// Handler reports liveness plus frame preload progress. It answers 200 while
// frames are still loading; readiness is in frames.loaded.
func Handler(instance string, store *frames.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Response{
			Status:   "ok",
			Instance: instance,
			Frames:   store.Stats(),
		})
	}
}
