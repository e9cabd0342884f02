package httpapi

import (
	"encoding/json"
	"net/http"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	ErrorNumber      int    `json:"errorNumber"`
	ErrorDescription string `json:"errorDescription"`
}

func writeError(w http.ResponseWriter, status int, code int, description string) {
	writeJSON(w, status, errorBody{ErrorNumber: code, ErrorDescription: description})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	return json.NewDecoder(r.Body).Decode(v)
}
