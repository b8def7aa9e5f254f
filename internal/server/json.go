package server

import (
	"encoding/json"
	"net/http"
)

// Envelope is a loosely typed JSON object response.
type Envelope map[string]any

// WriteJSON writes data as indented JSON with the given status.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	js, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	js = append(js, '\n')
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(js)
}

// WriteError writes a JSON {error} body.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Envelope{"error": message})
}

// MethodNotAllowed writes a 405 listing the allowed methods.
func MethodNotAllowed(w http.ResponseWriter, allowed ...string) {
	for _, m := range allowed {
		w.Header().Add("Allow", m)
	}
	WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
}
