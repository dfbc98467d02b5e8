package api

import (
	"encoding/json"
	"log"
	"net/http"
)

// errorBody is the JSON error envelope: a short machine-readable error plus
// the underlying message for diagnostics.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("API encode error: %v", err)
	}
}

// respondWithError logs the error and sends a JSON error response
// Use this to avoid exposing internal errors while still logging them
func respondWithError(w http.ResponseWriter, code int, message string, err error) {
	if err != nil {
		log.Printf("API Error [%d]: %s - %v", code, message, err)
		respondJSON(w, code, errorBody{Error: message, Message: err.Error()})
		return
	}
	log.Printf("API Error [%d]: %s", code, message)
	respondJSON(w, code, errorBody{Error: message, Message: message})
}
