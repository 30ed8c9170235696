// Package response writes JSON bodies for HTTP handlers.
package response

import (
	"encoding/json"
	"net/http"
)

// MessageBody is the shape of every error and plain acknowledgement response.
type MessageBody struct {
	Message string `json:"message"`
}

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Message writes {"message": msg}.
func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, MessageBody{Message: msg})
}
