package response

import (
	"encoding/json"
	"net/http"
)

// JSON writes a JSON response
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// OK writes a 200 response carrying only a message. Deletes and
// registration changes answer this way instead of 204.
func OK(w http.ResponseWriter, message string) {
	JSON(w, http.StatusOK, Message{Message: message})
}
