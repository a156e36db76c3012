package middleware

import (
	"encoding/json"
	"net/http"

	"gift-store-api/internal/model"
)

// writeRefusal sends the standard error envelope from middleware that stops a
// request before it reaches a handler.
func writeRefusal(w http.ResponseWriter, status int, code string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: false,
		Error: &model.APIError{
			Code:    code,
			Message: message,
		},
	})
}
