package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"gift-store-api/internal/model"
)

// Timeout cuts off handlers that outlive the request budget. The body sent on
// timeout is the same response envelope every other error uses.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	body, _ := json.Marshal(model.APIResponse{
		Success: false,
		Error: &model.APIError{
			Code:    "REQUEST_TIMEOUT",
			Message: "request timed out",
		},
	})

	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, string(body))
	}
}
