package middleware

import (
	"encoding/json"
	"net/http"
	"strings"
)

// DefaultAllowedAgents covers the two callers the webhook expects:
// Twilio's delivery infrastructure and Dialogflow's fulfillment runner.
var DefaultAllowedAgents = []string{"twilio", "dialogflow"}

// OriginFilter rejects requests whose User-Agent matches none of the
// allowed fragments. Matching is case-insensitive substring matching.
func OriginFilter(allowedAgents []string) func(http.Handler) http.Handler {
	if len(allowedAgents) == 0 {
		allowedAgents = DefaultAllowedAgents
	}
	fragments := make([]string, 0, len(allowedAgents))
	for _, a := range allowedAgents {
		a = strings.ToLower(strings.TrimSpace(a))
		if a != "" {
			fragments = append(fragments, a)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			agent := strings.ToLower(r.UserAgent())
			for _, f := range fragments {
				if strings.Contains(agent, f) {
					next.ServeHTTP(w, r)
					return
				}
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"success": false,
				"data":    nil,
				"error":   "Origem não autorizada",
			})
		})
	}
}
