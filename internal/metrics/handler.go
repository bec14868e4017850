package metrics

import (
	"encoding/json"
	"net/http"
)

// Handler serves the JSON snapshot. domains, when set, adds the per-URL
// breaker states to the response.
func (c *Collector) Handler(domains func() map[string]DomainStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := c.Snapshot()
		if domains != nil {
			snap.Domains = domains()
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(snap); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
}
