package circuitbreaker

import (
	"sync"
)

// Registry hands out one breaker per public URL.
type Registry struct {
	mutex     sync.RWMutex
	breakers  map[string]*CircuitBreaker
	threshold int
}

func NewRegistry(threshold int) *Registry {
	return &Registry{
		breakers:  make(map[string]*CircuitBreaker),
		threshold: threshold,
	}
}

func (r *Registry) GetBreaker(publicURL string) *CircuitBreaker {
	r.mutex.RLock()
	cb, exists := r.breakers[publicURL]
	r.mutex.RUnlock()

	if exists {
		return cb
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if cb, exists = r.breakers[publicURL]; exists {
		return cb
	}

	cb = NewCircuitBreaker(r.threshold)
	r.breakers[publicURL] = cb
	return cb
}

// Retain drops every breaker except the one for publicURL. Called when a new
// URL is learned so abandoned domains do not accumulate.
func (r *Registry) Retain(publicURL string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for u := range r.breakers {
		if u != publicURL {
			delete(r.breakers, u)
		}
	}
}

func (r *Registry) Stats() map[string]Status {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	stats := make(map[string]Status, len(r.breakers))
	for u, cb := range r.breakers {
		stats[u] = cb.Status()
	}
	return stats
}
