// Package circuitbreaker tracks whether a learned public URL still answers.
//
// Each public URL gets its own breaker. External pings and domain
// verifications feed it and /stats reports it. Breakers never gate traffic:
// the pingers fire on every tick and the next tick is the only retry.
//
//   - CLOSED: URL answering, or fewer failures in a row than the threshold
//   - OPEN: URL failed at least threshold times in a row
//
// Usage:
//
//	registry := circuitbreaker.NewRegistry(3)
//	cb := registry.GetBreaker("https://bot.koyeb.app")
//	if err != nil {
//	    cb.RecordFailure()
//	} else {
//	    cb.RecordSuccess()
//	}
package circuitbreaker
