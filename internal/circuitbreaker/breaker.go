package circuitbreaker

import (
	"sync"
	"time"
)

type State int

const (
	StateClosed State = iota // URL answering
	StateOpen                // URL failing
)

// Status is a point-in-time view of one breaker.
type Status struct {
	State       State
	Failures    int
	LastFailure time.Time
}

// CircuitBreaker counts consecutive failures of one URL. It only reports;
// callers keep pinging on their fixed schedule whatever the state.
type CircuitBreaker struct {
	mutex            sync.Mutex
	state            State
	failures         int
	lastFailure      time.Time
	failureThreshold int
}

func NewCircuitBreaker(threshold int) *CircuitBreaker {
	if threshold < 1 {
		threshold = 1
	}
	return &CircuitBreaker{
		state:            StateClosed,
		failureThreshold: threshold,
	}
}

func (cb *CircuitBreaker) RecordFailure() {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	cb.failures++
	cb.lastFailure = time.Now()

	if cb.failures >= cb.failureThreshold {
		cb.state = StateOpen
	}
}

func (cb *CircuitBreaker) RecordSuccess() {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	cb.failures = 0
	cb.state = StateClosed
}

func (cb *CircuitBreaker) State() State {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	return cb.state
}

func (cb *CircuitBreaker) Status() Status {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	return Status{State: cb.state, Failures: cb.failures, LastFailure: cb.lastFailure}
}

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	default:
		return "UNKNOWN"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
