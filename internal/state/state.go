package state

import (
	"sync"
	"time"
)

// State is safe for concurrent use by handlers and pinger jobs.
type State struct {
	mutex      sync.RWMutex
	publicURL  string
	botHealthy bool
	startedAt  time.Time
}

// New returns a State seeded with the public URL known from configuration.
// An empty initialURL means no URL has been detected yet.
func New(initialURL string) *State {
	return &State{
		publicURL: initialURL,
		startedAt: time.Now(),
	}
}

// PublicURL returns the best-known public origin and whether one is known.
func (s *State) PublicURL() (string, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.publicURL, s.publicURL != ""
}

// SetPublicURL stores url if it differs from the current value.
// Returns true if the stored value changed.
func (s *State) SetPublicURL(url string) (changed bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if url == "" || s.publicURL == url {
		return false
	}

	s.publicURL = url
	return true
}

// BotHealthy reports the last health status sent by the supervised bot.
func (s *State) BotHealthy() bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.botHealthy
}

// SetBotHealthy updates the bot health flag.
// Returns true if the flag flipped.
func (s *State) SetBotHealthy(healthy bool) (changed bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.botHealthy == healthy {
		return false
	}

	s.botHealthy = healthy
	return true
}

// Uptime returns the time elapsed since the state was created.
func (s *State) Uptime() time.Duration {
	return time.Since(s.startedAt)
}
