package metrics

import (
	"sync"
	"time"
)

// PingKind names the pinger that produced an event.
type PingKind string

const (
	KindLocal    PingKind = "local"
	KindExternal PingKind = "external"
	KindVerify   PingKind = "verify"
)

type Metrics struct {
	mutex      sync.RWMutex
	pings      map[PingKind]*PingStats
	urlChanges int64
	botReports int64
	startTime  time.Time
}

type PingStats struct {
	Attempts     int64         `json:"attempts"`
	OK           int64         `json:"ok"`
	Non200       int64         `json:"non_200"`
	Failed       int64         `json:"failed"`
	LastStatus   int           `json:"last_status,omitempty"`
	LastDuration time.Duration `json:"last_duration"`
	LastAttempt  time.Time     `json:"last_attempt"`
	LastTarget   string        `json:"last_target,omitempty"`
}

type Snapshot struct {
	Uptime     time.Duration           `json:"uptime"`
	Pings      map[PingKind]PingStats  `json:"pings"`
	URLChanges int64                   `json:"url_changes"`
	BotReports int64                   `json:"bot_reports"`
	Domains    map[string]DomainStatus `json:"domains,omitempty"`
}

// DomainStatus is the breaker view of one public URL as shown on /stats.
type DomainStatus struct {
	State               string     `json:"state"`
	ConsecutiveFailures int        `json:"consecutive_failures"`
	LastFailure         *time.Time `json:"last_failure,omitempty"`
}

func NewMetrics() *Metrics {
	return &Metrics{
		pings:     make(map[PingKind]*PingStats),
		startTime: time.Now(),
	}
}

func (m *Metrics) stats(kind PingKind) *PingStats {
	ps, ok := m.pings[kind]
	if !ok {
		ps = &PingStats{}
		m.pings[kind] = ps
	}
	return ps
}

// RecordPing counts one completed ping. A failed ping has no status code.
func (m *Metrics) RecordPing(kind PingKind, target string, at time.Time, duration time.Duration, statusCode int, failed bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	ps := m.stats(kind)
	ps.Attempts++
	ps.LastAttempt = at
	ps.LastDuration = duration
	ps.LastTarget = target
	ps.LastStatus = statusCode

	switch {
	case failed:
		ps.Failed++
	case statusCode == 200:
		ps.OK++
	default:
		ps.Non200++
	}
}

func (m *Metrics) IncrementURLChanges() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.urlChanges++
}

func (m *Metrics) IncrementBotReports() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.botReports++
}

func (m *Metrics) Snapshot() Snapshot {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	snap := Snapshot{
		Uptime:     time.Since(m.startTime),
		Pings:      make(map[PingKind]PingStats, len(m.pings)),
		URLChanges: m.urlChanges,
		BotReports: m.botReports,
	}
	for kind, ps := range m.pings {
		snap.Pings[kind] = *ps
	}

	return snap
}
