package pinger

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/angeloszaimis/keepalive/internal/circuitbreaker"
	"github.com/angeloszaimis/keepalive/internal/metrics"
)

// ExternalPinger requests <public URL>/health through the hosting platform's
// proxy. It has at most one scheduled entry; Restart replaces it.
type ExternalPinger struct {
	mutex     sync.Mutex
	scheduler Scheduler
	urls      URLSource
	interval  time.Duration
	client    *http.Client
	breakers  *circuitbreaker.Registry
	logger    *slog.Logger
	collector *metrics.Collector

	entry     cron.EntryID
	scheduled bool
	origin    string
	target    string
}

func NewExternalPinger(
	s Scheduler,
	urls URLSource,
	interval time.Duration,
	timeout time.Duration,
	breakers *circuitbreaker.Registry,
	logger *slog.Logger,
	collector *metrics.Collector,
) *ExternalPinger {
	return &ExternalPinger{
		scheduler: s,
		urls:      urls,
		interval:  interval,
		client:    &http.Client{Timeout: timeout},
		breakers:  breakers,
		logger:    logger,
		collector: collector,
	}
}

// Restart points the schedule at the current public URL, cancelling the
// previous entry. The URL is read under the pinger's lock, so concurrent
// callers settle on the latest stored value whatever order they run in.
// Without a known URL the pinger stays as it is.
func (p *ExternalPinger) Restart() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	publicURL, ok := p.urls.PublicURL()
	if !ok {
		return
	}
	if p.scheduled && publicURL == p.origin {
		return
	}

	if p.scheduled {
		p.scheduler.Cancel(p.entry)
		p.scheduled = false
		p.origin, p.target = "", ""
	}

	target, err := HealthURL(publicURL)
	if err != nil {
		p.logger.Warn("External pinger not scheduled, unusable public URL",
			slog.String("url", publicURL),
			slog.Any("err", err))
		return
	}

	p.breakers.Retain(publicURL)

	id, err := p.scheduler.Every(p.interval, "external-pinger", func(ctx context.Context) {
		p.ping(ctx, publicURL, target)
	})
	if err != nil {
		p.logger.Error("External pinger not scheduled", slog.Any("err", err))
		return
	}

	p.entry = id
	p.scheduled = true
	p.origin = publicURL
	p.target = target

	p.logger.Info("External pinger scheduled",
		slog.String("target", target),
		slog.Duration("interval", p.interval))
}

// Target returns the URL the current schedule pings.
func (p *ExternalPinger) Target() (string, bool) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.target, p.scheduled
}

// Ping pings the current target once, if there is one.
func (p *ExternalPinger) Ping(ctx context.Context) {
	p.mutex.Lock()
	origin, target, ok := p.origin, p.target, p.scheduled
	p.mutex.Unlock()

	if !ok {
		return
	}
	p.ping(ctx, origin, target)
}

// ping always sends the request. The domain breaker only records the outcome.
func (p *ExternalPinger) ping(ctx context.Context, origin, target string) {
	p.logger.Info("External ping",
		slog.String("target", target),
		slog.String("at", time.Now().UTC().Format(time.RFC3339)))

	status, duration, err := probe(ctx, p.client, http.MethodGet, target)

	p.collector.Emit(metrics.MetricEvent{
		Type:       metrics.EventPingCompleted,
		Kind:       metrics.KindExternal,
		Target:     target,
		Duration:   duration,
		StatusCode: status,
		Failed:     err != nil,
	})

	cb := p.breakers.GetBreaker(origin)

	switch {
	case err != nil:
		cb.RecordFailure()
		p.logger.Error("External ping failed",
			slog.String("target", target),
			slog.Any("err", err))
	case status == http.StatusOK:
		cb.RecordSuccess()
		p.logger.Info("External ping OK",
			slog.String("target", target),
			slog.Duration("duration", duration))
	default:
		cb.RecordFailure()
		p.logger.Warn("External ping returned non-200 status",
			slog.String("target", target),
			slog.Int("status", status))
	}
}
