package pinger

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/angeloszaimis/keepalive/internal/metrics"
)

// LocalPinger requests the service's own /health over loopback.
type LocalPinger struct {
	target    string
	client    *http.Client
	logger    *slog.Logger
	collector *metrics.Collector
}

func NewLocalPinger(port int, timeout time.Duration, logger *slog.Logger, collector *metrics.Collector) *LocalPinger {
	return &LocalPinger{
		target:    fmt.Sprintf("http://127.0.0.1:%d%s", port, healthPath),
		client:    &http.Client{Timeout: timeout},
		logger:    logger,
		collector: collector,
	}
}

// Target returns the loopback health URL.
func (p *LocalPinger) Target() string {
	return p.target
}

// Start schedules the pinger. It runs until the scheduler stops.
func (p *LocalPinger) Start(s Scheduler, interval time.Duration) (cron.EntryID, error) {
	id, err := s.Every(interval, "local-pinger", p.Ping)
	if err != nil {
		return 0, err
	}

	p.logger.Info("Local pinger started",
		slog.String("target", p.target),
		slog.Duration("interval", interval))

	return id, nil
}

// Ping sends one request and ignores the outcome beyond counting it.
func (p *LocalPinger) Ping(ctx context.Context) {
	p.logger.Debug("Local ping", slog.String("target", p.target))

	status, duration, err := probe(ctx, p.client, http.MethodGet, p.target)

	p.collector.Emit(metrics.MetricEvent{
		Type:       metrics.EventPingCompleted,
		Kind:       metrics.KindLocal,
		Target:     p.target,
		Duration:   duration,
		StatusCode: status,
		Failed:     err != nil,
	})

	if err != nil {
		p.logger.Debug("Local ping failed", slog.Any("err", err))
	}
}
