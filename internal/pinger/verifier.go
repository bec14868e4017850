package pinger

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/angeloszaimis/keepalive/internal/circuitbreaker"
	"github.com/angeloszaimis/keepalive/internal/metrics"
)

// DomainVerifier checks that the learned public URL still routes back to
// this process, using HEAD with a short timeout.
type DomainVerifier struct {
	urls      URLSource
	timeout   time.Duration
	client    *http.Client
	breakers  *circuitbreaker.Registry
	logger    *slog.Logger
	collector *metrics.Collector
}

func NewDomainVerifier(
	urls URLSource,
	timeout time.Duration,
	breakers *circuitbreaker.Registry,
	logger *slog.Logger,
	collector *metrics.Collector,
) *DomainVerifier {
	return &DomainVerifier{
		urls:      urls,
		timeout:   timeout,
		client:    &http.Client{},
		breakers:  breakers,
		logger:    logger,
		collector: collector,
	}
}

func (v *DomainVerifier) Start(s Scheduler, interval time.Duration) (cron.EntryID, error) {
	id, err := s.Every(interval, "domain-verifier", v.Verify)
	if err != nil {
		return 0, err
	}

	v.logger.Info("Domain verifier started", slog.Duration("interval", interval))
	return id, nil
}

// Verify runs one check. Nothing happens while no public URL is known.
func (v *DomainVerifier) Verify(ctx context.Context) {
	publicURL, ok := v.urls.PublicURL()
	if !ok {
		return
	}

	target, err := HealthURL(publicURL)
	if err != nil {
		v.logger.Warn("Domain check skipped, unusable public URL",
			slog.String("url", publicURL),
			slog.Any("err", err))
		return
	}

	checkCtx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	status, duration, err := probe(checkCtx, v.client, http.MethodHead, target)

	v.collector.Emit(metrics.MetricEvent{
		Type:       metrics.EventPingCompleted,
		Kind:       metrics.KindVerify,
		Target:     target,
		Duration:   duration,
		StatusCode: status,
		Failed:     err != nil,
	})

	cb := v.breakers.GetBreaker(publicURL)

	switch {
	case err != nil:
		cb.RecordFailure()
		v.logger.Error("Domain check failed, waiting for a new forwarded header",
			slog.String("url", publicURL),
			slog.Any("err", err))
	case status == http.StatusOK:
		cb.RecordSuccess()
		v.logger.Info("Domain verified", slog.String("url", publicURL))
	default:
		cb.RecordFailure()
		v.logger.Warn("Domain check returned non-200 status",
			slog.String("url", publicURL),
			slog.Int("status", status))
	}
}
