package main

import (
	"context"
	"log/slog"
	"net"
	"strconv"

	"github.com/angeloszaimis/keepalive/config"
	"github.com/angeloszaimis/keepalive/internal/circuitbreaker"
	"github.com/angeloszaimis/keepalive/internal/discovery"
	"github.com/angeloszaimis/keepalive/internal/handler"
	"github.com/angeloszaimis/keepalive/internal/httpserver"
	"github.com/angeloszaimis/keepalive/internal/metrics"
	"github.com/angeloszaimis/keepalive/internal/pinger"
	"github.com/angeloszaimis/keepalive/internal/scheduler"
	"github.com/angeloszaimis/keepalive/internal/state"
	"github.com/angeloszaimis/keepalive/pkg/logger"
)

const metricsBuffer = 256

type app struct {
	cfg       *config.Config
	log       *slog.Logger
	state     *state.State
	collector *metrics.Collector
	breakers  *circuitbreaker.Registry
	scheduler *scheduler.Scheduler
	external  *pinger.ExternalPinger
	verifier  *pinger.DomainVerifier
	local     *pinger.LocalPinger
	server    *httpserver.Server

	// closed once the listener is bound
	ready chan struct{}
}

func newApp(cfg *config.Config, log *slog.Logger) (*app, error) {
	st := state.New(cfg.InitialPublicURL())
	collector := metrics.NewCollector(metricsBuffer, logger.Component(log, "metrics"))
	breakers := circuitbreaker.NewRegistry(cfg.Breaker.FailureThreshold)
	sched := scheduler.New(context.Background(), logger.Component(log, "scheduler"))

	external := pinger.NewExternalPinger(sched, st, cfg.ExternalInterval(), cfg.RequestTimeout(),
		breakers, logger.Component(log, "external-pinger"), collector)
	verifier := pinger.NewDomainVerifier(st, cfg.VerifyTimeout(),
		breakers, logger.Component(log, "domain-verifier"), collector)

	learner := discovery.NewLearner(st, external.Restart, logger.Component(log, "discovery"), collector)
	h := handler.New(logger.Component(log, "handler"), st, collector)
	router := handler.NewRouter(logger.Component(log, "http"), h, learner, collector, domainStates(breakers))

	srv, err := httpserver.New(cfg.Address(), router)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:       cfg,
		log:       log,
		state:     st,
		collector: collector,
		breakers:  breakers,
		scheduler: sched,
		external:  external,
		verifier:  verifier,
		server:    srv,
		ready:     make(chan struct{}),
	}, nil
}

// run serves until ctx is canceled or the listener fails.
func (a *app) run(ctx context.Context) error {
	collectorCtx, stopCollector := context.WithCancel(context.Background())
	a.collector.Start(collectorCtx)
	defer func() {
		stopCollector()
		a.collector.Wait()
	}()

	if err := a.server.Listen(); err != nil {
		return err
	}
	close(a.ready)

	port, err := boundPort(a.server.Addr())
	if err != nil {
		return err
	}

	a.local = pinger.NewLocalPinger(port, a.cfg.RequestTimeout(), logger.Component(a.log, "local-pinger"), a.collector)
	if _, err := a.local.Start(a.scheduler, a.cfg.LocalInterval()); err != nil {
		return err
	}
	if _, err := a.verifier.Start(a.scheduler, a.cfg.VerifyInterval()); err != nil {
		return err
	}

	initial, known := a.state.PublicURL()
	if !known {
		initial = "none"
	}
	a.log.Info("Server running", slog.String("addr", a.server.Addr()))
	a.log.Info("Initial public URL", slog.String("url", initial))

	if known {
		a.external.Restart()
	}
	a.scheduler.Start()

	srvErrCh := make(chan error, 1)
	go func() {
		srvErrCh <- a.server.Start()
	}()

	select {
	case <-ctx.Done():
		a.log.Info("Shutting down gracefully...")
		a.scheduler.Stop()
		if err := a.server.Shutdown(context.Background()); err != nil {
			a.log.Error("Error during shutdown", slog.Any("err", err))
		}
		return nil
	case err := <-srvErrCh:
		a.scheduler.Stop()
		return err
	}
}

func boundPort(addr string) (int, error) {
	_, p, err := net.SplitHostPort(addr)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(p)
}

func domainStates(breakers *circuitbreaker.Registry) func() map[string]metrics.DomainStatus {
	return func() map[string]metrics.DomainStatus {
		stats := breakers.Stats()
		out := make(map[string]metrics.DomainStatus, len(stats))
		for u, s := range stats {
			ds := metrics.DomainStatus{
				State:               s.State.String(),
				ConsecutiveFailures: s.Failures,
			}
			if !s.LastFailure.IsZero() {
				last := s.LastFailure
				ds.LastFailure = &last
			}
			out[u] = ds
		}
		return out
	}
}
