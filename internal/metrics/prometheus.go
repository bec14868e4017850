package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "keepalive"

type promCollectors struct {
	registry     *prometheus.Registry
	pingsTotal   *prometheus.CounterVec
	pingDuration *prometheus.HistogramVec
	urlChanges   prometheus.Counter
	botReports   *prometheus.CounterVec
	botHealthy   prometheus.Gauge
}

func newPromCollectors() *promCollectors {
	p := &promCollectors{
		registry: prometheus.NewRegistry(),
		pingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pings_total",
			Help:      "Self pings by pinger kind and result.",
		}, []string{"kind", "result"}),
		pingDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ping_duration_seconds",
			Help:      "Round trip time of self pings.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		urlChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "public_url_changes_total",
			Help:      "Times a new public URL was learned from proxy headers.",
		}),
		botReports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bot_reports_total",
			Help:      "Bot status reports received.",
		}, []string{"healthy"}),
		botHealthy: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "bot_healthy",
			Help:      "1 if the last bot status report was healthy.",
		}),
	}

	p.registry.MustRegister(p.pingsTotal, p.pingDuration, p.urlChanges, p.botReports, p.botHealthy)
	return p
}

func (p *promCollectors) observe(event MetricEvent) {
	switch event.Type {
	case EventPingCompleted:
		p.pingsTotal.WithLabelValues(string(event.Kind), result(event)).Inc()
		p.pingDuration.WithLabelValues(string(event.Kind)).Observe(event.Duration.Seconds())

	case EventURLLearned:
		p.urlChanges.Inc()

	case EventBotReported:
		p.botReports.WithLabelValues(strconv.FormatBool(event.Healthy)).Inc()
		if event.Healthy {
			p.botHealthy.Set(1)
		} else {
			p.botHealthy.Set(0)
		}
	}
}

func result(event MetricEvent) string {
	switch {
	case event.Failed:
		return "error"
	case event.StatusCode == http.StatusOK:
		return "ok"
	default:
		return "non_200"
	}
}

// PrometheusHandler serves the collector's registry in the exposition format.
func (c *Collector) PrometheusHandler() http.Handler {
	return promhttp.HandlerFor(c.prom.registry, promhttp.HandlerOpts{})
}
