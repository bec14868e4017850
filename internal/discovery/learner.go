package discovery

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/angeloszaimis/keepalive/internal/metrics"
)

const (
	HeaderForwardedProto = "X-Forwarded-Proto"
	HeaderForwardedHost  = "X-Forwarded-Host"
)

// Store is where the learned URL lives.
type Store interface {
	SetPublicURL(url string) (changed bool)
}

// Learner updates the public URL from proxy headers and calls onChange
// whenever it moves. Hooks for concurrent requests may run in any order, so
// onChange reads the current URL from the store rather than being handed one.
type Learner struct {
	store     Store
	onChange  func()
	logger    *slog.Logger
	collector *metrics.Collector
}

func NewLearner(store Store, onChange func(), logger *slog.Logger, collector *metrics.Collector) *Learner {
	return &Learner{
		store:     store,
		onChange:  onChange,
		logger:    logger,
		collector: collector,
	}
}

// OriginFromRequest builds "<proto>://<host>" from X-Forwarded-Proto and
// X-Forwarded-Host, falling back to the Host header for the host part.
func OriginFromRequest(r *http.Request) (string, bool) {
	proto := r.Header.Get(HeaderForwardedProto)
	host := r.Header.Get(HeaderForwardedHost)
	if host == "" {
		host = r.Host
	}

	if proto == "" || host == "" {
		return "", false
	}

	return proto + "://" + host, true
}

// Observe inspects one request and reports whether it changed the public URL.
func (l *Learner) Observe(r *http.Request) bool {
	origin, ok := OriginFromRequest(r)
	if !ok {
		return false
	}

	if !l.store.SetPublicURL(origin) {
		return false
	}

	l.logger.Info("Learned public URL", slog.String("url", origin))
	l.collector.Emit(metrics.MetricEvent{Type: metrics.EventURLLearned, Target: origin})

	if l.onChange != nil {
		l.onChange()
	}

	return true
}

// Middleware runs Observe on every request before routing continues.
func (l *Learner) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		l.Observe(c.Request)
		c.Next()
	}
}
