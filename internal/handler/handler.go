package handler

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/angeloszaimis/keepalive/internal/metrics"
	"github.com/angeloszaimis/keepalive/internal/state"
)

//go:embed templates/status.html
var templateFS embed.FS

var statusTemplate = template.Must(template.ParseFS(templateFS, "templates/status.html"))

const (
	pendingURL      = "Pending Detection..."
	refreshSeconds  = 10
	isoMillisLayout = "2006-01-02T15:04:05.000Z07:00"
)

type Handler struct {
	logger    *slog.Logger
	state     *state.State
	collector *metrics.Collector
}

func New(logger *slog.Logger, st *state.State, collector *metrics.Collector) *Handler {
	return &Handler{
		logger:    logger,
		state:     st,
		collector: collector,
	}
}

type healthResponse struct {
	OK       bool    `json:"ok"`
	Uptime   float64 `json:"uptime"`
	Detected *string `json:"detected"`
	Bot      bool    `json:"bot"`
	TS       string  `json:"ts"`
}

type whoamiResponse struct {
	DetectedURL *string            `json:"detected_url"`
	Headers     map[string]*string `json:"headers"`
}

type botStatusRequest struct {
	Healthy any `json:"healthy"`
}

type statusPage struct {
	Hours, Minutes, Seconds int64
	PublicURL               string
	BotHealthy              bool
	Refresh                 int
}

// Status renders the HTML status page.
func (h *Handler) Status(c *gin.Context) {
	hours, minutes, seconds := splitUptime(h.state.Uptime())

	publicURL, ok := h.state.PublicURL()
	if !ok {
		publicURL = pendingURL
	}

	c.HTML(http.StatusOK, "status.html", statusPage{
		Hours:      hours,
		Minutes:    minutes,
		Seconds:    seconds,
		PublicURL:  publicURL,
		BotHealthy: h.state.BotHealthy(),
		Refresh:    refreshSeconds,
	})
}

// Health is the liveness target of the pingers and of external monitors.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, healthResponse{
		OK:       true,
		Uptime:   h.state.Uptime().Seconds(),
		Detected: h.detected(),
		Bot:      h.state.BotHealthy(),
		TS:       time.Now().UTC().Format(isoMillisLayout),
	})
}

// WhoAmI echoes the proxy headers of the current request for debugging.
func (h *Handler) WhoAmI(c *gin.Context) {
	r := c.Request

	c.JSON(http.StatusOK, whoamiResponse{
		DetectedURL: h.detected(),
		Headers: map[string]*string{
			"x-forwarded-proto": headerValue(r, "X-Forwarded-Proto"),
			"x-forwarded-host":  headerValue(r, "X-Forwarded-Host"),
			"host":              nonEmpty(r.Host),
		},
	})
}

// BotStatus records a health report from the supervised bot. Only an explicit
// "healthy": false marks the bot unhealthy; anything else, including a
// missing or unparsable body, counts as healthy.
func (h *Handler) BotStatus(c *gin.Context) {
	healthy := true

	var req botStatusRequest
	if err := c.ShouldBindJSON(&req); err == nil {
		if v, ok := req.Healthy.(bool); ok && !v {
			healthy = false
		}
	}

	if h.state.SetBotHealthy(healthy) {
		h.logger.Info("Bot health changed", slog.Bool("healthy", healthy))
	}
	h.collector.Emit(metrics.MetricEvent{Type: metrics.EventBotReported, Healthy: healthy})

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) detected() *string {
	u, ok := h.state.PublicURL()
	if !ok {
		return nil
	}
	return &u
}

func headerValue(r *http.Request, name string) *string {
	if _, ok := r.Header[http.CanonicalHeaderKey(name)]; !ok {
		return nil
	}
	v := r.Header.Get(name)
	return &v
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func splitUptime(d time.Duration) (hours, minutes, seconds int64) {
	total := int64(d / time.Second)
	return total / 3600, (total % 3600) / 60, total % 60
}
