package pinger

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/angeloszaimis/keepalive/internal/scheduler"
)

const (
	healthPath = "/health"
	userAgent  = "keepalive-pinger/1.0"
)

var errMissingOrigin = errors.New("origin needs a scheme and a host")

// URLSource yields the current public URL.
type URLSource interface {
	PublicURL() (string, bool)
}

// Scheduler is the subset of scheduler.Scheduler the pingers need.
type Scheduler interface {
	Every(interval time.Duration, name string, job scheduler.Job) (cron.EntryID, error)
	Cancel(id cron.EntryID)
}

// HealthURL appends /health to the given public URL, keeping any path it
// already has.
func HealthURL(origin string) (string, error) {
	base, err := url.Parse(origin)
	if err != nil {
		return "", err
	}
	if base.Scheme == "" || base.Host == "" {
		return "", &url.Error{Op: "parse", URL: origin, Err: errMissingOrigin}
	}

	return base.JoinPath(healthPath).String(), nil
}

// probe sends one request and discards the body. net/http picks the plain or
// TLS transport from the URL scheme.
func probe(ctx context.Context, client *http.Client, method, target string) (int, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return 0, 0, err
	}
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	res, err := client.Do(req)
	if err != nil {
		return 0, time.Since(start), err
	}
	defer res.Body.Close()

	_, _ = io.Copy(io.Discard, res.Body)

	return res.StatusCode, time.Since(start), nil
}
