package metrics

import (
	"context"
	"log/slog"
	"time"
)

type EventType string

const (
	EventPingCompleted EventType = "ping_completed"
	EventURLLearned    EventType = "url_learned"
	EventBotReported   EventType = "bot_reported"
)

type MetricEvent struct {
	Type       EventType
	Timestamp  time.Time
	Kind       PingKind
	Target     string
	Duration   time.Duration
	StatusCode int
	Failed     bool
	Healthy    bool
}

type Collector struct {
	eventCh chan MetricEvent
	done    chan struct{}
	metrics *Metrics
	prom    *promCollectors
	logger  *slog.Logger
}

func NewCollector(bufferSize int, logger *slog.Logger) *Collector {
	return &Collector{
		eventCh: make(chan MetricEvent, bufferSize),
		done:    make(chan struct{}),
		metrics: NewMetrics(),
		prom:    newPromCollectors(),
		logger:  logger,
	}
}

// Emit queues an event without blocking. Events are dropped when the buffer
// is full. Safe to call on a nil Collector.
func (c *Collector) Emit(event MetricEvent) {
	if c == nil {
		return
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case c.eventCh <- event:
	default:
		c.logger.Debug("Metrics buffer full, dropping event", slog.String("type", string(event.Type)))
	}
}

func (c *Collector) Start(ctx context.Context) {
	go c.run(ctx)
}

// Wait blocks until the collector has drained and stopped.
func (c *Collector) Wait() {
	<-c.done
}

func (c *Collector) run(ctx context.Context) {
	c.logger.Info("Metrics collector started")
	defer c.logger.Info("Metrics collector stopped")
	defer close(c.done)

	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		case <-ctx.Done():
			c.drain()
			return
		}
	}
}

func (c *Collector) processEvent(event MetricEvent) {
	switch event.Type {
	case EventPingCompleted:
		c.metrics.RecordPing(event.Kind, event.Target, event.Timestamp, event.Duration, event.StatusCode, event.Failed)

	case EventURLLearned:
		c.metrics.IncrementURLChanges()

	case EventBotReported:
		c.metrics.IncrementBotReports()
	}

	c.prom.observe(event)
}

func (c *Collector) drain() {
	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		default:
			return
		}
	}
}

func (c *Collector) Snapshot() Snapshot {
	return c.metrics.Snapshot()
}
