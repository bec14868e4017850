// Package metrics records what the pingers and the URL learner did.
//
// Components emit MetricEvents on a buffered channel without blocking; a
// single collector goroutine folds them into per-kind ping counters and into
// Prometheus collectors. Remaining events are drained when the collector's
// context is canceled.
//
//	collector := metrics.NewCollector(256, logger)
//	collector.Start(ctx)
//
//	collector.Emit(metrics.MetricEvent{
//		Type:       metrics.EventPingCompleted,
//		Kind:       metrics.KindExternal,
//		Target:     "https://bot.koyeb.app/health",
//		StatusCode: 200,
//		Duration:   120 * time.Millisecond,
//	})
//
//	snapshot := collector.Snapshot()
//
// Snapshot backs the /stats JSON endpoint and PrometheusHandler serves /metrics.
package metrics
