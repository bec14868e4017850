// Package pinger keeps the process looking busy to a hosting platform that
// suspends idle services.
//
// Three independent jobs share one scheduler:
//
//   - LocalPinger hits the loopback /health endpoint so the process's own
//     network stack never idles.
//   - ExternalPinger hits <public URL>/health through the platform's proxy.
//     It is rescheduled every time a new public URL is learned.
//   - DomainVerifier sends a HEAD to the same endpoint on a slower cadence to
//     confirm the learned URL still routes back here.
//
// Failures are logged and counted; the next tick is the only retry.
package pinger
