// Package state holds the small amount of mutable data the service shares
// between request handlers and scheduled pingers: the learned public URL,
// the last reported bot health and the process start time.
package state
