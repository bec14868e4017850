// Package scheduler runs fixed-interval jobs on top of robfig/cron.
//
// Every job receives the scheduler's context, which is canceled by Stop so
// outbound requests in flight are abandoned rather than drained. Entries are
// identified by their cron.EntryID, which callers keep as a handle to cancel
// and replace a job.
package scheduler
