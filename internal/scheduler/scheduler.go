package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// ErrIntervalTooShort is returned for intervals cron cannot express.
var ErrIntervalTooShort = errors.New("scheduler: interval must be at least one second")

// Job is the unit of work run on every tick.
type Job func(ctx context.Context)

type Scheduler struct {
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
	logger *slog.Logger
}

// New creates a stopped scheduler whose jobs run with a context derived from ctx.
func New(ctx context.Context, logger *slog.Logger) *Scheduler {
	jobCtx, cancel := context.WithCancel(ctx)
	cl := cronLogger{logger: logger}

	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl)),
		),
		ctx:    jobCtx,
		cancel: cancel,
		logger: logger,
	}
}

// Every schedules job to run once per interval, starting one interval from now.
func (s *Scheduler) Every(interval time.Duration, name string, job Job) (cron.EntryID, error) {
	if interval < time.Second {
		return 0, ErrIntervalTooShort
	}

	id := s.cron.Schedule(cron.Every(interval), cron.FuncJob(func() {
		job(s.ctx)
	}))

	s.logger.Debug("Job scheduled",
		slog.String("job", name),
		slog.Duration("interval", interval),
		slog.Int("entry", int(id)))

	return id, nil
}

// Cancel removes a scheduled entry. Unknown ids are ignored.
func (s *Scheduler) Cancel(id cron.EntryID) {
	s.cron.Remove(id)
}

// Len returns the number of scheduled entries.
func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("Scheduler started", slog.Int("jobs", s.Len()))
}

// Stop halts scheduling and cancels the context handed to running jobs.
// It does not wait for them to return.
func (s *Scheduler) Stop() {
	s.cancel()
	s.cron.Stop()
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append([]interface{}{slog.Any("err", err)}, keysAndValues...)...)
}
