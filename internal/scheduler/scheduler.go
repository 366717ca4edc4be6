// Package scheduler runs recurring background tasks on cron expressions in UTC.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/edupreneurx/submissions-api/internal/dto"
)

const defaultRunTimeout = 2 * time.Minute

type digestRunner interface {
	Run(ctx context.Context) (*dto.DigestRunResponse, error)
}

type pendingRecoverer interface {
	RecoverPending(ctx context.Context) int
}

// Scheduler wraps a cron instance. Overlapping runs of one entry are skipped.
type Scheduler struct {
	cron    *cron.Cron
	logger  *zap.Logger
	timeout time.Duration
}

// New builds a scheduler. timeout bounds every run; zero uses two minutes.
func New(logger *zap.Logger, timeout time.Duration) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = defaultRunTimeout
	}
	cl := cronLogger{sugar: logger.Sugar()}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger:  logger,
		timeout: timeout,
	}
}

// ScheduleDigest registers the daily digest on spec, e.g. "0 9 * * *".
func (s *Scheduler) ScheduleDigest(spec string, runner digestRunner) error {
	if _, err := s.cron.AddFunc(spec, s.digestJob(runner)); err != nil {
		return fmt.Errorf("schedule digest %q: %w", spec, err)
	}
	s.logger.Info("digest scheduled", zap.String("schedule", spec))
	return nil
}

// ScheduleRecovery re-queues pending outbox rows on spec, e.g. "@every 1m".
func (s *Scheduler) ScheduleRecovery(spec string, recoverer pendingRecoverer) error {
	if _, err := s.cron.AddFunc(spec, s.recoveryJob(recoverer)); err != nil {
		return fmt.Errorf("schedule notification recovery %q: %w", spec, err)
	}
	s.logger.Info("notification recovery scheduled", zap.String("schedule", spec))
	return nil
}

// Entries reports how many jobs are registered.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

// Start runs the cron loop in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for running jobs up to ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("scheduler stop timed out")
	}
}

func (s *Scheduler) digestJob(runner digestRunner) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		start := time.Now()
		res, err := runner.Run(ctx)
		if err != nil {
			s.logger.Error("digest run failed", zap.Error(err), zap.Duration("took", time.Since(start)))
			return
		}
		s.logger.Info("digest run finished",
			zap.Int("pending", res.Pending),
			zap.Bool("queued", res.Queued),
			zap.Duration("took", time.Since(start)),
		)
	}
}

func (s *Scheduler) recoveryJob(recoverer pendingRecoverer) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		if n := recoverer.RecoverPending(ctx); n > 0 {
			s.logger.Debug("pending notifications requeued", zap.Int("count", n))
		}
	}
}

type cronLogger struct {
	sugar *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw("cron: "+msg, append(keysAndValues, "error", err)...)
}
