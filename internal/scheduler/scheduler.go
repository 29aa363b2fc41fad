package scheduler

import (
	"context"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/go-co-op/gocron/v2"
)

type jobFunc func(ctx context.Context) error

type Scheduler struct {
	scheduler gocron.Scheduler
}

func New() *Scheduler {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		panic(err)
	}
	return &Scheduler{scheduler: scheduler}
}

func (s *Scheduler) Start() {
	s.scheduler.Start()
	slog.Info("scheduler started")
}

func (s *Scheduler) Stop() {
	if err := s.scheduler.Shutdown(); err != nil {
		slog.Error("scheduler shutdown failed", slog.String("err", err.Error()))
		return
	}
	slog.Info("scheduler stopped")
}

// NewIntervalJob registers a singleton interval job. A run that is still going
// when the next tick fires gets rescheduled instead of stacking.
func (s *Scheduler) NewIntervalJob(name string, fn jobFunc, interval time.Duration, startImmediately bool) {
	opts := []gocron.JobOption{
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	}
	if startImmediately {
		opts = append(opts, gocron.WithStartAt(gocron.WithStartImmediately()))
	}

	if _, err := s.scheduler.NewJob(gocron.DurationJob(interval), gocron.NewTask(s.runJob(name, fn)), opts...); err != nil {
		slog.Error("failed to register job", slog.String("job", name), slog.String("err", err.Error()))
		panic(err)
	}

	slog.Info("job registered", slog.String("job", name), slog.Duration("interval", interval))
}

func (s *Scheduler) runJob(name string, fn jobFunc) func(ctx context.Context) {
	return func(ctx context.Context) {
		defer func() {
			if r := recover(); r != nil {
				slog.Error(
					"job panicked",
					slog.String("job", name),
					slog.Any("panic", r),
					slog.String("stacktrace", string(debug.Stack())),
				)
			}
		}()

		started := time.Now()
		slog.Info("job run start", slog.String("job", name))

		if err := fn(ctx); err != nil {
			slog.Error("job run failed", slog.String("job", name), slog.String("err", err.Error()), slog.Duration("took", time.Since(started)))
			return
		}

		slog.Info("job run completed", slog.String("job", name), slog.Duration("took", time.Since(started)))
	}
}
