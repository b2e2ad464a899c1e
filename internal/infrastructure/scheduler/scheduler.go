package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is one periodic task. It gets a context bounded by Timeout.
type Job struct {
	Name    string
	Spec    string
	Timeout time.Duration
	Run     func(ctx context.Context) error
}

type Scheduler struct {
	c   *cron.Cron
	log *zap.Logger
}

func New(log *zap.Logger) *Scheduler {
	return &Scheduler{c: cron.New(), log: log}
}

// Add registers j. The spec is a standard five-field cron expression.
func (s *Scheduler) Add(j Job) error {
	_, err := s.c.AddFunc(j.Spec, func() { s.run(j) })
	if err != nil {
		return err
	}
	s.log.Info("job scheduled", zap.String("job", j.Name), zap.String("spec", j.Spec))
	return nil
}

func (s *Scheduler) run(j Job) {
	timeout := j.Timeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	start := time.Now()
	if err := j.Run(ctx); err != nil {
		s.log.Error("job failed", zap.String("job", j.Name), zap.Error(err))
		return
	}
	s.log.Info("job done", zap.String("job", j.Name), zap.Duration("took", time.Since(start)))
}

func (s *Scheduler) Start() { s.c.Start() }

// Stop waits for running jobs to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.c.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}
