package scheduler

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/seogyeonga/auction-radar/internal/logger"
)

// Job represents a scheduled job
type Job interface {
	Run(ctx context.Context) error
	Name() string
}

// Scheduler manages background jobs
type Scheduler struct {
	cron *cron.Cron
	log  *zap.Logger
	ctx  context.Context
}

// New creates a scheduler whose jobs run with ctx. The cron schedule takes a
// leading seconds field.
func New(ctx context.Context, log *zap.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithSeconds()),
		log:  logger.Component(log, "scheduler"),
		ctx:  ctx,
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started")
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

// AddJob registers a job with a cron schedule, e.g.
//   - "0 0 6,18 * * *" - 06:00 and 18:00
//   - "@every 30m"
func (s *Scheduler) AddJob(schedule string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() {
		s.log.Debug("running job", zap.String("job", job.Name()))
		if err := job.Run(s.ctx); err != nil {
			s.log.Error("job failed", zap.String("job", job.Name()), zap.Error(err))
			return
		}
		s.log.Debug("job completed", zap.String("job", job.Name()))
	})
	if err != nil {
		return err
	}

	s.log.Info("job registered", zap.String("schedule", schedule), zap.String("job", job.Name()))
	return nil
}

// RunNow executes a job immediately, outside its schedule.
func (s *Scheduler) RunNow(job Job) error {
	s.log.Info("running job immediately", zap.String("job", job.Name()))
	return job.Run(s.ctx)
}
