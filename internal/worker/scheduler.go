package worker

import (
	"context"

	"github.com/robfig/cron/v3"

	"pppoed/internal/log"
)

// Scheduler runs periodic background tasks on cron schedules. The
// router sync and the notification sweep register here when the
// corresponding schedule is configured.
type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler creates a stopped scheduler
func NewScheduler() *Scheduler {
	return &Scheduler{
		cron: cron.New(),
	}
}

// Add registers a named task with a cron spec
func (s *Scheduler) Add(name, spec string, task func(context.Context) error) error {
	_, err := s.cron.AddFunc(spec, func() {
		if err := task(context.Background()); err != nil {
			log.Warn("scheduled task failed", "task", name, "error", err)
		}
	})
	if err != nil {
		return err
	}
	log.Info("scheduled task registered", "task", name, "spec", spec)
	return nil
}

// Start begins running registered tasks
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the scheduler and waits for running tasks
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
