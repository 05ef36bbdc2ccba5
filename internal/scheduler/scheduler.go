// Package scheduler runs the screening pipeline on a cron schedule
// (after US market close on trading days, by default).
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/wonny/screener/pkg/logger"
)

// Job is a named unit of scheduled work
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Scheduler wraps robfig/cron with logging and panic isolation
// ⭐ SSOT: 정기 실행 스케줄은 여기서만
type Scheduler struct {
	cron *cron.Cron
	log  *logger.Logger
}

// New creates a Scheduler. Specs use the 6-field form with seconds
// (e.g. "0 30 22 * * 1-5" = 22:30 on weekdays).
func New(log *logger.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithSeconds()),
		log:  log,
	}
}

// Register adds a job under the given cron spec
func (s *Scheduler) Register(spec string, job Job) error {
	_, err := s.cron.AddFunc(spec, func() {
		log := s.log.WithField("job", job.Name())

		defer func() {
			if r := recover(); r != nil {
				log.WithField("panic", r).Error("scheduled job panicked")
			}
		}()

		started := time.Now()
		log.Info("scheduled job started")
		if err := job.Run(context.Background()); err != nil {
			log.WithError(err).Error("scheduled job failed")
			return
		}
		log.WithField("duration", time.Since(started)).Info("scheduled job finished")
	})
	if err != nil {
		return err
	}

	s.log.WithFields(map[string]interface{}{
		"job":  job.Name(),
		"spec": spec,
	}).Info("job registered")
	return nil
}

// Start begins scheduling in the background
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops scheduling and waits for running jobs
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
