package application

import (
	"context"
	"errors"
	"log"

	"github.com/robfig/cron/v3"
)

// Scheduler triggers sweep runs on a cron schedule.
type Scheduler struct {
	sweeper *Sweeper
	spec    string
	logger  *log.Logger
	cron    *cron.Cron
}

// NewScheduler constructs a Scheduler.
func NewScheduler(sweeper *Sweeper, spec string, logger *log.Logger) (*Scheduler, error) {
	if sweeper == nil {
		return nil, errors.New("sweep scheduler: nil sweeper")
	}
	if spec == "" {
		return nil, errors.New("sweep scheduler: empty cron spec")
	}
	return &Scheduler{sweeper: sweeper, spec: spec, logger: logger}, nil
}

// Start registers the cron entry and begins the scheduler. The returned
// error surfaces an invalid cron spec before anything runs.
func (s *Scheduler) Start(ctx context.Context) error {
	s.cron = cron.New()
	_, err := s.cron.AddFunc(s.spec, func() {
		results := s.sweeper.RunAll(ctx)
		if s.logger != nil {
			for _, result := range results {
				s.logger.Printf("sweep run: tenant=%s scanned=%d overdue=%d defaulted=%d",
					result.TenantID, result.Scanned, result.Overdue, result.Defaulted)
			}
		}
	})
	if err != nil {
		return err
	}
	s.cron.Start()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

// Stop halts the scheduler, waiting for a running job to finish.
func (s *Scheduler) Stop() {
	if s == nil || s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}
