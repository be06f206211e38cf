// Package scheduler re-runs the diagnostics pipeline on a cron schedule.
package scheduler

import (
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Scheduler triggers periodic analysis runs.
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger
}

// New creates a scheduler.
func New(log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(),
		log:  log.With().Str("component", "scheduler").Logger(),
	}
}

// AddRun registers an analysis run under a cron schedule.
// Schedule examples:
//   - "0 18 * * MON-FRI"  - 6 PM on weekdays (after market close)
//   - "@daily"            - Every midnight
func (s *Scheduler) AddRun(schedule string, run func() error) error {
	_, err := s.cron.AddFunc(schedule, func() {
		s.log.Info().Str("schedule", schedule).Msg("Starting scheduled analysis run")
		if err := run(); err != nil {
			s.log.Error().Err(err).Msg("Scheduled analysis run failed")
			return
		}
		s.log.Info().Msg("Scheduled analysis run completed")
	})
	return err
}

// Start starts the scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Msg("Scheduler started")
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("Scheduler stopped")
}
