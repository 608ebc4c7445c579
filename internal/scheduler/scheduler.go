// Package scheduler runs background jobs on cron schedules in a fixed timezone.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"couple-backend/internal/config"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Scheduler runs registered jobs until its context is cancelled
type Scheduler struct {
	cron     *cron.Cron
	schedule string
	ctx      context.Context
}

// New creates a scheduler using the configured schedule and timezone
func New(cfg config.SchedulerConfig) (*Scheduler, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", cfg.Timezone, err)
	}

	logger := cronLogger{}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)

	return &Scheduler{
		cron:     c,
		schedule: cfg.Schedule,
		ctx:      context.Background(),
	}, nil
}

// Add registers job under name on the configured schedule
func (s *Scheduler) Add(name string, job func(ctx context.Context)) error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		start := time.Now()
		log.Info().Str("job", name).Msg("Scheduled job started")
		job(s.ctx)
		log.Info().
			Str("job", name).
			Dur("duration", time.Since(start)).
			Msg("Scheduled job finished")
	})
	if err != nil {
		return fmt.Errorf("failed to schedule %s with %q: %w", name, s.schedule, err)
	}
	return nil
}

// Next returns the next activation time, or the zero time if nothing is scheduled
func (s *Scheduler) Next() time.Time {
	var next time.Time
	for _, e := range s.cron.Entries() {
		if next.IsZero() || (!e.Next.IsZero() && e.Next.Before(next)) {
			next = e.Next
		}
	}
	return next
}

// Run starts the scheduler and blocks until ctx is done, then waits for
// running jobs to return.
func (s *Scheduler) Run(ctx context.Context) error {
	s.ctx = ctx
	s.cron.Start()
	log.Info().Time("next_run", s.Next()).Msg("Scheduler started")

	<-ctx.Done()

	log.Info().Msg("Stopping scheduler...")
	<-s.cron.Stop().Done()
	return nil
}

// cronLogger routes cron's own logging into zerolog
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
