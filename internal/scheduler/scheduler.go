// Package scheduler periodically processes due scheduled transactions.
// It is off unless enabled in configuration; without it schedules are only
// processed on request.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Processor is the operation run on every tick.
type Processor interface {
	ProcessDue(ctx context.Context) (int, error)
}

type Scheduler struct {
	cron    *cron.Cron
	proc    Processor
	log     zerolog.Logger
	timeout time.Duration

	mu      sync.Mutex
	running bool
}

// New registers proc under the cron spec (standard five fields or
// descriptors such as "@every 1h") in the named time zone.
func New(spec, timeZone string, proc Processor, log zerolog.Logger) (*Scheduler, error) {
	loc := time.UTC
	if timeZone != "" {
		l, err := time.LoadLocation(timeZone)
		if err != nil {
			return nil, fmt.Errorf("loading time zone %q: %w", timeZone, err)
		}
		loc = l
	}
	s := &Scheduler{
		cron:    cron.New(cron.WithLocation(loc)),
		proc:    proc,
		log:     log,
		timeout: 5 * time.Minute,
	}
	if _, err := s.cron.AddFunc(spec, s.Tick); err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return s, nil
}

// Tick runs one sweep. Overlapping sweeps are skipped.
func (s *Scheduler) Tick() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.log.Warn().Msg("Previous scheduled-transaction sweep still running, skipping")
		return
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	n, err := s.proc.ProcessDue(ctx)
	if err != nil {
		s.log.Error().Err(err).Int("processed", n).Msg("Scheduled-transaction sweep failed")
		return
	}
	s.log.Info().Int("processed", n).Dur("duration", time.Since(start)).Msg("Scheduled-transaction sweep finished")
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Msg("Scheduled-transaction sweep started")
}

// Stop halts the cron and waits for a running sweep to end or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}
