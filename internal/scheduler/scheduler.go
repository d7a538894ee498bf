// Package scheduler drives the cadence-based jobs shared by the
// Ingestion Service (periodic scrape, reconciliation pass) and the
// processor loops of the Extraction and Scoring Services
// (start_processor/stop_processor).
package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job is the pluggable unit of scheduled work.
type Job interface {
	Name() string
	Run() error
}

// State is the scheduler's lifecycle state, shared by the ingestion scheduler and
// the extraction and scoring services' processor loops.
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StateStopped State = "stopped"
)

// Scheduler wraps a robfig/cron instance, enforcing single-instance
// execution per cadence: if a job is still running when the next tick
// fires, the tick is dropped and logged.
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger

	mu      sync.Mutex
	state   State
	started bool
	entries map[string]cron.EntryID
}

// New constructs a Scheduler.
func New(log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		log:     log.With().Str("component", "scheduler").Logger(),
		state:   StateStopped,
		entries: make(map[string]cron.EntryID),
	}
}

// AddJob registers job under the given cron schedule, wrapping it so
// overlapping ticks are dropped rather than queued.
func (s *Scheduler) AddJob(schedule string, job Job) error {
	id, err := s.cron.AddFunc(schedule, func() {
		s.runGuarded(job)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule job %s on %q: %w", job.Name(), schedule, err)
	}
	s.mu.Lock()
	s.entries[job.Name()] = id
	s.mu.Unlock()
	return nil
}

// NextRun reports the next scheduled fire time for the named job (the
// scheduler status endpoint's next_run field), or the zero time if the job was
// never registered or the cron loop hasn't started yet.
func (s *Scheduler) NextRun(jobName string) time.Time {
	s.mu.Lock()
	id, ok := s.entries[jobName]
	s.mu.Unlock()
	if !ok {
		return time.Time{}
	}
	return s.cron.Entry(id).Next
}

// RunNow executes job immediately, respecting the same non-overlap guard
// as a cadence tick.
func (s *Scheduler) RunNow(job Job) error {
	s.mu.Lock()
	if s.state == StateRunning {
		s.mu.Unlock()
		return fmt.Errorf("job %s already running", job.Name())
	}
	s.mu.Unlock()
	s.runGuarded(job)
	return nil
}

func (s *Scheduler) runGuarded(job Job) {
	s.mu.Lock()
	if s.state == StateRunning {
		s.log.Warn().Str("job", job.Name()).Msg("previous run still in progress, dropping this tick")
		s.mu.Unlock()
		return
	}
	prev := s.state
	s.state = StateRunning
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if s.state == StateRunning {
			if prev == StateStopped {
				s.state = StateStopped
			} else {
				s.state = StateIdle
			}
		}
		s.mu.Unlock()
	}()

	if err := job.Run(); err != nil {
		s.log.Error().Err(err).Str("job", job.Name()).Msg("scheduled job failed")
	}
}

// Start begins the cron loop, transitioning from stopped to idle.
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.state = StateIdle
	s.mu.Unlock()

	s.cron.Start()
	s.log.Info().Msg("scheduler started")
}

// Stop halts the cron loop and prevents future ticks until Start is
// called again.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	s.state = StateStopped
	s.mu.Unlock()

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("scheduler stopped")
}

// Status reports the current lifecycle state for introspection endpoints.
func (s *Scheduler) Status() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsRunning reports whether a job is currently executing.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateRunning
}
