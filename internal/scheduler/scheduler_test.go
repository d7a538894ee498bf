package scheduler

import (
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeJob struct {
	name    string
	mu      sync.Mutex
	running bool
	started chan struct{}
	release chan struct{}
	runs    int
	err     error
}

func newFakeJob(name string) *fakeJob {
	return &fakeJob{name: name, started: make(chan struct{}, 4), release: make(chan struct{})}
}

func (f *fakeJob) Name() string { return f.name }

func (f *fakeJob) Run() error {
	f.mu.Lock()
	f.running = true
	f.runs++
	f.mu.Unlock()
	f.started <- struct{}{}
	<-f.release
	f.mu.Lock()
	f.running = false
	f.mu.Unlock()
	return f.err
}

func (f *fakeJob) runCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.runs
}

func TestRunGuardedDropsOverlappingTick(t *testing.T) {
	s := New(zerolog.Nop())
	job := newFakeJob("overlap-job")
	s.mu.Lock()
	s.state = StateIdle
	s.mu.Unlock()

	go s.runGuarded(job)
	<-job.started // first run is now blocked inside Run()

	// A second tick while the first is still executing must be dropped,
	// not queued, per the non-overlap guard.
	s.runGuarded(job)
	assert.Equal(t, 1, job.runCount(), "expected the overlapping tick to be dropped")

	close(job.release)
	// allow the first run to finish and transition back to idle.
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, StateIdle, s.Status())
}

func TestRunGuardedTransitionsIdleRunningIdle(t *testing.T) {
	s := New(zerolog.Nop())
	job := newFakeJob("lifecycle-job")
	s.mu.Lock()
	s.state = StateIdle
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.runGuarded(job)
		close(done)
	}()

	<-job.started
	assert.Equal(t, StateRunning, s.Status())

	close(job.release)
	<-done
	assert.Equal(t, StateIdle, s.Status())
}

func TestRunGuardedStaysStoppedAfterStop(t *testing.T) {
	s := New(zerolog.Nop())
	job := newFakeJob("stopped-job")

	s.mu.Lock()
	s.state = StateStopped
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.runGuarded(job)
		close(done)
	}()

	<-job.started
	close(job.release)
	<-done

	assert.Equal(t, StateStopped, s.Status(), "a stopped scheduler must not flip back to idle after a run completes")
}

func TestRunNowRejectsWhileAlreadyRunning(t *testing.T) {
	s := New(zerolog.Nop())
	job := newFakeJob("run-now-job")

	go s.runGuarded(job)
	<-job.started

	err := s.RunNow(job)
	require.Error(t, err, "expected RunNow to reject a trigger while the job is already running")

	close(job.release)
}

func TestNextRunReturnsZeroForUnregisteredJob(t *testing.T) {
	s := New(zerolog.Nop())
	assert.True(t, s.NextRun("never-added").IsZero())
}

func TestNextRunReflectsRegisteredSchedule(t *testing.T) {
	s := New(zerolog.Nop())
	job := newFakeJob("cron-job")
	require.NoError(t, s.AddJob("@every 1m", job))
	s.Start()
	defer s.Stop()

	next := s.NextRun(job.Name())
	assert.False(t, next.IsZero(), "expected a concrete next-run time once the cron loop has started")
}
