package collector

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/playok/astermon/internal/model"
)

// BroadcastFunc is called with each rendered frame for real-time streaming.
type BroadcastFunc func(frame model.Frame)

// Recorder persists the numeric samples of a frame.
type Recorder interface {
	InsertSamples(samples []model.MetricSample) error
}

// Scheduler runs one poller at a fixed interval. Polls run on a single
// goroutine, so a slow poll delays the next tick instead of overlapping it.
type Scheduler struct {
	poller    Poller
	interval  time.Duration
	broadcast BroadcastFunc
	recorder  Recorder
	mu        sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewScheduler creates a new scheduler. Intervals below one second are
// raised to one second.
func NewScheduler(poller Poller, interval time.Duration) *Scheduler {
	if interval < time.Second {
		interval = time.Second
	}
	return &Scheduler{
		poller:   poller,
		interval: interval,
	}
}

// SetBroadcast sets the function called with each frame.
func (s *Scheduler) SetBroadcast(fn BroadcastFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.broadcast = fn
}

// SetRecorder enables sample history.
func (s *Scheduler) SetRecorder(r Recorder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recorder = r
}

// Start begins the poll loop.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.mu.Lock()
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	go func() {
		defer close(done)
		s.loop(ctx)
	}()
}

// Stop halts the scheduler and waits for an in-flight poll to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (s *Scheduler) loop(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Printf("[scheduler] %s: polling every %v", s.poller.Name(), s.interval)

	// Run once immediately
	s.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	frame := s.poller.Poll(ctx)
	if ctx.Err() != nil {
		return
	}

	s.mu.Lock()
	fn := s.broadcast
	rec := s.recorder
	s.mu.Unlock()

	if rec != nil && len(frame.Samples) > 0 {
		if err := rec.InsertSamples(frame.Samples); err != nil {
			log.Printf("[scheduler] %s: store error: %v", s.poller.Name(), err)
		}
	}
	if fn != nil {
		fn(frame)
	}
}
