package canvas

import (
	"context"
	"sync"
	"time"
)

// Scheduler coalesces draw requests onto a fixed refresh cadence, the way a
// browser's animation-frame callback does: many requests within one tick
// produce at most one draw, of the latest index, and an index equal to the
// last one drawn is not drawn again.
type Scheduler struct {
	interval time.Duration
	draw     func(index int)

	mu      sync.Mutex
	pending int
	drawn   int
}

// NewScheduler creates a scheduler that calls draw at most rate times per
// second. A non-positive rate means 60.
func NewScheduler(rate int, draw func(index int)) *Scheduler {
	if rate <= 0 {
		rate = 60
	}
	return &Scheduler{
		interval: time.Second / time.Duration(rate),
		draw:     draw,
	}
}

// Request asks for index to be drawn on the next tick. Later requests replace
// earlier ones.
func (s *Scheduler) Request(index int) {
	s.mu.Lock()
	s.pending = index
	s.mu.Unlock()
}

// Invalidate forces the pending index to be drawn again on the next tick.
func (s *Scheduler) Invalidate() {
	s.mu.Lock()
	s.drawn = 0
	s.mu.Unlock()
}

// Tick performs one refresh: it draws the pending index if it differs from
// the last drawn one. It reports whether draw was called.
func (s *Scheduler) Tick() bool {
	s.mu.Lock()
	idx := s.pending
	if idx == 0 || idx == s.drawn {
		s.mu.Unlock()
		return false
	}
	s.drawn = idx
	s.mu.Unlock()

	s.draw(idx)
	return true
}

// Run ticks until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Tick()
		}
	}
}
