// Package scroll normalizes a scroll position inside a tall scroll region to
// a progress value in [0, 1] and fans it out to read-only consumers.
package scroll

import (
	"math"
	"sync"
)

// Region is the scroll range over which progress runs from 0 to 1: Start is
// the offset at which the region's top meets the viewport's top, End the
// offset at which its bottom meets the viewport's bottom.
type Region struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Progress normalizes offset against the region. Offsets before Start give 0,
// offsets past End give 1, and a region with no length gives 0.
func (r Region) Progress(offset float64) float64 {
	span := r.End - r.Start
	if !(span > 0) || math.IsNaN(offset) {
		return 0
	}
	return clamp01((offset - r.Start) / span)
}

// Source is the single producer of scroll progress. Consumers subscribe and
// are called, in subscription order, each time the value changes.
type Source struct {
	mu       sync.Mutex
	region   Region
	value    float64
	nextID   int
	watchers []watcher
}

type watcher struct {
	id int
	fn func(float64)
}

// NewSource creates a Source for region with progress 0.
func NewSource(region Region) *Source {
	return &Source{region: region}
}

// SetRegion replaces the scroll region, e.g. after a viewport resize. It does
// not recompute progress until the next Update.
func (s *Source) SetRegion(region Region) {
	s.mu.Lock()
	s.region = region
	s.mu.Unlock()
}

// Region returns the current region.
func (s *Source) Region() Region {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.region
}

// Update records a new scroll offset. It reports whether progress changed.
func (s *Source) Update(offset float64) bool {
	s.mu.Lock()
	p := s.region.Progress(offset)
	return s.publishLocked(p)
}

// Set records an already normalized progress value (clamped to [0, 1]).
func (s *Source) Set(progress float64) bool {
	s.mu.Lock()
	return s.publishLocked(clamp01(progress))
}

// publishLocked must be called with s.mu held; it releases it before running
// consumers so they may read Value.
func (s *Source) publishLocked(p float64) bool {
	if p == s.value {
		s.mu.Unlock()
		return false
	}
	s.value = p
	ws := make([]watcher, len(s.watchers))
	copy(ws, s.watchers)
	s.mu.Unlock()

	for _, w := range ws {
		w.fn(p)
	}
	return true
}

// Value returns the latest progress.
func (s *Source) Value() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Subscribe registers fn to receive every progress change. The returned
// function removes the subscription.
func (s *Source) Subscribe(fn func(progress float64)) (unsubscribe func()) {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.watchers = append(s.watchers, watcher{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, w := range s.watchers {
				if w.id == id {
					s.watchers = append(s.watchers[:i], s.watchers[i+1:]...)
					return
				}
			}
		})
	}
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
