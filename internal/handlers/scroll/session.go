package scroll

import (
	"context"
	"errors"
	"sync"

	"DENAC/internal/canvas"
	"DENAC/internal/frames"
	"DENAC/internal/overlay"
	"DENAC/internal/scroll"
)

var errEmptyMessage = errors.New("scroll: message carries neither offset nor progress")

// Message is what the browser sends: either a raw scroll measurement or an
// already normalized progress.
type Message struct {
	Offset   *float64 `json:"offset,omitempty"`
	Start    *float64 `json:"start,omitempty"`
	End      *float64 `json:"end,omitempty"`
	Progress *float64 `json:"progress,omitempty"`
}

// Update is what the server sends back, at most once per refresh tick.
type Update struct {
	Frame    int                  `json:"frame"`
	Progress float64              `json:"progress"`
	Panels   []overlay.PanelState `json:"panels"`
}

// Session is one connection's scroll state. Its Source is the only producer
// of progress; the frame and panel consumers are evaluated together when the
// scheduler fires.
type Session struct {
	ID string

	source *scroll.Source
	mapper frames.Mapper
	seq    *overlay.Sequencer
	sched  *canvas.Scheduler
	send   func(Update)

	mu      sync.Mutex
	version int
	latest  float64
	unsub   func()

	// offset is the last raw measurement; hasOffset is false until one
	// arrives and again after a progress message.
	offset    float64
	hasOffset bool
}

// NewSession creates the scroll state for one connection. send receives at
// most one Update per refresh tick at rate hertz.
func NewSession(id string, mapper frames.Mapper, seq *overlay.Sequencer, rate int, send func(Update)) *Session {
	s := &Session{
		ID:     id,
		source: scroll.NewSource(scroll.Region{}),
		mapper: mapper,
		seq:    seq,
		send:   send,
	}
	s.sched = canvas.NewScheduler(rate, s.flush)
	s.unsub = s.source.Subscribe(s.changed)
	return s
}

func (s *Session) changed(progress float64) {
	s.mu.Lock()
	s.version++
	v := s.version
	s.latest = progress
	s.mu.Unlock()
	s.sched.Request(v)
}

// Prime queues the current state so a new client is drawn before it scrolls.
func (s *Session) Prime() {
	s.changed(s.source.Value())
}

// Apply feeds one client message into the progress source. A region-only
// message re-normalizes the last offset against the new region.
func (s *Session) Apply(m Message) error {
	if m.Progress != nil {
		s.mu.Lock()
		s.hasOffset = false
		s.mu.Unlock()
		s.source.Set(*m.Progress)
		return nil
	}
	region := m.Start != nil && m.End != nil
	if region {
		s.source.SetRegion(scroll.Region{Start: *m.Start, End: *m.End})
	}
	s.mu.Lock()
	if m.Offset != nil {
		s.offset, s.hasOffset = *m.Offset, true
	}
	offset, ok := s.offset, s.hasOffset
	s.mu.Unlock()

	switch {
	case m.Offset != nil:
		s.source.Update(offset)
	case !region:
		return errEmptyMessage
	case ok:
		s.source.Update(offset)
	}
	return nil
}

// Snapshot evaluates both consumers at progress.
func (s *Session) Snapshot(progress float64) Update {
	return Update{
		Frame:    s.mapper.Index(progress),
		Progress: progress,
		Panels:   s.seq.Evaluate(progress),
	}
}

func (s *Session) flush(int) {
	s.mu.Lock()
	p := s.latest
	s.mu.Unlock()
	s.send(s.Snapshot(p))
}

// Tick runs one refresh and reports whether an update was sent.
func (s *Session) Tick() bool {
	return s.sched.Tick()
}

// Run sends coalesced updates until ctx is done.
func (s *Session) Run(ctx context.Context) error {
	return s.sched.Run(ctx)
}

// Close detaches the session from its progress source.
func (s *Session) Close() {
	s.unsub()
}
