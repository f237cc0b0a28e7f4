package frames

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/shirou/gopsutil/v3/mem"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"
)

// Store owns the decoded frames of one image sequence. It is created by
// whoever renders the sequence and torn down with Close when they are done.
type Store struct {
	count     int
	fetcher   Fetcher
	workers   int
	logger    *slog.Logger
	available func() (uint64, error)

	mu     sync.RWMutex
	frames []image.Image
	closed bool

	completed atomic.Int64
	failed    atomic.Int64
	start     sync.Once
	memCheck  sync.Once
	done      chan struct{}
}

// Option configures a Store.
type Option func(*Store)

// WithWorkers bounds how many frames are fetched and decoded at once.
func WithWorkers(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithLogger sets the logger used for per-frame failures.
func WithLogger(lg *slog.Logger) Option {
	return func(s *Store) {
		if lg != nil {
			s.logger = lg
		}
	}
}

// WithMemoryProbe replaces the host memory probe (available bytes).
func WithMemoryProbe(probe func() (uint64, error)) Option {
	return func(s *Store) {
		s.available = probe
	}
}

// Stats is a snapshot of loading progress.
type Stats struct {
	Total     int  `json:"total"`
	Completed int  `json:"completed"`
	Failed    int  `json:"failed"`
	Loaded    bool `json:"loaded"`
}

// NewStore creates an empty store for count frames served by fetcher.
func NewStore(count int, fetcher Fetcher, opts ...Option) (*Store, error) {
	if count < 1 {
		return nil, ErrInvalidCount
	}
	if fetcher == nil {
		return nil, fmt.Errorf("frames: nil fetcher")
	}
	s := &Store{
		count:     count,
		fetcher:   fetcher,
		workers:   8,
		logger:    slog.Default(),
		available: hostAvailableMemory,
		frames:    make([]image.Image, count),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Count is the number of frames the store was created for.
func (s *Store) Count() int {
	return s.count
}

// Load starts fetching every frame in the background and returns at once.
// Only the first call has any effect.
func (s *Store) Load(ctx context.Context) {
	s.start.Do(func() {
		go s.run(ctx)
	})
}

func (s *Store) run(ctx context.Context) {
	var g errgroup.Group
	g.SetLimit(s.workers)
	for i := 1; i <= s.count; i++ {
		g.Go(func() error {
			s.loadOne(ctx, i)
			return nil
		})
	}
	// Individual failures are absorbed by loadOne.
	_ = g.Wait()
}

func (s *Store) loadOne(ctx context.Context, index int) {
	img, err := s.fetchDecode(ctx, index)
	if err != nil {
		s.failed.Add(1)
		s.logger.Error("failed to load frame", "frame", index, "error", err)
		s.complete()
		return
	}

	s.memCheck.Do(func() { s.checkMemory(img) })

	s.mu.Lock()
	if !s.closed {
		s.frames[index-1] = img
	}
	s.mu.Unlock()
	s.complete()
}

func (s *Store) fetchDecode(ctx context.Context, index int) (image.Image, error) {
	rc, err := s.fetcher.Fetch(ctx, index)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	img, _, err := image.Decode(rc)
	if err != nil {
		return nil, fmt.Errorf("decode frame %d: %w", index, err)
	}
	return img, nil
}

func (s *Store) complete() {
	if s.completed.Add(1) == int64(s.count) {
		s.logger.Info("frame sequence ready",
			"frames", s.count, "failed", s.failed.Load())
		close(s.done)
	}
}

// checkMemory warns when the fully decoded sequence would take more than half
// of the memory currently available on the host.
func (s *Store) checkMemory(sample image.Image) {
	if s.available == nil {
		return
	}
	b := sample.Bounds()
	need := uint64(b.Dx()) * uint64(b.Dy()) * 4 * uint64(s.count)
	avail, err := s.available()
	if err != nil {
		s.logger.Debug("memory probe failed", "error", err)
		return
	}
	if need > avail/2 {
		s.logger.Warn("decoded frame cache exceeds half of available memory",
			"need_bytes", need, "available_bytes", avail)
	}
}

func hostAvailableMemory() (uint64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, err
	}
	return vm.Available, nil
}

// Done is closed once every frame has either loaded or failed.
func (s *Store) Done() <-chan struct{} {
	return s.done
}

// Loaded reports whether all load attempts have completed.
func (s *Store) Loaded() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the sequence is loaded or ctx ends.
func (s *Store) Wait(ctx context.Context) error {
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Frame returns the decoded frame at a 1-based index. ok is false for indices
// outside the sequence and for frames that failed or are still loading.
func (s *Store) Frame(index int) (image.Image, bool) {
	if index < 1 || index > s.count {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, false
	}
	img := s.frames[index-1]
	return img, img != nil
}

// Stats returns the current loading counters.
func (s *Store) Stats() Stats {
	return Stats{
		Total:     s.count,
		Completed: int(s.completed.Load()),
		Failed:    int(s.failed.Load()),
		Loaded:    s.Loaded(),
	}
}

// Close releases every decoded frame. Loads still in flight are discarded.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.frames = nil
	return nil
}

var _ io.Closer = (*Store)(nil)
