package frames

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

type fakeFetcher struct {
	fail  map[int]bool
	block map[int]chan struct{}
	w, h  int
}

func (f *fakeFetcher) Fetch(ctx context.Context, index int) (io.ReadCloser, error) {
	if ch, ok := f.block[index]; ok {
		select {
		case <-ch:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.fail[index] {
		return nil, errors.New("synthetic failure")
	}
	return io.NopCloser(bytes.NewReader(encodePNG(f.w, f.h))), nil
}

func encodePNG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStoreLoadedDespiteFailure(t *testing.T) {
	fetcher := &fakeFetcher{fail: map[int]bool{2: true}, w: 4, h: 3}
	store, err := NewStore(3, fetcher, WithLogger(quietLogger()), WithMemoryProbe(nil))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if store.Loaded() {
		t.Fatal("store reports loaded before Load")
	}

	store.Load(context.Background())
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := store.Wait(ctx); err != nil {
		t.Fatalf("loading indicator never cleared: %v", err)
	}

	if !store.Loaded() {
		t.Error("Loaded() = false after Done")
	}
	if _, ok := store.Frame(1); !ok {
		t.Error("frame 1 should be available")
	}
	if _, ok := store.Frame(2); ok {
		t.Error("frame 2 failed and must be absent")
	}
	if img, ok := store.Frame(3); !ok || img.Bounds().Dx() != 4 {
		t.Error("frame 3 should be decoded at 4px wide")
	}

	stats := store.Stats()
	if stats.Total != 3 || stats.Completed != 3 || stats.Failed != 1 || !stats.Loaded {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestStoreStalledFrameKeepsLoading(t *testing.T) {
	release := make(chan struct{})
	fetcher := &fakeFetcher{block: map[int]chan struct{}{3: release}, w: 2, h: 2}
	store, _ := NewStore(3, fetcher, WithLogger(quietLogger()), WithMemoryProbe(nil))
	store.Load(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if err := store.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Wait should time out while a frame is stalled, got %v", err)
	}
	if store.Loaded() {
		t.Fatal("Loaded() must stay false while a frame is stalled")
	}

	close(release)
	ctx2, cancel2 := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel2()
	if err := store.Wait(ctx2); err != nil {
		t.Fatalf("Wait after release: %v", err)
	}
}

func TestStoreLoadIsIdempotent(t *testing.T) {
	var mu sync.Mutex
	calls := map[int]int{}
	fetcher := fetchFunc(func(ctx context.Context, index int) (io.ReadCloser, error) {
		mu.Lock()
		calls[index]++
		mu.Unlock()
		return io.NopCloser(bytes.NewReader(encodePNG(1, 1))), nil
	})
	store, _ := NewStore(5, fetcher, WithLogger(quietLogger()), WithMemoryProbe(nil), WithWorkers(2))
	store.Load(context.Background())
	store.Load(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := store.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	for i := 1; i <= 5; i++ {
		if calls[i] != 1 {
			t.Errorf("frame %d fetched %d times", i, calls[i])
		}
	}
}

func TestStoreOutOfRangeAndClose(t *testing.T) {
	store, _ := NewStore(2, &fakeFetcher{w: 1, h: 1}, WithLogger(quietLogger()), WithMemoryProbe(nil))
	store.Load(context.Background())
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = store.Wait(ctx)

	for _, idx := range []int{0, -1, 3} {
		if _, ok := store.Frame(idx); ok {
			t.Errorf("Frame(%d) should be absent", idx)
		}
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, ok := store.Frame(1); ok {
		t.Error("frames must be released after Close")
	}
}

func TestStoreWarnsOnLowMemory(t *testing.T) {
	var buf bytes.Buffer
	lg := slog.New(slog.NewTextHandler(&buf, nil))
	probe := func() (uint64, error) { return 1024, nil }
	store, _ := NewStore(2, &fakeFetcher{w: 64, h: 64}, WithLogger(lg), WithMemoryProbe(probe))
	store.Load(context.Background())
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = store.Wait(ctx)

	if !strings.Contains(buf.String(), "exceeds half of available memory") {
		t.Errorf("expected memory warning, got %s", buf.String())
	}
}

func TestNewStoreValidates(t *testing.T) {
	if _, err := NewStore(0, &fakeFetcher{}); !errors.Is(err, ErrInvalidCount) {
		t.Errorf("expected ErrInvalidCount, got %v", err)
	}
	if _, err := NewStore(3, nil); err == nil {
		t.Error("expected error for nil fetcher")
	}
}

func TestDirFetcher(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "frame_7.jpg"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	f := NewDirFetcher(dir, "")
	rc, err := f.Fetch(context.Background(), 7)
	if err != nil {
		t.Fatalf("Fetch(7): %v", err)
	}
	rc.Close()
	if _, err := f.Fetch(context.Background(), 8); err == nil {
		t.Error("expected error for missing frame")
	}
}

type fetchFunc func(ctx context.Context, index int) (io.ReadCloser, error)

func (f fetchFunc) Fetch(ctx context.Context, index int) (io.ReadCloser, error) {
	return f(ctx, index)
}
