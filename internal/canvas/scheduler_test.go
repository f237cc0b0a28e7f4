package canvas

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestSchedulerCoalescesToLatest(t *testing.T) {
	var drawn []int
	s := NewScheduler(60, func(i int) { drawn = append(drawn, i) })

	if s.Tick() {
		t.Fatal("nothing requested, nothing should draw")
	}
	s.Request(3)
	s.Request(4)
	s.Request(7)
	s.Tick()
	s.Tick()
	s.Request(7)
	s.Tick()
	s.Request(8)
	s.Tick()

	want := []int{7, 8}
	if len(drawn) != len(want) {
		t.Fatalf("drawn = %v, want %v", drawn, want)
	}
	for i := range want {
		if drawn[i] != want[i] {
			t.Fatalf("drawn = %v, want %v", drawn, want)
		}
	}
}

func TestSchedulerInvalidateRedraws(t *testing.T) {
	count := 0
	s := NewScheduler(60, func(int) { count++ })
	s.Request(1)
	s.Tick()
	s.Tick()
	s.Invalidate()
	s.Tick()
	if count != 2 {
		t.Errorf("draws = %d, want 2", count)
	}
}

func TestSchedulerRunStopsWithContext(t *testing.T) {
	var mu sync.Mutex
	var got []int
	s := NewScheduler(200, func(i int) {
		mu.Lock()
		got = append(got, i)
		mu.Unlock()
	})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	s.Request(42)
	deadline := time.After(2 * time.Second)
	for {
		mu.Lock()
		n := len(got)
		mu.Unlock()
		if n > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("scheduler never drew")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	if err := <-done; err != context.Canceled {
		t.Errorf("Run returned %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 || got[0] != 42 {
		t.Errorf("drawn = %v, want [42]", got)
	}
}
