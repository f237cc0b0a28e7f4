package frames

import (
	"errors"
	"math"
	"testing"
)

func TestMapperEndpoints(t *testing.T) {
	m, err := NewMapper(120)
	if err != nil {
		t.Fatalf("NewMapper: %v", err)
	}
	if got := m.Index(0); got != 1 {
		t.Errorf("Index(0) = %d, want 1", got)
	}
	if got := m.Index(1); got != 120 {
		t.Errorf("Index(1) = %d, want 120", got)
	}
}

func TestMapperRangeAndMonotonic(t *testing.T) {
	m, _ := NewMapper(120)
	prev := 0
	for i := 0; i <= 10000; i++ {
		p := float64(i) / 10000
		idx := m.Index(p)
		if idx < 1 || idx > 120 {
			t.Fatalf("Index(%v) = %d out of range", p, idx)
		}
		if idx < prev {
			t.Fatalf("Index(%v) = %d decreased from %d", p, idx, prev)
		}
		prev = idx
	}
}

func TestMapperClampsOverscroll(t *testing.T) {
	m, _ := NewMapper(120)
	tests := []struct {
		progress float64
		want     int
	}{
		{-0.25, 1},
		{1.0000001, 120},
		{3, 120},
		{math.Inf(1), 120},
		{math.Inf(-1), 1},
		{math.NaN(), 1},
		{0.5, 60},
	}
	for _, tt := range tests {
		if got := m.Index(tt.progress); got != tt.want {
			t.Errorf("Index(%v) = %d, want %d", tt.progress, got, tt.want)
		}
	}
}

func TestMapperSingleFrame(t *testing.T) {
	m, _ := NewMapper(1)
	for _, p := range []float64{0, 0.5, 1} {
		if got := m.Index(p); got != 1 {
			t.Errorf("Index(%v) = %d, want 1", p, got)
		}
	}
}

func TestMapperProgressRoundTrip(t *testing.T) {
	m, _ := NewMapper(120)
	for idx := 1; idx <= 120; idx++ {
		if got := m.Index(m.Progress(idx)); got != idx {
			t.Errorf("Index(Progress(%d)) = %d", idx, got)
		}
	}
}

func TestNewMapperRejectsEmpty(t *testing.T) {
	if _, err := NewMapper(0); !errors.Is(err, ErrInvalidCount) {
		t.Fatalf("expected ErrInvalidCount, got %v", err)
	}
}
