package frames

import (
	"errors"
	"math"
)

// ErrInvalidCount is returned when a frame sequence would have no frames.
var ErrInvalidCount = errors.New("frames: count must be at least 1")

// Mapper turns normalized scroll progress into a 1-based frame index.
type Mapper struct {
	count int
}

// NewMapper creates a Mapper for a sequence of count frames.
func NewMapper(count int) (Mapper, error) {
	if count < 1 {
		return Mapper{}, ErrInvalidCount
	}
	return Mapper{count: count}, nil
}

// Count is the number of frames in the sequence.
func (m Mapper) Count() int {
	return m.count
}

// Index linearly maps progress in [0, 1] onto [1, N]. Progress outside the
// range (overscroll) is clamped, and the result always lies in [1, N].
func (m Mapper) Index(progress float64) int {
	if m.count < 1 {
		return 0
	}
	p := Clamp01(progress)
	idx := 1 + int(math.Floor(p*float64(m.count-1)))
	if idx < 1 {
		return 1
	}
	if idx > m.count {
		return m.count
	}
	return idx
}

// Progress returns a progress value that Index maps back to index: the middle
// of the band of progress values belonging to that frame.
func (m Mapper) Progress(index int) float64 {
	if m.count <= 1 {
		return 0
	}
	if index < 1 {
		index = 1
	}
	if index >= m.count {
		return 1
	}
	return (float64(index-1) + 0.5) / float64(m.count-1)
}

// Clamp01 clamps v into [0, 1]. NaN maps to 0.
func Clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
