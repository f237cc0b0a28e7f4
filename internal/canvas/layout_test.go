package canvas

import (
	"image"
	"math"
	"testing"
)

func TestContainStaysInsideCanvas(t *testing.T) {
	const eps = 1e-9
	tests := []struct {
		name       string
		imgW, imgH int
		wantW      float64
		wantH      float64
	}{
		{"square", 1000, 1000, 1080, 1080},
		{"ultrawide 21:9", 2520, 1080, 1920, 1920.0 * 1080 / 2520},
		{"portrait 9:16", 1080, 1920, 1080 * 1080.0 / 1920, 1080},
		{"exact 16:9", 3840, 2160, 1920, 1080},
		{"tiny", 16, 9, 1920, 1080},
	}
	bounds := image.Rect(0, 0, 1920, 1080)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Contain(1920, 1080, tt.imgW, tt.imgH)

			if p.X < -eps || p.Y < -eps {
				t.Errorf("negative offset %+v", p)
			}
			if p.X+p.W > 1920+eps || p.Y+p.H > 1080+eps {
				t.Errorf("placement %+v leaves the canvas", p)
			}
			if math.Abs(p.W-tt.wantW) > 1e-6 || math.Abs(p.H-tt.wantH) > 1e-6 {
				t.Errorf("size = %.4fx%.4f, want %.4fx%.4f", p.W, p.H, tt.wantW, tt.wantH)
			}
			// Centred: equal margins on both sides.
			if math.Abs(p.X-(1920-p.X-p.W)) > 1e-6 || math.Abs(p.Y-(1080-p.Y-p.H)) > 1e-6 {
				t.Errorf("placement %+v is not centred", p)
			}
			// Aspect ratio preserved.
			if math.Abs(p.W/p.H-float64(tt.imgW)/float64(tt.imgH)) > 1e-9 {
				t.Errorf("aspect changed: %v vs %v", p.W/p.H, float64(tt.imgW)/float64(tt.imgH))
			}

			r := p.Rect(bounds)
			if !r.In(bounds) {
				t.Errorf("rect %v outside %v", r, bounds)
			}
		})
	}
}

func TestContainSquareOffsets(t *testing.T) {
	p := Contain(1920, 1080, 500, 500)
	if math.Abs(p.X-420) > 1e-9 || math.Abs(p.Y) > 1e-9 {
		t.Errorf("offsets = (%v, %v), want (420, 0)", p.X, p.Y)
	}
	if got := p.Rect(image.Rect(0, 0, 1920, 1080)); got != image.Rect(420, 0, 1500, 1080) {
		t.Errorf("rect = %v", got)
	}
}

func TestContainDegenerate(t *testing.T) {
	if p := Contain(1920, 1080, 0, 100); p != (Placement{}) {
		t.Errorf("zero-width image gave %+v", p)
	}
	if p := Contain(0, 0, 100, 100); p != (Placement{}) {
		t.Errorf("zero canvas gave %+v", p)
	}
}
