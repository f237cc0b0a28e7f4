package canvas

import (
	"image"
	"math"
)

// Placement is where a source image lands on the canvas under contain
// scaling.
type Placement struct {
	X, Y  float64
	W, H  float64
	Scale float64
}

// Contain scales an imgW×imgH image to fit entirely inside a canvasW×canvasH
// surface, preserving aspect ratio and centring it. Degenerate sizes give a
// zero Placement.
func Contain(canvasW, canvasH, imgW, imgH int) Placement {
	if canvasW <= 0 || canvasH <= 0 || imgW <= 0 || imgH <= 0 {
		return Placement{}
	}
	cw, ch := float64(canvasW), float64(canvasH)
	iw, ih := float64(imgW), float64(imgH)

	scale := math.Min(cw/iw, ch/ih)
	w := iw * scale
	h := ih * scale
	return Placement{
		X:     (cw - w) / 2,
		Y:     (ch - h) / 2,
		W:     w,
		H:     h,
		Scale: scale,
	}
}

// Rect rounds the placement to whole pixels, clipped to bounds so rounding
// can never push the image outside the canvas.
func (p Placement) Rect(bounds image.Rectangle) image.Rectangle {
	r := image.Rect(
		bounds.Min.X+int(math.Round(p.X)),
		bounds.Min.Y+int(math.Round(p.Y)),
		bounds.Min.X+int(math.Round(p.X+p.W)),
		bounds.Min.Y+int(math.Round(p.Y+p.H)),
	)
	return r.Intersect(bounds)
}
