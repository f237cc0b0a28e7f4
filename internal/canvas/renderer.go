// Package canvas draws frames of an image sequence onto a fixed-resolution
// surface, letterboxed with contain scaling.
package canvas

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"strconv"
	"strings"

	xdraw "golang.org/x/image/draw"
)

const (
	DefaultWidth  = 1920
	DefaultHeight = 1080
)

// DefaultBackground is the near-black the page itself uses.
var DefaultBackground = color.RGBA{R: 0x05, G: 0x05, B: 0x05, A: 0xff}

// FrameSource looks up decoded frames by 1-based index.
type FrameSource interface {
	Frame(index int) (image.Image, bool)
}

// Renderer owns one output surface. It is not safe for concurrent use.
type Renderer struct {
	frames  FrameSource
	width   int
	height  int
	bg      color.RGBA
	scaler  xdraw.Scaler
	pool    *SurfacePool
	surface *image.RGBA
	current int
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithSize sets the output resolution. A non-positive size leaves the
// renderer without a surface, and every Draw is a no-op.
func WithSize(width, height int) Option {
	return func(r *Renderer) {
		r.width, r.height = width, height
	}
}

// WithBackground sets the letterbox colour.
func WithBackground(c color.Color) Option {
	return func(r *Renderer) {
		r.bg = color.RGBAModel.Convert(c).(color.RGBA)
	}
}

// WithScaler sets the resampling kernel used for the blit.
func WithScaler(s xdraw.Scaler) Option {
	return func(r *Renderer) {
		if s != nil {
			r.scaler = s
		}
	}
}

// WithPool takes the surface from pool; Release returns it.
func WithPool(pool *SurfacePool) Option {
	return func(r *Renderer) {
		r.pool = pool
	}
}

// NewRenderer creates a renderer over frames, cleared to the background.
func NewRenderer(frames FrameSource, opts ...Option) *Renderer {
	r := &Renderer{
		frames: frames,
		width:  DefaultWidth,
		height: DefaultHeight,
		bg:     DefaultBackground,
		scaler: xdraw.ApproxBiLinear,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.width > 0 && r.height > 0 {
		rect := image.Rect(0, 0, r.width, r.height)
		if r.pool != nil {
			r.surface = r.pool.Get(rect)
		} else {
			r.surface = image.NewRGBA(rect)
		}
		r.clear()
	}
	return r
}

// Draw paints frame index onto the surface. When the frame is missing or not
// yet decoded, or there is no surface, nothing is touched and the previously
// drawn frame stays visible. It reports whether a draw happened.
func (r *Renderer) Draw(index int) bool {
	if r.surface == nil || r.frames == nil {
		return false
	}
	img, ok := r.frames.Frame(index)
	if !ok || img == nil {
		return false
	}
	sb := img.Bounds()
	place := Contain(r.width, r.height, sb.Dx(), sb.Dy())
	dst := place.Rect(r.surface.Bounds())
	if dst.Empty() {
		return false
	}

	r.clear()
	r.scaler.Scale(r.surface, dst, img, sb, xdraw.Over, nil)
	r.current = index
	return true
}

func (r *Renderer) clear() {
	xdraw.Draw(r.surface, r.surface.Bounds(), &image.Uniform{C: r.bg}, image.Point{}, xdraw.Src)
}

// Current is the index of the frame currently on the surface, 0 if none.
func (r *Renderer) Current() int {
	return r.current
}

// Image exposes the surface. It is nil for a renderer without one.
func (r *Renderer) Image() image.Image {
	if r.surface == nil {
		return nil
	}
	return r.surface
}

// Bounds is the output resolution.
func (r *Renderer) Bounds() image.Rectangle {
	return image.Rect(0, 0, r.width, r.height)
}

// EncodeJPEG writes the surface as JPEG.
func (r *Renderer) EncodeJPEG(w io.Writer, quality int) error {
	if r.surface == nil {
		return fmt.Errorf("canvas: no surface")
	}
	return jpeg.Encode(w, r.surface, &jpeg.Options{Quality: quality})
}

// EncodePNG writes the surface as PNG.
func (r *Renderer) EncodePNG(w io.Writer) error {
	if r.surface == nil {
		return fmt.Errorf("canvas: no surface")
	}
	return png.Encode(w, r.surface)
}

// Release returns a pooled surface. The renderer must not be used afterwards.
func (r *Renderer) Release() {
	if r.pool != nil && r.surface != nil {
		r.pool.Put(r.surface)
	}
	r.surface = nil
}

// ParseScaler maps a config name to an x/image resampling kernel.
func ParseScaler(name string) (xdraw.Scaler, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "bilinear":
		return xdraw.ApproxBiLinear, nil
	case "exact-bilinear":
		return xdraw.BiLinear, nil
	case "catmullrom", "bicubic":
		return xdraw.CatmullRom, nil
	case "nearest":
		return xdraw.NearestNeighbor, nil
	}
	return nil, fmt.Errorf("canvas: unknown interpolation %q", name)
}

// ParseHexColor parses "#rrggbb" or "#rgb".
func ParseHexColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("canvas: invalid colour %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("canvas: invalid colour %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
