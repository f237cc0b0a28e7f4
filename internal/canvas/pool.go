package canvas

import (
	"image"
	"sync"
)

// SurfacePool recycles RGBA surfaces by size so per-request renders do not
// allocate a fresh 8 MB buffer every time.
type SurfacePool struct {
	mu    sync.RWMutex
	pools map[image.Rectangle]*sync.Pool
}

// NewSurfacePool creates an empty pool.
func NewSurfacePool() *SurfacePool {
	return &SurfacePool{pools: make(map[image.Rectangle]*sync.Pool)}
}

// Get returns a surface of the given bounds. Its contents are undefined.
func (p *SurfacePool) Get(rect image.Rectangle) *image.RGBA {
	p.mu.RLock()
	pool, exists := p.pools[rect]
	p.mu.RUnlock()

	if !exists {
		p.mu.Lock()
		pool, exists = p.pools[rect]
		if !exists {
			pool = &sync.Pool{
				New: func() interface{} {
					return image.NewRGBA(rect)
				},
			}
			p.pools[rect] = pool
		}
		p.mu.Unlock()
	}
	return pool.Get().(*image.RGBA)
}

// Put hands a surface back. Surfaces of a size never requested are dropped.
func (p *SurfacePool) Put(img *image.RGBA) {
	if img == nil {
		return
	}
	p.mu.RLock()
	pool, exists := p.pools[img.Rect]
	p.mu.RUnlock()
	if exists {
		pool.Put(img)
	}
}
