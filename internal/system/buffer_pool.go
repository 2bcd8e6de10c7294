package system

import (
	"image"
	"sync"
	"sync/atomic"
)

// ImagePool recycles *image.RGBA frame buffers per rectangle so that a run
// over thousands of frames allocates only a handful of them.
type ImagePool struct {
	pools  map[image.Rectangle]*sync.Pool
	mu     sync.RWMutex
	allocs atomic.Int64
}

func NewImagePool() *ImagePool {
	return &ImagePool{pools: make(map[image.Rectangle]*sync.Pool)}
}

// Get returns a buffer of exactly rect. Its contents are undefined.
func (p *ImagePool) Get(rect image.Rectangle) *image.RGBA {
	p.mu.RLock()
	pool, exists := p.pools[rect]
	p.mu.RUnlock()

	if !exists {
		p.mu.Lock()
		pool, exists = p.pools[rect]
		if !exists {
			pool = &sync.Pool{
				New: func() any {
					p.allocs.Add(1)
					return image.NewRGBA(rect)
				},
			}
			p.pools[rect] = pool
		}
		p.mu.Unlock()
	}

	return pool.Get().(*image.RGBA)
}

// Put recycles img. Buffers of a size never requested through Get are dropped.
func (p *ImagePool) Put(img *image.RGBA) {
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

// Allocated reports how many buffers the pool has created so far.
func (p *ImagePool) Allocated() int64 {
	return p.allocs.Load()
}
