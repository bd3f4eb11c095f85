package system

import (
	"image"
	"sync"
)

// FramePool recycles RGBA buffers of one fixed canvas size, keeping the
// per-tick compositing loop off the garbage collector's back. A session
// renders at a single resolution, so one rect is all it ever pools.
type FramePool struct {
	rect image.Rectangle
	pool sync.Pool
}

// NewFramePool creates a pool producing frames of the given bounds.
func NewFramePool(rect image.Rectangle) *FramePool {
	return &FramePool{
		rect: rect,
		pool: sync.Pool{
			New: func() any { return image.NewRGBA(rect) },
		},
	}
}

// Get returns a canvas-sized frame, reusing a pooled one when available.
func (p *FramePool) Get() *image.RGBA {
	return p.pool.Get().(*image.RGBA)
}

// Put hands a frame back for reuse. Foreign-sized frames are rejected, and
// under memory pressure frames are dropped instead so the pool cannot pin
// a large working set.
func (p *FramePool) Put(img *image.RGBA) {
	if img == nil || img.Rect != p.rect {
		return
	}
	if LowMemory() {
		return
	}
	p.pool.Put(img)
}
