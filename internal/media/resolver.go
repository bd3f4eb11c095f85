package media

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// Resolver owns the visual handle for the current scene. Resolve swaps it:
// the previous source is stopped and detached before the new one starts
// loading. Loading is asynchronous — asset readiness never drives scene
// advancement, so Current simply reports whatever is ready right now.
type Resolver struct {
	width, height, fps int
	client             *http.Client
	log                *slog.Logger

	mu  sync.Mutex
	gen int // bumped per Resolve; stale loads are discarded
	cur Visual
}

// NewResolver creates a resolver producing visuals for a canvas of the
// given size and frame rate.
func NewResolver(width, height, fps int, log *slog.Logger) *Resolver {
	return &Resolver{
		width:  width,
		height: height,
		fps:    fps,
		client: &http.Client{Timeout: 30 * time.Second},
		log:    log,
	}
}

// Resolve transitions the resolver to the scene's visual source. Clip
// decode failures and still load failures are logged and degrade to no
// visual; they never block or fail the scene.
func (r *Resolver) Resolve(ctx context.Context, kind Kind, url string) {
	r.mu.Lock()
	r.detachLocked()
	r.gen++
	gen := r.gen
	r.mu.Unlock()

	switch kind {
	case KindClip:
		clip, err := OpenClip(ctx, url, r.width, r.height, r.fps, r.log)
		if err != nil {
			r.log.Warn("clip unavailable, showing fallback", "url", url, "error", err)
			return
		}
		r.install(gen, Visual{Kind: KindClip, Clip: clip})

	case KindStill:
		go func() {
			img, err := loadStill(ctx, r.client, url)
			if err != nil {
				r.log.Warn("still unavailable, showing fallback", "url", url, "error", err)
				return
			}
			r.install(gen, Visual{Kind: KindStill, Still: img})
		}()

	case KindNone:
		// Blank fallback frame; nothing to load.
	}
}

// install publishes a loaded visual unless a newer Resolve superseded it.
func (r *Resolver) install(gen int, v Visual) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.gen {
		if v.Clip != nil {
			v.Clip.Close()
		}
		return
	}
	r.cur = v
}

// Current returns the visual that is ready at this instant.
func (r *Resolver) Current() Visual {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cur
}

// Detach stops and releases the current visual source.
func (r *Resolver) Detach() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.detachLocked()
	r.gen++
}

func (r *Resolver) detachLocked() {
	if r.cur.Clip != nil {
		r.cur.Clip.Close()
	}
	r.cur = Visual{}
}

// Close releases all resources held by the resolver.
func (r *Resolver) Close() {
	r.Detach()
	r.client.CloseIdleConnections()
}
