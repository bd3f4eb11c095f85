// Package render composites presentation frames: the scene's visual with
// its ken-burns animation, plus the active subtitle, onto an RGBA canvas.
package render

import (
	"image"
	"image/color"
	"image/draw"
	"log/slog"
	"math"
	"time"

	xdraw "golang.org/x/image/draw"

	"github.com/ivlev/scenecast/internal/media"
	"github.com/ivlev/scenecast/internal/subtitle"
	"github.com/ivlev/scenecast/internal/system"
)

const (
	zoomStart = 1.0
	zoomEnd   = 1.15
)

// VisualProvider hands the renderer whatever visual is ready right now.
type VisualProvider interface {
	Current() media.Visual
}

// SceneState is the per-scene timing the renderer needs each tick.
type SceneState struct {
	Start    time.Time // wall-clock anchor for the zoom animation
	Duration float64   // seconds
	Chunks   []subtitle.Chunk
}

// Renderer draws one frame per tick for the lifetime of a session. It
// tolerates any asset being momentarily unready: a scene with nothing to
// show yields the solid fallback fill.
type Renderer struct {
	width, height int
	visuals       VisualProvider
	face          *subtitleFace
	pool          *system.FramePool
	log           *slog.Logger
}

// New creates a renderer for the given canvas size.
func New(width, height int, visuals VisualProvider, log *slog.Logger) (*Renderer, error) {
	face, err := newSubtitleFace(height)
	if err != nil {
		return nil, err
	}
	return &Renderer{
		width:   width,
		height:  height,
		visuals: visuals,
		face:    face,
		pool:    system.NewFramePool(image.Rect(0, 0, width, height)),
		log:     log,
	}, nil
}

// Compose renders the frame for the given instant. The returned buffer is
// pooled; hand it back with Release once written to all sinks.
func (r *Renderer) Compose(st SceneState, now time.Time) *image.RGBA {
	frame := r.pool.Get()
	r.fill(frame, color.RGBA{A: 0xff}) // solid fallback beneath everything

	elapsed := now.Sub(st.Start).Seconds()

	v := r.visuals.Current()
	switch v.Kind {
	case media.KindClip:
		// Clip frames arrive canvas-sized; until the first one the
		// fallback fill stays.
		v.Clip.CopyFrame(frame)
	case media.KindStill:
		r.drawStill(frame, v.Still, elapsed, st.Duration)
	}

	if c, ok := subtitle.Active(st.Chunks, elapsed); ok {
		r.face.draw(frame, c.Text)
	}
	return frame
}

// Release returns a composed frame to the buffer pool.
func (r *Renderer) Release(frame *image.RGBA) {
	r.pool.Put(frame)
}

func (r *Renderer) drawStill(dst *image.RGBA, img image.Image, elapsed, duration float64) {
	zoom := zoomFactor(elapsed, duration)
	rect := coverRect(r.width, r.height, img.Bounds().Dx(), img.Bounds().Dy(), zoom)
	xdraw.ApproxBiLinear.Scale(dst, rect, img, img.Bounds(), draw.Src, nil)
}

func (r *Renderer) fill(dst *image.RGBA, c color.RGBA) {
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
}

// zoomFactor is the ken-burns zoom at elapsed seconds into a scene: linear
// from 1.0 to 1.15 over the scene duration, driven by wall-clock time so
// dropped frames never slow the animation down.
func zoomFactor(elapsed, duration float64) float64 {
	if duration <= 0 {
		return zoomStart
	}
	progress := elapsed / duration
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}
	return zoomStart + (zoomEnd-zoomStart)*progress
}

// coverRect is the destination rectangle that covers the whole canvas with
// the source's aspect preserved, scaled by zoom and centered. Overflow is
// cropped by the canvas bounds during drawing.
func coverRect(canvasW, canvasH, srcW, srcH int, zoom float64) image.Rectangle {
	if srcW <= 0 || srcH <= 0 {
		return image.Rect(0, 0, canvasW, canvasH)
	}

	scale := math.Max(float64(canvasW)/float64(srcW), float64(canvasH)/float64(srcH)) * zoom
	dw := float64(srcW) * scale
	dh := float64(srcH) * scale
	x0 := (float64(canvasW) - dw) / 2
	y0 := (float64(canvasH) - dh) / 2

	return image.Rect(
		int(math.Round(x0)),
		int(math.Round(y0)),
		int(math.Round(x0+dw)),
		int(math.Round(y0+dh)),
	)
}
