// Package playback drives a presentation: the sequencer advances scenes on
// narration completion or fallback timers while the render loop, paced by
// its own ticker, composites whatever is currently loaded.
package playback

import (
	"context"
	"image"
	"time"

	"github.com/ivlev/scenecast/internal/media"
	"github.com/ivlev/scenecast/internal/render"
)

// State is the sequencer's lifecycle position.
type State int

const (
	StateIdle State = iota
	StatePlaying
	StateFinished
)

func (s State) String() string {
	switch s {
	case StatePlaying:
		return "playing"
	case StateFinished:
		return "finished"
	default:
		return "idle"
	}
}

// DefaultDwell bounds scenes without narration so playback always
// terminates.
const DefaultDwell = 5 * time.Second

// Visuals swaps the visual handle per scene. *media.Resolver is the real
// implementation.
type Visuals interface {
	Resolve(ctx context.Context, kind media.Kind, url string)
	Detach()
}

// AudioGraph is the narration surface the sequencer drives. *audio.Mixer
// is the real implementation; music is started once by the player and not
// touched per scene.
type AudioGraph interface {
	PlayNarration(ctx context.Context, url string, gain float64) (<-chan error, error)
	StopNarration()
}

// Compositor produces one frame per tick. *render.Renderer is the real
// implementation.
type Compositor interface {
	Compose(st render.SceneState, now time.Time) *image.RGBA
	Release(frame *image.RGBA)
}

// FrameSink receives each composited frame; the recorder is one.
type FrameSink interface {
	WriteFrame(frame *image.RGBA) error
}
