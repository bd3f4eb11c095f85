// Package media decides and loads the visual source presented for each
// scene: a looping motion clip, a still image, or nothing.
package media

import (
	"image"

	"github.com/ivlev/scenecast/internal/scene"
)

// Kind tags the active visual source of a scene.
type Kind int

const (
	KindNone Kind = iota
	KindStill
	KindClip
)

func (k Kind) String() string {
	switch k {
	case KindStill:
		return "still"
	case KindClip:
		return "clip"
	default:
		return "none"
	}
}

// Visual is the tagged variant the renderer consumes. Exactly the field
// matching Kind is set; the others are nil.
type Visual struct {
	Kind  Kind
	Still image.Image
	Clip  *ClipStream
}

// Pick returns the visual kind a scene should present and the asset URL
// backing it. Video takes precedence over a still image.
func Pick(sc scene.Scene) (Kind, string) {
	if sc.VideoURL != "" {
		return KindClip, sc.VideoURL
	}
	if sc.ImageURL != "" {
		return KindStill, sc.ImageURL
	}
	return KindNone, ""
}
