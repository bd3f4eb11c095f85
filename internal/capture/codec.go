package capture

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrNoCodec means no acceptable encoder is available in the runtime; a
// recording session cannot be established.
var ErrNoCodec = errors.New("no supported encoder available")

// Preference order: the modern efficient codec first, then the baseline
// one every ffmpeg build with WebM support carries.
var (
	videoCodecs = []string{"libvpx-vp9", "libvpx"}
	audioCodecs = []string{"libopus", "libvorbis"}
)

// Codecs is the encoder pair selected for a recording session.
type Codecs struct {
	Video string
	Audio string
}

// DetectCodecs scans the runtime's encoder list and picks the preferred
// available video and audio codecs for WebM output.
func DetectCodecs() (Codecs, error) {
	out, err := exec.Command("ffmpeg", "-encoders").CombinedOutput()
	if err != nil {
		return Codecs{}, fmt.Errorf("%w: ffmpeg not runnable: %v", ErrNoCodec, err)
	}
	return pickCodecs(string(out))
}

func pickCodecs(encoders string) (Codecs, error) {
	var c Codecs
	for _, name := range videoCodecs {
		if strings.Contains(encoders, name) {
			c.Video = name
			break
		}
	}
	for _, name := range audioCodecs {
		if strings.Contains(encoders, name) {
			c.Audio = name
			break
		}
	}
	if c.Video == "" || c.Audio == "" {
		return Codecs{}, fmt.Errorf("%w: want one of %v + %v", ErrNoCodec, videoCodecs, audioCodecs)
	}
	return c, nil
}
