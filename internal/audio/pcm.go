// Package audio runs the session's audio graph: narration and background
// music decoded to PCM, mixed frame-wise with per-source gain, and written
// to the live monitor sink plus, when recording, the capture sink.
package audio

import "time"

// The graph's fixed PCM format. Sources are decoded into it and every sink
// receives it unchanged.
const (
	SampleRate    = 48000
	Channels      = 2
	FrameDuration = 20 * time.Millisecond
	FrameSize     = 960                  // samples per channel per frame
	FrameSamples  = FrameSize * Channels // interleaved samples per frame
	FrameBytes    = FrameSamples * 2     // s16le
)

// mixInto accumulates the first n bytes of an s16le buffer into acc,
// scaled by gain. Accumulation is done in int32 so simultaneous sources
// saturate on output rather than wrap.
func mixInto(acc []int32, buf []byte, n int, gain float64) {
	samples := n / 2
	for i := 0; i < samples && i < len(acc); i++ {
		s := int16(uint16(buf[2*i]) | uint16(buf[2*i+1])<<8)
		acc[i] += int32(float64(s) * gain)
	}
}

// clipFrame converts accumulated samples to s16le bytes, saturating at the
// int16 range.
func clipFrame(acc []int32, out []byte) {
	for i, v := range acc {
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		out[2*i] = byte(uint16(v))
		out[2*i+1] = byte(uint16(v) >> 8)
	}
}
