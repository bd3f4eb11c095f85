package audio

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"sync"
)

// source is one node of the audio graph: a PCM byte stream read ahead into
// a small frame channel, with a gain, an optional fade-in, and a done
// notification fired exactly once when the stream drains.
type source struct {
	name   string
	r      io.ReadCloser
	gain   float64
	fadeIn float64 // seconds; 0 disables the ramp

	frames chan []byte
	quit   chan struct{}
	done   chan error // buffered(1); receives the final status once

	samplesRead int64 // per-channel position, owned by the pump
	finished    bool  // owned by the pump

	errOnce  sync.Once
	readErrV error

	stopOnce sync.Once
}

func newSource(name string, r io.ReadCloser, gain, fadeIn float64) *source {
	return &source{
		name:   name,
		r:      r,
		gain:   gain,
		fadeIn: fadeIn,
		frames: make(chan []byte, 4),
		quit:   make(chan struct{}),
		done:   make(chan error, 1),
	}
}

// readLoop decodes ahead by whole frames. A trailing partial frame is
// zero-padded so the stream always ends on a frame boundary.
func (s *source) readLoop() {
	defer close(s.frames)
	for {
		buf := make([]byte, FrameBytes)
		n, err := io.ReadFull(s.r, buf)
		if n > 0 {
			for i := n; i < len(buf); i++ {
				buf[i] = 0
			}
			select {
			case s.frames <- buf:
			case <-s.quit:
				return
			}
		}
		if err != nil {
			s.errOnce.Do(func() { s.readErrV = normalizeEOF(err) })
			return
		}
	}
}

func (s *source) readErr() error {
	s.errOnce.Do(func() {})
	return s.readErrV
}

// effectiveGain applies the fade-in ramp at the source's current position.
func (s *source) effectiveGain() float64 {
	if s.fadeIn <= 0 {
		return s.gain
	}
	t := float64(s.samplesRead) / float64(SampleRate)
	if t >= s.fadeIn {
		return s.gain
	}
	return s.gain * (t / s.fadeIn)
}

// finish fires the done notification once. Called from the pump when the
// frame channel drains.
func (s *source) finish(err error) {
	if s.finished {
		return
	}
	s.finished = true
	s.done <- err
	s.stop()
}

// stop releases the stream and unblocks the read loop. Idempotent.
func (s *source) stop() {
	s.stopOnce.Do(func() {
		close(s.quit)
		s.r.Close()
	})
}

// pcmProcess wraps a decoder child process so closing the stream also
// stops and reaps the process.
type pcmProcess struct {
	io.ReadCloser
	cancel context.CancelFunc
	cmd    *exec.Cmd
}

func (p *pcmProcess) Close() error {
	p.cancel()
	_ = p.ReadCloser.Close()
	return p.cmd.Wait()
}

// decodePCM starts an ffmpeg decode of url into the graph's PCM format.
// With loop set the stream repeats forever (background music).
func decodePCM(ctx context.Context, url string, loop bool) (io.ReadCloser, error) {
	cctx, cancel := context.WithCancel(ctx)

	args := []string{}
	if loop {
		args = append(args, "-stream_loop", "-1")
	}
	args = append(args,
		"-i", url,
		"-vn",
		"-f", "s16le",
		"-ar", fmt.Sprintf("%d", SampleRate),
		"-ac", fmt.Sprintf("%d", Channels),
		"-v", "error",
		"-",
	)

	cmd := exec.CommandContext(cctx, "ffmpeg", args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("start audio decode %s: %w", url, err)
	}
	return &pcmProcess{ReadCloser: stdout, cancel: cancel, cmd: cmd}, nil
}
