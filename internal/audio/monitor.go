package audio

import (
	"context"
	"fmt"
	"io"
	"os/exec"
)

// monitorSink plays the mixed stream on the default output device through
// an ffplay child process reading PCM from stdin.
type monitorSink struct {
	io.WriteCloser
	cancel context.CancelFunc
	cmd    *exec.Cmd
}

// NewMonitorSink opens the live playback sink. Callers treat failure as
// non-fatal: a headless host records fine without a monitor.
func NewMonitorSink(ctx context.Context) (io.WriteCloser, error) {
	cctx, cancel := context.WithCancel(ctx)

	cmd := exec.CommandContext(cctx, "ffplay",
		"-f", "s16le",
		"-ar", fmt.Sprintf("%d", SampleRate),
		"-ch_layout", "stereo",
		"-i", "-",
		"-nodisp",
		"-autoexit",
		"-v", "quiet",
	)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		cancel()
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("start audio monitor: %w", err)
	}
	return &monitorSink{WriteCloser: stdin, cancel: cancel, cmd: cmd}, nil
}

func (s *monitorSink) Close() error {
	_ = s.WriteCloser.Close()
	s.cancel()
	return s.cmd.Wait()
}
