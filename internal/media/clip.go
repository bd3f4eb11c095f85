package media

import (
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os/exec"
	"sync"
)

// ClipStream decodes a motion clip into raw RGBA frames sized for the
// output canvas. The clip loops forever and its own audio track is
// discarded; narration and music come from the separate audio graph.
type ClipStream struct {
	cancel context.CancelFunc
	cmd    *exec.Cmd
	log    *slog.Logger

	width, height int

	mu    sync.Mutex
	frame *image.RGBA // latest decoded frame, nil until the first arrives
	err   error
}

// OpenClip starts a looping, silent decode of the clip at url. Frames
// arrive asynchronously; CopyFrame reports false until the first one does.
func OpenClip(ctx context.Context, url string, width, height, fps int, log *slog.Logger) (*ClipStream, error) {
	cctx, cancel := context.WithCancel(ctx)

	// Cover scaling happens in the decoder so every delivered frame is
	// already canvas-sized: scale up to fill, then center-crop.
	vf := fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d",
		width, height, width, height)

	cmd := exec.CommandContext(cctx, "ffmpeg",
		"-stream_loop", "-1",
		"-i", url,
		"-an",
		"-vf", vf,
		"-r", fmt.Sprintf("%d", fps),
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-v", "error",
		"-",
	)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("start clip decode %s: %w", url, err)
	}

	cs := &ClipStream{
		cancel: cancel,
		cmd:    cmd,
		log:    log,
		width:  width,
		height: height,
	}
	go cs.readLoop(stdout)
	return cs, nil
}

func (c *ClipStream) readLoop(r io.Reader) {
	buf := make([]byte, c.width*c.height*4)

	for {
		if _, err := io.ReadFull(r, buf); err != nil {
			c.mu.Lock()
			if c.err == nil {
				c.err = err
			}
			c.mu.Unlock()
			if err != io.EOF && err != io.ErrUnexpectedEOF {
				c.log.Debug("clip decode ended", "error", err)
			}
			return
		}

		c.mu.Lock()
		if c.frame == nil {
			c.frame = image.NewRGBA(image.Rect(0, 0, c.width, c.height))
		}
		copy(c.frame.Pix, buf)
		c.mu.Unlock()
	}
}

// CopyFrame copies the latest decoded frame into dst, which must be
// canvas-sized. It reports false while no frame has arrived yet, letting
// the renderer fall back instead of blocking.
func (c *ClipStream) CopyFrame(dst *image.RGBA) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.frame == nil {
		return false
	}
	copy(dst.Pix, c.frame.Pix)
	return true
}

// Close stops the decoder process and releases its pipes.
func (c *ClipStream) Close() {
	c.cancel()
	// Reap the process; the error is the expected kill signal.
	_ = c.cmd.Wait()
}
