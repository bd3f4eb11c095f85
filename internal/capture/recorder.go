// Package capture encodes a playback session into a single downloadable
// file: the composited frame stream plus the mixed audio stream go into
// one WebM encode whose output fragments accumulate until a successful
// stop finalizes them.
package capture

import (
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Recorder is one recording session. It never drives playback timing: it
// observes the same frames and audio the live session already produces.
type Recorder struct {
	width, height, fps int
	quality            int
	codecs             Codecs
	outDir             string
	log                *slog.Logger

	cancel  context.CancelFunc
	cmd     *exec.Cmd
	videoIn io.WriteCloser
	audioIn *os.File
	feeder  *frameFeeder
	buf     *Buffer
	group   *errgroup.Group

	started time.Time
}

// NewRecorder establishes a recording session. ErrNoCodec is returned when
// the runtime has no acceptable encoder; that is fatal to recording only.
func NewRecorder(width, height, fps, quality int, outDir string, log *slog.Logger) (*Recorder, error) {
	codecs, err := DetectCodecs()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &Recorder{
		width:   width,
		height:  height,
		fps:     fps,
		quality: quality,
		codecs:  codecs,
		outDir:  outDir,
		buf:     &Buffer{},
		log:     log,
	}, nil
}

// Start spawns the encoder. Raw frames go in on stdin, mixed PCM on an
// inherited pipe, and encoded WebM fragments come back on stdout into the
// recording buffer.
func (r *Recorder) Start(ctx context.Context) error {
	cctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	audioR, audioW, err := os.Pipe()
	if err != nil {
		cancel()
		return err
	}

	args := []string{
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", r.width, r.height),
		"-framerate", fmt.Sprintf("%d", r.fps),
		"-i", "pipe:0",
		"-f", "s16le",
		"-ar", "48000",
		"-ac", "2",
		"-i", "pipe:3",
		"-map", "0:v",
		"-map", "1:a",
		"-c:v", r.codecs.Video,
		"-pix_fmt", "yuv420p",
		"-deadline", "realtime",
	}
	if r.quality > 0 {
		args = append(args, "-crf", fmt.Sprintf("%d", r.quality), "-b:v", "0")
	}
	args = append(args,
		"-c:a", r.codecs.Audio,
		"-b:a", "128k",
		"-f", "webm",
		"-v", "error",
		"pipe:1",
	)

	cmd := exec.CommandContext(cctx, "ffmpeg", args...)
	cmd.ExtraFiles = []*os.File{audioR}

	videoIn, err := cmd.StdinPipe()
	if err != nil {
		cancel()
		audioR.Close()
		audioW.Close()
		return err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		audioR.Close()
		audioW.Close()
		return err
	}

	if err := cmd.Start(); err != nil {
		cancel()
		audioR.Close()
		audioW.Close()
		return fmt.Errorf("start encoder: %w", err)
	}
	// The child owns its copy of the read end now.
	audioR.Close()

	r.cmd = cmd
	r.videoIn = videoIn
	r.audioIn = audioW
	r.started = time.Now()

	r.feeder = newFrameFeeder(r.fps)
	go r.feeder.run(videoIn)

	r.group = &errgroup.Group{}
	r.group.Go(func() error {
		chunk := make([]byte, 32*1024)
		for {
			n, err := stdout.Read(chunk)
			if n > 0 {
				r.buf.Append(chunk[:n])
			}
			if err != nil {
				if err == io.EOF {
					return nil
				}
				return err
			}
		}
	})

	r.log.Info("recording started",
		"video_codec", r.codecs.Video, "audio_codec", r.codecs.Audio,
		"size", fmt.Sprintf("%dx%d", r.width, r.height), "fps", r.fps)
	return nil
}

// WriteFrame hands one composited frame to the recording. It never blocks
// on the encoder: the frame is staged latest-wins and a feeder goroutine
// paces writes at the output rate, duplicating the last frame when the
// playback loop skipped a tick.
func (r *Recorder) WriteFrame(frame *image.RGBA) error {
	return r.feeder.submit(frame.Pix)
}

// AudioSink is the capture destination for the mixed PCM stream; attach it
// to the mixer while recording.
func (r *Recorder) AudioSink() io.Writer {
	return r.audioIn
}

// Stop finalizes the session: inputs are closed, the encoder drains, and
// the buffered fragments are concatenated into one file. The file is only
// produced on a fully successful stop — a failed encode yields no partial
// download.
func (r *Recorder) Stop() (string, error) {
	// Halt the feeder first; closing its pipe unblocks any in-flight write.
	r.feeder.halt()
	r.videoIn.Close()
	feedErr := r.feeder.wait()
	r.audioIn.Close()

	readErr := r.group.Wait()
	waitErr := r.cmd.Wait()
	r.cancel()

	if waitErr != nil {
		return "", fmt.Errorf("encoder failed: %w", waitErr)
	}
	if feedErr != nil {
		return "", fmt.Errorf("feed encoder input: %w", feedErr)
	}
	if readErr != nil {
		return "", fmt.Errorf("read encoder output: %w", readErr)
	}

	name := fmt.Sprintf("presentation_%s_%s.webm",
		r.started.Format("2006-01-02_15-04-05"), uuid.NewString()[:8])
	path := filepath.Join(r.outDir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := r.buf.WriteTo(f); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", err
	}

	r.log.Info("recording finalized", "path", path,
		"bytes", r.buf.Len(), "fragments", r.buf.Fragments(),
		"duration", time.Since(r.started).Round(time.Second))
	return path, nil
}

// Abort tears the session down without producing a file.
func (r *Recorder) Abort() {
	if r.feeder != nil {
		r.feeder.halt()
	}
	if r.videoIn != nil {
		r.videoIn.Close()
	}
	if r.feeder != nil {
		_ = r.feeder.wait()
	}
	if r.audioIn != nil {
		r.audioIn.Close()
	}
	if r.cancel != nil {
		r.cancel()
	}
	if r.cmd != nil {
		_ = r.cmd.Wait()
	}
	if r.group != nil {
		_ = r.group.Wait()
	}
}
