package playback

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/ivlev/scenecast/internal/audio"
	"github.com/ivlev/scenecast/internal/capture"
	"github.com/ivlev/scenecast/internal/config"
	"github.com/ivlev/scenecast/internal/media"
	"github.com/ivlev/scenecast/internal/render"
	"github.com/ivlev/scenecast/internal/scene"
)

// musicFadeIn ramps the background music up at session start.
const musicFadeIn = 5.0

// Options select per-run behavior.
type Options struct {
	// Record wraps playback in a recording session producing one WebM file.
	Record bool
	// OnScene fires at every scene entry; used for status output.
	OnScene func(index, total int, sc scene.Scene)
}

// Result is what a finished session leaves behind.
type Result struct {
	// RecordingPath is the finalized file, set only when recording
	// succeeded end to end.
	RecordingPath string
}

// Player owns the single-session invariant: at most one session is active,
// and starting a new one tears the prior one down completely before the
// new session's scene-0 setup begins.
type Player struct {
	cfg *config.Config
	log *slog.Logger

	// dwell bounds scenes without narration; a test hook shortens it.
	dwell time.Duration

	mu     sync.Mutex
	active *session
}

// NewPlayer creates a player for the given configuration.
func NewPlayer(cfg *config.Config, log *slog.Logger) *Player {
	return &Player{cfg: cfg, log: log, dwell: DefaultDwell}
}

// Run plays the scene list to completion, blocking until the session has
// finished or ctx is cancelled. Per-scene errors are absorbed by the
// fallback policy; only session establishment and recording finalization
// can fail.
func (p *Player) Run(ctx context.Context, scenes []scene.Scene, opts Options) (*Result, error) {
	if len(scenes) == 0 {
		return nil, errors.New("no scenes to play")
	}

	p.supersede()

	sess := newSession(ctx, scenes, p.log)
	sess.fps = p.cfg.FPS
	sess.dwell = p.dwell
	sess.narrGain = p.cfg.NarrationVolume
	sess.onScene = opts.OnScene

	resolver := media.NewResolver(p.cfg.Width, p.cfg.Height, p.cfg.FPS, p.log)
	sess.visuals = resolver

	renderer, err := render.New(p.cfg.Width, p.cfg.Height, resolver, p.log)
	if err != nil {
		resolver.Close()
		sess.cancel()
		return nil, err
	}
	sess.comp = renderer

	mixer := audio.NewMixer(p.log)
	sess.graph = mixer

	var monitor io.WriteCloser
	if !p.cfg.Muted {
		monitor, err = audio.NewMonitorSink(context.Background())
		if err != nil {
			// A headless host plays (and records) fine without one.
			p.log.Warn("audio monitor unavailable", "error", err)
			monitor = nil
		} else {
			mixer.AddSink(monitor)
		}
	}

	var rec *capture.Recorder
	if opts.Record {
		rec, err = capture.NewRecorder(p.cfg.Width, p.cfg.Height, p.cfg.FPS,
			p.cfg.Quality, p.cfg.OutputDir, p.log)
		if err == nil {
			// The encoder outlives ctx on purpose: cancellation still
			// finalizes the file through Stop in the teardown path.
			err = rec.Start(context.Background())
		}
		if err != nil {
			mixer.Close()
			if monitor != nil {
				monitor.Close()
			}
			resolver.Close()
			sess.cancel()
			return nil, fmt.Errorf("recording unavailable: %w", err)
		}
		mixer.AddSink(rec.AudioSink())
		sess.sinks = append(sess.sinks, rec)
		sess.recording = true
	}

	mixer.Start(sess.ctx)
	if p.cfg.MusicPath != "" {
		if merr := mixer.PlayMusic(sess.ctx, p.cfg.MusicPath, p.cfg.MusicVolume, musicFadeIn); merr != nil {
			p.log.Warn("background music unavailable", "error", merr)
		}
	}

	result := &Result{}
	var recErr error
	sess.finalize = func() {
		// Per-scene timers and media are already stopped; now the audio
		// graph, then the encoder, then the visual pipeline.
		mixer.Close()
		if monitor != nil {
			monitor.Close()
		}
		if rec != nil {
			path, err := rec.Stop()
			if err != nil {
				recErr = err
			} else {
				result.RecordingPath = path
			}
		}
		resolver.Close()
	}

	p.mu.Lock()
	p.active = sess
	p.mu.Unlock()

	go sess.run()
	sess.Wait()

	p.mu.Lock()
	if p.active == sess {
		p.active = nil
	}
	p.mu.Unlock()

	if recErr != nil {
		return nil, fmt.Errorf("recording failed: %w", recErr)
	}
	return result, nil
}

// supersede cancels and fully drains any active session.
func (p *Player) supersede() {
	p.mu.Lock()
	prev := p.active
	p.mu.Unlock()
	if prev != nil {
		p.log.Info("superseding active session", "session", prev.id[:8])
		prev.Cancel()
		prev.Wait()
	}
}
