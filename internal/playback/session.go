package playback

import (
	"context"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ivlev/scenecast/internal/media"
	"github.com/ivlev/scenecast/internal/render"
	"github.com/ivlev/scenecast/internal/scene"
	"github.com/ivlev/scenecast/internal/subtitle"
)

// session is one play/record invocation. All session state is mutated from
// the run goroutine only; the mutex guards the snapshots other goroutines
// read through State and SceneIndex.
type session struct {
	id     string
	scenes []scene.Scene

	visuals Visuals
	graph   AudioGraph
	comp    Compositor
	sinks   []FrameSink

	fps       int
	narrGain  float64
	dwell     time.Duration
	log       *slog.Logger
	onScene   func(index, total int, sc scene.Scene)
	finalize  func() // releases player-owned resources, runs once at teardown
	recording bool

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu    sync.Mutex
	state State
	index int
}

func newSession(ctx context.Context, scenes []scene.Scene, log *slog.Logger) *session {
	sctx, cancel := context.WithCancel(ctx)
	id := uuid.NewString()
	return &session{
		id:     id,
		scenes: scenes,
		fps:    30,
		dwell:  DefaultDwell,
		log:    log.With("session", id[:8]),
		ctx:    sctx,
		cancel: cancel,
		done:   make(chan struct{}),
		state:  StateIdle,
	}
}

// State reports the sequencer's current lifecycle position.
func (s *session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SceneIndex is the ordinal of the scene currently playing.
func (s *session) SceneIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// Cancel forces the session to Finished regardless of the current scene.
func (s *session) Cancel() {
	s.cancel()
}

// Wait blocks until the session has fully torn down.
func (s *session) Wait() {
	<-s.done
}

func (s *session) setScene(i int) {
	s.mu.Lock()
	s.index = i
	s.mu.Unlock()
	if s.onScene != nil {
		s.onScene(i, len(s.scenes), s.scenes[i])
	}
}

func (s *session) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// run is the session's single execution context: the sequencer and the
// render loop live in this goroutine, with narration completion, timers
// and ticks multiplexed through one select.
func (s *session) run() {
	defer close(s.done)
	defer s.teardown()

	s.setState(StatePlaying)
	s.log.Info("session started", "scenes", len(s.scenes), "recording", s.recording)

	ticker := time.NewTicker(time.Second / time.Duration(s.fps))
	defer ticker.Stop()

	for i := range s.scenes {
		s.setScene(i)
		if !s.playScene(s.scenes[i], ticker) {
			return // cancelled
		}
	}
}

// playScene runs one scene to completion. It returns false when the
// session was cancelled. Scene teardown (timer, narration, visual) always
// finishes before the caller sets up the next scene.
func (s *session) playScene(sc scene.Scene, ticker *time.Ticker) bool {
	start := time.Now()
	duration := sc.Duration(s.dwell.Seconds())

	st := render.SceneState{
		Start:    start,
		Duration: duration,
		Chunks:   subtitle.Chunks(sc.Narration, duration),
	}

	kind, url := media.Pick(sc)
	s.visuals.Resolve(s.ctx, kind, url)

	// Exactly one advance source is armed: the narration-end notification
	// when narration started, otherwise a fallback timer.
	var advance <-chan error
	var timer *time.Timer
	if sc.AudioURL != "" {
		ch, err := s.graph.PlayNarration(s.ctx, sc.AudioURL, s.narrGain)
		if err != nil {
			s.log.Warn("narration failed to start, falling back to timer",
				"scene", sc.ID, "error", err)
			timer = time.NewTimer(time.Duration(duration * float64(time.Second)))
		} else {
			advance = ch
		}
	} else {
		timer = time.NewTimer(s.dwell)
	}

	stopScene := func() {
		if timer != nil {
			timer.Stop()
		}
		s.graph.StopNarration()
		s.visuals.Detach()
	}

	var timerC <-chan time.Time
	if timer != nil {
		timerC = timer.C
	}

	for {
		select {
		case <-s.ctx.Done():
			stopScene()
			return false

		case err := <-advance:
			if err != nil {
				s.log.Warn("narration ended with error", "scene", sc.ID, "error", err)
			}
			stopScene()
			return true

		case <-timerC:
			stopScene()
			return true

		case now := <-ticker.C:
			frame := s.comp.Compose(st, now)
			s.writeFrame(frame)
			s.comp.Release(frame)
		}
	}
}

// writeFrame delivers a frame to every sink. A failing sink is dropped so
// one broken consumer cannot stall the loop; the recorder's own Stop
// surfaces its failure at teardown.
func (s *session) writeFrame(frame *image.RGBA) {
	for i := 0; i < len(s.sinks); i++ {
		if err := s.sinks[i].WriteFrame(frame); err != nil {
			s.log.Warn("frame sink failed, detaching it", "error", err)
			s.sinks = append(s.sinks[:i], s.sinks[i+1:]...)
			i--
		}
	}
}

// teardown releases everything in the mandated order: per-scene timers and
// media are already stopped by playScene; finalize stops the audio graph
// and encoder; returning ends the render loop.
func (s *session) teardown() {
	if s.finalize != nil {
		s.finalize()
	}
	s.setState(StateFinished)
}
