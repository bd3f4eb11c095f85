package playback

import (
	"context"
	"errors"
	"image"
	"sync"
	"testing"
	"time"

	"github.com/ivlev/scenecast/internal/logging"
	"github.com/ivlev/scenecast/internal/media"
	"github.com/ivlev/scenecast/internal/render"
	"github.com/ivlev/scenecast/internal/scene"
)

// recorderLog collects event names across fakes to check ordering.
type recorderLog struct {
	mu     sync.Mutex
	events []string
}

func (l *recorderLog) add(ev string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
}

func (l *recorderLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.events))
	copy(out, l.events)
	return out
}

type fakeVisuals struct {
	log      *recorderLog
	mu       sync.Mutex
	resolves int
	detaches int
}

func (f *fakeVisuals) Resolve(ctx context.Context, kind media.Kind, url string) {
	f.mu.Lock()
	f.resolves++
	f.mu.Unlock()
	if f.log != nil {
		f.log.add("resolve")
	}
}

func (f *fakeVisuals) Detach() {
	f.mu.Lock()
	f.detaches++
	f.mu.Unlock()
	if f.log != nil {
		f.log.add("detach")
	}
}

func (f *fakeVisuals) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resolves, f.detaches
}

type fakeGraph struct {
	log      *recorderLog
	startErr error

	mu    sync.Mutex
	ch    chan error
	plays int
	stops int
}

func (g *fakeGraph) PlayNarration(ctx context.Context, url string, gain float64) (<-chan error, error) {
	if g.startErr != nil {
		return nil, g.startErr
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.plays++
	g.ch = make(chan error, 1)
	return g.ch, nil
}

func (g *fakeGraph) StopNarration() {
	g.mu.Lock()
	g.stops++
	g.mu.Unlock()
	if g.log != nil {
		g.log.add("stop-narration")
	}
}

func (g *fakeGraph) playing() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.plays > 0
}

func (g *fakeGraph) fire(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ch <- err
}

type fakeComp struct{}

func (fakeComp) Compose(st render.SceneState, now time.Time) *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, 2, 2))
}

func (fakeComp) Release(*image.RGBA) {}

type countingSink struct {
	mu     sync.Mutex
	frames int
	err    error
}

func (s *countingSink) WriteFrame(*image.RGBA) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.frames++
	return nil
}

func (s *countingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

func newTestSession(t *testing.T, scenes []scene.Scene, v Visuals, g AudioGraph) *session {
	t.Helper()
	s := newSession(context.Background(), scenes, logging.NewNop())
	s.visuals = v
	s.graph = g
	s.comp = fakeComp{}
	s.fps = 60
	s.dwell = 30 * time.Millisecond
	return s
}

func waitDone(t *testing.T, s *session) {
	t.Helper()
	select {
	case <-s.done:
	case <-time.After(5 * time.Second):
		t.Fatal("session never finished")
	}
}

func TestAdvancesOnTimerWithoutAudio(t *testing.T) {
	scenes := []scene.Scene{
		{ID: "a", Narration: "one"},
		{ID: "b", Narration: "two"},
		{ID: "c", Narration: "three"},
	}
	v := &fakeVisuals{}
	g := &fakeGraph{}
	s := newTestSession(t, scenes, v, g)

	begin := time.Now()
	go s.run()
	waitDone(t, s)

	if got := s.State(); got != StateFinished {
		t.Errorf("state = %v, want finished", got)
	}
	if elapsed := time.Since(begin); elapsed < 3*s.dwell {
		t.Errorf("finished in %v, expected at least 3 dwells", elapsed)
	}
	resolves, detaches := v.counts()
	if resolves != 3 || detaches != 3 {
		t.Errorf("resolves/detaches = %d/%d, want 3/3", resolves, detaches)
	}
	if g.plays != 0 {
		t.Errorf("narration played %d times for audio-less scenes", g.plays)
	}
}

func TestAdvancesOnNarrationEnd(t *testing.T) {
	scenes := []scene.Scene{{ID: "a", AudioURL: "a.mp3", AudioDuration: 600}}
	v := &fakeVisuals{}
	g := &fakeGraph{}
	s := newTestSession(t, scenes, v, g)
	s.dwell = time.Hour // must never be the advance source here

	go s.run()

	deadline := time.After(2 * time.Second)
	for !g.playing() {
		select {
		case <-deadline:
			t.Fatal("narration never started")
		case <-time.After(time.Millisecond):
		}
	}
	g.fire(nil)

	waitDone(t, s)
	if s.State() != StateFinished {
		t.Errorf("state = %v, want finished", s.State())
	}
	if g.stops == 0 {
		t.Error("narration was not stopped at scene teardown")
	}
}

func TestNarrationStartFailureFallsBackToTimer(t *testing.T) {
	scenes := []scene.Scene{{ID: "a", AudioURL: "a.mp3", AudioDuration: 0.05}}
	v := &fakeVisuals{}
	g := &fakeGraph{startErr: errors.New("device busy")}
	s := newTestSession(t, scenes, v, g)
	s.dwell = time.Hour // the timer must come from audioDuration, not dwell

	go s.run()
	waitDone(t, s)

	if s.State() != StateFinished {
		t.Errorf("state = %v, want finished", s.State())
	}
}

func TestCancelMidSceneStopsFurtherSetup(t *testing.T) {
	scenes := make([]scene.Scene, 5)
	for i := range scenes {
		scenes[i] = scene.Scene{ID: string(rune('a' + i))}
	}
	v := &fakeVisuals{}
	g := &fakeGraph{}
	s := newTestSession(t, scenes, v, g)
	s.dwell = time.Hour

	finalized := make(chan struct{})
	s.finalize = func() { close(finalized) }

	go s.run()

	// Let scene 0 set up, then cancel mid-scene.
	deadline := time.After(2 * time.Second)
	for {
		if r, _ := v.counts(); r == 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("scene 0 never set up")
		case <-time.After(time.Millisecond):
		}
	}
	s.Cancel()
	waitDone(t, s)

	select {
	case <-finalized:
	default:
		t.Error("finalize did not run on cancellation")
	}
	resolves, detaches := v.counts()
	if resolves != 1 {
		t.Errorf("resolves = %d, scene 1 setup ran after cancellation", resolves)
	}
	if detaches != 1 {
		t.Errorf("detaches = %d, cancelled scene's media not stopped", detaches)
	}
	if s.State() != StateFinished {
		t.Errorf("state = %v, want finished", s.State())
	}
}

func TestTeardownOrderingMediaBeforeFinalize(t *testing.T) {
	log := &recorderLog{}
	scenes := []scene.Scene{{ID: "a", AudioURL: "a.mp3", AudioDuration: 600}}
	v := &fakeVisuals{log: log}
	g := &fakeGraph{log: log}
	s := newTestSession(t, scenes, v, g)
	s.finalize = func() { log.add("finalize") }

	go s.run()
	deadline := time.After(2 * time.Second)
	for !g.playing() {
		select {
		case <-deadline:
			t.Fatal("narration never started")
		case <-time.After(time.Millisecond):
		}
	}
	g.fire(nil)
	waitDone(t, s)

	events := log.snapshot()
	if len(events) == 0 || events[len(events)-1] != "finalize" {
		t.Fatalf("finalize not last: %v", events)
	}
	idxStop, idxDetach := -1, -1
	for i, ev := range events {
		switch ev {
		case "stop-narration":
			idxStop = i
		case "detach":
			idxDetach = i
		}
	}
	if idxStop == -1 || idxDetach == -1 || idxStop > idxDetach {
		t.Errorf("media teardown order wrong: %v", events)
	}
}

func TestFramesFlowToSinksAndFailingSinkIsDropped(t *testing.T) {
	scenes := []scene.Scene{{ID: "a"}}
	v := &fakeVisuals{}
	g := &fakeGraph{}
	s := newTestSession(t, scenes, v, g)
	s.dwell = 150 * time.Millisecond

	good := &countingSink{}
	bad := &countingSink{err: errors.New("pipe broke")}
	s.sinks = []FrameSink{bad, good}

	go s.run()
	waitDone(t, s)

	if good.count() == 0 {
		t.Error("healthy sink received no frames")
	}
	if len(s.sinks) != 1 {
		t.Errorf("failing sink not dropped: %d sinks remain", len(s.sinks))
	}
	if s.State() != StateFinished {
		t.Errorf("state = %v, want finished", s.State())
	}
}
