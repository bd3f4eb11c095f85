package audio

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"
)

// Mixer is the session's audio graph. Two source nodes — background music
// and per-scene narration — are mixed into one PCM stream delivered to
// every attached sink: the live monitor, and the capture sink while a
// recording is running. Mixing is paced by a wall-clock ticker so capture
// stays aligned with the frame stream.
type Mixer struct {
	log *slog.Logger

	mu        sync.Mutex
	music     *source
	narration *source
	sinks     []io.Writer

	cancel  context.CancelFunc
	stopped chan struct{}
	once    sync.Once
}

// NewMixer creates an idle mixer; Start begins the pump.
func NewMixer(log *slog.Logger) *Mixer {
	return &Mixer{log: log, stopped: make(chan struct{})}
}

// Start runs the mix pump until ctx is cancelled or Close is called.
func (m *Mixer) Start(ctx context.Context) {
	pctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	go m.pump(pctx)
}

// AddSink attaches a destination for the mixed stream.
func (m *Mixer) AddSink(w io.Writer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sinks = append(m.sinks, w)
}

// RemoveSink detaches a previously added sink.
func (m *Mixer) RemoveSink(w io.Writer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, s := range m.sinks {
		if s == w {
			m.sinks = append(m.sinks[:i], m.sinks[i+1:]...)
			return
		}
	}
}

// PlayMusic starts the looping background music node. It persists across
// scene boundaries for the whole session.
func (m *Mixer) PlayMusic(ctx context.Context, url string, gain, fadeIn float64) error {
	r, err := decodePCM(ctx, url, true)
	if err != nil {
		return err
	}
	src := newSource("music", r, gain, fadeIn)
	go src.readLoop()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.music != nil {
		m.music.stop()
	}
	m.music = src
	return nil
}

// PlayNarration starts the narration node for a scene, replacing any
// previous one. The returned channel fires exactly once when the narration
// drains (nil) or its decode fails mid-stream (the error).
func (m *Mixer) PlayNarration(ctx context.Context, url string, gain float64) (<-chan error, error) {
	r, err := decodePCM(ctx, url, false)
	if err != nil {
		return nil, err
	}
	src := newSource("narration", r, gain, 0)
	go src.readLoop()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.narration != nil {
		m.narration.stop()
	}
	m.narration = src
	return src.done, nil
}

// StopNarration silences and releases the current narration node, if any.
func (m *Mixer) StopNarration() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.narration != nil {
		m.narration.stop()
		m.narration = nil
	}
}

// Close tears the graph down: both source nodes are stopped and the pump
// exits. Sinks are not closed; their owners release them.
func (m *Mixer) Close() {
	m.once.Do(func() {
		m.mu.Lock()
		if m.music != nil {
			m.music.stop()
			m.music = nil
		}
		if m.narration != nil {
			m.narration.stop()
			m.narration = nil
		}
		m.mu.Unlock()

		if m.cancel != nil {
			m.cancel()
			<-m.stopped
		}
	})
}

func (m *Mixer) pump(ctx context.Context) {
	defer close(m.stopped)

	ticker := time.NewTicker(FrameDuration)
	defer ticker.Stop()

	acc := make([]int32, FrameSamples)
	out := make([]byte, FrameBytes)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		for i := range acc {
			acc[i] = 0
		}

		m.mu.Lock()
		m.mixSource(m.music, acc)
		if m.mixSource(m.narration, acc) {
			m.narration = nil
		}
		sinks := make([]io.Writer, len(m.sinks))
		copy(sinks, m.sinks)
		m.mu.Unlock()

		clipFrame(acc, out)
		for _, w := range sinks {
			if _, err := w.Write(out); err != nil {
				m.log.Debug("audio sink write failed", "error", err)
				m.RemoveSink(w)
			}
		}
	}
}

// mixSource folds one frame of src into acc, reporting true when the
// source just drained. A source with no frame ready contributes silence
// for this tick rather than stalling the pump.
func (m *Mixer) mixSource(src *source, acc []int32) bool {
	if src == nil || src.finished {
		return false
	}
	select {
	case frame, ok := <-src.frames:
		if !ok {
			m.log.Debug("audio node drained", "node", src.name)
			src.finish(src.readErr())
			return true
		}
		mixInto(acc, frame, len(frame), src.effectiveGain())
		src.samplesRead += FrameSize
	default:
	}
	return false
}

// normalizeEOF maps the expected end-of-stream read errors to nil.
func normalizeEOF(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return nil
	}
	return err
}
