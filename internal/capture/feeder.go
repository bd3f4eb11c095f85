package capture

import (
	"io"
	"sync"
	"time"
)

// frameFeeder decouples the playback loop from the encoder's stdin. Submit
// stores the newest frame under a mutex and returns immediately; a feeder
// goroutine writes the stored frame downstream at the fixed output rate,
// duplicating it whenever playback produced no newer one. A stalled
// encoder therefore delays the feeder, never the sequencer, and the CFR
// stream still carries exactly one frame per interval.
type frameFeeder struct {
	interval time.Duration

	mu     sync.Mutex
	latest []byte
	err    error

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func newFrameFeeder(fps int) *frameFeeder {
	return &frameFeeder{
		interval: time.Second / time.Duration(fps),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// submit publishes pix as the newest frame. It only copies memory; the
// sticky write error from the feeder goroutine is surfaced so the caller
// can stop producing.
func (f *frameFeeder) submit(pix []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if len(f.latest) != len(pix) {
		f.latest = make([]byte, len(pix))
	}
	copy(f.latest, pix)
	return nil
}

// run pushes frames into w until stopped or the writer fails. The frame is
// snapshotted under the lock and written outside it, so submit stays
// non-blocking even mid-write.
func (f *frameFeeder) run(w io.Writer) {
	defer close(f.done)

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	var scratch []byte
	for {
		select {
		case <-f.stop:
			return
		case <-ticker.C:
		}

		f.mu.Lock()
		if f.latest == nil {
			f.mu.Unlock()
			continue
		}
		if len(scratch) != len(f.latest) {
			scratch = make([]byte, len(f.latest))
		}
		copy(scratch, f.latest)
		f.mu.Unlock()

		if _, err := w.Write(scratch); err != nil {
			select {
			case <-f.stop:
				// The pipe was closed under us during shutdown.
			default:
				f.mu.Lock()
				if f.err == nil {
					f.err = err
				}
				f.mu.Unlock()
			}
			return
		}
	}
}

// halt signals the feeder to stop without waiting. The caller may then
// close the downstream writer to unblock an in-flight write before wait.
func (f *frameFeeder) halt() {
	f.stopOnce.Do(func() { close(f.stop) })
}

// wait blocks until the feeder goroutine has exited and reports its
// sticky write error, if any.
func (f *frameFeeder) wait() error {
	<-f.done
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}
