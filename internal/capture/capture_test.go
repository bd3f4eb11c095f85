package capture

import (
	"bytes"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestPickCodecsPrefersVP9(t *testing.T) {
	encoders := " V..... libvpx               libvpx VP8\n V..... libvpx-vp9           libvpx VP9\n A..... libopus              libopus Opus\n"
	c, err := pickCodecs(encoders)
	if err != nil {
		t.Fatalf("pickCodecs failed: %v", err)
	}
	if c.Video != "libvpx-vp9" {
		t.Errorf("video codec = %q, want libvpx-vp9", c.Video)
	}
	if c.Audio != "libopus" {
		t.Errorf("audio codec = %q, want libopus", c.Audio)
	}
}

func TestPickCodecsFallsBack(t *testing.T) {
	encoders := " V..... libvpx               libvpx VP8\n A..... libvorbis            libvorbis\n"
	c, err := pickCodecs(encoders)
	if err != nil {
		t.Fatalf("pickCodecs failed: %v", err)
	}
	if c.Video != "libvpx" || c.Audio != "libvorbis" {
		t.Errorf("codecs = %+v, want libvpx/libvorbis", c)
	}
}

func TestPickCodecsNoneAvailable(t *testing.T) {
	_, err := pickCodecs(" V..... mpeg4\n")
	if !errors.Is(err, ErrNoCodec) {
		t.Errorf("error = %v, want ErrNoCodec", err)
	}
}

func TestBufferOrderAndConcat(t *testing.T) {
	var b Buffer
	b.Append([]byte("one-"))
	b.Append([]byte("two-"))
	b.Append([]byte("three"))

	if b.Fragments() != 3 {
		t.Errorf("fragments = %d, want 3", b.Fragments())
	}
	if b.Len() != 13 {
		t.Errorf("len = %d, want 13", b.Len())
	}

	var out bytes.Buffer
	n, err := b.WriteTo(&out)
	if err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}
	if n != 13 {
		t.Errorf("written = %d, want 13", n)
	}
	if out.String() != "one-two-three" {
		t.Errorf("concatenated = %q, fragments reordered or dropped", out.String())
	}
}

func TestBufferAppendCopies(t *testing.T) {
	var b Buffer
	chunk := []byte("abcd")
	b.Append(chunk)
	chunk[0] = 'X' // recorder reuses its read buffer between fragments

	var out bytes.Buffer
	if _, err := b.WriteTo(&out); err != nil {
		t.Fatal(err)
	}
	if out.String() != "abcd" {
		t.Errorf("fragment aliased the caller's buffer: %q", out.String())
	}
}

// gatedWriter blocks every Write until release is closed, standing in for
// an encoder that cannot keep pace.
type gatedWriter struct {
	release chan struct{}
}

func (w *gatedWriter) Write(p []byte) (int, error) {
	<-w.release
	return len(p), nil
}

func TestFeederSubmitNeverBlocksOnStalledWriter(t *testing.T) {
	w := &gatedWriter{release: make(chan struct{})}
	f := newFrameFeeder(60)
	go f.run(w)

	frame := make([]byte, 64)
	start := time.Now()
	for i := 0; i < 20; i++ {
		if err := f.submit(frame); err != nil {
			t.Fatalf("submit %d failed: %v", i, err)
		}
		time.Sleep(5 * time.Millisecond)
	}
	// 20 submits against a fully stalled writer must cost only memcpys,
	// not pipe drains.
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("submits took %v against a stalled writer", elapsed)
	}

	f.halt()
	close(w.release) // unblock the in-flight write, like closing the pipe
	if err := f.wait(); err != nil {
		t.Errorf("feeder reported error on clean halt: %v", err)
	}
}

// recordingWriter counts writes and keeps the newest payload.
type recordingWriter struct {
	mu     sync.Mutex
	writes int
	last   []byte
}

func (w *recordingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.writes++
	w.last = append(w.last[:0], p...)
	return len(p), nil
}

func (w *recordingWriter) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.writes
}

func TestFeederDuplicatesLatestFrame(t *testing.T) {
	w := &recordingWriter{}
	f := newFrameFeeder(100)
	go f.run(w)

	frame := []byte("only-frame")
	if err := f.submit(frame); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	// One submit, many intervals: the feeder must keep the CFR stream fed
	// by repeating the newest frame.
	deadline := time.After(2 * time.Second)
	for w.count() < 3 {
		select {
		case <-deadline:
			t.Fatalf("only %d writes from one submitted frame", w.count())
		case <-time.After(5 * time.Millisecond):
		}
	}

	f.halt()
	_ = f.wait()

	w.mu.Lock()
	defer w.mu.Unlock()
	if string(w.last) != "only-frame" {
		t.Errorf("duplicated frame = %q, want the submitted one", w.last)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("pipe gone")
}

func TestFeederSurfacesWriteErrorToSubmit(t *testing.T) {
	f := newFrameFeeder(100)
	go f.run(failingWriter{})

	if err := f.submit([]byte("x")); err != nil {
		t.Fatalf("first submit failed before any write: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		if err := f.submit([]byte("x")); err != nil {
			break // sticky error reached the producer
		}
		select {
		case <-deadline:
			t.Fatal("write error never surfaced through submit")
		case <-time.After(5 * time.Millisecond):
		}
	}

	if err := f.wait(); err == nil {
		t.Error("wait returned nil after a failed write")
	}
}
