package capture

import (
	"io"
	"sync"
)

// Buffer accumulates opaque encoded fragments in arrival order. It is
// owned exclusively by the recorder; nothing else inspects the fragments
// until they are concatenated into the final file.
type Buffer struct {
	mu    sync.Mutex
	frags [][]byte
	size  int
}

// Append stores a copy of the fragment.
func (b *Buffer) Append(p []byte) {
	frag := make([]byte, len(p))
	copy(frag, p)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.frags = append(b.frags, frag)
	b.size += len(frag)
}

// Len is the total byte count across all fragments.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size
}

// Fragments is the number of fragments appended so far.
func (b *Buffer) Fragments() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.frags)
}

// WriteTo concatenates every fragment, in arrival order, into w.
func (b *Buffer) WriteTo(w io.Writer) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var written int64
	for _, frag := range b.frags {
		n, err := w.Write(frag)
		written += int64(n)
		if err != nil {
			return written, err
		}
	}
	return written, nil
}
