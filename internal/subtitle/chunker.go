package subtitle

import (
	"strings"
	"unicode/utf8"
)

// Chunk is one timed caption span within a scene's narration.
type Chunk struct {
	Text  string
	Start float64 // seconds from scene start
	End   float64
}

// DefaultDuration is assumed when the narration length is unknown.
const DefaultDuration = 5.0

// Chunks splits narration text into timed caption spans covering exactly
// [0, duration]. The text is cut on runs of sentence-ending punctuation
// (Latin and CJK), punctuation staying attached to the preceding segment.
// Each segment's span is proportional to its rune count, so chunks are
// contiguous, non-overlapping and the last one ends at duration.
func Chunks(text string, duration float64) []Chunk {
	if duration <= 0 {
		duration = DefaultDuration
	}

	segs := segments(text)

	total := 0
	for _, s := range segs {
		total += utf8.RuneCountInString(s)
	}
	if total == 0 {
		// Nothing to weight by; the single (possibly empty) segment
		// spans the whole duration.
		return []Chunk{{Text: segs[0], Start: 0, End: duration}}
	}

	chunks := make([]Chunk, 0, len(segs))
	start := 0.0
	for i, s := range segs {
		end := start + float64(utf8.RuneCountInString(s))/float64(total)*duration
		if i == len(segs)-1 {
			// Absorb float rounding so the partition closes at duration.
			end = duration
		}
		chunks = append(chunks, Chunk{Text: s, Start: start, End: end})
		start = end
	}
	return chunks
}

// Active returns the chunk covering narration position t, if any.
func Active(chunks []Chunk, t float64) (Chunk, bool) {
	for _, c := range chunks {
		if t >= c.Start && t <= c.End {
			return c, true
		}
	}
	return Chunk{}, false
}

func segments(text string) []string {
	var segs []string
	var cur strings.Builder

	runes := []rune(text)
	for i, r := range runes {
		cur.WriteRune(r)
		if isTerminator(r) && (i+1 == len(runes) || !isTerminator(runes[i+1])) {
			if s := strings.TrimSpace(cur.String()); s != "" {
				segs = append(segs, s)
			}
			cur.Reset()
		}
	}
	if s := strings.TrimSpace(cur.String()); s != "" {
		segs = append(segs, s)
	}

	if len(segs) == 0 {
		segs = []string{strings.TrimSpace(text)}
	}
	return segs
}

func isTerminator(r rune) bool {
	switch r {
	case '.', '!', '?', '…', ';', '。', '！', '？', '；':
		return true
	}
	return false
}
