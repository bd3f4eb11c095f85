package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/ivlev/scenecast/internal/scene"
)

// statusPrinter writes playback progress. On a terminal the scene line is
// rewritten in place; otherwise each scene gets its own line so logs stay
// readable.
type statusPrinter struct {
	w        io.Writer
	terminal bool
	lineLen  int
}

func newStatusPrinter(w io.Writer) *statusPrinter {
	return &statusPrinter{w: w, terminal: isTerminal(w)}
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func (s *statusPrinter) Scene(index, total int, sc scene.Scene) {
	label := sc.Narration
	if r := []rune(label); len(r) > 40 {
		label = string(r[:40]) + "..."
	}
	line := fmt.Sprintf("[%d/%d] %s", index+1, total, label)
	if !s.terminal {
		fmt.Fprintln(s.w, line)
		return
	}
	s.rewrite(line)
}

// Done clears any in-place scene line before final messages are printed.
func (s *statusPrinter) Done() {
	if s.terminal && s.lineLen > 0 {
		s.rewrite("")
		fmt.Fprint(s.w, "\r")
		s.lineLen = 0
	}
}

func (s *statusPrinter) Println(msg string) {
	s.Done()
	fmt.Fprintln(s.w, msg)
}

func (s *statusPrinter) rewrite(line string) {
	pad := ""
	if n := s.lineLen - len(line); n > 0 {
		pad = strings.Repeat(" ", n)
	}
	fmt.Fprint(s.w, "\r"+line+pad)
	s.lineLen = len(line)
}
