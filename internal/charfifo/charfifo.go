// Package charfifo implements the buffered character FIFO spec.md section
// 6 specifies as the compiler driver's sole I/O surface: preview(), get(),
// eol(), skipEOL(), skip(charset), token(charset), line(), empty(). It
// also backs the system module's sio/serr slots (read/write and
// write-only variants over an underlying io.Reader/io.Writer).
//
// Grounded on the teacher's internal/lexer/scanner.go buffering style (a
// string source with start/current/line cursors) generalized from an
// in-memory string to a streaming io.Reader, since spec.md's fifo reads
// from a source path rather than a pre-slurped string.
package charfifo

import (
	"bufio"
	"io"
	"strings"

	"sentra/internal/rterr"
)

// Fifo is a read side buffered character stream with one-rune lookahead
// via preview, grounded on the teacher's peek()/advance() pair but backed
// by a bufio.Reader so the source need not already be in memory.
type Fifo struct {
	r       *bufio.Reader
	line    int
	lookRun rune
	lookSz  int
	haveLook bool
	atEOF   bool
}

// Open wraps r as a Fifo, starting at line 1 (spec.md's line() is
// 1-based, matching the teacher's scanner.line starting at 1).
func Open(r io.Reader) *Fifo {
	return &Fifo{r: bufio.NewReader(r), line: 1}
}

// OpenString is a convenience constructor for scratch/const-eval sources
// and tests, mirroring the teacher's NewScanner(source string).
func OpenString(s string) *Fifo {
	return Open(strings.NewReader(s))
}

func (f *Fifo) fill() {
	if f.haveLook || f.atEOF {
		return
	}
	r, sz, err := f.r.ReadRune()
	if err != nil {
		f.atEOF = true
		return
	}
	f.lookRun, f.lookSz, f.haveLook = r, sz, true
}

// Preview returns the next rune without consuming it, and ok=false at
// end of input.
func (f *Fifo) Preview() (rune, bool) {
	f.fill()
	if !f.haveLook {
		return 0, false
	}
	return f.lookRun, true
}

// Get consumes and returns the next rune, tracking line number.
func (f *Fifo) Get() (rune, bool) {
	f.fill()
	if !f.haveLook {
		return 0, false
	}
	r := f.lookRun
	f.haveLook = false
	if r == '\n' {
		f.line++
	}
	return r, true
}

// Empty reports whether the fifo has no more input (spec.md's empty()).
func (f *Fifo) Empty() bool {
	f.fill()
	return !f.haveLook
}

// Eol reports whether the next rune is a line terminator, without
// consuming it.
func (f *Fifo) Eol() bool {
	r, ok := f.Preview()
	return !ok || r == '\n' || r == '\r'
}

// SkipEOL consumes a single line terminator (\r, \n, or \r\n), advancing
// line(). A no-op if not positioned at one.
func (f *Fifo) SkipEOL() {
	r, ok := f.Preview()
	if !ok {
		return
	}
	if r == '\r' {
		f.Get()
		if r2, ok2 := f.Preview(); ok2 && r2 == '\n' {
			f.Get()
		} else {
			f.line++
		}
		return
	}
	if r == '\n' {
		f.Get()
	}
}

// Skip consumes runes while they belong to charset, per spec.md's
// skip(charset) (used to eat whitespace/comment runs between tokens).
func (f *Fifo) Skip(charset string) {
	for {
		r, ok := f.Preview()
		if !ok || !strings.ContainsRune(charset, r) {
			return
		}
		f.Get()
	}
}

// Token consumes and returns the maximal run of runes belonging to
// charset (spec.md's token(charset), used by the lexer to pull an
// identifier or number lexeme in one call).
func (f *Fifo) Token(charset string) string {
	var b strings.Builder
	for {
		r, ok := f.Preview()
		if !ok || !strings.ContainsRune(charset, r) {
			break
		}
		f.Get()
		b.WriteRune(r)
	}
	return b.String()
}

// Line returns the current 1-based line number, for diagnostics
// (rterr.Location.Line) and LineNum opcode emission.
func (f *Fifo) Line() int { return f.line }

// Sink is the write-only half of the FIFO pair backing serr and the
// write side of sio: a plain io.Writer that keeps no line count (serr
// and sio are independent streams per spec.md 6).
type Sink struct {
	w io.Writer
}

func NewSink(w io.Writer) *Sink { return &Sink{w: w} }

func (s *Sink) Write(p []byte) (int, error) {
	n, err := s.w.Write(p)
	if err != nil {
		return n, rterr.Wrap(rterr.SystemError, err, "fifo write")
	}
	return n, nil
}

func (s *Sink) WriteString(str string) error {
	_, err := io.WriteString(s.w, str)
	if err != nil {
		return rterr.Wrap(rterr.SystemError, err, "fifo write")
	}
	return nil
}

// DuplexFifo is sio: a read side (Fifo) and write side (Sink) over the
// same process stream pair (stdin/stdout), per spec.md 6 "sio (read/write
// char fifo over stdin/stdout)".
type DuplexFifo struct {
	*Fifo
	*Sink
}

func NewDuplex(r io.Reader, w io.Writer) *DuplexFifo {
	return &DuplexFifo{Fifo: Open(r), Sink: NewSink(w)}
}
