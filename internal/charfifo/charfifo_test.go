package charfifo

import (
	"strings"
	"testing"
)

func TestPreviewDoesNotConsume(t *testing.T) {
	f := OpenString("ab")
	r, ok := f.Preview()
	if !ok || r != 'a' {
		t.Fatalf("Preview() = (%q, %v), want ('a', true)", r, ok)
	}
	r2, _ := f.Preview()
	if r2 != 'a' {
		t.Error("a second Preview() without Get() should return the same rune")
	}
}

func TestGetConsumesInOrder(t *testing.T) {
	f := OpenString("xy")
	r, ok := f.Get()
	if !ok || r != 'x' {
		t.Fatalf("first Get() = (%q, %v), want ('x', true)", r, ok)
	}
	r, ok = f.Get()
	if !ok || r != 'y' {
		t.Fatalf("second Get() = (%q, %v), want ('y', true)", r, ok)
	}
	if _, ok := f.Get(); ok {
		t.Error("Get() past the end of input should report ok=false")
	}
}

func TestEmptyReflectsExhaustion(t *testing.T) {
	f := OpenString("z")
	if f.Empty() {
		t.Fatal("a fifo with an unconsumed rune should not be Empty")
	}
	f.Get()
	if !f.Empty() {
		t.Error("a fifo with no remaining input should be Empty")
	}
}

func TestLineTracksNewlines(t *testing.T) {
	f := OpenString("a\nb\nc")
	if f.Line() != 1 {
		t.Fatalf("Line() at start = %d, want 1", f.Line())
	}
	for i := 0; i < 4; i++ {
		f.Get()
	}
	if f.Line() != 3 {
		t.Errorf("Line() after two newlines = %d, want 3", f.Line())
	}
}

func TestEolDetectsTerminatorsWithoutConsuming(t *testing.T) {
	f := OpenString("\r\nrest")
	if !f.Eol() {
		t.Fatal("Eol() should be true when positioned at \\r")
	}
	if r, _ := f.Preview(); r != '\r' {
		t.Error("Eol() should not consume the terminator rune")
	}
}

func TestSkipEOLConsumesCRLFAsOne(t *testing.T) {
	f := OpenString("\r\nx")
	f.SkipEOL()
	r, ok := f.Preview()
	if !ok || r != 'x' {
		t.Fatalf("after SkipEOL on \\r\\n, Preview() = (%q, %v), want ('x', true)", r, ok)
	}
	if f.Line() != 2 {
		t.Errorf("SkipEOL should advance the line counter, got %d", f.Line())
	}
}

func TestSkipEOLNoopWhenNotAtTerminator(t *testing.T) {
	f := OpenString("abc")
	f.SkipEOL()
	r, _ := f.Preview()
	if r != 'a' {
		t.Error("SkipEOL should be a no-op when not positioned at a line terminator")
	}
}

func TestSkipConsumesWhileInCharset(t *testing.T) {
	f := OpenString("   x")
	f.Skip(" \t")
	r, _ := f.Preview()
	if r != 'x' {
		t.Errorf("Skip should consume all whitespace runes, next rune = %q", r)
	}
}

func TestTokenReturnsMaximalRun(t *testing.T) {
	f := OpenString("abc123 rest")
	tok := f.Token("abcdefghijklmnopqrstuvwxyz0123456789")
	if tok != "abc123" {
		t.Errorf("Token() = %q, want %q", tok, "abc123")
	}
	r, _ := f.Preview()
	if r != ' ' {
		t.Error("Token should stop at the first rune outside the charset")
	}
}

func TestSinkWriteAndWriteString(t *testing.T) {
	var sb strings.Builder
	s := NewSink(&sb)
	s.Write([]byte("hi "))
	s.WriteString("there")
	if sb.String() != "hi there" {
		t.Errorf("Sink wrote %q, want %q", sb.String(), "hi there")
	}
}

func TestDuplexFifoReadsAndWritesIndependently(t *testing.T) {
	var out strings.Builder
	d := NewDuplex(strings.NewReader("in"), &out)
	r, ok := d.Get()
	if !ok || r != 'i' {
		t.Fatalf("DuplexFifo.Get() = (%q, %v), want ('i', true)", r, ok)
	}
	d.WriteString("out")
	if out.String() != "out" {
		t.Errorf("DuplexFifo write side = %q, want %q", out.String(), "out")
	}
}
