package sysmodule

import (
	"strings"
	"testing"

	"sentra/internal/rtypes"
)

func TestNewBuildsThePredefinedTypes(t *testing.T) {
	sys, err := New("test-types", strings.NewReader(""), &strings.Builder{}, &strings.Builder{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if sys.DefBool.Kind != rtypes.KindBool {
		t.Error("DefBool should be a bool type")
	}
	if sys.DefChar.Kind != rtypes.KindChar {
		t.Error("DefChar should be a char type")
	}
	if sys.DefInt.Kind != rtypes.KindInt {
		t.Error("DefInt should be an int type")
	}
	if sys.DefTypeRef.Kind != rtypes.KindTypeRef {
		t.Error("DefTypeRef should be a typeref type")
	}
	if sys.DefStr.Kind != rtypes.KindVec || sys.DefStr.ElemType != sys.DefChar {
		t.Error("DefStr should be a vec-of-char")
	}
}

func TestNewInitializesIOSlots(t *testing.T) {
	var out strings.Builder
	sys, err := New("test-io", strings.NewReader("hello"), &out, &strings.Builder{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	r, ok := sys.Sio.Get()
	if !ok || r != 'h' {
		t.Fatalf("Sio should read from the given stdin reader, got (%q, %v)", r, ok)
	}
	sys.Sio.WriteString("out")
	if out.String() != "out" {
		t.Errorf("Sio should write to the given stdout writer, got %q", out.String())
	}
	if !sys.SResult.Empty() {
		t.Error("SResult should start as void until the Exit opcode sets it")
	}
}

func TestSerrWritesToStderr(t *testing.T) {
	var errOut strings.Builder
	sys, err := New("test-serr", strings.NewReader(""), &strings.Builder{}, &errOut)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	sys.Serr.WriteString("boom")
	if errOut.String() != "boom" {
		t.Errorf("Serr should write to the given stderr writer, got %q", errOut.String())
	}
}

func TestNewIsOnePerDistinctName(t *testing.T) {
	a, _ := New("shared-name", strings.NewReader("a"), &strings.Builder{}, &strings.Builder{})
	b, _ := New("shared-name", strings.NewReader("b"), &strings.Builder{}, &strings.Builder{})
	if a != b {
		t.Error("New should return the same *System for the same name instead of building twice")
	}
}
