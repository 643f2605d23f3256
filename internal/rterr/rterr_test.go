package rterr

import (
	"errors"
	"strings"
	"testing"
)

func TestErrorStringIncludesKindNameMessageAndLocation(t *testing.T) {
	e := AtLocation(Ident(DuplicateIdent, "x"), Location{File: "f.shn", Line: 3, Column: 5})
	e.Message = "already declared"
	got := e.Error()
	for _, want := range []string{"DuplicateIdent", "(x)", "already declared", "f.shn:3:5"} {
		if !strings.Contains(got, want) {
			t.Errorf("Error() = %q, missing %q", got, want)
		}
	}
}

func TestLocationStringOmitsLineWhenZero(t *testing.T) {
	loc := Location{File: "f.shn"}
	if loc.String() != "f.shn" {
		t.Errorf("Location.String() = %q, want %q", loc.String(), "f.shn")
	}
}

func TestLocationStringEmptyWithNoFile(t *testing.T) {
	var loc Location
	if loc.String() != "" {
		t.Errorf("a zero Location should render as empty, got %q", loc.String())
	}
}

func TestWrapPreservesCauseForUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	wrapped := Wrap(SystemError, cause, "write failed")
	if !strings.Contains(wrapped.Cause.Error(), "disk full") {
		t.Errorf("Wrap's Cause should mention the original error, got %v", wrapped.Cause)
	}
	if errors.Unwrap(wrapped) == nil {
		t.Error("Unwrap should expose the wrapped cause")
	}
}

func TestIsMatchesKindThroughWrapping(t *testing.T) {
	err := New(DivisionByZero, "boom")
	if !Is(err, DivisionByZero) {
		t.Error("Is should match the same Kind")
	}
	if Is(err, SystemError) {
		t.Error("Is should not match a different Kind")
	}
}

func TestIsFalseForNonRterrError(t *testing.T) {
	if Is(errors.New("plain"), SystemError) {
		t.Error("Is should return false for a non-*Error value")
	}
}

func TestNewExitCarriesCode(t *testing.T) {
	e := NewExit(7)
	if e.Kind != Exit || e.ExitCode != 7 {
		t.Errorf("NewExit(7) = %+v, want Kind=Exit ExitCode=7", e)
	}
}
