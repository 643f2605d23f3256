package symbols

import (
	"testing"

	"sentra/internal/rterr"
)

func TestDeclareAndLookup(t *testing.T) {
	tab := NewTable(nil)
	if err := tab.Declare("x", 0); err != nil {
		t.Fatalf("Declare(x): %v", err)
	}
	idx, err := tab.Lookup("x")
	if err != nil || idx != 0 {
		t.Fatalf("Lookup(x) = (%d, %v), want (0, nil)", idx, err)
	}
}

func TestDeclareDuplicateFails(t *testing.T) {
	tab := NewTable(nil)
	tab.Declare("x", 0)
	err := tab.Declare("x", 1)
	if err == nil {
		t.Fatal("redeclaring x in the same scope should fail")
	}
	if got, ok := err.(*rterr.Error); !ok || got.Kind != rterr.DuplicateIdent {
		t.Errorf("error kind = %v, want DuplicateIdent", err)
	}
}

func TestLookupUnknownFails(t *testing.T) {
	tab := NewTable(nil)
	_, err := tab.Lookup("missing")
	if err == nil {
		t.Fatal("looking up an undeclared name should fail")
	}
	if got, ok := err.(*rterr.Error); !ok || got.Kind != rterr.UnknownIdent {
		t.Errorf("error kind = %v, want UnknownIdent", err)
	}
}

func TestLookupConsultsParentScope(t *testing.T) {
	parent := NewTable(nil)
	parent.Declare("outer", 5)
	child := NewTable(parent)
	idx, err := child.Lookup("outer")
	if err != nil || idx != 5 {
		t.Fatalf("Lookup(outer) from child = (%d, %v), want (5, nil)", idx, err)
	}
}

func TestChildCanShadowParent(t *testing.T) {
	parent := NewTable(nil)
	parent.Declare("x", 1)
	child := NewTable(parent)
	child.Declare("x", 2) // a distinct scope, not a duplicate
	idx, _ := child.Lookup("x")
	if idx != 2 {
		t.Errorf("a child's own declaration should shadow the parent's, got %d", idx)
	}
	parentIdx, _ := parent.Lookup("x")
	if parentIdx != 1 {
		t.Error("shadowing in a child scope should not mutate the parent's binding")
	}
}

func TestLookupLocalDoesNotConsultParent(t *testing.T) {
	parent := NewTable(nil)
	parent.Declare("outer", 5)
	child := NewTable(parent)
	if _, ok := child.LookupLocal("outer"); ok {
		t.Error("LookupLocal should not see bindings from an enclosing scope")
	}
}
