// Package symbols implements the minimal scope/symbol table used purely
// for name resolution (spec.md section 1 lists this as an out-of-scope
// collaborator, but the generator's DuplicateIdent/UnknownIdent errors are
// part of the core contract — see spec.md section 7 — so a real, if
// small, table lives here rather than being merely referenced).
//
// Grounded on the teacher's symbol-lookup style in internal/compiler (a
// flat name -> slot map per function, chained to a parent for lexical
// scoping) generalized to an explicit chained table.
package symbols

import "sentra/internal/rterr"

// Table is one lexical scope's worth of name -> slot-index bindings,
// chained to an optional parent for enclosing-scope lookup.
type Table struct {
	parent  *Table
	entries map[string]int
}

func NewTable(parent *Table) *Table {
	return &Table{parent: parent, entries: make(map[string]int)}
}

// Declare binds name to index in this scope. Fails with DuplicateIdent if
// name is already bound in this (not an enclosing) scope.
func (t *Table) Declare(name string, index int) error {
	if _, exists := t.entries[name]; exists {
		return rterr.Ident(rterr.DuplicateIdent, name)
	}
	t.entries[name] = index
	return nil
}

// Lookup searches this scope then each enclosing parent in turn. Fails
// with UnknownIdent if no scope binds name.
func (t *Table) Lookup(name string) (int, error) {
	for s := t; s != nil; s = s.parent {
		if idx, ok := s.entries[name]; ok {
			return idx, nil
		}
	}
	return 0, rterr.Ident(rterr.UnknownIdent, name)
}

// LookupLocal searches only this scope, without consulting parents —
// used to tell a self-var/local apart from an enclosing one.
func (t *Table) LookupLocal(name string) (int, bool) {
	idx, ok := t.entries[name]
	return idx, ok
}
