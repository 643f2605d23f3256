package rtypes

import (
	"sentra/internal/bytecode"
	"sentra/internal/symbols"
)

// State is the type kind describing a stateful scope — a function or a
// module (spec.md component C4's descriptor half; spec.md calls it out as
// "a type kind carrying a prototype, inner vars, locals, a symbol table
// and an owned code segment"). A module is a State with Owner == nil.
type State struct {
	Owner     *State // parent state; nil for a module (top-level)
	Proto     *Type  // KindFuncPtr prototype; nil for a module state
	InnerVars []Var  // self-variables, in declaration order
	Locals    []Var  // stack locals, only meaningful for function states
	Symtab    *symbols.Table
	Code      *bytecode.Chunk
	Name      string

	owned []*Type // every Type this State has registered (derivation homes)
}

// NewModuleState constructs the top-level state for a module (spec.md:
// "A module is a state with no parent").
func NewModuleState(name string) *State {
	return &State{Name: name, Symtab: symbols.NewTable(nil), Code: bytecode.NewChunk()}
}

// NewFunctionState constructs a child state for a function body.
func NewFunctionState(parent *State, name string, proto *Type) *State {
	return &State{
		Owner:  parent,
		Proto:  proto,
		Name:   name,
		Symtab: symbols.NewTable(parent.Symtab),
		Code:   bytecode.NewChunk(),
	}
}

// SelfVarCount is N in "newInstance(state) allocates a zeroed block of N
// variant slots" (spec.md 4.4).
func (s *State) SelfVarCount() int { return len(s.InnerVars) }

// AddInnerVar registers a new self-variable and returns its slot index.
// Fails (via the caller's symbol-table insert) on a duplicate name, the
// table enforces that — see internal/symbols.
func (s *State) AddInnerVar(name string, typ *Type) (int, error) {
	idx := len(s.InnerVars)
	if err := s.Symtab.Declare(name, idx); err != nil {
		return 0, err
	}
	s.InnerVars = append(s.InnerVars, Var{Name: name, Typ: typ, Index: idx})
	return idx, nil
}

// AddLocal registers a new stack local and returns its stack-var index
// (0-based from the activation's first local slot).
func (s *State) AddLocal(name string, typ *Type) (int, error) {
	idx := len(s.Locals)
	if err := s.Symtab.Declare(name, idx); err != nil {
		return 0, err
	}
	s.Locals = append(s.Locals, Var{Name: name, Typ: typ, Index: idx})
	return idx, nil
}

// register records t as owned by s — every Type created through a State's
// derive/define methods is tracked here so the State (not a package
// global) is the sole owner, honoring spec.md 9's "owner registers and
// owns type descriptors" design note.
func (s *State) register(t *Type) *Type {
	t.Owner = s
	s.owned = append(s.owned, t)
	return t
}

// Define installs a brand-new, non-derived Type owned by s (used for
// primitive/enum/state/funcptr definitions the frontend constructs
// directly, as opposed to the cached derivations below).
func (s *State) Define(t *Type) *Type {
	t.Owner = s
	s.owned = append(s.owned, t)
	return t
}

// GetRefType returns (creating and registering if absent) the Ref-to-t
// derivation, cached on t itself (spec.md 4.3 "getRefType").
func (s *State) GetRefType(t *Type) *Type {
	if t.refCache != nil {
		return t.refCache
	}
	r := &Type{Kind: KindRef, ElemType: t}
	s.register(r)
	t.refCache = r
	return r
}

// DeriveVec returns (creating if absent) vec-of-t.
func (s *State) DeriveVec(t *Type) *Type {
	if t.vecCache != nil {
		return t.vecCache
	}
	v := &Type{Kind: KindVec, ElemType: t}
	s.register(v)
	t.vecCache = v
	return v
}

// DeriveSet returns (creating if absent) set-of-t.
func (s *State) DeriveSet(t *Type) *Type {
	if t.setCache != nil {
		return t.setCache
	}
	v := &Type{Kind: KindSet, IndexType: t}
	s.register(v)
	t.setCache = v
	return v
}

// DeriveFifo returns (creating if absent) fifo-of-t.
func (s *State) DeriveFifo(t *Type) *Type {
	if t.fifoCache != nil {
		return t.fifoCache
	}
	v := &Type{Kind: KindFifo, ElemType: t}
	s.register(v)
	t.fifoCache = v
	return v
}

// DeriveContainer derives a container from (idx, elem): void-index yields a
// vector, void-elem yields a set, otherwise a dict (spec.md 4.3). Vector
// and set derivations go through DeriveVec / DeriveSet's single-assignment
// cache; a dict derivation is not cached, so each call registers a new
// Type.
func (s *State) DeriveContainer(idx, elem *Type) *Type {
	switch {
	case idx.Kind == KindVoid:
		return s.DeriveVec(elem)
	case elem.Kind == KindVoid:
		return s.DeriveSet(idx)
	default:
		v := &Type{Kind: KindDict, IndexType: idx, ElemType: elem}
		s.register(v)
		return v
	}
}
