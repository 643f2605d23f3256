// Package rtstate implements the heap activation record of spec.md
// component C4: stateobj, a typed block of named Variant slots, and the
// function-pointer value representation (State, data-seg) pair the
// glossary describes for FuncPtr.
//
// Grounded on the teacher's Module/stateobj-less design (sentra keeps
// globals in a flat []Value with a name->index map,
// internal/vm/vm.go EnhancedVM.globals/globalMap) generalized to an
// explicit per-State heap record so every module instance — and every
// function activation's self — owns its own slots instead of sharing one
// process-wide global array.
package rtstate

import (
	"sentra/internal/rterr"
	"sentra/internal/rtvalue"
	"sentra/internal/rtypes"
)

// StateObj is the runtime instance of a State: a heap block of Variant
// slots, one per inner var, typed by the owning State descriptor (spec.md
// 4.4). It implements rtvalue.Runtime so it can be held inside an RtObj
// Variant.
type StateObj struct {
	hdr   rtvalue.Header
	state *rtypes.State
	slots []rtvalue.Variant
}

// NewInstance allocates a zeroed block of N = state.SelfVarCount() slots
// (spec.md 4.4 "newInstance"). A module instance is the root activation;
// a state's initializer code (run by the VM) populates its slots after
// allocation.
func NewInstance(state *rtypes.State) *StateObj {
	return &StateObj{hdr: rtvalue.NewHeader(), state: state, slots: make([]rtvalue.Variant, state.SelfVarCount())}
}

func (o *StateObj) Retain() { retainHeader(&o.hdr) }

func retainHeader(h *rtvalue.Header) { h.Retain() }

// Release finalizes slots in reverse order exactly once, when the last
// handle drops (spec.md 4.4: "Destruction finalizes all slots").
func (o *StateObj) Release() {
	if releaseHeader(&o.hdr) {
		for i := len(o.slots) - 1; i >= 0; i-- {
			o.slots[i].Destroy()
		}
		o.slots = nil
	}
}

func releaseHeader(h *rtvalue.Header) bool { return h.ReleaseCount() }

func (o *StateObj) IsEmpty() bool {
	for i := range o.slots {
		if !o.slots[i].Empty() {
			return false
		}
	}
	return true
}

func (o *StateObj) State() *rtypes.State { return o.state }

// Slot returns a pointer to inner-var index i.
func (o *StateObj) Slot(i int) (*rtvalue.Variant, error) {
	if i < 0 || i >= len(o.slots) {
		return nil, rterr.Newf(rterr.IndexError, "self-var index %d out of range", i)
	}
	return &o.slots[i], nil
}

// FuncVal is the (State, data-seg) pair the glossary assigns as a FuncPtr
// value's representation: which State (code + prototype) to run, and
// which enclosing activation's stateobj supplies the self/closure data.
type FuncVal struct {
	hdr     rtvalue.Header
	State   *rtypes.State
	Closure *StateObj // the enclosing activation providing self-var access; nil for a free function
}

func NewFuncVal(state *rtypes.State, closure *StateObj) *FuncVal {
	if closure != nil {
		closure.Retain()
	}
	return &FuncVal{hdr: rtvalue.NewHeader(), State: state, Closure: closure}
}

func (f *FuncVal) Retain() { retainHeader(&f.hdr) }

func (f *FuncVal) Release() {
	if releaseHeader(&f.hdr) && f.Closure != nil {
		f.Closure.Release()
	}
}

func (f *FuncVal) IsEmpty() bool { return f.State == nil }
