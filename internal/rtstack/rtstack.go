// Package rtstack implements the operand stack and call-frame bookkeeping
// of spec.md component C5: an unmanaged contiguous Variant array with a
// per-activation base pointer. Pre-reserved to a configured maximum at
// program start; overflow is fatal, matching spec.md's "overflow is
// fatal" rather than a growable Go slice.
//
// Grounded on the teacher's EnhancedVM stack (a pre-allocated []Value plus
// a stackTop index, internal/vm/vm.go) generalized from untyped Value to
// Variant and from an implicit global base to an explicit per-frame one.
package rtstack

import (
	"sentra/internal/rterr"
	"sentra/internal/rtvalue"
)

// Stack is the contiguous operand stack shared by every activation of one
// VM invocation.
type Stack struct {
	slots []rtvalue.Variant
	top   int
	max   int
}

func New(maxSize int) *Stack {
	return &Stack{slots: make([]rtvalue.Variant, maxSize), max: maxSize}
}

func (s *Stack) Depth() int { return s.top }

// Push writes past the current top. Overflow is fatal (spec.md 4.5): the
// caller is expected to have reserved enough depth (the code generator
// enforces this at compile time; the VM's check here is the last-resort
// guard for a generator bug).
func (s *Stack) Push(v rtvalue.Variant) {
	if s.top >= s.max {
		panic(rterr.New(rterr.Overflow, "operand stack overflow"))
	}
	s.slots[s.top] = v
	s.top++
}

// Pop removes the top value and returns it without destroying it; the
// caller takes over its reference (PopDiscard is the destroying form).
func (s *Stack) Pop() rtvalue.Variant {
	if s.top == 0 {
		panic(rterr.New(rterr.Overflow, "operand stack underflow"))
	}
	s.top--
	v := s.slots[s.top]
	s.slots[s.top] = rtvalue.Void()
	return v
}

// PopDiscard pops and destroys the top value without returning it (the
// PopPod/Pop opcode distinction in spec.md 4.6 group 5 maps to "destroy
// payload" vs "drop a POD value with no payload to release" — both land
// here since Variant.Destroy is already a no-op for POD tags).
func (s *Stack) PopDiscard() {
	v := s.Pop()
	v.Destroy()
}

// Peek returns the value offset slots below the top without removing it.
func (s *Stack) Peek(offset int) rtvalue.Variant {
	return s.slots[s.top-1-offset]
}

// PeekAddr returns a pointer to the slot offset below the top, for
// in-place mutation (e.g. a Lea-loaded address's owning slot).
func (s *Stack) PeekAddr(offset int) *rtvalue.Variant {
	return &s.slots[s.top-1-offset]
}

// At returns a pointer to the absolute slot index (used for stack-var
// access relative to a Frame's base).
func (s *Stack) At(index int) *rtvalue.Variant {
	return &s.slots[index]
}

// Truncate resets the stack to depth, destroying everything above it —
// used on an error unwind and by Frame.Return.
func (s *Stack) Truncate(depth int) {
	for s.top > depth {
		s.PopDiscard()
	}
}

// Frame is one activation's window into the shared Stack (spec.md 4.4):
//
//	... | arg_1 | ... | arg_n | return-slot | local_1 | ... | local_k | <top>
//	                            ^ base pointer
type Frame struct {
	Base int // index of the return-value slot
	Args int // number of arguments below Base
}

// Arg returns a pointer to argument i (0 = first argument, evaluated and
// pushed first by the caller), stored at negative offsets from Base.
func (f Frame) Arg(s *Stack, i int) *rtvalue.Variant {
	return s.At(f.Base - f.Args + i)
}

// ReturnSlot returns a pointer to the activation's return-value slot.
func (f Frame) ReturnSlot(s *Stack) *rtvalue.Variant {
	return s.At(f.Base)
}

// Local returns a pointer to local i (0-based, above Base).
func (f Frame) Local(s *Stack, i int) *rtvalue.Variant {
	return s.At(f.Base + 1 + i)
}

// Return restores the stack to the state the caller expects: truncates
// locals, leaves the return value in place, and pops the argument area,
// moving the return value down to where the first argument was (spec.md
// 4.4: "the callee ... on return restores the base pointer and pops
// arguments").
func (f Frame) Return(s *Stack) {
	ret := s.slots[f.Base]
	s.Truncate(f.Base + 1)
	s.top = f.Base - f.Args
	s.slots[s.top] = ret
	s.top++
}
