package rtstate

import (
	"testing"

	"sentra/internal/rtvalue"
	"sentra/internal/rtypes"
)

func newStateWithVars(n int) *rtypes.State {
	s := rtypes.NewModuleState("m")
	intT := s.Define(&rtypes.Type{Kind: rtypes.KindInt, Left: 0, Right: 100})
	for i := 0; i < n; i++ {
		s.AddInnerVar("v", intT)
	}
	return s
}

func TestNewInstanceAllocatesOneSlotPerVar(t *testing.T) {
	state := newStateWithVars(3)
	obj := NewInstance(state)
	if len(obj.slots) != 3 {
		t.Fatalf("NewInstance allocated %d slots, want 3", len(obj.slots))
	}
	if obj.State() != state {
		t.Error("State() should return the descriptor it was instantiated from")
	}
}

func TestSlotOutOfRange(t *testing.T) {
	obj := NewInstance(newStateWithVars(1))
	if _, err := obj.Slot(5); err == nil {
		t.Error("Slot with an out-of-range index should fail")
	}
	if _, err := obj.Slot(0); err != nil {
		t.Errorf("Slot(0) should succeed, got %v", err)
	}
}

func TestIsEmptyReflectsSlotContents(t *testing.T) {
	obj := NewInstance(newStateWithVars(2))
	if !obj.IsEmpty() {
		t.Error("a freshly allocated instance's slots should all be empty (void)")
	}
	slot, _ := obj.Slot(0)
	*slot = rtvalue.FromOrd(1)
	if obj.IsEmpty() {
		t.Error("IsEmpty should be false once a slot holds a non-void value")
	}
}

func TestReleaseFinalizesSlotsOnce(t *testing.T) {
	obj := NewInstance(newStateWithVars(1))
	obj.Retain() // simulate a second handle
	obj.Release()
	if obj.slots == nil {
		t.Fatal("Release should not finalize slots while another handle remains")
	}
	obj.Release()
	if obj.slots != nil {
		t.Error("Release should finalize and clear slots once the last handle drops")
	}
}

func TestNewFuncValRetainsClosure(t *testing.T) {
	closure := NewInstance(newStateWithVars(1))
	fn := NewFuncVal(newStateWithVars(0), closure)
	if fn.IsEmpty() {
		t.Error("a FuncVal built from a non-nil State should not be empty")
	}
	closure.Retain() // now refcount 3: original + NewFuncVal's + this
	fn.Release()
	if closure.slots == nil {
		t.Error("releasing the FuncVal should drop one closure reference, not finalize it while others remain")
	}
}

func TestNewFuncValWithNilClosure(t *testing.T) {
	fn := NewFuncVal(newStateWithVars(0), nil)
	if fn.Closure != nil {
		t.Error("a free function's FuncVal should have a nil Closure")
	}
	fn.Release() // should not panic on nil Closure
}

func TestFuncValEmptyWithNilState(t *testing.T) {
	fn := &FuncVal{}
	if !fn.IsEmpty() {
		t.Error("a zero-value FuncVal (nil State) should be Empty")
	}
}
