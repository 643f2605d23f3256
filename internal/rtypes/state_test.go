package rtypes

import "testing"

func TestDefineRegistersOwner(t *testing.T) {
	s := NewModuleState("m")
	tp := s.Define(&Type{Kind: KindBool, Left: 0, Right: 1})
	if tp.Owner != s {
		t.Fatalf("Define should set Owner to the defining State")
	}
}

func TestGetRefTypeCachesSingleAssignment(t *testing.T) {
	s := NewModuleState("m")
	base := s.Define(&Type{Kind: KindInt, Left: 0, Right: 10})
	r1 := s.GetRefType(base)
	r2 := s.GetRefType(base)
	if r1 != r2 {
		t.Error("GetRefType should return the same cached Type on repeated calls")
	}
	if r1.Owner != s {
		t.Error("a derived type's register() should set its Owner to the owning State, not leave it nil")
	}
}

func TestDeriveVecCaches(t *testing.T) {
	s := NewModuleState("m")
	elem := s.Define(&Type{Kind: KindChar, Left: 0, Right: 255})
	v1 := s.DeriveVec(elem)
	v2 := s.DeriveVec(elem)
	if v1 != v2 {
		t.Error("DeriveVec should cache vec-of-t on t")
	}
	if v1.ElemType != elem {
		t.Errorf("DeriveVec's ElemType should be the element type it was derived from")
	}
}

func TestDeriveContainerPicksVecSetOrDict(t *testing.T) {
	s := NewModuleState("m")
	voidT := &Type{Kind: KindVoid}
	idx := s.Define(&Type{Kind: KindInt, Left: 0, Right: 10})
	elem := s.Define(&Type{Kind: KindInt, Left: 0, Right: 10})

	vec := s.DeriveContainer(voidT, elem)
	if vec.Kind != KindVec {
		t.Errorf("DeriveContainer(void, elem) should yield a vec, got %v", vec.Kind)
	}
	set := s.DeriveContainer(idx, voidT)
	if set.Kind != KindSet {
		t.Errorf("DeriveContainer(idx, void) should yield a set, got %v", set.Kind)
	}
	dict := s.DeriveContainer(idx, elem)
	if dict.Kind != KindDict {
		t.Errorf("DeriveContainer(idx, elem) should yield a dict, got %v", dict.Kind)
	}
}

func TestAddInnerVarAndAddLocalAssignIndices(t *testing.T) {
	s := NewModuleState("m")
	intT := s.Define(&Type{Kind: KindInt, Left: 0, Right: 10})
	i0, err := s.AddInnerVar("x", intT)
	if err != nil || i0 != 0 {
		t.Fatalf("AddInnerVar(x) = (%d, %v), want (0, nil)", i0, err)
	}
	i1, err := s.AddInnerVar("y", intT)
	if err != nil || i1 != 1 {
		t.Fatalf("AddInnerVar(y) = (%d, %v), want (1, nil)", i1, err)
	}
	if _, err := s.AddInnerVar("x", intT); err == nil {
		t.Error("redeclaring x should fail with DuplicateIdent")
	}
	if n := s.SelfVarCount(); n != 2 {
		t.Errorf("SelfVarCount() = %d, want 2", n)
	}

	l0, err := s.AddLocal("tmp", intT)
	if err != nil || l0 != 0 {
		t.Fatalf("AddLocal(tmp) = (%d, %v), want (0, nil)", l0, err)
	}
}

func TestNewFunctionStateChainsSymtabToParent(t *testing.T) {
	module := NewModuleState("m")
	intT := module.Define(&Type{Kind: KindInt, Left: 0, Right: 10})
	module.AddInnerVar("g", intT)

	proto := &Type{Kind: KindFuncPtr, RetType: intT}
	fn := NewFunctionState(module, "f", proto)
	if fn.Owner != module {
		t.Fatal("function state's Owner should be the enclosing module state")
	}
	if _, err := fn.Symtab.Lookup("g"); err != nil {
		t.Error("a function's symbol table should see names declared in the enclosing module")
	}
}
