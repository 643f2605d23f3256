package rtvalue

import "testing"

func TestVecAppendIsCopyOnWrite(t *testing.T) {
	base := NewVec().Append(FromOrd(1))
	shared := base // aliasing before any further mutation, as the generator's Copy would

	// base.Retain() simulates a second alias (e.g. a second Variant handle)
	// so Append below must clone rather than mutate in place.
	base.Retain()
	grown := base.Append(FromOrd(2))

	if shared.Size() != 1 {
		t.Fatalf("aliased vec mutated in place: shared.Size() = %d, want 1", shared.Size())
	}
	if grown.Size() != 2 {
		t.Fatalf("grown.Size() = %d, want 2", grown.Size())
	}
	e0, _ := grown.Elem(0)
	e1, _ := grown.Elem(1)
	if o, _ := e0.Ord(); o != 1 {
		t.Errorf("grown[0] = %d, want 1", o)
	}
	if o, _ := e1.Ord(); o != 2 {
		t.Errorf("grown[1] = %d, want 2", o)
	}
}

func TestVecSetElemOutOfRange(t *testing.T) {
	v := NewVec().Append(FromOrd(1))
	if _, err := v.SetElem(5, FromOrd(9)); err == nil {
		t.Fatal("SetElem out of range should fail")
	}
}

func TestVecConcatEmptyShortCircuits(t *testing.T) {
	empty := NewVec()
	full := NewVec().Append(FromOrd(1))
	if got := VecConcat(empty, full); got != full {
		t.Error("concatenating onto an empty vec should return the other operand unchanged")
	}
	if got := VecConcat(full, empty); got != full {
		t.Error("concatenating an empty vec onto a vec should return the original unchanged")
	}
}

func TestSetAddSortedAndDeduped(t *testing.T) {
	s := NewSet()
	s = s.Add(FromOrd(5))
	s = s.Add(FromOrd(1))
	s = s.Add(FromOrd(5)) // duplicate, no-op
	if s.Size() != 2 {
		t.Fatalf("Size() = %d, want 2", s.Size())
	}
	keys := s.Keys()
	if o0, _ := keys[0].Ord(); o0 != 1 {
		t.Errorf("keys[0] = %d, want 1 (sorted)", o0)
	}
	if o1, _ := keys[1].Ord(); o1 != 5 {
		t.Errorf("keys[1] = %d, want 5", o1)
	}
	if !s.Has(FromOrd(1)) {
		t.Error("Has(1) should be true")
	}
	if s.Has(FromOrd(2)) {
		t.Error("Has(2) should be false")
	}
}

func TestOrdSetRangeAndMembership(t *testing.T) {
	s := NewOrdSet().AddRange(10, 20)
	if !s.Has(10) || !s.Has(20) || !s.Has(15) {
		t.Error("AddRange(10,20) should include both endpoints and the midpoint")
	}
	if s.Has(9) || s.Has(21) {
		t.Error("AddRange(10,20) should exclude values outside the range")
	}
	if s.Size() != 11 {
		t.Errorf("Size() = %d, want 11", s.Size())
	}
}

func TestOrdSetCopyOnWrite(t *testing.T) {
	base := NewOrdSet().Add(1)
	base.Retain()
	grown := base.Add(2)
	if base.Has(2) {
		t.Error("aliased OrdSet mutated in place")
	}
	if !grown.Has(1) || !grown.Has(2) {
		t.Error("grown OrdSet should have both bits set")
	}
}

func TestDictSetGetDeleteSorted(t *testing.T) {
	d := NewDict()
	d = d.Set(FromOrd(2), FromOrd(200))
	d = d.Set(FromOrd(1), FromOrd(100))
	keys, _ := d.Pairs()
	if o, _ := keys[0].Ord(); o != 1 {
		t.Errorf("keys[0] = %d, want 1 (sorted)", o)
	}
	v, ok := d.Get(FromOrd(2))
	if !ok {
		t.Fatal("Get(2) should find the key")
	}
	if o, _ := v.Ord(); o != 200 {
		t.Errorf("Get(2) = %d, want 200", o)
	}
	nd, err := d.Delete(FromOrd(1))
	if err != nil {
		t.Fatalf("Delete(1): %v", err)
	}
	if nd.Size() != 1 {
		t.Errorf("Size() after delete = %d, want 1", nd.Size())
	}
	if _, err := nd.Delete(FromOrd(99)); err == nil {
		t.Error("Delete of an absent key should fail")
	}
}

func TestDictCopyOnWrite(t *testing.T) {
	base := NewDict().Set(FromOrd(1), FromOrd(10))
	base.Retain()
	updated := base.Set(FromOrd(1), FromOrd(99))
	v, _ := base.Get(FromOrd(1))
	if o, _ := v.Ord(); o != 10 {
		t.Error("aliased dict mutated in place")
	}
	v2, _ := updated.Get(FromOrd(1))
	if o, _ := v2.Ord(); o != 99 {
		t.Error("updated dict should reflect the new value")
	}
}

func TestByteDictSetGetDelete(t *testing.T) {
	d := NewByteDict()
	d = d.Set(10, FromOrd(100))
	d = d.Set(20, FromOrd(200))
	if d.Size() != 2 {
		t.Fatalf("Size() = %d, want 2", d.Size())
	}
	v, ok := d.Get(10)
	if !ok {
		t.Fatal("Get(10) should find the key")
	}
	if o, _ := v.Ord(); o != 100 {
		t.Errorf("Get(10) = %d, want 100", o)
	}
	nd, err := d.Delete(10)
	if err != nil {
		t.Fatalf("Delete(10): %v", err)
	}
	if _, ok := nd.Get(10); ok {
		t.Error("key 10 should be gone after Delete")
	}
}

func TestStrConcatAndCompare(t *testing.T) {
	a := NewStr("foo")
	b := NewStr("bar")
	c := Concat(a, b)
	if c.String() != "foobar" {
		t.Errorf("Concat = %q, want %q", c.String(), "foobar")
	}
	if a.Compare(b) <= 0 {
		t.Error("\"foo\" should compare greater than \"bar\"")
	}
	if a.Compare(a) != 0 {
		t.Error("a string should compare equal to itself")
	}
}

func TestStrSetElemCopyOnWrite(t *testing.T) {
	s := NewStr("abc")
	s.Retain()
	updated, err := s.SetElem(0, 'X')
	if err != nil {
		t.Fatalf("SetElem: %v", err)
	}
	if s.String() != "abc" {
		t.Error("aliased string mutated in place")
	}
	if updated.String() != "Xbc" {
		t.Errorf("updated = %q, want %q", updated.String(), "Xbc")
	}
}

func TestStrCStringNulTerminates(t *testing.T) {
	s := NewStr("hi")
	cs := s.CString()
	if cs[len(cs)-1] != 0 {
		t.Error("CString() should end in a NUL byte")
	}
	if string(cs[:len(cs)-1]) != "hi" {
		t.Errorf("CString() payload = %q, want %q", cs[:len(cs)-1], "hi")
	}
	empty := NewStr("")
	if got := empty.CString(); len(got) != 1 || got[0] != 0 {
		t.Error("CString() of an empty string should be a single NUL byte")
	}
}

func TestRefSharesBoxAcrossAliases(t *testing.T) {
	r := NewRef(FromOrd(1))
	alias := r
	alias.Set(FromOrd(2))
	got := r.Get()
	if o, _ := got.Ord(); o != 2 {
		t.Error("Ref aliases should share the same box, unlike copy-on-write containers")
	}
}
