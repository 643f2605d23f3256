package rtvalue

import "testing"

func TestVariantTagsAndAccessors(t *testing.T) {
	tests := []struct {
		name string
		v    Variant
		tag  Kind
	}{
		{"void", Void(), KVoid},
		{"ord", FromOrd(42), KOrd},
		{"bool-true", FromBool(true), KOrd},
		{"real", FromReal(3.5), KReal},
		{"str", FromStr(NewStr("hi")), KStr},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.Tag(); got != tt.tag {
				t.Errorf("Tag() = %v, want %v", got, tt.tag)
			}
			tt.v.Destroy()
		})
	}
}

func TestVariantOrdRoundTrip(t *testing.T) {
	v := FromOrd(7)
	ord, ok := v.Ord()
	if !ok || ord != 7 {
		t.Fatalf("Ord() = (%d, %v), want (7, true)", ord, ok)
	}
	if _, ok := Void().Ord(); ok {
		t.Fatal("Ord() on a Void should fail")
	}
}

func TestVariantEmpty(t *testing.T) {
	if !Void().Empty() {
		t.Error("void should be empty")
	}
	if !FromOrd(0).Empty() {
		t.Error("ord 0 should be empty")
	}
	if FromOrd(1).Empty() {
		t.Error("ord 1 should not be empty")
	}
	s := FromStr(NewStr(""))
	if !s.Empty() {
		t.Error("empty string should be empty")
	}
	s.Destroy()
	nonEmpty := FromStr(NewStr("x"))
	if nonEmpty.Empty() {
		t.Error("non-empty string should not be empty")
	}
	nonEmpty.Destroy()
}

func TestVariantEqualAndCompare(t *testing.T) {
	a := FromOrd(3)
	b := FromOrd(3)
	c := FromOrd(4)
	if !a.Equal(b) {
		t.Error("3 should equal 3")
	}
	if a.Equal(c) {
		t.Error("3 should not equal 4")
	}
	if a.Compare(c) >= 0 {
		t.Error("3 should compare less than 4")
	}
	if Void().Equal(FromOrd(0)) {
		t.Error("differing tags should never be equal, even with the same emptiness")
	}
}

func TestVariantCompareOrdersByTag(t *testing.T) {
	if Void().Compare(FromOrd(0)) >= 0 {
		t.Error("KVoid (tag 0) should sort before KOrd (tag 1)")
	}
}

func TestVariantCopyRetainsHandle(t *testing.T) {
	str := NewStr("shared")
	v := FromStr(str)
	defer v.Destroy()
	if str.bv.hdr.Count() != 1 {
		t.Fatalf("fresh Str should have refcount 1, got %d", str.bv.hdr.Count())
	}
	cp := v.Copy()
	defer cp.Destroy()
	if str.bv.hdr.Count() != 2 {
		t.Fatalf("Copy() should bump the refcount to 2, got %d", str.bv.hdr.Count())
	}
}

func TestVariantAssignReleasesOld(t *testing.T) {
	oldStr := NewStr("old")
	v := FromStr(oldStr)
	defer v.Destroy()
	if oldStr.bv.hdr.Count() != 1 {
		t.Fatalf("want refcount 1, got %d", oldStr.bv.hdr.Count())
	}
	v.Assign(FromOrd(9))
	if oldStr.bv.hdr.Count() != 0 {
		t.Fatalf("Assign should have released the old handle, refcount = %d", oldStr.bv.hdr.Count())
	}
	if tag := v.Tag(); tag != KOrd {
		t.Fatalf("Tag() after Assign = %v, want KOrd", tag)
	}
}

func TestVariantAssignSelfAliasSafe(t *testing.T) {
	str := NewStr("self")
	v := FromStr(str)
	defer v.Destroy()
	v.Assign(v.Copy())
	if str.bv.hdr.Count() != 1 {
		t.Fatalf("self-assignment should leave refcount at 1, got %d", str.bv.hdr.Count())
	}
}

func TestVariantDumpRendersNestedContainers(t *testing.T) {
	vec := NewVec().Append(FromOrd(1)).Append(FromOrd(2))
	v := FromVec(vec)
	defer v.Destroy()
	got := v.String()
	want := "[1, 2]"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
