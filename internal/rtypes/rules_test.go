package rtypes

import (
	"testing"

	"sentra/internal/rtvalue"
)

func intType(left, right int64) *Type { return &Type{Kind: KindInt, Left: left, Right: right} }

func TestIdenticalToSamePointer(t *testing.T) {
	tp := intType(0, 10)
	if !tp.IdenticalTo(tp) {
		t.Error("a type must be identical to itself")
	}
}

func TestIdenticalToOrdinalBounds(t *testing.T) {
	a := intType(0, 10)
	b := intType(0, 10)
	c := intType(0, 20)
	if !a.IdenticalTo(b) {
		t.Error("two int types with the same bounds should be identical")
	}
	if a.IdenticalTo(c) {
		t.Error("int types with different bounds should not be identical")
	}
}

func TestIdenticalToDifferentKinds(t *testing.T) {
	a := &Type{Kind: KindBool, Left: 0, Right: 1}
	b := &Type{Kind: KindChar, Left: 0, Right: 1}
	if a.IdenticalTo(b) {
		t.Error("bool and char should never be identical even with equal bounds")
	}
}

func TestCanAssignToVariantAcceptsAnything(t *testing.T) {
	v := &Type{Kind: KindVariant}
	if !intType(0, 10).CanAssignTo(v) {
		t.Error("any type should be assignable to variant")
	}
}

func TestCanAssignToOrdinalWidening(t *testing.T) {
	narrow := intType(0, 10)
	wide := intType(-100, 100)
	if !narrow.CanAssignTo(wide) {
		t.Error("a narrower subrange should widen-assign to a containing range")
	}
	if wide.CanAssignTo(narrow) {
		t.Error("a wider range should not assign to a narrower one")
	}
}

func TestCanAssignToNullContainer(t *testing.T) {
	null := &Type{Kind: KindNullCont}
	vec := &Type{Kind: KindVec, ElemType: intType(0, 10)}
	if !null.CanAssignTo(vec) {
		t.Error("the null-container placeholder should assign to any container kind")
	}
}

func TestCanAssignToVecElemCovariance(t *testing.T) {
	narrowElem := intType(0, 10)
	wideElem := intType(-100, 100)
	narrowVec := &Type{Kind: KindVec, ElemType: narrowElem}
	wideVec := &Type{Kind: KindVec, ElemType: wideElem}
	if !narrowVec.CanAssignTo(wideVec) {
		t.Error("a vec of a narrower elem type should assign to a vec of a wider one")
	}
}

func TestIsMyType(t *testing.T) {
	tp := intType(0, 10)
	if !tp.IsMyType(rtvalue.FromOrd(5)) {
		t.Error("an Ord variant should match an int type")
	}
	if tp.IsMyType(rtvalue.FromReal(1.0)) {
		t.Error("a Real variant should not match an int type")
	}
}

func TestRuntimeTypecastBoolNormalizes(t *testing.T) {
	tp := &Type{Kind: KindBool, Left: 0, Right: 1}
	v := rtvalue.FromOrd(5)
	if err := tp.RuntimeTypecast(&v); err != nil {
		t.Fatalf("RuntimeTypecast: %v", err)
	}
	if o, _ := v.Ord(); o != 1 {
		t.Errorf("any non-zero ordinal should normalize to 1, got %d", o)
	}
}

func TestRuntimeTypecastIntRangeCheck(t *testing.T) {
	tp := intType(0, 10)
	v := rtvalue.FromOrd(20)
	if err := tp.RuntimeTypecast(&v); err == nil {
		t.Error("casting 20 into [0,10] should fail with OutOfRange")
	}
}

func TestRuntimeTypecastWrongTagFails(t *testing.T) {
	tp := intType(0, 10)
	v := rtvalue.FromReal(1.0)
	if err := tp.RuntimeTypecast(&v); err == nil {
		t.Error("casting a Real into an int type should fail")
	}
}

func TestNewOrdinalSubrangeEmptyAllowed(t *testing.T) {
	tp, err := NewOrdinalSubrange(KindInt, 5, 4)
	if err != nil {
		t.Fatalf("left == right+1 should be a legal empty range: %v", err)
	}
	if tp.Left != 5 || tp.Right != 4 {
		t.Errorf("bounds = [%d,%d], want [5,4]", tp.Left, tp.Right)
	}
}

func TestNewOrdinalSubrangeInvalid(t *testing.T) {
	if _, err := NewOrdinalSubrange(KindInt, 5, 2); err == nil {
		t.Error("left > right+1 should fail")
	}
}

func TestNewEnumSubrangeSharesValues(t *testing.T) {
	base := &Type{Kind: KindEnum, Enum: &EnumValues{Names: []string{"a", "b", "c"}, Values: []int64{0, 1, 2}}, Left: 0, Right: 2}
	sub, err := NewEnumSubrange(base, 0, 1)
	if err != nil {
		t.Fatalf("NewEnumSubrange: %v", err)
	}
	if sub.Enum != base.Enum {
		t.Error("a subrange enum must share its base's EnumValues")
	}
	if !sub.IdenticalTo(sub) {
		t.Error("a type must be identical to itself")
	}
}

func TestNewEnumSubrangeRejectsNonEnum(t *testing.T) {
	if _, err := NewEnumSubrange(intType(0, 10), 0, 1); err == nil {
		t.Error("NewEnumSubrange on a non-enum base should fail")
	}
}

func TestExpectedTagByteVsGeneralSet(t *testing.T) {
	byteIdx := intType(0, 255)
	wideIdx := intType(0, 1000)
	setOfByte := &Type{Kind: KindSet, IndexType: byteIdx}
	setOfWide := &Type{Kind: KindSet, IndexType: wideIdx}
	if tag, _ := setOfByte.ExpectedTag(); tag != rtvalue.KOrdSet {
		t.Errorf("a set indexed by a byte-range ordinal should use KOrdSet, got %v", tag)
	}
	if tag, _ := setOfWide.ExpectedTag(); tag != rtvalue.KSet {
		t.Errorf("a set indexed by a wide ordinal should use KSet, got %v", tag)
	}
}

func TestExpectedTagByteVsGeneralDict(t *testing.T) {
	byteIdx := intType(0, 255)
	wideIdx := intType(0, 1000)
	dictOfByte := &Type{Kind: KindDict, IndexType: byteIdx, ElemType: intType(0, 10)}
	dictOfWide := &Type{Kind: KindDict, IndexType: wideIdx, ElemType: intType(0, 10)}
	if tag, _ := dictOfByte.ExpectedTag(); tag != rtvalue.KByteDict {
		t.Errorf("a dict indexed by a byte-range ordinal should use KByteDict, got %v", tag)
	}
	if tag, _ := dictOfWide.ExpectedTag(); tag != rtvalue.KDict {
		t.Errorf("a dict indexed by a wide ordinal should use KDict, got %v", tag)
	}
}
