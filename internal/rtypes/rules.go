package rtypes

import (
	"sentra/internal/rterr"
	"sentra/internal/rtvalue"
)

// IdenticalTo is structural identity (spec.md 4.3): same Kind and same
// shape, recursing into element/index/return/param types. Two distinct
// Type pointers can be IdenticalTo without being the same derivation (e.g.
// two independently-declared `int` aliases), but same-pointer always
// implies identical.
func (t *Type) IdenticalTo(o *Type) bool {
	if t == o {
		return true
	}
	if t == nil || o == nil || t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case KindBool, KindChar, KindInt:
		return t.Left == o.Left && t.Right == o.Right
	case KindEnum:
		return t.Enum == o.Enum && t.Left == o.Left && t.Right == o.Right
	case KindRef, KindVec:
		return t.ElemType.IdenticalTo(o.ElemType)
	case KindSet:
		return t.IndexType.IdenticalTo(o.IndexType)
	case KindDict:
		return t.IndexType.IdenticalTo(o.IndexType) && t.ElemType.IdenticalTo(o.ElemType)
	case KindFifo:
		return t.ElemType.IdenticalTo(o.ElemType)
	case KindFuncPtr:
		if len(t.Params) != len(o.Params) || !t.RetType.IdenticalTo(o.RetType) {
			return false
		}
		for i := range t.Params {
			if !t.Params[i].IdenticalTo(o.Params[i]) {
				return false
			}
		}
		return true
	case KindState:
		return t.State == o.State
	default:
		return true // TypeRef, Void, Variant, NullCont are singletons by kind
	}
}

// CanAssignTo is the implicit-conversion relation: identical types, any
// type assigning to Variant, the null-container placeholder assigning to
// any container kind, and ordinal subrange widening (assigning a narrower
// subrange to a wider one of the same base never needs a runtime check).
func (t *Type) CanAssignTo(o *Type) bool {
	if t.IdenticalTo(o) {
		return true
	}
	if o.Kind == KindVariant {
		return true
	}
	if t.Kind == KindNullCont {
		switch o.Kind {
		case KindVec, KindSet, KindDict, KindFifo:
			return true
		}
	}
	if t.IsOrdinal() && o.IsOrdinal() && t.Kind == o.Kind {
		if t.Kind == KindEnum && t.Enum != o.Enum {
			return false
		}
		return t.Left >= o.Left && t.Right <= o.Right
	}
	if t.Kind == KindVec && o.Kind == KindVec {
		return t.ElemType.CanAssignTo(o.ElemType)
	}
	return false
}

// IsMyType is the runtime tag check: does v's Variant tag match the
// representation this Type expects.
func (t *Type) IsMyType(v rtvalue.Variant) bool {
	if t.Kind == KindVariant {
		return true
	}
	tag, ok := t.ExpectedTag()
	if !ok {
		return false
	}
	return v.Tag() == tag
}

// RuntimeTypecast mutates *v in place into this Type's representation
// where legal, or fails with TypeMismatch / OutOfRange (spec.md 4.3).
func (t *Type) RuntimeTypecast(v *rtvalue.Variant) error {
	switch t.Kind {
	case KindBool:
		ord, ok := v.Ord()
		if !ok {
			return rterr.New(rterr.TypeMismatch, "cannot cast to bool")
		}
		if ord != 0 {
			*v = rtvalue.FromOrd(1)
		} else {
			*v = rtvalue.FromOrd(0)
		}
		return nil
	case KindChar, KindInt, KindEnum:
		ord, ok := v.Ord()
		if !ok {
			return rterr.New(rterr.TypeMismatch, "cannot cast to ordinal type")
		}
		if ord < t.Left || ord > t.Right {
			return rterr.Newf(rterr.OutOfRange, "%d not in [%d,%d]", ord, t.Left, t.Right)
		}
		return nil
	case KindVariant:
		return nil
	default:
		if !t.IsMyType(*v) {
			return rterr.Newf(rterr.TypeMismatch, "value is not a %s", t.Kind)
		}
		return nil
	}
}

// NewOrdinalSubrange builds an ordinal subrange type. left == right+1 is
// explicitly an empty range (spec.md 8); left > right+1 is an error.
func NewOrdinalSubrange(kind Kind, left, right int64) (*Type, error) {
	if left > right+1 {
		return nil, rterr.Newf(rterr.OutOfRange, "invalid subrange [%d,%d]", left, right)
	}
	return &Type{Kind: kind, Left: left, Right: right}, nil
}

// NewEnumSubrange narrows an existing enum type to [left,right] while
// sharing its EnumValues list (spec.md 4.3: subrange enums share values).
func NewEnumSubrange(base *Type, left, right int64) (*Type, error) {
	if base.Kind != KindEnum {
		return nil, rterr.New(rterr.TypeMismatch, "subrange base is not an enum")
	}
	if left > right+1 {
		return nil, rterr.Newf(rterr.OutOfRange, "invalid subrange [%d,%d]", left, right)
	}
	return &Type{Kind: KindEnum, Enum: base.Enum, Left: left, Right: right}, nil
}
