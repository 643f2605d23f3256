// Package rtypes implements the type descriptor system (spec.md component
// C3): a DAG of Type nodes owned by the enclosing State, with identity,
// assignability, runtime typechecking and a single-assignment derivation
// cache (vec-of-T, set-of-T, ref-to-T, fifo-of-T).
//
// Grounded on the teacher's dynamic, untyped Value model generalized to the
// explicit static type descriptors spec.md requires (the teacher performs
// no compile-time type derivation at all), and on the original C++
// typesys.h/typesys.cpp for the derivation-cache and owner rules the
// distilled spec only states as invariants.
package rtypes

import "sentra/internal/rtvalue"

// Kind enumerates the type descriptor kinds of spec.md section 3.
type Kind uint8

const (
	KindTypeRef Kind = iota
	KindVoid
	KindVariant
	KindRef
	KindBool
	KindChar
	KindInt
	KindEnum
	KindNullCont
	KindVec
	KindSet
	KindDict
	KindFifo
	KindFuncPtr
	KindState
)

func (k Kind) String() string {
	names := [...]string{"typeref", "void", "variant", "ref", "bool", "char",
		"int", "enum", "nullcont", "vec", "set", "dict", "fifo", "funcptr", "state"}
	if int(k) < len(names) {
		return names[k]
	}
	return "?"
}

// EnumValues is the shared value list of an enum base type; a subrange of
// an enum narrows Left/Right on its own Type but points at the same
// EnumValues (spec.md 4.3: "Enum values are shared across subrange
// enumerations of the same base enum").
type EnumValues struct {
	Names  []string
	Values []int64
}

// Var is a named, typed slot: a State's self-var (inner var) or local.
type Var struct {
	Name  string
	Typ   *Type
	Index int // self-var index (0..254) or stack offset from base
}

// Type is a node in the type descriptor DAG. Only the fields relevant to
// Kind are populated; see spec.md 3's field list.
type Type struct {
	Kind  Kind
	Owner *State
	Name  string

	// Bool/Char/Int: [Left,Right] ordinal bounds. Enum: subrange bounds
	// into the shared EnumValues.
	Left, Right int64
	Enum        *EnumValues

	// Vec/Set/Dict/Fifo container shape: IndexType nil means a Vec (or
	// Fifo); ElemType nil means a Set.
	IndexType *Type
	ElemType  *Type

	// FuncPtr prototype.
	RetType *Type
	Params  []*Type

	// KindState payload.
	State *State

	// Derivation cache, single-assignment (spec.md invariant: "the cache
	// is single-assignment").
	refCache  *Type
	vecCache  *Type
	setCache  *Type
	fifoCache *Type
}

// IsOrdinal reports whether values of this type are represented with the
// KOrd Variant tag (Bool, Char, Int, Enum and their subranges).
func (t *Type) IsOrdinal() bool {
	switch t.Kind {
	case KindBool, KindChar, KindInt, KindEnum:
		return true
	default:
		return false
	}
}

// ExpectedTag returns the Variant tag values of this type are stored under,
// or a false ok for kinds with no single tag (KindVoid has its own rule,
// KindVariant accepts any tag, KindState/KindFuncPtr are not variant-typed
// directly).
func (t *Type) ExpectedTag() (rtvalue.Kind, bool) {
	switch t.Kind {
	case KindTypeRef:
		return rtvalue.KVarPtr, true
	case KindVoid:
		return rtvalue.KVoid, true
	case KindRef:
		return rtvalue.KRef, true
	case KindBool, KindChar, KindInt, KindEnum:
		return rtvalue.KOrd, true
	case KindVec:
		return rtvalue.KVec, true
	case KindSet:
		if fitsByteOrdinal(t.IndexType) {
			return rtvalue.KOrdSet, true
		}
		return rtvalue.KSet, true
	case KindDict:
		if fitsByteOrdinal(t.IndexType) {
			return rtvalue.KByteDict, true
		}
		return rtvalue.KDict, true
	case KindFifo:
		return rtvalue.KRtObj, true
	default:
		return 0, false
	}
}

// fitsByteOrdinal reports whether idx is an ordinal type whose full value
// range fits a single byte, the condition spec.md 4.3 uses to decide
// between an ordinal-bitset/byte-dict representation and a general
// set/dict ("deriving a container ... otherwise a dict or array depending
// on whether the index type fits an ordinal bitset").
func fitsByteOrdinal(idx *Type) bool {
	if idx == nil || !idx.IsOrdinal() {
		return false
	}
	return idx.Left >= 0 && idx.Right <= 255
}
