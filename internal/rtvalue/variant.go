package rtvalue

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/kr/text"
)

// Kind is the Variant tag (spec.md 3). The order here fixes the ordering
// used by Compare when tags differ (spec.md 3: "Ordering is lexicographic
// by (tag, payload)").
type Kind uint8

const (
	KVoid Kind = iota
	KOrd
	KReal
	KVarPtr
	KStr
	KVec
	KSet
	KOrdSet
	KDict
	KByteDict
	KRef
	KRtObj
)

func (k Kind) String() string {
	switch k {
	case KVoid:
		return "void"
	case KOrd:
		return "ord"
	case KReal:
		return "real"
	case KVarPtr:
		return "typeref"
	case KStr:
		return "str"
	case KVec:
		return "vec"
	case KSet:
		return "set"
	case KOrdSet:
		return "ordset"
	case KDict:
		return "dict"
	case KByteDict:
		return "bytedict"
	case KRef:
		return "ref"
	case KRtObj:
		return "rtobj"
	default:
		return "?"
	}
}

// Runtime is satisfied by whatever a KRtObj Variant holds: heap runtime
// objects such as stateobj (spec.md component C4). Defined here, in
// rtvalue, and implemented structurally by internal/rtstate so that
// package never needs to import rtstate (spec.md 9: weak, non-owning back
// references; no import cycle between the value model and its heaviest
// user).
type Runtime interface {
	RCHandle
	IsEmpty() bool
}

// Variant is the tagged dynamic value of spec.md component C2. The payload
// is either inline (i, f) or a refcounted handle (obj) or, for VarPtr, a
// raw non-owning pointer to a type descriptor (tref, kept as interface{}
// to avoid rtvalue importing rtypes — the same type-erasure technique the
// teacher applies with its own "type Value interface{}").
type Variant struct {
	tag  Kind
	i    int64
	f    float64
	obj  RCHandle
	tref interface{}
}

func Void() Variant { return Variant{tag: KVoid} }

func FromOrd(i int64) Variant { return Variant{tag: KOrd, i: i} }

func FromBool(b bool) Variant {
	if b {
		return FromOrd(1)
	}
	return FromOrd(0)
}

func FromReal(f float64) Variant { return Variant{tag: KReal, f: f} }

func FromTypeRef(t interface{}) Variant { return Variant{tag: KVarPtr, tref: t} }

// FromStr wraps s into a Variant, adopting the caller's reference: s must
// already be a handle the caller owns outright (freshly constructed, or
// returned by a COW mutator), not one it still needs a separate reference
// to. Call s.Retain() first if the caller means to keep its own handle too.
func FromStr(s *Str) Variant { return Variant{tag: KStr, obj: s} }

func FromVec(v *Vec) Variant { return Variant{tag: KVec, obj: v} }

func FromSet(s *Set) Variant { return Variant{tag: KSet, obj: s} }

func FromOrdSet(s *OrdSet) Variant { return Variant{tag: KOrdSet, obj: s} }

func FromDict(d *Dict) Variant { return Variant{tag: KDict, obj: d} }

func FromByteDict(d *ByteDict) Variant { return Variant{tag: KByteDict, obj: d} }

func FromRef(r *Ref) Variant { return Variant{tag: KRef, obj: r} }

func FromRuntime(r Runtime) Variant { return Variant{tag: KRtObj, obj: r} }

func (v Variant) Tag() Kind { return v.tag }

func (v Variant) IsVoid() bool { return v.tag == KVoid }

func (v Variant) OrdUnchecked() int64 { return v.i }
func (v Variant) RealUnchecked() float64 { return v.f }
func (v Variant) TypeRefUnchecked() interface{} { return v.tref }
func (v Variant) StrUnchecked() *Str { return v.obj.(*Str) }
func (v Variant) VecUnchecked() *Vec { return v.obj.(*Vec) }
func (v Variant) SetUnchecked() *Set { return v.obj.(*Set) }
func (v Variant) OrdSetUnchecked() *OrdSet { return v.obj.(*OrdSet) }
func (v Variant) DictUnchecked() *Dict { return v.obj.(*Dict) }
func (v Variant) ByteDictUnchecked() *ByteDict { return v.obj.(*ByteDict) }
func (v Variant) RefUnchecked() *Ref { return v.obj.(*Ref) }
func (v Variant) RuntimeUnchecked() Runtime { return v.obj.(Runtime) }

// Ord returns the ordinal payload, checked: ok is false if the tag isn't
// KOrd.
func (v Variant) Ord() (int64, bool) {
	if v.tag != KOrd {
		return 0, false
	}
	return v.i, true
}

func (v Variant) Real() (float64, bool) {
	if v.tag != KReal {
		return 0, false
	}
	return v.f, true
}

func (v Variant) Str() (*Str, bool) {
	if v.tag != KStr {
		return nil, false
	}
	return v.obj.(*Str), true
}

// Copy returns a value that shares the same handle (retaining it) rather
// than deep-copying payload — containers are copy-on-write, so sharing the
// handle and bumping the refcount is the correct "copy" (spec.md 4.2).
func (v Variant) Copy() Variant {
	if v.obj != nil {
		v.obj.Retain()
	}
	return v
}

// Destroy releases any refcounted payload. Safe to call on a Void/Ord/Real
// Variant (no-op).
func (v Variant) Destroy() {
	if v.obj != nil {
		v.obj.Release()
	}
}

// Assign implements "assign-to": release the old handle after retaining
// the new one, tolerant of self-aliasing (spec.md 4.1/4.2). *v is mutated
// in place.
func (v *Variant) Assign(newVal Variant) {
	if newVal.obj != nil {
		newVal.obj.Retain()
	}
	old := *v
	*v = newVal
	old.Destroy()
}

// podvar swaps payloads between two Variants without touching refcounts —
// the "move-equivalent via ptr-swap" of spec.md 4.2, used by the generator
// and VM when a value is being relocated rather than duplicated.
func PodSwap(a, b *Variant) { *a, *b = *b, *a }

// Empty implements spec.md 3's per-tag emptiness rule.
func (v Variant) Empty() bool {
	switch v.tag {
	case KVoid:
		return true
	case KOrd:
		return v.i == 0
	case KReal:
		return v.f == 0
	case KVarPtr:
		return v.tref == nil
	case KStr:
		return v.obj.(*Str).IsEmpty()
	case KVec:
		return v.obj.(*Vec).IsEmpty()
	case KSet:
		return v.obj.(*Set).IsEmpty()
	case KOrdSet:
		return v.obj.(*OrdSet).IsEmpty()
	case KDict:
		return v.obj.(*Dict).IsEmpty()
	case KByteDict:
		return v.obj.(*ByteDict).IsEmpty()
	case KRef:
		return v.obj.(*Ref).IsEmpty()
	case KRtObj:
		return v.obj.(Runtime).IsEmpty()
	default:
		return true
	}
}

// Compare is lexicographic by (tag, payload): differing tags compare by
// tag order; same tag compares structurally for Ord/Real/Str and by handle
// identity for every other refcounted kind (spec.md 3: "identity-by-handle
// ... because containers are canonicalized via copy-on-write").
func (v Variant) Compare(o Variant) int {
	if v.tag != o.tag {
		if v.tag < o.tag {
			return -1
		}
		return 1
	}
	switch v.tag {
	case KVoid:
		return 0
	case KOrd:
		switch {
		case v.i < o.i:
			return -1
		case v.i > o.i:
			return 1
		default:
			return 0
		}
	case KReal:
		switch {
		case v.f < o.f:
			return -1
		case v.f > o.f:
			return 1
		default:
			return 0
		}
	case KStr:
		return v.obj.(*Str).Compare(o.obj.(*Str))
	case KVarPtr:
		return comparePtr(v.tref, o.tref)
	default:
		return comparePtr(v.obj, o.obj)
	}
}

func comparePtr(a, b interface{}) int {
	// Identity-by-handle: compare the formatted pointer value, stable for
	// a given process run and sufficient for the sorted-container ordering
	// contract (these kinds are never used as sort keys in the spec's own
	// container kinds, only compared for equality, but a total order keeps
	// Compare usable everywhere Equal is).
	as, bs := fmt.Sprintf("%p", a), fmt.Sprintf("%p", b)
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	default:
		return 0
	}
}

func (v Variant) Equal(o Variant) bool {
	if v.tag != o.tag {
		return false
	}
	if v.tag == KVarPtr {
		return v.tref == o.tref
	}
	if v.tag == KStr {
		return v.Compare(o) == 0
	}
	if v.obj != nil || o.obj != nil {
		return v.obj == o.obj
	}
	return v.Compare(o) == 0
}

// Dump writes a human-readable rendering to w, used by the Dump opcode and
// assertion diagnostics (spec.md 4.7/6). Output goes through a kr/text
// indent writer (the way the teacher reaches for small formatting helpers
// instead of hand-rolled indentation) that leaves the first line as is
// and indents any later line by two spaces; every rendering below is a
// single line, so in practice nothing is indented.
func (v Variant) Dump(w io.Writer) {
	iw := text.NewIndentWriter(w, nil, []byte("  "))
	v.dump(iw)
}

func (v Variant) dump(w io.Writer) {
	switch v.tag {
	case KVoid:
		fmt.Fprint(w, "void")
	case KOrd:
		fmt.Fprint(w, strconv.FormatInt(v.i, 10))
	case KReal:
		fmt.Fprint(w, strconv.FormatFloat(v.f, 'g', -1, 64))
	case KVarPtr:
		fmt.Fprintf(w, "typeref(%p)", v.tref)
	case KStr:
		fmt.Fprintf(w, "%q", v.obj.(*Str).String())
	case KVec:
		vec := v.obj.(*Vec)
		fmt.Fprint(w, "[")
		for i, e := range vec.Elems() {
			if i > 0 {
				fmt.Fprint(w, ", ")
			}
			e.dump(w)
		}
		fmt.Fprint(w, "]")
	case KSet:
		s := v.obj.(*Set)
		fmt.Fprint(w, "{")
		for i, k := range s.Keys() {
			if i > 0 {
				fmt.Fprint(w, ", ")
			}
			k.dump(w)
		}
		fmt.Fprint(w, "}")
	case KOrdSet:
		fmt.Fprintf(w, "<ordset:%d elems>", v.obj.(*OrdSet).Size())
	case KDict:
		d := v.obj.(*Dict)
		keys, values := d.Pairs()
		fmt.Fprint(w, "{")
		for i := range keys {
			if i > 0 {
				fmt.Fprint(w, ", ")
			}
			keys[i].dump(w)
			fmt.Fprint(w, " = ")
			values[i].dump(w)
		}
		fmt.Fprint(w, "}")
	case KByteDict:
		fmt.Fprintf(w, "<bytedict:%d elems>", v.obj.(*ByteDict).Size())
	case KRef:
		fmt.Fprint(w, "^")
		v.obj.(*Ref).Get().dump(w)
	case KRtObj:
		fmt.Fprintf(w, "<rtobj:%p>", v.obj)
	}
}

func (v Variant) String() string {
	var sb strings.Builder
	v.dump(&sb)
	return sb.String()
}
