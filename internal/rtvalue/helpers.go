package rtvalue

import "sentra/internal/rterr"

func indexErr(i, size int) error {
	return rterr.Newf(rterr.IndexError, "index %d out of range [0,%d)", i, size)
}

// RCHandle is satisfied by every refcounted container kind (Str, Vec, Set,
// OrdSet, Dict, Ref) and by runtime objects (stateobj) held in an RtObj
// Variant. rtvalue never imports the package that defines stateobj;
// structural typing is enough (spec.md 9: "Dynamic dispatch ... model via
// match/trait").
type RCHandle interface {
	Retain()
	Release()
}

// Emptyable containers answer IsEmpty for Variant.Empty().
type Emptyable interface {
	IsEmpty() bool
}
