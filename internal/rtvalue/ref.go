package rtvalue

// Ref is a single-slot box over a Variant (spec.md 3 "References"). Unlike
// the other containers it is not copy-on-write from the language's point of
// view: MkRef/Deref/StoreRef (spec.md 4.6 group 5) intentionally share the
// box across aliases, which is exactly what a reference type means.
type Ref struct {
	hdr Header
	val Variant
}

func NewRef(v Variant) *Ref {
	return &Ref{hdr: newHeader(), val: v.Copy()}
}

func (r *Ref) Retain() { r.hdr.Retain() }

func (r *Ref) Release() {
	if r.hdr.release() {
		r.val.Destroy()
	}
}

func (r *Ref) Get() Variant { return r.val }

func (r *Ref) Set(v Variant) {
	r.val.Destroy()
	r.val = v.Copy()
}

func (r *Ref) IsEmpty() bool { return r.val.Empty() }
