package rtvalue

// Vec is a typed vector of Variants (spec.md 3 "Typed vectors"). Its
// finalizer releases elements highest-to-lowest before freeing, per the
// "finalization runs from the highest element to the lowest" invariant.
type Vec struct {
	hdr  Header
	data []Variant
}

var nullVec = &Vec{hdr: newPinnedHeader()}

func NewVec() *Vec { return nullVec }

func (v *Vec) Retain() { v.hdr.Retain() }

func (v *Vec) Release() {
	if v.hdr.release() {
		for i := len(v.data) - 1; i >= 0; i-- {
			v.data[i].Destroy()
		}
		v.data = nil
	}
}

func (v *Vec) Size() int       { return len(v.data) }
func (v *Vec) IsEmpty() bool   { return len(v.data) == 0 }
func (v *Vec) Unique() bool    { return v.hdr.Unique() }
func (v *Vec) Elems() []Variant { return v.data }

func (v *Vec) ensureUnique(neededCap int) *Vec {
	if v.Unique() && cap(v.data) >= neededCap {
		return v
	}
	target := neededCap
	if target < len(v.data) {
		target = len(v.data)
	}
	nv := &Vec{hdr: newHeader(), data: make([]Variant, len(v.data), target)}
	for i, e := range v.data {
		nv.data[i] = e.Copy()
	}
	return nv
}

// Append pushes val (retaining any refcounted payload it carries) and
// returns the (possibly reallocated) handle.
func (v *Vec) Append(val Variant) *Vec {
	newSize := len(v.data) + 1
	grown := growElems(cap(v.data), newSize)
	nv := v.ensureUnique(grown)
	nv.data = append(nv.data, val.Copy())
	return nv
}

// Elem reads element i (no copy-on-write needed for reads).
func (v *Vec) Elem(i int) (Variant, error) {
	if i < 0 || i >= len(v.data) {
		return Variant{}, indexErr(i, len(v.data))
	}
	return v.data[i], nil
}

// SetElem writes element i, cloning first if shared.
func (v *Vec) SetElem(i int, val Variant) (*Vec, error) {
	if i < 0 || i >= len(v.data) {
		return v, indexErr(i, len(v.data))
	}
	nv := v.ensureUnique(cap(v.data))
	nv.data[i].Destroy()
	nv.data[i] = val.Copy()
	return nv, nil
}

// VecConcat returns a Vec holding a's elements followed by b's. When
// either operand is empty the other operand itself is returned.
func VecConcat(a, b *Vec) *Vec {
	if a.IsEmpty() {
		return b
	}
	if b.IsEmpty() {
		return a
	}
	nv := &Vec{hdr: newHeader(), data: make([]Variant, 0, a.Size()+b.Size())}
	for _, e := range a.data {
		nv.data = append(nv.data, e.Copy())
	}
	for _, e := range b.data {
		nv.data = append(nv.data, e.Copy())
	}
	return nv
}
