package rtvalue

import "sentra/internal/rterr"

// ByteVec is the copy-on-write byte buffer underlying Str. It implements the
// insert/append/erase/resize contract of spec.md 4.1 directly; Strings add
// only the C-string NUL convention on top (string.go).
type ByteVec struct {
	hdr  Header
	data []byte
}

var nullByteVec = &ByteVec{hdr: newPinnedHeader()}

// NewByteVec returns the shared empty singleton; writers must CloneForWrite
// before mutating (handled transparently by Insert/Append/Erase/Resize).
func NewByteVec() *ByteVec { return nullByteVec }

func (b *ByteVec) Retain()  { b.hdr.Retain() }
func (b *ByteVec) Release() {
	if b.hdr.release() {
		b.data = nil
	}
}

func (b *ByteVec) Unique() bool { return b.hdr.Unique() }
func (b *ByteVec) Size() int    { return len(b.data) }
func (b *ByteVec) Bytes() []byte { return b.data }

// clonePrecise returns a private copy sized to exactly cap bytes of live
// data (the "precise, non-growing allocation" of spec.md 4.1).
func (b *ByteVec) clonePrecise(capacity int) *ByteVec {
	n := &ByteVec{hdr: newHeader(), data: make([]byte, len(b.data), capacity)}
	copy(n.data, b.data)
	return n
}

// ensureUnique returns a handle the caller may safely mutate in place: if b
// is already unique it is returned; otherwise a private precise clone is
// made first (copy-on-write).
func ensureUnique(b *ByteVec, neededCap int) *ByteVec {
	if b.Unique() && cap(b.data) >= neededCap {
		return b
	}
	target := neededCap
	if target < len(b.data) {
		target = len(b.data)
	}
	return b.clonePrecise(target)
}

// Insert makes room for n bytes at pos and returns a (possibly new) handle
// plus a slice over the inserted region for the caller to fill. Valid
// insert positions are [0, size].
func (b *ByteVec) Insert(pos, n int) (*ByteVec, []byte, error) {
	if pos < 0 || pos > len(b.data) {
		return b, nil, rterr.New(rterr.IndexError, "insert position out of range")
	}
	if err := checkSize(len(b.data) + n); err != nil {
		return b, nil, err
	}
	newSize := len(b.data) + n
	grownCap := growBytes(cap(b.data), newSize)
	nb := ensureUnique(b, grownCap)
	if cap(nb.data) < newSize {
		nb = nb.clonePrecise(grownCap)
	}
	nb.data = nb.data[:newSize]
	copy(nb.data[pos+n:], nb.data[pos:newSize-n])
	return nb, nb.data[pos : pos+n], nil
}

// Append is Insert at size.
func (b *ByteVec) Append(n int) (*ByteVec, []byte, error) {
	return b.Insert(len(b.data), n)
}

// Erase removes n bytes at pos. Valid range is [0, size).
func (b *ByteVec) Erase(pos, n int) (*ByteVec, error) {
	if pos < 0 || n < 0 || pos+n > len(b.data) {
		return b, rterr.New(rterr.IndexError, "erase range out of range")
	}
	newSize := len(b.data) - n
	precise := shouldShrink(cap(b.data), newSize, smallCap)
	var nb *ByteVec
	if precise {
		nb = &ByteVec{hdr: newHeader(), data: make([]byte, 0, newSize)}
		nb.data = append(nb.data, b.data[:pos]...)
		nb.data = append(nb.data, b.data[pos+n:]...)
		return nb, nil
	}
	nb = ensureUnique(b, cap(b.data))
	copy(nb.data[pos:], nb.data[pos+n:])
	nb.data = nb.data[:newSize]
	return nb, nil
}

// Resize grows (zero-filling the tail) or shrinks to newSize.
func (b *ByteVec) Resize(newSize int, fill byte) (*ByteVec, error) {
	if err := checkSize(newSize); err != nil {
		return b, err
	}
	if newSize > len(b.data) {
		nb, region, err := b.Append(newSize - len(b.data))
		if err != nil {
			return b, err
		}
		for i := range region {
			region[i] = fill
		}
		return nb, nil
	}
	return b.Erase(newSize, len(b.data)-newSize)
}
