package rtvalue

import "sentra/internal/rterr"

// ByteDict is the byte-keyed dictionary specialization (spec.md 3:
// "Dictionaries are ... byte-keyed and general"), used whenever the index
// type fits an ordinal bitset (spec.md 4.3 derivation contract). Backed by
// a fixed 256-slot array plus a presence bitmap rather than a sorted
// vector, since the key domain is already dense and total.
type ByteDict struct {
	hdr     Header
	present [4]uint64
	values  [256]Variant
}

func (d *ByteDict) has(key byte) bool {
	return d.present[key/64]&(1<<(uint(key)%64)) != 0
}

func (d *ByteDict) setBit(key byte) {
	d.present[key/64] |= 1 << (uint(key) % 64)
}

func (d *ByteDict) clearBit(key byte) {
	d.present[key/64] &^= 1 << (uint(key) % 64)
}

var nullByteDict = &ByteDict{hdr: newPinnedHeader()}

func NewByteDict() *ByteDict { return nullByteDict }

func (d *ByteDict) Retain() { d.hdr.Retain() }

func (d *ByteDict) Release() {
	if d.hdr.release() {
		for i := 255; i >= 0; i-- {
			if d.has(byte(i)) {
				d.values[i].Destroy()
			}
		}
	}
}

func (d *ByteDict) Unique() bool { return d.hdr.Unique() }

func (d *ByteDict) Size() int {
	n := 0
	for _, w := range d.present {
		for w != 0 {
			n += int(w & 1)
			w >>= 1
		}
	}
	return n
}

func (d *ByteDict) IsEmpty() bool { return d.Size() == 0 }

func (d *ByteDict) Get(key byte) (Variant, bool) {
	if !d.has(key) {
		return Variant{}, false
	}
	return d.values[key], true
}

func (d *ByteDict) ensureUnique() *ByteDict {
	if d.Unique() {
		return d
	}
	nd := &ByteDict{hdr: newHeader(), present: d.present}
	for i := 0; i < 256; i++ {
		if d.has(byte(i)) {
			nd.values[i] = d.values[i].Copy()
		}
	}
	return nd
}

// Set inserts or overwrites key -> val.
func (d *ByteDict) Set(key byte, val Variant) *ByteDict {
	nd := d.ensureUnique()
	if nd.has(key) {
		nd.values[key].Destroy()
	}
	nd.setBit(key)
	nd.values[key] = val.Copy()
	return nd
}

// Delete removes key if present; matches the "assigning empty deletes the
// key" storer semantics described in spec.md 4.7.
func (d *ByteDict) Delete(key byte) (*ByteDict, error) {
	if !d.has(key) {
		return d, rterr.Newf(rterr.IndexError, "key not found")
	}
	nd := d.ensureUnique()
	nd.values[key].Destroy()
	nd.values[key] = Variant{}
	nd.clearBit(key)
	return nd, nil
}
