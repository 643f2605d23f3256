package rtvalue

import (
	"golang.org/x/exp/slices"

	"sentra/internal/rterr"
)

// Dict is a pair of parallel sorted vectors (keys, values), ordered by the
// Variant comparator (spec.md 3 "Dictionaries"). The invariant "keys vector
// is strictly sorted and the same length as values" is maintained by every
// mutator in this file.
type Dict struct {
	hdr    Header
	keys   []Variant
	values []Variant
}

var nullDict = &Dict{hdr: newPinnedHeader()}

func NewDict() *Dict { return nullDict }

func (d *Dict) Retain() { d.hdr.Retain() }

func (d *Dict) Release() {
	if d.hdr.release() {
		for i := len(d.keys) - 1; i >= 0; i-- {
			d.keys[i].Destroy()
			d.values[i].Destroy()
		}
		d.keys, d.values = nil, nil
	}
}

func (d *Dict) Unique() bool  { return d.hdr.Unique() }
func (d *Dict) Size() int     { return len(d.keys) }
func (d *Dict) IsEmpty() bool { return len(d.keys) == 0 }
func (d *Dict) Pairs() ([]Variant, []Variant) { return d.keys, d.values }

func (d *Dict) search(key Variant) (int, bool) {
	return slices.BinarySearchFunc(d.keys, key, func(a, b Variant) int { return a.Compare(b) })
}

func (d *Dict) Get(key Variant) (Variant, bool) {
	i, ok := d.search(key)
	if !ok {
		return Variant{}, false
	}
	return d.values[i], true
}

func (d *Dict) ensureUnique(neededCap int) *Dict {
	if d.Unique() && cap(d.keys) >= neededCap {
		return d
	}
	target := neededCap
	if target < len(d.keys) {
		target = len(d.keys)
	}
	nd := &Dict{hdr: newHeader(), keys: make([]Variant, len(d.keys), target), values: make([]Variant, len(d.values), target)}
	for i := range d.keys {
		nd.keys[i] = d.keys[i].Copy()
		nd.values[i] = d.values[i].Copy()
	}
	return nd
}

// Set inserts or overwrites key -> val, preserving sort order.
func (d *Dict) Set(key, val Variant) *Dict {
	pos, found := d.search(key)
	if found {
		nd := d.ensureUnique(cap(d.keys))
		nd.values[pos].Destroy()
		nd.values[pos] = val.Copy()
		return nd
	}
	grown := growElems(cap(d.keys), len(d.keys)+1)
	nd := d.ensureUnique(grown)
	nd.keys = append(nd.keys, Variant{})
	nd.values = append(nd.values, Variant{})
	copy(nd.keys[pos+1:], nd.keys[pos:len(nd.keys)-1])
	copy(nd.values[pos+1:], nd.values[pos:len(nd.values)-1])
	nd.keys[pos] = key.Copy()
	nd.values[pos] = val.Copy()
	return nd
}

// Delete removes key if present; matches the "assigning empty deletes the
// key" storer semantics described in spec.md 4.7 (DictElem store opcode).
func (d *Dict) Delete(key Variant) (*Dict, error) {
	pos, found := d.search(key)
	if !found {
		return d, rterr.Newf(rterr.IndexError, "key not found")
	}
	nd := &Dict{hdr: newHeader(), keys: make([]Variant, 0, len(d.keys)-1), values: make([]Variant, 0, len(d.values)-1)}
	for i := range d.keys {
		if i == pos {
			d.keys[i].Destroy()
			d.values[i].Destroy()
			continue
		}
		nd.keys = append(nd.keys, d.keys[i].Copy())
		nd.values = append(nd.values, d.values[i].Copy())
	}
	return nd, nil
}
