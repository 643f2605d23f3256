package rtvalue

import "golang.org/x/exp/slices"

// Set is a general (non-ordinal-bitset) set: a sorted vector of keys,
// ordered by the Variant comparator (spec.md "General sets are sorted
// vectors of keys"). Membership and insertion use a comparator-driven
// binary search from golang.org/x/exp/slices the way the teacher's own
// dataframe/array code reaches for a library helper instead of a
// hand-rolled bisection.
type Set struct {
	hdr  Header
	keys []Variant
}

var nullSet = &Set{hdr: newPinnedHeader()}

func NewSet() *Set { return nullSet }

func (s *Set) Retain() { s.hdr.Retain() }

func (s *Set) Release() {
	if s.hdr.release() {
		for i := len(s.keys) - 1; i >= 0; i-- {
			s.keys[i].Destroy()
		}
		s.keys = nil
	}
}

func (s *Set) Unique() bool  { return s.hdr.Unique() }
func (s *Set) Size() int     { return len(s.keys) }
func (s *Set) IsEmpty() bool { return len(s.keys) == 0 }
func (s *Set) Keys() []Variant { return s.keys }

func (s *Set) search(key Variant) (int, bool) {
	return slices.BinarySearchFunc(s.keys, key, func(a, b Variant) int { return a.Compare(b) })
}

func (s *Set) Has(key Variant) bool {
	_, ok := s.search(key)
	return ok
}

func (s *Set) ensureUnique(neededCap int) *Set {
	if s.Unique() && cap(s.keys) >= neededCap {
		return s
	}
	target := neededCap
	if target < len(s.keys) {
		target = len(s.keys)
	}
	ns := &Set{hdr: newHeader(), keys: make([]Variant, len(s.keys), target)}
	for i, k := range s.keys {
		ns.keys[i] = k.Copy()
	}
	return ns
}

// Add inserts key in sorted position, a no-op if already present.
func (s *Set) Add(key Variant) *Set {
	pos, found := s.search(key)
	if found {
		return s
	}
	grown := growElems(cap(s.keys), len(s.keys)+1)
	ns := s.ensureUnique(grown)
	ns.keys = append(ns.keys, Variant{})
	copy(ns.keys[pos+1:], ns.keys[pos:])
	ns.keys[pos] = key.Copy()
	return ns
}
