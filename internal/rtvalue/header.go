// Package rtvalue implements the refcounted container substrate (spec.md
// component C1) and the tagged Variant value (component C2): copy-on-write
// byte vectors, typed vectors, dictionaries, ordinal bitsets, strings,
// references and ranges, all built on a single atomic-refcount header.
//
// Grounded on the teacher's (sentra-language-sentra) internal/vm value
// model — "type Value interface{}" plus concrete boxed kinds — generalized
// here to the explicit tagged-union + refcount contract spec.md requires,
// since the teacher relies on Go's GC and never models copy-on-write
// explicitly.
package rtvalue

import (
	"sync/atomic"

	"sentra/internal/rterr"
)

// MemintMax bounds container size arithmetic; exceeding it is Overflow.
const MemintMax = 1<<62 - 1

// smallCap is the minimum capacity any growth allocates (spec.md 4.1).
const smallCap = 64

// midThreshold is the byte count below which capacity doubles; at or above
// it, capacity grows by 1.5x.
const midThreshold = 1024

// elemMidThreshold is the analogous doubling threshold for element-counted
// containers (typed vectors, dict halves, general sets), where elements are
// pointer-shaped Variant handles: 32 * sizeof(ptr) in spec.md's own words.
const elemMidThreshold = 32

// growCapacity implements the allocation policy of spec.md 4.1: below
// smallCap, grow to smallCap; below mid, double; above, grow by 1.5x. unit
// is "bytes" for byte-backed containers or "elements" for slice-backed
// ones; threshold is midThreshold or elemMidThreshold accordingly.
func growCapacity(current, needed, threshold int) int {
	if needed <= 0 {
		return 0
	}
	cap := current
	if cap == 0 {
		cap = threshold / 16
		if cap < 1 {
			cap = 1
		}
	}
	if cap < smallCap && threshold == midThreshold {
		cap = smallCap
	}
	for cap < needed {
		if cap < threshold {
			cap *= 2
		} else {
			cap = cap + cap/2
		}
	}
	return cap
}

// growBytes is growCapacity specialized for byte-backed containers.
func growBytes(current, needed int) int {
	if current == 0 {
		current = smallCap
	}
	return growCapacity(current, needed, midThreshold)
}

// growElems is growCapacity specialized for element-backed containers.
func growElems(current, needed int) int {
	return growCapacity(current, needed, elemMidThreshold)
}

// shouldShrink reports whether erasing down to newSize from capacity should
// trigger a precise reallocation: newSize is less than half of capacity and
// capacity is above the minimum threshold (spec.md 4.1 erase contract).
func shouldShrink(capacity, newSize, minThreshold int) bool {
	return capacity > minThreshold && newSize*2 < capacity
}

// Header is embedded in every refcounted container. It carries the atomic
// count; "unique" means Count() == 1. The null (zero-sized) singleton for
// each concrete container class pins refcount at a sentinel so Retain and
// Release on it are no-ops (spec.md 3: "never mutated, never freed, never
// participate in refcount arithmetic").
type Header struct {
	count  int32
	pinned bool
}

const pinnedCount = int32(1 << 30)

func newHeader() Header { return Header{count: 1} }

// NewHeader returns a Header with refcount 1, for packages outside rtvalue
// that embed Header directly in their own refcounted runtime objects
// (e.g. internal/rtstate's stateobj and FuncVal).
func NewHeader() Header { return newHeader() }

func newPinnedHeader() Header { return Header{count: pinnedCount, pinned: true} }

// Retain increments the refcount.
func (h *Header) Retain() {
	if h.pinned {
		return
	}
	atomic.AddInt32(&h.count, 1)
}

// release decrements the refcount and reports whether it reached zero (the
// caller must then run the concrete finalizer). Overflow on the refcount
// itself is not modeled: spec.md's Overflow kind concerns container size
// arithmetic, and a refcount wrapping int32 before a program could hold
// that many live handles is not reachable in practice.
func (h *Header) release() bool {
	if h.pinned {
		return false
	}
	return atomic.AddInt32(&h.count, -1) == 0
}

// Unique reports refcount == 1, i.e. this handle is the sole owner.
func (h *Header) Unique() bool {
	if h.pinned {
		return false // the null singleton is shared by everyone, so mutators clone it
	}
	return atomic.LoadInt32(&h.count) == 1
}

// ReleaseCount decrements the refcount and reports whether it reached
// zero. Exported so packages outside rtvalue that build their own
// refcounted runtime objects (e.g. internal/rtstate's stateobj) can embed
// Header directly instead of re-implementing atomic refcounting.
func (h *Header) ReleaseCount() bool { return h.release() }

func (h *Header) Count() int32 {
	if h.pinned {
		return 1
	}
	return atomic.LoadInt32(&h.count)
}

func checkSize(n int) error {
	if n < 0 || n > MemintMax {
		return rterr.New(rterr.Overflow, "container size out of range")
	}
	return nil
}
