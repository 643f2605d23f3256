package rtvalue

// Str is a ByteVec with the additional invariant that CString() returns a
// NUL-terminated view, appending the NUL into spare capacity without
// growing Size() (spec.md 3 "Strings"), reallocating precisely only when no
// spare capacity exists.
type Str struct {
	bv *ByteVec
}

var emptyStr = &Str{bv: nullByteVec}

func NewStr(s string) *Str {
	if len(s) == 0 {
		return emptyStr
	}
	bv, region, _ := NewByteVec().Append(len(s))
	copy(region, s)
	return &Str{bv: bv}
}

func (s *Str) Retain()  { s.bv.Retain() }
func (s *Str) Release() { s.bv.Release() }
func (s *Str) Size() int { return s.bv.Size() }
func (s *Str) IsEmpty() bool { return s.bv.Size() == 0 }
func (s *Str) String() string { return string(s.bv.Bytes()) }
func (s *Str) Unique() bool { return s.bv.Unique() }

// CString returns a NUL-terminated byte slice view. The trailing NUL lives
// in spare capacity (not counted by Size); if there is no spare capacity,
// one precise reallocation makes room. An empty string never allocates: it
// returns a pointer to a single static NUL byte.
var staticNUL = []byte{0}

func (s *Str) CString() []byte {
	if s.bv.Size() == 0 {
		return staticNUL
	}
	if cap(s.bv.Bytes()) > len(s.bv.Bytes()) {
		buf := s.bv.Bytes()[:len(s.bv.Bytes())+1]
		buf[len(buf)-1] = 0
		return buf
	}
	nb := s.bv.clonePrecise(s.bv.Size() + 1)
	nb.data = nb.data[:s.bv.Size()+1]
	nb.data[s.bv.Size()] = 0
	return nb.data
}

// Concat returns a Str holding a||b (spec StrCat opcode backing). When
// either operand is empty the other operand itself is returned.
func Concat(a, b *Str) *Str {
	if a.IsEmpty() {
		return b
	}
	if b.IsEmpty() {
		return a
	}
	bv, region, _ := NewByteVec().Append(a.Size() + b.Size())
	copy(region, a.bv.Bytes())
	copy(region[a.Size():], b.bv.Bytes())
	return &Str{bv: bv}
}

// SetElem replaces the byte at index i, performing copy-on-write.
func (s *Str) SetElem(i int, c byte) (*Str, error) {
	nb := ensureUnique(s.bv, cap(s.bv.Bytes()))
	if i < 0 || i >= len(nb.data) {
		return s, indexErr(i, len(nb.data))
	}
	nb.data[i] = c
	return &Str{bv: nb}, nil
}

func (s *Str) Elem(i int) (byte, error) {
	if i < 0 || i >= s.bv.Size() {
		return 0, indexErr(i, s.bv.Size())
	}
	return s.bv.Bytes()[i], nil
}

func (s *Str) Compare(o *Str) int {
	a, b := s.bv.Bytes(), o.bv.Bytes()
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}
