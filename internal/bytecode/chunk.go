package bytecode

import "encoding/binary"

// DebugInfo stores source location for each bytecode instruction, kept
// exactly as the teacher's (one entry per byte, looked up by ip).
type DebugInfo struct {
	Line     int
	Column   int
	File     string
	Function string
}

// Chunk is a code segment: the opcode/operand byte string plus its
// constant pool and per-byte debug info (spec.md component C6/C8). It is
// the "byte string" of spec.md section 6's bytecode layout.
type Chunk struct {
	Code      []byte
	Constants []interface{}
	Debug     []DebugInfo
}

func NewChunk() *Chunk {
	return &Chunk{
		Code:      []byte{},
		Constants: []interface{}{},
		Debug:     []DebugInfo{},
	}
}

func (c *Chunk) WriteOp(op OpCode) {
	c.Code = append(c.Code, byte(op))
	c.Debug = append(c.Debug, DebugInfo{})
}

func (c *Chunk) WriteOpWithDebug(op OpCode, debug DebugInfo) {
	c.Code = append(c.Code, byte(op))
	c.Debug = append(c.Debug, debug)
}

func (c *Chunk) WriteByte(b byte) {
	c.Code = append(c.Code, b)
	c.Debug = append(c.Debug, DebugInfo{})
}

func (c *Chunk) WriteByteWithDebug(b byte, debug DebugInfo) {
	c.Code = append(c.Code, b)
	c.Debug = append(c.Debug, debug)
}

// WriteInt32 writes a 4-byte host-endian (little-endian) integer operand.
func (c *Chunk) WriteInt32(v int32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(v))
	c.Code = append(c.Code, buf[:]...)
	c.Debug = append(c.Debug, DebugInfo{}, DebugInfo{}, DebugInfo{}, DebugInfo{})
}

// WriteJump writes a placeholder 16-bit jump offset and returns the byte
// offset of the placeholder, for later patching by ResolveJump.
func (c *Chunk) WriteJump() int {
	pos := len(c.Code)
	c.Code = append(c.Code, 0, 0)
	c.Debug = append(c.Debug, DebugInfo{}, DebugInfo{})
	return pos
}

// ResolveJump patches the placeholder at pos so that the jump, once fully
// decoded (i.e. from the byte just past the 2-byte offset), lands at
// target. Fails if the distance does not fit a signed 16-bit integer
// (spec.md 4.7: "resolution stores target - offsEnd ... checked at emit
// time to fit in 16 bits").
func (c *Chunk) ResolveJump(pos, target int) bool {
	offsEnd := pos + 2
	dist := target - offsEnd
	if dist > 32767 || dist < -32768 {
		return false
	}
	binary.LittleEndian.PutUint16(c.Code[pos:pos+2], uint16(int16(dist)))
	return true
}

// ReadJump decodes the 16-bit relative offset at pos, returning the
// absolute target relative to offsEnd = pos+2 (the VM and the
// disassembler both use this).
func ReadJump(code []byte, pos int) int {
	dist := int16(binary.LittleEndian.Uint16(code[pos : pos+2]))
	return pos + 2 + int(dist)
}

func (c *Chunk) AddConstant(val interface{}) int {
	c.Constants = append(c.Constants, val)
	return len(c.Constants) - 1
}

func (c *Chunk) GetDebugInfo(ip int) DebugInfo {
	if ip >= 0 && ip < len(c.Debug) {
		return c.Debug[ip]
	}
	return DebugInfo{}
}

// InstructionAt returns the opcode at ip plus the offset just past its
// arguments, per the Layout table — the single source of truth the
// decoder, the listing, and the generator's offset bookkeeping all share.
func (c *Chunk) InstructionAt(ip int) (OpCode, int) {
	op := OpCode(c.Code[ip])
	return op, ip + 1 + ArgSize(op)
}
