package bytecode

import (
	"fmt"
	"io"
)

// Disassemble writes a textual listing of c to w, one line per
// instruction, walking the same Layout metadata table the decoder and the
// generator use (spec.md 4.6: "listings use the same table"; 6:
// "vmListing: when true, a disassembly is written next to each compiled
// module").
func Disassemble(c *Chunk, w io.Writer, title string) {
	fmt.Fprintf(w, "== %s ==\n", title)
	for ip := 0; ip < len(c.Code); {
		op, next := c.InstructionAt(ip)
		fmt.Fprintf(w, "%04d %-16s", ip, op)
		pos := ip + 1
		for _, operand := range Layout(op) {
			fmt.Fprint(w, " ")
			writeOperand(w, c, pos, operand)
			pos += operand.Size()
		}
		if dbg := c.GetDebugInfo(ip); dbg.Line != 0 {
			fmt.Fprintf(w, "  ; line %d", dbg.Line)
		}
		fmt.Fprintln(w)
		ip = next
	}
}

func writeOperand(w io.Writer, c *Chunk, pos int, operand Operand) {
	switch operand {
	case OperandByte:
		fmt.Fprintf(w, "%d", c.Code[pos])
	case OperandSignedByte:
		fmt.Fprintf(w, "%d", int8(c.Code[pos]))
	case OperandJump:
		fmt.Fprintf(w, "-> %d", ReadJump(c.Code, pos))
	case OperandInt, OperandConst:
		idx := int32(uint32(c.Code[pos]) | uint32(c.Code[pos+1])<<8 | uint32(c.Code[pos+2])<<16 | uint32(c.Code[pos+3])<<24)
		if operand == OperandConst && int(idx) < len(c.Constants) {
			fmt.Fprintf(w, "%v", c.Constants[idx])
		} else {
			fmt.Fprintf(w, "%d", idx)
		}
	case OperandConstPair:
		fmt.Fprint(w, "<assert>")
	}
}
