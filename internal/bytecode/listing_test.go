package bytecode

import (
	"strings"
	"testing"
)

func TestDisassembleRendersMnemonicsAndOperands(t *testing.T) {
	c := NewChunk()
	c.WriteOp(OpLoadByte)
	c.WriteByte(7)
	c.WriteOp(OpAdd)
	c.WriteOp(OpEnd)

	var sb strings.Builder
	Disassemble(c, &sb, "test")
	out := sb.String()

	for _, want := range []string{"== test ==", "LoadByte", "7", "Add", "End"} {
		if !strings.Contains(out, want) {
			t.Errorf("listing missing %q:\n%s", want, out)
		}
	}
}

func TestDisassembleShowsLineWhenPresent(t *testing.T) {
	c := NewChunk()
	c.WriteOpWithDebug(OpNop, DebugInfo{Line: 7})
	var sb strings.Builder
	Disassemble(c, &sb, "t")
	if !strings.Contains(sb.String(), "line 7") {
		t.Errorf("listing should annotate the source line when debug info is present:\n%s", sb.String())
	}
}
