// Package asm implements the minimal textual front end cmd/shannon drives:
// one mnemonic instruction per line, assembled directly into a
// bytecode.Chunk. The lexical scanner and full Shannon-language parser are
// explicitly out of scope (spec.md section 1's external-collaborators
// list), so the driver's only way to turn source characters into a
// runnable Chunk without inventing an out-of-scope grammar is to let the
// source text name opcodes directly — the inverse of
// bytecode.Disassemble's listing format.
//
// Grounded on the teacher's internal/lexer line/token scanning style
// (internal/lexer/scanner.go) reused here via internal/charfifo rather
// than a from-scratch tokenizer, and on bytecode.Disassemble/Layout as the
// single source of truth for how many operands each mnemonic takes.
package asm

import (
	"strconv"
	"strings"

	"sentra/internal/bytecode"
	"sentra/internal/charfifo"
	"sentra/internal/rterr"
)

// mnemonics maps an opcode's textual name (case-insensitive) back to its
// OpCode, the reverse of bytecode.OpCode.String().
var mnemonics = buildMnemonics()

func buildMnemonics() map[string]bytecode.OpCode {
	m := make(map[string]bytecode.OpCode, 96)
	for op := bytecode.OpEnd; ; op++ {
		name := op.String()
		if name == "???" {
			break
		}
		m[strings.ToLower(name)] = op
	}
	return m
}

type fixup struct {
	pos   int
	label string
}

// Assemble reads src as one instruction per line and returns the
// resulting Chunk. Lines are `label:` definitions, blank, `;`-comments, or
// `Mnemonic arg arg...` with one of: a decimal integer, a double-quoted
// string (interned into the constant pool), or a bare identifier naming a
// jump target (for the five jump opcodes' OperandJump argument).
//
// Opcodes whose Layout calls for an OperandConst pointer-to-Type/State are
// not expressible here (no textual type-literal grammar is in scope) and
// are rejected with a clear error; such programs are built directly
// against codegen.Generator from Go instead.
func Assemble(fifo *charfifo.Fifo) (*bytecode.Chunk, error) {
	chunk := bytecode.NewChunk()
	labels := map[string]int{}
	var fixups []fixup

	for {
		line, ok := nextLine(fifo)
		if !ok {
			break
		}
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.HasSuffix(line, ":") && !strings.Contains(line, " ") {
			labels[strings.TrimSuffix(line, ":")] = len(chunk.Code)
			continue
		}
		fields, err := splitFields(line)
		if err != nil {
			return nil, err
		}
		op, ok := mnemonics[strings.ToLower(fields[0])]
		if !ok {
			return nil, rterr.Newf(rterr.ParseError, "unknown mnemonic %q", fields[0])
		}
		args := fields[1:]
		chunk.WriteOp(op)
		if err := emitOperands(chunk, op, args, labels, &fixups); err != nil {
			return nil, err
		}
	}

	for _, fx := range fixups {
		target, ok := labels[fx.label]
		if !ok {
			return nil, rterr.Newf(rterr.ParseError, "undefined label %q", fx.label)
		}
		if !chunk.ResolveJump(fx.pos, target) {
			return nil, rterr.New(rterr.JumpTooFar, "jump out of 16-bit range")
		}
	}
	return chunk, nil
}

func emitOperands(chunk *bytecode.Chunk, op bytecode.OpCode, args []string, labels map[string]int, fixups *[]fixup) error {
	layout := bytecode.Layout(op)
	if len(args) != len(layout) {
		return rterr.Newf(rterr.ParseError, "%s expects %d operand(s), got %d", op, len(layout), len(args))
	}
	for i, kind := range layout {
		arg := args[i]
		switch kind {
		case bytecode.OperandByte:
			n, err := strconv.ParseInt(arg, 10, 16)
			if err != nil || n < 0 || n > 255 {
				return rterr.Newf(rterr.ParseError, "%s: operand %q is not a byte", op, arg)
			}
			chunk.WriteByte(byte(n))
		case bytecode.OperandSignedByte:
			n, err := strconv.ParseInt(arg, 10, 16)
			if err != nil || n < -128 || n > 127 {
				return rterr.Newf(rterr.ParseError, "%s: operand %q is not a signed byte", op, arg)
			}
			chunk.WriteByte(byte(int8(n)))
		case bytecode.OperandInt:
			n, err := strconv.ParseInt(arg, 10, 32)
			if err != nil {
				return rterr.Newf(rterr.ParseError, "%s: operand %q is not an integer", op, arg)
			}
			chunk.WriteInt32(int32(n))
		case bytecode.OperandJump:
			pos := chunk.WriteJump()
			*fixups = append(*fixups, fixup{pos: pos, label: arg})
		case bytecode.OperandConst:
			idx, err := internConst(chunk, op, arg)
			if err != nil {
				return err
			}
			chunk.WriteInt32(int32(idx))
		case bytecode.OperandConstPair:
			return rterr.Newf(rterr.ParseError, "%s takes a (string,string,int) triple; use multiple mnemonics or codegen.Generator.EmitAssert", op)
		}
	}
	return nil
}

// internConst handles the OperandConst operands expressible in text: a
// quoted string literal (LoadStr, Dump's expr text) or, for LoadMember /
// StoreMember, a field index masquerading as a raw integer rather than a
// true constant-pool reference (the VM decodes these with readInt32, not
// readConst — see shannon_vm.go).
func internConst(chunk *bytecode.Chunk, op bytecode.OpCode, arg string) (int, error) {
	switch op {
	case bytecode.OpLoadMember, bytecode.OpLeaMember, bytecode.OpStoreMember:
		n, err := strconv.ParseInt(arg, 10, 32)
		if err != nil {
			return 0, rterr.Newf(rterr.ParseError, "%s: operand %q is not a field index", op, arg)
		}
		return int(n), nil
	case bytecode.OpLoadStr, bytecode.OpDump:
		s, err := unquote(arg)
		if err != nil {
			return 0, err
		}
		return chunk.AddConstant(s), nil
	default:
		return 0, rterr.Newf(rterr.ParseError, "%s takes a type-reference operand not expressible in textual assembly; emit it via codegen.Generator", op)
	}
}

func unquote(s string) (string, error) {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return "", rterr.Newf(rterr.ParseError, "expected a quoted string, got %q", s)
	}
	return s[1 : len(s)-1], nil
}

// splitFields tokenizes one line on whitespace, keeping double-quoted
// strings (which may contain spaces) intact as a single field.
func splitFields(line string) ([]string, error) {
	var fields []string
	var b strings.Builder
	inQuote := false
	flush := func() {
		if b.Len() > 0 {
			fields = append(fields, b.String())
			b.Reset()
		}
	}
	for _, r := range line {
		switch {
		case r == '"':
			inQuote = !inQuote
			b.WriteRune(r)
		case r == ' ' || r == '\t':
			if inQuote {
				b.WriteRune(r)
			} else {
				flush()
			}
		default:
			b.WriteRune(r)
		}
	}
	if inQuote {
		return nil, rterr.New(rterr.TokenError, "unterminated quoted string")
	}
	flush()
	return fields, nil
}

// nextLine pulls one line of source off fifo using its buffered-reader
// primitives (preview/get/eol/skipEOL), exercising the contract spec.md
// section 6 specifies rather than reading the whole source at once.
func nextLine(fifo *charfifo.Fifo) (string, bool) {
	if fifo.Empty() {
		return "", false
	}
	var b strings.Builder
	for !fifo.Empty() && !fifo.Eol() {
		r, _ := fifo.Get()
		b.WriteRune(r)
	}
	fifo.SkipEOL()
	return b.String(), true
}
