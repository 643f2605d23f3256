// Package codegen implements the code generator of spec.md component C8:
// it simulates the compile-time operand stack as a vector of (type,
// emitting-opcode-offset) pairs, tracks primary-loader offsets to support
// undoing a sub-expression, rewrites loader chains into storer chains for
// l-values, splices short-circuit jumps, and folds constant expressions
// by running the freshly emitted segment on C7 against a scratch
// activation.
//
// The lexical scanner and parser surface are out of scope (spec.md
// section 1's "external collaborators" list); Generator is the toolkit
// such a parser drives — one Emit* method per production it recognizes —
// rather than an AST-walking compiler on its own, since no AST is defined
// here.
//
// Grounded on the teacher's internal/compiler.Compiler (a single struct
// wrapping *bytecode.Chunk, with one Visit/Emit method per syntax form
// and direct byte-patching for jumps, internal/compiler/compiler.go)
// generalized with the explicit simulated type stack and primary-loader
// undo machinery spec.md requires, which the teacher's untyped compiler
// has no equivalent of.
package codegen

import (
	"io"

	"sentra/internal/bytecode"
	"sentra/internal/rterr"
	"sentra/internal/rtstack"
	"sentra/internal/rtvalue"
	"sentra/internal/rtypes"
	"sentra/internal/sysmodule"
	"sentra/internal/vm"
)

// simSlot is one simulated operand-stack entry: its static type and the
// code offset of the opcode that produced it.
type simSlot struct {
	typ    *rtypes.Type
	offset int
}

// Options carries exactly the six compile-time knobs of spec.md section 6:
// enableAssert/enableDump gate whether Assert/Dump statements emit any
// code at all, lineNumbers gates LineNum emission before each statement,
// vmListing asks the driver to print a disassembly of each compiled
// module, stackSize sizes the operand stack reservation, and modulePath
// is the search list for `uses` imports (consumed by the driver, not by
// Generator itself).
type Options struct {
	EnableAssert bool
	EnableDump   bool
	LineNumbers  bool
	VMListing    bool
	StackSize    int
	ModulePath   []string
}

// Generator emits into one code segment on behalf of one State (nil for
// a const-context scratch segment), keeping the simulated stack and
// primary-loader offsets spec.md 4.8 requires.
type Generator struct {
	Chunk *bytecode.Chunk
	Owner *rtypes.State // nil in a const-expression scratch generator
	Opts  Options

	stack    []simSlot
	primary  []int // primary-loader offsets, parallel in spirit to stack but append-only until Undo
	locals   int    // count of locals initialized so far
	constCtx bool   // true inside a const-expression scratch generator
}

func New(chunk *bytecode.Chunk, owner *rtypes.State, opts Options) *Generator {
	return &Generator{Chunk: chunk, Owner: owner, Opts: opts}
}

func (g *Generator) offset() int { return len(g.Chunk.Code) }

// push records a simulated slot produced by the opcode at offset off.
func (g *Generator) push(t *rtypes.Type, off int) { g.stack = append(g.stack, simSlot{t, off}) }

// pop removes and returns the top simulated slot. It panics (an
// internal-consistency fault, not a spec.md failure mode) if the
// generator's own bookkeeping is unbalanced — a real typing failure is
// always caught earlier by checkTop/tryImplicitCast.
func (g *Generator) pop() simSlot {
	n := len(g.stack)
	s := g.stack[n-1]
	g.stack = g.stack[:n-1]
	return s
}

func (g *Generator) top() simSlot { return g.stack[len(g.stack)-1] }

// Depth is the simulated stack depth, used to assert stack-level matching
// at jump merge points (spec.md 4.8, "stack-level matching asserted at
// join points").
func (g *Generator) Depth() int { return len(g.stack) }

// markPrimary records off as a primary-loader offset: a pure value loader
// (constant or variable load) that can stand alone as a sub-expression's
// first opcode, as opposed to a compound op.
func (g *Generator) markPrimary(off int) { g.primary = append(g.primary, off) }

// Undo discards the most recently emitted sub-expression: truncates the
// code segment back to its last recorded primary-loader offset and pops
// the simulated slot it produced (spec.md 4.8).
func (g *Generator) Undo() {
	n := len(g.primary)
	off := g.primary[n-1]
	g.primary = g.primary[:n-1]
	g.Chunk.Code = g.Chunk.Code[:off]
	g.Chunk.Debug = g.Chunk.Debug[:off]
	g.pop()
}

func (g *Generator) emitOp(op bytecode.OpCode) int {
	off := g.offset()
	g.Chunk.WriteOp(op)
	return off
}

// --- constant loaders (spec.md 4.6 group 2) ---

func (g *Generator) EmitOrdLiteral(typ *rtypes.Type, val int64) {
	off := g.offset()
	switch {
	case val == 0:
		g.emitOp(bytecode.OpLoad0)
	case val == 1:
		g.emitOp(bytecode.OpLoad1)
	case val >= 0 && val <= 255:
		g.emitOp(bytecode.OpLoadByte)
		g.Chunk.WriteByte(byte(val))
	default:
		g.emitOp(bytecode.OpLoadOrd)
		g.Chunk.WriteInt32(int32(val))
	}
	g.push(typ, off)
	g.markPrimary(off)
}

func (g *Generator) EmitStrLiteral(strType *rtypes.Type, s string) {
	off := g.offset()
	idx := g.Chunk.AddConstant(s)
	g.emitOp(bytecode.OpLoadStr)
	g.Chunk.WriteInt32(int32(idx))
	g.push(strType, off)
	g.markPrimary(off)
}

func (g *Generator) EmitTypeRefLiteral(t *rtypes.Type, typerefType *rtypes.Type) {
	off := g.offset()
	idx := g.Chunk.AddConstant(t)
	g.emitOp(bytecode.OpLoadTypeRef)
	g.Chunk.WriteInt32(int32(idx))
	g.push(typerefType, off)
	g.markPrimary(off)
}

func (g *Generator) EmitNullLiteral(t *rtypes.Type) {
	off := g.offset()
	idx := g.Chunk.AddConstant(t)
	g.emitOp(bytecode.OpLoadNull)
	g.Chunk.WriteInt32(int32(idx))
	g.push(t, off)
	g.markPrimary(off)
}

func (g *Generator) EmitEmptyVar(voidType *rtypes.Type) {
	off := g.offset()
	g.emitOp(bytecode.OpLoadEmptyVar)
	g.push(voidType, off)
	g.markPrimary(off)
}

// EmitConst pushes an already-folded constant Variant (the result of a
// nested const-expression evaluation).
func (g *Generator) EmitConst(typ *rtypes.Type, v rtvalue.Variant) {
	off := g.offset()
	idx := g.Chunk.AddConstant(v)
	g.emitOp(bytecode.OpLoadConst)
	g.Chunk.WriteInt32(int32(idx))
	g.push(typ, off)
	g.markPrimary(off)
}

// --- designator loaders (spec.md 4.6 group 3) ---

// EmitLoadSelfVar emits a read of self-var index i. If lea is true, the
// Lea-equivalent is emitted instead, for a designator chain that will be
// rewritten into a storer (see RewriteToStore).
func (g *Generator) EmitLoadSelfVar(i int, typ *rtypes.Type, lea bool) {
	off := g.offset()
	if lea {
		g.emitOp(bytecode.OpLeaSelfVar)
	} else {
		g.emitOp(bytecode.OpLoadSelfVar)
	}
	g.Chunk.WriteByte(byte(i))
	g.push(typ, off)
	g.markPrimary(off)
}

func (g *Generator) EmitLoadStkVar(offsetFromBase int, typ *rtypes.Type, lea bool) {
	off := g.offset()
	if lea {
		g.emitOp(bytecode.OpLeaStkVar)
	} else {
		g.emitOp(bytecode.OpLoadStkVar)
	}
	g.Chunk.WriteByte(byte(int8(offsetFromBase)))
	g.push(typ, off)
	g.markPrimary(off)
}

// EmitMember compiles `.field`: the base object is already on the
// simulated (and code) stack.
func (g *Generator) EmitMember(fieldIndex int, resultType *rtypes.Type, lea bool) {
	g.pop()
	off := g.offset()
	if lea {
		g.emitOp(bytecode.OpLeaMember)
	} else {
		g.emitOp(bytecode.OpLoadMember)
	}
	g.Chunk.WriteInt32(int32(fieldIndex))
	g.push(resultType, off)
}

func (g *Generator) EmitDeref(resultType *rtypes.Type, lea bool) {
	g.pop()
	off := g.offset()
	if lea {
		g.emitOp(bytecode.OpLeaDeref)
	} else {
		g.emitOp(bytecode.OpDeref)
	}
	g.push(resultType, off)
}

// EmitElem compiles `base[index]`: base and index are already on the
// simulated and code stacks, in that order.
func (g *Generator) EmitElem(containerTag rtvalue.Kind, resultType *rtypes.Type, lea bool) error {
	g.pop() // index
	g.pop() // base
	off := g.offset()
	op, ok := elemOp(containerTag, lea)
	if !ok {
		return rterr.New(rterr.TypeMismatch, "not an indexable container")
	}
	g.emitOp(op)
	g.push(resultType, off)
	return nil
}

func elemOp(tag rtvalue.Kind, lea bool) (bytecode.OpCode, bool) {
	switch tag {
	case rtvalue.KStr:
		if lea {
			return bytecode.OpLeaStrElem, true
		}
		return bytecode.OpStrElem, true
	case rtvalue.KVec:
		if lea {
			return bytecode.OpLeaVecElem, true
		}
		return bytecode.OpVecElem, true
	case rtvalue.KDict:
		if lea {
			return bytecode.OpLeaDictElem, true
		}
		return bytecode.OpDictElem, true
	case rtvalue.KByteDict:
		if lea {
			return bytecode.OpLeaByteDictElem, true
		}
		return bytecode.OpByteDictElem, true
	default:
		return 0, false
	}
}

// --- l-values ---

// loaderToStorer maps each designator loader opcode to its storer form
// (spec.md 4.8: "the last loader opcode is rewritten in place to its
// corresponding storer form").
var loaderToStorer = map[bytecode.OpCode]bytecode.OpCode{
	bytecode.OpLoadSelfVar: bytecode.OpStoreSelfVar,
	bytecode.OpLoadStkVar:  bytecode.OpStoreStkVar,
	bytecode.OpLoadMember:  bytecode.OpStoreMember,
	bytecode.OpDeref:       bytecode.OpStoreRef,
	bytecode.OpStrElem:     bytecode.OpStoreStrElem,
	bytecode.OpVecElem:     bytecode.OpStoreVecElem,
	bytecode.OpDictElem:    bytecode.OpStoreDictElem,
	bytecode.OpByteDictElem: bytecode.OpStoreByteDictElem,
}

// loaderToLea maps a designator loader to its Lea-equivalent, for any
// loader preceding the final one in a chain (it must produce an address,
// not a value, so the final storer can locate the container).
var loaderToLea = map[bytecode.OpCode]bytecode.OpCode{
	bytecode.OpLoadSelfVar: bytecode.OpLeaSelfVar,
	bytecode.OpLoadStkVar:  bytecode.OpLeaStkVar,
	bytecode.OpLoadMember:  bytecode.OpLeaMember,
	bytecode.OpDeref:       bytecode.OpLeaDeref,
	bytecode.OpStrElem:     bytecode.OpLeaStrElem,
	bytecode.OpVecElem:     bytecode.OpLeaVecElem,
	bytecode.OpDictElem:    bytecode.OpLeaDictElem,
	bytecode.OpByteDictElem: bytecode.OpLeaByteDictElem,
}

// RewriteToStore implements the l-value transform: the last loader's
// bytes are removed from the code stream (returned as a suffix for the
// caller to re-append once the RHS is emitted), with any opcode before it
// in the same designator chain upgraded to its Lea form in place. chainLen
// is how many designator opcodes (including the final one) make up this
// l-value's code, most recent last.
func (g *Generator) RewriteToStore(chainLen int) ([]byte, error) {
	if chainLen < 1 || chainLen > len(g.primary)+len(g.stack) {
		return nil, rterr.New(rterr.NotAnLValue, "designator chain too short")
	}
	top := g.pop()
	lastOp := bytecode.OpCode(g.Chunk.Code[top.offset])
	storer, ok := loaderToStorer[lastOp]
	if !ok {
		return nil, rterr.New(rterr.NotAnLValue, "not an l-value designator")
	}
	suffix := make([]byte, len(g.Chunk.Code)-top.offset)
	copy(suffix, g.Chunk.Code[top.offset:])
	suffix[0] = byte(storer)
	g.Chunk.Code = g.Chunk.Code[:top.offset]
	g.Chunk.Debug = g.Chunk.Debug[:top.offset]

	for i := 1; i < chainLen && len(g.stack) > 0; i++ {
		prev := g.pop()
		op := bytecode.OpCode(g.Chunk.Code[prev.offset])
		if lea, ok := loaderToLea[op]; ok {
			g.Chunk.Code[prev.offset] = byte(lea)
		}
	}
	return suffix, nil
}

// AppendStoreSuffix re-appends the bytes RewriteToStore returned, after
// the RHS has been emitted. The storer consumes the RHS slot and leaves
// the stored value in its place, recorded with resultType at the
// storer's offset.
func (g *Generator) AppendStoreSuffix(suffix []byte, resultType *rtypes.Type) {
	off := g.offset()
	g.pop()
	g.Chunk.Code = append(g.Chunk.Code, suffix...)
	for range suffix {
		g.Chunk.Debug = append(g.Chunk.Debug, bytecode.DebugInfo{})
	}
	g.push(resultType, off)
}

// --- implicit casts ---

// tryImplicitCast implements spec.md 4.8's cast ladder: already `to`,
// variant-assignable, an element promoted into a vec-of-to, the
// null-container placeholder resolving to an empty `to` literal, or a
// function-pointer whose target is a type reference reverting to a
// TypeRef load.
func (g *Generator) tryImplicitCast(to *rtypes.Type) error {
	s := g.top()
	if s.typ.IdenticalTo(to) || s.typ.CanAssignTo(to) {
		return nil
	}
	if to.Kind == rtypes.KindVec && s.typ.IdenticalTo(to.ElemType) {
		g.pop()
		off := g.offset()
		g.emitOp(bytecode.OpVarToVec)
		g.push(to, off)
		return nil
	}
	if s.typ.Kind == rtypes.KindNullCont {
		g.Undo()
		g.EmitNullLiteral(to)
		return nil
	}
	if s.typ.Kind == rtypes.KindFuncPtr && to.Kind == rtypes.KindTypeRef {
		g.Undo()
		g.EmitTypeRefLiteral(s.typ.State.Proto, to)
		return nil
	}
	return rterr.Newf(rterr.InvalidCast, "cannot implicitly cast %s to %s", s.typ.Kind, to.Kind)
}

// TryImplicitCast is the exported form for callers outside this package
// (a parser deciding whether an argument needs a coercion).
func (g *Generator) TryImplicitCast(to *rtypes.Type) error { return g.tryImplicitCast(to) }

// --- short-circuit evaluation and the if() builtin ---

// EmitAndStart emits `a`'s already-generated JumpAnd placeholder and
// returns its patch position, for EmitAndEnd to resolve once `b` is
// emitted (spec.md 4.8: "a and b emits ... JumpAnd -> L ... then b ...
// label L").
func (g *Generator) EmitAndStart() int {
	g.pop()
	g.emitOp(bytecode.OpJumpAnd)
	pos := g.Chunk.WriteJump()
	return pos
}

func (g *Generator) EmitAndEnd(pos int, boolType *rtypes.Type) error {
	g.pop()
	if !g.Chunk.ResolveJump(pos, g.offset()) {
		return rterr.New(rterr.JumpTooFar, "and jump out of 16-bit range")
	}
	g.push(boolType, pos)
	return nil
}

func (g *Generator) EmitOrStart() int {
	g.pop()
	g.emitOp(bytecode.OpJumpOr)
	return g.Chunk.WriteJump()
}

func (g *Generator) EmitOrEnd(pos int, boolType *rtypes.Type) error {
	g.pop()
	if !g.Chunk.ResolveJump(pos, g.offset()) {
		return rterr.New(rterr.JumpTooFar, "or jump out of 16-bit range")
	}
	g.push(boolType, pos)
	return nil
}

// IfSplice holds the two patch positions the if(cond, then, else) builtin
// needs, and the simulated depth at the branch point for join-point
// matching.
type IfSplice struct {
	falsePos   int
	jumpPos    int
	joinDepth  int
}

// EmitIfCond is called right after the condition expression has been
// emitted; it pops the bool and emits JumpFalse -> (patched later).
func (g *Generator) EmitIfCond() *IfSplice {
	g.pop()
	g.emitOp(bytecode.OpJumpFalse)
	return &IfSplice{falsePos: g.Chunk.WriteJump(), joinDepth: len(g.stack)}
}

// EmitIfThenDone is called after the then-branch expression is emitted;
// it emits the unconditional jump over the else-branch and patches
// falsePos to the else-branch's start.
func (g *Generator) EmitIfThenDone(sp *IfSplice) error {
	if len(g.stack) != sp.joinDepth+1 {
		return rterr.New(rterr.TypeMismatch, "if-then branch stack depth mismatch")
	}
	thenResult := g.pop()
	g.emitOp(bytecode.OpJump)
	sp.jumpPos = g.Chunk.WriteJump()
	if !g.Chunk.ResolveJump(sp.falsePos, g.offset()) {
		return rterr.New(rterr.JumpTooFar, "if jump out of 16-bit range")
	}
	g.stack = append(g.stack, thenResult)
	g.pop()
	return nil
}

// EmitIfElseDone is called after the else-branch expression is emitted;
// it patches the jump-over-else and asserts the two branches agree on
// simulated stack depth (spec.md 4.8: "stack-level matching asserted at
// join points").
func (g *Generator) EmitIfElseDone(sp *IfSplice, resultType *rtypes.Type) error {
	if len(g.stack) != sp.joinDepth+1 {
		return rterr.New(rterr.TypeMismatch, "if-else branch stack depth mismatch")
	}
	g.pop()
	if !g.Chunk.ResolveJump(sp.jumpPos, g.offset()) {
		return rterr.New(rterr.JumpTooFar, "if jump out of 16-bit range")
	}
	g.push(resultType, sp.falsePos)
	return nil
}

// --- debug statements ---

// EmitLineNum emits a LineNum opcode if g.Opts.LineNumbers is set,
// otherwise it is a no-op (spec.md 6: "lineNumbers: when true, LineNum
// opcodes are emitted before each statement").
func (g *Generator) EmitLineNum(line int) {
	if !g.Opts.LineNumbers {
		return
	}
	g.emitOp(bytecode.OpLineNum)
	g.Chunk.WriteInt32(int32(line))
}

// EmitAssert emits an Assert statement's code, or nothing at all when
// g.Opts.EnableAssert is false (spec.md 6: "enableAssert: when false,
// assert statements emit no code"). exprText/file are the const-pool
// strings the Assert opcode's OperandConstPair carries for the failure
// location; the boolean condition is already on top of the stack.
func (g *Generator) EmitAssert(exprText, file string, line int) {
	if !g.Opts.EnableAssert {
		g.Undo()
		return
	}
	g.pop()
	g.emitOp(bytecode.OpAssert)
	g.Chunk.WriteInt32(int32(g.Chunk.AddConstant(exprText)))
	g.Chunk.WriteInt32(int32(g.Chunk.AddConstant(file)))
	g.Chunk.WriteInt32(int32(line))
}

// EmitDump emits a Dump statement's code, or nothing at all when
// g.Opts.EnableDump is false (spec.md 6: "enableDump: when false, dump
// statements emit no code"). The value being dumped is already on top of
// the stack and is left there (Dump peeks, it does not pop).
func (g *Generator) EmitDump(exprText string) {
	if !g.Opts.EnableDump {
		g.Undo()
		return
	}
	g.emitOp(bytecode.OpDump)
	idx := g.Chunk.AddConstant(exprText)
	g.Chunk.WriteInt32(int32(idx))
	g.Chunk.WriteInt32(int32(idx))
}

// --- constant expressions ---

// ConstEval recursively instantiates a scratch Generator (nil owner) for
// fn to emit into, then executes the freshly emitted segment immediately
// via the VM against a scratch activation with a private operand stack,
// returning the value fn left on top of the stack, as read back from the
// activation's return slot (spec.md 4.8).
func ConstEval(sys ConstSystem, resultType *rtypes.Type, fn func(g *Generator) error) (rtvalue.Variant, error) {
	scratch := bytecode.NewChunk()
	g := New(scratch, nil, Options{})
	g.constCtx = true
	if err := fn(g); err != nil {
		return rtvalue.Variant{}, err
	}
	// fn leaves its result on top of the operand stack; Run returns
	// whatever sits in the frame's return slot (offset 0 from base), so
	// store it there before unwinding, per rtstack.Frame's layout.
	g.emitOp(bytecode.OpStoreStkVar)
	g.Chunk.WriteByte(0)
	g.emitOp(bytecode.OpPopPod)
	g.emitOp(bytecode.OpEnd)

	stack := rtstack.New(64)
	frame := rtstack.Frame{Base: 0, Args: 0}
	stack.Push(rtvalue.Void()) // return slot
	machine := vm.New(sys.System(), 64)
	machine.Stack = stack
	val, err := machine.Run(scratch, nil, frame)
	if err != nil {
		return rtvalue.Variant{}, err
	}
	return val, nil
}

// ConstSystem is the minimal collaborator ConstEval needs from the
// process-wide system module, kept as an interface so codegen does not
// import sysmodule directly for anything beyond this.
type ConstSystem interface {
	System() *sysmodule.System
}

// IsConstContext reports whether g is a const-expression scratch
// generator (emission restricts variable loads to a trap opcode in this
// mode — left to the caller, since no AST/symbol surface lives here).
func (g *Generator) IsConstContext() bool { return g.constCtx }

// --- listing ---

// Listing writes a disassembly of the generator's code segment so far,
// reusing the same metadata table the VM's decoder walks (spec.md 4.6,
// 4.8).
func (g *Generator) Listing(w io.Writer, title string) {
	bytecode.Disassemble(g.Chunk, w, title)
}
