// This file implements the bytecode executor of spec.md component C7: a
// single dispatch function parametrized by (current self object, operand
// stack, instruction pointer), switching over the opcode byte at ip. It is
// the only executor in this package; DESIGN.md records which teacher VM
// files were dropped in its favor.
//
// Grounded on the teacher's EnhancedVM.Run dispatch loop (vm.go: a
// frame-relative ip, readByte/readShort/readInt helpers, one big switch
// over bytecode.OpCode) generalized from the teacher's untyped
// Value/interface{} stack to rtvalue.Variant, and from the teacher's flat
// global slots to the per-State rtstate.StateObj this runtime uses for
// self/closure data.
package vm

import (
	"encoding/binary"

	"github.com/google/uuid"

	"sentra/internal/bytecode"
	"sentra/internal/rterr"
	"sentra/internal/rtstack"
	"sentra/internal/rtstate"
	"sentra/internal/rtvalue"
	"sentra/internal/rtypes"
	"sentra/internal/sysmodule"
)

// VM holds the process-wide system module and the one shared operand
// stack every activation of a single invocation executes against (spec.md
// 4.5: "an unmanaged contiguous variant array with a separately tracked
// base pointer").
type VM struct {
	Stack *rtstack.Stack
	Sys   *sysmodule.System

	// RunID tags this invocation; the driver prints it in the vmListing
	// disassembly header. Errors returned by Run do not carry it.
	RunID uuid.UUID

	EnableAssert bool
	EnableDump   bool

	line int // current source line, updated by LineNum (spec.md 4.7)
}

func New(sys *sysmodule.System, stackSize int) *VM {
	return &VM{
		Stack:        rtstack.New(stackSize),
		Sys:          sys,
		RunID:        uuid.New(),
		EnableAssert: true,
		EnableDump:   true,
	}
}

// cell is a Lea-loaded address: either a direct pointer to an owning slot
// (self-var, stack-var, or a member slot reached through another
// StateObj), a first-class Ref box, or one element of a container reached
// through a direct slot (spec.md 4.7: "the Lea push captures the owning
// object handle plus an interior offset and the storer applies the
// mutation through that offset").
type cell struct {
	slot   *rtvalue.Variant // owning slot, for direct and element cells
	ref    *rtvalue.Ref     // set instead of slot for a Deref cell
	isElem bool
	useKey bool
	idx    int
	key    rtvalue.Variant
}

func (c cell) read() (rtvalue.Variant, error) {
	if c.ref != nil {
		return c.ref.Get().Copy(), nil
	}
	if !c.isElem {
		return c.slot.Copy(), nil
	}
	switch c.slot.Tag() {
	case rtvalue.KStr:
		b, err := c.slot.StrUnchecked().Elem(c.idx)
		if err != nil {
			return rtvalue.Variant{}, err
		}
		return rtvalue.FromOrd(int64(b)), nil
	case rtvalue.KVec:
		return c.slot.VecUnchecked().Elem(c.idx)
	case rtvalue.KDict:
		v, ok := c.slot.DictUnchecked().Get(c.key)
		if !ok {
			return rtvalue.Variant{}, rterr.New(rterr.IndexError, "key not in dict")
		}
		return v, nil
	case rtvalue.KByteDict:
		v, ok := c.slot.ByteDictUnchecked().Get(byte(c.idx))
		if !ok {
			return rtvalue.Variant{}, rterr.New(rterr.IndexError, "key not in byte dict")
		}
		return v, nil
	default:
		return rtvalue.Variant{}, rterr.New(rterr.TypeMismatch, "not an indexable container")
	}
}

// write mutates the addressed location, making the containing value
// unique first (copy-on-write honored, spec.md 4.7), and writes the
// possibly-reallocated handle back into the owning slot. v is not
// consumed: every path below only copies its payload into the target
// (Ref.Set, Variant.Assign and the container Set/SetElem methods all
// retain/copy rather than adopt), so the caller keeps its own handle to v
// and is responsible for it (the store opcodes push v back as the
// assignment expression's result).
func (c cell) write(v rtvalue.Variant) error {
	if c.ref != nil {
		c.ref.Set(v)
		return nil
	}
	if !c.isElem {
		c.slot.Assign(v)
		return nil
	}
	switch c.slot.Tag() {
	case rtvalue.KStr:
		ord, ok := v.Ord()
		if !ok {
			return rterr.New(rterr.TypeMismatch, "string element must be ordinal")
		}
		old := c.slot.StrUnchecked()
		// SetElem always returns a new *Str wrapper, even when it mutated
		// old's buffer in place, so pointer identity can't tell the two
		// cases apart; old.Unique() can, since SetElem's capacity request
		// never exceeds old's own (ensureUnique keeps the buffer iff
		// already unique).
		wasUnique := old.Unique()
		ns, err := old.SetElem(c.idx, byte(ord))
		if err != nil {
			return err
		}
		*c.slot = rtvalue.FromStr(ns)
		if !wasUnique {
			old.Release()
		}
		return nil
	case rtvalue.KVec:
		old := c.slot.VecUnchecked()
		nv, err := old.SetElem(c.idx, v)
		if err != nil {
			return err
		}
		*c.slot = rtvalue.FromVec(nv)
		if nv != old {
			old.Release()
		}
		return nil
	case rtvalue.KDict:
		old := c.slot.DictUnchecked()
		if v.Empty() {
			nd, err := old.Delete(c.key)
			if err != nil {
				return err
			}
			*c.slot = rtvalue.FromDict(nd)
			if nd != old {
				old.Release()
			}
			return nil
		}
		nd := old.Set(c.key, v)
		*c.slot = rtvalue.FromDict(nd)
		if nd != old {
			old.Release()
		}
		return nil
	case rtvalue.KByteDict:
		old := c.slot.ByteDictUnchecked()
		if v.Empty() {
			nb, err := old.Delete(byte(c.idx))
			if err != nil {
				return err
			}
			*c.slot = rtvalue.FromByteDict(nb)
			if nb != old {
				old.Release()
			}
			return nil
		}
		nb := old.Set(byte(c.idx), v)
		*c.slot = rtvalue.FromByteDict(nb)
		if nb != old {
			old.Release()
		}
		return nil
	default:
		return rterr.New(rterr.TypeMismatch, "not an indexable container")
	}
}

// Run executes chunk's code starting at ip 0 against self (the current
// activation's stateobj, nil at module scope before any self-vars exist)
// and frame (this invocation's window into vm.Stack), until OpEnd or an
// unwind. It returns the value left in the frame's return slot.
func (vm *VM) Run(chunk *bytecode.Chunk, self *rtstate.StateObj, frame rtstack.Frame) (rtvalue.Variant, error) {
	s := vm.Stack
	code := chunk.Code
	var addrs []cell
	ip := 0

	pop2 := func() (rtvalue.Variant, rtvalue.Variant) {
		b := s.Pop()
		a := s.Pop()
		return a, b
	}

	for {
		if ip >= len(code) {
			return frame.ReturnSlot(s).Copy(), nil
		}
		op := bytecode.OpCode(code[ip])
		argBase := ip + 1
		ip += 1 + bytecode.ArgSize(op)

		readByte := func(off int) byte { return code[argBase+off] }
		readSByte := func(off int) int { return int(int8(code[argBase+off])) }
		readInt32 := func(off int) int32 { return int32(binary.LittleEndian.Uint32(code[argBase+off:])) }
		readConst := func(off int) interface{} {
			idx := readInt32(off)
			return chunk.Constants[idx]
		}

		switch op {
		case bytecode.OpEnd:
			return frame.ReturnSlot(s).Copy(), nil
		case bytecode.OpNop:
			// no-op
		case bytecode.OpExit:
			v := s.Pop()
			vm.Sys.SResult = v.Copy()
			code := 0
			if ord, ok := v.Ord(); ok {
				code = int(ord)
			}
			return v, rterr.NewExit(code)

		case bytecode.OpLoadTypeRef:
			s.Push(rtvalue.FromTypeRef(readConst(0)))
		case bytecode.OpLoadNull:
			t := readConst(0).(*rtypes.Type)
			s.Push(zeroValueFor(t))
		case bytecode.OpLoad0:
			s.Push(rtvalue.FromOrd(0))
		case bytecode.OpLoad1:
			s.Push(rtvalue.FromOrd(1))
		case bytecode.OpLoadByte:
			s.Push(rtvalue.FromOrd(int64(readByte(0))))
		case bytecode.OpLoadOrd:
			s.Push(rtvalue.FromOrd(int64(readInt32(0))))
		case bytecode.OpLoadStr:
			str := readConst(0).(string)
			s.Push(rtvalue.FromStr(rtvalue.NewStr(str)))
		case bytecode.OpLoadEmptyVar:
			s.Push(rtvalue.Void())
		case bytecode.OpLoadConst:
			s.Push(readConst(0).(rtvalue.Variant).Copy())

		case bytecode.OpLoadSelfVar:
			slot, err := self.Slot(int(readByte(0)))
			if err != nil {
				return rtvalue.Variant{}, err
			}
			s.Push(slot.Copy())
		case bytecode.OpLoadStkVar:
			s.Push(s.At(frame.Base + readSByte(0)).Copy())
		case bytecode.OpLoadMember:
			obj := s.Pop()
			target, err := resolveMember(obj, int(readInt32(0)))
			if err != nil {
				return rtvalue.Variant{}, err
			}
			s.Push(target.Copy())
		case bytecode.OpDeref:
			r := s.Pop()
			s.Push(r.RefUnchecked().Get().Copy())
		case bytecode.OpStrElem:
			idx := s.Pop()
			base := s.Pop()
			i, _ := idx.Ord()
			b, err := base.StrUnchecked().Elem(int(i))
			if err != nil {
				return rtvalue.Variant{}, err
			}
			s.Push(rtvalue.FromOrd(int64(b)))
		case bytecode.OpVecElem:
			idx := s.Pop()
			base := s.Pop()
			i, _ := idx.Ord()
			v, err := base.VecUnchecked().Elem(int(i))
			if err != nil {
				return rtvalue.Variant{}, err
			}
			s.Push(v)
		case bytecode.OpDictElem:
			key := s.Pop()
			base := s.Pop()
			v, ok := base.DictUnchecked().Get(key)
			if !ok {
				return rtvalue.Variant{}, rterr.New(rterr.IndexError, "key not in dict")
			}
			s.Push(v)
		case bytecode.OpByteDictElem:
			key := s.Pop()
			base := s.Pop()
			i, _ := key.Ord()
			v, ok := base.ByteDictUnchecked().Get(byte(i))
			if !ok {
				return rtvalue.Variant{}, rterr.New(rterr.IndexError, "key not in byte dict")
			}
			s.Push(v)

		case bytecode.OpLeaSelfVar:
			slot, err := self.Slot(int(readByte(0)))
			if err != nil {
				return rtvalue.Variant{}, err
			}
			addrs = append(addrs, cell{slot: slot})
		case bytecode.OpLeaStkVar:
			addrs = append(addrs, cell{slot: s.At(frame.Base + readSByte(0))})
		case bytecode.OpLeaMember:
			obj := s.Pop()
			rt, ok := obj.RuntimeUnchecked().(*rtstate.StateObj)
			if !ok {
				return rtvalue.Variant{}, rterr.New(rterr.TypeMismatch, "member base is not a state object")
			}
			slot, err := rt.Slot(int(readInt32(0)))
			if err != nil {
				return rtvalue.Variant{}, err
			}
			addrs = append(addrs, cell{slot: slot})
		case bytecode.OpLeaDeref:
			r := s.Pop()
			addrs = append(addrs, cell{ref: r.RefUnchecked()})
		case bytecode.OpLeaStrElem, bytecode.OpLeaVecElem:
			idx := s.Pop()
			base := popCell(&addrs)
			i, _ := idx.Ord()
			addrs = append(addrs, cell{slot: base.slot, isElem: true, idx: int(i)})
		case bytecode.OpLeaDictElem:
			key := s.Pop()
			base := popCell(&addrs)
			addrs = append(addrs, cell{slot: base.slot, isElem: true, useKey: true, key: key})
		case bytecode.OpLeaByteDictElem:
			key := s.Pop()
			base := popCell(&addrs)
			i, _ := key.Ord()
			addrs = append(addrs, cell{slot: base.slot, isElem: true, idx: int(i)})

		case bytecode.OpInitSelfVar, bytecode.OpStoreSelfVar:
			v := s.Pop()
			slot, err := self.Slot(int(readByte(0)))
			if err != nil {
				return rtvalue.Variant{}, err
			}
			slot.Assign(v)
			v.Destroy()
			s.Push(slot.Copy())
		case bytecode.OpInitStkVar, bytecode.OpStoreStkVar:
			v := s.Pop()
			slot := s.At(frame.Base + readSByte(0))
			slot.Assign(v)
			v.Destroy()
			s.Push(slot.Copy())
		case bytecode.OpStoreMember:
			v := s.Pop()
			obj := s.Pop()
			target, err := resolveMember(obj, int(readInt32(0)))
			if err != nil {
				return rtvalue.Variant{}, err
			}
			target.Assign(v)
			v.Destroy()
			s.Push(target.Copy())
		case bytecode.OpStoreRef:
			v := s.Pop()
			c := popCell(&addrs)
			if err := c.write(v); err != nil {
				return rtvalue.Variant{}, err
			}
			s.Push(v)
		case bytecode.OpStoreStrElem, bytecode.OpStoreVecElem, bytecode.OpStoreDictElem, bytecode.OpStoreByteDictElem:
			v := s.Pop()
			c := popCell(&addrs)
			if err := c.write(v); err != nil {
				return rtvalue.Variant{}, err
			}
			s.Push(v)

		case bytecode.OpMkSubrange:
			hi := s.Pop()
			lo := s.Pop()
			loOrd, _ := lo.Ord()
			hiOrd, _ := hi.Ord()
			t, err := rtypes.NewOrdinalSubrange(rtypes.KindInt, loOrd, hiOrd)
			if err != nil {
				return rtvalue.Variant{}, err
			}
			s.Push(rtvalue.FromTypeRef(t))
		case bytecode.OpMkRef:
			v := s.Pop()
			s.Push(rtvalue.FromRef(rtvalue.NewRef(v)))
			v.Destroy()
		case bytecode.OpNonEmpty:
			v := s.Pop()
			s.Push(rtvalue.FromBool(!v.Empty()))
		case bytecode.OpPop, bytecode.OpPopPod:
			s.PopDiscard()
		case bytecode.OpCast:
			v := s.Pop()
			t := readConst(0).(*rtypes.Type)
			if err := t.RuntimeTypecast(&v); err != nil {
				return rtvalue.Variant{}, err
			}
			s.Push(v)
		case bytecode.OpIsType:
			v := s.Peek(0)
			t := readConst(0).(*rtypes.Type)
			s.Push(rtvalue.FromBool(t.IsMyType(v)))

		case bytecode.OpChrToStr:
			c := s.Pop()
			ord, _ := c.Ord()
			s.Push(rtvalue.FromStr(rtvalue.NewStr(string([]byte{byte(ord)}))))
		case bytecode.OpChrCat:
			c := s.Pop()
			str := s.Pop()
			ord, _ := c.Ord()
			as := str.StrUnchecked()
			bs := rtvalue.NewStr(string([]byte{byte(ord)}))
			res := rtvalue.Concat(as, bs)
			s.Push(rtvalue.FromStr(res))
			if res != as {
				str.Destroy()
			}
			if res != bs {
				bs.Release()
			}
		case bytecode.OpStrCat:
			b := s.Pop()
			a := s.Pop()
			as, bs := a.StrUnchecked(), b.StrUnchecked()
			res := rtvalue.Concat(as, bs)
			s.Push(rtvalue.FromStr(res))
			if res != as {
				a.Destroy()
			}
			if res != bs {
				b.Destroy()
			}
		case bytecode.OpVarToVec:
			v := s.Pop()
			s.Push(rtvalue.FromVec(rtvalue.NewVec().Append(v)))
			v.Destroy()
		case bytecode.OpVarCat:
			v := s.Pop()
			vec := s.Pop()
			vp := vec.VecUnchecked()
			res := vp.Append(v)
			s.Push(rtvalue.FromVec(res))
			if res != vp {
				vec.Destroy()
			}
			v.Destroy()
		case bytecode.OpVecCat:
			b := s.Pop()
			a := s.Pop()
			ap, bp := a.VecUnchecked(), b.VecUnchecked()
			res := rtvalue.VecConcat(ap, bp)
			s.Push(rtvalue.FromVec(res))
			if res != ap {
				a.Destroy()
			}
			if res != bp {
				b.Destroy()
			}
		case bytecode.OpStrLen:
			v := s.Pop()
			s.Push(rtvalue.FromOrd(int64(v.StrUnchecked().Size())))
			v.Destroy()
		case bytecode.OpVecLen:
			v := s.Pop()
			s.Push(rtvalue.FromOrd(int64(v.VecUnchecked().Size())))
			v.Destroy()

		case bytecode.OpElemToSet:
			v := s.Pop()
			s.Push(rtvalue.FromSet(rtvalue.NewSet().Add(v)))
			v.Destroy()
		case bytecode.OpElemToByteSet:
			v := s.Pop()
			ord, _ := v.Ord()
			s.Push(rtvalue.FromOrdSet(rtvalue.NewOrdSet().Add(byte(ord))))
		case bytecode.OpRngToByteSet:
			hi := s.Pop()
			lo := s.Pop()
			loOrd, _ := lo.Ord()
			hiOrd, _ := hi.Ord()
			s.Push(rtvalue.FromOrdSet(rtvalue.NewOrdSet().AddRange(byte(loOrd), byte(hiOrd))))
		case bytecode.OpSetAddElem:
			v := s.Pop()
			set := s.Pop()
			sp := set.SetUnchecked()
			res := sp.Add(v)
			s.Push(rtvalue.FromSet(res))
			if res != sp {
				set.Destroy()
			}
			v.Destroy()
		case bytecode.OpByteSetAddElem:
			v := s.Pop()
			set := s.Pop()
			ord, _ := v.Ord()
			sp := set.OrdSetUnchecked()
			res := sp.Add(byte(ord))
			s.Push(rtvalue.FromOrdSet(res))
			if res != sp {
				set.Destroy()
			}
		case bytecode.OpByteSetAddRng:
			hi := s.Pop()
			lo := s.Pop()
			set := s.Pop()
			loOrd, _ := lo.Ord()
			hiOrd, _ := hi.Ord()
			sp := set.OrdSetUnchecked()
			res := sp.AddRange(byte(loOrd), byte(hiOrd))
			s.Push(rtvalue.FromOrdSet(res))
			if res != sp {
				set.Destroy()
			}
		case bytecode.OpInSet:
			v := s.Pop()
			set := s.Pop()
			s.Push(rtvalue.FromBool(set.SetUnchecked().Has(v)))
		case bytecode.OpInByteSet:
			v := s.Pop()
			set := s.Pop()
			ord, _ := v.Ord()
			s.Push(rtvalue.FromBool(set.OrdSetUnchecked().Has(byte(ord))))
		case bytecode.OpInBounds:
			t := s.Pop()
			v := s.Pop()
			typ := t.TypeRefUnchecked().(*rtypes.Type)
			ord, _ := v.Ord()
			s.Push(rtvalue.FromBool(ord >= typ.Left && ord <= typ.Right))
		case bytecode.OpInRange:
			hi := s.Pop()
			lo := s.Pop()
			v := s.Pop()
			loOrd, _ := lo.Ord()
			hiOrd, _ := hi.Ord()
			ord, _ := v.Ord()
			s.Push(rtvalue.FromBool(ord >= loOrd && ord <= hiOrd))

		case bytecode.OpPairToDict:
			v := s.Pop()
			k := s.Pop()
			s.Push(rtvalue.FromDict(rtvalue.NewDict().Set(k, v)))
			k.Destroy()
			v.Destroy()
		case bytecode.OpPairToByteDict:
			v := s.Pop()
			k := s.Pop()
			ord, _ := k.Ord()
			s.Push(rtvalue.FromByteDict(rtvalue.NewByteDict().Set(byte(ord), v)))
			v.Destroy()
		case bytecode.OpDictAddPair:
			v := s.Pop()
			k := s.Pop()
			d := s.Pop()
			dp := d.DictUnchecked()
			res := dp.Set(k, v)
			s.Push(rtvalue.FromDict(res))
			if res != dp {
				d.Destroy()
			}
			k.Destroy()
			v.Destroy()
		case bytecode.OpByteDictAddPair:
			v := s.Pop()
			k := s.Pop()
			d := s.Pop()
			ord, _ := k.Ord()
			dp := d.ByteDictUnchecked()
			res := dp.Set(byte(ord), v)
			s.Push(rtvalue.FromByteDict(res))
			if res != dp {
				d.Destroy()
			}
			v.Destroy()
		case bytecode.OpInDict:
			k := s.Pop()
			d := s.Pop()
			_, ok := d.DictUnchecked().Get(k)
			s.Push(rtvalue.FromBool(ok))
		case bytecode.OpInByteDict:
			k := s.Pop()
			d := s.Pop()
			ord, _ := k.Ord()
			_, ok := d.ByteDictUnchecked().Get(byte(ord))
			s.Push(rtvalue.FromBool(ok))

		case bytecode.OpAdd, bytecode.OpSub, bytecode.OpMul, bytecode.OpDiv, bytecode.OpMod:
			a, b := pop2()
			v, err := arith(op, a, b)
			if err != nil {
				return rtvalue.Variant{}, err
			}
			s.Push(v)
		case bytecode.OpBitAnd, bytecode.OpBitOr, bytecode.OpBitXor, bytecode.OpBitShl, bytecode.OpBitShr:
			a, b := pop2()
			aOrd, _ := a.Ord()
			bOrd, _ := b.Ord()
			s.Push(rtvalue.FromOrd(bitop(op, aOrd, bOrd)))
		case bytecode.OpNeg:
			v := s.Pop()
			ord, ok := v.Ord()
			if !ok {
				return rtvalue.Variant{}, rterr.New(rterr.TypeMismatch, "Neg has no real-valued opcode (real values are printable only)")
			}
			s.Push(rtvalue.FromOrd(-ord))
		case bytecode.OpBitNot:
			v := s.Pop()
			ord, _ := v.Ord()
			s.Push(rtvalue.FromOrd(^ord))
		case bytecode.OpNot:
			v := s.Pop()
			ord, _ := v.Ord()
			s.Push(rtvalue.FromBool(ord == 0))

		case bytecode.OpCmpOrd:
			a, b := pop2()
			aOrd, _ := a.Ord()
			bOrd, _ := b.Ord()
			s.Push(rtvalue.FromOrd(int64(sign(aOrd - bOrd))))
		case bytecode.OpCmpStr:
			a, b := pop2()
			s.Push(rtvalue.FromOrd(int64(a.StrUnchecked().Compare(b.StrUnchecked()))))
		case bytecode.OpCmpVar:
			a, b := pop2()
			if a.Equal(b) {
				s.Push(rtvalue.FromOrd(1))
			} else {
				s.Push(rtvalue.FromOrd(0))
			}
		case bytecode.OpEqual:
			v := s.Pop()
			ord, _ := v.Ord()
			s.Push(rtvalue.FromBool(ord == 0))
		case bytecode.OpNotEq:
			v := s.Pop()
			ord, _ := v.Ord()
			s.Push(rtvalue.FromBool(ord != 0))
		case bytecode.OpLessThan:
			v := s.Pop()
			ord, _ := v.Ord()
			s.Push(rtvalue.FromBool(ord < 0))
		case bytecode.OpLessEq:
			v := s.Pop()
			ord, _ := v.Ord()
			s.Push(rtvalue.FromBool(ord <= 0))
		case bytecode.OpGreaterThan:
			v := s.Pop()
			ord, _ := v.Ord()
			s.Push(rtvalue.FromBool(ord > 0))
		case bytecode.OpGreaterEq:
			v := s.Pop()
			ord, _ := v.Ord()
			s.Push(rtvalue.FromBool(ord >= 0))
		case bytecode.OpCaseEq:
			cand := s.Pop()
			subj := s.Peek(0)
			s.Push(rtvalue.FromBool(subj.Equal(cand)))

		case bytecode.OpJump:
			ip = bytecode.ReadJump(code, argBase)
		case bytecode.OpJumpFalse:
			v := s.Pop()
			ord, _ := v.Ord()
			if ord == 0 {
				ip = bytecode.ReadJump(code, argBase)
			}
		case bytecode.OpJumpTrue:
			v := s.Pop()
			ord, _ := v.Ord()
			if ord != 0 {
				ip = bytecode.ReadJump(code, argBase)
			}
		case bytecode.OpJumpAnd:
			v := s.Peek(0)
			ord, _ := v.Ord()
			if ord == 0 {
				ip = bytecode.ReadJump(code, argBase)
			} else {
				s.PopDiscard()
			}
		case bytecode.OpJumpOr:
			v := s.Peek(0)
			ord, _ := v.Ord()
			if ord != 0 {
				ip = bytecode.ReadJump(code, argBase)
			} else {
				s.PopDiscard()
			}

		case bytecode.OpLineNum:
			vm.line = int(readInt32(0))
		case bytecode.OpAssert:
			v := s.Pop()
			ord, _ := v.Ord()
			if ord == 0 && vm.EnableAssert {
				expr := readConst(0).(string)
				file := readConst(4).(string)
				line := int(readInt32(8))
				return rtvalue.Variant{}, rterr.AtLocation(
					rterr.Newf(rterr.AssertionFailed, "assertion failed: %s", expr),
					rterr.Location{File: file, Line: line})
			}
		case bytecode.OpDump:
			if vm.EnableDump {
				v := s.Peek(0)
				expr := readConst(0).(string)
				vm.Sys.Serr.WriteString(expr + " = ")
				v.Dump(vm.Sys.Serr)
			}

		default:
			return rtvalue.Variant{}, rterr.Newf(rterr.SystemError, "unimplemented opcode %s", op)
		}
	}
}

func popCell(addrs *[]cell) cell {
	n := len(*addrs)
	c := (*addrs)[n-1]
	*addrs = (*addrs)[:n-1]
	return c
}

func resolveMember(obj rtvalue.Variant, idx int) (*rtvalue.Variant, error) {
	rt, ok := obj.RuntimeUnchecked().(*rtstate.StateObj)
	if !ok {
		return nil, rterr.New(rterr.TypeMismatch, "member base is not a state object")
	}
	return rt.Slot(idx)
}

func zeroValueFor(t *rtypes.Type) rtvalue.Variant {
	tag, ok := t.ExpectedTag()
	if !ok {
		return rtvalue.Void()
	}
	switch tag {
	case rtvalue.KOrd:
		return rtvalue.FromOrd(0)
	case rtvalue.KStr:
		return rtvalue.FromStr(rtvalue.NewStr(""))
	case rtvalue.KVec:
		return rtvalue.FromVec(rtvalue.NewVec())
	case rtvalue.KSet:
		return rtvalue.FromSet(rtvalue.NewSet())
	case rtvalue.KOrdSet:
		return rtvalue.FromOrdSet(rtvalue.NewOrdSet())
	case rtvalue.KDict:
		return rtvalue.FromDict(rtvalue.NewDict())
	case rtvalue.KByteDict:
		return rtvalue.FromByteDict(rtvalue.NewByteDict())
	default:
		return rtvalue.Void()
	}
}

func sign(n int64) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}

// arith implements the ordinal arithmetic opcodes. Non-goals: "no
// floating-point arithmetic opcodes (real values are representable but
// only printable)" — a Real operand here is TypeMismatch, not a silent
// promotion.
func arith(op bytecode.OpCode, a, b rtvalue.Variant) (rtvalue.Variant, error) {
	aOrd, ok := a.Ord()
	if !ok {
		return rtvalue.Variant{}, rterr.New(rterr.TypeMismatch, "arithmetic opcode on a non-ordinal operand")
	}
	bOrd, ok := b.Ord()
	if !ok {
		return rtvalue.Variant{}, rterr.New(rterr.TypeMismatch, "arithmetic opcode on a non-ordinal operand")
	}
	switch op {
	case bytecode.OpAdd:
		return rtvalue.FromOrd(aOrd + bOrd), nil
	case bytecode.OpSub:
		return rtvalue.FromOrd(aOrd - bOrd), nil
	case bytecode.OpMul:
		return rtvalue.FromOrd(aOrd * bOrd), nil
	case bytecode.OpDiv:
		if bOrd == 0 {
			return rtvalue.Variant{}, rterr.New(rterr.DivisionByZero, "division by zero")
		}
		return rtvalue.FromOrd(aOrd / bOrd), nil
	case bytecode.OpMod:
		if bOrd == 0 {
			return rtvalue.Variant{}, rterr.New(rterr.DivisionByZero, "division by zero")
		}
		return rtvalue.FromOrd(aOrd % bOrd), nil
	default:
		return rtvalue.Variant{}, rterr.New(rterr.SystemError, "not an arithmetic opcode")
	}
}

// bitop reduces shift distances modulo 64 (spec.md 4.7: "shifts by >= bit
// width are reduced modulo bit width").
func bitop(op bytecode.OpCode, a, b int64) int64 {
	switch op {
	case bytecode.OpBitAnd:
		return a & b
	case bytecode.OpBitOr:
		return a | b
	case bytecode.OpBitXor:
		return a ^ b
	case bytecode.OpBitShl:
		return a << (uint(b) % 64)
	case bytecode.OpBitShr:
		return a >> (uint(b) % 64)
	default:
		return 0
	}
}
