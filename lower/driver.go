package lower

import (
	"fmt"

	"github.com/axiom-tools/cil2cpp/cil"
	"github.com/axiom-tools/cil2cpp/icall"
	"github.com/axiom-tools/cil2cpp/ir"
)

// LowerMethod drains a decoded CIL method body into method's basic block,
// one instruction at a time, per the driver contract in §4.1: an explicit
// evaluation stack, a temp counter, a pendingVolatile flag, a
// constrainedType field, and a set of region markers derived from the
// method's exception handlers.
func LowerMethod(method *ir.Method, module *ir.Module, resolver Resolver, icalls *icall.Registry, cfg Config, diag Diagnostics, declaringType string, body *cil.MethodBody, seqPoints []SequencePoint) error {
	s := newState(method, module, resolver, icalls, cfg, diag, declaringType, seqPoints)

	events := buildExceptionEvents(body.ExceptionHandlers, resolver)
	targets := scanBranchTargets(body.Instructions)

	reachable := true

	for idx, ins := range body.Instructions {
		if evs, ok := events[ins.Offset]; ok {
			for _, ev := range evs {
				emitRegionEvent(s, ev)
				switch ev.kind {
				case evTryBegin, evCatchBegin, evFilterBegin, evFilterHandlerBegin, evFinallyBegin:
					reachable = true
				}
			}
		}

		if targets[ins.Offset] {
			label := labelFor(ins.Offset)
			if saved, ok := s.savedStack[label]; ok {
				s.stack = append([]ir.StackEntry(nil), saved...)
			} else if !reachable {
				s.stack = nil
			}
			s.emit(&ir.Label{Name: label})
			reachable = true
		}

		if !reachable {
			continue
		}

		s.updateDebugInfo(ins.Offset)

		if err := lowerOne(s, ins, body, idx); err != nil {
			s.emit(&ir.Comment{Text: fmt.Sprintf("lowering failure at IL_%04x: %v", ins.Offset, err)})
			if s.diag != nil {
				s.diag.Warnf("lower: %s at IL_%04x: %v", s.method.Name, ins.Offset, err)
			}
			continue
		}

		if ins.Op.IsUnconditionalTerminator() {
			reachable = false
		}
	}

	return nil
}

func labelFor(offset uint32) string {
	return fmt.Sprintf("L_%04x", offset)
}

func emitRegionEvent(s *state, ev ehEvent) {
	switch ev.kind {
	case evHandlerEnd:
		s.emit(&ir.TryEnd{})
	case evTryBegin:
		s.emit(&ir.TryBegin{})
	case evCatchBegin:
		s.emit(&ir.CatchBegin{ExcType: ev.excType})
	case evFilterBegin:
		s.emit(&ir.FilterBegin{})
	case evFilterHandlerBegin:
		s.emit(&ir.FilterHandlerBegin{})
	case evFinallyBegin:
		s.emit(&ir.FinallyBegin{})
	}
}

// mergeVarName is the deterministic name a stack-merge variable gets for
// slot i of the stack live at a branch to label (§4.2, "Stack-merge
// variables").
func mergeVarName(label string, i int) string {
	return fmt.Sprintf("__merge_%s_%d", label, i)
}

// canonicalizeForBranch rewrites the live stack into merge-variable
// references and records the snapshot under label, so that both the
// fall-through continuation and a later arrival at the label (via the
// branch just being lowered) observe identical expressions.
func (s *state) canonicalizeForBranch(label string) {
	for i, e := range s.stack {
		mv := mergeVarName(label, i)
		if e.Expr != mv && e.IsValidMergeTarget() {
			s.emit(&ir.Assign{Target: mv, Value: e.Expr})
			s.noteTemp(mv, e.Type)
			s.stack[i] = ir.NewStackEntry(mv, e.Type)
		}
	}
	s.snapshotStack(label)
}

func lowerOne(s *state, ins cil.Instruction, body *cil.MethodBody, idx int) error {
	switch ins.Op {
	case cil.Nop, cil.Break:
		return nil

	case cil.Dup:
		top := s.stack[len(s.stack)-1]
		if top.IsValidMergeTarget() {
			mv := s.freshTemp()
			s.emit(&ir.Assign{Target: mv, Value: top.Expr})
			s.noteTemp(mv, top.Type)
			s.push(ir.NewStackEntry(mv, top.Type))
			s.stack[len(s.stack)-2] = ir.NewStackEntry(mv, top.Type)
		} else {
			s.push(top)
		}
		return nil

	case cil.Pop:
		s.pop()
		return nil

	case cil.Ret:
		return lowerRet(s)

	case cil.Throw:
		v := s.pop()
		s.emit(&ir.Throw{Expr: v.Expr})
		return nil
	case cil.Rethrow:
		s.emit(&ir.Rethrow{})
		return nil
	case cil.Endfinally:
		return nil
	case cil.Endfilter:
		v := s.pop()
		s.emit(&ir.EndFilter{Result: v.Expr})
		return nil

	case cil.Ldarg0, cil.Ldarg1, cil.Ldarg2, cil.Ldarg3:
		return lowerLdarg(s, int(ins.Op-cil.Ldarg0))
	case cil.LdargS:
		return lowerLdarg(s, int(ins.IntOperand))
	case cil.Ldarg:
		return lowerLdarg(s, int(ins.IntOperand))
	case cil.LdargaS, cil.Ldarga:
		return lowerLdarga(s, int(ins.IntOperand))
	case cil.StargS, cil.Starg:
		return lowerStarg(s, int(ins.IntOperand))

	case cil.Ldloc0, cil.Ldloc1, cil.Ldloc2, cil.Ldloc3:
		return lowerLdloc(s, int(ins.Op-cil.Ldloc0))
	case cil.LdlocS:
		return lowerLdloc(s, int(ins.IntOperand))
	case cil.Ldloc:
		return lowerLdloc(s, int(ins.IntOperand))
	case cil.LdlocaS, cil.Ldloca:
		return lowerLdloca(s, int(ins.IntOperand))
	case cil.Stloc0, cil.Stloc1, cil.Stloc2, cil.Stloc3:
		return lowerStloc(s, int(ins.Op-cil.Stloc0))
	case cil.StlocS:
		return lowerStloc(s, int(ins.IntOperand))
	case cil.Stloc:
		return lowerStloc(s, int(ins.IntOperand))

	case cil.LdnullOp:
		s.pushExpr("nullptr", "")
		return nil
	case cil.LdcI4M1:
		s.pushExpr("-1", "int32_t")
		return nil
	case cil.LdcI40, cil.LdcI41, cil.LdcI42, cil.LdcI43, cil.LdcI44, cil.LdcI45, cil.LdcI46, cil.LdcI47, cil.LdcI48:
		s.pushExpr(itoa(int(ins.Op-cil.LdcI40)), "int32_t")
		return nil
	case cil.LdcI4S:
		return lowerLdcI4(s, ins.IntOperand)
	case cil.LdcI4:
		return lowerLdcI4(s, ins.IntOperand)
	case cil.LdcI8:
		return lowerLdcI8(s, ins.IntOperand)
	case cil.LdcR4:
		s.pushExpr(formatFloat(ins.FloatOperand)+"f", "float")
		return nil
	case cil.LdcR8:
		s.pushExpr(formatFloat(ins.FloatOperand), "double")
		return nil
	case cil.Ldstr:
		return lowerLdstr(s, ins.Token)

	case cil.AddOp, cil.SubOp, cil.MulOp, cil.DivOp, cil.DivUn, cil.RemOp, cil.RemUn,
		cil.AndOp, cil.OrOp, cil.XorOp, cil.ShlOp, cil.ShrOp, cil.ShrUn:
		return lowerBinaryOp(s, ins.Op)
	case cil.AddOvf, cil.AddOvfUn, cil.SubOvf, cil.SubOvfUn, cil.MulOvf, cil.MulOvfUn:
		return lowerCheckedOp(s, ins.Op)
	case cil.NegOp, cil.NotOp:
		return lowerUnaryOp(s, ins.Op)

	case cil.Ceq, cil.Cgt, cil.CgtUn, cil.Clt, cil.CltUn:
		return lowerCompare(s, ins.Op)

	case cil.BrS, cil.Br:
		label := labelFor(ins.BranchTarget)
		s.canonicalizeForBranch(label)
		s.emit(&ir.Branch{Target: label})
		return nil
	case cil.BrfalseS, cil.Brfalse, cil.BrtrueS, cil.Brtrue:
		return lowerConditionalBranch(s, ins)
	case cil.BeqS, cil.Beq, cil.BgeS, cil.Bge, cil.BgtS, cil.Bgt, cil.BleS, cil.Ble, cil.BltS, cil.Blt,
		cil.BneUnS, cil.BneUn, cil.BgeUnS, cil.BgeUn, cil.BgtUnS, cil.BgtUn, cil.BleUnS, cil.BleUn, cil.BltUnS, cil.BltUn:
		return lowerComparingBranch(s, ins)
	case cil.SwitchOp:
		return lowerSwitch(s, ins)
	case cil.Leave, cil.LeaveS:
		return lowerLeave(s, ins, body)

	case cil.ConvI1, cil.ConvI2, cil.ConvI4, cil.ConvI8, cil.ConvR4, cil.ConvR8, cil.ConvU4, cil.ConvU8,
		cil.ConvU2, cil.ConvU1, cil.ConvI, cil.ConvU, cil.ConvRUn:
		return lowerConv(s, ins.Op)
	case cil.ConvOvfI1, cil.ConvOvfU1, cil.ConvOvfI2, cil.ConvOvfU2, cil.ConvOvfI4, cil.ConvOvfU4,
		cil.ConvOvfI8, cil.ConvOvfU8, cil.ConvOvfI, cil.ConvOvfU,
		cil.ConvOvfI1Un, cil.ConvOvfI2Un, cil.ConvOvfI4Un, cil.ConvOvfI8Un,
		cil.ConvOvfU1Un, cil.ConvOvfU2Un, cil.ConvOvfU4Un, cil.ConvOvfU8Un, cil.ConvOvfIUn, cil.ConvOvfUUn:
		return lowerConvOvf(s, ins.Op)
	case cil.Ckfinite:
		return nil

	case cil.Castclass:
		return lowerCastOrIsinst(s, ins.Token, false)
	case cil.Isinst:
		return lowerCastOrIsinst(s, ins.Token, true)

	case cil.Box:
		return lowerBox(s, ins.Token)
	case cil.Unbox:
		return lowerUnbox(s, ins.Token, false)
	case cil.UnboxAny:
		return lowerUnbox(s, ins.Token, true)

	case cil.Ldfld:
		return lowerFieldAccess(s, ins.Token, fieldLoad, false)
	case cil.Ldflda:
		return lowerFieldAccess(s, ins.Token, fieldLoad, true)
	case cil.Stfld:
		return lowerFieldAccess(s, ins.Token, fieldStore, false)
	case cil.Ldsfld:
		return lowerStaticFieldAccess(s, ins.Token, fieldLoad, false)
	case cil.Ldsflda:
		return lowerStaticFieldAccess(s, ins.Token, fieldLoad, true)
	case cil.Stsfld:
		return lowerStaticFieldAccess(s, ins.Token, fieldStore, false)

	case cil.LdindI1, cil.LdindU1, cil.LdindI2, cil.LdindU2, cil.LdindI4, cil.LdindU4,
		cil.LdindI8, cil.LdindI, cil.LdindR4, cil.LdindR8, cil.LdindRef:
		return lowerLdind(s, ins.Op)
	case cil.StindRef, cil.StindI1, cil.StindI2, cil.StindI4, cil.StindI8, cil.StindR4, cil.StindR8, cil.StindI:
		return lowerStind(s, ins.Op)
	case cil.Ldobj, cil.Stobj, cil.Cpobj:
		return lowerObjOps(s, ins)
	case cil.Initobj:
		return lowerInitobj(s, ins.Token)
	case cil.Cpblk:
		return lowerCpblk(s)
	case cil.Initblk:
		return lowerInitblk(s)
	case cil.Localloc:
		return lowerLocalloc(s)

	case cil.Newarr:
		return lowerNewarr(s, ins.Token)
	case cil.Ldlen:
		return lowerLdlen(s)
	case cil.Ldelema:
		return lowerLdelem(s, ins.Token, true, "")
	case cil.LdelemAny:
		return lowerLdelem(s, ins.Token, false, "")
	case cil.LdelemI1:
		return lowerLdelem(s, 0, false, "int8_t")
	case cil.LdelemU1:
		return lowerLdelem(s, 0, false, "uint8_t")
	case cil.LdelemI2:
		return lowerLdelem(s, 0, false, "int16_t")
	case cil.LdelemU2:
		return lowerLdelem(s, 0, false, "uint16_t")
	case cil.LdelemI4:
		return lowerLdelem(s, 0, false, "int32_t")
	case cil.LdelemU4:
		return lowerLdelem(s, 0, false, "uint32_t")
	case cil.LdelemI8:
		return lowerLdelem(s, 0, false, "int64_t")
	case cil.LdelemI:
		return lowerLdelem(s, 0, false, "intptr_t")
	case cil.LdelemR4:
		return lowerLdelem(s, 0, false, "float")
	case cil.LdelemR8:
		return lowerLdelem(s, 0, false, "double")
	case cil.LdelemRef:
		return lowerLdelem(s, 0, false, "Object*")
	case cil.StelemAny:
		return lowerStelem(s, ins.Token, "")
	case cil.StelemI:
		return lowerStelem(s, 0, "intptr_t")
	case cil.StelemI1:
		return lowerStelem(s, 0, "int8_t")
	case cil.StelemI2:
		return lowerStelem(s, 0, "int16_t")
	case cil.StelemI4:
		return lowerStelem(s, 0, "int32_t")
	case cil.StelemI8:
		return lowerStelem(s, 0, "int64_t")
	case cil.StelemR4:
		return lowerStelem(s, 0, "float")
	case cil.StelemR8:
		return lowerStelem(s, 0, "double")
	case cil.StelemRef:
		return lowerStelem(s, 0, "Object*")

	case cil.Call:
		return lowerCall(s, ins.Token, false)
	case cil.Callvirt:
		return lowerCall(s, ins.Token, true)
	case cil.Newobj:
		return lowerNewobj(s, ins.Token)
	case cil.Calli:
		return lowerCalli(s, ins.Token)
	case cil.Jmp:
		return lowerJmp(s, ins.Token)
	case cil.Ldftn:
		return lowerLdftn(s, ins.Token)
	case cil.Ldvirtftn:
		return lowerLdvirtftn(s, ins.Token)

	case cil.Ldtoken:
		return lowerLdtoken(s, ins.Token)
	case cil.Sizeof:
		return lowerSizeof(s, ins.Token)
	case cil.Arglist:
		s.pushExpr("__arglist()", "RuntimeArgumentHandle")
		return nil
	case cil.Mkrefany, cil.Refanyval, cil.Refanytype:
		return lowerTypedReference(s, ins, s.resolver)

	case cil.Unaligned:
		return nil
	case cil.Volatile:
		s.pendingVolatile = true
		return nil
	case cil.Tail:
		return nil
	case cil.Constrained:
		name, _, err := s.resolver.ResolveTypeToken(ins.Token)
		if err != nil {
			return err
		}
		s.constrainedType = name
		return nil
	case cil.Readonly:
		return nil

	default:
		return fmt.Errorf("unsupported opcode %s", ins.Op.Name())
	}
}
