package lower

import (
	"github.com/axiom-tools/cil2cpp/cil"
	"github.com/axiom-tools/cil2cpp/ir"
)

func lowerConditionalBranch(s *state, ins cil.Instruction) error {
	v := s.pop()
	cond := v.Expr
	if ins.Op == cil.BrfalseS || ins.Op == cil.Brfalse {
		cond = "!(" + cond + ")"
	}
	label := labelFor(ins.BranchTarget)
	s.canonicalizeForBranch(label)
	s.emit(&ir.ConditionalBranch{Cond: cond, TrueLabel: label})
	return nil
}

var comparingBranchSymbol = map[cil.Opcode]string{
	cil.BeqS: "==", cil.Beq: "==",
	cil.BgeS: ">=", cil.Bge: ">=",
	cil.BgtS: ">", cil.Bgt: ">",
	cil.BleS: "<=", cil.Ble: "<=",
	cil.BltS: "<", cil.Blt: "<",
	cil.BneUnS: "!=", cil.BneUn: "!=",
	cil.BgeUnS: ">=", cil.BgeUn: ">=",
	cil.BgtUnS: ">", cil.BgtUn: ">",
	cil.BleUnS: "<=", cil.BleUn: "<=",
	cil.BltUnS: "<", cil.BltUn: "<",
}

func lowerComparingBranch(s *state, ins cil.Instruction) error {
	b, a := s.pop(), s.pop()
	sym := comparingBranchSymbol[ins.Op]
	cond := "(" + a.Expr + ") " + sym + " (" + b.Expr + ")"
	label := labelFor(ins.BranchTarget)
	s.canonicalizeForBranch(label)
	s.emit(&ir.ConditionalBranch{Cond: cond, TrueLabel: label})
	return nil
}

func lowerSwitch(s *state, ins cil.Instruction) error {
	v := s.pop()
	cases := make([]ir.SwitchCase, len(ins.SwitchTargets))
	for i, t := range ins.SwitchTargets {
		label := labelFor(t)
		s.canonicalizeForBranch(label)
		cases[i] = ir.SwitchCase{Value: int64(i), Label: label}
	}
	s.emit(&ir.Switch{Value: v.Expr, Cases: cases})
	return nil
}

// lowerLeave lowers `leave`/`leave.s`: the evaluation stack is cleared (it
// must be empty across a leave per ECMA-335 verifiability rules), and
// control transfers unconditionally. The region markers derived from
// exception-handler metadata (TryEnd/FinallyBegin/...), not the leave
// opcode itself, are what actually delimits the protected regions the
// leave crosses. The enclosingTryEnd result is not used: every leave
// lowers to a plain Branch to its target, including one that crosses the
// end of a try protected by a finally (that branch is not suppressed).
func lowerLeave(s *state, ins cil.Instruction, body *cil.MethodBody) error {
	_, _ = enclosingTryEnd(body.ExceptionHandlers, ins.Offset)
	s.stack = nil
	label := labelFor(ins.BranchTarget)
	s.emit(&ir.Branch{Target: label})
	return nil
}

func lowerRet(s *state) error {
	if s.method.ReturnType == "" || s.method.ReturnType == "void" {
		s.emit(&ir.Return{})
		return nil
	}
	v := s.pop()
	s.emit(&ir.Return{Value: v.Expr})
	return nil
}
