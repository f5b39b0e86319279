package lower

import (
	"testing"

	"github.com/axiom-tools/cil2cpp/cil"
	"github.com/axiom-tools/cil2cpp/icall"
	"github.com/axiom-tools/cil2cpp/ir"
)

func TestLowerMethodSimpleArithmetic(t *testing.T) {
	method := ir.NewMethod("Increment", "Demo_Increment")
	method.ReturnType = "int32_t"
	method.Params = []ir.Param{{Name: "x", Type: "int32_t"}}

	body := &cil.MethodBody{
		Instructions: []cil.Instruction{
			{Op: cil.Ldarg0, Offset: 0, Size: 1},
			{Op: cil.LdcI41, Offset: 1, Size: 1},
			{Op: cil.AddOp, Offset: 2, Size: 1},
			{Op: cil.Ret, Offset: 3, Size: 1},
		},
	}

	module := ir.NewModule()
	err := LowerMethod(method, module, nil, icall.NewRegistry(), Config{}, NopDiagnostics{}, "Demo", body, nil)
	if err != nil {
		t.Fatalf("LowerMethod returned error: %v", err)
	}

	instrs := method.AllInstructions()
	if len(instrs) != 2 {
		t.Fatalf("expected 2 emitted instructions (add, return), got %d: %#v", len(instrs), instrs)
	}

	add, ok := instrs[0].(*ir.BinaryOp)
	if !ok {
		t.Fatalf("instrs[0] = %T, want *ir.BinaryOp", instrs[0])
	}
	if add.Op != "+" || add.A != "x" || add.B != "1" || add.ResultType != "int32_t" {
		t.Fatalf("unexpected BinaryOp: %+v", add)
	}

	ret, ok := instrs[1].(*ir.Return)
	if !ok {
		t.Fatalf("instrs[1] = %T, want *ir.Return", instrs[1])
	}
	if ret.Value != add.Result {
		t.Fatalf("Return.Value = %q, want the BinaryOp result %q", ret.Value, add.Result)
	}
}

func TestLowerMethodVoidReturn(t *testing.T) {
	method := ir.NewMethod("Noop", "Demo_Noop")
	method.ReturnType = "void"

	body := &cil.MethodBody{
		Instructions: []cil.Instruction{
			{Op: cil.Nop, Offset: 0, Size: 1},
			{Op: cil.Ret, Offset: 1, Size: 1},
		},
	}

	module := ir.NewModule()
	err := LowerMethod(method, module, nil, icall.NewRegistry(), Config{}, NopDiagnostics{}, "Demo", body, nil)
	if err != nil {
		t.Fatalf("LowerMethod returned error: %v", err)
	}

	instrs := method.AllInstructions()
	if len(instrs) != 1 {
		t.Fatalf("expected a single Return instruction, got %d: %#v", len(instrs), instrs)
	}
	ret, ok := instrs[0].(*ir.Return)
	if !ok || ret.Value != "" {
		t.Fatalf("expected a bare Return, got %#v", instrs[0])
	}
}

func TestLowerMethodConstantLoads(t *testing.T) {
	method := ir.NewMethod("Answer", "Demo_Answer")
	method.ReturnType = "int32_t"

	body := &cil.MethodBody{
		Instructions: []cil.Instruction{
			{Op: cil.LdcI4S, IntOperand: 42, Offset: 0, Size: 2},
			{Op: cil.Ret, Offset: 2, Size: 1},
		},
	}

	module := ir.NewModule()
	err := LowerMethod(method, module, nil, icall.NewRegistry(), Config{}, NopDiagnostics{}, "Demo", body, nil)
	if err != nil {
		t.Fatalf("LowerMethod returned error: %v", err)
	}

	instrs := method.AllInstructions()
	if len(instrs) != 1 {
		t.Fatalf("expected a single Return instruction, got %d: %#v", len(instrs), instrs)
	}
	ret := instrs[0].(*ir.Return)
	if ret.Value != "42" {
		t.Fatalf("Return.Value = %q, want %q", ret.Value, "42")
	}
}
