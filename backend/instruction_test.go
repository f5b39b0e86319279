package backend

import (
	"errors"
	"strings"
	"testing"

	"github.com/axiom-tools/cil2cpp/ir"
)

func render(t *testing.T, instr ir.Instruction) string {
	t.Helper()
	out, err := renderInstruction(instr)
	if err != nil {
		t.Fatalf("renderInstruction(%T) returned error: %v", instr, err)
	}
	return out
}

func TestRenderSimpleControlFlow(t *testing.T) {
	tests := []struct {
		instr ir.Instruction
		want  string
	}{
		{&ir.Assign{Target: "x", Value: "1"}, "x = 1;"},
		{&ir.Label{Name: "L0"}, "L0:;"},
		{&ir.Branch{Target: "L1"}, "goto L1;"},
		{&ir.ConditionalBranch{Cond: "x", TrueLabel: "L2"}, "if (x) goto L2;"},
		{&ir.Return{}, "return;"},
		{&ir.Return{Value: "x"}, "return x;"},
		{&ir.Rethrow{}, "Runtime_Rethrow();"},
		{&ir.Throw{Expr: "ex"}, "Runtime_Throw(ex);"},
	}
	for _, tt := range tests {
		if got := render(t, tt.instr); got != tt.want {
			t.Errorf("render(%T) = %q, want %q", tt.instr, got, tt.want)
		}
	}
}

func TestRenderSwitch(t *testing.T) {
	instr := &ir.Switch{
		Value: "v",
		Cases: []ir.SwitchCase{{Value: 0, Label: "L0"}, {Value: 1, Label: "L1"}},
	}
	got := render(t, instr)
	want := "switch (v) { case 0: goto L0; case 1: goto L1; }"
	if got != want {
		t.Errorf("render(Switch) = %q, want %q", got, want)
	}
}

func TestRenderEHMarkers(t *testing.T) {
	if got := render(t, &ir.TryBegin{}); got != "/* try */ {" {
		t.Errorf("TryBegin = %q", got)
	}
	if got := render(t, &ir.CatchBegin{ExcType: "MyException"}); got != "} /* catch MyException */ {" {
		t.Errorf("CatchBegin = %q", got)
	}
	if got := render(t, &ir.CatchBegin{}); got != "} /* catch */ {" {
		t.Errorf("CatchBegin (no type) = %q", got)
	}
	if got := render(t, &ir.TryEnd{}); got != "}" {
		t.Errorf("TryEnd = %q", got)
	}
}

func TestRenderBinaryAndUnaryOp(t *testing.T) {
	bin := &ir.BinaryOp{Op: "+", A: "a", B: "b", Result: "r", ResultType: "int32_t"}
	if got := render(t, bin); got != "int32_t r = a + b;" {
		t.Errorf("BinaryOp = %q", got)
	}

	un := &ir.UnaryOp{Op: "-", X: "a", Result: "r"}
	if got := render(t, un); got != "r = -a;" {
		t.Errorf("UnaryOp (no decl) = %q", got)
	}
}

func TestRenderCast(t *testing.T) {
	cast := &ir.Cast{Src: "o", TargetType: "Foo*", Result: "r", Safe: true, TypeInfoName: "Foo"}
	got := render(t, cast)
	want := "Foo* r = (Foo*)Runtime_IsInst(o, &Foo);"
	if got != want {
		t.Errorf("Cast(safe) = %q, want %q", got, want)
	}

	hard := &ir.Cast{Src: "o", TargetType: "Foo*", Result: "r"}
	got = render(t, hard)
	want = "Foo* r = (Foo*)Runtime_CastClass(o);"
	if got != want {
		t.Errorf("Cast(hard) = %q, want %q", got, want)
	}
}

func TestRenderFieldAccessStoreAndLoad(t *testing.T) {
	store := &ir.FieldAccess{Object: "obj", Field: "val", IsStore: true, StoreValue: "5"}
	if got := render(t, store); got != "obj->val = 5;" {
		t.Errorf("FieldAccess(store) = %q", got)
	}

	load := &ir.FieldAccess{Object: "obj", Field: "val", Result: "r", ResultType: "int32_t"}
	if got := render(t, load); got != "int32_t r = obj->val;" {
		t.Errorf("FieldAccess(load) = %q", got)
	}
}

func TestRenderArrayAccess(t *testing.T) {
	load := &ir.ArrayAccess{Array: "arr", Index: "i", ElementType: "int32_t", Result: "r"}
	if got := render(t, load); got != "int32_t r = Array_At<int32_t>(arr, i);" {
		t.Errorf("ArrayAccess(load) = %q", got)
	}

	store := &ir.ArrayAccess{Array: "arr", Index: "i", ElementType: "int32_t", IsStore: true, StoreValue: "9"}
	if got := render(t, store); got != "Array_At<int32_t>(arr, i) = 9;" {
		t.Errorf("ArrayAccess(store) = %q", got)
	}
}

func TestRenderNewObjWithAndWithoutArgs(t *testing.T) {
	noArgs := &ir.NewObj{TypeName: "Foo", CtorName: "Foo_ctor", Result: "r"}
	got := render(t, noArgs)
	want := "Foo* r = Runtime_New<Foo>(); Foo_ctor(r);"
	if got != want {
		t.Errorf("NewObj(no args) = %q, want %q", got, want)
	}

	withArgs := &ir.NewObj{
		TypeName: "Foo", CtorName: "Foo_ctor", Result: "r",
		Args: []ir.NewObjArg{{Expr: "1", Type: "int32_t"}, {Expr: "2", Type: "int32_t"}},
	}
	got = render(t, withArgs)
	want = "Foo* r = Runtime_New<Foo>(); Foo_ctor(r, 1, 2);"
	if got != want {
		t.Errorf("NewObj(with args) = %q, want %q", got, want)
	}
}

func TestRenderCallUnresolvedDisambiguation(t *testing.T) {
	call := &ir.Call{FunctionName: "Foo_Bar", DeferredDisambigKey: "Foo_Bar/System.Int32"}
	_, err := renderInstruction(call)
	if err == nil {
		t.Fatal("expected an error for an unresolved disambiguation key")
	}
	if !errors.Is(err, ErrUnresolvedDisambiguation) {
		t.Fatalf("expected ErrUnresolvedDisambiguation, got %v", err)
	}
	if !strings.Contains(err.Error(), "Foo_Bar/System.Int32") {
		t.Fatalf("error %v does not mention the disambiguation key", err)
	}
}

func TestRenderCallResolved(t *testing.T) {
	call := &ir.Call{
		FunctionName: "Foo_Bar",
		Args:         []ir.CallArg{{Expr: "a"}, {Expr: "b"}},
		Result:       "r",
		ResultType:   "int32_t",
	}
	got := render(t, call)
	want := "int32_t r = Foo_Bar(a, b);"
	if got != want {
		t.Errorf("Call = %q, want %q", got, want)
	}
}

func TestRenderUnboxAnyUsesResultTypeOrAuto(t *testing.T) {
	typed := &ir.Unbox{Object: "o", ValueType: "int32_t", Result: "r", IsUnboxAny: true, ResultType: "int32_t"}
	if got := render(t, typed); got != "int32_t r = Runtime_UnboxAny<int32_t>(o);" {
		t.Errorf("Unbox(typed) = %q", got)
	}

	untyped := &ir.Unbox{Object: "o", ValueType: "int32_t", Result: "r", IsUnboxAny: true}
	if got := render(t, untyped); got != "auto r = Runtime_UnboxAny<int32_t>(o);" {
		t.Errorf("Unbox(no result type) = %q", got)
	}
}

func TestRenderInitObj(t *testing.T) {
	ref := &ir.InitObj{Address: "p", TypeName: "Foo", IsReferenceType: true}
	if got := render(t, ref); got != "p = nullptr;" {
		t.Errorf("InitObj(ref) = %q", got)
	}

	val := &ir.InitObj{Address: "&p", TypeName: "Foo"}
	if got := render(t, val); got != "memset(&p, 0, sizeof(Foo));" {
		t.Errorf("InitObj(value) = %q", got)
	}
}

