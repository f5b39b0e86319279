package backend

import (
	"strings"
	"testing"

	"github.com/axiom-tools/cil2cpp/ir"
)

func buildModule() *ir.Module {
	module := ir.NewModule()

	ty := ir.NewType("Demo.Counter", "Demo_Counter")
	ty.Fields = []ir.Field{{Name: "value", Type: "int32_t"}}

	m := ir.NewMethod("Increment", "Demo_Counter_Increment")
	m.ReturnType = "void"
	m.Params = []ir.Param{{Name: "self", Type: "Demo_Counter*"}}
	m.Body().Append(&ir.FieldAccess{Object: "self", Field: "value", Result: "__t0", ResultType: "int32_t"})
	m.Body().Append(&ir.BinaryOp{Op: "+", A: "__t0", B: "1", Result: "__t1", ResultType: "int32_t"})
	m.Body().Append(&ir.FieldAccess{Object: "self", Field: "value", IsStore: true, StoreValue: "__t1"})
	m.Body().Append(&ir.Return{})

	ty.Methods = []*ir.Method{m}
	module.AddType(ty)

	return module
}

func TestPrintEmitsHeaderAndType(t *testing.T) {
	module := buildModule()
	out, err := Print(module, Config{})
	if err != nil {
		t.Fatalf("Print returned error: %v", err)
	}

	for _, want := range []string{
		"#include \"runtime.h\"",
		"struct Demo_Counter;",
		"extern TypeInfo Demo_Counter_TypeInfo;",
		"struct Demo_Counter {",
		"\tint32_t value;",
		"void Demo_Counter_Increment(Demo_Counter* self) {",
		"\tself->value = __t1;",
		"\treturn;",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Print output missing %q\nfull output:\n%s", want, out)
		}
	}
}

func TestPrintSkipsICallMappedMethodBody(t *testing.T) {
	module := ir.NewModule()
	ty := ir.NewType("Demo.Native", "Demo_Native")
	m := ir.NewMethod("DoIt", "Demo_Native_DoIt")
	m.ReturnType = "void"
	m.HasICallMapping = true
	m.Body().Append(&ir.Comment{Text: "should never be printed"})
	ty.Methods = []*ir.Method{m}
	module.AddType(ty)

	out, err := Print(module, Config{})
	if err != nil {
		t.Fatalf("Print returned error: %v", err)
	}
	if strings.Contains(out, "should never be printed") {
		t.Fatalf("Print emitted the body of an ICall-mapped method:\n%s", out)
	}
	if strings.Contains(out, "Demo_Native_DoIt(") && strings.Contains(out, "{") {
		t.Fatalf("Print should only forward-declare an ICall-mapped method, got:\n%s", out)
	}
}

func TestPrintRuntimeProvidedTypeHasNoStructDefinition(t *testing.T) {
	module := ir.NewModule()
	ty := ir.NewType("System.Object", "System_Object")
	ty.Flags.IsRuntimeProvided = true
	module.AddType(ty)

	out, err := Print(module, Config{})
	if err != nil {
		t.Fatalf("Print returned error: %v", err)
	}
	if strings.Contains(out, "struct System_Object {") {
		t.Fatalf("Print emitted a struct body for a runtime-provided type:\n%s", out)
	}
	if strings.Contains(out, "extern TypeInfo System_Object_TypeInfo;") {
		t.Fatalf("Print should not forward-declare a TypeInfo for a runtime-provided type:\n%s", out)
	}
}

func TestPrintPropagatesUnresolvedDisambiguationError(t *testing.T) {
	module := ir.NewModule()
	ty := ir.NewType("Demo.Bad", "Demo_Bad")
	m := ir.NewMethod("Bar", "Demo_Bad_Bar")
	m.ReturnType = "void"
	m.Body().Append(&ir.Call{FunctionName: "Demo_Bad_Bar", DeferredDisambigKey: "Demo_Bad_Bar/System.Int32"})
	ty.Methods = []*ir.Method{m}
	module.AddType(ty)

	_, err := Print(module, Config{})
	if err == nil {
		t.Fatal("expected Print to fail on an unresolved disambiguation key")
	}
}
