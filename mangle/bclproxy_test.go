package mangle

import "testing"

func TestSynthesizeBCLProxyIDisposable(t *testing.T) {
	ty, ok := SynthesizeBCLProxy("System.IDisposable")
	if !ok {
		t.Fatal("expected System.IDisposable to be synthesizable")
	}
	if !ty.Flags.IsInterface || !ty.Flags.IsRuntimeProvided {
		t.Fatalf("expected an interface, runtime-provided type, got %+v", ty.Flags)
	}
	if len(ty.Methods) != 1 || ty.Methods[0].ILName != "Dispose" {
		t.Fatalf("expected a single Dispose method, got %+v", ty.Methods)
	}
	if ty.Methods[0].ReturnType != "void" {
		t.Fatalf("Dispose return type = %q, want void", ty.Methods[0].ReturnType)
	}
}

func TestSynthesizeBCLProxyClosedGeneric(t *testing.T) {
	ty, ok := SynthesizeBCLProxy("System.Collections.Generic.IEnumerator`1<System.Int32>")
	if !ok {
		t.Fatal("expected a closed IEnumerator<int32> to be synthesizable")
	}
	if !ty.Flags.IsGenericInstance {
		t.Fatalf("expected IsGenericInstance, got %+v", ty.Flags)
	}
	if len(ty.GenericArgs) != 1 || ty.GenericArgs[0] != "System.Int32" {
		t.Fatalf("GenericArgs = %v, want [System.Int32]", ty.GenericArgs)
	}
	if len(ty.Methods) != 1 || ty.Methods[0].ILName != "get_Current" {
		t.Fatalf("expected a single get_Current method, got %+v", ty.Methods)
	}
	if ty.Methods[0].ReturnType != "int32_t" {
		t.Fatalf("get_Current return type = %q, want int32_t (placeholder T bound to a primitive)", ty.Methods[0].ReturnType)
	}
	if len(ty.Interfaces) == 0 {
		t.Fatalf("expected IEnumerator<T> to carry its parent interfaces")
	}
}

func TestSynthesizeBCLProxyUnknownInterface(t *testing.T) {
	if _, ok := SynthesizeBCLProxy("My.Custom.INotRegistered"); ok {
		t.Fatal("expected an unregistered interface to fail synthesis")
	}
}

func TestSynthesizeBCLProxyArityMismatch(t *testing.T) {
	if _, ok := SynthesizeBCLProxy("System.Collections.Generic.IEnumerator`1<System.Int32,System.String>"); ok {
		t.Fatal("expected an arity mismatch to fail synthesis")
	}
}

func TestPrimitive(t *testing.T) {
	if got, ok := Primitive("System.Int32"); !ok || got != "int32_t" {
		t.Errorf("Primitive(System.Int32) = (%q, %v), want (int32_t, true)", got, ok)
	}
	if _, ok := Primitive("System.String"); ok {
		t.Errorf("expected System.String to not be a registered primitive")
	}
}

func TestResolve(t *testing.T) {
	if got := Resolve("System.Int32", true); got != "int32_t" {
		t.Errorf("Resolve(System.Int32, value) = %q, want int32_t", got)
	}
	if got := Resolve("Demo.Widget", false); got != "Demo_Widget*" {
		t.Errorf("Resolve(Demo.Widget, ref) = %q, want Demo_Widget*", got)
	}
	if got := Resolve("Demo.Widget", true); got != "Demo_Widget" {
		t.Errorf("Resolve(Demo.Widget, value) = %q, want Demo_Widget", got)
	}
}
