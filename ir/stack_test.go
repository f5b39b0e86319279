package ir

import "testing"

func TestStackEntryIsPointer(t *testing.T) {
	tests := []struct {
		in  string
		out bool
	}{
		{"int32_t", false},
		{"int32_t*", true},
		{"Object* ", true},
		{"", false},
	}
	for _, tt := range tests {
		e := StackEntry{Type: tt.in}
		if got := e.IsPointer(); got != tt.out {
			t.Errorf("IsPointer(%q) = %v, want %v", tt.in, got, tt.out)
		}
	}
}

func TestStackEntryIsValidMergeTarget(t *testing.T) {
	tests := []struct {
		expr string
		out  bool
	}{
		{"__t0", true},
		{"x", true},
		{"nullptr", false},
		{"&obj->field", false},
		{"\"literal\"", false},
		{"(int32_t)x", false},
		{"42", false},
		{"-1", false},
		{"0x2A", false},
		{"", false},
	}
	for _, tt := range tests {
		e := StackEntry{Expr: tt.expr}
		if got := e.IsValidMergeTarget(); got != tt.out {
			t.Errorf("IsValidMergeTarget(%q) = %v, want %v", tt.expr, got, tt.out)
		}
	}
}

func TestModuleInternStringIsStable(t *testing.T) {
	m := NewModule()
	id1 := m.InternString("hello")
	id2 := m.InternString("hello")
	if id1 != id2 {
		t.Fatalf("InternString not stable: %q != %q", id1, id2)
	}
	id3 := m.InternString("world")
	if id3 == id1 {
		t.Fatalf("distinct literals got the same pool id %q", id1)
	}
	lits := m.StringLiterals()
	if lits[id1] != "hello" || lits[id3] != "world" {
		t.Fatalf("StringLiterals() mismatch: %v", lits)
	}
}

func TestTypeResolveVtableSlot(t *testing.T) {
	ty := NewType("Foo", "Foo")
	ty.Vtable = []VtableEntry{
		{Slot: 0, MethodName: "Foo_Bar"},
		{Slot: 1, MethodName: "Foo_Bar_int32"},
	}
	e, ok := ty.ResolveVtableSlot("Foo_Bar", -1)
	if !ok || e.Slot != 0 {
		t.Fatalf("expected exact match at slot 0, got %+v ok=%v", e, ok)
	}
}
