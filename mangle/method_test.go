package mangle

import "testing"

func TestMethod(t *testing.T) {
	tests := []struct {
		typeMangled, ilName, retMangled string
		out                             string
	}{
		{"Foo", "Bar", "void", "Foo_Bar"},
		{"Foo", ".ctor", "void", "Foo_ctor"},
		{"Foo", ".cctor", "void", "Foo_cctor"},
		{"Foo", "op_Implicit", "int32_t", "Foo_op_Implicit_to_int32_t"},
	}
	for _, tt := range tests {
		if got := Method(tt.typeMangled, tt.ilName, tt.retMangled); got != tt.out {
			t.Errorf("Method(%q,%q,%q) = %q, want %q", tt.typeMangled, tt.ilName, tt.retMangled, got, tt.out)
		}
	}
}

func TestDisambiguate(t *testing.T) {
	tests := []struct {
		name   string
		params []string
		out    string
	}{
		{"Foo_Bar", nil, "Foo_Bar_void"},
		{"Foo_Bar", []string{"System.Int32"}, "Foo_Bar_System_Int32"},
		{"Foo_Bar", []string{"System.Int32&"}, "Foo_Bar_System_Int32Ref"},
		{"Foo_Bar", []string{"System.Int32*"}, "Foo_Bar_System_Int32Ptr"},
	}
	for _, tt := range tests {
		if got := Disambiguate(tt.name, tt.params); got != tt.out {
			t.Errorf("Disambiguate(%q,%v) = %q, want %q", tt.name, tt.params, got, tt.out)
		}
	}
}

func TestDisambiguateIsIdempotentAcrossRuns(t *testing.T) {
	params := []string{"System.String"}
	once := Disambiguate("Foo_Bar", params)
	twice := Disambiguate("Foo_Bar", params)
	if once != twice {
		t.Fatalf("Disambiguate not deterministic: %q != %q", once, twice)
	}
}
