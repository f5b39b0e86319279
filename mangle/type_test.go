package mangle

import "testing"

func TestType(t *testing.T) {
	tests := []struct {
		in  string
		out string
	}{
		{"System.Int32", "System_Int32"},
		{"Outer/Inner", "Outer_Inner"},
		{"List`1", "List_arity1"},
		{"List`1<System.Int32>", "List_arity1_of_System_Int32"},
	}
	for _, tt := range tests {
		if got := Type(tt.in); got != tt.out {
			t.Errorf("Type(%q) = %q, want %q", tt.in, got, tt.out)
		}
	}
}

func TestTypeNestedGenericArgs(t *testing.T) {
	got := Type("Dictionary`2<System.String,List`1<System.Int32>>")
	want := "Dictionary_arity2_of_System_String_List_arity1_of_System_Int32"
	if got != want {
		t.Fatalf("Type(nested generic) = %q, want %q", got, want)
	}
}

func TestTypeIsIdempotentOnMangledInput(t *testing.T) {
	once := Type("System.Int32")
	twice := Type(once)
	if once != twice {
		t.Fatalf("mangling not idempotent: %q != %q", once, twice)
	}
}

func TestSplitTopLevelArgsRespectsNesting(t *testing.T) {
	args := splitTopLevelArgs("K,List`1<V>")
	if len(args) != 2 || args[0] != "K" || args[1] != "List`1<V>" {
		t.Fatalf("splitTopLevelArgs = %v, want [K, List`1<V>]", args)
	}
}
