package mangle

import "testing"

func TestSubstitutePlaceholdersSimple(t *testing.T) {
	bindings := map[string]string{"T": "System.Int32"}
	if got := SubstitutePlaceholders("T", bindings); got != "System.Int32" {
		t.Errorf("SubstitutePlaceholders(T) = %q, want System.Int32", got)
	}
}

func TestSubstitutePlaceholdersArrayAndRef(t *testing.T) {
	bindings := map[string]string{"T": "System.Int32", "TValue": "System.String"}
	if got := SubstitutePlaceholders("T[]", bindings); got != "System.Int32[]" {
		t.Errorf("SubstitutePlaceholders(T[]) = %q, want System.Int32[]", got)
	}
	if got := SubstitutePlaceholders("TValue&", bindings); got != "System.String&" {
		t.Errorf("SubstitutePlaceholders(TValue&) = %q, want System.String&", got)
	}
}

func TestSubstitutePlaceholdersNestedGeneric(t *testing.T) {
	bindings := map[string]string{"TKey": "System.String", "TValue": "System.Int32"}
	got := SubstitutePlaceholders("System.Collections.Generic.KeyValuePair`2<TKey,TValue>", bindings)
	want := "System.Collections.Generic.KeyValuePair`2<System.String,System.Int32>"
	if got != want {
		t.Errorf("SubstitutePlaceholders(nested) = %q, want %q", got, want)
	}
}

func TestSubstitutePlaceholdersLeavesUnboundAlone(t *testing.T) {
	bindings := map[string]string{"T": "System.Int32"}
	if got := SubstitutePlaceholders("TUnbound", bindings); got != "TUnbound" {
		t.Errorf("SubstitutePlaceholders(unbound) = %q, want TUnbound", got)
	}
}

func TestSubstitutePlaceholdersNoBindings(t *testing.T) {
	if got := SubstitutePlaceholders("T", nil); got != "T" {
		t.Errorf("SubstitutePlaceholders(no bindings) = %q, want T", got)
	}
}

func TestGenericContextResolve(t *testing.T) {
	ctx := GenericContext{TypeArgs: []string{"System.String", "System.Int32"}}
	tests := []struct {
		placeholder string
		want        string
	}{
		{"T", "System.String"},
		{"TKey", "System.String"},
		{"TValue", "System.Int32"},
		{"TResult", "System.Int32"},
		{"Unknown", "Unknown"},
	}
	for _, tt := range tests {
		if got := ctx.Resolve(tt.placeholder); got != tt.want {
			t.Errorf("Resolve(%q) = %q, want %q", tt.placeholder, got, tt.want)
		}
	}
}

func TestGenericContextResolveSingleTypeArgTValue(t *testing.T) {
	ctx := GenericContext{TypeArgs: []string{"System.Int32"}}
	if got := ctx.Resolve("TValue"); got != "System.Int32" {
		t.Errorf("Resolve(TValue) with one type arg = %q, want System.Int32", got)
	}
}
