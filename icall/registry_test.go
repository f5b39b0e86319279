package icall

import "testing"

func TestLookupExactTier(t *testing.T) {
	r := NewRegistry()
	fn, ok := r.Lookup(CallSite{DeclaringType: "System.Object", Method: "GetHashCode", ParamCount: 0})
	if !ok || fn != "rt_object_get_hashcode" {
		t.Fatalf("Lookup(Object.GetHashCode) = (%q, %v), want (rt_object_get_hashcode, true)", fn, ok)
	}
}

func TestLookupTypedOverloadTier(t *testing.T) {
	r := NewRegistry()
	fn, ok := r.Lookup(CallSite{
		DeclaringType:  "System.IntPtr",
		Method:         "op_Explicit",
		ParamCount:     1,
		FirstParamType: "int64_t",
	})
	if !ok || fn != "rt_intptr_from_i64" {
		t.Fatalf("Lookup(IntPtr.op_Explicit(int64_t)) = (%q, %v), want (rt_intptr_from_i64, true)", fn, ok)
	}

	fn, ok = r.Lookup(CallSite{
		DeclaringType:  "System.IntPtr",
		Method:         "op_Explicit",
		ParamCount:     1,
		FirstParamType: "int32_t",
	})
	if !ok || fn != "rt_intptr_from_i32" {
		t.Fatalf("Lookup(IntPtr.op_Explicit(int32_t)) = (%q, %v), want (rt_intptr_from_i32, true)", fn, ok)
	}
}

func TestLookupWildcardTier(t *testing.T) {
	r := NewRegistry()
	fn, ok := r.Lookup(CallSite{DeclaringType: "System.String", Method: "Concat", ParamCount: 4})
	if !ok || fn != "rt_string_concat" {
		t.Fatalf("Lookup(String.Concat/4) = (%q, %v), want (rt_string_concat, true)", fn, ok)
	}
}

func TestLookupClosedGenericFallsBackToOpenType(t *testing.T) {
	r := newRegistryFromEntries([]Entry{
		{Type: "System.Collections.Generic.List`1", Method: "Add", ParamCount: 1, RuntimeFunc: "rt_list_add"},
	})
	fn, ok := r.Lookup(CallSite{
		DeclaringType: "System.Collections.Generic.List`1<System.Int32>",
		Method:        "Add",
		ParamCount:    1,
	})
	if !ok || fn != "rt_list_add" {
		t.Fatalf("Lookup(closed generic List<int32>.Add) = (%q, %v), want (rt_list_add, true)", fn, ok)
	}
}

func TestLookupReferenceTypedCompareExchangeFallback(t *testing.T) {
	r := NewRegistry()
	fn, ok := r.Lookup(CallSite{
		DeclaringType:              "System.Threading.Interlocked",
		Method:                     "CompareExchange",
		ParamCount:                 3,
		FirstParamType:             "MyRefType&",
		IsGenericMethod:            true,
		FirstGenericArgIsReference: true,
	})
	if !ok || fn != "rt_interlocked_cas_obj" {
		t.Fatalf("Lookup(generic reference CompareExchange) = (%q, %v), want (rt_interlocked_cas_obj, true)", fn, ok)
	}
}

func TestLookupMiss(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.Lookup(CallSite{DeclaringType: "My.Custom.Type", Method: "DoStuff", ParamCount: 0}); ok {
		t.Fatalf("expected no match for an unregistered call site")
	}
}

func TestOpenGenericName(t *testing.T) {
	tests := []struct {
		in       string
		wantName string
		wantOK   bool
	}{
		{"System.Collections.Generic.List`1<System.Int32>", "System.Collections.Generic.List`1", true},
		{"System.Int32", "System.Int32", false},
	}
	for _, tt := range tests {
		name, ok := openGenericName(tt.in)
		if name != tt.wantName || ok != tt.wantOK {
			t.Errorf("openGenericName(%q) = (%q, %v), want (%q, %v)", tt.in, name, ok, tt.wantName, tt.wantOK)
		}
	}
}
