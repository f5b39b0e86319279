package reach

import (
	"sort"
	"testing"

	"github.com/axiom-tools/cil2cpp/assembly"
)

func TestSetHasMethod(t *testing.T) {
	s := &Set{
		methods: map[methodKey]assembly.MethodInfo{
			{declaringType: "Foo", name: "Bar"}: {DeclaringType: "Foo", Name: "Bar"},
		},
		types: map[string]bool{"Foo": true},
	}
	if !s.HasMethod("Foo", "Bar") {
		t.Fatalf("expected Foo.Bar to be reachable")
	}
	if s.HasMethod("Foo", "Baz") {
		t.Fatalf("did not expect Foo.Baz to be reachable")
	}
	if s.HasMethod("Quux", "Bar") {
		t.Fatalf("did not expect Quux.Bar to be reachable")
	}
}

func TestSetMethodsAndTypes(t *testing.T) {
	s := &Set{
		methods: map[methodKey]assembly.MethodInfo{
			{declaringType: "Foo", name: "Bar"}: {DeclaringType: "Foo", Name: "Bar"},
			{declaringType: "Foo", name: "Baz"}: {DeclaringType: "Foo", Name: "Baz"},
		},
		types: map[string]bool{"Foo": true, "System.Object": true},
	}

	methods := s.Methods()
	if len(methods) != 2 {
		t.Fatalf("Methods() returned %d entries, want 2", len(methods))
	}

	types := s.Types()
	sort.Strings(types)
	want := []string{"Foo", "System.Object"}
	if len(types) != len(want) || types[0] != want[0] || types[1] != want[1] {
		t.Fatalf("Types() = %v, want %v", types, want)
	}
}

func TestSetEmpty(t *testing.T) {
	s := &Set{methods: map[methodKey]assembly.MethodInfo{}, types: map[string]bool{}}
	if s.HasMethod("Foo", "Bar") {
		t.Fatalf("empty set should not report any method as reachable")
	}
	if len(s.Methods()) != 0 || len(s.Types()) != 0 {
		t.Fatalf("empty set should report zero methods and types")
	}
}
