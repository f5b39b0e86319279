// Package mangle turns IL type and method names into the C++ identifiers
// the backend prints, and carries the fixed primitive-type table and the
// well-known BCL interface proxy catalogue the core falls back on when a
// referenced interface was never loaded from metadata.
package mangle

import "strings"

// Type mangles an IL full name into a stable C++ identifier. It is a pure
// function of its input (modulo the overload-disambiguation pass run
// afterward), and understands nested types ("Outer/Inner"), generic arity
// markers ("List`1"), and generic instances ("List`1<System.Int32>").
func Type(ilFullName string) string {
	open, args := splitGenericInstance(ilFullName)
	base := mangleOpenType(open)
	if len(args) == 0 {
		return base
	}
	mangledArgs := make([]string, len(args))
	for i, a := range args {
		mangledArgs[i] = Type(strings.TrimSpace(a))
	}
	return GenericInstance(base, mangledArgs)
}

// GenericInstance combines an already-mangled open type with its mangled
// type arguments, e.g. "List_1" + ["int32_t"] -> "List_1_of_int32_t".
func GenericInstance(openMangled string, typeArgs []string) string {
	if len(typeArgs) == 0 {
		return openMangled
	}
	return openMangled + "_of_" + strings.Join(typeArgs, "_")
}

func mangleOpenType(name string) string {
	r := strings.NewReplacer(
		"/", "_",
		"+", "_",
		".", "_",
		"`", "_arity",
		"&", "_Ref",
		"*", "_Ptr",
		"[]", "_Array",
		" ", "",
	)
	return r.Replace(name)
}

// splitGenericInstance splits "Open<Arg1,Arg2>" into its open name and its
// top-level type arguments, respecting nested angle brackets so that
// "Dictionary`2<K,List`1<V>>" yields two arguments, not three.
func splitGenericInstance(s string) (open string, args []string) {
	i := strings.IndexByte(s, '<')
	if i < 0 || !strings.HasSuffix(s, ">") {
		return s, nil
	}
	open = s[:i]
	inner := s[i+1 : len(s)-1]
	return open, splitTopLevelArgs(inner)
}

func splitTopLevelArgs(s string) []string {
	var out []string
	depth := 0
	start := 0
	for i, r := range s {
		switch r {
		case '<':
			depth++
		case '>':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	out = append(out, strings.TrimSpace(s[start:]))
	return out
}
