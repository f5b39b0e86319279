package mangle

import "strings"

// SubstitutePlaceholders replaces generic parameter sentinel names (T,
// TKey, TValue, TResult, ...) with their bound IL type names inside a
// signature fragment, including occurrences inside "T[]", "TValue&", and
// nested "<...>" type-argument lists. Unbound placeholders are left as-is.
func SubstitutePlaceholders(ilTypeName string, bindings map[string]string) string {
	if len(bindings) == 0 {
		return ilTypeName
	}

	open, args := splitGenericInstance(ilTypeName)
	if len(args) > 0 {
		subArgs := make([]string, len(args))
		for i, a := range args {
			subArgs[i] = SubstitutePlaceholders(strings.TrimSpace(a), bindings)
		}
		return substituteToken(open, bindings) + "<" + strings.Join(subArgs, ",") + ">"
	}

	// Strip trailing "[]", "*", "&" markers, substitute the bare name, then
	// reattach the marker, so "T[]" and "TValue&" resolve correctly.
	for _, marker := range []string{"[]", "*", "&"} {
		if strings.HasSuffix(ilTypeName, marker) {
			base := ilTypeName[:len(ilTypeName)-len(marker)]
			return SubstitutePlaceholders(base, bindings) + marker
		}
	}

	return substituteToken(ilTypeName, bindings)
}

func substituteToken(name string, bindings map[string]string) string {
	if bound, ok := bindings[name]; ok {
		return bound
	}
	return name
}

// GenericContext resolves generic parameter placeholders against the type
// arguments of an enclosing generic instance and, where applicable, a
// generic method's own instantiation arguments.
type GenericContext struct {
	TypeArgs   []string // enclosing type's generic arguments, in position order
	MethodArgs []string // the generic method's own arguments, in position order
}

// Resolve looks up a placeholder by conventional name. Unresolved
// placeholders are returned unchanged, per "unresolved parameters remain as
// sentinel names and are substituted at specialization time".
func (c GenericContext) Resolve(placeholder string) string {
	switch placeholder {
	case "T", "TKey":
		if len(c.TypeArgs) > 0 {
			return c.TypeArgs[0]
		}
	case "TValue", "TResult":
		idx := 1
		if placeholder == "TValue" && len(c.TypeArgs) == 1 {
			idx = 0
		}
		if idx < len(c.TypeArgs) {
			return c.TypeArgs[idx]
		}
	}
	return placeholder
}
