// Package icall maps (declaring_type, method, parameter_count[,
// first_parameter_type]) lookups to the runtime-provided C++ function name
// backing them, for methods whose IL body is either absent (internal call)
// or not safely lowerable (JIT-intrinsic bodies like Math or Volatile).
package icall

import "strings"

// Entry is one static registration in the catalogue.
type Entry struct {
	Type   string // declaring type's IL full name
	Method string
	// ParamCount < 0 registers the entry in the wildcard tier (matches any
	// overload of Type.Method). ParamCount >= 0 with FirstParamType == ""
	// registers it in the exact tier. ParamCount >= 0 with FirstParamType
	// set registers it in the typed-overload tier.
	ParamCount     int
	FirstParamType string
	RuntimeFunc    string
}

type typedKey struct {
	Type, Method   string
	ParamCount     int
	FirstParamType string
}

type exactKey struct {
	Type, Method string
	ParamCount   int
}

type wildcardKey struct {
	Type, Method string
}

// Registry is the process-wide, read-only-after-init ICall lookup table.
// "Process-wide singleton populated once at startup; read-only after
// initialization and therefore safe to read concurrently."
type Registry struct {
	typed    map[typedKey]string
	exact    map[exactKey]string
	wildcard map[wildcardKey]string
}

// NewRegistry builds a Registry from the built-in catalogue.
func NewRegistry() *Registry {
	return newRegistryFromEntries(catalogue)
}

func newRegistryFromEntries(entries []Entry) *Registry {
	r := &Registry{
		typed:    make(map[typedKey]string),
		exact:    make(map[exactKey]string),
		wildcard: make(map[wildcardKey]string),
	}
	for _, e := range entries {
		switch {
		case e.ParamCount < 0:
			r.wildcard[wildcardKey{e.Type, e.Method}] = e.RuntimeFunc
		case e.FirstParamType != "":
			r.typed[typedKey{e.Type, e.Method, e.ParamCount, e.FirstParamType}] = e.RuntimeFunc
		default:
			r.exact[exactKey{e.Type, e.Method, e.ParamCount}] = e.RuntimeFunc
		}
	}
	return r
}

// CallSite describes the call the lowering engine is trying to resolve.
type CallSite struct {
	DeclaringType  string
	Method         string
	ParamCount     int
	FirstParamType string // "" if the method takes no parameters

	// IsGenericMethod and FirstGenericArgIsReference drive the
	// reference-typed CAS fallback for calls like
	// Interlocked.CompareExchange<T>(ref T, T, T).
	IsGenericMethod            bool
	FirstGenericArgIsReference bool
}

// Lookup resolves a call site to a runtime function name, trying the
// typed-overload, exact, and wildcard tiers in that order, then the
// closed-generic-instance fallback, then the reference-typed CAS fallback.
func (r *Registry) Lookup(c CallSite) (string, bool) {
	if fn, ok := r.lookupTiers(c); ok {
		return fn, true
	}

	if openType, isClosed := openGenericName(c.DeclaringType); isClosed {
		retry := c
		retry.DeclaringType = openType
		if fn, ok := r.lookupTiers(retry); ok {
			return fn, true
		}
	}

	if c.IsGenericMethod && c.FirstGenericArgIsReference {
		key := typedKey{c.DeclaringType, c.Method, c.ParamCount, "Object&"}
		if fn, ok := r.typed[key]; ok {
			return fn, true
		}
		if openType, isClosed := openGenericName(c.DeclaringType); isClosed {
			key := typedKey{openType, c.Method, c.ParamCount, "Object&"}
			if fn, ok := r.typed[key]; ok {
				return fn, true
			}
		}
	}

	return "", false
}

func (r *Registry) lookupTiers(c CallSite) (string, bool) {
	if c.FirstParamType != "" {
		if fn, ok := r.typed[typedKey{c.DeclaringType, c.Method, c.ParamCount, c.FirstParamType}]; ok {
			return fn, true
		}
	}
	if fn, ok := r.exact[exactKey{c.DeclaringType, c.Method, c.ParamCount}]; ok {
		return fn, true
	}
	if fn, ok := r.wildcard[wildcardKey{c.DeclaringType, c.Method}]; ok {
		return fn, true
	}
	return "", false
}

func openGenericName(declaringType string) (string, bool) {
	i := strings.IndexByte(declaringType, '<')
	if i < 0 {
		return declaringType, false
	}
	return declaringType[:i], true
}
