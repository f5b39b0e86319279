package lower

import (
	"strings"

	"github.com/axiom-tools/cil2cpp/mangle"
)

// resolveCppType maps an IL type name to its C++ spelling using the
// conservative guess (guessIsValueType) when the value/reference-type
// distinction was not independently resolved.
func resolveCppType(ilName string) string {
	return mangle.Resolve(ilName, guessIsValueType(ilName))
}

// resolveCppTypeValue maps an IL type name to its C++ spelling when the
// value/reference-type distinction is already known precisely (from a
// resolver call such as ResolveTypeToken).
func resolveCppTypeValue(ilName string, isValueType bool) string {
	return mangle.Resolve(ilName, isValueType)
}

func mangleType(ilName string) string {
	return mangle.Type(ilName)
}

// resolveCppTypeRefAware mangles a signature fragment that may carry a
// trailing "&"/"*" (the BYREF/PTR suffixes the signature decoder appends to
// the underlying element's IL name), preserving that suffix literally so
// the result matches the ICall catalogue's own spelling for byref/pointer
// parameters (e.g. "int32_t&", "Object&").
func resolveCppTypeRefAware(ilName string) string {
	base, suffix := stripRefOrPtr(ilName)
	return resolveCppType(base) + suffix
}

func stripRefOrPtr(s string) (base string, suffix string) {
	for {
		switch {
		case strings.HasSuffix(s, "&"):
			s = s[:len(s)-1]
			suffix = suffix + "&"
		case strings.HasSuffix(s, "*"):
			s = s[:len(s)-1]
			suffix = suffix + "*"
		default:
			return s, suffix
		}
	}
}
