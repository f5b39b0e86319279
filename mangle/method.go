package mangle

// returnOverloadedOperators is the closed set of operator methods that
// require a return-type suffix, since C++ has no return-type overloading.
var returnOverloadedOperators = map[string]bool{
	"op_Implicit":        true,
	"op_Explicit":        true,
	"op_CheckedImplicit": true,
	"op_CheckedExplicit": true,
}

// Method composes a type's mangled name with an IL method name. Operators
// that overload purely on return type get that return type appended, since
// two C++ overloads differing only in return type would otherwise collide.
func Method(typeMangled, ilMethodName, returnTypeMangled string) string {
	base := typeMangled + "_" + sanitizeMethodName(ilMethodName)
	if returnOverloadedOperators[ilMethodName] {
		return base + "_to_" + returnTypeMangled
	}
	return base
}

func sanitizeMethodName(name string) string {
	switch name {
	case ".ctor":
		return "ctor"
	case ".cctor":
		return "cctor"
	default:
		return name
	}
}

// Disambiguate appends a suffix derived from the IL parameter type list to
// a mangled method name, the naming scheme the overload-disambiguation
// pass applies when two or more methods on a type share a mangled name.
// "*" and "&" in a parameter's mangled form become "Ptr"/"Ref" suffixes
// instead of punctuation C++ identifiers cannot carry.
func Disambiguate(name string, ilParams []string) string {
	if len(ilParams) == 0 {
		return name + "_void"
	}
	out := name
	for _, p := range ilParams {
		out += "_" + paramSuffix(p)
	}
	return out
}

func paramSuffix(ilParamType string) string {
	suffix := ""
	for {
		switch {
		case hasSuffix(ilParamType, "*"):
			ilParamType = ilParamType[:len(ilParamType)-1]
			suffix = "Ptr" + suffix
		case hasSuffix(ilParamType, "&"):
			ilParamType = ilParamType[:len(ilParamType)-1]
			suffix = "Ref" + suffix
		default:
			return Type(ilParamType) + suffix
		}
	}
}

func hasSuffix(s, suf string) bool {
	return len(s) >= len(suf) && s[len(s)-len(suf):] == suf
}
