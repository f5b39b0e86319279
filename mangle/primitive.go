package mangle

// primitives maps an IL full name to its fixed-width C++ spelling. Every
// entry here is a value type at the IL level; Resolve appends a pointer
// suffix itself for reference types, so this table never does.
var primitives = map[string]string{
	"System.Void":    "void",
	"System.Boolean": "bool",
	"System.Byte":    "uint8_t",
	"System.SByte":   "int8_t",
	"System.Char":    "char16_t",
	"System.Int16":   "int16_t",
	"System.UInt16":  "uint16_t",
	"System.Int32":   "int32_t",
	"System.UInt32":  "uint32_t",
	"System.Int64":   "int64_t",
	"System.UInt64":  "uint64_t",
	"System.Single":  "float",
	"System.Double":  "double",
	"System.IntPtr":  "intptr_t",
	"System.UIntPtr": "uintptr_t",
}

// Primitive returns the fixed C++ type for an IL primitive name, if one is
// registered.
func Primitive(ilFullName string) (string, bool) {
	t, ok := primitives[ilFullName]
	return t, ok
}

// Resolve maps an IL type name to its C++ spelling: the primitive table for
// primitives, otherwise the mangled name, suffixed with "*" for reference
// types ("IL reference types map to Mangled*; value types to Mangled").
func Resolve(ilFullName string, isValueType bool) string {
	if prim, ok := primitives[ilFullName]; ok {
		return prim
	}
	mangled := Type(ilFullName)
	if isValueType {
		return mangled
	}
	return mangled + "*"
}
