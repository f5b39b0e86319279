package lower

import "github.com/axiom-tools/cil2cpp/assembly"

// Resolver is the metadata-reader contract the lowering engine drains
// tokens through (§6, "Inputs"): it turns the 4-byte tokens embedded in a
// decoded instruction stream into the type/method/field/string references
// the driver needs to build typed expressions. assembly.File satisfies this
// interface directly.
type Resolver interface {
	ResolveTypeToken(token uint32) (ilName string, isValueType bool, err error)
	ResolveMethodToken(token uint32) (assembly.ResolvedMethod, error)
	ResolveFieldToken(token uint32) (assembly.ResolvedField, error)
	ResolveStringToken(token uint32) (string, error)
	ResolveLocalVarSig(token uint32) ([]string, error)
}
