package lower

import (
	"github.com/axiom-tools/cil2cpp/assembly"
	"github.com/axiom-tools/cil2cpp/ir"
	"github.com/axiom-tools/cil2cpp/mangle"
)

// NewMethodShell builds the IRMethod shell for a resolved MethodDef: its
// mangled name, parameter list (with an implicit `this` for instance
// methods), declared locals (resolved from the method body's local variable
// signature), and return type. Its body is filled in separately by
// LowerMethod, after every type's vtable exists (§3, "Lifecycles").
func NewMethodShell(declaringTypeMangled string, mi assembly.MethodInfo, retIL string, paramILTypes []string, resolver Resolver) (*ir.Method, error) {
	mangledMethod := mangle.Method(declaringTypeMangled, mi.Name, mangle.Resolve(retIL, false))

	m := ir.NewMethod(mi.Name, mangledMethod)
	m.IsStatic = mi.IsStatic
	m.IsVirtual = mi.IsVirtual
	m.IsAbstract = mi.IsAbstract
	m.ReturnType = mangle.Resolve(retIL, guessIsValueType(retIL))
	m.ILParams = paramILTypes

	if !mi.IsStatic {
		m.Params = append(m.Params, ir.Param{Name: "this", Type: declaringTypeMangled + "*"})
	}
	for i, ilType := range paramILTypes {
		name := "arg" + itoa(i)
		if i < len(mi.Params) && mi.Params[i].Name != "" {
			name = mi.Params[i].Name
		}
		m.Params = append(m.Params, ir.Param{Name: name, Type: mangle.Resolve(ilType, guessIsValueType(ilType))})
	}

	if mi.Body != nil && mi.Body.LocalVarSigTok != 0 {
		localTypes, err := resolver.ResolveLocalVarSig(mi.Body.LocalVarSigTok)
		if err != nil {
			return nil, err
		}
		for i, lt := range localTypes {
			m.Locals = append(m.Locals, ir.Local{
				Name: "loc" + itoa(i),
				Type: mangle.Resolve(lt, guessIsValueType(lt)),
			})
		}
	}

	return m, nil
}

// guessIsValueType resolves the value-type/reference-type distinction for a
// signature fragment that carries only an IL name (no declaring-metadata
// lookup available at this point): primitives are decided exactly, and
// everything else, arrays and pointers included, defaults to reference-type, the
// conservative fallback §7 prescribes for unresolved metadata.
func guessIsValueType(ilName string) bool {
	if _, isPrimitive := mangle.Primitive(ilName); isPrimitive {
		return true
	}
	return false
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
