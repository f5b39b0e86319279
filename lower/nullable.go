package lower

import (
	"github.com/axiom-tools/cil2cpp/assembly"
	"github.com/axiom-tools/cil2cpp/ir"
)

// Nullable<T> has no IL body the driver can usefully lower (its methods
// are JIT-intrinsic over a {bool has_value; T value;} struct), so its
// constructor and the handful of accessor methods are intercepted here
// rather than routed through the general call/newobj path (§4.5).

// interceptNullableNewobj handles `newobj` on Nullable<T>: the
// zero-argument default constructor zero-fills the struct; the one-argument
// constructor sets has_value=true with the given value.
func interceptNullableNewobj(s *state, rm assembly.ResolvedMethod) (bool, error) {
	if !isNullableType(rm.DeclaringType) {
		return false, nil
	}
	typ := resolveCppTypeValue(rm.DeclaringType, true)
	result := s.freshTemp()
	if len(rm.ParamTypes) == 0 {
		s.emit(&ir.Assign{Target: result, Value: typ + "{}"})
	} else {
		v := s.pop()
		s.emit(&ir.Assign{Target: result, Value: typ + "{true, " + v.Expr + "}"})
	}
	s.noteTemp(result, typ)
	s.pushExpr(result, typ)
	return true, nil
}

// interceptNullableCall handles the Nullable<T> accessor surface. `this`
// is always dereferenced with `->` (never `.`), and an address-of `this`
// expression is parenthesized first since its operand may itself be a
// compound expression.
func interceptNullableCall(s *state, rm assembly.ResolvedMethod) (bool, error) {
	if !isNullableType(rm.DeclaringType) {
		return false, nil
	}

	switch rm.Name {
	case "get_HasValue":
		this := s.pop()
		result := s.freshTemp()
		s.emit(&ir.Assign{Target: result, Value: derefThis(this.Expr) + "has_value"})
		s.noteTemp(result, "bool")
		s.pushExpr(result, "bool")
		return true, nil

	case "get_Value":
		this := s.pop()
		inner := resolveCppTypeValue(nullableInnerType(rm.DeclaringType), true)
		result := s.freshTemp()
		s.emit(&ir.RawCpp{
			Code:       inner + " " + result + " = " + derefThis(this.Expr) + "has_value ? " + derefThis(this.Expr) + "value : throw_invalid_operation(\"Nullable object must have a value.\");",
			Result:     result,
			ResultType: inner,
		})
		s.noteTemp(result, inner)
		s.pushExpr(result, inner)
		return true, nil

	case "GetValueOrDefault":
		this := s.pop()
		inner := resolveCppTypeValue(nullableInnerType(rm.DeclaringType), true)
		result := s.freshTemp()
		if len(rm.ParamTypes) == 0 {
			s.emit(&ir.Assign{Target: result, Value: derefThis(this.Expr) + "has_value ? " + derefThis(this.Expr) + "value : " + inner + "{}"})
		} else {
			def := s.pop()
			s.emit(&ir.Assign{Target: result, Value: derefThis(this.Expr) + "has_value ? " + derefThis(this.Expr) + "value : " + def.Expr})
		}
		s.noteTemp(result, inner)
		s.pushExpr(result, inner)
		return true, nil

	default:
		return false, nil
	}
}

// derefThis renders a `this`-style expression as a pointer dereference
// prefix ("x->"), parenthesizing it first when it is itself an address-of
// expression.
func derefThis(expr string) string {
	if len(expr) > 0 && expr[0] == '&' {
		return "(" + expr + ")->"
	}
	return expr + "->"
}
