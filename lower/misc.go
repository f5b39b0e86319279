package lower

import (
	"strconv"

	"github.com/axiom-tools/cil2cpp/cil"
	"github.com/axiom-tools/cil2cpp/ir"
	"github.com/axiom-tools/cil2cpp/mangle"
)

// lowerLdcI4 emits an int32 constant. INT32_MIN has no direct positive-form
// literal in C++ (2147483648 overflows int32_t), so it is written as the
// equivalent subtraction the way the runtime's own headers do.
func lowerLdcI4(s *state, v int64) error {
	n := int32(v)
	if n == -2147483648 {
		s.pushExpr("(-2147483647 - 1)", "int32_t")
		return nil
	}
	s.pushExpr(strconv.FormatInt(int64(n), 10), "int32_t")
	return nil
}

// lowerLdcI8 emits an int64 constant, applying the same most-negative-value
// subtraction form as lowerLdcI4.
func lowerLdcI8(s *state, v int64) error {
	if v == -9223372036854775808 {
		s.pushExpr("(-9223372036854775807LL - 1)", "int64_t")
		return nil
	}
	s.pushExpr(strconv.FormatInt(v, 10)+"LL", "int64_t")
	return nil
}

func lowerLdstr(s *state, token uint32) error {
	str, err := s.resolver.ResolveStringToken(token)
	if err != nil {
		return err
	}
	id := s.module.InternString(str)
	s.pushExpr(id, "String*")
	return nil
}

// lowerBox lowers `box`: a reference-type operand is simply cast to
// Object*; a value-type operand is wrapped by the runtime's box<T> helper;
// Nullable<T> is special-cased into "null, or the boxed inner value"
// (§4.1).
func lowerBox(s *state, token uint32) error {
	name, isVT, err := s.resolver.ResolveTypeToken(token)
	if err != nil {
		return err
	}
	v := s.pop()
	result := s.freshTemp()

	switch {
	case isNullableType(name):
		s.emit(&ir.RawCpp{
			Code:       "Object* " + result + " = (" + v.Expr + ").has_value ? box<" + resolveCppTypeValue(nullableInnerType(name), true) + ">((" + v.Expr + ").value) : nullptr;",
			Result:     result,
			ResultType: "Object*",
		})
	case !isVT:
		s.emit(&ir.Assign{Target: result, Value: "(Object*)(" + v.Expr + ")"})
	default:
		typeInfo := s.module.RegisterTypeInfo(mangle.Type(name))
		s.emit(&ir.Box{Value: v.Expr, ValueType: resolveCppTypeValue(name, true), TypeInfoName: typeInfo, Result: result})
	}
	s.noteTemp(result, "Object*")
	s.pushExpr(result, "Object*")
	return nil
}

// lowerUnbox lowers `unbox` (address-of the boxed payload) and `unbox.any`
// (value copy for value types, castclass for reference types, Nullable<T>
// reconstruction for Nullable targets).
func lowerUnbox(s *state, token uint32, isAny bool) error {
	name, isVT, err := s.resolver.ResolveTypeToken(token)
	if err != nil {
		return err
	}
	v := s.pop()
	result := s.freshTemp()

	if !isAny {
		typ := resolveCppTypeValue(name, true) + "*"
		s.emit(&ir.Unbox{Object: v.Expr, ValueType: resolveCppTypeValue(name, true), Result: result, ResultType: typ})
		s.noteTemp(result, typ)
		s.pushExpr(result, typ)
		return nil
	}

	switch {
	case isNullableType(name):
		inner := resolveCppTypeValue(nullableInnerType(name), true)
		typ := resolveCppTypeValue(name, true)
		s.emit(&ir.RawCpp{
			Code:       typ + " " + result + " = (" + v.Expr + " == nullptr) ? " + typ + "{} : " + typ + "{true, *unbox<" + inner + ">(" + v.Expr + ")};",
			Result:     result,
			ResultType: typ,
		})
	case !isVT:
		s.emit(&ir.Cast{Src: v.Expr, TargetType: resolveCppTypeValue(name, false), Result: result})
	default:
		typ := resolveCppTypeValue(name, true)
		s.emit(&ir.Unbox{Object: v.Expr, ValueType: typ, Result: result, IsUnboxAny: true, ResultType: typ})
	}
	s.noteTemp(result, resolveCppTypeValue(name, isVT))
	s.pushExpr(result, resolveCppTypeValue(name, isVT))
	return nil
}

func lowerCastOrIsinst(s *state, token uint32, safe bool) error {
	name, isVT, err := s.resolver.ResolveTypeToken(token)
	if err != nil {
		return err
	}
	v := s.pop()
	result := s.freshTemp()
	targetType := resolveCppTypeValue(name, isVT)
	typeInfo := s.module.RegisterTypeInfo(mangle.Type(name))
	s.emit(&ir.Cast{Src: v.Expr, TargetType: targetType, Result: result, Safe: safe, TypeInfoName: typeInfo})
	s.noteTemp(result, targetType)
	s.pushExpr(result, targetType)
	return nil
}

// lowerLdtoken lowers `ldtoken`: a type token yields the type's TypeInfo*;
// any resolvable field token yields the address of that field's static
// symbol (Type_Field), whether or not the field is RVA-initialized; a token
// that resolves as neither soft-fails to a zero literal.
func lowerLdtoken(s *state, token uint32) error {
	if name, _, err := s.resolver.ResolveTypeToken(token); err == nil && name != "" {
		sym := s.module.RegisterTypeInfo(mangle.Type(name))
		s.pushExpr("&"+sym, "TypeInfo*")
		return nil
	}
	if f, err := s.resolver.ResolveFieldToken(token); err == nil {
		sym := mangle.Type(f.DeclaringType) + "_" + f.Name
		s.pushExpr("&"+sym, "RuntimeFieldHandle")
		return nil
	}
	s.pushExpr("0", "RuntimeFieldHandle")
	return nil
}

func lowerSizeof(s *state, token uint32) error {
	name, isVT, err := s.resolver.ResolveTypeToken(token)
	if err != nil {
		return err
	}
	s.pushExpr("(uint32_t)sizeof("+resolveCppTypeValue(name, isVT)+")", "uint32_t")
	return nil
}

// lowerTypedReference handles mkrefany/refanyval/refanytype. These are rare
// outside reflection-heavy BCL code; the runtime models a TypedReference as
// a plain {pointer, TypeInfo*} pair rather than a CLR-level intrinsic, so
// each opcode becomes a direct field access on that pair.
func lowerTypedReference(s *state, ins cil.Instruction, resolver Resolver) error {
	switch ins.Op {
	case cil.Mkrefany:
		name, isVT, err := resolver.ResolveTypeToken(ins.Token)
		if err != nil {
			return err
		}
		addr := s.pop()
		typeInfo := s.module.RegisterTypeInfo(mangle.Type(name))
		result := s.freshTemp()
		s.emit(&ir.RawCpp{
			Code:       "TypedReference " + result + " = { (void*)(" + addr.Expr + "), &" + typeInfo + " };",
			Result:     result,
			ResultType: "TypedReference",
		})
		_ = isVT
		s.noteTemp(result, "TypedReference")
		s.pushExpr(result, "TypedReference")
		return nil
	case cil.Refanyval:
		name, isVT, err := resolver.ResolveTypeToken(ins.Token)
		if err != nil {
			return err
		}
		v := s.pop()
		typ := resolveCppTypeValue(name, isVT) + "*"
		result := s.freshTemp()
		s.emit(&ir.Assign{Target: result, Value: "(" + typ + ")((" + v.Expr + ").ptr)"})
		s.noteTemp(result, typ)
		s.pushExpr(result, typ)
		return nil
	default: // Refanytype
		v := s.pop()
		result := s.freshTemp()
		s.emit(&ir.Assign{Target: result, Value: "((" + v.Expr + ").type)"})
		s.noteTemp(result, "TypeInfo*")
		s.pushExpr(result, "TypeInfo*")
		return nil
	}
}

func isNullableType(ilName string) bool {
	return startsWithNullable(ilName)
}

func startsWithNullable(ilName string) bool {
	const prefix = "System.Nullable`1<"
	if len(ilName) < len(prefix) {
		return false
	}
	return ilName[:len(prefix)] == prefix
}

func nullableInnerType(ilName string) string {
	const prefix = "System.Nullable`1<"
	if !startsWithNullable(ilName) || len(ilName) < len(prefix)+1 {
		return ilName
	}
	return ilName[len(prefix) : len(ilName)-1]
}
