package lower

import (
	"github.com/axiom-tools/cil2cpp/cil"
	"github.com/axiom-tools/cil2cpp/ir"
)

type fieldOp int

const (
	fieldLoad fieldOp = iota
	fieldStore
)

// consumeVolatile reports and clears the pending `volatile.` prefix flag,
// the single-use signal the driver contract names (§4.1).
func (s *state) consumeVolatile() bool {
	v := s.pendingVolatile
	s.pendingVolatile = false
	return v
}

// emitVolatileFence inserts a sequentially consistent fence: before a
// volatile load, after a volatile store (§4.1).
func (s *state) emitVolatileFence() {
	s.emit(&ir.RawCpp{Code: "std::atomic_thread_fence(std::memory_order_seq_cst);"})
}

func lowerFieldAccess(s *state, token uint32, op fieldOp, addressOf bool) error {
	f, err := s.resolver.ResolveFieldToken(token)
	if err != nil {
		return err
	}
	fieldType := fieldCppType(f.Type)
	volatile := s.consumeVolatile()

	switch op {
	case fieldStore:
		v := s.pop()
		obj := s.pop()
		s.emit(&ir.FieldAccess{Object: obj.Expr, Field: f.Name, IsStore: true, StoreValue: v.Expr})
		if volatile {
			s.emitVolatileFence()
		}
		return nil
	default:
		obj := s.pop()
		result := s.freshTemp()
		resultType := fieldType
		if addressOf {
			resultType = fieldType + "*"
		}
		if volatile {
			s.emitVolatileFence()
		}
		s.emit(&ir.FieldAccess{Object: obj.Expr, Field: f.Name, IsValueAccess: addressOf, Result: result, ResultType: resultType})
		s.noteTemp(result, resultType)
		s.pushExpr(result, resultType)
		return nil
	}
}

func lowerStaticFieldAccess(s *state, token uint32, op fieldOp, addressOf bool) error {
	f, err := s.resolver.ResolveFieldToken(token)
	if err != nil {
		return err
	}
	fieldType := fieldCppType(f.Type)
	qualified := mangleType(f.DeclaringType) + "_" + f.Name
	volatile := s.consumeVolatile()

	switch op {
	case fieldStore:
		v := s.pop()
		s.emit(&ir.StaticFieldAccess{Field: qualified, IsStore: true, StoreValue: v.Expr})
		if volatile {
			s.emitVolatileFence()
		}
		return nil
	default:
		result := s.freshTemp()
		resultType := fieldType
		if addressOf {
			resultType = fieldType + "*"
		}
		if volatile {
			s.emitVolatileFence()
		}
		s.emit(&ir.StaticFieldAccess{Field: qualified, IsValueAccess: addressOf, Result: result, ResultType: resultType})
		s.noteTemp(result, resultType)
		s.pushExpr(result, resultType)
		return nil
	}
}

func fieldCppType(ilType string) string {
	if ilType == "" {
		return "Object*"
	}
	return resolveCppType(ilType)
}

var ldindResultType = map[cil.Opcode]string{
	cil.LdindI1: "int8_t", cil.LdindU1: "uint8_t",
	cil.LdindI2: "int16_t", cil.LdindU2: "uint16_t",
	cil.LdindI4: "int32_t", cil.LdindU4: "uint32_t",
	cil.LdindI8: "int64_t", cil.LdindI: "intptr_t",
	cil.LdindR4: "float", cil.LdindR8: "double",
	cil.LdindRef: "Object*",
}

func lowerLdind(s *state, op cil.Opcode) error {
	addr := s.pop()
	volatile := s.consumeVolatile()
	typ := ldindResultType[op]
	result := s.freshTemp()
	if volatile {
		s.emitVolatileFence()
	}
	s.emit(&ir.Assign{Target: result, Value: "*(" + typ + "*)(" + addr.Expr + ")"})
	s.noteTemp(result, typ)
	s.pushExpr(result, typ)
	return nil
}

var stindValueType = map[cil.Opcode]string{
	cil.StindRef: "Object*", cil.StindI1: "int8_t", cil.StindI2: "int16_t",
	cil.StindI4: "int32_t", cil.StindI8: "int64_t", cil.StindR4: "float",
	cil.StindR8: "double", cil.StindI: "intptr_t",
}

func lowerStind(s *state, op cil.Opcode) error {
	v := s.pop()
	addr := s.pop()
	volatile := s.consumeVolatile()
	typ := stindValueType[op]
	s.emit(&ir.RawCpp{Code: "*(" + typ + "*)(" + addr.Expr + ") = " + v.Expr + ";"})
	if volatile {
		s.emitVolatileFence()
	}
	return nil
}

func lowerObjOps(s *state, ins cil.Instruction) error {
	switch ins.Op {
	case cil.Cpobj:
		name, isVT, err := s.resolver.ResolveTypeToken(ins.Token)
		if err != nil {
			return err
		}
		typ := resolveCppTypeValue(name, isVT)
		src := s.pop()
		dst := s.pop()
		s.emit(&ir.RawCpp{Code: "*(" + typ + "*)(" + dst.Expr + ") = *(" + typ + "*)(" + src.Expr + ");"})
		return nil
	case cil.Stobj:
		name, isVT, err := s.resolver.ResolveTypeToken(ins.Token)
		if err != nil {
			return err
		}
		typ := resolveCppTypeValue(name, isVT)
		v := s.pop()
		addr := s.pop()
		s.emit(&ir.RawCpp{Code: "*(" + typ + "*)(" + addr.Expr + ") = " + v.Expr + ";"})
		return nil
	default: // Ldobj
		name, isVT, err := s.resolver.ResolveTypeToken(ins.Token)
		if err != nil {
			return err
		}
		typ := resolveCppTypeValue(name, isVT)
		addr := s.pop()
		result := s.freshTemp()
		s.emit(&ir.Assign{Target: result, Value: "*(" + typ + "*)(" + addr.Expr + ")"})
		s.noteTemp(result, typ)
		s.pushExpr(result, typ)
		return nil
	}
}

// lowerInitobj zero-fills a value-type address or stores null to a
// reference-type address, per §4.1's initobj rule.
func lowerInitobj(s *state, token uint32) error {
	name, isVT, err := s.resolver.ResolveTypeToken(token)
	if err != nil {
		return err
	}
	addr := s.pop()
	s.emit(&ir.InitObj{Address: addr.Expr, TypeName: mangleType(name), IsReferenceType: !isVT})
	return nil
}

func lowerCpblk(s *state) error {
	n := s.pop()
	src := s.pop()
	dst := s.pop()
	volatile := s.consumeVolatile()
	if volatile {
		s.emitVolatileFence()
	}
	s.emit(&ir.RawCpp{Code: "memmove((void*)(" + dst.Expr + "), (void*)(" + src.Expr + "), (size_t)(" + n.Expr + "));"})
	if volatile {
		s.emitVolatileFence()
	}
	return nil
}

func lowerInitblk(s *state) error {
	n := s.pop()
	val := s.pop()
	addr := s.pop()
	volatile := s.consumeVolatile()
	if volatile {
		s.emitVolatileFence()
	}
	s.emit(&ir.RawCpp{Code: "memset((void*)(" + addr.Expr + "), (int)(" + val.Expr + "), (size_t)(" + n.Expr + "));"})
	if volatile {
		s.emitVolatileFence()
	}
	return nil
}

func lowerLocalloc(s *state) error {
	n := s.pop()
	result := s.freshTemp()
	s.emit(&ir.RawCpp{Code: "void* " + result + " = alloca((size_t)(" + n.Expr + "));", Result: result, ResultType: "void*"})
	s.noteTemp(result, "void*")
	s.pushExpr(result, "void*")
	return nil
}

func lowerNewarr(s *state, token uint32) error {
	name, isVT, err := s.resolver.ResolveTypeToken(token)
	if err != nil {
		return err
	}
	elemType := resolveCppTypeValue(name, isVT)
	n := s.pop()
	result := s.freshTemp()
	s.emit(&ir.Call{FunctionName: "rt_new_array", Args: []ir.CallArg{{Expr: n.Expr, Type: "int32_t"}}, Result: result, ResultType: elemType + "*"})
	s.noteTemp(result, elemType+"*")
	s.pushExpr(result, elemType+"*")
	return nil
}

func lowerLdlen(s *state) error {
	arr := s.pop()
	result := s.freshTemp()
	s.emit(&ir.Assign{Target: result, Value: "rt_array_length(" + arr.Expr + ")"})
	s.noteTemp(result, "int32_t")
	s.pushExpr(result, "int32_t")
	return nil
}

func lowerLdelem(s *state, token uint32, addressOf bool, fixedType string) error {
	elemType := fixedType
	if elemType == "" {
		name, isVT, err := s.resolver.ResolveTypeToken(token)
		if err != nil {
			return err
		}
		elemType = resolveCppTypeValue(name, isVT)
	}
	index := s.pop()
	arr := s.pop()
	result := s.freshTemp()
	resultType := elemType
	if addressOf {
		resultType = elemType + "*"
	}
	s.emit(&ir.ArrayAccess{Array: arr.Expr, Index: index.Expr, ElementType: elemType, Result: result})
	s.noteTemp(result, resultType)
	s.pushExpr(result, resultType)
	return nil
}

func lowerStelem(s *state, token uint32, fixedType string) error {
	elemType := fixedType
	if elemType == "" {
		name, isVT, err := s.resolver.ResolveTypeToken(token)
		if err != nil {
			return err
		}
		elemType = resolveCppTypeValue(name, isVT)
	}
	v := s.pop()
	index := s.pop()
	arr := s.pop()
	s.emit(&ir.ArrayAccess{Array: arr.Expr, Index: index.Expr, ElementType: elemType, IsStore: true, StoreValue: v.Expr})
	return nil
}
