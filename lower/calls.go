package lower

import (
	"strings"

	"github.com/axiom-tools/cil2cpp/icall"
	"github.com/axiom-tools/cil2cpp/ir"
	"github.com/axiom-tools/cil2cpp/mangle"
)

// lowerCall lowers `call`/`callvirt`. The ICall registry is consulted
// first (§4.3): a hit routes the call directly to the runtime-provided C++
// function instead of the callee's own (possibly absent) IL body.
func lowerCall(s *state, token uint32, isVirtual bool) error {
	rm, err := s.resolver.ResolveMethodToken(token)
	if err != nil {
		return err
	}

	if handled, err := interceptNullableCall(s, rm); handled || err != nil {
		return err
	}

	args := s.popArgs(rm.IsStatic, rm.ParamTypes)

	firstParamType := ""
	if len(rm.ParamTypes) > 0 {
		firstParamType = resolveCppTypeRefAware(rm.ParamTypes[0])
	}

	site := icall.CallSite{
		DeclaringType:  s.constrainedDeclaringType(rm.DeclaringType),
		Method:         rm.Name,
		ParamCount:     len(rm.ParamTypes),
		FirstParamType: firstParamType,
	}
	if fn, ok := s.icalls.Lookup(site); ok {
		s.emitCall(fn, args, rm.ReturnType, "")
		return nil
	}

	mangledType := mangle.Type(rm.DeclaringType)
	provisional := provisionalMethodName(mangledType, rm.Name, rm.ReturnType)
	disambigKey := mangledType + "|" + provisional + "|" + strings.Join(rm.ParamTypes, ",")
	s.emitCall(provisional, args, rm.ReturnType, disambigKey)
	return nil
}

// provisionalMethodName reproduces the exact mangled name NewMethodShell
// assigns a callee before disambiguation (mangle.Resolve's isValueType
// argument hardcoded false, matching the shell's own construction), so a
// call site's DeferredDisambigKey lines up with the key Disambiguate later
// rewrites.
func provisionalMethodName(mangledType, ilMethodName, returnIL string) string {
	return mangle.Method(mangledType, ilMethodName, mangle.Resolve(returnIL, false))
}

// constrainedDeclaringType substitutes the single-use constrained-prefix
// type for a pending `constrained.` dispatch, consuming the flag.
func (s *state) constrainedDeclaringType(declared string) string {
	if s.constrainedType == "" {
		return declared
	}
	t := s.constrainedType
	s.constrainedType = ""
	return t
}

func (s *state) popArgs(isStatic bool, paramTypes []string) []ir.CallArg {
	n := len(paramTypes)
	if !isStatic {
		n++
	}
	popped := s.popN(n)
	args := make([]ir.CallArg, n)
	offset := 0
	if !isStatic {
		args[0] = ir.CallArg{Expr: popped[0].Expr, Type: popped[0].Type}
		offset = 1
	}
	for i, pt := range paramTypes {
		args[offset+i] = ir.CallArg{Expr: popped[offset+i].Expr, Type: resolveCppType(pt)}
	}
	return args
}

func (s *state) emitCall(fn string, args []ir.CallArg, returnIL, disambigKey string) {
	if returnIL == "" || returnIL == "System.Void" {
		s.emit(&ir.Call{FunctionName: fn, Args: args, DeferredDisambigKey: disambigKey})
		return
	}
	resultType := resolveCppType(returnIL)
	result := s.freshTemp()
	s.emit(&ir.Call{FunctionName: fn, Args: args, Result: result, ResultType: resultType, DeferredDisambigKey: disambigKey})
	s.noteTemp(result, resultType)
	s.pushExpr(result, resultType)
}

// lowerNewobj lowers `newobj`: an object allocation followed by a
// constructor call, represented as one NewObj instruction.
func lowerNewobj(s *state, token uint32) error {
	rm, err := s.resolver.ResolveMethodToken(token)
	if err != nil {
		return err
	}

	if handled, err := interceptNullableNewobj(s, rm); handled || err != nil {
		return err
	}

	popped := s.popN(len(rm.ParamTypes))
	args := make([]ir.NewObjArg, len(popped))
	for i, p := range popped {
		args[i] = ir.NewObjArg{Expr: p.Expr, Type: resolveCppType(rm.ParamTypes[i])}
	}
	mangledType := mangle.Type(rm.DeclaringType)
	ctorName := mangle.Method(mangledType, ".ctor", "void")
	result := s.freshTemp()
	resultType := resolveCppType(rm.DeclaringType)
	s.emit(&ir.NewObj{TypeName: mangledType, CtorName: ctorName, Args: args, Result: result})
	s.noteTemp(result, resultType)
	s.pushExpr(result, resultType)
	return nil
}

// lowerCalli lowers `calli`: the callee is a function pointer already on
// the stack rather than a resolved method token; the token instead names
// the call's StandAloneSig (its parameter/return shape).
func lowerCalli(s *state, token uint32) error {
	paramTypes, err := s.resolver.ResolveLocalVarSig(token)
	if err != nil {
		// StandAloneSig method signatures (not local-var signatures) are not
		// separately decoded; fall back to an untyped indirect call.
		paramTypes = nil
	}
	fnPtr := s.pop()
	popped := s.popN(len(paramTypes))
	args := make([]ir.CallArg, len(popped))
	for i, p := range popped {
		args[i] = ir.CallArg{Expr: p.Expr, Type: p.Type}
	}
	result := s.freshTemp()
	s.emit(&ir.Call{FunctionName: "(*" + fnPtr.Expr + ")", Args: args, Result: result})
	s.noteTemp(result, "")
	s.pushExpr(result, "")
	return nil
}

// lowerJmp lowers `jmp`: a tail call forwarding the current method's own
// parameters to another method with an identical signature.
func lowerJmp(s *state, token uint32) error {
	rm, err := s.resolver.ResolveMethodToken(token)
	if err != nil {
		return err
	}
	args := make([]ir.CallArg, len(s.method.Params))
	for i, p := range s.method.Params {
		args[i] = ir.CallArg{Expr: p.Name, Type: p.Type}
	}
	mangledType := mangle.Type(rm.DeclaringType)
	fn := provisionalMethodName(mangledType, rm.Name, rm.ReturnType)
	disambigKey := mangledType + "|" + fn + "|" + strings.Join(rm.ParamTypes, ",")
	s.emitCall(fn, args, rm.ReturnType, disambigKey)
	s.emit(&ir.Return{})
	return nil
}

func lowerLdftn(s *state, token uint32) error {
	rm, err := s.resolver.ResolveMethodToken(token)
	if err != nil {
		return err
	}
	mangledType := mangle.Type(rm.DeclaringType)
	fn := provisionalMethodName(mangledType, rm.Name, rm.ReturnType)
	result := s.freshTemp()
	s.emit(&ir.LoadFunctionPointer{MethodName: fn, Result: result})
	s.noteTemp(result, "void*")
	s.pushExpr(result, "void*")
	return nil
}

func lowerLdvirtftn(s *state, token uint32) error {
	rm, err := s.resolver.ResolveMethodToken(token)
	if err != nil {
		return err
	}
	obj := s.pop()
	mangledType := mangle.Type(rm.DeclaringType)
	baseName := provisionalMethodName(mangledType, rm.Name, rm.ReturnType)
	slot := -1
	if t, ok := s.module.FindType(rm.DeclaringType); ok {
		if e, found := t.ResolveVtableSlot(baseName, len(rm.ParamTypes)); found {
			slot = e.Slot
		}
	}
	result := s.freshTemp()
	s.emit(&ir.LoadFunctionPointer{MethodName: baseName, Result: result, IsVirtual: true, Object: obj.Expr, VtableSlot: slot})
	s.noteTemp(result, "void*")
	s.pushExpr(result, "void*")
	return nil
}
