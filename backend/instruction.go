package backend

import (
	"fmt"
	"strings"

	"github.com/axiom-tools/cil2cpp/ir"
)

// renderInstruction renders one ir.Instruction as a single line of C++,
// via a type switch over every variant from the data model (spec.md §3).
// A Call instruction whose DeferredDisambigKey is still non-empty here
// means the fix-up pass never resolved it; that is a hard failure per
// spec.md §7 ("unresolved disambiguation after fix-up").
func renderInstruction(instr ir.Instruction) (string, error) {
	switch in := instr.(type) {
	case *ir.Assign:
		return fmt.Sprintf("%s = %s;", in.Target, in.Value), nil

	case *ir.Label:
		return in.Name + ":;", nil

	case *ir.Branch:
		return fmt.Sprintf("goto %s;", in.Target), nil

	case *ir.ConditionalBranch:
		return fmt.Sprintf("if (%s) goto %s;", in.Cond, in.TrueLabel), nil

	case *ir.Switch:
		var sb strings.Builder
		fmt.Fprintf(&sb, "switch (%s) { ", in.Value)
		for _, c := range in.Cases {
			fmt.Fprintf(&sb, "case %d: goto %s; ", c.Value, c.Label)
		}
		sb.WriteString("}")
		return sb.String(), nil

	case *ir.Return:
		if in.Value == "" {
			return "return;", nil
		}
		return fmt.Sprintf("return %s;", in.Value), nil

	case *ir.Throw:
		return fmt.Sprintf("Runtime_Throw(%s);", in.Expr), nil

	case *ir.Rethrow:
		return "Runtime_Rethrow();", nil

	case *ir.TryBegin:
		return "/* try */ {", nil

	case *ir.CatchBegin:
		if in.ExcType == "" {
			return "} /* catch */ {", nil
		}
		return fmt.Sprintf("} /* catch %s */ {", in.ExcType), nil

	case *ir.FilterBegin:
		return "/* filter */ {", nil

	case *ir.FilterHandlerBegin:
		return "} /* filter handler */ {", nil

	case *ir.FinallyBegin:
		return "/* finally */ {", nil

	case *ir.TryEnd:
		return "}", nil

	case *ir.EndFilter:
		return fmt.Sprintf("/* endfilter */ %s", in.Result), nil

	case *ir.BinaryOp:
		decl := ""
		if in.ResultType != "" {
			decl = in.ResultType + " "
		}
		return fmt.Sprintf("%s%s = %s %s %s;", decl, in.Result, in.A, in.Op, in.B), nil

	case *ir.UnaryOp:
		decl := ""
		if in.ResultType != "" {
			decl = in.ResultType + " "
		}
		return fmt.Sprintf("%s%s = %s%s;", decl, in.Result, in.Op, in.X), nil

	case *ir.Conversion:
		return fmt.Sprintf("%s %s = (%s)%s;", in.TargetType, in.Result, in.TargetType, in.Src), nil

	case *ir.Cast:
		fn := "Runtime_CastClass"
		if in.Safe {
			fn = "Runtime_IsInst"
		}
		extra := ""
		if in.TypeInfoName != "" {
			extra = ", &" + in.TypeInfoName
		}
		return fmt.Sprintf("%s %s = (%s)%s(%s%s);", in.TargetType, in.Result, in.TargetType, fn, in.Src, extra), nil

	case *ir.FieldAccess:
		return renderFieldAccess(in), nil

	case *ir.StaticFieldAccess:
		return renderStaticFieldAccess(in), nil

	case *ir.ArrayAccess:
		return renderArrayAccess(in), nil

	case *ir.Box:
		fn := "Runtime_Box"
		if in.TypeInfoName != "" {
			return fmt.Sprintf("Object* %s = %s(&%s, %s);", in.Result, fn, in.TypeInfoName, in.Value), nil
		}
		return fmt.Sprintf("Object* %s = %s(%s);", in.Result, fn, in.Value), nil

	case *ir.Unbox:
		if in.IsUnboxAny {
			rt := in.ResultType
			if rt == "" {
				rt = "auto"
			}
			return fmt.Sprintf("%s %s = Runtime_UnboxAny<%s>(%s);", rt, in.Result, in.ValueType, in.Object), nil
		}
		return fmt.Sprintf("void* %s = Runtime_Unbox(%s, &%s_TypeInfo);", in.Result, in.Object, in.ValueType), nil

	case *ir.InitObj:
		if in.IsReferenceType {
			return fmt.Sprintf("%s = nullptr;", in.Address), nil
		}
		return fmt.Sprintf("memset(%s, 0, sizeof(%s));", in.Address, in.TypeName), nil

	case *ir.NewObj:
		return renderNewObj(in), nil

	case *ir.Call:
		if in.DeferredDisambigKey != "" {
			return "", fmt.Errorf("%w: %s", ErrUnresolvedDisambiguation, in.DeferredDisambigKey)
		}
		return renderCall(in), nil

	case *ir.LoadFunctionPointer:
		if in.IsVirtual {
			return fmt.Sprintf("void* %s = Runtime_VtableLookup(%s, %d);", in.Result, in.Object, in.VtableSlot), nil
		}
		return fmt.Sprintf("void* %s = (void*)&%s;", in.Result, in.MethodName), nil

	case *ir.DelegateCreate:
		return fmt.Sprintf("%s* %s = Delegate_Create<%s>(%s, (void*)&%s);", in.DelegateType, in.Result, in.DelegateType, in.Target, in.MethodName), nil

	case *ir.DelegateInvoke:
		return fmt.Sprintf("auto %s = %s->Invoke(%s);", in.Result, in.Delegate, joinArgs(in.Args)), nil

	case *ir.DeclareLocal:
		return fmt.Sprintf("%s %s;", in.Type, in.Name), nil

	case *ir.Comment:
		return "// " + in.Text, nil

	case *ir.RawCpp:
		if in.Result == "" {
			return in.Code, nil
		}
		return fmt.Sprintf("%s %s = %s;", in.ResultType, in.Result, in.Code), nil

	default:
		return "", fmt.Errorf("backend: unhandled instruction type %T", instr)
	}
}

func joinArgs(args []ir.CallArg) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.Expr
	}
	return strings.Join(parts, ", ")
}

func renderCall(in *ir.Call) string {
	call := fmt.Sprintf("%s(%s)", in.FunctionName, joinArgs(in.Args))
	if in.Result == "" {
		return call + ";"
	}
	decl := ""
	if in.ResultType != "" {
		decl = in.ResultType + " "
	}
	return fmt.Sprintf("%s%s = %s;", decl, in.Result, call)
}

func renderNewObj(in *ir.NewObj) string {
	args := make([]string, len(in.Args))
	for i, a := range in.Args {
		args[i] = a.Expr
	}
	ctorArgs := in.Result
	if len(args) > 0 {
		ctorArgs += ", " + strings.Join(args, ", ")
	}
	return fmt.Sprintf("%s* %s = Runtime_New<%s>(); %s(%s);",
		in.TypeName, in.Result, in.TypeName, in.CtorName, ctorArgs)
}

func renderFieldAccess(in *ir.FieldAccess) string {
	obj := in.Object
	if in.CastToType != "" {
		obj = fmt.Sprintf("((%s*)%s)", in.CastToType, obj)
	}
	ref := fmt.Sprintf("%s->%s", obj, in.Field)
	if in.IsValueAccess {
		return fmt.Sprintf("auto %s = &%s;", in.Result, ref)
	}
	if in.IsStore {
		return fmt.Sprintf("%s = %s;", ref, in.StoreValue)
	}
	decl := ""
	if in.ResultType != "" {
		decl = in.ResultType + " "
	}
	return fmt.Sprintf("%s%s = %s;", decl, in.Result, ref)
}

func renderStaticFieldAccess(in *ir.StaticFieldAccess) string {
	ref := in.Field
	if in.CastToType != "" {
		ref = fmt.Sprintf("(%s)%s", in.CastToType, ref)
	}
	if in.IsValueAccess {
		return fmt.Sprintf("auto %s = &%s;", in.Result, in.Field)
	}
	if in.IsStore {
		return fmt.Sprintf("%s = %s;", in.Field, in.StoreValue)
	}
	decl := ""
	if in.ResultType != "" {
		decl = in.ResultType + " "
	}
	return fmt.Sprintf("%s%s = %s;", decl, in.Result, ref)
}

func renderArrayAccess(in *ir.ArrayAccess) string {
	elem := fmt.Sprintf("Array_At<%s>(%s, %s)", in.ElementType, in.Array, in.Index)
	if in.IsStore {
		return fmt.Sprintf("%s = %s;", elem, in.StoreValue)
	}
	return fmt.Sprintf("%s %s = %s;", in.ElementType, in.Result, elem)
}
