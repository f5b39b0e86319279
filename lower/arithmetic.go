package lower

import (
	"strconv"

	"github.com/axiom-tools/cil2cpp/ir"
)

var binaryOpSymbol = map[string]string{
	"add": "+", "sub": "-", "mul": "*", "div": "/", "div.un": "/",
	"rem": "%", "rem.un": "%", "and": "&", "or": "|", "xor": "^",
	"shl": "<<", "shr": ">>", "shr.un": ">>",
}

func lowerBinaryOp(s *state, op opNameable) error {
	b, a := s.pop(), s.pop()
	name := op.Name()

	// Pointer arithmetic is always a byte-offset computation against a
	// uint8_t* view of the pointer operand (§4.1).
	if (name == "add" || name == "sub") && (a.IsPointer() || b.IsPointer()) {
		return lowerPointerArith(s, name, a, b)
	}

	sym := binaryOpSymbol[name]
	result := s.freshTemp()
	resultType := a.Type
	if resultType == "" {
		resultType = b.Type
	}
	s.emit(&ir.BinaryOp{Op: sym, A: a.Expr, B: b.Expr, Result: result, ResultType: resultType})
	s.noteTemp(result, resultType)
	s.pushExpr(result, resultType)
	return nil
}

func lowerPointerArith(s *state, name string, a, b ir.StackEntry) error {
	ptr, offset := a, b
	if !a.IsPointer() {
		ptr, offset = b, a
	}
	result := s.freshTemp()
	sym := "+"
	if name == "sub" {
		sym = "-"
	}
	expr := "(uint8_t*)(" + ptr.Expr + ") " + sym + " (" + offset.Expr + ")"
	s.emit(&ir.Assign{Target: result, Value: "(" + ptr.Type + ")(" + expr + ")"})
	s.noteTemp(result, ptr.Type)
	s.pushExpr(result, ptr.Type)
	return nil
}

var checkedRuntimeFunc = map[string]string{
	"add.ovf": "checked_add", "add.ovf.un": "checked_add",
	"sub.ovf": "checked_sub", "sub.ovf.un": "checked_sub",
	"mul.ovf": "checked_mul", "mul.ovf.un": "checked_mul",
}

func lowerCheckedOp(s *state, op opNameable) error {
	b, a := s.pop(), s.pop()
	fn := checkedRuntimeFunc[op.Name()]
	result := s.freshTemp()
	resultType := a.Type
	if resultType == "" {
		resultType = b.Type
	}
	s.emit(&ir.Call{FunctionName: fn, Args: []ir.CallArg{{Expr: a.Expr, Type: a.Type}, {Expr: b.Expr, Type: b.Type}}, Result: result, ResultType: resultType})
	s.noteTemp(result, resultType)
	s.pushExpr(result, resultType)
	return nil
}

func lowerUnaryOp(s *state, op opNameable) error {
	x := s.pop()
	sym := "-"
	if op.Name() == "not" {
		sym = "~"
	}
	result := s.freshTemp()
	s.emit(&ir.UnaryOp{Op: sym, X: x.Expr, Result: result, ResultType: x.Type})
	s.noteTemp(result, x.Type)
	s.pushExpr(result, x.Type)
	return nil
}

var compareOpSymbol = map[string]string{
	"ceq": "==", "cgt": ">", "cgt.un": ">", "clt": "<", "clt.un": "<",
}

func lowerCompare(s *state, op opNameable) error {
	b, a := s.pop(), s.pop()
	sym := compareOpSymbol[op.Name()]
	result := s.freshTemp()
	s.emit(&ir.BinaryOp{Op: sym, A: a.Expr, B: b.Expr, Result: result, ResultType: "bool"})
	s.noteTemp(result, "bool")
	s.pushExpr(result, "bool")
	return nil
}

// opNameable is satisfied by cil.Opcode; declared here to avoid an import
// cycle note in file headers (cil.Opcode.Name already exists).
type opNameable interface{ Name() string }

var unsignedCounterpart = map[string]string{
	"int8_t": "uint8_t", "int16_t": "uint16_t", "int32_t": "uint32_t",
	"int64_t": "uint64_t", "intptr_t": "uintptr_t",
	"uint8_t": "uint8_t", "uint16_t": "uint16_t", "uint32_t": "uint32_t",
	"uint64_t": "uint64_t", "uintptr_t": "uintptr_t",
}

// toUnsignedType maps a tracked C++ integer type name to its unsigned
// counterpart of the same width, for reinterpreting a signed bit pattern
// without sign extension.
func toUnsignedType(cppType string) string {
	return unsignedCounterpart[cppType]
}

var convTargetType = map[string]string{
	"conv.i1": "int8_t", "conv.i2": "int16_t", "conv.i4": "int32_t", "conv.i8": "int64_t",
	"conv.u1": "uint8_t", "conv.u2": "uint16_t", "conv.u4": "uint32_t", "conv.u8": "uint64_t",
	"conv.r4": "float", "conv.r8": "double",
	"conv.i": "intptr_t", "conv.u": "uintptr_t",
	"conv.r.un": "double",
}

func lowerConv(s *state, op opNameable) error {
	v := s.pop()
	name := op.Name()

	// conv.u / conv.i are no-ops on pointer operands (§4.1).
	if (name == "conv.u" || name == "conv.i") && v.IsPointer() {
		s.push(v)
		return nil
	}

	target := convTargetType[name]
	if name == "conv.r.un" {
		// Reinterpret as unsigned of the source's own width before widening
		// to double: the signed C++ type tracked on the stack entry casts
		// the sign bit into the value, not just the bit pattern.
		srcWidth := toUnsignedType(v.Type)
		if srcWidth == "" {
			srcWidth = "uint32_t"
		}
		result := s.freshTemp()
		s.emit(&ir.Assign{Target: result, Value: "(double)(" + srcWidth + ")(" + v.Expr + ")"})
		s.noteTemp(result, "double")
		s.pushExpr(result, "double")
		return nil
	}

	result := s.freshTemp()
	s.emit(&ir.Conversion{Src: v.Expr, TargetType: target, Result: result})
	s.noteTemp(result, target)
	s.pushExpr(result, target)
	return nil
}

var convOvfTargetType = map[string]string{
	"conv.ovf.i1": "int8_t", "conv.ovf.u1": "uint8_t",
	"conv.ovf.i2": "int16_t", "conv.ovf.u2": "uint16_t",
	"conv.ovf.i4": "int32_t", "conv.ovf.u4": "uint32_t",
	"conv.ovf.i8": "int64_t", "conv.ovf.u8": "uint64_t",
	"conv.ovf.i": "intptr_t", "conv.ovf.u": "uintptr_t",
	"conv.ovf.i1.un": "int8_t", "conv.ovf.i2.un": "int16_t", "conv.ovf.i4.un": "int32_t", "conv.ovf.i8.un": "int64_t",
	"conv.ovf.u1.un": "uint8_t", "conv.ovf.u2.un": "uint16_t", "conv.ovf.u4.un": "uint32_t", "conv.ovf.u8.un": "uint64_t",
	"conv.ovf.i.un": "intptr_t", "conv.ovf.u.un": "uintptr_t",
}

func lowerConvOvf(s *state, op opNameable) error {
	v := s.pop()
	target := convOvfTargetType[op.Name()]
	result := s.freshTemp()
	s.emit(&ir.Call{FunctionName: "checked_conv", Args: []ir.CallArg{{Expr: v.Expr, Type: v.Type}}, Result: result, ResultType: target})
	s.noteTemp(result, target)
	s.pushExpr(result, target)
	return nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
