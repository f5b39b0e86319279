// Package cil decodes the CIL (ECMA-335) instruction stream stored in a
// compiled method body into an ordered list of typed Instruction values,
// the input the lowering engine (package lower) drains one method at a
// time.
package cil

// OperandKind classifies how many bytes follow an opcode and how to
// interpret them.
type OperandKind int

const (
	OperandNone OperandKind = iota
	OperandInt8
	OperandUint8
	OperandInt16
	OperandInt32
	OperandInt64
	OperandFloat32
	OperandFloat64
	OperandToken      // 4-byte metadata token (type/field/method/string/sig)
	OperandVarIdx8    // 1-byte local/arg index
	OperandVarIdx16   // 2-byte local/arg index
	OperandBranchI8   // 1-byte signed relative branch
	OperandBranchI32  // 4-byte signed relative branch
	OperandSwitch     // uint32 count + that many 4-byte relative targets
)

// Opcode is a single CIL instruction, single-byte or 0xFE-prefixed
// two-byte.
type Opcode int

// The full single-byte and 0xFE-prefixed opcode set used by the lowering
// engine. The two groups share one Opcode numbering; Decode tells them
// apart by lead byte (0xFE selects the prefixed set) before mapping into
// this space, so values here never need to reflect the wire encoding.
const (
	Nop Opcode = iota
	Break
	Ldarg0
	Ldarg1
	Ldarg2
	Ldarg3
	Ldloc0
	Ldloc1
	Ldloc2
	Ldloc3
	Stloc0
	Stloc1
	Stloc2
	Stloc3
	LdargS
	LdargaS
	StargS
	LdlocS
	LdlocaS
	StlocS
	LdnullOp
	LdcI4M1
	LdcI40
	LdcI41
	LdcI42
	LdcI43
	LdcI44
	LdcI45
	LdcI46
	LdcI47
	LdcI48
	LdcI4S
	LdcI4
	LdcI8
	LdcR4
	LdcR8
	Dup
	Pop
	Jmp
	Call
	Calli
	Ret
	BrS
	BrfalseS
	BrtrueS
	BeqS
	BgeS
	BgtS
	BleS
	BltS
	BneUnS
	BgeUnS
	BgtUnS
	BleUnS
	BltUnS
	Br
	Brfalse
	Brtrue
	Beq
	Bge
	Bgt
	Ble
	Blt
	BneUn
	BgeUn
	BgtUn
	BleUn
	BltUn
	SwitchOp
	LdindI1
	LdindU1
	LdindI2
	LdindU2
	LdindI4
	LdindU4
	LdindI8
	LdindI
	LdindR4
	LdindR8
	LdindRef
	StindRef
	StindI1
	StindI2
	StindI4
	StindI8
	StindR4
	StindR8
	AddOp
	SubOp
	MulOp
	DivOp
	DivUn
	RemOp
	RemUn
	AndOp
	OrOp
	XorOp
	ShlOp
	ShrOp
	ShrUn
	NegOp
	NotOp
	ConvI1
	ConvI2
	ConvI4
	ConvI8
	ConvR4
	ConvR8
	ConvU4
	ConvU8
	Callvirt
	Cpobj
	Ldobj
	Ldstr
	Newobj
	Castclass
	Isinst
	ConvRUn
	Unbox
	Throw
	Ldfld
	Ldflda
	Stfld
	Ldsfld
	Ldsflda
	Stsfld
	Stobj
	ConvOvfI1Un
	ConvOvfI2Un
	ConvOvfI4Un
	ConvOvfI8Un
	ConvOvfU1Un
	ConvOvfU2Un
	ConvOvfU4Un
	ConvOvfU8Un
	ConvOvfIUn
	ConvOvfUUn
	Box
	Newarr
	Ldlen
	Ldelema
	LdelemI1
	LdelemU1
	LdelemI2
	LdelemU2
	LdelemI4
	LdelemU4
	LdelemI8
	LdelemI
	LdelemR4
	LdelemR8
	LdelemRef
	StelemI
	StelemI1
	StelemI2
	StelemI4
	StelemI8
	StelemR4
	StelemR8
	StelemRef
	LdelemAny
	StelemAny
	UnboxAny
	ConvOvfI1
	ConvOvfU1
	ConvOvfI2
	ConvOvfU2
	ConvOvfI4
	ConvOvfU4
	ConvOvfI8
	ConvOvfU8
	Refanyval
	Ckfinite
	Mkrefany
	Ldtoken
	ConvU2
	ConvU1
	ConvI
	ConvOvfI
	ConvOvfU
	AddOvf
	AddOvfUn
	MulOvf
	MulOvfUn
	SubOvf
	SubOvfUn
	Endfinally
	Leave
	LeaveS
	StindI
	ConvU

	// 0xFE-prefixed set.
	Arglist
	Ceq
	Cgt
	CgtUn
	Clt
	CltUn
	Ldftn
	Ldvirtftn
	Ldarg
	Ldarga
	Starg
	Ldloc
	Ldloca
	Stloc
	Localloc
	Endfilter
	Unaligned
	Volatile
	Tail
	Initobj
	Constrained
	Cpblk
	Initblk
	Rethrow
	Sizeof
	Refanytype
	Readonly
)

// info describes one opcode's textual mnemonic and operand shape.
type info struct {
	name    string
	operand OperandKind
}

var table = map[Opcode]info{
	Nop:      {"nop", OperandNone},
	Break:    {"break", OperandNone},
	Ldarg0:   {"ldarg.0", OperandNone},
	Ldarg1:   {"ldarg.1", OperandNone},
	Ldarg2:   {"ldarg.2", OperandNone},
	Ldarg3:   {"ldarg.3", OperandNone},
	Ldloc0:   {"ldloc.0", OperandNone},
	Ldloc1:   {"ldloc.1", OperandNone},
	Ldloc2:   {"ldloc.2", OperandNone},
	Ldloc3:   {"ldloc.3", OperandNone},
	Stloc0:   {"stloc.0", OperandNone},
	Stloc1:   {"stloc.1", OperandNone},
	Stloc2:   {"stloc.2", OperandNone},
	Stloc3:   {"stloc.3", OperandNone},
	LdargS:   {"ldarg.s", OperandVarIdx8},
	LdargaS:  {"ldarga.s", OperandVarIdx8},
	StargS:   {"starg.s", OperandVarIdx8},
	LdlocS:   {"ldloc.s", OperandVarIdx8},
	LdlocaS:  {"ldloca.s", OperandVarIdx8},
	StlocS:   {"stloc.s", OperandVarIdx8},
	LdnullOp: {"ldnull", OperandNone},
	LdcI4M1:  {"ldc.i4.m1", OperandNone},
	LdcI40:   {"ldc.i4.0", OperandNone},
	LdcI41:   {"ldc.i4.1", OperandNone},
	LdcI42:   {"ldc.i4.2", OperandNone},
	LdcI43:   {"ldc.i4.3", OperandNone},
	LdcI44:   {"ldc.i4.4", OperandNone},
	LdcI45:   {"ldc.i4.5", OperandNone},
	LdcI46:   {"ldc.i4.6", OperandNone},
	LdcI47:   {"ldc.i4.7", OperandNone},
	LdcI48:   {"ldc.i4.8", OperandNone},
	LdcI4S:   {"ldc.i4.s", OperandInt8},
	LdcI4:    {"ldc.i4", OperandInt32},
	LdcI8:    {"ldc.i8", OperandInt64},
	LdcR4:    {"ldc.r4", OperandFloat32},
	LdcR8:    {"ldc.r8", OperandFloat64},
	Dup:      {"dup", OperandNone},
	Pop:      {"pop", OperandNone},
	Jmp:      {"jmp", OperandToken},
	Call:     {"call", OperandToken},
	Calli:    {"calli", OperandToken},
	Ret:      {"ret", OperandNone},
	BrS:      {"br.s", OperandBranchI8},
	BrfalseS: {"brfalse.s", OperandBranchI8},
	BrtrueS:  {"brtrue.s", OperandBranchI8},
	BeqS:     {"beq.s", OperandBranchI8},
	BgeS:     {"bge.s", OperandBranchI8},
	BgtS:     {"bgt.s", OperandBranchI8},
	BleS:     {"ble.s", OperandBranchI8},
	BltS:     {"blt.s", OperandBranchI8},
	BneUnS:   {"bne.un.s", OperandBranchI8},
	BgeUnS:   {"bge.un.s", OperandBranchI8},
	BgtUnS:   {"bgt.un.s", OperandBranchI8},
	BleUnS:   {"ble.un.s", OperandBranchI8},
	BltUnS:   {"blt.un.s", OperandBranchI8},
	Br:       {"br", OperandBranchI32},
	Brfalse:  {"brfalse", OperandBranchI32},
	Brtrue:   {"brtrue", OperandBranchI32},
	Beq:      {"beq", OperandBranchI32},
	Bge:      {"bge", OperandBranchI32},
	Bgt:      {"bgt", OperandBranchI32},
	Ble:      {"ble", OperandBranchI32},
	Blt:      {"blt", OperandBranchI32},
	BneUn:    {"bne.un", OperandBranchI32},
	BgeUn:    {"bge.un", OperandBranchI32},
	BgtUn:    {"bgt.un", OperandBranchI32},
	BleUn:    {"ble.un", OperandBranchI32},
	BltUn:    {"blt.un", OperandBranchI32},
	SwitchOp: {"switch", OperandSwitch},
	LdindI1:  {"ldind.i1", OperandNone},
	LdindU1:  {"ldind.u1", OperandNone},
	LdindI2:  {"ldind.i2", OperandNone},
	LdindU2:  {"ldind.u2", OperandNone},
	LdindI4:  {"ldind.i4", OperandNone},
	LdindU4:  {"ldind.u4", OperandNone},
	LdindI8:  {"ldind.i8", OperandNone},
	LdindI:   {"ldind.i", OperandNone},
	LdindR4:  {"ldind.r4", OperandNone},
	LdindR8:  {"ldind.r8", OperandNone},
	LdindRef: {"ldind.ref", OperandNone},
	StindRef: {"stind.ref", OperandNone},
	StindI1:  {"stind.i1", OperandNone},
	StindI2:  {"stind.i2", OperandNone},
	StindI4:  {"stind.i4", OperandNone},
	StindI8:  {"stind.i8", OperandNone},
	StindR4:  {"stind.r4", OperandNone},
	StindR8:  {"stind.r8", OperandNone},
	AddOp:    {"add", OperandNone},
	SubOp:    {"sub", OperandNone},
	MulOp:    {"mul", OperandNone},
	DivOp:    {"div", OperandNone},
	DivUn:    {"div.un", OperandNone},
	RemOp:    {"rem", OperandNone},
	RemUn:    {"rem.un", OperandNone},
	AndOp:    {"and", OperandNone},
	OrOp:     {"or", OperandNone},
	XorOp:    {"xor", OperandNone},
	ShlOp:    {"shl", OperandNone},
	ShrOp:    {"shr", OperandNone},
	ShrUn:    {"shr.un", OperandNone},
	NegOp:    {"neg", OperandNone},
	NotOp:    {"not", OperandNone},
	ConvI1:   {"conv.i1", OperandNone},
	ConvI2:   {"conv.i2", OperandNone},
	ConvI4:   {"conv.i4", OperandNone},
	ConvI8:   {"conv.i8", OperandNone},
	ConvR4:   {"conv.r4", OperandNone},
	ConvR8:   {"conv.r8", OperandNone},
	ConvU4:   {"conv.u4", OperandNone},
	ConvU8:   {"conv.u8", OperandNone},
	Callvirt: {"callvirt", OperandToken},
	Cpobj:    {"cpobj", OperandToken},
	Ldobj:    {"ldobj", OperandToken},
	Ldstr:    {"ldstr", OperandToken},
	Newobj:   {"newobj", OperandToken},
	Castclass: {"castclass", OperandToken},
	Isinst:   {"isinst", OperandToken},
	ConvRUn:  {"conv.r.un", OperandNone},
	Unbox:    {"unbox", OperandToken},
	Throw:    {"throw", OperandNone},
	Ldfld:    {"ldfld", OperandToken},
	Ldflda:   {"ldflda", OperandToken},
	Stfld:    {"stfld", OperandToken},
	Ldsfld:   {"ldsfld", OperandToken},
	Ldsflda:  {"ldsflda", OperandToken},
	Stsfld:   {"stsfld", OperandToken},
	Stobj:    {"stobj", OperandToken},
	ConvOvfI1Un: {"conv.ovf.i1.un", OperandNone},
	ConvOvfI2Un: {"conv.ovf.i2.un", OperandNone},
	ConvOvfI4Un: {"conv.ovf.i4.un", OperandNone},
	ConvOvfI8Un: {"conv.ovf.i8.un", OperandNone},
	ConvOvfU1Un: {"conv.ovf.u1.un", OperandNone},
	ConvOvfU2Un: {"conv.ovf.u2.un", OperandNone},
	ConvOvfU4Un: {"conv.ovf.u4.un", OperandNone},
	ConvOvfU8Un: {"conv.ovf.u8.un", OperandNone},
	ConvOvfIUn:  {"conv.ovf.i.un", OperandNone},
	ConvOvfUUn:  {"conv.ovf.u.un", OperandNone},
	Box:         {"box", OperandToken},
	Newarr:      {"newarr", OperandToken},
	Ldlen:       {"ldlen", OperandNone},
	Ldelema:     {"ldelema", OperandToken},
	LdelemI1:    {"ldelem.i1", OperandNone},
	LdelemU1:    {"ldelem.u1", OperandNone},
	LdelemI2:    {"ldelem.i2", OperandNone},
	LdelemU2:    {"ldelem.u2", OperandNone},
	LdelemI4:    {"ldelem.i4", OperandNone},
	LdelemU4:    {"ldelem.u4", OperandNone},
	LdelemI8:    {"ldelem.i8", OperandNone},
	LdelemI:     {"ldelem.i", OperandNone},
	LdelemR4:    {"ldelem.r4", OperandNone},
	LdelemR8:    {"ldelem.r8", OperandNone},
	LdelemRef:   {"ldelem.ref", OperandNone},
	StelemI:     {"stelem.i", OperandNone},
	StelemI1:    {"stelem.i1", OperandNone},
	StelemI2:    {"stelem.i2", OperandNone},
	StelemI4:    {"stelem.i4", OperandNone},
	StelemI8:    {"stelem.i8", OperandNone},
	StelemR4:    {"stelem.r4", OperandNone},
	StelemR8:    {"stelem.r8", OperandNone},
	StelemRef:   {"stelem.ref", OperandNone},
	LdelemAny:   {"ldelem", OperandToken},
	StelemAny:   {"stelem", OperandToken},
	UnboxAny:    {"unbox.any", OperandToken},
	ConvOvfI1:   {"conv.ovf.i1", OperandNone},
	ConvOvfU1:   {"conv.ovf.u1", OperandNone},
	ConvOvfI2:   {"conv.ovf.i2", OperandNone},
	ConvOvfU2:   {"conv.ovf.u2", OperandNone},
	ConvOvfI4:   {"conv.ovf.i4", OperandNone},
	ConvOvfU4:   {"conv.ovf.u4", OperandNone},
	ConvOvfI8:   {"conv.ovf.i8", OperandNone},
	ConvOvfU8:   {"conv.ovf.u8", OperandNone},
	Refanyval:   {"refanyval", OperandToken},
	Ckfinite:    {"ckfinite", OperandNone},
	Mkrefany:    {"mkrefany", OperandToken},
	Ldtoken:     {"ldtoken", OperandToken},
	ConvU2:      {"conv.u2", OperandNone},
	ConvU1:      {"conv.u1", OperandNone},
	ConvI:       {"conv.i", OperandNone},
	ConvOvfI:    {"conv.ovf.i", OperandNone},
	ConvOvfU:    {"conv.ovf.u", OperandNone},
	AddOvf:      {"add.ovf", OperandNone},
	AddOvfUn:    {"add.ovf.un", OperandNone},
	MulOvf:      {"mul.ovf", OperandNone},
	MulOvfUn:    {"mul.ovf.un", OperandNone},
	SubOvf:      {"sub.ovf", OperandNone},
	SubOvfUn:    {"sub.ovf.un", OperandNone},
	Endfinally:  {"endfinally", OperandNone},
	Leave:       {"leave", OperandBranchI32},
	LeaveS:      {"leave.s", OperandBranchI8},
	StindI:      {"stind.i", OperandNone},
	ConvU:       {"conv.u", OperandNone},

	Arglist:     {"arglist", OperandNone},
	Ceq:         {"ceq", OperandNone},
	Cgt:         {"cgt", OperandNone},
	CgtUn:       {"cgt.un", OperandNone},
	Clt:         {"clt", OperandNone},
	CltUn:       {"clt.un", OperandNone},
	Ldftn:       {"ldftn", OperandToken},
	Ldvirtftn:   {"ldvirtftn", OperandToken},
	Ldarg:       {"ldarg", OperandVarIdx16},
	Ldarga:      {"ldarga", OperandVarIdx16},
	Starg:       {"starg", OperandVarIdx16},
	Ldloc:       {"ldloc", OperandVarIdx16},
	Ldloca:      {"ldloca", OperandVarIdx16},
	Stloc:       {"stloc", OperandVarIdx16},
	Localloc:    {"localloc", OperandNone},
	Endfilter:   {"endfilter", OperandNone},
	Unaligned:   {"unaligned.", OperandUint8},
	Volatile:    {"volatile.", OperandNone},
	Tail:        {"tail.", OperandNone},
	Initobj:     {"initobj", OperandToken},
	Constrained: {"constrained.", OperandToken},
	Cpblk:       {"cpblk", OperandNone},
	Initblk:     {"initblk", OperandNone},
	Rethrow:     {"rethrow", OperandNone},
	Sizeof:      {"sizeof", OperandToken},
	Refanytype:  {"refanytype", OperandNone},
	Readonly:    {"readonly.", OperandNone},
}

// Name returns the CIL mnemonic for an opcode.
func (o Opcode) Name() string {
	if i, ok := table[o]; ok {
		return i.name
	}
	return "unknown"
}

// Operand returns the operand shape for an opcode.
func (o Opcode) Operand() OperandKind {
	if i, ok := table[o]; ok {
		return i.operand
	}
	return OperandNone
}

// IsUnconditionalTerminator reports whether this opcode unconditionally
// transfers control: br, ret, throw, rethrow, leave, endfinally, and also
// endfilter.
func (o Opcode) IsUnconditionalTerminator() bool {
	switch o {
	case Br, BrS, Ret, Throw, Rethrow, Leave, LeaveS, Endfinally, Endfilter:
		return true
	default:
		return false
	}
}

// IsConditionalBranch reports whether this opcode is brtrue/brfalse (the
// only opcodes whose dup-merge stack semantics apply, per §4.2).
func (o Opcode) IsConditionalBranch() bool {
	switch o {
	case Brtrue, BrtrueS, Brfalse, BrfalseS:
		return true
	default:
		return false
	}
}

// IsAnyBranch reports whether this opcode carries a branch/leave target.
func (o Opcode) IsAnyBranch() bool {
	switch o.Operand() {
	case OperandBranchI8, OperandBranchI32:
		return true
	default:
		return o == SwitchOp
	}
}
