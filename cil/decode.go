package cil

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Instruction is one decoded CIL instruction: its opcode, the bytecode
// offset it starts at, and whichever operand field applies to its
// OperandKind.
type Instruction struct {
	Op     Opcode
	Offset uint32 // offset of this instruction within the method body
	Size   int    // total encoded length, including the opcode byte(s)

	IntOperand    int64   // OperandInt8/16/32/64, OperandVarIdx8/16, OperandUint8
	FloatOperand  float64 // OperandFloat32/64
	Token         uint32  // OperandToken
	BranchTarget  uint32  // OperandBranchI8/I32: absolute offset, after resolving displacement
	SwitchTargets []uint32
}

var byteToOpcode = map[byte]Opcode{
	0x00: Nop, 0x01: Break,
	0x02: Ldarg0, 0x03: Ldarg1, 0x04: Ldarg2, 0x05: Ldarg3,
	0x06: Ldloc0, 0x07: Ldloc1, 0x08: Ldloc2, 0x09: Ldloc3,
	0x0A: Stloc0, 0x0B: Stloc1, 0x0C: Stloc2, 0x0D: Stloc3,
	0x0E: LdargS, 0x0F: LdargaS, 0x10: StargS,
	0x11: LdlocS, 0x12: LdlocaS, 0x13: StlocS,
	0x14: LdnullOp,
	0x15: LdcI4M1, 0x16: LdcI40, 0x17: LdcI41, 0x18: LdcI42, 0x19: LdcI43,
	0x1A: LdcI44, 0x1B: LdcI45, 0x1C: LdcI46, 0x1D: LdcI47, 0x1E: LdcI48,
	0x1F: LdcI4S, 0x20: LdcI4, 0x21: LdcI8, 0x22: LdcR4, 0x23: LdcR8,
	0x25: Dup, 0x26: Pop, 0x27: Jmp, 0x28: Call, 0x29: Calli, 0x2A: Ret,
	0x2B: BrS, 0x2C: BrfalseS, 0x2D: BrtrueS,
	0x2E: BeqS, 0x2F: BgeS, 0x30: BgtS, 0x31: BleS, 0x32: BltS,
	0x33: BneUnS, 0x34: BgeUnS, 0x35: BgtUnS, 0x36: BleUnS, 0x37: BltUnS,
	0x38: Br, 0x39: Brfalse, 0x3A: Brtrue,
	0x3B: Beq, 0x3C: Bge, 0x3D: Bgt, 0x3E: Ble, 0x3F: Blt,
	0x40: BneUn, 0x41: BgeUn, 0x42: BgtUn, 0x43: BleUn, 0x44: BltUn,
	0x45: SwitchOp,
	0x46: LdindI1, 0x47: LdindU1, 0x48: LdindI2, 0x49: LdindU2,
	0x4A: LdindI4, 0x4B: LdindU4, 0x4C: LdindI8, 0x4D: LdindI,
	0x4E: LdindR4, 0x4F: LdindR8, 0x50: LdindRef,
	0x51: StindRef, 0x52: StindI1, 0x53: StindI2, 0x54: StindI4,
	0x55: StindI8, 0x56: StindR4, 0x57: StindR8,
	0x58: AddOp, 0x59: SubOp, 0x5A: MulOp, 0x5B: DivOp, 0x5C: DivUn,
	0x5D: RemOp, 0x5E: RemUn, 0x5F: AndOp, 0x60: OrOp, 0x61: XorOp,
	0x62: ShlOp, 0x63: ShrOp, 0x64: ShrUn, 0x65: NegOp, 0x66: NotOp,
	0x67: ConvI1, 0x68: ConvI2, 0x69: ConvI4, 0x6A: ConvI8,
	0x6B: ConvR4, 0x6C: ConvR8, 0x6D: ConvU4, 0x6E: ConvU8,
	0x6F: Callvirt, 0x70: Cpobj, 0x71: Ldobj, 0x72: Ldstr, 0x73: Newobj,
	0x74: Castclass, 0x75: Isinst, 0x76: ConvRUn,
	0x79: Unbox, 0x7A: Throw,
	0x7B: Ldfld, 0x7C: Ldflda, 0x7D: Stfld,
	0x7E: Ldsfld, 0x7F: Ldsflda, 0x80: Stsfld, 0x81: Stobj,
	0x82: ConvOvfI1Un, 0x83: ConvOvfI2Un, 0x84: ConvOvfI4Un, 0x85: ConvOvfI8Un,
	0x86: ConvOvfU1Un, 0x87: ConvOvfU2Un, 0x88: ConvOvfU4Un, 0x89: ConvOvfU8Un,
	0x8A: ConvOvfIUn, 0x8B: ConvOvfUUn,
	0x8C: Box, 0x8D: Newarr, 0x8E: Ldlen, 0x8F: Ldelema,
	0x90: LdelemI1, 0x91: LdelemU1, 0x92: LdelemI2, 0x93: LdelemU2,
	0x94: LdelemI4, 0x95: LdelemU4, 0x96: LdelemI8, 0x97: LdelemI,
	0x98: LdelemR4, 0x99: LdelemR8, 0x9A: LdelemRef,
	0x9B: StelemI, 0x9C: StelemI1, 0x9D: StelemI2, 0x9E: StelemI4,
	0x9F: StelemI8, 0xA0: StelemR4, 0xA1: StelemR8, 0xA2: StelemRef,
	0xA3: LdelemAny, 0xA4: StelemAny, 0xA5: UnboxAny,
	0xB3: ConvOvfI1, 0xB4: ConvOvfU1, 0xB5: ConvOvfI2, 0xB6: ConvOvfU2,
	0xB7: ConvOvfI4, 0xB8: ConvOvfU4, 0xB9: ConvOvfI8, 0xBA: ConvOvfU8,
	0xC2: Refanyval, 0xC3: Ckfinite, 0xC6: Mkrefany,
	0xD0: Ldtoken, 0xD1: ConvU2, 0xD2: ConvU1, 0xD3: ConvI,
	0xD4: ConvOvfI, 0xD5: ConvOvfU,
	0xD6: AddOvf, 0xD7: AddOvfUn, 0xD8: MulOvf, 0xD9: MulOvfUn,
	0xDA: SubOvf, 0xDB: SubOvfUn,
	0xDC: Endfinally, 0xDD: Leave, 0xDE: LeaveS, 0xDF: StindI, 0xE0: ConvU,
}

var prefixedOpcode = map[byte]Opcode{
	0x00: Arglist, 0x01: Ceq, 0x02: Cgt, 0x03: CgtUn, 0x04: Clt, 0x05: CltUn,
	0x06: Ldftn, 0x07: Ldvirtftn,
	0x09: Ldarg, 0x0A: Ldarga, 0x0B: Starg,
	0x0C: Ldloc, 0x0D: Ldloca, 0x0E: Stloc, 0x0F: Localloc,
	0x11: Endfilter, 0x12: Unaligned, 0x13: Volatile, 0x14: Tail,
	0x15: Initobj, 0x16: Constrained, 0x17: Cpblk, 0x18: Initblk,
	0x1A: Rethrow, 0x1C: Sizeof, 0x1D: Refanytype, 0x1E: Readonly,
}

const prefixLead = 0xFE

// Decode turns the raw IL body of a method into an ordered instruction
// list. offset tracks position within code, matching the bytecode offsets
// exception handlers and sequence points are expressed in.
func Decode(code []byte) ([]Instruction, error) {
	var out []Instruction
	pos := 0
	for pos < len(code) {
		start := uint32(pos)
		lead := code[pos]

		var op Opcode
		var ok bool
		headerLen := 1
		if lead == prefixLead {
			if pos+1 >= len(code) {
				return nil, fmt.Errorf("cil: truncated prefixed opcode at offset %d", pos)
			}
			op, ok = prefixedOpcode[code[pos+1]]
			headerLen = 2
		} else {
			op, ok = byteToOpcode[lead]
		}
		if !ok {
			return nil, fmt.Errorf("cil: unrecognized opcode byte 0x%02x at offset %d", lead, pos)
		}

		body := pos + headerLen
		instr := Instruction{Op: op, Offset: start}

		switch op.Operand() {
		case OperandNone:
			instr.Size = headerLen
		case OperandInt8, OperandVarIdx8, OperandUint8:
			if err := need(code, body, 1); err != nil {
				return nil, err
			}
			instr.IntOperand = int64(int8(code[body]))
			if op.Operand() != OperandInt8 {
				instr.IntOperand = int64(code[body])
			}
			instr.Size = headerLen + 1
		case OperandBranchI8:
			if err := need(code, body, 1); err != nil {
				return nil, err
			}
			delta := int64(int8(code[body]))
			next := uint32(body + 1)
			instr.BranchTarget = uint32(int64(next) + delta)
			instr.Size = headerLen + 1
		case OperandInt16, OperandVarIdx16:
			if err := need(code, body, 2); err != nil {
				return nil, err
			}
			instr.IntOperand = int64(binary.LittleEndian.Uint16(code[body:]))
			instr.Size = headerLen + 2
		case OperandInt32:
			if err := need(code, body, 4); err != nil {
				return nil, err
			}
			instr.IntOperand = int64(int32(binary.LittleEndian.Uint32(code[body:])))
			instr.Size = headerLen + 4
		case OperandBranchI32:
			if err := need(code, body, 4); err != nil {
				return nil, err
			}
			delta := int64(int32(binary.LittleEndian.Uint32(code[body:])))
			next := uint32(body + 4)
			instr.BranchTarget = uint32(int64(next) + delta)
			instr.Size = headerLen + 4
		case OperandToken:
			if err := need(code, body, 4); err != nil {
				return nil, err
			}
			instr.Token = binary.LittleEndian.Uint32(code[body:])
			instr.Size = headerLen + 4
		case OperandInt64:
			if err := need(code, body, 8); err != nil {
				return nil, err
			}
			instr.IntOperand = int64(binary.LittleEndian.Uint64(code[body:]))
			instr.Size = headerLen + 8
		case OperandFloat32:
			if err := need(code, body, 4); err != nil {
				return nil, err
			}
			bits := binary.LittleEndian.Uint32(code[body:])
			instr.FloatOperand = float64(math.Float32frombits(bits))
			instr.Size = headerLen + 4
		case OperandFloat64:
			if err := need(code, body, 8); err != nil {
				return nil, err
			}
			bits := binary.LittleEndian.Uint64(code[body:])
			instr.FloatOperand = math.Float64frombits(bits)
			instr.Size = headerLen + 8
		case OperandSwitch:
			if err := need(code, body, 4); err != nil {
				return nil, err
			}
			count := binary.LittleEndian.Uint32(code[body:])
			targetsStart := body + 4
			if err := need(code, targetsStart, int(count)*4); err != nil {
				return nil, err
			}
			next := uint32(targetsStart + int(count)*4)
			instr.SwitchTargets = make([]uint32, count)
			for i := uint32(0); i < count; i++ {
				delta := int64(int32(binary.LittleEndian.Uint32(code[targetsStart+int(i)*4:])))
				instr.SwitchTargets[i] = uint32(int64(next) + delta)
			}
			instr.Size = headerLen + 4 + int(count)*4
		default:
			instr.Size = headerLen
		}

		out = append(out, instr)
		pos += instr.Size
	}
	return out, nil
}

func need(code []byte, at, n int) error {
	if at+n > len(code) {
		return fmt.Errorf("cil: truncated operand at offset %d (need %d bytes)", at, n)
	}
	return nil
}
