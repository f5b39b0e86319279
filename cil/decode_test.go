package cil

import "testing"

func TestDecodeSimpleArithmetic(t *testing.T) {
	// ldarg.0; ldc.i4.1; add; ret
	code := []byte{0x02, 0x17, 0x58, 0x2A}
	instrs, err := Decode(code)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if len(instrs) != 4 {
		t.Fatalf("expected 4 instructions, got %d: %+v", len(instrs), instrs)
	}
	wantOps := []Opcode{Ldarg0, LdcI41, AddOp, Ret}
	for i, want := range wantOps {
		if instrs[i].Op != want {
			t.Errorf("instrs[%d].Op = %v, want %v", i, instrs[i].Op, want)
		}
		if instrs[i].Size != 1 {
			t.Errorf("instrs[%d].Size = %d, want 1", i, instrs[i].Size)
		}
	}
	if instrs[1].Offset != 1 || instrs[2].Offset != 2 || instrs[3].Offset != 3 {
		t.Fatalf("unexpected offsets: %+v", instrs)
	}
}

func TestDecodeInt32TokenOperand(t *testing.T) {
	// call, token 0x0600001A
	code := []byte{0x28, 0x1A, 0x00, 0x00, 0x06}
	instrs, err := Decode(code)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if len(instrs) != 1 {
		t.Fatalf("expected 1 instruction, got %d", len(instrs))
	}
	if instrs[0].Op != Call {
		t.Fatalf("Op = %v, want Call", instrs[0].Op)
	}
	if instrs[0].Token != 0x0600001A {
		t.Fatalf("Token = 0x%08x, want 0x0600001a", instrs[0].Token)
	}
	if instrs[0].Size != 5 {
		t.Fatalf("Size = %d, want 5", instrs[0].Size)
	}
}

func TestDecodeBranchI8ResolvesAbsoluteTarget(t *testing.T) {
	// at offset 0: br.s +2 (2-byte instruction, body at offset 1, next at 2)
	code := []byte{0x2B, 0x02, 0x00, 0x00, 0x2A}
	instrs, err := Decode(code)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if instrs[0].Op != BrS {
		t.Fatalf("Op = %v, want BrS", instrs[0].Op)
	}
	if instrs[0].BranchTarget != 4 {
		t.Fatalf("BranchTarget = %d, want 4 (next=2 + delta=2)", instrs[0].BranchTarget)
	}
}

func TestDecodePrefixedOpcode(t *testing.T) {
	// ceq (0xFE 0x01)
	code := []byte{0xFE, 0x01}
	instrs, err := Decode(code)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if len(instrs) != 1 || instrs[0].Op != Ceq {
		t.Fatalf("expected a single Ceq instruction, got %+v", instrs)
	}
	if instrs[0].Size != 2 {
		t.Fatalf("Size = %d, want 2", instrs[0].Size)
	}
}

func TestDecodeSwitchOperand(t *testing.T) {
	// switch with 2 targets: count=2, deltas 0 and 4
	code := []byte{
		0x45,
		0x02, 0x00, 0x00, 0x00, // count
		0x00, 0x00, 0x00, 0x00, // delta 0
		0x04, 0x00, 0x00, 0x00, // delta 4
	}
	instrs, err := Decode(code)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if len(instrs) != 1 || instrs[0].Op != SwitchOp {
		t.Fatalf("expected a single SwitchOp instruction, got %+v", instrs)
	}
	if len(instrs[0].SwitchTargets) != 2 {
		t.Fatalf("expected 2 switch targets, got %d", len(instrs[0].SwitchTargets))
	}
	// next = 1(header) + 4(count) + 2*4(targets) = 13
	if instrs[0].SwitchTargets[0] != 13 || instrs[0].SwitchTargets[1] != 17 {
		t.Fatalf("SwitchTargets = %v, want [13, 17]", instrs[0].SwitchTargets)
	}
}

func TestDecodeUnrecognizedOpcodeErrors(t *testing.T) {
	code := []byte{0x24} // unassigned in byteToOpcode
	if _, err := Decode(code); err == nil {
		t.Fatal("expected an error for an unrecognized opcode byte")
	}
}

func TestDecodeTruncatedOperandErrors(t *testing.T) {
	code := []byte{0x1F} // ldc.i4.s with no operand byte
	if _, err := Decode(code); err == nil {
		t.Fatal("expected an error for a truncated operand")
	}
}

func TestDecodeLdcI8Int64Operand(t *testing.T) {
	code := []byte{0x21, 0x01, 0, 0, 0, 0, 0, 0, 0}
	instrs, err := Decode(code)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if instrs[0].IntOperand != 1 {
		t.Fatalf("IntOperand = %d, want 1", instrs[0].IntOperand)
	}
}
