package cil

import "testing"

func TestReadMethodBodyTinyFormat(t *testing.T) {
	// tiny header: codeSize=1 packed into the top 6 bits, format bits 0x2
	// in the low 2 bits, followed by a single `ret` opcode byte.
	data := []byte{byte(1<<2) | corILMethodTinyFormat, 0x2A}

	body, err := ReadMethodBody(data, 0)
	if err != nil {
		t.Fatalf("ReadMethodBody returned error: %v", err)
	}
	if body.MaxStack != 8 {
		t.Fatalf("MaxStack = %d, want 8 (tiny format's fixed stack depth)", body.MaxStack)
	}
	if body.CodeSize != 1 {
		t.Fatalf("CodeSize = %d, want 1", body.CodeSize)
	}
	if len(body.Instructions) != 1 || body.Instructions[0].Op != Ret {
		t.Fatalf("Instructions = %+v, want a single Ret", body.Instructions)
	}
}

func TestReadMethodBodyFatFormat(t *testing.T) {
	data := []byte{
		0x13, 0x30, // flags (FatFormat | InitLocals) | headerSize=3 dwords, little-endian uint16
		0x08, 0x00, // MaxStack = 8
		0x01, 0x00, 0x00, 0x00, // CodeSize = 1
		0x00, 0x00, 0x00, 0x00, // LocalVarSigTok = 0
		0x2A, // ret
	}

	body, err := ReadMethodBody(data, 0)
	if err != nil {
		t.Fatalf("ReadMethodBody returned error: %v", err)
	}
	if body.MaxStack != 8 {
		t.Fatalf("MaxStack = %d, want 8", body.MaxStack)
	}
	if body.CodeSize != 1 {
		t.Fatalf("CodeSize = %d, want 1", body.CodeSize)
	}
	if !body.InitLocals {
		t.Fatal("expected InitLocals to be set from the flags field")
	}
	if len(body.Instructions) != 1 || body.Instructions[0].Op != Ret {
		t.Fatalf("Instructions = %+v, want a single Ret", body.Instructions)
	}
}

func TestReadMethodBodyOffsetOutOfRange(t *testing.T) {
	if _, err := ReadMethodBody([]byte{0x06, 0x2A}, 10); err == nil {
		t.Fatal("expected an error for an out-of-range offset")
	}
}

func TestReadMethodBodyUnrecognizedFormat(t *testing.T) {
	// format bits 0x0: neither tiny (0x2) nor fat (0x3)
	if _, err := ReadMethodBody([]byte{0x00, 0x2A}, 0); err == nil {
		t.Fatal("expected an error for an unrecognized header format")
	}
}

func TestReadMethodBodyOverrunsModuleData(t *testing.T) {
	// tiny header claims a 4-byte body but only one byte of code follows
	data := []byte{byte(4<<2) | corILMethodTinyFormat, 0x2A}
	if _, err := ReadMethodBody(data, 0); err == nil {
		t.Fatal("expected an error when the declared code size overruns the module data")
	}
}
