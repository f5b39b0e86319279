package cil

import (
	"encoding/binary"
	"fmt"
)

// method header format flags, ECMA-335 §II.25.4.
const (
	corILMethodTinyFormat   = 0x2
	corILMethodFatFormat    = 0x3
	corILMethodFormatMask   = 0x3
	corILMethodMoreSects    = 0x8
	corILMethodInitLocals   = 0x10
	corILMethodSectEHTable  = 0x1
	corILMethodSectFatFormat = 0x40
	corILMethodSectMoreSects = 0x80
)

// MethodBody is a fully decoded method: its instructions, declared stack
// depth, local-variable signature token, and exception handlers.
type MethodBody struct {
	MaxStack       uint16
	LocalVarSigTok uint32
	InitLocals     bool
	CodeSize       uint32
	Instructions   []Instruction
	ExceptionHandlers []ExceptionHandler
}

// ReadMethodBody decodes one method body starting at the RVA-resolved file
// offset off, per the tiny/fat header layouts in ECMA-335 §II.25.4. data is
// the whole module image; off is the offset of the header's first byte.
func ReadMethodBody(data []byte, off uint32) (*MethodBody, error) {
	if int(off) >= len(data) {
		return nil, fmt.Errorf("cil: method header offset %d out of range", off)
	}

	lead := data[off]
	format := lead & corILMethodFormatMask

	var body MethodBody
	var codeStart uint32

	switch format {
	case corILMethodTinyFormat:
		body.MaxStack = 8
		body.CodeSize = uint32(lead) >> 2
		codeStart = off + 1

	case corILMethodFatFormat:
		if int(off)+12 > len(data) {
			return nil, fmt.Errorf("cil: truncated fat method header at offset %d", off)
		}
		flagsAndSize := binary.LittleEndian.Uint16(data[off:])
		headerSizeDwords := flagsAndSize >> 12
		flags := flagsAndSize & 0x0FFF
		headerSize := uint32(headerSizeDwords) * 4
		if headerSizeDwords != 3 {
			return nil, fmt.Errorf("cil: unexpected fat method header size %d dwords at offset %d", headerSizeDwords, off)
		}

		body.MaxStack = binary.LittleEndian.Uint16(data[off+2:])
		body.CodeSize = binary.LittleEndian.Uint32(data[off+4:])
		body.LocalVarSigTok = binary.LittleEndian.Uint32(data[off+8:])
		body.InitLocals = flags&corILMethodInitLocals != 0

		codeStart = off + headerSize

		if flags&corILMethodMoreSects != 0 {
			ehOff := codeStart + body.CodeSize
			handlers, err := readMethodDataSections(data, ehOff)
			if err != nil {
				return nil, err
			}
			body.ExceptionHandlers = handlers
		}

	default:
		return nil, fmt.Errorf("cil: unrecognized method header format 0x%x at offset %d", format, off)
	}

	if int(codeStart)+int(body.CodeSize) > len(data) {
		return nil, fmt.Errorf("cil: method body at offset %d overruns module data", off)
	}
	code := data[codeStart : codeStart+body.CodeSize]

	instrs, err := Decode(code)
	if err != nil {
		return nil, fmt.Errorf("cil: decoding method body at offset %d: %w", off, err)
	}
	body.Instructions = instrs

	return &body, nil
}
