package assembly

import "fmt"

// ECMA-335 §II.23.1.16 element types, the subset this translator's signature
// reader needs to recover IL type names well enough to mangle and dispatch
// on them.
const (
	elementVoid        = 0x01
	elementBoolean      = 0x02
	elementChar         = 0x03
	elementI1           = 0x04
	elementU1           = 0x05
	elementI2           = 0x06
	elementU2           = 0x07
	elementI4           = 0x08
	elementU4           = 0x09
	elementI8           = 0x0a
	elementU8           = 0x0b
	elementR4           = 0x0c
	elementR8           = 0x0d
	elementString       = 0x0e
	elementPtr          = 0x0f
	elementByref        = 0x10
	elementValueType    = 0x11
	elementClass        = 0x12
	elementVar          = 0x13
	elementArray        = 0x14
	elementGenericInst  = 0x15
	elementTypedByRef   = 0x16
	elementI            = 0x18
	elementU            = 0x19
	elementFnPtr        = 0x1b
	elementObject       = 0x1c
	elementSZArray      = 0x1d
	elementMVar         = 0x1e
	elementCModReqd     = 0x1f
	elementCModOpt      = 0x20
	elementSentinel     = 0x41
	elementPinned       = 0x45
)

var primitiveElementNames = map[byte]string{
	elementVoid:    "System.Void",
	elementBoolean: "System.Boolean",
	elementChar:    "System.Char",
	elementI1:      "System.SByte",
	elementU1:      "System.Byte",
	elementI2:      "System.Int16",
	elementU2:      "System.UInt16",
	elementI4:      "System.Int32",
	elementU4:      "System.UInt32",
	elementI8:      "System.Int64",
	elementU8:      "System.UInt64",
	elementR4:      "System.Single",
	elementR8:      "System.Double",
	elementString:  "System.String",
	elementI:       "System.IntPtr",
	elementU:       "System.UIntPtr",
	elementObject:  "System.Object",
	elementTypedByRef: "System.TypedReference",
}

// decodeTypeSig decodes one ECMA-335 §II.23.2.12 TYPE production starting at
// pos within blob, returning its IL name, whether it denotes a value type,
// and the position immediately past it.
func (pe *File) decodeTypeSig(blob []byte, pos int) (ilName string, isValueType bool, newPos int, err error) {
	for pos < len(blob) && (blob[pos] == elementCModReqd || blob[pos] == elementCModOpt) {
		pos++
		_, n, err := readCompressedUint(blob[pos:])
		if err != nil {
			return "", false, pos, err
		}
		pos += n
	}
	if pos >= len(blob) {
		return "", false, pos, fmt.Errorf("assembly: signature truncated")
	}

	et := blob[pos]
	pos++

	if name, ok := primitiveElementNames[et]; ok {
		return name, false, pos, nil
	}

	switch et {
	case elementPtr:
		inner, _, next, err := pe.decodeTypeSig(blob, pos)
		if err != nil {
			return "", false, pos, err
		}
		return inner + "*", false, next, nil

	case elementByref:
		inner, _, next, err := pe.decodeTypeSig(blob, pos)
		if err != nil {
			return "", false, pos, err
		}
		return inner + "&", false, next, nil

	case elementSZArray:
		inner, _, next, err := pe.decodeTypeSig(blob, pos)
		if err != nil {
			return "", false, pos, err
		}
		return inner + "[]", false, next, nil

	case elementArray:
		inner, _, next, err := pe.decodeTypeSig(blob, pos)
		if err != nil {
			return "", false, pos, err
		}
		next, err = skipArrayShape(blob, next)
		if err != nil {
			return "", false, pos, err
		}
		return inner + "[]", false, next, nil

	case elementValueType, elementClass:
		tok, n, err := readCompressedUint(blob[pos:])
		if err != nil {
			return "", false, pos, err
		}
		pos += n
		table, row := decodeTypeDefOrRefEncoded(tok)
		name, _, err := pe.typeDefOrRefName(table, row)
		if err != nil {
			return "", false, pos, err
		}
		return name, et == elementValueType, pos, nil

	case elementVar:
		n, nbytes, err := readCompressedUint(blob[pos:])
		if err != nil {
			return "", false, pos, err
		}
		return genericParamName(n, false), false, pos + nbytes, nil

	case elementMVar:
		n, nbytes, err := readCompressedUint(blob[pos:])
		if err != nil {
			return "", false, pos, err
		}
		return genericParamName(n, true), false, pos + nbytes, nil

	case elementGenericInst:
		return pe.decodeGenericInstSig(blob, pos)

	case elementFnPtr:
		// Skip the nested full method signature; callers needing function
		// pointer types treat this as an opaque native pointer.
		_, _, next, err := pe.decodeMethodSigAt(blob, pos)
		if err != nil {
			return "", false, pos, err
		}
		return "System.IntPtr", false, next, nil

	case elementPinned:
		return pe.decodeTypeSig(blob, pos)

	default:
		return "", false, pos, fmt.Errorf("assembly: unsupported element type 0x%02x", et)
	}
}

func genericParamName(index uint32, isMethodParam bool) string {
	if isMethodParam {
		return fmt.Sprintf("!!%d", index)
	}
	return fmt.Sprintf("!%d", index)
}

func (pe *File) decodeGenericInstSig(blob []byte, pos int) (string, bool, int, error) {
	if pos >= len(blob) {
		return "", false, pos, fmt.Errorf("assembly: signature truncated")
	}
	kindByte := blob[pos]
	pos++
	tok, n, err := readCompressedUint(blob[pos:])
	if err != nil {
		return "", false, pos, err
	}
	pos += n
	table, row := decodeTypeDefOrRefEncoded(tok)
	open, _, err := pe.typeDefOrRefName(table, row)
	if err != nil {
		return "", false, pos, err
	}

	argCount, n, err := readCompressedUint(blob[pos:])
	if err != nil {
		return "", false, pos, err
	}
	pos += n

	args := make([]string, argCount)
	for i := range args {
		arg, _, next, err := pe.decodeTypeSig(blob, pos)
		if err != nil {
			return "", false, pos, err
		}
		args[i] = arg
		pos = next
	}

	name := open + "<"
	for i, a := range args {
		if i > 0 {
			name += ","
		}
		name += a
	}
	name += ">"
	return name, kindByte == elementValueType, pos, nil
}

func skipArrayShape(blob []byte, pos int) (int, error) {
	rank, n, err := readCompressedUint(blob[pos:])
	if err != nil {
		return pos, err
	}
	pos += n

	numSizes, n, err := readCompressedUint(blob[pos:])
	if err != nil {
		return pos, err
	}
	pos += n
	for i := uint32(0); i < numSizes; i++ {
		_, n, err := readCompressedUint(blob[pos:])
		if err != nil {
			return pos, err
		}
		pos += n
	}

	numLoBounds, n, err := readCompressedUint(blob[pos:])
	if err != nil {
		return pos, err
	}
	pos += n
	for i := uint32(0); i < numLoBounds; i++ {
		_, n, err := readCompressedSigned(blob[pos:])
		if err != nil {
			return pos, err
		}
		pos += n
	}
	_ = rank
	return pos, nil
}

// readCompressedSigned decodes a §II.23.2 compressed *signed* integer,
// needed only for array lower bounds.
func readCompressedSigned(buf []byte) (int32, int, error) {
	u, n, err := readCompressedUint(buf)
	if err != nil {
		return 0, 0, err
	}
	// Rotate right by one bit to recover the sign-extended value.
	shifted := int32(u >> 1)
	if u&1 != 0 {
		switch n {
		case 1:
			shifted -= 0x40
		case 2:
			shifted -= 0x2000
		default:
			shifted -= 0x10000000
		}
	}
	return shifted, n, nil
}

// decodeTypeDefOrRefEncoded splits a §II.23.2.8 TypeDefOrRefOrSpecEncoded
// compressed token into its table and 1-based row.
func decodeTypeDefOrRefEncoded(tok uint32) (table int, row uint32) {
	tag := tok & 0x3
	row = tok >> 2
	switch tag {
	case 0:
		return TypeDef, row
	case 1:
		return TypeRef, row
	default:
		return TypeSpec, row
	}
}

// decodeMethodSig decodes a full MethodDefSig/MethodRefSig (§II.23.2.1),
// returning the parameter IL types in order and the return IL type.
func (pe *File) decodeMethodSig(blob []byte) (params []string, ret string, err error) {
	params, ret, _, err = pe.decodeMethodSigAt(blob, 0)
	return params, ret, err
}

func (pe *File) decodeMethodSigAt(blob []byte, pos int) ([]string, string, int, error) {
	if pos >= len(blob) {
		return nil, "", pos, fmt.Errorf("assembly: empty method signature")
	}
	flags := blob[pos]
	pos++

	const genericFlag = 0x10
	if flags&genericFlag != 0 {
		_, n, err := readCompressedUint(blob[pos:])
		if err != nil {
			return nil, "", pos, err
		}
		pos += n
	}

	paramCount, n, err := readCompressedUint(blob[pos:])
	if err != nil {
		return nil, "", pos, err
	}
	pos += n

	ret, _, pos, err := pe.decodeTypeSig(blob, pos)
	if err != nil {
		return nil, "", pos, err
	}

	params := make([]string, 0, paramCount)
	for i := uint32(0); i < paramCount; i++ {
		if pos < len(blob) && blob[pos] == elementSentinel {
			pos++
		}
		p, _, next, err := pe.decodeTypeSig(blob, pos)
		if err != nil {
			return nil, "", pos, err
		}
		params = append(params, p)
		pos = next
	}
	return params, ret, pos, nil
}
