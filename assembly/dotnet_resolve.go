package assembly

import (
	"fmt"
	"unicode/utf16"
)

// Metadata token table tags, §II.22.2 ("Metadata token"): the high byte of a
// 4-byte token selects the table, the low three bytes are the 1-based row.
const (
	tokenTagTypeRef    = 0x01
	tokenTagTypeDef    = 0x02
	tokenTagField      = 0x04
	tokenTagMethodDef  = 0x06
	tokenTagMemberRef  = 0x0A
	tokenTagTypeSpec   = 0x1B
	tokenTagUserString = 0x70

	tokenTagStandAloneSig = 0x11
)

func decodeToken(token uint32) (tag byte, row uint32) {
	return byte(token >> 24), token & 0x00FFFFFF
}

// decodeCodedIndex splits a coded-index value read into a table row into the
// table it selects and the 1-based row within that table, per §II.24.2.6.
func decodeCodedIndex(cidx codedidx, value uint32) (table int, row uint32) {
	mask := uint32(1)<<cidx.tagbits - 1
	tag := value & mask
	row = value >> cidx.tagbits
	if int(tag) >= len(cidx.idx) {
		return -1, row
	}
	return cidx.idx[tag], row
}

// ResolveTypeToken resolves a TypeDef/TypeRef/TypeSpec metadata token to an
// IL full name, reporting whether the referenced type is a value type (known
// only for TypeDef rows carrying a resolvable base type, and for primitives
// recognized by name).
func (pe *File) ResolveTypeToken(token uint32) (ilName string, isValueType bool, err error) {
	tag, row := decodeToken(token)
	switch tag {
	case tokenTagTypeDef:
		return pe.typeDefOrRefName(TypeDef, row)
	case tokenTagTypeRef:
		return pe.typeDefOrRefName(TypeRef, row)
	case tokenTagTypeSpec:
		return pe.typeDefOrRefName(TypeSpec, row)
	default:
		return "", false, fmt.Errorf("assembly: token 0x%08x is not a type token", token)
	}
}

func (pe *File) typeDefOrRefName(table int, row uint32) (string, bool, error) {
	if row == 0 {
		return "", false, nil
	}
	switch table {
	case TypeDef:
		if int(row-1) >= len(pe.CLR.TypeDefRows) {
			return "", false, ErrOutsideBoundary
		}
		td := pe.CLR.TypeDefRows[row-1]
		name, err := pe.typeDefFullName(td)
		if err != nil {
			return "", false, err
		}
		isValueType := isValueTypeBase(name) || pe.extendsSystemValueType(td)
		return name, isValueType, nil
	case TypeRef:
		if int(row-1) >= len(pe.CLR.TypeRefRows) {
			return "", false, ErrOutsideBoundary
		}
		tr := pe.CLR.TypeRefRows[row-1]
		name, err := pe.stringAt(tr.TypeName)
		if err != nil {
			return "", false, err
		}
		ns, err := pe.stringAt(tr.TypeNamespace)
		if err != nil {
			return "", false, err
		}
		full := name
		if ns != "" {
			full = ns + "." + name
		}
		return full, isValueTypeBase(full), nil
	case TypeSpec:
		if int(row-1) >= len(pe.CLR.TypeSpecRows) {
			return "", false, ErrOutsideBoundary
		}
		blob, err := pe.blobAt(pe.CLR.TypeSpecRows[row-1].Signature)
		if err != nil {
			return "", false, err
		}
		name, isVT, _, err := pe.decodeTypeSig(blob, 0)
		return name, isVT, err
	default:
		return "", false, fmt.Errorf("assembly: unresolvable TypeDefOrRef table %d", table)
	}
}

// extendsSystemValueType reports whether a TypeDef's Extends field names
// System.ValueType or System.Enum directly, the common case for value types
// declared in the same module.
func (pe *File) extendsSystemValueType(td TypeDefTableRow) bool {
	if td.Extends == 0 {
		return false
	}
	table, row := decodeCodedIndex(idxTypeDefOrRef, td.Extends)
	name, _, err := pe.typeDefOrRefName(table, row)
	if err != nil {
		return false
	}
	return name == "System.ValueType" || name == "System.Enum"
}

func isValueTypeBase(ilName string) bool {
	switch ilName {
	case "System.ValueType", "System.Enum":
		return true
	default:
		_, isPrimitive := primitiveValueTypes[ilName]
		return isPrimitive
	}
}

var primitiveValueTypes = map[string]bool{
	"System.Boolean": true, "System.Byte": true, "System.SByte": true,
	"System.Char": true, "System.Int16": true, "System.UInt16": true,
	"System.Int32": true, "System.UInt32": true, "System.Int64": true,
	"System.UInt64": true, "System.Single": true, "System.Double": true,
	"System.IntPtr": true, "System.UIntPtr": true,
}

// ResolvedMethod is the result of resolving a `call`/`callvirt`/`newobj`
// token to a callable method reference.
type ResolvedMethod struct {
	DeclaringType string
	Name          string
	ParamTypes    []string
	ReturnType    string
	IsStatic      bool
}

// ResolveMethodToken resolves a MethodDef or MemberRef token into a
// ResolvedMethod.
func (pe *File) ResolveMethodToken(token uint32) (ResolvedMethod, error) {
	tag, row := decodeToken(token)
	switch tag {
	case tokenTagMethodDef:
		return pe.resolveMethodDefRow(row)
	case tokenTagMemberRef:
		return pe.resolveMemberRefRow(row)
	default:
		return ResolvedMethod{}, fmt.Errorf("assembly: token 0x%08x is not a method token", token)
	}
}

func (pe *File) resolveMethodDefRow(row uint32) (ResolvedMethod, error) {
	if int(row-1) >= len(pe.CLR.MethodDefRows) {
		return ResolvedMethod{}, ErrOutsideBoundary
	}
	md := pe.CLR.MethodDefRows[row-1]
	name, err := pe.stringAt(md.Name)
	if err != nil {
		return ResolvedMethod{}, err
	}
	declType := pe.declaringTypeOfMethodRow(row)
	sig, err := pe.blobAt(md.Signature)
	if err != nil {
		return ResolvedMethod{}, err
	}
	params, ret, err := pe.decodeMethodSig(sig)
	if err != nil {
		return ResolvedMethod{}, err
	}
	return ResolvedMethod{
		DeclaringType: declType,
		Name:          name,
		ParamTypes:    params,
		ReturnType:    ret,
		IsStatic:      md.Flags&methodAttrStatic != 0,
	}, nil
}

func (pe *File) declaringTypeOfMethodRow(row uint32) string {
	for i, td := range pe.CLR.TypeDefRows {
		start := int(td.MethodList)
		end := len(pe.CLR.MethodDefRows) + 1
		if i+1 < len(pe.CLR.TypeDefRows) {
			end = int(pe.CLR.TypeDefRows[i+1].MethodList)
		}
		if int(row) >= start && int(row) < end {
			name, _ := pe.typeDefFullName(td)
			return name
		}
	}
	return ""
}

func (pe *File) resolveMemberRefRow(row uint32) (ResolvedMethod, error) {
	if int(row-1) >= len(pe.CLR.MemberRefRows) {
		return ResolvedMethod{}, ErrOutsideBoundary
	}
	mr := pe.CLR.MemberRefRows[row-1]
	name, err := pe.stringAt(mr.Name)
	if err != nil {
		return ResolvedMethod{}, err
	}
	table, parentRow := decodeCodedIndex(idxMemberRefParent, mr.Class)
	declType, isValueType, err := pe.typeDefOrRefName(table, parentRow)
	if err != nil {
		return ResolvedMethod{}, err
	}
	sig, err := pe.blobAt(mr.Signature)
	if err != nil {
		return ResolvedMethod{}, err
	}
	params, ret, err := pe.decodeMethodSig(sig)
	if err != nil {
		return ResolvedMethod{}, err
	}
	return ResolvedMethod{
		DeclaringType: declType,
		Name:          name,
		ParamTypes:    params,
		ReturnType:    ret,
		IsStatic:      isValueType && false, // MemberRef carries no MethodAttributes; callsite flags decide staticness
	}, nil
}

// ResolvedField is the result of resolving a field token.
type ResolvedField struct {
	DeclaringType string
	Name          string
	Type          string
}

// ResolveFieldToken resolves a Field or MemberRef token into a
// ResolvedField.
func (pe *File) ResolveFieldToken(token uint32) (ResolvedField, error) {
	tag, row := decodeToken(token)
	switch tag {
	case tokenTagField:
		return pe.resolveFieldRow(row)
	case tokenTagMemberRef:
		m, err := pe.resolveMemberRefRow(row)
		if err != nil {
			return ResolvedField{}, err
		}
		return ResolvedField{DeclaringType: m.DeclaringType, Name: m.Name, Type: m.ReturnType}, nil
	default:
		return ResolvedField{}, fmt.Errorf("assembly: token 0x%08x is not a field token", token)
	}
}

func (pe *File) resolveFieldRow(row uint32) (ResolvedField, error) {
	if int(row-1) >= len(pe.CLR.FieldRows) {
		return ResolvedField{}, ErrOutsideBoundary
	}
	f := pe.CLR.FieldRows[row-1]
	name, err := pe.stringAt(f.Name)
	if err != nil {
		return ResolvedField{}, err
	}
	declType := pe.declaringTypeOfFieldRow(row)
	sig, err := pe.blobAt(f.Signature)
	if err != nil {
		return ResolvedField{}, err
	}
	// FIELD signature: 0x06 byte, then the field's type.
	pos := 0
	if pos < len(sig) && sig[pos] == 0x06 {
		pos++
	}
	typ, _, _, err := pe.decodeTypeSig(sig, pos)
	if err != nil {
		return ResolvedField{}, err
	}
	return ResolvedField{DeclaringType: declType, Name: name, Type: typ}, nil
}

func (pe *File) declaringTypeOfFieldRow(row uint32) string {
	for i, td := range pe.CLR.TypeDefRows {
		start := int(td.FieldList)
		end := len(pe.CLR.FieldRows) + 1
		if i+1 < len(pe.CLR.TypeDefRows) {
			end = int(pe.CLR.TypeDefRows[i+1].FieldList)
		}
		if int(row) >= start && int(row) < end {
			name, _ := pe.typeDefFullName(td)
			return name
		}
	}
	return ""
}

// ResolveLocalVarSig resolves a StandAloneSig token (a MethodBody's
// LocalVarSigTok) into the IL type name of each local slot, in order.
func (pe *File) ResolveLocalVarSig(token uint32) ([]string, error) {
	tag, row := decodeToken(token)
	if tag != tokenTagStandAloneSig {
		return nil, fmt.Errorf("assembly: token 0x%08x is not a StandAloneSig token", token)
	}
	if int(row-1) >= len(pe.CLR.StandAloneSigRows) {
		return nil, ErrOutsideBoundary
	}
	blob, err := pe.blobAt(pe.CLR.StandAloneSigRows[row-1].Signature)
	if err != nil {
		return nil, err
	}
	if len(blob) == 0 || blob[0] != 0x07 {
		return nil, fmt.Errorf("assembly: malformed local variable signature")
	}
	pos := 1
	count, n, err := readCompressedUint(blob[pos:])
	if err != nil {
		return nil, err
	}
	pos += n

	types := make([]string, 0, count)
	for i := uint32(0); i < count; i++ {
		typ, _, next, err := pe.decodeTypeSig(blob, pos)
		if err != nil {
			return nil, err
		}
		types = append(types, typ)
		pos = next
	}
	return types, nil
}

// ResolveStringToken reads a UTF-16 literal from the #US ("User Strings")
// heap for an `ldstr` token, converting it to a Go string.
func (pe *File) ResolveStringToken(token uint32) (string, error) {
	tag, _ := decodeToken(token)
	if tag != tokenTagUserString {
		return "", fmt.Errorf("assembly: token 0x%08x is not a user-string token", token)
	}
	index := token & 0x00FFFFFF
	heap, ok := pe.CLR.MetadataStreams["#US"]
	if !ok {
		return "", ErrOutsideBoundary
	}
	blob, _, err := readCompressedBlob(heap, int(index))
	if err != nil {
		return "", err
	}
	// Trailing byte is a terminal flag, not part of the string content.
	if len(blob) > 0 && len(blob)%2 == 1 {
		blob = blob[:len(blob)-1]
	}
	units := make([]uint16, len(blob)/2)
	for i := range units {
		units[i] = uint16(blob[2*i]) | uint16(blob[2*i+1])<<8
	}
	return string(utf16.Decode(units)), nil
}

// blobAt reads a length-prefixed blob from the #Blob heap at the given heap
// index.
func (pe *File) blobAt(index uint32) ([]byte, error) {
	if index == 0 {
		return nil, nil
	}
	heap, ok := pe.CLR.MetadataStreams["#Blob"]
	if !ok {
		return nil, ErrOutsideBoundary
	}
	blob, _, err := readCompressedBlob(heap, int(index))
	return blob, err
}

// readCompressedBlob reads a ECMA-335 §II.23.2 compressed-length-prefixed
// blob starting at off within heap, returning the blob bytes and the offset
// immediately past them.
func readCompressedBlob(heap []byte, off int) ([]byte, int, error) {
	if off >= len(heap) {
		return nil, off, ErrOutsideBoundary
	}
	length, n, err := readCompressedUint(heap[off:])
	if err != nil {
		return nil, off, err
	}
	start := off + n
	end := start + int(length)
	if end > len(heap) {
		return nil, off, ErrOutsideBoundary
	}
	return heap[start:end], end, nil
}

// readCompressedUint decodes one ECMA-335 §II.23.2 compressed unsigned
// integer from the start of buf, returning its value and width in bytes.
func readCompressedUint(buf []byte) (uint32, int, error) {
	if len(buf) == 0 {
		return 0, 0, ErrOutsideBoundary
	}
	b0 := buf[0]
	switch {
	case b0&0x80 == 0:
		return uint32(b0), 1, nil
	case b0&0xC0 == 0x80:
		if len(buf) < 2 {
			return 0, 0, ErrOutsideBoundary
		}
		return (uint32(b0&0x3F) << 8) | uint32(buf[1]), 2, nil
	case b0&0xE0 == 0xC0:
		if len(buf) < 4 {
			return 0, 0, ErrOutsideBoundary
		}
		return (uint32(b0&0x1F) << 24) | (uint32(buf[1]) << 16) | (uint32(buf[2]) << 8) | uint32(buf[3]), 4, nil
	default:
		return 0, 0, fmt.Errorf("assembly: malformed compressed integer")
	}
}
