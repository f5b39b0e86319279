package assembly

import (
	"fmt"

	"github.com/axiom-tools/cil2cpp/cil"
)

// ParamInfo is one formal parameter, resolved from the Param table.
type ParamInfo struct {
	Name     string
	Sequence uint16 // 0 is the return value slot; 1..N are the formal args
}

// MethodInfo is one resolved MethodDef: its declaring type, IL name,
// formal parameters, and (when it has a body rather than only a P/Invoke
// or abstract declaration) its decoded instruction stream.
type MethodInfo struct {
	DeclaringType string // IL full name, "Namespace.TypeName"
	Name          string
	Params        []ParamInfo
	Flags         uint16 // MethodAttributes, §II.23.1.10
	ImplFlags     uint16 // MethodImplAttributes, §II.23.1.10

	IsStatic   bool
	IsAbstract bool
	IsVirtual  bool

	Body *cil.MethodBody // nil for abstract methods and methods with RVA == 0
}

// MethodInfos resolves every MethodDef row into a MethodInfo, decoding its
// IL body via package cil when the method has one. It is the bridge between
// the metadata tables parsed in dotnet.go/dotnet_metadata_tables.go and the
// lowering engine, which drains one method at a time.
func (pe *File) MethodInfos() ([]MethodInfo, error) {
	if len(pe.CLR.TypeDefRows) == 0 {
		return nil, nil
	}

	var out []MethodInfo
	methodCount := len(pe.CLR.MethodDefRows)

	for typeIdx, td := range pe.CLR.TypeDefRows {
		fullName, err := pe.typeDefFullName(td)
		if err != nil {
			return nil, err
		}

		start := int(td.MethodList)
		end := methodCount + 1
		if typeIdx+1 < len(pe.CLR.TypeDefRows) {
			end = int(pe.CLR.TypeDefRows[typeIdx+1].MethodList)
		}
		if start < 1 {
			continue
		}

		for row := start; row < end; row++ {
			if row-1 < 0 || row-1 >= methodCount {
				return nil, fmt.Errorf("assembly: method row %d out of range for type %q", row, fullName)
			}
			md := pe.CLR.MethodDefRows[row-1]

			name, err := pe.stringAt(md.Name)
			if err != nil {
				return nil, fmt.Errorf("assembly: resolving name of method row %d: %w", row, err)
			}

			mi := MethodInfo{
				DeclaringType: fullName,
				Name:          name,
				Flags:         md.Flags,
				ImplFlags:     md.ImplFlags,
				IsStatic:      md.Flags&methodAttrStatic != 0,
				IsAbstract:    md.Flags&methodAttrAbstract != 0,
				IsVirtual:     md.Flags&methodAttrVirtual != 0,
			}
			mi.Params = pe.paramsForMethod(row, methodCount)

			if md.RVA != 0 {
				off := pe.GetOffsetFromRva(md.RVA)
				body, err := cil.ReadMethodBody(pe.data, off)
				if err != nil {
					return nil, fmt.Errorf("assembly: decoding body of %s.%s: %w", fullName, name, err)
				}
				mi.Body = body
			}

			out = append(out, mi)
		}
	}

	return out, nil
}

// MethodAttributes bits relevant to lowering, §II.23.1.10.
const (
	methodAttrStatic   = 0x0010
	methodAttrVirtual  = 0x0040
	methodAttrAbstract = 0x0400
)

func (pe *File) typeDefFullName(td TypeDefTableRow) (string, error) {
	name, err := pe.stringAt(td.TypeName)
	if err != nil {
		return "", err
	}
	ns, err := pe.stringAt(td.TypeNamespace)
	if err != nil {
		return "", err
	}
	if ns == "" {
		return name, nil
	}
	return ns + "." + name, nil
}

// paramsForMethod collects the Param rows belonging to MethodDef row
// methodRow (1-based), bounded by the next method's ParamList per the same
// contiguous-run convention TypeDef.MethodList uses.
func (pe *File) paramsForMethod(methodRow, methodCount int) []ParamInfo {
	if methodRow-1 < 0 || methodRow-1 >= len(pe.CLR.MethodDefRows) {
		return nil
	}
	md := pe.CLR.MethodDefRows[methodRow-1]
	start := int(md.ParamList)
	if start < 1 {
		return nil
	}
	end := len(pe.CLR.ParamRows) + 1
	if methodRow < methodCount {
		end = int(pe.CLR.MethodDefRows[methodRow].ParamList)
	}

	var params []ParamInfo
	for row := start; row < end; row++ {
		if row-1 < 0 || row-1 >= len(pe.CLR.ParamRows) {
			break
		}
		pr := pe.CLR.ParamRows[row-1]
		name, err := pe.stringAt(pr.Name)
		if err != nil {
			continue
		}
		params = append(params, ParamInfo{Name: name, Sequence: pr.Sequence})
	}
	return params
}

// stringAt reads a null-terminated UTF-8 string from the #Strings heap at
// the given heap index.
func (pe *File) stringAt(index uint32) (string, error) {
	if index == 0 {
		return "", nil
	}
	heap, ok := pe.CLR.MetadataStreams["#Strings"]
	if !ok {
		return "", ErrOutsideBoundary
	}
	if int(index) >= len(heap) {
		return "", ErrOutsideBoundary
	}
	end := int(index)
	for end < len(heap) && heap[end] != 0 {
		end++
	}
	return string(heap[index:end]), nil
}
