package assembly

// TypeAttributes bits relevant to lowering, §II.23.1.15.
const (
	typeAttrInterface = 0x00000020
)

// FieldAttributes bits relevant to lowering, §II.23.1.5.
const (
	fieldAttrStatic = 0x0010
)

// FieldInfo is one resolved Field row owned by a TypeInfo.
type FieldInfo struct {
	Name     string
	Type     string
	IsStatic bool
}

// TypeInfo is one resolved TypeDef row: its full name, the attribute facets
// the lowering driver and IRType need, and the fields it owns.
type TypeInfo struct {
	FullName    string
	Namespace   string
	Name        string
	IsInterface bool
	IsValueType bool
	Fields      []FieldInfo
}

// TypeInfos resolves every TypeDef row into a TypeInfo, including its owned
// Field rows (the same contiguous-run convention MethodInfos uses for
// MethodList, applied here to FieldList, §II.22.37).
func (pe *File) TypeInfos() ([]TypeInfo, error) {
	var out []TypeInfo
	fieldCount := len(pe.CLR.FieldRows)

	for typeIdx, td := range pe.CLR.TypeDefRows {
		fullName, err := pe.typeDefFullName(td)
		if err != nil {
			return nil, err
		}
		ns, err := pe.stringAt(td.TypeNamespace)
		if err != nil {
			return nil, err
		}
		name, err := pe.stringAt(td.TypeName)
		if err != nil {
			return nil, err
		}

		ti := TypeInfo{
			FullName:    fullName,
			Namespace:   ns,
			Name:        name,
			IsInterface: td.Flags&typeAttrInterface != 0,
			IsValueType: pe.extendsSystemValueType(td),
		}

		start := int(td.FieldList)
		end := fieldCount + 1
		if typeIdx+1 < len(pe.CLR.TypeDefRows) {
			end = int(pe.CLR.TypeDefRows[typeIdx+1].FieldList)
		}
		for row := start; row >= 1 && row < end; row++ {
			if row-1 < 0 || row-1 >= fieldCount {
				break
			}
			token := uint32(tokenTagField)<<24 | uint32(row)
			f, err := pe.ResolveFieldToken(token)
			if err != nil {
				return nil, err
			}
			fr := pe.CLR.FieldRows[row-1]
			ti.Fields = append(ti.Fields, FieldInfo{
				Name:     f.Name,
				Type:     f.Type,
				IsStatic: fr.Flags&fieldAttrStatic != 0,
			})
		}

		out = append(out, ti)
	}
	return out, nil
}
