package mangle

import "github.com/axiom-tools/cil2cpp/ir"

type bclMethodDef struct {
	name       string
	returnType string // IL name, possibly containing T/TKey/TValue; "" means void
	params     []string
}

type bclInterfaceDef struct {
	ilName  string // open IL name, e.g. "System.Collections.Generic.IEnumerator`1"
	arity   int
	parents []string // IL names of parent interfaces, generic ones written with <T>/<TKey,TValue>
	methods []bclMethodDef
}

// bclCatalogue is the closed set of well-known BCL interfaces the core can
// synthesize a minimal proxy type for when a referenced closed form was
// never loaded from metadata.
var bclCatalogue = []bclInterfaceDef{
	{
		ilName:  "System.IDisposable",
		methods: []bclMethodDef{{name: "Dispose"}},
	},
	{
		ilName:  "System.IAsyncDisposable",
		methods: []bclMethodDef{{name: "DisposeAsync", returnType: "System.Object"}},
	},
	{
		ilName:  "System.ICloneable",
		methods: []bclMethodDef{{name: "Clone", returnType: "System.Object"}},
	},
	{
		ilName:  "System.IComparable",
		methods: []bclMethodDef{{name: "CompareTo", returnType: "System.Int32", params: []string{"System.Object"}}},
	},
	{
		ilName:  "System.IComparable`1",
		arity:   1,
		methods: []bclMethodDef{{name: "CompareTo", returnType: "System.Int32", params: []string{"T"}}},
	},
	{
		ilName:  "System.Collections.IEnumerable",
		methods: []bclMethodDef{{name: "GetEnumerator", returnType: "System.Collections.IEnumerator"}},
	},
	{
		ilName:  "System.Collections.IEnumerator",
		methods: []bclMethodDef{
			{name: "MoveNext", returnType: "System.Boolean"},
			{name: "get_Current", returnType: "System.Object"},
			{name: "Reset"},
		},
	},
	{
		ilName:  "System.Collections.Generic.IEnumerable`1",
		arity:   1,
		parents: []string{"System.Collections.IEnumerable"},
		methods: []bclMethodDef{
			{name: "GetEnumerator", returnType: "System.Collections.Generic.IEnumerator`1<T>"},
		},
	},
	{
		ilName:  "System.Collections.Generic.IEnumerator`1",
		arity:   1,
		parents: []string{"System.Collections.IEnumerator", "System.IDisposable"},
		methods: []bclMethodDef{{name: "get_Current", returnType: "T"}},
	},
	{
		ilName:  "System.Collections.ICollection",
		parents: []string{"System.Collections.IEnumerable"},
		methods: []bclMethodDef{
			{name: "get_Count", returnType: "System.Int32"},
			{name: "CopyTo", params: []string{"System.Array", "System.Int32"}},
		},
	},
	{
		ilName:  "System.Collections.Generic.ICollection`1",
		arity:   1,
		parents: []string{"System.Collections.Generic.IEnumerable`1<T>"},
		methods: []bclMethodDef{
			{name: "get_Count", returnType: "System.Int32"},
			{name: "Add", params: []string{"T"}},
			{name: "Remove", returnType: "System.Boolean", params: []string{"T"}},
		},
	},
	{
		ilName:  "System.Collections.Generic.IReadOnlyCollection`1",
		arity:   1,
		parents: []string{"System.Collections.Generic.IEnumerable`1<T>"},
		methods: []bclMethodDef{{name: "get_Count", returnType: "System.Int32"}},
	},
	{
		ilName: "System.Collections.Generic.IReadOnlyList`1",
		arity:  1,
		parents: []string{
			"System.Collections.Generic.IReadOnlyCollection`1<T>",
			"System.Collections.Generic.IEnumerable`1<T>",
			"System.Collections.IEnumerable",
		},
		methods: []bclMethodDef{{name: "get_Item", returnType: "T", params: []string{"System.Int32"}}},
	},
}

func lookupBCLDef(openILName string) (bclInterfaceDef, bool) {
	for _, d := range bclCatalogue {
		if d.ilName == openILName {
			return d, true
		}
	}
	return bclInterfaceDef{}, false
}

// SynthesizeBCLProxy builds a minimal IR type for a closed instance of a
// well-known BCL interface (e.g. "System.Collections.Generic.IEnumerator`1
// <System.Int32>"), reporting false if the open form isn't in the
// catalogue or the argument count doesn't match its arity.
func SynthesizeBCLProxy(closedFormILName string) (*ir.Type, bool) {
	open, args := splitGenericInstance(closedFormILName)
	def, ok := lookupBCLDef(open)
	if !ok || len(args) != def.arity {
		return nil, false
	}

	bindings := bindArgs(def.arity, args)
	mangled := Type(closedFormILName)
	t := ir.NewType(closedFormILName, mangled)
	t.Flags = ir.TypeFlags{IsInterface: true, IsRuntimeProvided: true}
	if def.arity > 0 {
		t.Flags.IsGenericInstance = true
		t.GenericArgs = args
	}

	for _, parent := range def.parents {
		resolved := SubstitutePlaceholders(parent, bindings)
		t.Interfaces = append(t.Interfaces, Type(resolved))
	}

	for _, md := range def.methods {
		retIL := md.returnType
		if retIL == "" {
			retIL = "System.Void"
		}
		retIL = SubstitutePlaceholders(retIL, bindings)
		retMangled := Resolve(retIL, isKnownValueType(retIL))

		m := ir.NewMethod(md.name, Method(mangled, md.name, retMangled))
		m.ReturnType = retMangled
		m.IsAbstract = true
		for i, p := range md.params {
			pil := SubstitutePlaceholders(p, bindings)
			m.Params = append(m.Params, ir.Param{
				Name: paramName(i),
				Type: Resolve(pil, isKnownValueType(pil)),
			})
		}
		t.Methods = append(t.Methods, m)
	}

	return t, true
}

func bindArgs(arity int, args []string) map[string]string {
	bindings := make(map[string]string, arity)
	switch arity {
	case 1:
		bindings["T"] = args[0]
	case 2:
		bindings["TKey"] = args[0]
		bindings["TValue"] = args[1]
	}
	return bindings
}

func isKnownValueType(ilName string) bool {
	_, isPrimitive := Primitive(ilName)
	return isPrimitive && ilName != "System.Void"
}

func paramName(i int) string {
	names := []string{"arg0", "arg1", "arg2", "arg3"}
	if i < len(names) {
		return names[i]
	}
	return "arg"
}
