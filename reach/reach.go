// Package reach computes the set of methods and types an assembly's entry
// point (or, for a library, every publicly visible static method) can
// actually transfer control to, so the lowering driver only spends time on
// code the output program can run.
package reach

import (
	"fmt"

	"github.com/axiom-tools/cil2cpp/assembly"
	"github.com/axiom-tools/cil2cpp/cil"
)

// MethodAttributes bits this package needs, §II.23.1.10.
const (
	methodAttrAccessMask = 0x0007
	methodAttrPublic     = 0x0006
	methodAttrStatic     = 0x0010
)

// Config seeds the worklist closure.
type Config struct {
	// EntryPointToken is the CLR header's EntryPointRVAorToken field when it
	// names a managed method token (an EXE's Main). Zero means "library
	// assembly": every public static method is a root instead.
	EntryPointToken uint32
}

type methodKey struct {
	declaringType string
	name          string
}

// Set is the closure of reachable methods and types.
type Set struct {
	methods map[methodKey]assembly.MethodInfo
	types   map[string]bool
}

// Methods returns every reachable method, in no particular order.
func (s *Set) Methods() []assembly.MethodInfo {
	out := make([]assembly.MethodInfo, 0, len(s.methods))
	for _, mi := range s.methods {
		out = append(out, mi)
	}
	return out
}

// Types returns the IL full names of every reachable type.
func (s *Set) Types() []string {
	out := make([]string, 0, len(s.types))
	for t := range s.types {
		out = append(out, t)
	}
	return out
}

// HasMethod reports whether the given declaring-type/method-name pair is in
// the closure.
func (s *Set) HasMethod(declaringType, name string) bool {
	_, ok := s.methods[methodKey{declaringType, name}]
	return ok
}

// Analyze seeds the worklist from the entry point (or every public static
// method, for a library) and closes it over call-instruction targets found
// by a cheap pre-scan of each reachable method's raw IL, plus the declaring
// and value types of every field access.
func Analyze(pe *assembly.File, cfg Config) (*Set, error) {
	methodInfos, err := pe.MethodInfos()
	if err != nil {
		return nil, fmt.Errorf("reach: resolving method defs: %w", err)
	}

	byKey := make(map[methodKey]assembly.MethodInfo, len(methodInfos))
	for _, mi := range methodInfos {
		byKey[methodKey{mi.DeclaringType, mi.Name}] = mi
	}

	set := &Set{methods: make(map[methodKey]assembly.MethodInfo), types: make(map[string]bool)}

	var worklist []methodKey
	if cfg.EntryPointToken != 0 {
		rm, err := pe.ResolveMethodToken(cfg.EntryPointToken)
		if err != nil {
			return nil, fmt.Errorf("reach: resolving entry point token 0x%08x: %w", cfg.EntryPointToken, err)
		}
		key := methodKey{rm.DeclaringType, rm.Name}
		if _, ok := byKey[key]; ok {
			worklist = append(worklist, key)
		}
	} else {
		for _, mi := range methodInfos {
			if mi.IsStatic && mi.Flags&methodAttrAccessMask == methodAttrPublic {
				worklist = append(worklist, methodKey{mi.DeclaringType, mi.Name})
			}
		}
	}

	for len(worklist) > 0 {
		key := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]

		if _, visited := set.methods[key]; visited {
			continue
		}
		mi, ok := byKey[key]
		if !ok {
			continue
		}
		set.methods[key] = mi
		set.types[key.declaringType] = true

		if mi.Body == nil {
			continue
		}
		for _, ins := range mi.Body.Instructions {
			switch ins.Op {
			case cil.Call, cil.Callvirt, cil.Newobj, cil.Jmp, cil.Ldftn, cil.Ldvirtftn:
				rm, err := pe.ResolveMethodToken(ins.Token)
				if err != nil {
					continue
				}
				set.types[rm.DeclaringType] = true
				target := methodKey{rm.DeclaringType, rm.Name}
				if _, visited := set.methods[target]; !visited {
					worklist = append(worklist, target)
				}

			case cil.Ldfld, cil.Ldflda, cil.Stfld, cil.Ldsfld, cil.Ldsflda, cil.Stsfld:
				rf, err := pe.ResolveFieldToken(ins.Token)
				if err != nil {
					continue
				}
				set.types[rf.DeclaringType] = true
				set.types[rf.Type] = true

			case cil.Castclass, cil.Isinst, cil.Box, cil.UnboxAny, cil.Newarr, cil.Ldtoken, cil.Sizeof:
				name, _, err := pe.ResolveTypeToken(ins.Token)
				if err != nil {
					continue
				}
				set.types[name] = true
			}
		}
	}

	return set, nil
}
