// Package compiler wires the assembly metadata reader, the lowering
// engine, and the overload-disambiguation pass into one pass over an
// ingested .NET assembly: metadata tables in, a lowered ir.Module out.
package compiler

import (
	"fmt"
	"sync"

	"github.com/axiom-tools/cil2cpp/assembly"
	"github.com/axiom-tools/cil2cpp/icall"
	"github.com/axiom-tools/cil2cpp/ir"
	"github.com/axiom-tools/cil2cpp/lower"
	"github.com/axiom-tools/cil2cpp/mangle"
	"github.com/axiom-tools/cil2cpp/reach"
)

// ECMA-335 table tags used to build tokens from table row numbers, §II.22.
const (
	tagTypeDef   = 0x02
	tagField     = 0x04
	tagMethodDef = 0x06
)

// pending is one method shell awaiting its body-lowering pass.
type pending struct {
	t    *ir.Type
	m    *ir.Method
	body *assembly.MethodInfo
}

// Build walks an ingested assembly's TypeDef/MethodDef/Field tables into a
// lowered ir.Module: one ir.Type per TypeDef row (with its field list),
// one ir.Method shell per MethodDef row (NewMethodShell), then one lowering
// pass per reachable method body (LowerMethod) before the module-wide
// disambiguation and call-site fix-up pass. jobs bounds how many method
// bodies are lowered concurrently (§5's method-parallel model); 1 lowers
// serially. reachable, when non-nil, restricts lowering to the methods in
// its closure (§4.7); a nil reachable lowers every method body.
func Build(pe *assembly.File, icalls *icall.Registry, cfg lower.Config, diag lower.Diagnostics, jobs int, reachable *reach.Set) (*ir.Module, error) {
	module := ir.NewModule()

	typeInfos, err := pe.TypeInfos()
	if err != nil {
		return nil, fmt.Errorf("compiler: resolving type defs: %w", err)
	}

	byName := make(map[string]*ir.Type, len(typeInfos))
	for _, ti := range typeInfos {
		mangled := mangle.Type(ti.FullName)
		t := ir.NewType(ti.FullName, mangled)
		t.Namespace = ti.Namespace
		t.Flags.IsInterface = ti.IsInterface
		t.Flags.IsValueType = ti.IsValueType
		for _, f := range ti.Fields {
			t.Fields = append(t.Fields, ir.Field{
				Name:     f.Name,
				Type:     mangle.Resolve(f.Type, false),
				IsStatic: f.IsStatic,
			})
		}
		module.AddType(t)
		byName[ti.FullName] = t
	}

	methodInfos, err := pe.MethodInfos()
	if err != nil {
		return nil, fmt.Errorf("compiler: resolving method defs: %w", err)
	}

	// Build every method shell first (§3's "Lifecycles": shells, then
	// vtables, then bodies) so that ldvirtftn's vtable-slot lookups during
	// the body pass can see every sibling method's final mangled name.
	var work []pending

	methodRow := 0
	for _, mi := range methodInfos {
		methodRow++
		t, ok := byName[mi.DeclaringType]
		if !ok {
			continue
		}

		retIL, paramILTypes, err := methodSignature(pe, methodRow)
		if err != nil {
			if diag != nil {
				diag.Warnf("compiler: signature of %s.%s: %v", mi.DeclaringType, mi.Name, err)
			}
			continue
		}

		shell, err := lower.NewMethodShell(t.Mangled, toAssemblyMethodInfo(mi), retIL, paramILTypes, pe)
		if err != nil {
			if diag != nil {
				diag.Warnf("compiler: building shell for %s.%s: %v", mi.DeclaringType, mi.Name, err)
			}
			continue
		}
		t.Methods = append(t.Methods, shell)
		t.Vtable = append(t.Vtable, ir.VtableEntry{Slot: len(t.Vtable), MethodName: shell.Name})

		if reachable != nil && !reachable.HasMethod(mi.DeclaringType, mi.Name) {
			continue
		}

		miCopy := mi
		work = append(work, pending{t: t, m: shell, body: &miCopy})
	}

	if jobs < 1 {
		jobs = 1
	}
	if err := lowerConcurrently(work, module, pe, icalls, cfg, diag, jobs); err != nil {
		return nil, err
	}

	lower.Disambiguate(module)
	return module, nil
}

// lowerConcurrently fans a bounded pool of workers out over work, each
// lowering one method body at a time. Every worker lowers into its own
// method's goroutine-local basic block slice; the only state shared across
// workers is ir.Module's interning pools, which guard themselves with an
// internal mutex (see ir.Module.InternString et al.), matching §5's
// "serializing writes to ir.Module's shared pools... behind a single
// sync.Mutex" without serializing the lowering work itself.
func lowerConcurrently(work []pending, module *ir.Module, pe *assembly.File, icalls *icall.Registry, cfg lower.Config, diag lower.Diagnostics, jobs int) error {
	indices := make(chan int, len(work))
	for i := range work {
		indices <- i
	}
	close(indices)

	errs := make(chan error, len(work))
	var wg sync.WaitGroup

	for w := 0; w < jobs; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				p := work[i]
				if p.body.Body == nil {
					continue
				}
				if err := lower.LowerMethod(p.m, module, pe, icalls, cfg, diag, p.t.Mangled, p.body.Body, nil); err != nil {
					errs <- fmt.Errorf("compiler: lowering %s.%s: %w", p.t.ILFullName, p.m.ILName, err)
				}
			}
		}()
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// methodSignature decodes the return and parameter IL types for the
// methodRow'th MethodDef row (1-based, in table order) by resolving the
// equivalent MethodDef token through the metadata reader's own signature
// decoder.
func methodSignature(pe *assembly.File, methodRow int) (ret string, params []string, err error) {
	token := uint32(tagMethodDef)<<24 | uint32(methodRow)
	rm, err := pe.ResolveMethodToken(token)
	if err != nil {
		return "", nil, err
	}
	return rm.ReturnType, rm.ParamTypes, nil
}

// toAssemblyMethodInfo adapts a MethodInfos() entry to the assembly.MethodInfo
// shape NewMethodShell expects (identical type; kept as a named conversion
// point in case the two diverge later).
func toAssemblyMethodInfo(mi assembly.MethodInfo) assembly.MethodInfo { return mi }
