package lower

import (
	"strings"

	"github.com/axiom-tools/cil2cpp/ir"
	"github.com/axiom-tools/cil2cpp/mangle"
)

// Disambiguate runs the module-wide overload disambiguation pass (§4.1,
// invariant 1): every type's methods are grouped by their current mangled
// name; groups with more than one member are each renamed by appending a
// parameter-derived suffix (mangle.Disambiguate), and the final name is
// recorded in Module.DisambiguatedMethodNames so the fix-up pass can
// rewrite call sites that were lowered before the rename was known.
func Disambiguate(module *ir.Module) {
	for _, t := range module.Types {
		for originalName, methods := range t.MethodsByName() {
			if len(methods) < 2 {
				continue
			}
			for _, m := range methods {
				final := mangle.Disambiguate(originalName, m.ILParams)
				key := t.Mangled + "|" + originalName + "|" + strings.Join(m.ILParams, ",")
				module.DisambiguatedMethodNames[key] = final
				m.Name = final
			}
		}
	}
	FixupDeferredCalls(module)
}

// FixupDeferredCalls rewrites Call instructions whose FunctionName was
// provisional at lowering time (DeferredDisambigKey non-empty) to the
// final name chosen by Disambiguate, when that call's target ended up
// renamed. Calls whose target was never ambiguous keep their provisional
// (and already final) name.
func FixupDeferredCalls(module *ir.Module) {
	for _, t := range module.Types {
		for _, m := range t.Methods {
			for _, instr := range m.AllInstructions() {
				call, ok := instr.(*ir.Call)
				if !ok || call.DeferredDisambigKey == "" {
					continue
				}
				if final, ok := module.DisambiguatedMethodNames[call.DeferredDisambigKey]; ok {
					call.FunctionName = final
				}
			}
		}
	}
}
