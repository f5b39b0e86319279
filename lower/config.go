// Package lower is the IL→IR lowering engine: for each reachable method it
// drains a cil.Instruction stream, simulates the evaluation stack, and
// appends ir.Instruction values to the method's basic block.
package lower

// Config is the core's external configuration contract (§6): debug info
// emission, and the sets of runtime-owned types the proxy synthesis and
// reachability layers must not re-emit.
type Config struct {
	IsDebug                      bool
	EmitLineDirectives           bool
	TargetedRuntimeProvidedTypes map[string]bool
	CoreRuntimeTypes             map[string]bool
}

// Diagnostics receives soft-failure warnings emitted during lowering. A
// warning names the offending opcode, its bytecode offset, and the mangled
// method name, per §6's "Outputs" contract.
type Diagnostics interface {
	Warnf(format string, args ...any)
}

// NopDiagnostics discards every warning; useful for tests that only assert
// on the emitted IR.
type NopDiagnostics struct{}

func (NopDiagnostics) Warnf(string, ...any) {}
