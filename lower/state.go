package lower

import (
	"github.com/axiom-tools/cil2cpp/icall"
	"github.com/axiom-tools/cil2cpp/ir"
)

// mergeVar records a stack-merge target minted for a control-flow join
// (§4.2, "Stack-merge variables").
type mergeVar struct {
	name string
	typ  string
}

// state is the per-method lowering context: the simulated evaluation stack,
// region bookkeeping, and the handful of single-use flags the driver
// contract names (pendingVolatile, constrainedType).
type state struct {
	method   *ir.Method
	module   *ir.Module
	resolver Resolver
	icalls   *icall.Registry
	cfg      Config
	diag     Diagnostics

	block *ir.BasicBlock

	stack []ir.StackEntry

	// savedStack holds the stack snapshot to restore when lowering resumes
	// at a label reached only through non-local control flow (§4.2).
	savedStack map[string][]ir.StackEntry

	mergeVars map[string]*mergeVar // label name -> merge variable

	pendingVolatile bool
	constrainedType string // "" when no constrained prefix is pending

	sequencePoints []SequencePoint
	currentDebug   *ir.DebugInfo

	declaringType string // the IL full name of the method's declaring type, for constrained-dispatch/box lowering
}

func newState(method *ir.Method, module *ir.Module, resolver Resolver, icalls *icall.Registry, cfg Config, diag Diagnostics, declaringType string, seqPoints []SequencePoint) *state {
	return &state{
		method:         method,
		module:         module,
		resolver:       resolver,
		icalls:         icalls,
		cfg:            cfg,
		diag:           diag,
		block:          method.Body(),
		savedStack:     make(map[string][]ir.StackEntry),
		mergeVars:      make(map[string]*mergeVar),
		declaringType:  declaringType,
		sequencePoints: seqPoints,
	}
}

func (s *state) push(e ir.StackEntry)      { s.stack = append(s.stack, e) }
func (s *state) pushExpr(expr, typ string)  { s.push(ir.NewStackEntry(expr, typ)) }
func (s *state) empty() bool                { return len(s.stack) == 0 }

func (s *state) pop() ir.StackEntry {
	if len(s.stack) == 0 {
		return ir.StackEntry{}
	}
	top := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
	return top
}

func (s *state) popN(n int) []ir.StackEntry {
	out := make([]ir.StackEntry, n)
	for i := n - 1; i >= 0; i-- {
		out[i] = s.pop()
	}
	return out
}

func (s *state) freshTemp() string { return s.method.FreshTemp() }

// emit appends instr to the current block, attaching debug info if one is
// active.
func (s *state) emit(instr ir.Instruction) {
	if s.currentDebug != nil {
		d := *s.currentDebug
		instr.SetDebugInfo(&d)
	}
	s.block.Append(instr)
}

// updateDebugInfo refreshes currentDebug for the instruction at ilOffset,
// per §9's "last sequence point at or below the current offset" rule.
func (s *state) updateDebugInfo(ilOffset uint32) {
	if !s.cfg.IsDebug {
		return
	}
	sp, ok := sequencePointAt(s.sequencePoints, ilOffset)
	if !ok {
		return
	}
	s.currentDebug = &ir.DebugInfo{File: sp.File, Line: sp.Line, Column: sp.Column, ILOffset: ilOffset}
}

// noteTemp records a temporary's inferred type when its live range may cross
// a label, satisfying invariant 5 (TempVarTypes assigns a type to every
// temporary used across scope boundaries).
func (s *state) noteTemp(name, typ string) {
	if typ == "" {
		return
	}
	s.method.TempVarTypes[name] = typ
}

// snapshotStack saves the current stack under a label name for restoration
// when control reaches that label after an unconditional terminator.
func (s *state) snapshotStack(label string) {
	cp := make([]ir.StackEntry, len(s.stack))
	copy(cp, s.stack)
	s.savedStack[label] = cp
}

func (s *state) restoreOrClear(label string) {
	if saved, ok := s.savedStack[label]; ok {
		s.stack = append([]ir.StackEntry(nil), saved...)
		return
	}
	s.stack = nil
}
