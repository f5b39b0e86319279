package lower

import (
	"sort"

	"github.com/axiom-tools/cil2cpp/cil"
)

// ehEventKind is one of the event kinds §4.2 derives from exception-handler
// metadata at the offsets they open or close.
type ehEventKind int

const (
	evHandlerEnd ehEventKind = iota
	evTryBegin
	evCatchBegin
	evFilterBegin
	evFilterHandlerBegin
	evFinallyBegin
)

// ehEvent is one derived event, carrying the catch type when applicable.
type ehEvent struct {
	kind    ehEventKind
	excType string // set for evCatchBegin; "" means catch-all
}

// buildExceptionEvents derives the per-offset event lists described in
// §4.2: "For each protected region (try/catch/finally/filter) four event
// kinds are derived from metadata and stored at their opening offsets...
// When several events occupy one offset they are emitted in the order:
// HandlerEnd → TryBegin → Catch/FilterBegin → FinallyBegin. A HandlerEnd is
// suppressed when another handler for the same try follows at the same
// offset (chained catches)."
func buildExceptionEvents(handlers []cil.ExceptionHandler, resolver Resolver) map[uint32][]ehEvent {
	events := make(map[uint32][]ehEvent)
	suppressedHandlerEnd := make(map[uint32]bool)

	// Group clauses sharing a try region to detect chained catches: if one
	// clause's handler ends exactly where the next clause (same try) opens,
	// the HandlerEnd at that shared offset is suppressed.
	byTry := make(map[[2]uint32][]cil.ExceptionHandler)
	for _, h := range handlers {
		key := [2]uint32{h.TryOffset, h.TryLength}
		byTry[key] = append(byTry[key], h)
	}
	for _, clauses := range byTry {
		sort.Slice(clauses, func(i, j int) bool { return clauses[i].HandlerOffset < clauses[j].HandlerOffset })
		for i := 0; i < len(clauses)-1; i++ {
			end := clauses[i].HandlerOffset + clauses[i].HandlerLength
			if end == clauses[i+1].HandlerOffset {
				suppressedHandlerEnd[end] = true
			}
		}
	}

	openedTry := make(map[[2]uint32]bool)
	for _, h := range handlers {
		tryKey := [2]uint32{h.TryOffset, h.TryLength}
		if !openedTry[tryKey] {
			openedTry[tryKey] = true
			events[h.TryOffset] = append(events[h.TryOffset], ehEvent{kind: evTryBegin})
		}

		switch h.Kind {
		case cil.EHClauseTypedCatch:
			excType := ""
			if h.ClassToken != 0 {
				name, _, err := resolver.ResolveTypeToken(h.ClassToken)
				if err == nil {
					excType = name
				}
			}
			events[h.HandlerOffset] = append(events[h.HandlerOffset], ehEvent{kind: evCatchBegin, excType: excType})
		case cil.EHClauseFilter:
			events[h.FilterOffset] = append(events[h.FilterOffset], ehEvent{kind: evFilterBegin})
			events[h.HandlerOffset] = append(events[h.HandlerOffset], ehEvent{kind: evFilterHandlerBegin})
		case cil.EHClauseFinally, cil.EHClauseFault:
			events[h.HandlerOffset] = append(events[h.HandlerOffset], ehEvent{kind: evFinallyBegin})
		}

		handlerEnd := h.HandlerOffset + h.HandlerLength
		if !suppressedHandlerEnd[handlerEnd] {
			events[handlerEnd] = append(events[handlerEnd], ehEvent{kind: evHandlerEnd})
		}
	}

	for off, evs := range events {
		sort.SliceStable(evs, func(i, j int) bool { return evs[i].kind < evs[j].kind })
		events[off] = evs
	}
	return events
}

// scanBranchTargets collects every offset any branch, conditional branch,
// leave, or switch arm in instrs targets — the first scan §4.2 requires
// before emitting labels.
func scanBranchTargets(instrs []cil.Instruction) map[uint32]bool {
	targets := make(map[uint32]bool)
	for _, ins := range instrs {
		if ins.Op.IsAnyBranch() {
			if ins.Op == cil.SwitchOp {
				for _, t := range ins.SwitchTargets {
					targets[t] = true
				}
				continue
			}
			targets[ins.BranchTarget] = true
		}
	}
	return targets
}

// enclosingTryEnd returns the TryOffset+TryLength of the narrowest try
// region containing offset. lowerLeave calls it but does not use the
// result.
func enclosingTryEnd(handlers []cil.ExceptionHandler, offset uint32) (uint32, bool) {
	var bestLen uint32
	var bestEnd uint32
	found := false
	for _, h := range handlers {
		if offset >= h.TryOffset && offset < h.TryOffset+h.TryLength {
			if !found || h.TryLength < bestLen {
				bestLen = h.TryLength
				bestEnd = h.TryOffset + h.TryLength
				found = true
			}
		}
	}
	return bestEnd, found
}
