package cil

import (
	"encoding/binary"
	"fmt"
)

// EHClauseKind classifies one exception-handling clause, ECMA-335 §II.25.4.6.
type EHClauseKind uint32

const (
	EHClauseTypedCatch EHClauseKind = 0x0
	EHClauseFilter     EHClauseKind = 0x1
	EHClauseFinally    EHClauseKind = 0x2
	EHClauseFault      EHClauseKind = 0x4
)

// ExceptionHandler is one protected region: its try range, its handler
// range, and (for typed catches) the exception type token or (for filters)
// the filter's own entry offset.
type ExceptionHandler struct {
	Kind EHClauseKind

	TryOffset  uint32
	TryLength  uint32
	HandlerOffset uint32
	HandlerLength uint32

	// ClassToken is the caught type's metadata token, valid only when
	// Kind == EHClauseTypedCatch.
	ClassToken uint32

	// FilterOffset is the bytecode offset of the filter expression's first
	// instruction, valid only when Kind == EHClauseFilter.
	FilterOffset uint32
}

// readMethodDataSections reads the extra-data sections that follow a fat
// method body when CorILMethodMoreSects is set. Only the EH-table kind is
// meaningful here; other kinds (none are currently defined by ECMA-335
// beyond EHTable) are skipped via their declared section size.
func readMethodDataSections(data []byte, off uint32) ([]ExceptionHandler, error) {
	var handlers []ExceptionHandler

	for {
		if int(off) >= len(data) {
			return nil, fmt.Errorf("cil: truncated method data section at offset %d", off)
		}
		// Sections are DWORD-aligned.
		off = (off + 3) &^ 3

		kind := data[off]
		isFat := kind&corILMethodSectFatFormat != 0
		more := kind&corILMethodSectMoreSects != 0

		var sectionSize uint32
		var clauseCount int
		var clausesStart uint32

		if isFat {
			if int(off)+4 > len(data) {
				return nil, fmt.Errorf("cil: truncated fat method data section header at offset %d", off)
			}
			sizeField := binary.LittleEndian.Uint32(data[off:]) >> 8
			sectionSize = sizeField
			clausesStart = off + 4
			clauseCount = int((sectionSize - 4) / 24)
		} else {
			if int(off)+4 > len(data) {
				return nil, fmt.Errorf("cil: truncated small method data section header at offset %d", off)
			}
			sectionSize = uint32(data[off+1])
			clausesStart = off + 4
			clauseCount = int((sectionSize - 4) / 12)
		}

		if kind&corILMethodSectEHTable != 0 {
			for i := 0; i < clauseCount; i++ {
				var h ExceptionHandler
				var err error
				if isFat {
					h, err = readFatEHClause(data, clausesStart+uint32(i*24))
				} else {
					h, err = readSmallEHClause(data, clausesStart+uint32(i*12))
				}
				if err != nil {
					return nil, err
				}
				handlers = append(handlers, h)
			}
		}

		off = off + sectionSize
		if !more {
			break
		}
	}

	return handlers, nil
}

func readFatEHClause(data []byte, off uint32) (ExceptionHandler, error) {
	if int(off)+24 > len(data) {
		return ExceptionHandler{}, fmt.Errorf("cil: truncated fat EH clause at offset %d", off)
	}
	var h ExceptionHandler
	h.Kind = EHClauseKind(binary.LittleEndian.Uint32(data[off:]))
	h.TryOffset = binary.LittleEndian.Uint32(data[off+4:])
	h.TryLength = binary.LittleEndian.Uint32(data[off+8:])
	h.HandlerOffset = binary.LittleEndian.Uint32(data[off+12:])
	h.HandlerLength = binary.LittleEndian.Uint32(data[off+16:])
	classOrFilter := binary.LittleEndian.Uint32(data[off+20:])
	switch h.Kind {
	case EHClauseFilter:
		h.FilterOffset = classOrFilter
	case EHClauseTypedCatch:
		h.ClassToken = classOrFilter
	}
	return h, nil
}

func readSmallEHClause(data []byte, off uint32) (ExceptionHandler, error) {
	if int(off)+12 > len(data) {
		return ExceptionHandler{}, fmt.Errorf("cil: truncated small EH clause at offset %d", off)
	}
	var h ExceptionHandler
	h.Kind = EHClauseKind(binary.LittleEndian.Uint16(data[off:]))
	h.TryOffset = uint32(binary.LittleEndian.Uint16(data[off+2:]))
	h.TryLength = uint32(data[off+4])
	h.HandlerOffset = uint32(binary.LittleEndian.Uint16(data[off+5:]))
	h.HandlerLength = uint32(data[off+7])
	classOrFilter := binary.LittleEndian.Uint32(data[off+8:])
	switch h.Kind {
	case EHClauseFilter:
		h.FilterOffset = classOrFilter
	case EHClauseTypedCatch:
		h.ClassToken = classOrFilter
	}
	return h, nil
}
