// Package ir is the IR data model: StackEntry, the IRInstruction tagged
// union, IRBasicBlock, IRMethod, IRType and IRModule, plus the invariants
// the rest of the toolchain relies on when building and printing them.
package ir

import "strings"

// StackEntry is a value on the simulated evaluation stack: a printable C++
// expression plus an optional inferred C++ type. Either field may be the
// zero value; Type is absent when the lowering engine could not infer one
// (e.g. a literal that only gets a type from its consumer).
type StackEntry struct {
	Expr string
	Type string // C++ type, or "" if unknown
}

// NewStackEntry builds a StackEntry with both fields set.
func NewStackEntry(expr, typ string) StackEntry {
	return StackEntry{Expr: expr, Type: typ}
}

// IsPointer reports whether the entry's tracked type is a pointer type.
func (s StackEntry) IsPointer() bool {
	return strings.HasSuffix(strings.TrimSpace(s.Type), "*")
}

// IsAddressOf reports whether the entry's expression is the address of an
// lvalue (begins with '&').
func (s StackEntry) IsAddressOf() bool {
	return strings.HasPrefix(strings.TrimSpace(s.Expr), "&")
}

// IsNullLiteral reports whether the entry is a null-pointer constant.
func (s StackEntry) IsNullLiteral() bool {
	switch strings.TrimSpace(s.Expr) {
	case "nullptr", "NULL", "0":
		return true
	default:
		return false
	}
}

// IsValidMergeTarget reports whether the entry's expression is a legal C++
// lvalue that a stack-merge variable assignment may target. Numeric
// literals, nullptr, string literals, casts, and address-of expressions are
// rejected, matching the merge-variable invariant in the lowering spec.
func (s StackEntry) IsValidMergeTarget() bool {
	e := strings.TrimSpace(s.Expr)
	if e == "" {
		return false
	}
	if s.IsNullLiteral() || s.IsAddressOf() {
		return false
	}
	if strings.HasPrefix(e, "\"") {
		return false
	}
	if strings.HasPrefix(e, "(") && strings.Contains(e, ")") {
		// A cast expression such as "(int32_t)x".
		return false
	}
	if isNumericLiteral(e) {
		return false
	}
	return true
}

func isNumericLiteral(s string) bool {
	if s == "" {
		return false
	}
	i := 0
	if s[0] == '-' || s[0] == '+' {
		i++
	}
	if i >= len(s) {
		return false
	}
	if c := s[i]; (c < '0' || c > '9') && c != '.' {
		return false
	}
	for ; i < len(s); i++ {
		c := s[i]
		isDigitOrHexOrSuffix := (c >= '0' && c <= '9') ||
			(c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') ||
			c == 'x' || c == 'X' || c == 'u' || c == 'U' ||
			c == 'l' || c == 'L' || c == '.' || c == 'f' || c == 'F'
		if !isDigitOrHexOrSuffix {
			return false
		}
	}
	return true
}
