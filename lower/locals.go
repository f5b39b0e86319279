package lower

import "github.com/axiom-tools/cil2cpp/ir"

func lowerLdarg(s *state, index int) error {
	if index < 0 || index >= len(s.method.Params) {
		return errIndexOutOfRange("arg", index)
	}
	p := s.method.Params[index]
	expr := p.Name
	if p.Type != "" && p.Name == "this" {
		expr = "this"
	}
	s.pushExpr(expr, p.Type)
	return nil
}

func lowerLdarga(s *state, index int) error {
	if index < 0 || index >= len(s.method.Params) {
		return errIndexOutOfRange("arg", index)
	}
	p := s.method.Params[index]
	s.pushExpr("(&"+p.Name+")", p.Type+"*")
	return nil
}

func lowerStarg(s *state, index int) error {
	if index < 0 || index >= len(s.method.Params) {
		return errIndexOutOfRange("arg", index)
	}
	v := s.pop()
	p := s.method.Params[index]
	s.emit(&ir.Assign{Target: p.Name, Value: v.Expr})
	return nil
}

func lowerLdloc(s *state, index int) error {
	if index < 0 || index >= len(s.method.Locals) {
		return errIndexOutOfRange("local", index)
	}
	l := s.method.Locals[index]
	s.pushExpr(l.Name, l.Type)
	return nil
}

func lowerLdloca(s *state, index int) error {
	if index < 0 || index >= len(s.method.Locals) {
		return errIndexOutOfRange("local", index)
	}
	l := s.method.Locals[index]
	s.pushExpr("(&"+l.Name+")", l.Type+"*")
	return nil
}

func lowerStloc(s *state, index int) error {
	if index < 0 || index >= len(s.method.Locals) {
		return errIndexOutOfRange("local", index)
	}
	v := s.pop()
	l := s.method.Locals[index]
	s.emit(&ir.Assign{Target: l.Name, Value: v.Expr})
	return nil
}

func errIndexOutOfRange(kind string, index int) error {
	return &indexError{kind: kind, index: index}
}

type indexError struct {
	kind  string
	index int
}

func (e *indexError) Error() string {
	return e.kind + " index " + itoa(e.index) + " out of range"
}
