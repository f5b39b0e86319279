// Package backend prints a lowered ir.Module as portable C++ source: one
// forward declaration, field list, and set of method bodies per IRType,
// walked in stable module.Types order and rendered through a type switch
// over ir.Instruction, following the write-section-to-a-strings.Builder
// idiom common to IR-to-text backends.
package backend

import (
	"errors"
	"fmt"
	"strings"

	"github.com/axiom-tools/cil2cpp/ir"
)

// ErrUnresolvedDisambiguation is returned when a Call instruction still
// carries a DeferredDisambigKey after the disambiguation pass has run,
// meaning the fix-up pass never resolved it to a final mangled name.
var ErrUnresolvedDisambiguation = errors.New("backend: unresolved call disambiguation key")

// Config controls backend output, matching spec.md §6's external
// interface (Config.emit_line_directives). It has no debug toggle of its
// own; IsDebug lives on lower.Config.
type Config struct {
	EmitLineDirectives bool
}

// printer accumulates output across one Print call.
type printer struct {
	cfg Config
	sb  strings.Builder
}

func (p *printer) emit(line string) {
	p.sb.WriteString(line)
	p.sb.WriteByte('\n')
}

func (p *printer) emitf(format string, args ...any) {
	p.emit(fmt.Sprintf(format, args...))
}

// Print renders a lowered module as one C++ translation unit.
func Print(module *ir.Module, cfg Config) (string, error) {
	p := &printer{cfg: cfg}

	p.writeHeader()
	p.writeStringPool(module)
	p.writeBlobPool(module)
	p.writeTypeInfoRegistry(module)

	for _, t := range module.Types {
		p.writeForwardDecl(t)
	}
	p.emit("")

	for _, t := range module.Types {
		p.writeTypeDefinition(t)
	}

	for _, t := range module.Types {
		for _, m := range t.Methods {
			if m.HasICallMapping {
				continue
			}
			if err := p.writeMethod(t, m); err != nil {
				return "", err
			}
		}
	}

	return p.sb.String(), nil
}

func (p *printer) writeHeader() {
	p.emit("// Generated by cil2cpp. Do not edit by hand.")
	p.emit("#include \"runtime.h\"")
	p.emit("")
}

func (p *printer) writeStringPool(module *ir.Module) {
	lits := module.StringLiterals()
	if len(lits) == 0 {
		return
	}
	for id, lit := range lits {
		p.emitf("static String* %s = String_FromUTF8(%q);", id, lit)
	}
	p.emit("")
}

func (p *printer) writeBlobPool(module *ir.Module) {
	blobs := module.BlobLiterals()
	if len(blobs) == 0 {
		return
	}
	for id, data := range blobs {
		p.emitf("static const uint8_t %s[%d] = {%s};", id, len(data), byteArrayLiteral(data))
	}
	p.emit("")
}

func byteArrayLiteral(data []byte) string {
	parts := make([]string, len(data))
	for i, b := range data {
		parts[i] = fmt.Sprintf("0x%02x", b)
	}
	return strings.Join(parts, ", ")
}

// writeTypeInfoRegistry prints every registered primitive TypeInfo under
// its mangled primitive name, matching spec.md §6's "Mangled-name ABI":
// "primitive TypeInfos under their mangled primitive names".
func (p *printer) writeTypeInfoRegistry(module *ir.Module) {
	if len(module.TypeInfoRegistry) == 0 {
		return
	}
	for mangledPrimitive, sym := range module.TypeInfoRegistry {
		p.emitf("extern TypeInfo %s; // %s", sym, mangledPrimitive)
	}
	p.emit("")
}

// writeForwardDecl prints a type's TypeInfo singleton declaration
// (Mangled_TypeInfo, per spec.md §6) and its struct forward declaration.
func (p *printer) writeForwardDecl(t *ir.Type) {
	p.emitf("struct %s;", t.Mangled)
	if !t.Flags.IsRuntimeProvided {
		p.emitf("extern TypeInfo %s_TypeInfo;", t.Mangled)
	}
}

func (p *printer) writeTypeDefinition(t *ir.Type) {
	if t.Flags.IsRuntimeProvided {
		return
	}

	p.emitf("struct %s {", t.Mangled)
	for _, f := range t.Fields {
		if f.IsStatic {
			continue
		}
		p.emitf("\t%s %s;", f.Type, f.Name)
	}
	p.emit("};")

	for _, f := range t.Fields {
		if !f.IsStatic {
			continue
		}
		p.emitf("static %s %s_%s;", f.Type, t.Mangled, f.Name)
	}

	for _, m := range t.Methods {
		if m.HasICallMapping {
			continue
		}
		p.emitf("%s %s(%s);", m.ReturnType, m.Name, paramList(m))
	}
	p.emit("")
}

func paramList(m *ir.Method) string {
	parts := make([]string, len(m.Params))
	for i, pr := range m.Params {
		parts[i] = pr.Type + " " + pr.Name
	}
	return strings.Join(parts, ", ")
}

func (p *printer) writeMethod(t *ir.Type, m *ir.Method) error {
	if m.PInvoke != nil {
		p.emitf("extern \"C\" %s %s(%s); // %s!%s", m.ReturnType, m.Name, paramList(m), m.PInvoke.ModuleName, m.PInvoke.EntryPoint)
		return nil
	}

	p.emitf("%s %s(%s) {", m.ReturnType, m.Name, paramList(m))
	for _, l := range m.Locals {
		p.emitf("\t%s %s;", l.Type, l.Name)
	}
	for name, typ := range m.TempVarTypes {
		p.emitf("\t%s %s;", typ, name)
	}

	for _, instr := range m.AllInstructions() {
		if p.cfg.EmitLineDirectives {
			if dbg := instr.DebugInfo(); dbg != nil && dbg.File != "" {
				p.emitf("#line %d %q", dbg.Line, dbg.File)
			}
		}
		line, err := renderInstruction(instr)
		if err != nil {
			return fmt.Errorf("backend: method %s.%s: %w", t.Mangled, m.Name, err)
		}
		p.emit("\t" + line)
	}

	p.emit("}")
	p.emit("")
	return nil
}
