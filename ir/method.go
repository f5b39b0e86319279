package ir

// Param is a method parameter: its mangled C++ type and a display name.
type Param struct {
	Name string
	Type string
}

// Local is a declared local variable slot.
type Local struct {
	Name string
	Type string
}

// PInvokeInfo carries the subset of P/Invoke metadata the backend needs to
// print an external declaration instead of a body.
type PInvokeInfo struct {
	ModuleName   string
	EntryPoint   string
	CallingConv  string
}

// Override records an explicit interface-method override
// (MethodImpl-style) so the backend can print the correct vtable slot
// binding instead of relying on name matching.
type Override struct {
	InterfaceType string
	InterfaceSlot int
}

// Method is one IRMethod: owns one or more basic blocks, its signature, and
// the bookkeeping the lowering and disambiguation passes need.
type Method struct {
	Name       string // mangled C++ name, possibly rewritten by disambiguation
	ILName     string
	ILParams   []string // IL parameter type full names, for disambiguation
	Params     []Param
	Locals     []Local
	ReturnType string
	IsStatic   bool
	IsVirtual  bool
	IsAbstract bool

	Blocks []*BasicBlock

	// TempVarTypes maps a temporary's name to its inferred C++ type. Every
	// temporary whose live range crosses a label must have an entry here
	// (invariant 5).
	TempVarTypes map[string]string

	// HasICallMapping is true when this method's body is dead in emission
	// because call sites to it are routed directly through the ICall
	// registry instead of lowering its IL body.
	HasICallMapping bool

	PInvoke   *PInvokeInfo // non-nil for P/Invoke methods
	Overrides []Override

	tempCounter int
}

// NewMethod creates a method shell; its body is filled in during the
// method-body pass, after vtables exist (see the IRModule lifecycle).
func NewMethod(ilName, name string) *Method {
	return &Method{
		ILName:       ilName,
		Name:         name,
		TempVarTypes: make(map[string]string),
	}
}

// FreshTemp mints a monotonically increasing temporary name, scoped to this
// method.
func (m *Method) FreshTemp() string {
	name := tempName(m.tempCounter)
	m.tempCounter++
	return name
}

func tempName(n int) string {
	const prefix = "__t"
	digits := []byte{}
	if n == 0 {
		digits = append(digits, '0')
	}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return prefix + string(digits)
}

// Body returns the method's single basic block, creating it if absent.
// Per §4.1 the driver emits into one block per method; region markers and
// labels subdivide it logically rather than splitting it structurally.
func (m *Method) Body() *BasicBlock {
	if len(m.Blocks) == 0 {
		m.Blocks = append(m.Blocks, NewBasicBlock(m.Name+"_entry"))
	}
	return m.Blocks[0]
}

// AllLabels returns every label name emitted across the method's blocks.
func (m *Method) AllLabels() map[string]bool {
	out := make(map[string]bool)
	for _, b := range m.Blocks {
		for name := range b.Labels() {
			out[name] = true
		}
	}
	return out
}

// AllInstructions returns the method's instructions across every block, in
// emission order.
func (m *Method) AllInstructions() []Instruction {
	var out []Instruction
	for _, b := range m.Blocks {
		out = append(out, b.Instructions...)
	}
	return out
}
