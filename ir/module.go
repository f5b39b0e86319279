package ir

import (
	"fmt"
	"sync"
)

// Module owns every IRType plus the module-level pools described in §3:
// a string-literal pool, an array-initializer blob pool, the primitive
// TypeInfo registry, an external-enum-to-underlying-type map, and the
// DisambiguatedMethodNames map the fix-up pass consults.
//
// A Module is built in passes (type shells → interface proxies → method
// shells and vtables → method bodies → disambiguation → fix-up) and is
// treated as immutable once handed to the backend.
type Module struct {
	Types []*Type

	stringPool map[string]string // literal -> identifier
	stringSeq  int

	blobPool map[string]string // string(bytes) -> identifier
	blobSeq  int

	// TypeInfoRegistry maps a mangled primitive name to its C++ TypeInfo
	// symbol. It grows monotonically over the module's lifetime.
	TypeInfoRegistry map[string]string

	// ExternalEnumUnderlying maps an external (runtime-provided) enum's IL
	// full name to its underlying integer type.
	ExternalEnumUnderlying map[string]string

	// DisambiguatedMethodNames maps
	// "declaring_type_mangled|original_cpp_name|il_param_list" to the final,
	// unique mangled name the disambiguation pass chose; the key is not the
	// two-part "original_cpp_name|il_param_list" form.
	DisambiguatedMethodNames map[string]string

	// instantiations maps a generic method's open name + type-argument
	// list to the mangled name already minted for that specialization, so
	// `ldftn` on a repeat instantiation reuses it (§4.1).
	instantiations map[string]string

	// mu guards the pools above when `cmd compile --jobs N` lowers
	// methods concurrently (§5's method-parallel model): method bodies
	// are lowered into goroutine-local state, but string/blob interning
	// and generic instantiation lookups touch shared maps.
	mu sync.Mutex
}

// NewModule creates an empty module with all pools initialized.
func NewModule() *Module {
	return &Module{
		stringPool:               make(map[string]string),
		blobPool:                 make(map[string]string),
		TypeInfoRegistry:         make(map[string]string),
		ExternalEnumUnderlying:   make(map[string]string),
		DisambiguatedMethodNames: make(map[string]string),
		instantiations:           make(map[string]string),
	}
}

// AddType registers a type shell with the module.
func (m *Module) AddType(t *Type) { m.Types = append(m.Types, t) }

// FindType returns the type with the given IL full name, if present.
func (m *Module) FindType(ilFullName string) (*Type, bool) {
	for _, t := range m.Types {
		if t.ILFullName == ilFullName {
			return t, true
		}
	}
	return nil, false
}

// InternString registers a string literal and returns its stable pool
// identifier, minting one on first use.
func (m *Module) InternString(lit string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.stringPool[lit]; ok {
		return id
	}
	id := fmt.Sprintf("__str_lit_%d", m.stringSeq)
	m.stringSeq++
	m.stringPool[lit] = id
	return id
}

// InternBlob registers an array-initializer byte blob and returns its
// stable pool identifier.
func (m *Module) InternBlob(data []byte) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := string(data)
	if id, ok := m.blobPool[key]; ok {
		return id
	}
	id := fmt.Sprintf("__arr_init_%d", m.blobSeq)
	m.blobSeq++
	m.blobPool[key] = id
	return id
}

// RegisterTypeInfo adds (or looks up) the TypeInfo symbol for a mangled
// primitive type name.
func (m *Module) RegisterTypeInfo(mangledPrimitive string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sym, ok := m.TypeInfoRegistry[mangledPrimitive]; ok {
		return sym
	}
	sym := mangledPrimitive + "_TypeInfo"
	m.TypeInfoRegistry[mangledPrimitive] = sym
	return sym
}

// StringLiterals returns the pool of interned string literals keyed by
// their stable identifier, for the backend to emit as static data.
func (m *Module) StringLiterals() map[string]string {
	out := make(map[string]string, len(m.stringPool))
	for lit, id := range m.stringPool {
		out[id] = lit
	}
	return out
}

// BlobLiterals returns the pool of interned array-initializer blobs keyed
// by their stable identifier.
func (m *Module) BlobLiterals() map[string][]byte {
	out := make(map[string][]byte, len(m.blobPool))
	for data, id := range m.blobPool {
		out[id] = []byte(data)
	}
	return out
}

// Instantiation returns the mangled name already minted for a generic
// method specialization, if the module has one.
func (m *Module) Instantiation(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	name, ok := m.instantiations[key]
	return name, ok
}

// SetInstantiation records the mangled name for a generic method
// specialization key (open method full name + joined type arguments).
func (m *Module) SetInstantiation(key, mangledName string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.instantiations[key] = mangledName
}
