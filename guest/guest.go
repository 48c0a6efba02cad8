package guest

import (
	"fmt"

	"github.com/tetratelabs/wabin/binary"
	"github.com/tetratelabs/wabin/wasm"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/hostcall/errors"
)

// ExternKind classifies imports and exports.
type ExternKind byte

const (
	ExternFunc   ExternKind = ExternKind(wasm.ExternTypeFunc)
	ExternTable  ExternKind = ExternKind(wasm.ExternTypeTable)
	ExternMemory ExternKind = ExternKind(wasm.ExternTypeMemory)
	ExternGlobal ExternKind = ExternKind(wasm.ExternTypeGlobal)
)

func (k ExternKind) String() string {
	switch k {
	case ExternFunc:
		return "func"
	case ExternTable:
		return "table"
	case ExternMemory:
		return "memory"
	case ExternGlobal:
		return "global"
	default:
		return fmt.Sprintf("extern(%d)", byte(k))
	}
}

// Title returns the capitalized kind name.
func (k ExternKind) Title() string {
	switch k {
	case ExternFunc:
		return "Func"
	case ExternTable:
		return "Table"
	case ExternMemory:
		return "Memory"
	case ExternGlobal:
		return "Global"
	default:
		return k.String()
	}
}

// FuncType is a function signature in core value types.
type FuncType struct {
	Params  []api.ValueType
	Results []api.ValueType
}

// Import is one entry of the guest's import section.
type Import struct {
	Func   *FuncType // set for function imports
	Module string
	Name   string
	Index  int
	Kind   ExternKind
}

// Export is one entry of the guest's export section.
type Export struct {
	Name  string
	Index uint32
	Kind  ExternKind
}

// Module is the link-relevant view of a guest binary.
type Module struct {
	Imports []Import
	Exports []Export
}

// Decode parses a binary guest module and extracts its imports and exports.
func Decode(bin []byte) (*Module, error) {
	m, err := binary.DecodeModule(bin, wasm.CoreFeaturesV2)
	if err != nil {
		return nil, errors.Load("decode guest module", err)
	}

	out := &Module{
		Imports: make([]Import, 0, len(m.ImportSection)),
		Exports: make([]Export, 0, len(m.ExportSection)),
	}
	for i, imp := range m.ImportSection {
		entry := Import{
			Module: imp.Module,
			Name:   imp.Name,
			Kind:   ExternKind(imp.Type),
			Index:  i,
		}
		if imp.Type == wasm.ExternTypeFunc {
			if int(imp.DescFunc) >= len(m.TypeSection) {
				return nil, errors.Load(fmt.Sprintf("import %s.%s references missing type %d", imp.Module, imp.Name, imp.DescFunc), nil)
			}
			ft := m.TypeSection[imp.DescFunc]
			entry.Func = &FuncType{
				Params:  append([]api.ValueType(nil), ft.Params...),
				Results: append([]api.ValueType(nil), ft.Results...),
			}
		}
		out.Imports = append(out.Imports, entry)
	}
	for _, exp := range m.ExportSection {
		out.Exports = append(out.Exports, Export{
			Name:  exp.Name,
			Kind:  ExternKind(exp.Type),
			Index: exp.Index,
		})
	}
	return out, nil
}

// FuncImports returns only the function imports, in declaration order.
func (m *Module) FuncImports() []Import {
	var out []Import
	for _, imp := range m.Imports {
		if imp.Kind == ExternFunc {
			out = append(out, imp)
		}
	}
	return out
}

// Export looks up an export by name.
func (m *Module) Export(name string) (Export, bool) {
	for _, e := range m.Exports {
		if e.Name == name {
			return e, true
		}
	}
	return Export{}, false
}
