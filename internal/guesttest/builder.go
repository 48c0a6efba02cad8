// Package guesttest builds small binary guest modules for tests.
package guesttest

import (
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/hostcall/guest"
)

const (
	i32 = api.ValueTypeI32
	i64 = api.ValueTypeI64
)

// Builder assembles a guest module section by section. All imports must be
// added before the first Func so function indices stay stable.
type Builder struct {
	global  *int32
	types   []funcType
	imports []funcImport
	funcs   []function
	exports []export
	pages   uint32
	memory  bool
	table   bool
}

type funcType struct {
	params  []api.ValueType
	results []api.ValueType
}

type funcImport struct {
	module  string
	name    string
	typeIdx uint32
}

type function struct {
	body    []byte
	typeIdx uint32
}

type export struct {
	name  string
	index uint32
	kind  guest.ExternKind
}

// New returns an empty builder.
func New() *Builder {
	return &Builder{}
}

func (b *Builder) addType(params, results []api.ValueType) uint32 {
	b.types = append(b.types, funcType{params: params, results: results})
	return uint32(len(b.types) - 1)
}

// Import adds a function import and returns its function index.
func (b *Builder) Import(module, name string, params, results []api.ValueType) uint32 {
	if len(b.funcs) > 0 {
		panic("guesttest: Import after Func")
	}
	b.imports = append(b.imports, funcImport{
		module:  module,
		name:    name,
		typeIdx: b.addType(params, results),
	})
	return uint32(len(b.imports) - 1)
}

// Func adds a defined function and returns its function index. body holds
// the instructions only; locals and the final end are added.
func (b *Builder) Func(params, results []api.ValueType, body ...[]byte) uint32 {
	var code []byte
	for _, part := range body {
		code = append(code, part...)
	}
	b.funcs = append(b.funcs, function{
		typeIdx: b.addType(params, results),
		body:    code,
	})
	return uint32(len(b.imports) + len(b.funcs) - 1)
}

// Memory declares one linear memory of the given number of pages.
func (b *Builder) Memory(pages uint32) *Builder {
	b.memory = true
	b.pages = pages
	return b
}

// ExportFunc exports the function at idx.
func (b *Builder) ExportFunc(name string, idx uint32) *Builder {
	b.exports = append(b.exports, export{name: name, kind: guest.ExternFunc, index: idx})
	return b
}

// ExportMemory exports memory 0. Memory must be declared.
func (b *Builder) ExportMemory(name string) *Builder {
	b.exports = append(b.exports, export{name: name, kind: guest.ExternMemory})
	return b
}

// ExportTable declares a one-entry funcref table and exports it.
func (b *Builder) ExportTable(name string) *Builder {
	b.table = true
	b.exports = append(b.exports, export{name: name, kind: guest.ExternTable})
	return b
}

// ExportGlobal declares an immutable i32 global and exports it.
func (b *Builder) ExportGlobal(name string, value int32) *Builder {
	b.global = &value
	b.exports = append(b.exports, export{name: name, kind: guest.ExternGlobal})
	return b
}

// Bytes encodes the module.
func (b *Builder) Bytes() []byte {
	out := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

	if len(b.types) > 0 {
		var s []byte
		s = append(s, guest.EncodeULEB128(uint32(len(b.types)))...)
		for _, t := range b.types {
			s = append(s, 0x60)
			s = append(s, valTypes(t.params)...)
			s = append(s, valTypes(t.results)...)
		}
		out = appendSection(out, 0x01, s)
	}

	if len(b.imports) > 0 {
		var s []byte
		s = append(s, guest.EncodeULEB128(uint32(len(b.imports)))...)
		for _, imp := range b.imports {
			s = appendName(s, imp.module)
			s = appendName(s, imp.name)
			s = append(s, 0x00)
			s = append(s, guest.EncodeULEB128(imp.typeIdx)...)
		}
		out = appendSection(out, 0x02, s)
	}

	if len(b.funcs) > 0 {
		var s []byte
		s = append(s, guest.EncodeULEB128(uint32(len(b.funcs)))...)
		for _, f := range b.funcs {
			s = append(s, guest.EncodeULEB128(f.typeIdx)...)
		}
		out = appendSection(out, 0x03, s)
	}

	if b.table {
		out = appendSection(out, 0x04, []byte{0x01, 0x70, 0x00, 0x01})
	}

	if b.memory {
		s := []byte{0x01, 0x00}
		s = append(s, guest.EncodeULEB128(b.pages)...)
		out = appendSection(out, 0x05, s)
	}

	if b.global != nil {
		s := []byte{0x01, 0x7f, 0x00}
		s = append(s, I32Const(*b.global)...)
		s = append(s, 0x0b)
		out = appendSection(out, 0x06, s)
	}

	if len(b.exports) > 0 {
		var s []byte
		s = append(s, guest.EncodeULEB128(uint32(len(b.exports)))...)
		for _, e := range b.exports {
			s = appendName(s, e.name)
			s = append(s, byte(e.kind))
			s = append(s, guest.EncodeULEB128(e.index)...)
		}
		out = appendSection(out, 0x07, s)
	}

	if len(b.funcs) > 0 {
		var s []byte
		s = append(s, guest.EncodeULEB128(uint32(len(b.funcs)))...)
		for _, f := range b.funcs {
			body := []byte{0x00} // no locals
			body = append(body, f.body...)
			body = append(body, 0x0b)
			s = append(s, guest.EncodeULEB128(uint32(len(body)))...)
			s = append(s, body...)
		}
		out = appendSection(out, 0x0a, s)
	}

	return out
}

func appendSection(out []byte, id byte, content []byte) []byte {
	out = append(out, id)
	out = append(out, guest.EncodeULEB128(uint32(len(content)))...)
	return append(out, content...)
}

func appendName(out []byte, name string) []byte {
	out = append(out, guest.EncodeULEB128(uint32(len(name)))...)
	return append(out, name...)
}

func valTypes(types []api.ValueType) []byte {
	out := guest.EncodeULEB128(uint32(len(types)))
	return append(out, types...)
}

// WithModuleName appends a "name" custom section carrying the module name.
func WithModuleName(wasm []byte, name string) []byte {
	sub := appendName(nil, name)
	s := appendName(nil, "name")
	s = append(s, 0x00) // module name subsection
	s = append(s, guest.EncodeULEB128(uint32(len(sub)))...)
	s = append(s, sub...)
	out := append([]byte(nil), wasm...)
	return appendSection(out, 0x00, s)
}
