package memory

import (
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/hostcall"
	"github.com/wippyai/hostcall/errors"
)

// ExportName is the export a guest must use for its linear memory.
const ExportName = "memory"

var _ hostcall.Memory = View{}

// View is a non-owning window over a guest's linear memory.
type View struct {
	mem    api.Memory
	data   []byte
	module string
}

// Lookup returns a view over the memory exported by mod.
func Lookup(mod api.Module) (View, error) {
	if mod == nil {
		return View{}, errors.InvalidInput(errors.PhaseMemory, "nil execution context")
	}
	mem := mod.ExportedMemory(ExportName)
	if mem == nil {
		return View{}, errors.MissingMemory(mod.Name(), ExportName)
	}
	data, ok := mem.Read(0, mem.Size())
	if !ok {
		return View{}, errors.InvalidData(errors.PhaseMemory, []string{mod.Name()}, "memory size does not match its buffer")
	}
	return View{mem: mem, data: data, module: mod.Name()}, nil
}

// Of returns a view over the memory exported by mod. It panics when the
// instance has no memory export: linking a memory-dependent capability
// against such a guest is a programming error, and wazero surfaces the
// panic as the error of the guest call.
func Of(mod api.Module) View {
	v, err := Lookup(mod)
	if err != nil {
		panic(err)
	}
	return v
}

// Len returns the memory size in bytes at the time the view was taken.
func (v View) Len() uint32 {
	return uint32(len(v.data))
}

// Bytes returns the whole memory span. Writes go straight to guest memory.
func (v View) Bytes() []byte {
	return v.data
}

// Memory returns the underlying wazero memory.
func (v View) Memory() api.Memory {
	return v.mem
}

// Slice returns the bytes in [offset, offset+length) without copying.
func (v View) Slice(offset, length uint32) ([]byte, error) {
	end := uint64(offset) + uint64(length)
	if end > uint64(len(v.data)) {
		return nil, errors.OutOfBounds(errors.PhaseMemory, []string{v.module}, offset, length, len(v.data))
	}
	return v.data[offset:end:end], nil
}

// Read copies length bytes starting at offset.
func (v View) Read(offset, length uint32) ([]byte, error) {
	b, err := v.Slice(offset, length)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

// Write copies data into guest memory at offset.
func (v View) Write(offset uint32, data []byte) error {
	b, err := v.Slice(offset, uint32(len(data)))
	if err != nil {
		return err
	}
	copy(b, data)
	return nil
}

// ReadU8 reads an unsigned 8-bit value.
func (v View) ReadU8(offset uint32) (uint8, error) {
	b, ok := v.mem.ReadByte(offset)
	if !ok {
		return 0, v.outOfBounds(offset, 1)
	}
	return b, nil
}

// ReadU16 reads an unsigned 16-bit little-endian value.
func (v View) ReadU16(offset uint32) (uint16, error) {
	n, ok := v.mem.ReadUint16Le(offset)
	if !ok {
		return 0, v.outOfBounds(offset, 2)
	}
	return n, nil
}

// ReadU32 reads an unsigned 32-bit little-endian value.
func (v View) ReadU32(offset uint32) (uint32, error) {
	n, ok := v.mem.ReadUint32Le(offset)
	if !ok {
		return 0, v.outOfBounds(offset, 4)
	}
	return n, nil
}

// ReadU64 reads an unsigned 64-bit little-endian value.
func (v View) ReadU64(offset uint32) (uint64, error) {
	n, ok := v.mem.ReadUint64Le(offset)
	if !ok {
		return 0, v.outOfBounds(offset, 8)
	}
	return n, nil
}

// WriteU8 writes an unsigned 8-bit value.
func (v View) WriteU8(offset uint32, value uint8) error {
	if !v.mem.WriteByte(offset, value) {
		return v.outOfBounds(offset, 1)
	}
	return nil
}

// WriteU16 writes an unsigned 16-bit little-endian value.
func (v View) WriteU16(offset uint32, value uint16) error {
	if !v.mem.WriteUint16Le(offset, value) {
		return v.outOfBounds(offset, 2)
	}
	return nil
}

// WriteU32 writes an unsigned 32-bit little-endian value.
func (v View) WriteU32(offset uint32, value uint32) error {
	if !v.mem.WriteUint32Le(offset, value) {
		return v.outOfBounds(offset, 4)
	}
	return nil
}

// WriteU64 writes an unsigned 64-bit little-endian value.
func (v View) WriteU64(offset uint32, value uint64) error {
	if !v.mem.WriteUint64Le(offset, value) {
		return v.outOfBounds(offset, 8)
	}
	return nil
}

func (v View) outOfBounds(offset, length uint32) error {
	return errors.OutOfBounds(errors.PhaseMemory, []string{v.module}, offset, length, len(v.data))
}
