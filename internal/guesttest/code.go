package guesttest

import (
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/hostcall/guest"
)

// Common signatures.
var (
	None   = []api.ValueType{}
	I32    = []api.ValueType{i32}
	I64    = []api.ValueType{i64}
	I32I32 = []api.ValueType{i32, i32}
)

// I32Const pushes an i32 constant.
func I32Const(v int32) []byte {
	return append([]byte{0x41}, guest.EncodeSLEB128(v)...)
}

// I64Const pushes an i64 constant.
func I64Const(v int64) []byte {
	return append([]byte{0x42}, guest.EncodeSLEB128(v)...)
}

// LocalGet pushes local idx.
func LocalGet(idx uint32) []byte {
	return append([]byte{0x20}, guest.EncodeULEB128(idx)...)
}

// Call calls function idx.
func Call(idx uint32) []byte {
	return append([]byte{0x10}, guest.EncodeULEB128(idx)...)
}

// Drop discards the top of the stack.
func Drop() []byte {
	return []byte{0x1a}
}

// StoreByte writes b at addr.
func StoreByte(addr int32, b byte) []byte {
	out := I32Const(addr)
	out = append(out, I32Const(int32(b))...)
	// i32.store8 align=0 offset=0
	return append(out, 0x3a, 0x00, 0x00)
}

// StoreBytes writes data starting at addr.
func StoreBytes(addr int32, data []byte) []byte {
	var out []byte
	for i, b := range data {
		out = append(out, StoreByte(addr+int32(i), b)...)
	}
	return out
}

// WriteAndPrint builds a guest that imports module.name as (i32, i32) -> ()
// and exports memory plus a "run" function. run stores text at addr and
// calls the import with (addr, len(text)).
func WriteAndPrint(module, name string, addr int32, text string) []byte {
	return CallWith(module, name, addr, int32(len(text)), []byte(text))
}

// CallWith is WriteAndPrint with an explicit length argument, so the
// import may be called with a range that does not match the stored data.
func CallWith(module, name string, addr, length int32, data []byte) []byte {
	b := New()
	fn := b.Import(module, name, I32I32, None)
	run := b.Func(None, None,
		StoreBytes(addr, data),
		I32Const(addr),
		I32Const(length),
		Call(fn),
	)
	return b.Memory(1).ExportMemory("memory").ExportFunc("run", run).Bytes()
}
