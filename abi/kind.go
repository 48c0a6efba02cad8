package abi

import (
	"fmt"

	"github.com/tetratelabs/wazero/api"
)

// Kind is the machine-word category a value occupies at the boundary.
type Kind uint8

const (
	KindI32 Kind = iota + 1
	KindI64
)

// String returns the wasm name of the word kind.
func (k Kind) String() string {
	switch k {
	case KindI32:
		return "i32"
	case KindI64:
		return "i64"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Valid reports whether k is one of the two supported word kinds.
func (k Kind) Valid() bool {
	return k == KindI32 || k == KindI64
}

// ValueType returns the wazero value type for the word kind.
func (k Kind) ValueType() api.ValueType {
	if k == KindI64 {
		return api.ValueTypeI64
	}
	return api.ValueTypeI32
}

// KindOfValueType maps a wazero value type back to a word kind.
// Floating point and reference types have no word kind.
func KindOfValueType(vt api.ValueType) (Kind, bool) {
	switch vt {
	case api.ValueTypeI32:
		return KindI32, true
	case api.ValueTypeI64:
		return KindI64, true
	default:
		return 0, false
	}
}

// ValueTypes converts a kind list to wazero value types.
func ValueTypes(kinds []Kind) []api.ValueType {
	if len(kinds) == 0 {
		return nil
	}
	out := make([]api.ValueType, len(kinds))
	for i, k := range kinds {
		out[i] = k.ValueType()
	}
	return out
}

// Word is a single raw value tagged with its kind.
type Word struct {
	bits uint64
	kind Kind
}

// I32 wraps a 32-bit value.
func I32(v int32) Word {
	return Word{kind: KindI32, bits: uint64(uint32(v))}
}

// I64 wraps a 64-bit value.
func I64(v int64) Word {
	return Word{kind: KindI64, bits: uint64(v)}
}

// FromRaw tags a raw wazero stack slot. Upper bits of i32 slots are dropped.
func FromRaw(k Kind, raw uint64) Word {
	if k == KindI32 {
		raw = uint64(uint32(raw))
	}
	return Word{kind: k, bits: raw}
}

// Kind returns the word's category.
func (w Word) Kind() Kind { return w.kind }

// Raw returns the stack-slot encoding of the word.
func (w Word) Raw() uint64 { return w.bits }

// I32 returns the word as a 32-bit integer.
func (w Word) I32() int32 { return int32(uint32(w.bits)) }

// I64 returns the word as a 64-bit integer.
func (w Word) I64() int64 { return int64(w.bits) }

func (w Word) String() string {
	if w.kind == KindI64 {
		return fmt.Sprintf("i64:%d", w.I64())
	}
	return fmt.Sprintf("i32:%d", w.I32())
}
