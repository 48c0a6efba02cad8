package abi

import (
	"reflect"
)

// Scalar32 is the set of native types carried in an i32 word.
type Scalar32 interface {
	~int8 | ~int16 | ~int32 | ~uint8 | ~uint16 | ~uint32
}

// Scalar64 is the set of native types carried in an i64 word.
type Scalar64 interface {
	~int64 | ~uint64
}

// Scalar is every native type allowed in a capability signature.
// int, uint and uintptr are excluded because their width depends on the
// host platform.
type Scalar interface {
	Scalar32 | Scalar64
}

// KindOf returns the word kind a scalar type occupies.
func KindOf[T Scalar]() Kind {
	switch reflect.TypeFor[T]().Kind() {
	case reflect.Int64, reflect.Uint64:
		return KindI64
	default:
		return KindI32
	}
}

// GoTypeName returns the Go name of a scalar type, for diagnostics.
func GoTypeName[T Scalar]() string {
	return reflect.TypeFor[T]().String()
}

// Codec converts one scalar type to and from raw stack slots.
// The kind is resolved once so trampolines avoid reflection per call.
type Codec[T Scalar] struct {
	kind Kind
}

// NewCodec returns the codec for T.
func NewCodec[T Scalar]() Codec[T] {
	return Codec[T]{kind: KindOf[T]()}
}

// Kind returns the word kind of T.
func (c Codec[T]) Kind() Kind { return c.kind }

// Lower converts a native value to its raw stack slot.
func (c Codec[T]) Lower(v T) uint64 {
	if c.kind == KindI64 {
		return uint64(v)
	}
	return uint64(uint32(v))
}

// Lift converts a raw stack slot to the native value.
func (c Codec[T]) Lift(raw uint64) T {
	if c.kind == KindI64 {
		return T(raw)
	}
	return T(uint32(raw))
}

// Encode converts a native value to a tagged word.
func Encode[T Scalar](v T) Word {
	c := NewCodec[T]()
	return Word{kind: c.kind, bits: c.Lower(v)}
}

// Decode converts a word to the native type, narrowing when the word is wider.
func Decode[T Scalar](w Word) T {
	return NewCodec[T]().Lift(w.bits)
}
