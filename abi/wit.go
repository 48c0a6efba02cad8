package abi

import (
	"reflect"

	"go.bytecodealliance.org/wit"
)

// WITType returns the WIT primitive that describes T to guest toolchains.
func WITType[T Scalar]() wit.Type {
	switch reflect.TypeFor[T]().Kind() {
	case reflect.Int8:
		return wit.S8{}
	case reflect.Int16:
		return wit.S16{}
	case reflect.Int32:
		return wit.S32{}
	case reflect.Int64:
		return wit.S64{}
	case reflect.Uint8:
		return wit.U8{}
	case reflect.Uint16:
		return wit.U16{}
	case reflect.Uint32:
		return wit.U32{}
	default:
		return wit.U64{}
	}
}

// WITTypeOfKind returns the signed WIT integer as wide as a word of kind k.
// Used when no native type is known.
func WITTypeOfKind(k Kind) wit.Type {
	if k == KindI64 {
		return wit.S64{}
	}
	return wit.S32{}
}
