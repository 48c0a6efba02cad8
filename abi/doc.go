// Package abi maps native Go scalar types onto the two machine-word
// categories of the guest calling convention.
//
// Every type admitted by [Scalar] occupies exactly one [Kind]: 8, 16 and
// 32-bit integers travel as i32, 64-bit integers as i64. The set is closed
// and enforced by the type constraint, so declaring a capability over a
// float, a platform-sized int or a composite type fails to compile.
//
//	c := abi.NewCodec[uint16]()
//	raw := c.Lower(513)     // i32 word on the wazero stack
//	v := c.Lift(raw)        // 513
//
// Narrowing follows Go integer conversion rules: lifting an i32 word into
// an int8 keeps the low 8 bits, lowering an int8 sign-extends into the word.
package abi
