// Package errors provides structured error types for the host-call bridge.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the element path (capability name, or namespace and
// import name), the native Go signature and ABI word type when known, and the
// cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseBuild, errors.KindArity).
//		Path("debug_print").
//		GoType("func(uint32, uint32)").
//		Detail("1 parameter names for 2 parameters").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Duplicate(errors.PhaseBuild, "capability", "debug_print")
//	err := errors.OutOfBounds(errors.PhaseMemory, path, 10, 5, 8)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
