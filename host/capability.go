package host

import (
	"context"
	"slices"
	"strings"

	"github.com/tetratelabs/wazero/api"
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/hostcall/abi"
	"github.com/wippyai/hostcall/memory"
)

// Call carries the two execution contexts of a capability invocation.
//
// Callee is the host instance the capability belongs to and gives access to
// the shared state. Caller is the guest instance that made the call; memory
// must always be read through Caller, since a capability reached
// transitively may be called by a different instance than the one that
// linked it.
type Call[S any] struct {
	Callee *Instance[S]
	Caller api.Module
}

// State returns the capability state of the callee instance.
func (c Call[S]) State() S {
	return c.Callee.State()
}

// Memory returns a view over the caller's linear memory.
// It panics if the caller exports no memory.
func (c Call[S]) Memory() memory.View {
	return memory.Of(c.Caller)
}

// Trampoline adapts raw stack slots to a native implementation. Parameters
// occupy stack[0:len(Params)]; the result, if any, is written to stack[0].
type Trampoline[S any] func(ctx context.Context, call Call[S], stack []uint64)

// Capability is a declared capability: its word signature plus the
// trampoline generated from the native function.
type Capability[S any] struct {
	tramp      Trampoline[S]
	result     wit.Type
	native     string
	params     []wit.Type
	paramNames []string
	sig        Signature
}

// Signature returns a copy of the word signature.
func (c Capability[S]) Signature() Signature { return c.sig.Clone() }

// Trampoline returns the generated trampoline.
func (c Capability[S]) Trampoline() Trampoline[S] { return c.tramp }

// ParamNames returns a copy of the declared parameter names, if any.
func (c Capability[S]) ParamNames() []string { return slices.Clone(c.paramNames) }

// WithParamNames names the parameters for diagnostics and WIT rendering.
// The count must match the signature; Build rejects a mismatch.
func (c Capability[S]) WithParamNames(names ...string) Capability[S] {
	c.paramNames = slices.Clone(names)
	return c
}

func (c Capability[S]) clone() Capability[S] {
	c.sig = c.sig.Clone()
	c.params = slices.Clone(c.params)
	c.paramNames = slices.Clone(c.paramNames)
	return c
}

// nativeSignature renders a declared Go signature as "func(uint32) int64"
// for diagnostics.
func nativeSignature(result string, params ...string) string {
	s := "func(" + strings.Join(params, ", ") + ")"
	if result != "" {
		s += " " + result
	}
	return s
}

// Table is a declarative set of capabilities keyed by export name.
// Repeating a key in a Table literal is a compile error.
type Table[S any] map[string]Capability[S]

// Proc0 declares a capability with no parameters and no result.
func Proc0[S any](fn func(context.Context, Call[S])) Capability[S] {
	return Capability[S]{
		native: nativeSignature(""),
		tramp: func(ctx context.Context, call Call[S], _ []uint64) {
			fn(ctx, call)
		},
	}
}

// Proc1 declares a capability with one parameter and no result.
func Proc1[S any, A abi.Scalar](fn func(context.Context, Call[S], A)) Capability[S] {
	a := abi.NewCodec[A]()
	return Capability[S]{
		native: nativeSignature("", abi.GoTypeName[A]()),
		sig:    signature(nil, a.Kind()),
		params: []wit.Type{abi.WITType[A]()},
		tramp: func(ctx context.Context, call Call[S], stack []uint64) {
			fn(ctx, call, a.Lift(stack[0]))
		},
	}
}

// Proc2 declares a capability with two parameters and no result.
func Proc2[S any, A, B abi.Scalar](fn func(context.Context, Call[S], A, B)) Capability[S] {
	a, b := abi.NewCodec[A](), abi.NewCodec[B]()
	return Capability[S]{
		native: nativeSignature("", abi.GoTypeName[A](), abi.GoTypeName[B]()),
		sig:    signature(nil, a.Kind(), b.Kind()),
		params: []wit.Type{abi.WITType[A](), abi.WITType[B]()},
		tramp: func(ctx context.Context, call Call[S], stack []uint64) {
			fn(ctx, call, a.Lift(stack[0]), b.Lift(stack[1]))
		},
	}
}

// Proc3 declares a capability with three parameters and no result.
func Proc3[S any, A, B, C abi.Scalar](fn func(context.Context, Call[S], A, B, C)) Capability[S] {
	a, b, c := abi.NewCodec[A](), abi.NewCodec[B](), abi.NewCodec[C]()
	return Capability[S]{
		native: nativeSignature("", abi.GoTypeName[A](), abi.GoTypeName[B](), abi.GoTypeName[C]()),
		sig:    signature(nil, a.Kind(), b.Kind(), c.Kind()),
		params: []wit.Type{abi.WITType[A](), abi.WITType[B](), abi.WITType[C]()},
		tramp: func(ctx context.Context, call Call[S], stack []uint64) {
			fn(ctx, call, a.Lift(stack[0]), b.Lift(stack[1]), c.Lift(stack[2]))
		},
	}
}

// Proc4 declares a capability with four parameters and no result.
func Proc4[S any, A, B, C, D abi.Scalar](fn func(context.Context, Call[S], A, B, C, D)) Capability[S] {
	a, b, c, d := abi.NewCodec[A](), abi.NewCodec[B](), abi.NewCodec[C](), abi.NewCodec[D]()
	return Capability[S]{
		native: nativeSignature("", abi.GoTypeName[A](), abi.GoTypeName[B](), abi.GoTypeName[C](), abi.GoTypeName[D]()),
		sig:    signature(nil, a.Kind(), b.Kind(), c.Kind(), d.Kind()),
		params: []wit.Type{abi.WITType[A](), abi.WITType[B](), abi.WITType[C](), abi.WITType[D]()},
		tramp: func(ctx context.Context, call Call[S], stack []uint64) {
			fn(ctx, call, a.Lift(stack[0]), b.Lift(stack[1]), c.Lift(stack[2]), d.Lift(stack[3]))
		},
	}
}

// Func0 declares a capability with no parameters and one result.
func Func0[S any, R abi.Scalar](fn func(context.Context, Call[S]) R) Capability[S] {
	r := abi.NewCodec[R]()
	return Capability[S]{
		native: nativeSignature(abi.GoTypeName[R]()),
		sig:    signature([]abi.Kind{r.Kind()}),
		result: abi.WITType[R](),
		tramp: func(ctx context.Context, call Call[S], stack []uint64) {
			stack[0] = r.Lower(fn(ctx, call))
		},
	}
}

// Func1 declares a capability with one parameter and one result.
func Func1[S any, A, R abi.Scalar](fn func(context.Context, Call[S], A) R) Capability[S] {
	a, r := abi.NewCodec[A](), abi.NewCodec[R]()
	return Capability[S]{
		native: nativeSignature(abi.GoTypeName[R](), abi.GoTypeName[A]()),
		sig:    signature([]abi.Kind{r.Kind()}, a.Kind()),
		params: []wit.Type{abi.WITType[A]()},
		result: abi.WITType[R](),
		tramp: func(ctx context.Context, call Call[S], stack []uint64) {
			stack[0] = r.Lower(fn(ctx, call, a.Lift(stack[0])))
		},
	}
}

// Func2 declares a capability with two parameters and one result.
func Func2[S any, A, B, R abi.Scalar](fn func(context.Context, Call[S], A, B) R) Capability[S] {
	a, b, r := abi.NewCodec[A](), abi.NewCodec[B](), abi.NewCodec[R]()
	return Capability[S]{
		native: nativeSignature(abi.GoTypeName[R](), abi.GoTypeName[A](), abi.GoTypeName[B]()),
		sig:    signature([]abi.Kind{r.Kind()}, a.Kind(), b.Kind()),
		params: []wit.Type{abi.WITType[A](), abi.WITType[B]()},
		result: abi.WITType[R](),
		tramp: func(ctx context.Context, call Call[S], stack []uint64) {
			stack[0] = r.Lower(fn(ctx, call, a.Lift(stack[0]), b.Lift(stack[1])))
		},
	}
}

// Func3 declares a capability with three parameters and one result.
func Func3[S any, A, B, C, R abi.Scalar](fn func(context.Context, Call[S], A, B, C) R) Capability[S] {
	a, b, c, r := abi.NewCodec[A](), abi.NewCodec[B](), abi.NewCodec[C](), abi.NewCodec[R]()
	return Capability[S]{
		native: nativeSignature(abi.GoTypeName[R](), abi.GoTypeName[A](), abi.GoTypeName[B](), abi.GoTypeName[C]()),
		sig:    signature([]abi.Kind{r.Kind()}, a.Kind(), b.Kind(), c.Kind()),
		params: []wit.Type{abi.WITType[A](), abi.WITType[B](), abi.WITType[C]()},
		result: abi.WITType[R](),
		tramp: func(ctx context.Context, call Call[S], stack []uint64) {
			stack[0] = r.Lower(fn(ctx, call, a.Lift(stack[0]), b.Lift(stack[1]), c.Lift(stack[2])))
		},
	}
}

// Func4 declares a capability with four parameters and one result.
func Func4[S any, A, B, C, D, R abi.Scalar](fn func(context.Context, Call[S], A, B, C, D) R) Capability[S] {
	a, b, c, d, r := abi.NewCodec[A](), abi.NewCodec[B](), abi.NewCodec[C](), abi.NewCodec[D](), abi.NewCodec[R]()
	return Capability[S]{
		native: nativeSignature(abi.GoTypeName[R](), abi.GoTypeName[A](), abi.GoTypeName[B](), abi.GoTypeName[C](), abi.GoTypeName[D]()),
		sig:    signature([]abi.Kind{r.Kind()}, a.Kind(), b.Kind(), c.Kind(), d.Kind()),
		params: []wit.Type{abi.WITType[A](), abi.WITType[B](), abi.WITType[C](), abi.WITType[D]()},
		result: abi.WITType[R](),
		tramp: func(ctx context.Context, call Call[S], stack []uint64) {
			stack[0] = r.Lower(fn(ctx, call, a.Lift(stack[0]), b.Lift(stack[1]), c.Lift(stack[2]), d.Lift(stack[3])))
		},
	}
}
