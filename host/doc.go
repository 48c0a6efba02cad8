// Package host declares typed host capabilities and assembles them into
// host instances that guests can link against.
//
// # Declaring capabilities
//
// A capability is declared from its native signature only. ProcN and FuncN
// generate the trampoline that lifts raw wazero stack slots into the native
// parameter types and lowers the result back:
//
//	var capabilities = host.Table[*Console]{
//		"debug_print": host.Proc2(func(ctx context.Context, call host.Call[*Console], src, length uint32) {
//			call.State().Print(call.Memory(), src, length)
//		}).WithParamNames("src", "length"),
//		"clock_now": host.Func0(func(ctx context.Context, call host.Call[*Console]) uint64 {
//			return uint64(time.Now().UnixNano())
//		}),
//	}
//
// Parameter types are restricted to [abi.Scalar]; arity is fixed by the
// generator used, so a mismatch between declaration and implementation does
// not compile.
//
// # Building instances
//
// [Register] turns a table and a state value into an [Instance]:
//
//	inst, err := host.Register("console", capabilities, console)
//
// [Builder] offers the same step by step, including AddCapability for
// hand-written trampolines. Build fails on duplicate names and on
// signatures the calling convention cannot represent.
//
// # Call contexts
//
// Every trampoline receives a [Call] with two contexts: Callee, the host
// instance whose state the capability uses, and Caller, the guest module
// whose memory it may touch.
package host
