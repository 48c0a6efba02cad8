// Package memory gives capability implementations access to the linear
// memory of the guest that called them.
//
// A [View] is looked up from the caller's execution context by the
// conventional export name "memory":
//
//	func debugPrint(ctx context.Context, call host.Call[API], src, length uint32) {
//		heap := memory.Of(call.Caller)
//		text, err := heap.Slice(src, length)
//		if err != nil {
//			panic(err)
//		}
//		...
//	}
//
// A View aliases guest memory and is only valid for the duration of the
// host call that obtained it. The guest can grow its memory between calls,
// which relocates the underlying buffer, so views must never be cached.
//
// Offsets and lengths supplied by the guest are untrusted. [View.Slice],
// [View.Read] and the typed accessors reject ranges past the current size;
// [View.Bytes] hands out the raw span and leaves checking to the caller.
package memory
