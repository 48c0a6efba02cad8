// Package hostcall bridges typed Go capabilities to WebAssembly guests.
//
// A host declares capabilities by their native Go signature. The bridge
// generates the trampolines that move raw i32/i64 words across the guest
// boundary, resolves guest imports against the declared capabilities and
// gives capabilities bounds-checked access to the calling guest's memory.
//
// # Architecture Overview
//
//	hostcall/            Root package with the Memory contract
//	├── abi/             Native scalar <-> word mapping
//	├── host/            Capability declaration, trampolines, host instances
//	├── memory/          Views over a guest's "memory" export
//	├── guest/           Guest binary decoding and import rewriting
//	├── linker/          Import resolution and guest instantiation
//	├── sysapi/          System capability set (debug_print)
//	├── errors/          Structured error types for debugging
//	└── cmd/hostcall/    Command line runner
//
// # Quick Start
//
// Declare capabilities, register them with state and link a guest:
//
//	var capabilities = host.Table[*Console]{
//	    "debug_print": host.Proc2(func(ctx context.Context, call host.Call[*Console], src, length uint32) {
//	        text, err := call.Memory().Slice(src, length)
//	        if err != nil {
//	            panic(err)
//	        }
//	        call.State().Println(string(text))
//	    }),
//	}
//
//	inst, err := host.Register("console", capabilities, console)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	l := linker.NewWithDefaults(wazero.NewRuntime(ctx)).Mount("env", inst)
//	guest, err := l.Instantiate(ctx, wasmBytes)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer guest.Close(ctx)
//
//	_, err = guest.Call(ctx, "run")
//
// A guest importing (env, debug_print) is resolved through the key
// "env_debug_print".
//
// # Thread Safety
//
// Descriptors are immutable and Linker is safe for concurrent use. A linked
// guest Instance is NOT thread-safe. Capability state is shared by every
// call into the host instance; the bridge adds no locking around it.
//
// # Memory Model
//
// Guest memory may grow between calls, which can move its backing buffer.
// Capabilities must take a fresh view on every call and never keep one.
package hostcall
