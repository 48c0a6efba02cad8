// Package linker resolves guest imports against host capabilities and
// instantiates guest modules.
//
// # Main Types
//
//   - ExportSet: an ordered source of host exports looked up by key
//   - Namespace: an ExportSet built from host instances under a namespace
//   - Resolver: maps every function import of a guest to a host export
//   - Linker: links and instantiates guests on a wazero runtime
//   - Instance: a linked guest with callable exports
//
// # Thread Safety
//
// Linker and Resolver are safe for concurrent use.
// Instance is NOT safe for concurrent use.
//
// # Import Resolution Order
//
// An import (module, name) is looked up under the key module_name in every
// export set, in the order the sets were added. The first set holding the
// key wins. Linking fails on the first import no set provides.
//
// # Example
//
//	l := linker.NewWithDefaults(runtime).Mount("env", inst)
//	guest, _ := l.Instantiate(ctx, wasmBytes)
//	defer guest.Close(ctx)
//	results, _ := guest.Call(ctx, "run")
package linker
