// Command hostcall loads a WebAssembly module, links its imports against
// the system capability set and invokes one of its exports.
package main

func main() {
	Execute()
}
