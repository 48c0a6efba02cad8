// Package sysapi is the system capability set exposed to guests. It
// currently provides debug_print, which copies a string out of guest memory.
package sysapi

import (
	"context"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/hostcall"
	"github.com/wippyai/hostcall/host"
)

// ModuleName is the descriptor name of the system capability set.
const ModuleName = "sysapi"

// SystemAPI implements the system capabilities. heap is the caller's memory
// and is only valid for the duration of the call.
type SystemAPI interface {
	DebugPrint(heap hostcall.Memory, src, length uint32)
}

// Capabilities declares the system capability table.
var Capabilities = host.Table[SystemAPI]{
	"debug_print": host.Proc2(func(ctx context.Context, call host.Call[SystemAPI], src, length uint32) {
		call.State().DebugPrint(call.Memory(), src, length)
	}).WithParamNames("src", "length"),
}

// Register builds the system host instance over api.
func Register(api SystemAPI) (*host.Instance[SystemAPI], error) {
	return host.Register(ModuleName, Capabilities, api)
}

// Printer writes debug output to w.
type Printer struct {
	w  io.Writer
	mu sync.Mutex
}

// NewPrinter creates a Printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// DebugPrint writes "debug.print: <text>" for the bytes at [src, src+length).
// A range outside the heap fails the guest call.
func (p *Printer) DebugPrint(heap hostcall.Memory, src, length uint32) {
	text, err := heap.Read(src, length)
	if err != nil {
		Logger().Debug("debug_print out of bounds",
			zap.Uint32("src", src),
			zap.Uint32("length", length),
			zap.Uint32("heap", heap.Len()))
		panic(err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err := fmt.Fprintf(p.w, "debug.print: %s\n", text); err != nil {
		Logger().Warn("debug_print write failed", zap.Error(err))
	}
}
