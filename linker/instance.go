package linker

import (
	"context"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/hostcall/errors"
	"github.com/wippyai/hostcall/guest"
	"github.com/wippyai/hostcall/memory"
)

// Instance is an instantiated guest together with the link module that
// serves its imports. Instance is NOT safe for concurrent use.
type Instance struct {
	module  api.Module
	link    api.Module
	table   *Table
	decoded *guest.Module
}

// Module returns the guest's wazero module.
func (i *Instance) Module() api.Module {
	return i.module
}

// Table returns the import table the guest was linked with.
func (i *Instance) Table() *Table {
	return i.table
}

// Exports returns the guest's exports in declaration order.
func (i *Instance) Exports() []guest.Export {
	return append([]guest.Export(nil), i.decoded.Exports...)
}

// Memory returns a view of the guest's memory export. The view must not be
// kept across calls into the guest.
func (i *Instance) Memory() (memory.View, error) {
	return memory.Lookup(i.module)
}

// Call invokes an exported guest function with raw words. Errors raised by
// a capability during the call are returned as is.
func (i *Instance) Call(ctx context.Context, name string, params ...uint64) ([]uint64, error) {
	e, ok := i.decoded.Export(name)
	if !ok {
		return nil, errors.New(errors.PhaseCall, errors.KindInvalidInput).
			Path(name).
			Detail("export not found").
			Build()
	}
	if e.Kind != guest.ExternFunc {
		return nil, errors.New(errors.PhaseCall, errors.KindInvalidInput).
			Path(name).
			Detail("export is not a function").
			Build()
	}
	fn := i.module.ExportedFunction(name)
	if fn == nil {
		return nil, errors.New(errors.PhaseCall, errors.KindInvalidInput).
			Path(name).
			Detail("export not found").
			Build()
	}
	if want := len(fn.Definition().ParamTypes()); want != len(params) {
		return nil, errors.New(errors.PhaseCall, errors.KindArity).
			Path(name).
			Detail("got %d arguments, want %d", len(params), want).
			Build()
	}
	// Capability failures come back from wazero unchanged in the chain.
	return fn.Call(ctx, params...)
}

// Close closes the guest and then its link module.
func (i *Instance) Close(ctx context.Context) error {
	var err error
	if i.module != nil {
		err = i.module.Close(ctx)
		if err != nil {
			Logger().Warn("guest close failed", zap.Error(err))
		}
	}
	i.closeLink(ctx)
	return err
}

func (i *Instance) closeLink(ctx context.Context) {
	if i.link == nil {
		return
	}
	if err := i.link.Close(ctx); err != nil {
		Logger().Warn("link module close failed",
			zap.String("module", i.link.Name()),
			zap.Error(err))
	}
	i.link = nil
}
