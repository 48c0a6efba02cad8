package host

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/hostcall/errors"
)

// Export is a capability bound to its host instance, ready to be defined
// in a wazero host module.
type Export struct {
	Func       api.GoModuleFunc
	Name       string
	ParamNames []string
	Signature  Signature
}

// Exporter supplies bound exports to a linker.
type Exporter interface {
	Name() string
	Exports() []Export
}

// Instance is a host-side instance: a descriptor plus the state its
// capabilities operate on. The embedder owns the state and must keep it
// usable for as long as any guest linked against this instance can call in.
// The bridge adds no locking around state.
type Instance[S any] struct {
	desc  *Descriptor[S]
	state S
}

// NewInstance binds a descriptor to capability state.
func NewInstance[S any](desc *Descriptor[S], state S) *Instance[S] {
	return &Instance[S]{desc: desc, state: state}
}

// Register builds a descriptor from table and binds it to state. It is the
// single entry point an embedding application needs.
func Register[S any](name string, table Table[S], state S) (*Instance[S], error) {
	desc, err := NewBuilder[S](name).AddTable(table).Build()
	if err != nil {
		return nil, err
	}
	return NewInstance(desc, state), nil
}

// Name returns the descriptor's module name.
func (i *Instance[S]) Name() string {
	return i.desc.Name()
}

// State returns the capability state.
func (i *Instance[S]) State() S {
	return i.state
}

// Descriptor returns the descriptor backing the instance.
func (i *Instance[S]) Descriptor() *Descriptor[S] {
	return i.desc
}

// Exports binds every slot to this instance as the callee context.
func (i *Instance[S]) Exports() []Export {
	exports := make([]Export, len(i.desc.slots))
	for n, slot := range i.desc.slots {
		exports[n] = Export{
			Name:       slot.Name,
			Signature:  slot.Capability.Signature(),
			ParamNames: slot.Capability.ParamNames(),
			Func:       i.bind(slot.Capability.tramp),
		}
	}
	return exports
}

func (i *Instance[S]) bind(tramp Trampoline[S]) api.GoModuleFunc {
	return func(ctx context.Context, caller api.Module, stack []uint64) {
		tramp(ctx, Call[S]{Callee: i, Caller: caller}, stack)
	}
}

// Instantiate materializes the instance as a wazero host module that
// exports each capability under its bare name. Guests importing from
// moduleName link against it directly.
func (i *Instance[S]) Instantiate(ctx context.Context, rt wazero.Runtime, moduleName string) (api.Module, error) {
	builder := DefineExports(rt.NewHostModuleBuilder(moduleName), i.Exports())
	mod, err := builder.Instantiate(ctx)
	if err != nil {
		return nil, errors.Instantiation(errors.PhaseBuild, moduleName, err)
	}
	Logger().Debug("host module instantiated",
		zap.String("module", moduleName),
		zap.Int("capabilities", i.desc.Len()))
	return mod, nil
}

// DefineExports adds exports to a wazero host module builder, each under
// its Export.Name.
func DefineExports(b wazero.HostModuleBuilder, exports []Export) wazero.HostModuleBuilder {
	for _, e := range exports {
		fb := b.NewFunctionBuilder().
			WithGoModuleFunction(e.Func, e.Signature.ParamTypes(), e.Signature.ResultTypes()).
			WithName(e.Name)
		if len(e.ParamNames) == len(e.Signature.Params) && len(e.ParamNames) > 0 {
			fb = fb.WithParameterNames(e.ParamNames...)
		}
		b = fb.Export(e.Name)
	}
	return b
}
