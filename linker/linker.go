package linker

import (
	"context"
	"strconv"
	"sync/atomic"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/hostcall/errors"
	"github.com/wippyai/hostcall/guest"
	"github.com/wippyai/hostcall/host"
)

// Options configures linker behavior.
type Options struct {
	// ModuleConfig is used for every guest instantiation. Nil uses
	// wazero.NewModuleConfig() named after the link module, so the same
	// binary can be instantiated any number of times. A non-nil config
	// keeps its own name or the name from the guest binary.
	ModuleConfig wazero.ModuleConfig
	// LinkModulePrefix names the per-instantiation link modules.
	LinkModulePrefix string
	// TypeCheck rejects imports whose type differs from the export's
	// signature before the guest is instantiated.
	TypeCheck bool
}

// DefaultOptions returns default linker configuration.
func DefaultOptions() Options {
	return Options{
		LinkModulePrefix: "hostcall:link",
		TypeCheck:        true,
	}
}

// Linker resolves guest imports against host export sets and instantiates
// guests. Thread-safe.
type Linker struct {
	runtime  wazero.Runtime
	resolver *Resolver
	options  Options
	seq      atomic.Uint64
}

// New creates a new Linker with the given wazero runtime and options.
func New(rt wazero.Runtime, opts Options) *Linker {
	if opts.LinkModulePrefix == "" {
		opts.LinkModulePrefix = DefaultOptions().LinkModulePrefix
	}
	return &Linker{
		runtime:  rt,
		resolver: NewResolver(),
		options:  opts,
	}
}

// NewWithDefaults creates a new Linker with default options.
func NewWithDefaults(rt wazero.Runtime) *Linker {
	return New(rt, DefaultOptions())
}

// Runtime returns the wazero runtime.
func (l *Linker) Runtime() wazero.Runtime {
	return l.runtime
}

// Options returns the configuration.
func (l *Linker) Options() Options {
	return l.options
}

// Resolver returns the resolver holding the candidate sets.
func (l *Linker) Resolver() *Resolver {
	return l.resolver
}

// Mount adds a host instance as a candidate set whose exports resolve
// imports from namespace.
func (l *Linker) Mount(namespace string, e host.Exporter) *Linker {
	l.resolver.Add(Mount(namespace, e))
	return l
}

// Define adds a candidate set. Sets added earlier take precedence.
func (l *Linker) Define(set ExportSet) *Linker {
	l.resolver.Add(set)
	return l
}

// Link decodes wasm and resolves its imports without instantiating it.
func (l *Linker) Link(wasm []byte) (*Table, error) {
	_, table, err := l.link(wasm)
	return table, err
}

func (l *Linker) link(wasm []byte) (*guest.Module, *Table, error) {
	mod, err := guest.Decode(wasm)
	if err != nil {
		return nil, nil, err
	}
	table, err := l.resolver.Resolve(mod.Imports)
	if err != nil {
		return nil, nil, err
	}
	if l.options.TypeCheck {
		if err := table.CheckTypes(); err != nil {
			return nil, nil, err
		}
	}
	return mod, table, nil
}

// Instantiate links and instantiates a guest. Each import is redirected to
// a link module created for this instantiation alone, so guests never share
// link state. The returned Instance owns both modules.
func (l *Linker) Instantiate(ctx context.Context, wasm []byte) (*Instance, error) {
	mod, table, err := l.link(wasm)
	if err != nil {
		return nil, err
	}

	inst := &Instance{table: table, decoded: mod}
	linkName := l.options.LinkModulePrefix + "/" + strconv.FormatUint(l.seq.Add(1), 10)

	bin := wasm
	if table.Len() > 0 {
		bin, err = guest.RewriteImports(wasm, func(i int, _, _ string) (string, string) {
			return linkName, table.Bindings[i].Key
		})
		if err != nil {
			return nil, err
		}

		inst.link, err = l.instantiateLinkModule(ctx, linkName, table)
		if err != nil {
			return nil, err
		}
	}

	compiled, err := l.runtime.CompileModule(ctx, bin)
	if err != nil {
		inst.closeLink(ctx)
		return nil, errors.Load("compile guest module", err)
	}
	defer compiled.Close(ctx)

	cfg := l.options.ModuleConfig
	if cfg == nil {
		cfg = wazero.NewModuleConfig().WithName(linkName + "/guest")
	}
	inst.module, err = l.runtime.InstantiateModule(ctx, compiled, cfg)
	if err != nil {
		inst.closeLink(ctx)
		return nil, errors.Instantiation(errors.PhaseLink, compiled.Name(), err)
	}

	Logger().Debug("guest instantiated",
		zap.String("module", inst.module.Name()),
		zap.Int("imports", table.Len()))
	return inst, nil
}

func (l *Linker) instantiateLinkModule(ctx context.Context, name string, table *Table) (api.Module, error) {
	seen := make(map[string]bool, table.Len())
	exports := make([]host.Export, 0, table.Len())
	for _, b := range table.Bindings {
		if seen[b.Key] {
			continue
		}
		seen[b.Key] = true
		exp := b.Export
		exp.Name = b.Key
		exports = append(exports, exp)
	}

	mod, err := host.DefineExports(l.runtime.NewHostModuleBuilder(name), exports).Instantiate(ctx)
	if err != nil {
		return nil, errors.Instantiation(errors.PhaseLink, name, err)
	}
	Logger().Debug("link module built",
		zap.String("module", name),
		zap.Int("exports", len(exports)))
	return mod, nil
}
