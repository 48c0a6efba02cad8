package linker

import (
	"strings"
	"sync"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/hostcall/errors"
	"github.com/wippyai/hostcall/guest"
	"github.com/wippyai/hostcall/host"
)

// Binding is one resolved guest import.
type Binding struct {
	Export host.Export
	Key    string
	Set    string // name of the export set that matched
	Import guest.Import
}

// Table is the resolved import table, one binding per guest import in
// declaration order. It is built per instantiation and not reused.
type Table struct {
	Bindings []Binding
}

// Len returns the number of bindings.
func (t *Table) Len() int {
	return len(t.Bindings)
}

// Keys returns the distinct qualified keys in first-use order.
func (t *Table) Keys() []string {
	seen := make(map[string]bool, len(t.Bindings))
	var keys []string
	for _, b := range t.Bindings {
		if !seen[b.Key] {
			seen[b.Key] = true
			keys = append(keys, b.Key)
		}
	}
	return keys
}

// CheckTypes verifies each import's declared function type against the
// signature of the export it resolved to.
func (t *Table) CheckTypes() error {
	for _, b := range t.Bindings {
		if b.Import.Func == nil {
			continue
		}
		got, err := host.SignatureOf(b.Import.Func.Params, b.Import.Func.Results)
		if err != nil {
			return errors.TypeMismatch(errors.PhaseLink,
				[]string{b.Import.Module, b.Import.Name},
				b.Export.Signature.String(), describeValueTypes(b.Import.Func))
		}
		if !got.Equal(b.Export.Signature) {
			return errors.TypeMismatch(errors.PhaseLink,
				[]string{b.Import.Module, b.Import.Name},
				b.Export.Signature.String(), got.String())
		}
	}
	return nil
}

func describeValueTypes(ft *guest.FuncType) string {
	names := func(types []api.ValueType) string {
		parts := make([]string, len(types))
		for i, vt := range types {
			parts[i] = api.ValueTypeName(vt)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	}
	return names(ft.Params) + " -> " + names(ft.Results)
}

// Resolver matches guest imports against ordered candidate export sets.
// The first set containing the qualified key wins.
// Resolver is thread-safe.
type Resolver struct {
	sets []ExportSet
	mu   sync.RWMutex
}

// NewResolver creates a resolver over the given candidate sets, searched in
// order.
func NewResolver(sets ...ExportSet) *Resolver {
	return &Resolver{sets: append([]ExportSet(nil), sets...)}
}

// Add appends a candidate set with the lowest priority so far.
func (r *Resolver) Add(set ExportSet) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sets = append(r.sets, set)
}

// Sets returns the candidate sets in search order.
func (r *Resolver) Sets() []ExportSet {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]ExportSet(nil), r.sets...)
}

// Resolve produces a Table for imports. It fails on the first import that no
// set can satisfy and never returns a partial table. Only function imports
// can be satisfied.
func (r *Resolver) Resolve(imports []guest.Import) (*Table, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	table := &Table{Bindings: make([]Binding, 0, len(imports))}
	for i, imp := range imports {
		key := QualifiedName(imp.Module, imp.Name)
		if imp.Kind != guest.ExternFunc {
			Logger().Debug("non-function import cannot be resolved",
				zap.String("key", key),
				zap.Stringer("kind", imp.Kind))
			return nil, errors.Unresolved(i, imp.Module, imp.Name, key)
		}

		binding, ok := r.lookup(key)
		if !ok {
			return nil, errors.Unresolved(i, imp.Module, imp.Name, key)
		}
		binding.Import = imp
		table.Bindings = append(table.Bindings, binding)

		Logger().Debug("import resolved",
			zap.String("key", key),
			zap.String("set", binding.Set),
			zap.Int("index", i))
	}
	return table, nil
}

func (r *Resolver) lookup(key string) (Binding, bool) {
	for _, set := range r.sets {
		if exp, ok := set.Lookup(key); ok {
			return Binding{Key: key, Set: set.Name(), Export: exp}, true
		}
	}
	return Binding{}, false
}
