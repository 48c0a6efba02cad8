package linker

import (
	"github.com/wippyai/hostcall/errors"
	"github.com/wippyai/hostcall/host"
)

// QualifiedName forms the flat lookup key for a guest import.
func QualifiedName(namespace, name string) string {
	return namespace + "_" + name
}

// ExportSet is a candidate set of host exports keyed by flat name.
type ExportSet interface {
	Name() string
	Lookup(key string) (host.Export, bool)
}

// Namespace is an ExportSet backed by a map. Keys keep insertion order for
// listing.
type Namespace struct {
	exports map[string]host.Export
	name    string
	keys    []string
}

// NewNamespace creates an empty export set.
func NewNamespace(name string) *Namespace {
	return &Namespace{
		name:    name,
		exports: make(map[string]host.Export),
	}
}

// Mount exposes every export of e under QualifiedName(namespace, export).
// A guest importing (namespace, debug_print) resolves against it.
func Mount(namespace string, e host.Exporter) *Namespace {
	ns := NewNamespace(namespace)
	for _, exp := range e.Exports() {
		key := QualifiedName(namespace, exp.Name)
		ns.exports[key] = exp
		ns.keys = append(ns.keys, key)
	}
	return ns
}

// Flat exposes exports under their names as given. Use it when exports are
// already named with their qualified keys.
func Flat(name string, exports ...host.Export) (*Namespace, error) {
	ns := NewNamespace(name)
	for _, exp := range exports {
		if err := ns.Define(exp.Name, exp); err != nil {
			return nil, err
		}
	}
	return ns, nil
}

// Define adds an export under key.
func (n *Namespace) Define(key string, e host.Export) error {
	if key == "" {
		return errors.InvalidInput(errors.PhaseResolve, "empty export key")
	}
	if e.Func == nil {
		return errors.New(errors.PhaseResolve, errors.KindInvalidInput).
			Path(n.name, key).
			Detail("export has no function").
			Build()
	}
	if _, exists := n.exports[key]; exists {
		return errors.Duplicate(errors.PhaseResolve, "export", key)
	}
	n.exports[key] = e
	n.keys = append(n.keys, key)
	return nil
}

// Name returns the set name used in diagnostics.
func (n *Namespace) Name() string {
	return n.name
}

// Lookup finds an export by exact key.
func (n *Namespace) Lookup(key string) (host.Export, bool) {
	e, ok := n.exports[key]
	return e, ok
}

// Keys returns the export keys in definition order.
func (n *Namespace) Keys() []string {
	return append([]string(nil), n.keys...)
}

// Len returns the number of exports.
func (n *Namespace) Len() int {
	return len(n.keys)
}
