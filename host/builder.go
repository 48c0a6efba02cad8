package host

import (
	"sort"

	"go.uber.org/zap"

	"github.com/wippyai/hostcall/errors"
)

// Slot is one named export of a host descriptor.
type Slot[S any] struct {
	Name       string
	Capability Capability[S]
}

// Builder assembles a Descriptor from capabilities.
// Errors are collected and reported by Build, in the order they occurred.
type Builder[S any] struct {
	index map[string]int
	name  string
	slots []Slot[S]
	errs  []error
}

// NewBuilder starts a descriptor with the given module name.
func NewBuilder[S any](name string) *Builder[S] {
	return &Builder[S]{
		name:  name,
		index: make(map[string]int),
	}
}

// AddCapability adds a slot from a raw signature and a hand-written
// trampoline. Prefer Add with a generated capability.
func (b *Builder[S]) AddCapability(name string, sig Signature, tramp Trampoline[S]) *Builder[S] {
	return b.Add(name, Capability[S]{sig: sig, tramp: tramp})
}

// Add adds a declared capability under name.
func (b *Builder[S]) Add(name string, c Capability[S]) *Builder[S] {
	if name == "" {
		b.errs = append(b.errs, errors.InvalidInput(errors.PhaseBuild, "capability name cannot be empty"))
		return b
	}
	if c.tramp == nil {
		b.errs = append(b.errs, errors.New(errors.PhaseBuild, errors.KindInvalidInput).
			Path(name).
			Detail("nil trampoline").
			Build())
		return b
	}
	if _, exists := b.index[name]; exists {
		b.errs = append(b.errs, errors.Duplicate(errors.PhaseBuild, "capability", name))
		return b
	}
	if err := c.sig.Validate(); err != nil {
		b.errs = append(b.errs, errors.New(errors.PhaseBuild, errors.KindUnsupported).
			Path(name).
			GoType(c.native).
			Detail("signature %s cannot be represented", c.sig).
			Cause(err).
			Build())
		return b
	}
	if c.paramNames != nil && len(c.paramNames) != len(c.sig.Params) {
		b.errs = append(b.errs, errors.New(errors.PhaseBuild, errors.KindArity).
			Path(name).
			GoType(c.native).
			Detail("%d parameter names for %d parameters", len(c.paramNames), len(c.sig.Params)).
			Build())
		return b
	}

	b.index[name] = len(b.slots)
	b.slots = append(b.slots, Slot[S]{Name: name, Capability: c})
	return b
}

// AddTable adds every capability of t in name order.
func (b *Builder[S]) AddTable(t Table[S]) *Builder[S] {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		b.Add(name, t[name])
	}
	return b
}

// Build returns the immutable descriptor, or the first recorded error.
// The descriptor shares no slices with the builder or its capabilities.
func (b *Builder[S]) Build() (*Descriptor[S], error) {
	if len(b.errs) > 0 {
		return nil, b.errs[0]
	}

	d := &Descriptor[S]{
		name:  b.name,
		slots: make([]Slot[S], len(b.slots)),
		index: make(map[string]int, len(b.index)),
	}
	for n, slot := range b.slots {
		d.slots[n] = Slot[S]{Name: slot.Name, Capability: slot.Capability.clone()}
	}
	for k, v := range b.index {
		d.index[k] = v
	}

	Logger().Debug("host descriptor built",
		zap.String("module", d.name),
		zap.Strings("capabilities", d.Names()))
	return d, nil
}
