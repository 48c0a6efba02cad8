package host

import (
	"strconv"
	"strings"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/hostcall/abi"
)

// Interface returns the descriptor as a WIT interface with one freestanding
// function per slot. Names are converted to kebab-case.
func (d *Descriptor[S]) Interface() *wit.Interface {
	name := witIdent(d.name)
	iface := &wit.Interface{Name: &name}
	for _, slot := range d.slots {
		fn := slot.Capability.witFunction(witIdent(slot.Name))
		iface.Functions.Set(fn.Name, fn)
	}
	return iface
}

// WIT renders the descriptor as a WIT interface so guest toolchains can
// generate matching import declarations.
func (d *Descriptor[S]) WIT() string {
	return d.Interface().WIT(nil, "") + "\n"
}

// Describe renders a single capability as "name: func(a: u32) -> u64".
func (d *Descriptor[S]) Describe(name string) (string, bool) {
	slot, ok := d.Lookup(name)
	if !ok {
		return "", false
	}
	fn := slot.Capability.witFunction(slot.Name)
	return strings.TrimSuffix(fn.WIT(nil, ""), ";"), true
}

// witFunction prefers the declared native types and falls back to signed
// integers of the word width for hand-written trampolines.
func (c Capability[S]) witFunction(name string) *wit.Function {
	fn := &wit.Function{Name: name, Kind: &wit.Freestanding{}}
	for i, k := range c.sig.Params {
		p := wit.Param{Name: "arg" + strconv.Itoa(i), Type: abi.WITTypeOfKind(k)}
		if i < len(c.paramNames) {
			p.Name = witIdent(c.paramNames[i])
		}
		if i < len(c.params) {
			p.Type = c.params[i]
		}
		fn.Params = append(fn.Params, p)
	}
	if len(c.sig.Results) == 1 {
		t := c.result
		if t == nil {
			t = abi.WITTypeOfKind(c.sig.Results[0])
		}
		fn.Results = []wit.Param{{Type: t}}
	}
	return fn
}

func witIdent(name string) string {
	return strings.ReplaceAll(name, "_", "-")
}
