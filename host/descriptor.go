package host

// Descriptor maps capability names to their signature and trampoline.
// Immutable after Build and safe for concurrent reads.
type Descriptor[S any] struct {
	index map[string]int
	name  string
	slots []Slot[S]
}

// Name returns the descriptor's module name.
func (d *Descriptor[S]) Name() string {
	return d.name
}

// Len returns the number of slots.
func (d *Descriptor[S]) Len() int {
	return len(d.slots)
}

// Names returns slot names in declaration order.
func (d *Descriptor[S]) Names() []string {
	names := make([]string, len(d.slots))
	for i, s := range d.slots {
		names[i] = s.Name
	}
	return names
}

// Lookup returns the slot with the exact given name.
func (d *Descriptor[S]) Lookup(name string) (Slot[S], bool) {
	i, ok := d.index[name]
	if !ok {
		return Slot[S]{}, false
	}
	return d.slots[i], true
}

// Slots returns a copy of all slots in declaration order.
func (d *Descriptor[S]) Slots() []Slot[S] {
	out := make([]Slot[S], len(d.slots))
	copy(out, d.slots)
	return out
}
