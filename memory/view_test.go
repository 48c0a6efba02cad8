package memory_test

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/hostcall/errors"
	"github.com/wippyai/hostcall/internal/guesttest"
	"github.com/wippyai/hostcall/memory"
)

func instantiate(t *testing.T, withMemory bool) api.Module {
	t.Helper()
	ctx := context.Background()
	rt := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfigInterpreter())
	t.Cleanup(func() { rt.Close(ctx) })

	b := guesttest.New()
	if withMemory {
		run := b.Func(guesttest.None, guesttest.None, guesttest.StoreBytes(16, []byte("guest")))
		b.ExportFunc("run", run).Memory(1).ExportMemory(memory.ExportName)
	} else {
		b.ExportFunc("run", b.Func(guesttest.None, guesttest.None))
	}
	mod, err := rt.InstantiateWithConfig(ctx, b.Bytes(), wazero.NewModuleConfig().WithName("g"))
	if err != nil {
		t.Fatalf("instantiate: %v", err)
	}
	return mod
}

func TestLookup(t *testing.T) {
	mod := instantiate(t, true)
	if _, err := mod.ExportedFunction("run").Call(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	v, err := memory.Lookup(mod)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if v.Len() != 65536 {
		t.Errorf("Len() = %d", v.Len())
	}
	if v.Memory() == nil || len(v.Bytes()) != 65536 {
		t.Error("view does not cover the whole memory")
	}
	b, err := v.Read(16, 5)
	if err != nil || string(b) != "guest" {
		t.Errorf("Read = %q, %v", b, err)
	}
}

func TestLookupMissingMemory(t *testing.T) {
	mod := instantiate(t, false)

	_, err := memory.Lookup(mod)
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseMemory, Kind: errors.KindMissingMemory}) {
		t.Fatalf("err = %v, want missing memory", err)
	}

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("Of did not panic")
		}
		if e, ok := r.(*errors.Error); !ok || e.Kind != errors.KindMissingMemory {
			t.Errorf("panic value = %v", r)
		}
	}()
	memory.Of(mod)
}

func TestLookupNil(t *testing.T) {
	_, err := memory.Lookup(nil)
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseMemory, Kind: errors.KindInvalidInput}) {
		t.Fatalf("err = %v, want invalid input", err)
	}
}

func TestBounds(t *testing.T) {
	v := memory.Of(instantiate(t, true))

	tests := []struct {
		name           string
		offset, length uint32
		ok             bool
	}{
		{"start", 0, 16, true},
		{"empty at end", 65536, 0, true},
		{"exact end", 65530, 6, true},
		{"one past", 65530, 7, false},
		{"offset past", 70000, 0, false},
		{"wraps", 0xffffffff, 2, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := v.Slice(tt.offset, tt.length)
			if tt.ok {
				if err != nil || len(b) != int(tt.length) {
					t.Fatalf("Slice = %d bytes, %v", len(b), err)
				}
				return
			}
			if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseMemory, Kind: errors.KindOutOfBounds}) {
				t.Fatalf("err = %v, want out of bounds", err)
			}
		})
	}
}

func TestReadCopiesSliceAliases(t *testing.T) {
	v := memory.Of(instantiate(t, true))

	if err := v.Write(100, []byte{1, 2, 3}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	copied, _ := v.Read(100, 3)
	aliased, _ := v.Slice(100, 3)
	copied[0] = 9
	aliased[1] = 8

	got, _ := v.Read(100, 3)
	if got[0] != 1 || got[1] != 8 {
		t.Errorf("memory = %v", got)
	}
	if cap(aliased) != 3 {
		t.Errorf("slice capacity %d leaks past the range", cap(aliased))
	}
	if err := v.Write(65535, []byte{1, 2}); err == nil {
		t.Error("Write past the end succeeded")
	}
}

func TestTypedAccessors(t *testing.T) {
	v := memory.Of(instantiate(t, true))

	if err := v.WriteU8(0, 0xab); err != nil {
		t.Fatal(err)
	}
	if err := v.WriteU16(2, 0x1234); err != nil {
		t.Fatal(err)
	}
	if err := v.WriteU32(4, 0xdeadbeef); err != nil {
		t.Fatal(err)
	}
	if err := v.WriteU64(8, 0x0102030405060708); err != nil {
		t.Fatal(err)
	}

	if n, _ := v.ReadU8(0); n != 0xab {
		t.Errorf("ReadU8 = %#x", n)
	}
	if n, _ := v.ReadU16(2); n != 0x1234 {
		t.Errorf("ReadU16 = %#x", n)
	}
	if n, _ := v.ReadU32(4); n != 0xdeadbeef {
		t.Errorf("ReadU32 = %#x", n)
	}
	if n, _ := v.ReadU64(8); n != 0x0102030405060708 {
		t.Errorf("ReadU64 = %#x", n)
	}

	raw, _ := v.Read(4, 4)
	if raw[0] != 0xef || raw[3] != 0xde {
		t.Errorf("not little-endian: %x", raw)
	}

	if _, err := v.ReadU32(65534); err == nil {
		t.Error("ReadU32 past the end succeeded")
	}
	if err := v.WriteU64(65530, 1); !stderrors.Is(err, &errors.Error{Phase: errors.PhaseMemory, Kind: errors.KindOutOfBounds}) {
		t.Errorf("WriteU64 err = %v", err)
	}
}
