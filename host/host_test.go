package host_test

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/hostcall/abi"
	"github.com/wippyai/hostcall/errors"
	"github.com/wippyai/hostcall/host"
	"github.com/wippyai/hostcall/internal/guesttest"
)

type console struct {
	lines  []string
	caller string
	callee *host.Instance[*console]
	last   []any
}

func noop(ctx context.Context, call host.Call[*console]) {}

func TestGeneratedSignatures(t *testing.T) {
	tests := []struct {
		name string
		cap  host.Capability[*console]
		want string
	}{
		{"proc0", host.Proc0(noop), "() -> ()"},
		{"proc1 u8", host.Proc1(func(context.Context, host.Call[*console], uint8) {}), "(i32) -> ()"},
		{"proc2", host.Proc2(func(context.Context, host.Call[*console], uint32, int64) {}), "(i32, i64) -> ()"},
		{"proc3", host.Proc3(func(context.Context, host.Call[*console], int8, int16, uint64) {}), "(i32, i32, i64) -> ()"},
		{"proc4", host.Proc4(func(context.Context, host.Call[*console], uint8, uint16, uint32, uint64) {}), "(i32, i32, i32, i64) -> ()"},
		{"func0", host.Func0(func(context.Context, host.Call[*console]) int64 { return 0 }), "() -> (i64)"},
		{"func1", host.Func1(func(context.Context, host.Call[*console], int32) uint16 { return 0 }), "(i32) -> (i32)"},
		{"func2", host.Func2(func(context.Context, host.Call[*console], uint64, uint64) uint64 { return 0 }), "(i64, i64) -> (i64)"},
		{"func3", host.Func3(func(context.Context, host.Call[*console], int8, int8, int8) int8 { return 0 }), "(i32, i32, i32) -> (i32)"},
		{"func4", host.Func4(func(context.Context, host.Call[*console], int64, int32, int64, int32) uint32 { return 0 }), "(i64, i32, i64, i32) -> (i32)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cap.Signature().String(); got != tt.want {
				t.Errorf("Signature() = %s, want %s", got, tt.want)
			}
			if tt.cap.Trampoline() == nil {
				t.Error("nil trampoline")
			}
		})
	}
}

func TestTrampolineLiftsAndLowers(t *testing.T) {
	s := &console{}
	inst, err := host.Register("console", host.Table[*console]{
		"mix": host.Func3(func(ctx context.Context, call host.Call[*console], a int8, b uint16, c int64) int32 {
			call.State().last = []any{a, b, c}
			return int32(a) * 2
		}),
	}, s)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	exports := inst.Exports()
	if len(exports) != 1 {
		t.Fatalf("exports = %d", len(exports))
	}

	// -3 as an i32 word, 0x1_0005 truncated to uint16, -9 as an i64 word.
	stack := []uint64{uint64(uint32(0xfffffffd)), 0x10005, ^uint64(8)}
	exports[0].Func(context.Background(), nil, stack)

	if s.last[0] != int8(-3) || s.last[1] != uint16(5) || s.last[2] != int64(-9) {
		t.Errorf("lifted = %v", s.last)
	}
	if got := abi.NewCodec[int32]().Lift(stack[0]); got != -6 {
		t.Errorf("result = %d, want -6", got)
	}
	if stack[0]>>32 != 0 {
		t.Errorf("i32 result not zero-extended: %#x", stack[0])
	}
}

func TestBuilderDuplicate(t *testing.T) {
	_, err := host.NewBuilder[*console]("console").
		Add("print", host.Proc0(noop)).
		Add("flush", host.Proc0(noop)).
		Add("print", host.Proc0(noop)).
		Build()
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseBuild, Kind: errors.KindDuplicate}) {
		t.Fatalf("err = %v, want duplicate", err)
	}
	if !strings.Contains(err.Error(), `"print"`) {
		t.Errorf("err = %v, want conflicting name", err)
	}
}

func TestBuilderRejects(t *testing.T) {
	tramp := func(context.Context, host.Call[*console], []uint64) {}
	tooMany := make([]abi.Kind, host.MaxParams+1)
	for i := range tooMany {
		tooMany[i] = abi.KindI32
	}

	tests := []struct {
		name  string
		build func(*host.Builder[*console]) *host.Builder[*console]
		kind  errors.Kind
	}{
		{"empty name", func(b *host.Builder[*console]) *host.Builder[*console] {
			return b.Add("", host.Proc0(noop))
		}, errors.KindInvalidInput},
		{"nil trampoline", func(b *host.Builder[*console]) *host.Builder[*console] {
			return b.AddCapability("x", host.Signature{}, nil)
		}, errors.KindInvalidInput},
		{"too many params", func(b *host.Builder[*console]) *host.Builder[*console] {
			return b.AddCapability("x", host.Signature{Params: tooMany}, tramp)
		}, errors.KindUnsupported},
		{"two results", func(b *host.Builder[*console]) *host.Builder[*console] {
			return b.AddCapability("x", host.Signature{Results: []abi.Kind{abi.KindI32, abi.KindI32}}, tramp)
		}, errors.KindUnsupported},
		{"invalid kind", func(b *host.Builder[*console]) *host.Builder[*console] {
			return b.AddCapability("x", host.Signature{Params: []abi.Kind{abi.Kind(7)}}, tramp)
		}, errors.KindUnsupported},
		{"param names", func(b *host.Builder[*console]) *host.Builder[*console] {
			return b.Add("x", host.Proc2(func(context.Context, host.Call[*console], uint32, uint32) {}).WithParamNames("only"))
		}, errors.KindArity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.build(host.NewBuilder[*console]("console")).Build()
			if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseBuild, Kind: tt.kind}) {
				t.Fatalf("err = %v, want %s", err, tt.kind)
			}
		})
	}
}

func TestBuilderErrorNamesNativeSignature(t *testing.T) {
	_, err := host.NewBuilder[*console]("console").
		Add("sum", host.Func2(func(context.Context, host.Call[*console], uint32, int64) uint64 { return 0 }).WithParamNames("a")).
		Build()
	var e *errors.Error
	if !stderrors.As(err, &e) {
		t.Fatalf("err = %v", err)
	}
	if e.GoType != "func(uint32, int64) uint64" {
		t.Errorf("GoType = %q", e.GoType)
	}
	if !strings.Contains(err.Error(), "Go type func(uint32, int64) uint64") {
		t.Errorf("message %q should name the native signature", err.Error())
	}
}

func TestBuilderHandWritten(t *testing.T) {
	var got uint64
	desc, err := host.NewBuilder[*console]("console").
		AddCapability("raw", host.Signature{Params: []abi.Kind{abi.KindI64}}, func(_ context.Context, _ host.Call[*console], stack []uint64) {
			got = stack[0]
		}).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	slot, ok := desc.Lookup("raw")
	if !ok {
		t.Fatal("raw missing")
	}
	slot.Capability.Trampoline()(context.Background(), host.Call[*console]{}, []uint64{77})
	if got != 77 {
		t.Errorf("got %d", got)
	}
	if line, _ := desc.Describe("raw"); line != "raw: func(arg0: s64)" {
		t.Errorf("Describe = %q", line)
	}
}

func TestDescriptor(t *testing.T) {
	inst, err := host.Register("console", host.Table[*console]{
		"write":  host.Proc2(func(context.Context, host.Call[*console], uint32, uint32) {}).WithParamNames("ptr", "len"),
		"now_ns": host.Func0(func(context.Context, host.Call[*console]) uint64 { return 0 }),
		"exit":   host.Proc1(func(context.Context, host.Call[*console], int32) {}),
	}, &console{})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	desc := inst.Descriptor()

	if desc.Name() != "console" || desc.Len() != 3 {
		t.Errorf("name=%q len=%d", desc.Name(), desc.Len())
	}
	names := desc.Names()
	if strings.Join(names, ",") != "exit,now_ns,write" {
		t.Errorf("Names() = %v", names)
	}
	if _, ok := desc.Lookup("Write"); ok {
		t.Error("lookup must be exact")
	}

	want := "interface console {\n" +
		"\texit: func(arg0: s32);\n" +
		"\tnow-ns: func() -> u64;\n" +
		"\twrite: func(ptr: u32, len: u32);\n" +
		"}\n"
	if got := desc.WIT(); got != want {
		t.Errorf("WIT() =\n%s\nwant\n%s", got, want)
	}

	exports := inst.Exports()
	if len(exports) != 3 || exports[2].Name != "write" || len(exports[2].ParamNames) != 2 {
		t.Errorf("exports = %+v", exports)
	}
}

func TestDescriptorIsImmutable(t *testing.T) {
	names := []string{"src", "length"}
	sig := host.Signature{Params: []abi.Kind{abi.KindI32, abi.KindI32}}
	b := host.NewBuilder[*console]("console").
		Add("p", host.Proc2(func(context.Context, host.Call[*console], uint32, uint32) {}).WithParamNames(names...)).
		AddCapability("raw", sig, func(context.Context, host.Call[*console], []uint64) {})
	desc, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	inst := host.NewInstance(desc, &console{})

	names[0] = "changed"
	sig.Params[0] = abi.KindI64
	slot, _ := desc.Lookup("p")
	slot.Capability.Signature().Params[0] = abi.KindI64
	slot.Capability.ParamNames()[1] = "changed"
	for _, s := range desc.Slots() {
		s.Capability.Signature().Params[1] = abi.KindI64
	}
	inst.Exports()[0].Signature.Params[0] = abi.KindI64

	for _, e := range inst.Exports() {
		if got := e.Signature.String(); got != "(i32, i32) -> ()" {
			t.Errorf("%s signature = %s", e.Name, got)
		}
	}
	want := "interface console {\n" +
		"\tp: func(src: u32, length: u32);\n" +
		"\traw: func(arg0: s32, arg1: s32);\n" +
		"}\n"
	if got := desc.WIT(); got != want {
		t.Errorf("WIT() =\n%s\nwant\n%s", got, want)
	}
}

func TestInstantiateByModuleName(t *testing.T) {
	ctx := context.Background()
	rt := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfigInterpreter())
	defer rt.Close(ctx)

	s := &console{}
	inst, err := host.Register("console", host.Table[*console]{
		"debug_print": host.Proc2(func(ctx context.Context, call host.Call[*console], src, length uint32) {
			b, err := call.Memory().Read(src, length)
			if err != nil {
				panic(err)
			}
			st := call.State()
			st.lines = append(st.lines, string(b))
			st.caller = call.Caller.Name()
			st.callee = call.Callee
		}),
	}, s)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := inst.Instantiate(ctx, rt, "console"); err != nil {
		t.Fatalf("Instantiate host: %v", err)
	}

	bin := guesttest.WriteAndPrint("console", "debug_print", 8, "hey")
	mod, err := rt.InstantiateWithConfig(ctx, bin, wazero.NewModuleConfig().WithName("guest-a"))
	if err != nil {
		t.Fatalf("Instantiate guest: %v", err)
	}
	defer mod.Close(ctx)

	if _, err := mod.ExportedFunction("run").Call(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(s.lines) != 1 || s.lines[0] != "hey" {
		t.Errorf("lines = %q", s.lines)
	}
	if s.caller != "guest-a" {
		t.Errorf("caller = %q, want guest-a", s.caller)
	}
	if s.callee != inst {
		t.Error("callee is not the registered instance")
	}

	if _, err := inst.Instantiate(ctx, rt, "console"); !stderrors.Is(err, &errors.Error{Phase: errors.PhaseBuild, Kind: errors.KindInstantiation}) {
		t.Errorf("second instantiate err = %v", err)
	}
}

func TestSignatureOf(t *testing.T) {
	sig, err := host.SignatureOf([]api.ValueType{api.ValueTypeI32, api.ValueTypeI64}, []api.ValueType{api.ValueTypeI32})
	if err != nil {
		t.Fatalf("SignatureOf: %v", err)
	}
	if sig.String() != "(i32, i64) -> (i32)" {
		t.Errorf("sig = %s", sig)
	}
	if !sig.Equal(host.Signature{Params: []abi.Kind{abi.KindI32, abi.KindI64}, Results: []abi.Kind{abi.KindI32}}) {
		t.Error("Equal = false")
	}
	if sig.Equal(host.Signature{Params: []abi.Kind{abi.KindI32}}) {
		t.Error("Equal = true for different arity")
	}
	if pt := sig.ParamTypes(); len(pt) != 2 || pt[1] != api.ValueTypeI64 {
		t.Errorf("ParamTypes = %v", pt)
	}

	_, err = host.SignatureOf([]api.ValueType{api.ValueTypeF32}, nil)
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseDeclare, Kind: errors.KindUnsupported}) {
		t.Errorf("err = %v, want unsupported", err)
	}
}
