package linker_test

import (
	"context"
	"testing"

	"github.com/tetratelabs/wazero"

	"github.com/wippyai/hostcall/host"
	"github.com/wippyai/hostcall/internal/guesttest"
	"github.com/wippyai/hostcall/linker"
)

func BenchmarkInstantiate_NoImports(b *testing.B) {
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	l := linker.NewWithDefaults(rt)
	gb := guesttest.New()
	bin := gb.ExportFunc("run", gb.Func(guesttest.None, guesttest.I32, guesttest.I32Const(42))).Bytes()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		inst, err := l.Instantiate(ctx, bin)
		if err != nil {
			b.Fatal(err)
		}
		inst.Close(ctx)
	}
}

func BenchmarkInstantiate_WithImports(b *testing.B) {
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	inst, err := host.Register("bench", capabilities, &state{})
	if err != nil {
		b.Fatal(err)
	}
	l := linker.NewWithDefaults(rt).Mount("env", inst)
	bin := guesttest.WriteAndPrint("env", "debug_print", 0, "bench")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		g, err := l.Instantiate(ctx, bin)
		if err != nil {
			b.Fatal(err)
		}
		g.Close(ctx)
	}
}

func BenchmarkCapabilityCall(b *testing.B) {
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	inst, err := host.Register("bench", capabilities, &state{})
	if err != nil {
		b.Fatal(err)
	}
	l := linker.NewWithDefaults(rt).Mount("env", inst)
	g, err := l.Instantiate(ctx, guesttest.WriteAndPrint("env", "debug_print", 0, "bench"))
	if err != nil {
		b.Fatal(err)
	}
	defer g.Close(ctx)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := g.Call(ctx, "run"); err != nil {
			b.Fatal(err)
		}
		inst.State().prints = inst.State().prints[:0]
	}
}
