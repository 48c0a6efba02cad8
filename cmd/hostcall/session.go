package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/hostcall/abi"
	"github.com/wippyai/hostcall/linker"
	"github.com/wippyai/hostcall/sysapi"
)

// session is one guest linked against the system capabilities.
type session struct {
	rt   wazero.Runtime
	inst *linker.Instance
}

// sessionConfig is what a session needs from the command line.
type sessionConfig struct {
	namespace string
	options   linker.Options
}

func configFromFlags(cmd *cobra.Command) sessionConfig {
	namespace, _ := cmd.Flags().GetString("namespace")
	return sessionConfig{namespace: namespace, options: linkerOptions(cmd)}
}

func openSession(ctx context.Context, cfg sessionConfig, path string, debugOut io.Writer) (*session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	system, err := sysapi.Register(sysapi.NewPrinter(debugOut))
	if err != nil {
		return nil, err
	}

	rt := wazero.NewRuntime(ctx)
	l := linker.New(rt, cfg.options).Mount(cfg.namespace, system)

	inst, err := l.Instantiate(ctx, data)
	if err != nil {
		rt.Close(ctx)
		return nil, err
	}
	return &session{rt: rt, inst: inst}, nil
}

func (s *session) Close(ctx context.Context) {
	s.inst.Close(ctx)
	s.rt.Close(ctx)
}

// funcTypes returns the parameter and result types of an exported function.
func (s *session) funcTypes(name string) (params, results []api.ValueType, ok bool) {
	fn := s.inst.Module().ExportedFunction(name)
	if fn == nil {
		return nil, nil, false
	}
	def := fn.Definition()
	return def.ParamTypes(), def.ResultTypes(), true
}

// parseArgs converts decimal arguments to raw words. Each word accepts the
// full signed and unsigned range of its width.
func parseArgs(types []api.ValueType, args []string) ([]uint64, error) {
	if len(args) != len(types) {
		return nil, fmt.Errorf("got %d arguments, want %d", len(args), len(types))
	}
	words := make([]uint64, len(args))
	for i, s := range args {
		k, ok := abi.KindOfValueType(types[i])
		if !ok {
			return nil, fmt.Errorf("argument %d: unsupported type %s", i, api.ValueTypeName(types[i]))
		}
		w, err := parseWord(k, strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("argument %d: %q is not an %s", i, s, k)
		}
		words[i] = w.Raw()
	}
	return words, nil
}

func parseWord(k abi.Kind, s string) (abi.Word, error) {
	bits := 32
	if k == abi.KindI64 {
		bits = 64
	}
	if v, err := strconv.ParseInt(s, 10, bits); err == nil {
		if k == abi.KindI64 {
			return abi.I64(v), nil
		}
		return abi.I32(int32(v)), nil
	}
	v, err := strconv.ParseUint(s, 10, bits)
	if err != nil {
		return abi.Word{}, err
	}
	return abi.FromRaw(k, v), nil
}

// formatResults renders results as signed values of their type.
func formatResults(types []api.ValueType, results []uint64) string {
	parts := make([]string, len(results))
	for i, r := range results {
		k := abi.KindI64
		if i < len(types) {
			if tk, ok := abi.KindOfValueType(types[i]); ok {
				k = tk
			}
		}
		w := abi.FromRaw(k, r)
		if k == abi.KindI32 {
			parts[i] = "I32(" + strconv.FormatInt(int64(w.I32()), 10) + ")"
		} else {
			parts[i] = "I64(" + strconv.FormatInt(w.I64(), 10) + ")"
		}
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
