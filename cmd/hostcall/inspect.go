package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/hostcall/guest"
	"github.com/wippyai/hostcall/linker"
	"github.com/wippyai/hostcall/sysapi"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <module.wasm>",
	Short: "List a module's imports and exports",
	Long: `Decode a module and list its imports with their qualified lookup keys and
whether the system capabilities resolve them, followed by its exports.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}
	mod, err := guest.Decode(data)
	if err != nil {
		return err
	}

	system, err := sysapi.Register(sysapi.NewPrinter(cmd.ErrOrStderr()))
	if err != nil {
		return err
	}
	namespace, _ := cmd.Flags().GetString("namespace")
	set := linker.Mount(namespace, system)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Imports: %d\n", len(mod.Imports))
	for _, imp := range mod.Imports {
		key := linker.QualifiedName(imp.Module, imp.Name)
		status := "unresolved"
		if _, ok := set.Lookup(key); ok && imp.Kind == guest.ExternFunc {
			status = "resolved"
		}
		fmt.Fprintf(out, "  %s.%s (%s) %s %s\n", imp.Module, imp.Name, key, describeImport(imp), status)
	}

	fmt.Fprintf(out, "Exports: %d\n", len(mod.Exports))
	for _, e := range mod.Exports {
		fmt.Fprintf(out, "  %s: %s\n", e.Name, e.Kind.Title())
	}
	return nil
}

func describeImport(imp guest.Import) string {
	if imp.Func == nil {
		return imp.Kind.String()
	}
	names := func(types []api.ValueType) string {
		parts := make([]string, len(types))
		for i, t := range types {
			parts[i] = api.ValueTypeName(t)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	}
	return "func" + names(imp.Func.Params) + " -> " + names(imp.Func.Results)
}
