package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/wippyai/hostcall/guest"
	"github.com/wippyai/hostcall/memory"
)

var runCmd = &cobra.Command{
	Use:   "run <module.wasm> [export] [args...]",
	Short: "Link a module and invoke one of its exports",
	Long: `Instantiate a WebAssembly module with the system capabilities and call an
exported function.

The kind of every export and the first 16 bytes of the guest's memory are
printed before the call. Arguments are decimal integers matched against the
export's parameter types. With --interactive, exports are picked from a list.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolP("interactive", "i", false, "Pick the export and arguments interactively")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	interactive, _ := cmd.Flags().GetBool("interactive")
	if interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return errors.New("interactive mode requires a terminal")
		}
		return runInteractive(configFromFlags(cmd), args[0])
	}
	if len(args) < 2 {
		return errors.New("export name required (or use --interactive)")
	}

	ctx := context.Background()
	out := cmd.OutOrStdout()

	s, err := openSession(ctx, configFromFlags(cmd), args[0], cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer s.Close(ctx)

	for _, e := range s.inst.Exports() {
		fmt.Fprintf(out, "%s: %s\n", e.Name, e.Kind.Title())
	}

	if view, err := s.inst.Memory(); err == nil {
		n := min(view.Len(), 16)
		head, _ := view.Read(0, n)
		fmt.Fprintf(out, "%s[..16] = %v\n", memory.ExportName, head)
	}

	name := args[1]
	e, ok := findExport(s.inst.Exports(), name)
	if !ok {
		return fmt.Errorf("export not found: %s", name)
	}
	if e.Kind != guest.ExternFunc {
		return fmt.Errorf("export is not a function: %s", name)
	}

	params, results, _ := s.funcTypes(name)
	words, err := parseArgs(params, args[2:])
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	ret, err := s.inst.Call(ctx, name, words...)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Invoked %s, result: %s\n", name, formatResults(results, ret))
	return nil
}

func findExport(exports []guest.Export, name string) (guest.Export, bool) {
	for _, e := range exports {
		if e.Name == name {
			return e, true
		}
	}
	return guest.Export{}, false
}
